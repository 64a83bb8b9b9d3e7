// Package errors provides coded, actionable errors for the ssrd command.
//
// Each code maps to a category, a short message and a longer detail:
//   - E1xx: configuration (ssr.yaml, SSR_* environment, flags)
//   - E2xx: bundle (page template, client manifest)
//   - E3xx: render and hydration
//
// Usage:
//
//	err := errors.New("E101").
//	    WithField("server.port").
//	    WithSuggestion("Use a port between 1 and 65535")
//
//	fmt.Fprint(os.Stderr, err.Format())
//	// ERROR E101: Invalid port number
//	//
//	//   server.port
//	//
//	//   The configured port is outside the valid TCP range.
//	//
//	//   Hint: Use a port between 1 and 65535
package errors
