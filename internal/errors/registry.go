package errors

import "sort"

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Configuration Errors (E100-E199)
	// ============================================

	"E100": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The ssr.yaml configuration file could not be read or parsed.",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid port number",
		Detail:   "The configured port is outside the valid TCP range.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
		Detail:   "A required configuration value is not set.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Unknown item source",
		Detail:   "The item source must be one of memory, http or s3.",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Invalid log setting",
		Detail:   "The log level must be debug, info, warn or error and the format text or json.",
	},
	"E105": {
		Category: CategoryConfig,
		Message:  "Invalid fixture file",
		Detail:   "The memory source fixture file could not be read or is not a JSON object of items.",
	},

	// ============================================
	// Bundle Errors (E200-E299)
	// ============================================

	"E200": {
		Category: CategoryBundle,
		Message:  "Page template not found",
		Detail:   "The configured page template file does not exist.",
	},
	"E201": {
		Category: CategoryBundle,
		Message:  "Page template has no outlet",
		Detail:   "The page template must contain the <!--ssr-outlet--> marker where the app markup is injected.",
	},
	"E202": {
		Category: CategoryBundle,
		Message:  "Invalid client manifest",
		Detail:   "The client manifest is not valid JSON.",
	},

	// ============================================
	// Render Errors (E300-E399)
	// ============================================

	"E300": {
		Category: CategoryRender,
		Message:  "Render failed",
		Detail:   "The page could not be rendered. The error and stack are logged by the server.",
	},
	"E301": {
		Category: CategoryRender,
		Message:  "Page not found",
		Detail:   "No route matches the requested URL.",
	},
	"E302": {
		Category: CategoryHydration,
		Message:  "Hydration mismatch",
		Detail:   "The markup rendered from the replayed snapshot differs from the server markup.",
	},
	"E303": {
		Category: CategoryCLI,
		Message:  "Server unreachable",
		Detail:   "The page could not be fetched from the render server.",
	},
}

// Codes returns all registered error codes, sorted.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Lookup returns the template for an error code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
