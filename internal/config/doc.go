// Package config loads the ssrd configuration with Viper.
//
// Values are read, from lowest to highest precedence, from built-in
// defaults, an optional ssr.yaml file, SSR_* environment variables and
// command-line flags. Nested keys map to environment variables by
// replacing dots with underscores:
//
//	server.port   -> SSR_SERVER_PORT
//	source.kind   -> SSR_SOURCE_KIND
//	log.level     -> SSR_LOG_LEVEL
package config
