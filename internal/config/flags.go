package config

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"host":          "server.host",
	"port":          "server.port",
	"title":         "server.title",
	"template":      "bundle.template",
	"manifest":      "bundle.manifest",
	"static-dir":    "static.dir",
	"static-prefix": "static.prefix",
	"static-cache":  "static.cache",
	"source":        "source.kind",
	"fixtures":      "source.fixtures",
	"source-url":    "source.base_url",
	"bucket":        "source.bucket",
	"log-level":     "log.level",
	"log-format":    "log.format",
	"dev":           "dev",
	"metrics":       "metrics",
	"tracing":       "tracing",
}

// RegisterServeFlags defines the flags of the serve command on fs.
func RegisterServeFlags(fs *pflag.FlagSet) {
	fs.String("host", DefaultHost, "host to bind to")
	fs.IntP("port", "p", DefaultPort, "port to listen on")
	fs.String("title", DefaultTitle, "page title")
	fs.String("template", DefaultTemplate, "page template file")
	fs.String("manifest", DefaultManifest, "client build manifest")
	fs.String("static-dir", DefaultStatic, "directory of the client build")
	fs.String("static-prefix", "/", "URL prefix of static files")
	fs.Bool("static-cache", false, "send production cache headers for static files")
	fs.Bool("dev", false, "reload the bundle and browsers on change")
	fs.Bool("metrics", false, "expose Prometheus metrics on /metrics")
	fs.Bool("tracing", false, "record OpenTelemetry spans")
	RegisterSourceFlags(fs)
}

// RegisterSourceFlags defines the item source flags on fs.
func RegisterSourceFlags(fs *pflag.FlagSet) {
	fs.String("source", SourceMemory, "item source: memory, http or s3")
	fs.String("fixtures", "", "JSON file of items for the memory source")
	fs.String("source-url", "", "base URL of the http item source")
	fs.String("bucket", "", "bucket of the s3 item source")
}

// RegisterLogFlags defines the logging flags on fs.
func RegisterLogFlags(fs *pflag.FlagSet) {
	fs.StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	fs.String("log-format", "text", "log format (text, json)")
}

// BindFlags binds every known flag of fs to its configuration key. Flags
// only override the configuration when they are set on the command line.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}
