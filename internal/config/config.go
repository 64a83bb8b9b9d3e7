package config

import (
	"errors"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	ssrerrors "github.com/vango-dev/ssr/internal/errors"
)

const (
	// ConfigName is the base name of the configuration file.
	ConfigName = "ssr"

	// EnvPrefix prefixes every environment variable.
	EnvPrefix = "SSR"

	DefaultHost     = "127.0.0.1"
	DefaultPort     = 3000
	DefaultTitle    = "Vue SSR"
	DefaultStatic   = "./dist"
	DefaultTemplate = "./index.template.html"
	DefaultManifest = "./dist/ssr-client-manifest.json"
)

// Config is the complete ssrd configuration.
type Config struct {
	Server  ServerConfig `mapstructure:"server"`
	Bundle  BundleConfig `mapstructure:"bundle"`
	Static  StaticConfig `mapstructure:"static"`
	Source  SourceConfig `mapstructure:"source"`
	Log     LogConfig    `mapstructure:"log"`
	Dev     bool         `mapstructure:"dev"`
	Metrics bool         `mapstructure:"metrics"`
	Tracing bool         `mapstructure:"tracing"`
}

type ServerConfig struct {
	Host  string `mapstructure:"host"`
	Port  int    `mapstructure:"port"`
	Title string `mapstructure:"title"`
}

type BundleConfig struct {
	Template string `mapstructure:"template"`
	Manifest string `mapstructure:"manifest"`
}

type StaticConfig struct {
	Dir    string `mapstructure:"dir"`
	Prefix string `mapstructure:"prefix"`
	Cache  bool   `mapstructure:"cache"`
}

// SourceConfig selects and configures the item source.
type SourceConfig struct {
	// Kind is memory, http or s3.
	Kind string `mapstructure:"kind"`

	// Fixtures is a JSON file of items for the memory source. Empty uses
	// the built-in demo items.
	Fixtures string `mapstructure:"fixtures"`

	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`

	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Format    string `mapstructure:"format"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	PathStyle bool   `mapstructure:"path_style"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Source kinds.
const (
	SourceMemory = "memory"
	SourceHTTP   = "http"
	SourceS3     = "s3"
)

// SetDefaults registers every key with its default on v, so environment
// variables are honored for all of them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.title", DefaultTitle)
	v.SetDefault("bundle.template", DefaultTemplate)
	v.SetDefault("bundle.manifest", DefaultManifest)
	v.SetDefault("static.dir", DefaultStatic)
	v.SetDefault("static.prefix", "/")
	v.SetDefault("static.cache", false)
	v.SetDefault("source.kind", SourceMemory)
	v.SetDefault("source.fixtures", "")
	v.SetDefault("source.base_url", "")
	v.SetDefault("source.timeout", 5*time.Second)
	v.SetDefault("source.bucket", "")
	v.SetDefault("source.prefix", "")
	v.SetDefault("source.format", "json")
	v.SetDefault("source.region", "")
	v.SetDefault("source.endpoint", "")
	v.SetDefault("source.path_style", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("dev", false)
	v.SetDefault("metrics", false)
	v.SetDefault("tracing", false)
}

// New returns a Viper instance with defaults and environment binding.
// configFile, if not empty, names the file to read; otherwise ssr.yaml is
// searched in the working directory.
func New(configFile string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(ConfigName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration file, if any, and decodes v. A missing
// default file is not an error; a missing explicit file is.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			e := ssrerrors.New("E100").WithField(v.ConfigFileUsed()).Wrap(err)
			if errors.Is(err, fs.ErrNotExist) {
				e.WithSuggestion("Check the --config path")
			}
			return nil, e
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ssrerrors.New("E100").Wrap(err)
	}
	return &cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Validate checks the configuration and returns the first coded error.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return ssrerrors.New("E101").
			WithField("server.port").
			WithDetail("Port " + strconv.Itoa(c.Server.Port) + " is outside 0-65535.").
			WithSuggestion("Use a port between 1 and 65535, or 0 for any free port")
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return ssrerrors.New("E102").WithField("server.host")
	}

	switch c.Source.Kind {
	case SourceMemory:
	case SourceHTTP:
		if c.Source.BaseURL == "" {
			return ssrerrors.New("E102").
				WithField("source.base_url").
				WithSuggestion("Set SSR_SOURCE_BASE_URL to the items API, e.g. https://hacker-news.firebaseio.com/v0")
		}
	case SourceS3:
		if c.Source.Bucket == "" {
			return ssrerrors.New("E102").
				WithField("source.bucket").
				WithSuggestion("Set SSR_SOURCE_BUCKET to the bucket holding the items")
		}
		if f := c.Source.Format; f != "json" && f != "msgpack" {
			return ssrerrors.New("E102").
				WithField("source.format").
				WithDetail("The S3 object format must be json or msgpack, got " + strconv.Quote(f) + ".")
		}
	default:
		return ssrerrors.New("E103").
			WithField("source.kind").
			WithDetail("Unknown item source " + strconv.Quote(c.Source.Kind) + "; use memory, http or s3.")
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if f := c.Log.Format; f != "text" && f != "json" {
		return ssrerrors.New("E104").WithField("log.format")
	}
	return nil
}
