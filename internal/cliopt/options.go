package cliopt

import (
	"errors"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nonibytes/pgfulltext/pgfulltext/tsquery"
)

const EnvPrefix = "PGFULLTEXT"

// Settings are resolved once at the CLI root and passed to subcommands.
// Priority: flags > PGFULLTEXT_* environment > config file > defaults.
//
// NOTE: This is a separate package to avoid import cycles between the root
// command and per-command code.
type Settings struct {
	DatabaseURL      string   `mapstructure:"database_url"`
	Schemas          []string `mapstructure:"schemas"`
	Listen           string   `mapstructure:"listen"`
	LogLevel         string   `mapstructure:"log_level"`
	LogFormat        string   `mapstructure:"log_format"`
	CachePath        string   `mapstructure:"cache_path"`
	ReadCache        bool     `mapstructure:"read_cache"`
	WriteCache       bool     `mapstructure:"write_cache"`
	TSQueryCacheSize int      `mapstructure:"tsquery_cache_size"`
}

func DefaultSettings() Settings {
	return Settings{
		Schemas:          []string{"public"},
		Listen:           ":8080",
		LogLevel:         "info",
		LogFormat:        "text",
		CachePath:        "pgfulltext-cache.db",
		TSQueryCacheSize: tsquery.DefaultCacheSize,
	}
}

// flag name -> settings key
var flagKeys = map[string]string{
	"database-url":       "database_url",
	"schemas":            "schemas",
	"listen":             "listen",
	"log-level":          "log_level",
	"log-format":         "log_format",
	"cache-path":         "cache_path",
	"read-cache":         "read_cache",
	"write-cache":        "write_cache",
	"tsquery-cache-size": "tsquery_cache_size",
}

// BindGlobalFlags registers the persistent flags. Defaults are left zero so
// that unset flags do not shadow the environment or config file.
func BindGlobalFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default ./pgfulltext.yaml if present)")
	fs.String("database-url", "", "postgres connection string")
	fs.StringSlice("schemas", nil, "schemas to expose (comma-separated)")
	fs.String("listen", "", "listen address for serve")
	fs.String("log-level", "", "log level: trace|debug|info|warn|error")
	fs.String("log-format", "", "log format: text|json")
	fs.String("cache-path", "", "introspection snapshot file")
	fs.Bool("read-cache", false, "load the introspection snapshot instead of querying the catalog")
	fs.Bool("write-cache", false, "store the introspection snapshot after querying the catalog")
	fs.Int("tsquery-cache-size", 0, "compiled search expressions kept in memory")
}

// Load resolves settings. flags may be nil.
func Load(flags *pflag.FlagSet) (Settings, error) {
	v := viper.New()
	d := DefaultSettings()
	v.SetDefault("database_url", d.DatabaseURL)
	v.SetDefault("schemas", d.Schemas)
	v.SetDefault("listen", d.Listen)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("cache_path", d.CachePath)
	v.SetDefault("read_cache", d.ReadCache)
	v.SetDefault("write_cache", d.WriteCache)
	v.SetDefault("tsquery_cache_size", d.TSQueryCacheSize)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	configFile := ""
	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil && f.Changed {
				_ = v.BindPFlag(key, f)
			}
		}
		configFile, _ = flags.GetString("config")
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, err
		}
	} else {
		v.SetConfigName("pgfulltext")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Settings{}, err
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, err
	}
	s.Schemas = splitList(s.Schemas)
	return s, nil
}

// splitList accepts both repeated values and a single comma-separated value
// (the form environment variables arrive in).
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks settings needed to reach the database.
func (s Settings) Validate() error {
	if s.DatabaseURL == "" {
		return errors.New("database url is required (--database-url or PGFULLTEXT_DATABASE_URL)")
	}
	if len(s.Schemas) == 0 {
		return errors.New("at least one schema is required")
	}
	return nil
}
