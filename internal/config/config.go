package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/rypi-dev/photos-stats/internal/library"
	"github.com/rypi-dev/photos-stats/internal/logging"
)

const (
	EnvPrefix         = "PHOTOS_STATS"
	DefaultDBName     = "Photos.sqlite"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = logging.FormatConsole
	DefaultTimezone   = TimezoneUTC
	TimezoneUTC       = "utc"
	TimezoneLocal     = "local"
	defaultConfigPath = ".config/photos-stats/config.yml"
)

type Config struct {
	DBPath      string `mapstructure:"db-path"`
	LogLevel    string `mapstructure:"log-level"`
	LogFormat   string `mapstructure:"log-format"`
	MetricsFile string `mapstructure:"metrics-file"`
	Timezone    string `mapstructure:"timezone"`
	Stats       Stats  `mapstructure:"stats"`
}

type Stats struct {
	Columns []string `mapstructure:"columns"`
}

// LoadOptions tells Load where to look. Zero values use the defaults.
type LoadOptions struct {
	// ConfigFile explicite ; sinon $HOME/.config/photos-stats/config.yml si présent
	ConfigFile string
	// EnvFile chargé avec godotenv ; ".env" par défaut, ignoré s'il n'existe pas
	EnvFile string
	// Flags liés aux clés (db-path, log-level...) quand ils sont positionnés
	Flags *pflag.FlagSet
}

// flagKeys associe les flags CLI aux clés de configuration
var flagKeys = map[string]string{
	"db":           "db-path",
	"log-level":    "log-level",
	"log-format":   "log-format",
	"metrics-file": "metrics-file",
	"timezone":     "timezone",
}

// DefaultDBPath returns Photos.sqlite next to the executable.
func DefaultDBPath() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultDBName
	}
	return filepath.Join(filepath.Dir(exe), DefaultDBName)
}

// Load merges defaults, the config file, .env, the environment and flags (in
// increasing precedence) and validates the result.
func Load(opts LoadOptions) (Config, error) {
	var cfg Config

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("loading %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	v.SetDefault("db-path", DefaultDBPath())
	v.SetDefault("log-level", DefaultLogLevel)
	v.SetDefault("log-format", DefaultLogFormat)
	v.SetDefault("metrics-file", "")
	v.SetDefault("timezone", DefaultTimezone)
	v.SetDefault("stats.columns", columnNames(library.AllColumns()))

	configFile := opts.ConfigFile
	if configFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configFile = filepath.Join(home, defaultConfigPath)
		}
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			// Un fichier explicite doit exister, le fichier par défaut est optionnel
			if opts.ConfigFile != "" || (!errors.As(err, &notFound) && !os.IsNotExist(err)) {
				return cfg, fmt.Errorf("reading config %s: %w", configFile, err)
			}
		}
	}

	if opts.Flags != nil {
		for flagName, key := range flagKeys {
			if f := opts.Flags.Lookup(flagName); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return cfg, err
				}
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate vérifie les valeurs énumérées
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("db-path must not be empty")
	}
	if !logging.IsValidFormat(c.LogFormat) {
		return fmt.Errorf("invalid log-format %q (want console or json)", c.LogFormat)
	}
	c.Timezone = strings.ToLower(strings.TrimSpace(c.Timezone))
	if c.Timezone != TimezoneUTC && c.Timezone != TimezoneLocal {
		return fmt.Errorf("invalid timezone %q (want utc or local)", c.Timezone)
	}
	return nil
}

// StatsColumns parses the configured default columns of the stats command.
// Elles ne sont vérifiées qu'ici : overview et export ne s'en servent pas.
func (c Config) StatsColumns() ([]library.Column, error) {
	cols, err := library.ParseColumns(c.Stats.Columns)
	if err != nil {
		return nil, fmt.Errorf("stats.columns: %w", err)
	}
	return cols, nil
}

// LocalTime reports whether dates are converted to the local timezone
func (c Config) LocalTime() bool {
	return c.Timezone == TimezoneLocal
}

func columnNames(cols []library.Column) []string {
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.String())
	}
	return names
}
