// Package config loads the application configuration with viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/spf13/viper"

	"controle_vendas/internal/store"
)

// EnvPrefix is the prefix of environment variable overrides, e.g. VENDAS_STORE_DRIVER.
const EnvPrefix = "VENDAS"

// Config holds all configuration.
type Config struct {
	Store    StoreConfig  `mapstructure:"store"`
	Export   ExportConfig `mapstructure:"export"`
	HTTP     HTTPConfig   `mapstructure:"http"`
	Log      LogConfig    `mapstructure:"log"`
	Currency string       `mapstructure:"currency"`
}

// StoreConfig selects where the ledger is persisted.
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // memory, file or sqlite
	Path   string `mapstructure:"path"`   // directory (file) or database file (sqlite)
	Key    string `mapstructure:"key"`
}

// ExportConfig configures the CSV export.
type ExportConfig struct {
	Dir      string `mapstructure:"dir"`
	FileName string `mapstructure:"file_name"`
	Caption  string `mapstructure:"caption"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// DefaultDir returns the base directory for data and exports.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".controle_vendas"
	}
	return filepath.Join(home, ".controle_vendas")
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	base := DefaultDir()
	v.SetDefault("store.driver", store.DriverFile)
	v.SetDefault("store.path", filepath.Join(base, "data"))
	v.SetDefault("store.key", "@sales_data")
	v.SetDefault("export.dir", filepath.Join(base, "exports"))
	v.SetDefault("export.file_name", "vendas.csv")
	v.SetDefault("export.caption", "Aqui estão minhas vendas!")
	v.SetDefault("http.addr", ":8081")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("currency", "BRL")
}

// New returns a viper instance with defaults and environment overrides.
// When configFile is not empty it is read as well.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configFile, err)
		}
	}
	return v, nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the application cannot run with.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case store.DriverMemory:
	case store.DriverFile, store.DriverSQLite:
		if strings.TrimSpace(c.Store.Path) == "" {
			errs = append(errs, errors.New("store.path is required for the "+c.Store.Driver+" driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver %q is not one of memory, file, sqlite", c.Store.Driver))
	}
	if strings.TrimSpace(c.Store.Key) == "" {
		errs = append(errs, errors.New("store.key is required"))
	}
	if c.Currency != "" && money.GetCurrency(c.Currency) == nil {
		errs = append(errs, fmt.Errorf("currency %q is not a known ISO 4217 code", c.Currency))
	}
	if strings.TrimSpace(c.Export.Dir) == "" {
		errs = append(errs, errors.New("export.dir is required"))
	}
	return errors.Join(errs...)
}

// StorePath returns the path handed to store.Open. The sqlite driver gets a
// database file inside the configured directory unless a file name was given.
func (c Config) StorePath() string {
	if c.Store.Driver == store.DriverSQLite && filepath.Ext(c.Store.Path) == "" {
		return filepath.Join(c.Store.Path, "vendas.db")
	}
	return c.Store.Path
}
