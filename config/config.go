// Package config loads the fcalc configuration.
//
// Values come, by increasing priority, from built-in defaults, an optional
// YAML file, a .env file and FCALC_* environment variables (FCALC_FX_URL
// overrides fx.url).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/etnz/fincalc/fx"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the main application configuration struct.
type Config struct {
	FX       FXConfig       `mapstructure:"fx"`
	Currency CurrencyConfig `mapstructure:"currency"`
	Session  SessionConfig  `mapstructure:"session"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Assist   AssistConfig   `mapstructure:"assist"`
}

type FXConfig struct {
	URL      string        `mapstructure:"url"`
	Base     string        `mapstructure:"base"`
	Quote    string        `mapstructure:"quote"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheDir string        `mapstructure:"cache_dir"` // empty disables the cache
}

// CurrencyConfig names the currency of the inputs and the one valuations are
// converted to.
type CurrencyConfig struct {
	Local   string `mapstructure:"local"`
	Foreign string `mapstructure:"foreign"`
}

type SessionConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AssistConfig struct {
	Model string `mapstructure:"model"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("fx.url", fx.DefaultURL)
	v.SetDefault("fx.base", "USD")
	v.SetDefault("fx.quote", "INR")
	v.SetDefault("fx.timeout", 5*time.Second)
	v.SetDefault("fx.cache_dir", "")
	v.SetDefault("currency.local", "INR")
	v.SetDefault("currency.foreign", "USD")
	v.SetDefault("session.debounce", 300*time.Millisecond)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("assist.model", "gemini-2.5-flash")
}

// Load reads the configuration. path may be empty, then "fcalc.yaml" is
// looked up in the working directory and its absence is not an error.
func Load(path string) (*Config, error) {
	loadEnvFile(".env")

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("FCALC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("fcalc")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile loads path into the environment when it exists. Variables
// already set win.
func loadEnvFile(path string) {
	if _, err := os.Stat(path); err == nil {
		_ = godotenv.Load(path)
	}
}

// Validate checks the values Load cannot default.
func (c *Config) Validate() error {
	var errs []error
	if c.FX.URL == "" {
		errs = append(errs, errors.New("fx.url is required"))
	}
	if c.FX.Timeout <= 0 {
		errs = append(errs, errors.New("fx.timeout must be positive"))
	}
	if c.Currency.Local == "" || c.Currency.Foreign == "" {
		errs = append(errs, errors.New("currency.local and currency.foreign are required"))
	}
	if !pair(c.Currency.Local, c.Currency.Foreign, c.FX.Base, c.FX.Quote) {
		errs = append(errs, fmt.Errorf("currency.local and currency.foreign (%s, %s) must be the fx.base and fx.quote pair (%s, %s)",
			c.Currency.Local, c.Currency.Foreign, c.FX.Base, c.FX.Quote))
	}
	if c.Session.Debounce <= 0 {
		errs = append(errs, errors.New("session.debounce must be positive"))
	}
	return errors.Join(errs...)
}

// pair reports whether a and b are the currencies of the base/quote rate,
// in either order.
func pair(a, b, base, quote string) bool {
	return (a == base && b == quote) || (a == quote && b == base)
}
