package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database    DatabaseConfig
	Suggestions SuggestionsConfig
	UI          UIConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// SuggestionsConfig holds recommendation settings.
type SuggestionsConfig struct {
	// Limit caps the number of names kept per suggestion bucket.
	Limit int
	// FallbackColor is used when a category has no stored color.
	FallbackColor string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	DateFormat     string
	CurrencySymbol string
}

// Load reads configuration from file and env. Env var overrides use prefix PENNYPOST_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "pennypost", "pennypost.db"))
	v.SetDefault("suggestions.limit", 40)
	v.SetDefault("suggestions.fallback_color", "#7f849c")
	v.SetDefault("ui.date_format", "02/01")
	v.SetDefault("ui.currency_symbol", "$")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("PENNYPOST_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "pennypost"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("PENNYPOST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// Used for non-sensitive preferences edited from the picker.
func Save(cfg Config) error {
	path := os.Getenv("PENNYPOST_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "pennypost", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("suggestions.limit", cfg.Suggestions.Limit)
	v.Set("suggestions.fallback_color", cfg.Suggestions.FallbackColor)
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)

	// write to a sibling temp file, then rename, so a crash mid-write never
	// leaves a truncated config behind. The temp name keeps the extension
	// because viper picks the output format from it.
	ext := filepath.Ext(path)
	tmp := strings.TrimSuffix(path, ext) + ".tmp" + ext
	if err := v.WriteConfigAs(tmp); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
