package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API     APIConfig
	Storage StorageConfig
	Auth    AuthConfig
	Log     LogConfig
	UI      UIConfig
}

// APIConfig points at the course-enrollment backend.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StorageConfig holds the sqlite file that keeps the credential.
type StorageConfig struct {
	Path       string
	Passphrase string
}

// AuthConfig selects how the client derives identity from a credential:
// none (decode only), hmac (verify with Secret) or introspect (ask the backend).
type AuthConfig struct {
	Verify string
	Secret string
}

// LogConfig holds logging settings. The terminal belongs to the TUI, so logs go to a file.
type LogConfig struct {
	Level string
	Path  string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	AltScreen bool `mapstructure:"alt_screen"`
}

// Load reads configuration from file and env. Env var overrides use prefix COURSEDESK_.
// Callers apply flag overrides and then Validate.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("COURSEDESK_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(homeDir(), ".config", "coursedesk"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("COURSEDESK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// a missing default config file is fine; a missing explicit one is not
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgPath != "" {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Validate rejects settings the client cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("config: api.base_url is required")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("config: api.base_url must be http(s), got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("config: api.timeout must be positive")
	}
	switch strings.ToLower(c.Auth.Verify) {
	case "none", "introspect":
	case "hmac":
		if c.Auth.Secret == "" {
			return fmt.Errorf("config: auth.verify=hmac requires auth.secret")
		}
	default:
		return fmt.Errorf("config: unknown auth.verify %q", c.Auth.Verify)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	dataDir := filepath.Join(homeDir(), ".local", "share", "coursedesk")
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("storage.path", filepath.Join(dataDir, "coursedesk.db"))
	v.SetDefault("storage.passphrase", "")
	v.SetDefault("auth.verify", "none")
	v.SetDefault("auth.secret", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", filepath.Join(dataDir, "coursedesk.log"))
	v.SetDefault("ui.alt_screen", true)
}

func homeDir() string {
	if h := os.Getenv("HOME"); h != "" {
		return h
	}
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return "."
}
