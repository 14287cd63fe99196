package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName        string        `mapstructure:"app_name"`
	Env            string        `mapstructure:"app_env"`
	LogLevel       string        `mapstructure:"log_level"`
	BaseAddress    string        `mapstructure:"base_address"`
	ProfilesFile   string        `mapstructure:"profiles_file"`
	Profile        string        `mapstructure:"profile"`
	TimeoutSeconds int64         `mapstructure:"timeout_seconds"`
	Timeout        time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "apiconn")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "warn")
	v.SetDefault("base_address", "")
	v.SetDefault("profiles_file", "")
	v.SetDefault("profile", "")
	v.SetDefault("timeout_seconds", 100)

	v.SetEnvPrefix("apiconn")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid timeout_seconds (must be positive seconds)")
	}
	cfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second

	cfg.BaseAddress = strings.TrimSpace(cfg.BaseAddress)
	cfg.Profile = strings.TrimSpace(cfg.Profile)
	if cfg.Profile != "" && strings.TrimSpace(cfg.ProfilesFile) == "" {
		return nil, fmt.Errorf("profile %q set but profiles_file is empty", cfg.Profile)
	}

	return &cfg, nil
}
