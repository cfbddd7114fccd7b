package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingSecret: без SECRET_KEY куки сессии подписывать нечем.
var ErrMissingSecret = errors.New("SECRET_KEY is not set")

// Config: все настройки процесса. Источники по приоритету:
// переменные окружения > .env > файл конфигурации > значения по умолчанию.
type Config struct {
	Env       string `mapstructure:"env"`
	Host      string `mapstructure:"host"`
	Port      string `mapstructure:"port"`
	SecretKey string `mapstructure:"secret_key"`

	DatabaseURL    string `mapstructure:"database_url"`
	DBMaxOpenConns int    `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns int    `mapstructure:"db_max_idle_conns"`

	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	CookieSecure      bool          `mapstructure:"cookie_secure"`
	SessionMaxAge     time.Duration `mapstructure:"session_max_age"`
	AllowAdminContact bool          `mapstructure:"allow_admin_contact"`
	LoginRateLimit    int           `mapstructure:"login_rate_limit"`
	BcryptCost        int           `mapstructure:"bcrypt_cost"`
}

var defaults = map[string]any{
	"env":                 "development",
	"host":                "127.0.0.1",
	"port":                "8080",
	"database_url":        "sqlite:castingcall.db",
	"db_max_open_conns":   10,
	"db_max_idle_conns":   5,
	"log_level":           "info",
	"log_format":          "console",
	"cookie_secure":       false,
	"session_max_age":     7 * 24 * time.Hour,
	"allow_admin_contact": false,
	"login_rate_limit":    30,
	"bcrypt_cost":         10,
}

// Load читает .env (если есть), затем файл cfgFile (если задан) и окружение.
func Load(cfgFile string) (*Config, error) {
	// .env опционален: в контейнере переменные приходят снаружи
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	// AutomaticEnv не видит ключи без значений по умолчанию при Unmarshal
	for _, k := range []string{"secret_key", "admin_username", "admin_password"} {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", k, err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет значения, без которых сервер запускать нельзя.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SecretKey) == "" {
		return ErrMissingSecret
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is empty")
	}
	if c.Port == "" {
		return errors.New("PORT is empty")
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be positive, got %s", c.SessionMaxAge)
	}
	if c.LoginRateLimit < 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must not be negative, got %d", c.LoginRateLimit)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be within 4..31, got %d", c.BcryptCost)
	}
	return nil
}

// Addr: адрес для http.Server.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
