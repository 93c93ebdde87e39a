package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds application level configuration loaded from a TOML file and
// environment variables.
type Config struct {
	App      AppConfig      `toml:"app"`
	Auth     AuthConfig     `toml:"auth"`
	MySQL    MySQLConfig    `toml:"mysql"`
	Redis    RedisConfig    `toml:"redis"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
	Log      LogConfig      `toml:"log"`
	Swagger  SwaggerConfig  `toml:"swagger"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	ResetDB bool   `toml:"reset_db"`
}

type AuthConfig struct {
	JWTSecret           string `toml:"jwt_secret"`
	TokenTTLMinutes     int    `toml:"token_ttl_minutes"`
	HashAlgorithm       string `toml:"hash_algorithm"`
	BcryptCost          int    `toml:"bcrypt_cost"`
	UnifyLoginErrors    bool   `toml:"unify_login_errors"`
	LoginMaxFailures    int    `toml:"login_max_failures"`
	LoginLockoutMinutes int    `toml:"login_lockout_minutes"`
}

type MySQLConfig struct {
	DSN      string `toml:"dsn"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DB       string `toml:"db"`
	Params   string `toml:"params"`
}

type RedisConfig struct {
	Addr                string `toml:"addr"`
	Password            string `toml:"password"`
	DB                  int    `toml:"db"`
	UserCacheTTLSeconds int    `toml:"user_cache_ttl_seconds"`
}

// RabbitMQConfig configures user event publishing. An empty URL disables it.
type RabbitMQConfig struct {
	URL         string `toml:"url"`
	EventsQueue string `toml:"events_queue"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type SwaggerConfig struct {
	Enabled bool   `toml:"enabled"`
	Host    string `toml:"host"`
}

// Load builds Config from defaults, the optional CONFIG_FILE and the environment.
func Load() (*Config, error) {
	cfg := Default()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file %s: %w", configPath, err)
		}
	}

	overrideByEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns development defaults.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name: "userauth",
			Env:  "dev",
			Host: "0.0.0.0",
			Port: 8080,
		},
		Auth: AuthConfig{
			JWTSecret:           defaultJWTSecret,
			TokenTTLMinutes:     24 * 60,
			HashAlgorithm:       "bcrypt",
			BcryptCost:          10,
			LoginMaxFailures:    5,
			LoginLockoutMinutes: 15,
		},
		MySQL: MySQLConfig{
			Host:   "127.0.0.1",
			Port:   3306,
			User:   "root",
			DB:     "userauth",
			Params: "charset=utf8mb4&parseTime=True&loc=Local",
		},
		Redis: RedisConfig{
			Addr:                "localhost:6379",
			UserCacheTTLSeconds: 300,
		},
		RabbitMQ: RabbitMQConfig{
			EventsQueue: "user.events",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Swagger: SwaggerConfig{
			Enabled: true,
		},
	}
}

// defaultJWTSecret is the development placeholder rejected in production.
const defaultJWTSecret = "change-me"

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty")
	}
	if c.IsProduction() && c.Auth.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("auth.jwt_secret must be changed from the default in production")
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		return fmt.Errorf("auth.token_ttl_minutes must be positive")
	}
	switch c.Auth.HashAlgorithm {
	case "bcrypt", "argon2id":
	default:
		return fmt.Errorf("auth.hash_algorithm %q is not supported", c.Auth.HashAlgorithm)
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("app.port %d out of range", c.App.Port)
	}
	return nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

// MySQLDSN returns the explicit DSN when set, otherwise one assembled from parts.
func (c *Config) MySQLDSN() string {
	if c.MySQL.DSN != "" {
		return c.MySQL.DSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.MySQL.User,
		c.MySQL.Password,
		c.MySQL.Host,
		c.MySQL.Port,
		c.MySQL.DB,
		c.MySQL.Params,
	)
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

func (c *Config) LoginLockout() time.Duration {
	return time.Duration(c.Auth.LoginLockoutMinutes) * time.Minute
}

func (c *Config) UserCacheTTL() time.Duration {
	return time.Duration(c.Redis.UserCacheTTLSeconds) * time.Second
}

// IsProduction reports whether the app runs with production logging and defaults.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "prod") || strings.EqualFold(c.App.Env, "production")
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvInt("APP_PORT", getEnvInt("SERVER_PORT", cfg.App.Port))
	cfg.App.ResetDB = getEnvBool("RESET_DB", cfg.App.ResetDB)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.TokenTTLMinutes = getEnvInt("JWT_TTL_MINUTES", cfg.Auth.TokenTTLMinutes)
	cfg.Auth.HashAlgorithm = getEnv("AUTH_HASH_ALGORITHM", cfg.Auth.HashAlgorithm)
	cfg.Auth.BcryptCost = getEnvInt("AUTH_BCRYPT_COST", cfg.Auth.BcryptCost)
	cfg.Auth.UnifyLoginErrors = getEnvBool("AUTH_UNIFY_LOGIN_ERRORS", cfg.Auth.UnifyLoginErrors)
	cfg.Auth.LoginMaxFailures = getEnvInt("AUTH_LOGIN_MAX_FAILURES", cfg.Auth.LoginMaxFailures)
	cfg.Auth.LoginLockoutMinutes = getEnvInt("AUTH_LOGIN_LOCKOUT_MINUTES", cfg.Auth.LoginLockoutMinutes)

	cfg.MySQL.DSN = getEnv("MYSQL_DSN", cfg.MySQL.DSN)
	cfg.MySQL.Host = getEnv("MYSQL_HOST", cfg.MySQL.Host)
	cfg.MySQL.Port = getEnvInt("MYSQL_PORT", cfg.MySQL.Port)
	cfg.MySQL.User = getEnv("MYSQL_USER", cfg.MySQL.User)
	cfg.MySQL.Password = getEnv("MYSQL_PASSWORD", cfg.MySQL.Password)
	cfg.MySQL.DB = getEnv("MYSQL_DB", cfg.MySQL.DB)
	cfg.MySQL.Params = getEnv("MYSQL_PARAMS", cfg.MySQL.Params)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.UserCacheTTLSeconds = getEnvInt("REDIS_USER_CACHE_TTL_SECONDS", cfg.Redis.UserCacheTTLSeconds)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.EventsQueue = getEnv("RABBITMQ_EVENTS_QUEUE", cfg.RabbitMQ.EventsQueue)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	cfg.Swagger.Enabled = getEnvBool("SWAGGER_ENABLED", cfg.Swagger.Enabled)
	cfg.Swagger.Host = getEnv("SWAGGER_HOST", cfg.Swagger.Host)
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}
