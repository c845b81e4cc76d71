package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"http_server"`
	Database DatabaseConfig `mapstructure:"database"`
	Security SecurityConfig `mapstructure:"security" validate:"required"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Trust    TrustConfig    `mapstructure:"trust"`
	OTP      OTPConfig      `mapstructure:"otp"`
	AntiBot  AntiBotConfig  `mapstructure:"anti_bot"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

type SecurityConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	BCryptCost int           `mapstructure:"bcrypt_cost"`
}

// SMTPConfig configures outbound one-time-code mail.
type SMTPConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// RedisConfig configures the auth-surface rate limiter. Leaving Addr empty
// disables rate limiting entirely.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// TrustConfig points the trust evaluator at its external signal sources.
type TrustConfig struct {
	WhoisAPIURL  string        `mapstructure:"whois_api_url"`
	SearchURL    string        `mapstructure:"search_url"`
	CheckTimeout time.Duration `mapstructure:"check_timeout"`
}

type OTPConfig struct {
	CodeTTL     time.Duration `mapstructure:"code_ttl"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	MaxResends  int           `mapstructure:"max_resends"`
	Cooldown    time.Duration `mapstructure:"cooldown"`
}

// AntiBotConfig tunes the signup heuristics. When ChallengeEnabled is false
// the process is treated as a trusted execution context and no third-party
// challenge token is required.
type AntiBotConfig struct {
	MinFormDuration    time.Duration `mapstructure:"min_form_duration"`
	ChallengeEnabled   bool          `mapstructure:"challenge_enabled"`
	ChallengeVerifyURL string        `mapstructure:"challenge_verify_url"`
	ChallengeSecret    string        `mapstructure:"challenge_secret"`
	ChallengeMinScore  float64       `mapstructure:"challenge_min_score"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// ApplyDefaults fills the throttle and anti-bot knobs that have product-fixed
// defaults when the config file leaves them unset.
func (c *Config) ApplyDefaults() {
	if c.OTP.CodeTTL <= 0 {
		c.OTP.CodeTTL = 5 * time.Minute
	}
	if c.OTP.MaxAttempts <= 0 {
		c.OTP.MaxAttempts = 3
	}
	if c.OTP.MaxResends <= 0 {
		c.OTP.MaxResends = 2
	}
	if c.OTP.Cooldown <= 0 {
		c.OTP.Cooldown = 15 * time.Minute
	}
	if c.AntiBot.MinFormDuration <= 0 {
		c.AntiBot.MinFormDuration = 5 * time.Second
	}
	if c.AntiBot.ChallengeMinScore <= 0 {
		c.AntiBot.ChallengeMinScore = 0.5
	}
	if c.Security.TokenTTL <= 0 {
		c.Security.TokenTTL = 24 * time.Hour
	}
	if c.Trust.CheckTimeout <= 0 {
		c.Trust.CheckTimeout = 5 * time.Second
	}
	if c.SMTP.Timeout <= 0 {
		c.SMTP.Timeout = 10 * time.Second
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// LoadConfigFromEnv builds a Config purely from environment variables, used
// for container deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("PORT", 8080),
			BaseURL:           getEnv("BASE_URL", "http://localhost:8080"),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		Database: DatabaseConfig{
			Source:       getEnv("DATABASE_URL", ""),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		},
		Security: SecurityConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			BCryptCost: getEnvAsInt("BCRYPT_COST", 10),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Trust: TrustConfig{
			WhoisAPIURL: getEnv("TRUST_WHOIS_API_URL", "https://ipwhois.app/json"),
			SearchURL:   getEnv("TRUST_SEARCH_URL", "https://www.google.com/search"),
		},
		AntiBot: AntiBotConfig{
			ChallengeEnabled:   getEnv("CHALLENGE_ENABLED", "false") == "true",
			ChallengeVerifyURL: getEnv("CHALLENGE_VERIFY_URL", ""),
			ChallengeSecret:    getEnv("CHALLENGE_SECRET", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if len(c.JWTSecret) < 32 {
		return errors.New("jwt secret must be at least 32 characters")
	}
	return nil
}
