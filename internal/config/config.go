package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Reset    ResetConfig
	Mailer   MailerConfig
	CORS     CORSConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string
	Port string
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds token signing configuration.
// A single signing key covers all token kinds; the type claim
// discriminates access, refresh and password-reset tokens.
type JWTConfig struct {
	SigningKey      string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
	Audience        string
}

// ResetConfig holds password-reset flow configuration
type ResetConfig struct {
	TokenTTL time.Duration
	// BaseURL is the reset page the emailed link points at;
	// the token is appended as a query parameter.
	BaseURL string
}

// MailerConfig holds outbound SMTP configuration
type MailerConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	// Enabled disables outbound delivery entirely when false
	// (reset tokens are still persisted).
	Enabled bool
}

// CORSConfig holds allowed browser origins
type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "user_management"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SigningKey:      getEnv("JWT_SIGNING_KEY", ""),
			AccessTokenTTL:  getDurationEnv("JWT_ACCESS_TTL_SECONDS", 15*time.Minute),
			RefreshTokenTTL: getDurationEnv("JWT_REFRESH_TTL_SECONDS", 30*24*time.Hour),
			Issuer:          getEnv("JWT_ISSUER", "https://houseofllm.com"),
			Audience:        getEnv("JWT_AUDIENCE", "EMAIL_SERVER"),
		},
		Reset: ResetConfig{
			TokenTTL: getDurationEnv("RESET_TOKEN_TTL_SECONDS", 1800*time.Second),
			BaseURL:  getEnv("RESET_BASE_URL", "http://localhost:8080/reset-password?token="),
		},
		Mailer: MailerConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@houseofllm.com"),
			Enabled:  getBoolEnv("SMTP_ENABLED", true),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:3000")},
		},
	}
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return "host=" + d.Host +
		" port=" + d.Port +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.DBName +
		" sslmode=" + d.SSLMode
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv returns a duration in seconds from an environment variable or default
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

// getBoolEnv returns a boolean from an environment variable or default
func getBoolEnv(key string, defaultValue bool) bool {
	switch os.Getenv(key) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultValue
}
