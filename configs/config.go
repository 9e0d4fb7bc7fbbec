package config

import (
	"os"
	"strings"
	"time"
)

type AppConfig struct {
	Env           string
	Port          string
	SessionSecret string
	DatabaseURL   string
	OAuth         OAuthConfig
}

// OAuthConfig holds the identity provider settings used by the login flow.
type OAuthConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Configured reports whether enough is set to start a login.
func (c OAuthConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type AfricaTalkingConfig struct {
	Username    string
	APIKey      string
	SMSURL      string
	SenderID    string
	CountryCode string
	Timeout     time.Duration
}

type EmailConfig struct {
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	SenderEmail        string
}

const DefaultSessionSecret = "change-me"

func Load() AppConfig {
	return AppConfig{
		Env:           getEnvOrDefault("APP_ENV", "local"),
		Port:          getEnvOrDefault("PORT", "8080"),
		SessionSecret: firstEnv(DefaultSessionSecret, "SESSION_SECRET", "SECRET_KEY"),
		DatabaseURL:   getEnvOrDefault("DATABASE_URL", "sqlite://orderapp.db"),
		OAuth: OAuthConfig{
			Issuer:       getEnvOrDefault("OIDC_ISSUER", "https://accounts.google.com"),
			ClientID:     firstEnv("", "OIDC_CLIENT_ID", "GOOGLE_CLIENT_ID", "CLIENT_ID"),
			ClientSecret: firstEnv("", "OIDC_CLIENT_SECRET", "GOOGLE_CLIENT_SECRET", "CLIENT_SECRET"),
			RedirectURL:  getEnvOrDefault("OIDC_REDIRECT_URL", "http://localhost:8080/callback"),
		},
	}
}

func LoadAfricaTalkingConfig() AfricaTalkingConfig {
	return AfricaTalkingConfig{
		Username:    firstEnv("", "AT_USERNAME", "AFRICASTALKING_USERNAME"),
		APIKey:      firstEnv("", "AT_API_KEY", "AFRICASTALKING_API_KEY"),
		SMSURL:      getEnvOrDefault("AT_SMS_URL", "https://api.africastalking.com/version1/messaging"),
		SenderID:    os.Getenv("AT_SENDER_ID"),
		CountryCode: getEnvOrDefault("AT_COUNTRY_CODE", "254"),
		Timeout:     getDurationOrDefault("AT_TIMEOUT", 30*time.Second),
	}
}

func LoadEmailConfig() EmailConfig {
	return EmailConfig{
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AWSRegion:          getEnvOrDefault("AWS_REGION", "us-east-1"),
		SenderEmail:        os.Getenv("AWS_SENDER_ADDRESS"),
	}
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c AppConfig) IsProduction() bool {
	switch strings.ToLower(c.Env) {
	case "production", "prod":
		return true
	}
	return false
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

// firstEnv returns the first non-empty variable among keys.
func firstEnv(defaultValue string, keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
