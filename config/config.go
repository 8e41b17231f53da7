package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
}

// IsConfigured returns true if all required Google configuration is present
func (c GoogleConfig) IsConfigured() bool {
	return c.ClientID != "" &&
		c.ClientSecret != ""
}

type MicrosoftConfig struct {
	ClientID string
	TenantID string // Optional with default "common"
}

// IsConfigured returns true if all required Microsoft configuration is present
func (c MicrosoftConfig) IsConfigured() bool {
	return c.ClientID != ""
}

type AnthropicConfig struct {
	APIKey string
	Model  string // Optional, the client falls back to a default model
}

// IsConfigured returns true if all required Anthropic configuration is present
func (c AnthropicConfig) IsConfigured() bool {
	return c.APIKey != ""
}

type ClerkConfig struct {
	SecretKey string
}

// IsConfigured returns true if all required Clerk configuration is present
func (c ClerkConfig) IsConfigured() bool {
	return c.SecretKey != ""
}

type SlackConfig struct {
	AlertWebhookURL string
}

type AppConfig struct {
	// Core configuration (always required)
	DatabaseURL        string
	DatabaseSchema     string
	Port               string // Optional with default "8080"
	CORSAllowedOrigins string // Optional with default "*"
	Environment        string
	ServerLogsURL      string
	UseStrictConfig    bool // If true, error when any integration is not fully configured

	// Integration configurations (grouped)
	GoogleConfig    GoogleConfig
	MicrosoftConfig MicrosoftConfig
	AnthropicConfig AnthropicConfig
	ClerkConfig     ClerkConfig
	SlackConfig     SlackConfig
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️ Could not load .env file, continuing with system env vars")
	}

	// Core required configuration
	databaseURL, err := getEnvRequired("DB_URL")
	if err != nil {
		return nil, err
	}

	databaseSchema, err := getEnvRequired("DB_SCHEMA")
	if err != nil {
		return nil, err
	}

	config := &AppConfig{
		// Core configuration
		DatabaseURL:        databaseURL,
		DatabaseSchema:     databaseSchema,
		Port:               getEnvWithDefault("PORT", "8080"),
		CORSAllowedOrigins: getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*"),
		Environment:        getEnvWithDefault("ENVIRONMENT", "dev"),
		ServerLogsURL:      getEnvWithDefault("SERVER_LOGS_URL", ""),
		UseStrictConfig:    getEnvWithDefault("USE_STRICT_CONFIG", "true") == "true",

		// Google configuration (optional)
		GoogleConfig: GoogleConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		},

		// Microsoft configuration (optional)
		MicrosoftConfig: MicrosoftConfig{
			ClientID: os.Getenv("MICROSOFT_CLIENT_ID"),
			TenantID: getEnvWithDefault("MICROSOFT_TENANT_ID", "common"),
		},

		// Anthropic configuration (optional)
		AnthropicConfig: AnthropicConfig{
			APIKey: os.Getenv("ANTHROPIC_API_KEY"),
			Model:  os.Getenv("ANTHROPIC_MODEL"),
		},

		// Clerk configuration (optional)
		ClerkConfig: ClerkConfig{
			SecretKey: os.Getenv("CLERK_SECRET_KEY"),
		},

		// Slack alerting (optional)
		SlackConfig: SlackConfig{
			AlertWebhookURL: os.Getenv("SLACK_ALERT_WEBHOOK_URL"),
		},
	}

	// Log which integrations are configured
	if config.GoogleConfig.IsConfigured() {
		log.Printf("✅ Google calendar integration configured")
	} else {
		log.Printf("⚠️ Google calendar integration not configured - Google features will be disabled")
		if config.UseStrictConfig {
			return nil, fmt.Errorf("google integration is not fully configured (USE_STRICT_CONFIG=true)")
		}
	}

	if config.MicrosoftConfig.IsConfigured() {
		log.Printf("✅ Microsoft calendar integration configured")
	} else {
		log.Printf("⚠️ Microsoft calendar integration not configured - Microsoft features will be disabled")
		if config.UseStrictConfig {
			return nil, fmt.Errorf("microsoft integration is not fully configured (USE_STRICT_CONFIG=true)")
		}
	}

	if config.AnthropicConfig.IsConfigured() {
		log.Printf("✅ Anthropic integration configured")
	} else {
		log.Printf("⚠️ Anthropic integration not configured - AI chat will be disabled")
		if config.UseStrictConfig {
			return nil, fmt.Errorf("anthropic integration is not fully configured (USE_STRICT_CONFIG=true)")
		}
	}

	if config.ClerkConfig.IsConfigured() {
		log.Printf("✅ Clerk authentication configured")
	} else {
		log.Printf("⚠️ Clerk authentication not configured - API authentication will be disabled")
		if config.UseStrictConfig {
			return nil, fmt.Errorf("clerk authentication is not fully configured (USE_STRICT_CONFIG=true)")
		}
	}

	return config, nil
}

func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set", key)
	}
	return value, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
