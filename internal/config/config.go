package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
	AI        AIConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// MongoDBConfig holds settings for the state snapshot store.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud
// API. The messaging channel is optional; it activates only when credentials
// are present.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
	BaseURL       string
	APIVersion    string
	OwnerNumber   string
}

// Enabled reports whether the messaging channel is configured.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" || c.PhoneNumberID != "" || c.VerifyToken != ""
}

// SheetsConfig contains configuration for the optional spreadsheet mirror.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the spreadsheet mirror is configured.
func (c SheetsConfig) Enabled() bool {
	return c.CredentialsPath != "" || c.SpreadsheetID != ""
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// AIConfig holds settings for the free-text command translator.
type AIConfig struct {
	AnthropicKey string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from the
		// environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "poultrybooks"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:   os.Getenv("META_VERIFY_TOKEN"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			OwnerNumber:   os.Getenv("WHATSAPP_OWNER_NUMBER"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_SPREADSHEET_ID"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Asia/Karachi"),
		},
		AI: AIConfig{
			AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures required fields are populated and that optional
// integrations are either fully configured or fully absent.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}
	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.AccessToken == "":
			return errors.New("WHATSAPP_TOKEN must be provided when messaging is configured")
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided when messaging is configured")
		case c.WhatsApp.VerifyToken == "":
			return errors.New("META_VERIFY_TOKEN must be provided when messaging is configured")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if c.Sheets.Enabled() {
		if c.Sheets.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided when the mirror is configured")
		}
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("GOOGLE_SHEET_SPREADSHEET_ID must be provided when the mirror is configured")
		}
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}
	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
