package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() *Config {
	return &Config{
		Server:    ServerConfig{Port: "8080"},
		MongoDB:   MongoDBConfig{URI: "mongodb://localhost:27017", DBName: "poultrybooks"},
		Reporting: ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "Asia/Karachi"},
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "poultrybooks", cfg.MongoDB.DBName)
	assert.Equal(t, "0 20 * * *", cfg.Reporting.CronSchedule)
	assert.Equal(t, "Asia/Karachi", cfg.Reporting.Timezone)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("MONGODB_DB_NAME", "poultry_test")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "poultry_test", cfg.MongoDB.DBName)
}

func TestValidateRequiredFields(t *testing.T) {
	cfg := baseConfig()
	require.NoError(t, cfg.Validate())

	cfg.MongoDB.URI = ""
	assert.Error(t, cfg.Validate())

	cfg = baseConfig()
	cfg.Reporting.CronSchedule = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateOptionalIntegrationsAllOrNothing(t *testing.T) {
	cfg := baseConfig()
	assert.False(t, cfg.WhatsApp.Enabled())
	require.NoError(t, cfg.Validate())

	// A partially configured channel fails loudly instead of half-working.
	cfg.WhatsApp = WhatsAppConfig{VerifyToken: "hunter2", BaseURL: "https://graph.facebook.com", APIVersion: "v20.0"}
	assert.True(t, cfg.WhatsApp.Enabled())
	assert.Error(t, cfg.Validate())

	cfg.WhatsApp.AccessToken = "token"
	cfg.WhatsApp.PhoneNumberID = "123"
	assert.NoError(t, cfg.Validate())

	cfg.Sheets = SheetsConfig{SpreadsheetID: "sheet-id"}
	assert.Error(t, cfg.Validate())
	cfg.Sheets.CredentialsPath = "/etc/creds.json"
	assert.NoError(t, cfg.Validate())
}
