package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ADMIN_ID", "")
	t.Setenv("SYMBOLS", "")
	t.Setenv("CURRENCY_PEG", "")
	t.Setenv("REFRESH_INTERVAL_MS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SourceAPI, cfg.ConfigSource)
	assert.Equal(t, []string{"GOLD", "SILVER"}, cfg.Symbols)
	assert.Equal(t, 3.64, cfg.CurrencyPeg)
	assert.Equal(t, time.Second, cfg.RefreshInterval)
	assert.Equal(t, time.Second, cfg.ReconnectBase)
	assert.Equal(t, 30*time.Second, cfg.ReconnectMax)
	assert.Equal(t, 3001, cfg.APIPort)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ADMIN_ID", "admin-1")
	t.Setenv("ADMIN_API_URL", "http://admin.local/user/")
	t.Setenv("SYMBOLS", " gold , silver,,")
	t.Setenv("CURRENCY_PEG", "3.75")
	t.Setenv("REFRESH_INTERVAL_MS", "250")
	t.Setenv("BOARD_ENABLED", "no")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "admin-1", cfg.AdminID)
	assert.Equal(t, "http://admin.local/user", cfg.AdminAPIURL)
	assert.Equal(t, []string{"GOLD", "SILVER"}, cfg.Symbols)
	assert.Equal(t, 3.75, cfg.CurrencyPeg)
	assert.Equal(t, 250*time.Millisecond, cfg.RefreshInterval)
	assert.False(t, cfg.BoardEnabled)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("API_PORT", "not-a-port")
	t.Setenv("CURRENCY_PEG", "abc")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3001, cfg.APIPort)
	assert.Equal(t, 3.64, cfg.CurrencyPeg)
}

func validConfig() *Config {
	return &Config{
		AdminID:       "admin-1",
		ConfigSource:  SourceAPI,
		Symbols:       []string{"GOLD"},
		CurrencyPeg:   3.64,
		ReconnectBase: time.Second,
		ReconnectMax:  30 * time.Second,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing admin", func(c *Config) { c.AdminID = "" }, "ADMIN_ID"},
		{"unknown source", func(c *Config) { c.ConfigSource = "s3" }, "CONFIG_SOURCE"},
		{"db without user", func(c *Config) { c.ConfigSource = SourceDB }, "DB_USER"},
		{"file without feed", func(c *Config) {
			c.ConfigSource = SourceFile
			c.AdminID = ""
			c.CommoditiesFile = "c.yaml"
		}, "FEED_URL"},
		{"file with feed", func(c *Config) {
			c.ConfigSource = SourceFile
			c.AdminID = ""
			c.CommoditiesFile = "c.yaml"
			c.FeedURL = "ws://localhost:4000"
		}, ""},
		{"zero peg", func(c *Config) { c.CurrencyPeg = 0 }, "CURRENCY_PEG"},
		{"no symbols", func(c *Config) { c.Symbols = nil }, "SYMBOLS"},
		{"inverted backoff", func(c *Config) { c.ReconnectMax = time.Millisecond }, "RECONNECT_MAX_MS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: 5433, DBName: "n"}
	assert.Equal(t, "postgres://u:p@h:5433/n?sslmode=disable", cfg.DSN())
}
