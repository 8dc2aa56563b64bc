package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Spot-rate configuration sources.
const (
	SourceAPI  = "api"
	SourceDB   = "db"
	SourceFile = "file"
)

type Config struct {
	// Session
	AdminID         string
	AdminAPIURL     string
	ConfigSource    string
	CommoditiesFile string

	// Feed
	FeedURL       string
	SocketSecret  string
	Symbols       []string
	ReconnectBase time.Duration
	ReconnectMax  time.Duration
	ReadTimeout   time.Duration
	TickBuffer    int

	// Pricing
	CurrencyPeg    float64
	CurrencyCode   string
	CurrencyAPIURL string

	// Display
	RefreshInterval time.Duration
	BoardEnabled    bool
	BoardClear      bool

	// REST API
	APIPort         int
	APIKey          string
	CORSAllowOrigin string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// Notifications
	WebhookURL string
	BotName    string

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AdminID:         envStr("ADMIN_ID", ""),
		AdminAPIURL:     strings.TrimRight(envStr("ADMIN_API_URL", "https://api.aurify.ae/user"), "/"),
		ConfigSource:    strings.ToLower(envStr("CONFIG_SOURCE", SourceAPI)),
		CommoditiesFile: envStr("COMMODITIES_FILE", "commodities.yaml"),

		FeedURL:       envStr("FEED_URL", ""),
		SocketSecret:  envStr("SOCKET_SECRET", ""),
		Symbols:       envList("SYMBOLS", []string{"GOLD", "SILVER"}),
		ReconnectBase: envMillis("RECONNECT_BASE_MS", 1000),
		ReconnectMax:  envMillis("RECONNECT_MAX_MS", 30000),
		ReadTimeout:   time.Duration(envInt("READ_TIMEOUT_SECONDS", 30)) * time.Second,
		TickBuffer:    envInt("TICK_BUFFER", 256),

		CurrencyPeg:    envFloat("CURRENCY_PEG", 3.64),
		CurrencyCode:   strings.ToUpper(envStr("CURRENCY_CODE", "AED")),
		CurrencyAPIURL: envStr("CURRENCY_API_URL", ""),

		RefreshInterval: envMillis("REFRESH_INTERVAL_MS", 1000),
		BoardEnabled:    envBool("BOARD_ENABLED", true),
		BoardClear:      envBool("BOARD_CLEAR", true),

		APIPort:         envInt("API_PORT", 3001),
		APIKey:          envStr("API_KEY", ""),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		DBHost:     envStr("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBName:     envStr("DB_NAME", "honor_tv"),
		DBUser:     envStr("DB_USER", ""),
		DBPassword: envStr("DB_PASSWORD", ""),

		WebhookURL: envStr("WEBHOOK_URL", ""),
		BotName:    envStr("BOT_NAME", "HonorTV"),

		LogLevel:  envStr("LOG_LEVEL", "info"),
		LogFormat: envStr("LOG_FORMAT", "text"),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	switch c.ConfigSource {
	case SourceAPI, SourceDB:
		if c.AdminID == "" {
			errs = append(errs, "ADMIN_ID is required for CONFIG_SOURCE="+c.ConfigSource)
		}
	case SourceFile:
		if c.CommoditiesFile == "" {
			errs = append(errs, "COMMODITIES_FILE is required for CONFIG_SOURCE=file")
		}
	default:
		errs = append(errs, fmt.Sprintf("CONFIG_SOURCE must be one of api, db, file (got %q)", c.ConfigSource))
	}
	if c.ConfigSource == SourceDB && c.DBUser == "" {
		errs = append(errs, "DB_USER is required for CONFIG_SOURCE=db")
	}
	if c.ConfigSource == SourceFile && c.FeedURL == "" {
		errs = append(errs, "FEED_URL is required when there is no admin API to discover it")
	}
	if len(c.Symbols) == 0 {
		errs = append(errs, "SYMBOLS must list at least one symbol")
	}
	if c.CurrencyPeg <= 0 {
		errs = append(errs, "CURRENCY_PEG must be positive")
	}
	if c.ReconnectMax < c.ReconnectBase {
		errs = append(errs, "RECONNECT_MAX_MS must be >= RECONNECT_BASE_MS")
	}

	if c.SocketSecret == "" {
		log.Warn("SOCKET_SECRET not set, quote server may reject the connection")
	}
	if c.APIKey == "" {
		log.Warn("API_KEY not set, REST API has no authentication")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== Honor TV Spot Rate Configuration ===")
	fmt.Printf("Admin: %s\n", boolLabel(c.AdminID != "", c.AdminID, "(none)"))
	fmt.Printf("Config source: %s\n", c.ConfigSource)
	if c.ConfigSource == SourceFile {
		fmt.Printf("  File: %s\n", c.CommoditiesFile)
	} else {
		fmt.Printf("  Admin API: %s\n", c.AdminAPIURL)
	}
	fmt.Println("--------------------------------------")
	fmt.Printf("Feed: %s\n", boolLabel(c.FeedURL != "", c.FeedURL, "discovered via admin API"))
	fmt.Printf("  Symbols: %s\n", strings.Join(c.Symbols, ", "))
	fmt.Printf("  Secret: %s\n", boolLabel(c.SocketSecret != "", "configured", "not set"))
	fmt.Printf("  Reconnect: %s .. %s\n", c.ReconnectBase, c.ReconnectMax)
	fmt.Println("--------------------------------------")
	fmt.Printf("Currency peg: %.4f (%s)\n", c.CurrencyPeg, c.CurrencyCode)
	fmt.Printf("Refresh: every %s\n", c.RefreshInterval)
	fmt.Printf("REST API port: %d\n", c.APIPort)
	fmt.Printf("Webhook: %s\n", boolLabel(c.WebhookURL != "", "configured", "not set"))
	fmt.Println("======================================")
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(v)
		return v == "true" || v == "1" || v == "yes"
	}
	return fallback
}

func envMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
