package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the configuration struct for the service.
type Config struct {
	// Market represents the tracked market.
	Market string
	// Timeframe is the tracked candle timeframe ("5m" or "1H").
	Timeframe string
	// FMPAPIKey is the FMP service API Key.
	FMPAPIKey string
	// LookbackDays is the number of days of candle data fetched per cycle.
	LookbackDays int
	// FetchIntervalMinutes is the interval between scheduled fetch cycles.
	FetchIntervalMinutes int
	// RqliteEndpoint represents the database connection endpoint.
	RqliteEndpoint string
	// RqliteUser is the database user.
	RqliteUser string
	// RqlitePass is the database user pass.
	RqlitePass string
	// TelegramToken is the telegram bot token. Leaving it empty disables
	// notifications.
	TelegramToken string
	// TelegramChatID is the id of the chat notifications are posted to.
	TelegramChatID int
	// NotifyMaxAttempts is the maximum number of notification dispatch attempts.
	NotifyMaxAttempts int
	// NotifyRetryDelaySeconds is the fixed delay between dispatch attempts.
	NotifyRetryDelaySeconds int
	// ListenAddr is the address the web server listens on.
	ListenAddr string

	registeredFlags map[string]bool
}

// Validate asserts the config has sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	if cfg.Market == "" {
		errs = errors.Join(errs, fmt.Errorf("no market provided for scanner service"))
	}
	if cfg.Timeframe != "5m" && cfg.Timeframe != "1H" {
		errs = errors.Join(errs, fmt.Errorf("timeframe must be 5m or 1H, got %q", cfg.Timeframe))
	}
	if cfg.FMPAPIKey == "" {
		errs = errors.Join(errs, fmt.Errorf("fmp api key cannot be an empty string"))
	}
	if cfg.LookbackDays <= 0 {
		errs = errors.Join(errs, fmt.Errorf("lookback days must be positive"))
	}
	if cfg.FetchIntervalMinutes <= 0 {
		errs = errors.Join(errs, fmt.Errorf("fetch interval must be positive"))
	}
	if cfg.RqliteEndpoint == "" {
		errs = errors.Join(errs, fmt.Errorf("rqlite endpoint cannot be an empty string"))
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		errs = errors.Join(errs, fmt.Errorf("telegram chat id cannot be zero when a token is set"))
	}
	if cfg.NotifyMaxAttempts <= 0 {
		errs = errors.Join(errs, fmt.Errorf("notify max attempts must be positive"))
	}
	if cfg.ListenAddr == "" {
		errs = errors.Join(errs, fmt.Errorf("listen address cannot be an empty string"))
	}

	return errs
}

// registerFlag registers command line arguments of any type and tracks them to avoid reregistration.
func (cfg *Config) registerFlag(name string, value interface{}, usage string) error {
	if cfg.registeredFlags == nil {
		cfg.registeredFlags = make(map[string]bool)
	}

	if cfg.registeredFlags[name] {
		return nil
	}

	cfg.registeredFlags[name] = true

	defValue := os.Getenv(name)
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("%s: value must be a non-nil pointer", name)
	}

	switch val.Elem().Kind() {
	case reflect.String:
		flag.StringVar(value.(*string), name, defValue, usage)
	case reflect.Bool:
		var def bool
		if defValue != "" {
			def, _ = strconv.ParseBool(defValue)
		}
		flag.BoolVar(value.(*bool), name, def, usage)
	case reflect.Int:
		var def int
		if defValue != "" {
			def, _ = strconv.Atoi(defValue)
		}
		flag.IntVar(value.(*int), name, def, usage)
	default:
		return fmt.Errorf("%s: unsupported type", name)
	}

	return nil
}

// loadConfig loads the configuration from environment variables and command line flags.
func loadConfig(cfg *Config, path string) error {
	if path == "" {
		path = ".env"
	}

	// Check if the expected .env file exists before loading it.
	_, err := os.Stat(path)
	if err == nil {
		err := godotenv.Load(path)
		if err != nil {
			return fmt.Errorf("loading .env file: %w", err)
		}
	}

	// Register command line arguments using loaded environment variables as defaults.
	flags := []struct {
		name  string
		value interface{}
		usage string
	}{
		{"market", &cfg.Market, "the tracked market"},
		{"timeframe", &cfg.Timeframe, "the tracked candle timeframe (5m or 1H)"},
		{"fmpapikey", &cfg.FMPAPIKey, "the FMP api key"},
		{"lookbackdays", &cfg.LookbackDays, "the days of candle data fetched per cycle"},
		{"fetchintervalminutes", &cfg.FetchIntervalMinutes, "the interval between fetch cycles"},
		{"rqliteendpoint", &cfg.RqliteEndpoint, "the rqlite connection endpoint"},
		{"rqliteuser", &cfg.RqliteUser, "the rqlite user"},
		{"rqlitepass", &cfg.RqlitePass, "the rqlite user pass"},
		{"telegramtoken", &cfg.TelegramToken, "the telegram bot token"},
		{"telegramchatid", &cfg.TelegramChatID, "the telegram chat id"},
		{"notifymaxattempts", &cfg.NotifyMaxAttempts, "the maximum notification dispatch attempts"},
		{"notifyretrydelayseconds", &cfg.NotifyRetryDelaySeconds, "the delay between dispatch attempts"},
		{"listenaddr", &cfg.ListenAddr, "the web server listen address"},
	}

	for idx := range flags {
		err := cfg.registerFlag(flags[idx].name, flags[idx].value, flags[idx].usage)
		if err != nil {
			return err
		}
	}

	// Parse command-line flags.
	flag.Parse()

	defaultString(&cfg.Timeframe, "5m")
	defaultInt(&cfg.LookbackDays, 5)
	defaultInt(&cfg.FetchIntervalMinutes, 5)
	defaultString(&cfg.RqliteEndpoint, "http://localhost:4001")
	defaultInt(&cfg.NotifyMaxAttempts, 3)
	defaultInt(&cfg.NotifyRetryDelaySeconds, 5)
	defaultString(&cfg.ListenAddr, ":8080")

	return cfg.Validate()
}

// defaultString sets the provided string field to a default when unset.
func defaultString(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

// defaultInt sets the provided int field to a default when unset.
func defaultInt(field *int, def int) {
	if *field == 0 {
		*field = def
	}
}
