package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/dnldd/fvgscan/database"
	"github.com/dnldd/fvgscan/fetch"
	"github.com/dnldd/fvgscan/fvg"
	"github.com/dnldd/fvgscan/notify"
	"github.com/dnldd/fvgscan/shared"
	"github.com/dnldd/fvgscan/web"
)

// ScannerConfig represents the configuration struct for the scanner service.
type ScannerConfig struct {
	// Market is the id of the tracked market.
	Market string
	// Timeframe is the tracked candle timeframe.
	Timeframe shared.Timeframe
	// FMPAPIKey is the FMP service API Key.
	FMPAPIKey string
	// FMPBaseURL is the FMP API base url. Leaving it empty selects the
	// production url.
	FMPBaseURL string
	// LookbackDays is the number of days of candle data fetched per cycle.
	LookbackDays uint32
	// FetchIntervalMinutes is the interval between scheduled fetch cycles.
	FetchIntervalMinutes uint32
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
	TelegramChatID int64
	// NotifyRetryPolicy bounds notification dispatch attempts.
	NotifyRetryPolicy notify.RetryPolicy
	// ListenAddr is the address the web server listens on.
	ListenAddr string
	// Cancel is the context cancellation function.
	Cancel context.CancelFunc
}

// Validate asserts the config has sane inputs.
func (cfg *ScannerConfig) Validate() error {
	var errs error

	if cfg.Market == "" {
		errs = errors.Join(errs, fmt.Errorf("no market provided for scanner service"))
	}
	if cfg.FMPAPIKey == "" {
		errs = errors.Join(errs, fmt.Errorf("fmp api key cannot be an empty string"))
	}
	if cfg.RqliteEndpoint == "" {
		errs = errors.Join(errs, fmt.Errorf("rqlite endpoint cannot be an empty string"))
	}
	if cfg.ListenAddr == "" {
		errs = errors.Join(errs, fmt.Errorf("listen address cannot be an empty string"))
	}
	if cfg.Cancel == nil {
		errs = errors.Join(errs, fmt.Errorf("context cancellation function cannot be nil"))
	}

	return errs
}

// Scanner represents a fair value gap scanning service.
type Scanner struct {
	cfg           *ScannerConfig
	fetchManager  *fetch.Manager
	scanManager   *fvg.Manager
	notifyManager *notify.Manager
	db            *database.Database
	webServer     *web.Server
	logger        *zerolog.Logger
	wg            sync.WaitGroup
}

// NewScanner initializes a new scanner service.
func NewScanner(ctx context.Context, cfg *ScannerConfig) (*Scanner, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating scanner config: %w", err)
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logger := log.With().Str("service", "scanner").Logger()

	dbLogger := logger.With().Str("component", "database").Logger()
	db, err := database.NewDatabase(ctx, &database.DatabaseConfig{
		Endpoint: cfg.RqliteEndpoint,
		User:     cfg.RqliteUser,
		Pass:     cfg.RqlitePass,
		Logger:   &dbLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating database: %v", err)
	}

	var notifyMgr *notify.Manager
	notifyFunc := func(message string) {
		if notifyMgr != nil {
			notifyMgr.SendMessage(message)
		}
	}

	if cfg.TelegramToken != "" {
		notifier, err := notify.NewTelegramNotifier(&notify.TelegramConfig{
			Token:  cfg.TelegramToken,
			ChatID: cfg.TelegramChatID,
		})
		if err != nil {
			return nil, fmt.Errorf("creating telegram notifier: %v", err)
		}

		notifyMgrLogger := logger.With().Str("component", "notifymanager").Logger()
		notifyMgr, err = notify.NewManager(&notify.ManagerConfig{
			Notifier:    notifier,
			RetryPolicy: cfg.NotifyRetryPolicy,
			Logger:      &notifyMgrLogger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating notification manager: %v", err)
		}
	} else {
		notifyFunc = nil
	}

	scanMgrLogger := logger.With().Str("component", "scanmanager").Logger()
	scanMgr, err := fvg.NewManager(&fvg.ManagerConfig{
		Market:      cfg.Market,
		PersistFVGs: db.PersistFVGs,
		Notify:      notifyFunc,
		Logger:      &scanMgrLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating scan manager: %v", err)
	}

	_, loc, err := shared.NewYorkTime()
	if err != nil {
		return nil, fmt.Errorf("fetching new york time: %v", err)
	}

	jobScheduler := gocron.NewScheduler(loc)

	baseURL := cfg.FMPBaseURL
	if baseURL == "" {
		baseURL = fetch.BaseURL
	}

	fmp, err := fetch.NewFMPClient(&fetch.FMPConfig{APIKey: cfg.FMPAPIKey, BaseURL: baseURL})
	if err != nil {
		return nil, fmt.Errorf("creating fmp client: %v", err)
	}

	fetchMgrLogger := logger.With().Str("component", "fetchmanager").Logger()
	fetchMgr, err := fetch.NewManager(&fetch.ManagerConfig{
		Market:               cfg.Market,
		Timeframe:            cfg.Timeframe,
		LookbackDays:         cfg.LookbackDays,
		FetchIntervalMinutes: cfg.FetchIntervalMinutes,
		ExchangeClient:       fmp,
		RelaySeries:          scanMgr.SendCandleSeries,
		JobScheduler:         jobScheduler,
		Logger:               &fetchMgrLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating fetch manager: %v", err)
	}

	webLogger := logger.With().Str("component", "web").Logger()
	webServer, err := web.NewServer(&web.ServerConfig{
		ListenAddr: cfg.ListenAddr,
		Market:     cfg.Market,
		Storer:     db,
		Logger:     &webLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating web server: %v", err)
	}

	service := &Scanner{
		cfg:           cfg,
		fetchManager:  fetchMgr,
		scanManager:   scanMgr,
		notifyManager: notifyMgr,
		db:            db,
		webServer:     webServer,
		logger:        &logger,
	}

	return service, nil
}

// Run handles the lifecycle processes of the scanner service.
func (s *Scanner) Run(ctx context.Context) {
	s.wg.Add(3)

	go func() {
		s.scanManager.Run(ctx)
		s.wg.Done()
	}()

	go func() {
		s.webServer.Run(ctx)
		s.wg.Done()
	}()

	go func() {
		s.fetchManager.Run(ctx)
		s.wg.Done()
	}()

	if s.notifyManager != nil {
		s.wg.Add(1)
		go func() {
			s.notifyManager.Run(ctx)
			s.wg.Done()
		}()
	}

	s.wg.Wait()
}
