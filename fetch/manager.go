package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dnldd/fvgscan/shared"
	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// ManagerConfig represents the configuration for the fetch manager.
type ManagerConfig struct {
	// Market is the id of the tracked market.
	Market string
	// Timeframe is the tracked candle timeframe.
	Timeframe shared.Timeframe
	// LookbackDays is the number of days of candle data fetched per cycle.
	LookbackDays uint32
	// FetchIntervalMinutes is the interval between scheduled fetch cycles.
	FetchIntervalMinutes uint32
	// ExchangeClient represents the market exchange client.
	ExchangeClient *FMPClient
	// RelaySeries relays the fetched candle series for processing.
	RelaySeries func(series shared.CandleSeries)
	// JobScheduler represents the job scheduler.
	JobScheduler *gocron.Scheduler
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config has sane inputs.
func (cfg *ManagerConfig) Validate() error {
	var errs error

	if cfg.Market == "" {
		errs = errors.Join(errs, fmt.Errorf("market cannot be an empty string"))
	}
	if cfg.LookbackDays == 0 {
		errs = errors.Join(errs, fmt.Errorf("lookback days cannot be zero"))
	}
	if cfg.FetchIntervalMinutes == 0 {
		errs = errors.Join(errs, fmt.Errorf("fetch interval cannot be zero"))
	}
	if cfg.ExchangeClient == nil {
		errs = errors.Join(errs, fmt.Errorf("exchange client cannot be nil"))
	}
	if cfg.RelaySeries == nil {
		errs = errors.Join(errs, fmt.Errorf("relay series function cannot be nil"))
	}
	if cfg.JobScheduler == nil {
		errs = errors.Join(errs, fmt.Errorf("job scheduler cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Manager periodically fetches candle data for the tracked market and relays
// it downstream, one series per cycle.
type Manager struct {
	cfg         *ManagerConfig
	lastFetched atomic.Int64
}

// NewManager initializes the fetch manager.
func NewManager(cfg *ManagerConfig) (*Manager, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating fetch manager config: %w", err)
	}

	return &Manager{
		cfg: cfg,
	}, nil
}

// fetchCycle runs a single fetch cycle, fetching the configured lookback
// window of candles and relaying them as one series.
func (m *Manager) fetchCycle(ctx context.Context) {
	now, _, err := shared.NewYorkTime()
	if err != nil {
		m.cfg.Logger.Error().Msgf("fetching new york time: %v", err)
		return
	}

	start := now.AddDate(0, 0, -int(m.cfg.LookbackDays))

	data, err := m.cfg.ExchangeClient.FetchIntradayHistorical(ctx, m.cfg.Market,
		m.cfg.Timeframe, start, time.Time{})
	if err != nil {
		m.cfg.Logger.Error().Msgf("fetching candle data for %s: %v", m.cfg.Market, err)
		return
	}

	candles, err := m.cfg.ExchangeClient.ParseCandlesticks(data, m.cfg.Market, m.cfg.Timeframe)
	if err != nil {
		m.cfg.Logger.Error().Msgf("parsing candlesticks for %s: %v", m.cfg.Market, err)
		return
	}

	if len(candles) == 0 {
		m.cfg.Logger.Info().Msgf("no candle data available for %s, skipping cycle", m.cfg.Market)
		return
	}

	m.cfg.RelaySeries(shared.CandleSeries{
		Market:    m.cfg.Market,
		Timeframe: m.cfg.Timeframe,
		Candles:   candles,
		FetchedAt: now.UnixMilli(),
	})

	m.lastFetched.Store(now.UnixMilli())

	m.cfg.Logger.Info().Msgf("relayed %d candles for %s (%s)", len(candles),
		m.cfg.Market, m.cfg.Timeframe.String())
}

// LastFetched returns the unix millisecond time of the last completed cycle.
func (m *Manager) LastFetched() int64 {
	return m.lastFetched.Load()
}

// Run manages the lifecycle processes of the fetch manager.
func (m *Manager) Run(ctx context.Context) {
	_, err := m.cfg.JobScheduler.Every(int(m.cfg.FetchIntervalMinutes)).Minutes().Do(func() {
		m.fetchCycle(ctx)
	})
	if err != nil {
		m.cfg.Logger.Error().Msgf("scheduling fetch cycles: %v", err)
		return
	}

	m.cfg.JobScheduler.StartAsync()

	// Catch up immediately instead of waiting out the first interval.
	m.fetchCycle(ctx)

	<-ctx.Done()
	m.cfg.JobScheduler.Stop()
}
