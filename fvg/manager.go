package fvg

import (
	"context"
	"errors"
	"fmt"

	"github.com/dnldd/fvgscan/shared"
	"github.com/rs/zerolog"
)

const (
	// bufferSize is the default buffer size for channels.
	bufferSize = 64
)

// ManagerConfig represents the scan manager configuration.
type ManagerConfig struct {
	// Market is the id of the tracked market.
	Market string
	// PersistFVGs stores the provided fair value gaps.
	PersistFVGs func(ctx context.Context, fvgs []shared.FVG) error
	// Notify dispatches the provided scan summary for notification.
	Notify func(message string)
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config has sane inputs.
func (cfg *ManagerConfig) Validate() error {
	var errs error

	if cfg.Market == "" {
		errs = errors.Join(errs, fmt.Errorf("market cannot be an empty string"))
	}
	if cfg.PersistFVGs == nil {
		errs = errors.Join(errs, fmt.Errorf("persist fvgs function cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Manager runs fair value gap scans over relayed candle series and hands
// detected gaps to storage and notification.
//
// Scans are handled by a single worker, consecutive fetch cycles never
// interleave their storage writes.
type Manager struct {
	cfg           *ManagerConfig
	seriesSignals chan shared.CandleSeries
	worker        chan struct{}
}

// NewManager initializes a new scan manager.
func NewManager(cfg *ManagerConfig) (*Manager, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating scan manager config: %w", err)
	}

	return &Manager{
		cfg:           cfg,
		seriesSignals: make(chan shared.CandleSeries, bufferSize),
		worker:        make(chan struct{}, 1),
	}, nil
}

// SendCandleSeries relays the provided candle series for processing.
func (m *Manager) SendCandleSeries(series shared.CandleSeries) {
	select {
	case m.seriesSignals <- series:
		// do nothing.
	default:
		m.cfg.Logger.Error().Msgf("candle series channel at capacity: %d/%d",
			len(m.seriesSignals), bufferSize)
	}
}

// handleCandleSeries scans the provided series and persists detected gaps.
func (m *Manager) handleCandleSeries(ctx context.Context, series *shared.CandleSeries) {
	report := Detect(series.Candles)
	if !report.Success {
		m.cfg.Logger.Error().Str("market", series.Market).Msg(report.Message)
		return
	}

	m.cfg.Logger.Info().Str("market", series.Market).
		Str("timeframe", series.Timeframe.String()).Msg(report.Message)

	if len(report.Events) == 0 {
		return
	}

	err := m.cfg.PersistFVGs(ctx, report.Events)
	if err != nil {
		m.cfg.Logger.Error().Msgf("persisting fair value gaps for %s: %v", series.Market, err)
		return
	}

	if m.cfg.Notify != nil {
		m.cfg.Notify(fmt.Sprintf("%s (%s): %s", series.Market,
			series.Timeframe.String(), report.Message))
	}
}

// Run manages the lifecycle processes of the scan manager.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case series := <-m.seriesSignals:
			m.worker <- struct{}{}
			go func(series *shared.CandleSeries) {
				m.handleCandleSeries(ctx, series)
				<-m.worker
			}(&series)

		case <-ctx.Done():
			return
		}
	}
}
