package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/dnldd/fvgscan/shared"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// bufferSize is the default buffer size for channels.
	bufferSize = 64
	// maxWorkers is the maximum number of concurrent dispatch workers.
	maxWorkers = 8
)

// ManagerConfig represents the notification manager configuration.
type ManagerConfig struct {
	// Notifier dispatches outgoing notifications.
	Notifier shared.Notifier
	// RetryPolicy bounds dispatch attempts for each message.
	RetryPolicy RetryPolicy
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config has sane inputs.
func (cfg *ManagerConfig) Validate() error {
	var errs error

	if cfg.Notifier == nil {
		errs = errors.Join(errs, fmt.Errorf("notifier cannot be nil"))
	}
	if err := cfg.RetryPolicy.Validate(); err != nil {
		errs = errors.Join(errs, err)
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Manager queues outgoing notifications and dispatches them under the
// configured retry policy.
type Manager struct {
	cfg      *ManagerConfig
	messages chan string
	workers  chan struct{}
}

// NewManager initializes a new notification manager.
func NewManager(cfg *ManagerConfig) (*Manager, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating notification manager config: %w", err)
	}

	return &Manager{
		cfg:      cfg,
		messages: make(chan string, bufferSize),
		workers:  make(chan struct{}, maxWorkers),
	}, nil
}

// SendMessage queues the provided message for dispatch.
func (m *Manager) SendMessage(message string) {
	select {
	case m.messages <- message:
		// do nothing.
	default:
		m.cfg.Logger.Error().Msgf("message channel at capacity: %d/%d",
			len(m.messages), bufferSize)
	}
}

// handleMessage dispatches the provided message under the retry policy.
func (m *Manager) handleMessage(ctx context.Context, message string) {
	// Dispatch ids only correlate log lines, they carry no other meaning.
	id := uuid.NewString()

	err := Retry(ctx, func() error {
		return m.cfg.Notifier.Notify(ctx, message)
	}, m.cfg.RetryPolicy)
	if err != nil {
		m.cfg.Logger.Error().Str("dispatch", id).Msgf("dispatching notification after %d attempts: %v",
			m.cfg.RetryPolicy.MaxAttempts, err)
		return
	}

	m.cfg.Logger.Info().Str("dispatch", id).Msg("notification dispatched")
}

// Run manages the lifecycle processes of the notification manager.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case message := <-m.messages:
			m.workers <- struct{}{}
			go func(message string) {
				m.handleMessage(ctx, message)
				<-m.workers
			}(message)

		case <-ctx.Done():
			return
		}
	}
}
