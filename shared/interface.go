package shared

import (
	"context"
	"time"

	"github.com/tidwall/gjson"
)

// MarketFetcher defines the requirements for fetching index market data.
type MarketFetcher interface {
	// FetchIntradayHistorical fetches intraday historical market data.
	FetchIntradayHistorical(ctx context.Context, market string, timeframe Timeframe, start time.Time, end time.Time) ([]gjson.Result, error)
}

// FVGStorer defines the requirements for durably storing fair value gaps.
type FVGStorer interface {
	// PersistFVGs stores the provided fair value gaps.
	PersistFVGs(ctx context.Context, fvgs []FVG) error
	// FetchFVGs fetches stored fair value gaps for the provided market,
	// most recent first.
	FetchFVGs(ctx context.Context, market string, limit uint32) ([]FVG, error)
}

// Notifier defines the requirements for dispatching notifications.
type Notifier interface {
	// Notify dispatches the provided message.
	Notify(ctx context.Context, message string) error
}
