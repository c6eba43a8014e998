package shared

// FVG represents a fair value gap, a three candle price imbalance where the
// extreme of the third candle does not overlap the extreme of the first.
// These act as high probability reaction levels for price.
type FVG struct {
	// Sentiment is the gap direction, Bullish or Bearish.
	Sentiment Sentiment
	// StartTime is the timestamp (unix milliseconds) of the first candle
	// of the triggering window.
	StartTime int64
	// EndTime is the timestamp (unix milliseconds) of the third candle
	// of the triggering window.
	EndTime int64
	// GapSize is the non-negative magnitude of the price gap.
	GapSize float64
	// Volume is the summed volume of the three candles in the window.
	Volume float64

	// Metadata fields.
	Market    string
	Timeframe Timeframe
}

// NewFVG initializes a new fair value gap event.
func NewFVG(market string, timeframe Timeframe, sentiment Sentiment, startTime int64,
	endTime int64, gapSize float64, volume float64) *FVG {
	return &FVG{
		Market:    market,
		Timeframe: timeframe,
		Sentiment: sentiment,
		StartTime: startTime,
		EndTime:   endTime,
		GapSize:   gapSize,
		Volume:    volume,
	}
}

// CandleSeries represents an ordered run of candlesticks for a market and
// timeframe, relayed as a unit of work once per fetch cycle.
type CandleSeries struct {
	Market    string
	Timeframe Timeframe
	Candles   []Candlestick
	FetchedAt int64
}
