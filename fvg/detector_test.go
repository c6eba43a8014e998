package fvg

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/peterldowns/testy/assert"

	"github.com/dnldd/fvgscan/shared"
)

// candle creates a test candlestick for the provided prices and timestamp.
func candle(high float64, low float64, volume float64, time int64) shared.Candlestick {
	return shared.Candlestick{
		Open:      low,
		Low:       low,
		High:      high,
		Close:     high,
		Volume:    volume,
		Time:      time,
		Market:    "^GSPC",
		Timeframe: shared.FiveMinute,
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name       string
		candles    []shared.Candlestick
		wantEvents []shared.FVG
	}{
		{
			name:       "empty input",
			candles:    []shared.Candlestick{},
			wantEvents: nil,
		},
		{
			name: "insufficient data",
			candles: []shared.Candlestick{
				candle(100, 85, 2, 1000),
				candle(105, 95, 3, 2000),
			},
			wantEvents: nil,
		},
		{
			name: "bullish gap",
			candles: []shared.Candlestick{
				candle(100, 85, 2, 1000),
				candle(108, 95, 3, 2000),
				candle(120, 110, 4, 3000),
			},
			wantEvents: []shared.FVG{
				{
					Market:    "^GSPC",
					Timeframe: shared.FiveMinute,
					Sentiment: shared.Bullish,
					StartTime: 1000,
					EndTime:   3000,
					GapSize:   10,
					Volume:    9,
				},
			},
		},
		{
			name: "bearish gap",
			candles: []shared.Candlestick{
				candle(120, 110, 2, 1000),
				candle(112, 104, 3, 2000),
				candle(105, 95, 4, 3000),
			},
			wantEvents: []shared.FVG{
				{
					Market:    "^GSPC",
					Timeframe: shared.FiveMinute,
					Sentiment: shared.Bearish,
					StartTime: 1000,
					EndTime:   3000,
					GapSize:   5,
					Volume:    9,
				},
			},
		},
		{
			name: "no gap when window extremes overlap",
			candles: []shared.Candlestick{
				candle(100, 90, 2, 1000),
				candle(105, 95, 3, 2000),
				candle(110, 98, 4, 3000),
			},
			wantEvents: nil,
		},
		{
			name: "boundary touch is not a gap",
			candles: []shared.Candlestick{
				candle(100, 90, 2, 1000),
				candle(105, 95, 3, 2000),
				candle(110, 100, 4, 3000),
			},
			wantEvents: nil,
		},
		{
			name: "two disjoint gaps in order",
			candles: []shared.Candlestick{
				candle(100, 85, 1, 1000),
				candle(108, 95, 2, 2000),
				candle(120, 110, 3, 3000),
				candle(121, 108, 4, 4000),
				candle(113, 105, 5, 5000),
				candle(103, 96, 6, 6000),
			},
			wantEvents: []shared.FVG{
				{
					Market:    "^GSPC",
					Timeframe: shared.FiveMinute,
					Sentiment: shared.Bullish,
					StartTime: 1000,
					EndTime:   3000,
					GapSize:   10,
					Volume:    6,
				},
				{
					Market:    "^GSPC",
					Timeframe: shared.FiveMinute,
					Sentiment: shared.Bearish,
					StartTime: 4000,
					EndTime:   6000,
					GapSize:   5,
					Volume:    15,
				},
			},
		},
		{
			name: "overlapping windows are not suppressed",
			candles: []shared.Candlestick{
				candle(100, 90, 1, 1000),
				candle(110, 102, 2, 2000),
				candle(120, 112, 3, 3000),
				candle(130, 122, 4, 4000),
			},
			wantEvents: []shared.FVG{
				{
					Market:    "^GSPC",
					Timeframe: shared.FiveMinute,
					Sentiment: shared.Bullish,
					StartTime: 1000,
					EndTime:   3000,
					GapSize:   12,
					Volume:    6,
				},
				{
					Market:    "^GSPC",
					Timeframe: shared.FiveMinute,
					Sentiment: shared.Bullish,
					StartTime: 2000,
					EndTime:   4000,
					GapSize:   12,
					Volume:    9,
				},
			},
		},
		{
			// A malformed first candle (low above high) can satisfy both
			// gap tests at once. Both events must be emitted.
			name: "malformed candle emits both gaps",
			candles: []shared.Candlestick{
				candle(10, 100, 1, 1000),
				candle(60, 50, 2, 2000),
				candle(20, 50, 3, 3000),
			},
			wantEvents: []shared.FVG{
				{
					Market:    "^GSPC",
					Timeframe: shared.FiveMinute,
					Sentiment: shared.Bullish,
					StartTime: 1000,
					EndTime:   3000,
					GapSize:   40,
					Volume:    6,
				},
				{
					Market:    "^GSPC",
					Timeframe: shared.FiveMinute,
					Sentiment: shared.Bearish,
					StartTime: 1000,
					EndTime:   3000,
					GapSize:   80,
					Volume:    6,
				},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			report := Detect(test.candles)
			assert.True(t, report.Success)

			if diff := cmp.Diff(test.wantEvents, report.Events); diff != "" {
				t.Errorf("unexpected events (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDetectWindowCount(t *testing.T) {
	// Ensure every window of a consistently gapping series emits exactly
	// one event, len(candles)-2 in total, ordered by window start.
	candles := make([]shared.Candlestick, 0, 8)
	for idx := 0; idx < 8; idx++ {
		base := float64(idx * 20)
		candles = append(candles, candle(base+10, base, 1, int64(idx*1000)))
	}

	report := Detect(candles)
	assert.True(t, report.Success)
	assert.Equal(t, len(report.Events), len(candles)-2)

	for idx := range report.Events {
		assert.Equal(t, report.Events[idx].Sentiment, shared.Bullish)
		assert.Equal(t, report.Events[idx].StartTime, int64(idx*1000))
		assert.Equal(t, report.Events[idx].EndTime, int64((idx+2)*1000))
	}
}

func TestDetectIsIdempotent(t *testing.T) {
	candles := []shared.Candlestick{
		candle(100, 85, 2, 1000),
		candle(108, 95, 3, 2000),
		candle(120, 110, 4, 3000),
	}

	first := Detect(candles)
	second := Detect(candles)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("detection is not idempotent (-first +second):\n%s", diff)
	}
}

func TestDetectInsufficientDataMessage(t *testing.T) {
	// Ensure short inputs report success with an informative message.
	report := Detect(nil)
	assert.True(t, report.Success)
	assert.Equal(t, len(report.Events), 0)
	assert.NotEqual(t, report.Message, "")
}
