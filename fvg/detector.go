package fvg

import (
	"fmt"

	"github.com/dnldd/fvgscan/shared"
)

const (
	// windowSize is the number of consecutive candles examined together
	// for gap conditions.
	windowSize = 3
)

// Report pairs the fair value gaps detected by a scan with a uniform
// success/failure outcome for reporting.
type Report struct {
	// Events are the detected gaps, ordered by ascending window start.
	Events []shared.FVG
	// Success indicates whether the scan completed.
	Success bool
	// Message is a human readable description of the scan outcome.
	Message string
}

// Detect scans the provided candlestick series for fair value gaps.
//
// The scan slides a three candle window over the series one candle at a
// time. A window (c1, c2, c3) forms a bullish gap when the low of c3 is
// strictly above the high of c1, and a bearish gap when the high of c3 is
// strictly below the low of c1. The middle candle contributes only its
// volume. Overlapping windows are intentionally not suppressed, a single
// candle may participate in multiple gaps.
//
// Detect is a pure function. Candles are expected in ascending time order,
// ordering is not validated. Fewer than three candles is a normal outcome
// yielding an empty result, not a failure. A runtime fault during the scan
// is recovered and surfaced as a failed report.
func Detect(candles []shared.Candlestick) (report *Report) {
	report = &Report{Success: true}

	defer func() {
		if r := recover(); r != nil {
			report.Events = nil
			report.Success = false
			report.Message = fmt.Sprintf("unexpected fault detecting fair value gaps: %v", r)
		}
	}()

	if len(candles) < windowSize {
		report.Message = fmt.Sprintf("insufficient candle data for gap detection: have %d, need %d",
			len(candles), windowSize)
		return report
	}

	for idx := 0; idx <= len(candles)-windowSize; idx++ {
		first := &candles[idx]
		second := &candles[idx+1]
		third := &candles[idx+2]

		volume := first.Volume + second.Volume + third.Volume

		// Both gap tests run unconditionally. Well formed candles can
		// only satisfy one of them, but malformed candles (low above
		// high) may satisfy both and must emit both events.
		if third.Low > first.High {
			report.Events = append(report.Events, *shared.NewFVG(first.Market, first.Timeframe,
				shared.Bullish, first.Time, third.Time, third.Low-first.High, volume))
		}

		if third.High < first.Low {
			report.Events = append(report.Events, *shared.NewFVG(first.Market, first.Timeframe,
				shared.Bearish, first.Time, third.Time, first.Low-third.High, volume))
		}
	}

	report.Message = fmt.Sprintf("detected %d fair value gaps from %d candles",
		len(report.Events), len(candles))

	return report
}
