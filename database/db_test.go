package database

import (
	"testing"

	"github.com/peterldowns/testy/assert"

	"github.com/dnldd/fvgscan/shared"
)

func TestDecimalRoundTrip(t *testing.T) {
	// Ensure gap and volume values survive the decimal text encoding exactly.
	values := []float64{0, 0.1, 10, 5.25, 123456.789012, 0.000001}

	for _, value := range values {
		decoded, err := decodeDecimal(encodeDecimal(value))
		assert.NoError(t, err)
		assert.Equal(t, decoded, value)
	}

	// Ensure malformed decimal text is rejected.
	_, err := decodeDecimal("not-a-number")
	assert.Error(t, err)
}

func TestGenerateFVGID(t *testing.T) {
	fvg := shared.NewFVG("^GSPC", shared.FiveMinute, shared.Bullish, 1000, 3000, 10, 9)

	// Ensure ids are deterministic.
	assert.Equal(t, generateFVGID(fvg), generateFVGID(fvg))
	assert.Equal(t, generateFVGID(fvg), "^GSPC-5m-bullish-1000-3000")

	// Ensure a bearish gap over the same window yields a distinct id.
	bearish := shared.NewFVG("^GSPC", shared.FiveMinute, shared.Bearish, 1000, 3000, 10, 9)
	assert.NotEqual(t, generateFVGID(fvg), generateFVGID(bearish))
}

func TestRowToFVG(t *testing.T) {
	row := map[string]any{
		"market":    "^GSPC",
		"timeframe": "5m",
		"sentiment": float64(shared.Bullish),
		"starttime": float64(1000),
		"endtime":   float64(3000),
		"gapsize":   "10.5",
		"volume":    "9.25",
	}

	// Ensure stored rows rehydrate losslessly.
	fvg, err := rowToFVG(row)
	assert.NoError(t, err)
	assert.Equal(t, fvg.Market, "^GSPC")
	assert.Equal(t, fvg.Timeframe, shared.FiveMinute)
	assert.Equal(t, fvg.Sentiment, shared.Bullish)
	assert.Equal(t, fvg.StartTime, int64(1000))
	assert.Equal(t, fvg.EndTime, int64(3000))
	assert.Equal(t, fvg.GapSize, 10.5)
	assert.Equal(t, fvg.Volume, 9.25)

	// Ensure rows with unknown timeframes are rejected.
	row["timeframe"] = "3m"
	_, err = rowToFVG(row)
	assert.Error(t, err)
}
