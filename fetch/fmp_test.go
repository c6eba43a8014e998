package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/tidwall/gjson"

	"github.com/dnldd/fvgscan/shared"
)

func TestFMPClientConfigValidate(t *testing.T) {
	// Ensure client creation fails on an invalid config.
	_, err := NewFMPClient(&FMPConfig{})
	assert.Error(t, err)
}

func TestFormURL(t *testing.T) {
	cfg := &FMPConfig{
		APIKey:  "key",
		BaseURL: "http://base",
	}

	fc, err := NewFMPClient(cfg)
	assert.NoError(t, err)

	// Ensure urls can be formed accurately.
	params := url.Values{}
	params.Add("a", "bbb")
	params.Add("b", "ccc")

	path := "/path"
	formedURL := fc.formURL(path, params.Encode())
	assert.Equal(t, formedURL, "http://base/path?a=bbb&b=ccc")
}

func TestParseCandlesticks(t *testing.T) {
	fc, err := NewFMPClient(&FMPConfig{APIKey: "key", BaseURL: "http://base"})
	assert.NoError(t, err)

	market := "^GSPC"
	timeframe := shared.FiveMinute
	data := `[{"open":10,"close":12,"high":15,"low":8,"volume":5,"date":"2025-02-04 15:05:00"}]`
	gjd := gjson.Parse(data).Array()

	// Ensure candlestick data can be parsed.
	candles, err := fc.ParseCandlesticks(gjd, market, timeframe)
	assert.NoError(t, err)
	assert.Equal(t, len(candles), 1)
	assert.Equal(t, candles[0].Open, float64(10))
	assert.Equal(t, candles[0].Close, float64(12))
	assert.Equal(t, candles[0].High, float64(15))
	assert.Equal(t, candles[0].Low, float64(8))
	assert.Equal(t, candles[0].Volume, float64(5))

	parsed := time.UnixMilli(candles[0].Time).In(fc.loc)
	assert.Equal(t, parsed.Year(), 2025)
	assert.Equal(t, int(parsed.Month()), 2)
	assert.Equal(t, parsed.Day(), 4)

	// Ensure malformed dates are rejected.
	bad := gjson.Parse(`[{"open":10,"date":"04/02/2025"}]`).Array()
	_, err = fc.ParseCandlesticks(bad, market, timeframe)
	assert.Error(t, err)
}

func TestFetchIntradayHistorical(t *testing.T) {
	payload := `[{"open":10,"close":12,"high":15,"low":8,"volume":5,"date":"2025-02-04 15:05:00"}]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.URL.Query().Get("symbol"), "^GSPC")
		assert.Equal(t, r.URL.Query().Get("apikey"), "key")
		w.Write([]byte(payload))
	}))
	defer server.Close()

	fc, err := NewFMPClient(&FMPConfig{APIKey: "key", BaseURL: server.URL})
	assert.NoError(t, err)

	now, _, err := shared.NewYorkTime()
	assert.NoError(t, err)

	start := now.AddDate(0, 0, -5)

	// Ensure intraday historical data can be fetched.
	data, err := fc.FetchIntradayHistorical(context.Background(), "^GSPC",
		shared.FiveMinute, start, time.Time{})
	assert.NoError(t, err)
	assert.Equal(t, len(data), 1)
	assert.Equal(t, data[0].Get("close").Float(), float64(12))
}

func TestFetchIntradayHistoricalClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	fc, err := NewFMPClient(&FMPConfig{APIKey: "key", BaseURL: server.URL})
	assert.NoError(t, err)

	now, _, err := shared.NewYorkTime()
	assert.NoError(t, err)

	// Ensure client errors surface immediately without being retried.
	_, err = fc.FetchIntradayHistorical(context.Background(), "^GSPC",
		shared.FiveMinute, now.AddDate(0, 0, -5), time.Time{})
	assert.Error(t, err)
}
