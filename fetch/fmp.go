package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dnldd/fvgscan/shared"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the production FMP API base url.
	BaseURL = "https://financialmodelingprep.com/stable"
	// requestsPerSecond is the rate limit applied to outbound API requests.
	requestsPerSecond = 5
	// maxRetryElapsedTime is the maximum time spent retrying a failed request.
	maxRetryElapsedTime = time.Second * 30
)

// HTTPStatusError represents an error due to a non-200 HTTP status code.
type HTTPStatusError struct {
	StatusCode int
}

// Error satisfies the error interface for the http status error.
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected http status: %d", e.StatusCode)
}

// FMPConfig represents the configuration for the FMP client.
type FMPConfig struct {
	// APIKey is the FMP API Key.
	APIKey string
	// BaseURL is the FMP API base url.
	BaseURL string
}

// Validate asserts the config has sane inputs.
func (cfg *FMPConfig) Validate() error {
	var errs error

	if cfg.APIKey == "" {
		errs = errors.Join(errs, fmt.Errorf("fmp api key cannot be an empty string"))
	}
	if cfg.BaseURL == "" {
		errs = errors.Join(errs, fmt.Errorf("fmp base url cannot be an empty string"))
	}

	return errs
}

// FMPClient represents the Financial Modeling Preparation (FMP) API client.
type FMPClient struct {
	cfg     *FMPConfig
	httpc   *http.Client
	limiter *rate.Limiter
	loc     *time.Location
	buf     *bytes.Buffer
}

// Ensure the FMPClient implements the MarketFetcher interface.
var _ shared.MarketFetcher = (*FMPClient)(nil)

// NewFMPClient instantiates a new FMP client.
func NewFMPClient(cfg *FMPConfig) (*FMPClient, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating fmp config: %w", err)
	}

	_, loc, err := shared.NewYorkTime()
	if err != nil {
		return nil, err
	}

	return &FMPClient{
		cfg:     cfg,
		httpc:   &http.Client{Timeout: time.Second * 5},
		limiter: rate.NewLimiter(rate.Every(time.Second), requestsPerSecond),
		loc:     loc,
		buf:     bytes.NewBuffer(make([]byte, 0, 512)),
	}, nil
}

// formURL creates full urls including parameters for the api.
func (c *FMPClient) formURL(path string, params string) string {
	c.buf.WriteString(c.cfg.BaseURL)
	c.buf.WriteString(path)
	c.buf.WriteString("?")
	c.buf.WriteString(params)
	url := c.buf.String()
	c.buf.Reset()

	return url
}

// fetch issues a rate limited GET request for the provided url, retrying
// transient failures with exponential backoff.
func (c *FMPClient) fetch(ctx context.Context, formedURL string) ([]byte, error) {
	err := c.limiter.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("awaiting rate limiter: %w", err)
	}

	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, formedURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			return err
		}

		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			statusErr := &HTTPStatusError{StatusCode: resp.StatusCode}
			if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError {
				// Client errors will not resolve on retry.
				return backoff.Permanent(statusErr)
			}

			return statusErr
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		return nil
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = maxRetryElapsedTime

	err = backoff.Retry(op, backoff.WithContext(strategy, ctx))
	if err != nil {
		return nil, err
	}

	return body, nil
}

// ParseCandlesticks parses candlesticks from the provided json data.
func (c *FMPClient) ParseCandlesticks(data []gjson.Result, market string, timeframe shared.Timeframe) ([]shared.Candlestick, error) {
	candles := make([]shared.Candlestick, len(data))

	for idx := range data {
		var candle shared.Candlestick

		candle.Open = data[idx].Get("open").Float()
		candle.Low = data[idx].Get("low").Float()
		candle.High = data[idx].Get("high").Float()
		candle.Close = data[idx].Get("close").Float()
		candle.Volume = data[idx].Get("volume").Float()

		candle.Market = market
		candle.Timeframe = timeframe

		dt, err := time.ParseInLocation(shared.DateLayout, data[idx].Get("date").String(), c.loc)
		if err != nil {
			return nil, fmt.Errorf("parsing candlestick date: %w", err)
		}

		candle.Time = dt.UnixMilli()
		candles[idx] = candle
	}

	return candles, nil
}

// FetchIntradayHistorical fetches intraday historical market data.
func (c *FMPClient) FetchIntradayHistorical(ctx context.Context, market string, timeframe shared.Timeframe, start time.Time, end time.Time) ([]gjson.Result, error) {
	const fiveMinuteHistoricalPath = "/historical-chart/5min"
	const oneHourHistoricalPath = "/historical-chart/1hour"

	params := url.Values{}
	params.Add("symbol", market)
	params.Add("apikey", c.cfg.APIKey)
	params.Add("from", start.Format(shared.DateLayout))
	if !end.IsZero() {
		params.Add("to", end.Format(shared.DateLayout))
	}

	var formedURL string

	switch timeframe {
	case shared.FiveMinute:
		formedURL = c.formURL(fiveMinuteHistoricalPath, params.Encode())
	case shared.OneHour:
		formedURL = c.formURL(oneHourHistoricalPath, params.Encode())
	default:
		return nil, fmt.Errorf("unknown timeframe provided: %s", timeframe.String())
	}

	body, err := c.fetch(ctx, formedURL)
	if err != nil {
		return nil, fmt.Errorf("fetching intraday historical data (%s) for %s: %w",
			timeframe.String(), market, err)
	}

	data := gjson.ParseBytes(body).Array()

	return data, nil
}
