package database

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dnldd/fvgscan/shared"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	// SQL statements.
	createFVGTableSQL = "CREATE TABLE IF NOT EXISTS fvg (id TEXT PRIMARY KEY, market TEXT, timeframe TEXT, sentiment INTEGER, starttime INTEGER, endtime INTEGER, gapsize TEXT, volume TEXT, createdon INTEGER)"
	persistFVGSQL     = "INSERT OR REPLACE INTO fvg(id, market, timeframe, sentiment, starttime, endtime, gapsize, volume, createdon) VALUES(?,?,?,?,?,?,?,?,?)"
	fetchFVGsSQL      = "SELECT market, timeframe, sentiment, starttime, endtime, gapsize, volume FROM fvg WHERE market = ? ORDER BY starttime DESC LIMIT ?"
)

// DatabaseConfig is the configuration for the database.
type DatabaseConfig struct {
	// Endpoint represents the database connection endpoint.
	Endpoint string
	// User is the database user.
	User string
	// Pass is the database user pass.
	Pass string
	// Logger is the database logger.
	Logger *zerolog.Logger
}

// Database represents the database connection.
type Database struct {
	cfg    *DatabaseConfig
	client *rqlitehttp.Client
}

// Ensure the database implements the FVGStorer interface.
var _ shared.FVGStorer = (*Database)(nil)

// NewDatabase initializes a new database connection.
func NewDatabase(ctx context.Context, cfg *DatabaseConfig) (*Database, error) {
	httpc := &http.Client{Timeout: time.Second * 5}
	client, err := rqlitehttp.NewClient(cfg.Endpoint, httpc)
	if err != nil {
		return nil, fmt.Errorf("creating database client: %w", err)
	}

	client.SetBasicAuth(cfg.User, cfg.Pass)

	db := &Database{
		cfg:    cfg,
		client: client,
	}

	err = db.bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping database: %w", err)
	}

	return db, nil
}

// bootstrap initializes the database.
func (db *Database) bootstrap(ctx context.Context) error {
	_, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
		{SQL: createFVGTableSQL},
	}, &rqlitehttp.ExecuteOptions{
		Transaction: true,
		Timings:     true,
	})
	if err != nil {
		return err
	}

	return nil
}

// generateFVGID generates deterministic ids for fair value gaps. Re-detecting
// the same window on a later fetch cycle replaces the existing row instead of
// duplicating it.
func generateFVGID(fvg *shared.FVG) string {
	return fmt.Sprintf("%s-%s-%s-%d-%d", fvg.Market, fvg.Timeframe.String(),
		fvg.Sentiment.String(), fvg.StartTime, fvg.EndTime)
}

// encodeDecimal encodes the provided float as decimal text, preserving its
// shortest decimal representation so stored values round-trip losslessly.
func encodeDecimal(value float64) string {
	return decimal.NewFromFloat(value).String()
}

// decodeDecimal decodes decimal text persisted by encodeDecimal.
func decodeDecimal(text string) (float64, error) {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, fmt.Errorf("decoding decimal %q: %w", text, err)
	}

	return d.InexactFloat64(), nil
}

// PersistFVGs stores the provided fair value gaps to the database.
func (db *Database) PersistFVGs(ctx context.Context, fvgs []shared.FVG) error {
	if len(fvgs) == 0 {
		return nil
	}

	now, _, err := shared.NewYorkTime()
	if err != nil {
		return err
	}

	stmts := make(rqlitehttp.SQLStatements, 0, len(fvgs))
	for idx := range fvgs {
		fvg := &fvgs[idx]
		stmts = append(stmts, &rqlitehttp.SQLStatement{
			SQL: persistFVGSQL,
			PositionalParams: []any{generateFVGID(fvg), fvg.Market, fvg.Timeframe.String(),
				int(fvg.Sentiment), fvg.StartTime, fvg.EndTime, encodeDecimal(fvg.GapSize),
				encodeDecimal(fvg.Volume), now.Unix()},
		})
	}

	resp, err := db.client.Execute(ctx, stmts, &rqlitehttp.ExecuteOptions{
		Transaction: true,
		Timings:     true,
	})
	if err != nil {
		return err
	}

	has, idx, errStr := resp.HasError()
	if has {
		return fmt.Errorf("persisting fair value gaps: %d -> %s", idx, errStr)
	}

	return nil
}

// FetchFVGs fetches stored fair value gaps for the provided market, most
// recent first.
func (db *Database) FetchFVGs(ctx context.Context, market string, limit uint32) ([]shared.FVG, error) {
	resp, err := db.client.QuerySingle(ctx, fetchFVGsSQL, market, limit)
	if err != nil {
		return nil, err
	}

	fvgs := make([]shared.FVG, 0)
	for _, result := range resp.GetQueryResultsAssoc() {
		for _, row := range result.Rows {
			fvg, err := rowToFVG(row)
			if err != nil {
				db.cfg.Logger.Error().Msgf("skipping malformed fvg row: %v: %s",
					err, spew.Sdump(row))
				continue
			}

			fvgs = append(fvgs, *fvg)
		}
	}

	return fvgs, nil
}

// rowToFVG rehydrates a fair value gap from the provided associative row.
func rowToFVG(row map[string]any) (*shared.FVG, error) {
	timeframe, err := shared.ParseTimeframe(asString(row["timeframe"]))
	if err != nil {
		return nil, err
	}

	gapSize, err := decodeDecimal(asString(row["gapsize"]))
	if err != nil {
		return nil, err
	}

	volume, err := decodeDecimal(asString(row["volume"]))
	if err != nil {
		return nil, err
	}

	fvg := shared.NewFVG(asString(row["market"]), timeframe,
		shared.Sentiment(asInt64(row["sentiment"])), asInt64(row["starttime"]),
		asInt64(row["endtime"]), gapSize, volume)

	return fvg, nil
}

// asString converts the provided associative row value to a string.
func asString(value any) string {
	str, _ := value.(string)
	return str
}

// asInt64 converts the provided associative row value to an int64. Numeric
// values decoded from json arrive as float64.
func asInt64(value any) int64 {
	switch v := value.(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	default:
		return 0
	}
}
