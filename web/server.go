package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dnldd/fvgscan/shared"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	// defaultFetchLimit is the default number of gaps returned per request.
	defaultFetchLimit = 100
	// maxFetchLimit is the maximum number of gaps returned per request.
	maxFetchLimit = 1000
	// shutdownTimeout is the maximum time allowed for a graceful shutdown.
	shutdownTimeout = time.Second * 5
)

// ServerConfig represents the configuration for the web server.
type ServerConfig struct {
	// ListenAddr is the address the server listens on.
	ListenAddr string
	// Market is the id of the tracked market.
	Market string
	// Storer fetches stored fair value gaps.
	Storer shared.FVGStorer
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config has sane inputs.
func (cfg *ServerConfig) Validate() error {
	var errs error

	if cfg.ListenAddr == "" {
		errs = errors.Join(errs, fmt.Errorf("listen address cannot be an empty string"))
	}
	if cfg.Market == "" {
		errs = errors.Join(errs, fmt.Errorf("market cannot be an empty string"))
	}
	if cfg.Storer == nil {
		errs = errors.Join(errs, fmt.Errorf("storer cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// fvgView is the presentation form of a stored fair value gap. Gap size and
// volume render as decimal strings to preserve their stored precision.
type fvgView struct {
	Market    string `json:"market"`
	Timeframe string `json:"timeframe"`
	FvgType   string `json:"fvgType"`
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime"`
	GapSize   string `json:"gapSize"`
	Volume    string `json:"volume"`
}

// Server serves stored fair value gaps for display. It is read only and
// imposes no contract back on the scan pipeline.
type Server struct {
	cfg   *ServerConfig
	https *http.Server
}

// NewServer initializes a new web server.
func NewServer(cfg *ServerConfig) (*Server, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating web server config: %w", err)
	}

	s := &Server{
		cfg: cfg,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/health", s.handleHealth)
	router.GET("/fvgs", s.handleFVGs)

	s.https = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	return s, nil
}

// handleHealth processes liveness requests.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleFVGs serves stored fair value gaps for the tracked market.
func (s *Server) handleFVGs(c *gin.Context) {
	limit := uint32(defaultFetchLimit)
	if param := c.Query("limit"); param != "" {
		parsed, err := strconv.ParseUint(param, 10, 32)
		if err != nil || parsed == 0 || parsed > maxFetchLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid limit: %s", param)})
			return
		}

		limit = uint32(parsed)
	}

	fvgs, err := s.cfg.Storer.FetchFVGs(c.Request.Context(), s.cfg.Market, limit)
	if err != nil {
		s.cfg.Logger.Error().Msgf("fetching fair value gaps for %s: %v", s.cfg.Market, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "fetching fair value gaps"})
		return
	}

	views := make([]fvgView, 0, len(fvgs))
	for idx := range fvgs {
		fvg := &fvgs[idx]
		views = append(views, fvgView{
			Market:    fvg.Market,
			Timeframe: fvg.Timeframe.String(),
			FvgType:   fvg.Sentiment.String(),
			StartTime: fvg.StartTime,
			EndTime:   fvg.EndTime,
			GapSize:   decimal.NewFromFloat(fvg.GapSize).String(),
			Volume:    decimal.NewFromFloat(fvg.Volume).String(),
		})
	}

	c.JSON(http.StatusOK, views)
}

// Run manages the lifecycle processes of the web server.
func (s *Server) Run(ctx context.Context) {
	go func() {
		err := s.https.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.cfg.Logger.Error().Msgf("serving web requests: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.https.Shutdown(shutdownCtx)
	if err != nil {
		s.cfg.Logger.Error().Msgf("shutting down web server: %v", err)
	}
}
