package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/dnldd/fvgscan/notify"
	"github.com/dnldd/fvgscan/service"
	"github.com/dnldd/fvgscan/shared"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

func main() {
	var cfg Config
	err := loadConfig(&cfg, "")
	if err != nil {
		log.Printf("loading config: %v", err)
		return
	}

	timeframe, err := shared.ParseTimeframe(cfg.Timeframe)
	if err != nil {
		log.Printf("parsing timeframe: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scannerCfg := service.ScannerConfig{
		Market:               cfg.Market,
		Timeframe:            timeframe,
		FMPAPIKey:            cfg.FMPAPIKey,
		LookbackDays:         uint32(cfg.LookbackDays),
		FetchIntervalMinutes: uint32(cfg.FetchIntervalMinutes),
		RqliteEndpoint:       cfg.RqliteEndpoint,
		RqliteUser:           cfg.RqliteUser,
		RqlitePass:           cfg.RqlitePass,
		TelegramToken:        cfg.TelegramToken,
		TelegramChatID:       int64(cfg.TelegramChatID),
		NotifyRetryPolicy: notify.RetryPolicy{
			MaxAttempts: uint64(cfg.NotifyMaxAttempts),
			Delay:       time.Second * time.Duration(cfg.NotifyRetryDelaySeconds),
		},
		ListenAddr: cfg.ListenAddr,
		Cancel:     cancel,
	}
	scanner, err := service.NewScanner(ctx, &scannerCfg)
	if err != nil {
		log.Printf("creating scanner service: %v", err)
		return
	}

	go handleTermination(ctx, cancel)
	scanner.Run(ctx)
}
