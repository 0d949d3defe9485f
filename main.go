package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/Hsiii/MomComePickMeUp/internal/api"
	"github.com/Hsiii/MomComePickMeUp/internal/config"
	"github.com/Hsiii/MomComePickMeUp/internal/schedule"
	"github.com/Hsiii/MomComePickMeUp/internal/stations"
	"github.com/Hsiii/MomComePickMeUp/internal/tdx"
)

func main() {
	logger := log.New(os.Stdout, "[ontrack] ", log.LstdFlags|log.Lshortfile)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	logger.Printf("configuration loaded | addr: %s | timezone: %s | env: %s",
		cfg.Server.Addr, cfg.Timezone, cfg.Environment)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatalf("failed to load timezone: %v", err)
	}

	tdxClient := tdx.NewClient(tdx.Config{
		BaseURL:      cfg.TDX.BaseURL,
		TokenURL:     cfg.TDX.TokenURL,
		ClientID:     cfg.TDX.ClientID,
		ClientSecret: cfg.TDX.ClientSecret,
		Timeout:      cfg.TDX.Timeout,
	}, rate.NewLimiter(rate.Every(cfg.TDX.RateEvery), cfg.TDX.RateBurst))

	resolver := schedule.NewResolver(tdxClient, loc)
	directory := stations.NewDirectory(tdxClient, cfg.Stations.TTL)

	srv := api.NewServer(cfg.Server, resolver, directory, cfg.IsDevelopment(), logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatalf("server error: %v", err)
		}
	case <-ctx.Done():
		logger.Println("shutdown signal received, cleaning up...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("shutdown error: %v", err)
		}
	}

	logger.Println("application stopped")
}
