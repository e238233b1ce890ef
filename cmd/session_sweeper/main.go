package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/travelia/travel-backend/config"
	"github.com/travelia/travel-backend/internal/container"
	"github.com/travelia/travel-backend/pkg/helpers"
)

// Deletes expired session rows on an interval. Tokens expire on their own;
// this only keeps the bookkeeping table from growing without bound.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := container.Build(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to build container: %v", err)
	}
	defer c.Close()

	interval := cfg.TokenTTL
	sweep := func() {
		n, err := c.Identity.Repos.Sessions.DeleteExpired(ctx)
		if err != nil {
			logger.WithError(err).Error("sweep failed")
			return
		}
		if n > 0 {
			logger.WithField("deleted", n).Info("expired sessions removed")
		}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.WithField("interval", interval.String()).Info("session sweeper started")
	sweep()
	for {
		select {
		case <-ticker.C:
			sweep()
		case <-stop:
			logger.Info("session sweeper stopped")
			return
		}
	}
}
