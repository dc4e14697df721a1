// Package server holds the process plumbing shared by the auth and shop binaries.
package server

import (
	"context"  // Shutdown signalling
	"errors"   // Error inspection
	"fmt"      // Error wrapping
	"net/http" // HTTP server
	"time"     // Timeouts

	"shop_system/internal/config" // Configuration

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging
	"golang.org/x/sync/errgroup"   // Server lifecycle
)

// ShutdownTimeout bounds how long in-flight requests may run after a stop signal
const ShutdownTimeout = 10 * time.Second

// SetupLogger configures logrus for a service: JSON in production, text otherwise
func SetupLogger(cfg *config.Config, service string) *logrus.Entry {
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	return logrus.WithField("service", service)
}

// ConnectRedis returns a client for the configured Redis, or nil when none is configured
func ConnectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil // Caching disabled
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	// Test Redis connection
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

// Run serves h on addr until ctx is cancelled, then shuts down gracefully
func Run(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,             // Listen address
		Handler:           h,                // Gin engine
		ReadHeaderTimeout: 10 * time.Second, // Slowloris guard
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithField("addr", addr).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done() // Stop signal or listener failure
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		logrus.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
