/*
Package main is the entry point for the chitty relay.

It is responsible for loading configuration, initializing the global
logging system, connecting the Redis broker, setting up the HTTP server
with the WebSocket endpoint, and gracefully handling operating system
interrupt signals (SIGINT, SIGTERM) for a smooth shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"chitty/internal/app/broker"
	"chitty/internal/app/chat"
	"chitty/internal/configs"
	"chitty/internal/handler"
	"chitty/internal/pkg/auth/token"
	"chitty/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.ChatPort).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Int("max_connections", cfg.MaxConnections).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect the Redis broker
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logx.Fatal(err, "Failed to connect to Redis", "addr", cfg.RedisAddr)
	}
	defer rdb.Close()

	bus := broker.NewRedisBus(rdb)

	// Initialize the connection gateway
	gateway := chat.NewGateway(bus, cfg.MaxConnections)

	deps := &handler.AppDeps{
		Config:  cfg,
		Gate:    token.NewGate(cfg.SecretKey, cfg.TokenMaxAge),
		Gateway: gateway,
	}

	serverAddr := fmt.Sprintf(":%d", cfg.ChatPort)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler.Router(deps),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("chitty relay starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}
