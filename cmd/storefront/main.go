// Package main starts the storefront HTTP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sweetcupcakes/storefront/internal/auth"
	"github.com/sweetcupcakes/storefront/internal/cart"
	"github.com/sweetcupcakes/storefront/internal/config"
	"github.com/sweetcupcakes/storefront/internal/handler"
	"github.com/sweetcupcakes/storefront/internal/kv"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	deliveryFee, err := decimal.NewFromString(cfg.DeliveryFee)
	if err != nil {
		sugar.Fatalw("invalid delivery fee", "error", err.Error())
	}

	durable, err := kv.NewSQLiteStore(cfg.StorePath)
	if err != nil {
		sugar.Fatalw("store initialization error", "error", err.Error())
	}
	defer durable.Close()

	ephemeral := kv.NewMemoryStore()

	ledger := cart.NewLedger(durable, deliveryFee)
	sessions := auth.NewSessionStore(durable, ephemeral)

	if err := sessions.EnsureSeeded(context.Background()); err != nil {
		sugar.Fatalw("seed accounts error", "error", err.Error())
	}

	h := handler.NewHandler(ledger, sessions, logger)
	r := h.SetupRouter(sessions)

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting storefront server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
