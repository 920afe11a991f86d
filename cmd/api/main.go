package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinicpay/internal/aggregator/sepay"
	"clinicpay/internal/config"
	corereconcile "clinicpay/internal/core/reconcile"
	httpx "clinicpay/internal/http"
	paymentsvc "clinicpay/internal/services/payment"
	"clinicpay/internal/services/reconcile"
	"clinicpay/internal/services/webhook"
	"clinicpay/internal/store/postgres"
	redisstore "clinicpay/internal/store/redis"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init DB
	pool := postgres.MustOpen(ctx, cfg.DB.DSN)
	defer pool.Close()
	store := postgres.NewIntentStore(pool)

	// Optional webhook dedup guard; absent redis degrades to the store-level
	// idempotency contract.
	var guard webhook.DedupGuard
	if cfg.Redis.Addr != "" {
		g := redisstore.NewDedupGuard(cfg.Redis.Addr, 24*time.Hour)
		defer g.Close()
		guard = g
	}

	client := sepay.New(cfg.Sepay)
	paySvc := paymentsvc.NewService(store, cfg)
	ingestor := webhook.NewIngestor(store, guard)
	poller := reconcile.NewPoller(store, client)

	// Background sweep only makes sense when polling is possible.
	if client.Configured() {
		worker := corereconcile.NewWorker(store, poller, cfg.Reconcile.PollInterval, cfg.Reconcile.PollBatch)
		go worker.Run(ctx)
	}

	r := httpx.NewRouter(httpx.RouterDependencies{
		PaymentService: paySvc,
		Ingestor:       ingestor,
		Poller:         poller,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Msgf("clinicpay API listening on :%s", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	cancel()
	ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	log.Info().Msg("server stopped")
}
