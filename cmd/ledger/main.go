package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/artifact"
	"ledger/internal/cli"
	apphttp "ledger/internal/http"
	"ledger/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	uploads, err := artifact.NewLocalStore(cfg.UploadDir)
	if err != nil {
		logger.Error("Failed to initialize upload store", "error", err, "dir", cfg.UploadDir)
		os.Exit(1)
	}

	// AMQP is optional; without it writes succeed but emit no events.
	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		events = amqpClient
		logger.Info("AMQP events enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP events disabled - no AMQP_URL provided")
	}

	balance := services.NewBalanceService(repo)
	resolver := services.NewCategoryResolver(repo)
	ledgerSvc := services.NewLedgerService(repo, balance, resolver, events)
	importer := services.NewImporter(repo, resolver, balance, uploads, events)
	importer.EnforceOverdraft = cfg.ImportEnforceOverdraft

	srv := apphttp.NewServer(":"+cfg.Port, ledgerSvc, balance, importer, uploads)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting ledger server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
