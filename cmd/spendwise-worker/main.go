package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"spendwise/internal/amqp"
	"spendwise/internal/backend"
	"spendwise/internal/cli"
	"spendwise/internal/log"
	"spendwise/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))

	if err := run(logger); err != nil {
		logger.Error("Worker stopped", log.FieldError, err)
		os.Exit(1)
	}
}

func run(logger *log.Logger) error {
	logger.Info("Starting spendwise-worker")

	cfg, err := cli.LoadAndValidateWorkerConfig(logger)
	if err != nil {
		return err
	}

	ctx, cancel := cli.GracefulShutdown(context.Background(), logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	// The worker only reads snapshots; it never publishes.
	storeCfg := backendCfg
	storeCfg.AMQPURL = ""

	factory := backend.NewFactory(logger)
	store, err := factory.CreateBackend(ctx, storeCfg)
	if err != nil {
		return err
	}
	defer store.Cleanup()

	mirror, err := factory.CreateMirror(ctx, backendCfg)
	if err != nil {
		return err
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return err
	}
	defer amqpClient.Close()

	mirrorWorker := worker.NewMirrorWorker(store.KV, mirror, logger)

	// Catch up on anything written while the worker was down.
	logger.Info("Performing startup resync")
	if err := mirrorWorker.Resync(ctx); err != nil {
		logger.Error("Startup resync failed", log.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeWithRetry(gctx, mirrorWorker.HandleSnapshotMessage)
	})
	g.Go(func() error {
		return mirrorWorker.RunPeriodic(gctx, cfg.MirrorResyncInterval)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		logger.Info("Worker shutdown complete")
		return nil
	}
	return err
}
