package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"smartattendance/internal/attendance"
	"smartattendance/internal/config"
	"smartattendance/internal/logging"
	"smartattendance/internal/queue"
	"smartattendance/internal/store"
)

// Worker drains the attendance change feed and logs every change.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if cfg.Feed.Backend != config.FeedRedis {
		return errors.New("feed.backend must be redis for the worker")
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.Named("worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := store.NewRedis(cfg.Feed.RedisAddr)
	defer rdb.Close()
	if err := rdb.Ping(ctx); err != nil {
		logger.Warn("redis not reachable yet, will keep polling", zap.String("addr", cfg.Feed.RedisAddr), zap.Error(err))
	}

	q := queue.NewRedisQueue(rdb.Client, cfg.Feed.Key)
	messages, err := q.Consume(ctx)
	if err != nil {
		return fmt.Errorf("starting consumer: %w", err)
	}

	logger.Info("worker started, waiting for changes", zap.String("key", cfg.Feed.Key))
	for msg := range messages {
		handle(logger, msg)
	}
	logger.Info("worker stopped")
	return nil
}

func handle(log *zap.Logger, msg queue.Message) {
	switch msg.Type {
	case queue.TypeMarked, queue.TypeUpdated, queue.TypeDeleted:
	default:
		log.Warn("ignoring unknown message", zap.String("type", msg.Type))
		return
	}

	var c attendance.Change
	if err := json.Unmarshal(msg.Body, &c); err != nil {
		log.Warn("undecodable change", zap.String("type", msg.Type), zap.Error(err))
		return
	}

	fields := []zap.Field{
		zap.String("type", msg.Type),
		zap.String("student", c.StudentName),
		zap.String("date", c.Date),
		zap.Time("at", c.At),
	}
	if c.ID != 0 {
		fields = append(fields, zap.Int64("id", c.ID))
	}
	if c.Status != "" {
		fields = append(fields, zap.String("status", string(c.Status)))
	}
	if c.Affected != 0 {
		fields = append(fields, zap.Int64("affected", c.Affected))
	}
	if c.BatchID != "" {
		fields = append(fields, zap.String("batch", c.BatchID))
	}
	log.Info("attendance changed", fields...)
}
