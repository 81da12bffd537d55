package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"smartattendance/internal/attendance"
	"smartattendance/internal/cli"
	"smartattendance/internal/config"
	"smartattendance/internal/export"
	"smartattendance/internal/logging"
	"smartattendance/internal/metrics"
	"smartattendance/internal/queue"
	"smartattendance/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "attendance: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run wires the store, feed and metrics to the menu on stdin/stdout. It
// returns nil when the user exits or ctx is cancelled.
func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("attendance", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("session", uuid.NewString()))

	db, err := store.Open(ctx, store.Config{
		Dialect:        cfg.Database.Driver,
		DSN:            cfg.Database.DSN(),
		ConnectTimeout: cfg.Database.ConnectTimeout,
	})
	if err != nil {
		if errors.Is(err, store.ErrConnection) {
			fmt.Fprintf(stdout, "Failed to connect to %s database\n", cfg.Database.Driver)
		}
		return err
	}
	defer db.Close()
	fmt.Fprintf(stdout, "Connected to %s database\n", db.Dialect())
	logger.Info("store opened", zap.String("driver", db.Dialect()))

	var feed queue.Queue
	if cfg.Feed.Backend == config.FeedRedis {
		rdb := store.NewRedis(cfg.Feed.RedisAddr)
		defer rdb.Close()
		if err := rdb.Ping(ctx); err != nil {
			logger.Warn("change feed broker unreachable, events will be dropped", zap.String("addr", cfg.Feed.RedisAddr), zap.Error(err))
		}
		feed = queue.NewRedisQueue(rdb.Client, cfg.Feed.Key)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	if cfg.Metrics.Addr != "" {
		if cfg.Env == "production" || cfg.Env == "prod" {
			gin.SetMode(gin.ReleaseMode)
		}
		router := metrics.Router(reg, db.HealthCheck, cfg.Metrics.HealthPerMinute)
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Addr, router, logger); err != nil {
				logger.Error("metrics listener stopped", zap.Error(err))
			}
		}()
	}

	repo := attendance.NewRepository(db)
	svc := attendance.NewService(repo, feed, m, logger)
	driver := cli.New(svc, db, export.New(repo, m), stdin, stdout, logger)

	err = driver.Run(ctx)
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(stdout, "\nExiting...")
		return nil
	}
	return err
}
