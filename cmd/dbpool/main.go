// dbpool is a connection pool exerciser and health checker.
//
// It loads a pool configuration, opens a managed connection pool against
// the configured database and either runs a one-shot health check or a
// concurrent query workload while exporting pool metrics over HTTP.
//
// Usage:
//
//	dbpool [flags]
//	dbpool check
//
// Flags:
//
//	-config string
//	    Path to configuration file (default "~/.dbpool/config.toml")
//	-driver string
//	    Database driver, mysql or sqlite3 (overrides config)
//	-addr string
//	    Database address (overrides config)
//	-database string
//	    Database name or file path (overrides config)
//	-user string
//	    Database user (overrides config)
//	-query string
//	    Query executed by workload workers (default "SELECT 1")
//	-workers int
//	    Number of concurrent workload workers (default 4)
//	-ops int
//	    Queries per worker, 0 runs until interrupted (default 0)
//	-metrics string
//	    Listen address for the /metrics endpoint, empty disables it
//	-v
//	    Enable verbose logging
//	-version
//	    Print version and exit
//
// See https://github.com/go-i2p/dbpool for more information.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-i2p/dbpool/lib/config"
	"github.com/go-i2p/dbpool/lib/driverdb"
	"github.com/go-i2p/dbpool/lib/metrics"
	"github.com/go-i2p/dbpool/lib/pool"
	"github.com/go-i2p/dbpool/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Determine default config path
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	defaultConfigPath := filepath.Join(homeDir, ".dbpool", "config.toml")

	// Parse command-line flags
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	driverName := flag.String("driver", "", "Database driver, mysql or sqlite3 (overrides config)")
	addr := flag.String("addr", "", "Database address (overrides config)")
	database := flag.String("database", "", "Database name or file path (overrides config)")
	user := flag.String("user", "", "Database user (overrides config)")
	query := flag.String("query", "SELECT 1", "Query executed by workload workers")
	workers := flag.Int("workers", 4, "Number of concurrent workload workers")
	ops := flag.Int("ops", 0, "Queries per worker, 0 runs until interrupted")
	metricsAddr := flag.String("metrics", "", "Listen address for the /metrics endpoint, empty disables it")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "dbpool - Database Connection Pool Exerciser\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  dbpool [flags]            Run a concurrent query workload\n")
		fmt.Fprintf(os.Stderr, "  dbpool check              Run a one-shot health check\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	// Handle version flag
	if *showVersion {
		fmt.Printf("dbpool version %s\n", version.Full())
		return 0
	}

	// Set up logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// Load configuration file, then apply CLI overrides
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}
	if *driverName != "" {
		cfg.DB.Driver = *driverName
	}
	if *addr != "" {
		cfg.DB.Address = *addr
	}
	if *database != "" {
		cfg.DB.Database = *database
	}
	if *user != "" {
		cfg.DB.User = *user
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}

	connector, err := driverdb.FromConfig(cfg.DB)
	if err != nil {
		logger.Error("failed to build connector", "error", err)
		return 1
	}

	p, err := pool.New(connector, pool.Config{
		MaxConnections: cfg.Pool.MaxConnections,
		IdleTimeout:    cfg.Pool.IdleTimeout.Duration(),
	})
	if err != nil {
		logger.Error("failed to create pool", "error", err)
		return 1
	}
	defer p.Close()

	// Check for health-check subcommand
	args := flag.Args()
	if len(args) > 0 && args[0] == "check" {
		return handleCheck(p, *query, logger)
	}

	metrics.RecordStartTime()

	// Serve pool metrics if requested
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv := &http.Server{Addr: *metricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer srv.Close()
		logger.Info("metrics endpoint started", "addr", *metricsAddr)
	}

	// Create a context that is cancelled on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	logger.Info("dbpool started",
		"driver", cfg.DB.Driver,
		"max_connections", cfg.Pool.MaxConnections,
		"workers", *workers,
		"version", version.Version)

	var succeeded, failed int64
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for n := 0; *ops == 0 || n < *ops; n++ {
				if ctx.Err() != nil {
					return
				}
				if err := runQuery(ctx, p, *query); err != nil {
					atomic.AddInt64(&failed, 1)
					logger.Debug("query failed", "worker", id, "error", err)
					continue
				}
				atomic.AddInt64(&succeeded, 1)
			}
		}(i)
	}

	// Refresh gauge metrics while the workload runs
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-done:
			break loop
		case <-ctx.Done():
			<-done
			break loop
		case <-ticker.C:
			pool.UpdateMetrics(p.Stats())
		}
	}

	stats := p.Stats()
	logger.Info("workload finished",
		"elapsed", time.Since(start).Round(time.Millisecond),
		"succeeded", atomic.LoadInt64(&succeeded),
		"failed", atomic.LoadInt64(&failed),
		"connections_open", stats.NumOpen,
		"connections_idle", stats.NumIdle,
		"acquires", stats.AcquireCount,
		"evictions", stats.IdleEvictions)

	if atomic.LoadInt64(&failed) > 0 {
		return 1
	}
	return 0
}

// runQuery executes one query and drains the result so the connection
// returns to the pool.
func runQuery(ctx context.Context, p *pool.Pool, query string) error {
	res, err := p.Query(ctx, query)
	if err != nil {
		return err
	}
	defer res.Close()

	row := make([]any, len(res.Columns()))
	for {
		if err := res.Next(row); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// handleCheck runs a single query and reports whether the database is
// reachable through the pool.
func handleCheck(p *pool.Pool, query string, logger *slog.Logger) int {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := runQuery(ctx, p, query); err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}

	stats := p.Stats()
	fmt.Printf("Database:     OK\n")
	fmt.Printf("Connections:  %d open, %d idle (limit %d)\n",
		stats.NumOpen, stats.NumIdle, stats.MaxConnections)
	fmt.Printf("Version:      %s\n", version.Full())
	return 0
}
