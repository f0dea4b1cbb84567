package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/agrostats/faostat-api/api/catalog"
	"github.com/agrostats/faostat-api/api/config"
	"github.com/agrostats/faostat-api/api/datasets"
	"github.com/agrostats/faostat-api/api/handlers"
	"github.com/agrostats/faostat-api/api/metrics"
	"github.com/agrostats/faostat-api/api/query"
	"github.com/agrostats/faostat-api/api/server"
	"github.com/agrostats/faostat-api/utils/pkg/logger"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	listenAddr    = pflag.String("listen", ":8080", "HTTP listen address")
	verbose       = pflag.BoolP("verbose", "v", false, "Enable verbose logging")
	runMigrations = pflag.Bool("migrate", false, "Apply embedded schema migrations before serving")
	showVersion   = pflag.Bool("version", false, "Print version and exit")
)

func main() {
	pflag.Parse()

	if *showVersion {
		fmt.Printf("faostat-api %s (commit %s, built %s)\n", version, commit, date)
		return
	}

	// Optional; production supplies real environment variables.
	_ = godotenv.Load()

	log := logger.New(*verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pgCfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid database configuration", "error", err)
		os.Exit(1)
	}

	if *runMigrations || os.Getenv("DB_RUN_MIGRATIONS") == "true" {
		if err := config.RunMigrations(log, pgCfg.ConnString()); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
	}

	pool, err := config.LoadPostgres(ctx, log, pgCfg)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := query.NewPgStore(pool, query.DefaultQueryTimeout)

	codes, err := catalog.Load(ctx, store, log)
	if err != nil {
		log.Error("failed to load dimension catalog", "error", err)
		os.Exit(1)
	}

	configs, err := datasets.Build(codes)
	if err != nil {
		log.Error("invalid dataset configuration", "error", err)
		os.Exit(1)
	}

	engine := query.NewEngine(store, log)
	api := handlers.New(engine, configs, codes, log)

	metrics.BuildInfo.WithLabelValues(version, commit, date).Set(1)

	srv, err := server.New(log, server.Config{
		ListenAddr:        *listenAddr,
		VersionPrefix:     os.Getenv("API_VERSION_PREFIX"),
		ReadHeaderTimeout: 10 * time.Second,
		ShutdownTimeout:   15 * time.Second,
		VersionInfo: server.VersionInfo{
			Version: version,
			Commit:  commit,
			Date:    date,
		},
	}, pool, api)
	if err != nil {
		log.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	if err := srv.Run(ctx); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
