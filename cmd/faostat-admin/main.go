// faostat-admin runs offline maintenance against the FAOSTAT database:
// schema migrations and the producer price anomaly scan.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/agrostats/faostat-api/api/anomaly"
	"github.com/agrostats/faostat-api/api/config"
	"github.com/agrostats/faostat-api/api/query"
	"github.com/agrostats/faostat-api/utils/pkg/logger"
)

var (
	migrate         = pflag.Bool("migrate", false, "Apply embedded schema migrations and exit")
	detectAnomalies = pflag.Bool("detect-anomalies", false, "Scan producer prices for successive-year anomalies")
	threshold       = pflag.Float64("threshold", anomaly.DefaultThresholdPercent, "Anomaly threshold as a percent change between successive years")
	reportsDir      = pflag.String("reports-dir", anomaly.DefaultReportDir, "Directory for anomaly report artifacts")
	verbose         = pflag.BoolP("verbose", "v", false, "Enable verbose logging")
)

func main() {
	pflag.Parse()

	_ = godotenv.Load()

	log := logger.New(*verbose)

	if !*migrate && !*detectAnomalies {
		pflag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pgCfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid database configuration", "error", err)
		os.Exit(1)
	}

	if *migrate {
		if err := config.RunMigrations(log, pgCfg.ConnString()); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
	}

	if *detectAnomalies {
		if err := runAnomalyScan(ctx, log, pgCfg); err != nil {
			log.Error("anomaly scan failed", "error", err)
			os.Exit(1)
		}
	}
}

func runAnomalyScan(ctx context.Context, log *slog.Logger, pgCfg config.PgConfig) error {
	pool, err := config.LoadPostgres(ctx, log, pgCfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	store := query.NewPgStore(pool, query.DefaultQueryTimeout)

	observations, err := anomaly.Fetch(ctx, store)
	if err != nil {
		return fmt.Errorf("fetch price series: %w", err)
	}
	log.Info("fetched producer price series", "observations", len(observations))

	report := anomaly.NewDetector(*threshold).Scan(observations)
	log.Info("scan complete",
		"groups", report.TotalGroups,
		"anomalies", report.TotalAnomalies,
		"threshold_percent", report.ThresholdPercent)

	path, err := anomaly.WriteReport(*reportsDir, report)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	log.Info("report written", "path", path)
	return nil
}
