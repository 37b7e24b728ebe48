package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/costpilot/costpilot/internal/apiserver"
	"github.com/costpilot/costpilot/internal/config"
	"github.com/costpilot/costpilot/internal/inventory"
	"github.com/costpilot/costpilot/internal/metrics"
	"github.com/costpilot/costpilot/internal/store"
	"github.com/costpilot/costpilot/pkg/cost"
	"github.com/costpilot/costpilot/pkg/pricing"
	"github.com/costpilot/costpilot/pkg/resource"
)

func main() {
	var (
		configFile    string
		inventoryFile string
		compareSpec   string
		capacityMode  bool
		tierFlag      string
		daysFlag      int
	)
	flag.StringVar(&configFile, "config", "/etc/costpilot/config.yaml", "Path to config file")
	flag.StringVar(&inventoryFile, "inventory", "", "Price a saved inventory dump (JSON or YAML) and exit")
	flag.StringVar(&compareSpec, "compare", "", `Rank entities from a "name:cpu,memGB[,storageGB]|..." spec and exit`)
	flag.BoolVar(&capacityMode, "capacity", false, "Price node capacity instead of pod requests (with -inventory)")
	flag.StringVar(&tierFlag, "tier", "", "Pricing tier override for one-shot modes (standard or autopilot)")
	flag.IntVar(&daysFlag, "days", 0, "Period override in days for one-shot modes")
	flag.Parse()

	cfg, err := config.LoadFromFile(configFile)
	if err != nil {
		slog.Warn("Failed to load config file, falling back to defaults/env", "path", configFile, "error", err)
		cfg = config.DefaultConfig()
	}
	if ve := config.ValidateDetailed(cfg); ve != nil {
		slog.Error("Invalid configuration", "error", ve.Error(), "configFile", configFile)
		os.Exit(1)
	}

	tier := cfg.Tier()
	if tierFlag != "" {
		parsed, err := pricing.ParseTier(tierFlag)
		if err != nil {
			slog.Error("Invalid -tier flag", "error", err)
			os.Exit(1)
		}
		tier = parsed
	}
	days := cfg.Defaults.PeriodDays
	if daysFlag > 0 {
		days = daysFlag
	}

	switch {
	case inventoryFile != "":
		os.Exit(runInventory(cfg, inventoryFile, capacityMode, tier, days))
	case compareSpec != "":
		os.Exit(runCompare(cfg, compareSpec, tier, days))
	}

	serve(cfg)
}

// runInventory prices a dump saved from kubectl get -o json/yaml and
// prints the breakdown to stdout.
func runInventory(cfg *config.Config, path string, capacityMode bool, tier pricing.Tier, days int) int {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("Reading inventory file failed", "path", path, "error", err)
		return 1
	}
	dump, err := inventory.NewDecoder(nil).Decode(data)
	if err != nil {
		slog.Error("Decoding inventory failed", "path", path, "error", err)
		return 1
	}

	aggregator := resource.NewAggregator(cfg.Policy(), nil)
	var (
		agg  resource.Aggregation
		mode = "requests"
	)
	if capacityMode {
		mode = "capacity"
		agg, err = aggregator.Capacity(dump.Nodes)
	} else {
		agg, err = aggregator.Aggregate(dump.Pods, dump.Claims)
	}
	if err != nil {
		slog.Error("Aggregating inventory failed", "error", err)
		return 1
	}

	breakdown, err := cost.NewEstimator(cfg.Pricing.Table()).Estimate(agg.Totals, tier, days)
	if err != nil {
		slog.Error("Estimate failed", "error", err)
		return 1
	}
	return printJSON(map[string]interface{}{
		"mode":          mode,
		"totals":        agg.Totals,
		"skippedFields": agg.Skipped,
		"breakdown":     breakdown,
	})
}

// runCompare ranks the entities of a compact comparison spec and prints
// the ranking to stdout.
func runCompare(cfg *config.Config, spec string, tier pricing.Tier, days int) int {
	ranking, err := cost.NewEstimator(cfg.Pricing.Table()).CompareText(spec, tier, days)
	if err != nil {
		slog.Error("Comparison failed", "error", err)
		return 1
	}
	return printJSON(ranking)
}

func printJSON(v interface{}) int {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		slog.Error("Encoding output failed", "error", err)
		return 1
	}
	fmt.Println(string(out))
	return 0
}

func serve(cfg *config.Config) {
	if !cfg.APIServer.Enabled {
		slog.Error("API server is disabled and no one-shot flag was given, nothing to do")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// History persistence is optional: a failed open degrades to
	// serving without it rather than refusing to start.
	var (
		db        *store.DB
		dbWriter  *store.Writer
		estimates *store.EstimateStore
	)
	if cfg.History.Enabled {
		opened, err := store.Open(store.Config{
			Path:          cfg.Database.Path,
			RetentionDays: cfg.Database.RetentionDays,
		})
		if err != nil {
			slog.Error("Failed to open database, continuing without persistence", "path", cfg.Database.Path, "error", err)
		} else {
			db = opened
			dbWriter = store.NewWriter(db.RawDB(), 0)
			dbWriter.Run(ctx)
			slog.Info("Estimate history enabled", "path", cfg.Database.Path, "retentionDays", cfg.Database.RetentionDays)
		}
	}
	estimates = store.NewEstimateStore(rawDB(db), dbWriter)

	cronRunner := cron.New()
	if db != nil {
		if _, err := cronRunner.AddFunc(cfg.History.CleanupSchedule, func() {
			if err := db.Cleanup(); err != nil {
				slog.Error("Scheduled history cleanup failed", "error", err)
				return
			}
			metrics.HistoryCleanupsTotal.Inc()
			if n := dbWriter.DroppedCount(); n > 0 {
				slog.Info("Database writer drops detected", "totalDropped", n)
			}
		}); err != nil {
			slog.Error("Invalid cleanup schedule", "schedule", cfg.History.CleanupSchedule, "error", err)
			os.Exit(1)
		}
		cronRunner.Start()
	}

	srv := apiserver.NewServer(cfg, estimates)
	go func() {
		slog.Info("Starting API server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("API server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)

	if db != nil {
		cronRunner.Stop()
		// Drain async writer before closing DB to flush pending writes.
		dbWriter.Drain()
		db.Close()
	}
}

func rawDB(db *store.DB) *sql.DB {
	if db == nil {
		return nil
	}
	return db.RawDB()
}
