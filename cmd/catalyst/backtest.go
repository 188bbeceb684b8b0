package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/catalystlab/catalyst/internal/backtest"
	"github.com/catalystlab/catalyst/internal/config"
	"github.com/catalystlab/catalyst/internal/llm/factory"
	"github.com/catalystlab/catalyst/internal/logger"
	"github.com/catalystlab/catalyst/internal/metrics"
	"github.com/catalystlab/catalyst/internal/pricing"
	"github.com/catalystlab/catalyst/internal/report"
	"github.com/catalystlab/catalyst/internal/storage/archive"
	"github.com/catalystlab/catalyst/internal/storage/event"
	"github.com/catalystlab/catalyst/internal/storage/run"
	"github.com/catalystlab/catalyst/internal/storage/strategies"
	"github.com/catalystlab/catalyst/internal/strategy"
)

var (
	backtestFile      string
	backtestStoredID  string
	backtestFrom      string
	backtestTo        string
	backtestTickers   []string
	backtestSectors   []string
	backtestMinScore  float64
	backtestNarrative bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest [preset]",
	Short: "Run a strategy against historical events",
	Long: `Run a strategy over a historical event window and print the
performance report. The strategy is a built-in preset name, a JSON
definition file (--file), or a persisted strategy ID (--stored).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBacktestCmd,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestFile, "file", "", "Strategy definition JSON file")
	backtestCmd.Flags().StringVar(&backtestStoredID, "stored", "", "Persisted strategy ID")
	backtestCmd.Flags().StringVar(&backtestFrom, "from", "", "Start date YYYY-MM-DD (required)")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "End date YYYY-MM-DD (required)")
	backtestCmd.Flags().StringSliceVar(&backtestTickers, "tickers", nil, "Restrict to tickers")
	backtestCmd.Flags().StringSliceVar(&backtestSectors, "sectors", nil, "Restrict to sectors")
	backtestCmd.Flags().Float64Var(&backtestMinScore, "min-score", 0, "Minimum event score")
	backtestCmd.Flags().BoolVar(&backtestNarrative, "narrative", false, "Generate LLM narrative summary")

	backtestCmd.MarkFlagRequired("from")
	backtestCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktestCmd(cmd *cobra.Command, args []string) error {
	fromDate, err := time.Parse("2006-01-02", backtestFrom)
	if err != nil {
		return fmt.Errorf("invalid from date format (expected YYYY-MM-DD): %w", err)
	}
	toDate, err := time.Parse("2006-01-02", backtestTo)
	if err != nil {
		return fmt.Errorf("invalid to date format (expected YYYY-MM-DD): %w", err)
	}

	cfg := config.Defaults()
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.Must(debug)
	defer log.Sync()

	if cfg.Storage.Hot.DSN == "" {
		return fmt.Errorf("storage.hot.dsn required to load events")
	}

	events, err := event.OpenPostgres(cfg.Storage.Hot.DSN)
	if err != nil {
		return err
	}
	priceDB, err := pricing.OpenPostgres(cfg.Storage.Hot.DSN)
	if err != nil {
		return err
	}

	var prices pricing.Source = priceDB
	if cfg.Pricing.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Pricing.RedisAddr,
			Password: cfg.Pricing.RedisPassword,
			DB:       cfg.Pricing.RedisDB,
		})
		prices = pricing.NewRedisSource(client, priceDB, cfg.Pricing.CacheTTL, log)
	}

	opts := backtest.Options{
		Logger:         log,
		InitialCapital: cfg.Engine.InitialCapital,
	}
	if cfg.Metrics.Enabled {
		opts.Metrics = metrics.NewRegistry()
	}
	if store, err := openArchive(cfg.Storage.Cold); err != nil {
		return err
	} else if store != nil {
		opts.Archive = store
	}
	if backtestStoredID != "" {
		runStore, err := run.OpenPostgres(cfg.Storage.Hot.DSN)
		if err != nil {
			return err
		}
		stratStore, err := strategies.OpenPostgres(cfg.Storage.Hot.DSN)
		if err != nil {
			return err
		}
		opts.Runs = runStore
		opts.Strategies = stratStore
	}

	engine := backtest.NewEngine(events, prices, opts)

	var minScore *float64
	if cmd.Flags().Changed("min-score") {
		minScore = &backtestMinScore
	}

	var result *backtest.Result
	if backtestStoredID != "" {
		var runID string
		result, runID, err = engine.RunFromStoredStrategy(cmd.Context(), backtestStoredID, fromDate, toDate)
		if err != nil {
			return err
		}
		fmt.Printf("Run ID: %s\n\n", runID)
	} else {
		def, err := resolveStrategy(args)
		if err != nil {
			return err
		}
		result, err = engine.RunBacktest(cmd.Context(), backtest.RunParams{
			Strategy: def,
			Start:    fromDate,
			End:      toDate,
			Tickers:  backtestTickers,
			Sectors:  backtestSectors,
			MinScore: minScore,
		})
		if err != nil {
			return err
		}
	}

	fmt.Print(report.Render(result))

	if backtestNarrative {
		if cfg.LLM.Provider == "" {
			return fmt.Errorf("llm.provider required for --narrative")
		}
		provider, err := factory.New(cfg.LLM)
		if err != nil {
			return err
		}
		narrative, err := report.NewGenerator(provider).Narrative(cmd.Context(), result)
		if err != nil {
			return err
		}
		fmt.Printf("\n%s\n", narrative)
	}
	return nil
}

// resolveStrategy picks the definition from the preset argument or the
// --file flag.
func resolveStrategy(args []string) (*strategy.Definition, error) {
	if backtestFile != "" {
		raw, err := os.ReadFile(backtestFile)
		if err != nil {
			return nil, fmt.Errorf("reading strategy file: %w", err)
		}
		def, err := strategy.Parse(raw)
		if err != nil {
			return nil, err
		}
		return def, def.Validate()
	}

	if len(args) == 0 {
		return nil, fmt.Errorf("preset name, --file, or --stored required")
	}
	def, ok := strategy.Preset(args[0])
	if !ok {
		names := make([]string, 0, len(strategy.Presets()))
		for name := range strategy.Presets() {
			names = append(names, name)
		}
		return nil, fmt.Errorf("unknown preset %q (available: %s)", args[0], strings.Join(names, ", "))
	}
	return def, nil
}

func openArchive(cfg config.ColdStorageConfig) (archive.Storage, error) {
	switch cfg.Type {
	case "localfs":
		if cfg.Path == "" {
			return nil, nil
		}
		return archive.NewLocalFS(cfg.Path)
	case "s3":
		return archive.NewS3(archive.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	}
	return nil, nil
}
