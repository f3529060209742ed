package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"gofold/adapters/excel"
	"gofold/adapters/model"
	"gofold/adapters/postgres"
	"gofold/adapters/rng"
	"gofold/app"
	"gofold/internal/config"
	"gofold/ports"
)

func main() {
	// Load .env file if it exists (ignore errors - env vars might be set directly)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var (
		dataPath    = flag.String("data", cfg.Data.Path, "path to .xlsx or .csv dataset")
		labelColumn = flag.String("label", cfg.Data.LabelColumn, "name of the label column")
		modelName   = flag.String("model", "tree", "model family: tree or majority")
		baseline    = flag.String("baseline", "", "optional baseline model to compare against (tree or majority)")
		k           = flag.Int("k", cfg.Run.K, "number of folds per repetition")
		repetitions = flag.Int("reps", cfg.Run.Repetitions, "number of repetitions")
		baseSeed    = flag.Int64("seed", cfg.Run.BaseSeed, "base random seed")
		confidence  = flag.Float64("confidence", cfg.Run.Confidence, "two-sided confidence level in (0,1)")
		workers     = flag.Int("workers", cfg.Run.MaxWorkers, "max concurrent fold evaluations")
		stratify    = flag.Bool("stratify", cfg.Run.Stratify, "preserve class proportions within folds")
	)
	flag.Parse()

	if *dataPath == "" {
		fmt.Fprintln(os.Stderr, "missing -data (or GOFOLD_DATA_PATH)")
		flag.Usage()
		os.Exit(2)
	}

	m, err := buildModel(*modelName)
	if err != nil {
		log.Fatalf("model: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var ledger ports.ReportLedger
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		repo := postgres.NewReportRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("database: %v", err)
		}
		ledger = repo
	}

	reader := excel.NewDataReader(*dataPath, *labelColumn)
	service := app.NewEstimatorService(reader, rng.New(), ledger)

	req := app.RunRequest{
		Model:       m,
		K:           *k,
		Repetitions: *repetitions,
		BaseSeed:    *baseSeed,
		Confidence:  *confidence,
		MaxWorkers:  *workers,
		Stratify:    *stratify,
	}

	if *baseline != "" {
		b, err := buildModel(*baseline)
		if err != nil {
			log.Fatalf("baseline: %v", err)
		}
		comparison, err := service.Compare(ctx, req, b)
		if err != nil {
			log.Fatalf("compare: %v", err)
		}
		printReport(comparison.Candidate, *k, *repetitions, *confidence)
		fmt.Println()
		printReport(comparison.Baseline, *k, *repetitions, *confidence)
		fmt.Println()
		fmt.Printf("accuracy diff:  %+.4f (%s minus %s)\n", comparison.Test.ObservedDiff, m.Name(), b.Name())
		fmt.Printf("p-value:        %.4f (%d shuffles, two-sided)\n", comparison.Test.PValue, comparison.Test.Shuffles)
		return
	}

	outcome, err := service.Run(ctx, req)
	if err != nil {
		log.Fatalf("run: %v", err)
	}
	printReport(outcome, *k, *repetitions, *confidence)
}

func buildModel(name string) (ports.Model, error) {
	switch name {
	case "tree":
		return model.NewTree(), nil
	case "majority":
		return model.NewMajority(), nil
	default:
		return nil, fmt.Errorf("unknown model %q (want tree or majority)", name)
	}
}

func printReport(outcome *app.RunOutcome, k, repetitions int, confidence float64) {
	r := outcome.Report
	fmt.Printf("run:            %s\n", outcome.RunID)
	fmt.Printf("fingerprint:    %s\n", outcome.Fingerprint)
	fmt.Printf("samples:        %d (%d folds x %d repetitions)\n", r.N, k, repetitions)
	fmt.Printf("mean accuracy:  %.4f\n", r.Mean)
	fmt.Printf("std deviation:  %.4f\n", r.StdDev)
	fmt.Printf("standard error: %.4f\n", r.StandardError)
	fmt.Printf("%.0f%% interval:   [%.4f, %.4f] (z=%.3f, %s)\n",
		confidence*100, r.Lower, r.Upper, r.Z, r.Method)
}
