package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"conciliador/internal/config"
	"conciliador/internal/gateway"
	"conciliador/internal/logger"
	"conciliador/internal/usecase"
)

func main() {
	cfg := config.FromEnv()

	// Define command-line flags; defaults come from the environment so that
	// flag > env > built-in default.
	paymentsFile := flag.String("payments", "", "Path to the payment sheet (.csv or .xlsx) (required)")
	statementFile := flag.String("statement", "", "Path to the bank statement (.csv or .xlsx) (required)")
	chartFile := flag.String("chart", "", "Path to the chart of accounts (.csv or .xlsx) (required)")
	outFile := flag.String("out", "conciliacao.csv", "Path for the generated ledger CSV")
	toleranceDays := flag.Int("tolerance-days", cfg.ToleranceDays, "Pair outflows up to N days away from the payment date (0 = same day only)")
	inferDiscount := flag.Bool("infer-discount", cfg.InferDiscount, "Book unexplained positive residuals as discounts")
	bankName := flag.String("bank", cfg.DefaultBankName, "Chart name of the bank account settling matched payments")
	cashName := flag.String("cash", cfg.DefaultCashTillName, "Chart name of the cash till settling pending payments")
	feesFile := flag.String("fees", "", "Optional fee schedule CSV (CONTA;TARIFA) overriding the built-in table")
	strategy := flag.String("strategy", cfg.FuzzyStrategy, "Fuzzy name lookup strategy: levenshtein or closestmatch")
	flag.Parse()

	// Validate required flags
	if *paymentsFile == "" || *statementFile == "" || *chartFile == "" {
		fmt.Println("Error: flags -payments, -statement and -chart are required.")
		flag.Usage()
		os.Exit(1)
	}

	runID := uuid.NewString()
	log := logger.New().With().Str("run_id", runID).Logger()
	ctx := logger.WithContext(context.Background(), log)

	cfg.ToleranceDays = *toleranceDays
	cfg.StrictDateMatching = *toleranceDays == 0
	cfg.InferDiscount = *inferDiscount
	cfg.DefaultBankName = *bankName
	cfg.DefaultCashTillName = *cashName
	cfg.FuzzyStrategy = strings.ToLower(strings.TrimSpace(*strategy))
	if *feesFile != "" {
		schedule, err := config.LoadFeeSchedule(*feesFile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load fee schedule")
		}
		cfg.Fees = schedule
	}

	// --- Dependency Injection (Wiring the application) ---

	// 1. Create the repository (the outermost layer)
	repo := gateway.NewFileBatchRepository()

	// 2. Create the usecase and inject the repository (the core logic layer)
	reconciliation := usecase.NewReconciliationUseCase(repo, cfg)

	// --- Execute the Usecase ---
	report, entries, err := reconciliation.Run(ctx, *paymentsFile, *statementFile, *chartFile)
	if err != nil {
		log.Fatal().Err(err).Msg("reconciliation failed")
	}
	report.RunID = runID

	// A blocked run still prints its report; it just writes no ledger.
	if !report.Validation.HasBlockers {
		if err := gateway.WriteLedger(*outFile, entries); err != nil {
			log.Fatal().Err(err).Msg("could not write ledger file")
		}
		report.OutputPath = *outFile
	}

	// --- Present the Output ---
	output, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("could not render run report")
	}
	fmt.Println(string(output))

	if report.Validation.HasBlockers {
		os.Exit(1)
	}
}
