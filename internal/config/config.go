package config

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Fuzzy lookup strategy names accepted in configuration.
const (
	StrategyLevenshtein  = "levenshtein"
	StrategyClosestMatch = "closestmatch"
)

// FeeSchedule maps supplier account codes to a flat per-transaction bank fee.
// FeeOnlyAccount receives dedicated fee rows when a transaction has no penalty
// to absorb the fee.
type FeeSchedule struct {
	Fees           map[string]decimal.Decimal
	FeeOnlyAccount string
}

// FeeFor returns the flat fee configured for an account code.
func (s FeeSchedule) FeeFor(accountCode string) (decimal.Decimal, bool) {
	fee, ok := s.Fees[accountCode]
	return fee, ok
}

// DefaultFeeSchedule returns the fee table shipped with the application.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		Fees: map[string]decimal.Decimal{
			"271": decimal.NewFromFloat(1.39),
			"272": decimal.NewFromFloat(1.79),
			"274": decimal.NewFromFloat(1.39),
			"291": decimal.NewFromFloat(1.39),
		},
		FeeOnlyAccount: "316",
	}
}

// LoadFeeSchedule reads a fee override file with a CONTA;TARIFA header.
// Semicolon and comma separators are accepted; fee values may use either
// decimal separator.
func LoadFeeSchedule(path string) (FeeSchedule, error) {
	file, err := os.Open(path)
	if err != nil {
		return FeeSchedule{}, fmt.Errorf("failed to open fee schedule %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return FeeSchedule{}, fmt.Errorf("failed to read fee schedule %s: %w", path, err)
	}
	if len(rows) == 0 {
		return FeeSchedule{}, fmt.Errorf("fee schedule %s is empty", path)
	}

	schedule := FeeSchedule{
		Fees:           make(map[string]decimal.Decimal),
		FeeOnlyAccount: DefaultFeeSchedule().FeeOnlyAccount,
	}
	for i, row := range rows {
		if i == 0 && len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "CONTA") {
			continue
		}
		if len(row) < 2 {
			continue
		}
		code := strings.TrimSpace(row[0])
		raw := strings.Replace(strings.TrimSpace(row[1]), ",", ".", 1)
		if code == "" || raw == "" {
			continue
		}
		fee, err := decimal.NewFromString(raw)
		if err != nil {
			return FeeSchedule{}, fmt.Errorf("invalid fee %q for account %s in %s: %w", row[1], code, path, err)
		}
		schedule.Fees[code] = fee.Round(2)
	}
	return schedule, nil
}

// Config holds every knob recognized by a reconciliation run.
type Config struct {
	StrictDateMatching  bool
	ToleranceDays       int
	InferDiscount       bool
	DefaultBankName     string
	DefaultCashTillName string
	FuzzyStrategy       string
	Fees                FeeSchedule
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		StrictDateMatching:  true,
		ToleranceDays:       0,
		InferDiscount:       true,
		DefaultBankName:     "Sicoob",
		DefaultCashTillName: "Caixa",
		FuzzyStrategy:       StrategyLevenshtein,
		Fees:                DefaultFeeSchedule(),
	}
}

// FromEnv builds a configuration from environment variables, loading a .env
// file first when one is present. Unset variables keep their defaults.
func FromEnv() Config {
	// A missing .env file is fine; flags and defaults still apply.
	_ = godotenv.Load()

	cfg := Default()
	if v := os.Getenv("CONCILIADOR_BANK_NAME"); v != "" {
		cfg.DefaultBankName = v
	}
	if v := os.Getenv("CONCILIADOR_CASH_TILL_NAME"); v != "" {
		cfg.DefaultCashTillName = v
	}
	if v := os.Getenv("CONCILIADOR_TOLERANCE_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.ToleranceDays = n
			cfg.StrictDateMatching = n == 0
		}
	}
	if v := os.Getenv("CONCILIADOR_INFER_DISCOUNT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.InferDiscount = b
		}
	}
	if v := os.Getenv("CONCILIADOR_FUZZY_STRATEGY"); v != "" {
		cfg.FuzzyStrategy = strings.ToLower(strings.TrimSpace(v))
	}
	return cfg
}
