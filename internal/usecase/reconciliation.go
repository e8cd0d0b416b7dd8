package usecase

import (
	"context"
	"fmt"

	"conciliador/internal/accounts"
	"conciliador/internal/config"
	"conciliador/internal/domain"
	"conciliador/internal/ledger"
	"conciliador/internal/logger"
	"conciliador/internal/match"
)

// ReconciliationUseCase orchestrates a reconciliation run: ingestion, matching,
// pre-flight validation and ledger synthesis.
type ReconciliationUseCase struct {
	repo BatchRepository
	cfg  config.Config
}

// NewReconciliationUseCase creates a new instance of the usecase.
func NewReconciliationUseCase(repo BatchRepository, cfg config.Config) *ReconciliationUseCase {
	return &ReconciliationUseCase{repo: repo, cfg: cfg}
}

// Run executes one batch and returns the run report plus the synthesized
// ledger entries. A validation report with blockers is a normal outcome: the
// report comes back with nil entries and a nil error, and the caller decides
// how to surface the gaps.
func (uc *ReconciliationUseCase) Run(ctx context.Context, paymentsPath, statementPath, chartPath string) (*domain.RunReport, []domain.LedgerEntry, error) {
	log := logger.FromContext(ctx)

	// Step 1: Data Ingestion
	payments, err := uc.repo.ReadPayments(ctx, paymentsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("could not read payment sheet: %w", err)
	}

	outflows, inflows, err := uc.repo.ReadStatement(ctx, statementPath)
	if err != nil {
		return nil, nil, fmt.Errorf("could not read bank statement: %w", err)
	}

	chart, err := uc.repo.ReadChart(ctx, chartPath)
	if err != nil {
		return nil, nil, fmt.Errorf("could not read chart of accounts: %w", err)
	}

	log.Info().
		Int("payments", len(payments)).
		Int("bank_outflows", len(outflows)).
		Int("bank_inflows", len(inflows)).
		Int("chart_entries", len(chart)).
		Msg("batch loaded")

	// Step 2: Payment-to-Outflow Matching
	result := match.Match(payments, outflows, match.Params{
		StrictDateMatching: uc.cfg.StrictDateMatching,
		ToleranceDays:      uc.cfg.ToleranceDays,
	})
	if result.Stats.QualityAlert {
		log.Warn().
			Float64("reconciliation_rate", result.Stats.ReconciliationRate).
			Msg("reconciliation rate below 85%, review the batch before importing")
	}

	// Step 3: Pre-flight Validation
	resolver := accounts.NewResolver(chart, uc.cfg.FuzzyStrategy)
	pendingOutflows := collectPendingOutflows(result, outflows)
	validation := ledger.NewValidator(resolver, uc.cfg).Validate(payments, pendingOutflows, inflows)

	pendencies := make([]domain.Pendency, 0, len(result.PendingPayments)+len(result.PendingBankOutflows))
	pendencies = append(pendencies, result.PendingPayments...)
	pendencies = append(pendencies, result.PendingBankOutflows...)

	report := &domain.RunReport{
		PaymentCount:     len(payments),
		BankOutflowCount: len(outflows),
		BankInflowCount:  len(inflows),
		Stats:            result.Stats,
		Validation:       validation,
		Pendencies:       pendencies,
	}

	// Step 4: Stop on blockers before any ledger work
	if validation.HasBlockers {
		log.Warn().
			Int("missing_suppliers", len(validation.MissingSuppliers)).
			Int("missing_customers", len(validation.MissingCustomers)).
			Int("missing_special_accounts", len(validation.MissingSpecialAccounts)).
			Msg("chart gaps block ledger synthesis")
		return report, nil, nil
	}

	// Step 5: Ledger Synthesis
	entries, err := ledger.NewSynthesizer(resolver, uc.cfg).Build(validation, result, payments, outflows, inflows)
	if err != nil {
		return nil, nil, fmt.Errorf("could not synthesize ledger entries: %w", err)
	}
	report.LedgerRowCount = len(entries)

	log.Info().
		Int("matched_payments", result.Stats.MatchedPayments).
		Int("ledger_rows", len(entries)).
		Msg("batch reconciled")
	return report, entries, nil
}

// collectPendingOutflows resolves the matcher's pending outflow IDs back to
// their bank records; only these become withdrawal rows.
func collectPendingOutflows(result domain.MatchResult, outflows []domain.BankRecord) []domain.BankRecord {
	byID := make(map[int]domain.BankRecord, len(outflows))
	for _, b := range outflows {
		byID[b.ID] = b
	}

	var pending []domain.BankRecord
	for _, pend := range result.PendingBankOutflows {
		if b, ok := byID[pend.RecordID]; ok {
			pending = append(pending, b)
		}
	}
	return pending
}
