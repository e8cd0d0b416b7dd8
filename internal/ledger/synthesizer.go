package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"conciliador/internal/accounts"
	"conciliador/internal/config"
	"conciliador/internal/domain"
)

// sentinelHistory is the history code required on cash-till and adjustment rows.
const sentinelHistory = "1"

var (
	// ErrBlockedSynthesis is returned when synthesis is invoked over a
	// validation report that still has blockers.
	ErrBlockedSynthesis = errors.New("synthesis blocked by validation report")

	// ErrUnresolvedAccount flags an account that slipped past validation.
	// It aborts the batch with no partial output.
	ErrUnresolvedAccount = errors.New("account not resolved")
)

// rowKind drives history-code assignment and party-name visibility.
type rowKind int

const (
	kindBankPayment rowKind = iota
	kindCashPayment
	kindWithdrawal
	kindDeposit
)

// Synthesizer decomposes matched and pending transactions into balanced
// ledger rows.
type Synthesizer struct {
	resolver *accounts.Resolver
	cfg      config.Config
}

func NewSynthesizer(resolver *accounts.Resolver, cfg config.Config) *Synthesizer {
	return &Synthesizer{resolver: resolver, cfg: cfg}
}

// Build emits the ledger table for one batch. Matched payments settle against
// the default bank account, pending payments against the cash till, leftover
// bank outflows book as withdrawals and every inflow books as a deposit.
// The validation report must be clean; a blocked report is a fatal error here
// because callers are expected to stop earlier.
func (s *Synthesizer) Build(
	report domain.ValidationReport,
	result domain.MatchResult,
	payments []domain.PaymentRecord,
	outflows []domain.BankRecord,
	inflows []domain.BankRecord,
) ([]domain.LedgerEntry, error) {
	if report.HasBlockers {
		return nil, ErrBlockedSynthesis
	}

	bank := s.resolver.Lookup(s.cfg.DefaultBankName, domain.CategoryCashEquivalent)
	if !bank.Resolved() {
		return nil, fmt.Errorf("default bank %q not found under cash equivalents: %w", s.cfg.DefaultBankName, ErrUnresolvedAccount)
	}
	till := s.resolver.Lookup(s.cfg.DefaultCashTillName, domain.CategoryCashEquivalent)
	if !till.Resolved() {
		return nil, fmt.Errorf("cash till %q not found under cash equivalents: %w", s.cfg.DefaultCashTillName, ErrUnresolvedAccount)
	}

	paymentsByID := make(map[int]domain.PaymentRecord, len(payments))
	for _, p := range payments {
		paymentsByID[p.ID] = p
	}
	outflowsByID := make(map[int]domain.BankRecord, len(outflows))
	for _, b := range outflows {
		outflowsByID[b.ID] = b
	}

	var rows []domain.LedgerEntry

	for _, group := range result.Groups {
		for _, id := range group.PaymentIDs {
			p, ok := paymentsByID[id]
			if !ok {
				continue
			}
			emitted, err := s.paymentRows(p, bank, kindBankPayment)
			if err != nil {
				return nil, err
			}
			rows = append(rows, emitted...)
		}
	}

	for _, pend := range result.PendingPayments {
		p, ok := paymentsByID[pend.RecordID]
		if !ok {
			continue
		}
		emitted, err := s.paymentRows(p, till, kindCashPayment)
		if err != nil {
			return nil, err
		}
		rows = append(rows, emitted...)
	}

	for _, pend := range result.PendingBankOutflows {
		b, ok := outflowsByID[pend.RecordID]
		if !ok {
			continue
		}
		row, err := s.withdrawalRow(b, bank)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	for _, b := range inflows {
		row, err := s.depositRow(b, bank)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	s.sanitize(rows, till)
	return rows, nil
}

// paymentRows expands one payment into its ledger rows. The settle account is
// the credit side of the paid amount: the bank for matched payments, the cash
// till for pending ones.
func (s *Synthesizer) paymentRows(p domain.PaymentRecord, settle domain.ResolvedAccount, kind rowKind) ([]domain.LedgerEntry, error) {
	name := strings.TrimSpace(p.SupplierName)
	supplier := s.resolver.Lookup(name, domain.CategorySupplier, domain.CategoryCustomer)
	if !supplier.Resolved() || supplier.Category != domain.CategorySupplier {
		return nil, fmt.Errorf("supplier %q is not registered as a supplier: %w", name, ErrUnresolvedAccount)
	}

	original, penalty, discount := ensureValues(p, s.cfg.InferDiscount)
	original, penalty, fee, hasFee := applyFee(supplier.AccountCode, original, penalty, s.cfg.Fees)

	hasDiscount := !discount.IsZero()
	hasPenalty := !penalty.IsZero()
	feeOnly := hasFee && p.Penalty.IsZero()

	date := FormatDate(p.Date)
	doc := FormatDocumentID(p.DocumentID)

	if !hasDiscount && !hasPenalty && !feeOnly {
		row := s.emit(domain.LedgerEntry{
			BatchMarker:   "1",
			Date:          date,
			PartyName:     name,
			DocumentID:    doc,
			OriginalValue: FormatValue(original),
			PaidValue:     FormatValue(p.PaidAmount),
			CreditAccount: settle.AccountCode,
			DebitAccount:  supplier.AccountCode,
		}, kind, "")
		return []domain.LedgerEntry{row}, nil
	}

	rows := []domain.LedgerEntry{s.emit(domain.LedgerEntry{
		BatchMarker:   "1",
		Date:          date,
		PartyName:     name,
		DocumentID:    doc,
		OriginalValue: FormatValue(original),
		DebitAccount:  supplier.AccountCode,
	}, kind, "")}

	if hasDiscount {
		account, ok := s.resolver.FirstAccount(domain.CategoryDiscount)
		if !ok {
			return nil, fmt.Errorf("discount present but the chart has no discount account: %w", ErrUnresolvedAccount)
		}
		rows = append(rows, s.emit(domain.LedgerEntry{
			Date:          date,
			PartyName:     name,
			DocumentID:    doc,
			DiscountValue: FormatValue(discount),
			CreditAccount: account.AccountCode,
		}, kindCashPayment, ""))
	}
	if feeOnly {
		rows = append(rows, s.emit(domain.LedgerEntry{
			Date:         date,
			PartyName:    name,
			DocumentID:   doc,
			PenaltyValue: FormatValue(fee),
			DebitAccount: s.cfg.Fees.FeeOnlyAccount,
		}, kindCashPayment, ""))
	}
	if hasPenalty {
		account, ok := s.resolver.FirstAccount(domain.CategoryPenaltyInterest)
		if !ok {
			return nil, fmt.Errorf("penalty present but the chart has no penalty/interest account: %w", ErrUnresolvedAccount)
		}
		rows = append(rows, s.emit(domain.LedgerEntry{
			Date:         date,
			PartyName:    name,
			DocumentID:   doc,
			PenaltyValue: FormatValue(penalty),
			DebitAccount: account.AccountCode,
		}, kindCashPayment, ""))
	}

	// The paid row of a bank-settled payment carries the supplier's history.
	histOverride := ""
	if kind == kindBankPayment {
		histOverride = supplier.HistoryCode
		if histOverride == "" {
			histOverride = s.resolver.HistoryForCode(supplier.AccountCode)
		}
	}
	rows = append(rows, s.emit(domain.LedgerEntry{
		Date:          date,
		PartyName:     name,
		DocumentID:    doc,
		PaidValue:     FormatValue(p.PaidAmount),
		CreditAccount: settle.AccountCode,
	}, kind, histOverride))

	return rows, nil
}

// withdrawalRow books a bank outflow that has no payment: credit the bank,
// debit the supplier matched by description, or the first penalty/interest
// account when no supplier matches.
func (s *Synthesizer) withdrawalRow(b domain.BankRecord, bank domain.ResolvedAccount) (domain.LedgerEntry, error) {
	target := s.resolver.Lookup(b.Description, domain.CategorySupplier)
	if !target.Resolved() {
		fallback, ok := s.resolver.FirstAccount(domain.CategoryPenaltyInterest)
		if !ok {
			return domain.LedgerEntry{}, fmt.Errorf("bank outflow %q matches no supplier and the chart has no penalty/interest account: %w", b.Description, ErrUnresolvedAccount)
		}
		target = fallback
	}

	value := FormatValue(b.Amount)
	return s.emit(domain.LedgerEntry{
		BatchMarker:   "1",
		Date:          FormatDate(b.Date),
		OriginalValue: value,
		PaidValue:     value,
		CreditAccount: bank.AccountCode,
		DebitAccount:  target.AccountCode,
	}, kindWithdrawal, target.HistoryCode), nil
}

// depositRow books a bank inflow: debit the bank, credit the customer matched
// by description.
func (s *Synthesizer) depositRow(b domain.BankRecord, bank domain.ResolvedAccount) (domain.LedgerEntry, error) {
	customer := s.resolver.Lookup(b.Description, domain.CategoryCustomer)
	if !customer.Resolved() {
		return domain.LedgerEntry{}, fmt.Errorf("bank inflow %q matches no customer: %w", b.Description, ErrUnresolvedAccount)
	}

	value := FormatValue(b.Amount)
	return s.emit(domain.LedgerEntry{
		BatchMarker:   "1",
		Date:          FormatDate(b.Date),
		OriginalValue: value,
		PaidValue:     value,
		CreditAccount: customer.AccountCode,
		DebitAccount:  bank.AccountCode,
	}, kindDeposit, customer.HistoryCode), nil
}

// emit finalizes one row: statement rows hide the party name, account codes
// are coerced to bare integers and the history code is assigned.
func (s *Synthesizer) emit(row domain.LedgerEntry, kind rowKind, histOverride string) domain.LedgerEntry {
	if kind == kindWithdrawal || kind == kindDeposit {
		row.PartyName = ""
	}
	if row.CreditAccount != "" {
		row.CreditAccount = accounts.FormatCode(row.CreditAccount)
	}
	if row.DebitAccount != "" {
		row.DebitAccount = accounts.FormatCode(row.DebitAccount)
	}
	if histOverride != "" {
		row.HistoryCode = accounts.FormatHistory(histOverride)
	} else {
		row.HistoryCode = s.historyFor(row, kind)
	}
	return row
}

// historyFor picks the history code from the row's accounts. Cash-till and
// adjustment rows always use the sentinel; deposits prefer the customer
// (credit) side; everything else prefers the debit side.
func (s *Synthesizer) historyFor(row domain.LedgerEntry, kind rowKind) string {
	switch kind {
	case kindCashPayment:
		return sentinelHistory
	case kindDeposit:
		if h := s.resolver.HistoryForCode(row.CreditAccount); h != "" {
			return h
		}
		return s.resolver.HistoryForCode(row.DebitAccount)
	default:
		if h := s.resolver.HistoryForCode(row.DebitAccount); h != "" {
			return h
		}
		return s.resolver.HistoryForCode(row.CreditAccount)
	}
}

// sanitize re-coerces history and document cells and backfills the cash till
// as credit on sentinel-history rows that carry a paid value without a credit
// account.
func (s *Synthesizer) sanitize(rows []domain.LedgerEntry, till domain.ResolvedAccount) {
	for i := range rows {
		rows[i].HistoryCode = accounts.FormatHistory(rows[i].HistoryCode)
		rows[i].DocumentID = FormatDocumentID(rows[i].DocumentID)
		if rows[i].HistoryCode == sentinelHistory &&
			strings.TrimSpace(rows[i].PaidValue) != "" &&
			rows[i].CreditAccount == "" {
			rows[i].CreditAccount = till.AccountCode
		}
	}
}

// ensureValues fills derived amounts for one payment. A missing original
// amount is rebuilt from the paid amount, and when inference is on an
// unexplained positive residual becomes the discount.
func ensureValues(p domain.PaymentRecord, inferDiscount bool) (original, penalty, discount decimal.Decimal) {
	original = p.OriginalAmount
	penalty = p.Penalty
	discount = p.Discount

	if original.IsZero() {
		original = p.PaidAmount.Add(discount).Sub(penalty)
	}
	if inferDiscount && discount.IsZero() {
		if residual := original.Add(penalty).Sub(p.PaidAmount).Round(2); residual.IsPositive() {
			discount = residual
		}
	}
	return original, penalty, discount
}

// applyFee deducts a configured flat fee from the original amount, clamping at
// zero. A positive penalty absorbs the fee into its own row; otherwise the fee
// books on a dedicated fee-only row.
func applyFee(supplierCode string, original, penalty decimal.Decimal, fees config.FeeSchedule) (adjOriginal, adjPenalty, fee decimal.Decimal, hasFee bool) {
	fee, ok := fees.FeeFor(supplierCode)
	if !ok || !fee.IsPositive() {
		return original, penalty, decimal.Zero, false
	}

	adjOriginal = original.Sub(fee).Round(2)
	if adjOriginal.IsNegative() {
		adjOriginal = decimal.Zero
	}
	adjPenalty = penalty
	if penalty.IsPositive() {
		adjPenalty = penalty.Add(fee).Round(2)
	}
	return adjOriginal, adjPenalty, fee, true
}
