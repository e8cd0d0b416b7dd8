package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rule labels recorded on MatchGroup, identifying which pairing rule produced it.
const (
	RuleExactDateAmount       = "EXACT_DATE_AMOUNT_FIFO"
	RuleAmountWithinTolerance = "AMOUNT_WITHIN_TOLERANCE"
)

// PendencySide identifies which input table an unmatched record came from.
type PendencySide string

const (
	PendencySidePayment     PendencySide = "PAYMENT"
	PendencySideBankOutflow PendencySide = "BANK_OUTFLOW"
)

// MatchGroup pairs payment records with bank outflows; 1:1 in the current design.
type MatchGroup struct {
	ReferenceDate   time.Time       `json:"reference_date"`
	ReferenceAmount decimal.Decimal `json:"reference_amount"`
	PaymentIDs      []int           `json:"payment_ids"`
	BankIDs         []int           `json:"bank_ids"`
	RuleLabel       string          `json:"rule_label"`
}

// Pendency is a record the matcher could not pair, with a human-readable reason.
type Pendency struct {
	Side     PendencySide `json:"side"`
	RecordID int          `json:"record_id"`
	Reason   string       `json:"reason"`
}

// MatchStats summarizes a matching run.
// ReconciliationRate is matched payments over total payments, as a percentage
// rounded to one decimal; QualityAlert is set when the rate falls below 85%.
type MatchStats struct {
	MatchedPayments     int     `json:"matched_payments"`
	PendingPayments     int     `json:"pending_payments"`
	PendingBankOutflows int     `json:"pending_bank_outflows"`
	ReconciliationRate  float64 `json:"reconciliation_rate"`
	QualityAlert        bool    `json:"quality_alert"`
}

// MatchResult is the full output of a matching run.
type MatchResult struct {
	Groups              []MatchGroup `json:"groups"`
	PendingPayments     []Pendency   `json:"pending_payments"`
	PendingBankOutflows []Pendency   `json:"pending_bank_outflows"`
	Stats               MatchStats   `json:"stats"`
}
