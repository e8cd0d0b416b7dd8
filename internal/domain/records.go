package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction defines which way a bank movement flows (OUTFLOW or INFLOW).
type Direction string

const (
	DirectionOutflow Direction = "OUTFLOW"
	DirectionInflow  Direction = "INFLOW"
)

// AccountCategory classifies a chart-of-accounts entry.
type AccountCategory string

const (
	CategorySupplier        AccountCategory = "SUPPLIER"
	CategoryCustomer        AccountCategory = "CUSTOMER"
	CategoryCashEquivalent  AccountCategory = "CASH_EQUIVALENT"
	CategoryPenaltyInterest AccountCategory = "PENALTY_INTEREST"
	CategoryDiscount        AccountCategory = "DISCOUNT"
)

// PaymentRecord represents one outgoing payment from the company's payment sheet.
// IDs are input row ordinals assigned at load time; records are immutable after load.
type PaymentRecord struct {
	ID             int             `json:"id"`
	Date           time.Time       `json:"date"`
	SupplierName   string          `json:"supplier_name"`
	DocumentID     string          `json:"document_id"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
	Penalty        decimal.Decimal `json:"penalty"`
	Discount       decimal.Decimal `json:"discount"`
}

// BankRecord represents one bank-statement movement.
// Amount is always a positive magnitude; Direction carries the sign.
type BankRecord struct {
	ID          int             `json:"id"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Direction   Direction       `json:"direction"`
	Description string          `json:"description"`
}

// ChartEntry is one row of the chart of accounts, loaded once per run and read-only.
type ChartEntry struct {
	AccountCode string          `json:"account_code"`
	DisplayName string          `json:"display_name"`
	Category    AccountCategory `json:"category"`
	HistoryCode string          `json:"history_code"`
}

// ResolvedAccount is the result of a name lookup; the zero value means unresolved.
type ResolvedAccount struct {
	AccountCode string          `json:"account_code"`
	HistoryCode string          `json:"history_code"`
	Category    AccountCategory `json:"category"`
}

// Resolved reports whether the lookup found an account.
func (r ResolvedAccount) Resolved() bool {
	return r.AccountCode != ""
}
