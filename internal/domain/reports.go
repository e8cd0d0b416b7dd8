package domain

// LedgerEntry is one row of the exported ledger table. Fields hold their final
// serialized form (dd/mm/yyyy dates, comma-decimal values, bare integer account
// codes) because the downstream accounting import is a bit-for-bit contract.
type LedgerEntry struct {
	BatchMarker    string `json:"batch_marker"`
	Date           string `json:"date"`
	HistoryCode    string `json:"history_code"`
	PartyName      string `json:"party_name"`
	DocumentID     string `json:"document_id"`
	Classification string `json:"classification"`
	OriginalValue  string `json:"original_value"`
	PenaltyValue   string `json:"penalty_value"`
	DiscountValue  string `json:"discount_value"`
	PaidValue      string `json:"paid_value"`
	CreditAccount  string `json:"credit_account"`
	DebitAccount   string `json:"debit_account"`
}

// ValidationReport itemizes every unresolved name found during pre-flight checks.
// It is plain data: a blocking report is a normal outcome, never an error.
type ValidationReport struct {
	MissingSuppliers       []string `json:"missing_suppliers"`
	MissingCustomers       []string `json:"missing_customers"`
	MissingSpecialAccounts []string `json:"missing_special_accounts"`
	HasBlockers            bool     `json:"has_blockers"`
}

// RunReport is the top-level structure for the final JSON output.
type RunReport struct {
	RunID            string           `json:"run_id"`
	PaymentCount     int              `json:"payment_count"`
	BankOutflowCount int              `json:"bank_outflow_count"`
	BankInflowCount  int              `json:"bank_inflow_count"`
	Stats            MatchStats       `json:"match_stats"`
	Validation       ValidationReport `json:"validation"`
	Pendencies       []Pendency       `json:"pendencies"`
	LedgerRowCount   int              `json:"ledger_row_count"`
	OutputPath       string           `json:"output_path,omitempty"`
}
