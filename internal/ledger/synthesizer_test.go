package ledger

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conciliador/internal/accounts"
	"conciliador/internal/config"
	"conciliador/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nov(d int) time.Time {
	return time.Date(2025, time.November, d, 0, 0, 0, 0, time.UTC)
}

func testChart() []domain.ChartEntry {
	return []domain.ChartEntry{
		{AccountCode: "271", DisplayName: "Distribuidora de Medicamentos Santa Cruz", Category: domain.CategorySupplier, HistoryCode: "20"},
		{AccountCode: "305", DisplayName: "Atacado Norte", Category: domain.CategorySupplier, HistoryCode: "21"},
		{AccountCode: "310", DisplayName: "Comercial Sem Historico", Category: domain.CategorySupplier, HistoryCode: ""},
		{AccountCode: "401", DisplayName: "Convênio Vida", Category: domain.CategoryCustomer, HistoryCode: "30"},
		{AccountCode: "402", DisplayName: "Plano Saude Total", Category: domain.CategoryCustomer, HistoryCode: ""},
		{AccountCode: "11", DisplayName: "Sicoob", Category: domain.CategoryCashEquivalent, HistoryCode: "5"},
		{AccountCode: "12", DisplayName: "Caixa", Category: domain.CategoryCashEquivalent, HistoryCode: "6"},
		{AccountCode: "317", DisplayName: "Multas e Juros", Category: domain.CategoryPenaltyInterest, HistoryCode: "41"},
		{AccountCode: "316", DisplayName: "Tarifas Bancárias", Category: domain.CategoryPenaltyInterest, HistoryCode: "40"},
		{AccountCode: "320", DisplayName: "Descontos Obtidos", Category: domain.CategoryDiscount, HistoryCode: "50"},
	}
}

func testResolver() *accounts.Resolver {
	return accounts.NewResolver(testChart(), config.StrategyLevenshtein)
}

func testSynthesizer() *Synthesizer {
	return NewSynthesizer(testResolver(), config.Default())
}

func matchedResult(paymentIDs ...int) domain.MatchResult {
	var groups []domain.MatchGroup
	for _, id := range paymentIDs {
		groups = append(groups, domain.MatchGroup{
			PaymentIDs: []int{id},
			BankIDs:    []int{id},
			RuleLabel:  domain.RuleExactDateAmount,
		})
	}
	return domain.MatchResult{Groups: groups}
}

func pendingPayments(ids ...int) domain.MatchResult {
	var pend []domain.Pendency
	for _, id := range ids {
		pend = append(pend, domain.Pendency{Side: domain.PendencySidePayment, RecordID: id})
	}
	return domain.MatchResult{PendingPayments: pend}
}

func parseValue(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	if v == "" {
		return decimal.Zero
	}
	return decimal.RequireFromString(strings.Replace(v, ",", ".", 1))
}

func TestSynthesizer_MatchedSingleRow(t *testing.T) {
	payment := domain.PaymentRecord{
		ID:             0,
		Date:           nov(1),
		SupplierName:   "Atacado Norte",
		DocumentID:     "4411.0",
		PaidAmount:     dec("100.00"),
		OriginalAmount: dec("100.00"),
	}

	rows, err := testSynthesizer().Build(domain.ValidationReport{}, matchedResult(0),
		[]domain.PaymentRecord{payment}, nil, nil)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.LedgerEntry{
		BatchMarker:   "1",
		Date:          "01/11/2025",
		HistoryCode:   "21",
		PartyName:     "Atacado Norte",
		DocumentID:    "4411",
		OriginalValue: "100,00",
		PaidValue:     "100,00",
		CreditAccount: "11",
		DebitAccount:  "305",
	}, rows[0])
}

func TestSynthesizer_InferredDiscountRows(t *testing.T) {
	payment := domain.PaymentRecord{
		ID:             0,
		Date:           nov(3),
		SupplierName:   "Atacado Norte",
		DocumentID:     "88",
		PaidAmount:     dec("100.00"),
		OriginalAmount: dec("110.00"),
	}

	rows, err := testSynthesizer().Build(domain.ValidationReport{}, matchedResult(0),
		[]domain.PaymentRecord{payment}, nil, nil)

	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "1", rows[0].BatchMarker)
	assert.Equal(t, "110,00", rows[0].OriginalValue)
	assert.Equal(t, "305", rows[0].DebitAccount)
	assert.Equal(t, "", rows[0].CreditAccount)
	assert.Equal(t, "21", rows[0].HistoryCode)

	assert.Equal(t, "", rows[1].BatchMarker)
	assert.Equal(t, "10,00", rows[1].DiscountValue)
	assert.Equal(t, "320", rows[1].CreditAccount)
	assert.Equal(t, sentinelHistory, rows[1].HistoryCode)

	assert.Equal(t, "", rows[2].BatchMarker)
	assert.Equal(t, "100,00", rows[2].PaidValue)
	assert.Equal(t, "11", rows[2].CreditAccount)
	assert.Equal(t, "21", rows[2].HistoryCode, "paid row carries the supplier history")
}

func TestSynthesizer_FeeOnlyRow(t *testing.T) {
	payment := domain.PaymentRecord{
		ID:             0,
		Date:           nov(5),
		SupplierName:   "Distribuidora de Medicamentos Santa Cruz",
		DocumentID:     "501",
		PaidAmount:     dec("100.00"),
		OriginalAmount: dec("100.00"),
	}

	rows, err := testSynthesizer().Build(domain.ValidationReport{}, matchedResult(0),
		[]domain.PaymentRecord{payment}, nil, nil)

	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "98,61", rows[0].OriginalValue, "original is reduced by the fee")
	assert.Equal(t, "271", rows[0].DebitAccount)

	assert.Equal(t, "1,39", rows[1].PenaltyValue)
	assert.Equal(t, "316", rows[1].DebitAccount)
	assert.Equal(t, sentinelHistory, rows[1].HistoryCode)

	assert.Equal(t, "100,00", rows[2].PaidValue)
	assert.Equal(t, "11", rows[2].CreditAccount)
	assert.Equal(t, "20", rows[2].HistoryCode)
}

func TestSynthesizer_FeeMergesIntoPenalty(t *testing.T) {
	payment := domain.PaymentRecord{
		ID:             0,
		Date:           nov(5),
		SupplierName:   "Distribuidora de Medicamentos Santa Cruz",
		DocumentID:     "502",
		PaidAmount:     dec("105.00"),
		OriginalAmount: dec("100.00"),
		Penalty:        dec("5.00"),
	}

	rows, err := testSynthesizer().Build(domain.ValidationReport{}, matchedResult(0),
		[]domain.PaymentRecord{payment}, nil, nil)

	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "98,61", rows[0].OriginalValue)
	assert.Equal(t, "6,39", rows[1].PenaltyValue, "penalty row absorbs the fee")
	assert.Equal(t, "317", rows[1].DebitAccount)
	for _, row := range rows {
		assert.NotEqual(t, "316", row.DebitAccount, "no fee-only row when a penalty exists")
	}
	assert.Equal(t, "105,00", rows[2].PaidValue)
}

func TestSynthesizer_PendingPaymentThroughCashTill(t *testing.T) {
	payment := domain.PaymentRecord{
		ID:           0,
		Date:         nov(7),
		SupplierName: "Atacado Norte",
		DocumentID:   "77",
		PaidAmount:   dec("75.50"),
	}

	rows, err := testSynthesizer().Build(domain.ValidationReport{}, pendingPayments(0),
		[]domain.PaymentRecord{payment}, nil, nil)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1", rows[0].BatchMarker)
	assert.Equal(t, sentinelHistory, rows[0].HistoryCode)
	assert.Equal(t, "75,50", rows[0].OriginalValue)
	assert.Equal(t, "75,50", rows[0].PaidValue)
	assert.Equal(t, "12", rows[0].CreditAccount)
	assert.Equal(t, "305", rows[0].DebitAccount)
}

func TestSynthesizer_PendingPaymentAdjustmentRows(t *testing.T) {
	payment := domain.PaymentRecord{
		ID:             0,
		Date:           nov(7),
		SupplierName:   "Atacado Norte",
		DocumentID:     "78",
		PaidAmount:     dec("75.50"),
		OriginalAmount: dec("80.00"),
	}

	rows, err := testSynthesizer().Build(domain.ValidationReport{}, pendingPayments(0),
		[]domain.PaymentRecord{payment}, nil, nil)

	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, sentinelHistory, row.HistoryCode, "cash rows keep the sentinel history (row %d)", i)
	}
	assert.Equal(t, "4,50", rows[1].DiscountValue)
	assert.Equal(t, "12", rows[2].CreditAccount)
}

func TestSynthesizer_WithdrawalRows(t *testing.T) {
	outflows := []domain.BankRecord{
		{ID: 0, Date: nov(9), Amount: dec("60.00"), Direction: domain.DirectionOutflow, Description: "Atacado Norte"},
		{ID: 1, Date: nov(9), Amount: dec("30.00"), Direction: domain.DirectionOutflow, Description: "Pix Enviado Loterica"},
	}
	result := domain.MatchResult{PendingBankOutflows: []domain.Pendency{
		{Side: domain.PendencySideBankOutflow, RecordID: 0},
		{Side: domain.PendencySideBankOutflow, RecordID: 1},
	}}

	rows, err := testSynthesizer().Build(domain.ValidationReport{}, result, nil, outflows, nil)

	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "1", rows[0].BatchMarker)
	assert.Equal(t, "", rows[0].PartyName, "statement rows hide the party name")
	assert.Equal(t, "60,00", rows[0].OriginalValue)
	assert.Equal(t, "60,00", rows[0].PaidValue)
	assert.Equal(t, "11", rows[0].CreditAccount)
	assert.Equal(t, "305", rows[0].DebitAccount)
	assert.Equal(t, "21", rows[0].HistoryCode)

	assert.Equal(t, "317", rows[1].DebitAccount, "unknown descriptions fall back to the first penalty account")
	assert.Equal(t, "41", rows[1].HistoryCode)
}

func TestSynthesizer_DepositRows(t *testing.T) {
	inflows := []domain.BankRecord{
		{ID: 0, Date: nov(10), Amount: dec("200.00"), Direction: domain.DirectionInflow, Description: "Convênio Vida"},
		{ID: 1, Date: nov(10), Amount: dec("50.00"), Direction: domain.DirectionInflow, Description: "Plano Saude Total"},
	}

	rows, err := testSynthesizer().Build(domain.ValidationReport{}, domain.MatchResult{}, nil, nil, inflows)

	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "1", rows[0].BatchMarker)
	assert.Equal(t, "", rows[0].PartyName)
	assert.Equal(t, "401", rows[0].CreditAccount)
	assert.Equal(t, "11", rows[0].DebitAccount)
	assert.Equal(t, "30", rows[0].HistoryCode)
	assert.Equal(t, "200,00", rows[0].PaidValue)

	assert.Equal(t, "402", rows[1].CreditAccount)
	assert.Equal(t, "5", rows[1].HistoryCode, "customer without history falls back to the bank history")
}

func TestSynthesizer_HistoryFallsBackThroughAccounts(t *testing.T) {
	payment := domain.PaymentRecord{
		ID:             0,
		Date:           nov(12),
		SupplierName:   "Comercial Sem Historico",
		PaidAmount:     dec("85.00"),
		OriginalAmount: dec("90.00"),
	}

	rows, err := testSynthesizer().Build(domain.ValidationReport{}, matchedResult(0),
		[]domain.PaymentRecord{payment}, nil, nil)

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "", rows[0].HistoryCode, "supplier without history leaves the original row blank")
	assert.Equal(t, "5", rows[2].HistoryCode, "paid row falls back to the bank history")
}

func TestSynthesizer_BalancedDecomposition(t *testing.T) {
	payment := domain.PaymentRecord{
		ID:           0,
		Date:         nov(14),
		SupplierName: "Distribuidora de Medicamentos Santa Cruz",
		DocumentID:   "900",
		PaidAmount:   dec("120.00"),
		Penalty:      dec("3.00"),
		Discount:     dec("2.00"),
	}

	rows, err := testSynthesizer().Build(domain.ValidationReport{}, matchedResult(0),
		[]domain.PaymentRecord{payment}, nil, nil)

	require.NoError(t, err)
	require.Len(t, rows, 4)

	// Derived original 119,00 minus the 1,39 fee; the penalty absorbs the fee.
	assert.Equal(t, "117,61", rows[0].OriginalValue)
	assert.Equal(t, "2,00", rows[1].DiscountValue)
	assert.Equal(t, "4,39", rows[2].PenaltyValue)
	assert.Equal(t, "120,00", rows[3].PaidValue)

	debits := decimal.Zero
	credits := decimal.Zero
	for _, row := range rows {
		if row.DebitAccount != "" {
			debits = debits.Add(parseValue(t, row.OriginalValue)).Add(parseValue(t, row.PenaltyValue))
		}
		if row.CreditAccount != "" {
			credits = credits.Add(parseValue(t, row.DiscountValue)).Add(parseValue(t, row.PaidValue))
		}
	}
	assert.True(t, debits.Equal(credits), "debits %s must equal credits %s", debits, credits)
}

func TestSynthesizer_SanitizeCoercesCodesAndBackfillsTill(t *testing.T) {
	till := domain.ResolvedAccount{AccountCode: "12", HistoryCode: "6", Category: domain.CategoryCashEquivalent}
	rows := []domain.LedgerEntry{
		{HistoryCode: "1,00", DocumentID: "457.0", PaidValue: "10,00"},
		{HistoryCode: "20,0", PaidValue: "5,00", CreditAccount: "11"},
		{HistoryCode: "1", PaidValue: ""},
	}

	testSynthesizer().sanitize(rows, till)

	assert.Equal(t, "1", rows[0].HistoryCode)
	assert.Equal(t, "457", rows[0].DocumentID)
	assert.Equal(t, "12", rows[0].CreditAccount)

	assert.Equal(t, "20", rows[1].HistoryCode)
	assert.Equal(t, "11", rows[1].CreditAccount)

	assert.Equal(t, "", rows[2].CreditAccount)
}

func TestSynthesizer_BlockedReportRefusesToRun(t *testing.T) {
	report := domain.ValidationReport{
		MissingSuppliers: []string{"Empresa Fantasma"},
		HasBlockers:      true,
	}

	rows, err := testSynthesizer().Build(report, matchedResult(0), nil, nil, nil)

	assert.Nil(t, rows)
	assert.ErrorIs(t, err, ErrBlockedSynthesis)
}

func TestSynthesizer_UnresolvedSupplierIsFatal(t *testing.T) {
	payment := domain.PaymentRecord{
		ID:           0,
		Date:         nov(2),
		SupplierName: "Empresa Fantasma Ltda",
		PaidAmount:   dec("10.00"),
	}

	rows, err := testSynthesizer().Build(domain.ValidationReport{}, matchedResult(0),
		[]domain.PaymentRecord{payment}, nil, nil)

	assert.Nil(t, rows)
	assert.ErrorIs(t, err, ErrUnresolvedAccount)
}

func TestSynthesizer_SupplierResolvingAsCustomerIsFatal(t *testing.T) {
	payment := domain.PaymentRecord{
		ID:           0,
		Date:         nov(2),
		SupplierName: "Convênio Vida",
		PaidAmount:   dec("10.00"),
	}

	rows, err := testSynthesizer().Build(domain.ValidationReport{}, matchedResult(0),
		[]domain.PaymentRecord{payment}, nil, nil)

	assert.Nil(t, rows)
	assert.ErrorIs(t, err, ErrUnresolvedAccount)
}

func TestSynthesizer_UnknownBankNameIsFatal(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultBankName = "Banco Inexistente"

	rows, err := NewSynthesizer(testResolver(), cfg).Build(domain.ValidationReport{},
		domain.MatchResult{}, nil, nil, nil)

	assert.Nil(t, rows)
	assert.ErrorIs(t, err, ErrUnresolvedAccount)
}
