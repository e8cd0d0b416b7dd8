package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"conciliador/internal/accounts"
	"conciliador/internal/domain"
)

// FileBatchRepository implements the BatchRepository interface for spreadsheet
// files (CSV or xlsx).
type FileBatchRepository struct{}

// NewFileBatchRepository creates a new repository instance.
func NewFileBatchRepository() *FileBatchRepository {
	return &FileBatchRepository{}
}

// ReadPayments reads and parses the payment sheet. Rows with no date, supplier
// and paid value are skipped; malformed date or amount cells degrade to zero
// sentinels instead of failing the batch.
func (r *FileBatchRepository) ReadPayments(ctx context.Context, path string) ([]domain.PaymentRecord, error) {
	rows, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("payment sheet %s is empty", path)
	}

	header := rows[0]
	dateIdx := columnIndex(header, "Data pagamento")
	supplierIdx := columnIndex(header, "Nome do fornecedor")
	docIdx := columnIndex(header, "Nota fiscal")
	originalIdx := columnIndex(header, "Valor")
	penaltyIdx := columnIndex(header, "Multa e juros")
	paidIdx := columnIndex(header, "Valor a pagar")
	// Descontos is optional and defaults to zero.
	discountIdx := columnIndex(header, "Descontos")

	var missing []string
	for _, col := range []struct {
		name string
		idx  int
	}{
		{"Data pagamento", dateIdx},
		{"Nome do fornecedor", supplierIdx},
		{"Nota fiscal", docIdx},
		{"Valor", originalIdx},
		{"Multa e juros", penaltyIdx},
		{"Valor a pagar", paidIdx},
	} {
		if col.idx < 0 {
			missing = append(missing, col.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("payment sheet %s is missing required columns: %s", path, strings.Join(missing, ", "))
	}

	var payments []domain.PaymentRecord
	for i, row := range rows {
		// Skip header
		if i == 0 {
			continue
		}

		dateRaw := cell(row, dateIdx)
		supplier := cell(row, supplierIdx)
		paidRaw := cell(row, paidIdx)
		if dateRaw == "" && supplier == "" && paidRaw == "" {
			continue
		}

		date, _ := parseDay(dateRaw)
		discount := decimal.Zero
		if discountIdx >= 0 {
			discount = amountOrZero(cell(row, discountIdx))
		}

		payments = append(payments, domain.PaymentRecord{
			ID:             len(payments) + 1,
			Date:           date,
			SupplierName:   supplier,
			DocumentID:     cell(row, docIdx),
			PaidAmount:     amountOrZero(paidRaw),
			OriginalAmount: amountOrZero(cell(row, originalIdx)),
			Penalty:        amountOrZero(cell(row, penaltyIdx)),
			Discount:       discount,
		})
	}
	return payments, nil
}

// ReadStatement reads and parses the bank statement, splitting movements into
// outflows (negative values, stored as magnitudes) and inflows. Column headers
// are matched flexibly; balance lines and rows without a usable value are
// dropped.
func (r *FileBatchRepository) ReadStatement(ctx context.Context, path string) ([]domain.BankRecord, []domain.BankRecord, error) {
	rows, err := readTable(path)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("bank statement %s is empty", path)
	}

	header := rows[0]
	dateIdx := columnIndex(header, "data", "dt", "date", "dt_movimento", "data_movimento")
	docIdx := columnIndex(header, "documento", "doc", "numero", "num_doc", "numero_documento")
	histIdx := columnIndex(header, "historico", "descricao", "hist", "description")
	valueIdx := columnIndex(header, "valor", "value", "vlr", "amount", "montante")

	var missing []string
	if dateIdx < 0 {
		missing = append(missing, "DATA (accepted: data, dt, date, dt_movimento, data_movimento)")
	}
	if docIdx < 0 {
		missing = append(missing, "DOCUMENTO (accepted: documento, doc, numero, num_doc, numero_documento)")
	}
	if histIdx < 0 {
		missing = append(missing, "HISTÓRICO (accepted: historico, descricao, hist, description)")
	}
	if valueIdx < 0 {
		missing = append(missing, "VALOR (accepted: valor, value, vlr, amount, montante)")
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("bank statement %s is missing required columns: %s", path, strings.Join(missing, "; "))
	}

	var outflows, inflows []domain.BankRecord
	for i, row := range rows {
		// Skip header
		if i == 0 {
			continue
		}

		desc := cell(row, histIdx)
		// Balance lines describe the running total, not a movement.
		if strings.Contains(accounts.Normalize(desc), "SALDO") {
			continue
		}
		amount, ok := parseAmount(cell(row, valueIdx))
		if !ok || amount.IsZero() {
			continue
		}
		date, _ := parseDay(cell(row, dateIdx))

		record := domain.BankRecord{
			Date:        date,
			Description: desc,
		}

		// Split by sign so outflows pair with positive paid amounts.
		if amount.IsNegative() {
			record.ID = len(outflows) + 1
			record.Amount = amount.Abs().Round(2)
			record.Direction = domain.DirectionOutflow
			outflows = append(outflows, record)
		} else {
			record.ID = len(inflows) + 1
			record.Amount = amount.Round(2)
			record.Direction = domain.DirectionInflow
			inflows = append(inflows, record)
		}
	}
	return outflows, inflows, nil
}

// ReadChart reads and parses the chart of accounts.
func (r *FileBatchRepository) ReadChart(ctx context.Context, path string) ([]domain.ChartEntry, error) {
	rows, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("chart of accounts %s is empty", path)
	}

	header := rows[0]
	codeIdx := columnIndex(header, "CONTAS CONTABEIS")
	nameIdx := columnIndex(header, "NOME")
	classIdx := columnIndex(header, "CLASSIFICAÇÃO")
	histIdx := columnIndex(header, "HISTORICO")

	var missing []string
	for _, col := range []struct {
		name string
		idx  int
	}{
		{"CONTAS CONTABEIS", codeIdx},
		{"NOME", nameIdx},
		{"CLASSIFICAÇÃO", classIdx},
		{"HISTORICO", histIdx},
	} {
		if col.idx < 0 {
			missing = append(missing, col.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("chart of accounts %s is missing required columns: %s", path, strings.Join(missing, ", "))
	}

	var entries []domain.ChartEntry
	for i, row := range rows {
		// Skip header
		if i == 0 {
			continue
		}

		code := cell(row, codeIdx)
		name := cell(row, nameIdx)
		if code == "" && name == "" {
			continue
		}

		entries = append(entries, domain.ChartEntry{
			AccountCode: code,
			DisplayName: name,
			Category:    categoryFor(cell(row, classIdx)),
			HistoryCode: cell(row, histIdx),
		})
	}
	return entries, nil
}

// categoryFor maps a chart classification label to its account category.
// Unknown labels map to the empty category; such entries still register their
// code and history for direct code lookups.
func categoryFor(classification string) domain.AccountCategory {
	switch accounts.Normalize(classification) {
	case "FORNECEDOR":
		return domain.CategorySupplier
	case "CLIENTE":
		return domain.CategoryCustomer
	case "CAIXA E EQUIVALENTES":
		return domain.CategoryCashEquivalent
	case "MULTAS E JUROS":
		return domain.CategoryPenaltyInterest
	case "DESCONTOS":
		return domain.CategoryDiscount
	}
	return ""
}
