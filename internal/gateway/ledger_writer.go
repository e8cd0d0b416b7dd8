package gateway

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"

	"conciliador/internal/domain"
)

// ledgerColumns is the downstream import header. The importer matches it byte
// for byte, including the "Classificaçao" spelling.
var ledgerColumns = []string{
	"Lote", "Data", "CodHistorico", "Fornecedor", "NF", "Classificaçao",
	"VALOR ORG", "MULTA E JUROS", "DESCONTOS", "Valor pago", "Crédito", "Débito",
}

// WriteLedger serializes ledger entries as the semicolon-separated, BOM-prefixed
// CSV the bookkeeping import tool expects: UTF-8, comma decimals, LF endings.
func WriteLedger(path string, entries []domain.LedgerEntry) error {
	var buf bytes.Buffer
	buf.WriteString("\ufeff")

	writer := csv.NewWriter(&buf)
	writer.Comma = ';'

	if err := writer.Write(ledgerColumns); err != nil {
		return fmt.Errorf("failed to write ledger header: %w", err)
	}
	for _, entry := range entries {
		row := []string{
			entry.BatchMarker,
			entry.Date,
			entry.HistoryCode,
			entry.PartyName,
			entry.DocumentID,
			entry.Classification,
			entry.OriginalValue,
			entry.PenaltyValue,
			entry.DiscountValue,
			entry.PaidValue,
			entry.CreditAccount,
			entry.DebitAccount,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write ledger row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush ledger rows: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write ledger file %s: %w", path, err)
	}
	return nil
}
