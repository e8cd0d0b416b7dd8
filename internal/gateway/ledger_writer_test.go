package gateway

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conciliador/internal/domain"
)

func TestWriteLedger(t *testing.T) {
	entries := []domain.LedgerEntry{
		{
			BatchMarker:   "1",
			Date:          "05/11/2025",
			HistoryCode:   "20",
			PartyName:     "Drogaria Santa Cruz",
			DocumentID:    "4411",
			OriginalValue: "100,00",
			PaidValue:     "100,00",
			CreditAccount: "11",
			DebitAccount:  "271",
		},
		{
			Date:          "05/11/2025",
			HistoryCode:   "1",
			PartyName:     "Atacado Norte",
			DocumentID:    "88",
			DiscountValue: "2,00",
			CreditAccount: "320",
		},
	}

	tmpFile := filepath.Join(os.TempDir(), "test_ledger_out.csv")
	defer os.Remove(tmpFile)

	require.NoError(t, WriteLedger(tmpFile, entries))

	got, err := os.ReadFile(tmpFile)
	require.NoError(t, err)

	want := "\ufeff" +
		"Lote;Data;CodHistorico;Fornecedor;NF;Classificaçao;VALOR ORG;MULTA E JUROS;DESCONTOS;Valor pago;Crédito;Débito\n" +
		"1;05/11/2025;20;Drogaria Santa Cruz;4411;;100,00;;;100,00;11;271\n" +
		";05/11/2025;1;Atacado Norte;88;;;;2,00;;320;\n"
	assert.Equal(t, want, string(got))
}

func TestWriteLedger_NoEntries(t *testing.T) {
	tmpFile := filepath.Join(os.TempDir(), "test_ledger_empty.csv")
	defer os.Remove(tmpFile)

	require.NoError(t, WriteLedger(tmpFile, nil))

	got, err := os.ReadFile(tmpFile)
	require.NoError(t, err)

	want := "\ufeff" +
		"Lote;Data;CodHistorico;Fornecedor;NF;Classificaçao;VALOR ORG;MULTA E JUROS;DESCONTOS;Valor pago;Crédito;Débito\n"
	assert.Equal(t, want, string(got))
}

func TestWriteLedger_FileError(t *testing.T) {
	err := WriteLedger(filepath.Join(os.TempDir(), "no_such_dir", "out.csv"), nil)
	assert.Error(t, err)
}
