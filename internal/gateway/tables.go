package gateway

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"conciliador/internal/accounts"
)

// excelEpoch anchors workbook serial dates (days since 1899-12-30).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// readTable loads a spreadsheet as raw string cells. The file extension
// decides the format: .xlsx goes through the workbook reader, everything else
// is treated as delimiter-separated text.
func readTable(path string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readWorkbook(path)
	}
	return readCSV(path)
}

// readCSV reads delimiter-separated text tolerantly: a UTF-8 BOM is stripped,
// files that are not valid UTF-8 are decoded as Windows-1252, and the field
// separator is sniffed from the header line.
func readCSV(path string) ([][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table %s: %w", path, err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\ufeff"))
	if !utf8.Valid(raw) {
		if decoded, derr := charmap.Windows1252.NewDecoder().Bytes(raw); derr == nil {
			raw = decoded
		}
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = sniffSeparator(raw)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading records from %s: %w", path, err)
	}
	return rows, nil
}

// readWorkbook reads the first sheet of an xlsx workbook.
func readWorkbook(path string) ([][]string, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %q from %s: %w", sheets[0], path, err)
	}
	return rows, nil
}

func sniffSeparator(raw []byte) rune {
	line := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		line = raw[:i]
	}
	if bytes.Count(line, []byte(";")) >= bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

// columnIndex finds a header column by any of its accepted names, ignoring
// case, accents and surrounding noise.
func columnIndex(header []string, names ...string) int {
	for i, col := range header {
		key := accounts.Normalize(col)
		if key == "" {
			continue
		}
		for _, name := range names {
			if key == accounts.Normalize(name) {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseAmount converts Brazilian-formatted numbers ("1.234,56", "R$ 100,00",
// parenthesized negatives) to a decimal. It reports false for cells that hold
// no parseable number.
func parseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.ReplaceAll(raw, " ", "")
	s = strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	s = b.String()
	if s == "" {
		return decimal.Decimal{}, false
	}

	// A single comma alongside dots means comma decimals with dot thousands.
	if strings.Count(s, ",") == 1 && strings.Count(s, ".") >= 1 {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// amountOrZero degrades unparseable monetary cells to zero and rounds the
// rest to two places.
func amountOrZero(raw string) decimal.Decimal {
	d, ok := parseAmount(raw)
	if !ok {
		return decimal.Zero
	}
	return d.Round(2)
}

var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"2006-01-02",
	"02-01-2006",
	"02.01.2006",
}

var dateTimeLayouts = []string{
	"02/01/2006 15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// parseDay converts a cell to a day, accepting Brazilian day-first dates,
// ISO dates and workbook serial numbers. It reports false for cells that hold
// no parseable date; callers degrade those to the zero time.
func parseDay(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 1 && serial < 300000 {
		return excelEpoch.AddDate(0, 0, int(serial)), true
	}
	return time.Time{}, false
}
