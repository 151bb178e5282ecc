// Package export renders transactions as spreadsheet-friendly CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"fintrack/internal/core"
)

// utf8BOM makes spreadsheet applications detect the encoding instead of
// falling back to their locale default.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var header = []string{"ID", "Date", "Type", "Amount", "Description", "ColorTag"}

// WriteCSV writes the transactions as semicolon-delimited CSV with dd/MM/yyyy
// dates and comma-decimal amounts.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range txs {
		record := []string{
			t.ID,
			formatDate(t.Date),
			typeLabel(t.Type),
			t.Amount.DecimalString(),
			t.Description,
			t.ColorTag,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func formatDate(d core.Date) string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}

func typeLabel(t core.TransactionType) string {
	switch t {
	case core.Income:
		return "Income"
	case core.Expense:
		return "Expense"
	default:
		return string(t)
	}
}
