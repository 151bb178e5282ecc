package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestWriteCSV(t *testing.T) {
	txs := []core.Transaction{
		{
			ID:          "t-1",
			Description: "salary",
			Amount:      core.Money{Cents: 250000},
			Type:        core.Income,
			Date:        core.NewCalendarDate(2025, time.January, 28),
			ColorTag:    "bg-green-500",
		},
		{
			ID:          "t-2",
			Description: "rent; january",
			Amount:      core.Money{Cents: 80050},
			Type:        core.Expense,
			Date:        core.NewCalendarDate(2025, time.February, 1),
			ColorTag:    core.DefaultColorTag,
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, txs); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	out := buf.Bytes()
	if !bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatalf("expected UTF-8 BOM prefix")
	}

	lines := strings.Split(strings.TrimSpace(string(out[3:])), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "ID;Date;Type;Amount;Description;ColorTag" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != "t-1;28/01/2025;Income;2500,00;salary;bg-green-500" {
		t.Fatalf("unexpected row %q", lines[1])
	}
	// The semicolon in the description forces quoting.
	if lines[2] != `t-2;01/02/2025;Expense;800,50;"rent; january";bg-gray-500` {
		t.Fatalf("unexpected row %q", lines[2])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected header only, got %q", buf.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestWriteCSVPropagatesWriterErrors(t *testing.T) {
	txs := []core.Transaction{{
		ID:          "t-1",
		Description: "salary",
		Amount:      core.Money{Cents: 250000},
		Type:        core.Income,
		Date:        core.NewCalendarDate(2025, time.January, 28),
	}}
	if err := WriteCSV(failingWriter{}, txs); err == nil {
		t.Fatalf("expected write error to surface")
	}
}
