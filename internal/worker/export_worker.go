// Package worker reacts to ledger events by refreshing the CSV export.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fintrack/internal/amqp"
	"fintrack/internal/export"
	"fintrack/internal/store"
)

// ExportWorker keeps a CSV snapshot of all transactions on disk. It rewrites
// the whole file on every change event rather than patching rows, so the
// export is always a consistent view of the store.
type ExportWorker struct {
	store      store.Store
	exportPath string
}

func NewExportWorker(st store.Store, exportPath string) *ExportWorker {
	return &ExportWorker{
		store:      st,
		exportPath: exportPath,
	}
}

// HandleLedgerEvent processes a single event from AMQP.
func (w *ExportWorker) HandleLedgerEvent(ctx context.Context, event *amqp.LedgerEvent) error {
	switch event.Event {
	case amqp.EventTransactionsChanged:
		slog.InfoContext(ctx, "Refreshing export", "reason", event.Reason)
		return w.Export(ctx)
	case amqp.EventGoalCompleted:
		slog.InfoContext(ctx, "Goal reached its target",
			"goal_id", event.GoalID,
			"goal_name", event.GoalName)
		return nil
	default:
		slog.WarnContext(ctx, "Ignoring unknown event", "event", event.Event)
		return nil
	}
}

// Export writes the current transaction set to the export path. The file is
// written to a temp name and renamed so readers never see a partial export.
func (w *ExportWorker) Export(ctx context.Context) error {
	txs, err := w.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(w.exportPath), 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(w.exportPath), "export-*.csv")
	if err != nil {
		return fmt.Errorf("create temp export: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := export.WriteCSV(tmp, txs); err != nil {
		tmp.Close()
		return fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp export: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.exportPath); err != nil {
		return fmt.Errorf("replace export: %w", err)
	}

	slog.InfoContext(ctx, "Export written", "path", w.exportPath, "transactions", len(txs))
	return nil
}
