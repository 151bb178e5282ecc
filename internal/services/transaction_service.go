// Package services provides business logic and orchestration on top of the
// persistence ports.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// TransactionService orchestrates transaction writes across the store and the
// event publisher.
type TransactionService struct {
	store     store.Store
	publisher Publisher
}

func NewTransactionService(st store.Store, publisher Publisher) *TransactionService {
	return &TransactionService{
		store:     st,
		publisher: publisher,
	}
}

// AddTransaction validates and persists a single one-off transaction.
func (s *TransactionService) AddTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ColorTag == "" {
		t.ColorTag = core.DefaultColorTag
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.store.InsertTransactions(ctx, []core.Transaction{t})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publishChanged(ctx, "transaction added")
	return saved[0], nil
}

// AddRecurring expands a recurring template into its full series and persists
// the whole series in one batch. Nothing is written when expansion fails.
func (s *TransactionService) AddRecurring(ctx context.Context, t core.TransactionTemplate, frequency core.Frequency, installments int) ([]core.Transaction, error) {
	drafts, err := core.ExpandRecurrence(t, frequency, installments)
	if err != nil {
		return nil, err
	}

	saved, err := s.store.InsertTransactions(ctx, drafts)
	if err != nil {
		return nil, fmt.Errorf("save recurring series: %w", err)
	}

	slog.InfoContext(ctx, "Recurring series saved",
		"description", t.Description,
		"frequency", string(frequency),
		"occurrences", len(saved))
	s.publishChanged(ctx, "recurring series added")
	return saved, nil
}

func (s *TransactionService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

func (s *TransactionService) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// UpdateTransaction rewrites a transaction's editable fields. Membership in
// a recurring series never changes through an edit.
func (s *TransactionService) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ColorTag == "" {
		t.ColorTag = core.DefaultColorTag
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.store.UpdateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}
	s.publishChanged(ctx, "transaction updated")
	return updated, nil
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.publishChanged(ctx, "transaction deleted")
	return nil
}

// MonthlySummaries returns per-month income, expense and balance, newest
// month first.
func (s *TransactionService) MonthlySummaries(ctx context.Context) ([]core.MonthlySummary, error) {
	return s.store.MonthlySummaries(ctx)
}

func (s *TransactionService) publishChanged(ctx context.Context, reason string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionsChanged(ctx, reason); err != nil {
		// The write already succeeded; a lost event only delays the export.
		slog.ErrorContext(ctx, "Failed to publish change event", "reason", reason, "error", err)
	}
}

// Close releases the store and publisher connections.
func (s *TransactionService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}
	return nil
}
