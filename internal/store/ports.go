// Package store defines the persistence ports of the tracker. Backends in
// the sqlite and memory subpackages implement them.
package store

import (
	"context"
	"errors"

	"fintrack/internal/core"
)

// ErrNotFound is returned when a lookup, update or delete targets a record
// that does not exist.
var ErrNotFound = errors.New("not found")

// TransactionStore persists transactions. InsertTransactions is atomic: the
// whole batch lands or none of it does.
type TransactionStore interface {
	InsertTransactions(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error)
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	// UpdateTransaction rewrites the editable fields; series membership is
	// fixed at creation and never changes.
	UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// GoalStore persists goals and their contributions. AddContribution and
// RemoveContribution recompute the goal's current amount and completion flag
// inside the same transaction as the contribution write, so a reader never
// observes them out of sync.
type GoalStore interface {
	CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
	GetGoal(ctx context.Context, id string) (core.Goal, error)
	ListGoals(ctx context.Context) ([]core.Goal, error)
	// UpdateGoal rewrites name, target amount and target date. The current
	// amount and the contributions are untouched; the completion flag is
	// re-derived against the new target.
	UpdateGoal(ctx context.Context, id, name string, target core.Money, targetDate core.Date) (core.Goal, error)
	// DeleteGoal removes the goal and all of its contributions.
	DeleteGoal(ctx context.Context, id string) error

	// AddContribution reports whether this write flipped the goal from
	// incomplete to completed, observed under the same transaction, so
	// concurrent contributors cannot both see the transition.
	AddContribution(ctx context.Context, c core.Contribution) (core.Goal, bool, error)
	RemoveContribution(ctx context.Context, goalID, contributionID string) (core.Goal, error)
	// ListContributions returns the goal's history ordered newest first.
	ListContributions(ctx context.Context, goalID string) ([]core.Contribution, error)
}

// SummaryReader aggregates transactions into per-month summaries.
type SummaryReader interface {
	MonthlySummaries(ctx context.Context) ([]core.MonthlySummary, error)
}

// Store is the full persistence surface a backend must provide.
type Store interface {
	TransactionStore
	GoalStore
	SummaryReader
	Close() error
}
