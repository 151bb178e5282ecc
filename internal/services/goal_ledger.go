package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// GoalLedger manages savings goals and their contribution history. Every
// mutation leaves the goal's current amount equal to the sum of its
// contributions; the store enforces that inside a single transaction.
type GoalLedger struct {
	store     store.GoalStore
	publisher Publisher
}

// GoalWithHistory pairs a goal with its contributions, newest first.
type GoalWithHistory struct {
	Goal          core.Goal
	Contributions []core.Contribution
}

func NewGoalLedger(st store.GoalStore, publisher Publisher) *GoalLedger {
	return &GoalLedger{
		store:     st,
		publisher: publisher,
	}
}

func (l *GoalLedger) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	saved, err := l.store.CreateGoal(ctx, g)
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	return saved, nil
}

func (l *GoalLedger) GetGoal(ctx context.Context, id string) (GoalWithHistory, error) {
	g, err := l.store.GetGoal(ctx, id)
	if err != nil {
		return GoalWithHistory{}, err
	}
	history, err := l.store.ListContributions(ctx, id)
	if err != nil {
		return GoalWithHistory{}, err
	}
	return GoalWithHistory{Goal: g, Contributions: history}, nil
}

// EditGoal changes a goal's descriptive fields. The accumulated amount and
// the contribution history are untouched; completion is re-derived against
// the new target so the ledger invariant holds after the edit.
func (l *GoalLedger) EditGoal(ctx context.Context, id, name string, target core.Money, targetDate core.Date) (core.Goal, error) {
	probe := core.Goal{Name: name, TargetAmount: target, TargetDate: targetDate}
	if err := probe.Validate(); err != nil {
		return core.Goal{}, err
	}
	return l.store.UpdateGoal(ctx, id, name, target, targetDate)
}

// ListGoals returns every goal with its contribution history attached.
func (l *GoalLedger) ListGoals(ctx context.Context) ([]GoalWithHistory, error) {
	goals, err := l.store.ListGoals(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]GoalWithHistory, 0, len(goals))
	for _, g := range goals {
		history, err := l.store.ListContributions(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, GoalWithHistory{Goal: g, Contributions: history})
	}
	return out, nil
}

// DeleteGoal removes a goal together with its whole contribution history.
func (l *GoalLedger) DeleteGoal(ctx context.Context, id string) error {
	return l.store.DeleteGoal(ctx, id)
}

// Contribute records money put toward a goal and returns the goal with its
// full history. The contribution date defaults to today. Validation happens
// before anything is written, so a rejected contribution leaves the ledger
// untouched.
func (l *GoalLedger) Contribute(ctx context.Context, goalID string, amount core.Money, date core.Date) (GoalWithHistory, error) {
	if err := amount.Validate(); err != nil {
		return GoalWithHistory{}, err
	}
	if date.IsZero() {
		date = core.Today()
	}
	if err := date.Validate(); err != nil {
		return GoalWithHistory{}, fmt.Errorf("%w: %v", core.ErrValidation, err)
	}

	updated, completed, err := l.store.AddContribution(ctx, core.Contribution{
		GoalID: goalID,
		Amount: amount,
		Date:   date,
	})
	if err != nil {
		return GoalWithHistory{}, fmt.Errorf("add contribution: %w", err)
	}

	if completed {
		slog.InfoContext(ctx, "Goal completed", "id", updated.ID, "name", updated.Name)
		l.publishCompleted(ctx, updated)
	}
	return l.withHistory(ctx, updated)
}

// RemoveContribution deletes one contribution and returns the goal with its
// amount and completion flag recomputed and the remaining history attached.
// A goal can move back to incomplete.
func (l *GoalLedger) RemoveContribution(ctx context.Context, goalID, contributionID string) (GoalWithHistory, error) {
	g, err := l.store.RemoveContribution(ctx, goalID, contributionID)
	if err != nil {
		return GoalWithHistory{}, err
	}
	return l.withHistory(ctx, g)
}

func (l *GoalLedger) withHistory(ctx context.Context, g core.Goal) (GoalWithHistory, error) {
	history, err := l.store.ListContributions(ctx, g.ID)
	if err != nil {
		return GoalWithHistory{}, err
	}
	return GoalWithHistory{Goal: g, Contributions: history}, nil
}

func (l *GoalLedger) publishCompleted(ctx context.Context, g core.Goal) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.PublishGoalCompleted(ctx, g.ID, g.Name); err != nil {
		slog.ErrorContext(ctx, "Failed to publish completion event", "id", g.ID, "error", err)
	}
}
