// Package memory is an in-process persistence backend used by tests and by
// the memory data backend.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type Store struct {
	mu            sync.Mutex
	transactions  map[string]core.Transaction
	goals         map[string]core.Goal
	contributions map[string]core.Contribution
}

func New() *Store {
	return &Store{
		transactions:  map[string]core.Transaction{},
		goals:         map[string]core.Goal{},
		contributions: map[string]core.Contribution{},
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) InsertTransactions(_ context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.ColorTag == "" {
			t.ColorTag = core.DefaultColorTag
		}
		saved = append(saved, t)
	}
	// Write only after every draft has an ID, so a panic above leaves the
	// store untouched.
	for _, t := range saved {
		s.transactions[t.ID] = t
	}
	return saved, nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[j].Date.Before(out[i].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, store.ErrNotFound)
	}
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.transactions[t.ID]
	if !ok {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", t.ID, store.ErrNotFound)
	}
	existing.Description = t.Description
	existing.Amount = t.Amount
	existing.Type = t.Type
	existing.Date = t.Date
	existing.ColorTag = t.ColorTag
	s.transactions[t.ID] = existing
	return existing, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[id]; !ok {
		return fmt.Errorf("transaction %s: %w", id, store.ErrNotFound)
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) CreateGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	g.CurrentAmount = core.Money{}
	g.IsCompleted = false
	s.goals[g.ID] = g
	return g, nil
}

func (s *Store) GetGoal(_ context.Context, id string) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goalLocked(id)
}

func (s *Store) ListGoals(_ context.Context) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Goal, 0, len(s.goals))
	for _, g := range s.goals {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateGoal(_ context.Context, id, name string, target core.Money, targetDate core.Date) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[id]
	if !ok {
		return core.Goal{}, fmt.Errorf("goal %s: %w", id, store.ErrNotFound)
	}
	g.Name = name
	g.TargetAmount = target
	g.TargetDate = targetDate
	g.IsCompleted = g.ReachedTarget()
	s.goals[id] = g
	return g, nil
}

func (s *Store) DeleteGoal(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.goals[id]; !ok {
		return fmt.Errorf("goal %s: %w", id, store.ErrNotFound)
	}
	for cid, c := range s.contributions {
		if c.GoalID == id {
			delete(s.contributions, cid)
		}
	}
	delete(s.goals, id)
	return nil
}

func (s *Store) AddContribution(_ context.Context, c core.Contribution) (core.Goal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, ok := s.goals[c.GoalID]
	if !ok {
		return core.Goal{}, false, fmt.Errorf("goal %s: %w", c.GoalID, store.ErrNotFound)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	s.contributions[c.ID] = c
	g := s.resumLocked(c.GoalID)
	return g, !before.IsCompleted && g.IsCompleted, nil
}

func (s *Store) RemoveContribution(_ context.Context, goalID, contributionID string) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.goals[goalID]; !ok {
		return core.Goal{}, fmt.Errorf("goal %s: %w", goalID, store.ErrNotFound)
	}
	c, ok := s.contributions[contributionID]
	if !ok || c.GoalID != goalID {
		return core.Goal{}, fmt.Errorf("contribution %s of goal %s: %w", contributionID, goalID, store.ErrNotFound)
	}
	delete(s.contributions, contributionID)
	return s.resumLocked(goalID), nil
}

func (s *Store) ListContributions(_ context.Context, goalID string) ([]core.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.goals[goalID]; !ok {
		return nil, fmt.Errorf("goal %s: %w", goalID, store.ErrNotFound)
	}
	var out []core.Contribution
	for _, c := range s.contributions {
		if c.GoalID == goalID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[j].Date.Before(out[i].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) MonthlySummaries(_ context.Context) ([]core.MonthlySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type key struct{ year, month int }
	byMonth := map[key]*core.MonthlySummary{}
	for _, t := range s.transactions {
		k := key{t.Date.Year, int(t.Date.Month)}
		sum, ok := byMonth[k]
		if !ok {
			sum = &core.MonthlySummary{Year: k.year, Month: k.month}
			byMonth[k] = sum
		}
		switch t.Type {
		case core.Income:
			sum.Income.Cents += t.Amount.Cents
		case core.Expense:
			sum.Expense.Cents += t.Amount.Cents
		}
	}

	out := make([]core.MonthlySummary, 0, len(byMonth))
	for _, sum := range byMonth {
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out, nil
}

func (s *Store) goalLocked(id string) (core.Goal, error) {
	g, ok := s.goals[id]
	if !ok {
		return core.Goal{}, fmt.Errorf("goal %s: %w", id, store.ErrNotFound)
	}
	return g, nil
}

// resumLocked recomputes the goal's accumulated amount from its contribution
// rows. Callers must hold the mutex and must have checked the goal exists.
func (s *Store) resumLocked(goalID string) core.Goal {
	var total int64
	for _, c := range s.contributions {
		if c.GoalID == goalID {
			total += c.Amount.Cents
		}
	}
	if total < 0 {
		total = 0
	}
	g := s.goals[goalID]
	g.CurrentAmount = core.Money{Cents: total}
	g.IsCompleted = g.ReachedTarget()
	s.goals[goalID] = g
	return g
}
