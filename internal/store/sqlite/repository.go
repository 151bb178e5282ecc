// Package sqlite is the SQLite persistence backend.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const insertTransactionSQL = `
INSERT INTO transactions (id, description, amount_cents, type, date, color_tag, recurrence_frequency, recurrence_total, recurrence_ordinal)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (r *Repository) InsertTransactions(ctx context.Context, txs []core.Transaction) ([]core.Transaction, error) {
	if len(txs) == 0 {
		return nil, nil
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	saved := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.ColorTag == "" {
			t.ColorTag = core.DefaultColorTag
		}
		var freq sql.NullString
		var total, ordinal sql.NullInt64
		if t.Recurrence != nil {
			freq = sql.NullString{String: string(t.Recurrence.Frequency), Valid: true}
			total = sql.NullInt64{Int64: int64(t.Recurrence.InstallmentsTotal), Valid: true}
			ordinal = sql.NullInt64{Int64: int64(t.Recurrence.GroupOrdinal), Valid: true}
		}
		if _, err := dbTx.ExecContext(ctx, insertTransactionSQL,
			t.ID, t.Description, t.Amount.Cents, string(t.Type), t.Date.String(), t.ColorTag,
			freq, total, ordinal); err != nil {
			return nil, fmt.Errorf("insert transaction: %w", err)
		}
		saved = append(saved, t)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transactions: %w", err)
	}

	slog.InfoContext(ctx, "Transactions saved", "count", len(saved))
	return saved, nil
}

const selectTransactionSQL = `
SELECT id, description, amount_cents, type, date, color_tag, recurrence_frequency, recurrence_total, recurrence_ordinal
FROM transactions`

func (r *Repository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectTransactionSQL+" ORDER BY date DESC, id")
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *Repository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, selectTransactionSQL+" WHERE id = ?", id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, store.ErrNotFound)
	}
	return t, err
}

func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE transactions SET description = ?, amount_cents = ?, type = ?, date = ?, color_tag = ?
WHERE id = ?`,
		t.Description, t.Amount.Cents, string(t.Type), t.Date.String(), t.ColorTag, t.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", t.ID, store.ErrNotFound)
	}
	return r.GetTransaction(ctx, t.ID)
}

func (r *Repository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, store.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t             core.Transaction
		typ, dateStr  string
		freq          sql.NullString
		total, ordnum sql.NullInt64
	)
	if err := row.Scan(&t.ID, &t.Description, &t.Amount.Cents, &typ, &dateStr, &t.ColorTag, &freq, &total, &ordnum); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Type = core.TransactionType(typ)
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction date: %w", err)
	}
	t.Date = date
	if freq.Valid {
		t.Recurrence = &core.Recurrence{
			Frequency:         core.Frequency(freq.String),
			InstallmentsTotal: int(total.Int64),
			GroupOrdinal:      int(ordnum.Int64),
		}
	}
	return t, nil
}

func (r *Repository) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	g.CurrentAmount = core.Money{}
	g.IsCompleted = false

	_, err := r.db.ExecContext(ctx, `
INSERT INTO goals (id, name, target_amount_cents, current_amount_cents, target_date, is_completed, created_at)
VALUES (?, ?, ?, 0, ?, 0, ?)`,
		g.ID, g.Name, g.TargetAmount.Cents, g.TargetDate.String(), g.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}

	slog.InfoContext(ctx, "Goal created", "id", g.ID, "name", g.Name, "target_cents", g.TargetAmount.Cents)
	return g, nil
}

const selectGoalSQL = `
SELECT id, name, target_amount_cents, current_amount_cents, target_date, is_completed, created_at
FROM goals`

func (r *Repository) GetGoal(ctx context.Context, id string) (core.Goal, error) {
	return scanGoal(r.db.QueryRowContext(ctx, selectGoalSQL+" WHERE id = ?", id), id)
}

func (r *Repository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, selectGoalSQL+" ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows, "")
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func scanGoal(row rowScanner, id string) (core.Goal, error) {
	var (
		g                  core.Goal
		targetDate, crtStr string
		completed          int
	)
	err := row.Scan(&g.ID, &g.Name, &g.TargetAmount.Cents, &g.CurrentAmount.Cents, &targetDate, &completed, &crtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, fmt.Errorf("goal %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("scan goal: %w", err)
	}
	g.IsCompleted = completed != 0
	if g.TargetDate, err = core.ParseDate(targetDate); err != nil {
		return core.Goal{}, fmt.Errorf("scan goal target date: %w", err)
	}
	if g.CreatedAt, err = time.Parse(time.RFC3339, crtStr); err != nil {
		return core.Goal{}, fmt.Errorf("scan goal created_at: %w", err)
	}
	return g, nil
}

func (r *Repository) UpdateGoal(ctx context.Context, id, name string, target core.Money, targetDate core.Date) (core.Goal, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE goals SET name = ?, target_amount_cents = ?, target_date = ?,
    is_completed = CASE WHEN current_amount_cents >= ? THEN 1 ELSE 0 END
WHERE id = ?`,
		name, target.Cents, targetDate.String(), target.Cents, id)
	if err != nil {
		return core.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Goal{}, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.Goal{}, fmt.Errorf("goal %s: %w", id, store.ErrNotFound)
	}
	return r.GetGoal(ctx, id)
}

func (r *Repository) DeleteGoal(ctx context.Context, id string) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	// Contributions first so no orphaned rows survive a partial failure.
	if _, err := dbTx.ExecContext(ctx, "DELETE FROM contributions WHERE goal_id = ?", id); err != nil {
		return fmt.Errorf("delete contributions: %w", err)
	}
	res, err := dbTx.ExecContext(ctx, "DELETE FROM goals WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("goal %s: %w", id, store.ErrNotFound)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	slog.InfoContext(ctx, "Goal deleted", "id", id)
	return nil
}

// resumGoalSQL recomputes a goal's accumulated amount from its surviving
// contributions instead of adjusting it incrementally, so the stored value
// can never drift from the contribution rows.
const resumGoalSQL = `
UPDATE goals SET
    current_amount_cents = MAX(0, (SELECT COALESCE(SUM(amount_cents), 0) FROM contributions WHERE goal_id = goals.id)),
    is_completed = CASE
        WHEN (SELECT COALESCE(SUM(amount_cents), 0) FROM contributions WHERE goal_id = goals.id) >= target_amount_cents THEN 1
        ELSE 0
    END
WHERE id = ?`

func (r *Repository) AddContribution(ctx context.Context, c core.Contribution) (core.Goal, bool, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Goal{}, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	var completedBefore bool
	if err := dbTx.QueryRowContext(ctx, "SELECT is_completed FROM goals WHERE id = ?", c.GoalID).Scan(&completedBefore); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Goal{}, false, fmt.Errorf("goal %s: %w", c.GoalID, store.ErrNotFound)
		}
		return core.Goal{}, false, fmt.Errorf("lookup goal: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, `
INSERT INTO contributions (id, goal_id, amount_cents, date, created_at)
VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.GoalID, c.Amount.Cents, c.Date.String(), c.CreatedAt.Format(time.RFC3339)); err != nil {
		return core.Goal{}, false, fmt.Errorf("insert contribution: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, resumGoalSQL, c.GoalID); err != nil {
		return core.Goal{}, false, fmt.Errorf("recompute goal amount: %w", err)
	}

	g, err := scanGoal(dbTx.QueryRowContext(ctx, selectGoalSQL+" WHERE id = ?", c.GoalID), c.GoalID)
	if err != nil {
		return core.Goal{}, false, err
	}

	if err := dbTx.Commit(); err != nil {
		return core.Goal{}, false, fmt.Errorf("commit contribution: %w", err)
	}
	return g, !completedBefore && g.IsCompleted, nil
}

func (r *Repository) RemoveContribution(ctx context.Context, goalID, contributionID string) (core.Goal, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Goal{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	res, err := dbTx.ExecContext(ctx, "DELETE FROM contributions WHERE id = ? AND goal_id = ?", contributionID, goalID)
	if err != nil {
		return core.Goal{}, fmt.Errorf("delete contribution: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Goal{}, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.Goal{}, fmt.Errorf("contribution %s of goal %s: %w", contributionID, goalID, store.ErrNotFound)
	}

	if _, err := dbTx.ExecContext(ctx, resumGoalSQL, goalID); err != nil {
		return core.Goal{}, fmt.Errorf("recompute goal amount: %w", err)
	}

	g, err := scanGoal(dbTx.QueryRowContext(ctx, selectGoalSQL+" WHERE id = ?", goalID), goalID)
	if err != nil {
		return core.Goal{}, err
	}

	if err := dbTx.Commit(); err != nil {
		return core.Goal{}, fmt.Errorf("commit removal: %w", err)
	}
	return g, nil
}

func (r *Repository) ListContributions(ctx context.Context, goalID string) ([]core.Contribution, error) {
	var exists string
	if err := r.db.QueryRowContext(ctx, "SELECT id FROM goals WHERE id = ?", goalID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("goal %s: %w", goalID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("lookup goal: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, goal_id, amount_cents, date, created_at
FROM contributions
WHERE goal_id = ?
ORDER BY date DESC, created_at DESC`, goalID)
	if err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}
	defer rows.Close()

	var contributions []core.Contribution
	for rows.Next() {
		var (
			c                  core.Contribution
			dateStr, createdAt string
		)
		if err := rows.Scan(&c.ID, &c.GoalID, &c.Amount.Cents, &dateStr, &createdAt); err != nil {
			return nil, fmt.Errorf("scan contribution: %w", err)
		}
		if c.Date, err = core.ParseDate(dateStr); err != nil {
			return nil, fmt.Errorf("scan contribution date: %w", err)
		}
		if c.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("scan contribution created_at: %w", err)
		}
		contributions = append(contributions, c)
	}
	return contributions, rows.Err()
}

func (r *Repository) MonthlySummaries(ctx context.Context) ([]core.MonthlySummary, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT CAST(substr(date, 1, 4) AS INTEGER) AS year,
       CAST(substr(date, 6, 2) AS INTEGER) AS month,
       COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END), 0),
       COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END), 0)
FROM transactions
GROUP BY substr(date, 1, 7)
ORDER BY substr(date, 1, 7) DESC`)
	if err != nil {
		return nil, fmt.Errorf("monthly summaries: %w", err)
	}
	defer rows.Close()

	var summaries []core.MonthlySummary
	for rows.Next() {
		var s core.MonthlySummary
		if err := rows.Scan(&s.Year, &s.Month, &s.Income.Cents, &s.Expense.Cents); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
