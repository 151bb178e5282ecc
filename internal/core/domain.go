package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// DefaultColorTag is applied when a transaction arrives without a display tag.
const DefaultColorTag = "bg-gray-500"

type (
	TransactionType string

	Frequency string

	Money struct {
		Cents int64
	}

	// Recurrence marks a transaction as part of a generated series.
	Recurrence struct {
		Frequency         Frequency
		InstallmentsTotal int // 0 marks an open-ended series
		GroupOrdinal      int // 1-based position inside the series
	}

	Transaction struct {
		ID          string
		Description string
		Amount      Money
		Type        TransactionType
		Date        Date
		ColorTag    string
		Recurrence  *Recurrence
	}

	Goal struct {
		ID            string
		Name          string
		TargetAmount  Money
		CurrentAmount Money
		TargetDate    Date
		IsCompleted   bool
		CreatedAt     time.Time
	}

	Contribution struct {
		ID        string
		GoalID    string
		Amount    Money
		Date      Date
		CreatedAt time.Time
	}
)

// ErrValidation is the common base of all input validation failures; callers
// can match the whole family with errors.Is(err, ErrValidation).
var ErrValidation = errors.New("invalid input")

var (
	ErrInvalidAmount        = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrEmptyDescription     = fmt.Errorf("%w: empty description", ErrValidation)
	ErrDescriptionTooLong   = fmt.Errorf("%w: description too long (max 200 characters)", ErrValidation)
	ErrInvalidType          = fmt.Errorf("%w: transaction type must be expense or income", ErrValidation)
	ErrEmptyName            = fmt.Errorf("%w: empty goal name", ErrValidation)
	ErrInvalidTargetAmount  = fmt.Errorf("%w: target amount must be positive", ErrValidation)
	ErrUnknownFrequency     = fmt.Errorf("%w: unknown frequency", ErrValidation)
	ErrNegativeInstallments = fmt.Errorf("%w: installments must not be negative", ErrValidation)
)

func (t TransactionType) Validate() error {
	switch t {
	case Expense, Income:
		return nil
	default:
		return ErrInvalidType
	}
}

func (f Frequency) Validate() error {
	switch f {
	case Daily, Weekly, Monthly:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFrequency, string(f))
	}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (tx Transaction) Validate() error {
	if len(strings.TrimSpace(tx.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(tx.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if err := tx.Amount.Validate(); err != nil {
		return err
	}
	if err := tx.Type.Validate(); err != nil {
		return err
	}
	if err := tx.Date.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func (g Goal) Validate() error {
	if len(strings.TrimSpace(g.Name)) == 0 {
		return ErrEmptyName
	}
	if g.TargetAmount.Cents <= 0 {
		return ErrInvalidTargetAmount
	}
	if err := g.TargetDate.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// ReachedTarget reports whether the accumulated amount covers the target.
// A goal's IsCompleted flag must always equal this after any ledger mutation.
func (g Goal) ReachedTarget() bool {
	return g.CurrentAmount.Cents >= g.TargetAmount.Cents
}
