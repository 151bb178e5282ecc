package core

import "fmt"

// ContinuousSeriesCap bounds how many drafts an open-ended series expands to.
// Without a cap a zero-installment request would never terminate.
const ContinuousSeriesCap = 120

// stepFunc advances a date by one recurrence interval.
type stepFunc func(Date) Date

// frequencySteps maps each frequency to its date-stepping function. Each
// occurrence steps from the previous one, so once a monthly series hits an
// end-of-month clamp the shorter day sticks (Jan 31, Feb 28, Mar 28, ...).
var frequencySteps = map[Frequency]stepFunc{
	Daily:   func(d Date) Date { return d.AddDays(1) },
	Weekly:  func(d Date) Date { return d.AddDays(7) },
	Monthly: func(d Date) Date { return d.AddMonths(1) },
}

// TransactionTemplate carries the shared fields of a recurring series; each
// expanded draft copies them and differs only in date and description suffix.
type TransactionTemplate struct {
	Description string
	Amount      Money
	Type        TransactionType
	ColorTag    string
	StartDate   Date
}

func (t TransactionTemplate) validate() error {
	probe := Transaction{
		Description: t.Description,
		Amount:      t.Amount,
		Type:        t.Type,
		Date:        t.StartDate,
	}
	return probe.Validate()
}

// ExpandRecurrence turns a template into the full list of transaction drafts
// for a series: installments many for a fixed series, ContinuousSeriesCap many
// when installments is zero. The first draft falls on the start date itself.
// No draft carries an ID; persistence assigns those. Validation happens before
// any draft is built, so a bad template produces no partial output.
func ExpandRecurrence(t TransactionTemplate, frequency Frequency, installments int) ([]Transaction, error) {
	if installments < 0 {
		return nil, ErrNegativeInstallments
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	step, ok := frequencySteps[frequency]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrequency, string(frequency))
	}

	count := installments
	if count == 0 {
		count = ContinuousSeriesCap
	}

	colorTag := t.ColorTag
	if colorTag == "" {
		colorTag = DefaultColorTag
	}

	drafts := make([]Transaction, 0, count)
	date := t.StartDate
	for i := 0; i < count; i++ {
		if i > 0 {
			date = step(date)
		}
		drafts = append(drafts, Transaction{
			Description: annotateDescription(t.Description, i+1, installments),
			Amount:      t.Amount,
			Type:        t.Type,
			Date:        date,
			ColorTag:    colorTag,
			Recurrence: &Recurrence{
				Frequency:         frequency,
				InstallmentsTotal: installments,
				GroupOrdinal:      i + 1,
			},
		})
	}
	return drafts, nil
}

// annotateDescription suffixes the draft description with its position in the
// series, "(3/12)" for fixed series and "(recurring)" for open-ended ones.
func annotateDescription(description string, ordinal, installments int) string {
	if installments == 0 {
		return fmt.Sprintf("%s (recurring)", description)
	}
	return fmt.Sprintf("%s (%d/%d)", description, ordinal, installments)
}
