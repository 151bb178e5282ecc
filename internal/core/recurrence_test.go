package core

import (
	"errors"
	"testing"
	"time"
)

func template(start Date) TransactionTemplate {
	return TransactionTemplate{
		Description: "gym membership",
		Amount:      Money{Cents: 4500},
		Type:        Expense,
		StartDate:   start,
	}
}

func TestExpandRecurrenceMonthlyFixed(t *testing.T) {
	drafts, err := ExpandRecurrence(template(NewCalendarDate(2025, time.January, 15)), Monthly, 3)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if len(drafts) != 3 {
		t.Fatalf("expected 3 drafts, got %d", len(drafts))
	}
	wantDates := []Date{
		NewCalendarDate(2025, time.January, 15),
		NewCalendarDate(2025, time.February, 15),
		NewCalendarDate(2025, time.March, 15),
	}
	for i, d := range drafts {
		if d.Date != wantDates[i] {
			t.Fatalf("draft %d: expected date %v, got %v", i, wantDates[i], d.Date)
		}
		if d.Recurrence == nil || d.Recurrence.GroupOrdinal != i+1 {
			t.Fatalf("draft %d: bad ordinal %+v", i, d.Recurrence)
		}
		if d.ID != "" {
			t.Fatalf("draft %d: expected no ID, got %q", i, d.ID)
		}
	}
	if drafts[1].Description != "gym membership (2/3)" {
		t.Fatalf("unexpected annotation %q", drafts[1].Description)
	}
}

func TestExpandRecurrenceMonthlyClampSticks(t *testing.T) {
	drafts, err := ExpandRecurrence(template(NewCalendarDate(2025, time.January, 31)), Monthly, 4)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	// Each date steps from the previous occurrence, so the February clamp
	// carries forward instead of snapping back to the 31st.
	wantDates := []Date{
		NewCalendarDate(2025, time.January, 31),
		NewCalendarDate(2025, time.February, 28),
		NewCalendarDate(2025, time.March, 28),
		NewCalendarDate(2025, time.April, 28),
	}
	for i, d := range drafts {
		if d.Date != wantDates[i] {
			t.Fatalf("draft %d: expected %v, got %v", i, wantDates[i], d.Date)
		}
	}
}

func TestExpandRecurrenceContinuousCapped(t *testing.T) {
	drafts, err := ExpandRecurrence(template(NewCalendarDate(2025, time.January, 1)), Daily, 0)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if len(drafts) != ContinuousSeriesCap {
		t.Fatalf("expected %d drafts, got %d", ContinuousSeriesCap, len(drafts))
	}
	if last := drafts[len(drafts)-1].Date; last != NewCalendarDate(2025, time.April, 30) {
		t.Fatalf("expected last date 2025-04-30, got %v", last)
	}
	if drafts[0].Description != "gym membership (recurring)" {
		t.Fatalf("unexpected annotation %q", drafts[0].Description)
	}
	if drafts[0].Recurrence.InstallmentsTotal != 0 {
		t.Fatalf("expected open-ended marker, got %d", drafts[0].Recurrence.InstallmentsTotal)
	}
}

func TestExpandRecurrenceWeekly(t *testing.T) {
	drafts, err := ExpandRecurrence(template(NewCalendarDate(2025, time.January, 1)), Weekly, 2)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if drafts[1].Date != NewCalendarDate(2025, time.January, 8) {
		t.Fatalf("expected second draft on 2025-01-08, got %v", drafts[1].Date)
	}
}

func TestExpandRecurrenceDefaultColorTag(t *testing.T) {
	drafts, err := ExpandRecurrence(template(NewCalendarDate(2025, time.January, 1)), Daily, 1)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if drafts[0].ColorTag != DefaultColorTag {
		t.Fatalf("expected default color tag, got %q", drafts[0].ColorTag)
	}
}

func TestExpandRecurrenceErrors(t *testing.T) {
	start := NewCalendarDate(2025, time.January, 1)

	if _, err := ExpandRecurrence(template(start), "yearly", 3); !errors.Is(err, ErrUnknownFrequency) {
		t.Fatalf("expected ErrUnknownFrequency, got %v", err)
	}
	if _, err := ExpandRecurrence(template(start), Daily, -1); !errors.Is(err, ErrNegativeInstallments) {
		t.Fatalf("expected ErrNegativeInstallments, got %v", err)
	}

	bad := template(start)
	bad.Amount = Money{}
	if _, err := ExpandRecurrence(bad, Daily, 3); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	bad = template(start)
	bad.Description = " "
	if _, err := ExpandRecurrence(bad, Monthly, 3); !errors.Is(err, ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}
}
