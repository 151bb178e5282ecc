package core

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-15")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d != NewCalendarDate(2025, time.January, 15) {
		t.Fatalf("unexpected date %v", d)
	}

	for _, bad := range []string{"", "2025-02-30", "15/01/2025", "2025-13-01"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("%q expected error", bad)
		}
	}
}

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewCalendarDate(2025, time.January, 1), true},
		{NewCalendarDate(2024, time.February, 29), true}, // leap day
		{NewCalendarDate(2025, time.February, 29), false},
		{NewCalendarDate(2025, time.February, 30), false},
		{Date{}, false},
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateAddMonthsClamps(t *testing.T) {
	cases := []struct {
		start Date
		n     int
		want  Date
	}{
		{NewCalendarDate(2025, time.January, 15), 1, NewCalendarDate(2025, time.February, 15)},
		{NewCalendarDate(2025, time.January, 31), 1, NewCalendarDate(2025, time.February, 28)},
		{NewCalendarDate(2024, time.January, 31), 1, NewCalendarDate(2024, time.February, 29)},
		{NewCalendarDate(2025, time.January, 31), 2, NewCalendarDate(2025, time.March, 31)},
		{NewCalendarDate(2025, time.November, 15), 2, NewCalendarDate(2026, time.January, 15)},
		{NewCalendarDate(2025, time.March, 15), -3, NewCalendarDate(2024, time.December, 15)},
	}
	for i, tc := range cases {
		if got := tc.start.AddMonths(tc.n); got != tc.want {
			t.Fatalf("case %d: %v + %d months = %v, expected %v", i, tc.start, tc.n, got, tc.want)
		}
	}
}

func TestDateAddDays(t *testing.T) {
	got := NewCalendarDate(2025, time.January, 1).AddDays(119)
	want := NewCalendarDate(2025, time.April, 30)
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDateBefore(t *testing.T) {
	a := NewCalendarDate(2025, time.January, 15)
	b := NewCalendarDate(2025, time.February, 1)
	if !a.Before(b) || b.Before(a) || a.Before(a) {
		t.Fatalf("ordering broken for %v / %v", a, b)
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewCalendarDate(2025, time.June, 7)
	b, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2025-06-07"` {
		t.Fatalf("unexpected marshal output %s", b)
	}
	var back Date
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != d {
		t.Fatalf("round trip mismatch: %v != %v", back, d)
	}
}
