package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/core"
)

type monthlySummaryResponse struct {
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	Income       float64 `json:"income"`
	IncomeCents  int64   `json:"income_cents"`
	Expense      float64 `json:"expense"`
	ExpenseCents int64   `json:"expense_cents"`
	Balance      float64 `json:"balance"`
	BalanceCents int64   `json:"balance_cents"`
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	const key = "monthly"

	summaries, ok := s.summaryCache.Get(key)
	if !ok {
		var err error
		summaries, err = s.transactions.MonthlySummaries(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		s.summaryCache.Set(key, summaries)
	}

	out := make([]monthlySummaryResponse, 0, len(summaries))
	for _, sum := range summaries {
		out = append(out, toSummaryResponse(sum))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, err := queryInt(r, "year", now.Year())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	month, err := queryInt(r, "month", int(now.Month()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if month < 1 || month > 12 {
		writeServiceError(w, r, fmt.Errorf("%w: month must be 1-12", core.ErrValidation))
		return
	}

	summaries, err := s.transactions.MonthlySummaries(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// Months with no transactions report zero totals.
	sum := core.MonthlySummary{Year: year, Month: month}
	for _, candidate := range summaries {
		if candidate.Year == year && candidate.Month == month {
			sum = candidate
			break
		}
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(sum))
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", core.ErrValidation, name)
	}
	return v, nil
}

func toSummaryResponse(sum core.MonthlySummary) monthlySummaryResponse {
	balance := sum.Balance()
	return monthlySummaryResponse{
		Year:         sum.Year,
		Month:        sum.Month,
		Income:       sum.Income.Units(),
		IncomeCents:  sum.Income.Cents,
		Expense:      sum.Expense.Units(),
		ExpenseCents: sum.Expense.Cents,
		Balance:      balance.Units(),
		BalanceCents: balance.Cents,
	}
}
