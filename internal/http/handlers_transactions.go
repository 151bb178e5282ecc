package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/export"
)

type createTransactionRequest struct {
	Description  string          `json:"description"`
	Amount       json.RawMessage `json:"amount"`
	Type         string          `json:"type"`
	Date         string          `json:"date"`
	ColorTag     string          `json:"color_tag"`
	Frequency    string          `json:"frequency"`
	Installments int             `json:"installments"`
}

type recurrenceResponse struct {
	Frequency    string `json:"frequency"`
	Installments int    `json:"installments"`
	Ordinal      int    `json:"ordinal"`
}

type transactionResponse struct {
	ID          string              `json:"id"`
	Description string              `json:"description"`
	Amount      float64             `json:"amount"`
	AmountCents int64               `json:"amount_cents"`
	Type        string              `json:"type"`
	Date        string              `json:"date"`
	ColorTag    string              `json:"color_tag"`
	Recurrence  *recurrenceResponse `json:"recurrence,omitempty"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:          t.ID,
		Description: t.Description,
		Amount:      t.Amount.Units(),
		AmountCents: t.Amount.Cents,
		Type:        string(t.Type),
		Date:        t.Date.String(),
		ColorTag:    t.ColorTag,
	}
	if t.Recurrence != nil {
		resp.Recurrence = &recurrenceResponse{
			Frequency:    string(t.Recurrence.Frequency),
			Installments: t.Recurrence.InstallmentsTotal,
			Ordinal:      t.Recurrence.GroupOrdinal,
		}
	}
	return resp
}

func toTransactionResponses(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	return out
}

// handleCreateTransaction records a one-off transaction, or a whole series
// when a frequency is given.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	date := core.Today()
	if req.Date != "" {
		if date, err = core.ParseDate(req.Date); err != nil {
			writeServiceError(w, r, fmt.Errorf("%w: %v", core.ErrValidation, err))
			return
		}
	}

	description := sanitizeInput(req.Description)
	colorTag := sanitizeInput(req.ColorTag)

	if req.Frequency != "" {
		saved, err := s.transactions.AddRecurring(r.Context(), core.TransactionTemplate{
			Description: description,
			Amount:      amount,
			Type:        core.TransactionType(req.Type),
			ColorTag:    colorTag,
			StartDate:   date,
		}, core.Frequency(req.Frequency), req.Installments)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		s.invalidateReadCaches()
		writeJSON(w, http.StatusCreated, toTransactionResponses(saved))
		return
	}

	saved, err := s.transactions.AddTransaction(r.Context(), core.Transaction{
		Description: description,
		Amount:      amount,
		Type:        core.TransactionType(req.Type),
		Date:        date,
		ColorTag:    colorTag,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.invalidateReadCaches()
	writeJSON(w, http.StatusCreated, toTransactionResponse(saved))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.cachedTransactions(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(txs))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.transactions.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

type updateTransactionRequest struct {
	Description string          `json:"description"`
	Amount      json.RawMessage `json:"amount"`
	Type        string          `json:"type"`
	Date        string          `json:"date"`
	ColorTag    string          `json:"color_tag"`
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req updateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeServiceError(w, r, fmt.Errorf("%w: %v", core.ErrValidation, err))
		return
	}

	updated, err := s.transactions.UpdateTransaction(r.Context(), core.Transaction{
		ID:          r.PathValue("id"),
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		Type:        core.TransactionType(req.Type),
		Date:        date,
		ColorTag:    sanitizeInput(req.ColorTag),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.invalidateReadCaches()
	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.transactions.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.invalidateReadCaches()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	txs, err := s.cachedTransactions(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	if err := export.WriteCSV(w, txs); err != nil {
		// Headers are out; all we can do is log.
		slog.ErrorContext(r.Context(), "Failed to stream CSV export", "error", err)
	}
}

func (s *Server) cachedTransactions(r *http.Request) ([]core.Transaction, error) {
	const key = "all"
	if txs, ok := s.listCache.Get(key); ok {
		return txs, nil
	}
	txs, err := s.transactions.ListTransactions(r.Context())
	if err != nil {
		return nil, err
	}
	s.listCache.Set(key, txs)
	return txs, nil
}
