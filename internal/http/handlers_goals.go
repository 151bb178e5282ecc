package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type createGoalRequest struct {
	Name         string          `json:"name"`
	TargetAmount json.RawMessage `json:"target_amount"`
	TargetDate   string          `json:"target_date"`
}

type contributionRequest struct {
	Amount json.RawMessage `json:"amount"`
	Date   string          `json:"date"`
}

type goalResponse struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	TargetAmount       float64 `json:"target_amount"`
	TargetAmountCents  int64   `json:"target_amount_cents"`
	CurrentAmount      float64 `json:"current_amount"`
	CurrentAmountCents int64   `json:"current_amount_cents"`
	TargetDate         string  `json:"target_date"`
	IsCompleted        bool    `json:"is_completed"`
	CreatedAt          string  `json:"created_at"`
}

type contributionResponse struct {
	ID          string  `json:"id"`
	GoalID      string  `json:"goal_id"`
	Amount      float64 `json:"amount"`
	AmountCents int64   `json:"amount_cents"`
	Date        string  `json:"date"`
	CreatedAt   string  `json:"created_at"`
}

type goalDetailResponse struct {
	goalResponse
	Contributions []contributionResponse `json:"contributions"`
}

func toGoalResponse(g core.Goal) goalResponse {
	return goalResponse{
		ID:                 g.ID,
		Name:               g.Name,
		TargetAmount:       g.TargetAmount.Units(),
		TargetAmountCents:  g.TargetAmount.Cents,
		CurrentAmount:      g.CurrentAmount.Units(),
		CurrentAmountCents: g.CurrentAmount.Cents,
		TargetDate:         g.TargetDate.String(),
		IsCompleted:        g.IsCompleted,
		CreatedAt:          g.CreatedAt.Format(time.RFC3339),
	}
}

func toGoalDetailResponse(gh services.GoalWithHistory) goalDetailResponse {
	resp := goalDetailResponse{
		goalResponse:  toGoalResponse(gh.Goal),
		Contributions: make([]contributionResponse, 0, len(gh.Contributions)),
	}
	for _, c := range gh.Contributions {
		resp.Contributions = append(resp.Contributions, contributionResponse{
			ID:          c.ID,
			GoalID:      c.GoalID,
			Amount:      c.Amount.Units(),
			AmountCents: c.Amount.Cents,
			Date:        c.Date.String(),
			CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	target, err := parseAmount(req.TargetAmount)
	if err != nil {
		writeServiceError(w, r, fmt.Errorf("%w: target amount", err))
		return
	}
	targetDate, err := core.ParseDate(req.TargetDate)
	if err != nil {
		writeServiceError(w, r, fmt.Errorf("%w: %v", core.ErrValidation, err))
		return
	}

	g, err := s.goals.CreateGoal(r.Context(), core.Goal{
		Name:         sanitizeInput(req.Name),
		TargetAmount: target,
		TargetDate:   targetDate,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalResponse(g))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.goals.ListGoals(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]goalDetailResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalDetailResponse(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	gh, err := s.goals.GetGoal(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalDetailResponse(gh))
}

func (s *Server) handleEditGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	target, err := parseAmount(req.TargetAmount)
	if err != nil {
		writeServiceError(w, r, fmt.Errorf("%w: target amount", err))
		return
	}
	targetDate, err := core.ParseDate(req.TargetDate)
	if err != nil {
		writeServiceError(w, r, fmt.Errorf("%w: %v", core.ErrValidation, err))
		return
	}

	g, err := s.goals.EditGoal(r.Context(), r.PathValue("id"), sanitizeInput(req.Name), target, targetDate)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(g))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.goals.DeleteGoal(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddContribution(w http.ResponseWriter, r *http.Request) {
	var req contributionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var date core.Date
	if req.Date != "" {
		if date, err = core.ParseDate(req.Date); err != nil {
			writeServiceError(w, r, fmt.Errorf("%w: %v", core.ErrValidation, err))
			return
		}
	}

	gh, err := s.goals.Contribute(r.Context(), r.PathValue("id"), amount, date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalDetailResponse(gh))
}

func (s *Server) handleRemoveContribution(w http.ResponseWriter, r *http.Request) {
	gh, err := s.goals.RemoveContribution(r.Context(), r.PathValue("id"), r.PathValue("contributionID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalDetailResponse(gh))
}
