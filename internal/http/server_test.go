package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack/internal/services"
	"fintrack/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := memory.New()
	srv := NewServer(":0",
		services.NewTransactionService(st, nil),
		services.NewGoalLedger(st, nil))
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		if rec := doJSON(t, srv, http.MethodGet, path, ""); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestCreateAndListTransactions(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/transactions",
		`{"description":"coffee","amount":"3,50","type":"expense","date":"2025-05-02"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[transactionResponse](t, rec)
	if created.ID == "" || created.AmountCents != 350 || created.ColorTag != "bg-gray-500" {
		t.Fatalf("unexpected response %+v", created)
	}

	rec = doJSON(t, srv, http.MethodGet, "/transactions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	list := decode[[]transactionResponse](t, rec)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("unexpected list %+v", list)
	}

	rec = doJSON(t, srv, http.MethodGet, "/transactions/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCreateRecurringTransactions(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/transactions",
		`{"description":"rent","amount":"800","type":"expense","date":"2025-01-31","frequency":"monthly","installments":3}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	series := decode[[]transactionResponse](t, rec)
	if len(series) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(series))
	}
	if series[1].Date != "2025-02-28" {
		t.Fatalf("expected clamped February date, got %s", series[1].Date)
	}
	if series[2].Description != "rent (3/3)" {
		t.Fatalf("unexpected annotation %q", series[2].Description)
	}
}

func TestTransactionErrors(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"empty description", `{"description":"","amount":"10","type":"expense","date":"2025-01-01"}`, http.StatusBadRequest},
		{"zero amount", `{"description":"x","amount":"0","type":"expense","date":"2025-01-01"}`, http.StatusBadRequest},
		{"bad type", `{"description":"x","amount":"10","type":"transfer","date":"2025-01-01"}`, http.StatusBadRequest},
		{"bad date", `{"description":"x","amount":"10","type":"expense","date":"2025-02-30"}`, http.StatusBadRequest},
		{"bad frequency", `{"description":"x","amount":"10","type":"expense","date":"2025-01-01","frequency":"yearly"}`, http.StatusBadRequest},
		{"malformed body", `{"description":`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/transactions", tc.body)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}

	if rec := doJSON(t, srv, http.MethodGet, "/transactions/missing", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodDelete, "/transactions/missing", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGoalFlow(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/goals",
		`{"name":"vacation","target_amount":"1000","target_date":"2026-06-01"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create goal: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	goal := decode[goalResponse](t, rec)
	if goal.ID == "" || goal.TargetAmountCents != 100000 || goal.IsCompleted {
		t.Fatalf("unexpected goal %+v", goal)
	}

	rec = doJSON(t, srv, http.MethodPost, "/goals/"+goal.ID+"/contributions", `{"amount":"600"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("contribute: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := decode[goalDetailResponse](t, rec)
	if updated.CurrentAmountCents != 60000 || updated.IsCompleted {
		t.Fatalf("unexpected goal after first contribution %+v", updated)
	}
	if len(updated.Contributions) != 1 {
		t.Fatalf("expected contribution history in response, got %+v", updated.Contributions)
	}

	rec = doJSON(t, srv, http.MethodPost, "/goals/"+goal.ID+"/contributions", `{"amount":"400","date":"2025-03-01"}`)
	updated = decode[goalDetailResponse](t, rec)
	if !updated.IsCompleted {
		t.Fatalf("expected completed goal, got %+v", updated)
	}
	if len(updated.Contributions) != 2 {
		t.Fatalf("expected 2 contributions in response, got %+v", updated.Contributions)
	}

	rec = doJSON(t, srv, http.MethodGet, "/goals/"+goal.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get goal: expected 200, got %d", rec.Code)
	}
	detail := decode[goalDetailResponse](t, rec)
	if len(detail.Contributions) != 2 {
		t.Fatalf("expected 2 contributions, got %+v", detail.Contributions)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/goals/"+goal.ID+"/contributions/"+detail.Contributions[0].ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("remove contribution: expected 200, got %d", rec.Code)
	}
	reverted := decode[goalDetailResponse](t, rec)
	if reverted.IsCompleted {
		t.Fatalf("expected incomplete goal after removal, got %+v", reverted)
	}
	if len(reverted.Contributions) != 1 {
		t.Fatalf("expected remaining history in response, got %+v", reverted.Contributions)
	}

	if rec := doJSON(t, srv, http.MethodDelete, "/goals/"+goal.ID, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete goal: expected 204, got %d", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodGet, "/goals/"+goal.ID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestGoalErrors(t *testing.T) {
	srv := newTestServer(t)

	if rec := doJSON(t, srv, http.MethodPost, "/goals", `{"name":"","target_amount":"10","target_date":"2026-01-01"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodPost, "/goals/missing/contributions", `{"amount":"10"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodDelete, "/goals/missing", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestMonthlySummary(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/transactions",
		`{"description":"salary","amount":"2500","type":"income","date":"2025-01-28"}`)
	doJSON(t, srv, http.MethodPost, "/transactions",
		`{"description":"rent","amount":"800","type":"expense","date":"2025-01-02"}`)

	rec := doJSON(t, srv, http.MethodGet, "/summary/monthly", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	sums := decode[[]monthlySummaryResponse](t, rec)
	if len(sums) != 1 {
		t.Fatalf("expected 1 month, got %+v", sums)
	}
	if sums[0].BalanceCents != 170000 {
		t.Fatalf("expected balance 170000 cents, got %+v", sums[0])
	}

	// A write after a cached read must be visible immediately.
	doJSON(t, srv, http.MethodPost, "/transactions",
		`{"description":"groceries","amount":"100","type":"expense","date":"2025-01-03"}`)
	rec = doJSON(t, srv, http.MethodGet, "/summary/monthly", "")
	sums = decode[[]monthlySummaryResponse](t, rec)
	if sums[0].ExpenseCents != 90000 {
		t.Fatalf("expected cache invalidation after write, got %+v", sums[0])
	}
}

func TestExportCSV(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/transactions",
		`{"description":"salary","amount":"2500","type":"income","date":"2025-01-28"}`)

	rec := doJSON(t, srv, http.MethodGet, "/export/csv", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := rec.Body.Bytes()
	if len(body) < 3 || body[0] != 0xEF || body[1] != 0xBB || body[2] != 0xBF {
		t.Fatalf("expected UTF-8 BOM")
	}
	if !strings.Contains(string(body), "28/01/2025") {
		t.Fatalf("expected dd/MM/yyyy date in export, got %q", body)
	}
}

func TestUpdateTransactionEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/transactions",
		`{"description":"rent","amount":"800","type":"expense","date":"2025-03-01"}`)
	created := decode[transactionResponse](t, rec)

	rec = doJSON(t, srv, http.MethodPut, "/transactions/"+created.ID,
		`{"description":"rent march","amount":"850","type":"expense","date":"2025-03-01","color_tag":"bg-blue-500"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := decode[transactionResponse](t, rec)
	if updated.Description != "rent march" || updated.AmountCents != 85000 || updated.ColorTag != "bg-blue-500" {
		t.Fatalf("unexpected response %+v", updated)
	}

	rec = doJSON(t, srv, http.MethodPut, "/transactions/missing",
		`{"description":"x","amount":"1","type":"expense","date":"2025-03-01"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodPut, "/transactions/"+created.ID,
		`{"description":"","amount":"850","type":"expense","date":"2025-03-01"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestEditGoalEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/goals",
		`{"name":"trip","target_amount":"1000","target_date":"2026-06-01"}`)
	created := decode[goalResponse](t, rec)

	rec = doJSON(t, srv, http.MethodPost, "/goals/"+created.ID+"/contributions", `{"amount":"1000"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("contribute: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if g := decode[goalResponse](t, rec); !g.IsCompleted {
		t.Fatalf("expected completed goal, got %+v", g)
	}

	rec = doJSON(t, srv, http.MethodPut, "/goals/"+created.ID,
		`{"name":"grand trip","target_amount":"2000","target_date":"2026-09-01"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	edited := decode[goalResponse](t, rec)
	if edited.Name != "grand trip" || edited.TargetAmountCents != 200000 || edited.IsCompleted {
		t.Fatalf("unexpected response %+v", edited)
	}
	if edited.CurrentAmountCents != 100000 {
		t.Fatalf("edit must not touch contributions, got %+v", edited)
	}

	rec = doJSON(t, srv, http.MethodPut, "/goals/"+created.ID,
		`{"name":"","target_amount":"2000","target_date":"2026-09-01"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodPut, "/goals/missing",
		`{"name":"x","target_amount":"1","target_date":"2026-09-01"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSingleMonthSummary(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/transactions",
		`{"description":"salary","amount":"2500","type":"income","date":"2025-04-28"}`)
	doJSON(t, srv, http.MethodPost, "/transactions",
		`{"description":"rent","amount":"800","type":"expense","date":"2025-04-01"}`)

	rec := doJSON(t, srv, http.MethodGet, "/summary?year=2025&month=4", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	sum := decode[monthlySummaryResponse](t, rec)
	if sum.IncomeCents != 250000 || sum.ExpenseCents != 80000 || sum.BalanceCents != 170000 {
		t.Fatalf("unexpected summary %+v", sum)
	}

	rec = doJSON(t, srv, http.MethodGet, "/summary?year=2025&month=12", "")
	empty := decode[monthlySummaryResponse](t, rec)
	if empty.IncomeCents != 0 || empty.ExpenseCents != 0 {
		t.Fatalf("expected zero totals for empty month, got %+v", empty)
	}

	if rec := doJSON(t, srv, http.MethodGet, "/summary?month=13", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodGet, "/summary?year=abc", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListGoalsIncludesHistory(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/goals",
		`{"name":"car","target_amount":"5000","target_date":"2027-01-01"}`)
	funded := decode[goalResponse](t, rec)
	doJSON(t, srv, http.MethodPost, "/goals",
		`{"name":"laptop","target_amount":"1500","target_date":"2026-03-01"}`)
	doJSON(t, srv, http.MethodPost, "/goals/"+funded.ID+"/contributions", `{"amount":"250"}`)

	rec = doJSON(t, srv, http.MethodGet, "/goals", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	list := decode[[]goalDetailResponse](t, rec)
	if len(list) != 2 {
		t.Fatalf("expected 2 goals, got %+v", list)
	}
	for _, g := range list {
		want := 0
		if g.ID == funded.ID {
			want = 1
		}
		if len(g.Contributions) != want {
			t.Fatalf("goal %s: expected %d contributions, got %+v", g.ID, want, g.Contributions)
		}
	}
}
