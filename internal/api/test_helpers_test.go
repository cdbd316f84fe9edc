package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/delimasa/ordergate/internal/catalog"
	"github.com/delimasa/ordergate/internal/engine"
	"github.com/delimasa/ordergate/internal/opinion"
)

// stubSource returns a canned opinion or error.
type stubSource struct {
	op  engine.Opinion
	err error
}

func (s stubSource) Evaluate(_ context.Context, _ opinion.Request) (engine.Opinion, error) {
	return s.op, s.err
}

func approvingOpinion() engine.Opinion {
	return engine.Opinion{
		ContextualInsights:     []string{"reliable premium client"},
		RiskAssessment:         "low commercial risk",
		NegotiationSuggestions: []string{"hold current terms"},
		FinalRecommendation:    "proceed with the order",
		Decision:               engine.DecisionApprove,
		Confidence:             85,
	}
}

func newTestHandler(source opinion.Source) *Handler {
	service := NewAnalyzeService(catalog.Default(), source, slog.New(slog.DiscardHandler))
	return &Handler{Service: service, Catalog: service.Catalog}
}

func newTestRouter(t *testing.T, source opinion.Source) http.Handler {
	t.Helper()
	return NewRouter(newTestHandler(source), RouterOptions{Logger: slog.New(slog.DiscardHandler)})
}

func compliantRequest() AnalyzeOrderRequest {
	return AnalyzeOrderRequest{
		ClientID: "clienteA",
		Items: []engine.OrderItem{
			{Product: "Arroz Premium 50kg", Quantity: 10, UnitPrice: 125000, DiscountPct: 10},
		},
	}
}

func postJSON(t *testing.T, handler http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func getPath(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeRecord(t *testing.T, rec *httptest.ResponseRecorder) AnalysisRecord {
	t.Helper()
	var record AnalysisRecord
	if err := json.NewDecoder(rec.Body).Decode(&record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	return record
}
