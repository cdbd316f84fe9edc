package opinion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/delimasa/ordergate/internal/catalog"
	"github.com/delimasa/ordergate/internal/engine"
)

const validCompletion = `{
  "contextualInsights": ["premium client with steady volume"],
  "riskAssessment": "no hidden commercial risks detected",
  "negotiationSuggestions": ["offer a loyalty rebate"],
  "finalRecommendation": "proceed with the order",
  "decision": "approve",
  "confidence": 85
}`

func testRequest() Request {
	return Request{
		Client: catalog.ClientPolicy{
			ID:          "clienteA",
			Name:        "Supermercados DelSur",
			History:     "Premium client - 50 orders in the last year",
			CreditLimit: 50000000,
			MaxDiscount: 20,
			Category:    catalog.CategoryPremium,
			MinMargin:   12,
		},
		Items: []engine.OrderItem{
			{Product: "Arroz Premium 50kg", Quantity: 10, UnitPrice: 125000, DiscountPct: 10},
		},
		Rules: engine.RuleDecision{
			Decision:        engine.DecisionApprove,
			OrderTotal:      1125000,
			AverageMargin:   33.3,
			AverageDiscount: 10,
			Risks:           []string{},
		},
	}
}

func completionServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing auth header")
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		payload := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
}

func TestClientEvaluateSuccess(t *testing.T) {
	server := completionServer(t, validCompletion, http.StatusOK)
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL, APIKey: "test-key", Retries: 1})

	op, err := client.Evaluate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if op.Decision != engine.DecisionApprove {
		t.Fatalf("expected approve, got %s", op.Decision)
	}
	if op.Confidence != 85 {
		t.Fatalf("expected confidence 85, got %d", op.Confidence)
	}
	if len(op.NegotiationSuggestions) != 1 {
		t.Fatalf("expected one suggestion, got %v", op.NegotiationSuggestions)
	}
}

func TestClientEvaluateUpstreamError(t *testing.T) {
	server := completionServer(t, "", http.StatusInternalServerError)
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL, APIKey: "test-key", Retries: 1})
	if _, err := client.Evaluate(context.Background(), testRequest()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestClientEvaluateMalformedCompletion(t *testing.T) {
	server := completionServer(t, "{not json", http.StatusOK)
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL, APIKey: "test-key", Retries: 1})
	if _, err := client.Evaluate(context.Background(), testRequest()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestClientEvaluateEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewClient(Options{BaseURL: server.URL, APIKey: "test-key", Retries: 1})
	if _, err := client.Evaluate(context.Background(), testRequest()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseRejectsShapeViolations(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"missing decision", `{"contextualInsights":[],"riskAssessment":"r","negotiationSuggestions":[],"finalRecommendation":"f","confidence":80}`},
		{"missing confidence", `{"contextualInsights":[],"riskAssessment":"r","negotiationSuggestions":[],"finalRecommendation":"f","decision":"approve"}`},
		{"missing insights", `{"riskAssessment":"r","negotiationSuggestions":[],"finalRecommendation":"f","decision":"approve","confidence":80}`},
		{"unknown decision", `{"contextualInsights":[],"riskAssessment":"r","negotiationSuggestions":[],"finalRecommendation":"f","decision":"escalate","confidence":80}`},
		{"confidence above range", `{"contextualInsights":[],"riskAssessment":"r","negotiationSuggestions":[],"finalRecommendation":"f","decision":"approve","confidence":140}`},
		{"confidence below range", `{"contextualInsights":[],"riskAssessment":"r","negotiationSuggestions":[],"finalRecommendation":"f","decision":"approve","confidence":-1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.raw)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestParseAcceptsUppercaseDecision(t *testing.T) {
	raw := `{"contextualInsights":["i"],"riskAssessment":"r","negotiationSuggestions":["n"],"finalRecommendation":"f","decision":"ADJUST","confidence":70}`
	op, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if op.Decision != engine.DecisionAdjust {
		t.Fatalf("expected adjust, got %s", op.Decision)
	}
}

func TestFallbackMirrorsRuleDecision(t *testing.T) {
	for _, decision := range []engine.Decision{engine.DecisionApprove, engine.DecisionAdjust, engine.DecisionReject} {
		op := Fallback(engine.RuleDecision{Decision: decision})
		if op.Decision != decision {
			t.Fatalf("expected %s, got %s", decision, op.Decision)
		}
		if op.Confidence != 50 {
			t.Fatalf("expected confidence 50, got %d", op.Confidence)
		}
		if len(op.ContextualInsights) == 0 || op.FinalRecommendation == "" {
			t.Fatalf("expected generic narrative to be populated")
		}
	}
}

func TestBuildPromptIncludesContext(t *testing.T) {
	prompt := BuildPrompt(testRequest())

	for _, fragment := range []string{
		"Supermercados DelSur",
		"Arroz Premium 50kg: 10 units",
		"Rule decision: APPROVE",
		`"decision": "approve|adjust|reject"`,
		"none",
	} {
		if !strings.Contains(prompt, fragment) {
			t.Fatalf("prompt missing %q:\n%s", fragment, prompt)
		}
	}
}

func TestBuildPromptConditions(t *testing.T) {
	req := testRequest()
	req.Conditions = "payment within 60 days"
	prompt := BuildPrompt(req)
	if !strings.Contains(prompt, "payment within 60 days") {
		t.Fatalf("prompt missing conditions:\n%s", prompt)
	}
}
