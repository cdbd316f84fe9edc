package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/delimasa/ordergate/internal/api"
	"github.com/delimasa/ordergate/internal/catalog"
	"github.com/delimasa/ordergate/internal/engine"
)

func analysisServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/api/orders/analyze"):
			var req api.AnalyzeOrderRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			record := api.AnalysisRecord{
				AnalysisID:   "test-analysis",
				ClientPolicy: catalog.ClientPolicy{ID: req.ClientID},
				RuleDecision: engine.RuleDecision{
					Decision:   engine.DecisionApprove,
					RiskLevel:  engine.RiskLow,
					OrderTotal: 1125000,
				},
			}
			if r.URL.Path == "/api/orders/analyze-with-ai" {
				record.FinalDecision = &engine.FinalDecision{
					Decision:    engine.DecisionApprove,
					Confidence:  85,
					ActionItems: []string{"proceed with standard processing"},
				}
			}
			_ = json.NewEncoder(w).Encode(record)
		case r.Method == http.MethodGet && r.URL.Path == "/api/clients":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data":    catalog.Default().Clients(),
				"count":   3,
			})
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/products"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"data":    catalog.Default().Products(),
				"count":   8,
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestRunNoArgs(t *testing.T) {
	var stderr bytes.Buffer
	if code := run([]string{"ordergate"}, &bytes.Buffer{}, &stderr); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if !strings.Contains(stderr.String(), "Usage:") {
		t.Fatalf("expected usage output")
	}
}

func TestRunUnknownCommand(t *testing.T) {
	if code := run([]string{"ordergate", "bogus"}, &bytes.Buffer{}, &bytes.Buffer{}); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
}

func TestAnalyzeCommand(t *testing.T) {
	server := analysisServer(t)
	defer server.Close()

	var stdout, stderr bytes.Buffer
	code := run([]string{
		"ordergate", "analyze",
		"-addr", server.URL,
		"-client", "clienteA",
		"-item", "Arroz Premium 50kg:10:125000:10",
	}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "rule_decision=approve") {
		t.Fatalf("unexpected output: %s", stdout.String())
	}
}

func TestAnalyzeWithAICommand(t *testing.T) {
	server := analysisServer(t)
	defer server.Close()

	var stdout, stderr bytes.Buffer
	code := run([]string{
		"ordergate", "analyze",
		"-addr", server.URL,
		"-client", "clienteA",
		"-item", "Arroz Premium 50kg:10:125000",
		"-ai",
	}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "final_decision=approve confidence=85") {
		t.Fatalf("unexpected output: %s", stdout.String())
	}
}

func TestAnalyzeCommandJSON(t *testing.T) {
	server := analysisServer(t)
	defer server.Close()

	var stdout bytes.Buffer
	code := run([]string{
		"ordergate", "analyze",
		"-addr", server.URL,
		"-client", "clienteA",
		"-item", "Arroz Premium 50kg:10:125000:10",
		"-json",
	}, &stdout, &bytes.Buffer{})
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}

	var record api.AnalysisRecord
	if err := json.Unmarshal(stdout.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if record.AnalysisID != "test-analysis" {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestAnalyzeRequiresClientAndItems(t *testing.T) {
	if code := run([]string{"ordergate", "analyze", "-client", "clienteA"}, &bytes.Buffer{}, &bytes.Buffer{}); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if code := run([]string{"ordergate", "analyze", "-item", "x:1:100"}, &bytes.Buffer{}, &bytes.Buffer{}); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
}

func TestAnalyzeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid request"}`))
	}))
	defer server.Close()

	var stderr bytes.Buffer
	code := run([]string{
		"ordergate", "analyze",
		"-addr", server.URL,
		"-client", "clienteA",
		"-item", "x:1:100",
	}, &bytes.Buffer{}, &stderr)
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "invalid request") {
		t.Fatalf("expected server error in stderr: %s", stderr.String())
	}
}

func TestItemFlagParsing(t *testing.T) {
	var items itemFlags

	if err := items.Set("Arroz:10:125000:10"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := items.Set("Azucar:5:95000"); err != nil {
		t.Fatalf("set without discount: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected two items, got %d", len(items))
	}
	if items[0].DiscountPct != 10 || items[1].DiscountPct != 0 {
		t.Fatalf("unexpected discounts %v", items)
	}

	for _, bad := range []string{"", "x", "x:1", "x:one:100", "x:1:much", "x:1:100:lots", "x:1:100:5:extra"} {
		if err := items.Set(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestClientsCommand(t *testing.T) {
	server := analysisServer(t)
	defer server.Close()

	var stdout bytes.Buffer
	code := run([]string{"ordergate", "clients", "-addr", server.URL}, &stdout, &bytes.Buffer{})
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(stdout.String(), "Supermercados DelSur") {
		t.Fatalf("unexpected output: %s", stdout.String())
	}
}

func TestProductsCommand(t *testing.T) {
	server := analysisServer(t)
	defer server.Close()

	var stdout bytes.Buffer
	code := run([]string{"ordergate", "products", "-addr", server.URL}, &stdout, &bytes.Buffer{})
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(stdout.String(), "Arroz Premium 50kg") {
		t.Fatalf("unexpected output: %s", stdout.String())
	}
}

func TestMainUsesExitCode(t *testing.T) {
	oldExit := exitFn
	oldArgs := os.Args
	defer func() {
		exitFn = oldExit
		os.Args = oldArgs
	}()

	code := -1
	exitFn = func(c int) { code = c }
	os.Args = []string{"ordergate"}

	main()
	if code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
}
