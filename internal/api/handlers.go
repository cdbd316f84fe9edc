package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/delimasa/ordergate/internal/catalog"
)

const serviceVersion = "1.0.0"

type Handler struct {
	Service *AnalyzeService
	Catalog *catalog.Catalog

	// Development mode includes error detail in internal error responses.
	DevMode bool
}

func (h *Handler) AnalyzeOrder(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "analyze service not configured"})
		return
	}

	var req AnalyzeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	record, err := h.Service.AnalyzeRules(req, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) AnalyzeOrderWithAI(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "analyze service not configured"})
		return
	}

	var req AnalyzeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	record, err := h.Service.AnalyzeWithOpinion(r.Context(), req, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "analyze service not configured"})
		return
	}

	analysisID := r.PathValue("id")
	if analysisID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing analysis id"})
		return
	}

	record, ok := h.Service.Store.Get(analysisID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "analysis not found"})
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) ListClients(w http.ResponseWriter, _ *http.Request) {
	clients := h.Catalog.Clients()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    clients,
		"count":   len(clients),
	})
}

func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	client, ok := h.Catalog.LookupClient(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "client not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": client})
}

func (h *Handler) ListProducts(w http.ResponseWriter, _ *http.Request) {
	products := h.Catalog.Products()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    products,
		"count":   len(products),
	})
}

func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing query parameter q"})
		return
	}

	products := h.Catalog.SearchProducts(query)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    products,
		"count":   len(products),
		"query":   query,
	})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := h.Catalog.LookupProduct(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": product})
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"service":   "ordergate",
		"version":   serviceVersion,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) Index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "DeliMasa order analysis API",
		"version": serviceVersion,
		"status":  "running",
		"endpoints": map[string]string{
			"analyze":       "POST /api/orders/analyze",
			"analyzeWithAI": "POST /api/orders/analyze-with-ai",
			"analysis":      "GET /api/orders/analyses/{id}",
			"clients":       "GET /api/clients",
			"client":        "GET /api/clients/{id}",
			"products":      "GET /api/products",
			"productSearch": "GET /api/products/search?q={query}",
			"product":       "GET /api/products/{id}",
			"health":        "GET /api/health",
		},
	})
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrClientNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
