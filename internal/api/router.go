package api

import (
	"log/slog"
	"net/http"
)

// RouterOptions carries the cross-cutting middleware configuration.
type RouterOptions struct {
	// GeneralLimit applies to every route; AILimit additionally applies to
	// the AI-assisted analysis route. Nil limits disable limiting.
	GeneralLimit *IPRateLimiter
	AILimit      *IPRateLimiter

	// AllowedOrigin enables CORS for the frontend when non-empty.
	AllowedOrigin string

	Logger *slog.Logger
}

func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("GET /api/health", h.Health)

	mux.HandleFunc("POST /api/orders/analyze", h.AnalyzeOrder)
	mux.Handle("POST /api/orders/analyze-with-ai", opts.AILimit.Middleware(http.HandlerFunc(h.AnalyzeOrderWithAI)))
	mux.HandleFunc("GET /api/orders/analyses/{id}", h.GetAnalysis)

	mux.HandleFunc("GET /api/clients", h.ListClients)
	mux.HandleFunc("GET /api/clients/{id}", h.GetClient)

	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/search", h.SearchProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)

	var handler http.Handler = mux
	handler = opts.GeneralLimit.Middleware(handler)
	handler = corsMiddleware(opts.AllowedOrigin, handler)
	handler = recoverMiddleware(opts.Logger, h.DevMode, handler)
	return handler
}

func corsMiddleware(origin string, next http.Handler) http.Handler {
	if origin == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func recoverMiddleware(logger *slog.Logger, devMode bool, next http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Error("panic while handling request", "path", r.URL.Path, "panic", recovered)
				payload := map[string]string{"error": "internal server error"}
				if devMode {
					payload["detail"] = pretty(recovered)
				}
				writeJSON(w, http.StatusInternalServerError, payload)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func pretty(v any) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return "unexpected failure"
}
