package main

import (
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/delimasa/ordergate/internal/api"
	"github.com/delimasa/ordergate/internal/catalog"
	"github.com/delimasa/ordergate/internal/config"
	"github.com/delimasa/ordergate/internal/opinion"
)

func main() {
	// Local development keeps OPENAI_API_KEY in a .env file; missing files
	// are fine.
	_ = godotenv.Load()

	if err := runFn(os.Args[1:], os.Getenv, listenAndServe, newServer); err != nil {
		fatalf("server error: %v", err)
	}
}

var runFn = run
var fatalf = log.Fatalf

func newServer(addr string, cfg config.Config) *http.Server {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		loaded, err := catalog.Load(cfg.CatalogPath)
		if err != nil {
			fatalf("catalog error: %v", err)
			return nil
		}
		cat = loaded
	}

	var source opinion.Source
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		source = opinion.NewClient(opinion.Options{
			BaseURL:     cfg.AI.BaseURL,
			APIKey:      cfg.AI.APIKey,
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			MaxTokens:   cfg.AI.MaxTokens,
			Timeout:     time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
			Retries:     cfg.AI.MaxRetries,
		})
	} else {
		logger.Info("AI opinion source disabled, analyses fall back to rule decisions")
	}

	service := api.NewAnalyzeService(cat, source, logger)
	h := &api.Handler{
		Service: service,
		Catalog: cat,
		DevMode: cfg.Environment == "development",
	}

	router := api.NewRouter(h, api.RouterOptions{
		GeneralLimit:  newLimiter(cfg.RateLimit.WindowSeconds, cfg.RateLimit.MaxRequests, 900, 100),
		AILimit:       newLimiter(cfg.RateLimit.AIWindowSeconds, cfg.RateLimit.AIMaxRequests, 60, 10),
		AllowedOrigin: cfg.FrontendOrigin,
		Logger:        logger,
	})

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func newLimiter(windowSeconds, maxRequests, defaultWindow, defaultMax int) *api.IPRateLimiter {
	if windowSeconds == 0 {
		windowSeconds = defaultWindow
	}
	if maxRequests == 0 {
		maxRequests = defaultMax
	}
	return api.NewIPRateLimiter(time.Duration(windowSeconds)*time.Second, maxRequests)
}

type envFn func(string) string
type listenFn func(*http.Server) error
type serverFactory func(addr string, cfg config.Config) *http.Server

func run(args []string, getenv envFn, listen listenFn, factory serverFactory) error {
	fs := flag.NewFlagSet("ordergate-gateway", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to ordergate config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfgFile := *configPath
	if cfgFile == "" {
		cfgFile = getenv("ORDERGATE_CONFIG_PATH")
	}

	var cfg config.Config
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	addr := firstNonEmpty(getenv("ORDERGATE_LISTEN_ADDR"), cfg.ListenAddr, ":8080")

	cfg.AI.APIKey = firstNonEmpty(getenv("OPENAI_API_KEY"), cfg.AI.APIKey)
	if cfgFile == "" && cfg.AI.APIKey != "" {
		// Without a config file, presence of the key turns the AI route on.
		cfg.AI.Enabled = true
	}

	server := factory(addr, cfg)

	slog.Info("ordergate-gateway listening", "addr", addr, "ai", cfg.AI.Enabled)
	if err := listen(server); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func listenAndServe(server *http.Server) error {
	return server.ListenAndServe()
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
