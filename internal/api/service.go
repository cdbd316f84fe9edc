package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/delimasa/ordergate/internal/catalog"
	"github.com/delimasa/ordergate/internal/engine"
	"github.com/delimasa/ordergate/internal/opinion"
)

// ErrClientNotFound maps to 404 at the boundary; every other service error
// is a validation failure and maps to 400.
var ErrClientNotFound = errors.New("client not found")

type AnalyzeOrderRequest struct {
	ClientID   string             `json:"clientId"`
	Items      []engine.OrderItem `json:"items"`
	Conditions string             `json:"conditions,omitempty"`
}

// AnalysisRecord is the stored and returned result of an order analysis.
// Opinion and FinalDecision are only present for AI-assisted analyses.
type AnalysisRecord struct {
	AnalysisID    string                `json:"analysisId"`
	ClientPolicy  catalog.ClientPolicy  `json:"clientPolicy"`
	RuleDecision  engine.RuleDecision   `json:"ruleDecision"`
	Opinion       *engine.Opinion       `json:"opinion,omitempty"`
	FinalDecision *engine.FinalDecision `json:"finalDecision,omitempty"`
	Timestamp     string                `json:"timestamp"`
}

type AnalyzeService struct {
	Catalog *catalog.Catalog
	Opinion opinion.Source
	Store   *AnalysisStore
	Logger  *slog.Logger
}

func NewAnalyzeService(cat *catalog.Catalog, source opinion.Source, logger *slog.Logger) *AnalyzeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeService{
		Catalog: cat,
		Opinion: source,
		Store:   NewAnalysisStore(),
		Logger:  logger,
	}
}

// ValidateRequest enforces the boundary preconditions the engine relies on.
func ValidateRequest(req AnalyzeOrderRequest) error {
	if req.ClientID == "" {
		return errors.New("clientId is required")
	}
	if len(req.Items) == 0 {
		return errors.New("at least one order item is required")
	}
	for i, item := range req.Items {
		if item.Product == "" {
			return fmt.Errorf("item %d: product is required", i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("item %d: quantity must be positive", i)
		}
		if item.UnitPrice <= 0 {
			return fmt.Errorf("item %d: unitPrice must be positive", i)
		}
		if item.DiscountPct < 0 || item.DiscountPct > 100 {
			return fmt.Errorf("item %d: discount must be between 0 and 100", i)
		}
		// A 100% discount leaves a zero net price and an undefined margin.
		if item.DiscountPct == 100 {
			return fmt.Errorf("item %d: discount must leave a positive net price", i)
		}
	}
	return nil
}

// AnalyzeRules runs the deterministic rule pipeline only.
func (s *AnalyzeService) AnalyzeRules(req AnalyzeOrderRequest, createdAt string) (AnalysisRecord, error) {
	if err := ValidateRequest(req); err != nil {
		return AnalysisRecord{}, err
	}

	client, ok := s.Catalog.LookupClient(req.ClientID)
	if !ok {
		return AnalysisRecord{}, ErrClientNotFound
	}

	metrics := engine.ComputeMetrics(req.Items)
	rules := engine.Evaluate(client, metrics)

	record := AnalysisRecord{
		AnalysisID:   uuid.NewString(),
		ClientPolicy: client,
		RuleDecision: rules,
		Timestamp:    createdAt,
	}
	s.Store.Put(record)
	return record, nil
}

// AnalyzeWithOpinion runs the full pipeline: rules, opinion source and
// combiner. Opinion source failures degrade to the deterministic fallback
// and never surface to the caller.
func (s *AnalyzeService) AnalyzeWithOpinion(ctx context.Context, req AnalyzeOrderRequest, createdAt string) (AnalysisRecord, error) {
	if err := ValidateRequest(req); err != nil {
		return AnalysisRecord{}, err
	}

	client, ok := s.Catalog.LookupClient(req.ClientID)
	if !ok {
		return AnalysisRecord{}, ErrClientNotFound
	}

	metrics := engine.ComputeMetrics(req.Items)
	rules := engine.Evaluate(client, metrics)

	op, err := s.evaluateOpinion(ctx, opinion.Request{
		Client:     client,
		Items:      req.Items,
		Conditions: req.Conditions,
		Rules:      rules,
	})
	if err != nil {
		s.Logger.Warn("opinion source unavailable, using fallback", "client", client.ID, "error", err)
		op = opinion.Fallback(rules)
	}

	final := engine.Combine(rules, op)

	record := AnalysisRecord{
		AnalysisID:    uuid.NewString(),
		ClientPolicy:  client,
		RuleDecision:  rules,
		Opinion:       &op,
		FinalDecision: &final,
		Timestamp:     createdAt,
	}
	s.Store.Put(record)
	return record, nil
}

func (s *AnalyzeService) evaluateOpinion(ctx context.Context, req opinion.Request) (engine.Opinion, error) {
	if s.Opinion == nil {
		return engine.Opinion{}, errors.New("opinion source not configured")
	}
	return s.Opinion.Evaluate(ctx, req)
}
