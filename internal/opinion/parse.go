package opinion

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/delimasa/ordergate/internal/engine"
)

// Parse validates an upstream completion against the opinion contract:
// all required fields present, the decision within the closed enum and the
// confidence inside [0,100]. The payload is untrusted input; anything off
// contract is an error, never a partial Opinion.
func Parse(raw []byte) (engine.Opinion, error) {
	var payload struct {
		ContextualInsights     []string `json:"contextualInsights"`
		RiskAssessment         *string  `json:"riskAssessment"`
		NegotiationSuggestions []string `json:"negotiationSuggestions"`
		FinalRecommendation    *string  `json:"finalRecommendation"`
		Decision               *string  `json:"decision"`
		Confidence             *float64 `json:"confidence"`
	}

	if err := json.Unmarshal(raw, &payload); err != nil {
		return engine.Opinion{}, fmt.Errorf("parse opinion: %w", err)
	}

	switch {
	case payload.ContextualInsights == nil:
		return engine.Opinion{}, missingField("contextualInsights")
	case payload.RiskAssessment == nil:
		return engine.Opinion{}, missingField("riskAssessment")
	case payload.NegotiationSuggestions == nil:
		return engine.Opinion{}, missingField("negotiationSuggestions")
	case payload.FinalRecommendation == nil:
		return engine.Opinion{}, missingField("finalRecommendation")
	case payload.Decision == nil:
		return engine.Opinion{}, missingField("decision")
	case payload.Confidence == nil:
		return engine.Opinion{}, missingField("confidence")
	}

	decision := engine.Decision(strings.ToLower(*payload.Decision))
	if !decision.Valid() {
		return engine.Opinion{}, fmt.Errorf("invalid opinion decision %q", *payload.Decision)
	}

	confidence := *payload.Confidence
	if confidence < 0 || confidence > 100 {
		return engine.Opinion{}, fmt.Errorf("opinion confidence %v out of range", confidence)
	}

	return engine.Opinion{
		ContextualInsights:     payload.ContextualInsights,
		RiskAssessment:         *payload.RiskAssessment,
		NegotiationSuggestions: payload.NegotiationSuggestions,
		FinalRecommendation:    *payload.FinalRecommendation,
		Decision:               decision,
		Confidence:             int(confidence),
	}, nil
}

func missingField(name string) error {
	return fmt.Errorf("opinion response missing required field %q", name)
}
