package opinion

import "github.com/delimasa/ordergate/internal/engine"

// Fallback substitutes a deterministic low-confidence opinion when the
// upstream assessment is unavailable or malformed. The decision mirrors the
// rule decision so the combiner still receives a well-formed input.
func Fallback(rules engine.RuleDecision) engine.Opinion {
	return engine.Opinion{
		ContextualInsights: []string{
			"automated contextual analysis is temporarily unavailable",
			"a manual review of the order is recommended",
			"the client account requires individual attention",
		},
		RiskAssessment: "The AI risk assessment could not be completed. Evaluate the order manually, considering the client's payment history and current market conditions.",
		NegotiationSuggestions: []string{
			"review the terms manually with the commercial team",
			"take the client's payment history into account",
			"evaluate complementary product opportunities",
		},
		FinalRecommendation: "With the AI assessment temporarily unavailable, proceed on the business-rule decision together with a manual review by the commercial team.",
		Decision:            rules.Decision,
		Confidence:          50,
	}
}
