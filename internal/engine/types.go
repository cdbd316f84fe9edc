package engine

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionAdjust  Decision = "adjust"
	DecisionReject  Decision = "reject"
)

func (d Decision) Valid() bool {
	switch d {
	case DecisionApprove, DecisionAdjust, DecisionReject:
		return true
	default:
		return false
	}
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// OrderItem is one line of a purchase order. Subtotal is always recomputed
// from quantity, unit price and discount; incoming values are ignored.
type OrderItem struct {
	ID          string  `json:"id"`
	Product     string  `json:"product"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	DiscountPct float64 `json:"discount"`
	Subtotal    float64 `json:"subtotal"`
}

// ItemMetric is an order item with its assumed cost and computed margin.
type ItemMetric struct {
	OrderItem
	Cost      float64 `json:"cost"`
	MarginPct float64 `json:"margin"`
}

// Metrics aggregates the per-item financials of an order.
type Metrics struct {
	Items           []ItemMetric
	AverageMargin   float64
	AverageDiscount float64
	OrderTotal      float64
}

// RuleDecision is the preliminary decision produced by the policy evaluator.
type RuleDecision struct {
	AverageMargin   float64      `json:"averageMargin"`
	AverageDiscount float64      `json:"averageDiscount"`
	DiscountExcess  float64      `json:"discountExcess"`
	OrderTotal      float64      `json:"orderTotal"`
	Risks           []string     `json:"risks"`
	Decision        Decision     `json:"decision"`
	RiskLevel       RiskLevel    `json:"riskLevel"`
	PrimaryReason   string       `json:"primaryReason"`
	Justification   []string     `json:"justification"`
	Items           []ItemMetric `json:"itemsAnalysis"`
}

// Opinion is an independently produced assessment of the same order,
// typically from a generative model. It is untrusted input and must be
// validated before it reaches the combiner.
type Opinion struct {
	ContextualInsights     []string `json:"contextualInsights"`
	RiskAssessment         string   `json:"riskAssessment"`
	NegotiationSuggestions []string `json:"negotiationSuggestions"`
	FinalRecommendation    string   `json:"finalRecommendation"`
	Decision               Decision `json:"decision"`
	Confidence             int      `json:"confidence"`
}

// FinalDecision is the combined outcome of the rule evaluation and the opinion.
type FinalDecision struct {
	Decision    Decision `json:"decision"`
	Confidence  int      `json:"confidence"`
	Reasoning   string   `json:"reasoning"`
	ActionItems []string `json:"actionItems"`
}
