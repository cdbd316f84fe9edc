package engine

import (
	"fmt"
	"strings"
)

type matrixEntry struct {
	decision   Decision
	confidence int
}

// decisionMatrix maps (rule decision, opinion decision) to the combined
// decision and its base confidence.
var decisionMatrix = map[[2]Decision]matrixEntry{
	{DecisionApprove, DecisionApprove}: {DecisionApprove, 95},
	{DecisionApprove, DecisionAdjust}:  {DecisionAdjust, 80},
	{DecisionApprove, DecisionReject}:  {DecisionAdjust, 70},
	{DecisionAdjust, DecisionApprove}:  {DecisionAdjust, 85},
	{DecisionAdjust, DecisionAdjust}:   {DecisionAdjust, 90},
	{DecisionAdjust, DecisionReject}:   {DecisionReject, 85},
	{DecisionReject, DecisionApprove}:  {DecisionAdjust, 60},
	{DecisionReject, DecisionAdjust}:   {DecisionReject, 80},
	{DecisionReject, DecisionReject}:   {DecisionReject, 95},
}

// Combine merges the rule decision with the opinion through the fixed
// decision matrix. The reported confidence never exceeds the weaker of the
// matrix base confidence and the opinion's own confidence.
func Combine(rule RuleDecision, op Opinion) FinalDecision {
	entry, ok := decisionMatrix[[2]Decision{rule.Decision, op.Decision}]
	if !ok {
		// Guarded default for keys outside the closed enum space.
		entry = matrixEntry{DecisionAdjust, 50}
	}

	confidence := entry.confidence
	if op.Confidence < confidence {
		confidence = op.Confidence
	}

	return FinalDecision{
		Decision:    entry.decision,
		Confidence:  confidence,
		Reasoning:   buildReasoning(rule, op, entry.decision),
		ActionItems: buildActionItems(rule, op, entry.decision),
	}
}

func buildReasoning(rule RuleDecision, op Opinion, final Decision) string {
	return fmt.Sprintf(`COMBINED BUSINESS-RULE AND AI ASSESSMENT

BUSINESS RULES: %s
- average margin: %.1f%%
- average discount: %.1f%%
- risks detected: %d
- reason: %s

AI ASSESSMENT: %s (confidence: %d%%)
- %s

FINAL DECISION: %s
%s

The recommendation merges the quantitative rule analysis with the contextual AI assessment to produce a more robust, better founded decision.`,
		strings.ToUpper(string(rule.Decision)),
		rule.AverageMargin,
		rule.AverageDiscount,
		len(rule.Risks),
		rule.PrimaryReason,
		strings.ToUpper(string(op.Decision)),
		op.Confidence,
		op.FinalRecommendation,
		strings.ToUpper(string(final)),
		decisionExplanation(rule.Decision, op.Decision, final),
	)
}

func decisionExplanation(ruleDecision, opinionDecision, final Decision) string {
	if ruleDecision == opinionDecision && ruleDecision == final {
		return "Both analyses agree, giving high confidence in the decision."
	}

	switch final {
	case DecisionAdjust:
		return "Adjusting the order is recommended to balance the risks flagged by the business rules against the commercial opportunities identified by the AI assessment."
	case DecisionApprove:
		return "Despite some divergence between the analyses, the commercial context and the quantitative indicators permit approval."
	default:
		return "The risks identified by both the business rules and the contextual analysis justify rejecting or substantially modifying the order."
	}
}

func buildActionItems(rule RuleDecision, op Opinion, final Decision) []string {
	var items []string

	switch final {
	case DecisionApprove:
		items = append(items,
			"proceed with the order approval",
			"document the decision in the system",
			"notify the client of the approval",
		)
		if len(rule.Risks) > 0 {
			items = append(items, "monitor this order closely due to the minor risks identified")
		}
	case DecisionAdjust:
		items = append(items, "negotiate adjustments with the client")
		if rule.DiscountExcess > 0 {
			items = append(items, fmt.Sprintf("reduce discounts by %.1f%%", rule.DiscountExcess))
		}
		// The margin review keys off the first analysed line item.
		// TODO: confirm whether this should compare against the policy minimum instead.
		if len(rule.Items) > 0 && rule.AverageMargin < rule.Items[0].MarginPct {
			items = append(items, "review prices to improve margins")
		}
		items = append(items, "apply the AI negotiation suggestions")
	case DecisionReject:
		items = append(items,
			"reject the order in its current form",
			"communicate the rejection reasons to the client",
			"propose alternatives based on the AI suggestions",
			"invite the client to resubmit with changes",
		)
	}

	if len(op.NegotiationSuggestions) > 0 {
		items = append(items, "implement the negotiation strategies suggested by the AI")
	}

	return items
}
