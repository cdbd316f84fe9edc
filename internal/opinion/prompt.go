package opinion

import (
	"fmt"
	"strings"

	"github.com/delimasa/ordergate/internal/money"
)

// BuildPrompt renders the user prompt for the chat completion. The prompt
// pins the exact JSON shape Parse expects.
func BuildPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("Analyze this commercial order from a strategic perspective:\n\n")

	b.WriteString("ORDER DATA:\n")
	fmt.Fprintf(&b, "- Client: %s (%s)\n", req.Client.Name, req.Client.Category)
	fmt.Fprintf(&b, "- History: %s\n", req.Client.History)
	fmt.Fprintf(&b, "- Credit limit: %s\n", money.Format(req.Client.CreditLimit))
	fmt.Fprintf(&b, "- Order value: %s\n", money.Format(req.Rules.OrderTotal))
	fmt.Fprintf(&b, "- Average margin: %.1f%%\n", req.Rules.AverageMargin)
	fmt.Fprintf(&b, "- Average discount: %.1f%%\n", req.Rules.AverageDiscount)
	fmt.Fprintf(&b, "- Items: %d products\n\n", len(req.Items))

	b.WriteString("ORDER LINES:\n")
	for _, item := range req.Items {
		fmt.Fprintf(&b, "- %s: %d units at %s (discount: %.0f%%)\n",
			item.Product, item.Quantity, money.Format(item.UnitPrice), item.DiscountPct)
	}

	b.WriteString("\nSPECIAL CONDITIONS:\n")
	if req.Conditions != "" {
		b.WriteString(req.Conditions)
	} else {
		b.WriteString("none")
	}

	b.WriteString("\n\nPRIOR AUTOMATED ANALYSIS:\n")
	fmt.Fprintf(&b, "- Rule decision: %s\n", strings.ToUpper(string(req.Rules.Decision)))
	fmt.Fprintf(&b, "- Risks identified: %s\n", strings.Join(req.Rules.Risks, ", "))

	b.WriteString(`
Provide an analysis as JSON with this exact structure:
{
  "contextualInsights": [
    "analysis of the client profile and behavior",
    "evaluation of the order composition",
    "considerations for the Colombian market"
  ],
  "riskAssessment": "commercial risks not caught by the automated checks",
  "negotiationSuggestions": [
    "a strategy specific to this client",
    "product or condition alternatives",
    "upselling opportunities"
  ],
  "finalRecommendation": "strategic recommendation with commercial justification",
  "decision": "approve|adjust|reject",
  "confidence": 85
}`)

	return b.String()
}
