package engine

import (
	"fmt"
	"math"

	"github.com/delimasa/ordergate/internal/catalog"
	"github.com/delimasa/ordergate/internal/money"
)

// Evaluate applies the client policy thresholds to the order metrics and
// produces the preliminary decision. Each check may escalate the running
// decision (approve -> adjust -> reject) but never lowers it.
func Evaluate(client catalog.ClientPolicy, m Metrics) RuleDecision {
	rd := RuleDecision{
		AverageMargin:   m.AverageMargin,
		AverageDiscount: m.AverageDiscount,
		OrderTotal:      m.OrderTotal,
		Risks:           []string{},
		Decision:        DecisionApprove,
		RiskLevel:       RiskLow,
		Items:           m.Items,
	}

	rd.DiscountExcess = math.Max(0, m.AverageDiscount-client.MaxDiscount)
	if rd.DiscountExcess > 5 {
		rd.Risks = append(rd.Risks, "excessive discounts applied")
		rd.Decision = DecisionReject
		rd.PrimaryReason = "the applied discounts significantly exceed the permitted limit"
	} else if rd.DiscountExcess > 0 {
		rd.Risks = append(rd.Risks, "discounts slightly above the permitted limit")
		if rd.Decision == DecisionApprove {
			rd.Decision = DecisionAdjust
		}
	}

	if m.AverageMargin < client.MinMargin-2 {
		rd.Risks = append(rd.Risks, "profit margin too low")
		rd.Decision = DecisionReject
		if rd.PrimaryReason == "" {
			rd.PrimaryReason = "the profit margin is below the acceptable minimum"
		}
	} else if m.AverageMargin < client.MinMargin {
		rd.Risks = append(rd.Risks, "profit margin close to the limit")
		if rd.Decision == DecisionApprove {
			rd.Decision = DecisionAdjust
		}
	}

	creditFactor := m.OrderTotal / client.CreditLimit
	if creditFactor > 1.1 {
		rd.Risks = append(rd.Risks, "order value significantly exceeds the credit limit")
		rd.Decision = DecisionReject
		if rd.PrimaryReason == "" {
			rd.PrimaryReason = "the total value exceeds the available credit limit"
		}
	} else if creditFactor > 1 {
		rd.Risks = append(rd.Risks, "order value close to the credit limit")
		if rd.Decision == DecisionApprove {
			rd.Decision = DecisionAdjust
		}
	}

	switch {
	case len(rd.Risks) >= 3 || rd.Decision == DecisionReject:
		rd.RiskLevel = RiskHigh
	case len(rd.Risks) >= 1 || rd.Decision == DecisionAdjust:
		rd.RiskLevel = RiskMedium
	}

	switch rd.Decision {
	case DecisionApprove:
		rd.PrimaryReason = "the order complies with all established commercial policies"
		rd.Justification = approveJustification(client, rd)
	case DecisionAdjust:
		if rd.PrimaryReason == "" {
			rd.PrimaryReason = "the order needs minor adjustments to comply with policy"
		}
		rd.Justification = adjustJustification(client, rd, creditFactor)
	case DecisionReject:
		rd.Justification = rejectJustification(client, rd, creditFactor)
	}

	return rd
}

func approveJustification(client catalog.ClientPolicy, rd RuleDecision) []string {
	return []string{
		fmt.Sprintf("✓ average discount (%.1f%%) is within the permitted limit (%.0f%%)", rd.AverageDiscount, client.MaxDiscount),
		fmt.Sprintf("✓ average profit margin (%.1f%%) exceeds the required minimum (%.0f%%)", rd.AverageMargin, client.MinMargin),
		fmt.Sprintf("✓ total value (%s) is within the credit limit (%s)", money.Format(rd.OrderTotal), money.Format(client.CreditLimit)),
		fmt.Sprintf("✓ %s client with a good payment history", client.Category),
	}
}

func adjustJustification(client catalog.ClientPolicy, rd RuleDecision, creditFactor float64) []string {
	lines := make([]string, 0, 4)

	if rd.DiscountExcess > 0 {
		lines = append(lines, fmt.Sprintf("⚠ average discount (%.1f%%) exceeds the limit by %.1f%%", rd.AverageDiscount, rd.DiscountExcess))
	} else {
		lines = append(lines, fmt.Sprintf("✓ average discount (%.1f%%) is acceptable", rd.AverageDiscount))
	}

	if rd.AverageMargin < client.MinMargin {
		lines = append(lines, fmt.Sprintf("⚠ profit margin (%.1f%%) is slightly below the minimum (%.0f%%)", rd.AverageMargin, client.MinMargin))
	} else {
		lines = append(lines, fmt.Sprintf("✓ profit margin (%.1f%%) is acceptable", rd.AverageMargin))
	}

	if creditFactor > 1 {
		lines = append(lines, "⚠ order value is close to the credit limit")
	} else {
		lines = append(lines, "✓ order value is within the credit limit")
	}

	return append(lines, "negotiating terms or reducing discounts is recommended")
}

func rejectJustification(client catalog.ClientPolicy, rd RuleDecision, creditFactor float64) []string {
	lines := make([]string, 0, 4)

	if rd.DiscountExcess > 5 {
		lines = append(lines, fmt.Sprintf("✗ average discount (%.1f%%) exceeds the limit by %.1f%%", rd.AverageDiscount, rd.DiscountExcess))
	} else {
		lines = append(lines, "✓ discounts are within range")
	}

	switch {
	case rd.AverageMargin < client.MinMargin-2:
		lines = append(lines, fmt.Sprintf("✗ profit margin (%.1f%%) is significantly below the minimum (%.0f%%)", rd.AverageMargin, client.MinMargin))
	case rd.AverageMargin < client.MinMargin:
		lines = append(lines, "⚠ profit margin is low")
	default:
		lines = append(lines, "✓ margin is acceptable")
	}

	if creditFactor > 1.1 {
		lines = append(lines, fmt.Sprintf("✗ order value (%s) exceeds the credit limit by %.0f%%", money.Format(rd.OrderTotal), (creditFactor-1)*100))
	} else {
		lines = append(lines, "✓ order value is within the credit limit")
	}

	return append(lines, "processing this order without substantial changes is not recommended")
}
