package engine

import "github.com/shopspring/decimal"

// Assumed cost share of the unit price. A commercial constant, not derived
// from real cost data.
const costRatio = 0.6

var hundred = decimal.NewFromInt(100)

// Subtotal computes quantity x unitPrice x (1 - discount/100) using exact
// decimal arithmetic for the monetary part.
func Subtotal(item OrderItem) float64 {
	qty := decimal.NewFromInt(int64(item.Quantity))
	price := decimal.NewFromFloat(item.UnitPrice)
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(item.DiscountPct).Div(hundred))
	return qty.Mul(price).Mul(factor).InexactFloat64()
}

// ComputeMetrics derives per-item and aggregate financial metrics from raw
// order items. Callers must pass a non-empty slice of items with positive
// unit prices and discounts below 100%; boundary validation owns those
// checks. Averages weigh every line equally regardless of value.
func ComputeMetrics(items []OrderItem) Metrics {
	metrics := Metrics{Items: make([]ItemMetric, 0, len(items))}

	total := decimal.Zero
	var marginSum, discountSum float64

	for _, item := range items {
		item.Subtotal = Subtotal(item)
		total = total.Add(decimal.NewFromFloat(item.Subtotal))

		cost := item.UnitPrice * costRatio
		net := item.UnitPrice * (1 - item.DiscountPct/100)
		margin := (net - cost) / net * 100

		metrics.Items = append(metrics.Items, ItemMetric{OrderItem: item, Cost: cost, MarginPct: margin})
		marginSum += margin
		discountSum += item.DiscountPct
	}

	n := float64(len(items))
	metrics.AverageMargin = marginSum / n
	metrics.AverageDiscount = discountSum / n
	metrics.OrderTotal = total.InexactFloat64()
	return metrics
}
