package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	freeShippingThreshold = decimal.NewFromInt(500)
	flatShipping          = decimal.NewFromInt(50)
	taxRate               = decimal.NewFromFloat(0.05)
)

type LineItem struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Breakdown is the price computation for one checkout. It is a value object:
// computed fresh at checkout, recomputed at verification, never taken from a
// client.
type Breakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Compute calculates subtotal, shipping, tax and total for a set of line
// items. Pure and deterministic: the same inputs always produce the same
// breakdown, which payment verification relies on to detect tampering.
//
// Amounts accumulate exactly in fixed-point and are rounded once to two
// decimal places (round-half-up). Shipping is free from 500 upward, otherwise
// a flat 50. Tax is 5% of the subtotal. The total never goes below zero.
func Compute(items []LineItem, discount decimal.Decimal) Breakdown {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	subtotal = subtotal.Round(2)

	shipping := flatShipping
	if subtotal.GreaterThanOrEqual(freeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(taxRate).Round(2)
	discount = discount.Round(2)

	total := subtotal.Add(shipping).Add(tax).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Breakdown{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Discount: discount,
		Total:    total.Round(2),
	}
}

// EstimateDelivery returns the date five business days after from, skipping
// weekends.
func EstimateDelivery(from time.Time) time.Time {
	date := from
	added := 0
	for added < 5 {
		date = date.AddDate(0, 0, 1)
		if wd := date.Weekday(); wd != time.Saturday && wd != time.Sunday {
			added++
		}
	}
	return date
}
