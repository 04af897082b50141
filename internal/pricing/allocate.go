package pricing

import "github.com/shopspring/decimal"

// Allocate splits total across weights pro-rata. Each share is rounded to two
// decimal places; the last share absorbs the rounding remainder so the shares
// always sum to total exactly.
func Allocate(total decimal.Decimal, weights []decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(weights))
	if len(weights) == 0 {
		return shares
	}

	weightSum := decimal.Zero
	for _, w := range weights {
		weightSum = weightSum.Add(w)
	}

	allocated := decimal.Zero
	for i, w := range weights {
		if i == len(weights)-1 {
			shares[i] = total.Sub(allocated)
			break
		}
		var share decimal.Decimal
		if weightSum.IsPositive() {
			share = total.Mul(w).Div(weightSum).Round(2)
		} else {
			share = total.Div(decimal.NewFromInt(int64(len(weights)))).Round(2)
		}
		shares[i] = share
		allocated = allocated.Add(share)
	}
	return shares
}
