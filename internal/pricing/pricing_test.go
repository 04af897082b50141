package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCompute_FreeShippingAboveThreshold(t *testing.T) {
	// 2 x 300.00 = 600.00, free shipping, 5% tax
	items := []LineItem{
		{UnitPrice: dec("300.00"), Quantity: 2},
	}

	b := Compute(items, decimal.Zero)

	assert.True(t, b.Subtotal.Equal(dec("600.00")), "subtotal %s", b.Subtotal)
	assert.True(t, b.Shipping.IsZero(), "shipping %s", b.Shipping)
	assert.True(t, b.Tax.Equal(dec("30.00")), "tax %s", b.Tax)
	assert.True(t, b.Total.Equal(dec("630.00")), "total %s", b.Total)
}

func TestCompute_FlatShippingBelowThreshold(t *testing.T) {
	items := []LineItem{
		{UnitPrice: dec("100.00"), Quantity: 1},
	}

	b := Compute(items, decimal.Zero)

	assert.True(t, b.Subtotal.Equal(dec("100.00")))
	assert.True(t, b.Shipping.Equal(dec("50.00")))
	assert.True(t, b.Tax.Equal(dec("5.00")))
	assert.True(t, b.Total.Equal(dec("155.00")))
}

func TestCompute_ExactThresholdShipsFree(t *testing.T) {
	items := []LineItem{
		{UnitPrice: dec("500.00"), Quantity: 1},
	}

	b := Compute(items, decimal.Zero)

	assert.True(t, b.Shipping.IsZero())
	assert.True(t, b.Total.Equal(dec("525.00")))
}

func TestCompute_DiscountApplied(t *testing.T) {
	// 100.00 subtotal, 15.00 discount: 100 + 50 + 5 - 15 = 140.00
	items := []LineItem{
		{UnitPrice: dec("100.00"), Quantity: 1},
	}

	b := Compute(items, dec("15.00"))

	assert.True(t, b.Discount.Equal(dec("15.00")))
	assert.True(t, b.Total.Equal(dec("140.00")), "total %s", b.Total)
}

func TestCompute_TotalNeverNegative(t *testing.T) {
	items := []LineItem{
		{UnitPrice: dec("10.00"), Quantity: 1},
	}

	b := Compute(items, dec("1000.00"))

	assert.True(t, b.Total.IsZero(), "total %s", b.Total)
}

func TestCompute_EmptyItems(t *testing.T) {
	b := Compute(nil, decimal.Zero)

	assert.True(t, b.Subtotal.IsZero())
	assert.True(t, b.Shipping.Equal(dec("50.00")))
	assert.True(t, b.Total.Equal(dec("50.00")))
}

func TestCompute_RoundsOnce(t *testing.T) {
	// 3 x 33.333 = 99.999 rounds to 100.00, not 3 x 33.33
	items := []LineItem{
		{UnitPrice: dec("33.333"), Quantity: 3},
	}

	b := Compute(items, decimal.Zero)

	assert.True(t, b.Subtotal.Equal(dec("100.00")), "subtotal %s", b.Subtotal)
}

func TestCompute_Deterministic(t *testing.T) {
	items := []LineItem{
		{UnitPrice: dec("199.99"), Quantity: 3},
		{UnitPrice: dec("49.50"), Quantity: 2},
	}

	first := Compute(items, dec("25.00"))
	for i := 0; i < 100; i++ {
		again := Compute(items, dec("25.00"))
		require.True(t, first.Total.Equal(again.Total))
		require.True(t, first.Tax.Equal(again.Tax))
	}
}

func TestAllocate_SharesSumToTotal(t *testing.T) {
	total := dec("100.00")
	weights := []decimal.Decimal{dec("1"), dec("1"), dec("1")}

	shares := Allocate(total, weights)

	require.Len(t, shares, 3)
	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s)
	}
	assert.True(t, sum.Equal(total), "sum %s", sum)
	// last share absorbs the remainder: 33.33 + 33.33 + 33.34
	assert.True(t, shares[2].Equal(dec("33.34")), "last share %s", shares[2])
}

func TestAllocate_ProRata(t *testing.T) {
	total := dec("630.00")
	weights := []decimal.Decimal{dec("400.00"), dec("200.00")}

	shares := Allocate(total, weights)

	assert.True(t, shares[0].Equal(dec("420.00")), "first share %s", shares[0])
	assert.True(t, shares[1].Equal(dec("210.00")), "second share %s", shares[1])
}

func TestAllocate_ZeroWeights(t *testing.T) {
	shares := Allocate(dec("30.00"), []decimal.Decimal{decimal.Zero, decimal.Zero, decimal.Zero})

	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s)
	}
	assert.True(t, sum.Equal(dec("30.00")))
}

func TestAllocate_Empty(t *testing.T) {
	assert.Empty(t, Allocate(dec("10.00"), nil))
}

func TestEstimateDelivery_SkipsWeekends(t *testing.T) {
	// Monday 2025-06-02 + 5 business days = Monday 2025-06-09
	monday := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	eta := EstimateDelivery(monday)

	assert.Equal(t, time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC), eta)
}

func TestEstimateDelivery_FromFriday(t *testing.T) {
	// Friday 2025-06-06 + 5 business days = Friday 2025-06-13
	friday := time.Date(2025, 6, 6, 10, 0, 0, 0, time.UTC)

	eta := EstimateDelivery(friday)

	assert.Equal(t, time.Friday, eta.Weekday())
	assert.Equal(t, 13, eta.Day())
}
