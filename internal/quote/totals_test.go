package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotalsFixedItems(t *testing.T) {
	q := Quote{
		TaxRate: 0.0825,
		Items: []LineItem{
			{Description: "Smoke Detector", Quantity: 2, UnitPrice: 125.50},
			{Description: "Annual Inspection", Quantity: 1, UnitPrice: 99.99},
		},
	}
	q.ComputeTotals()

	assert.Equal(t, 350.99, q.Subtotal)
	assert.Equal(t, 28.96, q.Tax)
	assert.Equal(t, 379.95, q.Total)

	// No allowances, so the range collapses onto the point totals.
	assert.Equal(t, q.Subtotal, q.SubtotalLow)
	assert.Equal(t, q.Subtotal, q.SubtotalHigh)
	assert.Equal(t, q.Total, q.TotalLow)
	assert.Equal(t, q.Total, q.TotalHigh)
}

func TestComputeTotalsAllowanceUsesHighBound(t *testing.T) {
	q := Quote{
		TaxRate: 0.0825,
		Items: []LineItem{
			{Description: "Control Panel", Quantity: 2, UnitPrice: 100},
			{Description: "Wiring repair allowance", Quantity: 1, IsAllowance: true, CostLow: 500, CostHigh: 1500},
		},
	}
	q.ComputeTotals()

	// The point subtotal prices the allowance at its high bound.
	assert.Equal(t, 1700.00, q.Subtotal)
	assert.Equal(t, 700.00, q.SubtotalLow)
	assert.Equal(t, 1700.00, q.SubtotalHigh)

	assert.Equal(t, 140.25, q.Tax)
	assert.Equal(t, 1840.25, q.Total)
	assert.Equal(t, 757.75, q.TotalLow)
	assert.Equal(t, 1840.25, q.TotalHigh)
}

func TestComputeTotalsTaxRoundsToCents(t *testing.T) {
	q := Quote{
		TaxRate: 0.0825,
		Items: []LineItem{
			{Description: "Device", Quantity: 1, UnitPrice: 123.45},
		},
	}
	q.ComputeTotals()

	// 123.45 * 0.0825 = 10.184625 rounds to 10.18 before the total is summed.
	assert.Equal(t, 123.45, q.Subtotal)
	assert.Equal(t, 10.18, q.Tax)
	assert.Equal(t, 133.63, q.Total)
}

func TestComputeTotalsEmptyItems(t *testing.T) {
	q := Quote{TaxRate: 0.0825}
	q.ComputeTotals()

	assert.Zero(t, q.Subtotal)
	assert.Zero(t, q.Tax)
	assert.Zero(t, q.Total)
}

func TestScopeSummaryLines(t *testing.T) {
	items := []LineItem{
		{Description: "Smoke Detector", Quantity: 2, UnitPrice: 100},
		{Description: "Pull Station", Quantity: 1, UnitPrice: 100},
		{Description: "Horn Strobe", Quantity: 0.5, UnitPrice: 40},
	}
	// Fractional quantities floor to at least 1 in the scope text.
	assert.Equal(t, "2x Smoke Detector\n1x Pull Station\n1x Horn Strobe", ScopeSummary(items))
}
