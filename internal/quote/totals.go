package quote

import "github.com/howardchatman/chatmansecurityandfire-sub002/internal/utils"

// ComputeTotals derives subtotal, tax and total from the line items,
// rounding to cents after every multiplication and summation. Fixed items
// contribute quantity * unit price to all three subtotals; allowance items
// contribute their high bound to the point subtotal and their respective
// bound to the low/high subtotals.
func (q *Quote) ComputeTotals() {
	subtotal, low, high := 0.0, 0.0, 0.0
	for _, item := range q.Items {
		if item.IsAllowance {
			itemLow := utils.Round2(item.Quantity * item.CostLow)
			itemHigh := utils.Round2(item.Quantity * item.CostHigh)
			subtotal = utils.Round2(subtotal + itemHigh)
			low = utils.Round2(low + itemLow)
			high = utils.Round2(high + itemHigh)
			continue
		}
		line := utils.Round2(item.Quantity * item.UnitPrice)
		subtotal = utils.Round2(subtotal + line)
		low = utils.Round2(low + line)
		high = utils.Round2(high + line)
	}

	q.Subtotal = subtotal
	q.SubtotalLow = low
	q.SubtotalHigh = high
	q.Tax = utils.Round2(subtotal * q.TaxRate)
	q.Total = utils.Round2(subtotal + q.Tax)
	q.TotalLow = utils.Round2(low + utils.Round2(low*q.TaxRate))
	q.TotalHigh = utils.Round2(high + utils.Round2(high*q.TaxRate))
}
