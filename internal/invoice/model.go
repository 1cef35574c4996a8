package invoice

import (
	"time"

	"gorm.io/gorm"

	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/utils"
)

// Invoice statuses. Only draft→sent is client-settable; partial, paid and
// refunded are driven by recorded payments and processor webhooks.
const (
	StatusDraft         = "draft"
	StatusSent          = "sent"
	StatusPartial       = "partial"
	StatusPaid          = "paid"
	StatusPaymentFailed = "payment_failed"
	StatusRefunded      = "refunded"
)

// LineItem is one billed line. Total is derived, rounded to cents.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Total       float64 `json:"total"`
}

// Invoice is a billing document for a job or quote.
type Invoice struct {
	gorm.Model
	InvoiceNumber string `json:"invoiceNumber" gorm:"uniqueIndex;size:20"`
	CustomerID    uint   `json:"customerId" gorm:"not null;index"`
	JobID         *uint  `json:"jobId,omitempty" gorm:"index"`
	QuoteID       *uint  `json:"quoteId,omitempty" gorm:"index"`

	Items      []LineItem `json:"items" gorm:"type:jsonb;serializer:json"`
	Subtotal   float64    `json:"subtotal"`
	TaxRate    float64    `json:"taxRate"`
	TaxAmount  float64    `json:"taxAmount"`
	Total      float64    `json:"total"`
	AmountPaid float64    `json:"amountPaid"`

	Status  string     `json:"status" gorm:"size:50;default:draft"`
	DueDate *time.Time `json:"dueDate,omitempty"`
	SentAt  *time.Time `json:"sentAt,omitempty"`
	PaidAt  *time.Time `json:"paidAt,omitempty"`

	// Processor checkout session backing the hosted payment page.
	CheckoutSessionID string `json:"-" gorm:"index"`
	PaymentLinkURL    string `json:"paymentLinkUrl,omitempty"`

	Notes string `json:"notes"`
}

// ComputeTotals derives per-line totals, subtotal, tax and total, rounding
// to cents at every step.
func (inv *Invoice) ComputeTotals() {
	subtotal := 0.0
	for i := range inv.Items {
		inv.Items[i].Total = utils.Round2(inv.Items[i].Quantity * inv.Items[i].UnitPrice)
		subtotal = utils.Round2(subtotal + inv.Items[i].Total)
	}
	inv.Subtotal = subtotal
	inv.TaxAmount = utils.Round2(subtotal * inv.TaxRate)
	inv.Total = utils.Round2(subtotal + inv.TaxAmount)
}

// Balance returns the unpaid remainder.
func (inv *Invoice) Balance() float64 {
	return utils.Round2(inv.Total - inv.AmountPaid)
}
