package payment

import (
	"time"

	"gorm.io/gorm"
)

// Payment statuses.
const (
	StatusCompleted         = "completed"
	StatusSucceeded         = "succeeded"
	StatusFailed            = "failed"
	StatusRefunded          = "refunded"
	StatusPartiallyRefunded = "partially_refunded"
)

// Payment is one recorded payment against an invoice. Payments are the only
// writer of Invoice.AmountPaid. ProcessorTxnID carries the payment
// processor's identifier when the payment came through checkout or a
// webhook; it is the idempotency key that keeps a redelivered webhook from
// double-applying.
type Payment struct {
	gorm.Model
	InvoiceID  uint    `json:"invoiceId" gorm:"not null;index"`
	CustomerID uint    `json:"customerId" gorm:"not null;index"`
	Amount     float64 `json:"amount" gorm:"not null"`
	Method     string  `json:"method" gorm:"size:50"` // card | check | cash | ach
	Status     string  `json:"status" gorm:"size:50;default:completed"`

	ProcessorTxnID    string `json:"processorTxnId,omitempty" gorm:"index"`
	CheckoutSessionID string `json:"checkoutSessionId,omitempty" gorm:"index"`

	Notes       string     `json:"notes"`
	PaymentDate *time.Time `json:"paymentDate,omitempty"`

	AmountRefunded float64 `json:"amountRefunded"`
}
