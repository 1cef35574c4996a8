package payments

import (
	"context"
	"encoding/json"
	"errors"
)

var ErrNotConfigured = errors.New("payment gateway not configured")

// CheckoutSession is the subset of a processor checkout session the
// workflow layer cares about.
type CheckoutSession struct {
	ID              string
	URL             string
	PaymentStatus   string // "paid" | "unpaid" | "no_payment_required"
	AmountTotal     int64  // cents
	PaymentIntentID string
	CustomerEmail   string
	InvoiceID       string // our invoice id, carried in session metadata
}

// WebhookEvent is a signature-verified processor event.
type WebhookEvent struct {
	ID   string
	Type string
	Data json.RawMessage
}

// Gateway wraps the payments processor. Handlers depend on this interface
// so tests can substitute a fake.
type Gateway interface {
	// CreateCheckoutSession opens a hosted payment page for the invoice
	// balance. amount is in cents.
	CreateCheckoutSession(ctx context.Context, amount int64, description, invoiceID, customerEmail string) (*CheckoutSession, error)
	// GetCheckoutSession fetches a session for payment verification.
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
	// VerifyWebhook checks the signature header and parses the event.
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
