package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/invoice"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/payment"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/payments"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/quote"
)

// fakeGateway accepts any signature and hands back the body as the event,
// standing in for the processor SDK.
type fakeGateway struct {
	eventType string
}

func (g *fakeGateway) CreateCheckoutSession(context.Context, int64, string, string, string) (*payments.CheckoutSession, error) {
	return nil, errors.New("not used")
}

func (g *fakeGateway) GetCheckoutSession(context.Context, string) (*payments.CheckoutSession, error) {
	return nil, errors.New("not used")
}

func (g *fakeGateway) VerifyWebhook(payload []byte, signature string) (*payments.WebhookEvent, error) {
	if signature == "" {
		return nil, errors.New("missing signature")
	}
	return &payments.WebhookEvent{ID: "evt_1", Type: g.eventType, Data: payload}, nil
}

func newWebhookTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&invoice.Invoice{}, &payment.Payment{}, &quote.Quote{}))
	return db
}

func seedSentInvoice(t *testing.T, db *gorm.DB, total float64) *invoice.Invoice {
	t.Helper()
	inv := invoice.Invoice{
		InvoiceNumber:     "INV-2026-0001",
		CustomerID:        1,
		Total:             total,
		Status:            invoice.StatusSent,
		CheckoutSessionID: "cs_test_1",
	}
	require.NoError(t, db.Create(&inv).Error)
	return &inv
}

func deliver(t *testing.T, h *Handler, eventType, payload string) *httptest.ResponseRecorder {
	t.Helper()
	h.Gateway = &fakeGateway{eventType: eventType}
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", "sig")
	rec := httptest.NewRecorder()
	h.Stripe(rec, req)
	return rec
}

func TestStripeRejectsBadSignature(t *testing.T) {
	db := newWebhookTestDB(t)
	h := NewHandler(db, &fakeGateway{}, zap.NewNop().Sugar())

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	h.Stripe(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutCompletedRecordsPaymentOnce(t *testing.T) {
	db := newWebhookTestDB(t)
	h := NewHandler(db, nil, zap.NewNop().Sugar())
	inv := seedSentInvoice(t, db, 500)

	payload := `{"id":"cs_test_1","payment_intent":"pi_1","amount_total":50000,"payment_status":"paid"}`
	require.Equal(t, http.StatusOK, deliver(t, h, "checkout.session.completed", payload).Code)

	var got invoice.Invoice
	require.NoError(t, db.First(&got, inv.ID).Error)
	assert.Equal(t, 500.0, got.AmountPaid)
	assert.Equal(t, invoice.StatusPaid, got.Status)

	// Redelivery is acknowledged without applying again.
	require.Equal(t, http.StatusOK, deliver(t, h, "checkout.session.completed", payload).Code)

	require.NoError(t, db.First(&got, inv.ID).Error)
	assert.Equal(t, 500.0, got.AmountPaid)

	var count int64
	require.NoError(t, db.Model(&payment.Payment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCheckoutCompletedIgnoresUnpaidSession(t *testing.T) {
	db := newWebhookTestDB(t)
	h := NewHandler(db, nil, zap.NewNop().Sugar())
	inv := seedSentInvoice(t, db, 500)

	payload := `{"id":"cs_test_1","payment_intent":"pi_1","amount_total":50000,"payment_status":"unpaid"}`
	require.Equal(t, http.StatusOK, deliver(t, h, "checkout.session.completed", payload).Code)

	var got invoice.Invoice
	require.NoError(t, db.First(&got, inv.ID).Error)
	assert.Zero(t, got.AmountPaid)
	assert.Equal(t, invoice.StatusSent, got.Status)
}

func TestPaymentFailedMarksInvoice(t *testing.T) {
	db := newWebhookTestDB(t)
	h := NewHandler(db, nil, zap.NewNop().Sugar())
	inv := seedSentInvoice(t, db, 500)

	payload := fmt.Sprintf(`{"id":"pi_1","metadata":{"invoice_id":"%d"}}`, inv.ID)
	require.Equal(t, http.StatusOK, deliver(t, h, "payment_intent.payment_failed", payload).Code)

	var got invoice.Invoice
	require.NoError(t, db.First(&got, inv.ID).Error)
	assert.Equal(t, invoice.StatusPaymentFailed, got.Status)
}

func TestPaymentFailedLeavesPaidInvoiceAlone(t *testing.T) {
	db := newWebhookTestDB(t)
	h := NewHandler(db, nil, zap.NewNop().Sugar())
	inv := seedSentInvoice(t, db, 500)
	require.NoError(t, db.Model(inv).Updates(map[string]interface{}{
		"status": invoice.StatusPaid, "amount_paid": 500.0,
	}).Error)

	payload := fmt.Sprintf(`{"id":"pi_1","metadata":{"invoice_id":"%d"}}`, inv.ID)
	require.Equal(t, http.StatusOK, deliver(t, h, "payment_intent.payment_failed", payload).Code)

	var got invoice.Invoice
	require.NoError(t, db.First(&got, inv.ID).Error)
	assert.Equal(t, invoice.StatusPaid, got.Status)
}

func TestChargeRefundedRedeliveryAppliesOnce(t *testing.T) {
	db := newWebhookTestDB(t)
	h := NewHandler(db, nil, zap.NewNop().Sugar())
	inv := seedSentInvoice(t, db, 500)

	paid := `{"id":"cs_test_1","payment_intent":"pi_1","amount_total":50000,"payment_status":"paid"}`
	require.Equal(t, http.StatusOK, deliver(t, h, "checkout.session.completed", paid).Code)

	refund := `{"id":"ch_1","payment_intent":"pi_1","amount_refunded":20000,"refunded":false}`
	require.Equal(t, http.StatusOK, deliver(t, h, "charge.refunded", refund).Code)

	var got invoice.Invoice
	require.NoError(t, db.First(&got, inv.ID).Error)
	assert.Equal(t, 300.0, got.AmountPaid)
	assert.Equal(t, invoice.StatusRefunded, got.Status)

	var p payment.Payment
	require.NoError(t, db.Where("processor_txn_id = ?", "pi_1").First(&p).Error)
	assert.Equal(t, 200.0, p.AmountRefunded)
	assert.Equal(t, payment.StatusPartiallyRefunded, p.Status)

	// Same cumulative amount again: the balance must not move twice.
	require.Equal(t, http.StatusOK, deliver(t, h, "charge.refunded", refund).Code)

	require.NoError(t, db.First(&got, inv.ID).Error)
	assert.Equal(t, 300.0, got.AmountPaid)
}

func TestChargeRefundedGrowingCumulativeAmount(t *testing.T) {
	db := newWebhookTestDB(t)
	h := NewHandler(db, nil, zap.NewNop().Sugar())
	inv := seedSentInvoice(t, db, 500)

	paid := `{"id":"cs_test_1","payment_intent":"pi_1","amount_total":50000,"payment_status":"paid"}`
	require.Equal(t, http.StatusOK, deliver(t, h, "checkout.session.completed", paid).Code)

	partial := `{"id":"ch_1","payment_intent":"pi_1","amount_refunded":20000,"refunded":false}`
	require.Equal(t, http.StatusOK, deliver(t, h, "charge.refunded", partial).Code)

	full := `{"id":"ch_1","payment_intent":"pi_1","amount_refunded":50000,"refunded":true}`
	require.Equal(t, http.StatusOK, deliver(t, h, "charge.refunded", full).Code)

	var got invoice.Invoice
	require.NoError(t, db.First(&got, inv.ID).Error)
	assert.Equal(t, 0.0, got.AmountPaid)

	var p payment.Payment
	require.NoError(t, db.Where("processor_txn_id = ?", "pi_1").First(&p).Error)
	assert.Equal(t, 500.0, p.AmountRefunded)
	assert.Equal(t, payment.StatusRefunded, p.Status)
}

func TestChargeRefundedUnknownPaymentIsAcknowledged(t *testing.T) {
	db := newWebhookTestDB(t)
	h := NewHandler(db, nil, zap.NewNop().Sugar())

	refund := `{"id":"ch_1","payment_intent":"pi_missing","amount_refunded":20000,"refunded":true}`
	rec := deliver(t, h, "charge.refunded", refund)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownEventTypeIsIgnored(t *testing.T) {
	db := newWebhookTestDB(t)
	h := NewHandler(db, nil, zap.NewNop().Sugar())

	rec := deliver(t, h, "customer.subscription.created", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body["received"])
}
