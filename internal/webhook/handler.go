package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/invoice"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/payment"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/payments"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/utils"
)

const maxBodyBytes = 65536

type Handler struct {
	DB       *gorm.DB
	Gateway  payments.Gateway
	Payments payment.Repository
	Invoices invoice.Repository
	Log      *zap.SugaredLogger
}

func NewHandler(db *gorm.DB, gw payments.Gateway, log *zap.SugaredLogger) *Handler {
	return &Handler{
		DB:       db,
		Gateway:  gw,
		Payments: payment.NewRepository(),
		Invoices: invoice.NewRepository(),
		Log:      log,
	}
}

// Stripe handles POST /api/webhooks/stripe. Signature-verified; duplicate
// deliveries are absorbed by the payment idempotency key.
func (h *Handler) Stripe(w http.ResponseWriter, r *http.Request) {
	if h.Gateway == nil {
		utils.RespondError(w, http.StatusInternalServerError, "payments are not configured")
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "could not read body")
		return
	}
	event, err := h.Gateway.VerifyWebhook(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.Log.Warnw("webhook signature rejected", "err", err)
		utils.RespondError(w, http.StatusBadRequest, "invalid signature")
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		err = h.onCheckoutCompleted(event.Data)
	case "payment_intent.succeeded":
		err = h.onPaymentSucceeded(event.Data)
	case "payment_intent.payment_failed":
		err = h.onPaymentFailed(event.Data)
	case "charge.refunded":
		err = h.onChargeRefunded(event.Data)
	default:
		h.Log.Debugw("webhook event ignored", "type", event.Type)
	}
	if err != nil {
		h.Log.Errorw("webhook processing failed", "type", event.Type, "err", err)
		utils.RespondError(w, http.StatusInternalServerError, "webhook processing failed")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"received": true})
}

type checkoutSessionPayload struct {
	ID            string            `json:"id"`
	PaymentIntent string            `json:"payment_intent"`
	AmountTotal   int64             `json:"amount_total"`
	PaymentStatus string            `json:"payment_status"`
	Metadata      map[string]string `json:"metadata"`
}

func (h *Handler) onCheckoutCompleted(data json.RawMessage) error {
	var sess checkoutSessionPayload
	if err := json.Unmarshal(data, &sess); err != nil {
		return err
	}
	if sess.PaymentStatus != "paid" {
		return nil
	}

	inv, err := h.findInvoice(sess.ID, sess.Metadata["invoice_id"])
	if err != nil {
		return err
	}

	p := payment.Payment{
		InvoiceID:         inv.ID,
		CustomerID:        inv.CustomerID,
		Amount:            float64(sess.AmountTotal) / 100,
		Method:            "card",
		Status:            payment.StatusSucceeded,
		ProcessorTxnID:    sess.PaymentIntent,
		CheckoutSessionID: sess.ID,
	}
	if err := h.Payments.Record(h.DB, &p); err != nil {
		if errors.Is(err, payment.ErrDuplicate) {
			return nil
		}
		return err
	}
	h.Log.Infow("checkout payment recorded", "invoice", inv.InvoiceNumber, "amount", p.Amount)
	return nil
}

type paymentIntentPayload struct {
	ID             string            `json:"id"`
	AmountReceived int64             `json:"amount_received"`
	Metadata       map[string]string `json:"metadata"`
}

func (h *Handler) onPaymentSucceeded(data json.RawMessage) error {
	var pi paymentIntentPayload
	if err := json.Unmarshal(data, &pi); err != nil {
		return err
	}
	// Normally the checkout.session.completed delivery records the payment;
	// this only fills in when an intent carries our invoice metadata and no
	// payment exists yet.
	if _, err := h.Payments.FindByProcessorTxn(h.DB, pi.ID); err == nil {
		return nil
	}
	if pi.Metadata["invoice_id"] == "" {
		return nil
	}
	inv, err := h.findInvoice("", pi.Metadata["invoice_id"])
	if err != nil {
		return err
	}
	p := payment.Payment{
		InvoiceID:      inv.ID,
		CustomerID:     inv.CustomerID,
		Amount:         float64(pi.AmountReceived) / 100,
		Method:         "card",
		Status:         payment.StatusSucceeded,
		ProcessorTxnID: pi.ID,
	}
	err = h.Payments.Record(h.DB, &p)
	if errors.Is(err, payment.ErrDuplicate) {
		return nil
	}
	return err
}

func (h *Handler) onPaymentFailed(data json.RawMessage) error {
	var pi paymentIntentPayload
	if err := json.Unmarshal(data, &pi); err != nil {
		return err
	}
	if pi.Metadata["invoice_id"] == "" {
		return nil
	}
	inv, err := h.findInvoice("", pi.Metadata["invoice_id"])
	if err != nil {
		return err
	}
	// A failed attempt on an already-paid invoice changes nothing.
	if inv.Status == invoice.StatusPaid {
		return nil
	}
	inv.Status = invoice.StatusPaymentFailed
	return h.Invoices.Save(h.DB, inv)
}

type chargePayload struct {
	ID             string `json:"id"`
	PaymentIntent  string `json:"payment_intent"`
	AmountRefunded int64  `json:"amount_refunded"`
	Refunded       bool   `json:"refunded"`
}

func (h *Handler) onChargeRefunded(data json.RawMessage) error {
	var ch chargePayload
	if err := json.Unmarshal(data, &ch); err != nil {
		return err
	}
	p, err := h.Payments.FindByProcessorTxn(h.DB, ch.PaymentIntent)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.Log.Warnw("refund for unknown payment", "paymentIntent", ch.PaymentIntent)
			return nil
		}
		return err
	}

	refund := float64(ch.AmountRefunded) / 100
	return h.DB.Transaction(func(tx *gorm.DB) error {
		// amount_refunded is cumulative on the charge, so a redelivered
		// event carries the same value. Only the delta moves the invoice.
		delta := utils.Round2(refund - p.AmountRefunded)
		if delta <= 0 {
			return nil
		}

		p.AmountRefunded = refund
		if ch.Refunded {
			p.Status = payment.StatusRefunded
		} else {
			p.Status = payment.StatusPartiallyRefunded
		}
		if err := tx.Save(p).Error; err != nil {
			return err
		}

		inv, err := h.Invoices.FindByIDForUpdate(tx, p.InvoiceID)
		if err != nil {
			return err
		}
		inv.AmountPaid = utils.Round2(inv.AmountPaid - delta)
		inv.Status = invoice.StatusRefunded
		return tx.Save(inv).Error
	})
}

// findInvoice resolves an invoice from a checkout session id or, failing
// that, the invoice id carried in processor metadata.
func (h *Handler) findInvoice(sessionID, metadataInvoiceID string) (*invoice.Invoice, error) {
	if sessionID != "" {
		if inv, err := h.Invoices.FindByCheckoutSession(h.DB, sessionID); err == nil {
			return inv, nil
		}
	}
	if metadataInvoiceID != "" {
		id, err := strconv.Atoi(metadataInvoiceID)
		if err == nil {
			return h.Invoices.FindByID(h.DB, uint(id))
		}
	}
	return nil, gorm.ErrRecordNotFound
}
