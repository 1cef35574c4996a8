package payment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/invoice"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/payments"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/utils"
)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Invoices   invoice.Repository
	Gateway    payments.Gateway
	Log        *zap.SugaredLogger
}

func NewHandler(db *gorm.DB, gw payments.Gateway, log *zap.SugaredLogger) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Invoices:   invoice.NewRepository(),
		Gateway:    gw,
		Log:        log,
	}
}

type recordRequest struct {
	InvoiceID   uint       `json:"invoiceId"`
	CustomerID  uint       `json:"customerId"`
	Amount      float64    `json:"amount"`
	Method      string     `json:"method"`
	Notes       string     `json:"notes"`
	PaymentDate *time.Time `json:"paymentDate"`
}

// Create handles POST /api/payments: records a manual payment and
// reconciles the invoice.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.InvoiceID == 0 {
		utils.RespondError(w, http.StatusBadRequest, "invoiceId is required")
		return
	}
	if req.Amount <= 0 {
		utils.RespondError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	inv, err := h.Invoices.FindByID(h.DB, req.InvoiceID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "invoice not found")
		return
	}
	if req.CustomerID != 0 && req.CustomerID != inv.CustomerID {
		utils.RespondError(w, http.StatusBadRequest, "customerId does not match the invoice")
		return
	}

	p := Payment{
		InvoiceID:   req.InvoiceID,
		CustomerID:  inv.CustomerID,
		Amount:      req.Amount,
		Method:      req.Method,
		Status:      StatusCompleted,
		Notes:       req.Notes,
		PaymentDate: req.PaymentDate,
	}
	if err := h.Repository.Record(h.DB, &p); err != nil {
		h.Log.Errorw("payment record failed", "invoice", req.InvoiceID, "err", err)
		utils.RespondError(w, http.StatusInternalServerError, "could not record payment")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, p)
}

// List handles GET /api/payments with an optional ?invoice_id= filter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var (
		list []Payment
		err  error
	)
	if iid := r.URL.Query().Get("invoice_id"); iid != "" {
		id, _ := strconv.Atoi(iid)
		list, err = h.Repository.ListForInvoice(h.DB, uint(id))
	} else {
		list, err = h.Repository.ListAll(h.DB)
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not list payments")
		return
	}
	utils.RespondJSON(w, http.StatusOK, list)
}

// Verify handles GET /api/payments/verify?session_id=: fetches the checkout
// session from the processor and records the payment if it is paid and not
// yet recorded. Safe to call repeatedly.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if h.Gateway == nil {
		utils.RespondError(w, http.StatusInternalServerError, "payments are not configured")
		return
	}

	sess, err := h.Gateway.GetCheckoutSession(r.Context(), sessionID)
	if err != nil {
		h.Log.Errorw("session fetch failed", "session", sessionID, "err", err)
		utils.RespondError(w, http.StatusInternalServerError, "could not verify session")
		return
	}
	if sess.PaymentStatus != "paid" {
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"paid":   false,
			"status": sess.PaymentStatus,
		})
		return
	}

	inv, err := h.Invoices.FindByCheckoutSession(h.DB, sess.ID)
	if err != nil && sess.InvoiceID != "" {
		id, convErr := strconv.Atoi(sess.InvoiceID)
		if convErr == nil {
			inv, err = h.Invoices.FindByID(h.DB, uint(id))
		}
	}
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "invoice for session not found")
		return
	}

	p := Payment{
		InvoiceID:         inv.ID,
		CustomerID:        inv.CustomerID,
		Amount:            float64(sess.AmountTotal) / 100,
		Method:            "card",
		Status:            StatusSucceeded,
		ProcessorTxnID:    sess.PaymentIntentID,
		CheckoutSessionID: sess.ID,
	}
	err = h.Repository.Record(h.DB, &p)
	if err != nil && !errors.Is(err, ErrDuplicate) {
		h.Log.Errorw("payment record failed", "session", sessionID, "err", err)
		utils.RespondError(w, http.StatusInternalServerError, "could not record payment")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"paid":    true,
		"invoice": inv.InvoiceNumber,
		"amount":  p.Amount,
	})
}
