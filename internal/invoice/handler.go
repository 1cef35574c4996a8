package invoice

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/customer"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/notifier"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/payments"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/sequence"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/utils"
)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Customers  customer.Repository
	Gateway    payments.Gateway
	Notifier   notifier.Notifier
	TaxRate    float64
	Log        *zap.SugaredLogger
}

func NewHandler(db *gorm.DB, gw payments.Gateway, n notifier.Notifier, taxRate float64, log *zap.SugaredLogger) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Customers:  customer.NewRepository(),
		Gateway:    gw,
		Notifier:   n,
		TaxRate:    taxRate,
		Log:        log,
	}
}

type createInvoiceRequest struct {
	CustomerID uint       `json:"customerId"`
	JobID      *uint      `json:"jobId"`
	QuoteID    *uint      `json:"quoteId"`
	Items      []LineItem `json:"items"`
	TaxRate    *float64   `json:"taxRate"`
	DueDate    *time.Time `json:"dueDate"`
	Notes      string     `json:"notes"`
}

// Create handles POST /api/invoices. Totals are always recomputed
// server-side; client-sent totals are ignored.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.CustomerID == 0 || len(req.Items) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "customerId and items are required")
		return
	}
	if _, err := h.Customers.FindByID(h.DB, req.CustomerID); err != nil {
		utils.RespondError(w, http.StatusNotFound, "customer not found")
		return
	}

	taxRate := h.TaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}

	inv := Invoice{
		CustomerID: req.CustomerID,
		JobID:      req.JobID,
		QuoteID:    req.QuoteID,
		Items:      req.Items,
		TaxRate:    taxRate,
		Status:     StatusDraft,
		DueDate:    req.DueDate,
		Notes:      req.Notes,
	}
	inv.ComputeTotals()

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		number, err := sequence.Next(tx, "invoice", "INV", time.Now().Year())
		if err != nil {
			return err
		}
		inv.InvoiceNumber = number
		return tx.Create(&inv).Error
	})
	if err != nil {
		h.Log.Errorw("invoice create failed", "err", err)
		utils.RespondError(w, http.StatusInternalServerError, "could not create invoice")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, inv)
}

// List handles GET /api/invoices with optional ?customer_id= filter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var (
		list []Invoice
		err  error
	)
	if cid := r.URL.Query().Get("customer_id"); cid != "" {
		id, _ := strconv.Atoi(cid)
		list, err = h.Repository.ListForCustomer(h.DB, uint(id))
	} else {
		list, err = h.Repository.ListAll(h.DB)
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not list invoices")
		return
	}
	utils.RespondJSON(w, http.StatusOK, list)
}

// Get handles GET /api/invoices/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	inv, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "invoice not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, inv)
}

// Patch handles PATCH /api/invoices/{id}. Items/notes/due date are editable
// on drafts; the only status change a client may request is draft→sent (use
// Send for the full side effects). amount_paid is never client-writable.
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	inv, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "invoice not found")
		return
	}

	var req struct {
		Items   []LineItem `json:"items"`
		TaxRate *float64   `json:"taxRate"`
		DueDate *time.Time `json:"dueDate"`
		Notes   *string    `json:"notes"`
		Status  *string    `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if req.Status != nil {
		if !(inv.Status == StatusDraft && *req.Status == StatusSent) {
			utils.RespondError(w, http.StatusBadRequest,
				fmt.Sprintf("cannot change status from %q to %q", inv.Status, *req.Status))
			return
		}
		now := time.Now()
		inv.Status = StatusSent
		inv.SentAt = &now
	}

	if req.Items != nil || req.TaxRate != nil {
		if inv.Status != StatusDraft && inv.Status != StatusSent {
			utils.RespondError(w, http.StatusBadRequest, "items can only change before payment activity")
			return
		}
		if req.Items != nil {
			inv.Items = req.Items
		}
		if req.TaxRate != nil {
			inv.TaxRate = *req.TaxRate
		}
		inv.ComputeTotals()
	}
	if req.DueDate != nil {
		inv.DueDate = req.DueDate
	}
	if req.Notes != nil {
		inv.Notes = *req.Notes
	}

	if err := h.Repository.Save(h.DB, inv); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not update invoice")
		return
	}
	utils.RespondJSON(w, http.StatusOK, inv)
}

// Delete handles DELETE /api/invoices/{id}. Only drafts may be hard-deleted.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	inv, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "invoice not found")
		return
	}
	if inv.Status != StatusDraft {
		utils.RespondError(w, http.StatusBadRequest, "only draft invoices can be deleted")
		return
	}
	if err := h.Repository.Delete(h.DB, inv.ID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not delete invoice")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Send handles POST /api/invoices/{id}/send: opens a processor checkout
// session for the balance, marks the invoice sent, and emails the payment
// link. The email is best-effort.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	inv, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "invoice not found")
		return
	}
	if inv.Status != StatusDraft && inv.Status != StatusSent && inv.Status != StatusPartial {
		utils.RespondError(w, http.StatusBadRequest,
			fmt.Sprintf("invoice in status %q cannot be sent", inv.Status))
		return
	}
	balance := inv.Balance()
	if balance <= 0 {
		utils.RespondError(w, http.StatusBadRequest, "invoice has no outstanding balance")
		return
	}

	cust, err := h.Customers.FindByID(h.DB, inv.CustomerID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "customer not found")
		return
	}

	if h.Gateway == nil {
		utils.RespondError(w, http.StatusInternalServerError, "payments are not configured")
		return
	}
	cents := int64(math.Round(balance * 100))
	sess, err := h.Gateway.CreateCheckoutSession(r.Context(), cents,
		"Invoice "+inv.InvoiceNumber, fmt.Sprint(inv.ID), cust.Email)
	if err != nil {
		h.Log.Errorw("checkout session failed", "invoice", inv.ID, "err", err)
		utils.RespondError(w, http.StatusInternalServerError, "could not create payment session")
		return
	}

	now := time.Now()
	if inv.Status == StatusDraft {
		inv.Status = StatusSent
	}
	inv.SentAt = &now
	inv.CheckoutSessionID = sess.ID
	inv.PaymentLinkURL = sess.URL
	if err := h.Repository.Save(h.DB, inv); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not update invoice")
		return
	}

	if err := h.Notifier.Send(r.Context(), cust.Email,
		"Invoice "+inv.InvoiceNumber+" from Chatman Security & Fire",
		fmt.Sprintf("<p>Amount due: $%.2f. Pay online: %s</p>", balance, sess.URL)); err != nil {
		h.Log.Warnw("invoice email failed", "invoice", inv.ID, "err", err)
	}

	utils.RespondJSON(w, http.StatusOK, inv)
}
