package quote

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/customer"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/utils"
)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Customers  customer.Repository
	TaxRate    float64
	Log        *zap.SugaredLogger
}

func NewHandler(db *gorm.DB, taxRate float64, log *zap.SugaredLogger) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Customers:  customer.NewRepository(),
		TaxRate:    taxRate,
		Log:        log,
	}
}

type saveQuoteRequest struct {
	QuoteType string           `json:"quoteType"`
	Customer  CustomerSnapshot `json:"customer"`
	Site      SiteSnapshot     `json:"site"`
	Items     []LineItem       `json:"items"`
	TaxRate   *float64         `json:"taxRate"`
	Notes     string           `json:"notes"`
}

// upsertQuoteCustomer keeps the CRM in sync whenever a quote carries a
// customer email. Best-effort: a failure is logged, never surfaced.
func (h *Handler) upsertQuoteCustomer(q *Quote) {
	if q.Customer.Email == "" {
		return
	}
	_, err := h.Customers.UpsertByEmail(h.DB, &customer.Customer{
		Name:        q.Customer.Name,
		Email:       q.Customer.Email,
		Phone:       q.Customer.Phone,
		CompanyName: q.Customer.CompanyName,
		Status:      "active",
	})
	if err != nil {
		h.Log.Warnw("quote customer upsert failed", "quote", q.ID, "email", q.Customer.Email, "err", err)
	}
}

// Create handles POST /api/quotes. Totals are computed here, not accepted
// from the client.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req saveQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.QuoteType == "" || len(req.Items) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "quoteType and items are required")
		return
	}

	taxRate := h.TaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}
	q := Quote{
		QuoteType: req.QuoteType,
		Customer:  req.Customer,
		Site:      req.Site,
		Items:     req.Items,
		TaxRate:   taxRate,
		Status:    StatusDraft,
		Notes:     req.Notes,
	}
	q.ComputeTotals()

	if err := h.Repository.Save(h.DB, &q); err != nil {
		h.Log.Errorw("quote save failed", "err", err)
		utils.RespondError(w, http.StatusInternalServerError, "could not save quote")
		return
	}
	h.upsertQuoteCustomer(&q)
	utils.RespondJSON(w, http.StatusCreated, q)
}

// List handles GET /api/quotes with an optional ?status= filter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var (
		list []Quote
		err  error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		list, err = h.Repository.ListByStatus(h.DB, status)
	} else {
		list, err = h.Repository.ListAll(h.DB)
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not list quotes")
		return
	}
	utils.RespondJSON(w, http.StatusOK, list)
}

// Get handles GET /api/quotes/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	q, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "quote not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, q)
}

// Update handles PUT /api/quotes/{id}, recomputing totals from whatever the
// request changed.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	q, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "quote not found")
		return
	}

	var req struct {
		saveQuoteRequest
		Status *string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Status != nil && !ValidStatus(*req.Status) {
		utils.RespondError(w, http.StatusBadRequest, "invalid status")
		return
	}

	if req.QuoteType != "" {
		q.QuoteType = req.QuoteType
	}
	if req.Customer != (CustomerSnapshot{}) {
		q.Customer = req.Customer
	}
	if req.Site != (SiteSnapshot{}) {
		q.Site = req.Site
	}
	if req.Items != nil {
		q.Items = req.Items
	}
	if req.TaxRate != nil {
		q.TaxRate = *req.TaxRate
	}
	if req.Notes != "" {
		q.Notes = req.Notes
	}
	if req.Status != nil {
		q.Status = *req.Status
	}
	q.ComputeTotals()

	if err := h.Repository.Save(h.DB, q); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not update quote")
		return
	}
	h.upsertQuoteCustomer(q)
	utils.RespondJSON(w, http.StatusOK, q)
}

// Duplicate handles POST /api/quotes/{id}?action=duplicate.
func (h *Handler) Duplicate(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("action") != "duplicate" {
		utils.RespondError(w, http.StatusBadRequest, "unsupported action")
		return
	}
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	q, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "quote not found")
		return
	}

	clone := *q
	clone.Model = gorm.Model{}
	clone.Status = StatusDraft
	clone.ComputeTotals()
	if err := h.Repository.Save(h.DB, &clone); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not duplicate quote")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, clone)
}

// Delete handles DELETE /api/quotes/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	if err := h.Repository.Delete(h.DB, uint(id)); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not delete quote")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
