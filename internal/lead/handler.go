package lead

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/auth"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/customer"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/customerlink"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/notifier"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/utils"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Customers  customer.Repository
	Links      customerlink.Repository
	Notifier   notifier.Notifier
	Log        *zap.SugaredLogger
	validate   *validator.Validate
}

func NewHandler(db *gorm.DB, n notifier.Notifier, log *zap.SugaredLogger) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Customers:  customer.NewRepository(),
		Links:      customerlink.NewRepository(),
		Notifier:   n,
		Log:        log,
		validate:   validator.New(),
	}
}

type createLeadRequest struct {
	Name             string `json:"name" validate:"required"`
	Email            string `json:"email" validate:"required"`
	Phone            string `json:"phone"`
	Message          string `json:"message"`
	PreferredContact string `json:"preferred_contact"`
	Source           string `json:"source"`
}

// Create handles POST /api/leads (public form submission).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "name and email are required")
		return
	}
	if !emailPattern.MatchString(req.Email) {
		utils.RespondError(w, http.StatusBadRequest, "invalid email address")
		return
	}

	source := req.Source
	if source == "" {
		source = "website"
	}
	l := Lead{
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		Message:          req.Message,
		PreferredContact: req.PreferredContact,
		Source:           source,
		Status:           StatusNew,
	}
	if err := h.Repository.Save(h.DB, &l); err != nil {
		h.Log.Errorw("lead save failed", "err", err)
		utils.RespondError(w, http.StatusInternalServerError, "could not save lead")
		return
	}
	utils.RespondJSON(w, http.StatusOK, l)
}

// List handles GET /api/leads with an optional ?status= filter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var (
		list []Lead
		err  error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		list, err = h.Repository.ListByStatus(h.DB, status)
	} else {
		list, err = h.Repository.ListAll(h.DB)
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not list leads")
		return
	}
	utils.RespondJSON(w, http.StatusOK, list)
}

// Get handles GET /api/leads/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	l, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "lead not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, l)
}

// Update handles PUT /api/leads/{id} (status moves and contact edits).
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	l, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "lead not found")
		return
	}

	var req struct {
		Name    *string `json:"name"`
		Phone   *string `json:"phone"`
		Message *string `json:"message"`
		Status  *string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Status != nil && !ValidStatus(*req.Status) {
		utils.RespondError(w, http.StatusBadRequest, "invalid status")
		return
	}

	if req.Name != nil {
		l.Name = *req.Name
	}
	if req.Phone != nil {
		l.Phone = *req.Phone
	}
	if req.Message != nil {
		l.Message = *req.Message
	}
	if req.Status != nil {
		l.Status = *req.Status
	}

	if err := h.Repository.Save(h.DB, l); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not update lead")
		return
	}
	utils.RespondJSON(w, http.StatusOK, l)
}

// Delete handles DELETE /api/leads/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	if err := h.Repository.Delete(h.DB, uint(id)); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not delete lead")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GrantAccess handles POST /api/leads/{id}/grant-access: looks up or creates
// the Customer for the lead's email, mints a portal link, marks the lead won
// and sends the access email. The email send is best-effort.
func (h *Handler) GrantAccess(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	l, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "lead not found")
		return
	}

	cust, err := h.Customers.UpsertByEmail(h.DB, &customer.Customer{
		Name:   l.Name,
		Email:  l.Email,
		Phone:  l.Phone,
		Status: "active",
	})
	if err != nil {
		h.Log.Errorw("customer upsert failed", "leadID", l.ID, "err", err)
		utils.RespondError(w, http.StatusInternalServerError, "could not create customer")
		return
	}

	link, err := h.Links.Mint(h.DB, cust.ID, customerlink.TypePortal, nil, nil, auth.SessionTTL, 0)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not create access link")
		return
	}

	l.Status = StatusWon
	l.CustomerID = &cust.ID
	if err := h.Repository.Save(h.DB, l); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not update lead")
		return
	}

	if err := h.Notifier.Send(r.Context(), cust.Email, "Your Chatman Fire customer portal access",
		"<p>Your portal access link: /portal/"+link.Token+"</p>"); err != nil {
		h.Log.Warnw("access email failed", "email", cust.Email, "err", err)
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"lead":     l,
		"customer": cust,
		"link":     link,
	})
}
