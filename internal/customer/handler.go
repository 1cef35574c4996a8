package customer

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/utils"
)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db, Repository: NewRepository()}
}

// POST /api/customers
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var c Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if c.Name == "" || c.Email == "" {
		utils.RespondError(w, http.StatusBadRequest, "name and email are required")
		return
	}
	saved, err := h.Repository.UpsertByEmail(h.DB, &c)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not save customer")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, saved)
}

// GET /api/customers
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repository.ListAll(h.DB)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not list customers")
		return
	}
	utils.RespondJSON(w, http.StatusOK, list)
}

// GET /api/customers/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	c, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "customer not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, c)
}

// PUT /api/customers/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	existing, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "customer not found")
		return
	}
	var c Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	c.ID = existing.ID
	c.CreatedAt = existing.CreatedAt
	// The column defaults apply only at insert; an omitted field must not
	// blank the stored value on save.
	if c.Email == "" {
		c.Email = existing.Email
	}
	if c.Status == "" {
		c.Status = existing.Status
	}
	if err := h.Repository.Save(h.DB, &c); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not update customer")
		return
	}
	utils.RespondJSON(w, http.StatusOK, c)
}

// DELETE /api/customers/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	if err := h.Repository.Delete(h.DB, uint(id)); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not delete customer")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
