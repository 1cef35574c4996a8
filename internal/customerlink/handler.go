package customerlink

import (
	"net/http"
	"time"

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

// Resolve handles GET /api/portal/{token} (public). It validates expiry and
// use limits, counts the use, and tells the portal frontend what the token
// unlocks.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	l, err := h.Repository.FindByToken(h.DB, token)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "link not found")
		return
	}
	if l.Expired(time.Now()) {
		utils.RespondError(w, http.StatusBadRequest, "link expired")
		return
	}
	if err := h.Repository.RecordUse(h.DB, l); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not resolve link")
		return
	}
	utils.RespondJSON(w, http.StatusOK, l)
}
