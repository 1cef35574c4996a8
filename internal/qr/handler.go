package qr

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/utils"
)

type Handler struct {
	DB  *gorm.DB
	Log *zap.SugaredLogger
}

func NewHandler(db *gorm.DB, log *zap.SugaredLogger) *Handler {
	return &Handler{DB: db, Log: log}
}

// Create handles POST /api/qr: mints a code with a random slug.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var c Code
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if c.TargetURL == "" {
		utils.RespondError(w, http.StatusBadRequest, "targetUrl is required")
		return
	}
	if c.Slug == "" {
		c.Slug = uuid.NewString()[:8]
	}
	c.Active = true
	if err := h.DB.Create(&c).Error; err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not save code")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, c)
}

// List handles GET /api/qr.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var list []Code
	if err := h.DB.Order("id desc").Find(&list).Error; err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not list codes")
		return
	}
	utils.RespondJSON(w, http.StatusOK, list)
}

// Redirect handles GET /api/qr/{slug} (public): 307 to the target with a
// fire-and-forget scan log.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	var c Code
	if err := h.DB.Where("slug = ? AND active", slug).First(&c).Error; err != nil {
		utils.RespondError(w, http.StatusNotFound, "code not found")
		return
	}

	ip, _, _ := net.SplitHostPort(r.RemoteAddr)
	scan := Scan{
		CodeID:    c.ID,
		UserAgent: r.UserAgent(),
		Referer:   r.Referer(),
		RemoteIP:  ip,
	}
	go func() {
		if err := h.DB.Create(&scan).Error; err != nil {
			h.Log.Warnw("scan log failed", "slug", slug, "err", err)
		}
	}()

	http.Redirect(w, r, c.TargetURL, http.StatusTemporaryRedirect)
}
