package user

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/auth"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/notifier"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/utils"
)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Notifier   notifier.Notifier
	Log        *zap.SugaredLogger
}

func NewHandler(db *gorm.DB, n notifier.Notifier, log *zap.SugaredLogger) *Handler {
	return &Handler{DB: db, Repository: NewRepository(), Notifier: n, Log: log}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and sets the httpOnly session cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	u, err := h.Repository.FindByEmail(h.DB, req.Email)
	if err != nil || !u.Active {
		utils.RespondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !utils.CheckPassword(u.PasswordHash, req.Password) {
		utils.RespondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(u.ID, u.Role)
	if err != nil {
		h.Log.Errorw("token generation failed", "err", err)
		utils.RespondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	auth.SetSessionCookie(w, token)
	utils.RespondJSON(w, http.StatusOK, u)
}

// Logout clears the session cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.Repository.FindByID(h.DB, auth.UserID(r))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "user not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, u)
}

type inviteRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

var staffRoles = map[string]bool{
	auth.RoleAdmin:      true,
	auth.RoleManager:    true,
	auth.RoleTechnician: true,
	auth.RoleInspector:  true,
}

// Invite creates an inactive profile with a one-time invite token and mails
// the acceptance link. Admin only (enforced at the route).
func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Email == "" || !staffRoles[req.Role] {
		utils.RespondError(w, http.StatusBadRequest, "email and a valid role are required")
		return
	}

	token, err := utils.GenerateToken(32)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not create invite")
		return
	}

	p := Profile{
		Name:        req.Name,
		Email:       req.Email,
		Role:        req.Role,
		Active:      false,
		InviteToken: token,
	}
	if err := h.Repository.Save(h.DB, &p); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not save invite")
		return
	}

	if err := h.Notifier.Send(r.Context(), p.Email, "You're invited to the Chatman Fire portal",
		fmt.Sprintf("<p>Accept your invite with token <b>%s</b>.</p>", token)); err != nil {
		h.Log.Warnw("invite email failed", "email", p.Email, "err", err)
	}

	utils.RespondJSON(w, http.StatusCreated, p)
}

type acceptRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// AcceptInvite sets the password for an invited profile and activates it.
func (h *Handler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	var req acceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Token == "" || len(req.Password) < 8 {
		utils.RespondError(w, http.StatusBadRequest, "token and a password of at least 8 characters are required")
		return
	}

	p, err := h.Repository.FindByInviteToken(h.DB, req.Token)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "invite not found")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not set password")
		return
	}
	p.PasswordHash = hash
	p.InviteToken = ""
	p.Active = true
	if err := h.Repository.Save(h.DB, p); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not activate account")
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}

// ListUsers returns all profiles.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repository.ListAll(h.DB)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not list users")
		return
	}
	utils.RespondJSON(w, http.StatusOK, list)
}

// UpdateUser patches role/active/team on a profile.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	p, err := h.Repository.FindByID(h.DB, uint(id))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "user not found")
		return
	}

	var req struct {
		Name   *string `json:"name"`
		Phone  *string `json:"phone"`
		Role   *string `json:"role"`
		Active *bool   `json:"active"`
		TeamID *uint   `json:"teamId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Role != nil && !staffRoles[*req.Role] {
		utils.RespondError(w, http.StatusBadRequest, "invalid role")
		return
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
	if req.Role != nil {
		p.Role = *req.Role
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if req.TeamID != nil {
		p.TeamID = req.TeamID
	}

	if err := h.Repository.Save(h.DB, p); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not update user")
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}

// CreateTeam, ListTeams, GetTeam, DeleteTeam: admin team management.
func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var t Team
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if t.Name == "" {
		utils.RespondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err := h.Repository.SaveTeam(h.DB, &t); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not save team")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, t)
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repository.ListTeams(h.DB)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not list teams")
		return
	}
	utils.RespondJSON(w, http.StatusOK, list)
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	t, err := h.Repository.FindTeam(h.DB, uint(id))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "team not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, t)
}

func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	if err := h.Repository.DeleteTeam(h.DB, uint(id)); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not delete team")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SeedAdmin creates the bootstrap admin account when the table is empty.
func SeedAdmin(db *gorm.DB, email, password string, log *zap.SugaredLogger) error {
	if email == "" || password == "" {
		return nil
	}
	var count int64
	if err := db.Model(&Profile{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	admin := Profile{Name: "Administrator", Email: email, Role: auth.RoleAdmin, PasswordHash: hash, Active: true}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Infow("seeded admin account", "email", email)
	return nil
}
