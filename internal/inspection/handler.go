package inspection

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/utils"
)

type Handler struct {
	DB        *gorm.DB
	Estimator Estimator
	Log       *zap.SugaredLogger
}

func NewHandler(db *gorm.DB, est Estimator, log *zap.SugaredLogger) *Handler {
	return &Handler{DB: db, Estimator: est, Log: log}
}

// Create handles POST /api/inspections.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var ins Inspection
	if err := json.NewDecoder(r.Body).Decode(&ins); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if ins.InspectionType == "" {
		utils.RespondError(w, http.StatusBadRequest, "inspectionType is required")
		return
	}
	if ins.Status == "" {
		ins.Status = StatusScheduled
	}
	if err := h.DB.Create(&ins).Error; err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not save inspection")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, ins)
}

// List handles GET /api/inspections.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var list []Inspection
	if err := h.DB.Order("id desc").Find(&list).Error; err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not list inspections")
		return
	}
	utils.RespondJSON(w, http.StatusOK, list)
}

// Get handles GET /api/inspections/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	var ins Inspection
	if err := h.DB.First(&ins, id).Error; err != nil {
		utils.RespondError(w, http.StatusNotFound, "inspection not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, ins)
}

// Update handles PUT /api/inspections/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	var existing Inspection
	if err := h.DB.First(&existing, id).Error; err != nil {
		utils.RespondError(w, http.StatusNotFound, "inspection not found")
		return
	}
	var ins Inspection
	if err := json.NewDecoder(r.Body).Decode(&ins); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	ins.ID = existing.ID
	ins.CreatedAt = existing.CreatedAt
	if err := h.DB.Save(&ins).Error; err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not update inspection")
		return
	}
	utils.RespondJSON(w, http.StatusOK, ins)
}

// EstimateDevices handles POST /api/inspections/{id}/estimate-devices:
// delegates the count to the LLM and stores the result.
func (h *Handler) EstimateDevices(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	var ins Inspection
	if err := h.DB.First(&ins, id).Error; err != nil {
		utils.RespondError(w, http.StatusNotFound, "inspection not found")
		return
	}
	if ins.BuildingDescription == "" {
		utils.RespondError(w, http.StatusBadRequest, "inspection has no building description")
		return
	}
	if h.Estimator == nil {
		utils.RespondError(w, http.StatusInternalServerError, "estimator is not configured")
		return
	}

	count, err := h.Estimator.EstimateDevices(r.Context(), ins.BuildingDescription)
	if err != nil {
		h.Log.Errorw("device estimate failed", "inspection", ins.ID, "err", err)
		utils.RespondError(w, http.StatusBadGateway, "could not estimate devices")
		return
	}
	ins.EstimatedDevices = &count
	if err := h.DB.Save(&ins).Error; err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not save estimate")
		return
	}
	utils.RespondJSON(w, http.StatusOK, ins)
}
