package deficiency

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/quote"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/utils"
)

type Handler struct {
	DB      *gorm.DB
	Quotes  quote.Repository
	TaxRate float64
	Log     *zap.SugaredLogger
}

func NewHandler(db *gorm.DB, taxRate float64, log *zap.SugaredLogger) *Handler {
	return &Handler{DB: db, Quotes: quote.NewRepository(), TaxRate: taxRate, Log: log}
}

// Create handles POST /api/deficiencies.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var d Deficiency
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if d.InspectionID == 0 || d.Description == "" {
		utils.RespondError(w, http.StatusBadRequest, "inspectionId and description are required")
		return
	}
	if err := h.DB.Create(&d).Error; err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not save deficiency")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, d)
}

// List handles GET /api/deficiencies with an optional ?inspection_id= filter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := h.DB.Order("id")
	if iid := r.URL.Query().Get("inspection_id"); iid != "" {
		id, _ := strconv.Atoi(iid)
		q = q.Where("inspection_id = ?", id)
	}
	var list []Deficiency
	if err := q.Find(&list).Error; err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not list deficiencies")
		return
	}
	utils.RespondJSON(w, http.StatusOK, list)
}

// Get handles GET /api/deficiencies/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	var d Deficiency
	if err := h.DB.First(&d, id).Error; err != nil {
		utils.RespondError(w, http.StatusNotFound, "deficiency not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, d)
}

type generateQuoteRequest struct {
	InspectionID  uint   `json:"inspectionId"`
	DeficiencyIDs []uint `json:"deficiencyIds"`
}

// GenerateQuote handles POST /api/deficiencies/generate-quote: builds a
// deficiency_repair quote with one allowance line item per deficiency, then
// links the deficiencies to the new quote. The link is association only;
// deficiencies are not marked resolved here.
func (h *Handler) GenerateQuote(w http.ResponseWriter, r *http.Request) {
	var req generateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.InspectionID == 0 || len(req.DeficiencyIDs) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "inspectionId and deficiencyIds are required")
		return
	}

	var defs []Deficiency
	if err := h.DB.Where("inspection_id = ? AND id IN ?", req.InspectionID, req.DeficiencyIDs).
		Find(&defs).Error; err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not load deficiencies")
		return
	}
	if len(defs) != len(req.DeficiencyIDs) {
		utils.RespondError(w, http.StatusNotFound, "one or more deficiencies not found")
		return
	}

	items := make([]quote.LineItem, 0, len(defs))
	for _, d := range defs {
		low, high := d.EstimatedCostLow, d.EstimatedCostHigh
		items = append(items, quote.LineItem{
			Description: DisplayCategory(d.Category) + ": " + d.Description,
			Quantity:    1,
			UnitPrice:   high,
			IsAllowance: low != high,
			CostLow:     low,
			CostHigh:    high,
			Category:    DisplayCategory(d.Category),
		})
	}

	q := quote.Quote{
		QuoteType: quote.TypeDeficiencyRepair,
		Items:     items,
		TaxRate:   h.TaxRate,
		Status:    quote.StatusDraft,
	}
	q.ComputeTotals()

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&q).Error; err != nil {
			return err
		}
		return tx.Model(&Deficiency{}).
			Where("id IN ?", req.DeficiencyIDs).
			Update("quote_id", q.ID).Error
	})
	if err != nil {
		h.Log.Errorw("deficiency quote generation failed", "inspection", req.InspectionID, "err", err)
		utils.RespondError(w, http.StatusInternalServerError, "could not generate quote")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, q)
}
