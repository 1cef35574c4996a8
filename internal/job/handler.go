package job

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/auth"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/utils"
)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	TaxRate    float64
	Log        *zap.SugaredLogger
}

func NewHandler(db *gorm.DB, taxRate float64, log *zap.SugaredLogger) *Handler {
	return &Handler{DB: db, Repository: NewRepository(), TaxRate: taxRate, Log: log}
}

// Fields a technician or inspector may PATCH on an assigned job. Everything
// else is office-only.
var fieldRoleAllowList = map[string]bool{
	"status":            true,
	"notes":             true,
	"completion_notes":  true,
	"actual_start_time": true,
	"actual_end_time":   true,
	"completed_at":      true,
}

func isFieldRole(role string) bool {
	return role == auth.RoleTechnician || role == auth.RoleInspector
}

// requireJobAccess returns the job if the caller may see it. Field roles
// must be assigned to the job.
func (h *Handler) requireJobAccess(w http.ResponseWriter, r *http.Request, id uint) *Job {
	j, err := h.Repository.FindByID(h.DB, id)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "job not found")
		return nil
	}
	if isFieldRole(auth.Role(r)) {
		assigned, err := h.Repository.IsAssigned(h.DB, j.ID, auth.UserID(r))
		if err != nil || !assigned {
			utils.RespondError(w, http.StatusForbidden, "not assigned to this job")
			return nil
		}
	}
	return j
}

type createJobRequest struct {
	Customer      CustomerSnapshot `json:"customer"`
	Site          SiteSnapshot     `json:"site"`
	JobType       string           `json:"jobType"`
	ScopeSummary  string           `json:"scopeSummary"`
	TotalAmount   float64          `json:"totalAmount"`
	ScheduledDate *time.Time       `json:"scheduledDate"`
	Notes         string           `json:"notes"`
	AssignedIDs   []uint           `json:"assignedUserIds"`
}

// Create handles POST /api/jobs.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.JobType == "" {
		utils.RespondError(w, http.StatusBadRequest, "jobType is required")
		return
	}

	j := Job{
		Customer:      req.Customer,
		Site:          req.Site,
		JobType:       req.JobType,
		Status:        StatusPending,
		ScopeSummary:  req.ScopeSummary,
		TotalAmount:   req.TotalAmount,
		ScheduledDate: req.ScheduledDate,
		Notes:         req.Notes,
	}
	if req.ScheduledDate != nil {
		j.Status = StatusScheduled
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		number, err := NextJobNumber(tx, time.Now().Year())
		if err != nil {
			return err
		}
		j.JobNumber = number
		if err := tx.Create(&j).Error; err != nil {
			return err
		}
		for _, uid := range req.AssignedIDs {
			if err := tx.Create(&Assignment{JobID: j.ID, UserID: uid, Role: "tech"}).Error; err != nil {
				return err
			}
		}
		return tx.Create(&Event{JobID: j.ID, EventType: "created", ActorID: auth.UserID(r)}).Error
	})
	if err != nil {
		h.Log.Errorw("job create failed", "err", err)
		utils.RespondError(w, http.StatusInternalServerError, "could not create job")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, j)
}

// List handles GET /api/jobs. Field roles only see their assigned jobs.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var (
		list []Job
		err  error
	)
	switch {
	case isFieldRole(auth.Role(r)):
		list, err = h.Repository.ListAssignedTo(h.DB, auth.UserID(r))
	case r.URL.Query().Get("status") != "":
		list, err = h.Repository.ListByStatus(h.DB, r.URL.Query().Get("status"))
	default:
		list, err = h.Repository.ListAll(h.DB)
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not list jobs")
		return
	}
	utils.RespondJSON(w, http.StatusOK, list)
}

// Get handles GET /api/jobs/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	j := h.requireJobAccess(w, r, uint(id))
	if j == nil {
		return
	}
	utils.RespondJSON(w, http.StatusOK, j)
}

// Patch handles PATCH /api/jobs/{id}. Field roles are limited to the
// allow-listed fields; any other key in the body is a 403.
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	j := h.requireJobAccess(w, r, uint(id))
	if j == nil {
		return
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	if isFieldRole(auth.Role(r)) {
		for field := range raw {
			if !fieldRoleAllowList[field] {
				utils.RespondError(w, http.StatusForbidden, "field "+field+" is not editable by field roles")
				return
			}
		}
	}

	if err := applyPatch(j, raw); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(j).Error; err != nil {
			return err
		}
		if _, ok := raw["status"]; ok {
			return tx.Create(&Event{
				JobID:     j.ID,
				EventType: "status_changed",
				ActorID:   auth.UserID(r),
				Data:      map[string]interface{}{"status": j.Status},
			}).Error
		}
		return nil
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not update job")
		return
	}
	utils.RespondJSON(w, http.StatusOK, j)
}

// Delete handles DELETE /api/jobs/{id} (admin only, enforced at the route).
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	if err := h.Repository.Delete(h.DB, uint(id)); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not delete job")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- sub-resources ---

// AddAssignment handles POST /api/jobs/{id}/assignments.
func (h *Handler) AddAssignment(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	var a Assignment
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if a.UserID == 0 {
		utils.RespondError(w, http.StatusBadRequest, "userId is required")
		return
	}
	a.JobID = uint(id)
	if a.Role == "" {
		a.Role = "tech"
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&a).Error; err != nil {
			return err
		}
		return tx.Create(&Event{
			JobID:     a.JobID,
			EventType: "assigned",
			ActorID:   auth.UserID(r),
			Data:      map[string]interface{}{"userId": a.UserID, "role": a.Role},
		}).Error
	})
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not create assignment")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, a)
}

// AcknowledgeAssignment handles POST /api/jobs/{id}/assignments/{aid}/ack.
// Only the assignee can acknowledge.
func (h *Handler) AcknowledgeAssignment(w http.ResponseWriter, r *http.Request) {
	aid, _ := strconv.Atoi(mux.Vars(r)["aid"])
	var a Assignment
	if err := h.DB.First(&a, aid).Error; err != nil {
		utils.RespondError(w, http.StatusNotFound, "assignment not found")
		return
	}
	if a.UserID != auth.UserID(r) {
		utils.RespondError(w, http.StatusForbidden, "only the assignee can acknowledge")
		return
	}
	now := time.Now()
	a.AcknowledgedAt = &now
	if err := h.Repository.SaveAssignment(h.DB, &a); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not acknowledge")
		return
	}
	utils.RespondJSON(w, http.StatusOK, a)
}

// AddNote handles POST /api/jobs/{id}/notes.
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	if j := h.requireJobAccess(w, r, uint(id)); j == nil {
		return
	}
	var n Note
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if n.Body == "" {
		utils.RespondError(w, http.StatusBadRequest, "body is required")
		return
	}
	if n.Visibility == "" {
		n.Visibility = NoteInternal
	}
	if n.Visibility != NoteInternal && n.Visibility != NoteTech && n.Visibility != NoteCustomer {
		utils.RespondError(w, http.StatusBadRequest, "invalid visibility")
		return
	}
	// Field roles cannot write office-only notes.
	if isFieldRole(auth.Role(r)) && n.Visibility == NoteInternal {
		n.Visibility = NoteTech
	}
	n.JobID = uint(id)
	n.AuthorID = auth.UserID(r)
	if err := h.Repository.SaveNote(h.DB, &n); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not save note")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, n)
}

// ListNotes handles GET /api/jobs/{id}/notes, filtered by role visibility.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	if j := h.requireJobAccess(w, r, uint(id)); j == nil {
		return
	}
	var visibilities []string
	if isFieldRole(auth.Role(r)) {
		visibilities = []string{NoteTech, NoteCustomer}
	}
	list, err := h.Repository.ListNotes(h.DB, uint(id), visibilities)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not list notes")
		return
	}
	utils.RespondJSON(w, http.StatusOK, list)
}

// ListEvents handles GET /api/jobs/{id}/events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	if j := h.requireJobAccess(w, r, uint(id)); j == nil {
		return
	}
	list, err := h.Repository.ListEvents(h.DB, uint(id))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not list events")
		return
	}
	utils.RespondJSON(w, http.StatusOK, list)
}

// AddChecklist handles POST /api/jobs/{id}/checklists.
func (h *Handler) AddChecklist(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	if j := h.requireJobAccess(w, r, uint(id)); j == nil {
		return
	}
	var c Checklist
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	c.JobID = uint(id)
	if err := h.Repository.SaveChecklist(h.DB, &c); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not save checklist")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, c)
}

// UpdateChecklist handles PUT /api/jobs/{id}/checklists/{cid}.
func (h *Handler) UpdateChecklist(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	cid, _ := strconv.Atoi(mux.Vars(r)["cid"])
	if j := h.requireJobAccess(w, r, uint(id)); j == nil {
		return
	}
	var existing Checklist
	if err := h.DB.Where("job_id = ?", id).First(&existing, cid).Error; err != nil {
		utils.RespondError(w, http.StatusNotFound, "checklist not found")
		return
	}
	var c Checklist
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	existing.Name = c.Name
	existing.Items = c.Items
	if err := h.Repository.SaveChecklist(h.DB, &existing); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not update checklist")
		return
	}
	utils.RespondJSON(w, http.StatusOK, existing)
}

// AddPhoto handles POST /api/jobs/{id}/photos (metadata only).
func (h *Handler) AddPhoto(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	if j := h.requireJobAccess(w, r, uint(id)); j == nil {
		return
	}
	var p Photo
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if p.URL == "" {
		utils.RespondError(w, http.StatusBadRequest, "url is required")
		return
	}
	p.JobID = uint(id)
	p.UploaderID = auth.UserID(r)
	if err := h.Repository.SavePhoto(h.DB, &p); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not save photo")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, p)
}
