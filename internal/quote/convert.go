package quote

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/auth"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/job"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/utils"
)

type convertRequest struct {
	JobType       string     `json:"jobType"`
	ScheduledDate *time.Time `json:"scheduledDate"`
	AssignedIDs   []uint     `json:"assignedUserIds"`
	Notes         string     `json:"notes"`
}

type conflictError struct{ jobNumber string }

func (e *conflictError) Error() string {
	return fmt.Sprintf("quote already converted to job %s", e.jobNumber)
}

var errWrongStatus = errors.New("quote is not accepted or paid")

// ConvertToJob handles POST /api/quotes/{id}/convert-to-job. An accepted or
// paid quote converts at most once: the quote row is locked, the existing-job
// check and the job insert run in the same transaction.
func (h *Handler) ConvertToJob(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req convertRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	var created job.Job
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		q, err := h.Repository.FindByIDForUpdate(tx, uint(id))
		if err != nil {
			return err
		}
		if q.Status != StatusAccepted && q.Status != StatusPaid {
			return errWrongStatus
		}

		var existing job.Job
		err = tx.Where("quote_id = ?", q.ID).First(&existing).Error
		if err == nil {
			return &conflictError{jobNumber: existing.JobNumber}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		number, err := job.NextJobNumber(tx, time.Now().Year())
		if err != nil {
			return err
		}

		jobType := req.JobType
		if jobType == "" {
			jobType = q.QuoteType
		}
		created = job.Job{
			JobNumber: number,
			QuoteID:   &q.ID,
			Customer: job.CustomerSnapshot{
				Name:  q.Customer.Name,
				Email: q.Customer.Email,
				Phone: q.Customer.Phone,
			},
			Site: job.SiteSnapshot{
				Name:    q.Site.Name,
				Address: q.Site.Address,
				City:    q.Site.City,
				State:   q.Site.State,
				Zip:     q.Site.Zip,
			},
			JobType:       jobType,
			Status:        job.StatusPending,
			ScopeSummary:  ScopeSummary(q.Items),
			TotalAmount:   q.Total,
			ScheduledDate: req.ScheduledDate,
			Notes:         req.Notes,
		}
		if req.ScheduledDate != nil {
			created.Status = job.StatusScheduled
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		for _, uid := range req.AssignedIDs {
			if err := tx.Create(&job.Assignment{JobID: created.ID, UserID: uid, Role: "tech"}).Error; err != nil {
				return err
			}
		}

		actor := auth.UserID(r)
		if err := tx.Create(&job.Event{
			JobID:     created.ID,
			EventType: "converted_from_quote",
			ActorID:   actor,
			Data:      map[string]interface{}{"quoteId": q.ID, "total": q.Total},
		}).Error; err != nil {
			return err
		}
		return tx.Create(&job.Event{
			JobID:     created.ID,
			EventType: "created",
			ActorID:   actor,
		}).Error
	})

	var conflict *conflictError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondError(w, http.StatusNotFound, "quote not found")
	case errors.Is(err, errWrongStatus):
		utils.RespondError(w, http.StatusBadRequest, "quote must be accepted or paid before conversion")
	case errors.As(err, &conflict):
		utils.RespondError(w, http.StatusBadRequest, conflict.Error())
	case err != nil:
		h.Log.Errorw("quote conversion failed", "quote", id, "err", err)
		utils.RespondError(w, http.StatusInternalServerError, "could not convert quote")
	default:
		utils.RespondJSON(w, http.StatusCreated, created)
	}
}

// ScopeSummary flattens quote line items into the job's newline-delimited
// scope text, one "<qty>x <description>" line per item.
func ScopeSummary(items []LineItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		qty := int(item.Quantity)
		if qty < 1 {
			qty = 1
		}
		lines = append(lines, fmt.Sprintf("%dx %s", qty, item.Description))
	}
	return strings.Join(lines, "\n")
}
