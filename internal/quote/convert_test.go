package quote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/job"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/sequence"
)

func newConvertTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&Quote{},
		&job.Job{},
		&job.Assignment{},
		&job.Event{},
		&sequence.Sequence{},
	))
	return db
}

func newConvertRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/quotes/{id}/convert-to-job", h.ConvertToJob).Methods("POST")
	return r
}

func postConvert(t *testing.T, r *mux.Router, quoteID uint, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/quotes/%d/convert-to-job", quoteID), bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func acceptedQuote(t *testing.T, db *gorm.DB) *Quote {
	t.Helper()
	q := Quote{
		QuoteType: TypeInstallation,
		Customer:  CustomerSnapshot{Name: "Maria Lopez", Email: "maria@example.com"},
		Site:      SiteSnapshot{Address: "400 Congress Ave", City: "Austin", State: "TX", Zip: "78701"},
		Items: []LineItem{
			{Description: "Smoke Detector", Quantity: 2, UnitPrice: 100},
			{Description: "Pull Station", Quantity: 1, UnitPrice: 100},
		},
		TaxRate: 0.0825,
		Status:  StatusAccepted,
	}
	q.ComputeTotals()
	require.NoError(t, db.Create(&q).Error)
	return &q
}

func TestConvertAcceptedQuote(t *testing.T) {
	db := newConvertTestDB(t)
	h := NewHandler(db, 0.0825, zap.NewNop().Sugar())
	r := newConvertRouter(h)
	q := acceptedQuote(t, db)

	rec := postConvert(t, r, q.ID, map[string]any{})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created job.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	assert.Equal(t, fmt.Sprintf("JOB-%d-0001", time.Now().Year()), created.JobNumber)
	assert.Equal(t, job.StatusPending, created.Status)
	require.NotNil(t, created.QuoteID)
	assert.Equal(t, q.ID, *created.QuoteID)
	assert.Equal(t, TypeInstallation, created.JobType)
	assert.Equal(t, "2x Smoke Detector\n1x Pull Station", created.ScopeSummary)
	assert.Equal(t, q.Total, created.TotalAmount)
	assert.Equal(t, "maria@example.com", created.Customer.Email)

	var events []job.Event
	require.NoError(t, db.Where("job_id = ?", created.ID).Order("id").Find(&events).Error)
	require.Len(t, events, 2)
	assert.Equal(t, "converted_from_quote", events[0].EventType)
	assert.Equal(t, "created", events[1].EventType)
}

func TestConvertSchedulesAndAssigns(t *testing.T) {
	db := newConvertTestDB(t)
	h := NewHandler(db, 0.0825, zap.NewNop().Sugar())
	r := newConvertRouter(h)
	q := acceptedQuote(t, db)

	when := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	rec := postConvert(t, r, q.ID, map[string]any{
		"jobType":         "installation",
		"scheduledDate":   when,
		"assignedUserIds": []uint{7, 9},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created job.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, job.StatusScheduled, created.Status)

	var assignments []job.Assignment
	require.NoError(t, db.Where("job_id = ?", created.ID).Order("user_id").Find(&assignments).Error)
	require.Len(t, assignments, 2)
	assert.Equal(t, uint(7), assignments[0].UserID)
	assert.Equal(t, uint(9), assignments[1].UserID)
}

func TestConvertRejectsDraftQuote(t *testing.T) {
	db := newConvertTestDB(t)
	h := NewHandler(db, 0.0825, zap.NewNop().Sugar())
	r := newConvertRouter(h)

	q := acceptedQuote(t, db)
	require.NoError(t, db.Model(q).Update("status", StatusDraft).Error)

	rec := postConvert(t, r, q.ID, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var count int64
	require.NoError(t, db.Model(&job.Job{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestConvertTwiceConflicts(t *testing.T) {
	db := newConvertTestDB(t)
	h := NewHandler(db, 0.0825, zap.NewNop().Sugar())
	r := newConvertRouter(h)
	q := acceptedQuote(t, db)

	require.Equal(t, http.StatusCreated, postConvert(t, r, q.ID, map[string]any{}).Code)

	rec := postConvert(t, r, q.ID, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already converted")

	var count int64
	require.NoError(t, db.Model(&job.Job{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestConvertUnknownQuote(t *testing.T) {
	db := newConvertTestDB(t)
	h := NewHandler(db, 0.0825, zap.NewNop().Sugar())
	r := newConvertRouter(h)

	rec := postConvert(t, r, 999, map[string]any{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
