package lead

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/customer"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/customerlink"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/notifier"
)

func newLeadTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Lead{}, &customer.Customer{}, &customerlink.CustomerLink{}))
	return db
}

func newLeadHandler(db *gorm.DB) *Handler {
	log := zap.NewNop().Sugar()
	return NewHandler(db, notifier.New("", "", "", log), log)
}

func postLead(t *testing.T, h *Handler, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/leads", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	return rec
}

func TestCreateLeadFromPublicForm(t *testing.T) {
	db := newLeadTestDB(t)
	h := newLeadHandler(db)

	rec := postLead(t, h, map[string]any{
		"name":    "Dana Whitfield",
		"email":   "dana@acmewarehouse.com",
		"phone":   "512-555-0180",
		"message": "Need an inspection quote for our warehouse",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var got Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, StatusNew, got.Status)
	assert.Equal(t, "website", got.Source)
	assert.NotZero(t, got.ID)
}

func TestCreateLeadValidation(t *testing.T) {
	db := newLeadTestDB(t)
	h := newLeadHandler(db)

	// Missing name.
	rec := postLead(t, h, map[string]any{"email": "dana@acmewarehouse.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Malformed email.
	rec = postLead(t, h, map[string]any{"name": "Dana", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var count int64
	require.NoError(t, db.Model(&Lead{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateLeadKeepsExplicitSource(t *testing.T) {
	db := newLeadTestDB(t)
	h := newLeadHandler(db)

	rec := postLead(t, h, map[string]any{
		"name":   "Dana Whitfield",
		"email":  "dana@acmewarehouse.com",
		"source": "referral",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var got Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "referral", got.Source)
}

func grantAccess(t *testing.T, h *Handler, leadID uint) *httptest.ResponseRecorder {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/api/leads/{id}/grant-access", h.GrantAccess).Methods("POST")
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/leads/%d/grant-access", leadID), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGrantAccessPromotesLead(t *testing.T) {
	db := newLeadTestDB(t)
	h := newLeadHandler(db)

	l := Lead{Name: "Dana Whitfield", Email: "dana@acmewarehouse.com", Phone: "512-555-0180", Status: StatusQualified}
	require.NoError(t, db.Create(&l).Error)

	rec := grantAccess(t, h, l.ID)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Lead     Lead                      `json:"lead"`
		Customer customer.Customer         `json:"customer"`
		Link     customerlink.CustomerLink `json:"link"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, StatusWon, resp.Lead.Status)
	require.NotNil(t, resp.Lead.CustomerID)
	assert.Equal(t, resp.Customer.ID, *resp.Lead.CustomerID)

	assert.Equal(t, "dana@acmewarehouse.com", resp.Customer.Email)
	assert.Equal(t, "active", resp.Customer.Status)

	assert.Equal(t, customerlink.TypePortal, resp.Link.LinkType)
	assert.Len(t, resp.Link.Token, 43)
	assert.Equal(t, resp.Customer.ID, resp.Link.CustomerID)
}

func TestGrantAccessReusesExistingCustomer(t *testing.T) {
	db := newLeadTestDB(t)
	h := newLeadHandler(db)

	existing := customer.Customer{Name: "Acme Warehouse", Email: "dana@acmewarehouse.com", Status: "active"}
	require.NoError(t, db.Create(&existing).Error)

	l := Lead{Name: "Dana Whitfield", Email: "dana@acmewarehouse.com", Status: StatusQualified}
	require.NoError(t, db.Create(&l).Error)

	rec := grantAccess(t, h, l.ID)
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, db.Model(&customer.Customer{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var got Lead
	require.NoError(t, db.First(&got, l.ID).Error)
	require.NotNil(t, got.CustomerID)
	assert.Equal(t, existing.ID, *got.CustomerID)
}

func TestGrantAccessUnknownLead(t *testing.T) {
	db := newLeadTestDB(t)
	h := newLeadHandler(db)

	rec := grantAccess(t, h, 999)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
