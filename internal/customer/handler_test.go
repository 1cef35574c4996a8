package customer

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCustomerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Customer{}))
	return db
}

func newCustomerRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/customers/{id}", h.Update).Methods("PUT")
	return r
}

func putCustomer(t *testing.T, r *mux.Router, id, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, "/api/customers/"+id, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestUpdateKeepsOmittedFields(t *testing.T) {
	db := newCustomerTestDB(t)
	h := NewHandler(db)
	r := newCustomerRouter(h)

	c := Customer{Name: "Acme Fire", Email: "acme@example.com", Status: "inactive"}
	require.NoError(t, db.Create(&c).Error)

	rec := putCustomer(t, r, "1", `{"name":"Acme Fire & Safety","phone":"555-0100"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got Customer
	require.NoError(t, db.First(&got, c.ID).Error)
	assert.Equal(t, "Acme Fire & Safety", got.Name)
	assert.Equal(t, "555-0100", got.Phone)
	assert.Equal(t, "acme@example.com", got.Email)
	assert.Equal(t, "inactive", got.Status)
}

func TestUpdateChangesProvidedFields(t *testing.T) {
	db := newCustomerTestDB(t)
	h := NewHandler(db)
	r := newCustomerRouter(h)

	c := Customer{Name: "Acme Fire", Email: "acme@example.com", Status: "active"}
	require.NoError(t, db.Create(&c).Error)

	rec := putCustomer(t, r, "1", `{"name":"Acme Fire","email":"billing@example.com","status":"inactive"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got Customer
	require.NoError(t, db.First(&got, c.ID).Error)
	assert.Equal(t, "billing@example.com", got.Email)
	assert.Equal(t, "inactive", got.Status)
}

func TestUpdateUnknownCustomer(t *testing.T) {
	db := newCustomerTestDB(t)
	h := NewHandler(db)
	r := newCustomerRouter(h)

	rec := putCustomer(t, r, "42", `{"name":"Nobody"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
