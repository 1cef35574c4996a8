package payment

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/invoice"
)

func postPayment(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/payments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	return rec
}

func TestCreateRejectsMismatchedCustomer(t *testing.T) {
	db := newPaymentTestDB(t)
	h := NewHandler(db, nil, zap.NewNop().Sugar())
	inv := seedInvoice(t, db, 500, nil)

	rec := postPayment(t, h, `{"invoiceId":1,"customerId":99,"amount":500,"method":"check"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "does not match")

	var count int64
	require.NoError(t, db.Model(&Payment{}).Count(&count).Error)
	assert.Zero(t, count)

	var got invoice.Invoice
	require.NoError(t, db.First(&got, inv.ID).Error)
	assert.Zero(t, got.AmountPaid)
}

func TestCreateDerivesCustomerFromInvoice(t *testing.T) {
	db := newPaymentTestDB(t)
	h := NewHandler(db, nil, zap.NewNop().Sugar())
	inv := seedInvoice(t, db, 500, nil)

	rec := postPayment(t, h, `{"invoiceId":1,"amount":500,"method":"cash"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var p Payment
	require.NoError(t, db.Where("invoice_id = ?", inv.ID).First(&p).Error)
	assert.Equal(t, inv.CustomerID, p.CustomerID)
	assert.Equal(t, StatusCompleted, p.Status)

	var got invoice.Invoice
	require.NoError(t, db.First(&got, inv.ID).Error)
	assert.Equal(t, 500.0, got.AmountPaid)
	assert.Equal(t, invoice.StatusPaid, got.Status)
}

func TestCreateValidation(t *testing.T) {
	db := newPaymentTestDB(t)
	h := NewHandler(db, nil, zap.NewNop().Sugar())
	seedInvoice(t, db, 500, nil)

	for _, body := range []string{
		`{"amount":100,"method":"check"}`,
		`{"invoiceId":1,"amount":0,"method":"check"}`,
		`{"invoiceId":1,"amount":-5,"method":"check"}`,
	} {
		rec := postPayment(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	rec := postPayment(t, h, `{"invoiceId":42,"amount":100,"method":"check"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
