package payment

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/invoice"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/quote"
)

func newPaymentTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Payment{}, &invoice.Invoice{}, &quote.Quote{}))
	return db
}

func seedInvoice(t *testing.T, db *gorm.DB, total float64, quoteID *uint) *invoice.Invoice {
	t.Helper()
	inv := invoice.Invoice{
		InvoiceNumber: "INV-2026-0001",
		CustomerID:    1,
		QuoteID:       quoteID,
		Total:         total,
		Status:        invoice.StatusSent,
	}
	require.NoError(t, db.Create(&inv).Error)
	return &inv
}

func TestRecordPartialThenPaid(t *testing.T) {
	db := newPaymentTestDB(t)
	repo := NewRepository()
	inv := seedInvoice(t, db, 1000, nil)

	require.NoError(t, repo.Record(db, &Payment{
		InvoiceID:  inv.ID,
		CustomerID: inv.CustomerID,
		Amount:     400,
		Method:     "check",
	}))

	var got invoice.Invoice
	require.NoError(t, db.First(&got, inv.ID).Error)
	assert.Equal(t, 400.0, got.AmountPaid)
	assert.Equal(t, invoice.StatusPartial, got.Status)
	assert.Nil(t, got.PaidAt)

	require.NoError(t, repo.Record(db, &Payment{
		InvoiceID:  inv.ID,
		CustomerID: inv.CustomerID,
		Amount:     600,
		Method:     "card",
	}))

	require.NoError(t, db.First(&got, inv.ID).Error)
	assert.Equal(t, 1000.0, got.AmountPaid)
	assert.Equal(t, invoice.StatusPaid, got.Status)
	require.NotNil(t, got.PaidAt)
}

func TestRecordDefaultsStatusAndDate(t *testing.T) {
	db := newPaymentTestDB(t)
	repo := NewRepository()
	inv := seedInvoice(t, db, 250, nil)

	p := Payment{InvoiceID: inv.ID, CustomerID: 1, Amount: 250}
	require.NoError(t, repo.Record(db, &p))

	assert.Equal(t, StatusCompleted, p.Status)
	require.NotNil(t, p.PaymentDate)
}

func TestRecordDuplicateProcessorTxnIsNoOp(t *testing.T) {
	db := newPaymentTestDB(t)
	repo := NewRepository()
	inv := seedInvoice(t, db, 1000, nil)

	first := Payment{
		InvoiceID:      inv.ID,
		CustomerID:     1,
		Amount:         1000,
		ProcessorTxnID: "pi_abc123",
	}
	require.NoError(t, repo.Record(db, &first))

	// A redelivered webhook carries the same processor transaction id.
	err := repo.Record(db, &Payment{
		InvoiceID:      inv.ID,
		CustomerID:     1,
		Amount:         1000,
		ProcessorTxnID: "pi_abc123",
	})
	require.ErrorIs(t, err, ErrDuplicate)

	var got invoice.Invoice
	require.NoError(t, db.First(&got, inv.ID).Error)
	assert.Equal(t, 1000.0, got.AmountPaid)

	var count int64
	require.NoError(t, db.Model(&Payment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecordPaidInvoiceMarksQuotePaid(t *testing.T) {
	db := newPaymentTestDB(t)
	repo := NewRepository()

	q := quote.Quote{QuoteType: quote.TypeInstallation, Status: quote.StatusAccepted}
	require.NoError(t, db.Create(&q).Error)
	inv := seedInvoice(t, db, 500, &q.ID)

	require.NoError(t, repo.Record(db, &Payment{
		InvoiceID:  inv.ID,
		CustomerID: 1,
		Amount:     500,
	}))

	var gotQuote quote.Quote
	require.NoError(t, db.First(&gotQuote, q.ID).Error)
	assert.Equal(t, quote.StatusPaid, gotQuote.Status)
}

func TestRecordPartialPaymentLeavesQuoteUntouched(t *testing.T) {
	db := newPaymentTestDB(t)
	repo := NewRepository()

	q := quote.Quote{QuoteType: quote.TypeInstallation, Status: quote.StatusAccepted}
	require.NoError(t, db.Create(&q).Error)
	inv := seedInvoice(t, db, 500, &q.ID)

	require.NoError(t, repo.Record(db, &Payment{
		InvoiceID:  inv.ID,
		CustomerID: 1,
		Amount:     100,
	}))

	var gotQuote quote.Quote
	require.NoError(t, db.First(&gotQuote, q.ID).Error)
	assert.Equal(t, quote.StatusAccepted, gotQuote.Status)
}

func TestRecordUnknownInvoiceFails(t *testing.T) {
	db := newPaymentTestDB(t)
	repo := NewRepository()

	err := repo.Record(db, &Payment{InvoiceID: 999, CustomerID: 1, Amount: 50})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
