package payment

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/invoice"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/quote"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/utils"
)

// ErrDuplicate means the processor transaction was already recorded; the
// caller should treat the operation as already done.
var ErrDuplicate = errors.New("payment already recorded for this transaction")

type Repository interface {
	// Record inserts the payment and reconciles the invoice inside one
	// transaction: amount_paid is incremented under a row lock and the
	// invoice moves to partial or paid.
	Record(db *gorm.DB, p *Payment) error
	FindByID(db *gorm.DB, id uint) (*Payment, error)
	FindByProcessorTxn(db *gorm.DB, txnID string) (*Payment, error)
	ListAll(db *gorm.DB) ([]Payment, error)
	ListForInvoice(db *gorm.DB, invoiceID uint) ([]Payment, error)
	Save(db *gorm.DB, p *Payment) error
}

type repositoryImpl struct {
	invoices invoice.Repository
}

func NewRepository() Repository {
	return &repositoryImpl{invoices: invoice.NewRepository()}
}

func (r *repositoryImpl) Record(db *gorm.DB, p *Payment) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if p.ProcessorTxnID != "" {
			var count int64
			err := tx.Model(&Payment{}).
				Where("processor_txn_id = ?", p.ProcessorTxnID).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				return ErrDuplicate
			}
		}

		inv, err := r.invoices.FindByIDForUpdate(tx, p.InvoiceID)
		if err != nil {
			return err
		}

		if p.Status == "" {
			p.Status = StatusCompleted
		}
		if p.PaymentDate == nil {
			now := time.Now()
			p.PaymentDate = &now
		}
		if err := tx.Create(p).Error; err != nil {
			return err
		}

		inv.AmountPaid = utils.Round2(inv.AmountPaid + p.Amount)
		if inv.AmountPaid >= inv.Total {
			inv.Status = invoice.StatusPaid
			now := time.Now()
			inv.PaidAt = &now
		} else {
			inv.Status = invoice.StatusPartial
		}
		if err := tx.Save(inv).Error; err != nil {
			return err
		}

		// A fully paid invoice built from a quote marks the quote paid too.
		if inv.Status == invoice.StatusPaid && inv.QuoteID != nil {
			if err := tx.Model(&quote.Quote{}).
				Where("id = ?", *inv.QuoteID).
				Update("status", quote.StatusPaid).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Payment, error) {
	var p Payment
	err := db.First(&p, id).Error
	return &p, err
}

func (r *repositoryImpl) FindByProcessorTxn(db *gorm.DB, txnID string) (*Payment, error) {
	var p Payment
	err := db.Where("processor_txn_id = ?", txnID).First(&p).Error
	return &p, err
}

func (r *repositoryImpl) ListAll(db *gorm.DB) ([]Payment, error) {
	var list []Payment
	err := db.Order("id desc").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListForInvoice(db *gorm.DB, invoiceID uint) ([]Payment, error) {
	var list []Payment
	err := db.Where("invoice_id = ?", invoiceID).Order("id").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Save(db *gorm.DB, p *Payment) error {
	return db.Save(p).Error
}
