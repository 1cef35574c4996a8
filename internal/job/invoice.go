package job

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/auth"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/customer"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/invoice"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/sequence"
	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/utils"
)

// CreateInvoice handles POST /api/jobs/{id}/create-invoice. One invoice per
// job: line items come from the parsed scope summary (or a single line for
// the job total), the customer is resolved or created from the job's
// embedded email, and the job moves to invoiced. The whole workflow runs in
// one transaction.
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var created invoice.Invoice
	customers := customer.NewRepository()

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var j Job
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&j, id).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&invoice.Invoice{}).Where("job_id = ?", j.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errAlreadyInvoiced
		}

		cust, err := resolveJobCustomer(tx, customers, &j)
		if err != nil {
			return err
		}

		var items []invoice.LineItem
		if lines := ParseScopeSummary(j.ScopeSummary); len(lines) > 0 {
			for _, l := range DistributeTotal(lines, j.TotalAmount) {
				items = append(items, invoice.LineItem{
					Description: l.Description,
					Quantity:    l.Quantity,
					UnitPrice:   l.UnitPrice,
					Total:       l.Total,
				})
			}
		} else {
			items = []invoice.LineItem{{
				Description: j.JobType + " - job " + j.JobNumber,
				Quantity:    1,
				UnitPrice:   utils.Round2(j.TotalAmount),
			}}
		}

		number, err := sequence.Next(tx, "invoice", "INV", time.Now().Year())
		if err != nil {
			return err
		}

		created = invoice.Invoice{
			InvoiceNumber: number,
			CustomerID:    cust.ID,
			JobID:         &j.ID,
			QuoteID:       j.QuoteID,
			Items:         items,
			TaxRate:       h.TaxRate,
			Status:        invoice.StatusDraft,
		}
		created.ComputeTotals()
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		j.Status = StatusInvoiced
		if err := tx.Save(&j).Error; err != nil {
			return err
		}

		return tx.Create(&Event{
			JobID:     j.ID,
			EventType: "invoiced",
			ActorID:   auth.UserID(r),
			Data: map[string]interface{}{
				"invoiceId":     created.ID,
				"invoiceNumber": created.InvoiceNumber,
				"total":         created.Total,
			},
		}).Error
	})

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondError(w, http.StatusNotFound, "job not found")
	case errors.Is(err, errAlreadyInvoiced):
		utils.RespondError(w, http.StatusBadRequest, "job already has an invoice")
	case errors.Is(err, errNoCustomerEmail):
		utils.RespondError(w, http.StatusBadRequest, "job has no customer email")
	case err != nil:
		h.Log.Errorw("invoice generation failed", "job", id, "err", err)
		utils.RespondError(w, http.StatusInternalServerError, "could not create invoice")
	default:
		utils.RespondJSON(w, http.StatusCreated, created)
	}
}

var (
	errAlreadyInvoiced = errors.New("job already invoiced")
	errNoCustomerEmail = errors.New("job has no customer email")
)

// resolveJobCustomer finds the Customer for the job's embedded email,
// creating an active record with the state defaulted to TX when absent.
func resolveJobCustomer(tx *gorm.DB, customers customer.Repository, j *Job) (*customer.Customer, error) {
	if j.Customer.Email == "" {
		return nil, errNoCustomerEmail
	}
	cust, err := customers.FindByEmail(tx, j.Customer.Email)
	if err == nil {
		return cust, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	fresh := &customer.Customer{
		Name:   j.Customer.Name,
		Email:  j.Customer.Email,
		Phone:  j.Customer.Phone,
		State:  "TX",
		Status: "active",
	}
	if err := tx.Create(fresh).Error; err != nil {
		return nil, err
	}
	return fresh, nil
}
