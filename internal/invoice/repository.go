package invoice

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Save(db *gorm.DB, inv *Invoice) error
	FindByID(db *gorm.DB, id uint) (*Invoice, error)
	FindByIDForUpdate(db *gorm.DB, id uint) (*Invoice, error)
	FindByJobID(db *gorm.DB, jobID uint) (*Invoice, error)
	FindByCheckoutSession(db *gorm.DB, sessionID string) (*Invoice, error)
	ListAll(db *gorm.DB) ([]Invoice, error)
	ListForCustomer(db *gorm.DB, customerID uint) ([]Invoice, error)
	Delete(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Save(db *gorm.DB, inv *Invoice) error {
	return db.Save(inv).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Invoice, error) {
	var inv Invoice
	err := db.First(&inv, id).Error
	return &inv, err
}

// FindByIDForUpdate locks the row for the duration of the surrounding
// transaction. Payment reconciliation reads totals through this.
func (r *repositoryImpl) FindByIDForUpdate(db *gorm.DB, id uint) (*Invoice, error) {
	var inv Invoice
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&inv, id).Error
	return &inv, err
}

func (r *repositoryImpl) FindByJobID(db *gorm.DB, jobID uint) (*Invoice, error) {
	var inv Invoice
	err := db.Where("job_id = ?", jobID).First(&inv).Error
	return &inv, err
}

func (r *repositoryImpl) FindByCheckoutSession(db *gorm.DB, sessionID string) (*Invoice, error) {
	var inv Invoice
	err := db.Where("checkout_session_id = ?", sessionID).First(&inv).Error
	return &inv, err
}

func (r *repositoryImpl) ListAll(db *gorm.DB) ([]Invoice, error) {
	var list []Invoice
	err := db.Order("id desc").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListForCustomer(db *gorm.DB, customerID uint) ([]Invoice, error) {
	var list []Invoice
	err := db.Where("customer_id = ?", customerID).Order("id desc").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&Invoice{}, id).Error
}
