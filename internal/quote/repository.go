package quote

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Save(db *gorm.DB, q *Quote) error
	FindByID(db *gorm.DB, id uint) (*Quote, error)
	FindByIDForUpdate(db *gorm.DB, id uint) (*Quote, error)
	ListAll(db *gorm.DB) ([]Quote, error)
	ListByStatus(db *gorm.DB, status string) ([]Quote, error)
	Delete(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Save(db *gorm.DB, q *Quote) error {
	return db.Save(q).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Quote, error) {
	var q Quote
	err := db.First(&q, id).Error
	return &q, err
}

// FindByIDForUpdate locks the quote row for the surrounding transaction.
// Conversion to a job reads the quote through this so two concurrent
// conversions serialize.
func (r *repositoryImpl) FindByIDForUpdate(db *gorm.DB, id uint) (*Quote, error) {
	var q Quote
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&q, id).Error
	return &q, err
}

func (r *repositoryImpl) ListAll(db *gorm.DB) ([]Quote, error) {
	var list []Quote
	err := db.Order("id desc").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListByStatus(db *gorm.DB, status string) ([]Quote, error) {
	var list []Quote
	err := db.Where("status = ?", status).Order("id desc").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&Quote{}, id).Error
}
