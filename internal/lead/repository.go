package lead

import "gorm.io/gorm"

type Repository interface {
	Save(db *gorm.DB, l *Lead) error
	FindByID(db *gorm.DB, id uint) (*Lead, error)
	ListAll(db *gorm.DB) ([]Lead, error)
	ListByStatus(db *gorm.DB, status string) ([]Lead, error)
	Delete(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Save(db *gorm.DB, l *Lead) error {
	return db.Save(l).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Lead, error) {
	var l Lead
	err := db.First(&l, id).Error
	return &l, err
}

func (r *repositoryImpl) ListAll(db *gorm.DB) ([]Lead, error) {
	var list []Lead
	err := db.Order("id desc").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListByStatus(db *gorm.DB, status string) ([]Lead, error) {
	var list []Lead
	err := db.Where("status = ?", status).Order("id desc").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&Lead{}, id).Error
}
