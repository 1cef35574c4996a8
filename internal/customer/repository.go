package customer

import (
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	Save(db *gorm.DB, c *Customer) error
	FindByID(db *gorm.DB, id uint) (*Customer, error)
	FindByEmail(db *gorm.DB, email string) (*Customer, error)
	UpsertByEmail(db *gorm.DB, c *Customer) (*Customer, error)
	ListAll(db *gorm.DB) ([]Customer, error)
	Delete(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Save(db *gorm.DB, c *Customer) error {
	return db.Save(c).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Customer, error) {
	var c Customer
	err := db.First(&c, id).Error
	return &c, err
}

func (r *repositoryImpl) FindByEmail(db *gorm.DB, email string) (*Customer, error) {
	var c Customer
	err := db.Where("email = ?", email).First(&c).Error
	return &c, err
}

// UpsertByEmail updates the existing record for the email or creates a new
// one, inside a transaction so a concurrent first write does not leave two
// rows behind the unique index.
func (r *repositoryImpl) UpsertByEmail(db *gorm.DB, c *Customer) (*Customer, error) {
	var out Customer
	err := db.Transaction(func(tx *gorm.DB) error {
		var existing Customer
		err := tx.Where("email = ?", c.Email).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if c.Status == "" {
				c.Status = "active"
			}
			if err := tx.Create(c).Error; err != nil {
				return err
			}
			out = *c
			return nil
		}
		if err != nil {
			return err
		}

		if c.Name != "" {
			existing.Name = c.Name
		}
		if c.Phone != "" {
			existing.Phone = c.Phone
		}
		if c.CompanyName != "" {
			existing.CompanyName = c.CompanyName
		}
		if c.Address != "" {
			existing.Address = c.Address
		}
		if c.City != "" {
			existing.City = c.City
		}
		if c.State != "" {
			existing.State = c.State
		}
		if c.Zip != "" {
			existing.Zip = c.Zip
		}
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		out = existing
		return nil
	})
	return &out, err
}

func (r *repositoryImpl) ListAll(db *gorm.DB) ([]Customer, error) {
	var list []Customer
	err := db.Order("id").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&Customer{}, id).Error
}
