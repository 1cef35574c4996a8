package customerlink

import (
	"time"

	"gorm.io/gorm"

	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/utils"
)

type Repository interface {
	Mint(db *gorm.DB, customerID uint, linkType string, quoteID, jobID *uint, ttl time.Duration, maxUses int) (*CustomerLink, error)
	FindByToken(db *gorm.DB, token string) (*CustomerLink, error)
	RecordUse(db *gorm.DB, l *CustomerLink) error
	ListForCustomer(db *gorm.DB, customerID uint) ([]CustomerLink, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

// Mint creates a link with a fresh 32-byte token.
func (r *repositoryImpl) Mint(db *gorm.DB, customerID uint, linkType string, quoteID, jobID *uint, ttl time.Duration, maxUses int) (*CustomerLink, error) {
	token, err := utils.GenerateToken(32)
	if err != nil {
		return nil, err
	}
	l := CustomerLink{
		CustomerID: customerID,
		Token:      token,
		LinkType:   linkType,
		QuoteID:    quoteID,
		JobID:      jobID,
		ExpiresAt:  time.Now().Add(ttl),
		MaxUses:    maxUses,
	}
	if err := db.Create(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repositoryImpl) FindByToken(db *gorm.DB, token string) (*CustomerLink, error) {
	var l CustomerLink
	err := db.Where("token = ?", token).First(&l).Error
	return &l, err
}

func (r *repositoryImpl) RecordUse(db *gorm.DB, l *CustomerLink) error {
	now := time.Now()
	l.UseCount++
	l.LastUsedAt = &now
	return db.Save(l).Error
}

func (r *repositoryImpl) ListForCustomer(db *gorm.DB, customerID uint) ([]CustomerLink, error) {
	var list []CustomerLink
	err := db.Where("customer_id = ?", customerID).Order("id desc").Find(&list).Error
	return list, err
}
