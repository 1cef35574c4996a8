package customer

import "gorm.io/gorm"

// Customer is the billing/contact record behind quotes, jobs and invoices.
// Email is the business key: saves with a known email update in place.
type Customer struct {
	gorm.Model
	Name        string `json:"name"`
	Email       string `json:"email" gorm:"uniqueIndex;not null"`
	Phone       string `json:"phone"`
	CompanyName string `json:"companyName"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state" gorm:"size:2"`
	Zip         string `json:"zip"`
	Notes       string `json:"notes"`
	Status      string `json:"status" gorm:"size:50;default:active"` // active | inactive
}
