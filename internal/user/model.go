package user

import "gorm.io/gorm"

// Profile is a back-office or field user account.
type Profile struct {
	gorm.Model
	Name         string `json:"name"`
	Email        string `json:"email" gorm:"unique;not null"`
	Phone        string `json:"phone"`
	Role         string `json:"role" gorm:"size:50;not null;default:technician"`
	PasswordHash string `json:"-"`
	Active       bool   `json:"active" gorm:"default:true"`
	TeamID       *uint  `json:"teamId" gorm:"index"`

	// Invite flow: the one-time token sent by an admin, cleared once the
	// account sets its password.
	InviteToken string `json:"-" gorm:"index"`
}

// Team groups field users for scheduling.
type Team struct {
	gorm.Model
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Members     []Profile `json:"members,omitempty" gorm:"foreignKey:TeamID"`
}
