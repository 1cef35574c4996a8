package qr

import (
	"time"

	"gorm.io/gorm"
)

// Code maps a short slug printed on equipment stickers and mailers to a
// target URL.
type Code struct {
	gorm.Model
	Slug      string `json:"slug" gorm:"uniqueIndex;size:64;not null"`
	TargetURL string `json:"targetUrl" gorm:"not null"`
	Label     string `json:"label"`
	Active    bool   `json:"active" gorm:"default:true"`
}

// Scan is one logged redirect through a code. Written fire-and-forget.
type Scan struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	CodeID    uint      `json:"codeId" gorm:"not null;index"`
	UserAgent string    `json:"userAgent"`
	Referer   string    `json:"referer"`
	RemoteIP  string    `json:"remoteIp"`
}
