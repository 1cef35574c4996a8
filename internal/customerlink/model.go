package customerlink

import (
	"time"

	"gorm.io/gorm"
)

// Link types.
const (
	TypeQuote  = "quote"
	TypeJob    = "job"
	TypePortal = "portal"
)

// CustomerLink is a tokenized, time-boxed URL that lets a customer open a
// specific quote, job or the general portal without a login. The token is
// 32 random bytes, URL-safe base64 (43 characters).
type CustomerLink struct {
	gorm.Model
	CustomerID uint       `json:"customerId" gorm:"not null;index"`
	Token      string     `json:"token" gorm:"uniqueIndex;size:64;not null"`
	LinkType   string     `json:"linkType" gorm:"size:20;not null"`
	QuoteID    *uint      `json:"quoteId,omitempty"`
	JobID      *uint      `json:"jobId,omitempty"`
	ExpiresAt  time.Time  `json:"expiresAt"`
	MaxUses    int        `json:"maxUses"` // 0 = unlimited
	UseCount   int        `json:"useCount"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
}

// Expired reports whether the link can no longer be used.
func (l *CustomerLink) Expired(now time.Time) bool {
	if now.After(l.ExpiresAt) {
		return true
	}
	return l.MaxUses > 0 && l.UseCount >= l.MaxUses
}
