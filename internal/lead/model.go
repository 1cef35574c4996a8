package lead

import "gorm.io/gorm"

// Lead statuses. A lead ends either won (promoted to Customer) or lost.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusQualified = "qualified"
	StatusProposal  = "proposal"
	StatusWon       = "won"
	StatusLost      = "lost"
)

// Lead is an unqualified prospect captured from the public site or an
// AI-driven intake tool.
type Lead struct {
	gorm.Model
	Name             string `json:"name" gorm:"not null"`
	Email            string `json:"email" gorm:"not null;index"`
	Phone            string `json:"phone"`
	Message          string `json:"message"`
	PreferredContact string `json:"preferredContact"`
	Source           string `json:"source" gorm:"size:100"`
	Status           string `json:"status" gorm:"size:50;default:new"`
	CustomerID       *uint  `json:"customerId,omitempty"` // set when the lead is won
}

var validStatuses = map[string]bool{
	StatusNew:       true,
	StatusContacted: true,
	StatusQualified: true,
	StatusProposal:  true,
	StatusWon:       true,
	StatusLost:      true,
}

// ValidStatus reports whether s is a legal lead status.
func ValidStatus(s string) bool {
	return validStatuses[s]
}
