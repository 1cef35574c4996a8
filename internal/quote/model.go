package quote

import "gorm.io/gorm"

// Quote statuses.
const (
	StatusDraft    = "draft"
	StatusSent     = "sent"
	StatusAccepted = "accepted"
	StatusPaid     = "paid"
	StatusRejected = "rejected"
)

// Quote types.
const (
	TypeInstallation     = "installation"
	TypeInspection       = "inspection"
	TypeMonitoring       = "monitoring"
	TypeDeficiencyRepair = "deficiency_repair"
)

// CustomerSnapshot is the customer contact embedded on the quote.
type CustomerSnapshot struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CompanyName string `json:"companyName"`
}

// SiteSnapshot is the service location embedded on the quote.
type SiteSnapshot struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
}

// LineItem is one priced line of a quote. An allowance item carries a
// low/high cost range instead of a fixed price.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	IsAllowance bool    `json:"isAllowance"`
	CostLow     float64 `json:"costLow"`
	CostHigh    float64 `json:"costHigh"`
	Category    string  `json:"category,omitempty"`
}

// Quote is a priced proposal. Totals are derived server-side, never taken
// from the client: the point total prices allowances at their high bound,
// and the low/high totals carry the range through to any document built
// from the quote.
type Quote struct {
	gorm.Model
	QuoteType string `json:"quoteType" gorm:"size:50;not null"`

	Customer CustomerSnapshot `json:"customer" gorm:"type:jsonb;serializer:json"`
	Site     SiteSnapshot     `json:"site" gorm:"type:jsonb;serializer:json"`

	Items []LineItem `json:"items" gorm:"type:jsonb;serializer:json"`

	Subtotal     float64 `json:"subtotal"`
	SubtotalLow  float64 `json:"subtotalLow"`
	SubtotalHigh float64 `json:"subtotalHigh"`
	TaxRate      float64 `json:"taxRate"`
	Tax          float64 `json:"tax"`
	Total        float64 `json:"total"`
	TotalLow     float64 `json:"totalLow"`
	TotalHigh    float64 `json:"totalHigh"`

	Status string `json:"status" gorm:"size:50;default:draft"`
	Notes  string `json:"notes"`
}

var validStatuses = map[string]bool{
	StatusDraft:    true,
	StatusSent:     true,
	StatusAccepted: true,
	StatusPaid:     true,
	StatusRejected: true,
}

// ValidStatus reports whether s is a legal quote status.
func ValidStatus(s string) bool {
	return validStatuses[s]
}
