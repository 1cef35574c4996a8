package deficiency

import (
	"time"

	"gorm.io/gorm"
)

// Deficiency is a code violation or defect found during an inspection.
// Estimated costs are a low/high range; quote generation turns them into
// allowance line items.
type Deficiency struct {
	gorm.Model
	InspectionID uint   `json:"inspectionId" gorm:"not null;index"`
	Category     string `json:"category" gorm:"size:100"`
	Description  string `json:"description" gorm:"not null"`
	Severity     string `json:"severity" gorm:"size:20"` // critical | major | minor

	EstimatedCostLow  float64 `json:"estimatedCostLow"`
	EstimatedCostHigh float64 `json:"estimatedCostHigh"`

	QuoteID    *uint      `json:"quoteId,omitempty" gorm:"index"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}

// displayCategories maps raw inspection categories onto the customer-facing
// grouping used on repair quotes.
var displayCategories = map[string]string{
	"fire_alarm":      "Fire Alarm System",
	"sprinkler":       "Sprinkler System",
	"extinguisher":    "Fire Extinguishers",
	"emergency_light": "Emergency & Exit Lighting",
	"exit_sign":       "Emergency & Exit Lighting",
	"suppression":     "Suppression System",
	"backflow":        "Backflow Prevention",
	"fire_pump":       "Fire Pump",
	"standpipe":       "Standpipe System",
	"kitchen_hood":    "Kitchen Hood System",
	"fire_door":       "Fire Doors & Dampers",
	"damper":          "Fire Doors & Dampers",
}

// DisplayCategory maps a raw category to its display name, falling back to
// Miscellaneous.
func DisplayCategory(raw string) string {
	if name, ok := displayCategories[raw]; ok {
		return name
	}
	return "Miscellaneous"
}
