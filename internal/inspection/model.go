package inspection

import (
	"time"

	"gorm.io/gorm"
)

// Inspection statuses.
const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Inspection is a fire/life-safety inspection visit at a site.
type Inspection struct {
	gorm.Model
	JobID          *uint      `json:"jobId,omitempty" gorm:"index"`
	SiteName       string     `json:"siteName"`
	SiteAddress    string     `json:"siteAddress"`
	InspectionType string     `json:"inspectionType" gorm:"size:50"` // annual | quarterly | acceptance
	InspectorID    uint       `json:"inspectorId"`
	Status         string     `json:"status" gorm:"size:50;default:scheduled"`
	ScheduledDate  *time.Time `json:"scheduledDate,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	Notes          string     `json:"notes"`

	// BuildingDescription feeds the device-count estimator.
	BuildingDescription string `json:"buildingDescription"`
	EstimatedDevices    *int   `json:"estimatedDevices,omitempty"`
}
