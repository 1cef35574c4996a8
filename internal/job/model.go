package job

import (
	"time"

	"gorm.io/gorm"
)

// Job statuses.
const (
	StatusPending    = "pending"
	StatusScheduled  = "scheduled"
	StatusApproved   = "approved"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusInvoiced   = "invoiced"
)

// Note visibility scopes.
const (
	NoteInternal = "internal"
	NoteTech     = "tech"
	NoteCustomer = "customer"
)

// CustomerSnapshot is the customer contact embedded on a job at creation
// time. Edits to the Customer record do not rewrite history.
type CustomerSnapshot struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// SiteSnapshot is the service location embedded on a job.
type SiteSnapshot struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
}

// Job is a scheduled unit of field work, optionally converted from an
// accepted quote. ScopeSummary is newline-delimited free text, lines
// optionally prefixed "<N>x " to carry a quantity; invoice generation parses
// it back into line items.
type Job struct {
	gorm.Model
	JobNumber string `json:"jobNumber" gorm:"uniqueIndex;size:20"`
	QuoteID   *uint  `json:"quoteId,omitempty" gorm:"index"`

	Customer CustomerSnapshot `json:"customer" gorm:"type:jsonb;serializer:json"`
	Site     SiteSnapshot     `json:"site" gorm:"type:jsonb;serializer:json"`

	JobType      string  `json:"jobType" gorm:"size:50"`
	Status       string  `json:"status" gorm:"size:50;default:pending"`
	ScopeSummary string  `json:"scopeSummary"`
	TotalAmount  float64 `json:"totalAmount"`

	ScheduledDate   *time.Time `json:"scheduledDate,omitempty"`
	ActualStartTime *time.Time `json:"actualStartTime,omitempty"`
	ActualEndTime   *time.Time `json:"actualEndTime,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	CompletionNotes string     `json:"completionNotes"`
	Notes           string     `json:"notes"`

	Assignments []Assignment `json:"assignments,omitempty" gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	NoteEntries []Note       `json:"noteEntries,omitempty" gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	Events      []Event      `json:"events,omitempty" gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	Checklists  []Checklist  `json:"checklists,omitempty" gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
	Photos      []Photo      `json:"photos,omitempty" gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
}

// Assignment links a field user to a job with a role on that job.
type Assignment struct {
	gorm.Model
	JobID          uint       `json:"jobId" gorm:"not null;index"`
	UserID         uint       `json:"userId" gorm:"not null;index"`
	Role           string     `json:"role" gorm:"size:50"` // lead_tech | tech | inspector
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty"`
}

// Note is a visibility-scoped note on a job.
type Note struct {
	gorm.Model
	JobID      uint   `json:"jobId" gorm:"not null;index"`
	AuthorID   uint   `json:"authorId"`
	Visibility string `json:"visibility" gorm:"size:20;default:internal"`
	Body       string `json:"body" gorm:"not null"`
}

// Event is one row of a job's append-only history.
type Event struct {
	gorm.Model
	JobID     uint                   `json:"jobId" gorm:"not null;index"`
	EventType string                 `json:"eventType" gorm:"size:50;not null"`
	ActorID   uint                   `json:"actorId"`
	Data      map[string]interface{} `json:"data,omitempty" gorm:"type:jsonb;serializer:json"`
}

// ChecklistItem is one entry of a job checklist.
type ChecklistItem struct {
	Label     string `json:"label"`
	Done      bool   `json:"done"`
	Required  bool   `json:"required"`
	Completed string `json:"completedAt,omitempty"`
}

// Checklist groups checklist items under a named section.
type Checklist struct {
	gorm.Model
	JobID uint            `json:"jobId" gorm:"not null;index"`
	Name  string          `json:"name" gorm:"size:100"`
	Items []ChecklistItem `json:"items" gorm:"type:jsonb;serializer:json"`
}

// Photo is the stored metadata of an uploaded job photo. The upload itself
// is handled outside this API.
type Photo struct {
	gorm.Model
	JobID      uint   `json:"jobId" gorm:"not null;index"`
	UploaderID uint   `json:"uploaderId"`
	URL        string `json:"url" gorm:"not null"`
	Caption    string `json:"caption"`
}

var validStatuses = map[string]bool{
	StatusPending:    true,
	StatusScheduled:  true,
	StatusApproved:   true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusCancelled:  true,
	StatusInvoiced:   true,
}

// ValidStatus reports whether s is a legal job status.
func ValidStatus(s string) bool {
	return validStatuses[s]
}
