package job

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/sequence"
)

// NextJobNumber allocates the next JOB-<year>-<seq> number. Call inside the
// transaction creating the job.
func NextJobNumber(tx *gorm.DB, year int) (string, error) {
	return sequence.Next(tx, "job", "JOB", year)
}

// applyPatch applies a PATCH body (snake_case keys, matching the public API)
// onto the job. Unknown keys are ignored for office roles; the handler
// rejects them for field roles before calling this.
func applyPatch(j *Job, raw map[string]json.RawMessage) error {
	for field, value := range raw {
		var err error
		switch field {
		case "status":
			var s string
			if err = json.Unmarshal(value, &s); err == nil {
				if !ValidStatus(s) {
					return fmt.Errorf("invalid status %q", s)
				}
				j.Status = s
			}
		case "notes":
			err = json.Unmarshal(value, &j.Notes)
		case "completion_notes":
			err = json.Unmarshal(value, &j.CompletionNotes)
		case "scope_summary":
			err = json.Unmarshal(value, &j.ScopeSummary)
		case "job_type":
			err = json.Unmarshal(value, &j.JobType)
		case "total_amount":
			err = json.Unmarshal(value, &j.TotalAmount)
		case "customer":
			err = json.Unmarshal(value, &j.Customer)
		case "site":
			err = json.Unmarshal(value, &j.Site)
		case "scheduled_date":
			err = unmarshalTime(value, &j.ScheduledDate)
		case "actual_start_time":
			err = unmarshalTime(value, &j.ActualStartTime)
		case "actual_end_time":
			err = unmarshalTime(value, &j.ActualEndTime)
		case "completed_at":
			err = unmarshalTime(value, &j.CompletedAt)
		}
		if err != nil {
			return fmt.Errorf("invalid value for %s", field)
		}
	}
	return nil
}

func unmarshalTime(raw json.RawMessage, dst **time.Time) error {
	if string(raw) == "null" {
		*dst = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(raw, &t); err != nil {
		return err
	}
	*dst = &t
	return nil
}
