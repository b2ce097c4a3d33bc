package entities

import "time"

type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// GenerationRun records the outcome of one backup generation invocation.
// It is bookkeeping only: the generated documents themselves live in the
// staging directory and are never persisted here.
type GenerationRun struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	RunID         string    `gorm:"size:36;index" json:"run_id"` // uuid
	CourseFull    string    `gorm:"size:254" json:"course_full"`
	CourseShort   string    `gorm:"size:100" json:"course_short"`
	StagingPath   string    `gorm:"size:500" json:"staging_path"`
	SectionCount  int       `json:"section_count"`
	ActivityCount int       `json:"activity_count"`
	SkippedRows   int       `json:"skipped_rows"`
	Warnings      string    `gorm:"type:text" json:"warnings,omitempty"` // JSON array
	Status        RunStatus `gorm:"size:20" json:"status"`
	ErrorMsg      string    `gorm:"size:500" json:"error_msg,omitempty"`
	DurationMs    int64     `json:"duration_ms"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

func (GenerationRun) TableName() string {
	return "generation_runs"
}
