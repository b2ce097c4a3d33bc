// Package runlog persists one record per backup generation run. It is
// bookkeeping around the generator, not part of it: the generated tree
// stays in staging and the generator's own entities are never stored.
package runlog

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Lastent/csv-to-course/internal/backup"
	"github.com/Lastent/csv-to-course/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// RecordSuccess saves the summary of a completed generation run.
func (r *Repository) RecordSuccess(result *backup.Result, fullName, shortName string, took time.Duration) error {
	warnings := ""
	if len(result.Warnings) > 0 {
		data, err := json.Marshal(result.Warnings)
		if err == nil {
			warnings = string(data)
		}
	}

	return r.db.Create(&entities.GenerationRun{
		RunID:         result.BackupID,
		CourseFull:    fullName,
		CourseShort:   shortName,
		StagingPath:   result.StagingPath,
		SectionCount:  result.Sections,
		ActivityCount: result.Activities,
		SkippedRows:   result.Skipped,
		Warnings:      warnings,
		Status:        entities.RunStatusSuccess,
		DurationMs:    took.Milliseconds(),
		CreatedAt:     time.Now(),
	}).Error
}

// RecordFailure saves a failed run with its error message.
func (r *Repository) RecordFailure(fullName, shortName string, genErr error, took time.Duration) error {
	return r.db.Create(&entities.GenerationRun{
		RunID:       uuid.New().String(),
		CourseFull:  fullName,
		CourseShort: shortName,
		Status:      entities.RunStatusFailed,
		ErrorMsg:    genErr.Error(),
		DurationMs:  took.Milliseconds(),
		CreatedAt:   time.Now(),
	}).Error
}

// RecentRuns returns the most recent runs, newest first.
func (r *Repository) RecentRuns(limit int) ([]entities.GenerationRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []entities.GenerationRun
	err := r.db.Order("created_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// DeleteOldRuns removes run records older than the retention window and
// returns how many were deleted.
func (r *Repository) DeleteOldRuns(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	result := r.db.Where("created_at < ?", cutoff).Delete(&entities.GenerationRun{})
	return result.RowsAffected, result.Error
}
