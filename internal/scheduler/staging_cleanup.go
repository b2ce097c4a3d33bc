package scheduler

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Lastent/csv-to-course/internal/config"
	"github.com/Lastent/csv-to-course/internal/runlog"
)

// StagingCleanupScheduler periodically prunes staging trees the external
// restore engine consumed but never deleted, along with old run records.
type StagingCleanupScheduler struct {
	cfg  config.Cleanup
	root string
	runs *runlog.Repository

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.Mutex
	isRunning bool
}

// NewStagingCleanupScheduler creates a new scheduler instance. The runlog
// repository is optional; without it only staging trees are pruned.
func NewStagingCleanupScheduler(cfg config.Cleanup, stagingRoot string, runs *runlog.Repository) *StagingCleanupScheduler {
	return &StagingCleanupScheduler{
		cfg:  cfg,
		root: stagingRoot,
		runs: runs,
		cron: cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if cleanup is enabled.
func (s *StagingCleanupScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		log.Printf("Staging cleanup scheduler: disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		if _, err := PruneStaging(s.root, s.cfg.Retention, false); err != nil {
			log.Printf("Staging cleanup scheduler: %v", err)
		}
		if s.runs != nil {
			if deleted, err := s.runs.DeleteOldRuns(s.cfg.Retention); err != nil {
				log.Printf("Staging cleanup scheduler: failed to prune run log: %v", err)
			} else if deleted > 0 {
				log.Printf("Staging cleanup scheduler: pruned %d run records", deleted)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.Schedule, err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true
	log.Printf("Staging cleanup scheduler: started with schedule '%s'", s.cfg.Schedule)

	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *StagingCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	s.cron.Remove(s.entryID)
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	log.Printf("Staging cleanup scheduler: stopped")
}

// PruneStaging deletes staging directories under root whose modification
// time is older than retention. With dryRun set it only reports what would
// go. Returns the directories that were (or would be) removed.
func PruneStaging(root string, retention time.Duration, dryRun bool) ([]string, error) {
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read staging root %s: %w", root, err)
	}

	cutoff := time.Now().Add(-retention)
	var pruned []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		target := filepath.Join(root, entry.Name())
		if dryRun {
			log.Printf("Staging cleanup: would remove %s", target)
			pruned = append(pruned, target)
			continue
		}
		if err := os.RemoveAll(target); err != nil {
			log.Printf("Staging cleanup: failed to remove %s: %v", target, err)
			continue
		}
		log.Printf("Staging cleanup: removed %s", target)
		pruned = append(pruned, target)
	}

	return pruned, nil
}
