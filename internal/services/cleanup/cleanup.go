// Package cleanup schedules housekeeping: aged temp audio files and stale
// terminal jobs are purged on an interval.
package cleanup

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/azh05/Recapsule/internal/services/jobs"
)

// Config controls what the scheduler purges and how often
type Config struct {
	Interval     time.Duration
	TempDir      string
	MaxTempAge   time.Duration
	JobRetention int // days
}

// Scheduler runs periodic cleanup tasks
type Scheduler struct {
	scheduler  *gocron.Scheduler
	jobService jobs.Service
	cfg        Config
}

// NewScheduler creates a cleanup scheduler
func NewScheduler(jobService jobs.Service, cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.MaxTempAge <= 0 {
		cfg.MaxTempAge = 24 * time.Hour
	}
	if cfg.JobRetention <= 0 {
		cfg.JobRetention = 7
	}

	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.UTC),
		jobService: jobService,
		cfg:        cfg,
	}
}

// Start begins the cleanup schedule in the background
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.cfg.Interval).WaitForSchedule().Do(func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("scheduling cleanup: %w", err)
	}

	s.scheduler.StartAsync()
	log.Printf("[INFO] Cleanup scheduler started (every %s)", s.cfg.Interval)
	return nil
}

// Stop halts the schedule
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// RunOnce performs a single cleanup pass
func (s *Scheduler) RunOnce(ctx context.Context) {
	if removed, err := s.purgeTempFiles(); err != nil {
		log.Printf("[WARN] Temp file cleanup failed: %v", err)
	} else if removed > 0 {
		log.Printf("[INFO] Removed %d stale temp files from %s", removed, s.cfg.TempDir)
	}

	if _, err := s.jobService.CleanupOldJobs(ctx, s.cfg.JobRetention); err != nil {
		log.Printf("[WARN] Job cleanup failed: %v", err)
	}
}

// purgeTempFiles deletes regular files in TempDir older than MaxTempAge
func (s *Scheduler) purgeTempFiles() (int, error) {
	if s.cfg.TempDir == "" {
		return 0, nil
	}

	entries, err := os.ReadDir(s.cfg.TempDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading temp dir: %w", err)
	}

	cutoff := time.Now().Add(-s.cfg.MaxTempAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.cfg.TempDir, entry.Name())); err != nil {
			log.Printf("[WARN] Could not remove temp file %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}

	return removed, nil
}
