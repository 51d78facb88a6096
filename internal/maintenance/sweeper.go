// Package maintenance runs the nightly retention sweep: documents
// soft-deleted longer ago than the retention window are removed for good,
// cascading to their versions, annotations and drawings.
package maintenance

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/planmark/review-backend/internal/review/repository"
)

// Sweeper purges expired soft-deleted documents on a schedule.
type Sweeper struct {
	repo          repository.Repository
	retentionDays int
	cron          *cron.Cron
}

// NewSweeper creates a sweeper with the given retention window in days.
func NewSweeper(repo repository.Repository, retentionDays int) *Sweeper {
	if retentionDays < 1 {
		retentionDays = 30
	}
	return &Sweeper{repo: repo, retentionDays: retentionDays}
}

// Start schedules the sweep nightly at 12:00 AM.
func (s *Sweeper) Start() {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc("0 0 0 * * *", func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			log.Printf("[sweeper] nightly sweep failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("[sweeper] failed to create cron job: %v", err)
		return
	}

	log.Printf("[sweeper] scheduled nightly (retention %d days)", s.retentionDays)
	c.Start()
	s.cron = c
}

// Stop halts the schedule.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// RunOnce performs a single sweep and returns how many documents it purged.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retentionDays)
	n, err := s.repo.PurgeDocuments(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("[sweeper] purged %d documents deleted before %s", n, cutoff.Format(time.RFC3339))
	}
	return n, nil
}
