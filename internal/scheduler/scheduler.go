// Package scheduler runs the notification jobs and token cleanup on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"libraryapi/internal/notify"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const cleanupEntry = "blacklist_cleanup"

// JobRunner executes a notification job by name.
type JobRunner interface {
	Run(ctx context.Context, job string, force bool) (notify.Result, error)
}

// BlacklistCleaner drops revoked tokens that have expired.
type BlacklistCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// Schedules are 5-field cron expressions. An empty schedule disables the entry.
type Schedules struct {
	NewBooks         string
	Anniversary      string
	BlacklistCleanup string
}

type Scheduler struct {
	jobs      JobRunner
	cleaner   BlacklistCleaner
	schedules Schedules

	cron      *cron.Cron
	entries   map[string]cron.EntryID
	mu        sync.RWMutex
	isRunning bool
	baseCtx   context.Context
	cancel    context.CancelFunc
}

func New(jobs JobRunner, cleaner BlacklistCleaner, schedules Schedules) *Scheduler {
	return &Scheduler{
		jobs:      jobs,
		cleaner:   cleaner,
		schedules: schedules,
		cron:      cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
		entries:   map[string]cron.EntryID{},
		baseCtx:   context.Background(),
	}
}

// Start registers every configured entry and starts the cron loop.
// The scheduler stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	plan := []struct {
		name     string
		schedule string
		fn       func()
	}{
		{notify.JobNewBooks, s.schedules.NewBooks, func() { s.runJob(notify.JobNewBooks) }},
		{notify.JobAnniversary, s.schedules.Anniversary, func() { s.runJob(notify.JobAnniversary) }},
		{cleanupEntry, s.schedules.BlacklistCleanup, s.runCleanup},
	}
	for _, p := range plan {
		if p.schedule == "" {
			log.Info().Str("entry", p.name).Msg("scheduler entry disabled")
			continue
		}
		id, err := s.cron.AddFunc(p.schedule, p.fn)
		if err != nil {
			s.removeEntries()
			return fmt.Errorf("invalid cron schedule %q for %s: %w", p.schedule, p.name, err)
		}
		s.entries[p.name] = id
	}

	s.baseCtx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	s.isRunning = true

	for name, id := range s.entries {
		log.Info().Str("entry", name).Time("next_run", s.cron.Entry(id).Next).Msg("scheduler entry registered")
	}

	baseCtx := s.baseCtx
	go func() {
		<-baseCtx.Done()
		s.Stop()
	}()

	return nil
}

func (s *Scheduler) removeEntries() {
	for name, id := range s.entries {
		s.cron.Remove(id)
		delete(s.entries, name)
	}
}

// Stop stops accepting new runs and waits for running ones to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()

	s.cancel()
	s.removeEntries()
	s.isRunning = false
	log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRuns returns the next activation time of every registered entry.
func (s *Scheduler) NextRuns() map[string]time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]time.Time, len(s.entries))
	for name, id := range s.entries {
		out[name] = s.cron.Entry(id).Next
	}
	return out
}

// context is set by Start before the cron loop runs and is only read by jobs.
func (s *Scheduler) context() context.Context {
	return s.baseCtx
}

func (s *Scheduler) runJob(job string) {
	logger := log.With().Str("job", job).Logger()
	start := time.Now()

	res, err := s.jobs.Run(s.context(), job, false)
	switch {
	case errors.Is(err, notify.ErrAlreadyRan):
		logger.Info().Msg("job already ran today, skipped")
	case err != nil:
		logger.Error().Err(err).Msg("job failed")
	default:
		logger.Info().Dur("duration", time.Since(start)).Msg(res.String())
	}
}

func (s *Scheduler) runCleanup() {
	n, err := s.cleaner.CleanupExpired(s.context())
	if err != nil {
		log.Error().Err(err).Msg("blacklist cleanup failed")
		return
	}
	log.Info().Int64("removed", n).Msg("blacklist cleanup done")
}
