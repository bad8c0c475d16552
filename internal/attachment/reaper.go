package attachment

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Reaper periodically deletes unbound uploads past the retention window.
type Reaper struct {
	service   *Service
	logger    *slog.Logger
	retention time.Duration
	schedule  string
	cron      *cron.Cron
}

// NewReaper creates a reaper. schedule is a cron expression (or @hourly etc.).
func NewReaper(log *slog.Logger, service *Service, retention time.Duration, schedule string) *Reaper {
	if log == nil {
		log = slog.Default()
	}
	return &Reaper{
		service:   service,
		logger:    log.With(slog.String("component", "attachment_reaper")),
		retention: retention,
		schedule:  schedule,
	}
}

// Start schedules the reap job.
func (r *Reaper) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(r.schedule, r.run); err != nil {
		return err
	}
	c.Start()
	r.cron = c
	r.logger.Info("attachment reaper started",
		slog.String("schedule", r.schedule),
		slog.Duration("retention", r.retention))
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (r *Reaper) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
}

func (r *Reaper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	reaped, err := r.service.ReapStale(ctx, r.retention)
	if err != nil {
		r.logger.Error("reap stale attachments failed", slog.Any("error", err))
		return
	}
	if reaped > 0 {
		r.logger.Info("reaped stale attachments", slog.Int("count", reaped))
	}
}
