package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/getmockd/mockie/pkg/logging"
)

// Autosaver periodically saves the registry when it is dirty.
type Autosaver struct {
	cron     *cron.Cron
	svc      *Service
	schedule string
	log      *slog.Logger
}

// ValidateSchedule reports whether expr is a usable schedule. It accepts
// standard five-field cron expressions and descriptors such as "@every 30s".
func ValidateSchedule(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("invalid save schedule %q: %w", expr, err)
	}
	return nil
}

// NewAutosaver creates an Autosaver for svc. Call Start to begin.
func NewAutosaver(svc *Service, schedule string, log *slog.Logger) (*Autosaver, error) {
	if log == nil {
		log = logging.Nop()
	}
	a := &Autosaver{
		cron:     cron.New(),
		svc:      svc,
		schedule: schedule,
		log:      log,
	}
	if _, err := a.cron.AddFunc(schedule, a.run); err != nil {
		return nil, fmt.Errorf("invalid save schedule %q: %w", schedule, err)
	}
	return a, nil
}

// run is the scheduled job.
func (a *Autosaver) run() {
	saved, err := a.svc.SaveIfDirty(context.Background())
	if err != nil {
		a.log.Error("autosave failed", "error", err)
		return
	}
	if saved {
		a.log.Debug("autosave wrote routes")
	}
}

// Start begins running the schedule in the background.
func (a *Autosaver) Start() {
	a.log.Info("autosave enabled", "schedule", a.schedule)
	a.cron.Start()
}

// Stop halts the schedule and waits for a running save to finish or for
// ctx to expire.
func (a *Autosaver) Stop(ctx context.Context) error {
	done := a.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
