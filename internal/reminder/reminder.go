// Package reminder turns a task's due date and time into a one-shot
// notification request.
//
// Scheduling is best effort. A due time that has already passed, a date
// that does not parse, or a facility that refuses the request all leave
// the task untouched; the outcome is logged and reported to the caller,
// never returned as an error.
package reminder

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tgienger/todo/internal/notify"
)

// Title is the fixed title of every reminder notification
const Title = "To-Do Reminder"

var dueLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// Outcome describes what Schedule did
type Outcome int

const (
	OutcomeScheduled Outcome = iota
	OutcomeSkippedPast
	OutcomeSkippedInvalid
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeScheduled:
		return "scheduled"
	case OutcomeSkippedPast:
		return "skipped-past"
	case OutcomeSkippedInvalid:
		return "skipped-invalid"
	case OutcomeFailed:
		return "failed"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// SchedulingError wraps a failure reported by the notification facility
type SchedulingError struct {
	TriggerAt time.Time
	Err       error
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("schedule reminder at %s: %v", e.TriggerAt.Format(time.RFC3339), e.Err)
}

func (e *SchedulingError) Unwrap() error { return e.Err }

// DueAt combines date (YYYY-MM-DD) and tm (HH:MM) as date+"T"+tm in loc.
// A nil loc means time.Local.
func DueAt(date, tm string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	value := strings.TrimSpace(date) + "T" + strings.TrimSpace(tm)

	var firstErr error
	for _, layout := range dueLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("parse due time %q: %w", value, firstErr)
}

// Body returns the notification body for a task title
func Body(title string) string {
	return "Task: " + title
}

// Scheduler requests reminders from a notification facility
type Scheduler struct {
	facility notify.Facility
	logger   *log.Logger
	now      func() time.Time
	loc      *time.Location
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithClock overrides the wall clock used to decide whether a due time is
// still in the future
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithLocation sets the timezone due times are interpreted in
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) { s.loc = loc }
}

// WithLogger sets the logger
func WithLogger(logger *log.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// New creates a scheduler on top of facility
func New(facility notify.Facility, opts ...Option) *Scheduler {
	s := &Scheduler{
		facility: facility,
		now:      time.Now,
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	return s
}

// Schedule requests a reminder for a task due at date/tm. Only a due time
// strictly after now produces a request.
func (s *Scheduler) Schedule(ctx context.Context, date, tm, title string) Outcome {
	due, err := DueAt(date, tm, s.loc)
	if err != nil {
		s.logger.Debug("reminder skipped", "reason", "invalid due time", "err", err)
		return OutcomeSkippedInvalid
	}

	if !due.After(s.now()) {
		s.logger.Debug("reminder skipped", "reason", "due time passed", "due", due.Format(time.RFC3339))
		return OutcomeSkippedPast
	}

	content := notify.Content{Title: Title, Body: Body(title)}
	id, err := s.facility.ScheduleOneShot(ctx, content, due)
	if err != nil {
		s.logger.Warn("reminder not scheduled", "err", &SchedulingError{TriggerAt: due, Err: err})
		return OutcomeFailed
	}

	s.logger.Info("reminder scheduled", "id", id, "due", due.Format(time.RFC3339))
	return OutcomeScheduled
}
