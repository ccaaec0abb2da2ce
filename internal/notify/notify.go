// Package notify is the local notification facility: it accepts one-shot
// reminder requests, keeps them until they are due and hands each one to
// the configured handler exactly once.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/tgienger/todo/internal/models"
)

var (
	ErrNotConfigured     = errors.New("notify: handler not configured")
	ErrAlreadyConfigured = errors.New("notify: handler already configured")
	ErrPermissionDenied  = errors.New("notify: notifications are disabled")
	ErrInvalidTrigger    = errors.New("notify: trigger time must be in the future")
)

// Presentation controls how a delivered notification is shown while the
// app is in the foreground
type Presentation struct {
	ShowAlert bool
	PlaySound bool
	SetBadge  bool
}

// DefaultPresentation shows an alert, silently, without touching the badge
var DefaultPresentation = Presentation{
	ShowAlert: true,
	PlaySound: false,
	SetBadge:  false,
}

// Delivery is handed to Handler.Deliver when a notification fires
type Delivery struct {
	Notification models.Notification
	Presentation Presentation
}

// Handler is registered once per process with Configure
type Handler struct {
	Presentation Presentation
	Deliver      func(Delivery)
}

// Content is the visible part of a notification
type Content struct {
	Title string
	Body  string
}

// Facility schedules one-shot notifications
type Facility interface {
	// Configure registers the process-wide handler. It must be called
	// once, before any ScheduleOneShot call.
	Configure(h Handler) error

	// ScheduleOneShot requests a single delivery at triggerAt and returns
	// the acknowledgment id of the queued request.
	ScheduleOneShot(ctx context.Context, c Content, triggerAt time.Time) (string, error)
}
