package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/tgienger/todo/internal/db"
	"github.com/tgienger/todo/internal/models"
)

// DefaultPollInterval is how often Run looks for due notifications
const DefaultPollInterval = time.Second

// LocalOptions configures a Local facility
type LocalOptions struct {
	// Enabled mirrors the OS notification permission. When false every
	// ScheduleOneShot call fails with ErrPermissionDenied.
	Enabled      bool
	PollInterval time.Duration
	Logger       *log.Logger
	Now          func() time.Time
}

// Local is a Facility backed by the SQLite reminder queue
type Local struct {
	db       *db.DB
	enabled  bool
	interval time.Duration
	logger   *log.Logger
	now      func() time.Time

	mu      sync.Mutex
	handler *Handler
}

var _ Facility = (*Local)(nil)

// NewLocal creates a facility that queues notifications in database
func NewLocal(database *db.DB, opts LocalOptions) *Local {
	l := &Local{
		db:       database,
		enabled:  opts.Enabled,
		interval: opts.PollInterval,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if l.interval <= 0 {
		l.interval = DefaultPollInterval
	}
	if l.logger == nil {
		l.logger = log.New(io.Discard)
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

// Configure registers the handler. Only the first call succeeds.
func (l *Local) Configure(h Handler) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.handler != nil {
		return ErrAlreadyConfigured
	}
	l.handler = &h
	l.logger.Debug("notification handler configured",
		"show_alert", h.Presentation.ShowAlert,
		"play_sound", h.Presentation.PlaySound,
		"set_badge", h.Presentation.SetBadge,
	)
	return nil
}

func (l *Local) currentHandler() *Handler {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.handler
}

// ScheduleOneShot queues a notification for delivery at triggerAt
func (l *Local) ScheduleOneShot(ctx context.Context, c Content, triggerAt time.Time) (string, error) {
	if l.currentHandler() == nil {
		return "", ErrNotConfigured
	}
	if !l.enabled {
		return "", ErrPermissionDenied
	}

	now := l.now()
	if triggerAt.IsZero() || !triggerAt.After(now) {
		return "", ErrInvalidTrigger
	}

	id := uuid.NewString()
	if _, err := l.db.CreateNotification(ctx, id, c.Title, c.Body, triggerAt, now); err != nil {
		return "", fmt.Errorf("queue notification: %w", err)
	}

	l.logger.Debug("notification queued", "id", id, "trigger_at", triggerAt.Format(time.RFC3339))
	return id, nil
}

// Pending returns the notifications that have not fired yet
func (l *Local) Pending(ctx context.Context) ([]models.Notification, error) {
	return l.db.ListPendingNotifications(ctx)
}

// DeliverDue hands every due notification to the handler and returns how
// many were delivered. Each notification is delivered at most once.
func (l *Local) DeliverDue(ctx context.Context) (int, error) {
	h := l.currentHandler()
	if h == nil {
		return 0, ErrNotConfigured
	}

	now := l.now()
	due, err := l.db.ListDueNotifications(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list due notifications: %w", err)
	}

	delivered := 0
	for _, n := range due {
		ok, err := l.db.MarkDelivered(ctx, n.ID, now)
		if err != nil {
			return delivered, fmt.Errorf("mark notification %s delivered: %w", n.ID, err)
		}
		if !ok {
			continue
		}

		at := now
		n.DeliveredAt = &at
		l.logger.Info("notification delivered", "id", n.ID, "body", n.Body)
		if h.Deliver != nil {
			h.Deliver(Delivery{Notification: n, Presentation: h.Presentation})
		}
		delivered++
	}
	return delivered, nil
}

// Run delivers due notifications every poll interval until ctx is done
func (l *Local) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		if _, err := l.DeliverDue(ctx); err != nil && ctx.Err() == nil {
			l.logger.Error("notification delivery failed", "err", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
