package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/tgienger/todo/internal/models"
)

const notificationColumns = `id, title, body, trigger_at, created_at, delivered_at`

// CreateNotification queues a new notification
func (db *DB) CreateNotification(ctx context.Context, id, title, body string, triggerAt, createdAt time.Time) (*models.Notification, error) {
	_, err := db.ExecContext(ctx, `
		INSERT INTO notifications (id, title, body, trigger_at, created_at) VALUES (?, ?, ?, ?, ?)
	`, id, title, body, triggerAt.UnixMilli(), createdAt.UnixMilli())
	if err != nil {
		return nil, err
	}

	return db.GetNotification(ctx, id)
}

// GetNotification retrieves a notification by ID
func (db *DB) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications WHERE id = ?
	`, id)

	n, err := scanNotification(row)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListDueNotifications returns undelivered notifications whose trigger time
// is at or before now, oldest trigger first
func (db *DB) ListDueNotifications(ctx context.Context, now time.Time) ([]models.Notification, error) {
	return db.listNotifications(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE delivered_at IS NULL AND trigger_at <= ?
		ORDER BY trigger_at ASC, created_at ASC
	`, now.UnixMilli())
}

// ListPendingNotifications returns every undelivered notification, soonest first
func (db *DB) ListPendingNotifications(ctx context.Context) ([]models.Notification, error) {
	return db.listNotifications(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE delivered_at IS NULL
		ORDER BY trigger_at ASC, created_at ASC
	`)
}

// MarkDelivered records the delivery time. It reports false if the
// notification was already delivered or does not exist.
func (db *DB) MarkDelivered(ctx context.Context, id string, at time.Time) (bool, error) {
	result, err := db.ExecContext(ctx, `
		UPDATE notifications SET delivered_at = ?
		WHERE id = ? AND delivered_at IS NULL
	`, at.UnixMilli(), id)
	if err != nil {
		return false, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (db *DB) listNotifications(ctx context.Context, query string, args ...interface{}) ([]models.Notification, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanNotification(s scanner) (models.Notification, error) {
	var (
		n                    models.Notification
		triggerAt, createdAt int64
		deliveredAt          sql.NullInt64
	)
	if err := s.Scan(&n.ID, &n.Title, &n.Body, &triggerAt, &createdAt, &deliveredAt); err != nil {
		return models.Notification{}, err
	}

	n.TriggerAt = time.UnixMilli(triggerAt)
	n.CreatedAt = time.UnixMilli(createdAt)
	if deliveredAt.Valid {
		at := time.UnixMilli(deliveredAt.Int64)
		n.DeliveredAt = &at
	}
	return n, nil
}
