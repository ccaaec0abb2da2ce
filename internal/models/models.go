package models

import "time"

// Task represents a single to-do item
type Task struct {
	ID        int64
	Title     string
	Date      string // YYYY-MM-DD
	Time      string // HH:MM, 24-hour
	Completed bool
}

// Notification represents a one-shot reminder queued with the notification facility
type Notification struct {
	ID          string
	Title       string
	Body        string
	TriggerAt   time.Time
	CreatedAt   time.Time
	DeliveredAt *time.Time // nil until delivered
}

