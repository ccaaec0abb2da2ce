// Package tasks holds the in-memory task list operations.
//
// Every operation takes the current list and returns a freshly built one;
// the input slice is never written to, so a caller can keep the previous
// list around and compare.
package tasks

import (
	"strings"

	"github.com/tgienger/todo/internal/models"
)

// ValidationError is returned by Add when a required field is blank
type ValidationError struct {
	Missing []string // field names, in form order
}

func (e *ValidationError) Error() string {
	return "task title, date, and time are required"
}

var defaultIDs = NewIDSource(nil)

// Add appends a new incomplete task built from the trimmed fields.
// On a blank field it returns current unchanged and a *ValidationError.
func Add(current []models.Task, title, date, tm string) ([]models.Task, models.Task, error) {
	return defaultIDs.Add(current, title, date, tm)
}

// Add is like the package-level Add but draws the ID from s
func (s *IDSource) Add(current []models.Task, title, date, tm string) ([]models.Task, models.Task, error) {
	title = strings.TrimSpace(title)
	date = strings.TrimSpace(date)
	tm = strings.TrimSpace(tm)

	var missing []string
	if title == "" {
		missing = append(missing, "title")
	}
	if date == "" {
		missing = append(missing, "date")
	}
	if tm == "" {
		missing = append(missing, "time")
	}
	if len(missing) > 0 {
		return current, models.Task{}, &ValidationError{Missing: missing}
	}

	task := models.Task{
		ID:    s.Next(),
		Title: title,
		Date:  date,
		Time:  tm,
	}

	next := make([]models.Task, len(current), len(current)+1)
	copy(next, current)
	return append(next, task), task, nil
}

// ToggleComplete flips Completed on the task with the given id.
// An unknown id returns current unchanged.
func ToggleComplete(current []models.Task, id int64) []models.Task {
	idx := indexOf(current, id)
	if idx < 0 {
		return current
	}

	next := make([]models.Task, len(current))
	copy(next, current)
	replaced := next[idx]
	replaced.Completed = !replaced.Completed
	next[idx] = replaced
	return next
}

// Delete removes the task with the given id.
// An unknown id returns current unchanged.
func Delete(current []models.Task, id int64) []models.Task {
	idx := indexOf(current, id)
	if idx < 0 {
		return current
	}

	next := make([]models.Task, 0, len(current)-1)
	next = append(next, current[:idx]...)
	return append(next, current[idx+1:]...)
}

// PendingCount returns the number of tasks not yet completed
func PendingCount(current []models.Task) int {
	n := 0
	for _, t := range current {
		if !t.Completed {
			n++
		}
	}
	return n
}

func indexOf(current []models.Task, id int64) int {
	for i, t := range current {
		if t.ID == id {
			return i
		}
	}
	return -1
}
