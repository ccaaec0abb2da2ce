package tasks

import (
	"sync"
	"time"
)

// IDSource hands out task IDs derived from the wall clock in Unix
// milliseconds. IDs are strictly increasing: two calls within the same
// millisecond (or after the clock steps back) get last+1.
type IDSource struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDSource creates an ID source. A nil clock means time.Now.
func NewIDSource(now func() time.Time) *IDSource {
	if now == nil {
		now = time.Now
	}
	return &IDSource{now: now}
}

// Next returns a fresh ID
func (s *IDSource) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}
