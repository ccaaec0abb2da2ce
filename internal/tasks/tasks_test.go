package tasks

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/todo/internal/models"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAdd(t *testing.T) {
	list, task, err := Add(nil, "Buy milk", "2099-01-01", "08:00")
	require.NoError(t, err)

	require.Len(t, list, 1)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "2099-01-01", task.Date)
	assert.Equal(t, "08:00", task.Time)
	assert.False(t, task.Completed)
	assert.NotZero(t, task.ID)
	assert.Equal(t, task, list[0])
}

func TestAddTrimsFields(t *testing.T) {
	_, task, err := Add(nil, "  Call mom ", " 2025-03-04", "17:30  ")
	require.NoError(t, err)
	assert.Equal(t, "Call mom", task.Title)
	assert.Equal(t, "2025-03-04", task.Date)
	assert.Equal(t, "17:30", task.Time)
}

func TestAddAppendsInOrder(t *testing.T) {
	var list []models.Task
	for _, title := range []string{"a", "b", "c"} {
		var err error
		list, _, err = Add(list, title, "2025-01-01", "09:00")
		require.NoError(t, err)
	}

	require.Len(t, list, 3)
	assert.Equal(t, "a", list[0].Title)
	assert.Equal(t, "b", list[1].Title)
	assert.Equal(t, "c", list[2].Title)
}

func TestAddValidation(t *testing.T) {
	existing := []models.Task{{ID: 1, Title: "keep", Date: "2025-01-01", Time: "09:00"}}

	tests := []struct {
		name        string
		title       string
		date        string
		tm          string
		wantMissing []string
	}{
		{"empty title", "", "2025-01-01", "09:00", []string{"title"}},
		{"blank date", "x", "   ", "09:00", []string{"date"}},
		{"blank time", "x", "2025-01-01", "\t", []string{"time"}},
		{"all blank", " ", "", "", []string{"title", "date", "time"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, task, err := Add(existing, tt.title, tt.date, tt.tm)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantMissing, verr.Missing)
			assert.Equal(t, existing, list)
			assert.Zero(t, task)
		})
	}
}

func TestAddDoesNotWriteInput(t *testing.T) {
	backing := make([]models.Task, 1, 4)
	backing[0] = models.Task{ID: 1, Title: "first"}

	a, _, err := Add(backing, "second", "2025-01-01", "09:00")
	require.NoError(t, err)
	b, _, err := Add(backing, "third", "2025-01-01", "09:00")
	require.NoError(t, err)

	assert.Equal(t, "second", a[1].Title)
	assert.Equal(t, "third", b[1].Title)
}

func TestToggleComplete(t *testing.T) {
	list := []models.Task{
		{ID: 1, Title: "a"},
		{ID: 2, Title: "b"},
	}

	toggled := ToggleComplete(list, 2)
	assert.True(t, toggled[1].Completed)
	assert.False(t, toggled[0].Completed)
	assert.False(t, list[1].Completed, "input must not be modified")

	again := ToggleComplete(toggled, 2)
	assert.Equal(t, list, again)
}

func TestToggleCompleteUnknownID(t *testing.T) {
	list := []models.Task{{ID: 1, Title: "a"}}
	assert.Equal(t, list, ToggleComplete(list, 999))
	assert.Empty(t, ToggleComplete(nil, 1))
}

func TestDelete(t *testing.T) {
	list := []models.Task{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}, {ID: 3, Title: "c"}}

	next := Delete(list, 2)
	require.Len(t, next, 2)
	assert.Equal(t, int64(1), next[0].ID)
	assert.Equal(t, int64(3), next[1].ID)
	assert.Len(t, list, 3)
	assert.Equal(t, int64(2), list[1].ID, "input must not be modified")
}

func TestDeleteUnknownID(t *testing.T) {
	taskA := models.Task{ID: 1, Title: "a"}
	assert.Equal(t, []models.Task{taskA}, Delete([]models.Task{taskA}, 999))
}

func TestPendingCount(t *testing.T) {
	list := []models.Task{{ID: 1}, {ID: 2, Completed: true}, {ID: 3}}
	assert.Equal(t, 2, PendingCount(list))
	assert.Equal(t, 0, PendingCount(nil))
}

func TestIDsStayUniqueAcrossOperations(t *testing.T) {
	ids := NewIDSource(fixedClock(time.UnixMilli(1_700_000_000_000)))
	rng := rand.New(rand.NewSource(42))

	var list []models.Task
	for i := 0; i < 500; i++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(list) == 0:
			var err error
			list, _, err = ids.Add(list, "t", "2025-01-01", "09:00")
			require.NoError(t, err)
		case op == 1:
			list = ToggleComplete(list, list[rng.Intn(len(list))].ID)
		default:
			list = Delete(list, list[rng.Intn(len(list))].ID)
		}

		seen := make(map[int64]bool, len(list))
		for _, task := range list {
			require.False(t, seen[task.ID], "duplicate id %d", task.ID)
			seen[task.ID] = true
		}
	}
}

func TestIDSourceMonotonic(t *testing.T) {
	now := time.UnixMilli(5000)
	ids := NewIDSource(func() time.Time { return now })

	assert.Equal(t, int64(5000), ids.Next())
	assert.Equal(t, int64(5001), ids.Next())

	now = time.UnixMilli(4000) // clock stepped back
	assert.Equal(t, int64(5002), ids.Next())

	now = time.UnixMilli(9000)
	assert.Equal(t, int64(9000), ids.Next())
}

func TestIDSourceConcurrent(t *testing.T) {
	ids := NewIDSource(nil)

	const workers, perWorker = 8, 200
	out := make(chan int64, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				out <- ids.Next()
			}
		}()
	}
	wg.Wait()
	close(out)

	seen := make(map[int64]bool)
	for id := range out {
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Len(t, seen, workers*perWorker)
}
