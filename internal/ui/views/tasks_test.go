package views

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/todo/internal/reminder"
)

type scheduleCall struct {
	date, tm, title string
}

type fakeScheduler struct {
	mu    sync.Mutex
	calls []scheduleCall
}

func (f *fakeScheduler) Schedule(_ context.Context, date, tm, title string) reminder.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, scheduleCall{date, tm, title})
	return reminder.OutcomeScheduled
}

func newTestView(t *testing.T) (*TaskListView, *fakeScheduler) {
	t.Helper()
	sched := &fakeScheduler{}
	v := NewTaskListView(sched)
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 50})
	return v, sched
}

func typeText(v *TaskListView, s string) {
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func press(v *TaskListView, k tea.KeyType) tea.Cmd {
	_, cmd := v.Update(tea.KeyMsg{Type: k})
	return cmd
}

func addTask(t *testing.T, v *TaskListView, title, date, tm string) tea.Cmd {
	t.Helper()
	typeText(v, title)
	press(v, tea.KeyEnter)
	typeText(v, date)
	press(v, tea.KeyEnter)
	typeText(v, tm)
	return press(v, tea.KeyEnter)
}

func TestAddTaskSchedulesReminder(t *testing.T) {
	v, sched := newTestView(t)

	cmd := addTask(t, v, "Buy milk", "2099-01-01", "08:00")

	// The list is updated before the reminder command runs
	list := v.Tasks()
	require.Len(t, list, 1)
	assert.Equal(t, "Buy milk", list[0].Title)
	assert.Equal(t, "2099-01-01", list[0].Date)
	assert.Equal(t, "08:00", list[0].Time)
	assert.False(t, list[0].Completed)
	assert.Empty(t, sched.calls)

	require.NotNil(t, cmd)
	msg, ok := cmd().(ReminderScheduledMsg)
	require.True(t, ok)
	assert.Equal(t, list[0].ID, msg.TaskID)
	assert.Equal(t, reminder.OutcomeScheduled, msg.Outcome)
	assert.Equal(t, []scheduleCall{{"2099-01-01", "08:00", "Buy milk"}}, sched.calls)

	// Form is cleared and ready for the next task
	assert.Empty(t, v.titleInput.Value())
	assert.Empty(t, v.dateInput.Value())
	assert.Empty(t, v.timeInput.Value())
	assert.Equal(t, FocusTitle, v.Focus())
	assert.Contains(t, v.View(), "Pending: 1")
}

func TestSubmitWithCtrlS(t *testing.T) {
	v, _ := newTestView(t)

	typeText(v, "Walk dog")
	press(v, tea.KeyTab)
	typeText(v, "2099-02-02")
	press(v, tea.KeyTab)
	typeText(v, "18:30")
	cmd := press(v, tea.KeyCtrlS)

	require.NotNil(t, cmd)
	require.Len(t, v.Tasks(), 1)
}

func TestAddTaskValidationError(t *testing.T) {
	v, sched := newTestView(t)

	typeText(v, "No date")
	cmd := press(v, tea.KeyCtrlS)

	assert.Nil(t, cmd, "nothing is scheduled")
	assert.Empty(t, v.Tasks())
	assert.Empty(t, sched.calls)
	assert.Contains(t, v.View(), "Task title, date, and time are required.")

	// Inputs keep their content and any key dismisses the popup
	assert.Equal(t, "No date", v.titleInput.Value())
	press(v, tea.KeyEsc)
	assert.NotContains(t, v.View(), "required")
	assert.Equal(t, FocusTitle, v.Focus())
}

func TestToggleAndDelete(t *testing.T) {
	v, _ := newTestView(t)
	addTask(t, v, "first", "2099-01-01", "08:00")
	addTask(t, v, "second", "2099-01-01", "09:00")
	require.Len(t, v.Tasks(), 2)

	press(v, tea.KeyEsc)
	require.Equal(t, FocusTaskList, v.Focus())

	typeText(v, "x")
	assert.True(t, v.Tasks()[0].Completed)
	assert.Contains(t, v.View(), "Pending: 1")

	typeText(v, "x")
	assert.False(t, v.Tasks()[0].Completed)

	typeText(v, "d")
	assert.Contains(t, v.View(), "Delete Task?")
	typeText(v, "n")
	assert.Len(t, v.Tasks(), 2)

	typeText(v, "d")
	typeText(v, "y")
	require.Len(t, v.Tasks(), 1)
	assert.Equal(t, "second", v.Tasks()[0].Title)
}

func TestListCursorKeys(t *testing.T) {
	v, _ := newTestView(t)
	addTask(t, v, "first", "2099-01-01", "08:00")
	addTask(t, v, "second", "2099-01-01", "09:00")
	press(v, tea.KeyEsc)

	typeText(v, "j")
	typeText(v, "x")
	assert.False(t, v.Tasks()[0].Completed)
	assert.True(t, v.Tasks()[1].Completed)

	press(v, tea.KeyUp)
	typeText(v, "x")
	assert.True(t, v.Tasks()[0].Completed)
}

func TestLongTitleIsKeptWhole(t *testing.T) {
	v, _ := newTestView(t)
	title := strings.Repeat("a", 250)

	addTask(t, v, title, "2099-01-01", "08:00")
	require.Len(t, v.Tasks(), 1)
	assert.Equal(t, title, v.Tasks()[0].Title)
}

func TestFooterShowsReminderCount(t *testing.T) {
	v, _ := newTestView(t)
	assert.Contains(t, v.View(), "Reminders: 0")

	v.SetReminders(4)
	assert.Contains(t, v.View(), "Reminders: 4")
}

func TestListKeysOnEmptyListAreNoOps(t *testing.T) {
	v, _ := newTestView(t)
	press(v, tea.KeyEsc)

	typeText(v, "x")
	typeText(v, "d")
	assert.Empty(t, v.Tasks())
	assert.NotContains(t, v.View(), "Delete Task?")
}

func TestFocusCycles(t *testing.T) {
	v, _ := newTestView(t)

	want := []FocusArea{FocusDate, FocusTime, FocusAddButton, FocusTaskList, FocusTitle}
	for _, f := range want {
		press(v, tea.KeyTab)
		assert.Equal(t, f, v.Focus())
	}

	press(v, tea.KeyShiftTab)
	assert.Equal(t, FocusTaskList, v.Focus())

	typeText(v, "n")
	assert.Equal(t, FocusTitle, v.Focus())
}

func TestQuit(t *testing.T) {
	v, _ := newTestView(t)

	// q is text while an input has focus
	typeText(v, "q")
	assert.Equal(t, "q", v.titleInput.Value())

	press(v, tea.KeyEsc)
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestHelpPopup(t *testing.T) {
	v, _ := newTestView(t)
	press(v, tea.KeyEsc)

	typeText(v, "?")
	assert.Contains(t, v.View(), "Keyboard Shortcuts")

	typeText(v, "x")
	assert.NotContains(t, v.View(), "Keyboard Shortcuts")
}

func TestBadge(t *testing.T) {
	v, _ := newTestView(t)
	v.SetBadge(3)
	assert.Contains(t, v.View(), "3")
}

func TestNilSchedulerSkipsReminder(t *testing.T) {
	v := NewTaskListView(nil)
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 40})

	cmd := addTask(t, v, "a", "2099-01-01", "08:00")
	assert.Nil(t, cmd)
	assert.Len(t, v.Tasks(), 1)
}
