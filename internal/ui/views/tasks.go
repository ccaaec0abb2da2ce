package views

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/reminder"
	"github.com/tgienger/todo/internal/tasks"
	"github.com/tgienger/todo/internal/ui/keys"
	"github.com/tgienger/todo/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// FocusArea represents which part of the screen has focus
type FocusArea int

const (
	FocusTitle FocusArea = iota
	FocusDate
	FocusTime
	FocusAddButton
	FocusTaskList
)

const focusAreas = 5

// formHeight is the number of lines above and below the task list
const formHeight = 22

// ReminderScheduler schedules the reminder for a newly added task
type ReminderScheduler interface {
	Schedule(ctx context.Context, date, tm, title string) reminder.Outcome
}

// ReminderScheduledMsg reports the outcome of a background reminder request
type ReminderScheduledMsg struct {
	TaskID  int64
	Outcome reminder.Outcome
}

// TaskListView is the single screen: the add form on top, the tasks below
type TaskListView struct {
	tasks     []models.Task
	scheduler ReminderScheduler
	list      list.Model
	delegate  *taskDelegate
	styles    *styles.Styles
	keys      keys.KeyMap

	width     int
	height    int
	badge     int
	reminders int // notifications queued and not yet delivered

	focus      FocusArea
	titleInput textinput.Model
	dateInput  textinput.Model
	timeInput  textinput.Model

	// Blocking error popup, dismissed by any key
	formErr error

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string

	showHelpPopup bool
}

// NewTaskListView creates the task screen. scheduler may be nil, in which
// case no reminders are requested.
func NewTaskListView(scheduler ReminderScheduler) *TaskListView {
	s := styles.NewStyles()

	titleInput := textinput.New()
	titleInput.Placeholder = "Task Title"
	titleInput.CharLimit = 0 // no limit

	dateInput := textinput.New()
	dateInput.Placeholder = "Date (YYYY-MM-DD)"
	dateInput.CharLimit = 10

	timeInput := textinput.New()
	timeInput.Placeholder = "Time (HH:MM, 24-hour)"
	timeInput.CharLimit = 8

	km := keys.DefaultKeyMap()
	delegate := &taskDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ShowFullHelp.SetEnabled(false)
	l.KeyMap.CursorUp = km.Up
	l.KeyMap.CursorDown = km.Down

	v := &TaskListView{
		scheduler:  scheduler,
		list:       l,
		delegate:   delegate,
		styles:     s,
		keys:       km,
		focus:      FocusTitle,
		titleInput: titleInput,
		dateInput:  dateInput,
		timeInput:  timeInput,
	}
	v.updateFocus()
	return v
}

// Tasks returns the current task list
func (v *TaskListView) Tasks() []models.Task {
	return v.tasks
}

// Focus returns the focused area
func (v *TaskListView) Focus() FocusArea {
	return v.focus
}

// SetBadge sets the unread reminder counter shown next to the header
func (v *TaskListView) SetBadge(n int) {
	v.badge = n
}

// SetReminders sets the number of pending reminders shown in the footer
func (v *TaskListView) SetReminders(n int) {
	v.reminders = n
}

// Init initializes the view
func (v *TaskListView) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, max(msg.Height-formHeight, 4))
		return v, nil

	case ReminderScheduledMsg:
		// Reminder outcomes never change the list
		return v, nil

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.formErr != nil {
			v.formErr = nil
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.focus == FocusTaskList {
			return v.updateList(msg)
		}
		return v.updateForm(msg)
	}

	return v, nil
}

func (v *TaskListView) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return v, tea.Quit

	case key.Matches(msg, v.keys.Submit):
		return v, v.submit()

	case key.Matches(msg, v.keys.Tab):
		v.cycleFocus(1)
		return v, nil

	case key.Matches(msg, v.keys.ShiftTab):
		v.cycleFocus(-1)
		return v, nil

	case key.Matches(msg, v.keys.Back):
		v.setFocus(FocusTaskList)
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		// Enter on title or date moves to the next field
		if v.focus < FocusTime {
			v.cycleFocus(1)
			return v, nil
		}
		return v, v.submit()
	}

	if v.focus == FocusAddButton {
		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
		}
		return v, nil
	}

	var cmd tea.Cmd
	switch v.focus {
	case FocusTitle:
		v.titleInput, cmd = v.titleInput.Update(msg)
	case FocusDate:
		v.dateInput, cmd = v.dateInput.Update(msg)
	case FocusTime:
		v.timeInput, cmd = v.timeInput.Update(msg)
	}
	return v, cmd
}

func (v *TaskListView) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Tab):
		v.cycleFocus(1)
		return v, nil

	case key.Matches(msg, v.keys.ShiftTab):
		v.cycleFocus(-1)
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.setFocus(FocusTitle)
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Toggle), key.Matches(msg, v.keys.Enter):
		if task, ok := v.selectedTask(); ok {
			v.setTasks(tasks.ToggleComplete(v.tasks, task.ID))
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if task, ok := v.selectedTask(); ok {
			v.confirmingDelete = true
			v.deleteTargetID = task.ID
			v.deleteTargetName = task.Title
		}
		return v, nil

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.setTasks(tasks.Delete(v.tasks, v.deleteTargetID))
		v.confirmingDelete = false
		return v, nil
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

// submit adds a task from the form. The reminder is requested by the
// returned command, which runs after the list has already been updated.
func (v *TaskListView) submit() tea.Cmd {
	next, task, err := tasks.Add(v.tasks, v.titleInput.Value(), v.dateInput.Value(), v.timeInput.Value())
	if err != nil {
		v.formErr = err
		return nil
	}

	v.setTasks(next)
	v.titleInput.Reset()
	v.dateInput.Reset()
	v.timeInput.Reset()
	v.setFocus(FocusTitle)

	return v.scheduleReminder(task)
}

func (v *TaskListView) scheduleReminder(task models.Task) tea.Cmd {
	if v.scheduler == nil {
		return nil
	}
	scheduler := v.scheduler
	return func() tea.Msg {
		outcome := scheduler.Schedule(context.Background(), task.Date, task.Time, task.Title)
		return ReminderScheduledMsg{TaskID: task.ID, Outcome: outcome}
	}
}

func (v *TaskListView) setTasks(next []models.Task) {
	v.tasks = next

	items := make([]list.Item, len(next))
	for i, t := range next {
		items[i] = taskItem{task: t}
	}

	idx := v.list.Index()
	v.list.SetItems(items)
	if idx >= len(items) {
		v.list.Select(max(0, len(items)-1))
	}
}

func (v *TaskListView) selectedTask() (models.Task, bool) {
	item, ok := v.list.SelectedItem().(taskItem)
	if !ok {
		return models.Task{}, false
	}
	return item.task, true
}

func (v *TaskListView) cycleFocus(dir int) {
	v.setFocus(FocusArea((int(v.focus) + dir + focusAreas) % focusAreas))
}

func (v *TaskListView) setFocus(f FocusArea) {
	v.focus = f
	v.updateFocus()
}

func (v *TaskListView) updateFocus() {
	v.titleInput.Blur()
	v.dateInput.Blur()
	v.timeInput.Blur()

	switch v.focus {
	case FocusTitle:
		v.titleInput.Focus()
	case FocusDate:
		v.dateInput.Focus()
	case FocusTime:
		v.timeInput.Focus()
	}
	v.delegate.active = v.focus == FocusTaskList
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.formErr != nil {
		return v.renderError()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(v.renderForm())
	b.WriteString("\n\n")
	b.WriteString(v.renderTaskList())
	b.WriteString("\n")
	b.WriteString(v.renderFooter())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) renderHeader() string {
	s := v.styles
	width := max(styles.ContentWidth(v.width), 20)

	header := s.Title.Render("To-Do List")
	if v.badge > 0 {
		header = lipgloss.JoinHorizontal(lipgloss.Center, header, " ", s.Badge.Render(fmt.Sprintf("%d", v.badge)))
	}

	return lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.PlaceHorizontal(width, lipgloss.Center, header),
		s.Pending.Width(width).Render(fmt.Sprintf("Pending: %d", tasks.PendingCount(v.tasks))),
	)
}

func (v *TaskListView) renderForm() string {
	s := v.styles
	inputWidth := clamp(styles.ContentWidth(v.width)-6, 20, 50)

	field := func(area FocusArea, input textinput.Model) string {
		style := s.Input
		if v.focus == area {
			style = s.InputFocused
		}
		return style.Width(inputWidth).Render(input.View())
	}

	btnStyle := s.Button
	if v.focus == FocusAddButton {
		btnStyle = s.ButtonFocused
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		field(FocusTitle, v.titleInput),
		field(FocusDate, v.dateInput),
		field(FocusTime, v.timeInput),
		btnStyle.Render(" Add Task "),
	)
}

func (v *TaskListView) renderTaskList() string {
	if len(v.tasks) == 0 {
		return v.styles.TitleMuted.Render("No tasks yet. Fill in the form above to add one.")
	}
	return v.list.View()
}

func (v *TaskListView) renderFooter() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		v.renderHelp(),
		v.styles.StatusBar.Render(fmt.Sprintf("Reminders: %d", v.reminders)),
	)
}

func (v *TaskListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}

	if v.focus == FocusTaskList {
		return v.styles.Help.Render(
			fmt.Sprintf("%s toggle • %s del • %s new • %s form • %s quit",
				v.styles.HelpKey.Render("space"),
				v.styles.HelpKey.Render("d"),
				v.styles.HelpKey.Render("n"),
				v.styles.HelpKey.Render("tab"),
				v.styles.HelpKey.Render("q"),
			),
		)
	}

	return v.styles.Help.Render(
		fmt.Sprintf("%s next • %s add • %s list • %s quit",
			v.styles.HelpKey.Render("tab"),
			v.styles.HelpKey.Render("ctrl+s"),
			v.styles.HelpKey.Render("esc"),
			v.styles.HelpKey.Render("ctrl+c"),
		),
	)
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("tab") + "    next field",
		s.HelpKey.Render("↵") + "      next field / add",
		s.HelpKey.Render("ctrl+s") + " add task",
		s.HelpKey.Render("esc") + "    go to list",
		s.HelpKey.Render("space") + "  toggle done",
		s.HelpKey.Render("d") + "      delete task",
		s.HelpKey.Render("n") + "      new task",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderError() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	message := v.formErr.Error()
	var verr *tasks.ValidationError
	if errors.As(v.formErr, &verr) {
		message = "Task title, date, and time are required."
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.ErrorTitle.Render("Error"),
		"",
		message,
		"",
		s.TitleMuted.Render("Press any key to continue"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.ErrorTitle.Render("Delete Task?"),
		"",
		s.TitleMuted.Render(v.deleteTargetName),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
