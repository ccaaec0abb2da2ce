package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/notify"
	"github.com/tgienger/todo/internal/ui/styles"
	"github.com/tgienger/todo/internal/ui/views"
)

// DefaultAlertTimeout is how long a reminder banner stays on screen
const DefaultAlertTimeout = 8 * time.Second

// PendingReminders lists reminders that are queued and not yet delivered
type PendingReminders interface {
	Pending(ctx context.Context) ([]models.Notification, error)
}

// Options configures the application
type Options struct {
	AlertTimeout time.Duration
	Bell         io.Writer        // receives the terminal bell; defaults to os.Stdout
	Reminders    PendingReminders // feeds the footer count; optional
}

type alert struct {
	id   string
	text string
}

type alertExpiredMsg struct {
	id string
}

type remindersCountedMsg struct {
	n int
}

type App struct {
	taskList     *views.TaskListView
	styles       *styles.Styles
	alertTimeout time.Duration
	bell         io.Writer
	reminders    PendingReminders
	alerts       []alert
	unread       int
	width        int
	height       int
}

// Creates a new application
func NewApp(scheduler views.ReminderScheduler, opts Options) *App {
	if opts.AlertTimeout <= 0 {
		opts.AlertTimeout = DefaultAlertTimeout
	}
	if opts.Bell == nil {
		opts.Bell = os.Stdout
	}
	return &App{
		taskList:     views.NewTaskListView(scheduler),
		styles:       styles.NewStyles(),
		alertTimeout: opts.AlertTimeout,
		bell:         opts.Bell,
		reminders:    opts.Reminders,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.taskList.Init(), a.countReminders())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resizeTaskList()
		return a, nil

	case notify.Delivery:
		return a, tea.Batch(a.present(msg), a.countReminders())

	case alertExpiredMsg:
		for i, al := range a.alerts {
			if al.id == msg.id {
				a.alerts = append(a.alerts[:i:i], a.alerts[i+1:]...)
				a.resizeTaskList()
				break
			}
		}
		return a, nil

	case remindersCountedMsg:
		a.taskList.SetReminders(msg.n)
		return a, nil

	case views.ReminderScheduledMsg:
		_, cmd := a.taskList.Update(msg)
		return a, tea.Batch(cmd, a.countReminders())

	case tea.KeyMsg:
		// Any interaction means the user has seen the badge
		if a.unread > 0 {
			a.unread = 0
			a.taskList.SetBadge(0)
		}
	}

	_, cmd := a.taskList.Update(msg)
	return a, cmd
}

// present shows a delivered notification according to its presentation options
func (a *App) present(d notify.Delivery) tea.Cmd {
	var cmds []tea.Cmd

	if d.Presentation.ShowAlert {
		n := d.Notification
		a.alerts = append(a.alerts, alert{id: n.ID, text: n.Title + ": " + n.Body})
		a.resizeTaskList()
		id := n.ID
		cmds = append(cmds, tea.Tick(a.alertTimeout, func(time.Time) tea.Msg {
			return alertExpiredMsg{id: id}
		}))
	}

	if d.Presentation.SetBadge {
		a.unread++
		a.taskList.SetBadge(a.unread)
	}

	if d.Presentation.PlaySound {
		bell := a.bell
		cmds = append(cmds, func() tea.Msg {
			fmt.Fprint(bell, "\a")
			return nil
		})
	}

	return tea.Batch(cmds...)
}

// countReminders reads the number of pending reminders in the background
func (a *App) countReminders() tea.Cmd {
	if a.reminders == nil {
		return nil
	}
	reminders := a.reminders
	return func() tea.Msg {
		pending, err := reminders.Pending(context.Background())
		if err != nil {
			return nil
		}
		return remindersCountedMsg{n: len(pending)}
	}
}

// resizeTaskList gives the task list whatever height the banners leave over
func (a *App) resizeTaskList() {
	if a.width == 0 && a.height == 0 {
		return
	}
	height := a.height
	if len(a.alerts) > 0 {
		height -= lipgloss.Height(a.renderAlerts())
	}
	a.taskList.Update(tea.WindowSizeMsg{Width: a.width, Height: max(height, 0)})
}

func (a *App) renderAlerts() string {
	width := max(styles.ContentWidth(a.width), 20)
	banners := make([]string, len(a.alerts))
	for i, al := range a.alerts {
		banners[i] = a.styles.Alert.Width(width).Render(al.text)
	}
	return styles.CenterView(lipgloss.JoinVertical(lipgloss.Left, banners...), a.width, 0)
}

func (a *App) View() string {
	if len(a.alerts) == 0 {
		return a.taskList.View()
	}
	return strings.Join([]string{a.renderAlerts(), a.taskList.View()}, "\n")
}
