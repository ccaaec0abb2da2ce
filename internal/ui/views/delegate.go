package views

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/ui/styles"
)

type taskItem struct {
	task models.Task
}

func (i taskItem) Title() string       { return i.task.Title }
func (i taskItem) Description() string { return "Date: " + i.task.Date + " Time: " + i.task.Time }
func (i taskItem) FilterValue() string { return i.task.Title }

type taskDelegate struct {
	styles *styles.Styles
	width  int
	active bool // list has focus
}

func (d *taskDelegate) Height() int                               { return 3 }
func (d *taskDelegate) Spacing() int                              { return 1 }
func (d *taskDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d *taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	t, ok := item.(taskItem)
	if !ok {
		return
	}

	width := max(d.width-4, 20)

	lineStyle := d.styles.ListItem
	if d.active && index == m.Index() {
		lineStyle = d.styles.ListSelected
	}
	lineStyle = lineStyle.Width(width)

	check := "[ ] "
	titleStyle := d.styles.TaskTitle
	if t.task.Completed {
		check = "[x] "
		titleStyle = d.styles.TaskDone
	}

	title := lineStyle.Render(check + titleStyle.Render(t.task.Title))
	date := lineStyle.Render(d.styles.TaskDetails.Render("    Date: " + t.task.Date))
	tm := lineStyle.Render(d.styles.TaskDetails.Render("    Time: " + t.task.Time))

	fmt.Fprintf(w, "%s\n%s\n%s", title, date, tm)
}
