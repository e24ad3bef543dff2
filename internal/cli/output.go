package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"work-tracker/internal/domain"
	"work-tracker/internal/services"
)

// styles are the colours used for task listings
type styles struct {
	overdue  lipgloss.Style
	dueToday lipgloss.Style
	done     lipgloss.Style
	muted    lipgloss.Style
	heading  lipgloss.Style
}

func stylesFor(theme domain.Theme) styles {
	muted := lipgloss.Color("240")
	if theme == domain.ThemeDark {
		muted = lipgloss.Color("245")
	}
	return styles{
		overdue:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		dueToday: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		done:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		muted:    lipgloss.NewStyle().Foreground(muted),
		heading:  lipgloss.NewStyle().Bold(true).Underline(true),
	}
}

// TaskPrinter writes task listings, one line per task
type TaskPrinter struct {
	out    io.Writer
	styles styles
	today  time.Time
}

// NewTaskPrinter creates a printer colouring overdue and due-today tasks
// relative to today
func NewTaskPrinter(out io.Writer, theme domain.Theme, today time.Time) *TaskPrinter {
	return &TaskPrinter{out: out, styles: stylesFor(theme), today: today}
}

// PrintTasks prints tasks or a "No tasks found" line
func (p *TaskPrinter) PrintTasks(tasks []domain.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(p.out, "No tasks found")
		return
	}
	for _, task := range tasks {
		fmt.Fprintln(p.out, p.formatTask(task))
	}
}

// PrintTask prints one task with all its fields
func (p *TaskPrinter) PrintTask(task domain.Task) {
	fmt.Fprintln(p.out, p.formatTask(task))
	detail := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			fmt.Fprintf(p.out, "  %-12s %s\n", label+":", value)
		}
	}
	detail("Description", task.Description)
	detail("Priority", task.Priority)
	detail("Category", task.Category)
	detail("Location", task.Location)
	detail("Notes", task.Notes)
	if task.Notify {
		detail("Notify", "yes")
	}
}

func (p *TaskPrinter) formatTask(task domain.Task) string {
	var dates []string
	if !task.StartDate.IsZero() {
		dates = append(dates, "start "+domain.FormatDate(task.StartDate))
	}
	if task.HasDueDate() {
		dates = append(dates, "due "+domain.FormatDate(task.DueDate))
	}

	status := string(task.Status)
	if status == "" {
		status = string(domain.StatusPending)
	}

	line := fmt.Sprintf("#%d %s [%s]", task.ID, task.Title, status)
	if len(dates) > 0 {
		line += " " + p.styles.muted.Render("("+strings.Join(dates, ", ")+")")
	}

	switch {
	case task.IsOverdue(p.today):
		return p.styles.overdue.Render(line + " overdue")
	case task.IsDueToday(p.today):
		return p.styles.dueToday.Render(line + " due today")
	case task.Completed:
		return p.styles.done.Render(line)
	}
	return line
}

// printReward prints an EXP change, if any
func printReward(out io.Writer, update *services.RewardUpdate) {
	if update == nil || update.ExpGained == 0 {
		return
	}
	fmt.Fprintf(out, "+%d EXP (total %d, level %d)\n", update.ExpGained, update.Reward.Exp, update.Reward.Level)
	if update.LeveledUp {
		fmt.Fprintf(out, "Level up! You are now level %d\n", update.Reward.Level)
	}
}

// printResolution warns when a title reference was not an exact match
func printResolution(out io.Writer, resolved *services.ResolvedTask) {
	if resolved == nil {
		return
	}
	if !resolved.ExactStart {
		fmt.Fprintln(out, "No task with that start date, using the most recent task with that title")
	}
	if resolved.Ambiguous() {
		fmt.Fprintf(out, "%d tasks matched, using #%d\n", resolved.Candidates, resolved.Task.ID)
	}
}
