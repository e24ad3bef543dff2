package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"work-tracker/internal/api"
	"work-tracker/internal/domain"
)

const maxBarWidth = 40

// StatsOptions bounds the statistics by start and due date
type StatsOptions struct {
	From string
	To   string
}

// StatsCommand handles the stats command
type StatsCommand struct {
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	out          io.Writer
}

// NewStatsCommand creates a new stats command handler
func NewStatsCommand(app *App) *StatsCommand {
	return &StatsCommand{businessAPI: app.businessAPI, errorHandler: NewErrorHandler(), out: app.out}
}

// Execute runs the stats command
func (c *StatsCommand) Execute(ctx context.Context, opts StatsOptions) error {
	stats, err := c.businessAPI.GetStatistics(ctx, opts.From, opts.To)
	if err != nil {
		return c.errorHandler.Handle("get statistics", err)
	}
	theme, _ := c.businessAPI.GetTheme(ctx)
	c.printStatistics(stats, stylesFor(theme))
	return nil
}

func (c *StatsCommand) printStatistics(stats *domain.TaskStatistics, st styles) {
	fmt.Fprintln(c.out, st.heading.Render("Task statistics"))
	fmt.Fprintf(c.out, "%-12s %d\n", "Total:", stats.Total)
	fmt.Fprintf(c.out, "%-12s %d\n", "Completed:", stats.Completed)
	fmt.Fprintf(c.out, "%-12s %d\n", "In progress:", stats.InProgress)
	fmt.Fprintf(c.out, "%-12s %d\n", "Pending:", stats.Pending)
	fmt.Fprintf(c.out, "%-12s %s\n", "Overdue:", st.overdue.Render(fmt.Sprint(stats.Overdue)))

	if stats.Total == 0 {
		return
	}

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, st.heading.Render("By status"))
	for _, status := range domain.Statuses() {
		if n := stats.ByStatus[status]; n > 0 {
			fmt.Fprintf(c.out, "%-12s %s %d\n", string(status), bar(n, stats.Total, st.done), n)
		}
	}
	for status, n := range stats.ByStatus {
		if _, known := domain.ParseStatus(string(status)); !known && n > 0 {
			fmt.Fprintf(c.out, "%-12s %s %d\n", string(status), bar(n, stats.Total, st.muted), n)
		}
	}

	if len(stats.ByMonth) > 0 {
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, st.heading.Render("By month"))
		peak := 0
		for _, mc := range stats.ByMonth {
			if mc.Count > peak {
				peak = mc.Count
			}
		}
		for _, mc := range stats.ByMonth {
			fmt.Fprintf(c.out, "%-12s %s %d\n", mc.Month, bar(mc.Count, peak, st.done), mc.Count)
		}
	}
}

// bar renders n out of total as a horizontal bar
func bar(n, total int, style lipgloss.Style) string {
	if total <= 0 || n <= 0 {
		return ""
	}
	width := n * maxBarWidth / total
	if width == 0 {
		width = 1
	}
	return style.Render(strings.Repeat("█", width))
}
