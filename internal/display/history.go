package display

import (
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/hammamikhairi/proctor/internal/domain"
)

const statusCol = 7

// HistoryTable renders past sessions, one row each, in the order given.
func HistoryTable(sessions []*domain.Session) string {
	if len(sessions) == 0 {
		return secondaryStyle.Render("no sessions recorded")
	}

	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			shortID(s.ID),
			s.CreatedAt.Format("2006-01-02 15:04"),
			orDash(s.Course),
			orDash(s.Instructor),
			s.Duration.Round(time.Second).String(),
			s.Remaining.Round(time.Second).String(),
			strconv.Itoa(s.RulesRead),
			s.Status.String(),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(secondaryStyle).
		Headers("ID", "DATE", "COURSE", "INSTRUCTOR", "DURATION", "REMAINING", "RULES", "STATUS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return labelStyle.Bold(true).Padding(0, 1)
			case col == statusCol && row >= 0 && row < len(sessions):
				return statusStyle(sessions[row].Status).Padding(0, 1)
			default:
				return primaryStyle.Padding(0, 1)
			}
		})
	return t.Render()
}

func statusStyle(s domain.SessionStatus) lipgloss.Style {
	switch s {
	case domain.SessionFinished:
		return toggleOnStyle
	case domain.SessionAborted:
		return errorStyle
	default:
		return captionStyle
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
