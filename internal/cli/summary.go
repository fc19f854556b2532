package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pixeldrift/pixeldrift/pkg/regress"
)

// summaryOrder fixes the row order of the run summary table.
var summaryOrder = []regress.Status{
	regress.StatusAccepted,
	regress.StatusSkippedUnchanged,
	regress.StatusSkippedAllowedCrash,
	regress.StatusSkippedBeforeCursor,
	regress.StatusRenderFailed,
	regress.StatusRegressed,
}

// statusStyle returns the display style for a status value.
func statusStyle(s regress.Status) lipgloss.Style {
	switch s {
	case regress.StatusAccepted:
		return StyleSuccess
	case regress.StatusRenderFailed, regress.StatusRegressed:
		return StyleError
	default:
		return StyleDim
	}
}

// printSummary renders the per-status tally of a finished run.
func printSummary(result *regress.Result) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := [][]string{}
	rowStatuses := []regress.Status{}
	for _, status := range summaryOrder {
		count := result.Counts[status]
		if count == 0 {
			continue
		}
		rows = append(rows, []string{status.String(), fmt.Sprintf("%d", count)})
		rowStatuses = append(rowStatuses, status)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Status", "Entries").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= 0 && row < len(rowStatuses) {
				return statusStyle(rowStatuses[row]).PaddingLeft(1).PaddingRight(1)
			}
			return lipgloss.NewStyle()
		})

	fmt.Println(t.Render())
	printDetail("run %s · %d entries · %s",
		result.RunID, result.Total, result.Duration.Round(time.Millisecond))
}
