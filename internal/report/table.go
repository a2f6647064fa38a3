// Package report renders training histories as terminal tables and loss plots.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/born-ml/trainer/trainer"
)

var tableBorderColor = lipgloss.Color("#705090")

// Table renders the history as a bordered table written to w. Validation
// columns are included when any epoch has validation metrics. The best
// epoch (see trainer.History.Best) is highlighted.
func Table(w io.Writer, history trainer.History) error {
	renderer := lipgloss.NewRenderer(w)
	normal := renderer.NewStyle().Padding(0, 1)
	right := normal.Align(lipgloss.Right)
	header := renderer.NewStyle().Bold(true).Padding(0, 1)
	highlight := right.Foreground(lipgloss.Color("#04B575"))

	withValidation := len(history.ValidationLosses()) > 0
	headers := []string{"Epoch", "Train loss"}
	if withValidation {
		headers = append(headers, "Val loss", "Val accuracy")
	}

	bestRow := -1
	if best, ok := history.Best(); ok {
		for i, r := range history {
			if r.Epoch == best.Epoch {
				bestRow = i
			}
		}
	}

	rows := make([][]string, 0, len(history))
	for _, r := range history {
		row := []string{strconv.Itoa(r.Epoch), formatLoss(r.TrainLoss)}
		if withValidation {
			if r.Validation != nil {
				row = append(row, formatLoss(r.Validation.Loss), formatAccuracy(r.Validation.Accuracy))
			} else {
				row = append(row, "-", "-")
			}
		}
		rows = append(rows, row)
	}

	table := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(renderer.NewStyle().Foreground(tableBorderColor)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == lgtable.HeaderRow:
				return header
			case row == bestRow:
				return highlight
			case col == 0:
				return normal
			}
			return right
		})
	_, err := fmt.Fprintln(w, table.Render())
	return err
}

// Summary returns a one-line description of the best epoch.
func Summary(history trainer.History) string {
	best, ok := history.Best()
	if !ok {
		return "no epochs run"
	}
	if best.Validation == nil {
		return fmt.Sprintf("best epoch %d: train loss %s", best.Epoch, formatLoss(best.TrainLoss))
	}
	return fmt.Sprintf("best epoch %d: val loss %s, val accuracy %s (%s/%s correct)",
		best.Epoch, formatLoss(best.Validation.Loss), formatAccuracy(best.Validation.Accuracy),
		humanize.Comma(int64(best.Validation.Correct)), humanize.Comma(int64(best.Validation.Samples)))
}

func formatLoss(loss float64) string {
	return humanize.FtoaWithDigits(loss, 4)
}

func formatAccuracy(accuracy float64) string {
	return humanize.FtoaWithDigits(accuracy*100, 2) + "%"
}
