package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// ClassCount is the evaluation tally of one class.
type ClassCount struct {
	Name    string
	Correct int
	Total   int
}

// Accuracy returns Correct/Total, or 0 for a class with no samples.
func (c ClassCount) Accuracy() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Correct) / float64(c.Total)
}

// CountByClass tallies predictions against labels per class. Class names
// default to the class index when classes is shorter than needed.
func CountByClass(classes []string, labels, predictions []int32) ([]ClassCount, error) {
	if len(labels) != len(predictions) {
		return nil, errors.Errorf("%d labels but %d predictions", len(labels), len(predictions))
	}
	numClasses := len(classes)
	for _, l := range labels {
		numClasses = max(numClasses, int(l)+1)
	}
	counts := make([]ClassCount, numClasses)
	for c := range counts {
		if c < len(classes) {
			counts[c].Name = classes[c]
		} else {
			counts[c].Name = strconv.Itoa(c)
		}
	}
	for i, l := range labels {
		if l < 0 {
			return nil, errors.Errorf("negative label %d at sample %d", l, i)
		}
		counts[l].Total++
		if predictions[i] == l {
			counts[l].Correct++
		}
	}
	return counts, nil
}

// ClassTable writes per-class accuracies as a table.
func ClassTable(w io.Writer, counts []ClassCount) error {
	renderer := lipgloss.NewRenderer(w)
	normal := renderer.NewStyle().Padding(0, 1)
	right := normal.Align(lipgloss.Right)

	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{
			c.Name,
			fmt.Sprintf("%s/%s", humanize.Comma(int64(c.Correct)), humanize.Comma(int64(c.Total))),
			formatAccuracy(c.Accuracy()),
		})
	}
	table := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(renderer.NewStyle().Foreground(tableBorderColor)).
		Headers("Class", "Correct", "Accuracy").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow || col == 0 {
				return normal
			}
			return right
		})
	_, err := fmt.Fprintln(w, table.Render())
	return err
}
