// Package progress renders the per-epoch progress bar shown during training.
package progress

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
	"github.com/schollz/progressbar/v3"
)

// Theme used by the bar. ThemeUnicode needs a terminal with block glyphs.
var Theme = progressbar.ThemeUnicode

// Bar is a synchronous epoch progress bar.
//
// Colors are enabled only when the writer is a terminal that supports them,
// so a bytes.Buffer or a pipe receives plain text.
type Bar struct {
	bar    *progressbar.ProgressBar
	total  int
	done   int
	colors bool
	label  lipgloss.Style
}

// New creates a bar counting epochs on w.
func New(w io.Writer, epochs int) *Bar {
	output := termenv.NewOutput(w)
	colors := output.ColorProfile() != termenv.Ascii
	renderer := lipgloss.NewRenderer(w)

	b := &Bar{
		total:  epochs,
		colors: colors,
		label:  renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("#705090")),
	}
	b.bar = progressbar.NewOptions(epochs,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(b.describe(0, nil)),
		progressbar.OptionUseANSICodes(colors),
		progressbar.OptionEnableColorCodes(colors),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("epochs"),
		progressbar.OptionSetTheme(Theme),
		progressbar.OptionOnCompletion(func() { _, _ = fmt.Fprintln(w) }),
	)
	return b
}

// Stat is a named value displayed next to the bar.
type Stat struct {
	Name  string
	Value float64
}

// Advance marks one more epoch as finished and displays stats.
func (b *Bar) Advance(stats ...Stat) error {
	b.done++
	b.bar.Describe(b.describe(b.done, stats))
	return b.bar.Add(1)
}

// Finish completes the bar, even if fewer epochs than announced were run.
func (b *Bar) Finish() error {
	if b.bar.IsFinished() {
		return nil
	}
	return b.bar.Finish()
}

func (b *Bar) describe(done int, stats []Stat) string {
	epoch := fmt.Sprintf("epoch %s/%s", humanize.Comma(int64(done)), humanize.Comma(int64(b.total)))
	if b.colors {
		epoch = b.label.Render(epoch)
	}
	parts := []string{epoch}
	for _, stat := range stats {
		parts = append(parts, fmt.Sprintf("%s=%s", stat.Name, humanize.FtoaWithDigits(stat.Value, 4)))
	}
	return strings.Join(parts, " ")
}
