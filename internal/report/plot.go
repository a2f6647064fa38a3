package report

import (
	"image/color"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/born-ml/trainer/trainer"
)

var plotColors = []color.Color{
	color.RGBA{R: 0x70, G: 0x50, B: 0x90, A: 0xff},
	color.RGBA{R: 0x04, G: 0xb5, B: 0x75, A: 0xff},
}

// PlotLosses saves the training (and, if present, validation) loss curves
// of history to path. The image format follows the file extension (.png,
// .svg, .pdf, ...).
func PlotLosses(history trainer.History, title, path string) error {
	if len(history) == 0 {
		return errors.New("cannot plot an empty history")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "loss (sum over batches)"
	p.Y.Min = 0
	p.Add(plotter.NewGrid())

	trainXYs := make(plotter.XYs, len(history))
	var valXYs plotter.XYs
	for i, r := range history {
		trainXYs[i].X = float64(r.Epoch)
		trainXYs[i].Y = r.TrainLoss
		if r.Validation != nil {
			valXYs = append(valXYs, plotter.XY{X: float64(r.Epoch), Y: r.Validation.Loss})
		}
	}

	if err := addLine(p, "train", trainXYs, 0); err != nil {
		return err
	}
	if len(valXYs) > 0 {
		if err := addLine(p, "validation", valXYs, 1); err != nil {
			return err
		}
	}
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "failed to save plot to %q", path)
	}
	return nil
}

func addLine(p *plot.Plot, name string, xys plotter.XYs, idx int) error {
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return errors.Wrapf(err, "invalid %s losses", name)
	}
	line.Color = plotColors[idx%len(plotColors)]
	points.Color = line.Color
	p.Add(line, points)
	p.Legend.Add(name, line, points)
	return nil
}
