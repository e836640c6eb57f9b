package chart

import (
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func renderImage(w io.Writer, c Curve, format string) error {
	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel

	pts := make(plotter.XYs, len(c.X))
	bottom := math.Inf(1)
	for i := range c.X {
		pts[i].X = c.X[i]
		pts[i].Y = c.Y[i]
		bottom = math.Min(bottom, c.Y[i])
	}
	logY := c.logSafe()
	if !logY {
		bottom = math.Min(bottom, 0)
	}
	if len(pts) == 0 {
		bottom = 0
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	p.Add(line, points)
	if c.Name != "" {
		p.Legend.Add(c.Name, line, points)
	}

	for _, m := range c.Marks {
		r := float64(m.Rank)
		hline, err := plotter.NewLine(plotter.XYs{{X: 0, Y: m.Threshold}, {X: r + 1, Y: m.Threshold}})
		if err != nil {
			return err
		}
		hline.Color = color.Black
		vline, err := plotter.NewLine(plotter.XYs{{X: r, Y: bottom}, {X: r, Y: m.Top}})
		if err != nil {
			return err
		}
		vline.Color = color.Black
		p.Add(hline, vline)
	}

	if logY {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	p.X.Min = 0

	wt, err := p.WriterTo(12*vg.Inch, 4*vg.Inch, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
