// Package chart renders rank-selection diagnostics: a curve against the
// singular value index or basis rank, with a marker per selected rank.
package chart

import (
	"fmt"
	"io"
)

type Format int

const (
	HTML Format = iota
	PNG
	SVG
)

func (f Format) String() string {
	switch f {
	case HTML:
		return "html"
	case PNG:
		return "png"
	case SVG:
		return "svg"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Mark is a selected rank together with the threshold that produced it.
// Top is the height where the vertical rank marker ends.
type Mark struct {
	Rank      int
	Threshold float64
	Top       float64
}

type Curve struct {
	Title  string
	XLabel string
	YLabel string
	Name   string
	X      []float64
	Y      []float64
	Marks  []Mark
	LogY   bool
}

// Render writes c to w in the given format.
func Render(w io.Writer, c Curve, f Format) error {
	if len(c.X) != len(c.Y) {
		return fmt.Errorf("chart: %d x values for %d y values", len(c.X), len(c.Y))
	}
	switch f {
	case HTML:
		return renderHTML(w, c)
	case PNG, SVG:
		return renderImage(w, c, f.String())
	}
	return fmt.Errorf("chart: unsupported format %s", f)
}

// logSafe reports whether every plotted value is positive, which a
// logarithmic axis requires. An empty curve has no positive range.
func (c Curve) logSafe() bool {
	if !c.LogY || len(c.Y) == 0 {
		return false
	}
	for _, y := range c.Y {
		if y <= 0 {
			return false
		}
	}
	for _, m := range c.Marks {
		if m.Threshold <= 0 || m.Top <= 0 {
			return false
		}
	}
	return true
}
