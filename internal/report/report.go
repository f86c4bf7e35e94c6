// Package report summarizes pixel intensities before and after a blur.
package report

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrNoPixels is returned when there is nothing to plot.
var ErrNoPixels = errors.New("report: no pixels")

// Summary holds intensity statistics of one image.
type Summary struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64 // population standard deviation
}

// Summarize computes intensity statistics. An empty slice gives a zero
// Summary.
func Summarize(pixels []int) Summary {
	if len(pixels) == 0 {
		return Summary{}
	}
	x := toFloats(pixels)
	mean, std := stat.PopMeanStdDev(x, nil)
	return Summary{
		Count:  len(x),
		Min:    floats.Min(x),
		Max:    floats.Max(x),
		Mean:   mean,
		StdDev: std,
	}
}

// Print writes a before/after comparison table to w.
func Print(w io.Writer, before, after Summary) error {
	p := message.NewPrinter(language.English)

	rows := []struct {
		name          string
		before, after float64
	}{
		{"min", before.Min, after.Min},
		{"max", before.Max, after.Max},
		{"mean", before.Mean, after.Mean},
		{"stddev", before.StdDev, after.StdDev},
	}

	if _, err := p.Fprintf(w, "%-8s %14s %14s\n", "pixels", p.Sprintf("%d", before.Count), p.Sprintf("%d", after.Count)); err != nil {
		return fmt.Errorf("report: write: %w", err)
	}
	for _, r := range rows {
		if _, err := p.Fprintf(w, "%-8s %14.2f %14.2f\n", r.name, r.before, r.after); err != nil {
			return fmt.Errorf("report: write: %w", err)
		}
	}
	return nil
}

// Histogram renders the intensity distribution of pixels as an image at
// path. The file type follows the extension (.png, .svg, .pdf, ...).
func Histogram(path, title string, pixels []int, maxval int) error {
	if len(pixels) == 0 {
		return ErrNoPixels
	}

	h, err := plotter.NewHist(plotter.Values(toFloats(pixels)), bins(maxval))
	if err != nil {
		return fmt.Errorf("report: histogram: %w", err)
	}
	h.LineStyle.Width = vg.Points(0.5)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Intensity"
	p.Y.Label.Text = "Pixels"
	p.X.Min = 0
	p.X.Max = float64(maxval)
	p.Add(h)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	return nil
}

// bins returns one bin per intensity level, capped at 64.
func bins(maxval int) int {
	return max(1, min(64, maxval+1))
}

func toFloats(pixels []int) []float64 {
	x := make([]float64, len(pixels))
	for i, v := range pixels {
		x[i] = float64(v)
	}
	return x
}
