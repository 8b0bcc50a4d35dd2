package report

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SaveDurationHistogram writes a histogram of activity durations (in
// minutes) to a PNG file, creating the output directory if needed.
func SaveDurationHistogram(durations []float64, outputPath string) error {
	if len(durations) == 0 {
		return fmt.Errorf("no durations to plot")
	}
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %v", err)
		}
	}

	values := make(plotter.Values, len(durations))
	for i, d := range durations {
		values[i] = d / 60.0
	}

	p := plot.New()
	p.Title.Text = "Activity duration distribution"
	p.X.Label.Text = "Duration (minutes)"
	p.Y.Label.Text = "Activities"

	bins := 30
	if len(values) < bins {
		bins = len(values)
	}
	hist, err := plotter.NewHist(values, bins)
	if err != nil {
		return fmt.Errorf("failed to build histogram: %v", err)
	}
	p.Add(hist)

	if err := p.Save(10*vg.Inch, 6*vg.Inch, outputPath); err != nil {
		return fmt.Errorf("failed to save histogram: %v", err)
	}
	return nil
}
