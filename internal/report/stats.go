// Package report turns the aggregation queries into human-readable
// output: distribution statistics over activity durations, a histogram
// PNG, and a standalone HTML chart of activities per mode.
package report

import (
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DurationStats summarizes the distribution of activity durations, in
// seconds.
type DurationStats struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Median float64
	P90    float64
	Max    float64
}

// ComputeDurationStats computes distribution statistics over a set of
// durations. Returns an error when durations is empty.
func ComputeDurationStats(durations []float64) (*DurationStats, error) {
	if len(durations) == 0 {
		return nil, fmt.Errorf("no durations to summarize")
	}

	sorted := make([]float64, len(durations))
	copy(sorted, durations)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	return &DurationStats{
		Count:  len(sorted),
		Mean:   mean,
		StdDev: std,
		Min:    sorted[0],
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, sorted, nil),
		Max:    sorted[len(sorted)-1],
	}, nil
}

// WriteText writes the stats as an aligned text block.
func (s *DurationStats) WriteText(w io.Writer) {
	fmt.Fprintf(w, "activity durations (n=%d)\n", s.Count)
	fmt.Fprintf(w, "  mean:   %s\n", formatDuration(s.Mean))
	fmt.Fprintf(w, "  stddev: %s\n", formatDuration(s.StdDev))
	fmt.Fprintf(w, "  min:    %s\n", formatDuration(s.Min))
	fmt.Fprintf(w, "  median: %s\n", formatDuration(s.Median))
	fmt.Fprintf(w, "  p90:    %s\n", formatDuration(s.P90))
	fmt.Fprintf(w, "  max:    %s\n", formatDuration(s.Max))
}

// formatDuration renders seconds as h/m/s, dropping zero leading units.
func formatDuration(seconds float64) string {
	total := int64(seconds + 0.5)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm%02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
