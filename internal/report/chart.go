package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/geolife.report/internal/db"
)

// SaveModeChart writes a standalone HTML bar chart of activities per
// transportation mode.
func SaveModeChart(counts []db.ModeCount, outputPath string) error {
	if len(counts) == 0 {
		return fmt.Errorf("no labeled activities to chart")
	}
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %v", err)
		}
	}

	modes := make([]string, 0, len(counts))
	values := make([]opts.BarData, 0, len(counts))
	for _, mc := range counts {
		modes = append(modes, mc.Mode)
		values = append(values, opts.BarData{Value: mc.Count})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Activities per transportation mode",
			Subtitle: "labeled activities only",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(modes).AddSeries("activities", values)

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %v", err)
	}
	defer f.Close()

	if err := bar.Render(f); err != nil {
		return fmt.Errorf("failed to render chart: %v", err)
	}
	return nil
}
