package api

import (
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// renderModeChart renders a bar chart (HTML) of activities per
// transportation mode. Debugging/inspection aid; the JSON endpoint at
// /activities/modes carries the same data.
func (s *Server) renderModeChart(w http.ResponseWriter, r *http.Request) {
	counts, err := s.db.GetActivitiesPerMode()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(counts) == 0 {
		s.writeJSONError(w, http.StatusNotFound, "no labeled activities available")
		return
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

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := bar.Render(w); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}
