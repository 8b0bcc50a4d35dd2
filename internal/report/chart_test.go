package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/geolife.report/internal/db"
)

func TestSaveModeChart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "charts", "modes.html")

	counts := []db.ModeCount{
		{Mode: "taxi", Count: 12},
		{Mode: "walk", Count: 7},
	}
	if err := SaveModeChart(counts, path); err != nil {
		t.Fatalf("SaveModeChart failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if !strings.Contains(string(data), "taxi") {
		t.Error("chart should mention the taxi mode")
	}
}

func TestSaveModeChartEmpty(t *testing.T) {
	if err := SaveModeChart(nil, "unused.html"); err == nil {
		t.Fatal("expected error for empty input")
	}
}
