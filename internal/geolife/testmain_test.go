package geolife

import (
	"os"
	"testing"

	"github.com/banshee-data/geolife.report/internal/monitoring"
)

// Per-file skip and orphan logging is noise under test.
func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}
