package geolife

import (
	"fmt"
	"strings"
	"time"
)

// timestampLayout is the datetime format used by both point files and
// label files. Some files use "/" as the date separator; parseTimestamp
// normalizes that before parsing.
const timestampLayout = "2006-01-02 15:04:05"

// parseTimestamp parses a "YYYY-MM-DD HH:MM:SS" string as UTC. Source
// timestamps carry no zone information, so UTC keeps re-ingestion
// deterministic regardless of host timezone.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "/", "-")
	t, err := time.ParseInLocation(timestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
