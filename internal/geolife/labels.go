package geolife

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/banshee-data/geolife.report/internal/fsutil"
)

// ParseLabelFile reads a per-user labels.txt: one header line, then
// tab-separated rows of start, end, and transportation mode. Records come
// back in file order with no deduplication; matching is first-match-wins
// downstream.
func ParseLabelFile(fsys fsutil.FileSystem, path string) ([]LabelRecord, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open label file %s: %w", path, err)
	}
	defer f.Close()

	var labels []LabelRecord
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		if line == 1 {
			continue
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) < 3 {
			return nil, fmt.Errorf("%s line %d: expected 3 tab-separated fields, got %d", path, line, len(fields))
		}

		var rec LabelRecord
		if rec.Start, err = parseTimestamp(fields[0]); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		if rec.End, err = parseTimestamp(fields[1]); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		rec.Mode = strings.TrimSpace(fields[2])

		labels = append(labels, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return labels, nil
}
