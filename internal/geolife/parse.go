package geolife

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/geolife.report/internal/fsutil"
)

const (
	// headerLines is the fixed preamble every point file carries before
	// data rows begin.
	headerLines = 6

	// DefaultMaxRows is the data-row cutoff above which a trajectory file
	// is excluded from ingestion.
	DefaultMaxRows = 2500

	// DefaultMaxFileBytes approximates the DefaultMaxRows cutoff from the
	// file size alone, so oversized files can be rejected from a Stat
	// without reading them.
	DefaultMaxFileBytes = 204500
)

// ErrExcluded reports that a trajectory file exceeded the row or size
// bound. Exclusion is a deterministic skip, not a failure; callers check
// with errors.Is and move on.
var ErrExcluded = errors.New("trajectory file excluded: exceeds size bound")

// Trajectory is the parsed content of one point file: the min/max
// timestamp span and the points in file row order.
type Trajectory struct {
	Start  time.Time
	End    time.Time
	Points []TrackPoint
}

// Parser reads trajectory point files. MaxRows and MaxFileBytes bound
// which files are ingested; zero values fall back to the defaults.
type Parser struct {
	FS           fsutil.FileSystem
	MaxRows      int
	MaxFileBytes int64
}

// NewParser returns a Parser over fsys with the default bounds.
func NewParser(fsys fsutil.FileSystem) *Parser {
	return &Parser{
		FS:           fsys,
		MaxRows:      DefaultMaxRows,
		MaxFileBytes: DefaultMaxFileBytes,
	}
}

func (p *Parser) maxRows() int {
	if p.MaxRows > 0 {
		return p.MaxRows
	}
	return DefaultMaxRows
}

func (p *Parser) maxFileBytes() int64 {
	if p.MaxFileBytes > 0 {
		return p.MaxFileBytes
	}
	return DefaultMaxFileBytes
}

// ParseFile parses one point file into a Trajectory, assigning each point
// the next ID from counters. Returns ErrExcluded when the file exceeds the
// byte or row bound; the byte check runs first so oversized files are
// rejected without a full read. A malformed row fails the whole file and
// consumes no trackpoint IDs.
func (p *Parser) ParseFile(path string, counters *Counters) (*Trajectory, error) {
	info, err := p.FS.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > p.maxFileBytes() {
		return nil, fmt.Errorf("%s is %d bytes: %w", path, info.Size(), ErrExcluded)
	}

	f, err := p.FS.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var rows []string
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		if line <= headerLines {
			continue
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		rows = append(rows, text)
		if len(rows) > p.maxRows() {
			return nil, fmt.Errorf("%s has more than %d rows: %w", path, p.maxRows(), ErrExcluded)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: no data rows after header", path)
	}

	traj := &Trajectory{Points: make([]TrackPoint, 0, len(rows))}
	for i, row := range rows {
		pt, err := parsePointRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, headerLines+i+1, err)
		}
		// Rows are not assumed sorted; track the span explicitly.
		if i == 0 || pt.DateTime.Before(traj.Start) {
			traj.Start = pt.DateTime
		}
		if i == 0 || pt.DateTime.After(traj.End) {
			traj.End = pt.DateTime
		}
		traj.Points = append(traj.Points, pt)
	}

	// IDs are only consumed once the whole file has parsed, so a failed
	// file leaves no gap in the sequence.
	for i := range traj.Points {
		traj.Points[i].ID = counters.NextTrackPoint()
	}

	return traj, nil
}

// parsePointRow parses one comma-separated data row. Fields by position:
// lat(0), lon(1), altitude(3), day-fraction(4), date(5), time(6).
func parsePointRow(row string) (TrackPoint, error) {
	fields := strings.Split(row, ",")
	if len(fields) < 7 {
		return TrackPoint{}, fmt.Errorf("expected at least 7 fields, got %d", len(fields))
	}

	var pt TrackPoint
	var err error

	if pt.Lat, err = strconv.ParseFloat(strings.TrimSpace(fields[0]), 64); err != nil {
		return TrackPoint{}, fmt.Errorf("failed to parse latitude: %w", err)
	}
	if pt.Lon, err = strconv.ParseFloat(strings.TrimSpace(fields[1]), 64); err != nil {
		return TrackPoint{}, fmt.Errorf("failed to parse longitude: %w", err)
	}
	if pt.Altitude, err = strconv.ParseFloat(strings.TrimSpace(fields[3]), 64); err != nil {
		return TrackPoint{}, fmt.Errorf("failed to parse altitude: %w", err)
	}
	if pt.DateDays, err = strconv.ParseFloat(strings.TrimSpace(fields[4]), 64); err != nil {
		return TrackPoint{}, fmt.Errorf("failed to parse day fraction: %w", err)
	}
	if pt.DateTime, err = parseTimestamp(fields[5] + " " + fields[6]); err != nil {
		return TrackPoint{}, err
	}

	return pt, nil
}
