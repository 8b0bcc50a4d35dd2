// Package geolife implements the ETL pipeline for the Geolife GPS
// trajectory dataset: corpus traversal, point-file parsing, label
// matching, and activity assembly. The output of a walk is an in-memory
// Corpus ready for bulk loading into the database.
package geolife

import "time"

// User is one dataset participant, identified by its top-level directory
// name under Data/. HasLabels records membership in the labeled-IDs
// manifest.
type User struct {
	ID        string `json:"_id"`
	HasLabels bool   `json:"has_labels"`
}

// Activity is one trip derived from a single trajectory file. Mode is a
// transportation label string, or "null" for users without label data.
type Activity struct {
	ID                 int64     `json:"_id"`
	UserID             string    `json:"user_id"`
	TransportationMode string    `json:"transportation_mode"`
	StartDateTime      time.Time `json:"start_date_time"`
	EndDateTime        time.Time `json:"end_date_time"`
}

// TrackPoint is one timestamped GPS sample. ActivityID is 0 for orphaned
// points whose file span matched no label record (see Assembler).
type TrackPoint struct {
	ID         int64     `json:"_id"`
	ActivityID int64     `json:"activity_id"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	Altitude   float64   `json:"altitude"`
	DateDays   float64   `json:"date_days"`
	DateTime   time.Time `json:"date_time"`
}

// LabelRecord is one parsed row of a labels.txt file. Not persisted on
// its own; consumed during activity matching.
type LabelRecord struct {
	Start time.Time
	End   time.Time
	Mode  string
}

// ModeUnlabeled is the sentinel transportation mode for activities of
// users without label data.
const ModeUnlabeled = "null"

// Counters holds the run-wide activity and trackpoint ID sequences.
// Both start at 1 and are threaded explicitly through assembly so tests
// can observe assignment without ambient global state. Not safe for
// concurrent use; the pipeline is single-threaded.
type Counters struct {
	activity   int64
	trackPoint int64
}

// NewCounters returns counters positioned at the first IDs of a run.
func NewCounters() *Counters {
	return &Counters{activity: 1, trackPoint: 1}
}

// NextActivity returns the next activity ID and advances the sequence.
func (c *Counters) NextActivity() int64 {
	id := c.activity
	c.activity++
	return id
}

// NextTrackPoint returns the next trackpoint ID and advances the sequence.
func (c *Counters) NextTrackPoint() int64 {
	id := c.trackPoint
	c.trackPoint++
	return id
}
