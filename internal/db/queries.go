package db

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/golang/geo/s2"

	"github.com/banshee-data/geolife.report/internal/geolife"
)

// earthRadiusMeters is the mean earth radius used to convert angular
// distances to meters.
const earthRadiusMeters = 6371000.0

// CollectionCounts holds the document count of each collection.
type CollectionCounts struct {
	Users       int64 `json:"users"`
	Activities  int64 `json:"activities"`
	TrackPoints int64 `json:"trackpoints"`
}

// GetCollectionCounts counts the rows of all three collections.
func (db *DB) GetCollectionCounts() (*CollectionCounts, error) {
	var counts CollectionCounts
	err := db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM activities),
			(SELECT COUNT(*) FROM trackpoints)`).Scan(
		&counts.Users, &counts.Activities, &counts.TrackPoints,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count collections: %w", err)
	}
	return &counts, nil
}

// ModeCount is the number of activities recorded with one transportation
// mode.
type ModeCount struct {
	Mode  string `json:"transportation_mode"`
	Count int64  `json:"count"`
}

// GetActivitiesPerMode groups labeled activities by transportation mode,
// most frequent first. Unlabeled ("null") activities are excluded.
func (db *DB) GetActivitiesPerMode() ([]ModeCount, error) {
	rows, err := db.Query(`
		SELECT transportation_mode, COUNT(*) AS n
		FROM activities
		WHERE transportation_mode != ?
		GROUP BY transportation_mode
		ORDER BY n DESC, transportation_mode ASC`, geolife.ModeUnlabeled)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities per mode: %w", err)
	}
	defer rows.Close()

	var counts []ModeCount
	for rows.Next() {
		var mc ModeCount
		if err := rows.Scan(&mc.Mode, &mc.Count); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		counts = append(counts, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return counts, nil
}

// YearCount is the number of activities starting in one calendar year.
type YearCount struct {
	Year  int   `json:"year"`
	Count int64 `json:"count"`
}

// GetActivitiesPerYear groups activities by the year of their start time.
func (db *DB) GetActivitiesPerYear() ([]YearCount, error) {
	rows, err := db.Query(`
		SELECT CAST(strftime('%Y', datetime(start_date_time, 'unixepoch')) AS INTEGER) AS year,
		       COUNT(*) AS n
		FROM activities
		GROUP BY year
		ORDER BY year ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities per year: %w", err)
	}
	defer rows.Close()

	var counts []YearCount
	for rows.Next() {
		var yc YearCount
		if err := rows.Scan(&yc.Year, &yc.Count); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		counts = append(counts, yc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return counts, nil
}

// UserSummary is the per-user activity and trackpoint volume.
type UserSummary struct {
	UserID      string `json:"user_id"`
	HasLabels   bool   `json:"has_labels"`
	Activities  int64  `json:"activities"`
	TrackPoints int64  `json:"trackpoints"`
}

// GetUserSummaries returns activity and trackpoint counts for every user,
// in user-ID order. Users without activities appear with zero counts.
func (db *DB) GetUserSummaries() ([]UserSummary, error) {
	rows, err := db.Query(`
		WITH per_activity AS (
			SELECT activity_id, COUNT(*) AS points
			FROM trackpoints
			WHERE activity_id != 0
			GROUP BY activity_id
		)
		SELECT u.id, u.has_labels,
		       COUNT(a.id),
		       COALESCE(SUM(pa.points), 0)
		FROM users u
		LEFT JOIN activities a ON a.user_id = u.id
		LEFT JOIN per_activity pa ON pa.activity_id = a.id
		GROUP BY u.id, u.has_labels
		ORDER BY u.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query user summaries: %w", err)
	}
	defer rows.Close()

	var summaries []UserSummary
	for rows.Next() {
		var s UserSummary
		var hasLabels int
		if err := rows.Scan(&s.UserID, &hasLabels, &s.Activities, &s.TrackPoints); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		s.HasLabels = hasLabels == 1
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return summaries, nil
}

// BoundingBox is an inclusive lat/lon rectangle.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// GetTrackPointsInBox returns up to limit trackpoints inside the box, in
// ID order. limit <= 0 means no limit.
func (db *DB) GetTrackPointsInBox(box BoundingBox, limit int) ([]geolife.TrackPoint, error) {
	query := `
		SELECT id, activity_id, lat, lon, altitude, date_days, date_time
		FROM trackpoints
		WHERE lat BETWEEN ? AND ? AND lon BETWEEN ? AND ?
		ORDER BY id ASC`
	args := []any{box.MinLat, box.MaxLat, box.MinLon, box.MaxLon}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trackpoints in box: %w", err)
	}
	defer rows.Close()

	var points []geolife.TrackPoint
	for rows.Next() {
		var p geolife.TrackPoint
		var unix int64
		if err := rows.Scan(&p.ID, &p.ActivityID, &p.Lat, &p.Lon, &p.Altitude, &p.DateDays, &unix); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		p.DateTime = time.Unix(unix, 0).UTC()
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return points, nil
}

// GetUsersNear returns the IDs of users with at least one trackpoint
// within radiusMeters of (lat, lon), in user-ID order. The candidate set
// is narrowed with a bounding-box scan in SQL; exact spherical distances
// are computed in Go.
func (db *DB) GetUsersNear(lat, lon, radiusMeters float64) ([]string, error) {
	// Box margin: one degree of latitude is ~111.32km; longitude degrees
	// shrink with the cosine of the latitude.
	latMargin := radiusMeters / 111320.0
	lonMargin := latMargin
	if cosLat := math.Cos(lat * math.Pi / 180); cosLat > 0.01 {
		lonMargin = latMargin / cosLat
	}

	rows, err := db.Query(`
		SELECT DISTINCT a.user_id, t.lat, t.lon
		FROM trackpoints t
		JOIN activities a ON a.id = t.activity_id
		WHERE t.lat BETWEEN ? AND ? AND t.lon BETWEEN ? AND ?`,
		lat-latMargin, lat+latMargin, lon-lonMargin, lon+lonMargin)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate trackpoints: %w", err)
	}
	defer rows.Close()

	center := s2.LatLngFromDegrees(lat, lon)
	matched := make(map[string]bool)
	for rows.Next() {
		var userID string
		var pLat, pLon float64
		if err := rows.Scan(&userID, &pLat, &pLon); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if matched[userID] {
			continue
		}
		dist := center.Distance(s2.LatLngFromDegrees(pLat, pLon)).Radians() * earthRadiusMeters
		if dist <= radiusMeters {
			matched[userID] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	users := make([]string, 0, len(matched))
	for id := range matched {
		users = append(users, id)
	}
	sort.Strings(users)
	return users, nil
}

// InvalidActivity is an activity with at least one gap of five minutes or
// more between consecutive trackpoints.
type InvalidActivity struct {
	ActivityID int64  `json:"activity_id"`
	UserID     string `json:"user_id"`
	Jumps      int64  `json:"jumps"`
}

// GetInvalidActivities scans every activity's trackpoints in insertion
// order and reports those where consecutive timestamps jump by five
// minutes or more. Orphan trackpoints (activity_id 0) are skipped.
func (db *DB) GetInvalidActivities() ([]InvalidActivity, error) {
	rows, err := db.Query(`
		WITH gaps AS (
			SELECT activity_id,
			       date_time - LAG(date_time) OVER (
			           PARTITION BY activity_id ORDER BY id
			       ) AS gap
			FROM trackpoints
			WHERE activity_id != 0
		)
		SELECT a.id, a.user_id, COUNT(*) AS jumps
		FROM gaps g
		JOIN activities a ON a.id = g.activity_id
		WHERE g.gap >= 300
		GROUP BY a.id, a.user_id
		ORDER BY a.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query invalid activities: %w", err)
	}
	defer rows.Close()

	var invalid []InvalidActivity
	for rows.Next() {
		var ia InvalidActivity
		if err := rows.Scan(&ia.ActivityID, &ia.UserID, &ia.Jumps); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		invalid = append(invalid, ia)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return invalid, nil
}

// GetActivityDurations returns every activity's duration in seconds, in
// activity-ID order. Input for distribution statistics in the report
// tooling.
func (db *DB) GetActivityDurations() ([]float64, error) {
	rows, err := db.Query(`
		SELECT end_date_time - start_date_time
		FROM activities
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity durations: %w", err)
	}
	defer rows.Close()

	var durations []float64
	for rows.Next() {
		var d float64
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		durations = append(durations, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return durations, nil
}

// GetOrphanTrackPointCount counts trackpoints whose file span matched no
// label record during ingestion (activity_id 0).
func (db *DB) GetOrphanTrackPointCount() (int64, error) {
	var n int64
	if err := db.QueryRow("SELECT COUNT(*) FROM trackpoints WHERE activity_id = 0").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count orphan trackpoints: %w", err)
	}
	return n, nil
}
