package db

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/banshee-data/geolife.report/internal/geolife"
)

// DefaultChunkSize is the number of records per bulk INSERT statement.
const DefaultChunkSize = 500

// BulkLoader persists a materialized corpus into the three collections.
// Each collection is loaded independently: a failure in one is logged and
// does not block the others, and nothing is rolled back.
type BulkLoader struct {
	db    *DB
	chunk int
}

// NewBulkLoader returns a loader writing in chunks of chunkSize records
// per statement. chunkSize <= 0 falls back to DefaultChunkSize.
func NewBulkLoader(db *DB, chunkSize int) *BulkLoader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &BulkLoader{db: db, chunk: chunkSize}
}

// Load inserts all three collections of the corpus. Per-collection
// failures are logged with the collection name and joined into the
// returned error; partial persistence is an accepted outcome.
func (l *BulkLoader) Load(corpus *geolife.Corpus) error {
	var errs []error

	log.Printf("inserting %d users", len(corpus.Users))
	if err := l.InsertUsers(corpus.Users); err != nil {
		log.Printf("bulk insert into users failed: %v", err)
		errs = append(errs, fmt.Errorf("users: %w", err))
	}

	log.Printf("inserting %d activities", len(corpus.Activities))
	if err := l.InsertActivities(corpus.Activities); err != nil {
		log.Printf("bulk insert into activities failed: %v", err)
		errs = append(errs, fmt.Errorf("activities: %w", err))
	}

	log.Printf("inserting %d trackpoints", len(corpus.TrackPoints))
	if err := l.InsertTrackPoints(corpus.TrackPoints); err != nil {
		log.Printf("bulk insert into trackpoints failed: %v", err)
		errs = append(errs, fmt.Errorf("trackpoints: %w", err))
	}

	return errors.Join(errs...)
}

// InsertUsers bulk-inserts user records.
func (l *BulkLoader) InsertUsers(users []geolife.User) error {
	for start := 0; start < len(users); start += l.chunk {
		batch := users[start:min(start+l.chunk, len(users))]

		args := make([]any, 0, len(batch)*2)
		for _, u := range batch {
			hasLabels := 0
			if u.HasLabels {
				hasLabels = 1
			}
			args = append(args, u.ID, hasLabels)
		}

		query := "INSERT INTO users (id, has_labels) VALUES " + placeholders(len(batch), 2)
		if _, err := l.db.Exec(query, args...); err != nil {
			return fmt.Errorf("insert users batch at %d: %w", start, err)
		}
	}
	return nil
}

// InsertActivities bulk-inserts activity records.
func (l *BulkLoader) InsertActivities(activities []geolife.Activity) error {
	for start := 0; start < len(activities); start += l.chunk {
		batch := activities[start:min(start+l.chunk, len(activities))]

		args := make([]any, 0, len(batch)*5)
		for _, a := range batch {
			args = append(args,
				a.ID, a.UserID, a.TransportationMode,
				a.StartDateTime.Unix(), a.EndDateTime.Unix(),
			)
		}

		query := "INSERT INTO activities (id, user_id, transportation_mode, start_date_time, end_date_time) VALUES " +
			placeholders(len(batch), 5)
		if _, err := l.db.Exec(query, args...); err != nil {
			return fmt.Errorf("insert activities batch at %d: %w", start, err)
		}
	}
	return nil
}

// InsertTrackPoints bulk-inserts trackpoint records.
func (l *BulkLoader) InsertTrackPoints(points []geolife.TrackPoint) error {
	for start := 0; start < len(points); start += l.chunk {
		batch := points[start:min(start+l.chunk, len(points))]

		args := make([]any, 0, len(batch)*7)
		for _, p := range batch {
			args = append(args,
				p.ID, p.ActivityID, p.Lat, p.Lon,
				p.Altitude, p.DateDays, p.DateTime.Unix(),
			)
		}

		query := "INSERT INTO trackpoints (id, activity_id, lat, lon, altitude, date_days, date_time) VALUES " +
			placeholders(len(batch), 7)
		if _, err := l.db.Exec(query, args...); err != nil {
			return fmt.Errorf("insert trackpoints batch at %d: %w", start, err)
		}
	}
	return nil
}

// Reset empties the three collections so a fresh ingestion can run
// without manual cleanup. Idempotent; the schema itself stays under
// migration control and is not dropped.
func (db *DB) Reset() error {
	for _, table := range []string{"trackpoints", "activities", "users"} {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}

// placeholders builds the "(?, ...), (?, ...)" tail of a multi-row
// INSERT for rows records of width fields each.
func placeholders(rows, fields int) string {
	row := "(" + strings.Repeat("?, ", fields-1) + "?)"

	var b strings.Builder
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(row)
	}
	return b.String()
}
