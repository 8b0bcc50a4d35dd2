package db

import (
	"os"
	"testing"
	"time"

	"github.com/banshee-data/geolife.report/internal/geolife"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	fname := t.Name() + ".db"
	_ = os.Remove(fname)

	db, err := NewDB(fname)
	if err != nil {
		t.Fatalf("failed to create test DB: %v", err)
	}
	return db
}

func cleanupTestDB(t *testing.T, db *DB) {
	t.Helper()
	fname := t.Name() + ".db"
	db.Close()
	_ = os.Remove(fname)
	_ = os.Remove(fname + "-shm")
	_ = os.Remove(fname + "-wal")
}

func ts(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04:05", value)
	if err != nil {
		t.Fatalf("bad test timestamp %q: %v", value, err)
	}
	return parsed.UTC()
}

// testCorpus builds a small two-user corpus: user 000 unlabeled with one
// activity, user 010 labeled with a taxi trip (which has a 10-minute
// trackpoint gap) and a walk trip, plus one orphan trackpoint.
func testCorpus(t *testing.T) *geolife.Corpus {
	t.Helper()
	return &geolife.Corpus{
		Users: []geolife.User{
			{ID: "000", HasLabels: false},
			{ID: "010", HasLabels: true},
		},
		Activities: []geolife.Activity{
			{ID: 1, UserID: "000", TransportationMode: geolife.ModeUnlabeled,
				StartDateTime: ts(t, "2008-10-23 02:53:04"), EndDateTime: ts(t, "2008-10-23 02:53:10")},
			{ID: 2, UserID: "010", TransportationMode: "taxi",
				StartDateTime: ts(t, "2008-10-24 10:00:00"), EndDateTime: ts(t, "2008-10-24 10:10:00")},
			{ID: 3, UserID: "010", TransportationMode: "walk",
				StartDateTime: ts(t, "2009-03-01 08:00:00"), EndDateTime: ts(t, "2009-03-01 08:02:00")},
		},
		TrackPoints: []geolife.TrackPoint{
			{ID: 1, ActivityID: 1, Lat: 39.9847, Lon: 116.3184, Altitude: 492, DateDays: 39744.12, DateTime: ts(t, "2008-10-23 02:53:04")},
			{ID: 2, ActivityID: 1, Lat: 39.9846, Lon: 116.3185, Altitude: 492, DateDays: 39744.12, DateTime: ts(t, "2008-10-23 02:53:10")},
			{ID: 3, ActivityID: 2, Lat: 39.9000, Lon: 116.4000, Altitude: 50, DateDays: 39745.42, DateTime: ts(t, "2008-10-24 10:00:00")},
			{ID: 4, ActivityID: 2, Lat: 39.9001, Lon: 116.4001, Altitude: 50, DateDays: 39745.42, DateTime: ts(t, "2008-10-24 10:10:00")},
			{ID: 5, ActivityID: 3, Lat: 31.2304, Lon: 121.4737, Altitude: 10, DateDays: 39873.33, DateTime: ts(t, "2009-03-01 08:00:00")},
			{ID: 6, ActivityID: 3, Lat: 31.2305, Lon: 121.4738, Altitude: 10, DateDays: 39873.33, DateTime: ts(t, "2009-03-01 08:02:00")},
			{ID: 7, ActivityID: 0, Lat: 50.0000, Lon: 10.0000, Altitude: 0, DateDays: 39800.00, DateTime: ts(t, "2008-12-18 00:00:00")},
		},
		OrphanTrackPoints: 1,
		SkippedFiles:      0,
	}
}

func loadTestCorpus(t *testing.T, db *DB) *geolife.Corpus {
	t.Helper()
	corpus := testCorpus(t)
	if err := NewBulkLoader(db, 0).Load(corpus); err != nil {
		t.Fatalf("failed to load test corpus: %v", err)
	}
	return corpus
}

func TestNewDBAppliesMigrations(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(t, db)

	for _, table := range []string{"users", "activities", "trackpoints", "ingest_runs"} {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Errorf("table %s missing after migration: %v", table, err)
		}
	}
}
