package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/geolife.report/internal/geolife"
	"github.com/banshee-data/geolife.report/internal/timeutil"
)

// IngestRun records one ingestion pass over the dataset: when it ran and
// what it loaded. Runs are bookkeeping only; queries never join on them.
type IngestRun struct {
	RunID             string     `json:"run_id"`
	StartedAt         time.Time  `json:"started_at"`
	FinishedAt        *time.Time `json:"finished_at"`
	Users             int        `json:"users"`
	Activities        int        `json:"activities"`
	TrackPoints       int        `json:"trackpoints"`
	OrphanTrackPoints int        `json:"orphan_trackpoints"`
	SkippedFiles      int        `json:"skipped_files"`
}

// StartIngestRun creates a run record with a fresh UUID and the clock's
// current time.
func (db *DB) StartIngestRun(clock timeutil.Clock) (*IngestRun, error) {
	run := &IngestRun{
		RunID:     uuid.New().String(),
		StartedAt: clock.Now().UTC().Truncate(time.Second),
	}

	_, err := db.Exec(
		"INSERT INTO ingest_runs (run_id, started_at) VALUES (?, ?)",
		run.RunID, run.StartedAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ingest run: %w", err)
	}

	return run, nil
}

// FinishIngestRun stamps the run with its finish time and the corpus
// totals.
func (db *DB) FinishIngestRun(clock timeutil.Clock, run *IngestRun, corpus *geolife.Corpus) error {
	finished := clock.Now().UTC().Truncate(time.Second)
	run.FinishedAt = &finished
	run.Users = len(corpus.Users)
	run.Activities = len(corpus.Activities)
	run.TrackPoints = len(corpus.TrackPoints)
	run.OrphanTrackPoints = corpus.OrphanTrackPoints
	run.SkippedFiles = corpus.SkippedFiles

	_, err := db.Exec(`
		UPDATE ingest_runs
		SET finished_at = ?, users = ?, activities = ?, trackpoints = ?,
		    orphan_trackpoints = ?, skipped_files = ?
		WHERE run_id = ?`,
		finished.Unix(), run.Users, run.Activities, run.TrackPoints,
		run.OrphanTrackPoints, run.SkippedFiles, run.RunID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish ingest run: %w", err)
	}

	return nil
}

// LatestIngestRun returns the most recently started run, or nil if no
// ingestion has been recorded.
func (db *DB) LatestIngestRun() (*IngestRun, error) {
	var run IngestRun
	var startedUnix int64
	var finishedUnix sql.NullInt64

	err := db.QueryRow(`
		SELECT run_id, started_at, finished_at, users, activities,
		       trackpoints, orphan_trackpoints, skipped_files
		FROM ingest_runs
		ORDER BY started_at DESC, run_id DESC
		LIMIT 1`).Scan(
		&run.RunID, &startedUnix, &finishedUnix, &run.Users, &run.Activities,
		&run.TrackPoints, &run.OrphanTrackPoints, &run.SkippedFiles,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest ingest run: %w", err)
	}

	run.StartedAt = time.Unix(startedUnix, 0).UTC()
	if finishedUnix.Valid {
		finished := time.Unix(finishedUnix.Int64, 0).UTC()
		run.FinishedAt = &finished
	}

	return &run, nil
}
