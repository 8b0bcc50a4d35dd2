package geolife

import (
	"testing"

	"github.com/banshee-data/geolife.report/internal/fsutil"
)

func newTestAssembler(fsys *fsutil.MemoryFileSystem) *Assembler {
	return &Assembler{Parser: NewParser(fsys), Counters: NewCounters()}
}

func TestAssembleDirUnlabeled(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	writePointFile(t, fsys, "000/Trajectory/a.plt",
		"39.9,116.3,0,10,39744.1,2008-10-23,02:00:00",
		"39.9,116.3,0,10,39744.1,2008-10-23,02:05:00",
	)

	a := newTestAssembler(fsys)
	res := &AssembleResult{}
	a.AssembleDir("000", "000/Trajectory", []string{"a.plt"}, nil, res)

	if len(res.Activities) != 1 {
		t.Fatalf("expected 1 activity, got %d", len(res.Activities))
	}
	act := res.Activities[0]
	if act.ID != 1 || act.UserID != "000" || act.TransportationMode != ModeUnlabeled {
		t.Errorf("unexpected activity: %+v", act)
	}
	if !act.StartDateTime.Equal(mustTime(t, "2008-10-23 02:00:00")) ||
		!act.EndDateTime.Equal(mustTime(t, "2008-10-23 02:05:00")) {
		t.Errorf("unexpected activity span: %+v", act)
	}
	for _, p := range res.TrackPoints {
		if p.ActivityID != act.ID {
			t.Errorf("point %d not stamped with activity %d: %+v", p.ID, act.ID, p)
		}
	}
}

func TestAssembleDirLabelMatch(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	writePointFile(t, fsys, "010/Trajectory/a.plt",
		"39.9,116.3,0,10,39744.1,2008-10-23,02:00:00",
		"39.9,116.3,0,10,39744.1,2008-10-23,02:30:00",
	)

	labels := []LabelRecord{
		{Start: mustTime(t, "2008-10-23 01:00:00"), End: mustTime(t, "2008-10-23 01:30:00"), Mode: "bus"},
		{Start: mustTime(t, "2008-10-23 02:00:00"), End: mustTime(t, "2008-10-23 02:30:00"), Mode: "taxi"},
	}

	a := newTestAssembler(fsys)
	res := &AssembleResult{}
	a.AssembleDir("010", "010/Trajectory", []string{"a.plt"}, labels, res)

	if len(res.Activities) != 1 {
		t.Fatalf("expected 1 activity, got %d", len(res.Activities))
	}
	if res.Activities[0].TransportationMode != "taxi" {
		t.Errorf("expected taxi, got %q", res.Activities[0].TransportationMode)
	}
	if res.OrphanTrackPoints != 0 {
		t.Errorf("expected no orphans, got %d", res.OrphanTrackPoints)
	}
}

func TestAssembleDirNoLabelMatchKeepsOrphans(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	writePointFile(t, fsys, "010/Trajectory/a.plt",
		"39.9,116.3,0,10,39744.1,2008-10-23,02:00:00",
		"39.9,116.3,0,10,39744.1,2008-10-23,02:30:00",
	)

	// Label spans only part of the file; exact equality is required.
	labels := []LabelRecord{
		{Start: mustTime(t, "2008-10-23 02:00:00"), End: mustTime(t, "2008-10-23 02:15:00"), Mode: "taxi"},
	}

	a := newTestAssembler(fsys)
	res := &AssembleResult{}
	a.AssembleDir("010", "010/Trajectory", []string{"a.plt"}, labels, res)

	if len(res.Activities) != 0 {
		t.Fatalf("expected no activities, got %d", len(res.Activities))
	}
	if res.OrphanTrackPoints != 2 || len(res.TrackPoints) != 2 {
		t.Fatalf("expected 2 orphan points, got orphans=%d points=%d", res.OrphanTrackPoints, len(res.TrackPoints))
	}
	for _, p := range res.TrackPoints {
		if p.ActivityID != 0 {
			t.Errorf("orphan point should carry activity ID 0, got %d", p.ActivityID)
		}
	}
	if got := a.Counters.NextActivity(); got != 1 {
		t.Errorf("orphaned file must not consume activity IDs, next is %d", got)
	}
}

func TestAssembleDirMultipleMatchesFirstWins(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	writePointFile(t, fsys, "010/Trajectory/a.plt",
		"39.9,116.3,0,10,39744.1,2008-10-23,02:00:00",
		"39.9,116.3,0,10,39744.1,2008-10-23,02:30:00",
	)

	labels := []LabelRecord{
		{Start: mustTime(t, "2008-10-23 02:00:00"), End: mustTime(t, "2008-10-23 02:30:00"), Mode: "bike"},
		{Start: mustTime(t, "2008-10-23 02:00:00"), End: mustTime(t, "2008-10-23 02:30:00"), Mode: "walk"},
	}

	a := newTestAssembler(fsys)
	res := &AssembleResult{}
	a.AssembleDir("010", "010/Trajectory", []string{"a.plt"}, labels, res)

	if len(res.Activities) != 1 {
		t.Fatalf("expected a single activity, got %d", len(res.Activities))
	}
	if res.Activities[0].TransportationMode != "bike" {
		t.Errorf("first matching label should win, got %q", res.Activities[0].TransportationMode)
	}
}

func TestAssembleDirSkipsBrokenFiles(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	writePointFile(t, fsys, "000/Trajectory/a.plt",
		"39.9,116.3,0,10,39744.1,2008-10-23,02:00:00",
	)
	writePointFile(t, fsys, "000/Trajectory/b.plt",
		"garbage row",
	)
	writePointFile(t, fsys, "000/Trajectory/c.plt",
		"39.9,116.3,0,10,39744.1,2008-10-24,02:00:00",
	)

	a := newTestAssembler(fsys)
	res := &AssembleResult{}
	a.AssembleDir("000", "000/Trajectory", []string{"a.plt", "b.plt", "c.plt"}, nil, res)

	if len(res.Activities) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(res.Activities))
	}
	if res.SkippedFiles != 1 {
		t.Errorf("expected 1 skipped file, got %d", res.SkippedFiles)
	}
	// IDs stay dense across the skipped file.
	if res.Activities[0].ID != 1 || res.Activities[1].ID != 2 {
		t.Errorf("activity IDs not dense: %d, %d", res.Activities[0].ID, res.Activities[1].ID)
	}
	if res.TrackPoints[0].ID != 1 || res.TrackPoints[1].ID != 2 {
		t.Errorf("trackpoint IDs not dense: %d, %d", res.TrackPoints[0].ID, res.TrackPoints[1].ID)
	}
}
