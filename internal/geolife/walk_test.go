package geolife

import (
	"testing"

	"github.com/banshee-data/geolife.report/internal/fsutil"
)

// newTestDataset builds a small two-user corpus: user 000 unlabeled, user
// 010 labeled with one taxi record matching its single file.
func newTestDataset(t *testing.T) *fsutil.MemoryFileSystem {
	t.Helper()
	fsys := fsutil.NewMemoryFileSystem()

	if err := fsys.WriteFile("dataset/labeled_ids.txt", []byte("010\n"), 0644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	writePointFile(t, fsys, "dataset/Data/000/Trajectory/20081023025304.plt",
		"39.9,116.3,0,10,39744.1,2008-10-23,02:53:04",
		"39.9,116.3,0,10,39744.1,2008-10-23,02:53:10",
	)

	labels := "Start Time\tEnd Time\tTransportation Mode\n" +
		"2008/10/24 10:00:00\t2008/10/24 10:05:00\ttaxi\n"
	if err := fsys.WriteFile("dataset/Data/010/labels.txt", []byte(labels), 0644); err != nil {
		t.Fatalf("write labels: %v", err)
	}
	writePointFile(t, fsys, "dataset/Data/010/Trajectory/20081024100000.plt",
		"40.0,116.4,0,20,39745.4,2008-10-24,10:00:00",
		"40.0,116.4,0,20,39745.4,2008-10-24,10:05:00",
	)

	return fsys
}

func TestWalk(t *testing.T) {
	fsys := newTestDataset(t)
	walker := NewWalker(fsys, Config{DatasetRoot: "dataset"})

	corpus, err := walker.Walk()
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	if len(corpus.Users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(corpus.Users))
	}
	// Directory order: 000 first, 010 second.
	if corpus.Users[0].ID != "000" || corpus.Users[0].HasLabels {
		t.Errorf("unexpected first user: %+v", corpus.Users[0])
	}
	if corpus.Users[1].ID != "010" || !corpus.Users[1].HasLabels {
		t.Errorf("unexpected second user: %+v", corpus.Users[1])
	}

	if len(corpus.Activities) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(corpus.Activities))
	}
	if corpus.Activities[0].UserID != "000" || corpus.Activities[0].TransportationMode != ModeUnlabeled {
		t.Errorf("unexpected first activity: %+v", corpus.Activities[0])
	}
	if corpus.Activities[1].UserID != "010" || corpus.Activities[1].TransportationMode != "taxi" {
		t.Errorf("unexpected second activity: %+v", corpus.Activities[1])
	}

	if len(corpus.TrackPoints) != 4 {
		t.Errorf("expected 4 trackpoints, got %d", len(corpus.TrackPoints))
	}
	if corpus.OrphanTrackPoints != 0 || corpus.SkippedFiles != 0 {
		t.Errorf("unexpected orphans=%d skipped=%d", corpus.OrphanTrackPoints, corpus.SkippedFiles)
	}
}

func TestWalkDeterministicIDs(t *testing.T) {
	first, err := NewWalker(newTestDataset(t), Config{DatasetRoot: "dataset"}).Walk()
	if err != nil {
		t.Fatalf("first walk failed: %v", err)
	}
	second, err := NewWalker(newTestDataset(t), Config{DatasetRoot: "dataset"}).Walk()
	if err != nil {
		t.Fatalf("second walk failed: %v", err)
	}

	for i := range first.Activities {
		if first.Activities[i].ID != second.Activities[i].ID {
			t.Errorf("activity %d ID differs between runs: %d vs %d",
				i, first.Activities[i].ID, second.Activities[i].ID)
		}
	}
	for i := range first.TrackPoints {
		if first.TrackPoints[i].ID != second.TrackPoints[i].ID {
			t.Errorf("trackpoint %d ID differs between runs: %d vs %d",
				i, first.TrackPoints[i].ID, second.TrackPoints[i].ID)
		}
	}
}

func TestWalkStrayLabelsIgnored(t *testing.T) {
	fsys := newTestDataset(t)
	// A labels.txt for a user missing from the manifest grants nothing.
	stray := "Start Time\tEnd Time\tTransportation Mode\n" +
		"2008/10/23 02:53:04\t2008/10/23 02:53:10\tbus\n"
	if err := fsys.WriteFile("dataset/Data/000/labels.txt", []byte(stray), 0644); err != nil {
		t.Fatalf("write stray labels: %v", err)
	}

	corpus, err := NewWalker(fsys, Config{DatasetRoot: "dataset"}).Walk()
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	for _, a := range corpus.Activities {
		if a.UserID == "000" && a.TransportationMode != ModeUnlabeled {
			t.Errorf("user 000 should stay unlabeled, got %q", a.TransportationMode)
		}
	}
}

func TestWalkMissingManifest(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	fsys.MkdirAll("dataset/Data")

	if _, err := NewWalker(fsys, Config{DatasetRoot: "dataset"}).Walk(); err == nil {
		t.Fatal("expected error for missing labeled_ids.txt")
	}
}

func TestWalkRowBoundFromConfig(t *testing.T) {
	fsys := newTestDataset(t)
	walker := NewWalker(fsys, Config{DatasetRoot: "dataset", MaxRows: 1})

	corpus, err := walker.Walk()
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if corpus.SkippedFiles != 2 {
		t.Errorf("expected both files excluded by the row bound, got %d skipped", corpus.SkippedFiles)
	}
	if len(corpus.Activities) != 0 {
		t.Errorf("expected no activities, got %d", len(corpus.Activities))
	}
}
