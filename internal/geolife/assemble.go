package geolife

import (
	"errors"
	"path/filepath"

	"github.com/banshee-data/geolife.report/internal/monitoring"
)

// Assembler turns one user's trajectory files into activities and
// trackpoints, assigning IDs from the shared counters.
type Assembler struct {
	Parser   *Parser
	Counters *Counters
}

// AssembleResult accumulates the output of one or more AssembleDir calls.
type AssembleResult struct {
	Activities  []Activity
	TrackPoints []TrackPoint

	// OrphanTrackPoints counts points from labeled users whose file span
	// matched no label record. They are kept with ActivityID 0.
	OrphanTrackPoints int

	// SkippedFiles counts files excluded by the size bound or dropped
	// after a parse failure.
	SkippedFiles int
}

// AssembleDir processes the named trajectory files under dir for userID,
// appending to res. Files are expected in sorted order. For labeled users
// the first label record whose (start, end) exactly equals the file span
// wins; every trackpoint of a file carries the ID of the single activity
// created for that file. Parse failures and size exclusions skip the file
// and leave the rest of the run intact.
func (a *Assembler) AssembleDir(userID, dir string, files []string, labels []LabelRecord, res *AssembleResult) {
	for _, name := range files {
		path := filepath.Join(dir, name)
		traj, err := a.Parser.ParseFile(path, a.Counters)
		if errors.Is(err, ErrExcluded) {
			monitoring.Logf("skipping %s: %v", path, err)
			res.SkippedFiles++
			continue
		}
		if err != nil {
			monitoring.Logf("skipping unparseable file %s: %v", path, err)
			res.SkippedFiles++
			continue
		}

		if len(labels) == 0 {
			a.appendActivity(userID, ModeUnlabeled, traj, res)
			continue
		}

		matched := -1
		extra := 0
		for i := range labels {
			if labels[i].Start.Equal(traj.Start) && labels[i].End.Equal(traj.End) {
				if matched < 0 {
					matched = i
				} else {
					extra++
				}
			}
		}

		if matched < 0 {
			// Span matched no label: the points are kept but reference no
			// activity. ActivityID 0 is never assigned, so the dangling
			// linkage stays inert and queryable.
			monitoring.Logf("user %s: %s span matches no label record; keeping %d orphan trackpoints", userID, name, len(traj.Points))
			res.OrphanTrackPoints += len(traj.Points)
			res.TrackPoints = append(res.TrackPoints, traj.Points...)
			continue
		}
		if extra > 0 {
			monitoring.Logf("user %s: %s span matches %d additional label records; keeping first (%q)", userID, name, extra, labels[matched].Mode)
		}

		a.appendActivity(userID, labels[matched].Mode, traj, res)
	}
}

// appendActivity creates the single activity for a file and stamps its ID
// onto every point. The stamp happens after matching has settled, so a
// trackpoint can never carry the ID of an activity created for another
// file.
func (a *Assembler) appendActivity(userID, mode string, traj *Trajectory, res *AssembleResult) {
	id := a.Counters.NextActivity()
	res.Activities = append(res.Activities, Activity{
		ID:                 id,
		UserID:             userID,
		TransportationMode: mode,
		StartDateTime:      traj.Start,
		EndDateTime:        traj.End,
	})
	for i := range traj.Points {
		traj.Points[i].ActivityID = id
	}
	res.TrackPoints = append(res.TrackPoints, traj.Points...)
}
