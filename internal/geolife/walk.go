package geolife

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/banshee-data/geolife.report/internal/fsutil"
	"github.com/banshee-data/geolife.report/internal/monitoring"
)

const (
	labeledIDsFile   = "labeled_ids.txt"
	dataDirName      = "Data"
	labelsFileName   = "labels.txt"
	trajectoryMarker = "Trajectory"
)

// Config describes the dataset layout and parse bounds for a walk. The
// root directory contains the labeled-IDs manifest and a Data/ subtree
// whose top-level directories are user IDs.
type Config struct {
	DatasetRoot  string
	MaxRows      int
	MaxFileBytes int64
}

// Corpus is the fully materialized output of one walk, ready for bulk
// loading. The whole dataset is held in memory; at the known corpus scale
// this is deliberate (no streaming persistence).
type Corpus struct {
	Users       []User
	Activities  []Activity
	TrackPoints []TrackPoint

	OrphanTrackPoints int
	SkippedFiles      int
}

// Walker traverses a dataset tree and drives assembly for every user.
type Walker struct {
	FS       fsutil.FileSystem
	Config   Config
	Counters *Counters
}

// NewWalker returns a Walker over fsys with fresh counters.
func NewWalker(fsys fsutil.FileSystem, cfg Config) *Walker {
	return &Walker{FS: fsys, Config: cfg, Counters: NewCounters()}
}

// Walk discovers users under Data/ in directory order (first encounter
// wins), associates labeled users with their labels.txt, and assembles
// activities and trackpoints from every directory whose path contains the
// trajectory marker. Trajectory files are processed in lexicographic
// order so repeat runs assign identical IDs.
func (w *Walker) Walk() (*Corpus, error) {
	labeled, err := w.readLabeledIDs()
	if err != nil {
		return nil, err
	}

	dataRoot := filepath.Join(w.Config.DatasetRoot, dataDirName)
	entries, err := w.FS.ReadDir(dataRoot)
	if err != nil {
		return nil, fmt.Errorf("read dataset root %s: %w", dataRoot, err)
	}

	parser := NewParser(w.FS)
	if w.Config.MaxRows > 0 {
		parser.MaxRows = w.Config.MaxRows
	}
	if w.Config.MaxFileBytes > 0 {
		parser.MaxFileBytes = w.Config.MaxFileBytes
	}
	assembler := &Assembler{Parser: parser, Counters: w.Counters}

	corpus := &Corpus{}
	res := &AssembleResult{}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		userID := entry.Name()
		userDir := filepath.Join(dataRoot, userID)

		corpus.Users = append(corpus.Users, User{ID: userID, HasLabels: labeled[userID]})

		// A stray labels.txt for a user absent from the manifest is
		// ignored; only manifest membership grants label matching.
		var labels []LabelRecord
		if labeled[userID] {
			labels, err = ParseLabelFile(w.FS, filepath.Join(userDir, labelsFileName))
			if err != nil {
				return nil, err
			}
		}

		monitoring.Logf("ingesting activities and trackpoints for user %s", userID)
		if err := w.walkUser(userID, userDir, labels, assembler, res); err != nil {
			return nil, err
		}
	}

	corpus.Activities = res.Activities
	corpus.TrackPoints = res.TrackPoints
	corpus.OrphanTrackPoints = res.OrphanTrackPoints
	corpus.SkippedFiles = res.SkippedFiles

	return corpus, nil
}

// walkUser recurses through one user's directory and assembles every
// trajectory directory it finds.
func (w *Walker) walkUser(userID, dir string, labels []LabelRecord, assembler *Assembler, res *AssembleResult) error {
	entries, err := w.FS.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}

	if strings.Contains(dir, trajectoryMarker) {
		var files []string
		for _, entry := range entries {
			if !entry.IsDir() {
				files = append(files, entry.Name())
			}
		}
		// ReadDir returns names sorted, which is the required
		// lexicographic processing order.
		assembler.AssembleDir(userID, dir, files, labels, res)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			if err := w.walkUser(userID, filepath.Join(dir, entry.Name()), labels, assembler, res); err != nil {
				return err
			}
		}
	}

	return nil
}

// readLabeledIDs loads the manifest of users that have labeled data, one
// ID per line.
func (w *Walker) readLabeledIDs() (map[string]bool, error) {
	path := filepath.Join(w.Config.DatasetRoot, labeledIDsFile)
	f, err := w.FS.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open labeled IDs manifest %s: %w", path, err)
	}
	defer f.Close()

	ids := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id != "" {
			ids[id] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return ids, nil
}
