// Command ingest walks a Geolife dataset tree and bulk-loads it into the
// sqlite database, recording an ingest run for later inspection.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/banshee-data/geolife.report/internal/config"
	"github.com/banshee-data/geolife.report/internal/db"
	"github.com/banshee-data/geolife.report/internal/fsutil"
	"github.com/banshee-data/geolife.report/internal/geolife"
	"github.com/banshee-data/geolife.report/internal/timeutil"
)

func main() {
	var dbPath string
	var datasetRoot string
	var configPath string
	var reset bool

	flag.StringVar(&dbPath, "db", "geolife.db", "path to sqlite db")
	flag.StringVar(&datasetRoot, "dataset", "", "path to the dataset root (contains labeled_ids.txt and Data/)")
	flag.StringVar(&configPath, "config", "", "optional JSON config with parse and load tuning")
	flag.BoolVar(&reset, "reset", false, "empty the collections before loading")
	flag.Parse()

	if datasetRoot == "" {
		log.Fatalf("dataset must be provided")
	}

	cfg := config.EmptyIngestConfig()
	if configPath != "" {
		var err error
		cfg, err = config.LoadIngestConfig(configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	walker := geolife.NewWalker(&fsutil.OSFileSystem{}, geolife.Config{
		DatasetRoot:  datasetRoot,
		MaxRows:      cfg.GetMaxRows(),
		MaxFileBytes: cfg.GetMaxFileBytes(),
	})

	dbConn, err := db.NewDB(dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer dbConn.Close()

	if reset {
		if err := dbConn.Reset(); err != nil {
			log.Fatalf("reset collections: %v", err)
		}
		log.Printf("collections emptied")
	}

	clock := timeutil.RealClock{}
	run, err := dbConn.StartIngestRun(clock)
	if err != nil {
		log.Fatalf("start ingest run: %v", err)
	}
	log.Printf("ingest run %s started", run.RunID)

	corpus, err := walker.Walk()
	if err != nil {
		log.Fatalf("walk dataset: %v", err)
	}

	loader := db.NewBulkLoader(dbConn, cfg.GetChunkSize())
	if err := loader.Load(corpus); err != nil {
		log.Printf("load finished with errors: %v", err)
	}

	if err := dbConn.FinishIngestRun(clock, run, corpus); err != nil {
		log.Fatalf("finish ingest run: %v", err)
	}

	fmt.Printf("ingest complete: %d users, %d activities, %d trackpoints (%d orphan), %d files skipped\n",
		len(corpus.Users), len(corpus.Activities), len(corpus.TrackPoints),
		corpus.OrphanTrackPoints, corpus.SkippedFiles)
}
