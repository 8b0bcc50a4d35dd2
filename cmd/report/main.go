// Command report runs the aggregation queries against an ingested
// database and prints the results, optionally writing a duration
// histogram PNG and a per-mode bar chart HTML to an output directory.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/banshee-data/geolife.report/internal/db"
	"github.com/banshee-data/geolife.report/internal/report"
)

func main() {
	var dbPath string
	var outDir string
	var lat, lon, radius float64

	flag.StringVar(&dbPath, "db", "geolife.db", "path to sqlite db")
	flag.StringVar(&outDir, "out", "", "directory for chart output (empty disables charts)")
	flag.Float64Var(&lat, "lat", 0, "latitude for the nearby-users query")
	flag.Float64Var(&lon, "lon", 0, "longitude for the nearby-users query")
	flag.Float64Var(&radius, "radius", 0, "radius in meters for the nearby-users query (0 disables)")
	flag.Parse()

	dbConn, err := db.NewDB(dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer dbConn.Close()

	counts, err := dbConn.GetCollectionCounts()
	if err != nil {
		log.Fatalf("collection counts: %v", err)
	}
	fmt.Printf("collections: %d users, %d activities, %d trackpoints\n",
		counts.Users, counts.Activities, counts.TrackPoints)

	orphans, err := dbConn.GetOrphanTrackPointCount()
	if err != nil {
		log.Fatalf("orphan trackpoints: %v", err)
	}
	fmt.Printf("orphan trackpoints: %d\n", orphans)

	if run, err := dbConn.LatestIngestRun(); err != nil {
		log.Fatalf("latest ingest run: %v", err)
	} else if run != nil {
		fmt.Printf("last ingest run: %s started %s\n", run.RunID, run.StartedAt)
	}

	modes, err := dbConn.GetActivitiesPerMode()
	if err != nil {
		log.Fatalf("activities per mode: %v", err)
	}
	fmt.Println("\nactivities per transportation mode:")
	for _, mc := range modes {
		fmt.Printf("  %-12s %d\n", mc.Mode, mc.Count)
	}

	years, err := dbConn.GetActivitiesPerYear()
	if err != nil {
		log.Fatalf("activities per year: %v", err)
	}
	fmt.Println("\nactivities per year:")
	for _, yc := range years {
		fmt.Printf("  %d  %d\n", yc.Year, yc.Count)
	}

	summaries, err := dbConn.GetUserSummaries()
	if err != nil {
		log.Fatalf("user summaries: %v", err)
	}
	fmt.Println("\nper-user volume:")
	for _, s := range summaries {
		labeled := ""
		if s.HasLabels {
			labeled = " (labeled)"
		}
		fmt.Printf("  %s%s: %d activities, %d trackpoints\n",
			s.UserID, labeled, s.Activities, s.TrackPoints)
	}

	invalid, err := dbConn.GetInvalidActivities()
	if err != nil {
		log.Fatalf("invalid activities: %v", err)
	}
	fmt.Printf("\nactivities with >=5min trackpoint gaps: %d\n", len(invalid))
	for _, ia := range invalid {
		fmt.Printf("  activity %d (user %s): %d jumps\n", ia.ActivityID, ia.UserID, ia.Jumps)
	}

	if radius > 0 {
		users, err := dbConn.GetUsersNear(lat, lon, radius)
		if err != nil {
			log.Fatalf("users near: %v", err)
		}
		fmt.Printf("\nusers within %.0fm of (%.5f, %.5f): %v\n", radius, lat, lon, users)
	}

	durations, err := dbConn.GetActivityDurations()
	if err != nil {
		log.Fatalf("activity durations: %v", err)
	}
	if len(durations) > 0 {
		stats, err := report.ComputeDurationStats(durations)
		if err != nil {
			log.Fatalf("duration stats: %v", err)
		}
		fmt.Println()
		stats.WriteText(os.Stdout)
	}

	if outDir != "" {
		histPath := filepath.Join(outDir, "duration_histogram.png")
		if len(durations) > 0 {
			if err := report.SaveDurationHistogram(durations, histPath); err != nil {
				log.Fatalf("save histogram: %v", err)
			}
			fmt.Printf("wrote %s\n", histPath)
		}

		chartPath := filepath.Join(outDir, "activities_per_mode.html")
		if len(modes) > 0 {
			if err := report.SaveModeChart(modes, chartPath); err != nil {
				log.Fatalf("save mode chart: %v", err)
			}
			fmt.Printf("wrote %s\n", chartPath)
		}
	}
}
