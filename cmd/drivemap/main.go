// Command drivemap scrapes a public Google Drive folder tree and writes the
// catalog document the API server loads at startup.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Shaheer-Khan1/AdGenerator/internal/drivemap"
	"github.com/Shaheer-Khan1/AdGenerator/internal/infra"
)

func main() {
	_ = godotenv.Load()

	var (
		folderID = flag.String("folder", os.Getenv("DRIVE_ROOT_FOLDER_ID"), "public Drive folder id to scrape")
		outPath  = flag.String("out", "drive_videos.json", "output path for the catalog document")
		depth    = flag.Int("depth", 3, "maximum folder depth to descend")
		timeout  = flag.Duration("timeout", 5*time.Minute, "overall scrape timeout")
	)
	flag.Parse()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if *folderID == "" {
		logger.Fatal().Msg("a folder id is required (-folder or DRIVE_ROOT_FOLDER_ID)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	scraper := drivemap.NewScraper(cfg.DriveBaseURL, nil, &logger)
	doc, err := scraper.BuildDocument(ctx, *folderID, *depth)
	if err != nil {
		logger.Fatal().Err(err).Msg("scrape failed")
	}

	data, err := drivemap.MarshalDocument(doc)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not encode catalog document")
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		logger.Fatal().Err(err).Msg("could not write catalog document")
	}

	videos := 0
	for _, folder := range doc {
		videos += countVideos(folder)
	}
	logger.Info().
		Str("out", *outPath).
		Int("folders", len(doc)).
		Int("videos", videos).
		Msg("catalog document written")
}

func countVideos(doc drivemap.FolderDoc) int {
	n := len(doc.Videos)
	for _, sub := range doc.Subfolders {
		n += countVideos(sub)
	}
	return n
}
