package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/khushveer007/courseget/internal/archive"
	"github.com/khushveer007/courseget/internal/config"
	"github.com/khushveer007/courseget/internal/discovery"
	"github.com/khushveer007/courseget/internal/engine"
	"github.com/khushveer007/courseget/internal/fetch"
	"github.com/khushveer007/courseget/internal/logger"
	"github.com/khushveer007/courseget/internal/repository"
)

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		log.Fatalf("Error reading configuration: %v", err)
	}

	dir := flag.String("dir", cfg.DownloadDir, "Local download directory")
	manifestPath := flag.String("manifest", "", "Path to the discovery manifest JSON (required)")
	wait := flag.Int("wait", 0, "Seconds to pause for a manual login before discovery")
	reset := flag.Bool("reset", false, "Discard saved progress and start over")
	headless := flag.Bool("headless", false, "Run without an interactive session")
	noParallel := flag.Bool("no-parallel", false, "Disable parallel downloads (fully sequential)")
	doArchive := flag.Bool("archive", false, "Upload downloaded assets to the archive")
	keepLocal := flag.Bool("keep-local", false, "Keep local files after a verified upload")
	archiveDir := flag.String("archive-dir", cfg.ArchiveDir, "Archive mirror directory")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *manifestPath == "" {
		fmt.Fprintln(os.Stderr, "missing required -manifest flag")
		flag.Usage()
		os.Exit(2)
	}

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.Fatalf("Error creating download directory %s: %v", *dir, err)
	}

	err = logger.InitLogging(*debug, filepath.Join(*dir, "courseget.log"))
	if err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logger.Close()

	store, err := repository.NewBboltStore(filepath.Join(*dir, ".courseget.db"))
	if err != nil {
		log.Fatalf("Error opening progress store: %v", err)
	}

	defer func() {
		if err := store.Close(); err != nil {
			logger.Errorf("Error closing progress store: %v", err)
		}
	}()

	var session discovery.Session = discovery.NewManifestSession(*manifestPath)
	if *wait > 0 {
		session = discovery.WithLoginWait(session, time.Duration(*wait)*time.Second, *headless)
	}

	defer func() {
		if err := session.Close(); err != nil {
			logger.Errorf("Error closing discovery session: %v", err)
		}
	}()

	client := fetch.NewClient(cfg.RequestsPerSecond)
	fetcher := fetch.NewFetcher(client, cfg.RequestTimeout)

	var archiver *archive.Coordinator

	if *doArchive {
		if *archiveDir == "" {
			fmt.Fprintln(os.Stderr, "archival enabled but no archive directory configured (-archive-dir)")
			os.Exit(2)
		}

		archiver = archive.NewCoordinator(archive.NewDirMirror(*archiveDir), store, *keepLocal)
	}

	workers := cfg.Workers
	if *noParallel {
		workers = 1
	} else {
		logger.Info("Parallel downloads enabled (%d workers).", workers)
	}

	eng := engine.New(&engine.Config{
		DownloadDir:  *dir,
		Workers:      workers,
		MaxRetries:   cfg.MaxRetries,
		RetryDelay:   cfg.RetryDelay,
		VariantOrder: cfg.VariantOrder,
		Reset:        *reset,
	}, session, store, fetcher, archiver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Warn("Interrupt received, finishing in-flight transfers...")
		cancel()
	}()

	summary, err := eng.Run(ctx)
	if err != nil {
		logger.Error("Run failed: %v", err)
		os.Exit(1)
	}

	summary.Print()
}
