package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"dupfinder/database"
	"dupfinder/imageprocessor"
	"dupfinder/logging"
	"dupfinder/scanner"
	"dupfinder/signalhandler"
	"dupfinder/types"
	"dupfinder/utils"
)

var version = "dev"

func main() {
	cmd := utils.NewRootCommand(version, func(opts utils.Options) error {
		_, err := runScan(opts, os.Stdout)
		return err
	})
	if err := cmd.Execute(); err != nil {
		logging.LogError("%v", err)
		os.Exit(1)
	}
}

// runScan owns the store lifecycle around one scan: without persist the
// database is dropped before the scan and again once it has finished.
func runScan(opts utils.Options, out io.Writer) (types.ScanResult, error) {
	logging.SetDebug(opts.DebugMode)
	if opts.LogPath != "" {
		if err := logging.SetupLogger(opts.LogPath); err != nil {
			logging.LogWarning("Failed to setup logging: %v", err)
		} else {
			defer logging.CloseLogger()
		}
	}

	folderInfo, err := os.Stat(opts.InputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return types.ScanResult{}, fmt.Errorf("folder path does not exist: %s", opts.InputPath)
		}
		return types.ScanResult{}, fmt.Errorf("cannot access folder path %s: %w", opts.InputPath, err)
	}
	if !folderInfo.IsDir() {
		return types.ScanResult{}, fmt.Errorf("path is not a directory: %s", opts.InputPath)
	}

	if opts.OutputPath != "" {
		if err := os.MkdirAll(opts.OutputPath, 0755); err != nil {
			return types.ScanResult{}, fmt.Errorf("cannot create output folder %s: %w", opts.OutputPath, err)
		}
	}

	hasher, err := imageprocessor.NewHasher(opts.Hash)
	if err != nil {
		return types.ScanResult{}, err
	}

	if !opts.Persist {
		if err := database.DropDatabase(opts.DatabasePath); err != nil {
			return types.ScanResult{}, err
		}
	}

	store, err := openStore(opts.DatabasePath)
	if err != nil {
		return types.ScanResult{}, err
	}
	if store.Created {
		fmt.Fprintln(out, "Database created")
	}
	if opts.Persist && opts.Reset && !store.Created {
		if err := store.Reset(); err != nil {
			store.Close()
			return types.ScanResult{}, err
		}
		logging.LogInfo("Cleared stored fingerprints in %s", store.Path())
	}

	var (
		releaseOnce sync.Once
		releaseErr  error
	)
	release := func() error {
		releaseOnce.Do(func() {
			if err := store.Close(); err != nil {
				logging.LogWarning("Error closing database: %v", err)
			}
			if !opts.Persist {
				releaseErr = database.DropDatabase(opts.DatabasePath)
			}
		})
		return releaseErr
	}
	stopSignals := signalhandler.SetupHandler(func() { release() })
	defer stopSignals()

	registry := imageprocessor.NewImageLoaderRegistry()
	defer registry.Close()

	scanOpts := []scanner.Option{scanner.WithOutput(out), scanner.WithLoader(registry)}
	if opts.Progress {
		scanOpts = append(scanOpts, scanner.WithProgress(scanner.NewBarProgress(os.Stderr)))
	}
	s := scanner.NewScanner(store, hasher, scanOpts...)

	startTime := time.Now()
	result, scanErr := s.ScanFolder(scanner.ScanOptions{
		FolderPath: opts.InputPath,
		OutputPath: opts.OutputPath,
		Persist:    opts.Persist,
	})

	if scanErr == nil {
		if stats, err := store.GetScanStats(); err == nil {
			logging.DebugLog("Scan took %v. Stored records: %d, unique fingerprints: %d",
				time.Since(startTime).Round(time.Millisecond), stats.TotalImages, stats.UniqueHashes)
		}
	}

	if err := release(); err != nil {
		return result, err
	}
	if scanErr != nil {
		return result, fmt.Errorf("error scanning folder: %w", scanErr)
	}

	fmt.Fprintf(out, "Complete. Checked %d images. Found %d duplicates.\n",
		result.ImagesProcessed, result.DuplicateGroups)
	return result, nil
}

// openStore initializes the database, retrying transient failures
func openStore(dbPath string) (*database.Store, error) {
	const maxRetries = 3

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		store, err := database.InitDatabase(dbPath)
		if err == nil {
			return store, nil
		}
		lastErr = err

		if i < maxRetries-1 {
			logging.LogWarning("Error initializing database (attempt %d/%d): %v - retrying...",
				i+1, maxRetries, err)
			time.Sleep(time.Second * time.Duration(i+1))
		}
	}
	return nil, fmt.Errorf("error initializing database after %d attempts: %w", maxRetries, lastErr)
}
