package scanner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"dupfinder/imageprocessor"
	"dupfinder/logging"
	"dupfinder/types"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Scanner groups exact-fingerprint duplicates of one directory into
// numbered folders
type Scanner struct {
	fs       afero.Fs
	store    FingerprintStore
	loader   ImageDecoder
	hasher   imageprocessor.Hasher
	out      io.Writer
	progress ProgressReporter
}

// Option configures a Scanner
type Option func(*Scanner)

// WithFs sets the filesystem the scanner reads and writes
func WithFs(fs afero.Fs) Option {
	return func(s *Scanner) { s.fs = fs }
}

// WithOutput sets where console messages are written
func WithOutput(w io.Writer) Option {
	return func(s *Scanner) { s.out = w }
}

// WithProgress sets the progress reporter
func WithProgress(p ProgressReporter) Option {
	return func(s *Scanner) { s.progress = p }
}

// WithLoader replaces the image decoder
func WithLoader(loader ImageDecoder) Option {
	return func(s *Scanner) { s.loader = loader }
}

// NewScanner creates a scanner backed by store and hasher. Without options it
// works on the OS filesystem, prints to stdout and uses the default loader
// registry.
func NewScanner(store FingerprintStore, hasher imageprocessor.Hasher, opts ...Option) *Scanner {
	s := &Scanner{
		fs:       afero.NewOsFs(),
		store:    store,
		hasher:   hasher,
		out:      os.Stdout,
		progress: noProgress{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.loader == nil {
		s.loader = imageprocessor.NewImageLoaderRegistry()
	}
	return s
}

// scanState is the state owned by a single ScanFolder call
type scanState struct {
	options   ScanOptions
	groupRoot string
	tracker   *DuplicateTracker
	result    types.ScanResult
}

// ScanFolder processes the immediate entries of options.FolderPath one at a
// time. It returns the counters gathered so far together with any fatal error.
func (s *Scanner) ScanFolder(options ScanOptions) (types.ScanResult, error) {
	entries, err := afero.ReadDir(s.fs, options.FolderPath)
	if err != nil {
		return types.ScanResult{}, fmt.Errorf("cannot read folder %s: %w", options.FolderPath, err)
	}

	state := &scanState{
		options:   options,
		groupRoot: options.FolderPath,
		tracker:   NewDuplicateTracker(),
	}
	if options.OutputPath != "" {
		state.groupRoot = options.OutputPath
	}

	logging.WithFields(logrus.Fields{
		"folder":  options.FolderPath,
		"groups":  state.groupRoot,
		"persist": options.Persist,
		"hash":    s.hasher.Name(),
		"entries": len(entries),
	}).Debug("starting scan")

	s.progress.Start(len(entries))
	defer s.progress.Finish()

	for _, entry := range entries {
		s.progress.Advance(entry.Name())

		path := filepath.Join(options.FolderPath, entry.Name())
		if !isRegularFile(s.fs, path, entry) {
			continue
		}

		counted, err := s.processFile(state, entry.Name())
		if err != nil {
			logging.LogError("Scan of %s stopped at %s: %v", options.FolderPath, entry.Name(), err)
			return state.result, err
		}
		if counted {
			state.result.ImagesProcessed++
		}
	}

	for _, dup := range state.tracker.Entries() {
		logging.DebugLog("Group %d: canonical original %s", dup.Group, dup.Filename)
	}
	return state.result, nil
}

// processFile runs one regular file through skip-check, decode, fingerprint
// and classification. It reports whether the file counts as processed.
func (s *Scanner) processFile(state *scanState, name string) (bool, error) {
	path := filepath.Join(state.options.FolderPath, name)

	if state.options.Persist && s.alreadyIndexed(name) {
		logging.DebugLog("Skipping already indexed image: %s", name)
		return true, nil
	}

	img, err := s.loader.LoadImage(s.fs, path)
	if err != nil {
		logging.LogImageProcessed(path, false, err.Error())
		return false, nil
	}

	fp, err := s.hasher.Compute(img)
	if err != nil {
		logging.LogImageProcessed(path, false, err.Error())
		return false, nil
	}
	fingerprint := fp.String()

	original, found := s.matchFingerprint(fingerprint)
	switch {
	case !found:
		if err := s.store.Insert(name, fingerprint); err != nil {
			logging.LogWarning("Cannot store %s: %v", name, err)
		}
	case original == name:
		// a fail-open skip-check can lead a file back to its own record
		logging.DebugLog("%s is already the canonical record for %s", name, fingerprint)
	default:
		if err := s.placeDuplicate(state, original, name); err != nil {
			return true, err
		}
	}

	logging.LogImageProcessed(path, true, "")
	return true, nil
}

// placeDuplicate copies name into the group of original, creating the group
// on the first duplicate.
func (s *Scanner) placeDuplicate(state *scanState, original, name string) error {
	folder := state.options.FolderPath

	if group, ok := state.tracker.Find(original); ok {
		dir := GroupDir(state.groupRoot, group)
		logging.DebugLog("Adding %s to group %d (original %s)", name, group, original)
		return copyFile(s.fs, filepath.Join(folder, name), filepath.Join(dir, name))
	}

	state.result.DuplicateGroups++
	group := state.result.DuplicateGroups
	if err := state.tracker.Register(original, group); err != nil {
		return err
	}

	dir := GroupDir(state.groupRoot, group)
	fmt.Fprintf(s.out, "Duplicate found. Creating dir %s\n", dir)
	if err := s.fs.Mkdir(dir, 0755); err != nil {
		fmt.Fprintln(s.out, err)
		logging.LogWarning("Cannot create group directory %s, %s and %s not copied: %v", dir, original, name, err)
		return nil
	}

	if err := copyFile(s.fs, filepath.Join(folder, original), filepath.Join(dir, original)); err != nil {
		return err
	}
	if err := copyFile(s.fs, filepath.Join(folder, name), filepath.Join(dir, name)); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Copied %s and %s to %s\n", original, name, dir)
	return nil
}
