package utils

import (
	"fmt"
	"strings"

	"dupfinder/imageprocessor"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Options holds everything the command line configures
type Options struct {
	InputPath    string
	OutputPath   string
	DatabasePath string
	Persist      bool
	Reset        bool
	Hash         string
	DebugMode    bool
	LogPath      string
	Progress     bool
}

// GetDefaultDatabasePath returns the default path for the database file,
// relative to the working directory
func GetDefaultDatabasePath() string {
	return "sqlite.db"
}

// AddFlags registers the scan flags on flags, storing values in opts
func AddFlags(flags *pflag.FlagSet, opts *Options) {
	flags.BoolVarP(&opts.Persist, "persist", "p", false, "keep the fingerprint database between runs and skip files already in it")
	flags.BoolVar(&opts.Reset, "reset", false, "with --persist, clear the stored fingerprints before scanning")
	flags.StringVarP(&opts.OutputPath, "output", "o", "", "directory for duplicate groups (default: the scanned directory)")
	flags.StringVar(&opts.DatabasePath, "database", GetDefaultDatabasePath(), "path to the fingerprint database")
	flags.StringVar(&opts.Hash, "hash", imageprocessor.DefaultHasher,
		fmt.Sprintf("fingerprint algorithm (%s)", strings.Join(imageprocessor.HasherNames(), ", ")))
	flags.BoolVar(&opts.DebugMode, "debug", false, "enable debug logging")
	flags.StringVar(&opts.LogPath, "logfile", "", "also write logs to this file")
	flags.BoolVar(&opts.Progress, "progress", false, "show a progress bar on stderr")
}

// NewRootCommand builds the command line. run is called with the parsed options.
func NewRootCommand(version string, run func(Options) error) *cobra.Command {
	opts := Options{}
	cmd := &cobra.Command{
		Use:   "dupfinder PATH",
		Short: "Group exact perceptual duplicates of the images in a directory",
		Long: `Scan the images directly inside PATH and copy every set of images with
identical fingerprints into a numbered folder (1, 2, ...) for review.
Originals are never moved or deleted.

Without --persist the fingerprint database is removed before and after
the run. With --persist it is kept, and files already recorded in it are
not decoded again.`,
		Example: `  dupfinder ./photos
  dupfinder -p ./photos
  dupfinder --hash phash -o ./review ./photos`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// usage is only useful for argument errors, not scan failures
			cmd.SilenceUsage = true
			opts.InputPath = args[0]
			return run(opts)
		},
	}
	AddFlags(cmd.Flags(), &opts)
	return cmd
}
