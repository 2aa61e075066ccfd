package scanner

import (
	"image"

	"github.com/spf13/afero"
)

// ScanOptions defines the options for scanning
type ScanOptions struct {
	FolderPath string
	// OutputPath is where group directories are created; empty means FolderPath
	OutputPath string
	// Persist enables the skip-check against previously stored filenames
	Persist bool
}

// FingerprintStore is the durable filename -> fingerprint table
type FingerprintStore interface {
	Exists(filename string) (bool, error)
	LookupByFingerprint(fingerprint string) (filename string, found bool, err error)
	Insert(filename, fingerprint string) error
}

// ImageDecoder opens a file as an image
type ImageDecoder interface {
	LoadImage(fs afero.Fs, path string) (image.Image, error)
}

// ProgressReporter receives one Advance per directory entry
type ProgressReporter interface {
	Start(total int)
	Advance(name string)
	Finish()
}

type noProgress struct{}

func (noProgress) Start(int)      {}
func (noProgress) Advance(string) {}
func (noProgress) Finish()        {}
