// Package imageprocessor decodes image files and reduces them to fingerprints.
package imageprocessor

import (
	"image"

	"github.com/spf13/afero"
)

// ImageLoader is the interface that all image loaders must implement
type ImageLoader interface {
	// CanLoad checks if the loader can handle the given file
	CanLoad(path string) bool

	// LoadImage decodes the file at path from fs
	LoadImage(fs afero.Fs, path string) (image.Image, error)
}
