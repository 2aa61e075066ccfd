package imageprocessor

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"os/exec"
	"strings"

	"dupfinder/logging"

	"github.com/barasher/go-exiftool"
	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
)

// previewTags are tried in order; the first one holding a decodable JPEG wins
var previewTags = []string{
	"JpgFromRaw",
	"PreviewImage",
	"OtherImage",
	"ThumbnailImage",
}

// RawPreviewLoader decodes the preview JPEG embedded in camera RAW files.
// It keeps one exiftool process running for the lifetime of the loader.
type RawPreviewLoader struct {
	BaseImageLoader
	et *exiftool.Exiftool
}

// NewRawPreviewLoader starts exiftool in binary extraction mode
func NewRawPreviewLoader() (*RawPreviewLoader, error) {
	et, err := exiftool.NewExiftool(exiftool.ExtractAllBinaryMetadata())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize exiftool: %w", err)
	}
	return &RawPreviewLoader{
		BaseImageLoader: BaseImageLoader{
			SupportedFormats: []FormatType{
				FormatRAW,
				FormatCR2,
				FormatCR3,
				FormatNEF,
				FormatARW,
				FormatDNG,
			},
		},
		et: et,
	}, nil
}

// LoadImage extracts and decodes the embedded preview of a RAW file
func (l *RawPreviewLoader) LoadImage(fs afero.Fs, path string) (image.Image, error) {
	// exiftool reads the file itself, so it has to live on disk
	if _, ok := fs.(*afero.OsFs); !ok {
		return nil, newImageLoadError("RAW previews can only be read from disk", path)
	}

	fileInfos := l.et.ExtractMetadata(path)
	if len(fileInfos) == 0 {
		return nil, newImageLoadError("no metadata extracted", path)
	}
	fileInfo := fileInfos[0]
	if fileInfo.Err != nil {
		return nil, fmt.Errorf("error extracting metadata from %s: %w", path, fileInfo.Err)
	}

	for _, tag := range previewTags {
		value, err := fileInfo.GetString(tag)
		if err != nil {
			continue
		}
		data, err := decodeBinaryTag(value)
		if err != nil {
			logging.DebugLog("Tag %s of %s is not binary: %v", tag, path, err)
			continue
		}
		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			logging.DebugLog("Tag %s of %s did not decode: %v", tag, path, err)
			continue
		}
		logging.DebugLog("Loaded %s preview from %s", tag, path)
		return img, nil
	}

	return nil, newImageLoadError("no decodable preview image", path)
}

// Close stops the exiftool process
func (l *RawPreviewLoader) Close() error {
	return l.et.Close()
}

// decodeBinaryTag converts an exiftool "base64:..." value into raw bytes
func decodeBinaryTag(value string) ([]byte, error) {
	encoded, ok := strings.CutPrefix(value, "base64:")
	if !ok {
		return nil, fmt.Errorf("value has no base64 prefix")
	}
	return base64.StdEncoding.DecodeString(encoded)
}

// checkExiftoolCommandAvailable checks if exiftool command is available
func checkExiftoolCommandAvailable() bool {
	_, err := exec.LookPath("exiftool")
	return err == nil
}
