package imageprocessor

import (
	"image"
	"path/filepath"
	"strings"
	"sync"

	"dupfinder/logging"

	"github.com/spf13/afero"
)

// ImageLoaderRegistry maintains a registry of image loaders
type ImageLoaderRegistry struct {
	loaders       map[string]ImageLoader
	defaultLoader ImageLoader
	closers       []func() error
	mutex         sync.RWMutex
}

// NewImageLoaderRegistry creates a new image loader registry
func NewImageLoaderRegistry() *ImageLoaderRegistry {
	registry := &ImageLoaderRegistry{
		loaders: make(map[string]ImageLoader),
	}

	registry.registerStandardLoaders()
	registry.registerRawLoaders()

	return registry
}

// registerStandardLoaders registers loaders for standard image formats
func (r *ImageLoaderRegistry) registerStandardLoaders() {
	standardLoader := NewStandardImageLoader()
	for _, ext := range extensionsFor(standardLoader.SupportedFormats...) {
		r.RegisterLoader(ext, standardLoader)
	}

	// Files with unknown extensions are still tried with the standard decoders
	r.defaultLoader = standardLoader
}

// registerRawLoaders registers the exiftool preview loader when exiftool is installed
func (r *ImageLoaderRegistry) registerRawLoaders() {
	if !checkExiftoolCommandAvailable() {
		logging.DebugLog("exiftool not found, RAW files will be skipped")
		return
	}

	rawLoader, err := NewRawPreviewLoader()
	if err != nil {
		logging.LogWarning("RAW preview loader unavailable: %v", err)
		return
	}
	for _, ext := range extensionsFor(rawLoader.SupportedFormats...) {
		r.RegisterLoader(ext, rawLoader)
	}
	r.closers = append(r.closers, rawLoader.Close)
	logging.DebugLog("Registered exiftool RAW preview loader")
}

// RegisterLoader registers a new loader for a specific file extension
func (r *ImageLoaderRegistry) RegisterLoader(ext string, loader ImageLoader) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.loaders[strings.ToLower(ext)] = loader
}

// GetLoader returns the appropriate loader for the given path
func (r *ImageLoaderRegistry) GetLoader(path string) ImageLoader {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ext := strings.ToLower(filepath.Ext(path))
	if loader, ok := r.loaders[ext]; ok {
		return loader
	}
	return r.defaultLoader
}

// CanLoadFile checks if a dedicated loader is registered for the file
func (r *ImageLoaderRegistry) CanLoadFile(path string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	_, ok := r.loaders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// LoadImage loads an image using the appropriate registered loader
func (r *ImageLoaderRegistry) LoadImage(fs afero.Fs, path string) (image.Image, error) {
	loader := r.GetLoader(path)
	if loader == nil {
		return nil, newImageLoadError("no suitable loader found", path)
	}
	if !r.CanLoadFile(path) {
		switch {
		case IsRawFormat(path):
			logging.DebugLog("No RAW loader for %s (exiftool missing), trying standard decoders", path)
		case !IsImageFile(path):
			logging.DebugLog("Unknown image extension for %s, trying standard decoders", path)
		}
	}
	return loader.LoadImage(fs, path)
}

// Close releases resources held by registered loaders
func (r *ImageLoaderRegistry) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var firstErr error
	for _, closeFn := range r.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.closers = nil
	return firstErr
}
