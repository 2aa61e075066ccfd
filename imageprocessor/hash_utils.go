package imageprocessor

import (
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/artyom/phash"
	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"
)

// DefaultHasher is the gradient hash, a horizontal difference hash
const DefaultHasher = "gradient"

// Hasher reduces a decoded image to a fingerprint
type Hasher interface {
	Name() string
	Compute(img image.Image) (Fingerprint, error)
}

type hashFunc func(img image.Image) (uint64, error)

var hashFuncs = map[string]hashFunc{
	"gradient": goimagehashFunc(goimagehash.DifferenceHash),
	"mean":     goimagehashFunc(goimagehash.AverageHash),
	"dct":      goimagehashFunc(goimagehash.PerceptionHash),
	"phash":    computeDCTPhash,
}

// registerHasher makes an algorithm available to NewHasher. Build-tagged
// hashers call it from init.
func registerHasher(name string, fn hashFunc) {
	hashFuncs[name] = fn
}

// HasherNames lists the available algorithms in sorted order
func HasherNames() []string {
	names := make([]string, 0, len(hashFuncs))
	for name := range hashFuncs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewHasher returns the named hashing algorithm
func NewHasher(name string) (Hasher, error) {
	fn, ok := hashFuncs[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown hash algorithm %q (available: %s)", name, strings.Join(HasherNames(), ", "))
	}
	return &funcHasher{name: strings.ToLower(name), fn: fn}, nil
}

type funcHasher struct {
	name string
	fn   hashFunc
}

func (h *funcHasher) Name() string {
	return h.name
}

func (h *funcHasher) Compute(img image.Image) (Fingerprint, error) {
	if img == nil || img.Bounds().Empty() {
		return Fingerprint{}, fmt.Errorf("cannot compute hash for empty image")
	}
	hash, err := h.fn(img)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("cannot compute %s hash: %w", h.name, err)
	}
	return NewFingerprint(hash), nil
}

func goimagehashFunc(fn func(image.Image) (*goimagehash.ImageHash, error)) hashFunc {
	return func(img image.Image) (uint64, error) {
		hash, err := fn(img)
		if err != nil {
			return 0, err
		}
		return hash.GetHash(), nil
	}
}

// computeDCTPhash is the pHash variant from github.com/artyom/phash, resizing with Lanczos
func computeDCTPhash(img image.Image) (uint64, error) {
	return phash.Get(img, func(img image.Image, w, h int) image.Image {
		return imaging.Resize(img, w, h, imaging.Lanczos)
	})
}
