package imageprocessor

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"dupfinder/logging"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// testPattern draws a horizontal gradient: kind 0 rises left to right,
// kind 1 falls, kind 2 rises then falls
func testPattern(w, h, kind int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := x * 255 / (w - 1)
			switch kind {
			case 1:
				v = 255 - v
			case 2:
				if x > w/2 {
					v = (w - 1 - x) * 255 / (w - 1)
				}
				v *= 2
				if v > 255 {
					v = 255
				}
			}
			img.SetGray(x, y, color.Gray{Y: uint8(v)})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFingerprintString(t *testing.T) {
	require.Equal(t, "ASNFZ4mrze8=", NewFingerprint(0x0123456789abcdef).String())
	require.Equal(t, "AAAAAAAAAAA=", NewFingerprint(0).String())
	require.NotEqual(t, NewFingerprint(1).String(), NewFingerprint(1<<63).String())
}

func TestNewHasherUnknown(t *testing.T) {
	_, err := NewHasher("sha1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "gradient")
}

func TestHasherNames(t *testing.T) {
	names := HasherNames()
	require.Subset(t, names, []string{"dct", "gradient", "mean", "phash"})
	require.IsIncreasing(t, names)
}

func TestHashersAreDeterministic(t *testing.T) {
	img := testPattern(90, 64, 2)
	for _, name := range []string{"gradient", "mean", "dct", "phash"} {
		t.Run(name, func(t *testing.T) {
			hasher, err := NewHasher(name)
			require.NoError(t, err)
			require.Equal(t, name, hasher.Name())

			first, err := hasher.Compute(img)
			require.NoError(t, err)
			second, err := hasher.Compute(img)
			require.NoError(t, err)
			require.Equal(t, first.String(), second.String())
		})
	}
}

func TestHashersSeparateMirroredGradients(t *testing.T) {
	rising := testPattern(90, 64, 0)
	falling := testPattern(90, 64, 1)
	for _, name := range []string{"gradient", "mean"} {
		t.Run(name, func(t *testing.T) {
			hasher, err := NewHasher(name)
			require.NoError(t, err)

			a, err := hasher.Compute(rising)
			require.NoError(t, err)
			b, err := hasher.Compute(falling)
			require.NoError(t, err)
			require.NotEqual(t, a.String(), b.String())
		})
	}
}

func TestHasherRejectsEmptyImage(t *testing.T) {
	hasher, err := NewHasher(DefaultHasher)
	require.NoError(t, err)

	_, err = hasher.Compute(image.NewGray(image.Rect(0, 0, 0, 0)))
	require.Error(t, err)
}

func TestRegistryLoadsStandardFormats(t *testing.T) {
	fs := afero.NewMemMapFs()
	data := encodePNG(t, testPattern(32, 16, 0))
	require.NoError(t, afero.WriteFile(fs, "/img/a.png", data, 0644))
	// unknown extensions fall back to the standard decoders
	require.NoError(t, afero.WriteFile(fs, "/img/a.bin", data, 0644))
	require.NoError(t, afero.WriteFile(fs, "/img/notes.txt", []byte("hello"), 0644))

	registry := NewImageLoaderRegistry()
	defer registry.Close()

	require.True(t, registry.CanLoadFile("/img/a.png"))
	require.False(t, registry.CanLoadFile("/img/a.bin"))

	img, err := registry.LoadImage(fs, "/img/a.png")
	require.NoError(t, err)
	require.Equal(t, 32, img.Bounds().Dx())

	img, err = registry.LoadImage(fs, "/img/a.bin")
	require.NoError(t, err)
	require.Equal(t, 16, img.Bounds().Dy())

	_, err = registry.LoadImage(fs, "/img/notes.txt")
	require.Error(t, err)

	_, err = registry.LoadImage(fs, "/img/missing.png")
	require.Error(t, err)
}

func TestFallbackDecodingIsLogged(t *testing.T) {
	var logs bytes.Buffer
	logging.SetOutput(&logs)
	logging.SetDebug(true)
	t.Cleanup(func() {
		logging.SetDebug(false)
		logging.SetOutput(os.Stderr)
	})

	fs := afero.NewMemMapFs()
	data := encodePNG(t, testPattern(32, 16, 0))
	require.NoError(t, afero.WriteFile(fs, "/img/a.cr2", data, 0644))
	require.NoError(t, afero.WriteFile(fs, "/img/a.bin", data, 0644))
	require.NoError(t, afero.WriteFile(fs, "/img/b.png", data, 0644))

	// standard loaders only, as when exiftool is not installed
	registry := &ImageLoaderRegistry{loaders: make(map[string]ImageLoader)}
	registry.registerStandardLoaders()

	_, err := registry.LoadImage(fs, "/img/a.cr2")
	require.NoError(t, err)
	require.Contains(t, logs.String(), "No RAW loader for /img/a.cr2")

	_, err = registry.LoadImage(fs, "/img/a.bin")
	require.NoError(t, err)
	require.Contains(t, logs.String(), "Unknown image extension for /img/a.bin")

	logs.Reset()
	_, err = registry.LoadImage(fs, "/img/b.png")
	require.NoError(t, err)
	require.Empty(t, logs.String())
}

func TestFormats(t *testing.T) {
	require.Equal(t, FormatJPEG, GetFileFormat("a/B.JPG"))
	require.Equal(t, FormatUnknown, GetFileFormat("notes.txt"))
	require.True(t, IsImageFile("x.webp"))
	require.False(t, IsImageFile("x"))
	require.True(t, IsRawFormat("x.CR3"))
	require.True(t, IsRawFormat("x.raf"))
	require.False(t, IsRawFormat("x.png"))
	require.ElementsMatch(t, []string{".tif", ".tiff"}, extensionsFor(FormatTIFF))
}

func TestDecodeBinaryTag(t *testing.T) {
	data, err := decodeBinaryTag("base64:aGVsbG8=")
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), data)

	_, err = decodeBinaryTag("(Binary data 1234 bytes)")
	require.Error(t, err)
}
