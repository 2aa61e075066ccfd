//go:build gocv

package imageprocessor

import (
	"fmt"
	"image"
	"sort"

	"gocv.io/x/gocv"
)

func init() {
	registerHasher("opencv", computeOpenCVHash)
}

// computeOpenCVHash computes a DCT-based perceptual hash with OpenCV
func computeOpenCVHash(img image.Image) (uint64, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return 0, fmt.Errorf("cannot convert image to Mat: %w", err)
	}
	defer mat.Close()
	if mat.Empty() {
		return 0, fmt.Errorf("cannot compute hash for empty image")
	}

	// Resize to 32x32 for DCT
	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(mat, &resized, image.Point{X: 32, Y: 32}, 0, 0, gocv.InterpolationLinear)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(resized, &gray, gocv.ColorBGRToGray)

	floatImg := gocv.NewMat()
	defer floatImg.Close()
	gray.ConvertTo(&floatImg, gocv.MatTypeCV32F)

	dct := gocv.NewMat()
	defer dct.Close()
	gocv.DCT(floatImg, &dct, 0)
	if dct.Empty() {
		return 0, fmt.Errorf("OpenCV DCT produced no output")
	}

	// Extract 8x8 low frequency components
	lowFreq := dct.Region(image.Rect(0, 0, 8, 8))
	defer lowFreq.Close()

	values := make([]float32, 0, 64)
	for y := 0; y < lowFreq.Rows(); y++ {
		for x := 0; x < lowFreq.Cols(); x++ {
			values = append(values, lowFreq.GetFloatAt(y, x))
		}
	}
	median := calculateMedian(values)

	var hash uint64
	for _, v := range values {
		hash <<= 1
		if v >= median {
			hash |= 1
		}
	}
	return hash, nil
}

// calculateMedian calculates the median value of a float32 slice
func calculateMedian(values []float32) float32 {
	sorted := make([]float32, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case n%2 == 0:
		return (sorted[n/2-1] + sorted[n/2]) / 2
	default:
		return sorted[n/2]
	}
}
