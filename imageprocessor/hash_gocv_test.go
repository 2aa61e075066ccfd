//go:build gocv

package imageprocessor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculateMedian(t *testing.T) {
	require.Equal(t, float32(0), calculateMedian(nil))
	require.Equal(t, float32(2), calculateMedian([]float32{3, 1, 2}))
	require.Equal(t, float32(2.5), calculateMedian([]float32{4, 1, 3, 2}))
}

func TestOpenCVHasherIsDeterministic(t *testing.T) {
	hasher, err := NewHasher("opencv")
	require.NoError(t, err)

	img := testPattern(64, 48, 0)
	first, err := hasher.Compute(img)
	require.NoError(t, err)
	second, err := hasher.Compute(img)
	require.NoError(t, err)
	require.Equal(t, first.String(), second.String())
}
