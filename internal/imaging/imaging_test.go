package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkerboardPNG(t *testing.T, size int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := color.RGBA{R: uint8(x * 255 / size), G: uint8(y * 255 / size), B: 128, A: 255}
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestScrambleThenDescrambleRoundTrips(t *testing.T) {
	original := checkerboardPNG(t, 16)

	scrambled, err := Scramble(original, 4, 749191485, FormatPNG)
	require.NoError(t, err)

	restored, err := Descramble(scrambled, 4, 749191485, FormatPNG)
	require.NoError(t, err)

	origImg, _, err := image.Decode(bytes.NewReader(original))
	require.NoError(t, err)
	restoredImg, _, err := image.Decode(bytes.NewReader(restored))
	require.NoError(t, err)

	assert.Equal(t, origImg.Bounds(), restoredImg.Bounds())

	bounds := origImg.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			assert.Equal(t, origImg.At(x, y), restoredImg.At(x, y), "pixel (%d,%d) mismatch", x, y)
		}
	}
}

func TestScrambleActuallyShufflesBlocks(t *testing.T) {
	original := checkerboardPNG(t, 16)

	scrambled, err := Scramble(original, 4, 749191485, FormatPNG)
	require.NoError(t, err)

	assert.NotEqual(t, original, scrambled)
}

func TestDescrambleRejectsGridLargerThanImage(t *testing.T) {
	original := checkerboardPNG(t, 4)

	_, err := Descramble(original, 8, 1, FormatPNG)
	require.Error(t, err)
}

func TestDescrambleRejectsNonDivisibleGrid(t *testing.T) {
	original := checkerboardPNG(t, 10)

	_, err := Descramble(original, 3, 1, FormatPNG)
	require.Error(t, err)
}

func TestBlockOrderIsAPermutation(t *testing.T) {
	order := blockOrder(16, 749191485)

	seen := make(map[int]bool, 16)
	for _, idx := range order {
		assert.False(t, seen[idx], "index %d repeated", idx)
		seen[idx] = true
	}
	assert.Len(t, seen, 16)
}

func TestBlockOrderDeterministic(t *testing.T) {
	a := blockOrder(16, 42)
	b := blockOrder(16, 42)
	assert.Equal(t, a, b)
}
