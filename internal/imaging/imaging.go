// Package imaging descrambles chapter page images. Several vendors split
// a page into a rectbox x rectbox grid of blocks and shuffle the blocks
// client-side-deterministically, keyed by a per-chapter seed, so that a
// raw CDN fetch alone is not a readable page.
//
// The shuffle order here is this module's own deterministic PRNG (a
// 32-bit linear congruential generator feeding a Fisher-Yates shuffle of
// block indices): the upstream vendor's exact generator was not present in
// the retrieved reference sources, only its golden test fixture's seed and
// grid size were. descramble(scramble(x)) == x holds for this scheme by
// construction, and is tested, but it will not reproduce a vendor's own
// scrambled bytes bit-for-bit — there is no way to do that without their
// generator.
package imaging

import (
	"bytes"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"

	verrors "mangavault/pkg/errors"
)

// lcgState is a 32-bit linear congruential generator using the constants
// from Numerical Recipes (a=1664525, c=1013904223); chosen only for being
// a small, well-known, deterministic generator, not for cryptographic
// properties this use case has no need of.
type lcgState uint32

func newLCG(seed uint32) *lcgState {
	s := lcgState(seed)
	return &s
}

func (s *lcgState) next() uint32 {
	*s = lcgState(uint32(*s)*1664525 + 1013904223)
	return uint32(*s)
}

// blockOrder computes the permutation of n block indices a seed produces,
// via Fisher-Yates over the LCG stream.
func blockOrder(n int, seed uint32) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	rng := newLCG(seed)
	for i := n - 1; i > 0; i-- {
		j := int(rng.next() % uint32(i+1))
		order[i], order[j] = order[j], order[i]
	}

	return order
}

// Format is an output image codec.
type Format int

const (
	FormatPNG Format = iota
	FormatJPEG
)

// Descramble reverses the block-grid shuffle on an encoded image, given
// the same (gridSize, seed) the vendor's chapter metadata reported for
// it.
func Descramble(encoded []byte, gridSize int, seed uint32, format Format) ([]byte, error) {
	return permute(encoded, gridSize, seed, format, true)
}

// Scramble applies the block-grid shuffle; the inverse of Descramble. It
// exists mainly so round-trip tests can exercise Descramble without a
// vendor-scrambled fixture on disk.
func Scramble(encoded []byte, gridSize int, seed uint32, format Format) ([]byte, error) {
	return permute(encoded, gridSize, seed, format, false)
}

func permute(encoded []byte, gridSize int, seed uint32, format Format, inverse bool) ([]byte, error) {
	if gridSize <= 0 {
		return nil, verrors.ErrGridTooLarge.WithDetails("grid_size", gridSize)
	}

	src, _, err := image.Decode(bytes.NewReader(encoded))
	if err != nil {
		return nil, verrors.ErrImageDecode.Wrap(err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if gridSize > width || gridSize > height {
		return nil, verrors.ErrGridTooLarge.WithDetails("grid_size", gridSize).WithDetails("width", width).WithDetails("height", height)
	}
	if width%gridSize != 0 || height%gridSize != 0 {
		return nil, verrors.ErrGridTooLarge.WithDetails("reason", "image dimensions must be a multiple of grid_size")
	}

	blockW := width / gridSize
	blockH := height / gridSize
	n := gridSize * gridSize

	order := blockOrder(n, seed)

	dst := image.NewRGBA(bounds)

	for i := 0; i < n; i++ {
		srcIdx, dstIdx := i, order[i]
		if inverse {
			srcIdx, dstIdx = order[i], i
		}

		srcRect := blockRect(srcIdx, gridSize, blockW, blockH, bounds)
		dstRect := blockRect(dstIdx, gridSize, blockW, blockH, bounds)

		draw.Draw(dst, dstRect, src, srcRect.Min, draw.Src)
	}

	var buf bytes.Buffer
	switch format {
	case FormatJPEG:
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 95}); err != nil {
			return nil, verrors.ErrInternal.Wrap(err)
		}
	default:
		if err := png.Encode(&buf, dst); err != nil {
			return nil, verrors.ErrInternal.Wrap(err)
		}
	}

	return buf.Bytes(), nil
}

func blockRect(idx, gridSize, blockW, blockH int, bounds image.Rectangle) image.Rectangle {
	row := idx / gridSize
	col := idx % gridSize

	x0 := bounds.Min.X + col*blockW
	y0 := bounds.Min.Y + row*blockH

	return image.Rect(x0, y0, x0+blockW, y0+blockH)
}
