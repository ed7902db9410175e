// Package raster reconstructs a decompressed GIF image block (palette
// indices plus its descriptor) into a 32-bit 0xAARRGGBB pixel raster: it
// looks indices up in the color table the caller has already chosen,
// deinterlaces the four-pass row order, and turns the transparent index
// (if any) into alpha.
package raster

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by this package.
var (
	ErrImageDataTooShort      = errors.New("gif: image data too short")
	ErrPaletteIndexOutOfRange = errors.New("gif: palette index out of range")
	ErrInterlaceOverrun       = errors.New("gif: interlace row overrun")
)

// GraphicControl carries the subset of a GraphicControlExtension the
// reconstructor needs; callers adapt container.Block into this shape so
// raster has no dependency on the block-stream package.
type GraphicControl struct {
	TransparencyFlag      bool
	TransparentColorIndex int
}

// Descriptor carries the subset of an ImageDescriptor the reconstructor
// needs.
type Descriptor struct {
	Width         int
	Height        int
	InterlaceFlag bool
}

// Reconstruct expands indices (width*height decompressed palette indices,
// row-major in transmission order) into a width*height raster of packed
// 0xAARRGGBB pixels, using table (an RGB24-triple byte slice: table[3*i],
// table[3*i+1], table[3*i+2] are R, G, B for palette index i) as the
// effective color table. gce may be nil when no GraphicControlExtension
// precedes the image.
func Reconstruct(desc Descriptor, table []byte, gce *GraphicControl, indices []byte) ([]uint32, error) {
	want := desc.Width * desc.Height
	if len(indices) < want {
		return nil, fmt.Errorf("%w: got %d indices, need %d", ErrImageDataTooShort, len(indices), want)
	}

	tableLen := len(table) / 3
	hasTransparency := gce != nil && gce.TransparencyFlag

	out := make([]uint32, want)
	rowMap, err := rowOrder(desc.Height, desc.InterlaceFlag)
	if err != nil {
		return nil, err
	}

	src := 0
	for r := 0; r < desc.Height; r++ {
		y := rowMap[r]
		rowStart := y * desc.Width
		for x := 0; x < desc.Width; x++ {
			idx := int(indices[src])
			src++
			if idx >= tableLen {
				return nil, fmt.Errorf("%w: index %d, table has %d entries", ErrPaletteIndexOutOfRange, idx, tableLen)
			}
			if hasTransparency && idx == gce.TransparentColorIndex {
				out[rowStart+x] = 0
				continue
			}
			off := idx * 3
			rr, gg, bb := table[off], table[off+1], table[off+2]
			out[rowStart+x] = 0xFF000000 | uint32(rr)<<16 | uint32(gg)<<8 | uint32(bb)
		}
	}
	return out, nil
}

// rowOrder returns, for each transmission row r in [0,height), the
// destination row y it deinterlaces to. Non-interlaced images map r to r
// directly.
func rowOrder(height int, interlaced bool) ([]int, error) {
	order := make([]int, height)
	if !interlaced {
		for r := range order {
			order[r] = r
		}
		return order, nil
	}

	p1 := ceilDiv(height, 8)
	p2 := ceilDiv(height-4, 8)
	p3 := (height + 1) / 4
	p4 := height / 2

	for r := 0; r < height; r++ {
		rem := r
		switch {
		case rem < p1:
			order[r] = 8 * rem
		case rem-p1 < p2:
			rem -= p1
			order[r] = 4 + 8*rem
		case rem-p1-p2 < p3:
			rem -= p1 + p2
			order[r] = 2 + 4*rem
		case rem-p1-p2-p3 < p4:
			rem -= p1 + p2 + p3
			order[r] = 1 + 2*rem
		default:
			return nil, fmt.Errorf("%w: row %d exceeds interlace pass coverage for height %d", ErrInterlaceOverrun, r, height)
		}
	}
	return order, nil
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
