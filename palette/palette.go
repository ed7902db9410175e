// Package palette supplies the encoder with a color table: either an exact
// palette of an image's actual colors, or — when an image has too many
// distinct colors — a fixed quantized fallback built from a 6x6x6 web-safe
// color cube, mapped in parallel the way a fast GIF encoder maps pixels to
// that cube.
package palette

import (
	"errors"
	"image"
	"runtime"
	"sync"
)

// ErrTooManyColors is returned by BuildExact's caller path when neither an
// exact nor a quantized palette can represent an image within budget (the
// quantized provider here never fails, but a caller-supplied Provider may).
var ErrTooManyColors = errors.New("gif: too many colors for available palette budget")

// RGB24 is one 3-byte color table entry.
type RGB24 struct {
	R, G, B byte
}

// Palette is a small, queryable color table: at most 256 entries, indexed
// by byte.
type Palette interface {
	Len() int
	Entry(i int) RGB24
	IndexOf(c RGB24) byte
}

// Provider builds a Palette for an arbitrary source image, the way the
// encoder's sole external collaborator for color reduction is expected to.
type Provider interface {
	// BuildExact returns the image's exact color table and true, or
	// (nil, false) if the image has more than maxColors distinct colors.
	BuildExact(img image.Image, maxColors int) (Palette, bool)
	// BuildQuantized always succeeds, approximating img with at most
	// maxColors colors.
	BuildQuantized(img image.Image, maxColors int) Palette
}

// table is the concrete Palette implementation shared by both exact and
// quantized builders: an ordered slice of entries plus a reverse-lookup map.
type table struct {
	entries []RGB24
	index   map[RGB24]byte
}

func newTable(entries []RGB24) *table {
	t := &table{entries: entries, index: make(map[RGB24]byte, len(entries))}
	for i, c := range entries {
		if _, ok := t.index[c]; !ok {
			t.index[c] = byte(i)
		}
	}
	return t
}

func (t *table) Len() int          { return len(t.entries) }
func (t *table) Entry(i int) RGB24 { return t.entries[i] }
func (t *table) IndexOf(c RGB24) byte {
	if i, ok := t.index[c]; ok {
		return i
	}
	return nearest(t.entries, c)
}

func nearest(entries []RGB24, c RGB24) byte {
	best := 0
	bestDist := -1
	for i, e := range entries {
		dr := int(e.R) - int(c.R)
		dg := int(e.G) - int(c.G)
		db := int(e.B) - int(c.B)
		dist := dr*dr + dg*dg + db*db
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return byte(best)
}

// DefaultProvider is the encoder's default Provider: an exact palette for
// images with few enough colors, falling back to the web-safe quantized
// cube otherwise.
type DefaultProvider struct {
	// Workers bounds the goroutines used for quantized mapping. Zero means
	// runtime.NumCPU().
	Workers int
}

// BuildExact tallies the image's distinct colors; if more than maxColors
// are present it returns (nil, false) so the caller falls back to
// BuildQuantized.
func (p DefaultProvider) BuildExact(img image.Image, maxColors int) (Palette, bool) {
	b := img.Bounds()
	seen := make(map[RGB24]struct{})
	var ordered []RGB24
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			c := RGB24{byte(r >> 8), byte(g >> 8), byte(bl >> 8)}
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			ordered = append(ordered, c)
			if len(ordered) > maxColors {
				return nil, false
			}
		}
	}
	return newTable(ordered), true
}

// webSafeLevels are the 6 component levels of the classic 6x6x6 web-safe
// cube (0, 51, 102, 153, 204, 255).
var webSafeLevels = [6]byte{0, 51, 102, 153, 204, 255}

// BuildQuantized builds the 216-entry web-safe cube (capped to maxColors,
// though a caller with transparency reserved still has at least 255 slots
// available, comfortably above 216).
func (p DefaultProvider) BuildQuantized(img image.Image, maxColors int) Palette {
	n := 216
	if maxColors < n {
		n = maxColors
	}
	entries := make([]RGB24, 0, n)
	for r := 0; r < 6 && len(entries) < n; r++ {
		for g := 0; g < 6 && len(entries) < n; g++ {
			for bl := 0; bl < 6 && len(entries) < n; bl++ {
				entries = append(entries, RGB24{webSafeLevels[r], webSafeLevels[g], webSafeLevels[bl]})
			}
		}
	}
	return newTable(entries)
}

// MapIndices quantizes img against pal in parallel row bands, returning a
// width*height slice of palette indices in row-major order. This mirrors
// the row-banded goroutine split a fast GIF encoder uses to map pixels to
// a fixed palette without per-pixel synchronization.
func MapIndices(img image.Image, pal Palette, workers int) []byte {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	out := make([]byte, width*height)
	if height == 0 {
		return out
	}
	if workers > height {
		workers = height
	}
	rowsPerWorker := (height + workers - 1) / workers

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		startY := i * rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > height {
			endY = height
		}
		if startY >= endY {
			continue
		}
		wg.Add(1)
		go func(sy, ey int) {
			defer wg.Done()
			for y := sy; y < ey; y++ {
				srcY := b.Min.Y + y
				for x := 0; x < width; x++ {
					r, g, bl, _ := img.At(b.Min.X+x, srcY).RGBA()
					c := RGB24{byte(r >> 8), byte(g >> 8), byte(bl >> 8)}
					out[y*width+x] = pal.IndexOf(c)
				}
			}
		}(startY, endY)
	}
	wg.Wait()
	return out
}
