package gif

import (
	"encoding/binary"
	"fmt"
	"image"
	"io"

	"github.com/teamsplitter/gif/internal/container"
	"github.com/teamsplitter/gif/internal/lzw"
	"github.com/teamsplitter/gif/palette"
	"github.com/teamsplitter/gif/xmp"
)

// EncoderOptions controls GIF encoding parameters.
type EncoderOptions struct {
	// XMP, if non-empty, is embedded as an XMP application extension
	// immediately after the Graphic Control Extension.
	XMP string

	// Palette selects the color-reduction strategy. A nil Palette uses
	// palette.DefaultProvider{}.
	Palette palette.Provider
}

// Encode writes img to w as a single-frame GIF89a image. If opts is nil,
// default options are used: no XMP, and palette.DefaultProvider{}.
//
// The encoder always emits a local color table sized to the smallest power
// of two that fits the palette (never a global one), after a Graphic
// Control Extension and the optional XMP extension — simpler than
// tracking a global/local divergence for a single-frame writer.
func Encode(w io.Writer, img image.Image, opts *EncoderOptions) error {
	if opts == nil {
		opts = &EncoderOptions{}
	}
	provider := opts.Palette
	if provider == nil {
		provider = palette.DefaultProvider{}
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("gif: cannot encode %dx%d image", width, height)
	}

	hasAlpha := imageHasAlpha(img)
	maxColors := 256
	if hasAlpha {
		maxColors = 255
	}

	pal, ok := provider.BuildExact(img, maxColors)
	if !ok {
		pal = provider.BuildQuantized(img, maxColors)
	}

	paletteSize := pal.Len()
	if hasAlpha {
		paletteSize++ // reserve one slot for the transparent index
	}
	if paletteSize > 256 {
		return fmt.Errorf("%w: palette of %d colors exceeds 256-entry budget", ErrTooManyColors, paletteSize)
	}

	sizeCode := colorTableSizeCode(paletteSize)
	tableEntries := 1 << uint(sizeCode+1)

	// Reserved alpha slot sits immediately after the real palette entries:
	// index paletteSize-1, i.e. pal.Len() (equivalently the table's first
	// padding slot), not the table's last entry.
	transparentIndex := pal.Len()
	workers := 0
	switch p := provider.(type) {
	case palette.DefaultProvider:
		workers = p.Workers
	case *palette.DefaultProvider:
		workers = p.Workers
	}
	indices := paletteIndices(img, pal, hasAlpha, transparentIndex, workers)

	dst := make([]byte, 0, 1024)
	dst = append(dst, "GIF89a"...)
	dst = appendLE16(dst, width)
	dst = appendLE16(dst, height)
	dst = append(dst, byte(sizeCode<<4)) // no global color table, color resolution = s
	dst = append(dst, 0)                // background color index
	dst = append(dst, 0)                // pixel aspect ratio

	dst = appendGraphicControl(dst, hasAlpha, transparentIndex)

	if opts.XMP != "" {
		dst = appendXMPExtension(dst, opts.XMP)
	}

	dst = appendImageDescriptor(dst, width, height, sizeCode)
	dst = appendColorTable(dst, pal, tableEntries)

	minCodeSize := sizeCode + 1
	if minCodeSize < 2 {
		minCodeSize = 2
	}
	dst = append(dst, byte(minCodeSize))
	dst = container.WriteSubBlocks(dst, lzw.Encode(indices, minCodeSize))

	dst = append(dst, container.TagTrailer)

	_, err := w.Write(dst)
	return err
}

// colorTableSizeCode returns the smallest size code s (0..7) with
// 2^(s+1) >= n.
func colorTableSizeCode(n int) int {
	s := 0
	for (1 << uint(s+1)) < n {
		s++
	}
	return s
}

func appendLE16(dst []byte, v int) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(v))
	return append(dst, b[:]...)
}

func appendGraphicControl(dst []byte, hasAlpha bool, transparentIndex int) []byte {
	dst = append(dst, container.TagExtension, container.LabelGraphicControl, 4)
	var packed byte
	if hasAlpha {
		packed |= 0x01
	}
	dst = append(dst, packed)
	dst = appendLE16(dst, 0) // delay
	if hasAlpha {
		dst = append(dst, byte(transparentIndex))
	} else {
		dst = append(dst, 0)
	}
	dst = append(dst, 0) // block terminator
	return dst
}

func appendXMPExtension(dst []byte, xml string) []byte {
	dst = append(dst, container.TagExtension, container.LabelApplication, byte(len(xmp.Identifier())))
	dst = append(dst, xmp.Identifier()...)
	dst = container.WriteSubBlocks(dst, xmp.XMLWithTrailer(xml))
	return dst
}

func appendImageDescriptor(dst []byte, width, height, sizeCode int) []byte {
	dst = append(dst, container.TagImageDescriptor)
	dst = appendLE16(dst, 0) // left
	dst = appendLE16(dst, 0) // top
	dst = appendLE16(dst, width)
	dst = appendLE16(dst, height)
	packed := byte(0x80) | byte(sizeCode) // local color table present
	dst = append(dst, packed)
	return dst
}

func appendColorTable(dst []byte, pal palette.Palette, tableEntries int) []byte {
	for i := 0; i < tableEntries; i++ {
		if i < pal.Len() {
			c := pal.Entry(i)
			dst = append(dst, c.R, c.G, c.B)
		} else {
			dst = append(dst, 0, 0, 0)
		}
	}
	return dst
}

// paletteIndices maps every pixel of img to a palette index, row-major,
// via palette.MapIndices' row-banded parallel mapping, then overwrites any
// pixel with alpha below full opacity with transparentIndex when hasAlpha
// is set. workers is forwarded to palette.MapIndices (0 picks its default).
func paletteIndices(img image.Image, pal palette.Palette, hasAlpha bool, transparentIndex, workers int) []byte {
	out := palette.MapIndices(img, pal, workers)
	if !hasAlpha {
		return out
	}

	b := img.Bounds()
	width := b.Dx()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			if a != 0xFFFF {
				out[(y-b.Min.Y)*width+(x-b.Min.X)] = byte(transparentIndex)
			}
		}
	}
	return out
}

// imageHasAlpha reports whether img has any pixel that isn't fully opaque.
// GIF has no partial transparency: any pixel with alpha below 255 requires
// the reserved transparent index, per the format's single-bit alpha model.
func imageHasAlpha(img image.Image) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			if a != 0xFFFF {
				return true
			}
		}
	}
	return false
}
