// Package lzw implements the variable-width LZW codec used by GIF image
// data: a growing, array-backed dictionary driven by clear and end codes,
// operating in little-endian (LSB-first) bit order via internal/bitio. This
// is a GIF-specific LZW variant, not the stdlib compress/lzw codec — the
// teacher package likewise hand-writes its own VP8/VP8L bitstream codecs
// rather than delegating to a pre-built one, because the whole point of the
// exercise is the codec itself.
package lzw

import (
	"errors"
	"fmt"

	"github.com/teamsplitter/gif/internal/bitio"
)

// Sentinel errors returned by this package.
var (
	ErrCorruptImageData  = errors.New("gif: corrupt LZW image data")
	ErrImageDataTooShort = errors.New("gif: image data too short")
	ErrImageTooLarge     = errors.New("gif: image dimensions too large")
)

// maxDictSize is the fixed dictionary capacity: 12-bit codes max out at
// 4096 entries.
const maxDictSize = 4096

// maxAllocBytes bounds width*height before allocating the output buffer, so
// a malformed descriptor cannot trigger an out-of-memory allocation.
const maxAllocBytes = 1 << 28 // 256Mi index bytes (plenty for any real GIF)

// entry is one dictionary slot: prefix is the code of the string this
// entry extends (-1 for a root single-byte entry), suffix is the
// appended byte.
type entry struct {
	prefix int32
	suffix byte
}

// Decode decompresses raw (a concatenated GIF LZW sub-block chain) into
// exactly width*height palette index bytes using minCodeSize (the GIF LZW
// "initial code size", valid range 2..8).
//
// Decoding stops as soon as the requested byte count is produced or the end
// code is seen; any remaining bits in raw past that point are a harmless
// over-run (never a hard error) and are simply left unread.
func Decode(raw []byte, minCodeSize, width, height int) ([]byte, error) {
	if minCodeSize < 2 || minCodeSize > 8 {
		return nil, fmt.Errorf("%w: LZW minimum code size %d out of range [2,8]", ErrCorruptImageData, minCodeSize)
	}
	needed := width * height
	if needed < 0 || needed > maxAllocBytes {
		return nil, fmt.Errorf("%w: %dx%d exceeds allocation budget", ErrImageTooLarge, width, height)
	}

	clearCode := 1 << uint(minCodeSize)
	endCode := clearCode + 1
	initWidth := minCodeSize + 1

	dict := make([]entry, maxDictSize)
	resetDict := func() int {
		for i := 0; i < clearCode; i++ {
			dict[i] = entry{prefix: -1, suffix: byte(i)}
		}
		return clearCode + 2
	}
	nextCode := resetDict()
	codeWidth := initWidth

	out := make([]byte, 0, needed)
	r := bitio.NewCodeReader(raw)

	var scratch [maxDictSize]byte // reconstruction buffer, reused per code

	reconstruct := func(code int) ([]byte, error) {
		n := 0
		c := code
		for c >= 0 {
			if n >= maxDictSize {
				return nil, fmt.Errorf("%w: dictionary chain exceeds %d entries", ErrCorruptImageData, maxDictSize)
			}
			if c < clearCode {
				scratch[n] = byte(c)
				n++
				break
			}
			if c >= nextCode {
				return nil, fmt.Errorf("%w: code %d not yet defined", ErrCorruptImageData, c)
			}
			scratch[n] = dict[c].suffix
			n++
			c = int(dict[c].prefix)
		}
		// scratch[:n] is reversed (suffix-first); flip in place.
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			scratch[i], scratch[j] = scratch[j], scratch[i]
		}
		return append([]byte(nil), scratch[:n]...), nil
	}

	prev := -1
	for len(out) < needed {
		code, err := r.ReadCode(codeWidth)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptImageData, err)
		}

		switch {
		case code == clearCode:
			nextCode = resetDict()
			codeWidth = initWidth
			code, err = r.ReadCode(codeWidth)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorruptImageData, err)
			}
			if code >= clearCode {
				return nil, fmt.Errorf("%w: code after clear is not a root byte", ErrCorruptImageData)
			}
			out = append(out, byte(code))
			prev = code

		case code == endCode:
			return finish(out, needed)

		case code < nextCode:
			str, err := reconstruct(code)
			if err != nil {
				return nil, err
			}
			out = append(out, str...)
			if nextCode < maxDictSize {
				dict[nextCode] = entry{prefix: int32(prev), suffix: str[0]}
				nextCode++
				growWidth(&codeWidth, nextCode)
			}
			prev = code

		case code == nextCode:
			// KwKwK case: prev's string with its own first byte appended.
			prevStr, err := reconstruct(prev)
			if err != nil {
				return nil, err
			}
			str := append(append([]byte(nil), prevStr...), prevStr[0])
			out = append(out, str...)
			if nextCode < maxDictSize {
				dict[nextCode] = entry{prefix: int32(prev), suffix: prevStr[0]}
				nextCode++
				growWidth(&codeWidth, nextCode)
			}
			prev = code

		default:
			return nil, fmt.Errorf("%w: code %d exceeds dictionary size %d", ErrCorruptImageData, code, nextCode)
		}
	}

	return finish(out, needed)
}

// growWidth increments codeWidth when nextCode has just reached the
// current width's capacity, capped at 12 bits.
func growWidth(codeWidth *int, nextCode int) {
	if *codeWidth < 12 && nextCode == (1<<uint(*codeWidth)) {
		*codeWidth++
	}
}

func finish(out []byte, needed int) ([]byte, error) {
	if len(out) < needed {
		return nil, fmt.Errorf("%w: got %d bytes, need %d", ErrImageDataTooShort, len(out), needed)
	}
	return out[:needed], nil
}
