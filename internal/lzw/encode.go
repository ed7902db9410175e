package lzw

import "github.com/teamsplitter/gif/internal/bitio"

// dictKey identifies a dictionary entry by the code of its prefix string
// and the appended suffix byte — the encoder's dual of decode.go's entry
// (prefix, suffix) pair, but keyed for lookup rather than reconstruction.
type dictKey struct {
	prefix int
	suffix byte
}

// Encode compresses data (width*height palette indices) into a GIF LZW byte
// stream using minCodeSize as the initial code size. The encoder always
// opens with a clear code.
//
// Code-width growth is checked once per emitted code, using the dictionary
// size as of all *prior* emissions — never the entry just added for the
// current one. A decoder can only learn of a new entry once it has read the
// code that supplies the entry's suffix byte, so it always lags the encoder
// by exactly one entry; growing width a step early would desync the two.
// Checking before registering the current entry (mirroring dict growth
// on the decode side, which checks after registering) keeps both sides
// advancing through the same width schedule.
func Encode(data []byte, minCodeSize int) []byte {
	clearCode := 1 << uint(minCodeSize)
	endCode := clearCode + 1
	initWidth := minCodeSize + 1

	w := bitio.NewCodeWriter()
	codeWidth := initWidth
	dict := make(map[dictKey]int)
	nextCode := clearCode + 2

	w.WriteCode(clearCode, codeWidth)

	prefix := -1
	for _, b := range data {
		if prefix < 0 {
			prefix = int(b)
			continue
		}
		if code, ok := dict[dictKey{prefix, b}]; ok {
			prefix = code
			continue
		}

		w.WriteCode(prefix, codeWidth)
		growWidth(&codeWidth, nextCode)

		if nextCode < maxDictSize {
			dict[dictKey{prefix, b}] = nextCode
			nextCode++
		} else {
			w.WriteCode(clearCode, codeWidth)
			dict = make(map[dictKey]int)
			nextCode = clearCode + 2
			codeWidth = initWidth
		}
		prefix = int(b)
	}

	if prefix >= 0 {
		w.WriteCode(prefix, codeWidth)
	}
	w.WriteCode(endCode, codeWidth)

	return w.Flush()
}
