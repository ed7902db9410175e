package container

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Errors returned while parsing the header and color tables.
var (
	ErrBadHeader     = errors.New("gif: bad header")
	ErrUnexpectedEOF = errors.New("gif: unexpected end of file")
	ErrBadColorTable = errors.New("gif: bad color table")
)

// HeaderInfo is the 6-byte signature plus the 7-byte logical screen
// descriptor.
type HeaderInfo struct {
	Version                string // "87a" or "89a"
	Width                  int
	Height                 int
	GlobalColorTableFlag   bool
	ColorResolution        int // 3-bit field, 0..7
	SortFlag               bool
	SizeOfGlobalColorTable int // 3-bit size code, 0..7
	BackgroundColorIndex   int
	PixelAspectRatio       int
}

// ReadLE16 reads a little-endian u16 at offset off, failing with a
// contextual ErrUnexpectedEOF error if out of range.
func ReadLE16(data []byte, off int, field string) (int, error) {
	if off+2 > len(data) {
		return 0, fmt.Errorf("%w: reading %s at offset %d", ErrUnexpectedEOF, field, off)
	}
	return int(binary.LittleEndian.Uint16(data[off : off+2])), nil
}

// ReadByte reads a single byte at offset off with contextual error.
func ReadByte(data []byte, off int, field string) (byte, error) {
	if off >= len(data) {
		return 0, fmt.Errorf("%w: reading %s at offset %d", ErrUnexpectedEOF, field, off)
	}
	return data[off], nil
}

// ParseHeader parses the 13-byte signature + logical screen descriptor
// starting at offset 0. Returns the header and the number of bytes consumed.
func ParseHeader(data []byte) (HeaderInfo, int, error) {
	if len(data) < SignatureSize+LogicalScreenSize {
		return HeaderInfo{}, 0, fmt.Errorf("%w: truncated signature/logical screen descriptor", ErrUnexpectedEOF)
	}
	if data[0] != 'G' || data[1] != 'I' || data[2] != 'F' {
		return HeaderInfo{}, 0, fmt.Errorf("%w: missing GIF signature", ErrBadHeader)
	}
	version := string(data[3:6])
	if version != "87a" && version != "89a" {
		return HeaderInfo{}, 0, fmt.Errorf("%w: unsupported version %q", ErrBadHeader, version)
	}

	off := SignatureSize
	width, err := ReadLE16(data, off, "logical screen width")
	if err != nil {
		return HeaderInfo{}, 0, err
	}
	height, err := ReadLE16(data, off+2, "logical screen height")
	if err != nil {
		return HeaderInfo{}, 0, err
	}
	if width < 1 || height < 1 {
		return HeaderInfo{}, 0, fmt.Errorf("%w: logical screen dimensions must be >= 1, got %dx%d", ErrBadHeader, width, height)
	}
	packed := data[off+4]
	bgIndex := data[off+5]
	aspect := data[off+6]

	h := HeaderInfo{
		Version:                version,
		Width:                  width,
		Height:                 height,
		GlobalColorTableFlag:   packed&0x80 != 0,
		ColorResolution:        int(packed>>4) & 0x07,
		SortFlag:               packed&0x08 != 0,
		SizeOfGlobalColorTable: int(packed & 0x07),
		BackgroundColorIndex:   int(bgIndex),
		PixelAspectRatio:       int(aspect),
	}
	return h, SignatureSize + LogicalScreenSize, nil
}

// ReadColorTable reads sizeCode's worth of RGB triples starting at off.
// Fails BadColorTable if the declared byte length is not a multiple of 3
// (the on-wire size code always yields a multiple of 3 by construction, so
// this check does not fire for a valid size code). A table cut short by the
// end of data fails with ErrUnexpectedEOF.
func ReadColorTable(data []byte, off int, sizeCode int) ([]byte, int, error) {
	n := ColorTableByteSize(sizeCode)
	if n%3 != 0 {
		return nil, 0, fmt.Errorf("%w: table length %d not a multiple of 3", ErrBadColorTable, n)
	}
	if off+n > len(data) {
		return nil, 0, fmt.Errorf("%w: reading color table", ErrUnexpectedEOF)
	}
	table := make([]byte, n)
	copy(table, data[off:off+n])
	return table, n, nil
}
