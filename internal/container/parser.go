package container

import (
	"errors"
	"fmt"
)

// Additional sentinel errors surfaced by the block-stream parser.
// ErrBadHeader/ErrUnexpectedEOF/ErrBadColorTable are declared in header.go
// alongside the structures they guard.
var (
	ErrUnknownBlock    = errors.New("gif: unknown block")
	ErrInvalidGceCount = errors.New("gif: graphic control extension count mismatch")
)

// ParserOptions configures block-stream parsing.
type ParserOptions struct {
	// StopBeforeImageData returns ImageDescriptors without decompressing
	// their LZW payload; the sub-block chain is still drained so the
	// cursor lands on the next block.
	StopBeforeImageData bool
}

// ImageContents is the fully parsed, immutable record of a GIF file:
// header, optional global color table, and the ordered block list.
type ImageContents struct {
	Header           HeaderInfo
	GlobalColorTable []byte // nil if HeaderInfo.GlobalColorTableFlag is false
	Blocks           []Block
}

// NumImages returns the number of ImageDescriptor blocks.
func (ic *ImageContents) NumImages() int {
	n := 0
	for i := range ic.Blocks {
		if ic.Blocks[i].IsImageDescriptor() {
			n++
		}
	}
	return n
}

// GraphicControlFor returns the GraphicControlExtension paired with the
// i-th (0-based) ImageDescriptor in file order, and true if one exists.
// GCE count is either 0 or equal to the image count, and the i-th GCE
// pairs with the i-th descriptor.
func (ic *ImageContents) GraphicControlFor(i int) (Block, bool) {
	gces := make([]Block, 0, 1)
	for _, b := range ic.Blocks {
		if b.IsGraphicControl() {
			gces = append(gces, b)
		}
	}
	if i < 0 || i >= len(gces) {
		return Block{}, false
	}
	return gces[i], true
}

// imageDecoder decodes a raw LZW sub-block chain into width*height palette
// indices. It is supplied by callers (the internal/lzw package) so that
// this package has no dependency on the codec.
type imageDecoder func(raw []byte, minCodeSize, width, height int) ([]byte, error)

// Parse parses data (a complete in-memory GIF byte buffer) into an
// ImageContents. decode is used to turn each ImageDescriptor's raw LZW
// sub-block chain into decompressed palette indices, unless opts requests
// StopBeforeImageData.
func Parse(data []byte, opts ParserOptions, decode imageDecoder) (*ImageContents, error) {
	header, off, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	ic := &ImageContents{Header: header}

	if header.GlobalColorTableFlag {
		table, n, err := ReadColorTable(data, off, header.SizeOfGlobalColorTable)
		if err != nil {
			return nil, err
		}
		ic.GlobalColorTable = table
		off += n
	}

	blocks, err := parseBlocks(data, off, opts, decode)
	if err != nil {
		return nil, err
	}
	ic.Blocks = blocks

	numGCE := 0
	for i := range ic.Blocks {
		if ic.Blocks[i].IsGraphicControl() {
			numGCE++
		}
	}
	numImg := ic.NumImages()
	if numGCE != 0 && numGCE != numImg {
		return nil, fmt.Errorf("%w: %d graphic control extensions for %d images", ErrInvalidGceCount, numGCE, numImg)
	}

	return ic, nil
}

func parseBlocks(data []byte, off int, opts ParserOptions, decode imageDecoder) ([]Block, error) {
	var blocks []Block
	for {
		if off >= len(data) {
			return nil, fmt.Errorf("%w: reading block tag at offset %d", ErrUnexpectedEOF, off)
		}
		tag := data[off]
		switch tag {
		case TagTrailer:
			return blocks, nil
		case TagPad:
			// Stray zero pad between blocks: lenient on read, never
			// emitted on write.
			off++
		case TagImageDescriptor:
			b, n, err := parseImageDescriptor(data, off, opts, decode)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, b)
			off += n
		case TagExtension:
			b, n, err := parseExtension(data, off)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, b)
			off += n
		default:
			return nil, fmt.Errorf("%w: code %#x at offset %d", ErrUnknownBlock, tag, off)
		}
	}
}

func parseImageDescriptor(data []byte, off int, opts ParserOptions, decode imageDecoder) (Block, int, error) {
	start := off
	off++ // past TagImageDescriptor

	if off+ImageDescFixedSize > len(data) {
		return Block{}, 0, fmt.Errorf("%w: reading image descriptor at offset %d", ErrUnexpectedEOF, off)
	}
	left, _ := ReadLE16(data, off, "image left")
	top, _ := ReadLE16(data, off+2, "image top")
	width, _ := ReadLE16(data, off+4, "image width")
	height, _ := ReadLE16(data, off+6, "image height")
	packed := data[off+8]
	off += ImageDescFixedSize

	b := Block{
		Code:                  CodeImageDescriptor,
		Left:                  left,
		Top:                   top,
		Width:                 width,
		Height:                height,
		LocalColorTableFlag:   packed&0x80 != 0,
		InterlaceFlag:         packed&0x40 != 0,
		SortFlag:              packed&0x20 != 0,
		SizeOfLocalColorTable: int(packed & 0x07),
	}

	if b.LocalColorTableFlag {
		table, n, err := ReadColorTable(data, off, b.SizeOfLocalColorTable)
		if err != nil {
			return Block{}, 0, err
		}
		b.LocalColorTable = table
		off += n
	}

	minCodeSize, err := ReadByte(data, off, "LZW minimum code size")
	if err != nil {
		return Block{}, 0, err
	}
	b.LZWMinCodeSize = int(minCodeSize)
	off++

	raw, n, err := ReadSubBlocks(data, off)
	if err != nil {
		return Block{}, 0, err
	}
	b.RawImageData = raw
	off += n

	if !opts.StopBeforeImageData {
		imgData, err := decode(raw, b.LZWMinCodeSize, b.Width, b.Height)
		if err != nil {
			return Block{}, 0, fmt.Errorf("gif: decompressing image data at offset %d: %w", start, err)
		}
		b.ImageData = imgData
	}

	return b, off - start, nil
}

func parseExtension(data []byte, off int) (Block, int, error) {
	start := off
	off++ // past TagExtension

	label, err := ReadByte(data, off, "extension label")
	if err != nil {
		return Block{}, 0, err
	}
	off++

	switch label {
	case LabelGraphicControl:
		return parseGraphicControl(data, start, off)
	case LabelComment:
		return parseGenericChain(data, start, off, CodeComment, true)
	case LabelPlainText:
		return parseGenericChain(data, start, off, CodePlainText, false)
	case LabelApplication:
		return parseApplication(data, start, off)
	default:
		return parseGenericChain(data, start, off, (0x21<<8)|int(label), false)
	}
}

func parseGraphicControl(data []byte, start, off int) (Block, int, error) {
	size, err := ReadByte(data, off, "graphic control block size")
	if err != nil {
		return Block{}, 0, err
	}
	off++
	if off+int(size) > len(data) {
		return Block{}, 0, fmt.Errorf("%w: reading graphic control payload at offset %d", ErrUnexpectedEOF, off)
	}
	payload := data[off : off+int(size)]
	off += int(size)

	b := Block{Code: CodeGraphicControl}
	if len(payload) >= GCEPayloadSize {
		packed := payload[0]
		b.Dispose = int(packed>>2) & 0x07
		b.TransparencyFlag = packed&0x01 != 0
		b.Delay = int(payload[1]) | int(payload[2])<<8
		b.TransparentColorIndex = int(payload[3])
	}

	// Drain the (normally zero-length) terminating sub-block chain.
	_, n, err := ReadSubBlocks(data, off)
	if err != nil {
		return Block{}, 0, err
	}
	off += n

	return b, off - start, nil
}

func parseApplication(data []byte, start, off int) (Block, int, error) {
	size, err := ReadByte(data, off, "application identifier block size")
	if err != nil {
		return Block{}, 0, err
	}
	off++
	if off+int(size) > len(data) {
		return Block{}, 0, fmt.Errorf("%w: reading application identifier at offset %d", ErrUnexpectedEOF, off)
	}
	identifier := append([]byte(nil), data[off:off+int(size)]...)
	off += int(size)

	rest, subBlocks, n, err := readSubBlockList(data, off)
	if err != nil {
		return Block{}, 0, err
	}
	off += n

	b := Block{
		Code:       CodeApplication,
		Identifier: identifier,
		SubBlocks:  subBlocks,
		Payload:    append(append([]byte(nil), identifier...), rest...),
	}
	return b, off - start, nil
}

func parseGenericChain(data []byte, start, off int, code int, asComment bool) (Block, int, error) {
	payload, subBlocks, n, err := readSubBlockList(data, off)
	if err != nil {
		return Block{}, 0, err
	}
	off += n

	b := Block{Code: code, SubBlocks: subBlocks}
	if asComment {
		b.Comment = string(payload)
	}
	return b, off - start, nil
}

// readSubBlockList reads a sub-block chain, returning both the concatenated
// payload and the individual sub-block slices (GenericBlock retains the raw
// list).
func readSubBlockList(data []byte, off int) (payload []byte, subBlocks [][]byte, consumed int, err error) {
	start := off
	for {
		if off >= len(data) {
			return nil, nil, 0, fmt.Errorf("%w: reading sub-block length at offset %d", ErrUnexpectedEOF, off)
		}
		n := int(data[off])
		off++
		if n == 0 {
			break
		}
		if off+n > len(data) {
			return nil, nil, 0, fmt.Errorf("%w: reading sub-block payload at offset %d", ErrUnexpectedEOF, off)
		}
		chunk := data[off : off+n]
		payload = append(payload, chunk...)
		subBlocks = append(subBlocks, append([]byte(nil), chunk...))
		off += n
	}
	return payload, subBlocks, off - start, nil
}
