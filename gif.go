// Package gif implements a decoder and encoder for the Graphics
// Interchange Format (GIF), versions 87a and 89a. It registers itself with
// the standard library's image package so that image.Decode can
// transparently read GIF files, the same way the sibling webp codec this
// package is modeled on registers itself.
//
// Only the first frame of a multi-image GIF is reconstructed by Decode;
// [ReadAllFrames] reconstructs every frame for callers that need them.
// Animation playback (frame compositing, timing) is out of scope — see
// the package-level design notes for the full rationale.
package gif

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/teamsplitter/gif/internal/container"
	"github.com/teamsplitter/gif/internal/lzw"
	"github.com/teamsplitter/gif/internal/raster"
	"github.com/teamsplitter/gif/xmp"
)

func init() {
	image.RegisterFormat("gif", "GIF87a", Decode, DecodeConfig)
	image.RegisterFormat("gif", "GIF89a", Decode, DecodeConfig)
}

// ErrNoFrames is returned when a well-formed GIF contains zero
// ImageDescriptor blocks.
var ErrNoFrames = errors.New("gif: no image frames found")

// Info summarizes a GIF file's basic facts, the way GetFeatures does for
// the sibling webp package, without fully reconstructing any frame.
type Info struct {
	Width, Height   int
	FrameCount      int
	BitsPerPixel    int // color resolution + 1, from the logical screen descriptor
	Comments        []string
	HasTransparency bool
	Compression     string // always "LZW"
}

// FrameMetadata is one image's placement and GraphicControlExtension
// facts, without any pixel data.
type FrameMetadata struct {
	Delay                 int // centiseconds
	Left, Top             int
	Width, Height         int
	Disposal              container.DisposalMethod
	Transparent           bool
	TransparentColorIndex int
}

// readAll reads all of r. If r implements Len() int (e.g. *bytes.Reader), a
// single exact-sized allocation is used instead of the repeated doublings
// io.ReadAll performs.
func readAll(r io.Reader) ([]byte, error) {
	if lr, ok := r.(interface{ Len() int }); ok {
		if n := lr.Len(); n > 0 {
			data := make([]byte, n)
			_, err := io.ReadFull(r, data)
			return data, err
		}
	}
	return io.ReadAll(r)
}

func parse(data []byte, opts container.ParserOptions) (*container.ImageContents, error) {
	return container.Parse(data, opts, lzw.Decode)
}

// Decode reads the first image in a GIF file from r.
func Decode(r io.Reader) (image.Image, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("gif: reading data: %w", err)
	}
	ic, err := parse(data, container.ParserOptions{})
	if err != nil {
		return nil, err
	}
	return reconstructFrame(ic, 0)
}

// DecodeConfig returns the color model and logical screen dimensions of a
// GIF file without decoding any image data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := readAll(r)
	if err != nil {
		return image.Config{}, fmt.Errorf("gif: reading data: %w", err)
	}
	ic, err := parse(data, container.ParserOptions{StopBeforeImageData: true})
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      ic.Header.Width,
		Height:     ic.Header.Height,
	}, nil
}

// ReadInfo returns basic facts about a GIF file: dimensions, frame count,
// color resolution, comment text, and whether any frame declares
// transparency.
func ReadInfo(r io.Reader) (*Info, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("gif: reading data: %w", err)
	}
	ic, err := parse(data, container.ParserOptions{StopBeforeImageData: true})
	if err != nil {
		return nil, err
	}

	info := &Info{
		Width:        ic.Header.Width,
		Height:       ic.Header.Height,
		FrameCount:   ic.NumImages(),
		BitsPerPixel: ic.Header.ColorResolution + 1,
		Compression:  "LZW",
	}
	for i := range ic.Blocks {
		b := &ic.Blocks[i]
		if b.Code == container.CodeComment {
			info.Comments = append(info.Comments, b.Comment)
		}
		if b.IsGraphicControl() && b.TransparencyFlag {
			info.HasTransparency = true
		}
	}
	return info, nil
}

// ReadDimensions returns just the logical screen width and height.
func ReadDimensions(r io.Reader) (width, height int, err error) {
	data, err := readAll(r)
	if err != nil {
		return 0, 0, fmt.Errorf("gif: reading data: %w", err)
	}
	h, _, err := container.ParseHeader(data)
	if err != nil {
		return 0, 0, err
	}
	return h.Width, h.Height, nil
}

// ReadMetadata returns per-frame placement and timing facts, in file
// order, along with the logical screen size.
func ReadMetadata(r io.Reader) (frames []FrameMetadata, screenWidth, screenHeight int, err error) {
	data, err := readAll(r)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("gif: reading data: %w", err)
	}
	ic, err := parse(data, container.ParserOptions{StopBeforeImageData: true})
	if err != nil {
		return nil, 0, 0, err
	}

	imgIndex := 0
	for i := range ic.Blocks {
		b := &ic.Blocks[i]
		if !b.IsImageDescriptor() {
			continue
		}
		fm := FrameMetadata{
			Left: b.Left, Top: b.Top, Width: b.Width, Height: b.Height,
		}
		if gce, ok := ic.GraphicControlFor(imgIndex); ok {
			fm.Delay = gce.Delay
			fm.Disposal = container.Disposal(gce.Dispose)
			fm.Transparent = gce.TransparencyFlag
			fm.TransparentColorIndex = gce.TransparentColorIndex
		}
		frames = append(frames, fm)
		imgIndex++
	}
	return frames, ic.Header.Width, ic.Header.Height, nil
}

// ReadFirstFrame reconstructs the first image in a GIF file as a raster
// image.
func ReadFirstFrame(r io.Reader) (image.Image, error) {
	return Decode(r)
}

// ReadAllFrames reconstructs every image in a GIF file, in file order.
func ReadAllFrames(r io.Reader) ([]image.Image, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("gif: reading data: %w", err)
	}
	ic, err := parse(data, container.ParserOptions{})
	if err != nil {
		return nil, err
	}
	n := ic.NumImages()
	if n == 0 {
		return nil, ErrNoFrames
	}
	out := make([]image.Image, n)
	for i := 0; i < n; i++ {
		img, err := reconstructFrame(ic, i)
		if err != nil {
			return nil, err
		}
		out[i] = img
	}
	return out, nil
}

// ReadXMP returns the XMP XML payload embedded in a GIF's ApplicationExtension
// blocks, if any.
func ReadXMP(r io.Reader) (string, bool, error) {
	data, err := readAll(r)
	if err != nil {
		return "", false, fmt.Errorf("gif: reading data: %w", err)
	}
	ic, err := parse(data, container.ParserOptions{StopBeforeImageData: true})
	if err != nil {
		return "", false, err
	}
	return findXMP(ic)
}

// ReadComments returns the text of every CommentExtension block, in file
// order.
func ReadComments(r io.Reader) ([]string, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("gif: reading data: %w", err)
	}
	ic, err := parse(data, container.ParserOptions{StopBeforeImageData: true})
	if err != nil {
		return nil, err
	}
	var out []string
	for i := range ic.Blocks {
		if ic.Blocks[i].Code == container.CodeComment {
			out = append(out, ic.Blocks[i].Comment)
		}
	}
	return out, nil
}

// ReadApplicationExtensions returns the raw payload (identifier plus
// sub-block data) of every ApplicationExtension block, in file order. XMP
// detection (ReadXMP) is built from the same payloads; this is the escape
// hatch for callers that want to recognize other application extensions
// (e.g. NETSCAPE2.0 looping).
func ReadApplicationExtensions(r io.Reader) ([][]byte, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("gif: reading data: %w", err)
	}
	ic, err := parse(data, container.ParserOptions{StopBeforeImageData: true})
	if err != nil {
		return nil, err
	}
	var payloads [][]byte
	for i := range ic.Blocks {
		if ic.Blocks[i].IsApplication() {
			payloads = append(payloads, ic.Blocks[i].Payload)
		}
	}
	return payloads, nil
}

// reconstructFrame decompresses and expands the i-th (0-based)
// ImageDescriptor into an *image.NRGBA.
func reconstructFrame(ic *container.ImageContents, i int) (image.Image, error) {
	imgIndex := -1
	var block *container.Block
	for bi := range ic.Blocks {
		if ic.Blocks[bi].IsImageDescriptor() {
			imgIndex++
			if imgIndex == i {
				block = &ic.Blocks[bi]
				break
			}
		}
	}
	if block == nil {
		return nil, ErrNoFrames
	}

	table := ic.GlobalColorTable
	if block.LocalColorTableFlag {
		table = block.LocalColorTable
	}

	var gc *raster.GraphicControl
	if gce, ok := ic.GraphicControlFor(i); ok {
		gc = &raster.GraphicControl{
			TransparencyFlag:      gce.TransparencyFlag,
			TransparentColorIndex: gce.TransparentColorIndex,
		}
	}

	pixels, err := raster.Reconstruct(raster.Descriptor{
		Width:         block.Width,
		Height:        block.Height,
		InterlaceFlag: block.InterlaceFlag,
	}, table, gc, block.ImageData)
	if err != nil {
		return nil, err
	}

	return nrgbaFromARGB(block.Width, block.Height, pixels), nil
}

// nrgbaFromARGB packs the raster's 0xAARRGGBB words into an *image.NRGBA.
// GIF alpha is always 0 or 255 (no partial transparency), so straight and
// premultiplied alpha coincide and no conversion is needed.
func nrgbaFromARGB(width, height int, pixels []uint32) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i, px := range pixels {
		off := i * 4
		img.Pix[off+3] = byte(px >> 24)
		img.Pix[off+0] = byte(px >> 16)
		img.Pix[off+1] = byte(px >> 8)
		img.Pix[off+2] = byte(px)
	}
	return img
}

// ComplianceReport summarizes a GIF file's structural conformance: the
// signature version, the declared bounds, and any unrecognized
// extension labels encountered (preserved as GenericBlock rather than
// rejected).
type ComplianceReport struct {
	Version           string
	Width, Height     int
	NumImages         int
	UnknownBlockCodes []int
}

// CheckCompliance parses a GIF file and reports its signature, declared
// bounds, and any non-standard extension labels it tolerated.
func CheckCompliance(r io.Reader) (*ComplianceReport, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("gif: reading data: %w", err)
	}
	ic, err := parse(data, container.ParserOptions{StopBeforeImageData: true})
	if err != nil {
		return nil, err
	}

	rep := &ComplianceReport{
		Version:   ic.Header.Version,
		Width:     ic.Header.Width,
		Height:    ic.Header.Height,
		NumImages: ic.NumImages(),
	}
	known := map[int]bool{
		container.CodeImageDescriptor: true,
		container.CodeGraphicControl:  true,
		container.CodeComment:         true,
		container.CodePlainText:       true,
		container.CodeApplication:     true,
	}
	for i := range ic.Blocks {
		code := ic.Blocks[i].Code
		if !known[code] {
			rep.UnknownBlockCodes = append(rep.UnknownBlockCodes, code)
		}
	}
	return rep, nil
}

// findXMP scans an already-parsed ImageContents for XMP metadata. It lives
// here rather than on ImageContents itself so that internal/container has
// no dependency on the xmp package.
func findXMP(ic *container.ImageContents) (string, bool, error) {
	var payloads [][]byte
	for i := range ic.Blocks {
		if ic.Blocks[i].IsApplication() {
			payloads = append(payloads, ic.Blocks[i].Payload)
		}
	}
	return xmp.ExtractOne(payloads)
}
