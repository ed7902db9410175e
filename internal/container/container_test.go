package container

import (
	"bytes"
	"testing"
)

// lzwStub decodes by returning width*height zero bytes, enough for parser
// tests that don't care about pixel content.
func lzwStub(raw []byte, minCodeSize, width, height int) ([]byte, error) {
	return make([]byte, width*height), nil
}

func buildMinimalGIF(extra ...[]byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("GIF89a")
	buf.Write([]byte{2, 0, 2, 0}) // 2x2 logical screen
	buf.WriteByte(0)              // no global color table, color res 0
	buf.WriteByte(0)              // background index
	buf.WriteByte(0)              // aspect ratio

	for _, e := range extra {
		buf.Write(e)
	}
	buf.WriteByte(TagTrailer)
	return buf.Bytes()
}

func imageDescriptorBlock(w, h int, localTable bool) []byte {
	var buf bytes.Buffer
	buf.WriteByte(TagImageDescriptor)
	buf.Write([]byte{0, 0, 0, 0}) // left, top
	buf.Write([]byte{byte(w), 0, byte(h), 0})
	packed := byte(0)
	if localTable {
		packed |= 0x80
	}
	buf.WriteByte(packed)
	if localTable {
		buf.Write(bytes.Repeat([]byte{0, 0, 0}, 2)) // size code 0 -> 2 entries
	}
	buf.WriteByte(2) // LZW minimum code size
	buf.WriteByte(0) // zero-length sub-block chain: no compressed data
	return buf.Bytes()
}

func TestParseMinimalHeader(t *testing.T) {
	data := buildMinimalGIF()
	ic, err := Parse(data, ParserOptions{}, lzwStub)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ic.Header.Width != 2 || ic.Header.Height != 2 {
		t.Fatalf("got %dx%d, want 2x2", ic.Header.Width, ic.Header.Height)
	}
	if ic.Header.Version != "89a" {
		t.Fatalf("got version %q, want 89a", ic.Header.Version)
	}
	if len(ic.Blocks) != 0 {
		t.Fatalf("got %d blocks, want 0", len(ic.Blocks))
	}
}

func TestParseRejectsBadSignature(t *testing.T) {
	data := []byte("PNG89a\x02\x00\x02\x00\x00\x00\x00")
	if _, err := Parse(data, ParserOptions{}, lzwStub); err == nil {
		t.Fatal("expected ErrBadHeader for non-GIF signature")
	}
}

func TestParseImageDescriptorWithLocalColorTable(t *testing.T) {
	data := buildMinimalGIF(imageDescriptorBlock(2, 2, true))
	ic, err := Parse(data, ParserOptions{}, lzwStub)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ic.NumImages() != 1 {
		t.Fatalf("got %d images, want 1", ic.NumImages())
	}
	b := ic.Blocks[0]
	if !b.IsImageDescriptor() {
		t.Fatal("expected first block to be an ImageDescriptor")
	}
	if !b.LocalColorTableFlag || len(b.LocalColorTable) != 6 {
		t.Fatalf("local color table missing or wrong size: flag=%v len=%d", b.LocalColorTableFlag, len(b.LocalColorTable))
	}
	if len(b.ImageData) != 4 {
		t.Fatalf("got %d decompressed bytes, want 4", len(b.ImageData))
	}
}

func TestParseStopBeforeImageData(t *testing.T) {
	data := buildMinimalGIF(imageDescriptorBlock(2, 2, false))
	ic, err := Parse(data, ParserOptions{StopBeforeImageData: true}, lzwStub)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ic.Blocks[0].ImageData != nil {
		t.Fatal("expected ImageData to be nil when StopBeforeImageData is set")
	}
}

func TestParseGraphicControlExtension(t *testing.T) {
	gce := []byte{TagExtension, LabelGraphicControl, 4, 0x01, 10, 0, 5, 0}
	data := buildMinimalGIF(gce, imageDescriptorBlock(2, 2, false))
	ic, err := Parse(data, ParserOptions{}, lzwStub)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b, ok := ic.GraphicControlFor(0)
	if !ok {
		t.Fatal("expected a GraphicControlExtension for image 0")
	}
	if !b.TransparencyFlag || b.TransparentColorIndex != 5 || b.Delay != 10 {
		t.Fatalf("got %+v, want transparency=true index=5 delay=10", b)
	}
}

func TestParseGceCountMismatch(t *testing.T) {
	gce := []byte{TagExtension, LabelGraphicControl, 4, 0, 0, 0, 0, 0}
	data := buildMinimalGIF(
		gce,
		imageDescriptorBlock(2, 2, false),
		imageDescriptorBlock(2, 2, false),
	)
	if _, err := Parse(data, ParserOptions{}, lzwStub); err == nil {
		t.Fatal("expected ErrInvalidGceCount for 1 GCE and 2 images")
	}
}

func TestParseCommentExtension(t *testing.T) {
	var comment bytes.Buffer
	comment.WriteByte(TagExtension)
	comment.WriteByte(LabelComment)
	comment.WriteByte(5)
	comment.WriteString("hello")
	comment.WriteByte(0)

	data := buildMinimalGIF(comment.Bytes())
	ic, err := Parse(data, ParserOptions{}, lzwStub)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(ic.Blocks) != 1 || ic.Blocks[0].Comment != "hello" {
		t.Fatalf("got blocks %+v, want one comment block 'hello'", ic.Blocks)
	}
}

func TestParseApplicationExtension(t *testing.T) {
	var app bytes.Buffer
	app.WriteByte(TagExtension)
	app.WriteByte(LabelApplication)
	app.WriteByte(11)
	app.WriteString("XMP DataXMP")
	app.WriteByte(3)
	app.WriteString("abc")
	app.WriteByte(0)

	data := buildMinimalGIF(app.Bytes())
	ic, err := Parse(data, ParserOptions{}, lzwStub)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !ic.Blocks[0].IsApplication() {
		t.Fatal("expected an ApplicationExtension block")
	}
	want := "XMP DataXMPabc"
	if string(ic.Blocks[0].Payload) != want {
		t.Fatalf("got payload %q, want %q", ic.Blocks[0].Payload, want)
	}
}

func TestParseUnknownBlockTagFails(t *testing.T) {
	data := buildMinimalGIF([]byte{0x99})
	if _, err := Parse(data, ParserOptions{}, lzwStub); err == nil {
		t.Fatal("expected ErrUnknownBlock for an unrecognized tag byte")
	}
}

func TestParseGenericExtensionLabel(t *testing.T) {
	generic := []byte{TagExtension, 0x77, 2, 'h', 'i', 0}
	data := buildMinimalGIF(generic)
	ic, err := Parse(data, ParserOptions{}, lzwStub)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if ic.Blocks[0].Code != (0x21<<8)|0x77 {
		t.Fatalf("got code %#x, want generic label code", ic.Blocks[0].Code)
	}
	if len(ic.Blocks[0].SubBlocks) != 1 || string(ic.Blocks[0].SubBlocks[0]) != "hi" {
		t.Fatalf("got sub-blocks %v, want one 'hi' sub-block", ic.Blocks[0].SubBlocks)
	}
}

func TestWriteSubBlocksRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte{0x42}, 600)
	dst := WriteSubBlocks(nil, payload)

	got, n, err := ReadSubBlocks(dst, 0)
	if err != nil {
		t.Fatalf("ReadSubBlocks: %v", err)
	}
	if n != len(dst) {
		t.Fatalf("consumed %d bytes, want %d", n, len(dst))
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(payload))
	}
}

func TestDisposalMethodString(t *testing.T) {
	if Disposal(2).String() != "restore-to-background" {
		t.Fatalf("got %q", Disposal(2).String())
	}
	if Disposal(6).String() != "reserved(6)" {
		t.Fatalf("got %q", Disposal(6).String())
	}
}
