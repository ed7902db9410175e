// Package gif provides a pure Go decoder and encoder for the Graphics
// Interchange Format (GIF), versions 87a and 89a.
//
// The package implements the GIF block-stream format end to end: the
// logical screen descriptor, global and local color tables, the
// variable-width LZW codec, 4-pass interlacing, transparency, comment and
// plain text extensions, and XMP metadata carried in an application
// extension. It does not implement animation playback (frame compositing,
// timing, and looping) — frames are exposed individually through
// [ReadAllFrames] rather than composited into a single animated sequence.
//
// Basic usage for decoding:
//
//	img, err := gif.Decode(reader)
//
// Basic usage for encoding:
//
//	err := gif.Encode(writer, img, &gif.EncoderOptions{})
package gif
