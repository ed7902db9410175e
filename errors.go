package gif

import (
	"github.com/teamsplitter/gif/internal/container"
	"github.com/teamsplitter/gif/internal/lzw"
	"github.com/teamsplitter/gif/internal/raster"
	"github.com/teamsplitter/gif/palette"
	"github.com/teamsplitter/gif/xmp"
)

// Sentinel errors re-exported from the internal packages so callers can use
// errors.Is(err, gif.ErrBadHeader) without importing this module's internal
// tree. Each one is the exact same error value its owning package returns —
// this file only gives it a public name.
//
// ErrImageDataTooShort and ErrPixelDataTooShort both mean an image ran out
// of data before filling width*height pixels, caught at two different
// stages: the former while still reading the compressed LZW stream, the
// latter after decompression handed raster fewer indices than expected.
var (
	ErrBadHeader              = container.ErrBadHeader
	ErrUnexpectedEOF          = container.ErrUnexpectedEOF
	ErrUnknownBlock           = container.ErrUnknownBlock
	ErrInvalidGceCount        = container.ErrInvalidGceCount
	ErrBadColorTable          = container.ErrBadColorTable
	ErrImageDataTooShort      = lzw.ErrImageDataTooShort
	ErrImageTooLarge          = lzw.ErrImageTooLarge
	ErrCorruptImageData       = lzw.ErrCorruptImageData
	ErrPixelDataTooShort      = raster.ErrImageDataTooShort
	ErrPaletteIndexOutOfRange = raster.ErrPaletteIndexOutOfRange
	ErrInterlaceOverrun       = raster.ErrInterlaceOverrun
	ErrMalformedXmp           = xmp.ErrMalformedXmp
	ErrMultipleXmp            = xmp.ErrMultipleXmp
	ErrTooManyColors          = palette.ErrTooManyColors
)
