// Package xmp extracts and embeds XMP metadata carried in a GIF
// ApplicationExtension block, following Adobe's de facto GIF XMP
// convention: an 11-byte identifier followed by the XML payload and a
// fixed 256-byte "magic trailer" that lets readers locate the XML's end
// without a length prefix.
package xmp

import (
	"bytes"
	"errors"
	"fmt"
)

// Sentinel errors returned by this package.
var (
	ErrMalformedXmp = errors.New("gif: malformed XMP application block")
	ErrMultipleXmp  = errors.New("gif: multiple XMP application blocks")
)

// identifier is the 11-byte literal GIF readers use to recognize an XMP
// ApplicationExtension: an 8-byte application identifier ("XMP Data")
// followed by a 3-byte "authentication code" (here repurposing those bytes
// as "XMP").
var identifier = []byte("XMP DataXMP")

// TrailerSize is the length of the magic trailer appended after the XML.
const TrailerSize = 256

// trailer returns the 256-byte palindromic sentinel 0xFF-i for i in 0..255.
func trailer() []byte {
	t := make([]byte, TrailerSize)
	for i := range t {
		t[i] = byte(0xFF - i)
	}
	return t
}

// IsXMPBlock reports whether payload (an ApplicationExtension's
// concatenated sub-block data) carries the XMP identifier.
func IsXMPBlock(payload []byte) bool {
	return bytes.HasPrefix(payload, identifier)
}

// Extract pulls the XML string out of an XMP ApplicationExtension payload.
// payload must already be known to carry the identifier (see IsXMPBlock);
// Extract validates the trailing magic trailer and returns the XML bytes
// between the identifier and the trailer.
func Extract(payload []byte) (string, error) {
	if !bytes.HasPrefix(payload, identifier) {
		return "", fmt.Errorf("%w: missing identifier", ErrMalformedXmp)
	}
	if len(payload) < len(identifier)+TrailerSize {
		return "", fmt.Errorf("%w: payload shorter than identifier+trailer", ErrMalformedXmp)
	}
	trailerStart := len(payload) - TrailerSize
	if !bytes.Equal(payload[trailerStart:], trailer()) {
		return "", fmt.Errorf("%w: trailer bytes do not match the expected sentinel", ErrMalformedXmp)
	}
	return string(payload[len(identifier):trailerStart]), nil
}

// ExtractOne scans payloads (one per ApplicationExtension block; payloads
// without the XMP identifier are skipped) and returns the single XMP XML
// string present. Zero matches returns ("", false, nil); more than one is
// ErrMultipleXmp.
func ExtractOne(payloads [][]byte) (string, bool, error) {
	var found []string
	for _, p := range payloads {
		if !IsXMPBlock(p) {
			continue
		}
		xml, err := Extract(p)
		if err != nil {
			return "", false, err
		}
		found = append(found, xml)
	}
	switch len(found) {
	case 0:
		return "", false, nil
	case 1:
		return found[0], true, nil
	default:
		return "", false, fmt.Errorf("%w: found %d", ErrMultipleXmp, len(found))
	}
}

// XMLWithTrailer returns the UTF-8 XML bytes followed by the magic
// trailer — everything that goes into the ApplicationExtension's
// sub-block chain after its dedicated 11-byte identifier sub-block. The
// caller packetizes this (see internal/container.WriteSubBlocks) and
// writes the identifier as its own leading sub-block.
func XMLWithTrailer(xml string) []byte {
	out := make([]byte, 0, len(xml)+TrailerSize)
	out = append(out, xml...)
	out = append(out, trailer()...)
	return out
}

// Identifier returns the 11-byte literal used to recognize an XMP
// ApplicationExtension.
func Identifier() []byte {
	return append([]byte(nil), identifier...)
}
