package container

import "fmt"

// ReadSubBlocks reads a chain of length-prefixed sub-blocks starting at off
// (first byte is the sub-block's size, 0..255; a zero-length sub-block
// terminates the chain). Returns the concatenated payload and the number of
// bytes consumed (including the terminating zero byte).
func ReadSubBlocks(data []byte, off int) (payload []byte, consumed int, err error) {
	start := off
	for {
		if off >= len(data) {
			return nil, 0, fmt.Errorf("%w: reading sub-block length at offset %d", ErrUnexpectedEOF, off)
		}
		n := int(data[off])
		off++
		if n == 0 {
			break
		}
		if off+n > len(data) {
			return nil, 0, fmt.Errorf("%w: reading sub-block payload at offset %d", ErrUnexpectedEOF, off)
		}
		payload = append(payload, data[off:off+n]...)
		off += n
	}
	return payload, off - start, nil
}

// WriteSubBlocks splits payload into <=255-byte packets, each prefixed by
// its length, and appends a terminating zero-length packet. Returns the
// bytes appended to dst.
func WriteSubBlocks(dst []byte, payload []byte) []byte {
	for len(payload) > 0 {
		n := len(payload)
		if n > 255 {
			n = 255
		}
		dst = append(dst, byte(n))
		dst = append(dst, payload[:n]...)
		payload = payload[n:]
	}
	dst = append(dst, 0)
	return dst
}
