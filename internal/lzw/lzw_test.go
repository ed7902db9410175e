package lzw

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name        string
		minCodeSize int
		data        []byte
	}{
		{"repeated-pair", 2, []byte{0, 1, 1, 0, 0, 1, 1, 0}},
		{"single-byte", 2, []byte{3}},
		{"all-same", 3, bytes.Repeat([]byte{5}, 64)},
		{"ramp", 8, rampBytes(256)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			width, height := len(c.data), 1
			raw := Encode(c.data, c.minCodeSize)
			got, err := Decode(raw, c.minCodeSize, width, height)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !bytes.Equal(got, c.data) {
				t.Fatalf("round trip mismatch:\n got  %v\n want %v", got, c.data)
			}
		})
	}
}

func rampBytes(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i % 256)
	}
	return out
}

func TestEncodeDecodeRoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, minCodeSize := range []int{2, 3, 4, 5, 6, 7, 8} {
		maxVal := 1 << uint(minCodeSize)
		width, height := 37, 29
		data := make([]byte, width*height)
		for i := range data {
			data[i] = byte(rng.Intn(maxVal))
		}

		raw := Encode(data, minCodeSize)
		got, err := Decode(raw, minCodeSize, width, height)
		if err != nil {
			t.Fatalf("minCodeSize %d: Decode: %v", minCodeSize, err)
		}
		if !bytes.Equal(got, data) {
			t.Fatalf("minCodeSize %d: round trip mismatch", minCodeSize)
		}
	}
}

// TestEncodeDictionaryResetsOnFull exercises a dictionary large enough to
// hit the 4096-entry cap and force a mid-stream clear code, still decoding
// byte-exactly.
func TestEncodeDictionaryResetsOnFull(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	width, height := 4096, 4 // dense, varied data forces many new entries
	data := make([]byte, width*height)
	for i := range data {
		data[i] = byte(rng.Intn(256))
	}

	raw := Encode(data, 8)
	got, err := Decode(raw, 8, width, height)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch after dictionary reset")
	}
}

func TestDecodeRejectsBadMinCodeSize(t *testing.T) {
	if _, err := Decode([]byte{0}, 1, 1, 1); err == nil {
		t.Fatal("expected error for minCodeSize below 2")
	}
	if _, err := Decode([]byte{0}, 9, 1, 1); err == nil {
		t.Fatal("expected error for minCodeSize above 8")
	}
}

func TestDecodeRejectsOversizedAllocation(t *testing.T) {
	if _, err := Decode([]byte{0}, 8, 1<<16, 1<<16); err == nil {
		t.Fatal("expected ErrImageTooLarge for an oversized width*height product")
	}
}

func TestDecodeTooShortImageData(t *testing.T) {
	raw := Encode([]byte{1, 2, 3}, 3)
	if _, err := Decode(raw, 3, 10, 1); err == nil {
		t.Fatal("expected ErrImageDataTooShort when requesting more pixels than encoded")
	}
}
