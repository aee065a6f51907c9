package compression

import (
	"bytes"
	"testing"
)

func TestRegistry(t *testing.T) {
	for _, name := range []string{"none", "lz4"} {
		c, err := Get(name)
		if err != nil {
			t.Fatalf("Get(%q): %v", name, err)
		}
		if c.Name() != name {
			t.Errorf("Name() = %q, want %q", c.Name(), name)
		}
	}
	if _, err := Get("zstd-nope"); err == nil {
		t.Error("expected error for unknown compressor")
	}
}

func TestLZ4RoundTrip(t *testing.T) {
	c := &LZ4Compressor{}

	// Repetitive data compresses well.
	data := bytes.Repeat([]byte("pool-reserve-snapshot-"), 64)
	compressed, err := c.Compress(data)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if len(compressed) == 0 || len(compressed) >= len(data) {
		t.Fatalf("compressed size = %d, original %d", len(compressed), len(data))
	}

	out, err := c.Decompress(compressed, len(data))
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Error("round trip mismatch")
	}
}

func TestNoCompressorCopies(t *testing.T) {
	c := &NoCompressor{}
	data := []byte("abc")
	out, err := c.Compress(data)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	out[0] = 'X'
	if data[0] != 'a' {
		t.Error("Compress must return a copy")
	}
}
