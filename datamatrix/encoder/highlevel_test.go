package encoder

import (
	"bytes"
	"testing"
)

// TestPadMixer verifies the 253-state pad obfuscation: the first pad is the
// plain pad codeword, and every later pad at 1-based stream position k is
// 129 + ((149*k) mod 253) + 1, wrapped into the codeword range.
func TestPadMixer(t *testing.T) {
	codewords := []byte{10, 20, 30}
	capacity := 12
	padded := PadCodewords(codewords, capacity)

	if len(padded) != capacity {
		t.Fatalf("padded length %d, want %d", len(padded), capacity)
	}
	if !bytes.Equal(padded[:3], codewords) {
		t.Fatalf("data codewords disturbed: %v", padded[:3])
	}
	if padded[3] != 129 {
		t.Errorf("first pad = %d, want 129", padded[3])
	}
	for i := 4; i < capacity; i++ {
		k := i + 1 // 1-based position in the stream
		want := 129 + ((149*k)%253 + 1)
		if want > 254 {
			want -= 254
		}
		if int(padded[i]) != want {
			t.Errorf("pad at position %d = %d, want %d", k, padded[i], want)
		}
	}
}

// TestForcedC40ChainFraming checks the C40 chain shape: latch, packed
// triples, explicit unlatch, then padding out to the symbol capacity.
func TestForcedC40ChainFraming(t *testing.T) {
	out, sizeIdx, err := EncodeHighLevelWithOptions([]byte("ABCDEF123456"),
		EncodeOptions{Scheme: SchemeC40}, ShapeHintForceNone, -1)
	if err != nil {
		t.Fatal(err)
	}

	// 12 basic-set bytes pack into 4 triplets of 2 codewords each; with the
	// latch and unlatch that is 10 codewords, padded to the 16x16 symbol.
	if sizeIdx != 3 {
		t.Errorf("completed against size %d, want 3 (16x16)", sizeIdx)
	}
	if len(out) != 12 {
		t.Fatalf("stream length %d, want 12: %v", len(out), out)
	}
	if out[0] != latchToC40 {
		t.Errorf("chain starts with %d, want latch %d", out[0], latchToC40)
	}
	if out[9] != unlatchASCII {
		t.Errorf("chain unlatches with %d, want %d", out[9], unlatchASCII)
	}
	if out[10] != asciiPad {
		t.Errorf("first pad = %d, want %d", out[10], asciiPad)
	}

	// First triplet is "ABC": values 14, 15, 16.
	word := (14*1600 + 15*40 + 16) + 1
	if int(out[1]) != word/256 || int(out[2]) != word%256 {
		t.Errorf("first triplet packs to (%d,%d), want (%d,%d)", out[1], out[2], word/256, word%256)
	}
}

// TestForcedBase256Header checks the Base 256 header: the latch codeword
// followed by the run length passed through the 255-state mixer at its
// stream position.
func TestForcedBase256Header(t *testing.T) {
	data := []byte{0x80, 0x91, 0xA2, 0xB3, 0xC4, 0xD5, 0xE6, 0xF7, 0x08}
	out, sizeIdx, err := EncodeHighLevelWithOptions(data,
		EncodeOptions{Scheme: SchemeBase256}, ShapeHintForceNone, -1)
	if err != nil {
		t.Fatal(err)
	}

	if out[0] != latchToBase256 {
		t.Fatalf("chain starts with %d, want latch %d", out[0], latchToBase256)
	}
	// latch + header + 9 payload bytes, padded to the 16x16 symbol
	if sizeIdx != 3 || len(out) != 12 {
		t.Fatalf("completed against size %d with %d codewords, want size 3 with 12", sizeIdx, len(out))
	}

	// Header byte sits at 1-based stream position 2.
	if got, want := out[1], randomize255State(9, 2); got != want {
		t.Errorf("length header = %d, want %d", got, want)
	}

	// The mixer must invert cleanly at matching positions.
	for i, b := range data {
		pos := i + 3
		mixed := randomize255State(b, pos)
		if out[i+2] != mixed {
			t.Errorf("payload byte %d mixed to %d, want %d", i, out[i+2], mixed)
		}
		if unrandomize255State(mixed, pos) != b {
			t.Errorf("mixer not self-inverse at position %d", pos)
		}
	}

	if out[11] != asciiPad {
		t.Errorf("pad after chain = %d, want %d", out[11], asciiPad)
	}
}

// TestBase256PerfectFit checks the zero-length header written when the
// chain runs exactly to the end of the symbol.
func TestBase256PerfectFit(t *testing.T) {
	data := make([]byte, 10)
	for i := range data {
		data[i] = byte(0x80 + i)
	}
	out, sizeIdx, err := EncodeHighLevelWithOptions(data,
		EncodeOptions{Scheme: SchemeBase256}, ShapeHintForceNone, -1)
	if err != nil {
		t.Fatal(err)
	}

	// latch + header + 10 payload fills the 16x16 symbol exactly
	if sizeIdx != 3 || len(out) != 12 {
		t.Fatalf("completed against size %d with %d codewords, want size 3 with 12", sizeIdx, len(out))
	}
	if got, want := out[1], randomize255State(0, 2); got != want {
		t.Errorf("perfect-fit header = %d, want %d", got, want)
	}
}

// TestBase256TwoByteHeader exercises the split length header used for runs
// of 250 bytes or more, which grows in place and re-scrambles the payload
// at its shifted positions.
func TestBase256TwoByteHeader(t *testing.T) {
	data := make([]byte, 300)
	for i := range data {
		data[i] = byte(i)
	}
	out, sizeIdx, err := EncodeHighLevelWithOptions(data,
		EncodeOptions{Scheme: SchemeBase256}, ShapeHintForceNone, -1)
	if err != nil {
		t.Fatal(err)
	}

	// latch + 2 header + 300 payload = 303, padded to the 72x72 symbol
	if sizeIdx != 16 || len(out) != 368 {
		t.Fatalf("completed against size %d with %d codewords, want size 16 with 368", sizeIdx, len(out))
	}
	if got, want := out[1], randomize255State(byte(300/250+249), 2); got != want {
		t.Errorf("first header byte = %d, want %d", got, want)
	}
	if got, want := out[2], randomize255State(byte(300%250), 3); got != want {
		t.Errorf("second header byte = %d, want %d", got, want)
	}
	for _, i := range []int{0, 100, 249, 250, 299} {
		if got, want := out[3+i], randomize255State(data[i], 4+i); got != want {
			t.Errorf("payload byte %d = %d, want %d", i, got, want)
		}
	}
	if out[303] != asciiPad {
		t.Errorf("first pad = %d, want %d", out[303], asciiPad)
	}
}

// TestEdifactPacking verifies the 6-bit packing and end-of-symbol condition
// (b): a clean boundary with one codeword left takes a pad, no unlatch.
func TestEdifactPacking(t *testing.T) {
	out, sizeIdx, err := EncodeHighLevelWithOptions([]byte("ABCD"),
		EncodeOptions{Scheme: SchemeEDIFACT}, ShapeHintForceNone, -1)
	if err != nil {
		t.Fatal(err)
	}

	// 'A'-'D' are values 1-4; packed 6 bits at a time MSB first:
	// 000001 000010 000011 000100.
	want := []byte{latchToEDIFACT, 0x04, 0x20, 0xC4, asciiPad}
	if !bytes.Equal(out, want) {
		t.Errorf("encoded %v, want %v", out, want)
	}
	if sizeIdx != 1 {
		t.Errorf("completed against size %d, want 1 (12x12)", sizeIdx)
	}
}

// TestCompactDigitFolding checks that the optimiser folds digit runs into
// pairs through the compact ASCII states.
func TestCompactDigitFolding(t *testing.T) {
	out, err := EncodeHighLevel("123456")
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{12 + 130, 34 + 130, 56 + 130}
	if !bytes.Equal(out, want) {
		t.Errorf("encoded %v, want %v", out, want)
	}
}
