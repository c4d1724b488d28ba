package encoder

import (
	"errors"
	"testing"

	dmtx "github.com/zmoth/libdmtx"
)

// TestOptimizerPrefersC40ForUppercase: a run of basic-set uppercase should
// latch into C40 and beat single-byte ASCII by a full symbol size.
func TestOptimizerPrefersC40ForUppercase(t *testing.T) {
	out, sizeIdx, err := EncodeHighLevelWithOptions([]byte("ABCDEFGHIJKLMNO"),
		EncodeOptions{}, ShapeHintForceNone, -1)
	if err != nil {
		t.Fatal(err)
	}
	if out[0] != latchToC40 {
		t.Errorf("winner starts with %d, want C40 latch %d", out[0], latchToC40)
	}
	if sizeIdx != 3 {
		t.Errorf("completed against size %d, want 3 (16x16); ascii alone needs 18x18", sizeIdx)
	}
}

// TestOptimizerPrefersEdifact: characters in the EDIFACT range that C40 can
// only reach through shifts should ride the 6-bit packing.
func TestOptimizerPrefersEdifact(t *testing.T) {
	out, sizeIdx, err := EncodeHighLevelWithOptions([]byte("@.+@.+@.+@.+@.+@.+@.+@.+"),
		EncodeOptions{}, ShapeHintForceNone, -1)
	if err != nil {
		t.Fatal(err)
	}
	if out[0] != latchToEDIFACT {
		t.Errorf("winner starts with %d, want EDIFACT latch %d", out[0], latchToEDIFACT)
	}
	if sizeIdx != 5 {
		t.Errorf("completed against size %d, want 5 (20x20); ascii alone needs 22x22", sizeIdx)
	}
}

// TestOptimizerPrefersBase256ForBinary: high bytes cost two ASCII codewords
// each, so a binary run should win through Base 256 — here with a perfect
// fit and its zero-length header.
func TestOptimizerPrefersBase256ForBinary(t *testing.T) {
	data := make([]byte, 20)
	for i := range data {
		data[i] = byte(0x80 + i)
	}

	out, sizeIdx, err := EncodeHighLevelWithOptions(data, EncodeOptions{}, ShapeHintForceNone, -1)
	if err != nil {
		t.Fatal(err)
	}
	if out[0] != latchToBase256 {
		t.Errorf("winner starts with %d, want Base 256 latch %d", out[0], latchToBase256)
	}
	if sizeIdx != 5 || len(out) != 22 {
		t.Errorf("completed against size %d with %d codewords, want size 5 with 22", sizeIdx, len(out))
	}
	if got, want := out[1], randomize255State(0, 2); got != want {
		t.Errorf("perfect-fit header = %d, want %d", got, want)
	}
}

// TestOptimizerMixedMessage: digits interleaved with text exercise the
// compact-offset states; the winner folds every digit pair despite the
// alignment breaks.
func TestOptimizerMixedMessage(t *testing.T) {
	out, sizeIdx, err := EncodeHighLevelWithOptions([]byte("30Q324343430794<OQQ"),
		EncodeOptions{}, ShapeHintForceNone, -1)
	if err != nil {
		t.Fatal(err)
	}
	// 7 digit pairs and 5 single characters make 12 codewords
	if len(out) != 12 || sizeIdx != 3 {
		t.Errorf("completed against size %d with %d codewords, want size 3 with 12", sizeIdx, len(out))
	}
}

// TestOptimizerHonorsRequestedSize: an explicit size request binds every
// state; input that cannot fit reports failure instead of growing the
// symbol.
func TestOptimizerHonorsRequestedSize(t *testing.T) {
	_, _, err := EncodeHighLevelWithOptions([]byte("ABCDEFG"), EncodeOptions{}, ShapeHintForceNone, 0)
	if err == nil {
		t.Fatal("expected failure for 7 characters into a 10x10 symbol")
	}
	if !errors.Is(err, dmtx.ErrSchemeIncomplete) {
		t.Errorf("error %v, want ErrSchemeIncomplete", err)
	}

	// The same message fits when the requested size allows it.
	out, sizeIdx, err := EncodeHighLevelWithOptions([]byte("ABCDEFG"), EncodeOptions{}, ShapeHintForceNone, 3)
	if err != nil {
		t.Fatal(err)
	}
	if sizeIdx != 3 || len(out) != 12 {
		t.Errorf("completed against size %d with %d codewords, want size 3 with 12", sizeIdx, len(out))
	}
}

// TestOptimizerShapeHint: forcing a rectangular shape restricts the size
// search without touching scheme selection.
func TestOptimizerShapeHint(t *testing.T) {
	_, sizeIdx, err := EncodeHighLevelWithOptions([]byte("AB12"), EncodeOptions{}, ShapeHintForceRectangle, -1)
	if err != nil {
		t.Fatal(err)
	}
	if !symbols[sizeIdx].Rectangular {
		t.Errorf("completed against square size %d despite rectangle hint", sizeIdx)
	}
}
