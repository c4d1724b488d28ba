package decoder

import (
	"strings"
	"testing"

	"github.com/zmoth/libdmtx/datamatrix/encoder"
)

func encodeScheme(t *testing.T, input string, scheme encoder.Scheme) []byte {
	t.Helper()
	codewords, _, err := encoder.EncodeHighLevelWithOptions([]byte(input),
		encoder.EncodeOptions{Scheme: scheme}, encoder.ShapeHintForceNone, -1)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return codewords
}

// TestSchemeRoundTrips drives each encodation scheme through its encoder
// and back through the bit-stream parser, both forced and auto-selected.
func TestSchemeRoundTrips(t *testing.T) {
	tests := []struct {
		name   string
		scheme encoder.Scheme
		input  string
	}{
		{"ascii mixed", encoder.SchemeASCII, "30Q324343430794<OQQ"},
		{"ascii digits", encoder.SchemeASCII, "1234567890"},
		{"ascii extended", encoder.SchemeASCII, "caf\xc3\xa9"},
		{"c40 upper", encoder.SchemeC40, "ABCDEF123456"},
		{"c40 with shift", encoder.SchemeC40, "ABC def!"},
		{"c40 one remainder", encoder.SchemeC40, "ABCD"},
		{"c40 two remainder", encoder.SchemeC40, "ABCDE"},
		{"text lower", encoder.SchemeText, "abcdef123456"},
		{"x12", encoder.SchemeX12, "ABC>DEF GHI0"},
		{"x12 remainder", encoder.SchemeX12, "ABCD"},
		{"edifact", encoder.SchemeEDIFACT, "ABC.DEF-GHI+"},
		{"edifact short", encoder.SchemeEDIFACT, "ABCD"},
		{"base256", encoder.SchemeBase256, "\x80\x91\xa2\xb3\xc4\xd5\xe6\xf7\x08\x19"},
		{"auto text", encoder.SchemeAuto, "Hello, World 123!"},
		{"auto digits", encoder.SchemeAuto, "0123456789012345"},
		{"auto mixed", encoder.SchemeAuto, "30Q324343430794<OQQ"},
		{"auto binary tail", encoder.SchemeAuto, "id=\x80\x81\x82\x83\x84\x85\x86\x87"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			codewords := encodeScheme(t, tc.input, tc.scheme)

			result, err := DecodeBitStream(codewords)
			if err != nil {
				t.Fatalf("decode %v: %v", codewords, err)
			}
			if result.Text != tc.input {
				t.Errorf("round trip got %q, want %q", result.Text, tc.input)
			}
		})
	}
}

// TestBase256LongRoundTrip covers the two-byte length header and the
// in-place header growth that re-scrambles the payload.
func TestBase256LongRoundTrip(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 300; i++ {
		b.WriteByte(byte(128 + i%100))
	}
	input := b.String()

	codewords := encodeScheme(t, input, encoder.SchemeBase256)
	result, err := DecodeBitStream(codewords)
	if err != nil {
		t.Fatal(err)
	}
	if result.Text != input {
		t.Error("300-byte Base 256 round trip mismatch")
	}
}

// TestPadTerminatesStream checks that a pad codeword ends decoding and the
// obfuscated pads after it are ignored.
func TestPadTerminatesStream(t *testing.T) {
	codewords, _, err := encoder.EncodeHighLevelWithOptions([]byte("AB"),
		encoder.EncodeOptions{}, encoder.ShapeHintForceNone, -1)
	if err != nil {
		t.Fatal(err)
	}
	padded := encoder.PadCodewords(codewords, 8)

	result, err := DecodeBitStream(padded)
	if err != nil {
		t.Fatal(err)
	}
	if result.Text != "AB" {
		t.Errorf("got %q, want %q", result.Text, "AB")
	}
}
