// Copyright 2006 Jeremias Maerki in part, and ZXing Authors in part.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Ported from Java ZXing library.

package encoder

import (
	"fmt"

	dmtx "github.com/zmoth/libdmtx"
)

// Scheme identifies one of the six ECC-200 encodation schemes.
type Scheme int

const (
	SchemeAuto Scheme = iota
	SchemeASCII
	SchemeC40
	SchemeText
	SchemeX12
	SchemeEDIFACT
	SchemeBase256
)

// Special codeword values shared across schemes.
const (
	asciiUpperShift = 235 // shifts to upper 128 characters
	asciiPad        = 129 // padding codeword (also used for 0-length remainder)
	valueFNC1       = 232
)

// Latch and unlatch codewords.
const (
	latchToC40     = 230
	latchToBase256 = 231
	latchToX12     = 238
	latchToText    = 239
	latchToEDIFACT = 240
	unlatchASCII   = 254 // unlatch from C40/Text/X12 back to ASCII
	unlatchEDIFACT = 31  // EDIFACT's own 6-bit unlatch value
)

// EncodeOptions configures the high-level encoding pass.
type EncodeOptions struct {
	// Scheme forces a single encodation scheme for the whole message.
	// SchemeAuto runs the scheme optimiser instead.
	Scheme Scheme

	// FNC1 enables recognition of the GS1 application identifier separator
	// (encoded as 0x1D in the input) as an explicit FNC1 codeword.
	FNC1 bool
}

// EncodeHighLevel performs high-level encoding of a Data Matrix message,
// running the scheme optimiser across the six ECC-200 encodation schemes
// to minimize codeword count. The returned stream is padded to the data
// capacity of the smallest symbol that holds it.
func EncodeHighLevel(msg string) ([]byte, error) {
	codewords, _, err := EncodeHighLevelWithOptions([]byte(msg), EncodeOptions{}, ShapeHintForceNone, -1)
	return codewords, err
}

// EncodeHighLevelWithOptions performs high-level encoding with explicit
// scheme and FNC1 behavior, a shape constraint, and an optional requested
// size index (-1 for the smallest fit). It returns the padded codeword
// stream and the size index it was completed against.
func EncodeHighLevelWithOptions(data []byte, opts EncodeOptions, shape SymbolShapeHint, sizeIdxRequest int) ([]byte, int, error) {
	if len(data) == 0 {
		return nil, undefined, fmt.Errorf("datamatrix/encoder: empty message")
	}

	fnc1 := undefined
	if opts.FNC1 {
		fnc1 = 0x1D
	}
	req := resolveSizeRequest(shape, sizeIdxRequest)

	if opts.Scheme != SchemeAuto {
		return encodeSingleScheme(data, opts.Scheme, fnc1, req)
	}

	winner := encodeOptimizeBest(data, fnc1, req)
	if winner == nil {
		return nil, undefined, fmt.Errorf("%w: no encodation state completed", dmtx.ErrSchemeIncomplete)
	}
	return winner.output, winner.sizeIdx, nil
}

// encodeSingleScheme drives one stream through a forced scheme until it
// completes or fails.
func encodeSingleScheme(data []byte, scheme Scheme, fnc1, req int) ([]byte, int, error) {
	stream := newEncodeStream(data, fnc1)

	// Each chunk consumes at least one input byte while the stream stays in
	// the encoding state; the cap is a backstop against a stalled stream.
	for i := 0; stream.status == statusEncoding; i++ {
		if i > 2*len(data)+16 {
			stream.markFatal(dmtx.ErrSchemeIncomplete)
			break
		}
		stream.encodeNextChunk(scheme, encodeNormal, req)
	}

	if stream.status != statusComplete {
		err := stream.err
		if err == nil {
			err = dmtx.ErrSchemeIncomplete
		}
		return nil, undefined, fmt.Errorf("datamatrix/encoder: %w", err)
	}
	return stream.output, stream.sizeIdx, nil
}

// randomize253State applies the 253-state randomization used for pad
// codewords, so that symbols with identical content but different capacities
// produce different pad values.
func randomize253State(codeword byte, position int) byte {
	pseudoRandom := ((149 * position) % 253) + 1
	tmp := int(codeword) + pseudoRandom
	if tmp > 254 {
		tmp -= 254
	}
	return byte(tmp)
}

// PadCodewords pads the codeword slice with the appropriate pad codewords to
// fill the symbol's data capacity.
func PadCodewords(codewords []byte, capacity int) []byte {
	if len(codewords) >= capacity {
		return codewords
	}
	result := make([]byte, capacity)
	copy(result, codewords)

	if len(codewords) < capacity {
		result[len(codewords)] = asciiPad
	}

	for i := len(codewords) + 1; i < capacity; i++ {
		result[i] = randomize253State(asciiPad, i+1) // position is 1-based
	}

	return result
}

// randomize255State applies the 255-state randomization used for Base 256
// codewords, masking both the length header and the data bytes. position is
// the codeword's 1-based place in the final stream.
func randomize255State(value byte, position int) byte {
	pseudoRandom := ((149 * position) % 255) + 1
	tmp := int(value) + pseudoRandom
	if tmp <= 255 {
		return byte(tmp)
	}
	return byte(tmp - 256)
}

// unrandomize255State is the inverse, needed when a growing length header
// shifts already-scrambled bytes to new positions.
func unrandomize255State(value byte, position int) byte {
	pseudoRandom := ((149 * position) % 255) + 1
	tmp := int(value) - pseudoRandom
	if tmp < 0 {
		tmp += 256
	}
	return byte(tmp)
}

// --- C40 / Text value tables ---

// c40TextShift2Values is the inverse of the decoder's c40TextShift2 table.
var c40TextShift2Values = map[byte]int{
	'!': 0, '"': 1, '#': 2, '$': 3, '%': 4, '&': 5, '\'': 6, '(': 7, ')': 8,
	'*': 9, '+': 10, ',': 11, '-': 12, '.': 13, '/': 14,
	':': 15, ';': 16, '<': 17, '=': 18, '>': 19, '?': 20, '@': 21,
	'[': 22, '\\': 23, ']': 24, '^': 25, '_': 26,
	0x1D: 27, // FNC1
}

// c40Values returns the sequence of C40/Text values (each 0-39, preceded by
// shift values 0-2 where needed) that encode a single input byte.
func c40Values(b byte, textMode bool) []int {
	if b == ' ' {
		return []int{3}
	}
	if b >= '0' && b <= '9' {
		return []int{int(b-'0') + 4}
	}
	if textMode {
		if b >= 'a' && b <= 'z' {
			return []int{int(b-'a') + 14}
		}
	} else {
		if b >= 'A' && b <= 'Z' {
			return []int{int(b-'A') + 14}
		}
	}
	if b < 32 {
		return []int{0, int(b)} // Shift 1: ASCII 0-31
	}
	if v, ok := c40TextShift2Values[b]; ok {
		return []int{1, v} // Shift 2
	}

	// Shift 3: in C40 this is the lowercase letters plus {|}~DEL; in Text
	// mode it's the uppercase letters plus {|}~DEL (mirrored from basic set).
	upper := b
	if upper >= 128 {
		// Callers strip the high bit and emit an Upper Shift escape ahead of
		// this value themselves (see pushCTXValues); guard anyway.
		upper -= 128
	}
	if textMode {
		if upper >= 'A' && upper <= 'Z' {
			return []int{2, int(upper-'A') + 1}
		}
	} else {
		if upper >= 'a' && upper <= 'z' {
			return []int{2, int(upper-'a') + 1}
		}
	}
	switch upper {
	case '`':
		return []int{2, 0}
	case '{':
		return []int{2, 27}
	case '|':
		return []int{2, 28}
	case '}':
		return []int{2, 29}
	case '~':
		return []int{2, 30}
	case 127:
		return []int{2, 31}
	}
	return []int{1, int(upper)} // fallback, shouldn't be reached for valid input
}

// --- X12 ---

func isX12(b byte) bool {
	return b == '\r' || b == '*' || b == '>' || b == ' ' ||
		(b >= '0' && b <= '9') || (b >= 'A' && b <= 'Z')
}

func x12Value(b byte) int {
	switch b {
	case '\r':
		return 0
	case '*':
		return 1
	case '>':
		return 2
	case ' ':
		return 3
	}
	if b >= '0' && b <= '9' {
		return int(b-'0') + 4
	}
	return int(b-'A') + 14
}
