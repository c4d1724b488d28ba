package encoder

import (
	dmtx "github.com/zmoth/libdmtx"
)

// undefined marks an unset index or FNC1 byte.
const undefined = -1

// streamStatus is the lifecycle of one encode attempt. Once a stream leaves
// statusEncoding every operation on it becomes a no-op, so a failure reason
// recorded early survives to the caller untouched.
type streamStatus int

const (
	statusEncoding streamStatus = iota
	statusComplete
	statusInvalid
	statusFatal
)

// encodeOption selects the ASCII sub-mode: Normal pairs digits when it can,
// Compact must pair them, Full never does. The scheme optimiser needs all
// three because digit pairing shifts the value alignment of any C40, X12,
// or EDIFACT chain that follows.
type encodeOption int

const (
	encodeNormal encodeOption = iota
	encodeCompact
	encodeFull
)

// Symbol size request sentinels, mirroring the auto constants the caller's
// shape hint resolves into.
const (
	sizeRequestAuto       = -1
	sizeRequestSquareAuto = -2
	sizeRequestRectAuto   = -3
)

// encodeStream is one in-flight encode attempt: the scheme currently
// latched, progress through the input, the value/word counts of the open
// chain, and an owned output buffer. The optimiser keeps 34 of these alive
// (a best and a candidate per state) and copies between them.
type encodeStream struct {
	input     []byte
	inputNext int

	currentScheme         Scheme
	outputChainValueCount int
	outputChainWordCount  int

	status  streamStatus
	err     error
	sizeIdx int
	fnc1    int // input byte treated as FNC1, or undefined

	output []byte
}

func newEncodeStream(input []byte, fnc1 int) *encodeStream {
	return &encodeStream{
		input:         input,
		currentScheme: SchemeASCII,
		sizeIdx:       undefined,
		fnc1:          fnc1,
		status:        statusEncoding,
	}
}

// clone returns an independent copy, including the output buffer.
func (s *encodeStream) clone() *encodeStream {
	dst := *s
	dst.output = append([]byte(nil), s.output...)
	return &dst
}

// copyFrom overwrites s with src, reusing s's output storage.
func (s *encodeStream) copyFrom(src *encodeStream) {
	out := append(s.output[:0], src.output...)
	*s = *src
	s.output = out
}

func (s *encodeStream) markComplete(sizeIdx int) {
	if s.status == statusEncoding {
		s.sizeIdx = sizeIdx
		s.status = statusComplete
	}
}

func (s *encodeStream) markInvalid(err error) {
	if s.status == statusEncoding {
		s.status = statusInvalid
		s.err = err
	}
}

func (s *encodeStream) markFatal(err error) {
	s.status = statusFatal
	s.err = err
}

// outputChainAppend pushes one codeword onto the open chain.
func (s *encodeStream) outputChainAppend(value byte) {
	if s.status != statusEncoding {
		return
	}
	s.output = append(s.output, value)
	s.outputChainWordCount++
}

// outputChainRemoveLast pops the newest codeword; EDIFACT repacks partially
// filled codewords this way.
func (s *encodeStream) outputChainRemoveLast() byte {
	if s.outputChainWordCount <= 0 || len(s.output) == 0 {
		s.markFatal(dmtx.ErrIllegalParameter)
		return 0
	}
	value := s.output[len(s.output)-1]
	s.output = s.output[:len(s.output)-1]
	s.outputChainWordCount--
	return value
}

// outputSet overwrites an arbitrary emitted codeword; the Base 256 length
// header is patched in place as the chain grows.
func (s *encodeStream) outputSet(index int, value byte) {
	if index < 0 || index >= len(s.output) {
		s.markFatal(dmtx.ErrIllegalParameter)
		return
	}
	s.output[index] = value
}

func (s *encodeStream) inputHasNext() bool {
	return s.inputNext < len(s.input)
}

func (s *encodeStream) inputPeekNext() byte {
	if !s.inputHasNext() {
		s.markFatal(dmtx.ErrIllegalParameter)
		return 0
	}
	return s.input[s.inputNext]
}

func (s *encodeStream) inputAdvanceNext() byte {
	value := s.inputPeekNext()
	if s.status == statusEncoding {
		s.inputNext++
	}
	return value
}

func (s *encodeStream) inputAdvancePrev() {
	if s.inputNext > 0 {
		s.inputNext--
	} else {
		s.markFatal(dmtx.ErrIllegalParameter)
	}
}

// encodeNextChunk consumes the smallest unit the target scheme can absorb
// (one codeword's worth of input, or a whole chain run for C40/Text/X12),
// latching into the scheme first if needed, then checks the end-of-symbol
// conditions.
func (s *encodeStream) encodeNextChunk(targetScheme Scheme, option encodeOption, req int) {
	if s.status != statusEncoding {
		return
	}

	if s.currentScheme != targetScheme {
		s.changeScheme(targetScheme, true)
		if s.status != statusEncoding {
			return
		}
	}

	switch targetScheme {
	case SchemeASCII:
		s.encodeNextChunkASCII(option)
		s.completeIfDoneASCII(req)
	case SchemeC40, SchemeText, SchemeX12:
		s.encodeNextChunkCTX(req)
		s.completeIfDoneCTX(req)
	case SchemeEDIFACT:
		s.encodeNextChunkEdifact()
		s.completeIfDoneEdifact(req)
	case SchemeBase256:
		s.encodeNextChunkBase256()
		s.completeIfDoneBase256(req)
	default:
		s.markFatal(dmtx.ErrIllegalParameter)
	}
}

// changeScheme unlatches the current chain back to ASCII and latches into
// the target. Every scheme switch routes through ASCII. An implicit unlatch
// (explicitUnlatch false) emits no codeword: C40/Text/X12 at the symbol end
// and Base 256 always terminate that way.
func (s *encodeStream) changeScheme(targetScheme Scheme, explicitUnlatch bool) {
	if s.status != statusEncoding || s.currentScheme == targetScheme {
		return
	}

	switch s.currentScheme {
	case SchemeC40, SchemeText, SchemeX12:
		if explicitUnlatch {
			s.appendUnlatchCTX()
		}
	case SchemeEDIFACT:
		if explicitUnlatch {
			s.appendValueEdifact(unlatchEDIFACT)
		}
	}
	if s.status != statusEncoding {
		return
	}

	s.currentScheme = SchemeASCII
	s.outputChainValueCount = 0
	s.outputChainWordCount = 0

	switch targetScheme {
	case SchemeC40:
		s.appendValueASCII(latchToC40)
	case SchemeText:
		s.appendValueASCII(latchToText)
	case SchemeX12:
		s.appendValueASCII(latchToX12)
	case SchemeEDIFACT:
		s.appendValueASCII(latchToEDIFACT)
	case SchemeBase256:
		s.appendValueASCII(latchToBase256)
	}
	if s.status != statusEncoding {
		return
	}

	s.currentScheme = targetScheme
	s.outputChainValueCount = 0
	s.outputChainWordCount = 0
}

// resolveSizeRequest folds the caller's shape hint and explicit size index
// into a single request value.
func resolveSizeRequest(shape SymbolShapeHint, sizeIdxRequest int) int {
	if sizeIdxRequest >= 0 {
		return sizeIdxRequest
	}
	switch shape {
	case ShapeHintForceSquare:
		return sizeRequestSquareAuto
	case ShapeHintForceRectangle:
		return sizeRequestRectAuto
	}
	return sizeRequestAuto
}

// findSymbolSizeIdx returns the smallest size index whose data capacity
// holds dataWords, honoring the request; equal-capacity candidates resolve
// by table order. Returns undefined when nothing fits.
func findSymbolSizeIdx(dataWords, req int) int {
	if req >= 0 {
		if req < len(symbols) && symbols[req].DataCapacity >= dataWords {
			return req
		}
		return undefined
	}
	for i := range symbols {
		si := &symbols[i]
		if req == sizeRequestSquareAuto && si.Rectangular {
			continue
		}
		if req == sizeRequestRectAuto && !si.Rectangular {
			continue
		}
		if si.DataCapacity >= dataWords {
			return i
		}
	}
	return undefined
}

// remainingSymbolCapacity is the number of unfilled data codewords of the
// given size at the given output length.
func remainingSymbolCapacity(outputLength, sizeIdx int) int {
	return symbols[sizeIdx].DataCapacity - outputLength
}

// padRemainingInAscii fills the rest of the symbol with pad codewords: the
// first pad plain, the rest scrambled by the 253-state mixer at their
// 1-based stream positions.
func (s *encodeStream) padRemainingInAscii(sizeIdx int) {
	remaining := remainingSymbolCapacity(len(s.output), sizeIdx)
	if remaining > 0 {
		s.appendValueASCII(asciiPad)
		remaining--
	}
	for remaining > 0 && s.status == statusEncoding {
		s.appendValueASCII(randomize253State(asciiPad, len(s.output)+1))
		remaining--
	}
}

// remainingInAscii trial-encodes the unread input in plain ASCII, stopping
// once the result outgrows capacity; callers use it to ask "would the tail
// fit the space left in the symbol?".
func (s *encodeStream) remainingInAscii(capacity int) ([]byte, bool) {
	tmp := &encodeStream{
		input:         s.input,
		inputNext:     s.inputNext,
		currentScheme: SchemeASCII,
		sizeIdx:       undefined,
		fnc1:          s.fnc1,
		status:        statusEncoding,
	}

	for tmp.inputHasNext() && len(tmp.output) <= capacity {
		tmp.encodeNextChunkASCII(encodeNormal)
		if tmp.status != statusEncoding {
			return nil, false
		}
	}
	return tmp.output, true
}
