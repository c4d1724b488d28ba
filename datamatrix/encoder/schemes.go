package encoder

import (
	dmtx "github.com/zmoth/libdmtx"
)

// --- ASCII ---

func (s *encodeStream) appendValueASCII(value byte) {
	if s.status != statusEncoding {
		return
	}
	if s.currentScheme != SchemeASCII {
		s.markFatal(dmtx.ErrUnexpectedScheme)
		return
	}
	s.outputChainAppend(value)
	s.outputChainValueCount++
}

func (s *encodeStream) encodeNextChunkASCII(option encodeOption) {
	if s.status != statusEncoding || !s.inputHasNext() {
		return
	}

	v0 := s.inputAdvanceNext()
	if s.status != statusEncoding {
		return
	}

	if s.fnc1 != undefined && int(v0) == s.fnc1 {
		s.appendValueASCII(valueFNC1)
		return
	}

	if s.inputHasNext() {
		v1 := s.inputPeekNext()
		if isDigit(v0) && isDigit(v1) && option != encodeFull {
			// Make the peek official and fold the digit pair
			s.inputAdvanceNext()
			s.appendValueASCII(10*(v0-'0') + (v1 - '0') + 130)
			return
		}
		if option == encodeCompact {
			s.markInvalid(dmtx.ErrCantCompactNonDigits)
			return
		}
	} else if option == encodeCompact {
		// A lone trailing byte can never form a pair
		s.markInvalid(dmtx.ErrCantCompactNonDigits)
		return
	}

	if v0 < 128 {
		s.appendValueASCII(v0 + 1)
	} else {
		s.appendValueASCII(asciiUpperShift)
		s.appendValueASCII(v0 - 127)
	}
}

func (s *encodeStream) completeIfDoneASCII(req int) {
	if s.status != statusEncoding || s.inputHasNext() {
		return
	}

	sizeIdx := findSymbolSizeIdx(len(s.output), req)
	if sizeIdx == undefined {
		s.markInvalid(dmtx.ErrMessageTooLarge)
		return
	}
	s.padRemainingInAscii(sizeIdx)
	s.markComplete(sizeIdx)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// --- C40 / Text / X12 ---

// pushCTXValues expands one input byte into its C40/Text/X12 values,
// including shift escapes and the Upper Shift prefix for extended ASCII.
// ok is false when the scheme cannot represent the byte.
func pushCTXValues(inputValue byte, scheme Scheme, fnc1 int) ([]byte, bool) {
	if fnc1 != undefined && int(inputValue) == fnc1 {
		if scheme == SchemeX12 {
			return nil, false
		}
		return []byte{1, 27}, true // Shift 2, FNC1
	}

	if scheme == SchemeX12 {
		if !isX12(inputValue) {
			return nil, false
		}
		return []byte{byte(x12Value(inputValue))}, true
	}

	var out []byte
	if inputValue > 127 {
		out = append(out, 1, 30) // Shift 2, Upper Shift
		inputValue -= 128
	}
	for _, v := range c40Values(inputValue, scheme == SchemeText) {
		out = append(out, byte(v))
	}
	return out, true
}

// appendValuesCTX packs one triplet into two codewords.
func (s *encodeStream) appendValuesCTX(v0, v1, v2 byte) {
	if s.status != statusEncoding {
		return
	}
	if s.currentScheme != SchemeC40 && s.currentScheme != SchemeText && s.currentScheme != SchemeX12 {
		s.markFatal(dmtx.ErrUnexpectedScheme)
		return
	}

	word := int(v0)*1600 + int(v1)*40 + int(v2) + 1
	s.outputChainAppend(byte(word / 256))
	s.outputChainAppend(byte(word % 256))
	s.outputChainValueCount += 3
}

func (s *encodeStream) appendUnlatchCTX() {
	if s.status != statusEncoding {
		return
	}
	if s.currentScheme != SchemeC40 && s.currentScheme != SchemeText && s.currentScheme != SchemeX12 {
		s.markFatal(dmtx.ErrUnexpectedScheme)
		return
	}
	if s.outputChainValueCount%3 != 0 {
		s.markInvalid(dmtx.ErrNotOnByteBoundary)
		return
	}
	s.outputChainAppend(unlatchASCII)
}

// encodeNextChunkCTX consumes input until the value stream reaches a clean
// triplet boundary, writing each full triplet as it forms. At the end of
// input any 1-2 outstanding values are resolved through the end-of-symbol
// rules.
func (s *encodeStream) encodeNextChunkCTX(req int) {
	if s.status != statusEncoding {
		return
	}

	var values []byte
	var sources []int // input index that produced each pending value
	lastWrittenSrc := undefined

	for s.inputHasNext() {
		src := s.inputNext
		inputValue := s.inputAdvanceNext()
		if s.status != statusEncoding {
			return
		}

		vs, ok := pushCTXValues(inputValue, s.currentScheme, s.fnc1)
		if !ok {
			s.markInvalid(dmtx.ErrUnsupportedChar)
			return
		}
		values = append(values, vs...)
		for range vs {
			sources = append(sources, src)
		}

		for len(values) >= 3 {
			s.appendValuesCTX(values[0], values[1], values[2])
			if s.status != statusEncoding {
				return
			}
			lastWrittenSrc = sources[2]
			values = values[3:]
			sources = sources[3:]
		}

		// Finished on byte boundary?
		if len(values) == 0 {
			break
		}
	}

	if !s.inputHasNext() && len(values) > 0 {
		if s.currentScheme == SchemeX12 {
			s.completePartialX12(len(values), req)
		} else {
			s.completePartialC40Text(values, sources[0], sources[0] == lastWrittenSrc, req)
		}
	}
}

// completePartialC40Text resolves 1-2 values outstanding at the end of
// input. With two values and exactly two codewords left in the symbol, a
// Shift 1 pads the final triplet. Otherwise the characters behind the
// outstanding values are re-encoded in ASCII after an explicit unlatch;
// when a written triplet already holds part of the first such character the
// chain cannot be rewound and the attempt is abandoned.
func (s *encodeStream) completePartialC40Text(values []byte, firstSrc int, splitChar bool, req int) {
	if s.status != statusEncoding {
		return
	}
	if s.currentScheme != SchemeC40 && s.currentScheme != SchemeText {
		s.markFatal(dmtx.ErrUnexpectedScheme)
		return
	}

	if len(values) == 2 {
		sizeIdx := findSymbolSizeIdx(len(s.output)+2, req)
		if sizeIdx != undefined && remainingSymbolCapacity(len(s.output)+2, sizeIdx) == 0 {
			s.appendValuesCTX(values[0], values[1], 0) // Shift 1 pads the triplet
			s.markComplete(sizeIdx)
			return
		}
	}

	if splitChar {
		s.markInvalid(dmtx.ErrSchemeIncomplete)
		return
	}

	s.inputNext = firstSrc
	s.changeScheme(SchemeASCII, true)
	for s.status == statusEncoding && s.inputHasNext() {
		s.encodeNextChunkASCII(encodeNormal)
	}
	s.completeIfDoneASCII(req)
}

// completePartialX12 backs out the partially-queued inputs (X12 values map
// one to one) and finishes them in ASCII after an explicit unlatch.
func (s *encodeStream) completePartialX12(count, req int) {
	if s.status != statusEncoding {
		return
	}

	for i := 0; i < count; i++ {
		s.inputAdvancePrev()
	}
	s.changeScheme(SchemeASCII, true)
	for s.status == statusEncoding && s.inputHasNext() {
		s.encodeNextChunkASCII(encodeNormal)
	}
	s.completeIfDoneASCII(req)
}

func (s *encodeStream) completeIfDoneCTX(req int) {
	if s.status != statusEncoding || s.inputHasNext() {
		return
	}

	sizeIdx := findSymbolSizeIdx(len(s.output), req)
	if sizeIdx == undefined {
		s.markInvalid(dmtx.ErrMessageTooLarge)
		return
	}

	if remainingSymbolCapacity(len(s.output), sizeIdx) == 0 {
		// Perfect fit: the decoder unlatches implicitly at the symbol end
		s.markComplete(sizeIdx)
	} else {
		s.changeScheme(SchemeASCII, true)
		sizeIdx = findSymbolSizeIdx(len(s.output), req)
		if sizeIdx == undefined {
			s.markInvalid(dmtx.ErrMessageTooLarge)
			return
		}
		s.padRemainingInAscii(sizeIdx)
		s.markComplete(sizeIdx)
	}
}

// --- EDIFACT ---

func (s *encodeStream) appendValueEdifact(value byte) {
	if s.status != statusEncoding {
		return
	}
	if s.currentScheme != SchemeEDIFACT {
		s.markFatal(dmtx.ErrUnexpectedScheme)
		return
	}
	if value < 31 || value > 94 {
		s.markInvalid(dmtx.ErrUnsupportedChar)
		return
	}

	edifactValue := (value & 0x3F) << 2

	switch s.outputChainValueCount % 4 {
	case 0:
		s.outputChainAppend(edifactValue)
	case 1:
		previous := s.outputChainRemoveLast()
		s.outputChainAppend(previous | edifactValue>>6)
		s.outputChainAppend(edifactValue << 2)
	case 2:
		previous := s.outputChainRemoveLast()
		s.outputChainAppend(previous | edifactValue>>4)
		s.outputChainAppend(edifactValue << 4)
	case 3:
		previous := s.outputChainRemoveLast()
		s.outputChainAppend(previous | edifactValue>>2)
	}

	s.outputChainValueCount++
}

func (s *encodeStream) encodeNextChunkEdifact() {
	if s.status != statusEncoding || !s.inputHasNext() {
		return
	}

	value := s.inputPeekNext()
	if s.status != statusEncoding {
		return
	}

	if value < 32 || value > 94 {
		s.markInvalid(dmtx.ErrUnsupportedChar)
		return
	}

	// FNC1 must travel in ASCII
	if s.fnc1 != undefined && int(value) == s.fnc1 {
		s.changeScheme(SchemeASCII, true)
		s.inputAdvanceNext()
		s.appendValueASCII(valueFNC1)
		return
	}

	value = s.inputAdvanceNext()
	s.appendValueEdifact(value)
}

// completeIfDoneEdifact finishes the chain when one of the standard
// end-of-symbol conditions holds:
//
//	Term  Clean  Symbol  ASCII   Codeword
//	Cond  Bound  Remain  Remain  Sequence
//	----  -----  ------  ------  -----------
//	 (a)      Y       0       0  [none]
//	 (b)      Y       1       0  PAD
//	 (c)      Y       1       1  ASCII
//	 (d)      Y       2       0  PAD PAD
//	 (e)      Y       2       1  ASCII PAD
//	 (f)      Y       2       2  ASCII ASCII
//	          -       -       0  UNLATCH
//
// Anything else continues encoding.
func (s *encodeStream) completeIfDoneEdifact(req int) {
	if s.status != statusEncoding {
		return
	}

	cleanBoundary := s.outputChainValueCount%4 == 0

	// On a clean boundary with 1-2 codewords of symbol left, a short ASCII
	// tail rides out without an unlatch.
	if cleanBoundary {
		tail, ok := s.remainingInAscii(3)
		if !ok {
			s.markFatal(dmtx.ErrSchemeIncomplete)
			return
		}

		if len(tail) < 3 {
			sizeIdx := findSymbolSizeIdx(len(s.output)+len(tail), req)
			if sizeIdx == undefined {
				s.markInvalid(dmtx.ErrMessageTooLarge)
				return
			}
			symbolRemaining := remainingSymbolCapacity(len(s.output), sizeIdx)

			if symbolRemaining < 3 && len(tail) <= symbolRemaining {
				s.changeScheme(SchemeASCII, false)
				for _, v := range tail {
					s.appendValueASCII(v)
				}
				s.inputNext = len(s.input)
				s.padRemainingInAscii(sizeIdx)
				s.markComplete(sizeIdx)
				return
			}
		}
	}

	if !s.inputHasNext() {
		sizeIdx := findSymbolSizeIdx(len(s.output), req)
		if sizeIdx == undefined {
			s.markInvalid(dmtx.ErrMessageTooLarge)
			return
		}
		symbolRemaining := remainingSymbolCapacity(len(s.output), sizeIdx)

		// Explicit unlatch required unless on a clean boundary of a full symbol
		if !cleanBoundary || symbolRemaining > 0 {
			s.changeScheme(SchemeASCII, true)
			sizeIdx = findSymbolSizeIdx(len(s.output), req)
			if sizeIdx == undefined {
				s.markInvalid(dmtx.ErrMessageTooLarge)
				return
			}
			s.padRemainingInAscii(sizeIdx)
		}

		s.markComplete(sizeIdx)
	}
}

// --- Base 256 ---

func (s *encodeStream) appendValueBase256(value byte) {
	if s.status != statusEncoding {
		return
	}
	if s.currentScheme != SchemeBase256 {
		s.markFatal(dmtx.ErrUnexpectedScheme)
		return
	}

	s.outputChainAppend(randomize255State(value, len(s.output)+1))
	s.outputChainValueCount++
	s.updateBase256ChainHeader(undefined)
}

func (s *encodeStream) encodeNextChunkBase256() {
	if s.status != statusEncoding || !s.inputHasNext() {
		return
	}

	value := s.inputAdvanceNext()
	if s.status != statusEncoding {
		return
	}

	if s.fnc1 != undefined && int(value) == s.fnc1 {
		s.markInvalid(dmtx.ErrUnsupportedChar)
		return
	}
	s.appendValueBase256(value)
}

// updateBase256ChainHeader keeps the chain's length prefix current: one
// byte below 250 payload codewords, two at or above, or the single zero
// byte of a perfect fit (the decoder then reads to the symbol end). Header
// bytes are scrambled at their own stream positions.
func (s *encodeStream) updateBase256ChainHeader(perfectSizeIdx int) {
	if s.status != statusEncoding {
		return
	}

	headerLength := s.outputChainWordCount - s.outputChainValueCount
	payloadLength := s.outputChainValueCount

	if perfectSizeIdx != undefined {
		chainStart := len(s.output) - s.outputChainWordCount
		s.outputSet(chainStart, randomize255State(0, chainStart+1))
		return
	}

	if headerLength == 0 {
		s.base256ChainInsertFirst()
		headerLength = 1
	}
	if payloadLength == 250 && headerLength == 1 {
		s.base256ChainInsertFirst()
		headerLength = 2
	}

	chainStart := len(s.output) - s.outputChainWordCount
	if headerLength == 1 {
		s.outputSet(chainStart, randomize255State(byte(payloadLength), chainStart+1))
	} else {
		s.outputSet(chainStart, randomize255State(byte(payloadLength/250+249), chainStart+1))
		s.outputSet(chainStart+1, randomize255State(byte(payloadLength%250), chainStart+2))
	}
}

// base256ChainInsertFirst grows the header by one byte, shifting the
// payload up and re-scrambling each byte at its new stream position.
func (s *encodeStream) base256ChainInsertFirst() {
	chainStart := len(s.output) - s.outputChainWordCount
	s.output = append(s.output, 0)
	for i := len(s.output) - 1; i > chainStart; i-- {
		plain := unrandomize255State(s.output[i-1], i)
		s.output[i] = randomize255State(plain, i+1)
	}
	s.output[chainStart] = 0
	s.outputChainWordCount++
}

func (s *encodeStream) completeIfDoneBase256(req int) {
	if s.status != statusEncoding || s.inputHasNext() {
		return
	}

	headerLength := s.outputChainWordCount - s.outputChainValueCount
	if headerLength < 1 || headerLength > 2 {
		s.markFatal(dmtx.ErrSchemeIncomplete)
		return
	}

	sizeIdx := findSymbolSizeIdx(len(s.output), req)
	if sizeIdx == undefined {
		s.markInvalid(dmtx.ErrMessageTooLarge)
		return
	}

	if headerLength == 1 && remainingSymbolCapacity(len(s.output), sizeIdx) == 0 {
		// Perfect fit: zero-length header tells the decoder to read to the
		// symbol end
		s.updateBase256ChainHeader(sizeIdx)
		s.markComplete(sizeIdx)
		return
	}

	s.changeScheme(SchemeASCII, false)
	s.padRemainingInAscii(sizeIdx)
	s.markComplete(sizeIdx)
}
