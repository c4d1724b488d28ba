package encoder

import "errors"

// The scheme optimiser tracks one stream per (scheme, phase) combination —
// 17 states in all. Phase offsets matter because C40/Text/X12 pack three
// values into two codewords and EDIFACT packs four values into three, so
// two chains over the same input that latched at different positions align
// differently and cannot be merged. ASCII gets a Full state (never pairs
// digits) plus two Compact states (must pair) whose offsets track input
// parity.
type schemeState int

const (
	stateAsciiFull schemeState = iota
	stateAsciiCompactOffset0
	stateAsciiCompactOffset1
	stateC40Offset0
	stateC40Offset1
	stateC40Offset2
	stateTextOffset0
	stateTextOffset1
	stateTextOffset2
	stateX12Offset0
	stateX12Offset1
	stateX12Offset2
	stateEdifactOffset0
	stateEdifactOffset1
	stateEdifactOffset2
	stateEdifactOffset3
	stateBase256
	schemeStateCount
)

// errPhaseMismatch marks a state that cannot begin a chain at the current
// input position; the stream loses the race until its offset comes around.
var errPhaseMismatch = errors.New("scheme phase not startable at this input position")

// stateScheme maps an optimiser state to the scheme its stream encodes in.
func stateScheme(state schemeState) Scheme {
	switch state {
	case stateAsciiFull, stateAsciiCompactOffset0, stateAsciiCompactOffset1:
		return SchemeASCII
	case stateC40Offset0, stateC40Offset1, stateC40Offset2:
		return SchemeC40
	case stateTextOffset0, stateTextOffset1, stateTextOffset2:
		return SchemeText
	case stateX12Offset0, stateX12Offset1, stateX12Offset2:
		return SchemeX12
	case stateEdifactOffset0, stateEdifactOffset1, stateEdifactOffset2, stateEdifactOffset3:
		return SchemeEDIFACT
	}
	return SchemeBase256
}

// validStateSwitch forbids hopping between phase offsets of one scheme:
// that history is already tracked by the other offset's own state. AsciiFull
// is reachable from anywhere and can reach anywhere.
func validStateSwitch(fromState, targetState schemeState) bool {
	if stateScheme(fromState) == stateScheme(targetState) &&
		fromState != targetState &&
		fromState != stateAsciiFull && targetState != stateAsciiFull {
		return false
	}
	return true
}

// encodeOptimizeBest runs the dynamic program: for every input byte each
// state proposes arrivals from every live state and keeps the shortest.
// Returns the completed stream with the fewest codewords, or nil when no
// state completed. Ties resolve to the earliest state in declaration order.
func encodeOptimizeBest(input []byte, fnc1, req int) *encodeStream {
	var streamsBest, streamsTemp [schemeStateCount]*encodeStream
	for state := range streamsBest {
		streamsBest[state] = newEncodeStream(input, fnc1)
		streamsTemp[state] = newEncodeStream(input, fnc1)
	}

	c40ValueCount, textValueCount, x12ValueCount := 0, 0, 0

	for inputNext := 0; inputNext < len(input); inputNext++ {
		streamAdvanceFromBest(&streamsTemp, &streamsBest, stateAsciiFull, req)

		advanceAsciiCompact(&streamsTemp, &streamsBest, stateAsciiCompactOffset0, inputNext, req)
		advanceAsciiCompact(&streamsTemp, &streamsBest, stateAsciiCompactOffset1, inputNext, req)

		advanceCTX(&streamsTemp, &streamsBest, stateC40Offset0, inputNext, c40ValueCount, req)
		advanceCTX(&streamsTemp, &streamsBest, stateC40Offset1, inputNext, c40ValueCount, req)
		advanceCTX(&streamsTemp, &streamsBest, stateC40Offset2, inputNext, c40ValueCount, req)

		advanceCTX(&streamsTemp, &streamsBest, stateTextOffset0, inputNext, textValueCount, req)
		advanceCTX(&streamsTemp, &streamsBest, stateTextOffset1, inputNext, textValueCount, req)
		advanceCTX(&streamsTemp, &streamsBest, stateTextOffset2, inputNext, textValueCount, req)

		advanceCTX(&streamsTemp, &streamsBest, stateX12Offset0, inputNext, x12ValueCount, req)
		advanceCTX(&streamsTemp, &streamsBest, stateX12Offset1, inputNext, x12ValueCount, req)
		advanceCTX(&streamsTemp, &streamsBest, stateX12Offset2, inputNext, x12ValueCount, req)

		advanceEdifact(&streamsTemp, &streamsBest, stateEdifactOffset0, inputNext, req)
		advanceEdifact(&streamsTemp, &streamsBest, stateEdifactOffset1, inputNext, req)
		advanceEdifact(&streamsTemp, &streamsBest, stateEdifactOffset2, inputNext, req)
		advanceEdifact(&streamsTemp, &streamsBest, stateEdifactOffset3, inputNext, req)

		streamAdvanceFromBest(&streamsTemp, &streamsBest, stateBase256, req)

		// Overwrite best streams with the new results; completed streams
		// are frozen
		for state := range streamsBest {
			if streamsBest[state].status != statusComplete {
				streamsBest[state].copyFrom(streamsTemp[state])
			}
		}

		// Track the running value expansion of the input under each CTX
		// scheme, which decides when each offset state may start a chain
		c40ValueCount += ctxValueLen(input[inputNext], SchemeC40, fnc1)
		textValueCount += ctxValueLen(input[inputNext], SchemeText, fnc1)
		x12ValueCount += ctxValueLen(input[inputNext], SchemeX12, fnc1)
	}

	var winner *encodeStream
	for state := range streamsBest {
		if streamsBest[state].status != statusComplete {
			continue
		}
		if winner == nil || len(streamsBest[state].output) < len(winner.output) {
			winner = streamsBest[state]
		}
	}
	return winner
}

// ctxValueLen is the number of scheme values one input byte expands into,
// counting an unencodable byte as one so the phase tracking stays aligned.
func ctxValueLen(inputValue byte, scheme Scheme, fnc1 int) int {
	vs, ok := pushCTXValues(inputValue, scheme, fnc1)
	if !ok {
		return 1
	}
	return len(vs)
}

// streamAdvanceFromBest proposes arrivals into targetState from every
// still-encoding state and keeps the shortest. Comparing output lengths is
// sound because every candidate starts on the same input position and
// encodes the same bytes; they differ only in latch and unlatch overhead.
func streamAdvanceFromBest(streamsNext, streamsBest *[schemeStateCount]*encodeStream, targetState schemeState, req int) {
	targetStream := streamsNext[targetState]
	targetScheme := stateScheme(targetState)

	var option encodeOption
	switch targetState {
	case stateAsciiFull:
		option = encodeFull
	case stateAsciiCompactOffset0, stateAsciiCompactOffset1:
		option = encodeCompact
	default:
		option = encodeNormal
	}

	for fromState := schemeState(0); fromState < schemeStateCount; fromState++ {
		if streamsBest[fromState].status != statusEncoding || !validStateSwitch(fromState, targetState) {
			continue
		}

		streamTemp := streamsBest[fromState].clone()
		streamTemp.encodeNextChunk(targetScheme, option, req)

		if fromState == 0 ||
			(streamTemp.status != statusInvalid && len(streamTemp.output) < len(targetStream.output)) {
			targetStream.copyFrom(streamTemp)
		}
	}
}

// advanceAsciiCompact advances a Compact ASCII state when the input parity
// matches its offset; off-phase positions carry the previous stream
// forward, or mark it invalid if it never started.
func advanceAsciiCompact(streamsNext, streamsBest *[schemeStateCount]*encodeStream, targetState schemeState, inputNext, req int) {
	currentStream := streamsBest[targetState]
	targetStream := streamsNext[targetState]

	var isStartState bool
	switch targetState {
	case stateAsciiCompactOffset0:
		isStartState = inputNext%2 == 0
	case stateAsciiCompactOffset1:
		isStartState = inputNext%2 == 1
	}

	switch {
	case inputNext < currentStream.inputNext:
		// Digit pair consumed two inputs; the stream is ahead of the walk
		targetStream.copyFrom(currentStream)
	case isStartState:
		streamAdvanceFromBest(streamsNext, streamsBest, targetState, req)
	default:
		targetStream.copyFrom(currentStream)
		targetStream.markInvalid(errPhaseMismatch)
	}
}

// advanceCTX advances a C40/Text/X12 offset state when the scheme's running
// value count reaches its phase.
func advanceCTX(streamsNext, streamsBest *[schemeStateCount]*encodeStream, targetState schemeState, inputNext, ctxValueCount, req int) {
	currentStream := streamsBest[targetState]
	targetStream := streamsNext[targetState]

	var isStartState bool
	switch targetState {
	case stateC40Offset0, stateTextOffset0, stateX12Offset0:
		isStartState = ctxValueCount%3 == 0
	case stateC40Offset1, stateTextOffset1, stateX12Offset1:
		isStartState = ctxValueCount%3 == 1
	case stateC40Offset2, stateTextOffset2, stateX12Offset2:
		isStartState = ctxValueCount%3 == 2
	}

	switch {
	case inputNext < currentStream.inputNext:
		// Chain chunks swallow several inputs at once; carry forward until
		// the walk catches up
		targetStream.copyFrom(currentStream)
	case isStartState:
		streamAdvanceFromBest(streamsNext, streamsBest, targetState, req)
	default:
		targetStream.copyFrom(currentStream)
		targetStream.markInvalid(errPhaseMismatch)
	}
}

// advanceEdifact advances an EDIFACT offset state when the input position
// matches its phase; off-phase positions continue an already-latched chain
// one value at a time.
func advanceEdifact(streamsNext, streamsBest *[schemeStateCount]*encodeStream, targetState schemeState, inputNext, req int) {
	currentStream := streamsBest[targetState]
	targetStream := streamsNext[targetState]

	var isStartState bool
	switch targetState {
	case stateEdifactOffset0:
		isStartState = inputNext%4 == 0
	case stateEdifactOffset1:
		isStartState = inputNext%4 == 1
	case stateEdifactOffset2:
		isStartState = inputNext%4 == 2
	case stateEdifactOffset3:
		isStartState = inputNext%4 == 3
	}

	if isStartState {
		streamAdvanceFromBest(streamsNext, streamsBest, targetState, req)
	} else {
		targetStream.copyFrom(currentStream)
		if currentStream.status == statusEncoding && currentStream.currentScheme == SchemeEDIFACT {
			targetStream.encodeNextChunk(SchemeEDIFACT, encodeNormal, req)
		} else {
			targetStream.markInvalid(errPhaseMismatch)
		}
	}
}
