package dmtx

// Scheme identifies a Data Matrix encodation scheme.
type Scheme int

const (
	// SchemeAuto lets the optimiser choose the shortest encodation for each
	// input, switching schemes as needed.
	SchemeAuto Scheme = iota
	SchemeASCII
	SchemeC40
	SchemeText
	SchemeX12
	SchemeEDIFACT
	SchemeBase256
)

// EncodeOptions configures symbol encoding behavior.
type EncodeOptions struct {
	// Scheme forces a single encodation scheme for the entire message. The
	// zero value, SchemeAuto, runs the scheme optimiser instead.
	Scheme Scheme

	// SizeIdxRequest requests a specific symbol size index, or -1 to let the
	// encoder pick the smallest symbol that fits the message.
	SizeIdxRequest int

	// MarginSize sets the quiet zone width in modules on each side of the
	// symbol.
	MarginSize int

	// ModuleSize sets the width in pixels of a single module when rendering
	// the symbol to an image.
	ModuleSize int

	// FNC1 enables GS1 FNC1 sequence recognition in the input.
	FNC1 bool
}

// DefaultEncodeOptions returns the option set used when none is supplied.
func DefaultEncodeOptions() *EncodeOptions {
	return &EncodeOptions{
		Scheme:         SchemeAuto,
		SizeIdxRequest: -1,
		MarginSize:     10,
		ModuleSize:     5,
	}
}
