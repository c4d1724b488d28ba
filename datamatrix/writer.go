package datamatrix

import (
	dmtx "github.com/zmoth/libdmtx"
	"github.com/zmoth/libdmtx/bitutil"
	"github.com/zmoth/libdmtx/datamatrix/encoder"
)

// Writer encodes text into Data Matrix ECC-200 symbols.
type Writer struct{}

// NewWriter creates a new Data Matrix Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Encode encodes contents into a Data Matrix symbol and returns the module
// matrix (excluding quiet zone). If opts is nil, DefaultEncodeOptions is used.
func (w *Writer) Encode(contents string, opts *dmtx.EncodeOptions) (*bitutil.BitMatrix, error) {
	if opts == nil {
		opts = dmtx.DefaultEncodeOptions()
	}

	lowOpts := encoder.EncodeOptions{
		Scheme: schemeToEncoder(opts.Scheme),
		FNC1:   opts.FNC1,
	}

	matrix, err := encoder.EncodeWithOptions(contents, encoder.ShapeHintForceNone, lowOpts, opts.SizeIdxRequest)
	if err != nil {
		return nil, err
	}

	if opts.MarginSize <= 0 {
		return matrix, nil
	}
	return addQuietZone(matrix, opts.MarginSize), nil
}

func schemeToEncoder(s dmtx.Scheme) encoder.Scheme {
	switch s {
	case dmtx.SchemeASCII:
		return encoder.SchemeASCII
	case dmtx.SchemeC40:
		return encoder.SchemeC40
	case dmtx.SchemeText:
		return encoder.SchemeText
	case dmtx.SchemeX12:
		return encoder.SchemeX12
	case dmtx.SchemeEDIFACT:
		return encoder.SchemeEDIFACT
	case dmtx.SchemeBase256:
		return encoder.SchemeBase256
	default:
		return encoder.SchemeAuto
	}
}

// addQuietZone pads the symbol with margin modules of white border on all
// four sides.
func addQuietZone(matrix *bitutil.BitMatrix, margin int) *bitutil.BitMatrix {
	w, h := matrix.Width(), matrix.Height()
	out := bitutil.NewBitMatrixWithSize(w+2*margin, h+2*margin)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if matrix.Get(x, y) {
				out.Set(x+margin, y+margin)
			}
		}
	}
	return out
}
