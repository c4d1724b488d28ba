// Package datamatrix provides Data Matrix (ECC-200) reading and writing.
package datamatrix

import (
	"context"

	dmtx "github.com/zmoth/libdmtx"
	"github.com/zmoth/libdmtx/bitutil"
	"github.com/zmoth/libdmtx/datamatrix/decoder"
	"github.com/zmoth/libdmtx/datamatrix/detector"
)

// Reader decodes Data Matrix barcodes from images.
type Reader struct {
	dec *decoder.Decoder
}

// NewReader creates a new Data Matrix Reader.
func NewReader() *Reader {
	return &Reader{
		dec: decoder.NewDecoder(),
	}
}

// Decode locates and decodes a Data Matrix barcode in the given image. If
// opts is nil, DefaultDecodeOptions is used.
func (r *Reader) Decode(image *dmtx.BinaryBitmap, opts *dmtx.DecodeOptions) (*dmtx.Result, error) {
	return r.DecodeContext(context.Background(), image, opts)
}

// DecodeContext is Decode with cooperative cancellation: the detector polls
// the context between scan grid probes, and an expired context surfaces as
// ErrNotFound.
func (r *Reader) DecodeContext(ctx context.Context, image *dmtx.BinaryBitmap, opts *dmtx.DecodeOptions) (*dmtx.Result, error) {
	if opts == nil {
		opts = dmtx.DefaultDecodeOptions()
	}

	if opts.PureBarcode {
		return r.decodePure(image)
	}

	detResult, err := detector.Detect(ctx, image.LuminanceSource(), detectorOptions(opts))
	if err != nil {
		// A clean, unrotated rendering can still fail region detection
		// when its quiet zone runs to the image border; the pure-symbol
		// extraction covers that case when the caller asks for more effort.
		if opts.TryHarder {
			return r.decodePure(image)
		}
		return nil, err
	}

	dr, err := r.dec.Decode(detResult.Bits)
	if err != nil {
		return nil, err
	}

	result := dmtx.NewResult(dr.Text, dr.RawBytes, detResult.Points)
	result.PutMetadata(dmtx.MetadataSymbologyIdentifier, "]d1")
	if dr.ErrorsCorrected > 0 {
		result.PutMetadata(dmtx.MetadataErrorsCorrected, dr.ErrorsCorrected)
	}
	return result, nil
}

// Reset resets internal state.
func (r *Reader) Reset() {}

// detectorOptions translates the caller-facing decode tunables into the
// detector's option set.
func detectorOptions(opts *dmtx.DecodeOptions) *detector.Options {
	det := detector.DefaultOptions()
	det.SizeIdxExpected = opts.SizeIdxExpected
	det.EdgeMin = opts.EdgeMin
	det.EdgeMax = opts.EdgeMax
	if opts.ScanGap > 0 {
		det.ScanGap = opts.ScanGap
	}
	if opts.SquareDevn > 0 {
		det.SquareDevn = opts.SquareDevn
	}
	if opts.EdgeThresh > 0 {
		det.EdgeThresh = opts.EdgeThresh
	}
	det.Shrink = opts.Shrink
	det.ROI = opts.ROI
	return det
}

// decodePure extracts and decodes a symbol from a "pure" image, one that
// contains only the unrotated, unskewed barcode with some white border.
func (r *Reader) decodePure(image *dmtx.BinaryBitmap) (*dmtx.Result, error) {
	matrix, err := image.BlackMatrix()
	if err != nil {
		return nil, err
	}

	bits, err := extractPureBits(matrix)
	if err != nil {
		return nil, err
	}
	dr, err := r.dec.Decode(bits)
	if err != nil {
		return nil, err
	}
	result := dmtx.NewResult(dr.Text, dr.RawBytes, nil)
	result.PutMetadata(dmtx.MetadataSymbologyIdentifier, "]d1")
	if dr.ErrorsCorrected > 0 {
		result.PutMetadata(dmtx.MetadataErrorsCorrected, dr.ErrorsCorrected)
	}
	return result, nil
}

// extractPureBits extracts a Data Matrix from a "pure" image — one that
// contains only the unrotated, unskewed barcode with some white border.
func extractPureBits(image *bitutil.BitMatrix) (*bitutil.BitMatrix, error) {
	leftTopBlack := image.TopLeftOnBit()
	rightBottomBlack := image.BottomRightOnBit()
	if leftTopBlack == nil || rightBottomBlack == nil {
		return nil, dmtx.ErrNotFound
	}

	moduleSize, err := moduleSizePure(leftTopBlack, image)
	if err != nil {
		return nil, err
	}

	top := leftTopBlack[1]
	bottom := rightBottomBlack[1]
	left := leftTopBlack[0]
	right := rightBottomBlack[0]

	matrixWidth := (right - left + 1) / moduleSize
	matrixHeight := (bottom - top + 1) / moduleSize
	if matrixWidth <= 0 || matrixHeight <= 0 {
		return nil, dmtx.ErrNotFound
	}

	// Nudge to the center of each module
	nudge := moduleSize / 2

	bits := bitutil.NewBitMatrixWithSize(matrixWidth, matrixHeight)
	for y := 0; y < matrixHeight; y++ {
		iOffset := top + y*moduleSize + nudge
		for x := 0; x < matrixWidth; x++ {
			if image.Get(left+x*moduleSize+nudge, iOffset) {
				bits.Set(x, y)
			}
		}
	}
	return bits, nil
}

func moduleSizePure(leftTopBlack []int, image *bitutil.BitMatrix) (int, error) {
	width := image.Width()
	x := leftTopBlack[0]
	y := leftTopBlack[1]

	// Walk right along the top edge to find the module size
	for x < width && image.Get(x, y) {
		x++
	}
	if x == width {
		return 0, dmtx.ErrNotFound
	}

	moduleSize := x - leftTopBlack[0]
	if moduleSize == 0 {
		return 0, dmtx.ErrNotFound
	}
	return moduleSize, nil
}
