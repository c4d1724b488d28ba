// Package dmtx provides the shared image, result, and binarization types used
// by the datamatrix encoder, decoder, and detector packages.
package dmtx

import (
	"math"
	"time"

	"github.com/zmoth/libdmtx/bitutil"
)

// ResultMetadataKey identifies a type of metadata about a decoded symbol.
type ResultMetadataKey int

const (
	MetadataOther ResultMetadataKey = iota
	MetadataSymbologyIdentifier
	MetadataErrorsCorrected
	MetadataStructuredAppendSequence
	MetadataStructuredAppendParity
)

// ResultPoint represents a point of interest in an image.
type ResultPoint struct {
	X, Y float64
}

// Distance returns the distance between two points.
func Distance(a, b ResultPoint) float64 {
	return math.Sqrt((a.X-b.X)*(a.X-b.X) + (a.Y-b.Y)*(a.Y-b.Y))
}

// CrossProductZ computes the z component of the cross product between vectors
// (bX-aX, bY-aY) and (cX-aX, cY-aY).
func CrossProductZ(a, b, c ResultPoint) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// Result encapsulates the result of decoding a Data Matrix symbol.
type Result struct {
	Text      string
	RawBytes  []byte
	NumBits   int
	Points    []ResultPoint
	Metadata  map[ResultMetadataKey]interface{}
	Timestamp time.Time
}

// NewResult creates a new Result with the given text and corner points.
func NewResult(text string, rawBytes []byte, points []ResultPoint) *Result {
	numBits := 0
	if rawBytes != nil {
		numBits = 8 * len(rawBytes)
	}
	return &Result{
		Text:      text,
		RawBytes:  rawBytes,
		NumBits:   numBits,
		Points:    points,
		Metadata:  make(map[ResultMetadataKey]interface{}),
		Timestamp: time.Now(),
	}
}

// PutMetadata adds a metadata key/value pair.
func (r *Result) PutMetadata(key ResultMetadataKey, value interface{}) {
	r.Metadata[key] = value
}

// BinaryBitmap represents a bitmap of binary (black/white) values, lazily
// derived from a Binarizer and cached after the first call.
type BinaryBitmap struct {
	binarizer Binarizer
	matrix    *bitutil.BitMatrix
}

// NewBinaryBitmap creates a new BinaryBitmap from the given Binarizer.
func NewBinaryBitmap(binarizer Binarizer) *BinaryBitmap {
	return &BinaryBitmap{binarizer: binarizer}
}

// Width returns the width of the bitmap.
func (b *BinaryBitmap) Width() int {
	return b.binarizer.Width()
}

// Height returns the height of the bitmap.
func (b *BinaryBitmap) Height() int {
	return b.binarizer.Height()
}

// BlackRow returns a row of black/white values.
func (b *BinaryBitmap) BlackRow(y int, row *bitutil.BitArray) (*bitutil.BitArray, error) {
	return b.binarizer.BlackRow(y, row)
}

// LuminanceSource returns the greyscale source behind the bitmap.
func (b *BinaryBitmap) LuminanceSource() LuminanceSource {
	return b.binarizer.LuminanceSource()
}

// BlackMatrix returns the 2D matrix of black/white values.
func (b *BinaryBitmap) BlackMatrix() (*bitutil.BitMatrix, error) {
	if b.matrix != nil {
		return b.matrix, nil
	}
	m, err := b.binarizer.BlackMatrix()
	if err != nil {
		return nil, err
	}
	b.matrix = m
	return m, nil
}
