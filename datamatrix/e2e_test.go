package datamatrix

import (
	"context"
	"image"
	"testing"
	"time"

	dmtx "github.com/zmoth/libdmtx"
	"github.com/zmoth/libdmtx/binarizer"
	"github.com/zmoth/libdmtx/bitutil"
)

// renderModules draws a module matrix as a grayscale image at the given
// pixel scale, quiet zone included in the matrix itself.
func renderModules(matrix *bitutil.BitMatrix, scale int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, matrix.Width()*scale, matrix.Height()*scale))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for y := 0; y < matrix.Height(); y++ {
		for x := 0; x < matrix.Width(); x++ {
			if !matrix.Get(x, y) {
				continue
			}
			for dy := 0; dy < scale; dy++ {
				row := (y*scale + dy) * img.Stride
				for dx := 0; dx < scale; dx++ {
					img.Pix[row+x*scale+dx] = 0
				}
			}
		}
	}
	return img
}

// TestDetectorRoundTrip exercises the full image pipeline: encode, render
// to pixels, locate the region with the detector, and decode the sampled
// modules.
func TestDetectorRoundTrip(t *testing.T) {
	tests := []string{
		"libdmtx",
		"30Q324343430794<OQQ",
		"Hello, World 123",
	}

	writer := NewWriter()
	reader := NewReader()

	for _, tc := range tests {
		t.Run(tc, func(t *testing.T) {
			opts := dmtx.DefaultEncodeOptions()
			opts.MarginSize = 4
			matrix, err := writer.Encode(tc, opts)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}

			img := renderModules(matrix, 5)
			source := dmtx.NewGrayImageLuminanceSource(img)
			bitmap := dmtx.NewBinaryBitmap(binarizer.NewHybrid(source))

			result, err := reader.Decode(bitmap, nil)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if result.Text != tc {
				t.Errorf("round trip got %q, want %q", result.Text, tc)
			}
			if len(result.Points) != 4 {
				t.Errorf("got %d corner points, want 4", len(result.Points))
			}
		})
	}
}

// TestDecodeCorrectsDamage flips one data module after encoding and expects
// Reed-Solomon correction to absorb it and report the repair.
func TestDecodeCorrectsDamage(t *testing.T) {
	opts := dmtx.DefaultEncodeOptions()
	opts.MarginSize = 2
	matrix, err := NewWriter().Encode("damage test", opts)
	if err != nil {
		t.Fatal(err)
	}

	// Flip one interior data module, clear of the finder and clock tracks.
	matrix.Flip(2+5, 2+5)

	source := newBitMatrixLuminanceSource(matrix)
	bitmap := dmtx.NewBinaryBitmap(binarizer.NewGlobalHistogram(source))

	result, err := NewReader().Decode(bitmap, &dmtx.DecodeOptions{PureBarcode: true})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Text != "damage test" {
		t.Errorf("got %q, want %q", result.Text, "damage test")
	}
	if _, ok := result.Metadata[dmtx.MetadataErrorsCorrected]; !ok {
		t.Error("expected errors-corrected metadata after damage")
	}
}

// TestDecodeContextTimeout verifies the cooperative deadline: an already
// expired context produces not-found, not a hang or a crash.
func TestDecodeContextTimeout(t *testing.T) {
	opts := dmtx.DefaultEncodeOptions()
	opts.MarginSize = 4
	matrix, err := NewWriter().Encode("timeout", opts)
	if err != nil {
		t.Fatal(err)
	}

	img := renderModules(matrix, 5)
	bitmap := dmtx.NewBinaryBitmap(binarizer.NewHybrid(dmtx.NewGrayImageLuminanceSource(img)))

	ctx, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()

	if _, err := NewReader().DecodeContext(ctx, bitmap, nil); err != dmtx.ErrNotFound {
		t.Errorf("expired context returned %v, want ErrNotFound", err)
	}
}
