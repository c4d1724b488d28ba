package detector

import (
	"context"
	"image"
	"testing"

	dmtx "github.com/zmoth/libdmtx"
	"github.com/zmoth/libdmtx/bitutil"
	"github.com/zmoth/libdmtx/datamatrix/encoder"
)

// renderSymbol draws a module matrix into a grayscale image at the given
// module scale with a white quiet zone of margin pixels on every side.
// When invert is set the symbol is rendered light-on-dark.
func renderSymbol(matrix *bitutil.BitMatrix, scale, margin int, invert bool) *image.Gray {
	w := matrix.Width()*scale + 2*margin
	h := matrix.Height()*scale + 2*margin
	img := image.NewGray(image.Rect(0, 0, w, h))

	bg, fg := byte(255), byte(0)
	if invert {
		bg, fg = 0, 255
	}
	for i := range img.Pix {
		img.Pix[i] = bg
	}
	for y := 0; y < matrix.Height(); y++ {
		for x := 0; x < matrix.Width(); x++ {
			if !matrix.Get(x, y) {
				continue
			}
			for dy := 0; dy < scale; dy++ {
				row := (margin + y*scale + dy) * img.Stride
				for dx := 0; dx < scale; dx++ {
					img.Pix[row+margin+x*scale+dx] = fg
				}
			}
		}
	}
	return img
}

func matricesEqual(a, b *bitutil.BitMatrix) bool {
	if a.Width() != b.Width() || a.Height() != b.Height() {
		return false
	}
	for y := 0; y < a.Height(); y++ {
		for x := 0; x < a.Width(); x++ {
			if a.Get(x, y) != b.Get(x, y) {
				return false
			}
		}
	}
	return true
}

// TestDetectRenderedSymbol renders an encoded symbol into a clean image and
// expects detection to recover the exact module grid and size.
func TestDetectRenderedSymbol(t *testing.T) {
	matrix, err := encoder.Encode("libdmtx")
	if err != nil {
		t.Fatal(err)
	}

	img := renderSymbol(matrix, 5, 20, false)
	src := dmtx.NewGrayImageLuminanceSource(img)

	res, err := Detect(context.Background(), src, nil)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}

	if res.Bits.Width() != matrix.Width() || res.Bits.Height() != matrix.Height() {
		t.Fatalf("detected %dx%d modules, want %dx%d",
			res.Bits.Width(), res.Bits.Height(), matrix.Width(), matrix.Height())
	}
	if symbolRowsTable[res.SizeIdx] != matrix.Height() || symbolColsTable[res.SizeIdx] != matrix.Width() {
		t.Errorf("sizeIdx %d inconsistent with %dx%d symbol", res.SizeIdx, matrix.Height(), matrix.Width())
	}
	if !matricesEqual(res.Bits, matrix) {
		t.Error("sampled module grid differs from the encoded symbol")
	}
	if len(res.Points) != 4 {
		t.Fatalf("got %d corner points, want 4", len(res.Points))
	}
	for _, p := range res.Points {
		if p.X < 0 || p.Y < 0 || p.X >= float64(img.Rect.Dx()) || p.Y >= float64(img.Rect.Dy()) {
			t.Errorf("corner point (%g,%g) outside image", p.X, p.Y)
		}
	}
}

// TestDetectInvertedSymbol covers light-on-dark rendering: the sampled
// on/off colours swap but the recovered module grid must not.
func TestDetectInvertedSymbol(t *testing.T) {
	matrix, err := encoder.Encode("libdmtx")
	if err != nil {
		t.Fatal(err)
	}

	img := renderSymbol(matrix, 5, 20, true)
	src := dmtx.NewGrayImageLuminanceSource(img)

	res, err := Detect(context.Background(), src, nil)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}

	if !matricesEqual(res.Bits, matrix) {
		t.Error("sampled module grid differs from the encoded symbol")
	}
	if res.OnColor <= res.OffColor {
		t.Errorf("inverted symbol should sample on brighter than off, got on=%d off=%d",
			res.OnColor, res.OffColor)
	}
}

// TestDetectCancelled verifies cooperative cancellation: an expired context
// surfaces as not-found without scanning.
func TestDetectCancelled(t *testing.T) {
	matrix, err := encoder.Encode("libdmtx")
	if err != nil {
		t.Fatal(err)
	}
	src := dmtx.NewGrayImageLuminanceSource(renderSymbol(matrix, 5, 20, false))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Detect(ctx, src, nil); err != dmtx.ErrNotFound {
		t.Errorf("cancelled detect returned %v, want ErrNotFound", err)
	}
}

// TestDetectBlankImage must exhaust the scan grid without finding anything.
func TestDetectBlankImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	src := dmtx.NewGrayImageLuminanceSource(img)

	if _, err := Detect(context.Background(), src, nil); err != dmtx.ErrNotFound {
		t.Errorf("blank image returned %v, want ErrNotFound", err)
	}
}
