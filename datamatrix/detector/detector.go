// Package detector locates ECC-200 Data Matrix symbols in grayscale images.
//
// Detection walks a coarse-to-fine scan grid over the image probing for
// gradient edges. A usable edge seed is followed in both directions into a
// connected trail, the two strongest lines through the trail become the
// symbol's L-finder, the remaining two edges are fitted against the
// calibration tracks, and a factored homography maps the region onto the
// unit square so the module grid can be sampled.
package detector

import (
	"context"
	"log/slog"
	"math"

	dmtx "github.com/zmoth/libdmtx"
	"github.com/zmoth/libdmtx/bitutil"
)

// Size request sentinels for Options.SizeIdxExpected.
const (
	// SizeAuto searches every symbol size.
	SizeAuto = -1
	// SizeSquareAuto searches only the 24 square sizes.
	SizeSquareAuto = -2
	// SizeRectAuto searches only the 6 rectangular sizes.
	SizeRectAuto = -3
)

// DebugHooks carries optional callbacks invoked while a region is being
// built. All fields may be nil; a nil hook costs one pointer test.
type DebugHooks struct {
	// PlotPoint receives edge and corner pixels as they are accepted,
	// tagged with a small colour-group number.
	PlotPoint func(x, y float64, group int)

	// XfrmPlotPoint receives the four fitted corner locations after the
	// final homography is composed.
	XfrmPlotPoint func(x, y float64)

	// PlotModule receives each sampled module.
	PlotModule func(col, row int, on bool)

	// BuildMatrixRegion fires once a region's edges are fitted, before
	// size determination.
	BuildMatrixRegion func(r *Result)

	// BuildMatrix fires after the module grid has been sampled.
	BuildMatrix func(bits *bitutil.BitMatrix)

	// Final fires with the completed result before Detect returns it.
	Final func(r *Result)
}

// Options are the detection tunables.
type Options struct {
	// SizeIdxExpected restricts the size search to one symbol size index,
	// or one of SizeAuto, SizeSquareAuto, SizeRectAuto.
	SizeIdxExpected int

	// EdgeMin and EdgeMax bound the symbol edge length in pixels of the
	// original image. Zero leaves the corresponding bound open.
	EdgeMin, EdgeMax int

	// ScanGap is the finest spacing in pixels between scan grid probes.
	ScanGap int

	// SquareDevn is the maximum angular deviation from square, in radians,
	// tolerated at the region's corners.
	SquareDevn float64

	// EdgeThresh is the minimum edge contrast, as a percentage, for a probe
	// to seed a region attempt.
	EdgeThresh int

	// Shrink downsamples the image by this integer factor before
	// detection. Zero or one means no downsampling.
	Shrink int

	// ROI restricts the scan grid to a rectangle of the original image.
	ROI *dmtx.Rect

	// Hooks receive debug callbacks during detection.
	Hooks *DebugHooks
}

// DefaultOptions returns the detection tunables used when none are given.
func DefaultOptions() *Options {
	return &Options{
		SizeIdxExpected: SizeAuto,
		ScanGap:         2,
		SquareDevn:      0.8726646259971648, // 50 degrees
		EdgeThresh:      5,
		Shrink:          1,
	}
}

// Result describes one detected symbol.
type Result struct {
	// Bits holds the sampled module grid, including the finder and
	// calibration tracks, in the symbol's printed orientation.
	Bits *bitutil.BitMatrix

	// Points are the four region corners in image coordinates, ordered
	// bottom-left, bottom-right, top-right, top-left.
	Points []dmtx.ResultPoint

	// SizeIdx is the detected symbol size index.
	SizeIdx int

	// Polarity is +1 for dark-on-light symbols and -1 for light-on-dark.
	Polarity int

	// OnColor and OffColor are the sampled intensities of set and unset
	// modules.
	OnColor, OffColor int
}

// Detect searches src for a Data Matrix symbol. Cancellation is
// cooperative: the context is polled between grid probes, and an expired
// context reports ErrNotFound just as an exhausted search does.
func Detect(ctx context.Context, src dmtx.LuminanceSource, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	scale := opts.Shrink
	if scale < 1 {
		scale = 1
	}

	img := newPixelGrid(src).shrink(scale)
	if img.width < 3 || img.height < 3 {
		return nil, dmtx.ErrNotFound
	}

	s := &scanner{
		img:     img,
		cache:   make([]cachePixel, img.width*img.height),
		opts:    *opts,
		scale:   scale,
		devnCos: cosSquareDevn(opts.SquareDevn),
	}
	s.edgeMin = boundOrUndefined(opts.EdgeMin)
	s.edgeMax = boundOrUndefined(opts.EdgeMax)
	s.expected = opts.SizeIdxExpected
	if s.expected >= symbolSquareCount+symbolRectCount {
		return nil, dmtx.ErrIllegalParameter
	}

	xMin, xMax, yMin, yMax := s.scanBounds()
	scanGap := opts.ScanGap / scale
	if scanGap < 1 {
		scanGap = 1
	}
	grid := newScanGrid(xMin, xMax, yMin, yMax, scanGap)

	log := dmtx.Logger()
	for {
		if ctx.Err() != nil {
			return nil, dmtx.ErrNotFound
		}

		loc, ok := grid.pop()
		if !ok {
			break
		}

		reg, ok := s.scanPixel(loc)
		if !ok {
			continue
		}

		if log.Enabled(ctx, slog.LevelDebug) {
			log.Debug("region detected",
				"sizeIdx", reg.sizeIdx, "polarity", reg.polarity,
				"onColor", reg.onColor, "offColor", reg.offColor)
		}
		return s.buildResult(reg), nil
	}

	return nil, dmtx.ErrNotFound
}

// scanBounds converts the caller's ROI from top-left origin image
// coordinates into the scanner's bottom-left origin frame.
func (s *scanner) scanBounds() (xMin, xMax, yMin, yMax int) {
	xMin, xMax = 0, s.img.width-1
	yMin, yMax = 0, s.img.height-1
	if s.opts.ROI == nil {
		return xMin, xMax, yMin, yMax
	}

	r := *s.opts.ROI
	x0 := imax(xMin, r.X/s.scale)
	x1 := imin(xMax, (r.X+r.Width-1)/s.scale)
	yTop := r.Y / s.scale
	yBot := (r.Y + r.Height - 1) / s.scale
	y0 := imax(yMin, s.img.height-1-yBot)
	y1 := imin(yMax, s.img.height-1-yTop)
	if x0 > x1 || y0 > y1 {
		return xMin, xMax, yMin, yMax
	}
	return x0, x1, y0, y1
}

// scanPixel probes one grid location and attempts to grow it into a
// complete, size-validated region.
func (s *scanner) scanPixel(loc point) (*region, bool) {
	cache := s.cacheAt(loc)
	if cache == nil || cache.visited() {
		return nil, false
	}

	flowBegin := s.seekEdge(loc)
	if flowBegin.mag < int(float64(s.opts.EdgeThresh)*7.65+0.5) {
		return nil, false
	}

	reg := &region{}

	if !s.orientation(reg, flowBegin) {
		return nil, false
	}
	if !s.updateXfrms(reg) {
		return nil, false
	}

	if !s.alignCalibEdge(reg, edgeTop) {
		return nil, false
	}
	if !s.updateXfrms(reg) {
		return nil, false
	}

	if !s.alignCalibEdge(reg, edgeRight) {
		return nil, false
	}
	if !s.updateXfrms(reg) {
		return nil, false
	}

	if s.opts.Hooks != nil && s.opts.Hooks.BuildMatrixRegion != nil {
		s.opts.Hooks.BuildMatrixRegion(&Result{
			Points:   s.cornerPoints(reg),
			Polarity: reg.polarity,
		})
	}

	if !s.findSize(reg) {
		return nil, false
	}

	return reg, true
}

// buildResult samples the fitted region's module grid and packages the
// detection output in image coordinates.
func (s *scanner) buildResult(reg *region) *Result {
	bits := bitutil.NewBitMatrixWithSize(reg.symbolCols, reg.symbolRows)

	for row := 0; row < reg.symbolRows; row++ {
		for col := 0; col < reg.symbolCols; col++ {
			color := s.readModuleColor(reg, row, col, reg.sizeIdx)
			on := iabs(color-reg.onColor) < iabs(color-reg.offColor)
			if on {
				// Fitted rows count from the bottom; the bit matrix counts
				// from the top.
				bits.Set(col, reg.symbolRows-1-row)
			}
			if s.opts.Hooks != nil && s.opts.Hooks.PlotModule != nil {
				s.opts.Hooks.PlotModule(col, row, on)
			}
		}
	}

	if s.opts.Hooks != nil && s.opts.Hooks.BuildMatrix != nil {
		s.opts.Hooks.BuildMatrix(bits)
	}

	res := &Result{
		Bits:     bits,
		Points:   s.cornerPoints(reg),
		SizeIdx:  reg.sizeIdx,
		Polarity: reg.polarity,
		OnColor:  reg.onColor,
		OffColor: reg.offColor,
	}
	if s.opts.Hooks != nil && s.opts.Hooks.Final != nil {
		s.opts.Hooks.Final(res)
	}
	return res
}

// cornerPoints projects the unit-square corners back to original-image
// coordinates: bottom-left, bottom-right, top-right, top-left.
func (s *scanner) cornerPoints(reg *region) []dmtx.ResultPoint {
	corners := [4]vector2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	points := make([]dmtx.ResultPoint, 0, 4)
	for _, c := range corners {
		p, _ := reg.fit2raw.multiply(c)
		rp := dmtx.ResultPoint{
			X: p.x * float64(s.scale),
			Y: (float64(s.img.height-1) - p.y) * float64(s.scale),
		}
		if s.opts.Hooks != nil && s.opts.Hooks.XfrmPlotPoint != nil {
			s.opts.Hooks.XfrmPlotPoint(rp.X, rp.Y)
		}
		points = append(points, rp)
	}
	return points
}

func boundOrUndefined(v int) int {
	if v <= 0 {
		return undefined
	}
	return v
}

func cosSquareDevn(radians float64) float64 {
	if radians <= 0 {
		radians = DefaultOptions().SquareDevn
	}
	return math.Cos(radians)
}
