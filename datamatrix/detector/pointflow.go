package detector

import (
	dmtx "github.com/zmoth/libdmtx"
)

// undefined marks an unset integer field, matching the sentinel used
// throughout the region-detection state machine.
const undefined = -1

// point is an integer pixel location. The detector works in a bottom-left
// origin coordinate system (y grows upward); pixelGrid performs the flip so
// that edge orientation and polarity decisions keep their geometric meaning.
type point struct {
	x, y int
}

// The fixed 8-neighbour ring, indexed 0-7 starting at the lower-left
// neighbour and proceeding counter-clockwise. Index 8 (neighborNone) means "no
// neighbour".
const neighborNone = 8

var patternX = [8]int{-1, 0, 1, 1, 1, 0, -1, -1}
var patternY = [8]int{-1, -1, -1, 0, 1, 1, 1, 0}

// pointFlow describes the gradient at one pixel: the strongest compass
// direction of luminance change (depart), the direction the trail arrived
// from (arrive), and the gradient magnitude.
type pointFlow struct {
	arrive int
	depart int
	mag    int
	loc    point
}

// blankEdge is returned when a flow cannot be computed, either because a
// neighbour is out of bounds or no eligible neighbour exists.
var blankEdge = pointFlow{arrive: 0, depart: 0, mag: undefined, loc: point{-1, -1}}

// pixelGrid exposes a luminance plane in bottom-left origin coordinates.
type pixelGrid struct {
	lum    []byte
	width  int
	height int
}

func newPixelGrid(src dmtx.LuminanceSource) *pixelGrid {
	return &pixelGrid{lum: src.Matrix(), width: src.Width(), height: src.Height()}
}

// shrink returns a grid downsampled by the given integer factor, sampling
// one source pixel per destination pixel.
func (g *pixelGrid) shrink(scale int) *pixelGrid {
	if scale <= 1 {
		return g
	}
	w := g.width / scale
	h := g.height / scale
	lum := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			lum[y*w+x] = g.lum[(y*scale)*g.width+x*scale]
		}
	}
	return &pixelGrid{lum: lum, width: w, height: h}
}

// pixel returns the luminance at (x,y) in flipped coordinates. ok is false
// when the location lies outside the image.
func (g *pixelGrid) pixel(x, y int) (int, bool) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return 0, false
	}
	return int(g.lum[(g.height-1-y)*g.width+x]), true
}

// cachePixel is the per-pixel scratch byte used while following edge trails:
//
//	bit 7    visited
//	bit 6    assigned
//	bits 3-5 upstream neighbour index (0-7)
//	bits 0-2 downstream neighbour index (0-7)
type cachePixel byte

func (c cachePixel) visited() bool   { return c&0x80 != 0 }
func (c cachePixel) assigned() bool  { return c&0x40 != 0 }
func (c cachePixel) upstream() int   { return int(c&0x38) >> 3 }
func (c cachePixel) downstream() int { return int(c & 0x07) }

func (c *cachePixel) setVisited()  { *c |= 0x80 }
func (c *cachePixel) setAssigned() { *c |= 0x40 }

func (c *cachePixel) setUpstream(i int)   { *c = (*c &^ 0x38) | cachePixel(i<<3) }
func (c *cachePixel) setDownstream(i int) { *c = (*c &^ 0x07) | cachePixel(i) }

func (c *cachePixel) clear(mask cachePixel) { *c &^= mask }

// scanner holds the per-detection state: the (possibly shrunk) image, the
// trail cache plane, and the resolved options.
type scanner struct {
	img   *pixelGrid
	cache []cachePixel
	opts  Options

	edgeMin  int // undefined when unbounded
	edgeMax  int
	scale    int
	devnCos  float64 // cos of the square deviation limit
	expected int     // resolved size request

	scratch cachePixel // stand-in cache byte for out-of-bounds follows
}

// cacheAt returns the cache byte for a location, or nil when out of bounds.
func (s *scanner) cacheAt(l point) *cachePixel {
	if l.x < 0 || l.x >= s.img.width || l.y < 0 || l.y >= s.img.height {
		return nil
	}
	return &s.cache[l.y*s.img.width+l.x]
}

// cacheRef is cacheAt with a scratch fallback for trail follows, which by
// construction never leave the image but must not crash if a damaged trail
// points outside it.
func (s *scanner) cacheRef(l point) *cachePixel {
	if c := s.cacheAt(l); c != nil {
		return c
	}
	s.scratch = 0
	return &s.scratch
}

// getPointFlow convolves the 3x3 neighbourhood of loc with the eight-
// coefficient Sobel family rotated across four compass directions, and
// returns the strongest response as a directed flow.
func (s *scanner) getPointFlow(loc point, arrive int) pointFlow {
	coefficient := [8]int{0, 1, 2, 1, 0, -1, -2, -1}

	var colorPattern [8]int
	for patternIdx := 0; patternIdx < 8; patternIdx++ {
		color, ok := s.img.pixel(loc.x+patternX[patternIdx], loc.y+patternY[patternIdx])
		if !ok {
			return blankEdge
		}
		colorPattern[patternIdx] = color
	}

	// Flow intensity for each direction (-45, 0, 45, 90).
	var mag [4]int
	compassMax := 0
	for compass := 0; compass < 4; compass++ {
		for patternIdx := 0; patternIdx < 8; patternIdx++ {
			coef := coefficient[(patternIdx-compass+8)%8]
			if coef == 0 {
				continue
			}
			mag[compass] += coef * colorPattern[patternIdx]
		}
		if compass != 0 && iabs(mag[compass]) > iabs(mag[compassMax]) {
			compassMax = compass
		}
	}

	// Convert the signed compass direction into a unique direction 0-7.
	depart := compassMax
	if mag[compassMax] > 0 {
		depart = compassMax + 4
	}
	return pointFlow{arrive: arrive, depart: depart, mag: iabs(mag[compassMax]), loc: loc}
}

// findStrongestNeighbor returns the neighbour flow that best continues the
// trail in the given direction. Only neighbours within one ring position of
// the expected departure are eligible; more than two visited neighbours
// aborts the search (the trail is closing on itself).
func (s *scanner) findStrongestNeighbor(center pointFlow, sign int) pointFlow {
	attempt := center.depart
	if sign >= 0 {
		attempt = (center.depart + 4) % 8
	}

	var flow [8]pointFlow
	occupied := 0
	strongIdx := undefined
	for i := 0; i < 8; i++ {
		loc := point{center.loc.x + patternX[i], center.loc.y + patternY[i]}

		cache := s.cacheAt(loc)
		if cache == nil {
			continue
		}
		if cache.visited() {
			occupied++
			if occupied > 2 {
				return blankEdge
			}
			continue
		}

		attemptDiff := iabs(attempt - i)
		if attemptDiff > 4 {
			attemptDiff = 8 - attemptDiff
		}
		if attemptDiff > 1 {
			continue
		}

		flow[i] = s.getPointFlow(loc, i)

		if strongIdx == undefined || flow[i].mag > flow[strongIdx].mag ||
			(flow[i].mag == flow[strongIdx].mag && i&0x01 != 0) {
			strongIdx = i
		}
	}

	if strongIdx == undefined {
		return blankEdge
	}
	return flow[strongIdx]
}

// seekEdge tests a probe location for a usable edge seed. The seed is
// accepted only when the strongest flows of both adjoining neighbours lead
// back to the probe (the closure test), which filters out isolated noise
// pixels.
func (s *scanner) seekEdge(loc point) pointFlow {
	flow := s.getPointFlow(loc, neighborNone)
	if flow.mag < 10 {
		return blankEdge
	}

	flowPos := s.findStrongestNeighbor(flow, +1)
	flowNeg := s.findStrongestNeighbor(flow, -1)
	if flowPos.mag > 0 && flowNeg.mag > 0 {
		flowPosBack := s.findStrongestNeighbor(flowPos, -1)
		flowNegBack := s.findStrongestNeighbor(flowNeg, +1)
		if flowPos.arrive == (flowPosBack.arrive+4)%8 && flowNeg.arrive == (flowNegBack.arrive+4)%8 {
			flow.arrive = neighborNone
			if s.opts.Hooks != nil && s.opts.Hooks.PlotPoint != nil {
				s.opts.Hooks.PlotPoint(float64(flow.loc.x), float64(flow.loc.y), 1)
			}
			return flow
		}
	}

	return blankEdge
}

func iabs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
