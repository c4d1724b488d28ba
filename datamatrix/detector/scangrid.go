package detector

// scanGrid walks an image in cross-shaped probe patterns, starting at
// widely spaced candidate pixels and refining to finer spacing. This lets a
// detector find a barcode's first edge pixel without scanning every pixel in
// raster order. Grounded on dmtxscangrid.c's DmtxScanGrid.
type scanGrid struct {
	xMin, xMax int
	yMin, yMax int
	xOffset    int
	yOffset    int

	minExtent int
	maxExtent int

	total  int
	extent int

	jumpSize  int
	pixelTotal int
	startPos  int
	pixelCount int
	xCenter   int
	yCenter   int
}

// rangeStatus reports whether a popped grid location is usable.
type rangeStatus int

const (
	rangeGood rangeStatus = iota
	rangeBad
	rangeEnd
)

// newScanGrid builds a scan grid covering [xMin,xMax]x[yMin,yMax], with the
// finest spacing no smaller than scanGap pixels.
func newScanGrid(xMin, xMax, yMin, yMax, scanGap int) *scanGrid {
	g := &scanGrid{xMin: xMin, xMax: xMax, yMin: yMin, yMax: yMax}

	smallestFeature := scanGap
	if smallestFeature < 1 {
		smallestFeature = 1
	}

	xExtent := xMax - xMin
	yExtent := yMax - yMin
	maxExtent := xExtent
	if yExtent > maxExtent {
		maxExtent = yExtent
	}
	if maxExtent < 2 {
		maxExtent = 2
	}

	extent := 1
	for ; extent < maxExtent; extent = ((extent + 1) * 2) - 1 {
		if extent <= smallestFeature {
			g.minExtent = extent
		}
	}
	g.maxExtent = extent

	g.xOffset = (g.xMin + g.xMax - g.maxExtent) / 2
	g.yOffset = (g.yMin + g.yMax - g.maxExtent) / 2

	g.total = 1
	g.extent = g.maxExtent
	g.setDerivedFields()

	return g
}

// setDerivedFields recomputes the fields that depend on extent alone,
// resetting progress to the start of the current level.
func (g *scanGrid) setDerivedFields() {
	g.jumpSize = g.extent + 1
	g.pixelTotal = 2*g.extent - 1
	g.startPos = g.extent / 2
	g.pixelCount = 0
	g.xCenter = g.startPos
	g.yCenter = g.startPos
}

// pop returns the next usable pixel location, advancing the grid one
// position beyond it. ok is false once the grid is exhausted.
func (g *scanGrid) pop() (p point, ok bool) {
	for {
		loc, status := g.coordinates()
		g.pixelCount++
		if status == rangeGood {
			return loc, true
		}
		if status == rangeEnd {
			return point{}, false
		}
	}
}

// coordinates extracts the current grid position in pixel coordinates and
// classifies it as good, bad (outside the caller's window), or end
// (the grid has been fully searched down to minExtent).
func (g *scanGrid) coordinates() (point, rangeStatus) {
	if g.pixelCount >= g.pixelTotal {
		g.pixelCount = 0
		g.xCenter += g.jumpSize
	}
	if g.xCenter > g.maxExtent {
		g.xCenter = g.startPos
		g.yCenter += g.jumpSize
	}
	if g.yCenter > g.maxExtent {
		g.total *= 4
		g.extent /= 2
		g.setDerivedFields()
	}
	if g.extent == 0 || g.extent < g.minExtent {
		return point{-1, -1}, rangeEnd
	}

	count := g.pixelCount
	var x, y int

	if count == g.pixelTotal-1 {
		x, y = g.xCenter, g.yCenter
	} else {
		half := g.pixelTotal / 2
		quarter := half / 2
		if count < half {
			if count < quarter {
				x = g.xCenter + (count - quarter)
			} else {
				x = g.xCenter + (half - count)
			}
			y = g.yCenter
		} else {
			count -= half
			x = g.xCenter
			if count < quarter {
				y = g.yCenter + (count - quarter)
			} else {
				y = g.yCenter + (half - count)
			}
		}
	}

	x += g.xOffset
	y += g.yOffset

	if x < g.xMin || x > g.xMax || y < g.yMin || y > g.yMax {
		return point{x, y}, rangeBad
	}
	return point{x, y}, rangeGood
}
