package detector

// The closed ECC-200 size set: 24 square sizes followed by 6 rectangular
// ones, indexed by sizeIdx. Row/column counts include the finder and
// calibration tracks.
const (
	symbolSquareCount = 24
	symbolRectCount   = 6
)

var symbolRowsTable = [symbolSquareCount + symbolRectCount]int{
	10, 12, 14, 16, 18, 20, 22, 24, 26,
	32, 36, 40, 44, 48, 52,
	64, 72, 80, 88, 96, 104,
	120, 132, 144,
	8, 8, 12, 12, 16, 16,
}

var symbolColsTable = [symbolSquareCount + symbolRectCount]int{
	10, 12, 14, 16, 18, 20, 22, 24, 26,
	32, 36, 40, 44, 48, 52,
	64, 72, 80, 88, 96, 104,
	120, 132, 144,
	18, 32, 26, 36, 36, 48,
}

// dataRegions returns how many data regions the symbol splits into
// along each axis, which fixes the mapping-matrix dimensions.
func dataRegions(sizeIdx int) (horiz, vert int) {
	cols := symbolColsTable[sizeIdx]
	switch {
	case cols <= 26:
		horiz = 1
	case cols <= 52:
		horiz = 2
	case cols <= 104:
		horiz = 4
	default:
		horiz = 6
	}
	if sizeIdx < symbolSquareCount {
		vert = horiz
	} else {
		vert = 1
	}
	return horiz, vert
}

// Directions for countJumpTally.
const (
	dirRight = iota
	dirUp
)

// readModuleColor samples the colour of one symbol module through the
// fitted frame. Five slightly offset probes are projected through fit2raw
// and averaged, which keeps the sample stable when a module edge lands
// between pixels.
func (s *scanner) readModuleColor(reg *region, symbolRow, symbolCol, sizeIdx int) int {
	sampleX := [5]float64{0.5, 0.4, 0.5, 0.6, 0.5}
	sampleY := [5]float64{0.5, 0.5, 0.4, 0.5, 0.6}

	symbolRows := symbolRowsTable[sizeIdx]
	symbolCols := symbolColsTable[sizeIdx]

	color := 0
	for i := 0; i < 5; i++ {
		p := vector2{
			x: (1.0 / float64(symbolCols)) * (float64(symbolCol) + sampleX[i]),
			y: (1.0 / float64(symbolRows)) * (float64(symbolRow) + sampleY[i]),
		}
		p, _ = reg.fit2raw.multiply(p)

		sample, ok := s.img.pixel(int(p.x+0.5), int(p.y+0.5))
		if ok {
			color += sample
		}
	}
	return color / 5
}

// findSize determines the symbol's module dimensions: every candidate size
// compatible with the caller's request is scored by the contrast between
// the two populations of its calibration tracks, and the winner is then
// validated by jump tallies over the calibration bars, the finder bars, and
// the surrounding quiet zones.
func (s *scanner) findSize(reg *region) bool {
	bestSizeIdx := undefined
	bestContrast := 0
	bestColorOnAvg := 0
	bestColorOffAvg := 0

	var sizeIdxBeg, sizeIdxEnd int
	switch {
	case s.expected == SizeAuto:
		sizeIdxBeg = 0
		sizeIdxEnd = symbolSquareCount + symbolRectCount
	case s.expected == SizeSquareAuto:
		sizeIdxBeg = 0
		sizeIdxEnd = symbolSquareCount
	case s.expected == SizeRectAuto:
		sizeIdxBeg = symbolSquareCount
		sizeIdxEnd = symbolSquareCount + symbolRectCount
	default:
		sizeIdxBeg = s.expected
		sizeIdxEnd = s.expected + 1
	}

	// Test each candidate for best contrast in its calibration modules
	for sizeIdx := sizeIdxBeg; sizeIdx < sizeIdxEnd; sizeIdx++ {
		symbolRows := symbolRowsTable[sizeIdx]
		symbolCols := symbolColsTable[sizeIdx]
		colorOnAvg := 0
		colorOffAvg := 0

		// Horizontal calibration bar
		row := symbolRows - 1
		for col := 0; col < symbolCols; col++ {
			color := s.readModuleColor(reg, row, col, sizeIdx)
			if col&0x01 != 0 {
				colorOffAvg += color
			} else {
				colorOnAvg += color
			}
		}

		// Vertical calibration bar
		col := symbolCols - 1
		for row := 0; row < symbolRows; row++ {
			color := s.readModuleColor(reg, row, col, sizeIdx)
			if row&0x01 != 0 {
				colorOffAvg += color
			} else {
				colorOnAvg += color
			}
		}

		colorOnAvg = colorOnAvg * 2 / (symbolRows + symbolCols)
		colorOffAvg = colorOffAvg * 2 / (symbolRows + symbolCols)

		contrast := iabs(colorOnAvg - colorOffAvg)
		if contrast < 20 {
			continue
		}

		if contrast > bestContrast {
			bestContrast = contrast
			bestSizeIdx = sizeIdx
			bestColorOnAvg = colorOnAvg
			bestColorOffAvg = colorOffAvg
		}
	}

	if bestSizeIdx == undefined || bestContrast < 20 {
		return false
	}

	reg.sizeIdx = bestSizeIdx
	reg.onColor = bestColorOnAvg
	reg.offColor = bestColorOffAvg

	reg.symbolRows = symbolRowsTable[bestSizeIdx]
	reg.symbolCols = symbolColsTable[bestSizeIdx]
	horiz, vert := dataRegions(bestSizeIdx)
	reg.mappingCols = reg.symbolCols - 2*horiz
	reg.mappingRows = reg.symbolRows - 2*vert

	// Calibration bars must show one transition per module, within two
	// errors of the expected count
	jumpCount := s.countJumpTally(reg, 0, reg.symbolRows-1, dirRight)
	if jumpCount < 0 || iabs(1+jumpCount-reg.symbolCols) > 2 {
		return false
	}
	jumpCount = s.countJumpTally(reg, reg.symbolCols-1, 0, dirUp)
	if jumpCount < 0 || iabs(1+jumpCount-reg.symbolRows) > 2 {
		return false
	}

	// Finder bars are solid: more than two transitions means the fit or the
	// size is wrong
	jumpCount = s.countJumpTally(reg, 0, 0, dirRight)
	if jumpCount < 0 || jumpCount > 2 {
		return false
	}
	jumpCount = s.countJumpTally(reg, 0, 0, dirUp)
	if jumpCount < 0 || jumpCount > 2 {
		return false
	}

	// So is the surrounding quiet zone
	jumpCount = s.countJumpTally(reg, 0, -1, dirRight)
	if jumpCount < 0 || jumpCount > 2 {
		return false
	}
	jumpCount = s.countJumpTally(reg, -1, 0, dirUp)
	if jumpCount < 0 || jumpCount > 2 {
		return false
	}
	jumpCount = s.countJumpTally(reg, 0, reg.symbolRows, dirRight)
	if jumpCount < 0 || jumpCount > 2 {
		return false
	}
	jumpCount = s.countJumpTally(reg, reg.symbolCols, 0, dirUp)
	if jumpCount < 0 || jumpCount > 2 {
		return false
	}

	return true
}

// countJumpTally counts light/dark transitions along one row or column of
// modules, starting at (xStart, yStart) in symbol coordinates. Rows and
// columns just outside the symbol (-1 or the symbol dimension) tally the
// quiet zone.
func (s *scanner) countJumpTally(reg *region, xStart, yStart, dir int) int {
	xInc, yInc := 0, 0
	if dir == dirRight {
		xInc = 1
	} else {
		yInc = 1
	}

	state := moduleOn
	if xStart == -1 || xStart == reg.symbolCols || yStart == -1 || yStart == reg.symbolRows {
		state = moduleOff
	}

	darkOnLight := reg.offColor > reg.onColor
	jumpThreshold := iabs(int(0.4*float64(reg.onColor-reg.offColor) + 0.5))

	color := s.readModuleColor(reg, yStart, xStart, reg.sizeIdx)
	tModule := color - reg.offColor
	if darkOnLight {
		tModule = reg.offColor - color
	}

	jumpCount := 0
	for x, y := xStart+xInc, yStart+yInc; (dir == dirRight && x < reg.symbolCols) ||
		(dir == dirUp && y < reg.symbolRows); x, y = x+xInc, y+yInc {

		tPrev := tModule
		color = s.readModuleColor(reg, y, x, reg.sizeIdx)
		tModule = color - reg.offColor
		if darkOnLight {
			tModule = reg.offColor - color
		}

		if state == moduleOff {
			if tModule > tPrev+jumpThreshold {
				jumpCount++
				state = moduleOn
			}
		} else {
			if tModule < tPrev-jumpThreshold {
				jumpCount++
				state = moduleOff
			}
		}
	}

	return jumpCount
}

const (
	moduleOff = iota
	moduleOn
)
