package detector

import "math"

// region accumulates everything known about one symbol candidate while its
// edges are followed, fitted, and validated.
type region struct {
	flowBegin pointFlow
	polarity  int

	// Trail bookkeeping for the closed edge chain
	finalPos, finalNeg   point
	jumpToPos, jumpToNeg int
	stepsTotal           int
	boundMin, boundMax   point

	// Corner locations where the known edges meet the fitted ones
	locR, locT   point
	stepR, stepT int

	leftKnown, bottomKnown, topKnown, rightKnown bool

	leftLoc, bottomLoc, topLoc, rightLoc         point
	leftAngle, bottomAngle, topAngle, rightAngle int
	leftLine, bottomLine                         bestLine

	raw2fit, fit2raw matrix3

	sizeIdx                  int
	symbolRows, symbolCols   int
	mappingRows, mappingCols int
	onColor, offColor        int
}

type symbolShape int

const (
	shapeAuto symbolShape = iota
	shapeSquare
	shapeRect
)

// symbolShape classifies the caller's size request so the search space and
// geometry limits can be narrowed.
func (s *scanner) symbolShape() symbolShape {
	switch {
	case s.expected == SizeSquareAuto ||
		(s.expected >= 0 && s.expected < symbolSquareCount):
		return shapeSquare
	case s.expected == SizeRectAuto ||
		(s.expected >= symbolSquareCount && s.expected < symbolSquareCount+symbolRectCount):
		return shapeRect
	}
	return shapeAuto
}

// maxDiagonal bounds the trail's bounding box from the edgeMax option: the
// symbol diagonal plus 10% slack, sqrt(2) for squares and sqrt(5/4) for the
// flattest rectangles.
func (s *scanner) maxDiagonal() int {
	if s.edgeMax == undefined {
		return undefined
	}
	if s.symbolShape() == shapeRect {
		return int(1.23*float64(s.edgeMax) + 0.5)
	}
	return int(1.56*float64(s.edgeMax) + 0.5)
}

// orientation follows the seed edge to both ends, fits the two strongest
// lines through the resulting trail, and decides from their cross product
// which is the left edge, which is the bottom, and whether the symbol is
// dark-on-light or light-on-dark.
func (s *scanner) orientation(reg *region, begin pointFlow) bool {
	if !s.trailBlazeContinuous(reg, begin, s.maxDiagonal()) || reg.stepsTotal < 40 {
		s.trailClear(reg, 0x40)
		return false
	}

	// Filter out region candidates that are smaller than expected
	if s.edgeMin != undefined {
		var minArea int
		if s.symbolShape() == shapeSquare {
			minArea = (s.edgeMin * s.edgeMin) / (s.scale * s.scale)
		} else {
			minArea = (2 * s.edgeMin * s.edgeMin) / (s.scale * s.scale)
		}

		if (reg.boundMax.x-reg.boundMin.x)*(reg.boundMax.y-reg.boundMin.y) < minArea {
			s.trailClear(reg, 0x40)
			return false
		}
	}

	line1x := s.findBestSolidLine(reg, 0, 0, +1, undefined)
	if line1x.mag < 5 {
		s.trailClear(reg, 0x40)
		return false
	}

	s.findTravelLimits(reg, &line1x)
	if line1x.distSq < 100 || float64(line1x.devn)*10 >= math.Sqrt(float64(line1x.distSq)) {
		s.trailClear(reg, 0x40)
		return false
	}

	fTmp := s.followSeek(reg, line1x.stepPos+5)
	line2p := s.findBestSolidLine(reg, fTmp.step, line1x.stepNeg, +1, line1x.angle)

	fTmp = s.followSeek(reg, line1x.stepNeg-5)
	line2n := s.findBestSolidLine(reg, fTmp.step, line1x.stepPos, -1, line1x.angle)
	if imax(line2p.mag, line2n.mag) < 5 {
		return false
	}

	var line2x bestLine
	if line2p.mag > line2n.mag {
		line2x = line2p
		s.findTravelLimits(reg, &line2x)
		if line2x.distSq < 100 || float64(line2x.devn)*10 >= math.Sqrt(float64(line2x.distSq)) {
			return false
		}

		cross := (line1x.locPos.x-line1x.locNeg.x)*(line2x.locPos.y-line2x.locNeg.y) -
			(line1x.locPos.y-line1x.locNeg.y)*(line2x.locPos.x-line2x.locNeg.x)
		if cross > 0 {
			reg.polarity = +1
			reg.locR = line2x.locPos
			reg.stepR = line2x.stepPos
			reg.locT = line1x.locNeg
			reg.stepT = line1x.stepNeg
			reg.leftLoc = line1x.locBeg
			reg.leftAngle = line1x.angle
			reg.bottomLoc = line2x.locBeg
			reg.bottomAngle = line2x.angle
			reg.leftLine = line1x
			reg.bottomLine = line2x
		} else {
			reg.polarity = -1
			reg.locR = line1x.locNeg
			reg.stepR = line1x.stepNeg
			reg.locT = line2x.locPos
			reg.stepT = line2x.stepPos
			reg.leftLoc = line2x.locBeg
			reg.leftAngle = line2x.angle
			reg.bottomLoc = line1x.locBeg
			reg.bottomAngle = line1x.angle
			reg.leftLine = line2x
			reg.bottomLine = line1x
		}
	} else {
		line2x = line2n
		s.findTravelLimits(reg, &line2x)
		if line2x.distSq < 100 || float64(line2x.devn)/math.Sqrt(float64(line2x.distSq)) >= 0.1 {
			return false
		}

		cross := (line1x.locNeg.x-line1x.locPos.x)*(line2x.locNeg.y-line2x.locPos.y) -
			(line1x.locNeg.y-line1x.locPos.y)*(line2x.locNeg.x-line2x.locPos.x)
		if cross > 0 {
			reg.polarity = -1
			reg.locR = line2x.locNeg
			reg.stepR = line2x.stepNeg
			reg.locT = line1x.locPos
			reg.stepT = line1x.stepPos
			reg.leftLoc = line1x.locBeg
			reg.leftAngle = line1x.angle
			reg.bottomLoc = line2x.locBeg
			reg.bottomAngle = line2x.angle
			reg.leftLine = line1x
			reg.bottomLine = line2x
		} else {
			reg.polarity = +1
			reg.locR = line1x.locPos
			reg.stepR = line1x.stepPos
			reg.locT = line2x.locNeg
			reg.stepT = line2x.stepNeg
			reg.leftLoc = line2x.locBeg
			reg.leftAngle = line2x.angle
			reg.bottomLoc = line1x.locBeg
			reg.bottomAngle = line1x.angle
			reg.leftLine = line2x
			reg.bottomLine = line1x
		}
	}

	if s.opts.Hooks != nil && s.opts.Hooks.PlotPoint != nil {
		s.opts.Hooks.PlotPoint(float64(reg.locR.x), float64(reg.locR.y), 2)
		s.opts.Hooks.PlotPoint(float64(reg.locT.x), float64(reg.locT.y), 2)
	}

	reg.leftKnown = true
	reg.bottomKnown = true

	return true
}

// updateXfrms rebuilds the region's corner homographies from the edges
// known so far. Until the top and right edges are fitted, stand-in rays
// through locT and locR approximate them; the stand-in top ray borrows the
// bottom edge's angle, which only the subsequent fit consumes.
func (s *scanner) updateXfrms(reg *region) bool {
	if !reg.leftKnown || !reg.bottomKnown {
		return false
	}

	rLeft := rayFromAngle(reg.leftLoc, reg.leftAngle)
	rBottom := rayFromAngle(reg.bottomLoc, reg.bottomAngle)

	var rTop, rRight ray2
	if reg.topKnown {
		rTop = rayFromAngle(reg.topLoc, reg.topAngle)
	} else {
		rTop = rayFromAngle(reg.locT, reg.bottomAngle)
	}
	if reg.rightKnown {
		rRight = rayFromAngle(reg.rightLoc, reg.rightAngle)
	} else {
		rRight = rayFromAngle(reg.locR, reg.leftAngle)
	}

	p00, ok := rLeft.intersect(rBottom)
	if !ok {
		return false
	}
	p10, ok := rBottom.intersect(rRight)
	if !ok {
		return false
	}
	p11, ok := rRight.intersect(rTop)
	if !ok {
		return false
	}
	p01, ok := rTop.intersect(rLeft)
	if !ok {
		return false
	}

	return s.updateCorners(reg, p00, p10, p11, p01)
}

// Edge selectors for alignCalibEdge.
const (
	edgeTop = iota
	edgeRight
)

// alignCalibEdge fits the top or right calibration edge: a gapped
// trail-blaze runs from the known corner toward a target point projected
// inside the fitted region, then a Hough vote over that trail picks the
// edge line, avoiding angles parallel to the adjacent known edge.
func (s *scanner) alignCalibEdge(reg *region, edgeLoc int) bool {
	pTmp, ok := reg.fit2raw.multiply(vector2{0.0, 0.0})
	if !ok {
		return false
	}
	locOrigin := point{int(pTmp.x + 0.5), int(pTmp.y + 0.5)}

	var streamDir, avoidAngle int
	var f follow
	var target vector2
	if edgeLoc == edgeTop {
		streamDir = reg.polarity * -1
		avoidAngle = reg.leftLine.angle
		f = s.followSeekLoc(reg.locT)
		target = vector2{x: 0.8, y: 0.6}
		if s.symbolShape() == shapeRect {
			target.y = 0.2
		}
	} else {
		streamDir = reg.polarity
		avoidAngle = reg.bottomLine.angle
		f = s.followSeekLoc(reg.locR)
		target = vector2{x: 0.9, y: 0.8}
		if s.symbolShape() == shapeSquare {
			target.x = 0.7
		}
	}

	pTmp, ok = reg.fit2raw.multiply(target)
	if !ok {
		return false
	}
	loc1 := point{int(pTmp.x + 0.5), int(pTmp.y + 0.5)}

	loc0 := f.loc
	line := newBresLine(loc0, loc1, locOrigin)
	steps := s.trailBlazeGapped(reg, line, streamDir)

	bestLine := s.findBestSolidLine2(loc0, steps, streamDir, avoidAngle)

	if edgeLoc == edgeTop {
		reg.topKnown = true
		reg.topAngle = bestLine.angle
		reg.topLoc = bestLine.locBeg
	} else {
		reg.rightKnown = true
		reg.rightAngle = bestLine.angle
		reg.rightLoc = bestLine.locBeg
	}

	return true
}
