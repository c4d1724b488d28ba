package detector

// houghRes is the angular resolution of the line accumulator: one bin per
// degree over the half-circle.
const houghRes = 180

// rHvX and rHvY hold cos and sin per angle bin, scaled to the integer range
// [-256, 256], so the accumulator's hot loop stays in integer math.
var rHvX = [houghRes]int{
	256, 256, 256, 256, 255, 255, 255, 254, 254, 253, 252, 251, 250, 249, 248, 247, 246, 245,
	243, 242, 241, 239, 237, 236, 234, 232, 230, 228, 226, 224, 222, 219, 217, 215, 212, 210,
	207, 204, 202, 199, 196, 193, 190, 187, 184, 181, 178, 175, 171, 168, 165, 161, 158, 154,
	150, 147, 143, 139, 136, 132, 128, 124, 120, 116, 112, 108, 104, 100, 96, 92, 88, 83,
	79, 75, 71, 66, 62, 58, 53, 49, 44, 40, 36, 31, 27, 22, 18, 13, 9, 4,
	0, -4, -9, -13, -18, -22, -27, -31, -36, -40, -44, -49, -53, -58, -62, -66, -71, -75,
	-79, -83, -88, -92, -96, -100, -104, -108, -112, -116, -120, -124, -128, -132, -136, -139, -143, -147,
	-150, -154, -158, -161, -165, -168, -171, -175, -178, -181, -184, -187, -190, -193, -196, -199, -202, -204,
	-207, -210, -212, -215, -217, -219, -222, -224, -226, -228, -230, -232, -234, -236, -237, -239, -241, -242,
	-243, -245, -246, -247, -248, -249, -250, -251, -252, -253, -254, -254, -255, -255, -255, -256, -256, -256,
}

var rHvY = [houghRes]int{
	0, 4, 9, 13, 18, 22, 27, 31, 36, 40, 44, 49, 53, 58, 62, 66, 71, 75, 79, 83,
	88, 92, 96, 100, 104, 108, 112, 116, 120, 124, 128, 132, 136, 139, 143, 147, 150, 154, 158, 161,
	165, 168, 171, 175, 178, 181, 184, 187, 190, 193, 196, 199, 202, 204, 207, 210, 212, 215, 217, 219,
	222, 224, 226, 228, 230, 232, 234, 236, 237, 239, 241, 242, 243, 245, 246, 247, 248, 249, 250, 251,
	252, 253, 254, 254, 255, 255, 255, 256, 256, 256, 256, 256, 256, 256, 255, 255, 255, 254, 254, 253,
	252, 251, 250, 249, 248, 247, 246, 245, 243, 242, 241, 239, 237, 236, 234, 232, 230, 228, 226, 224,
	222, 219, 217, 215, 212, 210, 207, 204, 202, 199, 196, 193, 190, 187, 184, 181, 178, 175, 171, 168,
	165, 161, 158, 154, 150, 147, 143, 139, 136, 132, 128, 124, 120, 116, 112, 108, 104, 100, 96, 92,
	88, 83, 79, 75, 71, 66, 62, 58, 53, 49, 44, 40, 36, 31, 27, 22, 18, 13, 9, 4,
}

// bestLine is the winner of a Hough vote over a trail segment: the best
// angle bin and sub-bin offset, plus the travel limits locked along it.
type bestLine struct {
	angle   int
	hOffset int
	mag     int

	stepBeg, stepPos, stepNeg int
	locBeg, locPos, locNeg    point

	distSq int
	devn   int
}

// houghTestMask precomputes which angle bins to consider. When avoid is a
// valid angle, a band of ±30 degrees around it is masked out so the second
// edge of a corner cannot come back parallel to the first.
func houghTestMask(avoid int) [houghRes]bool {
	var test [houghRes]bool
	for i := 0; i < houghRes; i++ {
		if avoid == undefined {
			test[i] = true
			continue
		}
		houghMin := (avoid + houghRes/6) % houghRes
		houghMax := (avoid - houghRes/6 + houghRes) % houghRes
		if houghMin > houghMax {
			test[i] = i > houghMin || i < houghMax
		} else {
			test[i] = i > houghMin && i < houghMax
		}
	}
	return test
}

// findBestSolidLine walks the continuous trail from step0 toward step1 and
// votes each visited pixel into a 180-bin by 3-offset Hough accumulator
// anchored at the walk's starting pixel.
func (s *scanner) findBestSolidLine(reg *region, step0, step1, streamDir, houghAvoid int) bestLine {
	var hough [3][houghRes]int
	var line bestLine
	angleBest := 0
	hOffsetBest := 0

	// Always follow the path flowing away from the trail start
	var sign, tripSteps int
	switch {
	case step0 != 0:
		if step0 > 0 {
			sign = +1
			tripSteps = (step1 - step0 + reg.stepsTotal) % reg.stepsTotal
		} else {
			sign = -1
			tripSteps = (step0 - step1 + reg.stepsTotal) % reg.stepsTotal
		}
		if tripSteps == 0 {
			tripSteps = reg.stepsTotal
		}
	case step1 != 0:
		if step1 > 0 {
			sign = +1
		} else {
			sign = -1
		}
		tripSteps = iabs(step1)
	default:
		sign = +1
		tripSteps = reg.stepsTotal
	}
	if sign != streamDir {
		return line
	}

	f := s.followSeek(reg, step0)
	rHp := f.loc

	line.stepBeg, line.stepPos, line.stepNeg = step0, step0, step0
	line.locBeg, line.locPos, line.locNeg = f.loc, f.loc, f.loc

	houghTest := houghTestMask(houghAvoid)

	for step := 0; step < tripSteps; step++ {
		xDiff := f.loc.x - rHp.x
		yDiff := f.loc.y - rHp.y

		for i := 0; i < houghRes; i++ {
			if !houghTest[i] {
				continue
			}

			dH := rHvX[i]*yDiff - rHvY[i]*xDiff
			if dH >= -384 && dH <= 384 {
				var hOffset int
				switch {
				case dH > 128:
					hOffset = 2
				case dH >= -128:
					hOffset = 1
				default:
					hOffset = 0
				}

				hough[hOffset][i]++

				if hough[hOffset][i] > hough[hOffsetBest][angleBest] {
					angleBest = i
					hOffsetBest = hOffset
				}
			}
		}

		f = s.followStep(reg, f, sign)
	}

	line.angle = angleBest
	line.hOffset = hOffsetBest
	line.mag = hough[hOffsetBest][angleBest]

	return line
}

// findBestSolidLine2 runs the same Hough vote over a gapped trail starting
// at loc0, which has no wrap-around to account for.
func (s *scanner) findBestSolidLine2(loc0 point, tripSteps, sign, houghAvoid int) bestLine {
	var hough [3][houghRes]int
	var line bestLine
	angleBest := 0
	hOffsetBest := 0

	f := s.followSeekLoc(loc0)
	rHp := f.loc
	line.locBeg, line.locPos, line.locNeg = f.loc, f.loc, f.loc
	line.stepBeg, line.stepPos, line.stepNeg = 0, 0, 0

	houghTest := houghTestMask(houghAvoid)

	for step := 0; step < tripSteps; step++ {
		xDiff := f.loc.x - rHp.x
		yDiff := f.loc.y - rHp.y

		for i := 0; i < houghRes; i++ {
			if !houghTest[i] {
				continue
			}

			dH := rHvX[i]*yDiff - rHvY[i]*xDiff
			if dH >= -384 && dH <= 384 {
				var hOffset int
				switch {
				case dH > 128:
					hOffset = 2
				case dH >= -128:
					hOffset = 1
				default:
					hOffset = 0
				}

				hough[hOffset][i]++

				if hough[hOffset][i] > hough[hOffsetBest][angleBest] {
					angleBest = i
					hOffsetBest = hOffset
				}
			}
		}

		f = s.followStep2(f, sign)
	}

	line.angle = angleBest
	line.hOffset = hOffsetBest
	line.mag = hough[hOffsetBest][angleBest]

	return line
}

// findTravelLimits walks the accepted line's trail in both directions,
// splitting each step into travel (along the line) and wander
// (perpendicular, scaled by 256). The furthest locations whose wander stays
// within 3 units are locked as the line's end points; the locked wander
// spread becomes the line's deviation score.
func (s *scanner) findTravelLimits(reg *region, line *bestLine) {
	// line.stepBeg is already known to sit on the best Hough line
	followPos := s.followSeek(reg, line.stepBeg)
	followNeg := followPos
	loc0 := followPos.loc

	cosAngle := rHvX[line.angle]
	sinAngle := rHvY[line.angle]

	distSqMax := 0
	posMax := followPos.loc
	negMax := followPos.loc

	posTravel, negTravel := 0, 0
	posWander, posWanderMin, posWanderMax, posWanderMinLock, posWanderMaxLock := 0, 0, 0, 0, 0
	negWander, negWanderMin, negWanderMax, negWanderMinLock, negWanderMaxLock := 0, 0, 0, 0, 0

	for i := 0; i < reg.stepsTotal/2; i++ {
		posRunning := i < 10 || iabs(posWander) < iabs(posTravel)
		negRunning := i < 10 || iabs(negWander) < iabs(negTravel)

		if posRunning {
			xDiff := followPos.loc.x - loc0.x
			yDiff := followPos.loc.y - loc0.y
			posTravel = cosAngle*xDiff + sinAngle*yDiff
			posWander = cosAngle*yDiff - sinAngle*xDiff

			if posWander >= -3*256 && posWander <= 3*256 {
				distSq := distanceSquared(followPos.loc, negMax)
				if distSq > distSqMax {
					posMax = followPos.loc
					distSqMax = distSq
					line.stepPos = followPos.step
					line.locPos = followPos.loc
					posWanderMinLock = posWanderMin
					posWanderMaxLock = posWanderMax
				}
			} else {
				posWanderMin = imin(posWanderMin, posWander)
				posWanderMax = imax(posWanderMax, posWander)
			}
		} else if !negRunning {
			break
		}

		if negRunning {
			xDiff := followNeg.loc.x - loc0.x
			yDiff := followNeg.loc.y - loc0.y
			negTravel = cosAngle*xDiff + sinAngle*yDiff
			negWander = cosAngle*yDiff - sinAngle*xDiff

			if negWander >= -3*256 && negWander < 3*256 {
				distSq := distanceSquared(followNeg.loc, posMax)
				if distSq > distSqMax {
					negMax = followNeg.loc
					distSqMax = distSq
					line.stepNeg = followNeg.step
					line.locNeg = followNeg.loc
					negWanderMinLock = negWanderMin
					negWanderMaxLock = negWanderMax
				}
			} else {
				negWanderMin = imin(negWanderMin, negWander)
				negWanderMax = imax(negWanderMax, negWander)
			}
		} else if !posRunning {
			break
		}

		followPos = s.followStep(reg, followPos, +1)
		followNeg = s.followStep(reg, followNeg, -1)
	}
	line.devn = imax(posWanderMaxLock-posWanderMinLock, negWanderMaxLock-negWanderMinLock) / 256
	line.distSq = distSqMax
}

func distanceSquared(a, b point) int {
	xDelta := a.x - b.x
	yDelta := a.y - b.y
	return xDelta*xDelta + yDelta*yDelta
}

func imin(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func imax(a, b int) int {
	if a > b {
		return a
	}
	return b
}
