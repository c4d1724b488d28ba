package detector

// follow is a replayable cursor over a blazed trail. The trail itself lives
// in the cache plane as upstream/downstream neighbour indices; follow keeps
// only the current location, a step counter, and the cache byte under it.
type follow struct {
	loc      point
	step     int
	neighbor cachePixel
	ptr      *cachePixel
}

// followSeek positions a cursor seek steps away from the trail start,
// wrapping through the "magic jump" between the two trail ends.
func (s *scanner) followSeek(reg *region, seek int) follow {
	f := follow{loc: reg.flowBegin.loc}
	f.ptr = s.cacheRef(f.loc)
	f.neighbor = *f.ptr

	sign := 1
	if seek < 0 {
		sign = -1
	}
	for i := 0; i != seek; i += sign {
		f = s.followStep(reg, f, sign)
	}
	return f
}

// followSeekLoc starts a cursor at an arbitrary on-trail location.
func (s *scanner) followSeekLoc(loc point) follow {
	f := follow{loc: loc}
	f.ptr = s.cacheRef(loc)
	f.neighbor = *f.ptr
	return f
}

// followStep advances one position along a closed trail, jumping between the
// final positive and negative ends when the step counter wraps.
func (s *scanner) followStep(reg *region, beg follow, sign int) follow {
	var f follow

	factor := reg.stepsTotal + 1
	var stepMod int
	if sign > 0 {
		stepMod = (factor + beg.step%factor) % factor
	} else {
		stepMod = (factor - beg.step%factor) % factor
	}

	switch {
	case sign > 0 && stepMod == reg.jumpToNeg:
		// End of positive trail
		f.loc = reg.finalNeg
	case sign < 0 && stepMod == reg.jumpToPos:
		// End of negative trail
		f.loc = reg.finalPos
	default:
		patternIdx := beg.neighbor.upstream()
		if sign < 0 {
			patternIdx = beg.neighbor.downstream()
		}
		f.loc = point{beg.loc.x + patternX[patternIdx], beg.loc.y + patternY[patternIdx]}
	}

	f.step = beg.step + sign
	f.ptr = s.cacheRef(f.loc)
	f.neighbor = *f.ptr
	return f
}

// followStep2 advances one position along an open (gapped) trail, with no
// wrap-around.
func (s *scanner) followStep2(beg follow, sign int) follow {
	patternIdx := beg.neighbor.upstream()
	if sign < 0 {
		patternIdx = beg.neighbor.downstream()
	}

	var f follow
	f.loc = point{beg.loc.x + patternX[patternIdx], beg.loc.y + patternY[patternIdx]}
	f.step = beg.step + sign
	f.ptr = s.cacheRef(f.loc)
	f.neighbor = *f.ptr
	return f
}

// trailBlazeContinuous follows the strongest-gradient chain outward from the
// seed in both directions, recording each hop in the cache plane so the
// trail can be replayed. It stops when the gradient fades, the trail leaves
// the image, revisits itself, or the bounding box outgrows maxDiagonal.
func (s *scanner) trailBlazeContinuous(reg *region, flowBegin pointFlow, maxDiagonal int) bool {
	boundMin := flowBegin.loc
	boundMax := flowBegin.loc
	cacheBeg := s.cacheAt(flowBegin.loc)
	if cacheBeg == nil {
		return false
	}
	*cacheBeg = 0x80 | 0x40 // visited and assigned

	reg.flowBegin = flowBegin

	for _, sign := range []int{+1, -1} {
		flow := flowBegin
		cache := cacheBeg

		steps := 0
		for ; ; steps++ {
			if maxDiagonal != undefined &&
				(boundMax.x-boundMin.x > maxDiagonal || boundMax.y-boundMin.y > maxDiagonal) {
				break
			}

			flowNext := s.findStrongestNeighbor(flow, sign)
			if flowNext.mag < 50 {
				break
			}

			cacheNext := s.cacheAt(flowNext.loc)
			if cacheNext == nil {
				break
			}

			// Mark departure from the current location. Flowing downstream
			// (sign < 0) the departure here is the next location's arrival;
			// upstream flow uses the opposite rule.
			if sign < 0 {
				cache.setDownstream(flowNext.arrive)
			} else {
				cache.setUpstream(flowNext.arrive)
			}

			// Mark the known direction for the next location: the opposite
			// of its arrival, on the opposite side of the byte.
			if sign < 0 {
				*cacheNext = cachePixel(((flowNext.arrive + 4) % 8) << 3)
			} else {
				*cacheNext = cachePixel((flowNext.arrive + 4) % 8)
			}
			*cacheNext |= 0x80 | 0x40

			cache = cacheNext
			flow = flowNext

			if flow.loc.x > boundMax.x {
				boundMax.x = flow.loc.x
			} else if flow.loc.x < boundMin.x {
				boundMin.x = flow.loc.x
			}
			if flow.loc.y > boundMax.y {
				boundMax.y = flow.loc.y
			} else if flow.loc.y < boundMin.y {
				boundMin.y = flow.loc.y
			}

			if s.opts.Hooks != nil && s.opts.Hooks.PlotPoint != nil {
				group := 2
				if sign < 0 {
					group = 3
				}
				s.opts.Hooks.PlotPoint(float64(flow.loc.x), float64(flow.loc.y), group)
			}
		}

		if sign > 0 {
			reg.finalPos = flow.loc
			reg.jumpToNeg = steps
		} else {
			reg.finalNeg = flow.loc
			reg.jumpToPos = steps
		}
	}
	reg.stepsTotal = reg.jumpToPos + reg.jumpToNeg
	reg.boundMin = boundMin
	reg.boundMax = boundMax

	// Clear the visited bit; the assigned bit and direction fields stay so
	// the trail can be replayed.
	s.trailClear(reg, 0x80)

	if maxDiagonal != undefined &&
		(boundMax.x-boundMin.x > maxDiagonal || boundMax.y-boundMin.y > maxDiagonal) {
		return false
	}

	return true
}

// dirMap converts a (dx,dy) step in {-1,0,1}^2 into a ring index; the centre
// entry (no step) maps to 8 and never occurs.
var dirMap = [9]int{0, 1, 2, 7, 8, 3, 6, 5, 4}

// trailBlazeGapped walks a Bresenham line toward a target inside the fitted
// region, following the strongest neighbour at each step unless doing so
// would ratchet the line inward or backward. Short breaks in the physical
// edge are crossed by stepping straight along the line until the gradient
// returns. Returns the number of steps recorded.
func (s *scanner) trailBlazeGapped(reg *region, line bresLine, streamDir int) int {
	loc0 := line.loc
	flow := s.getPointFlow(loc0, neighborNone)
	distSqMax := line.xDelta*line.xDelta + line.yDelta*line.yDelta
	steps := 0
	onEdge := true

	beforeStep := loc0
	beforeCache := s.cacheAt(loc0)
	if beforeCache == nil {
		return 0
	}
	*beforeCache = 0

	for {
		if onEdge {
			flowNext := s.findStrongestNeighbor(flow, streamDir)
			if flowNext.mag == undefined {
				break
			}

			travel, outward := line.getStep(flowNext.loc)
			if flowNext.mag < 50 || outward < 0 || (outward == 0 && travel < 0) {
				onEdge = false
			} else {
				line.step(travel, outward)
				flow = flowNext
			}
		}

		if !onEdge {
			line.step(1, 0)
			flow = s.getPointFlow(line.loc, neighborNone)
			if flow.mag > 50 {
				onEdge = true
			}
		}

		afterStep := line.loc
		afterCache := s.cacheAt(afterStep)
		if afterCache == nil {
			break
		}

		xStep := afterStep.x - beforeStep.x
		yStep := afterStep.y - beforeStep.y
		stepDir := dirMap[3*yStep+xStep+4]
		if stepDir == 8 {
			return 0
		}

		if streamDir < 0 {
			beforeCache.setAssigned()
			beforeCache.setDownstream(stepDir)
			*afterCache = cachePixel(((stepDir + 4) % 8) << 3)
		} else {
			beforeCache.setAssigned()
			beforeCache.setUpstream(stepDir)
			*afterCache = cachePixel((stepDir + 4) % 8)
		}

		xDiff := line.loc.x - loc0.x
		yDiff := line.loc.y - loc0.y
		distSq := xDiff*xDiff + yDiff*yDiff

		beforeStep = line.loc
		beforeCache = afterCache
		steps++

		if distSq >= distSqMax {
			break
		}
	}

	return steps
}

// trailClear removes the given mask bit from every cache byte along the
// region's trail, returning the number of bytes touched.
func (s *scanner) trailClear(reg *region, clearMask cachePixel) int {
	clears := 0
	f := s.followSeek(reg, 0)
	for iabs(f.step) <= reg.stepsTotal {
		f.ptr.clear(clearMask)
		f = s.followStep(reg, f, +1)
		clears++
	}
	return clears
}

// bresLine is a steppable Bresenham line between two pixel locations that
// also tracks sideways ("outward") drift relative to an interior reference
// point.
type bresLine struct {
	xStep, yStep   int
	xDelta, yDelta int
	steep          bool
	xOut, yOut     int
	travel         int
	outward        int
	error          int
	loc            point
	loc0, loc1     point
}

func newBresLine(loc0, loc1, locInside point) bresLine {
	var line bresLine

	line.loc0 = loc0
	line.loc1 = loc1
	line.xStep = 1
	if loc0.x >= loc1.x {
		line.xStep = -1
	}
	line.yStep = 1
	if loc0.y >= loc1.y {
		line.yStep = -1
	}
	line.xDelta = iabs(loc1.x - loc0.x)
	line.yDelta = iabs(loc1.y - loc0.y)
	line.steep = line.yDelta > line.xDelta

	// Cross product against the interior point determines which side of the
	// line counts as outward.
	var locBeg, locEnd point
	if line.steep {
		// Point the first vector up to get the correct sign
		if loc0.y < loc1.y {
			locBeg, locEnd = loc0, loc1
		} else {
			locBeg, locEnd = loc1, loc0
		}
		cp := (locEnd.x-locBeg.x)*(locInside.y-locEnd.y) - (locEnd.y-locBeg.y)*(locInside.x-locEnd.x)
		if cp > 0 {
			line.xOut = +1
		} else {
			line.xOut = -1
		}
		line.yOut = 0
	} else {
		// Point the first vector left to get the correct sign
		if loc0.x > loc1.x {
			locBeg, locEnd = loc0, loc1
		} else {
			locBeg, locEnd = loc1, loc0
		}
		cp := (locEnd.x-locBeg.x)*(locInside.y-locEnd.y) - (locEnd.y-locBeg.y)*(locInside.x-locEnd.x)
		line.xOut = 0
		if cp > 0 {
			line.yOut = +1
		} else {
			line.yOut = -1
		}
	}

	line.loc = loc0
	if line.steep {
		line.error = line.yDelta / 2
	} else {
		line.error = line.xDelta / 2
	}

	return line
}

// getStep reports the travel and outward components needed to reach target
// from the line's current position.
func (l bresLine) getStep(target point) (travel, outward int) {
	if l.steep {
		if l.yStep > 0 {
			travel = target.y - l.loc.y
		} else {
			travel = l.loc.y - target.y
		}
		l.step(travel, 0)
		if l.xOut > 0 {
			outward = target.x - l.loc.x
		} else {
			outward = l.loc.x - target.x
		}
	} else {
		if l.xStep > 0 {
			travel = target.x - l.loc.x
		} else {
			travel = l.loc.x - target.x
		}
		l.step(travel, 0)
		if l.yOut > 0 {
			outward = target.y - l.loc.y
		} else {
			outward = l.loc.y - target.y
		}
	}
	return travel, outward
}

// step advances the line by one travel unit (forward or backward) and any
// number of outward units.
func (l *bresLine) step(travel, outward int) {
	if travel > 0 {
		l.travel++
		if l.steep {
			l.loc.y += l.yStep
			l.error -= l.xDelta
			if l.error < 0 {
				l.loc.x += l.xStep
				l.error += l.yDelta
			}
		} else {
			l.loc.x += l.xStep
			l.error -= l.yDelta
			if l.error < 0 {
				l.loc.y += l.yStep
				l.error += l.xDelta
			}
		}
	} else if travel < 0 {
		l.travel--
		if l.steep {
			l.loc.y -= l.yStep
			l.error += l.xDelta
			if l.error >= l.yDelta {
				l.loc.x -= l.xStep
				l.error -= l.yDelta
			}
		} else {
			l.loc.x -= l.xStep
			l.error += l.yDelta
			if l.error >= l.xDelta {
				l.loc.y -= l.yStep
				l.error -= l.xDelta
			}
		}
	}

	for i := 0; i < outward; i++ {
		l.outward++
		l.loc.x += l.xOut
		l.loc.y += l.yOut
	}
}
