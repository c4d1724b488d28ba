package detector

import (
	"math"
	"testing"
)

func newTestScanner(w, h int) *scanner {
	return &scanner{
		img:   &pixelGrid{lum: make([]byte, w*h), width: w, height: h},
		cache: make([]cachePixel, w*h),
	}
}

// layTrail writes a synthetic gapped trail into the scanner's cache plane:
// starting at loc0, each step moves to the neighbour with ring index
// dirs[i%len(dirs)]. Returns the step count and the net displacement.
func layTrail(s *scanner, loc0 point, dirs []int, steps int) (int, int, int) {
	cur := loc0
	dx, dy := 0, 0
	for i := 0; i < steps; i++ {
		d := dirs[i%len(dirs)]
		c := s.cacheAt(cur)
		c.setAssigned()
		c.setUpstream(d)
		cur = point{cur.x + patternX[d], cur.y + patternY[d]}
		dx += patternX[d]
		dy += patternY[d]
	}
	return steps, dx, dy
}

func angleDiff(a, b int) int {
	d := iabs(a - b)
	if d > houghRes/2 {
		d = houghRes - d
	}
	return d
}

// TestHoughAngleInvariance lays perfect trails at known angles and checks
// the accumulator's best bin lands within one bin of the trail direction.
func TestHoughAngleInvariance(t *testing.T) {
	tests := []struct {
		name string
		dirs []int
	}{
		{"0 degrees", []int{3}},
		{"45 degrees", []int{4}},
		{"90 degrees", []int{5}},
		{"135 degrees", []int{6}},
		{"approx 27 degrees", []int{3, 4}},
		{"approx 63 degrees", []int{4, 5}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestScanner(160, 160)
			loc0 := point{80, 80}
			steps, dx, dy := layTrail(s, loc0, tc.dirs, 40)

			want := int(math.Round(math.Atan2(float64(dy), float64(dx)) * houghRes / math.Pi))
			want = ((want % houghRes) + houghRes) % houghRes

			line := s.findBestSolidLine2(loc0, steps, +1, undefined)
			if line.mag < steps/2 {
				t.Fatalf("best line magnitude %d too weak for %d steps", line.mag, steps)
			}
			if angleDiff(line.angle, want) > 1 {
				t.Errorf("best angle %d, want %d +/- 1", line.angle, want)
			}
		})
	}
}

// TestHoughAvoidAngle verifies the ±30 degree mask around an avoided angle:
// a trail parallel to the avoided angle cannot win inside the band.
func TestHoughAvoidAngle(t *testing.T) {
	s := newTestScanner(160, 160)
	loc0 := point{80, 80}
	steps, _, _ := layTrail(s, loc0, []int{4}, 40)

	line := s.findBestSolidLine2(loc0, steps, +1, 45)

	houghMin := (45 + houghRes/6) % houghRes
	houghMax := (45 - houghRes/6 + houghRes) % houghRes
	inBand := line.angle <= houghMin && line.angle >= houghMax
	if inBand {
		t.Errorf("best angle %d fell inside the avoided band (%d..%d)", line.angle, houghMax, houghMin)
	}
}

// TestFindTravelLimits lays a straight trail as a closed region chain and
// checks the locked travel limits span it end to end.
func TestFindTravelLimits(t *testing.T) {
	s := newTestScanner(160, 160)
	reg := &region{}

	// Build a horizontal chain through the seed by hand: 20 steps upstream
	// (direction 3) and 20 downstream (direction 7 mirrors it).
	seed := point{80, 80}
	reg.flowBegin = pointFlow{loc: seed, arrive: neighborNone}

	cur := seed
	for i := 0; i < 20; i++ {
		c := s.cacheAt(cur)
		c.setAssigned()
		c.setUpstream(3)
		cur = point{cur.x + 1, cur.y}
		next := s.cacheAt(cur)
		next.setAssigned()
		next.setDownstream(7)
	}
	reg.finalPos = cur
	reg.jumpToNeg = 20

	cur = seed
	for i := 0; i < 20; i++ {
		c := s.cacheAt(cur)
		c.setAssigned()
		c.setDownstream(7)
		cur = point{cur.x - 1, cur.y}
		next := s.cacheAt(cur)
		next.setAssigned()
		next.setUpstream(3)
	}
	reg.finalNeg = cur
	reg.jumpToPos = 20
	reg.stepsTotal = 40

	line := s.findBestSolidLine(reg, 0, 0, +1, undefined)
	if angleDiff(line.angle, 0) > 1 {
		t.Fatalf("best angle %d, want 0", line.angle)
	}

	s.findTravelLimits(reg, &line)
	if line.devn != 0 {
		t.Errorf("deviation %d on a perfect line, want 0", line.devn)
	}
	if line.distSq < 36*36 {
		t.Errorf("travel span distSq %d, want at least %d", line.distSq, 36*36)
	}
}
