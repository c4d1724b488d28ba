package detector

import (
	"math"
	"testing"
)

func newGeometryScanner(w, h int) *scanner {
	s := newTestScanner(w, h)
	s.devnCos = math.Cos(0.8726646259971648)
	return s
}

// TestUpdateCornersMapsUnitSquare builds the homography for a mildly skewed
// quadrilateral and verifies raw2fit sends its corners to the unit square
// while fit2raw sends them back.
func TestUpdateCornersMapsUnitSquare(t *testing.T) {
	s := newGeometryScanner(200, 200)
	reg := &region{}

	p00 := vector2{20, 20}
	p10 := vector2{120, 25}
	p11 := vector2{125, 125}
	p01 := vector2{15, 118}

	if !s.updateCorners(reg, p00, p10, p11, p01) {
		t.Fatal("updateCorners rejected a valid quadrilateral")
	}

	raw := []vector2{p00, p10, p11, p01}
	unit := []vector2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	for i, p := range raw {
		got, ok := reg.raw2fit.multiply(p)
		if !ok {
			t.Fatalf("raw2fit projected corner %d to infinity", i)
		}
		if math.Abs(got.x-unit[i].x) > 1e-9 || math.Abs(got.y-unit[i].y) > 1e-9 {
			t.Errorf("raw2fit corner %d = (%g,%g), want (%g,%g)", i, got.x, got.y, unit[i].x, unit[i].y)
		}
	}

	for i, u := range unit {
		got, ok := reg.fit2raw.multiply(u)
		if !ok {
			t.Fatalf("fit2raw projected corner %d to infinity", i)
		}
		if math.Abs(got.x-raw[i].x) > 1e-6 || math.Abs(got.y-raw[i].y) > 1e-6 {
			t.Errorf("fit2raw corner %d = (%g,%g), want (%g,%g)", i, got.x, got.y, raw[i].x, raw[i].y)
		}
	}

	// The two factored matrices must invert each other on interior points
	// as well as at the corners.
	for _, p := range []vector2{{0.25, 0.25}, {0.5, 0.9}, {0.75, 0.1}} {
		rawP, _ := reg.fit2raw.multiply(p)
		back, _ := reg.raw2fit.multiply(rawP)
		if math.Abs(back.x-p.x) > 1e-9 || math.Abs(back.y-p.y) > 1e-9 {
			t.Errorf("round trip (%g,%g) -> (%g,%g)", p.x, p.y, back.x, back.y)
		}
	}
}

// TestUpdateCornersRejections exercises the quadrilateral validity checks.
func TestUpdateCornersRejections(t *testing.T) {
	s := newGeometryScanner(200, 200)

	tests := []struct {
		name               string
		p00, p10, p11, p01 vector2
	}{
		{
			name: "side too short",
			p00:  vector2{20, 20}, p10: vector2{26, 21}, p11: vector2{27, 120}, p01: vector2{15, 118},
		},
		{
			name: "out of image",
			p00:  vector2{-5, 20}, p10: vector2{120, 25}, p11: vector2{125, 125}, p01: vector2{15, 118},
		},
		{
			name: "bowtie",
			p00:  vector2{20, 20}, p10: vector2{120, 25}, p11: vector2{15, 118}, p01: vector2{125, 125},
		},
		{
			name: "opposite sides out of ratio",
			p00:  vector2{20, 20}, p10: vector2{120, 25}, p11: vector2{122, 60}, p01: vector2{15, 118},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reg := &region{}
			if s.updateCorners(reg, tc.p00, tc.p10, tc.p11, tc.p01) {
				t.Error("invalid quadrilateral accepted")
			}
		})
	}
}

// TestRightAngleTrueness checks the corner metric: a perfect right angle
// scores 1, a straight line scores about 0.
func TestRightAngleTrueness(t *testing.T) {
	square := rightAngleTrueness(vector2{0, 1}, vector2{0, 0}, vector2{1, 0}, math.Pi/2)
	if math.Abs(square-1.0) > 1e-9 {
		t.Errorf("right angle trueness = %g, want 1", square)
	}

	flat := rightAngleTrueness(vector2{-1, 0}, vector2{0, 0}, vector2{1, 0}, math.Pi/2)
	if math.Abs(flat) > 1e-9 {
		t.Errorf("straight line trueness = %g, want 0", flat)
	}
}
