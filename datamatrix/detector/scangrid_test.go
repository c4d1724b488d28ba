package detector

import "testing"

// TestScanGridStaysInBounds pops the whole grid and verifies every emitted
// location lies in the requested window and the grid terminates.
func TestScanGridStaysInBounds(t *testing.T) {
	const xMin, xMax, yMin, yMax = 0, 63, 0, 47
	grid := newScanGrid(xMin, xMax, yMin, yMax, 2)

	count := 0
	limit := (xMax + 1) * (yMax + 1) * 8
	for {
		p, ok := grid.pop()
		if !ok {
			break
		}
		if p.x < xMin || p.x > xMax || p.y < yMin || p.y > yMax {
			t.Fatalf("popped out-of-bounds location (%d,%d)", p.x, p.y)
		}
		count++
		if count > limit {
			t.Fatal("grid did not terminate")
		}
	}

	if count == 0 {
		t.Fatal("grid emitted no locations")
	}
}

// TestScanGridCoversQuadrants checks the refining sweep reaches all four
// quadrants of the window rather than clustering around the first cross.
func TestScanGridCoversQuadrants(t *testing.T) {
	const w, h = 100, 80
	grid := newScanGrid(0, w-1, 0, h-1, 1)

	var quadrant [4]int
	for {
		p, ok := grid.pop()
		if !ok {
			break
		}
		q := 0
		if p.x >= w/2 {
			q |= 1
		}
		if p.y >= h/2 {
			q |= 2
		}
		quadrant[q]++
	}

	for q, n := range quadrant {
		if n == 0 {
			t.Errorf("quadrant %d received no probes", q)
		}
	}
}

// TestScanGridRefines verifies the probe spacing tightens as levels refine:
// the finest level must place probes no farther apart than the requested
// scan gap allows along at least one axis.
func TestScanGridRefines(t *testing.T) {
	grid := newScanGrid(0, 63, 0, 63, 4)

	seen := map[point]bool{}
	for {
		p, ok := grid.pop()
		if !ok {
			break
		}
		seen[p] = true
	}

	// With a 64-wide window and gap 4 the grid should visit at least one
	// probe in every 8x8 block.
	for by := 0; by < 64; by += 8 {
		for bx := 0; bx < 64; bx += 8 {
			found := false
			for y := by; y < by+8 && !found; y++ {
				for x := bx; x < bx+8; x++ {
					if seen[point{x, y}] {
						found = true
						break
					}
				}
			}
			if !found {
				t.Fatalf("no probe in block (%d,%d)", bx, by)
			}
		}
	}
}
