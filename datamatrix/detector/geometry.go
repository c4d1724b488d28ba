package detector

import "math"

const almostZero = 0.000001

// vector2 is a 2-D double-precision vector used by the fitted-frame
// geometry; all integer pixel work stays in point.
type vector2 struct {
	x, y float64
}

func (v vector2) sub(w vector2) vector2 { return vector2{v.x - w.x, v.y - w.y} }

func (v vector2) cross(w vector2) float64 { return v.x*w.y - v.y*w.x }

func (v vector2) dot(w vector2) float64 { return v.x*w.x + v.y*w.y }

func (v vector2) mag() float64 { return math.Sqrt(v.x*v.x + v.y*v.y) }

// norm scales v to unit length, returning the original magnitude. A zero
// vector is left unchanged and reports ok=false.
func (v *vector2) norm() (float64, bool) {
	mag := v.mag()
	if mag <= almostZero {
		return mag, false
	}
	v.x /= mag
	v.y /= mag
	return mag, true
}

// ray2 is a parametric line through p along unit direction v.
type ray2 struct {
	p, v vector2
}

// intersect returns the intersection of two rays, failing when they are
// parallel or nearly so.
func (r ray2) intersect(q ray2) (vector2, bool) {
	denom := q.v.cross(r.v)
	if math.Abs(denom) <= almostZero {
		return vector2{}, false
	}

	w := q.p.sub(r.p)
	numer := q.v.cross(w)
	t := numer / denom

	return vector2{r.p.x + t*r.v.x, r.p.y + t*r.v.y}, true
}

// rayFromAngle builds a ray through p with direction given by a Hough angle
// bin (one bin per degree).
func rayFromAngle(p point, angle int) ray2 {
	radians := float64(angle) * (math.Pi / houghRes)
	return ray2{
		p: vector2{float64(p.x), float64(p.y)},
		v: vector2{math.Cos(radians), math.Sin(radians)},
	}
}

// rightAngleTrueness measures how close the angle at corner c1 is to the
// given angle: 1.0 is exact, falling off as the corner deviates.
func rightAngleTrueness(c0, c1, c2 vector2, angle float64) float64 {
	vA := c0.sub(c1)
	vB := c2.sub(c1)
	vA.norm()
	vB.norm()

	m := matrix3Rotate(angle)
	vB, _ = m.multiply(vB)

	return vA.dot(vB)
}
