package detector

import "math"

// matrix3 is a 3x3 projective transform applied to row vectors: the
// translation lives in the bottom row and the perspective terms in the
// right-hand column. The raw-to-fitted homography is always built as a
// product of the elementary factors below and its inverse as the product of
// their closed-form inverses in reverse order, never by generic matrix
// inversion; the factored form stays stable for the near-degenerate
// quadrilaterals the detector feeds it.
type matrix3 [3][3]float64

func matrix3Identity() matrix3 {
	return matrix3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

func matrix3Translate(tx, ty float64) matrix3 {
	m := matrix3Identity()
	m[2][0] = tx
	m[2][1] = ty
	return m
}

func matrix3Rotate(angle float64) matrix3 {
	sinAngle := math.Sin(angle)
	cosAngle := math.Cos(angle)
	m := matrix3Identity()
	m[0][0] = cosAngle
	m[0][1] = sinAngle
	m[1][0] = -sinAngle
	m[1][1] = cosAngle
	return m
}

func matrix3Scale(sx, sy float64) matrix3 {
	m := matrix3Identity()
	m[0][0] = sx
	m[1][1] = sy
	return m
}

func matrix3Shear(shx, shy float64) matrix3 {
	m := matrix3Identity()
	m[1][0] = shx
	m[0][1] = shy
	return m
}

// matrix3LineSkewTop maps the top edge of the unit square from height b0 at
// the left to b1 at the right, normalized to sz.
func matrix3LineSkewTop(b0, b1, sz float64) matrix3 {
	m := matrix3Identity()
	m[0][0] = b1 / b0
	m[1][1] = sz / b0
	m[0][2] = (b1 - b0) / (sz * b0)
	return m
}

func matrix3LineSkewTopInv(b0, b1, sz float64) matrix3 {
	m := matrix3Identity()
	m[0][0] = b0 / b1
	m[1][1] = b0 / sz
	m[0][2] = (b0 - b1) / (sz * b1)
	return m
}

// matrix3LineSkewSide is the sideways analogue of matrix3LineSkewTop.
func matrix3LineSkewSide(b0, b1, sz float64) matrix3 {
	m := matrix3Identity()
	m[0][0] = sz / b0
	m[1][1] = b1 / b0
	m[1][2] = (b1 - b0) / (sz * b0)
	return m
}

func matrix3LineSkewSideInv(b0, b1, sz float64) matrix3 {
	m := matrix3Identity()
	m[0][0] = b0 / sz
	m[1][1] = b0 / b1
	m[1][2] = (b0 - b1) / (sz * b1)
	return m
}

// mul returns m * n.
func (m matrix3) mul(n matrix3) matrix3 {
	var out matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			val := 0.0
			for k := 0; k < 3; k++ {
				val += m[i][k] * n[k][j]
			}
			out[i][j] = val
		}
	}
	return out
}

// multiply applies the transform to a row vector, failing when the point
// projects to infinity.
func (m matrix3) multiply(v vector2) (vector2, bool) {
	w := v.x*m[0][2] + v.y*m[1][2] + m[2][2]
	if math.Abs(w) <= almostZero {
		return vector2{math.MaxFloat64, math.MaxFloat64}, false
	}

	return vector2{
		x: (v.x*m[0][0] + v.y*m[1][0] + m[2][0]) / w,
		y: (v.x*m[0][1] + v.y*m[1][1] + m[2][1]) / w,
	}, true
}

// updateCorners validates the quadrilateral (p00, p10, p11, p01) and, when
// it passes, composes the region's raw2fit and fit2raw homographies mapping
// it onto the unit square: translate, rotate, shear, scale x, scale y, side
// line-skew, top line-skew.
func (s *scanner) updateCorners(reg *region, p00, p10, p11, p01 vector2) bool {
	xMax := float64(s.img.width - 1)
	yMax := float64(s.img.height - 1)

	if p00.x < 0.0 || p00.y < 0.0 || p00.x > xMax || p00.y > yMax ||
		p01.x < 0.0 || p01.y < 0.0 || p01.x > xMax || p01.y > yMax ||
		p10.x < 0.0 || p10.y < 0.0 || p10.x > xMax || p10.y > yMax {
		return false
	}

	vOT := p01.sub(p00)
	vOR := p10.sub(p00)
	vTX := p11.sub(p01)
	vRX := p11.sub(p10)
	dimOT := vOT.mag()
	dimOR := vOR.mag()
	dimTX := vTX.mag()
	dimRX := vRX.mag()

	// Verify that sides are reasonably long
	if dimOT <= 8.0 || dimOR <= 8.0 || dimTX <= 8.0 || dimRX <= 8.0 {
		return false
	}

	// Verify that the 4 corners define a reasonably fat quadrilateral
	if ratio := dimOT / dimRX; ratio <= 0.5 || ratio >= 2.0 {
		return false
	}
	if ratio := dimOR / dimTX; ratio <= 0.5 || ratio >= 2.0 {
		return false
	}

	// Verify this is not a bowtie shape
	if vOR.cross(vRX) <= 0.0 || vOT.cross(vTX) >= 0.0 {
		return false
	}

	if rightAngleTrueness(p00, p10, p11, math.Pi/2) <= s.devnCos {
		return false
	}
	if rightAngleTrueness(p10, p11, p01, math.Pi/2) <= s.devnCos {
		return false
	}

	tx := -p00.x
	ty := -p00.y
	m := matrix3Translate(tx, ty)

	phi := math.Atan2(vOT.x, vOT.y)
	m = m.mul(matrix3Rotate(phi))

	vTmp, ok := m.multiply(p10)
	if !ok {
		return false
	}
	shx := -vTmp.y / vTmp.x
	m = m.mul(matrix3Shear(0.0, shx))

	scx := 1.0 / vTmp.x
	m = m.mul(matrix3Scale(scx, 1.0))

	vTmp, ok = m.multiply(p11)
	if !ok {
		return false
	}
	scy := 1.0 / vTmp.y
	m = m.mul(matrix3Scale(1.0, scy))

	vTmp, ok = m.multiply(p11)
	if !ok {
		return false
	}
	skx := vTmp.x
	m = m.mul(matrix3LineSkewSide(1.0, skx, 1.0))

	vTmp, ok = m.multiply(p01)
	if !ok {
		return false
	}
	sky := vTmp.y
	reg.raw2fit = m.mul(matrix3LineSkewTop(sky, 1.0, 1.0))

	// Build the inverse from the factor inverses in reverse order
	mInv := matrix3LineSkewTopInv(sky, 1.0, 1.0)
	mInv = mInv.mul(matrix3LineSkewSideInv(1.0, skx, 1.0))
	mInv = mInv.mul(matrix3Scale(1.0/scx, 1.0/scy))
	mInv = mInv.mul(matrix3Shear(0.0, -shx))
	mInv = mInv.mul(matrix3Rotate(-phi))
	reg.fit2raw = mInv.mul(matrix3Translate(-tx, -ty))

	return true
}
