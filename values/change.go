// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package values

import "math"

// Changed reports whether newer differs from prev by more than delta,
// the ONLY_UPDATE_ON_CHANGE test used by InterfaceRegistry inputs
// (spec.md §4.1 property 3: change detection is monotone in delta — a
// value accepted as changed at delta d1 is still accepted at any
// d2 < d1). Values of different tags are always considered changed;
// vectors/complex vectors of different length are always changed.
func Changed(prev, newer Value, delta float64) bool {
	if prev.tag != newer.tag {
		return true
	}
	switch prev.tag {
	case Double, NamedPoint:
		if prev.tag == NamedPoint && prev.str != newer.str {
			return true
		}
		return math.Abs(newer.f64-prev.f64) > delta
	case Int64:
		diff := newer.i64 - prev.i64
		if diff < 0 {
			diff = -diff
		}
		return float64(diff) > delta
	case Complex:
		return complexMagnitude(newer.f64-prev.f64, newer.im-prev.im) > delta
	case Bool:
		return prev.b != newer.b
	case String:
		return prev.str != newer.str
	case Vector:
		if len(prev.vec) != len(newer.vec) {
			return true
		}
		for i := range prev.vec {
			if math.Abs(newer.vec[i]-prev.vec[i]) > delta {
				return true
			}
		}
		return false
	case ComplexVector:
		if len(prev.cvec) != len(newer.cvec) {
			return true
		}
		for i := range prev.cvec {
			dr := real(newer.cvec[i]) - real(prev.cvec[i])
			di := imag(newer.cvec[i]) - imag(prev.cvec[i])
			if complexMagnitude(dr, di) > delta {
				return true
			}
		}
		return false
	default: // Custom
		return !bytesEqual(prev.raw, newer.raw)
	}
}

func complexMagnitude(re, im float64) float64 {
	return math.Hypot(re, im)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
