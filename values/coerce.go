// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package values

import (
	"math"
	"strconv"
	"strings"

	"github.com/helics/core/herrors"
)

// Coerce converts v to the shape named by want, following the
// cross-type coercion matrix of spec.md §4.1 (grounded on the
// original helicsTypes.cpp conversion table: numeric types convert
// freely among each other and to/from string; a vector collapses to
// its Euclidean norm when a scalar is requested; a scalar promotes to
// a length-1 vector when a vector is requested).
func Coerce(v Value, want Tag) (Value, error) {
	if v.tag == want {
		return v, nil
	}
	switch want {
	case Double:
		return coerceToDouble(v)
	case Int64:
		return coerceToInt64(v)
	case Complex:
		return coerceToComplex(v)
	case String:
		return coerceToString(v), nil
	case Bool:
		return coerceToBool(v)
	case Vector:
		return coerceToVector(v)
	case ComplexVector:
		return coerceToComplexVector(v)
	case NamedPoint:
		return coerceToNamedPoint(v)
	case Custom:
		return NewCustom([]byte(v.String())), nil
	}
	return Value{}, herrors.InvalidParameter("no coercion to tag %s", want)
}

func coerceToDouble(v Value) (Value, error) {
	switch v.tag {
	case Int64:
		return NewDouble(float64(v.i64)), nil
	case Complex:
		return NewDouble(complexMagnitude(v.f64, v.im)), nil
	case Bool:
		if v.b {
			return NewDouble(1), nil
		}
		return NewDouble(0), nil
	case String:
		f, err := strconv.ParseFloat(v.str, 64)
		if err == nil {
			return NewDouble(f), nil
		}
		if vec, ok := parseVectorLiteral(v.str); ok {
			return NewDouble(vectorNorm(vec)), nil
		}
		return Value{}, herrors.InvalidParameter("cannot coerce string %q to double: %v", v.str, err)
	case Vector:
		if len(v.vec) == 0 {
			return Value{}, herrors.InvalidParameter("cannot coerce empty vector to double")
		}
		return NewDouble(vectorNorm(v.vec)), nil
	case NamedPoint:
		f, err := namedPointScalar(v)
		if err != nil {
			return Value{}, err
		}
		return NewDouble(f), nil
	}
	return Value{}, herrors.InvalidParameter("no coercion from %s to double", v.tag)
}

func coerceToInt64(v Value) (Value, error) {
	switch v.tag {
	case Double:
		return NewInt64(int64(v.f64)), nil
	case Complex:
		return NewInt64(int64(complexMagnitude(v.f64, v.im))), nil
	case Bool:
		if v.b {
			return NewInt64(1), nil
		}
		return NewInt64(0), nil
	case String:
		i, err := strconv.ParseInt(v.str, 10, 64)
		if err == nil {
			return NewInt64(i), nil
		}
		if vec, ok := parseVectorLiteral(v.str); ok {
			return NewInt64(int64(vectorNorm(vec))), nil
		}
		return Value{}, herrors.InvalidParameter("cannot coerce string %q to int64: %v", v.str, err)
	case Vector:
		if len(v.vec) == 0 {
			return Value{}, herrors.InvalidParameter("cannot coerce empty vector to int64")
		}
		return NewInt64(int64(vectorNorm(v.vec))), nil
	case NamedPoint:
		f, err := namedPointScalar(v)
		if err != nil {
			return Value{}, err
		}
		return NewInt64(int64(f)), nil
	}
	return Value{}, herrors.InvalidParameter("no coercion from %s to int64", v.tag)
}

// vectorNorm is the Euclidean norm used when a VECTOR collapses to a
// scalar.
func vectorNorm(vec []float64) float64 {
	var sumSq float64
	for _, x := range vec {
		sumSq += x * x
	}
	return math.Sqrt(sumSq)
}

// namedPointScalar returns a NAMED_POINT's value field if finite,
// otherwise falls back to parsing the name as a number.
func namedPointScalar(v Value) (float64, error) {
	if !math.IsNaN(v.f64) && !math.IsInf(v.f64, 0) {
		return v.f64, nil
	}
	f, err := strconv.ParseFloat(v.str, 64)
	if err != nil {
		return 0, herrors.InvalidParameter("named_point has non-finite value and name %q does not parse as a number: %v", v.str, err)
	}
	return f, nil
}

// parseVectorLiteral recognizes the bracketed vector literal forms
// used as a STRING-to-numeric coercion fallback: "[1,2,3]" or
// "v2[1,2,3]", elements separated by commas and/or whitespace.
func parseVectorLiteral(s string) ([]float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "v2")
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, false
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return nil, false
	}
	fields := strings.FieldsFunc(inner, func(r rune) bool {
		return r == ',' || r == ' '
	})
	vec := make([]float64, 0, len(fields))
	for _, f := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, false
		}
		vec = append(vec, x)
	}
	if len(vec) == 0 {
		return nil, false
	}
	return vec, true
}

func coerceToComplex(v Value) (Value, error) {
	switch v.tag {
	case Double:
		return NewComplex(v.f64, 0), nil
	case Int64:
		return NewComplex(float64(v.i64), 0), nil
	case Bool:
		if v.b {
			return NewComplex(1, 0), nil
		}
		return NewComplex(0, 0), nil
	case NamedPoint:
		return NewComplex(v.f64, 0), nil
	case Vector:
		switch len(v.vec) {
		case 0:
			return Value{}, herrors.InvalidParameter("cannot coerce empty vector to complex")
		case 1:
			return NewComplex(v.vec[0], 0), nil
		default:
			return NewComplex(v.vec[0], v.vec[1]), nil
		}
	}
	return Value{}, herrors.InvalidParameter("no coercion from %s to complex", v.tag)
}

func coerceToString(v Value) Value {
	return NewString(v.String())
}

func coerceToBool(v Value) (Value, error) {
	switch v.tag {
	case Double:
		return NewBool(v.f64 != 0), nil
	case Int64:
		return NewBool(v.i64 != 0), nil
	case String:
		switch v.str {
		case "1", "true", "TRUE", "True":
			return NewBool(true), nil
		case "0", "false", "FALSE", "False", "":
			return NewBool(false), nil
		}
		return Value{}, herrors.InvalidParameter("cannot coerce string %q to bool", v.str)
	}
	return Value{}, herrors.InvalidParameter("no coercion from %s to bool", v.tag)
}

func coerceToVector(v Value) (Value, error) {
	switch v.tag {
	case Double:
		return NewVector([]float64{v.f64}), nil
	case Int64:
		return NewVector([]float64{float64(v.i64)}), nil
	case NamedPoint:
		return NewVector([]float64{v.f64}), nil
	case Complex:
		return NewVector([]float64{v.f64, v.im}), nil
	case ComplexVector:
		out := make([]float64, 0, 2*len(v.cvec))
		for _, c := range v.cvec {
			out = append(out, real(c), imag(c))
		}
		return NewVector(out), nil
	}
	return Value{}, herrors.InvalidParameter("no coercion from %s to vector", v.tag)
}

func coerceToComplexVector(v Value) (Value, error) {
	switch v.tag {
	case Complex:
		return NewComplexVector([]complex128{complex(v.f64, v.im)}), nil
	case Vector:
		if len(v.vec)%2 != 0 {
			return Value{}, herrors.InvalidParameter("vector of odd length %d cannot coerce to complex vector", len(v.vec))
		}
		out := make([]complex128, len(v.vec)/2)
		for i := range out {
			out[i] = complex(v.vec[2*i], v.vec[2*i+1])
		}
		return NewComplexVector(out), nil
	}
	return Value{}, herrors.InvalidParameter("no coercion from %s to complex vector", v.tag)
}

func coerceToNamedPoint(v Value) (Value, error) {
	switch v.tag {
	case Double:
		return NewNamedPoint("value", v.f64), nil
	case Int64:
		return NewNamedPoint("value", float64(v.i64)), nil
	case Complex:
		return NewNamedPoint("value", v.f64), nil
	}
	return Value{}, herrors.InvalidParameter("no coercion from %s to named_point", v.tag)
}
