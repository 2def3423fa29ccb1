// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package values

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    Value
	}{
		{"double", NewDouble(3.14159)},
		{"negative double", NewDouble(-42.5)},
		{"int64", NewInt64(-123456789)},
		{"complex", NewComplex(1.5, -2.5)},
		{"string", NewString("hello federation")},
		{"empty string", NewString("")},
		{"vector", NewVector([]float64{1, 2, 3, 4.5})},
		{"empty vector", NewVector(nil)},
		{"complex vector", NewComplexVector([]complex128{complex(1, 2), complex(-3, 4)})},
		{"named point", NewNamedPoint("temperature", 98.6)},
		{"bool true", NewBool(true)},
		{"bool false", NewBool(false)},
		{"custom", NewCustom([]byte{0xDE, 0xAD, 0xBE, 0xEF})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := Encode(tt.v)
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(buf), headerSize)

			got, err := Decode(buf)
			require.NoError(t, err)
			require.Equal(t, tt.v.Tag(), got.Tag())
			require.Equal(t, tt.v.String(), got.String())
		})
	}
}

// TestEncodeEndianIndependence is spec.md §8 property 2: decoding must
// reproduce the same logical value regardless of which endian flag the
// encoder stamped into the wire header.
func TestEncodeEndianIndependence(t *testing.T) {
	values := []Value{
		NewDouble(2.71828),
		NewInt64(987654321),
		NewVector([]float64{1, 2, 3}),
		NewComplexVector([]complex128{complex(5, -5)}),
	}

	for _, v := range values {
		le, err := EncodeEndian(v, LittleEndian)
		require.NoError(t, err)
		be, err := EncodeEndian(v, BigEndian)
		require.NoError(t, err)

		gotLE, err := Decode(le)
		require.NoError(t, err)
		gotBE, err := Decode(be)
		require.NoError(t, err)

		require.Equal(t, gotLE.String(), gotBE.String())
	}
}

func TestDecodeUnknownTagIsCustom(t *testing.T) {
	buf, err := Encode(NewDouble(1))
	require.NoError(t, err)
	buf[0] = 0xFF // not any known wireCode

	got, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, Custom, got.Tag())
}

func TestDecodeTruncatedHeaderErrors(t *testing.T) {
	_, err := Decode([]byte{0x01, 0x02})
	require.Error(t, err)
}

func TestDecodeTruncatedBodyErrors(t *testing.T) {
	buf, err := Encode(NewVector([]float64{1, 2, 3}))
	require.NoError(t, err)

	_, err = Decode(buf[:headerSize+8]) // claims 3 elements, only 1 present
	require.Error(t, err)
}

func TestCoerceNumericRoundTrip(t *testing.T) {
	d := NewDouble(7)
	i, err := Coerce(d, Int64)
	require.NoError(t, err)
	require.Equal(t, int64(7), i.rawInt64())

	back, err := Coerce(i, Double)
	require.NoError(t, err)
	require.Equal(t, float64(7), back.rawDouble())
}

func TestCoerceStringToInvalidNumberErrors(t *testing.T) {
	_, err := Coerce(NewString("not-a-number"), Double)
	require.Error(t, err)
}

func TestCoerceVectorToScalarTakesEuclideanNorm(t *testing.T) {
	v, err := Coerce(NewVector([]float64{9, 8, 7}), Double)
	require.NoError(t, err)
	require.InDelta(t, math.Sqrt(9*9+8*8+7*7), v.rawDouble(), 1e-9)
}

func TestCoerceScalarToVectorPromotes(t *testing.T) {
	v, err := Coerce(NewDouble(4), Vector)
	require.NoError(t, err)
	require.Equal(t, []float64{4}, v.rawVector())
}

func TestCoerceEmptyVectorToScalarErrors(t *testing.T) {
	_, err := Coerce(NewVector(nil), Double)
	require.Error(t, err)
}

func TestCoerceComplexToScalarTakesMagnitude(t *testing.T) {
	v, err := Coerce(NewComplex(3, 4), Double)
	require.NoError(t, err)
	require.InDelta(t, 5.0, v.rawDouble(), 1e-9)
}

func TestCoerceNamedPointUsesValueWhenFinite(t *testing.T) {
	v, err := Coerce(NewNamedPoint("ignored", 2.5), Double)
	require.NoError(t, err)
	require.InDelta(t, 2.5, v.rawDouble(), 1e-9)
}

func TestCoerceNamedPointParsesNameWhenValueNonFinite(t *testing.T) {
	v, err := Coerce(NewNamedPoint("3.5", math.NaN()), Double)
	require.NoError(t, err)
	require.InDelta(t, 3.5, v.rawDouble(), 1e-9)
}

func TestCoerceStringBracketedVectorLiteralParsesAsNorm(t *testing.T) {
	v, err := Coerce(NewString("[3,4]"), Double)
	require.NoError(t, err)
	require.InDelta(t, 5.0, v.rawDouble(), 1e-9)

	v, err = Coerce(NewString("v2[3, 4]"), Double)
	require.NoError(t, err)
	require.InDelta(t, 5.0, v.rawDouble(), 1e-9)
}

// TestChangedMonotoneInDelta is spec.md §8 property 3: if newer is
// considered changed relative to prev at delta d1, it is still
// considered changed at any smaller d2.
func TestChangedMonotoneInDelta(t *testing.T) {
	prev := NewDouble(10.0)
	newer := NewDouble(10.5)

	require.True(t, Changed(prev, newer, 0.1))
	require.True(t, Changed(prev, newer, 0.3))
	require.False(t, Changed(prev, newer, 0.6))
}

func TestChangedDifferentTagsAlwaysChanged(t *testing.T) {
	require.True(t, Changed(NewDouble(1), NewInt64(1), 1000))
}

func TestChangedVectorLengthMismatchAlwaysChanged(t *testing.T) {
	require.True(t, Changed(NewVector([]float64{1, 2}), NewVector([]float64{1, 2, 3}), 1000))
}

func TestChangedStringExactMatch(t *testing.T) {
	require.False(t, Changed(NewString("a"), NewString("a"), 0))
	require.True(t, Changed(NewString("a"), NewString("b"), 0))
}

func TestChangedBoolFlip(t *testing.T) {
	require.True(t, Changed(NewBool(false), NewBool(true), 0))
	require.False(t, Changed(NewBool(true), NewBool(true), 0))
}
