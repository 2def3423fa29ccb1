// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package values implements the ValueCodec component of SPEC_FULL.md
// §4.1: a closed sum type for the scalar/vector value algebra, a
// self-describing binary wire encoding, cross-type coercion, and
// change detection. Per spec.md §9's design notes, the in-memory
// Value and the wire encoding are kept as distinct representations of
// the same algebra — Value never reflects over Go types, and the
// codec never inspects a Value's Go-level layout.
package values

import "fmt"

// Tag is the closed set of value shapes a federate can publish or
// subscribe to (spec.md §3). ANY/RAW/DEF are declared-type concepts
// used by InterfaceRegistry's compatibility check, not wire shapes —
// a Value always carries one of the concrete tags below.
type Tag uint8

const (
	Double Tag = iota
	Int64
	Complex
	String
	Vector
	ComplexVector
	NamedPoint
	Bool
	Custom // opaque passthrough for an unrecognized wire tag
)

// wireCode is the bit-exact byte-0 type_code from spec.md §6.
func (t Tag) wireCode() byte {
	switch t {
	case Double:
		return 0xB0
	case Int64:
		return 0x50
	case Complex:
		return 0x12
	case String:
		return 0x0E
	case Vector:
		return 0x6C
	case NamedPoint:
		return 0xAE
	case ComplexVector:
		return 0x62
	case Bool:
		return 0x22
	default:
		return 0xF4
	}
}

// tagFromWireCode maps a wire byte back to a Tag; an unrecognized
// code decodes as Custom (spec.md §4.1: "unknown tag → CUSTOM").
func tagFromWireCode(code byte) Tag {
	switch code {
	case 0xB0:
		return Double
	case 0x50:
		return Int64
	case 0x12:
		return Complex
	case 0x0E:
		return String
	case 0x6C:
		return Vector
	case 0xAE:
		return NamedPoint
	case 0x62:
		return ComplexVector
	case 0x22:
		return Bool
	default:
		return Custom
	}
}

func (t Tag) String() string {
	switch t {
	case Double:
		return "double"
	case Int64:
		return "int64"
	case Complex:
		return "complex"
	case String:
		return "string"
	case Vector:
		return "vector"
	case ComplexVector:
		return "complex_vector"
	case NamedPoint:
		return "named_point"
	case Bool:
		return "bool"
	default:
		return "custom"
	}
}

// DeclaredType is the closed set of values an interface's "declared
// type" attribute may take (spec.md §4.2 compatible()): the concrete
// Tag names above, plus the four wildcard spellings that mean "accept
// anything" when checking InterfaceRegistry compatibility.
type DeclaredType string

const (
	DeclaredAny DeclaredType = "any"
	DeclaredDef DeclaredType = "def"
	DeclaredRaw DeclaredType = "raw"
	DeclaredJSON DeclaredType = "json"
)

// IsWildcard reports whether d is one of the "accept anything" spellings.
func (d DeclaredType) IsWildcard() bool {
	switch d {
	case "", DeclaredAny, DeclaredDef, DeclaredRaw, DeclaredJSON:
		return true
	}
	return false
}

// ParseTag resolves a declared-type string to a concrete Tag, for
// federates that publish/subscribe by name rather than by Tag value.
func ParseTag(s string) (Tag, bool) {
	switch DeclaredType(s) {
	case "double":
		return Double, true
	case "int64", "int":
		return Int64, true
	case "complex":
		return Complex, true
	case "string":
		return String, true
	case "vector":
		return Vector, true
	case "complex_vector":
		return ComplexVector, true
	case "named_point":
		return NamedPoint, true
	case "bool":
		return Bool, true
	}
	return Custom, false
}

// Value is the closed sum type of the HELICS value algebra (spec.md
// §9: "closed sum type ... avoid runtime reflection"). Exactly one of
// the payload fields is meaningful, selected by tag; constructors
// below are the only way to build one so the invariant always holds.
type Value struct {
	tag  Tag
	f64  float64   // Double; value field of NamedPoint
	i64  int64     // Int64
	im   float64   // imaginary part of Complex
	str  string    // String; name field of NamedPoint
	vec  []float64 // Vector
	cvec []complex128
	b    bool   // Bool
	raw  []byte // Custom
}

// Tag reports the shape of v.
func (v Value) Tag() Tag { return v.tag }

func NewDouble(f float64) Value { return Value{tag: Double, f64: f} }
func NewInt64(i int64) Value    { return Value{tag: Int64, i64: i} }
func NewComplex(re, im float64) Value {
	return Value{tag: Complex, f64: re, im: im}
}
func NewString(s string) Value { return Value{tag: String, str: s} }
func NewVector(v []float64) Value {
	cp := make([]float64, len(v))
	copy(cp, v)
	return Value{tag: Vector, vec: cp}
}
func NewComplexVector(v []complex128) Value {
	cp := make([]complex128, len(v))
	copy(cp, v)
	return Value{tag: ComplexVector, cvec: cp}
}
func NewNamedPoint(name string, value float64) Value {
	return Value{tag: NamedPoint, str: name, f64: value}
}
func NewBool(b bool) Value { return Value{tag: Bool, b: b} }
func NewCustom(raw []byte) Value {
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return Value{tag: Custom, raw: cp}
}

// rawDouble/etc. give coerce.go and change.go field access without
// exposing the struct layout outside the package.
func (v Value) rawDouble() float64        { return v.f64 }
func (v Value) rawInt64() int64           { return v.i64 }
func (v Value) rawComplex() (float64, float64) { return v.f64, v.im }
func (v Value) rawString() string         { return v.str }
func (v Value) rawVector() []float64      { return v.vec }
func (v Value) rawComplexVector() []complex128 { return v.cvec }
func (v Value) rawNamedPoint() (string, float64) { return v.str, v.f64 }
func (v Value) rawBool() bool             { return v.b }
func (v Value) rawCustom() []byte         { return v.raw }

func (v Value) String() string {
	switch v.tag {
	case Double:
		return fmt.Sprintf("%g", v.f64)
	case Int64:
		return fmt.Sprintf("%d", v.i64)
	case Complex:
		return fmt.Sprintf("(%g%+gi)", v.f64, v.im)
	case String:
		return v.str
	case Vector:
		return fmt.Sprintf("%v", v.vec)
	case ComplexVector:
		return fmt.Sprintf("%v", v.cvec)
	case NamedPoint:
		return fmt.Sprintf("%s=%g", v.str, v.f64)
	case Bool:
		return fmt.Sprintf("%t", v.b)
	default:
		return fmt.Sprintf("custom[%d bytes]", len(v.raw))
	}
}
