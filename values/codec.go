// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package values

import (
	"encoding/binary"
	"math"

	"github.com/helics/core/herrors"
)

// Endian is the wire endian flag (spec.md §6, byte offset 3).
type Endian byte

const (
	LittleEndian Endian = 0
	BigEndian    Endian = 1
)

func (e Endian) order() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// headerSize is the fixed 8-byte prefix every encoded value carries.
const headerSize = 8

// Encode produces the self-describing wire buffer for v using
// little-endian element encoding — the default write endianness of
// this implementation (spec.md does not mandate a default; decoders
// must honor whatever flag the buffer carries regardless).
func Encode(v Value) ([]byte, error) {
	return EncodeEndian(v, LittleEndian)
}

// EncodeEndian is Encode with an explicit wire endianness, used by the
// endian-independence property test (spec.md §8 property 2).
func EncodeEndian(v Value, endian Endian) ([]byte, error) {
	order := endian.order()
	var body []byte
	var length uint32

	switch v.tag {
	case Double:
		body = make([]byte, 8)
		order.PutUint64(body, math.Float64bits(v.f64))
		length = 1
	case Int64:
		body = make([]byte, 8)
		order.PutUint64(body, uint64(v.i64))
		length = 1
	case Complex:
		body = make([]byte, 16)
		order.PutUint64(body[0:8], math.Float64bits(v.f64))
		order.PutUint64(body[8:16], math.Float64bits(v.im))
		length = 1
	case String:
		body = []byte(v.str)
		length = uint32(len(body))
	case Vector:
		body = make([]byte, 8*len(v.vec))
		for i, f := range v.vec {
			order.PutUint64(body[i*8:i*8+8], math.Float64bits(f))
		}
		length = uint32(len(v.vec))
	case ComplexVector:
		body = make([]byte, 16*len(v.cvec))
		for i, c := range v.cvec {
			off := i * 16
			order.PutUint64(body[off:off+8], math.Float64bits(real(c)))
			order.PutUint64(body[off+8:off+16], math.Float64bits(imag(c)))
		}
		length = uint32(len(v.cvec))
	case NamedPoint:
		name := []byte(v.str)
		body = make([]byte, 8+len(name))
		order.PutUint64(body[0:8], math.Float64bits(v.f64))
		copy(body[8:], name)
		length = uint32(len(name))
	case Bool:
		body = []byte{'0'}
		if v.b {
			body[0] = '1'
		}
		length = 1
	default: // Custom: opaque passthrough
		body = v.raw
		length = uint32(len(body))
	}

	buf := make([]byte, headerSize+len(body))
	buf[0] = v.tag.wireCode()
	buf[1], buf[2] = 0, 0
	buf[3] = byte(endian)
	binary.BigEndian.PutUint32(buf[4:8], length)
	copy(buf[headerSize:], body)
	return buf, nil
}

// Decode parses a self-describing buffer produced by Encode or
// EncodeEndian. Type auto-detection reads byte 0; an unrecognized tag
// decodes as Custom, carrying the raw body opaquely (spec.md §4.1).
func Decode(buf []byte) (Value, error) {
	if len(buf) < headerSize {
		return Value{}, herrors.InvalidParameter("value buffer shorter than %d-byte header (got %d)", headerSize, len(buf))
	}
	tag := tagFromWireCode(buf[0])
	endian := Endian(buf[3])
	order := endian.order()
	length := binary.BigEndian.Uint32(buf[4:8])
	body := buf[headerSize:]

	switch tag {
	case Double:
		if len(body) < 8 {
			return Value{}, herrors.InvalidParameter("double value truncated")
		}
		return NewDouble(math.Float64frombits(order.Uint64(body[:8]))), nil
	case Int64:
		if len(body) < 8 {
			return Value{}, herrors.InvalidParameter("int64 value truncated")
		}
		return NewInt64(int64(order.Uint64(body[:8]))), nil
	case Complex:
		if len(body) < 16 {
			return Value{}, herrors.InvalidParameter("complex value truncated")
		}
		re := math.Float64frombits(order.Uint64(body[0:8]))
		im := math.Float64frombits(order.Uint64(body[8:16]))
		return NewComplex(re, im), nil
	case String:
		if uint32(len(body)) < length {
			return Value{}, herrors.InvalidParameter("string value truncated")
		}
		return NewString(string(body[:length])), nil
	case Vector:
		n := int(length)
		if len(body) < 8*n {
			return Value{}, herrors.InvalidParameter("vector value truncated")
		}
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			out[i] = math.Float64frombits(order.Uint64(body[i*8 : i*8+8]))
		}
		return NewVector(out), nil
	case ComplexVector:
		n := int(length)
		if len(body) < 16*n {
			return Value{}, herrors.InvalidParameter("complex vector value truncated")
		}
		out := make([]complex128, n)
		for i := 0; i < n; i++ {
			off := i * 16
			re := math.Float64frombits(order.Uint64(body[off : off+8]))
			im := math.Float64frombits(order.Uint64(body[off+8 : off+16]))
			out[i] = complex(re, im)
		}
		return NewComplexVector(out), nil
	case NamedPoint:
		n := int(length)
		if len(body) < 8+n {
			return Value{}, herrors.InvalidParameter("named point value truncated")
		}
		val := math.Float64frombits(order.Uint64(body[0:8]))
		name := string(body[8 : 8+n])
		return NewNamedPoint(name, val), nil
	case Bool:
		if len(body) < 1 {
			return Value{}, herrors.InvalidParameter("bool value truncated")
		}
		return NewBool(body[0] == '1'), nil
	default:
		return NewCustom(body), nil
	}
}

// DecodeRaw treats buf as a tag-less RAW passthrough (spec.md §3: "a
// raw string pass-through"), used by interfaces whose declared type
// is "raw" and never goes through the self-describing header.
func DecodeRaw(buf []byte) Value {
	return NewString(string(buf))
}

// EncodeRaw is the write side of DecodeRaw.
func EncodeRaw(v Value) []byte {
	return []byte(v.String())
}
