// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package interfaces

import "github.com/helics/core/values"

// coercible is the non-strict mutual-coercion table referenced by
// spec.md §4.2: tags that compatible() accepts as a match even though
// they are not identical, so long as strict type checking is off.
var coercible = map[values.Tag]map[values.Tag]bool{
	values.Double: {values.Int64: true, values.Complex: true, values.String: true, values.Vector: true, values.NamedPoint: true, values.Bool: true},
	values.Int64:  {values.Double: true, values.String: true, values.Vector: true, values.NamedPoint: true, values.Bool: true},
	values.String: {values.Double: true, values.Int64: true, values.Bool: true},
	values.Vector: {values.Double: true, values.Int64: true, values.Complex: true, values.ComplexVector: true},
	values.Complex: {values.Double: true, values.Vector: true},
	values.ComplexVector: {values.Vector: true},
	values.NamedPoint: {values.Double: true, values.Int64: true},
	values.Bool: {values.Double: true, values.Int64: true, values.String: true},
}

// typeString is the declared-type spelling carried by an interface —
// either a concrete values.Tag name or one of the wildcard spellings.
type typeString = values.DeclaredType

// compatible reports type compatibility between a publication-side and
// input-side declared type string, per spec.md §4.2: true if either
// side is a wildcard, they are textually equal, or (non-strict) both
// resolve to tags in the mutual-coercion table.
func compatible(t1, t2 string, strict bool) bool {
	d1, d2 := typeString(t1), typeString(t2)
	if d1.IsWildcard() || d2.IsWildcard() {
		return true
	}
	if t1 == t2 {
		return true
	}
	if strict {
		return false
	}
	tag1, ok1 := values.ParseTag(t1)
	tag2, ok2 := values.ParseTag(t2)
	if !ok1 || !ok2 {
		return false
	}
	if tag1 == tag2 {
		return true
	}
	return coercible[tag1][tag2] || coercible[tag2][tag1]
}

// unitsCompatible delegates to a unit-string parser collaborator
// (spec.md §4.2). No example repo in the corpus carries a dedicated
// units library, so this is intentionally the minimal form the spec
// allows: empty on either side is always compatible, otherwise exact
// textual match — a real deployment would swap in a unit-conversion
// collaborator behind this same signature.
func unitsCompatible(u1, u2 string) bool {
	if u1 == "" || u2 == "" {
		return true
	}
	return u1 == u2
}
