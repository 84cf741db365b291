package joiner

import (
	"fmt"
	"strings"
)

// Type is the comparison a single join predicate applies.
type Type int

const (
	// Equal matches when both keys are equal.
	Equal Type = iota
	// LessThan matches when the stored key is strictly less than the query key.
	LessThan
	// LessOrEqual matches when the stored key is less than or equal to the query key.
	LessOrEqual
	// GreaterThan matches when the stored key is strictly greater than the query key.
	GreaterThan
	// GreaterOrEqual matches when the stored key is greater than or equal to the query key.
	GreaterOrEqual
	// Containing matches when the stored collection contains the query value.
	Containing
	// ContainedIn matches when the stored value is an element of the query collection.
	ContainedIn
	// ContainingAnyOf matches when the stored and query collections intersect.
	ContainingAnyOf
)

var typeNames = [...]string{
	Equal:           "equal",
	LessThan:        "less_than",
	LessOrEqual:     "less_or_equal",
	GreaterThan:     "greater_than",
	GreaterOrEqual:  "greater_or_equal",
	Containing:      "containing",
	ContainedIn:     "contained_in",
	ContainingAnyOf: "containing_any_of",
}

var typeSymbols = [...]string{
	Equal:           "==",
	LessThan:        "<",
	LessOrEqual:     "<=",
	GreaterThan:     ">",
	GreaterOrEqual:  ">=",
	Containing:      "contains",
	ContainedIn:     "in",
	ContainingAnyOf: "intersects",
}

// Valid reports whether t is one of the declared types.
func (t Type) Valid() bool {
	return t >= Equal && t <= ContainingAnyOf
}

// String returns the snake_case name used in config and logs.
func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("joiner.Type(%d)", int(t))
	}
	return typeNames[t]
}

// Symbol returns the operator form used when printing chain shapes.
func (t Type) Symbol() string {
	if !t.Valid() {
		return "?"
	}
	return typeSymbols[t]
}

// Flip returns the predicate seen from the other side of the join.
func (t Type) Flip() Type {
	switch t {
	case LessThan:
		return GreaterThan
	case LessOrEqual:
		return GreaterOrEqual
	case GreaterThan:
		return LessThan
	case GreaterOrEqual:
		return LessOrEqual
	case Containing:
		return ContainedIn
	case ContainedIn:
		return Containing
	default:
		return t
	}
}

// IsComparison reports whether t orders keys.
func (t Type) IsComparison() bool {
	return t >= LessThan && t <= GreaterOrEqual
}

// IsMembership reports whether one side of t is a collection.
func (t Type) IsMembership() bool {
	return t >= Containing && t <= ContainingAnyOf
}

// ParseType accepts either the name or the symbol of a type.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i := range typeNames {
		if s == typeNames[i] || s == typeSymbols[i] {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("unknown joiner type %q", s)
}
