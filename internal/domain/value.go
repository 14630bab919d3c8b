package domain

// ValueKind is the shape marker of a TaggedValue
type ValueKind int

const (
	ValueOther ValueKind = iota
	ValueObject
	ValueArray
)

// String returns the shape name
func (k ValueKind) String() string {
	switch k {
	case ValueObject:
		return "object"
	case ValueArray:
		return "array"
	default:
		return "other"
	}
}

// TaggedValue is a decoded JSON value together with its shape
type TaggedValue struct {
	Kind   ValueKind
	Object map[string]any
	Array  []any
	Other  any
}

// Value returns the decoded value regardless of shape
func (v TaggedValue) Value() any {
	switch v.Kind {
	case ValueObject:
		return v.Object
	case ValueArray:
		return v.Array
	default:
		return v.Other
	}
}
