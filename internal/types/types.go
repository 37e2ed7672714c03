// Package types holds the normalized type representation shared by the
// semantic analyzer and the code generator (spec.md §3 "Type representation
// (normalized)").
package types

import "fmt"

// Kind is one of the scalar tags from spec.md §3, plus Array/Label as the
// two structural extensions the rest of the pipeline needs.
type Kind int

const (
	Integer Kind = iota
	Real
	Boolean
	Char
	Text // spec.md calls this "texto"
	Enum
	Set
	File
	Record
	Array
	Label
	Unknown // only used transiently, e.g. an empty set literal
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Real:
		return "real"
	case Boolean:
		return "boolean"
	case Char:
		return "char"
	case Text:
		return "texto"
	case Enum:
		return "enum"
	case Set:
		return "set"
	case File:
		return "file"
	case Record:
		return "record"
	case Array:
		return "array"
	case Label:
		return "label"
	default:
		return "unknown"
	}
}

// Type is the normalized, structural type of a declaration or expression.
// Two Types describe the same type iff Equal reports true — there is no
// nominal identity beyond what Record and Enum carry via their Name.
type Type struct {
	Kind Kind

	// Elem is the element type of an Array or Set (or the element type a
	// File would hold, though files are declared but never operated on by
	// any statement the spec defines).
	Elem *Type

	// Record-only: canonical field name -> field type, and the optional
	// variant part's metadata (kept for with/field lookups; the variant
	// discriminant itself is an ordinary field in Fields).
	Fields  map[string]*Type
	Variant *VariantInfo

	// Array-only: declared bounds, needed by code generation for address
	// arithmetic and CHECK emission.
	Low  int64
	High int64

	// Record/Enum-only: a stable name used in error messages and as the sole
	// identity Equal compares for these two kinds (structurally identical
	// field sets or member lists never make two distinct declarations the
	// same type).
	Name string
}

// VariantInfo records a record type's variant part: the discriminator field
// name, its (ordinal) type, and each branch's extra fields.
type VariantInfo struct {
	Discriminant     string
	DiscriminantType *Type
	Branches         []VariantBranch
}

// VariantBranch is one label-set -> extra-fields alternative.
type VariantBranch struct {
	Fields map[string]*Type
}

var (
	IntegerType = &Type{Kind: Integer}
	RealType    = &Type{Kind: Real}
	BooleanType = &Type{Kind: Boolean}
	CharType    = &Type{Kind: Char}
	TextType    = &Type{Kind: Text}
	EnumType    = &Type{Kind: Enum}
	LabelType   = &Type{Kind: Label}
	UnknownType = &Type{Kind: Unknown}
)

// NewArray builds an Array type over the given bounds and element type.
func NewArray(low, high int64, elem *Type) *Type {
	return &Type{Kind: Array, Low: low, High: high, Elem: elem}
}

// NewSet builds a Set type over an ordinal element type.
func NewSet(elem *Type) *Type {
	return &Type{Kind: Set, Elem: elem}
}

// NewFile builds a File type over an element type.
func NewFile(elem *Type) *Type {
	return &Type{Kind: File, Elem: elem}
}

// NewRecord builds a Record type from its field map and optional variant.
func NewRecord(name string, fields map[string]*Type, variant *VariantInfo) *Type {
	return &Type{Kind: Record, Name: name, Fields: fields, Variant: variant}
}

// IsOrdinal reports whether t may be used as a case/discriminator/subrange
// base or a set element (spec.md glossary: "integer, char, boolean, enum, or
// a subrange thereof" — subranges are already normalized to Integer).
func (t *Type) IsOrdinal() bool {
	switch t.Kind {
	case Integer, Char, Boolean, Enum:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether t is integer or real.
func (t *Type) IsNumeric() bool {
	return t.Kind == Integer || t.Kind == Real
}

// Equal reports structural type equality.
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Array:
		return a.Low == b.Low && a.High == b.High && Equal(a.Elem, b.Elem)
	case Set:
		return Equal(a.Elem, b.Elem)
	case File:
		return Equal(a.Elem, b.Elem)
	case Record, Enum:
		return a.Name == b.Name
	default:
		return true
	}
}

// String renders a human-readable type name for diagnostics.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case Array:
		return fmt.Sprintf("array[%d..%d] of %s", t.Low, t.High, t.Elem)
	case Set:
		return fmt.Sprintf("set of %s", t.Elem)
	case File:
		return fmt.Sprintf("file of %s", t.Elem)
	case Record:
		if t.Name != "" {
			return t.Name
		}
		return "record"
	case Enum:
		if t.Name != "" {
			return t.Name
		}
		return "enum"
	default:
		return t.Kind.String()
	}
}
