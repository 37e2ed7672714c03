package ast

// SimpleType is a built-in scalar type name: integer, real, boolean, char.
type SimpleType struct {
	base
	Name string
}

func (*SimpleType) typeExprNode() {}

func NewSimpleType(line int, name string) *SimpleType {
	return &SimpleType{base: base{line}, Name: name}
}

// IDType references a previously declared type by name.
type IDType struct {
	base
	Name string
}

func (*IDType) typeExprNode() {}

func NewIDType(line int, name string) *IDType {
	return &IDType{base: base{line}, Name: name}
}

// ArrayType is `array[lower..upper] of element`.
type ArrayType struct {
	base
	Lower   Expression // a ConstExpr
	Upper   Expression // a ConstExpr
	Element TypeExpr
}

func (*ArrayType) typeExprNode() {}

// EnumType is `(Member1, Member2, ...)`.
type EnumType struct {
	base
	Members []string
}

func (*EnumType) typeExprNode() {}

// SubrangeType is `lower..upper` used directly as a type.
type SubrangeType struct {
	base
	Lower Expression // a ConstExpr
	Upper Expression // a ConstExpr
}

func (*SubrangeType) typeExprNode() {}

// RecordField is a field-list entry inside a record or variant branch.
type RecordField = VarGroup

// VariantBranch is one `label, label: (fields)` alternative of a variant
// part.
type VariantBranch struct {
	Labels []Expression // ConstExpr nodes
	Fields []*RecordField
}

// VariantPart is the optional `case discriminant: type of branches` tail of
// a record type.
type VariantPart struct {
	Discriminant     string
	DiscriminantType string // one of integer/char/boolean, or a user enum name
	Branches         []VariantBranch
}

// RecordType is `record fields [variant part] end`.
type RecordType struct {
	base
	Fields  []*RecordField
	Variant *VariantPart // nil if absent
}

func (*RecordType) typeExprNode() {}

// SetType is `set of element`.
type SetType struct {
	base
	Element TypeExpr
}

func (*SetType) typeExprNode() {}

// FileType is `file of element`.
type FileType struct {
	base
	Element TypeExpr
}

func (*FileType) typeExprNode() {}

// PackedType wraps another type with a transparent `packed` marker (see
// SPEC_FULL.md Open Question 1: treated as a no-op at every layer).
type PackedType struct {
	base
	Inner TypeExpr
}

func (*PackedType) typeExprNode() {}
