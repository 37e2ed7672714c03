package ast

// ConstSection is a `const` declaration block: a list of named constant
// expressions.
type ConstSection struct {
	base
	Items []ConstItem
}

// ConstItem is one `name = expr` pair inside a ConstSection.
type ConstItem struct {
	Name string
	Expr Expression
}

func NewConstSection(line int, items []ConstItem) *ConstSection {
	return &ConstSection{base: base{line}, Items: items}
}

// TypeSection is a `type` declaration block.
type TypeSection struct {
	base
	Items []TypeItem
}

// TypeItem is one `name = type` pair inside a TypeSection.
type TypeItem struct {
	Name string
	Type TypeExpr
}

func NewTypeSection(line int, items []TypeItem) *TypeSection {
	return &TypeSection{base: base{line}, Items: items}
}

// LabelSection is a `label` declaration block naming the numeric labels
// usable by goto/labeled statements in the enclosing scope.
type LabelSection struct {
	base
	Labels []int64
}

func NewLabelSection(line int, labels []int64) *LabelSection {
	return &LabelSection{base: base{line}, Labels: labels}
}

// VarSection is a `var` declaration block: a sequence of VarGroups.
type VarSection struct {
	base
	Groups []*VarGroup
}

func NewVarSection(line int, groups []*VarGroup) *VarSection {
	return &VarSection{base: base{line}, Groups: groups}
}

// VarGroup is one `name, name, ... : type;` group inside a VarSection or a
// record's field list.
type VarGroup struct {
	base
	Names []string
	Type  TypeExpr
}

func NewVarGroup(line int, names []string, typ TypeExpr) *VarGroup {
	return &VarGroup{base: base{line}, Names: names, Type: typ}
}

// ParamKind distinguishes by-value, by-reference (var), and by-const-reference
// formal parameters.
type ParamKind int

const (
	ParamVal ParamKind = iota
	ParamVar
	ParamConst
)

// Param is one formal parameter group: `[var|const] name, name : type`.
type Param struct {
	base
	Kind  ParamKind
	Names []string
	Type  TypeExpr
}

// FuncDecl is a `function name(params): returnType; block;` declaration.
type FuncDecl struct {
	base
	Name       string
	Params     []*Param
	ReturnType TypeExpr
	Body       *Block
}

func (d *FuncDecl) statementNode() {}

// ProcDecl is a `procedure name(params); block;` declaration.
type ProcDecl struct {
	base
	Name   string
	Params []*Param
	Body   *Block
}

func (d *ProcDecl) statementNode() {}

func NewFuncDecl(line int, name string, params []*Param, ret TypeExpr, body *Block) *FuncDecl {
	return &FuncDecl{base: base{line}, Name: name, Params: params, ReturnType: ret, Body: body}
}

func NewProcDecl(line int, name string, params []*Param, body *Block) *ProcDecl {
	return &ProcDecl{base: base{line}, Name: name, Params: params, Body: body}
}

// TotalParamCount returns how many individual parameter names a Param list
// declares, flattening `a, b: integer` groups.
func TotalParamCount(params []*Param) int {
	n := 0
	for _, p := range params {
		n += len(p.Names)
	}
	return n
}
