// Package scope implements the nested, parent-pointer scope chain used by
// the semantic analyzer and code generator (spec.md §3 "Scope").
package scope

import (
	"strings"

	"github.com/nunor04/pasvm/internal/types"
)

// Kind tags what a Symbol denotes, per spec.md §3's symbol kind set.
type Kind int

const (
	KindVar Kind = iota
	KindConst
	KindLabel
	KindType
	KindFunction
	KindProcedure
	KindEnumMember
)

// Symbol is one name bound in a Scope.
type Symbol struct {
	Name string // original-case spelling, for diagnostics
	Kind Kind
	Type *types.Type

	// EnumMember/Label: the symbol's compile-time value (an enum member's
	// ordinal, a label's number). Named constants leave it nil; their
	// defining expression is kept in the analyzer's and code generator's own
	// constant tables instead.
	ConstValue interface{}

	// Function/Procedure: formal parameter metadata, used both for call-site
	// checking and by code generation to compute frame offsets.
	Params     []Param
	ReturnType *types.Type // nil for procedures

	// Var: set by code generation once storage is assigned. Only global
	// variables are stamped (Global true, Index the global slot); locals and
	// params keep their frame slots in the code generator's own frame table
	// and leave these fields unset.
	Global bool
	Index  int
}

// ParamPassMode mirrors ast.ParamKind without importing the ast package,
// keeping scope free of a dependency on the parser's node shapes.
type ParamPassMode int

const (
	PassValue ParamPassMode = iota
	PassByRef
	PassConstRef
)

// Param is one formal parameter's resolved signature.
type Param struct {
	Name string
	Mode ParamPassMode
	Type *types.Type
}

// Scope is one lexical block's symbol table, chained to its enclosing scope.
type Scope struct {
	symbols map[string]*Symbol
	outer   *Scope
}

// New creates the top-level (program) scope.
func New() *Scope {
	return &Scope{symbols: make(map[string]*Symbol)}
}

// Nested creates a new scope enclosed by s, e.g. for a procedure/function
// body or a record's field namespace.
func (s *Scope) Nested() *Scope {
	return &Scope{symbols: make(map[string]*Symbol), outer: s}
}

// Outer returns the enclosing scope, or nil at the program scope.
func (s *Scope) Outer() *Scope {
	return s.outer
}

func key(name string) string {
	return strings.ToLower(name)
}

// Define binds name in this scope, overwriting any prior binding in THIS
// scope only (shadowing an outer declaration is allowed; redeclaring within
// the same scope is a semantic error the analyzer checks before calling
// Define).
func (s *Scope) Define(sym *Symbol) {
	s.symbols[key(sym.Name)] = sym
}

// DefinedHere reports whether name is bound directly in this scope, without
// consulting outer scopes — used to detect illegal redeclaration.
func (s *Scope) DefinedHere(name string) (*Symbol, bool) {
	sym, ok := s.symbols[key(name)]
	return sym, ok
}

// Resolve looks up name in this scope, then each enclosing scope in turn.
func (s *Scope) Resolve(name string) (*Symbol, bool) {
	for cur := s; cur != nil; cur = cur.outer {
		if sym, ok := cur.symbols[key(name)]; ok {
			return sym, true
		}
	}
	return nil, false
}
