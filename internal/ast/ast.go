// Package ast defines the abstract syntax tree produced by the parser.
//
// Each grammar production in spec.md's §3 table becomes its own Go type
// implementing Node, rather than a tagged tuple: semantic analysis and code
// generation dispatch on these via type switches instead of a string-keyed
// visitor table, so an unhandled node shape is a compile-time omission in the
// switch rather than a runtime "unknown tag" lookup failure.
package ast

// Node is the common interface implemented by every AST node.
type Node interface {
	// Line returns the 1-based source line the node was parsed from, used
	// for diagnostics (spec.md §1: "source-location recovery beyond the
	// offending line number" is explicitly out of scope). The packed, set,
	// file, subrange, array, enum and record type nodes and Param are built
	// by the parser without a line and return 0.
	Line() int
}

// Expression is any node that yields a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is any node that performs an action.
type Statement interface {
	Node
	statementNode()
}

// TypeExpr is any node appearing in type position (after a ':' or in a
// `type` section), as opposed to a normalized types.Type computed from it.
type TypeExpr interface {
	Node
	typeExprNode()
}

// base embeds the source line every node carries.
type base struct {
	line int
}

func (b base) Line() int { return b.line }

// Program is the root node: `program <name>; <block>.`
type Program struct {
	base
	Name  string
	Block *Block
}

// Block is a declaration list followed by a compound statement.
type Block struct {
	base
	Declarations []Node // one of *ConstSection, *TypeSection, *LabelSection, *VarSection, *FuncDecl, *ProcDecl
	Body         *CompoundStmt
}

func NewProgram(line int, name string, block *Block) *Program {
	return &Program{base: base{line}, Name: name, Block: block}
}

func NewBlock(line int, decls []Node, body *CompoundStmt) *Block {
	return &Block{base: base{line}, Declarations: decls, Body: body}
}
