// Package diag formats compiler diagnostics with source-line context,
// grounded on the teacher's internal/errors package but rendered through
// github.com/fatih/color instead of raw ANSI escapes, and reporting a line
// number only — spec.md §1 scopes column-accurate recovery out.
package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Kind classifies a Diagnostic into one of the taxonomy buckets from
// spec.md §7.
type Kind int

const (
	Lexical Kind = iota
	Syntactic
	SemanticDeclaration
	SemanticTyping
	UseBeforeInit
	CodeGenInternal
)

func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical error"
	case Syntactic:
		return "syntax error"
	case SemanticDeclaration:
		return "declaration error"
	case SemanticTyping:
		return "type error"
	case UseBeforeInit:
		return "use-before-init error"
	case CodeGenInternal:
		return "internal code generation error"
	default:
		return "error"
	}
}

// Diagnostic is a single reported error, tied to a source line.
type Diagnostic struct {
	Kind    Kind
	Line    int
	Message string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("line %d: %s: %s", d.Line, d.Kind, d.Message)
}

// New builds a Diagnostic.
func New(kind Kind, line int, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)}
}

// Bag accumulates diagnostics across a compilation run. The parser (which
// also forwards every error the lexer recorded), the analyzer, and the code
// generator share one Bag so the driver can report everything found before
// giving up. The parser, analyzer and code generator each stop at their own
// first error, so beyond the lexical errors a run records at most one.
type Bag struct {
	source string
	diags  []*Diagnostic
}

// NewBag creates a Bag over the given source text, used to render the
// offending line for each diagnostic.
func NewBag(source string) *Bag {
	return &Bag{source: source}
}

func (b *Bag) Add(d *Diagnostic) {
	b.diags = append(b.diags, d)
}

func (b *Bag) Addf(kind Kind, line int, format string, args ...interface{}) {
	b.Add(New(kind, line, format, args...))
}

func (b *Bag) HasErrors() bool {
	return len(b.diags) > 0
}

func (b *Bag) Diagnostics() []*Diagnostic {
	return b.diags
}

func (b *Bag) sourceLine(line int) string {
	lines := strings.Split(b.source, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// Render formats every accumulated diagnostic with source-line context. When
// useColor is false (e.g. --no-color or a non-terminal destination) no ANSI
// codes are emitted.
func (b *Bag) Render(useColor bool) string {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed, color.Bold)
	bold.EnableColor()
	red.EnableColor()
	if !useColor {
		bold.DisableColor()
		red.DisableColor()
	}

	var sb strings.Builder
	for _, d := range b.diags {
		sb.WriteString(red.Sprintf("%s", d.Kind))
		sb.WriteString(fmt.Sprintf(" at line %d\n", d.Line))
		if src := b.sourceLine(d.Line); src != "" {
			prefix := fmt.Sprintf("%4d | ", d.Line)
			sb.WriteString(prefix)
			sb.WriteString(src)
			sb.WriteString("\n")
		}
		sb.WriteString(bold.Sprintf("%s", d.Message))
		sb.WriteString("\n\n")
	}
	return sb.String()
}
