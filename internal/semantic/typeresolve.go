package semantic

import (
	"fmt"

	"github.com/nunor04/pasvm/internal/ast"
	"github.com/nunor04/pasvm/internal/diag"
	"github.com/nunor04/pasvm/internal/scope"
	"github.com/nunor04/pasvm/internal/types"
)

// resolveType normalizes a parsed ast.TypeExpr into a types.Type, resolving
// named-type references through sc and folding array/subrange bounds through
// the analyzer's constant table. name is the declared name to stamp onto a
// record built directly at this call (from a `type` section); pass "" for a
// type expression appearing anonymously in a var or field group, which gets
// a synthetic name so two differently-shaped anonymous records are never
// mistaken for the same type by types.Equal.
func (a *Analyzer) resolveType(te ast.TypeExpr, sc *scope.Scope, name string) *types.Type {
	if a.failed {
		return types.UnknownType
	}
	switch t := te.(type) {
	case *ast.SimpleType:
		switch t.Name {
		case "integer":
			return types.IntegerType
		case "real":
			return types.RealType
		case "boolean":
			return types.BooleanType
		case "char":
			return types.CharType
		default:
			a.errorf(diag.SemanticDeclaration, t.Line(), "unknown built-in type %q", t.Name)
			return types.UnknownType
		}

	case *ast.IDType:
		sym, ok := sc.Resolve(t.Name)
		if !ok || sym.Kind != scope.KindType {
			a.errorf(diag.SemanticDeclaration, t.Line(), "undeclared type %q", t.Name)
			return types.UnknownType
		}
		return sym.Type

	case *ast.PackedType:
		// Open Question 1: packed is transparent at every layer.
		return a.resolveType(t.Inner, sc, name)

	case *ast.SubrangeType:
		low, ok1 := a.foldConstInt(t.Lower)
		high, ok2 := a.foldConstInt(t.Upper)
		if !ok1 || !ok2 {
			return types.UnknownType
		}
		if low > high {
			a.errorf(diag.SemanticDeclaration, t.Line(), "subrange lower bound %d exceeds upper bound %d", low, high)
			return types.UnknownType
		}
		// Subranges normalize to plain integer (spec.md §3).
		return types.IntegerType

	case *ast.ArrayType:
		low, ok1 := a.foldConstInt(t.Lower)
		high, ok2 := a.foldConstInt(t.Upper)
		elem := a.resolveType(t.Element, sc, "")
		if !ok1 || !ok2 || a.failed {
			return types.UnknownType
		}
		if low > high {
			a.errorf(diag.SemanticDeclaration, t.Line(), "array lower bound %d exceeds upper bound %d", low, high)
			return types.UnknownType
		}
		return types.NewArray(low, high, elem)

	case *ast.SetType:
		elem := a.resolveType(t.Element, sc, "")
		if a.failed {
			return types.UnknownType
		}
		if !elem.IsOrdinal() {
			a.errorf(diag.SemanticDeclaration, t.Line(), "set element type must be ordinal, got %s", elem)
			return types.UnknownType
		}
		return types.NewSet(elem)

	case *ast.FileType:
		elem := a.resolveType(t.Element, sc, "")
		return types.NewFile(elem)

	case *ast.EnumType:
		recName := name
		if recName == "" {
			a.recordSeq++
			recName = fmt.Sprintf("anonymous-enum#%d", a.recordSeq)
		}
		return &types.Type{Kind: types.Enum, Name: recName}

	case *ast.RecordType:
		recName := name
		if recName == "" {
			a.recordSeq++
			recName = fmt.Sprintf("anonymous-record#%d", a.recordSeq)
		}
		fields := make(map[string]*types.Type)
		for _, fg := range t.Fields {
			fieldType := a.resolveType(fg.Type, sc, "")
			if a.failed {
				return types.UnknownType
			}
			for _, fn := range fg.Names {
				if _, dup := fields[canon(fn)]; dup {
					a.errorf(diag.SemanticDeclaration, fg.Line(), "duplicate field %q", fn)
					return types.UnknownType
				}
				fields[canon(fn)] = fieldType
			}
		}
		var variant *types.VariantInfo
		if t.Variant != nil {
			discType, ok := fields[canon(t.Variant.Discriminant)]
			if !ok {
				a.errorf(diag.SemanticDeclaration, t.Line(), "variant discriminant %q is not a declared field", t.Variant.Discriminant)
				return types.UnknownType
			}
			if !discType.IsOrdinal() {
				a.errorf(diag.SemanticDeclaration, t.Line(), "variant discriminant %q must be of ordinal type", t.Variant.Discriminant)
				return types.UnknownType
			}
			var branches []types.VariantBranch
			for _, br := range t.Variant.Branches {
				branchFields := make(map[string]*types.Type)
				for _, fg := range br.Fields {
					ft := a.resolveType(fg.Type, sc, "")
					if a.failed {
						return types.UnknownType
					}
					for _, fn := range fg.Names {
						if _, dup := fields[canon(fn)]; dup {
							a.errorf(diag.SemanticDeclaration, fg.Line(), "duplicate field %q in variant branch", fn)
							return types.UnknownType
						}
						branchFields[canon(fn)] = ft
						// Branch fields are reachable through the same
						// field-access path as ordinary fields; ISO 7185
						// leaves exclusivity unenforced at compile time.
						fields[canon(fn)] = ft
					}
				}
				branches = append(branches, types.VariantBranch{Fields: branchFields})
			}
			variant = &types.VariantInfo{
				Discriminant:     t.Variant.Discriminant,
				DiscriminantType: discType,
				Branches:         branches,
			}
		}
		return types.NewRecord(recName, fields, variant)

	default:
		a.errorf(diag.SemanticDeclaration, te.Line(), "unsupported type expression")
		return types.UnknownType
	}
}
