package sema

import (
	"rsfront/internal/ast"
	"rsfront/internal/symbols"
	"rsfront/internal/types"
)

// adtShape is the body of an ADT declaration in terms of its own
// parameters; instances substitute their arguments into it.
type adtShape struct {
	fields   []types.Field
	variants []types.Variant
	decls    []ast.FieldDecl
}

func (tc *typeChecker) adtShape(item symbols.ItemID) *adtShape {
	if sh, ok := tc.shapes[item]; ok {
		return sh
	}
	sh := &adtShape{}
	tc.shapes[item] = sh
	d := tc.decl(item)
	if d == nil {
		return sh
	}
	env := tc.envFor(item)
	switch data := d.Data.(type) {
	case *ast.StructItem:
		sh.fields = tc.resolveFields(data.Fields, env)
		sh.decls = data.Fields
	case *ast.EnumItem:
		sh.variants = make([]types.Variant, len(data.Variants))
		for i, v := range data.Variants {
			fields := make([]types.TypeID, len(v.Fields))
			for j, f := range v.Fields {
				fields[j] = tc.resolveType(f, env)
			}
			sh.variants[i] = types.Variant{Name: v.Name, Fields: fields}
		}
	}
	return sh
}

func (tc *typeChecker) resolveFields(decls []ast.FieldDecl, env *typeEnv) []types.Field {
	out := make([]types.Field, len(decls))
	for i, f := range decls {
		out[i] = types.Field{Name: f.Name, Type: tc.resolveType(f.Type, env)}
	}
	return out
}

// fillAdt is the interner hook computing the body of one ADT instance.
func (tc *typeChecker) fillAdt(id types.TypeID) {
	info, ok := tc.types.AdtHeader(id)
	if !ok {
		return
	}
	item := symbols.ItemID(info.Item)
	sh := tc.adtShape(item)
	s := substOf(tc.paramsOf(item), info.Args)
	var fields []types.Field
	if sh.fields != nil {
		fields = make([]types.Field, len(sh.fields))
		for i, f := range sh.fields {
			fields[i] = types.Field{Name: f.Name, Type: tc.types.Subst(f.Type, s)}
		}
	}
	var variants []types.Variant
	if sh.variants != nil {
		variants = make([]types.Variant, len(sh.variants))
		for i, v := range sh.variants {
			variants[i] = types.Variant{Name: v.Name, Fields: tc.types.SubstAll(v.Fields, s)}
		}
	}
	tc.types.SetAdtBody(id, fields, variants)
}
