package ast

import "rsfront/internal/source"

// Builder owns every arena of one compilation unit. Macro expansion allocates
// into the same arenas, so IDs stay valid across phases.
type Builder struct {
	Files *Arena[File]
	Items *Arena[Item]
	Exprs *Arena[Expr]
	Stmts *Arena[Stmt]
	Types *Arena[TypeExpr]
	Pats  *Arena[Pat]
}

type Hints struct{ Files, Items, Exprs, Stmts, Types, Pats uint }

func NewBuilder(h Hints) *Builder {
	if h.Files == 0 {
		h.Files = 2
	}
	if h.Items == 0 {
		h.Items = 1 << 6
	}
	if h.Exprs == 0 {
		h.Exprs = 1 << 8
	}
	if h.Stmts == 0 {
		h.Stmts = 1 << 7
	}
	if h.Types == 0 {
		h.Types = 1 << 7
	}
	if h.Pats == 0 {
		h.Pats = 1 << 6
	}
	return &Builder{
		Files: NewArena[File](h.Files),
		Items: NewArena[Item](h.Items),
		Exprs: NewArena[Expr](h.Exprs),
		Stmts: NewArena[Stmt](h.Stmts),
		Types: NewArena[TypeExpr](h.Types),
		Pats:  NewArena[Pat](h.Pats),
	}
}

func (b *Builder) NewFile(id source.FileID, span source.Span, items []ItemID) FileID {
	return FileID(b.Files.Allocate(File{Source: id, Span: span, Items: items}))
}

func (b *Builder) File(id FileID) *File { return b.Files.Get(uint32(id)) }

func (b *Builder) NewItem(it Item) ItemID { return ItemID(b.Items.Allocate(it)) }

func (b *Builder) Item(id ItemID) *Item { return b.Items.Get(uint32(id)) }

func (b *Builder) NewExpr(kind ExprKind, span source.Span, data ExprData) ExprID {
	return ExprID(b.Exprs.Allocate(Expr{Kind: kind, Span: span, Data: data}))
}

func (b *Builder) Expr(id ExprID) *Expr { return b.Exprs.Get(uint32(id)) }

func (b *Builder) NewStmt(kind StmtKind, span source.Span, data StmtData) StmtID {
	return StmtID(b.Stmts.Allocate(Stmt{Kind: kind, Span: span, Data: data}))
}

func (b *Builder) Stmt(id StmtID) *Stmt { return b.Stmts.Get(uint32(id)) }

func (b *Builder) NewType(t TypeExpr) TypeID { return TypeID(b.Types.Allocate(t)) }

func (b *Builder) Type(id TypeID) *TypeExpr { return b.Types.Get(uint32(id)) }

func (b *Builder) NewPat(kind PatKind, span source.Span, data PatData) PatID {
	return PatID(b.Pats.Allocate(Pat{Kind: kind, Span: span, Data: data}))
}

func (b *Builder) Pat(id PatID) *Pat { return b.Pats.Get(uint32(id)) }
