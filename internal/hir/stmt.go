package hir

import "rsfront/internal/source"

// StmtKind enumerates HIR statement kinds.
type StmtKind uint8

const (
	// StmtLet binds Local; a `let _ = x` has no local.
	StmtLet StmtKind = iota
	StmtExpr
)

// Stmt represents an HIR statement.
type Stmt struct {
	Kind StmtKind
	Span source.Span
	Data StmtData
}

// StmtData is the interface for statement-specific data.
type StmtData interface {
	stmtData()
}

type LetData struct {
	Local LocalID
	Init  *Expr // nil for deferred initialization
}

func (LetData) stmtData() {}

type ExprStmtData struct {
	X *Expr
}

func (ExprStmtData) stmtData() {}
