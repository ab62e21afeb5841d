package ast

import "rsfront/internal/source"

type StmtKind uint8

const (
	StmtLet StmtKind = iota
	StmtExpr
)

type Stmt struct {
	Kind StmtKind
	Span source.Span
	Data StmtData
}

type StmtData interface {
	stmtData()
}

type LetData struct {
	Pat  PatID
	Type TypeID
	Init ExprID
}

func (*LetData) stmtData() {}

type ExprStmtData struct {
	X    ExprID
	Semi bool
}

func (*ExprStmtData) stmtData() {}
