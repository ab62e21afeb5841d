package hir

// Walk visits e and its sub-expressions in evaluation order. Returning
// false from fn skips the children of that node.
func Walk(e *Expr, fn func(*Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, c := range Children(e) {
		Walk(c, fn)
	}
}

// Children lists direct sub-expressions of e, including let initializers
// and match guards.
func Children(e *Expr) []*Expr {
	var out []*Expr
	add := func(xs ...*Expr) {
		for _, x := range xs {
			if x != nil {
				out = append(out, x)
			}
		}
	}
	switch d := e.Data.(type) {
	case UnaryData:
		add(d.X)
	case BinaryData:
		add(d.X, d.Y)
	case CastData:
		add(d.X)
	case AddrOfData:
		add(d.X)
	case DerefData:
		add(d.X)
	case FieldData:
		add(d.X)
	case IndexData:
		add(d.X, d.Index)
	case SliceData:
		add(d.X, d.Start, d.End, d.Range)
	case UnsizeData:
		add(d.X)
	case CallData:
		add(d.Args...)
	case ExternCallData:
		add(d.Args...)
	case StructData:
		add(d.Fields...)
	case VariantData:
		add(d.Fields...)
	case UnionData:
		add(d.Value)
	case ArrayData:
		add(d.Elems...)
	case RepeatData:
		add(d.Value)
	case BlockData:
		for _, st := range d.Stmts {
			switch sd := st.Data.(type) {
			case LetData:
				add(sd.Init)
			case ExprStmtData:
				add(sd.X)
			}
		}
		add(d.Tail)
	case IfData:
		add(d.Cond, d.Then, d.Else)
	case LoopData:
		add(d.Body)
	case BreakData:
		add(d.Value)
	case ReturnData:
		add(d.Value)
	case AssignData:
		add(d.Target, d.Value)
	case MatchData:
		add(d.Scrutinee)
		for _, arm := range d.Arms {
			add(arm.Guard, arm.Body)
		}
	case TransmuteData:
		add(d.X)
	case OffsetData:
		add(d.Ptr, d.Count)
	}
	return out
}
