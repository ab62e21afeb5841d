package ast

// Inspect walks the expression tree rooted at id in pre-order. When fn returns
// false the children of that node are skipped. The node is re-read after fn
// returns, so fn may rewrite it in place and the walk continues into the new
// children.
func (b *Builder) Inspect(id ExprID, fn func(ExprID) bool) {
	if !id.IsValid() || !fn(id) {
		return
	}
	x := b.Expr(id)
	switch d := x.Data.(type) {
	case *UnaryData:
		b.Inspect(d.X, fn)
	case *AddrOfData:
		b.Inspect(d.X, fn)
	case *BinaryData:
		b.Inspect(d.X, fn)
		b.Inspect(d.Y, fn)
	case *AssignData:
		b.Inspect(d.Target, fn)
		b.Inspect(d.Value, fn)
	case *CastData:
		b.Inspect(d.X, fn)
		b.InspectType(d.Type, fn)
	case *CallData:
		b.Inspect(d.Callee, fn)
		for _, a := range d.Args {
			b.Inspect(a, fn)
		}
	case *MethodCallData:
		b.Inspect(d.Receiver, fn)
		for _, a := range d.Args {
			b.Inspect(a, fn)
		}
	case *FieldData:
		b.Inspect(d.X, fn)
	case *IndexData:
		b.Inspect(d.X, fn)
		b.Inspect(d.Index, fn)
	case *RangeData:
		b.Inspect(d.Start, fn)
		b.Inspect(d.End, fn)
	case *StructLitData:
		for _, f := range d.Fields {
			b.Inspect(f.Value, fn)
		}
	case *ArrayData:
		for _, e := range d.Elems {
			b.Inspect(e, fn)
		}
	case *RepeatData:
		b.Inspect(d.Value, fn)
		b.Inspect(d.Count, fn)
	case *TupleData:
		for _, e := range d.Elems {
			b.Inspect(e, fn)
		}
	case *ParenData:
		b.Inspect(d.X, fn)
	case *BlockData:
		for _, s := range d.Stmts {
			b.InspectStmt(s, fn)
		}
		b.Inspect(d.Tail, fn)
	case *IfData:
		b.Inspect(d.Cond, fn)
		b.Inspect(d.Then, fn)
		b.Inspect(d.Else, fn)
	case *WhileData:
		b.Inspect(d.Cond, fn)
		b.Inspect(d.Body, fn)
	case *LoopData:
		b.Inspect(d.Body, fn)
	case *BreakData:
		b.Inspect(d.Value, fn)
	case *ReturnData:
		b.Inspect(d.Value, fn)
	case *MatchData:
		b.Inspect(d.Scrutinee, fn)
		for _, arm := range d.Arms {
			b.Inspect(arm.Guard, fn)
			b.Inspect(arm.Body, fn)
		}
	}
}

// InspectStmt walks the expressions of a statement, including array lengths
// in a let type annotation.
func (b *Builder) InspectStmt(id StmtID, fn func(ExprID) bool) {
	if !id.IsValid() {
		return
	}
	switch d := b.Stmt(id).Data.(type) {
	case *LetData:
		b.InspectType(d.Type, fn)
		b.Inspect(d.Init, fn)
	case *ExprStmtData:
		b.Inspect(d.X, fn)
	}
}

// InspectType walks array length expressions nested in a type.
func (b *Builder) InspectType(id TypeID, fn func(ExprID) bool) {
	if !id.IsValid() {
		return
	}
	t := b.Type(id)
	switch t.Kind {
	case TypeRef, TypePtr, TypeSlice:
		b.InspectType(t.Elem, fn)
	case TypeArray:
		b.InspectType(t.Elem, fn)
		b.Inspect(t.Len, fn)
	case TypePath:
		if t.Path != nil {
			for _, seg := range t.Path.Segments {
				for _, a := range seg.Args {
					b.InspectType(a, fn)
				}
			}
		}
	}
}

// InspectItem walks every expression owned by an item, descending into
// nested items of modules, impls, traits and extern blocks.
func (b *Builder) InspectItem(id ItemID, fn func(ExprID) bool) {
	if !id.IsValid() {
		return
	}
	switch d := b.Item(id).Data.(type) {
	case *FnItem:
		for _, p := range d.Params {
			b.InspectType(p.Type, fn)
		}
		b.InspectType(d.Ret, fn)
		b.Inspect(d.Body, fn)
	case *StructItem:
		for _, f := range d.Fields {
			b.InspectType(f.Type, fn)
		}
	case *EnumItem:
		for _, v := range d.Variants {
			for _, f := range v.Fields {
				b.InspectType(f, fn)
			}
		}
	case *ConstItem:
		b.InspectType(d.Type, fn)
		b.Inspect(d.Value, fn)
	case *TypeAliasItem:
		b.InspectType(d.Type, fn)
	case *ModItem:
		for _, it := range d.Items {
			b.InspectItem(it, fn)
		}
	case *ImplItem:
		for _, it := range d.Items {
			b.InspectItem(it, fn)
		}
	case *TraitItem:
		for _, it := range d.Items {
			b.InspectItem(it, fn)
		}
	case *ExternBlockItem:
		for _, it := range d.Items {
			b.InspectItem(it, fn)
		}
	}
}
