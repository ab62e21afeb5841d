package consteval

import (
	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/types"
)

// Resolver answers name-dependent questions during folding.
type Resolver interface {
	// Const folds the `const` item named by path. ok is false when the path
	// does not name a constant.
	Const(path *ast.Path, hint Hint) (v Value, ok bool, err error)
	// Call folds a call of a constant intrinsic such as `size_of::<T>()`.
	Call(callee *ast.Path, args []ast.ExprID, hint Hint) (v Value, ok bool, err error)
}

// Evaluator folds AST expressions of one compilation unit.
type Evaluator struct {
	AST      *ast.Builder
	Resolver Resolver
	PtrBytes int
}

func New(b *ast.Builder, r Resolver, ptrBytes int) *Evaluator {
	if ptrBytes <= 0 {
		ptrBytes = 8
	}
	return &Evaluator{AST: b, Resolver: r, PtrBytes: ptrBytes}
}

// Length folds an array length; the result is always usize.
func (e *Evaluator) Length(id ast.ExprID) (uint64, error) {
	v, err := e.Eval(id, UsizeHint)
	if err != nil {
		return 0, err
	}
	return v.Bits, nil
}

// Eval folds id; the result has the hinted type when hint is set.
func (e *Evaluator) Eval(id ast.ExprID, hint Hint) (Value, error) {
	v, err := e.eval(id, hint)
	if err != nil {
		return Value{}, err
	}
	if hint != NoHint && v.hint() != hint {
		return Value{}, mismatch(e.AST.Expr(id).Span, hint, v.hint())
	}
	return v, nil
}

func (e *Evaluator) eval(id ast.ExprID, hint Hint) (Value, error) {
	x := e.AST.Expr(id)
	if x == nil {
		return Value{}, &Error{Code: diag.ConstNotConstant, Msg: "missing constant expression"}
	}
	switch data := x.Data.(type) {
	case *ast.LitData:
		return e.literal(x, data, hint)
	case *ast.ParenData:
		return e.eval(data.X, hint)
	case *ast.BlockData:
		if len(data.Stmts) != 0 || !data.Tail.IsValid() {
			return Value{}, notConstant(x.Span, "block with statements")
		}
		return e.eval(data.Tail, hint)
	case *ast.UnaryData:
		return e.unary(x, data, hint)
	case *ast.BinaryData:
		return e.binary(x, data, hint)
	case *ast.CastData:
		return e.cast(x, data)
	case *ast.PathData:
		if e.Resolver != nil {
			v, ok, err := e.Resolver.Const(&data.Path, hint)
			if err != nil {
				return Value{}, err
			}
			if ok {
				return v, nil
			}
		}
		return Value{}, notConstant(x.Span, "non-constant value `"+data.Path.String()+"`")
	case *ast.CallData:
		callee := e.AST.Expr(data.Callee)
		if p, ok := callee.Data.(*ast.PathData); ok && e.Resolver != nil {
			v, ok, err := e.Resolver.Call(&p.Path, data.Args, hint)
			if err != nil {
				return Value{}, err
			}
			if ok {
				return v, nil
			}
		}
		return Value{}, notConstant(x.Span, "function call")
	}
	return Value{}, notConstant(x.Span, "this expression")
}

func (e *Evaluator) literal(x *ast.Expr, lit *ast.LitData, hint Hint) (Value, error) {
	switch lit.Kind {
	case ast.LitBool:
		return Bool(lit.Bool), nil
	case ast.LitInt:
		t := hint
		if lit.Suffix != "" {
			var ok bool
			if t, ok = HintFor(lit.Suffix); !ok || !t.integer() {
				return Value{}, notConstant(x.Span, "literal with suffix `"+lit.Suffix+"`")
			}
		} else if !t.integer() {
			t = i32Hint
		}
		ok := fitsUnsigned(lit.Int, t.Width, e.PtrBytes)
		if t.Kind == types.KindInt {
			// `-128i8` разбирается как унарный минус над 128
			ok = lit.Int <= mask(t.Width, e.PtrBytes)>>1+1
		}
		if !ok {
			return Value{}, &Error{Code: diag.ConstOverflow, Span: x.Span, Msg: "literal out of range for `" + t.String() + "`"}
		}
		return e.wrap(Value{Kind: t.Kind, Width: t.Width, Bits: lit.Int}), nil
	}
	return Value{}, notConstant(x.Span, "non-integer literal")
}

func (e *Evaluator) unary(x *ast.Expr, u *ast.UnaryData, hint Hint) (Value, error) {
	v, err := e.eval(u.X, hint)
	if err != nil {
		return Value{}, err
	}
	switch u.Op {
	case ast.UnNeg:
		if !v.Signed() {
			return Value{}, &Error{Code: diag.SemaTypeMismatch, Span: x.Span, Msg: "cannot apply unary operator `-` to type `" + v.hint().String() + "`"}
		}
		r := -v.Int64()
		if v.Int64() != 0 && r == v.Int64() || !fitsSigned(r, v.Width, e.PtrBytes) {
			return Value{}, overflow(x.Span, "-"+v.String(), v.hint())
		}
		return e.wrap(Value{Kind: v.Kind, Width: v.Width, Bits: uint64(r)}), nil
	case ast.UnNot:
		if v.IsBool() {
			return Bool(v.Bits == 0), nil
		}
		return e.wrap(Value{Kind: v.Kind, Width: v.Width, Bits: ^v.Bits}), nil
	}
	return Value{}, notConstant(x.Span, "dereference")
}

func (e *Evaluator) cast(x *ast.Expr, c *ast.CastData) (Value, error) {
	te := e.AST.Type(c.Type)
	if te == nil || te.Kind != ast.TypePath || !te.Path.Single() {
		return Value{}, notConstant(x.Span, "cast to a non-primitive type")
	}
	to, ok := HintFor(te.Path.Segments[0].Name)
	if !ok || !to.integer() {
		return Value{}, notConstant(x.Span, "cast to `"+te.Path.String()+"`")
	}
	v, err := e.eval(c.X, NoHint)
	if err != nil {
		return Value{}, err
	}
	bits := v.Bits
	if v.Signed() {
		bits = uint64(v.Int64())
	}
	return e.wrap(Value{Kind: to.Kind, Width: to.Width, Bits: bits}), nil
}

// wrap truncates Bits to the value's width.
func (e *Evaluator) wrap(v Value) Value {
	if v.IsBool() {
		return v
	}
	v.Bits &= mask(v.Width, e.PtrBytes)
	return v
}
