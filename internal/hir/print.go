package hir

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"rsfront/internal/types"
)

// Printer is used to dump HIR to a Rust-like text format.
type Printer struct {
	w        io.Writer
	m        *Module
	interner *types.Interner
	fn       *Func
	indent   int
	err      error
}

// NewPrinter creates a new HIR printer.
func NewPrinter(w io.Writer, m *Module) *Printer {
	return &Printer{w: w, m: m, interner: m.Types}
}

// Dump writes the HIR module to the writer.
func Dump(w io.Writer, m *Module) error {
	return NewPrinter(w, m).PrintModule()
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) newline() {
	p.printf("\n%s", strings.Repeat("    ", p.indent))
}

func (p *Printer) typeStr(id types.TypeID) string {
	return types.Label(p.interner, id)
}

// PrintModule prints externs, statics and every function instance.
func (p *Printer) PrintModule() error {
	for _, e := range p.m.Externs {
		params := make([]string, 0, len(e.Params)+1)
		for _, t := range e.Params {
			params = append(params, p.typeStr(t))
		}
		if e.Variadic {
			params = append(params, "...")
		}
		p.printf("extern %q fn %s(%s) -> %s\n", e.ABI, e.Name, strings.Join(params, ", "), p.typeStr(e.Result))
	}
	for _, g := range p.m.Globals {
		mut := ""
		if g.Mutable {
			mut = "mut "
		}
		p.printf("static %s%s: %s = ", mut, g.Name, p.typeStr(g.Type))
		p.fn = nil
		p.expr(g.Init)
		p.printf("\n")
	}
	if len(p.m.Externs)+len(p.m.Globals) > 0 {
		p.printf("\n")
	}
	for i, f := range p.m.Funcs {
		if i > 0 {
			p.printf("\n")
		}
		p.PrintFunc(f)
	}
	return p.err
}

// PrintFunc prints one function instance.
func (p *Printer) PrintFunc(f *Func) {
	p.fn = f
	params := make([]string, len(f.Params))
	for i, id := range f.Params {
		l := f.Local(id)
		params[i] = l.Name + ": " + p.typeStr(l.Type)
	}
	p.printf("%sfn %s(%s) -> %s ", f.Flags, f.Name, strings.Join(params, ", "), p.typeStr(f.Result))
	p.expr(f.Body)
	p.printf("\n")
}

func (p *Printer) exprs(xs []*Expr) {
	for i, x := range xs {
		if i > 0 {
			p.printf(", ")
		}
		p.expr(x)
	}
}

func (p *Printer) localName(id LocalID) string {
	if p.fn == nil {
		return "?"
	}
	if l := p.fn.Local(id); l != nil {
		return l.Name
	}
	return "?"
}

func (p *Printer) literal(d LiteralData, t types.TypeID) string {
	switch d.Kind {
	case LiteralInt:
		tt, _ := p.interner.Lookup(t)
		s := strconv.FormatUint(d.Bits, 10)
		if tt.Kind == types.KindInt {
			s = strconv.FormatInt(signExtend(d.Bits, tt.Width), 10)
		}
		s += p.typeStr(t)
		if d.SizeOf != types.NoTypeID {
			s += " /* size_of::<" + p.typeStr(d.SizeOf) + ">() */"
		}
		return s
	case LiteralFloat:
		return strconv.FormatFloat(d.Float, 'g', -1, 64) + p.typeStr(t)
	case LiteralBool:
		return strconv.FormatBool(d.Bool)
	case LiteralStr:
		return strconv.Quote(d.Str)
	}
	return "()"
}

// signExtend interprets bits as a signed integer of width w.
func signExtend(bits uint64, w types.Width) int64 {
	n := uint(w)
	if w == types.WidthSize || w == types.WidthAny || n >= 64 {
		return int64(bits)
	}
	shift := 64 - n
	return int64(bits<<shift) >> shift
}

func (p *Printer) expr(e *Expr) {
	if e == nil {
		p.printf("<nil>")
		return
	}
	switch d := e.Data.(type) {
	case LiteralData:
		p.printf("%s", p.literal(d, e.Type))
	case LocalData:
		p.printf("%s", d.Name)
	case GlobalData:
		p.printf("%s", d.Name)
	case UnaryData:
		p.printf("%s", d.Op)
		p.expr(d.X)
	case BinaryData:
		p.printf("(")
		p.expr(d.X)
		p.printf(" %s ", d.Op)
		p.expr(d.Y)
		p.printf(")")
	case CastData:
		p.printf("(")
		p.expr(d.X)
		p.printf(" as %s)", p.typeStr(e.Type))
	case AddrOfData:
		switch {
		case p.interner.KindOf(e.Type) == types.KindPointer && d.Mutable:
			p.printf("&raw mut ")
		case p.interner.KindOf(e.Type) == types.KindPointer:
			p.printf("&raw const ")
		case d.Mutable:
			p.printf("&mut ")
		default:
			p.printf("&")
		}
		p.expr(d.X)
	case DerefData:
		p.printf("*")
		p.expr(d.X)
	case FieldData:
		p.expr(d.X)
		p.printf(".%s", d.Name)
	case IndexData:
		p.expr(d.X)
		p.printf("[")
		p.expr(d.Index)
		p.printf("]")
	case SliceData:
		p.expr(d.X)
		p.printf("[")
		if d.Range != nil {
			p.expr(d.Range)
			p.printf("]")
			break
		}
		if d.Start != nil {
			p.expr(d.Start)
		}
		p.printf("..")
		if d.End != nil {
			p.expr(d.End)
		}
		p.printf("]")
	case UnsizeData:
		p.printf("unsize(")
		p.expr(d.X)
		p.printf(")")
	case CallData:
		name := "?"
		if f := p.m.Func(d.Func); f != nil {
			name = f.Name
		}
		p.printf("%s(", name)
		p.exprs(d.Args)
		p.printf(")")
	case ExternCallData:
		name := "?"
		if ex := p.m.Extern(d.Extern); ex != nil {
			name = ex.Name
		}
		p.printf("%s(", name)
		p.exprs(d.Args)
		p.printf(")")
	case StructData:
		p.printf("%s { ", p.typeStr(e.Type))
		info, _ := p.interner.AdtInfo(e.Type)
		for i, f := range d.Fields {
			if i > 0 {
				p.printf(", ")
			}
			if info != nil && i < len(info.Fields) {
				p.printf("%s: ", info.Fields[i].Name)
			}
			p.expr(f)
		}
		p.printf(" }")
	case VariantData:
		p.printf("%s::%s", p.typeStr(e.Type), d.Name)
		if len(d.Fields) > 0 {
			p.printf("(")
			p.exprs(d.Fields)
			p.printf(")")
		}
	case UnionData:
		p.printf("%s { %s: ", p.typeStr(e.Type), d.Name)
		p.expr(d.Value)
		p.printf(" }")
	case ArrayData:
		p.printf("[")
		p.exprs(d.Elems)
		p.printf("]")
	case RepeatData:
		p.printf("[")
		p.expr(d.Value)
		p.printf("; %d]", d.Count)
	case BlockData:
		p.block(d)
	case IfData:
		p.printf("if ")
		p.expr(d.Cond)
		p.printf(" ")
		p.expr(d.Then)
		if d.Else != nil {
			p.printf(" else ")
			p.expr(d.Else)
		}
	case LoopData:
		p.printf("loop ")
		p.expr(d.Body)
	case BreakData:
		p.printf("break")
		if d.Value != nil {
			p.printf(" ")
			p.expr(d.Value)
		}
	case ContinueData:
		p.printf("continue")
	case ReturnData:
		p.printf("return")
		if d.Value != nil {
			p.printf(" ")
			p.expr(d.Value)
		}
	case AssignData:
		p.expr(d.Target)
		p.printf(" %s= ", d.Op)
		p.expr(d.Value)
	case MatchData:
		p.printf("match ")
		p.expr(d.Scrutinee)
		p.printf(" {")
		p.indent++
		for _, arm := range d.Arms {
			p.newline()
			p.pat(arm.Pat)
			if arm.Guard != nil {
				p.printf(" if ")
				p.expr(arm.Guard)
			}
			p.printf(" => ")
			p.expr(arm.Body)
			p.printf(",")
		}
		p.indent--
		p.newline()
		p.printf("}")
	case TransmuteData:
		p.printf("transmute::<%s, %s>(", p.typeStr(d.X.Type), p.typeStr(e.Type))
		p.expr(d.X)
		p.printf(")")
	case OffsetData:
		p.printf("offset(")
		p.expr(d.Ptr)
		p.printf(", ")
		p.expr(d.Count)
		p.printf(") /* stride %d */", d.Stride)
	default:
		p.printf("<%s>", e.Kind)
	}
}

func (p *Printer) block(d BlockData) {
	if d.Unsafe {
		p.printf("unsafe ")
	}
	if len(d.Stmts) == 0 && d.Tail == nil {
		p.printf("{}")
		return
	}
	p.printf("{")
	p.indent++
	for _, st := range d.Stmts {
		p.newline()
		switch sd := st.Data.(type) {
		case LetData:
			if !sd.Local.IsValid() {
				p.printf("let _")
			} else {
				l := p.fn.Local(sd.Local)
				mut := ""
				if l.Mutable {
					mut = "mut "
				}
				p.printf("let %s%s: %s", mut, l.Name, p.typeStr(l.Type))
			}
			if sd.Init != nil {
				p.printf(" = ")
				p.expr(sd.Init)
			}
			p.printf(";")
		case ExprStmtData:
			p.expr(sd.X)
			p.printf(";")
		}
	}
	if d.Tail != nil {
		p.newline()
		p.expr(d.Tail)
	}
	p.indent--
	p.newline()
	p.printf("}")
}

func (p *Printer) pat(pt *Pat) {
	if pt == nil {
		p.printf("_")
		return
	}
	switch pt.Kind {
	case PatWild:
		p.printf("_")
	case PatBind:
		p.printf("%s", p.localName(pt.Local))
	case PatLiteral:
		p.printf("%s", p.literal(pt.Value, pt.Type))
	case PatVariant:
		p.printf("%s::%s", p.typeStr(pt.Type), pt.Name)
		if len(pt.Fields) > 0 {
			p.printf("(")
			for i, f := range pt.Fields {
				if i > 0 {
					p.printf(", ")
				}
				p.pat(f)
			}
			p.printf(")")
		}
	}
}
