package macro

import (
	"fmt"
	"strconv"
	"strings"

	"rsfront/internal/ast"
	"rsfront/internal/parser"
	"rsfront/internal/source"
	"rsfront/internal/token"
)

// builtinFunc produces the expansion of a compiler-provided macro.
type builtinFunc func(e *Expander, call source.Span, args []token.Token) ([]token.Token, error)

var builtins map[string]builtinFunc

func init() {
	builtins = map[string]builtinFunc{
		"concat":    expandConcat,
		"file":      expandFile,
		"line":      expandLine,
		"column":    expandColumn,
		"stringify": expandStringify,
	}
}

// IsBuiltin reports whether name is a compiler-provided macro.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// splitArgs splits a macro argument list on top-level commas. A trailing
// comma is allowed.
func splitArgs(toks []token.Token) [][]token.Token {
	var (
		out   [][]token.Token
		start int
		depth int
	)
	for i, t := range toks {
		switch {
		case t.Kind.IsOpenDelim():
			depth++
		case t.Kind.IsCloseDelim():
			depth--
		case t.Kind == token.Comma && depth == 0:
			out = append(out, toks[start:i])
			start = i + 1
		}
	}
	if start < len(toks) {
		out = append(out, toks[start:])
	}
	return out
}

func expandConcat(_ *Expander, call source.Span, args []token.Token) ([]token.Token, error) {
	var sb strings.Builder
	for _, arg := range splitArgs(args) {
		neg := false
		if len(arg) == 2 && arg[0].Kind == token.Minus {
			neg, arg = true, arg[1:]
		}
		if len(arg) != 1 || !arg[0].IsLiteral() {
			return nil, fmt.Errorf("expected a literal in concat!")
		}
		lit, err := parser.DecodeLiteral(arg[0])
		if err != nil {
			return nil, err
		}
		if neg {
			if lit.Kind != ast.LitInt && lit.Kind != ast.LitFloat {
				return nil, fmt.Errorf("cannot negate a non-numeric literal in concat!")
			}
			sb.WriteByte('-')
		}
		switch lit.Kind {
		case ast.LitStr:
			sb.WriteString(lit.Str)
		case ast.LitInt:
			sb.WriteString(strconv.FormatUint(lit.Int, 10))
		case ast.LitFloat:
			sb.WriteString(strings.TrimSuffix(strings.TrimSuffix(arg[0].Text, "f32"), "f64"))
		case ast.LitBool:
			sb.WriteString(strconv.FormatBool(lit.Bool))
		}
	}
	return []token.Token{stringToken(call, sb.String())}, nil
}

func expandFile(e *Expander, call source.Span, args []token.Token) ([]token.Token, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("file! takes no arguments")
	}
	name := "<unknown>"
	if e.opts.Files != nil {
		if f := e.opts.Files.Get(call.File); f != nil {
			name = f.Path
		}
	}
	return []token.Token{stringToken(call, name)}, nil
}

func expandLine(e *Expander, call source.Span, args []token.Token) ([]token.Token, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("line! takes no arguments")
	}
	pos := e.position(call)
	return []token.Token{intToken(call, pos.Line)}, nil
}

func expandColumn(e *Expander, call source.Span, args []token.Token) ([]token.Token, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("column! takes no arguments")
	}
	pos := e.position(call)
	return []token.Token{intToken(call, pos.Col)}, nil
}

func expandStringify(_ *Expander, call source.Span, args []token.Token) ([]token.Token, error) {
	return []token.Token{stringToken(call, stringifyTokens(args))}, nil
}

// stringifyTokens joins token texts with single spaces, except around
// delimiters and before ',' ';' '.'.
func stringifyTokens(toks []token.Token) string {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 {
			prev := toks[i-1].Kind
			glue := prev.IsOpenDelim() || prev == token.Dot || prev == token.ColonColon ||
				t.Kind.IsCloseDelim() || t.Kind == token.Comma || t.Kind == token.Semicolon ||
				t.Kind == token.Dot || t.Kind == token.ColonColon ||
				(t.Kind == token.LParen && prev == token.Ident)
			if !glue {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(t.String())
	}
	return sb.String()
}

func stringToken(sp source.Span, s string) token.Token {
	return token.Token{Kind: token.StringLit, Span: sp, Text: quote(s)}
}

func intToken(sp source.Span, v uint32) token.Token {
	return token.Token{Kind: token.IntLit, Span: sp, Text: strconv.FormatUint(uint64(v), 10) + "u32"}
}

// quote produces a string literal the lexer reads back as s.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case 0:
			sb.WriteString(`\0`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
