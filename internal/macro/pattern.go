package macro

import (
	"fmt"

	"rsfront/internal/token"
)

// FragKind is the fragment specifier of a `$name:kind` metavariable.
type FragKind uint8

const (
	FragInvalid FragKind = iota
	FragExpr
	FragIdent
	FragTy
	FragTT
	FragLiteral
	FragBlock
)

var fragKinds = map[string]FragKind{
	"expr":    FragExpr,
	"ident":   FragIdent,
	"ty":      FragTy,
	"tt":      FragTT,
	"literal": FragLiteral,
	"block":   FragBlock,
}

func (k FragKind) String() string {
	for name, v := range fragKinds {
		if v == k {
			return name
		}
	}
	return "invalid"
}

type matcherKind uint8

const (
	matchToken matcherKind = iota
	matchFrag
	matchRep
)

// matcher is one element of a compiled macro pattern.
type matcher struct {
	kind   matcherKind
	tok    token.Token // literal token, or separator of a repetition
	name   string
	frag   FragKind
	sub    []matcher
	hasSep bool
	op     token.Kind // Star | Plus | Question
}

func isRepOp(k token.Kind) bool {
	return k == token.Star || k == token.Plus || k == token.Question
}

// closeIndex returns the index of the delimiter closing toks[open], or -1.
func closeIndex(toks []token.Token, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch {
		case toks[i].Kind.IsOpenDelim():
			depth++
		case toks[i].Kind.IsCloseDelim():
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func compilePattern(toks []token.Token) ([]matcher, error) {
	seen := make(map[string]bool)
	return compileSeq(toks, seen)
}

func compileSeq(toks []token.Token, seen map[string]bool) ([]matcher, error) {
	var out []matcher
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Kind != token.Dollar {
			out = append(out, matcher{kind: matchToken, tok: t})
			continue
		}
		if i+1 >= len(toks) {
			return nil, fmt.Errorf("unexpected end of macro pattern after '$'")
		}
		next := toks[i+1]
		switch {
		case next.Kind == token.LParen:
			end := closeIndex(toks, i+1)
			if end < 0 {
				return nil, fmt.Errorf("unclosed repetition in macro pattern")
			}
			sub, err := compileSeq(toks[i+2:end], seen)
			if err != nil {
				return nil, err
			}
			m := matcher{kind: matchRep, sub: sub}
			j := end + 1
			if j < len(toks) && !isRepOp(toks[j].Kind) {
				m.tok, m.hasSep = toks[j], true
				j++
			}
			if j >= len(toks) || !isRepOp(toks[j].Kind) {
				return nil, fmt.Errorf("expected one of '*', '+' or '?' after repetition")
			}
			m.op = toks[j].Kind
			out = append(out, m)
			i = j
		case next.IsIdentLike():
			if i+3 >= len(toks) || toks[i+2].Kind != token.Colon {
				return nil, fmt.Errorf("missing fragment specifier for $%s", next.Text)
			}
			kind, ok := fragKinds[toks[i+3].Text]
			if !ok {
				return nil, fmt.Errorf("invalid fragment specifier %q", toks[i+3].Text)
			}
			if seen[next.Text] {
				return nil, fmt.Errorf("duplicate matcher binding $%s", next.Text)
			}
			seen[next.Text] = true
			out = append(out, matcher{kind: matchFrag, name: next.Text, frag: kind})
			i += 3
		default:
			return nil, fmt.Errorf("expected identifier or '(' after '$', got %s", next)
		}
	}
	return out, nil
}

// names lists the metavariables bound inside a matcher sequence.
func names(ms []matcher, out []string) []string {
	for _, m := range ms {
		switch m.kind {
		case matchFrag:
			out = append(out, m.name)
		case matchRep:
			out = names(m.sub, out)
		}
	}
	return out
}
