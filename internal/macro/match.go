package macro

import (
	"rsfront/internal/ast"
	"rsfront/internal/parser"
	"rsfront/internal/token"
)

// Fragment is the token run captured by a metavariable.
type Fragment struct {
	Kind   FragKind
	Tokens []token.Token
}

// binding is either a captured fragment or, for metavariables under a
// repetition, one nested environment per iteration.
type binding struct {
	frag *Fragment
	reps []bindings
}

type bindings map[string]*binding

// matchState carries a scratch arena for fragment parsing; nodes created
// there are thrown away.
type matchState struct {
	scratch *ast.Builder
}

func newMatchState() *matchState {
	return &matchState{scratch: ast.NewBuilder(ast.Hints{})}
}

// match reports whether pattern consumes the whole input.
func (s *matchState) match(pattern []matcher, input []token.Token) (bindings, bool) {
	env := make(bindings)
	pos, ok := s.matchSeq(pattern, input, 0, env)
	if !ok || pos != len(input) {
		return nil, false
	}
	return env, true
}

func (s *matchState) matchSeq(pattern []matcher, input []token.Token, pos int, env bindings) (int, bool) {
	for _, m := range pattern {
		var ok bool
		switch m.kind {
		case matchToken:
			if pos >= len(input) || !sameToken(input[pos], m.tok) {
				return pos, false
			}
			pos++
		case matchFrag:
			var n int
			if n, ok = s.matchFragment(m.frag, input[pos:]); !ok {
				return pos, false
			}
			env[m.name] = &binding{frag: &Fragment{Kind: m.frag, Tokens: input[pos : pos+n]}}
			pos += n
		case matchRep:
			if pos, ok = s.matchRep(m, input, pos, env); !ok {
				return pos, false
			}
		}
	}
	return pos, true
}

// matchRep matches greedily without backtracking.
func (s *matchState) matchRep(m matcher, input []token.Token, pos int, env bindings) (int, bool) {
	var iters []bindings
	for {
		if m.op == token.Question && len(iters) == 1 {
			break
		}
		q := pos
		if len(iters) > 0 && m.hasSep {
			if q >= len(input) || !sameToken(input[q], m.tok) {
				break
			}
			q++
		}
		inner := make(bindings)
		next, ok := s.matchSeq(m.sub, input, q, inner)
		if !ok || next == q {
			break
		}
		iters = append(iters, inner)
		pos = next
	}
	if m.op == token.Plus && len(iters) == 0 {
		return pos, false
	}
	for _, name := range names(m.sub, nil) {
		env[name] = &binding{reps: iters}
	}
	return pos, true
}

func (s *matchState) matchFragment(kind FragKind, input []token.Token) (int, bool) {
	if len(input) == 0 {
		return 0, false
	}
	first := input[0]
	switch kind {
	case FragIdent:
		return 1, first.IsIdentLike() && first.Kind != token.Underscore
	case FragLiteral:
		if first.IsLiteral() {
			return 1, true
		}
		if first.Kind == token.Minus && len(input) > 1 &&
			(input[1].Kind == token.IntLit || input[1].Kind == token.FloatLit) {
			return 2, true
		}
		return 0, false
	case FragTT:
		if first.Kind.IsCloseDelim() {
			return 0, false
		}
		if first.Kind.IsOpenDelim() {
			end := closeIndex(input, 0)
			return end + 1, end > 0
		}
		return 1, true
	case FragBlock:
		if first.Kind != token.LBrace {
			return 0, false
		}
		end := closeIndex(input, 0)
		return end + 1, end > 0
	case FragExpr:
		_, n, ok := parser.ParseExpr(s.scratch, input, parser.Options{})
		return n, ok && n > 0
	case FragTy:
		_, n, ok := parser.ParseType(s.scratch, input, parser.Options{})
		return n, ok && n > 0
	}
	return 0, false
}

func sameToken(a, b token.Token) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case token.Ident, token.IntLit, token.FloatLit, token.StringLit:
		return a.Text == b.Text
	}
	return true
}
