package macro

import (
	"fmt"

	"rsfront/internal/source"
	"rsfront/internal/token"
)

// transcribe substitutes metavariables of body from env. Expression
// fragments are wrapped in parentheses so precedence survives substitution.
func transcribe(body []token.Token, env bindings) ([]token.Token, error) {
	var out []token.Token
	for i := 0; i < len(body); i++ {
		t := body[i]
		if t.Kind != token.Dollar || i+1 >= len(body) {
			out = append(out, t)
			continue
		}
		next := body[i+1]
		switch {
		case next.Kind == token.LParen:
			end := closeIndex(body, i+1)
			if end < 0 {
				return nil, fmt.Errorf("unclosed repetition in macro body")
			}
			j := end + 1
			var sep *token.Token
			if j < len(body) && !isRepOp(body[j].Kind) {
				sep = &body[j]
				j++
			}
			if j >= len(body) || !isRepOp(body[j].Kind) {
				return nil, fmt.Errorf("expected one of '*', '+' or '?' after repetition")
			}
			rep, err := transcribeRep(body[i+2:end], sep, env)
			if err != nil {
				return nil, err
			}
			out = append(out, rep...)
			i = j
		case next.IsIdentLike():
			b, ok := env[next.Text]
			if !ok {
				// не метапеременная: `$` остаётся как есть
				out = append(out, t)
				continue
			}
			if b.frag == nil {
				return nil, fmt.Errorf("variable $%s is still repeating at this depth", next.Text)
			}
			out = appendFragment(out, b.frag)
			i++
		default:
			out = append(out, t)
		}
	}
	return out, nil
}

func transcribeRep(body []token.Token, sep *token.Token, env bindings) ([]token.Token, error) {
	count := -1
	var repeating []string
	for i := 0; i+1 < len(body); i++ {
		if body[i].Kind != token.Dollar || !body[i+1].IsIdentLike() {
			continue
		}
		b, ok := env[body[i+1].Text]
		if !ok || b.frag != nil {
			continue
		}
		if count >= 0 && len(b.reps) != count {
			return nil, fmt.Errorf("meta-variable $%s repeats %d times, but another repeats %d times", body[i+1].Text, len(b.reps), count)
		}
		count = len(b.reps)
		repeating = append(repeating, body[i+1].Text)
	}
	if count < 0 {
		return nil, fmt.Errorf("repetition in macro body contains no repeating meta-variables")
	}
	var out []token.Token
	for k := 0; k < count; k++ {
		child := make(bindings, len(env))
		for name, b := range env {
			child[name] = b
		}
		for _, name := range repeating {
			for inner, b := range env[name].reps[k] {
				child[inner] = b
			}
		}
		piece, err := transcribe(body, child)
		if err != nil {
			return nil, err
		}
		if k > 0 && sep != nil {
			out = append(out, *sep)
		}
		out = append(out, piece...)
	}
	return out, nil
}

func appendFragment(out []token.Token, frag *Fragment) []token.Token {
	if frag.Kind != FragExpr || len(frag.Tokens) == 1 {
		return append(out, frag.Tokens...)
	}
	sp := frag.Tokens[0].Span.Cover(frag.Tokens[len(frag.Tokens)-1].Span)
	out = append(out, token.Token{Kind: token.LParen, Span: source.Span{File: sp.File, Start: sp.Start, End: sp.Start}, Text: "("})
	out = append(out, frag.Tokens...)
	return append(out, token.Token{Kind: token.RParen, Span: source.Span{File: sp.File, Start: sp.End, End: sp.End}, Text: ")"})
}
