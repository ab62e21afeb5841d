package parser

import (
	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/token"
)

// collectTree забирает сбалансированное дерево токенов вместе с внешними скобками.
func (p *Parser) collectTree() []token.Token {
	open := p.peek()
	if !open.Kind.IsOpenDelim() {
		p.err(diag.SynUnexpectedToken, "expected delimited token tree, got "+describe(open))
		return nil
	}
	stack := []token.Kind{open.Kind.MatchingClose()}
	out := []token.Token{p.advance()}
	for len(stack) > 0 {
		t := p.peek()
		switch {
		case t.Kind == token.EOF:
			p.errAt(diag.SynUnclosedDelimiter, open.Span, "unclosed delimiter '"+open.Kind.String()+"'")
			return nil
		case t.Kind.IsOpenDelim():
			stack = append(stack, t.Kind.MatchingClose())
		case t.Kind.IsCloseDelim():
			if t.Kind != stack[len(stack)-1] {
				p.errAt(diag.SynUnclosedDelimiter, t.Span, "mismatched closing delimiter '"+t.Kind.String()+"'")
				return nil
			}
			stack = stack[:len(stack)-1]
		}
		out = append(out, p.advance())
	}
	return out
}

// parseMacroRules: macro_rules! name { (pattern) => { body }; ... }
func (p *Parser) parseMacroRules(mods itemMods) (ast.ItemID, bool) {
	p.advance() // macro_rules
	p.advance() // !
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	outer := p.collectTree()
	if outer == nil {
		return ast.NoItemID, false
	}
	if outer[0].Kind != token.LBrace {
		if _, ok = p.expect(token.Semicolon, diag.SynUnexpectedToken, "expected ';' after macro_rules!"); !ok {
			return ast.NoItemID, false
		}
	}

	data := &ast.MacroRulesItem{}
	sub := newParser(outer[1:len(outer)-1], p.arenas, p.opts)
	defer func() { p.opts.CurrentErrors = sub.opts.CurrentErrors }()
	for !sub.at(token.EOF) {
		start := sub.peek().Span
		pattern := sub.collectTree()
		if pattern == nil {
			sub.errAt(diag.SynBadMacroRules, start, "expected macro matcher in parentheses")
			return ast.NoItemID, false
		}
		if _, ok = sub.expect(token.FatArrow, diag.SynBadMacroRules, "expected '=>' after macro matcher"); !ok {
			return ast.NoItemID, false
		}
		body := sub.collectTree()
		if body == nil {
			sub.errAt(diag.SynBadMacroRules, sub.diagSpan(), "expected macro transcriber")
			return ast.NoItemID, false
		}
		data.Rules = append(data.Rules, ast.MacroRule{
			Pattern: pattern[1 : len(pattern)-1],
			Body:    body[1 : len(body)-1],
			Span:    start.Cover(sub.lastSpan),
		})
		if !sub.eat(token.Semicolon) && !sub.at(token.EOF) {
			sub.errAt(diag.SynBadMacroRules, sub.diagSpan(), "expected ';' between macro rules")
			return ast.NoItemID, false
		}
	}
	if len(data.Rules) == 0 {
		sub.errAt(diag.SynBadMacroRules, nameSpan, "macro_rules! needs at least one rule")
		return ast.NoItemID, false
	}
	return p.newItem(ast.ItemMacroRules, mods, name, nameSpan, data), true
}
