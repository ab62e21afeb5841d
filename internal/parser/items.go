package parser

import (
	"rsfront/internal/ast"
	"rsfront/internal/diag"
	"rsfront/internal/source"
	"rsfront/internal/token"
)

type itemMods struct {
	attrs  []ast.Attr
	pub    bool
	unsafe bool
	konst  bool
	abi    string
	start  source.Span
}

// parseItem выбирает по первому токену нужный распознаватель item.
func (p *Parser) parseItem() (ast.ItemID, bool) {
	mods := itemMods{start: p.peek().Span}
	for p.at(token.Hash) {
		attr, ok := p.parseAttr()
		if !ok {
			return ast.NoItemID, false
		}
		mods.attrs = append(mods.attrs, attr)
	}
	mods.pub = p.parseVisibility()

	switch {
	case p.at(token.KwConst) && p.peekN(1).Kind == token.Ident:
		return p.parseConstItem(mods, false)
	case p.at(token.KwStatic):
		return p.parseConstItem(mods, true)
	case p.at(token.KwExtern) && p.peekN(1).Kind == token.StringLit && p.peekN(2).Kind == token.LBrace,
		p.at(token.KwExtern) && p.peekN(1).Kind == token.LBrace:
		return p.parseExternBlock(mods)
	case p.at(token.KwStruct):
		return p.parseStructItem(mods, ast.ItemStruct)
	case p.atIdent("union") && p.peekN(1).Kind == token.Ident:
		return p.parseStructItem(mods, ast.ItemUnion)
	case p.at(token.KwEnum):
		return p.parseEnumItem(mods)
	case p.at(token.KwMod):
		return p.parseModItem(mods)
	case p.at(token.KwType):
		return p.parseTypeAlias(mods)
	case p.atIdent("macro_rules") && p.peekN(1).Kind == token.Bang:
		return p.parseMacroRules(mods)
	}

	// модификаторы fn/impl/trait
	for {
		switch {
		case p.at(token.KwConst):
			p.advance()
			mods.konst = true
			continue
		case p.at(token.KwUnsafe):
			p.advance()
			mods.unsafe = true
			continue
		case p.at(token.KwExtern):
			p.advance()
			mods.abi = "C"
			if p.at(token.StringLit) {
				mods.abi = unquote(p.advance().Text)
			}
			continue
		}
		break
	}

	switch {
	case p.at(token.KwFn):
		return p.parseFnItem(mods)
	case p.at(token.KwImpl):
		return p.parseImplItem(mods)
	case p.at(token.KwTrait):
		return p.parseTraitItem(mods)
	default:
		p.err(diag.SynUnexpectedItem, "expected item, got "+describe(p.peek()))
		return ast.NoItemID, false
	}
}

// parseVisibility: `pub`, `pub(crate)`, `pub(super)`.
func (p *Parser) parseVisibility() bool {
	if !p.eat(token.KwPub) {
		return false
	}
	if p.at(token.LParen) {
		p.skipTree()
	}
	return true
}

// parseAttr разбирает `#[name]`, `#[name = "v"]`, `#[name(...)]` и внутренние `#![...]`.
func (p *Parser) parseAttr() (ast.Attr, bool) {
	start := p.advance().Span // '#'
	attr := ast.Attr{}
	if p.eat(token.Bang) {
		attr.Inner = true
	}
	if _, ok := p.expect(token.LBracket, diag.SynUnexpectedToken, "expected '[' after '#'"); !ok {
		return attr, false
	}
	name, _, ok := p.parseIdentLike()
	if !ok {
		return attr, false
	}
	attr.Name = name
	switch {
	case p.eat(token.Assign):
		lit := p.advance()
		attr.HasValue = true
		if lit.Kind == token.StringLit {
			attr.Value = unquote(lit.Text)
		} else {
			attr.Value = lit.Text
		}
	case p.at(token.LParen):
		tree := p.collectTree()
		if len(tree) >= 2 {
			attr.Args = tree[1 : len(tree)-1]
		}
	}
	end, ok := p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']' to close attribute")
	attr.Span = start.Cover(end.Span)
	return attr, ok
}

func (p *Parser) parseIdent() (string, source.Span, bool) {
	if p.at(token.Ident) {
		t := p.advance()
		return t.Text, t.Span, true
	}
	p.err(diag.SynExpectIdentifier, "expected identifier, got "+describe(p.peek()))
	return "", p.diagSpan(), false
}

// parseIdentLike принимает и ключевые слова (для атрибутов и путей self/Self/crate).
func (p *Parser) parseIdentLike() (string, source.Span, bool) {
	if p.peek().IsIdentLike() {
		t := p.advance()
		return t.Text, t.Span, true
	}
	return p.parseIdent()
}

func (p *Parser) newItem(kind ast.ItemKind, mods itemMods, name string, nameSpan source.Span, data ast.ItemData) ast.ItemID {
	return p.arenas.NewItem(ast.Item{
		Kind:     kind,
		Span:     mods.start.Cover(p.lastSpan),
		Name:     name,
		NameSpan: nameSpan,
		Attrs:    mods.attrs,
		Pub:      mods.pub,
		Data:     data,
	})
}

func (p *Parser) parseStructItem(mods itemMods, kind ast.ItemKind) (ast.ItemID, bool) {
	p.advance() // struct | union
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	data := &ast.StructItem{}
	data.Generics, ok = p.parseGenericParams()
	if !ok {
		return ast.NoItemID, false
	}
	p.parseWhere(&data.Generics)
	switch {
	case kind == ast.ItemStruct && p.eat(token.Semicolon):
		// unit struct
	case p.at(token.LBrace):
		data.Fields, ok = p.parseFieldDecls()
		if !ok {
			return ast.NoItemID, false
		}
	default:
		p.err(diag.SynUnexpectedToken, "expected '{' with field declarations, got "+describe(p.peek()))
		return ast.NoItemID, false
	}
	return p.newItem(kind, mods, name, nameSpan, data), true
}

func (p *Parser) parseFieldDecls() ([]ast.FieldDecl, bool) {
	p.advance() // '{'
	var fields []ast.FieldDecl
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		for p.at(token.Hash) {
			if _, ok := p.parseAttr(); !ok {
				return nil, false
			}
		}
		start := p.peek().Span
		pub := p.parseVisibility()
		name, _, ok := p.parseIdent()
		if !ok {
			return nil, false
		}
		if _, ok = p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' after field name"); !ok {
			return nil, false
		}
		ty, ok := p.parseType()
		if !ok {
			return nil, false
		}
		fields = append(fields, ast.FieldDecl{Name: name, Type: ty, Pub: pub, Span: start.Cover(p.lastSpan)})
		if !p.eat(token.Comma) {
			break
		}
	}
	_, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' after fields")
	return fields, ok
}

func (p *Parser) parseEnumItem(mods itemMods) (ast.ItemID, bool) {
	p.advance() // enum
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	data := &ast.EnumItem{}
	if data.Generics, ok = p.parseGenericParams(); !ok {
		return ast.NoItemID, false
	}
	p.parseWhere(&data.Generics)
	if _, ok = p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' after enum name"); !ok {
		return ast.NoItemID, false
	}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		for p.at(token.Hash) {
			if _, ok = p.parseAttr(); !ok {
				return ast.NoItemID, false
			}
		}
		vname, vspan, ok := p.parseIdent()
		if !ok {
			return ast.NoItemID, false
		}
		v := ast.VariantDecl{Name: vname, Span: vspan}
		if p.eat(token.LParen) {
			v.Tuple = true
			for !p.at(token.RParen) && !p.at(token.EOF) {
				ty, ok := p.parseType()
				if !ok {
					return ast.NoItemID, false
				}
				v.Fields = append(v.Fields, ty)
				if !p.eat(token.Comma) {
					break
				}
			}
			if _, ok = p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' after variant fields"); !ok {
				return ast.NoItemID, false
			}
		} else if p.at(token.LBrace) {
			p.err(diag.SynUnexpectedToken, "struct-like enum variants are not supported")
			return ast.NoItemID, false
		}
		v.Span = vspan.Cover(p.lastSpan)
		data.Variants = append(data.Variants, v)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok = p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' after enum variants"); !ok {
		return ast.NoItemID, false
	}
	return p.newItem(ast.ItemEnum, mods, name, nameSpan, data), true
}

func (p *Parser) parseModItem(mods itemMods) (ast.ItemID, bool) {
	p.advance() // mod
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	if p.at(token.Semicolon) {
		p.err(diag.SynUnexpectedItem, "out-of-line modules are not supported")
		return ast.NoItemID, false
	}
	if _, ok = p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' after module name"); !ok {
		return ast.NoItemID, false
	}
	items := p.parseItems(token.RBrace)
	if _, ok = p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close module"); !ok {
		return ast.NoItemID, false
	}
	return p.newItem(ast.ItemMod, mods, name, nameSpan, &ast.ModItem{Items: items}), true
}

func (p *Parser) parseConstItem(mods itemMods, static bool) (ast.ItemID, bool) {
	p.advance() // const | static
	data := &ast.ConstItem{}
	if static && p.eat(token.KwMut) {
		data.Mutable = true
	}
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	if _, ok = p.expect(token.Colon, diag.SynExpectType, "expected ':' and a type"); !ok {
		return ast.NoItemID, false
	}
	if data.Type, ok = p.parseType(); !ok {
		return ast.NoItemID, false
	}
	if _, ok = p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' with a value"); !ok {
		return ast.NoItemID, false
	}
	if data.Value, ok = p.parseExpr(); !ok {
		return ast.NoItemID, false
	}
	if _, ok = p.expect(token.Semicolon, diag.SynUnexpectedToken, "expected ';'"); !ok {
		return ast.NoItemID, false
	}
	kind := ast.ItemConst
	if static {
		kind = ast.ItemStatic
	}
	return p.newItem(kind, mods, name, nameSpan, data), true
}

// parseTypeAlias: `type X<T> = T;` и, внутри трейтов, `type Output: Bound;`.
func (p *Parser) parseTypeAlias(mods itemMods) (ast.ItemID, bool) {
	p.advance() // type
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	data := &ast.TypeAliasItem{}
	if data.Generics, ok = p.parseGenericParams(); !ok {
		return ast.NoItemID, false
	}
	if p.eat(token.Colon) {
		data.Bounds = p.parseBounds()
	}
	if p.eat(token.Assign) {
		if data.Type, ok = p.parseType(); !ok {
			return ast.NoItemID, false
		}
	}
	if _, ok = p.expect(token.Semicolon, diag.SynUnexpectedToken, "expected ';' after type alias"); !ok {
		return ast.NoItemID, false
	}
	return p.newItem(ast.ItemTypeAlias, mods, name, nameSpan, data), true
}

func (p *Parser) parseExternBlock(mods itemMods) (ast.ItemID, bool) {
	p.advance() // extern
	abi := "C"
	if p.at(token.StringLit) {
		abi = unquote(p.advance().Text)
	}
	p.advance() // '{'
	data := &ast.ExternBlockItem{ABI: abi}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		inner := itemMods{start: p.peek().Span}
		for p.at(token.Hash) {
			attr, ok := p.parseAttr()
			if !ok {
				return ast.NoItemID, false
			}
			inner.attrs = append(inner.attrs, attr)
		}
		inner.pub = p.parseVisibility()
		inner.abi = abi
		if p.eat(token.KwUnsafe) {
			inner.unsafe = true
		}
		if !p.at(token.KwFn) {
			p.err(diag.SynUnexpectedItem, "only functions are supported in extern blocks")
			p.resyncTop()
			continue
		}
		id, ok := p.parseFnItem(inner)
		if !ok {
			p.resyncTop()
			continue
		}
		data.Items = append(data.Items, id)
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close extern block"); !ok {
		return ast.NoItemID, false
	}
	return p.newItem(ast.ItemExternBlock, mods, "", mods.start, data), true
}

func (p *Parser) parseTraitItem(mods itemMods) (ast.ItemID, bool) {
	p.advance() // trait
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	data := &ast.TraitItem{Unsafe: mods.unsafe}
	if data.Generics, ok = p.parseGenericParams(); !ok {
		return ast.NoItemID, false
	}
	if p.eat(token.Colon) {
		// супертрейты разбираем, но не используем
		p.parseBounds()
	}
	p.parseWhere(&data.Generics)
	if data.Items, ok = p.parseAssocItems(); !ok {
		return ast.NoItemID, false
	}
	return p.newItem(ast.ItemTrait, mods, name, nameSpan, data), true
}

func (p *Parser) parseImplItem(mods itemMods) (ast.ItemID, bool) {
	p.advance() // impl
	data := &ast.ImplItem{Unsafe: mods.unsafe}
	var ok bool
	if data.Generics, ok = p.parseGenericParams(); !ok {
		return ast.NoItemID, false
	}
	first, ok := p.parseType()
	if !ok {
		return ast.NoItemID, false
	}
	if p.eat(token.KwFor) {
		te := p.arenas.Type(first)
		if te.Kind != ast.TypePath {
			p.errAt(diag.SynUnexpectedToken, te.Span, "expected a trait path before 'for'")
			return ast.NoItemID, false
		}
		data.Trait = te.Path
		if data.Self, ok = p.parseType(); !ok {
			return ast.NoItemID, false
		}
	} else {
		data.Self = first
	}
	p.parseWhere(&data.Generics)
	if data.Items, ok = p.parseAssocItems(); !ok {
		return ast.NoItemID, false
	}
	return p.newItem(ast.ItemImpl, mods, "", mods.start, data), true
}

// parseAssocItems разбирает тело trait/impl: `type`, `fn`, `const`.
func (p *Parser) parseAssocItems() ([]ast.ItemID, bool) {
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'"); !ok {
		return nil, false
	}
	var items []ast.ItemID
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		mods := itemMods{start: p.peek().Span}
		for p.at(token.Hash) {
			attr, ok := p.parseAttr()
			if !ok {
				return nil, false
			}
			mods.attrs = append(mods.attrs, attr)
		}
		mods.pub = p.parseVisibility()
		var (
			id ast.ItemID
			ok bool
		)
		switch {
		case p.at(token.KwType):
			id, ok = p.parseTypeAlias(mods)
		case p.at(token.KwConst) && p.peekN(1).Kind == token.Ident:
			id, ok = p.parseConstItem(mods, false)
		default:
			for p.atOr(token.KwConst, token.KwUnsafe) {
				if p.advance().Kind == token.KwConst {
					mods.konst = true
				} else {
					mods.unsafe = true
				}
			}
			if !p.at(token.KwFn) {
				p.err(diag.SynUnexpectedItem, "expected 'fn' or 'type' in impl block, got "+describe(p.peek()))
				ok = false
				break
			}
			id, ok = p.parseFnItem(mods)
		}
		if !ok {
			p.resyncTop()
			continue
		}
		items = append(items, id)
	}
	_, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}'")
	return items, ok
}
