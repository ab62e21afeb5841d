package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"rsfront/internal/ast"
	"rsfront/internal/token"
)

var intSuffixes = []string{"usize", "isize", "u128", "i128", "u16", "u32", "u64", "i16", "i32", "i64", "u8", "i8"}

var floatSuffixes = []string{"f32", "f64"}

// DecodeLiteral converts a literal token into its value.
func DecodeLiteral(tok token.Token) (*ast.LitData, error) { return decodeLiteral(tok) }

func decodeLiteral(tok token.Token) (*ast.LitData, error) {
	lit := &ast.LitData{Text: tok.Text}
	switch tok.Kind {
	case token.KwTrue, token.KwFalse:
		lit.Kind = ast.LitBool
		lit.Bool = tok.Kind == token.KwTrue
	case token.StringLit:
		lit.Kind = ast.LitStr
		raw := tok.Text
		if strings.HasPrefix(raw, "b") {
			lit.Suffix = "b"
			raw = raw[1:]
		}
		s, err := unescape(raw[1 : len(raw)-1])
		if err != nil {
			return nil, err
		}
		lit.Str = s
	case token.IntLit:
		lit.Kind = ast.LitInt
		text := strings.ReplaceAll(tok.Text, "_", "")
		base := 10
		switch {
		case strings.HasPrefix(text, "0x"):
			base, text = 16, text[2:]
		case strings.HasPrefix(text, "0o"):
			base, text = 8, text[2:]
		case strings.HasPrefix(text, "0b"):
			base, text = 2, text[2:]
		}
		for _, suf := range intSuffixes {
			if strings.HasSuffix(text, suf) {
				lit.Suffix = suf
				text = strings.TrimSuffix(text, suf)
				break
			}
		}
		if lit.Suffix == "" && base == 10 {
			if i := strings.IndexFunc(text, func(r rune) bool { return r < '0' || r > '9' }); i >= 0 {
				return nil, fmt.Errorf("invalid suffix %q for integer literal", text[i:])
			}
		}
		v, err := strconv.ParseUint(text, base, 64)
		if err != nil {
			return nil, fmt.Errorf("integer literal %s is too large or malformed", tok.Text)
		}
		lit.Int = v
	case token.FloatLit:
		lit.Kind = ast.LitFloat
		text := strings.ReplaceAll(tok.Text, "_", "")
		for _, suf := range floatSuffixes {
			if strings.HasSuffix(text, suf) {
				lit.Suffix = suf
				text = strings.TrimSuffix(text, suf)
				break
			}
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed float literal %s", tok.Text)
		}
		lit.Float = v
	default:
		return nil, fmt.Errorf("unexpected literal %s", tok.Text)
	}
	return lit, nil
}

// unescape раскрывает \n \r \t \0 \\ \" \' \xNN \u{...}.
func unescape(s string) (string, error) {
	if !strings.Contains(s, "\\") {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", fmt.Errorf("trailing backslash in string literal")
		}
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '0':
			b.WriteByte(0)
		case '\\', '"', '\'':
			b.WriteByte(s[i])
		case '\n':
			// продолжение строки: пропускаем ведущие пробелы
			for i+1 < len(s) && (s[i+1] == ' ' || s[i+1] == '\t' || s[i+1] == '\n') {
				i++
			}
		case 'x':
			if i+2 >= len(s) {
				return "", fmt.Errorf("incomplete \\x escape")
			}
			v, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil {
				return "", fmt.Errorf("invalid \\x escape")
			}
			b.WriteByte(byte(v))
			i += 2
		case 'u':
			end := strings.IndexByte(s[i:], '}')
			if i+1 >= len(s) || s[i+1] != '{' || end < 0 {
				return "", fmt.Errorf("invalid \\u escape")
			}
			v, err := strconv.ParseUint(s[i+2:i+end], 16, 32)
			if err != nil || !utf8.ValidRune(rune(v)) {
				return "", fmt.Errorf("invalid unicode escape")
			}
			b.WriteRune(rune(v))
			i += end
		default:
			return "", fmt.Errorf("unknown escape \\%c", s[i])
		}
	}
	return b.String(), nil
}

// unquote снимает кавычки со строкового токена (для ABI и атрибутов).
func unquote(text string) string {
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		if s, err := unescape(text[1 : len(text)-1]); err == nil {
			return s
		}
		return text[1 : len(text)-1]
	}
	return text
}
