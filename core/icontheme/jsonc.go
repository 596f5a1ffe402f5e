package icontheme

import (
	"fmt"
	"unicode/utf8"
)

// SyntaxCode classifies a problem found while parsing theme text.
type SyntaxCode int

const (
	InvalidSymbol SyntaxCode = iota + 1
	InvalidNumberFormat
	PropertyNameExpected
	ValueExpected
	ColonExpected
	CommaExpected
	CloseBraceExpected
	CloseBracketExpected
	EndOfFileExpected
	UnexpectedEndOfComment
	UnexpectedEndOfString
	InvalidUnicode
	InvalidEscapeCharacter
	InvalidCharacter
)

var syntaxCodeNames = map[SyntaxCode]string{
	InvalidSymbol:          "Invalid symbol",
	InvalidNumberFormat:    "Invalid number format",
	PropertyNameExpected:   "Property name expected",
	ValueExpected:          "Value expected",
	ColonExpected:          "Colon expected",
	CommaExpected:          "Comma expected",
	CloseBraceExpected:     "Closing brace expected",
	CloseBracketExpected:   "Closing bracket expected",
	EndOfFileExpected:      "End of file expected",
	UnexpectedEndOfComment: "Unexpected end of comment",
	UnexpectedEndOfString:  "Unexpected end of string",
	InvalidUnicode:         "Invalid unicode sequence in string",
	InvalidEscapeCharacter: "Invalid escape character in string",
	InvalidCharacter:       "Invalid characters in string",
}

func (c SyntaxCode) String() string {
	if name, ok := syntaxCodeNames[c]; ok {
		return name
	}
	return "Unknown error"
}

// SyntaxProblem locates one syntax problem by byte offset.
type SyntaxProblem struct {
	Code   SyntaxCode
	Offset int
	Length int
}

func (p SyntaxProblem) String() string {
	return fmt.Sprintf("%s at offset %d", p.Code, p.Offset)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokOpenBrace
	tokCloseBrace
	tokOpenBracket
	tokCloseBracket
	tokColon
	tokComma
	tokString
	tokNumber
	tokLiteral
	tokUnknown
)

type token struct {
	kind       tokenKind
	start, end int
}

// jsoncParser checks JSON-with-comments text, recovering after every
// problem so that all of them are reported. When the text has no problems
// out holds the equivalent plain JSON (comments and trailing commas
// removed).
type jsoncParser struct {
	src      []byte
	pos      int
	tok      token
	out      []byte
	problems []SyntaxProblem
}

func normalizeJSONC(src []byte) ([]byte, []SyntaxProblem) {
	p := &jsoncParser{src: src, out: make([]byte, 0, len(src))}
	p.skipBOM()
	p.advance()

	if p.tok.kind == tokEOF {
		p.fail(ValueExpected)
		return nil, p.problems
	}
	if !p.parseValue() {
		p.fail(ValueExpected)
	}
	if p.tok.kind != tokEOF {
		p.fail(EndOfFileExpected)
	}

	if len(p.problems) > 0 {
		return nil, p.problems
	}
	return p.out, nil
}

func (p *jsoncParser) fail(code SyntaxCode) {
	p.problems = append(p.problems, SyntaxProblem{
		Code:   code,
		Offset: p.tok.start,
		Length: p.tok.end - p.tok.start,
	})
}

func (p *jsoncParser) problemAt(code SyntaxCode, offset, length int) {
	p.problems = append(p.problems, SyntaxProblem{Code: code, Offset: offset, Length: length})
}

func (p *jsoncParser) emit() {
	p.out = append(p.out, p.src[p.tok.start:p.tok.end]...)
}

func (p *jsoncParser) skipUntil(kinds ...tokenKind) {
	for p.tok.kind != tokEOF {
		for _, k := range kinds {
			if p.tok.kind == k {
				return
			}
		}
		p.advance()
	}
}

// =============================================================================
// Grammar
// =============================================================================

func (p *jsoncParser) parseValue() bool {
	switch p.tok.kind {
	case tokOpenBrace:
		p.parseObject()
		return true
	case tokOpenBracket:
		p.parseArray()
		return true
	case tokString, tokNumber, tokLiteral:
		p.emit()
		p.advance()
		return true
	}
	return false
}

func (p *jsoncParser) parseObject() {
	p.emit()
	p.advance()

	needsComma := false
	for p.tok.kind != tokCloseBrace && p.tok.kind != tokEOF {
		if p.tok.kind == tokComma {
			if !needsComma {
				p.fail(ValueExpected)
			}
			comma := len(p.out)
			p.emit()
			p.advance()
			if p.tok.kind == tokCloseBrace {
				p.out = p.out[:comma]
				break
			}
		} else if needsComma {
			p.fail(CommaExpected)
		}
		if !p.parseProperty() {
			p.skipUntil(tokCloseBrace, tokComma)
		}
		needsComma = true
	}

	if p.tok.kind != tokCloseBrace {
		p.fail(CloseBraceExpected)
		return
	}
	p.emit()
	p.advance()
}

func (p *jsoncParser) parseProperty() bool {
	if p.tok.kind != tokString {
		p.fail(PropertyNameExpected)
		return false
	}
	p.emit()
	p.advance()

	if p.tok.kind != tokColon {
		p.fail(ColonExpected)
		return false
	}
	p.emit()
	p.advance()

	if !p.parseValue() {
		p.fail(ValueExpected)
		return false
	}
	return true
}

func (p *jsoncParser) parseArray() {
	p.emit()
	p.advance()

	needsComma := false
	for p.tok.kind != tokCloseBracket && p.tok.kind != tokEOF {
		if p.tok.kind == tokComma {
			if !needsComma {
				p.fail(ValueExpected)
			}
			comma := len(p.out)
			p.emit()
			p.advance()
			if p.tok.kind == tokCloseBracket {
				p.out = p.out[:comma]
				break
			}
		} else if needsComma {
			p.fail(CommaExpected)
		}
		if !p.parseValue() {
			p.fail(ValueExpected)
			p.skipUntil(tokCloseBracket, tokComma)
		}
		needsComma = true
	}

	if p.tok.kind != tokCloseBracket {
		p.fail(CloseBracketExpected)
		return
	}
	p.emit()
	p.advance()
}

// =============================================================================
// Scanner
// =============================================================================

func (p *jsoncParser) skipBOM() {
	if len(p.src) >= 3 && p.src[0] == 0xEF && p.src[1] == 0xBB && p.src[2] == 0xBF {
		p.pos = 3
	}
}

// advance moves to the next significant token. Unknown symbols are
// reported and skipped.
func (p *jsoncParser) advance() {
	for {
		p.tok = p.scan()
		if p.tok.kind != tokUnknown {
			return
		}
		p.fail(InvalidSymbol)
	}
}

func (p *jsoncParser) scan() token {
	p.skipTrivia()
	start := p.pos
	if p.pos >= len(p.src) {
		return token{kind: tokEOF, start: start, end: start}
	}

	kind := tokUnknown
	switch c := p.src[p.pos]; {
	case c == '{':
		p.pos++
		kind = tokOpenBrace
	case c == '}':
		p.pos++
		kind = tokCloseBrace
	case c == '[':
		p.pos++
		kind = tokOpenBracket
	case c == ']':
		p.pos++
		kind = tokCloseBracket
	case c == ':':
		p.pos++
		kind = tokColon
	case c == ',':
		p.pos++
		kind = tokComma
	case c == '"':
		p.scanString()
		kind = tokString
	case c == '-' || isDigit(c):
		p.scanNumber()
		kind = tokNumber
	case isWordChar(c):
		for p.pos < len(p.src) && isWordChar(p.src[p.pos]) {
			p.pos++
		}
		switch string(p.src[start:p.pos]) {
		case "true", "false", "null":
			kind = tokLiteral
		}
	default:
		_, size := utf8.DecodeRune(p.src[p.pos:])
		p.pos += size
	}
	return token{kind: kind, start: start, end: p.pos}
}

func (p *jsoncParser) skipTrivia() {
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f':
			p.pos++
		case c == '/' && p.peek(1) == '/':
			for p.pos < len(p.src) && p.src[p.pos] != '\n' && p.src[p.pos] != '\r' {
				p.pos++
			}
		case c == '/' && p.peek(1) == '*':
			p.skipBlockComment()
		default:
			return
		}
	}
}

func (p *jsoncParser) skipBlockComment() {
	start := p.pos
	p.pos += 2
	for p.pos < len(p.src) {
		if p.src[p.pos] == '*' && p.peek(1) == '/' {
			p.pos += 2
			return
		}
		p.pos++
	}
	p.problemAt(UnexpectedEndOfComment, start, p.pos-start)
}

func (p *jsoncParser) peek(n int) byte {
	if p.pos+n < len(p.src) {
		return p.src[p.pos+n]
	}
	return 0
}

func (p *jsoncParser) scanString() {
	start := p.pos
	p.pos++
	for {
		if p.pos >= len(p.src) {
			p.problemAt(UnexpectedEndOfString, start, p.pos-start)
			return
		}
		c := p.src[p.pos]
		switch {
		case c == '"':
			p.pos++
			return
		case c == '\\':
			p.scanEscape()
		case c == '\n' || c == '\r':
			p.problemAt(UnexpectedEndOfString, start, p.pos-start)
			return
		case c < 0x20:
			p.problemAt(InvalidCharacter, p.pos, 1)
			p.pos++
		default:
			p.pos++
		}
	}
}

func (p *jsoncParser) scanEscape() {
	escape := p.pos
	p.pos++
	if p.pos >= len(p.src) {
		return
	}
	switch p.src[p.pos] {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		p.pos++
	case 'u':
		p.pos++
		for i := 0; i < 4; i++ {
			if p.pos >= len(p.src) || !isHexDigit(p.src[p.pos]) {
				p.problemAt(InvalidUnicode, escape, p.pos-escape)
				return
			}
			p.pos++
		}
	default:
		p.problemAt(InvalidEscapeCharacter, escape, 2)
		p.pos++
	}
}

// scanNumber consumes a JSON number, recording a problem when it is
// malformed.
func (p *jsoncParser) scanNumber() {
	start := p.pos
	if p.src[p.pos] == '-' {
		p.pos++
	}
	switch {
	case p.pos < len(p.src) && p.src[p.pos] == '0':
		p.pos++
	case p.pos < len(p.src) && isDigit(p.src[p.pos]):
		p.skipDigits()
	default:
		p.problemAt(InvalidNumberFormat, start, p.pos-start)
		return
	}

	if p.pos < len(p.src) && p.src[p.pos] == '.' {
		p.pos++
		if p.pos >= len(p.src) || !isDigit(p.src[p.pos]) {
			p.problemAt(InvalidNumberFormat, start, p.pos-start)
			return
		}
		p.skipDigits()
	}

	if p.pos < len(p.src) && (p.src[p.pos] == 'e' || p.src[p.pos] == 'E') {
		p.pos++
		if p.pos < len(p.src) && (p.src[p.pos] == '+' || p.src[p.pos] == '-') {
			p.pos++
		}
		if p.pos >= len(p.src) || !isDigit(p.src[p.pos]) {
			p.problemAt(InvalidNumberFormat, start, p.pos-start)
			return
		}
		p.skipDigits()
	}
}

func (p *jsoncParser) skipDigits() {
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		p.pos++
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}
