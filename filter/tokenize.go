package filter

import (
	"strconv"
	"strings"

	"github.com/glennpierce/go-haystack/zinc"
	"github.com/shopspring/decimal"
)

type tokenizeState int

const (
	stateLExpr tokenizeState = iota
	stateAfterRExpr
)

// Tokenize lexes a filter string into a flat list of FilterToken
// (spec.md §4.3). The tokenizer is a two-state machine (LExpr,
// AfterRExpr) with a parenthesis-depth stack; which production it tries
// next is driven entirely by that state, not by excluding reserved words
// from the identifier grammar. This is load-bearing: at an LExpr
// position, the bare word "and" is lexically just a valid identifier and
// becomes Path([Id("and")]), since "and"/"or" are only ever recognized as
// Binary operators from the AfterRExpr position.
func Tokenize(expr string) ([]FilterToken, error) {
	s := &scanner{src: expr}
	state := stateLExpr
	depth := 0
	var tokens []FilterToken

	for {
		s.skipSpace()
		if s.eof() {
			break
		}
		offset := s.pos

		var tok FilterToken
		var err error
		switch state {
		case stateLExpr:
			tok, err = s.lexLExpr()
		case stateAfterRExpr:
			tok, err = s.lexAfterRExpr()
		}
		if err != nil {
			return nil, err
		}

		switch tok.kind {
		case KindLParen:
			depth++
			tokens = append(tokens, tok)
			// state remains whatever allows a new sub-expression: LExpr.
			state = stateLExpr
		case KindRParen:
			if depth == 0 {
				return nil, unexpectedTokenErr(offset)
			}
			depth--
			tokens = append(tokens, tok)
			state = stateAfterRExpr
		case KindVal, KindPath:
			tokens = append(tokens, tok)
			state = stateAfterRExpr
		case KindBinary, KindUnary:
			tokens = append(tokens, tok)
			state = stateLExpr
		}
	}

	if state == stateLExpr {
		return nil, missingArgumentErr()
	}
	if depth > 0 {
		return nil, missingRParenErr(depth)
	}
	return tokens, nil
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) peekAt(off int) byte {
	if s.pos+off >= len(s.src) {
		return 0
	}
	return s.src[s.pos+off]
}

func (s *scanner) advance(n int) { s.pos += n }

func (s *scanner) hasPrefix(p string) bool { return strings.HasPrefix(s.src[s.pos:], p) }

func (s *scanner) skipSpace() {
	for !s.eof() && (s.peek() == ' ' || s.peek() == '\t' || s.peek() == '\n' || s.peek() == '\r') {
		s.advance(1)
	}
}

func isIdentChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
}

// matchWord consumes word (a full identifier token, not a prefix of a
// longer one) from the current position, reporting whether it matched.
func (s *scanner) matchWord(word string) bool {
	if !s.hasPrefix(word) {
		return false
	}
	if isIdentChar(s.peekAt(len(word))) {
		return false
	}
	s.advance(len(word))
	return true
}

func (s *scanner) lexLExpr() (FilterToken, error) {
	if s.peek() == '(' {
		s.advance(1)
		return LParenToken, nil
	}
	if s.matchWord("not") {
		return NewUnaryToken(OpNot), nil
	}
	if s.peek() == '@' || s.peek() == '"' || s.peek() == '`' || s.peek() == '-' || isDigit(s.peek()) {
		tok, err := s.lexVal()
		if err != nil {
			return FilterToken{}, err
		}
		return NewValToken(tok), nil
	}
	if s.matchWord("true") {
		return NewValToken(zinc.NewBool(true)), nil
	}
	if s.matchWord("false") {
		return NewValToken(zinc.NewBool(false)), nil
	}
	if isIdentStart(s.peek()) {
		return s.lexPath()
	}
	return FilterToken{}, unexpectedTokenErr(s.pos)
}

func (s *scanner) lexAfterRExpr() (FilterToken, error) {
	if s.peek() == ')' {
		s.advance(1)
		return RParenToken, nil
	}
	if s.matchWord("and") {
		return NewBinaryToken(OpAnd), nil
	}
	if s.matchWord("or") {
		return NewBinaryToken(OpOr), nil
	}
	if op, ok := s.lexCmpOp(); ok {
		return NewBinaryToken(op), nil
	}
	return FilterToken{}, unexpectedTokenErr(s.pos)
}

func (s *scanner) lexCmpOp() (Operation, bool) {
	switch {
	case s.hasPrefix("=="):
		s.advance(2)
		return OpEquals, true
	case s.hasPrefix("!="):
		s.advance(2)
		return OpNotEquals, true
	case s.hasPrefix("<="):
		s.advance(2)
		return OpLessThanEquals, true
	case s.hasPrefix(">="):
		s.advance(2)
		return OpMoreThanEquals, true
	case s.hasPrefix("<"):
		s.advance(1)
		return OpLessThan, true
	case s.hasPrefix(">"):
		s.advance(1)
		return OpMoreThan, true
	default:
		return 0, false
	}
}

func isIdentStart(b byte) bool { return b >= 'a' && b <= 'z' }

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// path := id ("->" id)*
func (s *scanner) lexPath() (FilterToken, error) {
	var ids []zinc.Token
	id, err := s.lexIdent()
	if err != nil {
		return FilterToken{}, err
	}
	ids = append(ids, id)
	for s.hasPrefix("->") {
		s.advance(2)
		id, err := s.lexIdent()
		if err != nil {
			return FilterToken{}, err
		}
		ids = append(ids, id)
	}
	return NewPathToken(ids), nil
}

func (s *scanner) lexIdent() (zinc.Token, error) {
	if s.eof() || !isIdentStart(s.peek()) {
		return zinc.Token{}, unexpectedTokenErr(s.pos)
	}
	start := s.pos
	s.advance(1)
	for !s.eof() && isIdentChar(s.peek()) {
		s.advance(1)
	}
	return zinc.NewID(s.src[start:s.pos]), nil
}

// lexVal parses a filter literal value: ref, quoted string, uri, date,
// time, number-with-unit. Filter's boolean literals are the lowercase
// words "true"/"false", handled separately in lexLExpr since they share
// the identifier charset rather than this scalar dispatch.
func (s *scanner) lexVal() (zinc.Token, error) {
	switch {
	case s.peek() == '@':
		return s.lexRef()
	case s.peek() == '"':
		str, err := s.lexQuotedString()
		if err != nil {
			return zinc.Token{}, err
		}
		return zinc.NewEscapedString(str), nil
	case s.peek() == '`':
		return s.lexURI()
	default:
		return s.lexNumeric()
	}
}

func isRefChar(b byte) bool {
	return isIdentChar(b) || b == ':' || b == '-' || b == '.' || b == '~'
}

func (s *scanner) lexRef() (zinc.Token, error) {
	s.advance(1)
	start := s.pos
	for !s.eof() && isRefChar(s.peek()) {
		s.advance(1)
	}
	if s.pos == start {
		return zinc.Token{}, unexpectedTokenErr(start)
	}
	id := s.src[start:s.pos]
	if !s.eof() && s.peek() == ' ' && s.peekAt(1) == '"' {
		save := s.pos
		s.advance(1)
		display, err := s.lexQuotedString()
		if err != nil {
			s.pos = save
			return zinc.NewRef(id), nil
		}
		return zinc.NewRefWithDisplay(id, display), nil
	}
	return zinc.NewRef(id), nil
}

func (s *scanner) lexQuotedString() (string, error) {
	if s.eof() || s.peek() != '"' {
		return "", unexpectedTokenErr(s.pos)
	}
	s.advance(1)
	var b strings.Builder
	for {
		if s.eof() {
			return "", unexpectedTokenErr(s.pos)
		}
		c := s.peek()
		if c == '"' {
			s.advance(1)
			return b.String(), nil
		}
		if c == '\\' {
			s.advance(1)
			if s.eof() {
				return "", unexpectedTokenErr(s.pos)
			}
			e := s.peek()
			switch e {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'u':
				if s.pos+4 >= len(s.src) {
					return "", unexpectedTokenErr(s.pos)
				}
				hex := s.src[s.pos+1 : s.pos+5]
				n, err := strconv.ParseInt(hex, 16, 32)
				if err != nil {
					return "", unexpectedTokenErr(s.pos)
				}
				b.WriteRune(rune(n))
				s.advance(4)
			default:
				return "", unexpectedTokenErr(s.pos)
			}
			s.advance(1)
			continue
		}
		b.WriteByte(c)
		s.advance(1)
	}
}

func (s *scanner) lexURI() (zinc.Token, error) {
	s.advance(1)
	start := s.pos
	for !s.eof() && s.peek() != '`' {
		s.advance(1)
	}
	if s.eof() {
		return zinc.Token{}, unexpectedTokenErr(s.pos)
	}
	str := s.src[start:s.pos]
	s.advance(1)
	return zinc.NewURI(str), nil
}

func (s *scanner) readDigits() string {
	start := s.pos
	for !s.eof() && isDigit(s.peek()) {
		s.advance(1)
	}
	return s.src[start:s.pos]
}

// lexNumeric parses a date, time, or number-with-unit literal; filter
// values never include Zinc's Inf/NaN/marker singletons.
func (s *scanner) lexNumeric() (zinc.Token, error) {
	start := s.pos
	neg := false
	if !s.eof() && s.peek() == '-' {
		neg = true
		s.advance(1)
	}
	digits1 := s.readDigits()
	if digits1 == "" {
		s.pos = start
		return zinc.Token{}, unexpectedTokenErr(start)
	}

	if !neg && !s.eof() && s.peek() == '-' && isDigit(s.peekAt(1)) {
		save := s.pos
		s.advance(1)
		month := s.readDigits()
		if month != "" && !s.eof() && s.peek() == '-' && isDigit(s.peekAt(1)) {
			s.advance(1)
			day := s.readDigits()
			if day != "" {
				y, _ := strconv.Atoi(digits1)
				mo, _ := strconv.Atoi(month)
				d, _ := strconv.Atoi(day)
				return zinc.NewDate(zinc.Date{Year: y, Month: mo, Day: d}), nil
			}
		}
		s.pos = save
	}

	if !neg && !s.eof() && s.peek() == ':' {
		save := s.pos
		if tm, ok := s.tryParseTimeBody(digits1); ok {
			return zinc.NewTime(tm), nil
		}
		s.pos = save
	}

	var frac string
	if !s.eof() && s.peek() == '.' && isDigit(s.peekAt(1)) {
		s.advance(1)
		frac = s.readDigits()
	}
	numStr := digits1
	if frac != "" {
		numStr += "." + frac
	}
	if neg {
		numStr = "-" + numStr
	}
	if !s.eof() && (s.peek() == 'e' || s.peek() == 'E') {
		save := s.pos
		s.advance(1)
		sign := ""
		if !s.eof() && (s.peek() == '+' || s.peek() == '-') {
			sign = string(s.peek())
			s.advance(1)
		}
		expDigits := s.readDigits()
		if expDigits != "" {
			numStr += "e" + sign + expDigits
		} else {
			s.pos = save
		}
	}

	d, err := decimal.NewFromString(numStr)
	if err != nil {
		return zinc.Token{}, unexpectedTokenErr(start)
	}

	unitStart := s.pos
	for !s.eof() && isIdentLetter(s.peek()) {
		s.advance(1)
	}
	units := s.src[unitStart:s.pos]

	return zinc.NewNumber(d, units), nil
}

func isIdentLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func (s *scanner) tryParseTimeBody(hourDigits string) (zinc.Time, bool) {
	if s.eof() || s.peek() != ':' {
		return zinc.Time{}, false
	}
	save := s.pos
	s.advance(1)
	minDigits := s.readDigits()
	if minDigits == "" || s.eof() || s.peek() != ':' {
		s.pos = save
		return zinc.Time{}, false
	}
	s.advance(1)
	secDigits := s.readDigits()
	if secDigits == "" {
		s.pos = save
		return zinc.Time{}, false
	}
	nanos := 0
	if !s.eof() && s.peek() == '.' && isDigit(s.peekAt(1)) {
		s.advance(1)
		frac := s.readDigits()
		nanos = fracToNanos(frac)
	}
	h, _ := strconv.Atoi(hourDigits)
	mi, _ := strconv.Atoi(minDigits)
	sec, _ := strconv.Atoi(secDigits)
	return zinc.Time{Hour: h, Min: mi, Sec: sec, Nanos: nanos}, true
}

func fracToNanos(frac string) int {
	for len(frac) < 9 {
		frac += "0"
	}
	frac = frac[:9]
	n, _ := strconv.Atoi(frac)
	return n
}
