package zinc

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Parse reads a single Zinc grid from src and returns its C1 model
// (spec.md §4.2). The grammar is small and LL(1) after one rune of
// lookahead at a handful of productions (sub-grid vs. list, ref display
// string vs. bare ref); this parser is hand-rolled rather than built on a
// combinator library, which spec.md §9 notes is an equally acceptable
// style.
func Parse(src string) (*Grid, error) {
	p := &parser{src: src}
	p.skipInsignificantSpace()
	g, err := p.parseGrid()
	if err != nil {
		return nil, err
	}
	p.skipInsignificantSpace()
	if !p.eof() {
		return nil, p.errorf("trailing input after grid")
	}
	return g, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) peekAt(off int) byte {
	if p.pos+off >= len(p.src) {
		return 0
	}
	return p.src[p.pos+off]
}

func (p *parser) peekRune() (rune, int) {
	if p.eof() {
		return 0, 0
	}
	for i, r := range p.src[p.pos:] {
		_ = i
		return r, len(string(r))
	}
	return 0, 0
}

func (p *parser) advance(n int) { p.pos += n }

func (p *parser) errorf(format string, args ...interface{}) *ParseError {
	return newParseError(p.pos, format, args...)
}

func (p *parser) hasPrefix(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *parser) consumePrefix(s string) bool {
	if p.hasPrefix(s) {
		p.advance(len(s))
		return true
	}
	return false
}

// skipInsignificantSpace skips spaces and tabs, but not newlines: rows are
// newline-separated and newlines are therefore significant (spec.md §4.1).
func (p *parser) skipInsignificantSpace() {
	for !p.eof() && (p.peek() == ' ' || p.peek() == '\t') {
		p.advance(1)
	}
}

func (p *parser) skipNewlines() {
	for !p.eof() && (p.peek() == '\n' || p.peek() == '\r') {
		p.advance(1)
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isLower(b byte) bool { return b >= 'a' && b <= 'z' }

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }

func isAlnum(b byte) bool { return isDigit(b) || isLower(b) || isUpper(b) || b == '_' }

func isIDStart(b byte) bool { return isLower(b) }

func isIDChar(b byte) bool { return isLower(b) || isUpper(b) || isDigit(b) || b == '_' }

func isRefChar(b byte) bool {
	return isAlnum(b) || b == ':' || b == '-' || b == '.' || b == '~'
}

// grid := gridMeta NL cols NL rows? NL?
func (p *parser) parseGrid() (*Grid, error) {
	meta, err := p.parseGridMeta()
	if err != nil {
		return nil, err
	}
	p.skipInsignificantSpace()
	if !p.eof() && p.peek() == '\n' {
		p.skipNewlines()
	} else {
		return nil, p.errorf("expected newline after grid meta")
	}

	cols, err := p.parseCols()
	if err != nil {
		return nil, err
	}

	rows := Rows{}
	p.skipInsignificantSpace()
	if !p.eof() && p.peek() == '\n' {
		p.skipNewlines()
		for !p.eof() && !p.hasPrefix(">>") {
			save := p.pos
			p.skipInsignificantSpace()
			if p.eof() || p.peek() == '\n' || p.hasPrefix(">>") {
				p.pos = save
				break
			}
			row, err := p.parseRow(len(cols))
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
			p.skipInsignificantSpace()
			if !p.eof() && p.peek() == '\n' {
				p.skipNewlines()
				continue
			}
			break
		}
	}

	return &Grid{Meta: meta, Cols: cols, Rows: rows}, nil
}

// gridMeta := ver (SP tags)?
func (p *parser) parseGridMeta() (GridMeta, error) {
	ver, err := p.parseVer()
	if err != nil {
		return GridMeta{}, err
	}
	save := p.pos
	p.skipInsignificantSpace()
	if p.pos == save || p.eof() || p.peek() == '\n' {
		p.pos = save
		return GridMeta{ver: ver}, nil
	}
	tags, err := p.parseTags()
	if err != nil {
		return GridMeta{}, err
	}
	return GridMeta{ver: ver, tags: tags, hasTags: true}, nil
}

// ver := "ver:" quotedString
func (p *parser) parseVer() (Token, error) {
	if !p.consumePrefix("ver:") {
		return Token{}, p.errorf(`expected "ver:"`)
	}
	s, err := p.parseQuotedString()
	if err != nil {
		return Token{}, err
	}
	return NewVer(s), nil
}

// cols := col ("," col)*
func (p *parser) parseCols() (Cols, error) {
	var cols Cols
	c, err := p.parseCol()
	if err != nil {
		return nil, err
	}
	cols = append(cols, c)
	for {
		p.skipInsignificantSpace()
		if p.eof() || p.peek() != ',' {
			break
		}
		p.advance(1)
		p.skipInsignificantSpace()
		c, err := p.parseCol()
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, nil
}

// col := id (SP tags)?
func (p *parser) parseCol() (Col, error) {
	id, err := p.parseID()
	if err != nil {
		return Col{}, err
	}
	save := p.pos
	p.skipInsignificantSpace()
	if p.pos == save || p.eof() || p.peek() == '\n' || p.peek() == ',' {
		p.pos = save
		return NewCol(id), nil
	}
	tags, err := p.parseTags()
	if err != nil {
		return Col{}, err
	}
	return NewColWithTags(id, tags), nil
}

// row := cell ("," cell)*
func (p *parser) parseRow(ncols int) (Row, error) {
	var row Row
	v, err := p.parseCell()
	if err != nil {
		return nil, err
	}
	row = append(row, v)
	for {
		if p.eof() || p.peek() != ',' {
			break
		}
		p.advance(1)
		p.skipInsignificantSpace()
		v, err := p.parseCell()
		if err != nil {
			return nil, err
		}
		row = append(row, v)
	}
	for len(row) < ncols {
		row = append(row, NewTokenVal(Null))
	}
	return row, nil
}

// cell := val | ε; a bare comma denotes a Null cell, not an empty token.
func (p *parser) parseCell() (Val, error) {
	p.skipInsignificantSpace()
	if p.eof() || p.peek() == ',' || p.peek() == '\n' {
		return NewTokenVal(Null), nil
	}
	return p.parseVal()
}

// val := subGrid | list | dict | scalar
func (p *parser) parseVal() (Val, error) {
	p.skipInsignificantSpace()
	if p.eof() {
		return Val{}, p.errorf("unexpected end of input while parsing value")
	}
	switch {
	case p.hasPrefix("<<"):
		return p.parseSubGrid()
	case p.peek() == '[':
		return p.parseList()
	case p.peek() == '{':
		return p.parseDict()
	default:
		tok, err := p.parseScalar()
		if err != nil {
			return Val{}, err
		}
		return NewTokenVal(tok), nil
	}
}

// subGrid := "<<" grid ">>"
func (p *parser) parseSubGrid() (Val, error) {
	p.advance(2) // "<<"
	p.skipInsignificantSpace()
	p.skipNewlines()
	g, err := p.parseGrid()
	if err != nil {
		return Val{}, err
	}
	p.skipInsignificantSpace()
	p.skipNewlines()
	if !p.consumePrefix(">>") {
		return Val{}, p.errorf(`expected ">>" to close sub-grid`)
	}
	return NewGridVal(g), nil
}

// list := "[" (val ("," val)*)? ","? "]"
func (p *parser) parseList() (Val, error) {
	p.advance(1) // "["
	var items List
	p.skipInsignificantSpace()
	if !p.eof() && p.peek() == ']' {
		p.advance(1)
		return NewListVal(items), nil
	}
	for {
		p.skipInsignificantSpace()
		if !p.eof() && p.peek() == ']' {
			p.advance(1)
			return NewListVal(items), nil
		}
		v, err := p.parseVal()
		if err != nil {
			return Val{}, err
		}
		items = append(items, v)
		p.skipInsignificantSpace()
		if !p.eof() && p.peek() == ',' {
			p.advance(1)
			continue
		}
		if !p.eof() && p.peek() == ']' {
			p.advance(1)
			return NewListVal(items), nil
		}
		return Val{}, p.errorf(`expected "," or "]" in list`)
	}
}

// dict := "{" tags? "}"
func (p *parser) parseDict() (Val, error) {
	p.advance(1) // "{"
	p.skipInsignificantSpace()
	var tags Tags
	if !p.eof() && p.peek() != '}' {
		t, err := p.parseTags()
		if err != nil {
			return Val{}, err
		}
		tags = t
	}
	p.skipInsignificantSpace()
	if !p.consumePrefix("}") {
		return Val{}, p.errorf(`expected "}" to close dict`)
	}
	return NewDictVal(NewDict(tags)), nil
}

// tags := tag (SP tag)*
func (p *parser) parseTags() (Tags, error) {
	var tags Tags
	t, err := p.parseTag()
	if err != nil {
		return nil, err
	}
	tags = append(tags, t)
	for {
		save := p.pos
		p.skipInsignificantSpace()
		if p.pos == save || p.eof() {
			p.pos = save
			break
		}
		b := p.peek()
		if b == '\n' || b == ',' || b == '}' || b == ']' || b == ')' || p.hasPrefix(">>") {
			p.pos = save
			break
		}
		t, err := p.parseTag()
		if err != nil {
			p.pos = save
			break
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// tag := id (":" val)?
func (p *parser) parseTag() (Tag, error) {
	id, err := p.parseID()
	if err != nil {
		return Tag{}, err
	}
	if !p.eof() && p.peek() == ':' {
		p.advance(1)
		v, err := p.parseVal()
		if err != nil {
			return Tag{}, err
		}
		return NewTag(id, v), nil
	}
	return NewMarkerTag(id), nil
}

// id := [a-z][A-Za-z0-9_]*
func (p *parser) parseID() (Token, error) {
	if p.eof() || !isIDStart(p.peek()) {
		return Token{}, p.errorf("expected identifier")
	}
	start := p.pos
	p.advance(1)
	for !p.eof() && isIDChar(p.peek()) {
		p.advance(1)
	}
	return NewID(p.src[start:p.pos]), nil
}

// scalar := ref | string | uri | dateTime | date | time | number
//         | bool | NA | N | M | R
func (p *parser) parseScalar() (Token, error) {
	if p.eof() {
		return Token{}, p.errorf("unexpected end of input")
	}
	b := p.peek()
	switch {
	case b == '@':
		return p.parseRef()
	case b == '"':
		s, err := p.parseQuotedString()
		if err != nil {
			return Token{}, err
		}
		return NewEscapedString(s), nil
	case b == '`':
		return p.parseURI()
	case b == '-' || isDigit(b):
		return p.parseNumeric()
	case b == 'T' && !isIDChar(p.peekAt(1)):
		p.advance(1)
		return NewBool(true), nil
	case b == 'F' && !isIDChar(p.peekAt(1)):
		p.advance(1)
		return NewBool(false), nil
	case b == 'N':
		if p.hasPrefix("NaN") && !isIDChar(p.peekAt(3)) {
			p.advance(3)
			return NaN, nil
		}
		if p.hasPrefix("NA") && !isIDChar(p.peekAt(2)) {
			p.advance(2)
			return NATok, nil
		}
		if !isIDChar(p.peekAt(1)) {
			p.advance(1)
			return Null, nil
		}
		return Token{}, p.errorf("unrecognized scalar starting with N")
	case b == 'M' && !isIDChar(p.peekAt(1)):
		p.advance(1)
		return Marker, nil
	case b == 'R' && !isIDChar(p.peekAt(1)):
		p.advance(1)
		return Remove, nil
	case b == 'I':
		if p.hasPrefix("INF") && !isIDChar(p.peekAt(3)) {
			p.advance(3)
			return Inf, nil
		}
		return Token{}, p.errorf("unrecognized scalar starting with I")
	default:
		return Token{}, p.errorf("unrecognized scalar at %q", string(b))
	}
}

// ref := "@" refChar+ (SP string)?
func (p *parser) parseRef() (Token, error) {
	p.advance(1) // "@"
	start := p.pos
	for !p.eof() && isRefChar(p.peek()) {
		p.advance(1)
	}
	if p.pos == start {
		return Token{}, p.errorf("expected ref id after '@'")
	}
	id := p.src[start:p.pos]
	save := p.pos
	if !p.eof() && p.peek() == ' ' && p.peekAt(1) == '"' {
		p.advance(1)
		s, err := p.parseQuotedString()
		if err != nil {
			p.pos = save
			return NewRef(id), nil
		}
		return NewRefWithDisplay(id, s), nil
	}
	return NewRef(id), nil
}

func (p *parser) parseQuotedString() (string, error) {
	if p.eof() || p.peek() != '"' {
		return "", p.errorf(`expected '"'`)
	}
	p.advance(1)
	var b strings.Builder
	for {
		if p.eof() {
			return "", p.errorf("unterminated string")
		}
		c := p.peek()
		if c == '"' {
			p.advance(1)
			return b.String(), nil
		}
		if c == '\\' {
			p.advance(1)
			if p.eof() {
				return "", p.errorf("unterminated escape sequence")
			}
			e := p.peek()
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
				if p.pos+4 >= len(p.src) {
					return "", p.errorf("truncated unicode escape")
				}
				hex := p.src[p.pos+1 : p.pos+5]
				n, err := strconv.ParseInt(hex, 16, 32)
				if err != nil {
					return "", p.errorf("invalid unicode escape %q", hex)
				}
				b.WriteRune(rune(n))
				p.advance(4)
			default:
				return "", p.errorf("invalid escape sequence '\\%c'", e)
			}
			p.advance(1)
			continue
		}
		b.WriteByte(c)
		p.advance(1)
	}
}

// uri := '`' char* '`'
func (p *parser) parseURI() (Token, error) {
	p.advance(1) // "`"
	start := p.pos
	for !p.eof() && p.peek() != '`' {
		p.advance(1)
	}
	if p.eof() {
		return Token{}, p.errorf("unterminated uri")
	}
	s := p.src[start:p.pos]
	p.advance(1)
	return NewURI(s), nil
}

func (p *parser) readDigits() string {
	start := p.pos
	for !p.eof() && isDigit(p.peek()) {
		p.advance(1)
	}
	return p.src[start:p.pos]
}

// Longest-match-first among dateTime, date, time, number, so this single
// entry point handles every numeric-or-date-shaped production.
func (p *parser) parseNumeric() (Token, error) {
	if p.consumePrefix("-INF") {
		return InfNeg, nil
	}

	start := p.pos
	neg := false
	if !p.eof() && p.peek() == '-' {
		neg = true
		p.advance(1)
	}
	digits1 := p.readDigits()
	if digits1 == "" {
		p.pos = start
		return Token{}, p.errorf("expected number")
	}

	// date / dateTime: digits "-" digits "-" digits, no leading sign.
	if !neg && !p.eof() && p.peek() == '-' && len(digits1) >= 1 && isDigit(p.peekAt(1)) {
		save := p.pos
		p.advance(1)
		month := p.readDigits()
		if month != "" && !p.eof() && p.peek() == '-' && isDigit(p.peekAt(1)) {
			p.advance(1)
			day := p.readDigits()
			if day != "" {
				y, _ := strconv.Atoi(digits1)
				mo, _ := strconv.Atoi(month)
				d, _ := strconv.Atoi(day)
				date := Date{Year: y, Month: mo, Day: d}
				if !p.eof() && p.peek() == 'T' {
					return p.parseDateTimeAfterDate(date)
				}
				return NewDate(date), nil
			}
		}
		p.pos = save
	}

	// time: digits ":" digits ":" digits ("." digits)?, no leading sign.
	if !neg && !p.eof() && p.peek() == ':' {
		save := p.pos
		tm, ok := p.tryParseTimeBody(digits1)
		if ok {
			return NewTime(tm), nil
		}
		p.pos = save
	}

	// plain number, optional fraction/exponent/unit.
	var frac string
	if !p.eof() && p.peek() == '.' && isDigit(p.peekAt(1)) {
		p.advance(1)
		frac = p.readDigits()
	}
	numStr := digits1
	if frac != "" {
		numStr += "." + frac
	}
	if neg {
		numStr = "-" + numStr
	}
	if !p.eof() && (p.peek() == 'e' || p.peek() == 'E') {
		save := p.pos
		p.advance(1)
		expSign := ""
		if !p.eof() && (p.peek() == '+' || p.peek() == '-') {
			expSign = string(p.peek())
			p.advance(1)
		}
		expDigits := p.readDigits()
		if expDigits != "" {
			numStr += "e" + expSign + expDigits
		} else {
			p.pos = save
		}
	}

	if numStr == "NaN" { // unreachable given digit-led dispatch; defensive only
		return NaN, nil
	}

	d, err := decimal.NewFromString(numStr)
	if err != nil {
		return Token{}, p.errorf("invalid number %q", numStr)
	}

	unitStart := p.pos
	for !p.eof() && (isLower(p.peek()) || isUpper(p.peek()) || isDigit(p.peek())) {
		p.advance(1)
	}
	units := p.src[unitStart:p.pos]

	return NewNumber(d, units), nil
}

func (p *parser) tryParseTimeBody(hourDigits string) (Time, bool) {
	if !p.eof() && p.peek() == ':' {
		save := p.pos
		p.advance(1)
		minDigits := p.readDigits()
		if minDigits == "" || p.eof() || p.peek() != ':' {
			p.pos = save
			return Time{}, false
		}
		p.advance(1)
		secDigits := p.readDigits()
		if secDigits == "" {
			p.pos = save
			return Time{}, false
		}
		nanos := 0
		if !p.eof() && p.peek() == '.' && isDigit(p.peekAt(1)) {
			p.advance(1)
			fracStart := p.pos
			frac := p.readDigits()
			_ = fracStart
			nanos = fracToNanos(frac)
		}
		h, _ := strconv.Atoi(hourDigits)
		mi, _ := strconv.Atoi(minDigits)
		s, _ := strconv.Atoi(secDigits)
		return Time{Hour: h, Min: mi, Sec: s, Nanos: nanos}, true
	}
	return Time{}, false
}

func fracToNanos(frac string) int {
	for len(frac) < 9 {
		frac += "0"
	}
	frac = frac[:9]
	n, _ := strconv.Atoi(frac)
	return n
}

// dateTime := date "T" time zone
// zone := ("Z" | sign hh:mm) (SP tzName)?
func (p *parser) parseDateTimeAfterDate(date Date) (Token, error) {
	p.advance(1) // "T"
	hourDigits := p.readDigits()
	if hourDigits == "" {
		return Token{}, p.errorf("expected time after date in date-time")
	}
	tm, ok := p.tryParseTimeBody(hourDigits)
	if !ok {
		return Token{}, p.errorf("malformed time in date-time")
	}

	offsetSec := 0
	zone := ""
	if !p.eof() && p.peek() == 'Z' {
		p.advance(1)
		zone = "UTC"
	} else if !p.eof() && (p.peek() == '+' || p.peek() == '-') {
		sign := 1
		if p.peek() == '-' {
			sign = -1
		}
		p.advance(1)
		hh := p.readDigits()
		if len(hh) < 2 || p.eof() || p.peek() != ':' {
			return Token{}, p.errorf("malformed zone offset in date-time")
		}
		p.advance(1)
		mm := p.readDigits()
		if len(mm) < 2 {
			return Token{}, p.errorf("malformed zone offset in date-time")
		}
		h, _ := strconv.Atoi(hh)
		m, _ := strconv.Atoi(mm)
		offsetSec = sign * (h*3600 + m*60)
	} else {
		return Token{}, p.errorf("expected zone in date-time")
	}

	// optional IANA zone name: SP followed by tz-name characters.
	save := p.pos
	if !p.eof() && p.peek() == ' ' {
		p.advance(1)
		start := p.pos
		for !p.eof() && isTZNameChar(p.peek()) {
			p.advance(1)
		}
		if p.pos > start {
			zone = p.src[start:p.pos]
		} else {
			p.pos = save
		}
	}

	return NewDateTime(DateTime{Date: date, Time: tm, OffsetSec: offsetSec, Zone: zone}), nil
}

func isTZNameChar(b byte) bool {
	return isAlnum(b) || b == '/' || b == '_' || b == '+' || b == '-'
}
