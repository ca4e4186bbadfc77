// Package zinc implements the Haystack 3.0 Zinc grid value model and its
// textual codec: a closed sum-of-types value (Token), the aggregate shapes
// built from it (Tag, Dict, Col, Row, Grid, ...), and a parser/serializer
// pair for which parse(ToZinc(x)) == x for any well-formed Grid.
package zinc

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies which of the closed set of Zinc scalar productions a
// Token holds. The zero value is KindEmpty.
type Kind int

const (
	KindEmpty Kind = iota
	KindNull
	KindMarker
	KindRemove
	KindNL
	KindNA
	KindBool
	KindInf
	KindInfNeg
	KindNaN
	KindNumber
	KindID
	KindRef
	KindEscapedString
	KindDate
	KindTime
	KindDateTime
	KindURI
	KindVer
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindNull:
		return "Null"
	case KindMarker:
		return "Marker"
	case KindRemove:
		return "Remove"
	case KindNL:
		return "NL"
	case KindNA:
		return "NA"
	case KindBool:
		return "Bool"
	case KindInf:
		return "Inf"
	case KindInfNeg:
		return "InfNeg"
	case KindNaN:
		return "NaN"
	case KindNumber:
		return "Number"
	case KindID:
		return "Id"
	case KindRef:
		return "Ref"
	case KindEscapedString:
		return "EscapedString"
	case KindDate:
		return "Date"
	case KindTime:
		return "Time"
	case KindDateTime:
		return "DateTime"
	case KindURI:
		return "Uri"
	case KindVer:
		return "Ver"
	default:
		return "Unknown"
	}
}

// Date is a calendar date with no time-of-day or zone component.
type Date struct {
	Year  int
	Month int
	Day   int
}

// Time is a time-of-day with optional fractional seconds, no date or zone.
type Time struct {
	Hour  int
	Min   int
	Sec   int
	Nanos int // sub-second component; 0 when the literal had no fraction
}

// DateTime is a date-time with a fixed UTC offset and an optional IANA zone
// name carried alongside it (Zinc allows the offset without the name).
type DateTime struct {
	Date     Date
	Time     Time
	OffsetSec int // seconds east of UTC
	Zone      string
}

// Token is the algebraic value type for every Zinc scalar production
// (spec.md §3.1). It is a closed sum type: exactly one of the payload
// fields below is meaningful, selected by Kind.
type Token struct {
	kind Kind

	boolVal bool

	num   decimal.Decimal
	units string

	str string // Id value, Ref id, EscapedString value, Uri value, Ver value

	hasDisplay bool
	display    string // Ref's optional display string

	date Date
	time Time
	dt   DateTime
}

// Singleton tokens. These are safe to share since Token carries no pointers
// that would alias mutable state.
var (
	Empty  = Token{kind: KindEmpty}
	Null   = Token{kind: KindNull}
	Marker = Token{kind: KindMarker}
	Remove = Token{kind: KindRemove}
	NLTok  = Token{kind: KindNL}
	NATok  = Token{kind: KindNA}
	Inf    = Token{kind: KindInf}
	InfNeg = Token{kind: KindInfNeg}
	NaN    = Token{kind: KindNaN}
)

func NewBool(v bool) Token { return Token{kind: KindBool, boolVal: v} }

func NewNumber(n decimal.Decimal, units string) Token {
	return Token{kind: KindNumber, num: n, units: units}
}

func NewNumberFromFloat(f float64, units string) Token {
	return Token{kind: KindNumber, num: decimal.NewFromFloat(f), units: units}
}

func NewID(id string) Token { return Token{kind: KindID, str: id} }

func NewRef(id string) Token { return Token{kind: KindRef, str: id} }

func NewRefWithDisplay(id, display string) Token {
	return Token{kind: KindRef, str: id, hasDisplay: true, display: display}
}

func NewEscapedString(s string) Token { return Token{kind: KindEscapedString, str: s} }

func NewDate(d Date) Token { return Token{kind: KindDate, date: d} }

func NewTime(t Time) Token { return Token{kind: KindTime, time: t} }

func NewDateTime(dt DateTime) Token { return Token{kind: KindDateTime, dt: dt} }

func NewURI(s string) Token { return Token{kind: KindURI, str: s} }

func NewVer(s string) Token { return Token{kind: KindVer, str: s} }

func (t Token) Kind() Kind { return t.kind }

func (t Token) IsMarker() bool { return t.kind == KindMarker }
func (t Token) IsNull() bool   { return t.kind == KindNull }
func (t Token) IsRef() bool    { return t.kind == KindRef }
func (t Token) IsID() bool     { return t.kind == KindID }
func (t Token) IsNumber() bool { return t.kind == KindNumber }

func (t Token) BoolVal() bool { return t.boolVal }

func (t Token) Number() decimal.Decimal { return t.num }
func (t Token) Units() string           { return t.units }

// IDVal returns the raw identifier/ref/string/uri/ver payload, whichever
// applies to the receiver's Kind.
func (t Token) IDVal() string { return t.str }

func (t Token) RefID() string { return t.str }

func (t Token) RefDisplay() (string, bool) { return t.display, t.hasDisplay }

func (t Token) StringVal() string { return t.str }

func (t Token) DateVal() Date         { return t.date }
func (t Token) TimeVal() Time         { return t.time }
func (t Token) DateTimeVal() DateTime { return t.dt }

func (t Token) URIVal() string { return t.str }
func (t Token) VerVal() string { return t.str }

// Key returns a canonical string uniquely identifying the token's value.
// It is the mechanism by which Number tokens (and therefore any aggregate
// containing them) get equality, ordering, and hashing independent of
// float64's NaN and precision pitfalls: the key is built from the
// decimal's canonical string form, never from a raw float. Key is safe to
// use as a Go map key in place of Token itself, since Token embeds a
// decimal.Decimal whose internal representation is not suitable for `==`
// comparison across independently-constructed equal values.
func (t Token) Key() string {
	var b strings.Builder
	b.WriteString(t.kind.String())
	b.WriteByte(':')
	switch t.kind {
	case KindBool:
		b.WriteString(strconv.FormatBool(t.boolVal))
	case KindNumber:
		b.WriteString(canonicalDecimalString(t.num))
		b.WriteByte(' ')
		b.WriteString(t.units)
	case KindID, KindEscapedString, KindURI, KindVer:
		b.WriteString(t.str)
	case KindRef:
		b.WriteString(t.str)
		if t.hasDisplay {
			b.WriteByte(' ')
			b.WriteString(t.display)
		}
	case KindDate:
		fmt.Fprintf(&b, "%04d-%02d-%02d", t.date.Year, t.date.Month, t.date.Day)
	case KindTime:
		fmt.Fprintf(&b, "%02d:%02d:%02d.%09d", t.time.Hour, t.time.Min, t.time.Sec, t.time.Nanos)
	case KindDateTime:
		// Keyed by UTC instant, not by the raw offset-inclusive fields: two
		// DateTime tokens denoting the same instant (10:30:00-05:00 and
		// 15:30:00Z) must compare equal regardless of which offset/zone
		// they were recorded with, matching chrono's DateTime<FixedOffset>
		// equality in the original source.
		utc := t.asTime().UTC()
		fmt.Fprintf(&b, "%04d-%02d-%02dT%02d:%02d:%02d.%09dZ",
			utc.Year(), int(utc.Month()), utc.Day(),
			utc.Hour(), utc.Minute(), utc.Second(), utc.Nanosecond())
	}
	return b.String()
}

// canonicalDecimalString trims a decimal.Decimal's trailing fractional
// zeros so that values differing only in the scale they were parsed with
// (1.10 vs 1.1) produce the same key, matching decimal.Decimal.Cmp's
// notion of equality.
func canonicalDecimalString(d decimal.Decimal) string {
	s := d.String()
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

// Equal reports whether two tokens hold the same Kind and value. Marker,
// Null, NA, and Remove compare equal only to their own variant, which
// falls out naturally here since Key() is keyed by Kind.
func (t Token) Equal(o Token) bool { return t.Key() == o.Key() }

// Compare returns a total order over tokens: first by Kind, then by value
// within a kind. Numbers order by decimal value (via shopspring/decimal's
// Cmp), never by float64 comparison.
func (t Token) Compare(o Token) int {
	if t.kind != o.kind {
		if t.kind < o.kind {
			return -1
		}
		return 1
	}
	switch t.kind {
	case KindBool:
		if t.boolVal == o.boolVal {
			return 0
		}
		if !t.boolVal {
			return -1
		}
		return 1
	case KindNumber:
		return t.num.Cmp(o.num)
	case KindID, KindEscapedString, KindURI, KindVer:
		return strings.Compare(t.str, o.str)
	case KindRef:
		return strings.Compare(t.str, o.str)
	case KindDate, KindTime, KindDateTime:
		// DateTime's Key is a zero-padded UTC instant, so lexical order
		// here coincides with chronological order regardless of the
		// recorded offset/zone.
		return strings.Compare(t.Key(), o.Key())
	default:
		return 0
	}
}

func (t Token) asTime() time.Time {
	return time.Date(t.dt.Date.Year, time.Month(t.dt.Date.Month), t.dt.Date.Day,
		t.dt.Time.Hour, t.dt.Time.Min, t.dt.Time.Sec, t.dt.Time.Nanos,
		time.FixedZone(t.dt.Zone, t.dt.OffsetSec))
}

// ToZinc renders the token in its canonical Zinc textual form (spec.md §4.1).
func (t Token) ToZinc() string {
	switch t.kind {
	case KindEmpty:
		return ""
	case KindNull:
		return "N"
	case KindMarker:
		return "M"
	case KindRemove:
		return "R"
	case KindNL:
		return "\n"
	case KindNA:
		return "NA"
	case KindBool:
		if t.boolVal {
			return "T"
		}
		return "F"
	case KindInf:
		return "INF"
	case KindInfNeg:
		return "-INF"
	case KindNaN:
		return "NaN"
	case KindNumber:
		return t.num.String() + t.units
	case KindID:
		return t.str
	case KindRef:
		if t.hasDisplay {
			return "@" + t.str + " " + quoteZincString(t.display)
		}
		return "@" + t.str
	case KindEscapedString:
		return quoteZincString(t.str)
	case KindDate:
		return fmt.Sprintf("%04d-%02d-%02d", t.date.Year, t.date.Month, t.date.Day)
	case KindTime:
		return formatZincTime(t.time)
	case KindDateTime:
		return t.asTime().UTC().Format("2006-01-02T15:04:05.000") + "Z"
	case KindURI:
		return "`" + t.str + "`"
	case KindVer:
		return `ver:"` + t.str + `"`
	default:
		return ""
	}
}

func (t Token) String() string {
	// Display differs from ToZinc only for Bool (true/false vs T/F); every
	// other production renders the same under both.
	if t.kind == KindBool {
		return strconv.FormatBool(t.boolVal)
	}
	return t.ToZinc()
}

// ToJSON is a placeholder hook for a JSON rendering (spec.md §1's
// explicitly out-of-scope JSON encoding); it always returns "", mirroring
// every to_json implementation in the original source.
func (t Token) ToJSON() string { return "" }

func formatZincTime(tm Time) string {
	if tm.Nanos == 0 {
		return fmt.Sprintf("%02d:%02d:%02d", tm.Hour, tm.Min, tm.Sec)
	}
	frac := fmt.Sprintf("%09d", tm.Nanos)
	frac = strings.TrimRight(frac, "0")
	return fmt.Sprintf("%02d:%02d:%02d.%s", tm.Hour, tm.Min, tm.Sec, frac)
}

var zincEscapes = map[rune]string{
	'"':  `\"`,
	'\\': `\\`,
	'\n': `\n`,
	'\t': `\t`,
	'\r': `\r`,
	'\b': `\b`,
	'\f': `\f`,
}

func quoteZincString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		if esc, ok := zincEscapes[r]; ok {
			b.WriteString(esc)
			continue
		}
		if r < 0x20 {
			fmt.Fprintf(&b, `\u%04x`, r)
			continue
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}
