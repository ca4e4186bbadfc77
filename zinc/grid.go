package zinc

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Col is a column header: an id with optional column-level metadata
// (spec.md §3.2).
type Col struct {
	id   Token
	tags Tags
	hasTags bool
}

func NewCol(id Token) Col { return Col{id: id} }

func NewColWithTags(id Token, tags Tags) Col {
	return Col{id: id, tags: tags, hasTags: true}
}

func (c Col) ID() Token       { return c.id }
func (c Col) Tags() (Tags, bool) { return c.tags, c.hasTags }

func (c Col) ToZinc() string {
	if !c.hasTags || len(c.tags) == 0 {
		return c.id.ToZinc()
	}
	return c.id.ToZinc() + " " + c.tags.ToZinc()
}

// Cols is an ordered sequence of Col; column order is significant.
type Cols []Col

func (cs Cols) IndexOf(name string) int {
	for i, c := range cs {
		if c.id.IDVal() == name {
			return i
		}
	}
	return -1
}

func (cs Cols) ToZinc() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.ToZinc()
	}
	return strings.Join(parts, ",")
}

// Row is an ordered sequence of Val, one per column. len(Row) must equal
// len(Cols); a missing cell is represented as Token Null (spec.md §3.2).
type Row []Val

func (r Row) ToZinc() string {
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = v.ToZinc()
	}
	return strings.Join(parts, ",")
}

// Rows is an ordered sequence of Row.
type Rows []Row

func (rs Rows) ToZinc() string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = r.ToZinc()
	}
	return strings.Join(parts, "\n")
}

// GridMeta is (Ver, optional Tags).
type GridMeta struct {
	ver  Token
	tags Tags
	hasTags bool
}

func NewGridMeta(version string) GridMeta {
	return GridMeta{ver: NewVer(version)}
}

func NewGridMetaWithTags(version string, tags Tags) GridMeta {
	return GridMeta{ver: NewVer(version), tags: tags, hasTags: true}
}

func (m GridMeta) Version() string { return m.ver.VerVal() }
func (m GridMeta) Tags() (Tags, bool) { return m.tags, m.hasTags }

// TagString looks up a metadata tag by id and renders its value as a
// string, falling back to def on a missing tag or a non-scalar value.
// Ported from the original source's generic get_value<T> metadata getter
// (supplemented feature, see SPEC_FULL.md); Go's lack of that exact
// generic shape is why this is a family of typed methods instead of one.
func (m GridMeta) TagString(id, def string) string {
	if !m.hasTags {
		return def
	}
	tag, ok := m.tags.Get(id)
	if !ok {
		return def
	}
	tok, ok := tag.ValueToken()
	if !ok {
		return def
	}
	return tok.String()
}

// TagInt looks up a metadata tag by id and renders its value as an int,
// falling back to def on a missing tag, a non-numeric value, or a number
// that does not fit an int64.
func (m GridMeta) TagInt(id string, def int) int {
	if !m.hasTags {
		return def
	}
	tag, ok := m.tags.Get(id)
	if !ok {
		return def
	}
	tok, ok := tag.ValueToken()
	if !ok || !tok.IsNumber() {
		return def
	}
	n := tok.Number().Truncate(0)
	if n.Cmp(decimal.NewFromInt(math.MaxInt64)) > 0 || n.Cmp(decimal.NewFromInt(math.MinInt64)) < 0 {
		return def
	}
	return int(n.IntPart())
}

// TagBool looks up a metadata tag by id and renders its value as a bool,
// falling back to def on a missing tag or a non-bool value. A bare marker
// tag counts as true, matching the convention markers use elsewhere in
// Haystack tag sets.
func (m GridMeta) TagBool(id string, def bool) bool {
	if !m.hasTags {
		return def
	}
	tag, ok := m.tags.Get(id)
	if !ok {
		return def
	}
	tok, hasVal := tag.ValueToken()
	if !hasVal {
		return true
	}
	if tok.Kind() != KindBool {
		return def
	}
	return tok.BoolVal()
}

func (m GridMeta) ToZinc() string {
	if !m.hasTags || len(m.tags) == 0 {
		return m.ver.ToZinc()
	}
	return m.ver.ToZinc() + " " + m.tags.ToZinc()
}

// Grid is (GridMeta, Cols, Rows): the Haystack unit of transfer.
type Grid struct {
	Meta GridMeta
	Cols Cols
	Rows Rows
}

// Empty returns the canonical empty grid: ver:"3.0" with a single column
// named "empty" and zero rows (spec.md §3.2).
func Empty() *Grid {
	return &Grid{
		Meta: NewGridMeta("3.0"),
		Cols: Cols{NewCol(NewID("empty"))},
		Rows: Rows{},
	}
}

func (g *Grid) ToZinc() string {
	var b strings.Builder
	b.WriteString(g.Meta.ToZinc())
	b.WriteByte('\n')
	b.WriteString(g.Cols.ToZinc())
	if len(g.Rows) > 0 {
		b.WriteByte('\n')
		b.WriteString(g.Rows.ToZinc())
	}
	return b.String()
}
