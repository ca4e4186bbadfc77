package zinc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleGrid(t *testing.T) {
	src := "ver:\"3.0\"\nid,dis\n@1,\"One\"\n@2,\"Two\"\n"
	g, err := Parse(src)
	require.NoError(t, err)
	require.Equal(t, 2, len(g.Cols))
	require.Equal(t, 2, len(g.Rows))

	id0, ok := g.Rows[0][0].Token()
	require.True(t, ok)
	assert.Equal(t, "@1", id0.ToZinc())

	dis0, ok := g.Rows[0][1].Token()
	require.True(t, ok)
	assert.Equal(t, `"One"`, dis0.ToZinc())
}

func TestParseGridRoundTrip(t *testing.T) {
	src := "ver:\"3.0\"\na,b\n1,2\n3,4\n"
	g, err := Parse(src)
	require.NoError(t, err)

	again, err := Parse(g.ToZinc())
	require.NoError(t, err)
	assert.Equal(t, g.ToZinc(), again.ToZinc())
}

func TestParseEmptyCellIsNull(t *testing.T) {
	g, err := Parse("ver:\"3.0\"\na,b,c\n1,,5\n")
	require.NoError(t, err)
	mid, ok := g.Rows[0][1].Token()
	require.True(t, ok)
	assert.True(t, mid.IsNull())
}

func TestParseMarkerVsIdentifierByPosition(t *testing.T) {
	// In value position, a bare "M" is the Marker scalar.
	g, err := Parse("ver:\"3.0\"\na\nM\n")
	require.NoError(t, err)
	cell, ok := g.Rows[0][0].Token()
	require.True(t, ok)
	assert.True(t, cell.IsMarker())
}

func TestParseMarkerTagInColumnMeta(t *testing.T) {
	// "foo" in tag-id position is always an identifier, never a scalar,
	// even if it happened to start with an uppercase letter it would fail
	// the id production instead.
	g, err := Parse("ver:\"3.0\"\na foo\n1\n")
	require.NoError(t, err)
	tags, ok := g.Cols[0].Tags()
	require.True(t, ok)
	assert.True(t, tags.Has("foo"))
}

func TestParseList(t *testing.T) {
	g, err := Parse("ver:\"3.0\"\na\n[1,2,3]\n")
	require.NoError(t, err)
	list, ok := g.Rows[0][0].List()
	require.True(t, ok)
	assert.Equal(t, 3, len(list))
}

func TestParseDict(t *testing.T) {
	g, err := Parse("ver:\"3.0\"\na\n{x:1 y:2}\n")
	require.NoError(t, err)
	dict, ok := g.Rows[0][0].Dict()
	require.True(t, ok)
	x, ok := dict.Get("x")
	require.True(t, ok)
	xv, _ := x.ValueToken()
	assert.Equal(t, "1", xv.ToZinc())
}

func TestParseSubGrid(t *testing.T) {
	g, err := Parse("ver:\"3.0\"\na\n<<\nver:\"3.0\"\nb\n1\n>>\n")
	require.NoError(t, err)
	val, ok := g.Rows[0][0].Grid()
	require.True(t, ok)
	assert.Equal(t, "3.0", val.Meta.Version())
}

func TestParseDate(t *testing.T) {
	g, err := Parse("ver:\"3.0\"\na\n2021-03-01\n")
	require.NoError(t, err)
	tok, _ := g.Rows[0][0].Token()
	require.Equal(t, KindDate, tok.Kind())
	assert.Equal(t, "2021-03-01", tok.ToZinc())
}

func TestParseDateTimeWithoutZoneName(t *testing.T) {
	g, err := Parse("ver:\"3.0\"\na\n2021-03-01T10:30:00-05:00\n")
	require.NoError(t, err)
	tok, _ := g.Rows[0][0].Token()
	require.Equal(t, KindDateTime, tok.Kind())
	dt := tok.DateTimeVal()
	assert.Equal(t, -5*3600, dt.OffsetSec)
}

func TestParseNumberWithUnit(t *testing.T) {
	g, err := Parse("ver:\"3.0\"\na\n72.3kWh\n")
	require.NoError(t, err)
	tok, _ := g.Rows[0][0].Token()
	assert.Equal(t, "kWh", tok.Units())
}

func TestParseNegativeNumber(t *testing.T) {
	g, err := Parse("ver:\"3.0\"\na\n-4\n")
	require.NoError(t, err)
	tok, _ := g.Rows[0][0].Token()
	assert.Equal(t, "-4", tok.ToZinc())
}

func TestParseInfAndNaN(t *testing.T) {
	g, err := Parse("ver:\"3.0\"\na,b,c\nINF,-INF,NaN\n")
	require.NoError(t, err)
	a, _ := g.Rows[0][0].Token()
	b, _ := g.Rows[0][1].Token()
	c, _ := g.Rows[0][2].Token()
	assert.Equal(t, KindInf, a.Kind())
	assert.Equal(t, KindInfNeg, b.Kind())
	assert.Equal(t, KindNaN, c.Kind())
}

func TestParseURI(t *testing.T) {
	g, err := Parse("ver:\"3.0\"\na\n`http://example.com`\n")
	require.NoError(t, err)
	tok, _ := g.Rows[0][0].Token()
	assert.Equal(t, KindURI, tok.Kind())
	assert.Equal(t, "http://example.com", tok.URIVal())
}

func TestParseMalformedInputReturnsStructuredError(t *testing.T) {
	_, err := Parse("not a grid at all")
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.GreaterOrEqual(t, perr.Offset, 0)
}

func TestParseRangeKeywords(t *testing.T) {
	now := mustParseTime(t, "2021-06-10T15:04:05Z").UTC()

	rng, err := ParseRange("today", now)
	require.NoError(t, err)
	assert.Equal(t, "2021-06-10T00:00:00.000Z", rng.Start.ToZinc())
	assert.Equal(t, "2021-06-10T15:04:05.000Z", rng.End.ToZinc())

	rng, err = ParseRange("yesterday", now)
	require.NoError(t, err)
	assert.Equal(t, "2021-06-09T00:00:00.000Z", rng.Start.ToZinc())
	assert.Equal(t, "2021-06-10T00:00:00.000Z", rng.End.ToZinc())
}

func TestParseRangeDatePair(t *testing.T) {
	now := mustParseTime(t, "2021-06-10T15:04:05Z")
	rng, err := ParseRange("2021-01-01,2021-02-01", now)
	require.NoError(t, err)
	assert.Equal(t, "2021-01-01T00:00:00.000Z", rng.Start.ToZinc())
	assert.Equal(t, "2021-02-01T00:00:00.000Z", rng.End.ToZinc())
}

func mustParseTime(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return parsed
}
