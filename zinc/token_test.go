package zinc

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTokenToZincSingletons(t *testing.T) {
	assert.Equal(t, "N", Null.ToZinc())
	assert.Equal(t, "M", Marker.ToZinc())
	assert.Equal(t, "R", Remove.ToZinc())
	assert.Equal(t, "NA", NATok.ToZinc())
	assert.Equal(t, "T", NewBool(true).ToZinc())
	assert.Equal(t, "F", NewBool(false).ToZinc())
}

func TestTokenNumberCanonicalString(t *testing.T) {
	n := NewNumber(decimal.RequireFromString("12.5"), "kWh")
	assert.Equal(t, "12.5kWh", n.ToZinc())
}

func TestTokenNumberEqualityByDecimalNotFloat(t *testing.T) {
	a := NewNumber(decimal.RequireFromString("1.10"), "")
	b := NewNumber(decimal.RequireFromString("1.1"), "")
	assert.True(t, a.Equal(b), "1.10 and 1.1 should compare equal via decimal, not string")
}

func TestTokenSingletonsOnlyEqualOwnVariant(t *testing.T) {
	assert.False(t, Marker.Equal(Null))
	assert.False(t, Null.Equal(NATok))
	assert.False(t, Remove.Equal(Marker))
	assert.True(t, Marker.Equal(Marker))
}

func TestTokenCompareOrdersByKindThenValue(t *testing.T) {
	lo := NewNumber(decimal.RequireFromString("1"), "")
	hi := NewNumber(decimal.RequireFromString("2"), "")
	assert.Equal(t, -1, lo.Compare(hi))
	assert.Equal(t, 1, hi.Compare(lo))
	assert.Equal(t, 0, lo.Compare(lo))
}

func TestRefToZinc(t *testing.T) {
	assert.Equal(t, "@foo", NewRef("foo").ToZinc())
	assert.Equal(t, `@foo "Foo Bar"`, NewRefWithDisplay("foo", "Foo Bar").ToZinc())
}

func TestEscapedStringRoundTrip(t *testing.T) {
	tok := NewEscapedString("line\nwith\ttab and \"quote\"")
	zinc := tok.ToZinc()
	parsed, err := Parse("ver:\"3.0\"\na\n" + zinc)
	require := assert.New(t)
	require.NoError(err)
	cell := parsed.Rows[0][0]
	parsedTok, ok := cell.Token()
	require.True(ok)
	require.True(tok.Equal(parsedTok))
}

func TestTokenToJSONIsAlwaysEmptyPlaceholder(t *testing.T) {
	assert.Equal(t, "", Marker.ToJSON())
	assert.Equal(t, "", NewEscapedString("Title").ToJSON())
	assert.Equal(t, "", NewTokenVal(NewBool(true)).ToJSON())
}

func TestDateTimeToZincIsUTCWithMillis(t *testing.T) {
	dt := NewDateTime(DateTime{
		Date:      Date{Year: 2021, Month: 3, Day: 1},
		Time:      Time{Hour: 10, Min: 30, Sec: 0},
		OffsetSec: -5 * 3600,
		Zone:      "New_York",
	})
	assert.Equal(t, "2021-03-01T15:30:00.000Z", dt.ToZinc())
}

func TestDateTimeEqualityIgnoresRecordedOffset(t *testing.T) {
	newYork := NewDateTime(DateTime{
		Date:      Date{Year: 2021, Month: 3, Day: 1},
		Time:      Time{Hour: 10, Min: 30, Sec: 0},
		OffsetSec: -5 * 3600,
		Zone:      "New_York",
	})
	utc := NewDateTime(DateTime{
		Date: Date{Year: 2021, Month: 3, Day: 1},
		Time: Time{Hour: 15, Min: 30, Sec: 0},
	})

	assert.True(t, newYork.Equal(utc), "same instant, different recorded offset, must compare equal")
	assert.Equal(t, 0, newYork.Compare(utc))
}

func TestDateTimeCompareOrdersByInstantNotOffset(t *testing.T) {
	earlier := NewDateTime(DateTime{
		Date: Date{Year: 2021, Month: 3, Day: 1},
		Time: Time{Hour: 15, Min: 0, Sec: 0},
	})
	later := NewDateTime(DateTime{
		Date:      Date{Year: 2021, Month: 3, Day: 1},
		Time:      Time{Hour: 10, Min: 30, Sec: 0},
		OffsetSec: -5 * 3600,
		Zone:      "New_York",
	}) // 15:30 UTC, nominally "earlier" clock time but a later instant

	assert.Equal(t, -1, earlier.Compare(later))
	assert.Equal(t, 1, later.Compare(earlier))
}
