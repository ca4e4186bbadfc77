package zinc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyGridIsCanonical(t *testing.T) {
	g := Empty()
	assert.Equal(t, "3.0", g.Meta.Version())
	assert.Equal(t, 1, len(g.Cols))
	assert.Equal(t, "empty", g.Cols[0].ID().IDVal())
	assert.Equal(t, 0, len(g.Rows))
}

func TestGridMetaTagStringFallsBackOnMissingTag(t *testing.T) {
	meta := NewGridMetaWithTags("3.0", Tags{NewTag(NewID("dis"), NewTokenVal(NewEscapedString("Title")))})
	assert.Equal(t, `"Title"`, meta.TagString("dis", "default"))
	assert.Equal(t, "default", meta.TagString("missing", "default"))
}

func TestGridMetaTagStringFallsBackWhenNoTags(t *testing.T) {
	meta := NewGridMeta("3.0")
	assert.Equal(t, "default", meta.TagString("dis", "default"))
}

func TestGridMetaTagIntFallsBackOnNonNumericValue(t *testing.T) {
	meta := NewGridMetaWithTags("3.0", Tags{
		NewTag(NewID("limit"), NewTokenVal(NewNumberFromFloat(42, ""))),
		NewTag(NewID("dis"), NewTokenVal(NewEscapedString("Title"))),
	})
	assert.Equal(t, 42, meta.TagInt("limit", -1))
	assert.Equal(t, -1, meta.TagInt("dis", -1))
	assert.Equal(t, -1, meta.TagInt("missing", -1))
}

func TestGridMetaTagBoolTreatsMarkerAsTrue(t *testing.T) {
	meta := NewGridMetaWithTags("3.0", Tags{
		NewMarkerTag(NewID("disabled")),
		NewTag(NewID("active"), NewTokenVal(NewBool(false))),
	})
	assert.True(t, meta.TagBool("disabled", false))
	assert.False(t, meta.TagBool("active", true))
	assert.True(t, meta.TagBool("missing", true))
}
