package fixtures

import (
	"path/filepath"
	"testing"

	"github.com/glennpierce/go-haystack/filter"
	"github.com/glennpierce/go-haystack/zinc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRefTagsYAML(t *testing.T) {
	data := []byte(`
- ref: "1"
  tags:
    dis: "Floor 1"
    elec:
    siteRef: "@site1"
    count: 3
    active: true
`)
	dataset, err := ParseRefTagsYAML(data)
	require.NoError(t, err)
	require.Len(t, dataset, 1)

	e := dataset[0]
	assert.Equal(t, "1", e.Ref.RefID())

	dis, ok := e.Tags.Get("dis")
	require.True(t, ok)
	disVal, _ := dis.ValueToken()
	assert.Equal(t, `"Floor 1"`, disVal.ToZinc())

	elec, ok := e.Tags.Get("elec")
	require.True(t, ok)
	_, hasVal := elec.ValueToken()
	assert.False(t, hasVal, "marker tag carries no value token")

	siteRef, ok := e.Tags.Get("siteRef")
	require.True(t, ok)
	siteRefVal, _ := siteRef.ValueToken()
	assert.True(t, siteRefVal.IsRef())
	assert.Equal(t, "site1", siteRefVal.RefID())

	count, ok := e.Tags.Get("count")
	require.True(t, ok)
	countVal, _ := count.ValueToken()
	assert.Equal(t, zinc.KindNumber, countVal.Kind())

	active, ok := e.Tags.Get("active")
	require.True(t, ok)
	activeVal, _ := active.ValueToken()
	assert.Equal(t, "T", activeVal.ToZinc())
}

func TestParseRefTagsYAMLRejectsUnknownField(t *testing.T) {
	data := []byte(`
- ref: "1"
  tags:
    dis: "One"
  bogus: true
`)
	_, err := ParseRefTagsYAML(data)
	assert.Error(t, err)
}

func TestLoadRefTagsFileEndToEndDataset(t *testing.T) {
	dataset, err := LoadRefTagsFile(filepath.Join("testdata", "endtoend.yaml"))
	require.NoError(t, err)
	assert.Len(t, dataset, 11)
	assert.Equal(t, "1", dataset[0].Ref.RefID())
	assert.Equal(t, "11", dataset[len(dataset)-1].Ref.RefID())
}

func TestLoadScenariosFileEndToEndScenarios(t *testing.T) {
	scenarios, err := LoadScenariosFile(filepath.Join("testdata", "endtoend_scenarios.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)
	for _, sc := range scenarios {
		assert.NotEmpty(t, sc.Name)
		assert.NotEmpty(t, sc.Filter)
	}
}

func TestSQLiteDatasetRoundTripsEndToEndScenarios(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.sqlite")
	require.NoError(t, BuildSampleSQLiteDataset(path))

	dataset, err := LoadSQLiteDataset(path)
	require.NoError(t, err)
	require.Len(t, dataset, 11)

	scenarios, err := LoadScenariosFile(filepath.Join("testdata", "endtoend_scenarios.yaml"))
	require.NoError(t, err)

	for _, sc := range scenarios {
		matched, err := filter.Eval(sc.Filter, dataset)
		require.NoError(t, err, sc.Name)

		gotIDs := make([]string, len(matched))
		for i, e := range matched {
			gotIDs[i] = e.Ref.RefID()
		}
		assert.ElementsMatch(t, sc.Expected, gotIDs, sc.Name)
	}
}
