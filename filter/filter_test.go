package filter_test

import (
	"sort"
	"testing"

	"github.com/glennpierce/go-haystack/filter"
	"github.com/glennpierce/go-haystack/fixtures"
	"github.com/glennpierce/go-haystack/zinc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadEndToEndDataset(t *testing.T) filter.RefTags {
	t.Helper()
	dataset, err := fixtures.LoadRefTagsFile("../fixtures/testdata/endtoend.yaml")
	require.NoError(t, err)
	return dataset
}

func refIDs(refs []zinc.Token) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.RefID()
	}
	sort.Strings(out)
	return out
}

func evalToIDs(t *testing.T, expr string, dataset filter.RefTags) []string {
	t.Helper()
	tokens, err := filter.Tokenize(expr)
	require.NoError(t, err, "tokenize %q", expr)
	rpn, err := filter.ToRPN(tokens)
	require.NoError(t, err, "to_rpn %q", expr)
	refs, err := filter.EvaluateRefs(rpn, dataset)
	require.NoError(t, err, "evaluate %q", expr)
	return refIDs(refs)
}

func TestEndToEndScenarios(t *testing.T) {
	dataset := loadEndToEndDataset(t)
	scenarios, err := fixtures.LoadScenariosFile("../fixtures/testdata/endtoend_scenarios.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, sc := range scenarios {
		sc := sc
		t.Run(sc.Name, func(t *testing.T) {
			got := evalToIDs(t, sc.Filter, dataset)
			want := append([]string{}, sc.Expected...)
			sort.Strings(want)
			assert.Equal(t, want, got)
		})
	}
}

func TestNotIsComplementOfItsOperand(t *testing.T) {
	dataset := loadEndToEndDataset(t)
	all := evalToIDs(t, "dis", dataset) // every entity carries dis
	pos := evalToIDs(t, "elec", dataset)
	neg := evalToIDs(t, "not elec", dataset)

	assert.ElementsMatch(t, all, append(append([]string{}, pos...), neg...))
	for _, id := range pos {
		assert.NotContains(t, neg, id)
	}
}

func TestAndIsSubsetOfBothOperands(t *testing.T) {
	dataset := loadEndToEndDataset(t)
	a := evalToIDs(t, "elec", dataset)
	b := evalToIDs(t, "heat", dataset)
	and := evalToIDs(t, "elec and heat", dataset)

	for _, id := range and {
		assert.Contains(t, a, id)
		assert.Contains(t, b, id)
	}
}

func TestOrIsSupersetOfBothOperands(t *testing.T) {
	dataset := loadEndToEndDataset(t)
	a := evalToIDs(t, "elec", dataset)
	b := evalToIDs(t, "water", dataset)
	or := evalToIDs(t, "elec or water", dataset)

	for _, id := range a {
		assert.Contains(t, or, id)
	}
	for _, id := range b {
		assert.Contains(t, or, id)
	}
}

func TestAndIsCommutative(t *testing.T) {
	dataset := loadEndToEndDataset(t)
	assert.Equal(t, evalToIDs(t, "elec and heat", dataset), evalToIDs(t, "heat and elec", dataset))
}

func TestEmptyDatasetEverythingIsEmpty(t *testing.T) {
	var dataset filter.RefTags
	assert.Empty(t, evalToIDs(t, "elec and siteRef->geoCity == \"Chicago\"", dataset))
	assert.Empty(t, evalToIDs(t, "not elec", dataset))
}

func TestUnknownTagIsEmptyNotAnError(t *testing.T) {
	dataset := loadEndToEndDataset(t)
	assert.Empty(t, evalToIDs(t, "zzz", dataset))
	assert.Equal(t, evalToIDs(t, "dis", dataset), evalToIDs(t, "not zzz", dataset))
}

func TestPathWithUnreferencedFirstTagIsEmpty(t *testing.T) {
	dataset := loadEndToEndDataset(t)
	assert.Empty(t, evalToIDs(t, "pointRef->zzzTag", dataset))
}

func TestComparisonWithMismatchedTypeIsEmptyNotError(t *testing.T) {
	dataset := loadEndToEndDataset(t)
	assert.Empty(t, evalToIDs(t, `carnego_number_of_bedrooms == "3.0"`, dataset))
}

func TestSymmetricComparisonLiteralOnLeft(t *testing.T) {
	dataset := loadEndToEndDataset(t)
	left := evalToIDs(t, `siteRef->geoCity == "Chicago"`, dataset)
	right := evalToIDs(t, `"Chicago" == siteRef->geoCity`, dataset)
	assert.Equal(t, left, right)
}

func TestSymmetricComparisonSwapsOrderingOperators(t *testing.T) {
	dataset := loadEndToEndDataset(t)
	left := evalToIDs(t, "carnego_number_of_bedrooms > 1.0", dataset)
	right := evalToIDs(t, "1.0 < carnego_number_of_bedrooms", dataset)
	assert.Equal(t, left, right)
}

func TestMissingArgumentError(t *testing.T) {
	_, err := filter.Tokenize("elec and")
	require.Error(t, err)
}

func TestUnbalancedParenError(t *testing.T) {
	_, err := filter.Tokenize("(elec and heat")
	require.Error(t, err)
}

func TestMismatchedRParenError(t *testing.T) {
	tokens, err := filter.Tokenize("elec)")
	require.Error(t, err)
	_ = tokens
}

func TestToRPNTooManyOperandsError(t *testing.T) {
	tokens := []filter.FilterToken{
		filter.NewPathToken([]zinc.Token{zinc.NewID("elec")}),
		filter.NewPathToken([]zinc.Token{zinc.NewID("heat")}),
	}
	_, err := filter.ToRPN(tokens)
	require.Error(t, err)
}
