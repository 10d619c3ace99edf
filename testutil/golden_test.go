package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetGoldenPathJoinsFeatureAndName(t *testing.T) {
	assert.Equal(t, "testdata/dtree/option-missing-none.golden.json", GetGoldenPath("dtree", "option-missing-none"))
}

func TestDiffJSONHighlightsChangedLines(t *testing.T) {
	diff := DiffJSON(
		map[string]any{"exhaustive": false, "missing": []string{"None"}},
		map[string]any{"exhaustive": true, "missing": []string{}},
	)
	assert.Contains(t, diff, "JSON Diff:")
	assert.Contains(t, diff, "- ")
	assert.Contains(t, diff, "+ ")
}

func TestDiffJSONEqualValuesProduceNoChangedLines(t *testing.T) {
	same := map[string]any{"a": 1}
	diff := DiffJSON(same, same)
	assert.NotContains(t, diff, "- ")
	assert.NotContains(t, diff, "+ ")
}
