package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestFindsCloseMatch(t *testing.T) {
	got := Suggest("contians", []string{"contains", "icontains", "in", "="})
	assert.NotEmpty(t, got)
	assert.Equal(t, "contains", got[0])
}

func TestSuggestIsCaseInsensitive(t *testing.T) {
	got := Suggest("STATUS", []string{"status", "state"})
	assert.NotEmpty(t, got)
	assert.Equal(t, "status", got[0])
}

func TestSuggestDropsUnrelated(t *testing.T) {
	assert.Empty(t, Suggest("zzzzzz", []string{"=", ">", "<", "in"}))
}

func TestSuggestCapsAndRanks(t *testing.T) {
	got := Suggest("stat", []string{"star", "stab", "spat", "stay", "stat"})
	assert.Len(t, got, 3)
	assert.Equal(t, "stat", got[0], "exact match must rank first")
	assert.Equal(t, []string{"spat", "stab"}, got[1:], "equal distances break ties alphabetically")
}
