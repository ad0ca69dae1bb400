package connection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelection(t *testing.T) {
	got, err := ParseSelection("id, name fullTextRank clientByClientId { name bioRank }")
	require.NoError(t, err)
	assert.Equal(t, []Selection{
		{Name: "id"},
		{Name: "name"},
		{Name: "fullTextRank"},
		{Name: "clientByClientId", Selection: []Selection{{Name: "name"}, {Name: "bioRank"}}},
	}, got)
	assert.Equal(t, "clientByClientId { name bioRank }", got[3].String())
}

func TestParseSelectionErrors(t *testing.T) {
	for _, in := range []string{"", "  ", "{ id }", "a { b", "a }", "a { }", "a $"} {
		_, err := ParseSelection(in)
		assert.ErrorIs(t, err, ErrInvalidSelection, "input %q", in)
	}
}
