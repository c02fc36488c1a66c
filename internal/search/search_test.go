package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titlesOf(matches []Match, titles []string) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = titles[m.Index]
	}
	return out
}

func TestRank(t *testing.T) {
	titles := []string{"The Matrix Reloaded", "Matrix", "Mr. Robot", "Amatrix Story", "Lord of the Rings"}

	t.Run("exact beats prefix beats substring", func(t *testing.T) {
		got := titlesOf(Rank("matrix", titles), titles)
		require.NotEmpty(t, got)
		assert.Equal(t, "Matrix", got[0])
		assert.Equal(t, "The Matrix Reloaded", got[1])
		assert.Contains(t, got, "Amatrix Story")
	})

	t.Run("word order does not matter", func(t *testing.T) {
		got := titlesOf(Rank("robot mr", titles), titles)
		require.NotEmpty(t, got)
		assert.Equal(t, "Mr. Robot", got[0])
	})

	t.Run("typos are tolerated on long tokens", func(t *testing.T) {
		got := titlesOf(Rank("matrx", titles), titles)
		assert.Contains(t, got, "Matrix")
	})

	t.Run("scattered letters rank last", func(t *testing.T) {
		got := titlesOf(Rank("lotr", titles), titles)
		assert.Equal(t, []string{"Lord of the Rings"}, got)
	})

	t.Run("matched indexes point at runes", func(t *testing.T) {
		m := Rank("mat", []string{"Matrix"})
		require.Len(t, m, 1)
		assert.Equal(t, []int{0, 1, 2}, m[0].MatchedIndexes)
	})

	t.Run("empty query", func(t *testing.T) {
		assert.Nil(t, Rank("  ", titles))
	})
}

func TestSuggest(t *testing.T) {
	t.Run("empty query lists recent keywords", func(t *testing.T) {
		got := Suggest("", []string{"alien", "heat", "Alien"}, nil, 5)
		require.Len(t, got, 2)
		assert.Equal(t, "alien", got[0].Text)
		assert.Equal(t, SourceRecent, got[0].Source)
	})

	t.Run("recent keyword wins over an equal title", func(t *testing.T) {
		got := Suggest("heat", []string{"heat"}, []string{"Heat", "Heathers"}, 5)
		require.Len(t, got, 2)
		assert.Equal(t, "heat", got[0].Text)
		assert.Equal(t, SourceRecent, got[0].Source)
		assert.Equal(t, "Heathers", got[1].Text)
	})

	t.Run("limit caps the result", func(t *testing.T) {
		got := Suggest("a", nil, []string{"Alien", "Aliens", "Amelie"}, 2)
		assert.Len(t, got, 2)
	})
}
