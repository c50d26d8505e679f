package search

import (
	"testing"

	"github.com/poiesic/sift/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	vectorHits := []core.Hit{
		{Id: "a", Title: "A", URL: "https://x/a", Text: "alpha", Score: 0.9},
		{Id: "b", Title: "", URL: "https://x/b", Text: "", Score: 0.8},
	}
	lexicalHits := []core.Hit{
		{Id: "c", Title: "C", URL: "https://x/c", Text: "gamma", Score: 12},
		{Id: "b", Title: "B", URL: "https://x/other", Text: "beta", Score: 11},
	}
	lexicalScores := []float64{1.5, 2.5}

	table := Merge(vectorHits, lexicalHits, lexicalScores)

	t.Run("union by id in vector-first order", func(t *testing.T) {
		assert.Equal(t, 3, table.Len())
		assert.Equal(t, []core.ID{"a", "b", "c"}, table.IDs())
	})

	t.Run("vector only", func(t *testing.T) {
		a, ok := table.Get("a")
		require.True(t, ok)
		assert.Equal(t, 0.9, a.VectorScore)
		assert.Equal(t, 0.0, a.LexicalScore)
		assert.True(t, a.InVector)
		assert.False(t, a.InLexical)
	})

	t.Run("lexical only uses bm25 score", func(t *testing.T) {
		c, ok := table.Get("c")
		require.True(t, ok)
		assert.Equal(t, 0.0, c.VectorScore)
		assert.Equal(t, 1.5, c.LexicalScore)
		assert.False(t, c.InVector)
		assert.True(t, c.InLexical)
	})

	t.Run("both sources fill empty fields only", func(t *testing.T) {
		b, ok := table.Get("b")
		require.True(t, ok)
		assert.Equal(t, 0.8, b.VectorScore)
		assert.Equal(t, 2.5, b.LexicalScore)
		assert.True(t, b.InVector)
		assert.True(t, b.InLexical)
		assert.Equal(t, "B", b.Title)
		assert.Equal(t, "beta", b.Text)
		assert.Equal(t, "https://x/b", b.URL, "non-empty vector field is kept")
	})
}

func TestMerge_DuplicateHitsKeepFirstScore(t *testing.T) {
	vectorHits := []core.Hit{
		{Id: "a", Text: "alpha", Score: 0.9},
		{Id: "a", Text: "alpha again", Score: 0.1},
	}

	table := Merge(vectorHits, nil, nil)

	require.Equal(t, 1, table.Len())
	a, _ := table.Get("a")
	assert.Equal(t, 0.9, a.VectorScore)
	assert.Equal(t, "alpha", a.Text)
}

func TestMerge_MissingLexicalScores(t *testing.T) {
	lexicalHits := []core.Hit{{Id: "a", Text: "alpha"}, {Id: "b", Text: "beta"}}

	table := Merge(nil, lexicalHits, []float64{3})

	a, _ := table.Get("a")
	b, _ := table.Get("b")
	assert.Equal(t, 3.0, a.LexicalScore)
	assert.Equal(t, 0.0, b.LexicalScore)
	assert.True(t, b.InLexical)
}

func TestMerge_Empty(t *testing.T) {
	table := Merge(nil, nil, nil)
	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.IDs())
	assert.Empty(t, table.Candidates())

	_, ok := table.Get("a")
	assert.False(t, ok)
}

func TestCandidateTable_IDsIsACopy(t *testing.T) {
	table := Merge([]core.Hit{{Id: "a"}, {Id: "b"}}, nil, nil)

	ids := table.IDs()
	ids[0] = "z"

	assert.Equal(t, []core.ID{"a", "b"}, table.IDs())
}
