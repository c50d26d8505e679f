package search

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackfill(t *testing.T) {
	ctx := context.Background()

	store := newFakeStore()
	store.stored["a"] = core.StoredEmbedding{Embedding: []float32{1, 0}, Text: "alpha"}
	store.stored["b"] = core.StoredEmbedding{Embedding: []float32{0, 1}, Text: "beta from store"}
	store.stored["noemb"] = core.StoredEmbedding{Text: "no vector"}
	store.stored["notext"] = core.StoredEmbedding{Embedding: []float32{1, 1}}

	table := Merge(
		[]core.Hit{{Id: "a", Text: "alpha"}, {Id: "noemb", Text: "no vector"}},
		[]core.Hit{{Id: "b"}, {Id: "ghost", Text: "vanished"}, {Id: "notext"}},
		[]float64{1, 2, 3},
	)

	result, err := Backfill(ctx, store, table, 2)
	require.NoError(t, err)

	assert.Equal(t, 1, store.bulkCalls, "one batched read per query")
	assert.ElementsMatch(t, table.IDs(), store.bulkIDs)

	require.Len(t, result.Candidates, 2)
	assert.Equal(t, core.ID("a"), result.Candidates[0].Id)
	assert.Equal(t, core.ID("b"), result.Candidates[1].Id)
	assert.Equal(t, "beta from store", result.Candidates[1].Text, "empty text is backfilled")
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, result.Vectors)

	dropped := make(map[core.ID]error)
	for _, d := range result.Dropped {
		dropped[d.Id] = d.Err
		assert.ErrorIs(t, d.Err, core.ErrMalformedDocument)
	}
	require.Len(t, dropped, 3)
	assert.ErrorIs(t, dropped["ghost"], storage.ErrNotFound)
	assert.ErrorIs(t, dropped["noemb"], core.ErrEmptyEmbedding)
	assert.ErrorIs(t, dropped["notext"], core.ErrEmptyText)
}

func TestBackfill_KeepsExistingText(t *testing.T) {
	store := newFakeStore()
	store.stored["a"] = core.StoredEmbedding{Embedding: []float32{1, 0}, Text: "stored text"}

	table := Merge([]core.Hit{{Id: "a", Text: "hit text"}}, nil, nil)

	result, err := Backfill(context.Background(), store, table, 0)
	require.NoError(t, err)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "hit text", result.Candidates[0].Text)
}

func TestBackfill_EmptyTable(t *testing.T) {
	store := newFakeStore()

	result, err := Backfill(context.Background(), store, NewCandidateTable(), 2)
	require.NoError(t, err)
	assert.Empty(t, result.Candidates)
	assert.Empty(t, result.Vectors)
	assert.Equal(t, 0, store.bulkCalls)
}

func TestBackfill_DimensionMismatch(t *testing.T) {
	store := newFakeStore()
	small, large := make([]float32, 384), make([]float32, 768)
	small[0], large[0] = 1, 1
	store.stored["a"] = core.StoredEmbedding{Embedding: small, Text: "a"}
	store.stored["b"] = core.StoredEmbedding{Embedding: large, Text: "b"}

	table := Merge([]core.Hit{{Id: "a"}, {Id: "b"}}, nil, nil)

	_, err := Backfill(context.Background(), store, table, 384)
	var dm *core.DimensionMismatchError
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 384, dm.Expected)
	assert.Equal(t, 768, dm.Got)
}

func TestBackfill_NonFiniteEmbeddingIsDropped(t *testing.T) {
	store := newFakeStore()
	store.stored["nan"] = core.StoredEmbedding{Embedding: []float32{float32(math.NaN()), 0}, Text: "x"}
	store.stored["ok"] = core.StoredEmbedding{Embedding: []float32{1, 0}, Text: "y"}

	table := Merge([]core.Hit{{Id: "nan"}, {Id: "ok"}}, nil, nil)

	result, err := Backfill(context.Background(), store, table, 2)
	require.NoError(t, err)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, core.ID("ok"), result.Candidates[0].Id)
	require.Len(t, result.Dropped, 1)
	assert.ErrorIs(t, result.Dropped[0].Err, core.ErrNonFiniteEmbedding)
}

func TestBackfill_StoreFailure(t *testing.T) {
	store := newFakeStore()
	store.bulkErr = errors.New("connection reset")

	table := Merge([]core.Hit{{Id: "a", Text: "alpha"}}, nil, nil)

	_, err := Backfill(context.Background(), store, table, 2)
	require.ErrorIs(t, err, ErrFetchFailed)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, StageBulkFetch, fe.Stage)
	assert.EqualError(t, fe.Cause, "connection reset")
}
