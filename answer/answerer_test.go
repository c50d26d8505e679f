package answer

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/sift/ai/mock"
	"github.com/poiesic/sift/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRetriever struct {
	results core.ResultSet
	err     error
	queries []string
}

func (r *fakeRetriever) Retrieve(_ context.Context, query string) (core.ResultSet, error) {
	r.queries = append(r.queries, query)
	return r.results, r.err
}

func TestNewAnswerer(t *testing.T) {
	_, err := NewAnswerer(nil, mock.NewMockGenerator())
	assert.ErrorIs(t, err, ErrRetrieverRequired)

	_, err = NewAnswerer(&fakeRetriever{}, nil)
	assert.ErrorIs(t, err, ErrGeneratorRequired)

	_, err = NewAnswerer(&fakeRetriever{}, mock.NewMockGenerator(), WithSystemPrompt("  "))
	assert.Error(t, err)

	a, err := NewAnswerer(&fakeRetriever{}, mock.NewMockGenerator(), WithContextBudget(50), WithLogger(nil))
	require.NoError(t, err)
	assert.Equal(t, 50, a.budget)
	assert.Equal(t, SystemPrompt, a.systemPrompt)
}

func TestAnswerer_Ask(t *testing.T) {
	ctx := context.Background()
	retriever := &fakeRetriever{results: testResults()}
	generator := mock.NewMockGenerator()
	generator.GenerateFunc = func(ctx context.Context, system, prompt string) (string, error) {
		return "Fast for twelve hours.", nil
	}

	a, err := NewAnswerer(retriever, generator)
	require.NoError(t, err)

	ans, err := a.Ask(ctx, "Do I need to fast?")
	require.NoError(t, err)

	assert.Equal(t, "Do I need to fast?", ans.Question)
	assert.Equal(t, "Fast for twelve hours.", ans.Text)
	assert.Equal(t, []core.ID{"a", "b"}, ans.Sources.IDs())
	assert.Equal(t, []string{"Do I need to fast?"}, retriever.queries)

	system, prompt := generator.LastPrompt()
	assert.Equal(t, SystemPrompt, system)
	assert.Equal(t, BuildPrompt("Do I need to fast?", BuildContext(testResults(), DefaultContextBudget)), prompt)
}

func TestAnswerer_AskWithoutContext(t *testing.T) {
	generator := mock.NewMockGenerator()
	a, err := NewAnswerer(&fakeRetriever{results: core.ResultSet{}}, generator, WithSystemPrompt("be brief"))
	require.NoError(t, err)

	ans, err := a.Ask(context.Background(), "What is ferritin?")
	require.NoError(t, err)

	assert.Empty(t, ans.Sources)
	assert.Equal(t, 1, generator.CallCount(), "generator is still asked")
	system, prompt := generator.LastPrompt()
	assert.Equal(t, "be brief", system)
	assert.Contains(t, prompt, "Context:\n\n\nAnswer:")
}

func TestAnswerer_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("retrieval error", func(t *testing.T) {
		retrievalErr := errors.New("store offline")
		generator := mock.NewMockGenerator()
		a, err := NewAnswerer(&fakeRetriever{err: retrievalErr}, generator)
		require.NoError(t, err)

		_, err = a.Ask(ctx, "q")
		assert.ErrorIs(t, err, retrievalErr)
		assert.Equal(t, 0, generator.CallCount())
	})

	t.Run("generation error", func(t *testing.T) {
		generator := mock.NewMockGenerator()
		generator.GenerateFunc = func(ctx context.Context, system, prompt string) (string, error) {
			return "", errors.New("rate limited")
		}
		a, err := NewAnswerer(&fakeRetriever{results: testResults()}, generator)
		require.NoError(t, err)

		ans, err := a.Ask(ctx, "q")
		assert.Nil(t, ans)
		assert.ErrorIs(t, err, ErrGenerationFailed)
		assert.Contains(t, err.Error(), "rate limited")
	})
}
