package openai

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/poiesic/sift/ai"
	"github.com/poiesic/sift/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeEmbeddings struct {
	vectors [][]float32
	err     error
}

func (f *fakeEmbeddings) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors, nil
}

func (f *fakeEmbeddings) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors[0], nil
}

type fakeModel struct {
	messages []llms.MessageContent
	reply    *llms.ContentResponse
	err      error
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	return f.reply, f.err
}

func (f *fakeModel) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return "", errors.New("not used")
}

func TestNewProvider(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		provider, err := NewProvider(ai.NewConfig(ai.WithAPIKey("sk-test")))
		require.NoError(t, err)
		defer provider.Close()

		assert.NotNil(t, provider.Embedder())
		assert.NotNil(t, provider.Generator())
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := NewProvider(&ai.Config{})
		assert.Error(t, err)
	})
}

func TestStandaloneConstructors(t *testing.T) {
	embedder, err := NewEmbedder(ai.DefaultConfig())
	require.NoError(t, err)
	assert.NotNil(t, embedder)

	generator, err := NewGenerator(ai.DefaultConfig())
	require.NoError(t, err)
	assert.NotNil(t, generator)

	_, err = NewEmbedder(&ai.Config{})
	assert.Error(t, err)
	_, err = NewGenerator(&ai.Config{})
	assert.Error(t, err)
}

func TestEmbedder_DimensionCheck(t *testing.T) {
	ctx := context.Background()

	e := &Embedder{
		embedder:   &fakeEmbeddings{vectors: [][]float32{make([]float32, 384)}},
		dimensions: 768,
		logger:     slog.Default(),
	}
	_, err := e.EmbedText(ctx, "query")
	require.Error(t, err)

	var dm *core.DimensionMismatchError
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 768, dm.Expected)
	assert.Equal(t, 384, dm.Got)

	e.dimensions = 384
	v, err := e.EmbedText(ctx, "query")
	require.NoError(t, err)
	assert.Len(t, v, 384)

	e.dimensions = 0
	_, err = e.EmbedTexts(ctx, []string{"a"})
	assert.NoError(t, err)
}

func TestEmbedder_EmptyResult(t *testing.T) {
	e := &Embedder{
		embedder: &fakeEmbeddings{vectors: [][]float32{}},
		logger:   slog.Default(),
	}
	v, err := e.EmbedText(context.Background(), "query")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestGenerator_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("sends system and human messages", func(t *testing.T) {
		model := &fakeModel{reply: &llms.ContentResponse{
			Choices: []*llms.ContentChoice{{Content: "  the answer \n"}}},
		}
		g := &Generator{client: model, temperature: 0.2, logger: slog.Default()}

		reply, err := g.Generate(ctx, "be brief", "question")
		require.NoError(t, err)
		assert.Equal(t, "the answer", reply)
		require.Len(t, model.messages, 2)
		assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
		assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)
	})

	t.Run("omits empty system message", func(t *testing.T) {
		model := &fakeModel{reply: &llms.ContentResponse{
			Choices: []*llms.ContentChoice{{Content: "ok"}}},
		}
		g := &Generator{client: model, logger: slog.Default()}

		_, err := g.Generate(ctx, "", "question")
		require.NoError(t, err)
		assert.Len(t, model.messages, 1)
	})

	t.Run("no choices", func(t *testing.T) {
		model := &fakeModel{reply: &llms.ContentResponse{}}
		g := &Generator{client: model, logger: slog.Default()}

		_, err := g.Generate(ctx, "s", "p")
		assert.ErrorIs(t, err, ErrNoChoices)
	})

	t.Run("model failure", func(t *testing.T) {
		model := &fakeModel{err: errors.New("rate limited")}
		g := &Generator{client: model, logger: slog.Default()}

		_, err := g.Generate(ctx, "s", "p")
		assert.Error(t, err)
	})
}
