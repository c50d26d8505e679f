package ingestion

import (
	"strings"
	"testing"

	"github.com/poiesic/sift/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDocuments(t *testing.T) {
	page := Page{
		URL:   "https://labs.example.com/lipid",
		Title: "Lipid Panel",
		Text:  strings.Repeat("fasting ", 500),
	}

	docs, err := BuildDocuments(page, 1800, 200)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	for i, doc := range docs {
		assert.Equal(t, core.DocumentID(page.URL, i), doc.Id)
		assert.Equal(t, ChunkTitle("Lipid Panel", i), doc.Title)
		assert.Equal(t, page.URL, doc.URL)
		assert.NotEmpty(t, doc.Text)
		assert.Empty(t, doc.Embedding)
	}
	assert.Equal(t, "Lipid Panel [part 1]", docs[0].Title)
	assert.Equal(t, "Lipid Panel [part 3]", docs[2].Title)
}

func TestBuildDocuments_Titles(t *testing.T) {
	t.Run("html title is used when none given", func(t *testing.T) {
		docs, err := BuildDocuments(Page{
			URL:  "https://labs.example.com/tsh",
			HTML: "<html><head><title>TSH</title></head><body>Any time of day</body></html>",
		}, 1800, 200)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "TSH [part 1]", docs[0].Title)
	})

	t.Run("url is the last resort", func(t *testing.T) {
		docs, err := BuildDocuments(Page{URL: "https://labs.example.com/x", Text: "text"}, 1800, 200)
		require.NoError(t, err)
		assert.Equal(t, "https://labs.example.com/x [part 1]", docs[0].Title)
	})
}

func TestBuildDocuments_Errors(t *testing.T) {
	_, err := BuildDocuments(Page{Text: "text"}, 1800, 200)
	assert.ErrorIs(t, err, ErrMissingURL)

	_, err = BuildDocuments(Page{URL: "https://x", Text: " \n\t "}, 1800, 200)
	assert.ErrorIs(t, err, ErrEmptyPage)

	_, err = BuildDocuments(Page{URL: "https://x", Text: "text"}, 10, 10)
	assert.ErrorIs(t, err, ErrInvalidChunking)
}

func TestReadPages(t *testing.T) {
	input := `{"url": "https://a", "title": "A", "text": "alpha"}

{"url": "https://b", "html": "<p>beta</p>"}
`
	pages, err := ReadPages(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, Page{URL: "https://a", Title: "A", Text: "alpha"}, pages[0])
	assert.Equal(t, "<p>beta</p>", pages[1].HTML)

	_, err = ReadPages(strings.NewReader("{\"url\": \"https://a\"}\nnot json\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
