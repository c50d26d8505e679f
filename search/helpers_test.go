package search

import (
	"context"
	"sync"

	"github.com/poiesic/sift/core"
)

// fakeStore serves canned hits and a map of stored embeddings.
type fakeStore struct {
	mu sync.Mutex

	vectorHits  []core.Hit
	lexicalHits []core.Hit
	stored      map[core.ID]core.StoredEmbedding

	vectorErr  error
	lexicalErr error
	bulkErr    error

	vectorCalls  int
	lexicalCalls int
	bulkCalls    int
	bulkIDs      []core.ID
}

func newFakeStore() *fakeStore {
	return &fakeStore{stored: make(map[core.ID]core.StoredEmbedding)}
}

// addDoc registers a document as both a vector hit and a stored embedding.
func (s *fakeStore) addDoc(id core.ID, text string, embedding []float32, score float64) {
	s.vectorHits = append(s.vectorHits, core.Hit{Id: id, Title: string(id), URL: "https://example.com/" + string(id), Text: text, Score: score})
	s.stored[id] = core.StoredEmbedding{Embedding: embedding, Text: text}
}

func (s *fakeStore) VectorSearch(ctx context.Context, _ []float32, topK int) ([]core.Hit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectorCalls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.vectorErr != nil {
		return nil, s.vectorErr
	}
	return capHits(s.vectorHits, topK), nil
}

func (s *fakeStore) LexicalSearch(ctx context.Context, _ string, topK int) ([]core.Hit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lexicalCalls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.lexicalErr != nil {
		return nil, s.lexicalErr
	}
	return capHits(s.lexicalHits, topK), nil
}

func (s *fakeStore) BulkFetch(ctx context.Context, ids ...core.ID) (map[core.ID]core.StoredEmbedding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bulkCalls++
	s.bulkIDs = append([]core.ID(nil), ids...)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.bulkErr != nil {
		return nil, s.bulkErr
	}
	out := make(map[core.ID]core.StoredEmbedding)
	for _, id := range ids {
		if se, ok := s.stored[id]; ok {
			out[id] = se
		}
	}
	return out, nil
}

func capHits(hits []core.Hit, topK int) []core.Hit {
	if len(hits) > topK {
		hits = hits[:topK]
	}
	out := make([]core.Hit, len(hits))
	copy(out, hits)
	return out
}

// recordingMonitor captures the stages it sees.
type recordingMonitor struct {
	stages  []string
	dropped []core.ID
	results core.ResultSet
}

func (m *recordingMonitor) Start(string)                    { m.stages = append(m.stages, "start") }
func (m *recordingMonitor) AfterEmbed(int)                  { m.stages = append(m.stages, "embed") }
func (m *recordingMonitor) AfterFetch(_, _ []core.Hit)      { m.stages = append(m.stages, "fetch") }
func (m *recordingMonitor) AfterLexicalScoring([]float64)   { m.stages = append(m.stages, "bm25") }
func (m *recordingMonitor) AfterMerge([]core.ID)            { m.stages = append(m.stages, "merge") }
func (m *recordingMonitor) AfterBackfill([]*core.Candidate) { m.stages = append(m.stages, "backfill") }
func (m *recordingMonitor) CandidateDropped(id core.ID, _ error) {
	m.dropped = append(m.dropped, id)
}
func (m *recordingMonitor) Finish(results core.ResultSet) {
	m.stages = append(m.stages, "finish")
	m.results = results
}

// goldenVectors is the five-candidate two-dimensional MMR fixture.
var goldenVectors = [][]float32{
	{1, 0},
	{0.9, 0.1},
	{0, 1},
	{0.1, 0.9},
	{0.7, 0.7},
}
