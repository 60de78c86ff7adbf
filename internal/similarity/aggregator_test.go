package similarity

import (
	"context"
	"errors"
	"testing"

	"seo-content-ops/models"
)

type fakeChunkStore struct {
	chunks  map[string][]models.ArticleChunk
	hits    map[int][]ChunkHit
	getErr  error
	findErr error
}

func (s *fakeChunkStore) GetChunks(_ context.Context, articleID string) ([]models.ArticleChunk, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.chunks[articleID], nil
}

// The fake keys lookups on embedding[0], which the tests set to the base
// chunk's index.
func (s *fakeChunkStore) FindSimilarChunks(_ context.Context, embedding []float32, _ string, _ float64, _ int) ([]ChunkHit, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.hits[int(embedding[0])], nil
}

type fakeArticleStore struct {
	articles map[string]*models.Article
	getErr   error
}

func (s *fakeArticleStore) GetArticle(_ context.Context, id string) (*models.Article, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	a, ok := s.articles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *fakeArticleStore) GetArticlesByIDs(_ context.Context, ids []string) (map[string]*models.Article, error) {
	out := make(map[string]*models.Article, len(ids))
	for _, id := range ids {
		if a, ok := s.articles[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func baseChunks(articleID string, n int) []models.ArticleChunk {
	chunks := make([]models.ArticleChunk, n)
	for i := 0; i < n; i++ {
		chunks[i] = models.ArticleChunk{
			ArticleID: articleID,
			Index:     i,
			Embedding: []float32{float32(i)},
		}
	}
	return chunks
}

func hit(articleID string, index int, score float64) ChunkHit {
	return ChunkHit{
		Chunk: models.ArticleChunk{
			ArticleID: articleID,
			Index:     index,
			Embedding: []float32{1},
		},
		Score: score,
	}
}

func newTestStores() (*fakeChunkStore, *fakeArticleStore) {
	articles := map[string]*models.Article{
		"base":  {ID: "base", Title: "Alpha Guide", CategoryID: "cat-1", Pageviews: 1000, TotalChunks: 3},
		"art-a": {ID: "art-a", Title: "Beta Primer", CategoryID: "cat-1", Pageviews: 500, TotalChunks: 3},
		"art-b": {ID: "art-b", Title: "Gamma Notes", CategoryID: "cat-2", Pageviews: 50, TotalChunks: 3},
	}
	chunks := &fakeChunkStore{
		chunks: map[string][]models.ArticleChunk{
			"base": baseChunks("base", 3),
		},
		hits: map[int][]ChunkHit{
			0: {hit("art-a", 0, 0.96), hit("art-b", 0, 0.7)},
			1: {hit("art-a", 1, 0.96)},
			2: {hit("art-a", 2, 0.96)},
		},
	}
	return chunks, &fakeArticleStore{articles: articles}
}

func TestAggregatorSearch(t *testing.T) {
	chunks, articles := newTestStores()
	agg := NewAggregator(chunks, articles, AggregatorConfig{LookupConcurrency: 2})

	result, err := agg.Search(context.Background(), "base", DefaultSearchOptions())
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if result.BaseArticle.ID != "base" {
		t.Errorf("base article = %s, want base", result.BaseArticle.ID)
	}
	if result.TotalFound != 2 || len(result.Candidates) != 2 {
		t.Fatalf("got %d candidates (total %d), want 2", len(result.Candidates), result.TotalFound)
	}

	// art-a matched all three base chunks at 0.96 within the same category:
	// a merge recommendation that must sort first.
	first := result.Candidates[0]
	if first.Article.ID != "art-a" {
		t.Fatalf("first candidate = %s, want art-a", first.Article.ID)
	}
	if !almostEqual(first.AvgSimilarity, 0.96) || !almostEqual(first.PeakSimilarity, 0.96) {
		t.Errorf("avg/peak = %v/%v, want 0.96/0.96", first.AvgSimilarity, first.PeakSimilarity)
	}
	if first.MatchingBaseChunks != 3 || first.MatchingCandidateChunks != 3 {
		t.Errorf("matching chunks = %d/%d, want 3/3", first.MatchingBaseChunks, first.MatchingCandidateChunks)
	}
	if !almostEqual(first.MatchingRatio, 1.0) {
		t.Errorf("matching ratio = %v, want 1.0", first.MatchingRatio)
	}
	if first.Recommendation.Type != MergeContent || first.Recommendation.Priority != 90 {
		t.Errorf("recommendation = %s/%d, want MERGE_CONTENT/90", first.Recommendation.Type, first.Recommendation.Priority)
	}

	// art-b matched a single chunk at 0.7: final score stays below 0.60.
	second := result.Candidates[1]
	if second.Article.ID != "art-b" {
		t.Fatalf("second candidate = %s, want art-b", second.Article.ID)
	}
	if second.Recommendation.Type != Monitor || second.Recommendation.Priority != 0 {
		t.Errorf("recommendation = %s/%d, want MONITOR/0", second.Recommendation.Type, second.Recommendation.Priority)
	}
	if second.FinalScore >= first.FinalScore {
		t.Errorf("expected descending scores, got %v then %v", first.FinalScore, second.FinalScore)
	}
}

func TestAggregatorSearchMinPageviewsFilter(t *testing.T) {
	chunks, articles := newTestStores()
	agg := NewAggregator(chunks, articles, AggregatorConfig{})

	opts := DefaultSearchOptions()
	opts.MinPageviews = 100

	result, err := agg.Search(context.Background(), "base", opts)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if result.TotalFound != 1 || len(result.Candidates) != 1 {
		t.Fatalf("got %d candidates (total %d), want 1", len(result.Candidates), result.TotalFound)
	}
	if result.Candidates[0].Article.ID != "art-a" {
		t.Errorf("surviving candidate = %s, want art-a", result.Candidates[0].Article.ID)
	}
}

func TestAggregatorSearchLimitTruncation(t *testing.T) {
	chunks, articles := newTestStores()
	agg := NewAggregator(chunks, articles, AggregatorConfig{})

	opts := DefaultSearchOptions()
	opts.Limit = 1

	result, err := agg.Search(context.Background(), "base", opts)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(result.Candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(result.Candidates))
	}
	// TotalFound reports the pre-truncation count.
	if result.TotalFound != 2 {
		t.Errorf("TotalFound = %d, want 2", result.TotalFound)
	}
	if result.Candidates[0].Article.ID != "art-a" {
		t.Errorf("kept candidate = %s, want art-a", result.Candidates[0].Article.ID)
	}
}

func TestAggregatorSearchInvalidOptions(t *testing.T) {
	chunks, articles := newTestStores()
	agg := NewAggregator(chunks, articles, AggregatorConfig{})

	bad := []SearchOptions{
		{Limit: 100},
		{Limit: -1},
		{Threshold: 1.5},
		{Threshold: -0.1},
		{MinPageviews: -5},
		{TopChunksPerBase: 50},
	}
	for _, opts := range bad {
		_, err := agg.Search(context.Background(), "base", opts)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("opts %+v: got %v, want ErrInvalidArgument", opts, err)
		}
	}
}

func TestAggregatorSearchZeroOptionsUseDefaults(t *testing.T) {
	chunks, articles := newTestStores()
	agg := NewAggregator(chunks, articles, AggregatorConfig{})

	result, err := agg.Search(context.Background(), "base", SearchOptions{Threshold: 0.5})
	if err != nil {
		t.Fatalf("zero limit should fall back to the default, got %v", err)
	}
	if len(result.Candidates) == 0 {
		t.Error("expected candidates with default options")
	}
}

func TestAggregatorSearchArticleNotFound(t *testing.T) {
	chunks, articles := newTestStores()
	agg := NewAggregator(chunks, articles, AggregatorConfig{})

	_, err := agg.Search(context.Background(), "missing", DefaultSearchOptions())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestAggregatorSearchNoEmbeddedChunks(t *testing.T) {
	chunks, articles := newTestStores()
	chunks.chunks["base"] = []models.ArticleChunk{
		{ArticleID: "base", Index: 0},
		{ArticleID: "base", Index: 1},
	}
	agg := NewAggregator(chunks, articles, AggregatorConfig{})

	result, err := agg.Search(context.Background(), "base", DefaultSearchOptions())
	if err != nil {
		t.Fatalf("unembedded article must not error: %v", err)
	}
	if len(result.Candidates) != 0 || result.TotalFound != 0 {
		t.Errorf("expected empty result, got %d candidates", len(result.Candidates))
	}
}

func TestAggregatorSearchBackendFailure(t *testing.T) {
	t.Run("chunk load", func(t *testing.T) {
		chunks, articles := newTestStores()
		chunks.getErr = errors.New("connection refused")
		agg := NewAggregator(chunks, articles, AggregatorConfig{})

		_, err := agg.Search(context.Background(), "base", DefaultSearchOptions())
		if !errors.Is(err, ErrBackendUnavailable) {
			t.Errorf("got %v, want ErrBackendUnavailable", err)
		}
	})

	t.Run("vector lookup", func(t *testing.T) {
		chunks, articles := newTestStores()
		chunks.findErr = errors.New("index unavailable")
		agg := NewAggregator(chunks, articles, AggregatorConfig{})

		_, err := agg.Search(context.Background(), "base", DefaultSearchOptions())
		if !errors.Is(err, ErrBackendUnavailable) {
			t.Errorf("got %v, want ErrBackendUnavailable", err)
		}
	})

	t.Run("article load", func(t *testing.T) {
		chunks, articles := newTestStores()
		articles.getErr = errors.New("timeout")
		agg := NewAggregator(chunks, articles, AggregatorConfig{})

		_, err := agg.Search(context.Background(), "base", DefaultSearchOptions())
		if !errors.Is(err, ErrBackendUnavailable) {
			t.Errorf("got %v, want ErrBackendUnavailable", err)
		}
	})
}

func TestAggregatorSearchSkipsMalformedHits(t *testing.T) {
	chunks, articles := newTestStores()
	nan := 0.0
	chunks.hits[0] = append(chunks.hits[0],
		ChunkHit{Chunk: models.ArticleChunk{ArticleID: "art-b", Index: 1, Embedding: []float32{1}}, Score: nan / nan},
		ChunkHit{Chunk: models.ArticleChunk{Index: 2, Embedding: []float32{1}}, Score: 0.9},
		hit("art-b", 2, 0.2),
	)
	agg := NewAggregator(chunks, articles, AggregatorConfig{})

	result, err := agg.Search(context.Background(), "base", DefaultSearchOptions())
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, c := range result.Candidates {
		if c.Article.ID == "art-b" && c.MatchingCandidateChunks != 1 {
			t.Errorf("malformed hits should be skipped, art-b matched %d chunks", c.MatchingCandidateChunks)
		}
	}
}

func TestAggregatorSearchSkipsCandidatesWithoutMetadata(t *testing.T) {
	chunks, articles := newTestStores()
	chunks.hits[0] = append(chunks.hits[0], hit("ghost", 0, 0.95))
	agg := NewAggregator(chunks, articles, AggregatorConfig{})

	result, err := agg.Search(context.Background(), "base", DefaultSearchOptions())
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, c := range result.Candidates {
		if c.Article.ID == "ghost" {
			t.Error("candidate without metadata must be skipped")
		}
	}
	if result.TotalFound != 2 {
		t.Errorf("TotalFound = %d, want 2", result.TotalFound)
	}
}

func TestAggregatorSearchCancelledContext(t *testing.T) {
	chunks, articles := newTestStores()
	agg := NewAggregator(chunks, articles, AggregatorConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := agg.Search(ctx, "base", DefaultSearchOptions())
	if err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
	if errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("cancellation must not be reported as backend failure: %v", err)
	}
}
