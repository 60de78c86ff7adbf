package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"seo-content-ops/internal/ai"
	"seo-content-ops/internal/config"
	"seo-content-ops/internal/logger"
	"seo-content-ops/models"

	"github.com/PuerkitoBio/goquery"
	"go.mongodb.org/mongo-driver/mongo"
)

// resultInvalidator is the slice of SimilarityCache the sync needs to
// drop stale search results after a re-sync rewrites an article's chunks.
type resultInvalidator interface {
	Invalidate(ctx context.Context, baseArticleID string)
}

// ContentSyncService pulls published articles from the CMS, parses their
// HTML bodies into heading-delimited sections, chunks them, embeds the
// chunks and writes everything to the warehouse.
type ContentSyncService struct {
	cfg      *config.Config
	db       *mongo.Database
	articles *MongoArticleStore
	chunks   *MongoChunkStore
	chunker  *ChunkingService
	cache    resultInvalidator
	client   *http.Client
}

func NewContentSyncService(cfg *config.Config, db *mongo.Database, articles *MongoArticleStore, chunks *MongoChunkStore, cache *SimilarityCache) *ContentSyncService {
	s := &ContentSyncService{
		cfg:      cfg,
		db:       db,
		articles: articles,
		chunks:   chunks,
		chunker:  NewChunkingService(cfg.MaxChunkSize, cfg.MinChunkSize),
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	if cache != nil {
		s.cache = cache
	}
	return s
}

// cmsArticle mirrors the CMS REST payload for one published article.
type cmsArticle struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Link      string     `json:"link"`
	Body      string     `json:"body"`
	Category  cmsRef     `json:"category"`
	Keywords  []string   `json:"keywords"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type cmsRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type cmsListResponse struct {
	Data []cmsArticle `json:"data"`
	Meta struct {
		Pagination struct {
			Page      int `json:"page"`
			PageCount int `json:"pageCount"`
		} `json:"pagination"`
	} `json:"meta"`
}

// SyncAll walks the CMS article listing page by page. Per-article
// failures are logged and skipped so one bad document cannot stall the
// whole sync. Returns the number of articles synced.
func (s *ContentSyncService) SyncAll(ctx context.Context) (int, error) {
	synced := 0
	page := 1

	for {
		batch, pageCount, err := s.fetchPage(ctx, page)
		if err != nil {
			return synced, fmt.Errorf("fetch CMS page %d: %w", page, err)
		}

		for _, article := range batch {
			if err := s.syncArticle(ctx, article); err != nil {
				logger.Error("content sync: article failed", "article_id", article.ID, "error", err.Error())
				continue
			}
			synced++
		}

		if page >= pageCount || len(batch) == 0 {
			break
		}
		page++
	}

	logger.Info("content sync complete", "synced", synced)
	return synced, nil
}

// SyncArticle syncs a single article by CMS id, used by the on-demand
// refresh endpoint.
func (s *ContentSyncService) SyncArticle(ctx context.Context, articleID string) error {
	article, err := s.fetchArticle(ctx, articleID)
	if err != nil {
		return err
	}
	return s.syncArticle(ctx, *article)
}

func (s *ContentSyncService) fetchPage(ctx context.Context, page int) ([]cmsArticle, int, error) {
	url := fmt.Sprintf("%s/api/articles?pagination[page]=%d&pagination[pageSize]=%d&status=published",
		s.cfg.CMSBaseURL, page, s.cfg.SyncBatch)

	var resp cmsListResponse
	if err := s.getJSON(ctx, url, &resp); err != nil {
		return nil, 0, err
	}
	return resp.Data, resp.Meta.Pagination.PageCount, nil
}

func (s *ContentSyncService) fetchArticle(ctx context.Context, id string) (*cmsArticle, error) {
	url := fmt.Sprintf("%s/api/articles/%s", s.cfg.CMSBaseURL, id)

	var resp struct {
		Data cmsArticle `json:"data"`
	}
	if err := s.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (s *ContentSyncService) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if s.cfg.CMSAPIToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.CMSAPIToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("CMS returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (s *ContentSyncService) syncArticle(ctx context.Context, article cmsArticle) error {
	sections := ParseArticleHTML(article.Body)
	chunks := s.chunker.ChunkArticle(article.ID, article.Title, sections)

	if err := s.embedChunks(ctx, chunks); err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	if err := s.chunks.ReplaceChunks(ctx, article.ID, chunks); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}

	meta := models.Article{
		ID:           article.ID,
		Title:        article.Title,
		Link:         article.Link,
		CategoryID:   article.Category.ID,
		CategoryName: article.Category.Name,
		Keywords:     article.Keywords,
		TotalChunks:  len(chunks),
		CreatedAt:    article.CreatedAt,
		UpdatedAt:    article.UpdatedAt,
	}
	if err := s.articles.UpsertArticles(ctx, []models.Article{meta}); err != nil {
		return err
	}

	// The chunk set just changed; any cached search results for this
	// article are wrong until recomputed.
	s.invalidateResults(ctx, article.ID)
	return nil
}

func (s *ContentSyncService) invalidateResults(ctx context.Context, articleID string) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, articleID)
}

func (s *ContentSyncService) embedChunks(ctx context.Context, chunks []models.ArticleChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	totalChars := 0
	for i, ch := range chunks {
		texts[i] = ch.Text
		totalChars += len(ch.Text)
	}

	if err := ai.CheckPipelineQuota("embeddings", totalChars/4, s.db); err != nil {
		return err
	}

	vectors, err := ai.GenerateEmbeddings(ctx, s.cfg, texts)
	if err != nil {
		return err
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}
	return nil
}

// ParseArticleHTML splits rendered article HTML into heading-delimited
// sections. Text before the first heading becomes an untitled section,
// which downstream weighting treats as the introduction.
func ParseArticleHTML(html string) []ArticleSection {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return []ArticleSection{{Text: html}}
	}

	doc.Find("script, style, nav, aside").Remove()

	var sections []ArticleSection
	current := ArticleSection{}
	var buf strings.Builder

	flush := func() {
		current.Text = strings.TrimSpace(buf.String())
		if current.Text != "" || current.Heading != "" {
			sections = append(sections, current)
		}
		buf.Reset()
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}

	body.Find("h1, h2, h3, p, li, blockquote, pre").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		switch goquery.NodeName(sel) {
		case "h1", "h2", "h3":
			flush()
			current = ArticleSection{Heading: text}
		default:
			if buf.Len() > 0 {
				buf.WriteString("\n\n")
			}
			buf.WriteString(text)
		}
	})
	flush()

	if len(sections) == 0 {
		text := strings.TrimSpace(doc.Text())
		if text != "" {
			sections = append(sections, ArticleSection{Text: text})
		}
	}
	return sections
}
