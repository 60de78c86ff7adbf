package services

import (
	"context"
	"time"

	"seo-content-ops/internal/similarity"
	"seo-content-ops/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoArticleStore backs the similarity engine's article metadata port
// with the warehouse articles collection.
type MongoArticleStore struct {
	col *mongo.Collection
}

func NewMongoArticleStore(db *mongo.Database) *MongoArticleStore {
	return &MongoArticleStore{col: db.Collection("articles")}
}

func (s *MongoArticleStore) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	var article models.Article
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&article)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, similarity.ErrNotFound
		}
		return nil, err
	}
	return &article, nil
}

func (s *MongoArticleStore) GetArticlesByIDs(ctx context.Context, ids []string) (map[string]*models.Article, error) {
	if len(ids) == 0 {
		return map[string]*models.Article{}, nil
	}

	cursor, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := make(map[string]*models.Article, len(ids))
	for cursor.Next(ctx) {
		var article models.Article
		if err := cursor.Decode(&article); err != nil {
			return nil, err
		}
		a := article
		result[a.ID] = &a
	}
	return result, cursor.Err()
}

// ListArticleIDs returns ids of articles above the pageview floor, most
// viewed first. Used by the cache warming job.
func (s *MongoArticleStore) ListArticleIDs(ctx context.Context, minPageviews int64, limit int) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "pageviews", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.col.Find(ctx, bson.M{"pageviews": bson.M{"$gte": minPageviews}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cursor.Err()
}

// UpsertArticles bulk-writes synced metadata, unordered so one bad row
// does not abort the batch.
func (s *MongoArticleStore) UpsertArticles(ctx context.Context, articles []models.Article) error {
	if len(articles) == 0 {
		return nil
	}

	batch := make([]mongo.WriteModel, 0, len(articles))
	now := time.Now()
	for _, a := range articles {
		a.SyncedAt = now
		batch = append(batch, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": a.ID}).
			SetUpdate(bson.M{"$set": a}).
			SetUpsert(true))
	}

	_, err := s.col.BulkWrite(ctx, batch, options.BulkWrite().SetOrdered(false))
	return err
}

// PageviewCounts is one article's fresh analytics counters.
type PageviewCounts struct {
	Pageviews       int64
	EngagedSessions int64
}

// UpdatePageviews applies fresh analytics counters without touching the
// rest of the document.
func (s *MongoArticleStore) UpdatePageviews(ctx context.Context, views map[string]PageviewCounts) error {
	if len(views) == 0 {
		return nil
	}

	batch := make([]mongo.WriteModel, 0, len(views))
	now := time.Now()
	for id, counts := range views {
		batch = append(batch, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$set": bson.M{
				"pageviews":        counts.Pageviews,
				"engaged_sessions": counts.EngagedSessions,
				"synced_at":        now,
			}}))
	}

	_, err := s.col.BulkWrite(ctx, batch, options.BulkWrite().SetOrdered(false))
	return err
}

// ListArticleLinks returns a normalized-path -> article id index over every
// article that has a link, used to join GA4 page paths back to articles.
func (s *MongoArticleStore) ListArticleLinks(ctx context.Context) (map[string]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1, "link": 1})
	cursor, err := s.col.Find(ctx, bson.M{"link": bson.M{"$nin": bson.A{nil, ""}}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	index := make(map[string]string)
	for cursor.Next(ctx) {
		var doc struct {
			ID   string `bson:"_id"`
			Link string `bson:"link"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		path := normalizePagePath(doc.Link)
		if path == "" {
			continue
		}
		index[path] = doc.ID
	}
	return index, cursor.Err()
}
