package models

import "time"

// Article is warehouse article metadata, synced from the CMS and GA4.
// Read-only to the similarity engine; ingestion owns all writes.
type Article struct {
	ID              string     `bson:"_id" json:"id"`
	Title           string     `bson:"title" json:"title"`
	Link            string     `bson:"link,omitempty" json:"link,omitempty"`
	CategoryID      string     `bson:"category_id,omitempty" json:"category_id,omitempty"`
	CategoryName    string     `bson:"category_name,omitempty" json:"category_name,omitempty"`
	Pageviews       int64      `bson:"pageviews" json:"pageviews"`
	EngagedSessions int64      `bson:"engaged_sessions" json:"engaged_sessions"`
	Keywords        []string   `bson:"keywords,omitempty" json:"keywords,omitempty"`
	TotalChunks     int        `bson:"total_chunks" json:"total_chunks"`
	CreatedAt       *time.Time `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt       *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
	SyncedAt        time.Time  `bson:"synced_at,omitempty" json:"synced_at,omitempty"`
}
