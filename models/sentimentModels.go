package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// NewsSentimentRecord is a scored news article ready for storage.
// Natural key: (Datetime, Title). SourceID must be resolved against
// news_sources before the upsert.
type NewsSentimentRecord struct {
	Datetime          time.Time       `db:"datetime"`
	SourceID          int32           `db:"source_id"`
	Title             string          `db:"title"`
	SentimentScore    decimal.Decimal `db:"sentiment_score"`
	EntityRecognition json.RawMessage `db:"entity_recognition"`
	Keywords          []string        `db:"keywords"`
}

// SocialPost is a scored social media post. Natural key: (Datetime, Text).
// PlatformID must be resolved against social_media_platforms before the upsert.
type SocialPost struct {
	Datetime          time.Time       `db:"datetime"`
	PlatformID        int32           `db:"platform_id"`
	Author            string          `db:"user_handle"`
	Text              string          `db:"post_text"`
	URL               string          `db:"url"`
	SentimentScore    decimal.Decimal `db:"sentiment_score"`
	EngagementCount   int64           `db:"engagement_count"`
	EntityRecognition json.RawMessage `db:"entity_recognition"`
	Keywords          []string        `db:"keywords"`
}
