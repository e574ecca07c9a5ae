package storage

import (
	"context"
	"fmt"
)

// Schema DDL. Everything is IF NOT EXISTS so re-running ingestion, or adding a
// partition or index later, never rewrites historical data.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS market_data_partitioned (
	symbol      TEXT        NOT NULL,
	datetime    TIMESTAMP   NOT NULL,
	open_price  NUMERIC(14,4) NOT NULL,
	high_price  NUMERIC(14,4) NOT NULL,
	low_price   NUMERIC(14,4) NOT NULL,
	close_price NUMERIC(14,4) NOT NULL,
	volume      BIGINT      NOT NULL,
	sma_50      NUMERIC(14,4),
	sma_200     NUMERIC(14,4),
	rsi_14      NUMERIC(7,4),
	macd        NUMERIC(14,4),
	UNIQUE (symbol, datetime)
) PARTITION BY LIST (symbol);

CREATE TABLE IF NOT EXISTS news_sources (
	id          SERIAL PRIMARY KEY,
	source_name TEXT NOT NULL UNIQUE,
	created_at  TIMESTAMP NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS news_sentiment (
	id                 SERIAL PRIMARY KEY,
	datetime           TIMESTAMP NOT NULL,
	source_id          INTEGER NOT NULL REFERENCES news_sources(id),
	title              TEXT NOT NULL,
	sentiment_score    NUMERIC(5,4) NOT NULL CHECK (sentiment_score >= -1 AND sentiment_score <= 1),
	entity_recognition JSONB NOT NULL,
	keywords           TEXT[] NOT NULL DEFAULT '{}',
	UNIQUE (datetime, title)
);

CREATE TABLE IF NOT EXISTS social_media_platforms (
	id            SERIAL PRIMARY KEY,
	platform_name TEXT NOT NULL UNIQUE CHECK (platform_name IN ('twitter', 'reddit'))
);

CREATE TABLE IF NOT EXISTS social_media_sentiment (
	id                 SERIAL PRIMARY KEY,
	datetime           TIMESTAMP NOT NULL,
	platform_id        INTEGER NOT NULL REFERENCES social_media_platforms(id),
	user_handle        TEXT,
	post_text          TEXT NOT NULL,
	url                TEXT,
	sentiment_score    NUMERIC(5,4) NOT NULL CHECK (sentiment_score >= -1 AND sentiment_score <= 1),
	engagement_count   BIGINT,
	entity_recognition JSONB NOT NULL,
	keywords           TEXT[] NOT NULL DEFAULT '{}',
	UNIQUE (datetime, post_text)
);

CREATE TABLE IF NOT EXISTS satellite_data (
	id                 SERIAL PRIMARY KEY,
	datetime           TIMESTAMP NOT NULL,
	location           TEXT NOT NULL,
	image_url          TEXT NOT NULL,
	image_hash         TEXT NOT NULL UNIQUE,
	extracted_features JSONB NOT NULL,
	UNIQUE (datetime, location)
);

CREATE TABLE IF NOT EXISTS model_versions (
	id         SERIAL PRIMARY KEY,
	version    TEXT NOT NULL UNIQUE,
	created_at TIMESTAMP NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS model_predictions (
	id               SERIAL PRIMARY KEY,
	symbol           TEXT NOT NULL,
	datetime         TIMESTAMP NOT NULL,
	predicted_price  NUMERIC(14,4) NOT NULL,
	confidence       NUMERIC(5,4) NOT NULL CHECK (confidence >= 0 AND confidence <= 1),
	model_version_id INTEGER NOT NULL REFERENCES model_versions(id),
	UNIQUE (symbol, datetime, model_version_id)
);
`

// Indexes the ingestion path never reads but downstream search and analytics
// depend on: inverted indexes for keyword and full-text lookup, path indexes
// for the opaque documents, descending time indexes for recency scans.
var indexDDL = []string{
	`CREATE INDEX IF NOT EXISTS idx_market_data_datetime ON market_data_partitioned (datetime DESC)`,

	`CREATE INDEX IF NOT EXISTS idx_news_sentiment_datetime ON news_sentiment (datetime DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_news_sentiment_keywords ON news_sentiment USING GIN (keywords)`,
	`CREATE INDEX IF NOT EXISTS idx_news_sentiment_title_fts ON news_sentiment USING GIN (to_tsvector('english', title))`,
	`CREATE INDEX IF NOT EXISTS idx_news_sentiment_entities ON news_sentiment USING GIN (entity_recognition jsonb_path_ops)`,

	`CREATE INDEX IF NOT EXISTS idx_social_sentiment_datetime ON social_media_sentiment (datetime DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_social_sentiment_keywords ON social_media_sentiment USING GIN (keywords)`,
	`CREATE INDEX IF NOT EXISTS idx_social_sentiment_text_fts ON social_media_sentiment USING GIN (to_tsvector('english', post_text))`,
	`CREATE INDEX IF NOT EXISTS idx_social_sentiment_entities ON social_media_sentiment USING GIN (entity_recognition jsonb_path_ops)`,

	`CREATE INDEX IF NOT EXISTS idx_satellite_data_datetime ON satellite_data (datetime DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_satellite_data_features ON satellite_data USING GIN (extracted_features jsonb_path_ops)`,

	`CREATE INDEX IF NOT EXISTS idx_model_predictions_datetime ON model_predictions (datetime DESC)`,
}

// EnsureSchema creates the tables, the per-symbol market data partitions, and
// the search indexes. Safe to run before every ingestion batch.
func EnsureSchema(ctx context.Context, db Querier) error {
	if _, err := db.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	for _, symbol := range TrackedSymbols() {
		stmt := fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s PARTITION OF market_data_partitioned FOR VALUES IN ('%s')`,
			PartitionFor(symbol), symbol,
		)
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create partition for %s: %w", symbol, err)
		}
	}
	stmt := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s PARTITION OF market_data_partitioned DEFAULT`,
		DefaultPartition,
	)
	if _, err := db.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("create default partition: %w", err)
	}

	for _, stmt := range indexDDL {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
