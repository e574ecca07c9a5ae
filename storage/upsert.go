package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/marketmagic/market-ingest-go/models"
)

// Outcome reports how an upsert resolved: a fresh row, or a natural-key
// collision handled by update-in-place.
type Outcome int

const (
	Inserted Outcome = iota
	Updated
)

// Summary is the per-run report: rows written, rows refreshed in place, and
// records skipped for validation failures.
type Summary struct {
	Written int
	Updated int
	Skipped int
}

func (s *Summary) Count(o Outcome) {
	if o == Inserted {
		s.Written++
	} else {
		s.Updated++
	}
}

func (s *Summary) Merge(other Summary) {
	s.Written += other.Written
	s.Updated += other.Updated
	s.Skipped += other.Skipped
}

// The upserts below all follow the same contract: insert on the record's
// natural key, and on conflict refresh the mutable columns in place. Re-running
// ingestion over the same window is therefore a no-op on already-correct rows
// and a safe correction on stale ones. RETURNING (xmax = 0) distinguishes a
// fresh insert from a conflict resolved by update.

// UpsertMarketBar writes one price bar keyed on (symbol, datetime). Indicator
// columns are coalesced so a plain price re-ingest never erases a backfill.
func (b *Batch) UpsertMarketBar(ctx context.Context, bar models.MarketBar) (Outcome, error) {
	var inserted bool
	err := b.q.QueryRow(ctx,
		`INSERT INTO market_data_partitioned
			(symbol, datetime, open_price, high_price, low_price, close_price, volume,
			 sma_50, sma_200, rsi_14, macd)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (symbol, datetime) DO UPDATE SET
			open_price  = EXCLUDED.open_price,
			high_price  = EXCLUDED.high_price,
			low_price   = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			volume      = EXCLUDED.volume,
			sma_50  = COALESCE(EXCLUDED.sma_50, market_data_partitioned.sma_50),
			sma_200 = COALESCE(EXCLUDED.sma_200, market_data_partitioned.sma_200),
			rsi_14  = COALESCE(EXCLUDED.rsi_14, market_data_partitioned.rsi_14),
			macd    = COALESCE(EXCLUDED.macd, market_data_partitioned.macd)
		RETURNING (xmax = 0)`,
		bar.Symbol, bar.Datetime, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume,
		bar.SMA50, bar.SMA200, bar.RSI14, bar.MACD,
	).Scan(&inserted)
	if err != nil {
		return 0, classify("market_data_partitioned", err)
	}
	return outcome(inserted), nil
}

// UpsertNewsRecord writes one scored article keyed on (datetime, title).
// SourceID must already be resolved.
func (b *Batch) UpsertNewsRecord(ctx context.Context, rec models.NewsSentimentRecord) (Outcome, error) {
	var inserted bool
	err := b.q.QueryRow(ctx,
		`INSERT INTO news_sentiment
			(datetime, source_id, title, sentiment_score, entity_recognition, keywords)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6)
		ON CONFLICT (datetime, title) DO UPDATE SET
			source_id          = EXCLUDED.source_id,
			sentiment_score    = EXCLUDED.sentiment_score,
			entity_recognition = EXCLUDED.entity_recognition,
			keywords           = EXCLUDED.keywords
		RETURNING (xmax = 0)`,
		rec.Datetime, rec.SourceID, rec.Title, rec.SentimentScore,
		string(rec.EntityRecognition), rec.Keywords,
	).Scan(&inserted)
	if err != nil {
		return 0, classify("news_sentiment", err)
	}
	return outcome(inserted), nil
}

// UpsertSocialPost writes one scored post keyed on (datetime, post_text).
// PlatformID must already be resolved.
func (b *Batch) UpsertSocialPost(ctx context.Context, post models.SocialPost) (Outcome, error) {
	var inserted bool
	err := b.q.QueryRow(ctx,
		`INSERT INTO social_media_sentiment
			(datetime, platform_id, user_handle, post_text, url, sentiment_score,
			 engagement_count, entity_recognition, keywords)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9)
		ON CONFLICT (datetime, post_text) DO UPDATE SET
			platform_id        = EXCLUDED.platform_id,
			user_handle        = EXCLUDED.user_handle,
			url                = EXCLUDED.url,
			sentiment_score    = EXCLUDED.sentiment_score,
			engagement_count   = EXCLUDED.engagement_count,
			entity_recognition = EXCLUDED.entity_recognition,
			keywords           = EXCLUDED.keywords
		RETURNING (xmax = 0)`,
		post.Datetime, post.PlatformID, post.Author, post.Text, post.URL,
		post.SentimentScore, post.EngagementCount, string(post.EntityRecognition), post.Keywords,
	).Scan(&inserted)
	if err != nil {
		return 0, classify("social_media_sentiment", err)
	}
	return outcome(inserted), nil
}

// UpsertObservation writes one satellite observation keyed on
// (datetime, location). The image hash stays independently unique; a feed
// re-sending an already-ingested image under a new observation is bad input,
// reported as a validation failure so the caller skips the record. The lookup
// runs before the insert because failing the unique constraint would poison
// the whole transaction; a violation that still gets through means a
// concurrent writer and stays an integrity failure.
func (b *Batch) UpsertObservation(ctx context.Context, obs models.SatelliteObservation) (Outcome, error) {
	var one int32
	err := b.q.QueryRow(ctx,
		`SELECT 1 FROM satellite_data
		WHERE image_hash = $1 AND (datetime, location) <> ($2, $3)`,
		obs.ImageHash, obs.Datetime, obs.Location,
	).Scan(&one)
	switch {
	case err == nil:
		return 0, &ValidationError{Field: "image_hash", Reason: "image already ingested under another observation"}
	case !errors.Is(err, pgx.ErrNoRows):
		return 0, classify("satellite_data", err)
	}

	var inserted bool
	err = b.q.QueryRow(ctx,
		`INSERT INTO satellite_data
			(datetime, location, image_url, image_hash, extracted_features)
		VALUES ($1, $2, $3, $4, $5::jsonb)
		ON CONFLICT (datetime, location) DO UPDATE SET
			image_url          = EXCLUDED.image_url,
			image_hash         = EXCLUDED.image_hash,
			extracted_features = EXCLUDED.extracted_features
		RETURNING (xmax = 0)`,
		obs.Datetime, obs.Location, obs.ImageURL, obs.ImageHash, string(obs.ExtractedFeatures),
	).Scan(&inserted)
	if err != nil {
		return 0, classify("satellite_data", err)
	}
	return outcome(inserted), nil
}

// UpsertPrediction writes one model prediction keyed on
// (symbol, datetime, model_version_id). ModelVersionID must already be
// resolved.
func (b *Batch) UpsertPrediction(ctx context.Context, p models.ModelPrediction) (Outcome, error) {
	var inserted bool
	err := b.q.QueryRow(ctx,
		`INSERT INTO model_predictions
			(symbol, datetime, predicted_price, confidence, model_version_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (symbol, datetime, model_version_id) DO UPDATE SET
			predicted_price = EXCLUDED.predicted_price,
			confidence      = EXCLUDED.confidence
		RETURNING (xmax = 0)`,
		p.Symbol, p.Datetime, p.PredictedPrice, p.Confidence, p.ModelVersionID,
	).Scan(&inserted)
	if err != nil {
		return 0, classify("model_predictions", err)
	}
	return outcome(inserted), nil
}

func outcome(inserted bool) Outcome {
	if inserted {
		return Inserted
	}
	return Updated
}
