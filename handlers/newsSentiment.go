package handlers

import (
	"context"

	"github.com/marketmagic/market-ingest-go/ingest"
	"github.com/marketmagic/market-ingest-go/logging"
	"github.com/marketmagic/market-ingest-go/storage"
)

// IngestNewsSentiment upserts one fetch of scored articles in a single
// transaction. Source names are resolved to ids (created on first sight)
// before the dependent row is written.
func IngestNewsSentiment(ctx context.Context, store Store, articles []ingest.RawArticle) (storage.Summary, error) {
	log := logging.Component("news-sentiment")
	var sum storage.Summary

	batch, err := store.Begin(ctx)
	if err != nil {
		return sum, err
	}

	for _, raw := range articles {
		rec, err := ingest.NormalizeArticle(raw)
		if err != nil {
			if storage.IsValidation(err) {
				log.Warn("skipping article", "source", raw.Source, "title", raw.Title, "error", err)
				sum.Skipped++
				continue
			}
			batch.Rollback(ctx)
			return storage.Summary{}, err
		}

		rec.SourceID, err = batch.Refs.SourceID(ctx, raw.Source)
		if err != nil {
			batch.Rollback(ctx)
			return storage.Summary{}, err
		}

		outcome, err := batch.UpsertNewsRecord(ctx, rec)
		if err != nil {
			batch.Rollback(ctx)
			return storage.Summary{}, err
		}
		sum.Count(outcome)
	}

	if err := batch.Commit(ctx); err != nil {
		return storage.Summary{}, err
	}
	log.Info("news batch committed", "written", sum.Written, "updated", sum.Updated, "skipped", sum.Skipped)
	return sum, nil
}
