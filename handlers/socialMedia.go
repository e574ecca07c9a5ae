package handlers

import (
	"context"

	"github.com/marketmagic/market-ingest-go/ingest"
	"github.com/marketmagic/market-ingest-go/logging"
	"github.com/marketmagic/market-ingest-go/storage"
)

// IngestSocialMedia upserts one fetch of scored posts in a single
// transaction. A post naming a platform outside the closed enumeration is a
// validation skip, not a batch failure: one bad feed entry must not block the
// rest of the fetch.
func IngestSocialMedia(ctx context.Context, store Store, posts []ingest.RawPost) (storage.Summary, error) {
	log := logging.Component("social-media")
	var sum storage.Summary

	batch, err := store.Begin(ctx)
	if err != nil {
		return sum, err
	}

	for _, raw := range posts {
		post, err := ingest.NormalizePost(raw)
		if err != nil {
			if storage.IsValidation(err) {
				log.Warn("skipping post", "platform", raw.Platform, "error", err)
				sum.Skipped++
				continue
			}
			batch.Rollback(ctx)
			return storage.Summary{}, err
		}

		post.PlatformID, err = batch.Refs.PlatformID(ctx, raw.Platform)
		if err != nil {
			if storage.IsValidation(err) {
				log.Warn("skipping post", "platform", raw.Platform, "error", err)
				sum.Skipped++
				continue
			}
			batch.Rollback(ctx)
			return storage.Summary{}, err
		}

		outcome, err := batch.UpsertSocialPost(ctx, post)
		if err != nil {
			batch.Rollback(ctx)
			return storage.Summary{}, err
		}
		sum.Count(outcome)
	}

	if err := batch.Commit(ctx); err != nil {
		return storage.Summary{}, err
	}
	log.Info("social batch committed", "written", sum.Written, "updated", sum.Updated, "skipped", sum.Skipped)
	return sum, nil
}
