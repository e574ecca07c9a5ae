package handlers

import (
	"context"

	"github.com/marketmagic/market-ingest-go/ingest"
	"github.com/marketmagic/market-ingest-go/logging"
	"github.com/marketmagic/market-ingest-go/storage"
)

// Ingestion paths for the reserved feeds. No upstream collaborator produces
// these yet; the entry point does not invoke them, but the full
// normalize-resolve-upsert path is in place for when a feed comes online.

// IngestPredictions upserts one run of model outputs in a single transaction,
// resolving version labels to model_versions ids on first sight.
func IngestPredictions(ctx context.Context, store Store, preds []ingest.RawPrediction) (storage.Summary, error) {
	log := logging.Component("model-predictions")
	var sum storage.Summary

	batch, err := store.Begin(ctx)
	if err != nil {
		return sum, err
	}

	for _, raw := range preds {
		pred, err := ingest.NormalizePrediction(raw)
		if err != nil {
			if storage.IsValidation(err) {
				log.Warn("skipping prediction", "symbol", raw.Symbol, "error", err)
				sum.Skipped++
				continue
			}
			batch.Rollback(ctx)
			return storage.Summary{}, err
		}

		pred.ModelVersionID, err = batch.Refs.ModelVersionID(ctx, raw.ModelVersion)
		if err != nil {
			batch.Rollback(ctx)
			return storage.Summary{}, err
		}

		outcome, err := batch.UpsertPrediction(ctx, pred)
		if err != nil {
			batch.Rollback(ctx)
			return storage.Summary{}, err
		}
		sum.Count(outcome)
	}

	if err := batch.Commit(ctx); err != nil {
		return storage.Summary{}, err
	}
	log.Info("prediction batch committed", "written", sum.Written, "updated", sum.Updated, "skipped", sum.Skipped)
	return sum, nil
}

// IngestSatellite upserts one run of satellite observations in a single
// transaction.
func IngestSatellite(ctx context.Context, store Store, observations []ingest.RawObservation) (storage.Summary, error) {
	log := logging.Component("satellite-data")
	var sum storage.Summary

	batch, err := store.Begin(ctx)
	if err != nil {
		return sum, err
	}

	for _, raw := range observations {
		obs, err := ingest.NormalizeObservation(raw)
		if err != nil {
			if storage.IsValidation(err) {
				log.Warn("skipping observation", "location", raw.Location, "error", err)
				sum.Skipped++
				continue
			}
			batch.Rollback(ctx)
			return storage.Summary{}, err
		}

		outcome, err := batch.UpsertObservation(ctx, obs)
		if err != nil {
			// A re-sent image surfaces here as a validation failure.
			if storage.IsValidation(err) {
				log.Warn("skipping observation", "location", raw.Location, "error", err)
				sum.Skipped++
				continue
			}
			batch.Rollback(ctx)
			return storage.Summary{}, err
		}
		sum.Count(outcome)
	}

	if err := batch.Commit(ctx); err != nil {
		return storage.Summary{}, err
	}
	log.Info("satellite batch committed", "written", sum.Written, "updated", sum.Updated, "skipped", sum.Skipped)
	return sum, nil
}
