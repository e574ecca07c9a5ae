// Package handlers runs the per-feed ingestion batches: normalize each raw
// record, resolve its reference ids, and upsert it inside the feed's
// transactional scope. Validation failures skip the single offending record;
// integrity failures abort and roll back the whole group.
package handlers

import (
	"context"

	"github.com/marketmagic/market-ingest-go/ingest"
	"github.com/marketmagic/market-ingest-go/logging"
	"github.com/marketmagic/market-ingest-go/storage"
)

// Store hands out the transactional batches the handlers write through.
// *storage.Store satisfies it; tests substitute a fake transaction source.
type Store interface {
	Begin(ctx context.Context) (*storage.Batch, error)
}

type symbolGroup struct {
	symbol string
	rows   []ingest.RawBar
}

// groupBySymbol splits a sheet's rows into per-symbol runs, preserving the
// order symbols first appear.
func groupBySymbol(rows []ingest.RawBar) []symbolGroup {
	index := make(map[string]int)
	var groups []symbolGroup
	for _, row := range rows {
		i, ok := index[row.Symbol]
		if !ok {
			i = len(groups)
			index[row.Symbol] = i
			groups = append(groups, symbolGroup{symbol: row.Symbol})
		}
		groups[i].rows = append(groups[i].rows, row)
	}
	return groups
}

// IngestMarketData upserts a sheet of OHLCV rows, one transaction per symbol
// run so a failure in one instrument's history never strands half of another's.
func IngestMarketData(ctx context.Context, store Store, rows []ingest.RawBar) (storage.Summary, error) {
	log := logging.Component("market-data")
	var sum storage.Summary

	for _, group := range groupBySymbol(rows) {
		batch, err := store.Begin(ctx)
		if err != nil {
			return sum, err
		}

		var groupSum storage.Summary
		for _, raw := range group.rows {
			bar, err := ingest.NormalizeBar(raw)
			if err != nil {
				if storage.IsValidation(err) {
					log.Warn("skipping bar", "symbol", raw.Symbol, "date", raw.Date, "error", err)
					groupSum.Skipped++
					continue
				}
				batch.Rollback(ctx)
				return sum, err
			}

			outcome, err := batch.UpsertMarketBar(ctx, bar)
			if err != nil {
				batch.Rollback(ctx)
				return sum, err
			}
			groupSum.Count(outcome)
		}

		if err := batch.Commit(ctx); err != nil {
			return sum, err
		}
		sum.Merge(groupSum)
		log.Info("symbol run committed", "symbol", group.symbol,
			"partition", storage.PartitionFor(group.symbol),
			"written", groupSum.Written, "updated", groupSum.Updated, "skipped", groupSum.Skipped)
	}
	return sum, nil
}
