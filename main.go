package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/marketmagic/market-ingest-go/config"
	"github.com/marketmagic/market-ingest-go/handlers"
	"github.com/marketmagic/market-ingest-go/ingest"
	"github.com/marketmagic/market-ingest-go/logging"
	"github.com/marketmagic/market-ingest-go/newsapi"
	"github.com/marketmagic/market-ingest-go/scoring"
	"github.com/marketmagic/market-ingest-go/sheets"
	"github.com/marketmagic/market-ingest-go/storage"
)

func main() {
	workbook := flag.String("workbook", "", "path to the OHLCV workbook export")
	apiKey := flag.String("api-key", "", "news API key")
	jsonLogs := flag.Bool("json-logs", false, "emit logs as JSON")
	flag.Parse()

	logging.Init(slog.LevelInfo, *jsonLogs)
	log := logging.Component("main")

	if *workbook == "" && *apiKey == "" {
		fmt.Fprintln(os.Stderr, "usage: market-ingest -workbook <path> and/or -api-key <key>")
		os.Exit(2)
	}

	ctx := context.Background()
	pool, err := storage.Connect(ctx)
	if err != nil {
		fail(log, "database connection failed", err)
	}
	defer pool.Close()

	if err := storage.EnsureSchema(ctx, pool); err != nil {
		fail(log, "schema setup failed", err)
	}
	store := storage.New(pool)

	if *workbook != "" {
		rows, err := sheets.ReadWorkbook(*workbook, sheets.DefaultSheet)
		if err != nil {
			fail(log, "workbook read failed", err)
		}
		sum, err := handlers.IngestMarketData(ctx, store, rows)
		if err != nil {
			fail(log, "market data ingestion failed", err)
		}
		log.Info("market data run complete",
			"written", sum.Written, "updated", sum.Updated, "skipped", sum.Skipped)
	}

	if *apiKey != "" {
		articles, err := fetchScoredArticles(ctx, *apiKey)
		if err != nil {
			fail(log, "news fetch failed", err)
		}
		sum, err := handlers.IngestNewsSentiment(ctx, store, articles)
		if err != nil {
			fail(log, "news ingestion failed", err)
		}
		log.Info("news run complete",
			"written", sum.Written, "updated", sum.Updated, "skipped", sum.Skipped)
	}
}

// fetchScoredArticles pulls recent articles for every tracked symbol and runs
// them through the black-box scorer. A symbol whose fetch fails is logged and
// skipped so one flaky source does not starve the rest of the run.
func fetchScoredArticles(ctx context.Context, apiKey string) ([]ingest.RawArticle, error) {
	log := logging.Component("news-fetch")
	client := newsapi.NewClient(config.NEWS_API_URL, apiKey)
	scorer := scoring.NewClient(config.SCORER_URL)

	var raw []ingest.RawArticle
	for _, symbol := range storage.TrackedSymbols() {
		articles, err := client.FetchArticles(ctx, symbol)
		if err != nil {
			log.Warn("fetch failed", "symbol", symbol, "error", err)
			continue
		}
		for _, a := range articles {
			scored, err := scorer.Score(ctx, a.Title+" "+a.Description)
			if err != nil {
				return nil, fmt.Errorf("scoring article %q: %w", a.Title, err)
			}
			raw = append(raw, ingest.RawArticle{
				Source:   a.Source,
				Title:    a.Title,
				Datetime: a.PublishedAt,
				Score:    scored.Score,
				Entities: scored.Entities,
				Keywords: scored.Keywords,
			})
		}
	}
	return raw, nil
}

// fail logs the error with its taxonomy category and exits non-zero.
func fail(log *slog.Logger, msg string, err error) {
	category := "internal"
	switch {
	case storage.IsIntegrity(err):
		category = "integrity"
	case storage.IsValidation(err):
		category = "validation"
	}
	log.Error(msg, "category", category, "error", err)
	os.Exit(1)
}
