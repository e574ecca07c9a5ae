package handlers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/marketmagic/market-ingest-go/ingest"
	"github.com/marketmagic/market-ingest-go/storage"
)

func scoredArticle(title string, score float64) ingest.RawArticle {
	return ingest.RawArticle{
		Source:   "Reuters",
		Title:    title,
		Datetime: time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC),
		Score:    score,
		Entities: json.RawMessage(`{}`),
		Keywords: []string{"fed"},
	}
}

func TestIngestNewsSentimentSkipsInvalidRecords(t *testing.T) {
	tx := newFakeTx(fakeRow{vals: []any{true}}, fakeRow{vals: []any{false}})
	store := &fakeStore{txs: []*fakeTx{tx}}

	articles := []ingest.RawArticle{
		scoredArticle("Fed holds rates", 0.3),
		scoredArticle("Broken feed entry", 1.5), // out of domain
		scoredArticle("Chip demand surges", -0.2),
	}

	sum, err := IngestNewsSentiment(context.Background(), store, articles)
	if err != nil {
		t.Fatalf("IngestNewsSentiment error: %v", err)
	}
	want := storage.Summary{Written: 1, Updated: 1, Skipped: 1}
	if sum != want {
		t.Errorf("summary = %+v, want %+v", sum, want)
	}
	if !tx.committed {
		t.Error("batch was not committed")
	}
	if tx.rolledBack {
		t.Error("batch was rolled back despite only per-record skips")
	}
}

func TestIngestNewsSentimentAbortsOnIntegrity(t *testing.T) {
	driverErr := &pgconn.PgError{Code: "23503", ConstraintName: "news_sentiment_source_id_fkey"}
	tx := newFakeTx(fakeRow{vals: []any{true}}, fakeRow{err: driverErr})
	store := &fakeStore{txs: []*fakeTx{tx}}

	articles := []ingest.RawArticle{
		scoredArticle("First article lands", 0.3),
		scoredArticle("Second article fails", 0.1),
	}

	sum, err := IngestNewsSentiment(context.Background(), store, articles)
	if !storage.IsIntegrity(err) {
		t.Fatalf("error = %v, want IntegrityError", err)
	}
	if !tx.rolledBack {
		t.Error("failed batch was not rolled back")
	}
	if tx.committed {
		t.Error("failed batch was committed")
	}
	if sum != (storage.Summary{}) {
		t.Errorf("summary = %+v, want empty after rollback", sum)
	}
}
