package handlers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/marketmagic/market-ingest-go/ingest"
	"github.com/marketmagic/market-ingest-go/storage"
)

func rawObservation(location, imageHash string) ingest.RawObservation {
	return ingest.RawObservation{
		Datetime:  time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC),
		Location:  location,
		ImageURL:  "https://imagery.example/" + imageHash,
		ImageHash: imageHash,
		Features:  json.RawMessage(`{"ships": 14}`),
	}
}

func rawPrediction(symbol string, price float64) ingest.RawPrediction {
	return ingest.RawPrediction{
		Symbol:       symbol,
		Datetime:     time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC),
		Price:        price,
		Confidence:   0.66,
		ModelVersion: "lstm-2024.06",
	}
}

func TestIngestSatelliteSkipsResentImage(t *testing.T) {
	tx := newFakeTx(
		fakeRow{err: pgx.ErrNoRows}, // first image unseen
		fakeRow{vals: []any{true}},
		fakeRow{vals: []any{int32(1)}}, // second image already ingested elsewhere
	)
	store := &fakeStore{txs: []*fakeTx{tx}}

	observations := []ingest.RawObservation{
		rawObservation("rotterdam-port", "sha256:aa"),
		rawObservation("shanghai-port", "sha256:aa"), // same image, new observation
	}

	sum, err := IngestSatellite(context.Background(), store, observations)
	if err != nil {
		t.Fatalf("IngestSatellite error: %v", err)
	}
	want := storage.Summary{Written: 1, Skipped: 1}
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

func TestIngestPredictionsAbortsOnIntegrity(t *testing.T) {
	driverErr := &pgconn.PgError{Code: "23503", ConstraintName: "model_predictions_model_version_id_fkey"}
	tx := newFakeTx(fakeRow{vals: []any{true}}, fakeRow{err: driverErr})
	store := &fakeStore{txs: []*fakeTx{tx}}

	preds := []ingest.RawPrediction{
		rawPrediction("AAPL", 187.4),
		rawPrediction("MSFT", 415.1),
	}

	sum, err := IngestPredictions(context.Background(), store, preds)
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
