package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// SatelliteObservation is one extracted-features document for a location.
// Natural key: (Datetime, Location); ImageHash is independently unique so the
// same image referenced under two locations is caught at the storage layer.
type SatelliteObservation struct {
	Datetime          time.Time       `db:"datetime"`
	Location          string          `db:"location"`
	ImageURL          string          `db:"image_url"`
	ImageHash         string          `db:"image_hash"`
	ExtractedFeatures json.RawMessage `db:"extracted_features"`
}

// ModelPrediction is one model's price call for a bar.
// Natural key: (Symbol, Datetime, ModelVersionID), so two model versions can
// be compared on the same bar. ModelVersionID must be resolved against
// model_versions before the upsert.
type ModelPrediction struct {
	Symbol         string          `db:"symbol"`
	Datetime       time.Time       `db:"datetime"`
	PredictedPrice decimal.Decimal `db:"predicted_price"`
	Confidence     decimal.Decimal `db:"confidence"`
	ModelVersionID int32           `db:"model_version_id"`
}
