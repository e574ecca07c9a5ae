package ingest

import (
	"encoding/json"
	"time"
)

// Raw records as delivered by the external collaborators, before any
// validation. String-typed fields arrive exactly as the upstream produced
// them; the normalizer owns turning them into schema-valid values.

// RawBar is one spreadsheet row of OHLCV cells.
type RawBar struct {
	Symbol string
	Date   string
	Open   string
	High   string
	Low    string
	Close  string
	Volume string
}

// RawArticle is one fetched news article after black-box scoring.
type RawArticle struct {
	Source   string
	Title    string
	Datetime time.Time
	Score    float64
	Entities json.RawMessage
	Keywords []string
}

// RawPost is one fetched social media post after black-box scoring.
// Platform stays a label here; the reference resolver validates it against
// the closed enumeration.
type RawPost struct {
	Platform   string
	Author     string
	Text       string
	URL        string
	Datetime   time.Time
	Score      float64
	Engagement int64
	Entities   json.RawMessage
	Keywords   []string
}

// RawObservation is one satellite extraction result.
type RawObservation struct {
	Datetime  time.Time
	Location  string
	ImageURL  string
	ImageHash string
	Features  json.RawMessage
}

// RawPrediction is one model output for a symbol and bar.
type RawPrediction struct {
	Symbol       string
	Datetime     time.Time
	Price        float64
	Confidence   float64
	ModelVersion string
}
