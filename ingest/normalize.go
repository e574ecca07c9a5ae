// Package ingest turns raw collaborator records into schema-valid, fully
// typed records ready for key resolution and upsert. Out-of-domain values are
// refused, never clamped: a sentiment of 1.5 is a bug upstream, and clamping
// it to 1 would hide that.
package ingest

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/marketmagic/market-ingest-go/models"
	"github.com/marketmagic/market-ingest-go/storage"
	"github.com/shopspring/decimal"
)

// Date layouts the spreadsheet and feed exports have been seen to use.
var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// NormalizeBar parses one OHLCV spreadsheet row into a MarketBar. Rows with a
// missing or zero open are refused, matching the upstream sheet's padding
// convention.
func NormalizeBar(raw RawBar) (models.MarketBar, error) {
	var bar models.MarketBar

	if raw.Symbol == "" {
		return bar, &storage.ValidationError{Field: "symbol", Reason: "missing"}
	}
	dt, err := parseNaiveTime(raw.Date)
	if err != nil {
		return bar, &storage.ValidationError{Field: "datetime", Reason: err.Error()}
	}

	open, err := parsePrice("open_price", raw.Open)
	if err != nil {
		return bar, err
	}
	if open.IsZero() {
		return bar, &storage.ValidationError{Field: "open_price", Reason: "missing or zero"}
	}
	high, err := parsePrice("high_price", raw.High)
	if err != nil {
		return bar, err
	}
	low, err := parsePrice("low_price", raw.Low)
	if err != nil {
		return bar, err
	}
	closePrice, err := parsePrice("close_price", raw.Close)
	if err != nil {
		return bar, err
	}
	volume, err := parseVolume(raw.Volume)
	if err != nil {
		return bar, err
	}

	bar = models.MarketBar{
		Symbol:   raw.Symbol,
		Datetime: dt,
		Open:     open,
		High:     high,
		Low:      low,
		Close:    closePrice,
		Volume:   volume,
	}
	return bar, nil
}

// NormalizeArticle validates one scored article into a NewsSentimentRecord.
// SourceID is left zero for the reference resolver to fill.
func NormalizeArticle(raw RawArticle) (models.NewsSentimentRecord, error) {
	var rec models.NewsSentimentRecord

	if strings.TrimSpace(raw.Title) == "" {
		return rec, &storage.ValidationError{Field: "title", Reason: "missing"}
	}
	if raw.Datetime.IsZero() {
		return rec, &storage.ValidationError{Field: "datetime", Reason: "missing"}
	}
	score, err := SentimentScore(raw.Score)
	if err != nil {
		return rec, err
	}
	entities, err := Document("entity_recognition", raw.Entities)
	if err != nil {
		return rec, err
	}

	rec = models.NewsSentimentRecord{
		Datetime:          naive(raw.Datetime),
		Title:             strings.TrimSpace(raw.Title),
		SentimentScore:    score,
		EntityRecognition: entities,
		Keywords:          Keywords(raw.Keywords),
	}
	return rec, nil
}

// NormalizePost validates one scored social post into a SocialPost.
// PlatformID is left zero for the reference resolver to fill.
func NormalizePost(raw RawPost) (models.SocialPost, error) {
	var post models.SocialPost

	if strings.TrimSpace(raw.Text) == "" {
		return post, &storage.ValidationError{Field: "post_text", Reason: "missing"}
	}
	if raw.Datetime.IsZero() {
		return post, &storage.ValidationError{Field: "datetime", Reason: "missing"}
	}
	if raw.Engagement < 0 {
		return post, &storage.ValidationError{Field: "engagement_count", Reason: "negative"}
	}
	score, err := SentimentScore(raw.Score)
	if err != nil {
		return post, err
	}
	entities, err := Document("entity_recognition", raw.Entities)
	if err != nil {
		return post, err
	}

	post = models.SocialPost{
		Datetime:          naive(raw.Datetime),
		Author:            strings.TrimSpace(raw.Author),
		Text:              strings.TrimSpace(raw.Text),
		URL:               raw.URL,
		SentimentScore:    score,
		EngagementCount:   raw.Engagement,
		EntityRecognition: entities,
		Keywords:          Keywords(raw.Keywords),
	}
	return post, nil
}

// NormalizeObservation validates one satellite extraction result.
func NormalizeObservation(raw RawObservation) (models.SatelliteObservation, error) {
	var obs models.SatelliteObservation

	if strings.TrimSpace(raw.Location) == "" {
		return obs, &storage.ValidationError{Field: "location", Reason: "missing"}
	}
	if raw.Datetime.IsZero() {
		return obs, &storage.ValidationError{Field: "datetime", Reason: "missing"}
	}
	if raw.ImageHash == "" {
		return obs, &storage.ValidationError{Field: "image_hash", Reason: "missing"}
	}
	features, err := Document("extracted_features", raw.Features)
	if err != nil {
		return obs, err
	}

	obs = models.SatelliteObservation{
		Datetime:          naive(raw.Datetime),
		Location:          strings.TrimSpace(raw.Location),
		ImageURL:          raw.ImageURL,
		ImageHash:         raw.ImageHash,
		ExtractedFeatures: features,
	}
	return obs, nil
}

// NormalizePrediction validates one model output. ModelVersionID is left zero
// for the reference resolver to fill.
func NormalizePrediction(raw RawPrediction) (models.ModelPrediction, error) {
	var pred models.ModelPrediction

	if raw.Symbol == "" {
		return pred, &storage.ValidationError{Field: "symbol", Reason: "missing"}
	}
	if raw.Datetime.IsZero() {
		return pred, &storage.ValidationError{Field: "datetime", Reason: "missing"}
	}
	if raw.ModelVersion == "" {
		return pred, &storage.ValidationError{Field: "model_version", Reason: "missing"}
	}
	if !isFinite(raw.Price) || raw.Price <= 0 {
		return pred, &storage.ValidationError{Field: "predicted_price", Reason: "not a positive number"}
	}
	confidence, err := ConfidenceScore(raw.Confidence)
	if err != nil {
		return pred, err
	}

	pred = models.ModelPrediction{
		Symbol:         raw.Symbol,
		Datetime:       naive(raw.Datetime),
		PredictedPrice: decimal.NewFromFloat(raw.Price).Round(4),
		Confidence:     confidence,
	}
	return pred, nil
}

// SentimentScore validates a polarity score against its [-1, 1] domain.
func SentimentScore(raw float64) (decimal.Decimal, error) {
	if !isFinite(raw) {
		return decimal.Decimal{}, &storage.ValidationError{Field: "sentiment_score", Reason: "not a finite number"}
	}
	if raw < -1 || raw > 1 {
		return decimal.Decimal{}, &storage.ValidationError{
			Field:  "sentiment_score",
			Reason: fmt.Sprintf("%v outside [-1, 1]", raw),
		}
	}
	return decimal.NewFromFloat(raw).Round(4), nil
}

// ConfidenceScore validates a confidence score against its [0, 1] domain.
func ConfidenceScore(raw float64) (decimal.Decimal, error) {
	if !isFinite(raw) {
		return decimal.Decimal{}, &storage.ValidationError{Field: "confidence", Reason: "not a finite number"}
	}
	if raw < 0 || raw > 1 {
		return decimal.Decimal{}, &storage.ValidationError{
			Field:  "confidence",
			Reason: fmt.Sprintf("%v outside [0, 1]", raw),
		}
	}
	return decimal.NewFromFloat(raw).Round(4), nil
}

// Keywords normalizes a keyword list for the exact and prefix indexes:
// lowercase, trimmed, deduplicated, first-seen order.
func Keywords(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, kw := range raw {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}

// Document checks that an opaque payload is a parseable structured document.
// The internal shape is not interpreted here; only downstream consumers and
// the storage indexes care about it.
func Document(field string, raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, &storage.ValidationError{Field: field, Reason: "missing"}
	}
	if !json.Valid(raw) {
		return nil, &storage.ValidationError{Field: field, Reason: "not valid JSON"}
	}
	return raw, nil
}

func parsePrice(field, raw string) (decimal.Decimal, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" || raw == "-" {
		return decimal.Decimal{}, &storage.ValidationError{Field: field, Reason: "missing"}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, &storage.ValidationError{Field: field, Reason: fmt.Sprintf("%q is not a number", raw)}
	}
	return d, nil
}

func parseVolume(raw string) (int64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	// The sheet export pads missing volume with blanks or dashes.
	if raw == "" || raw == "-" {
		return 0, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsInteger() || d.IsNegative() {
		return 0, &storage.ValidationError{Field: "volume", Reason: fmt.Sprintf("%q is not a non-negative integer", raw)}
	}
	return d.IntPart(), nil
}

func parseNaiveTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("missing")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return naive(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%q matches no known date layout", raw)
}

// naive converts to the canonical timezone-naive clock: wall time in UTC.
func naive(t time.Time) time.Time {
	return t.UTC()
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
