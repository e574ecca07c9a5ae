package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// allowedPlatforms is the closed enumeration for social media platforms.
// An unknown platform label is a validation error, never a creation event.
var allowedPlatforms = map[string]bool{
	"twitter": true,
	"reddit":  true,
}

// RefResolver maps human-readable labels to reference-entity ids with
// get-or-create semantics, creating the row the first time a label is seen.
// Resolved ids are cached for the lifetime of the batch so a label is looked
// up at most once per run.
//
// The read-then-insert sequence assumes the single-writer batch model: two
// concurrent runs racing to create the same unseen label would both pass the
// read and one insert would fail on the unique constraint. A multi-writer
// deployment needs an atomic insert-if-absent at the storage layer instead.
type RefResolver struct {
	q             Querier
	sources       map[string]int32
	platforms     map[string]int32
	modelVersions map[string]int32
}

func NewRefResolver(q Querier) *RefResolver {
	return &RefResolver{
		q:             q,
		sources:       make(map[string]int32),
		platforms:     make(map[string]int32),
		modelVersions: make(map[string]int32),
	}
}

// SourceID resolves a news source name, creating the source on first sight.
func (r *RefResolver) SourceID(ctx context.Context, name string) (int32, error) {
	if id, ok := r.sources[name]; ok {
		return id, nil
	}
	id, err := r.getOrCreate(ctx, name,
		`SELECT id FROM news_sources WHERE source_name = $1`,
		`INSERT INTO news_sources (source_name) VALUES ($1) RETURNING id`)
	if err != nil {
		return 0, fmt.Errorf("resolve news source %q: %w", name, err)
	}
	r.sources[name] = id
	return id, nil
}

// PlatformID resolves a social platform label. Labels are canonicalized to
// lowercase and validated against the closed enumeration before any lookup.
func (r *RefResolver) PlatformID(ctx context.Context, label string) (int32, error) {
	canon := strings.ToLower(strings.TrimSpace(label))
	if !allowedPlatforms[canon] {
		return 0, &ValidationError{Field: "platform_name", Reason: fmt.Sprintf("%q is not an allowed platform", label)}
	}
	if id, ok := r.platforms[canon]; ok {
		return id, nil
	}
	id, err := r.getOrCreate(ctx, canon,
		`SELECT id FROM social_media_platforms WHERE platform_name = $1`,
		`INSERT INTO social_media_platforms (platform_name) VALUES ($1) RETURNING id`)
	if err != nil {
		return 0, fmt.Errorf("resolve platform %q: %w", canon, err)
	}
	r.platforms[canon] = id
	return id, nil
}

// ModelVersionID resolves a model version label, creating it on first sight.
func (r *RefResolver) ModelVersionID(ctx context.Context, version string) (int32, error) {
	if id, ok := r.modelVersions[version]; ok {
		return id, nil
	}
	id, err := r.getOrCreate(ctx, version,
		`SELECT id FROM model_versions WHERE version = $1`,
		`INSERT INTO model_versions (version) VALUES ($1) RETURNING id`)
	if err != nil {
		return 0, fmt.Errorf("resolve model version %q: %w", version, err)
	}
	r.modelVersions[version] = id
	return id, nil
}

func (r *RefResolver) getOrCreate(ctx context.Context, label, selectSQL, insertSQL string) (int32, error) {
	var id int32
	err := r.q.QueryRow(ctx, selectSQL, label).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		err = r.q.QueryRow(ctx, insertSQL, label).Scan(&id)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}
