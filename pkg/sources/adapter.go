// Package sources defines the adapter contract every upstream API client
// implements, so the pipeline coordinator can iterate a table of sources
// instead of branching on source-specific free functions.
package sources

import (
	"context"

	"github.com/paper-app/research30/internal/domain"
)

// Adapter searches one upstream API for a topic and returns normalized,
// relevance-scored items. Implementations must never panic on malformed
// upstream data; drop the offending record and keep going, matching the
// "missing title drops the item" rule every adapter already follows.
type Adapter interface {
	Name() domain.Source
	Search(ctx context.Context, query domain.TopicQuery, cfg domain.Config) ([]domain.Item, error)
}
