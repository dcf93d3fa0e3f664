package repository

import (
	"context"

	"support-console/internal/domain/entity"
)

// CompletionClient is the single opaque text-completion capability. Exactly
// one of the two return values is populated.
type CompletionClient interface {
	Complete(ctx context.Context, req entity.CompletionRequest) (*entity.Completion, error)
}

// Embedder turns text into a vector for the semantic response cache.
type Embedder interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// ResponseCache stores completion text keyed by query embedding. Search
// returns empty content on a miss.
type ResponseCache interface {
	Search(ctx context.Context, vector []float32, threshold float32) (content, cachedQuery string, err error)
	Save(ctx context.Context, query, content string, vector []float32) error
}

// MatchJudge verifies that a cache hit really asks for the same thing as the
// live query before the cached text is reused.
type MatchJudge interface {
	SameIntent(ctx context.Context, query, cachedQuery string) bool
}

// UsageLimiter meters completion-token spend per customer.
type UsageLimiter interface {
	CheckLimit(ctx context.Context, customerID string) (bool, error)
	Increment(ctx context.Context, customerID string, tokens int) error
}
