package domain

import (
	"context"
	"time"
)

// Summarizer produces generated text for a prompt. The pipeline only depends on
// "text in, text out, may fail"; any non-success is one coarse failure.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// SummaryRepo persists and reads daily Discord summaries.
type SummaryRepo interface {
	SaveDailySummary(ctx context.Context, rec DailySummaryRecord) error
	// GetDailySummary returns the record for the date and whether one exists.
	GetDailySummary(ctx context.Context, date string) (DailySummaryRecord, bool, error)
}

// ArticleRepo persists and reads newsletter articles.
type ArticleRepo interface {
	PublishArticle(ctx context.Context, article Article) error
	// ListPublished returns published articles for the date ordered by creation time.
	ListPublished(ctx context.Context, date string) ([]Article, error)
}

// OnceGuard runs fn at most once per key within ttl. Used to keep scheduled
// actions from double-firing across a restart inside the same minute.
type OnceGuard interface {
	Once(key string, ttl time.Duration, fn func() error) error
}
