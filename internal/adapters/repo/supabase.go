package repo

import (
	"context"
	"fmt"
	"net/url"

	"goonzette-automation/internal/domain"
	"goonzette-automation/internal/infra/supabase"
)

const (
	tableArticles  = "articles"
	tableSummaries = "discord_summaries"
)

// Supabase implements the persistence gateway over the PostgREST API.
type Supabase struct {
	client *supabase.Client
}

// NewSupabase creates the gateway.
func NewSupabase(client *supabase.Client) *Supabase {
	return &Supabase{client: client}
}

var _ domain.SummaryRepo = (*Supabase)(nil)
var _ domain.ArticleRepo = (*Supabase)(nil)

// SaveDailySummary creates the day's discord_summaries row.
func (r *Supabase) SaveDailySummary(ctx context.Context, rec domain.DailySummaryRecord) error {
	if err := r.client.Insert(ctx, tableSummaries, rec); err != nil {
		return fmt.Errorf("save daily summary: %w", err)
	}
	return nil
}

// GetDailySummary returns the summary row for the date, if any.
func (r *Supabase) GetDailySummary(ctx context.Context, date string) (domain.DailySummaryRecord, bool, error) {
	query := url.Values{}
	query.Set("date", "eq."+date)
	query.Set("select", "*")
	var rows []domain.DailySummaryRecord
	if err := r.client.Select(ctx, tableSummaries, query, &rows); err != nil {
		return domain.DailySummaryRecord{}, false, fmt.Errorf("get daily summary: %w", err)
	}
	if len(rows) == 0 {
		return domain.DailySummaryRecord{}, false, nil
	}
	return rows[0], true, nil
}

// PublishArticle creates an articles row.
func (r *Supabase) PublishArticle(ctx context.Context, article domain.Article) error {
	if err := r.client.Insert(ctx, tableArticles, article); err != nil {
		return fmt.Errorf("publish article: %w", err)
	}
	return nil
}

// ListPublished returns the date's published articles ordered by creation time.
func (r *Supabase) ListPublished(ctx context.Context, date string) ([]domain.Article, error) {
	query := url.Values{}
	query.Set("article_date", "eq."+date)
	query.Set("published", "eq.true")
	query.Set("order", "created_at.asc")
	query.Set("select", "*")
	var rows []domain.Article
	if err := r.client.Select(ctx, tableArticles, query, &rows); err != nil {
		return nil, fmt.Errorf("list published articles: %w", err)
	}
	return rows, nil
}
