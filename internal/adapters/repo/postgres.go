package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"goonzette-automation/internal/domain"
)

// Postgres implements the persistence gateway on a direct pgxpool connection.
// Supabase projects expose a Postgres DSN; setting PG_DSN selects this path
// over the REST gateway.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates the adapter.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

var _ domain.SummaryRepo = (*Postgres)(nil)
var _ domain.ArticleRepo = (*Postgres)(nil)

func (p *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// SaveDailySummary inserts the day's summary row.
func (p *Postgres) SaveDailySummary(ctx context.Context, rec domain.DailySummaryRecord) error {
	channelJSON, err := json.Marshal(rec.ChannelSummaries)
	if err != nil {
		return fmt.Errorf("encode channel summaries: %w", err)
	}
	rawJSON, err := json.Marshal(rec.RawMessages)
	if err != nil {
		return fmt.Errorf("encode raw messages: %w", err)
	}
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	_, err = p.pool.Exec(ctx, `
		INSERT INTO discord_summaries (date, overall_summary, channel_summaries, total_messages, raw_messages)
		VALUES ($1, $2, $3, $4, $5)`,
		rec.Date, rec.OverallSummary, channelJSON, rec.TotalMessages, rawJSON)
	if err != nil {
		return fmt.Errorf("insert daily summary: %w", err)
	}
	return nil
}

// GetDailySummary returns the summary row for the date, if any.
func (p *Postgres) GetDailySummary(ctx context.Context, date string) (domain.DailySummaryRecord, bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	rows, err := p.pool.Query(ctx, `
		SELECT date, overall_summary, channel_summaries, total_messages, raw_messages
		FROM discord_summaries
		WHERE date = $1
		LIMIT 1`, date)
	if err != nil {
		return domain.DailySummaryRecord{}, false, fmt.Errorf("query daily summary: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return domain.DailySummaryRecord{}, false, rows.Err()
	}
	var rec domain.DailySummaryRecord
	var channelJSON, rawJSON []byte
	if err := rows.Scan(&rec.Date, &rec.OverallSummary, &channelJSON, &rec.TotalMessages, &rawJSON); err != nil {
		return domain.DailySummaryRecord{}, false, fmt.Errorf("scan daily summary: %w", err)
	}
	if len(channelJSON) > 0 {
		if err := json.Unmarshal(channelJSON, &rec.ChannelSummaries); err != nil {
			return domain.DailySummaryRecord{}, false, fmt.Errorf("decode channel summaries: %w", err)
		}
	}
	if len(rawJSON) > 0 {
		if err := json.Unmarshal(rawJSON, &rec.RawMessages); err != nil {
			return domain.DailySummaryRecord{}, false, fmt.Errorf("decode raw messages: %w", err)
		}
	}
	return rec, true, nil
}

// PublishArticle inserts an articles row.
func (p *Postgres) PublishArticle(ctx context.Context, article domain.Article) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	var discordContext *string
	if article.DiscordContext != "" {
		discordContext = &article.DiscordContext
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO articles (author, title, content, topic, discord_context, article_date, published)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		article.Author, article.Title, article.Content, article.Topic, discordContext, article.ArticleDate, article.Published)
	if err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

// ListPublished returns the date's published articles ordered by creation time.
func (p *Postgres) ListPublished(ctx context.Context, date string) ([]domain.Article, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	rows, err := p.pool.Query(ctx, `
		SELECT author, title, content, topic, COALESCE(discord_context, ''), article_date, published
		FROM articles
		WHERE article_date = $1 AND published = TRUE
		ORDER BY created_at ASC`, date)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		var a domain.Article
		if err := rows.Scan(&a.Author, &a.Title, &a.Content, &a.Topic, &a.DiscordContext, &a.ArticleDate, &a.Published); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return articles, nil
}
