package article

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"goonzette-automation/internal/domain"
)

type stubSummarizer struct {
	prompts []string
	reply   string
	err     error
}

func (s *stubSummarizer) Summarize(_ context.Context, prompt string, _ int) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	if s.reply != "" {
		return s.reply, nil
	}
	return "Generated Title\n\n" + strings.Repeat("A full paragraph of body text. ", 10), nil
}

type stubArticleRepo struct {
	published []domain.Article
	err       error
}

func (r *stubArticleRepo) PublishArticle(_ context.Context, a domain.Article) error {
	if r.err != nil {
		return r.err
	}
	r.published = append(r.published, a)
	return nil
}

func (r *stubArticleRepo) ListPublished(context.Context, string) ([]domain.Article, error) {
	return nil, nil
}

type stubSummaryRepo struct {
	rec   domain.DailySummaryRecord
	found bool
	dates []string
}

func (r *stubSummaryRepo) SaveDailySummary(context.Context, domain.DailySummaryRecord) error {
	return nil
}

func (r *stubSummaryRepo) GetDailySummary(_ context.Context, date string) (domain.DailySummaryRecord, bool, error) {
	r.dates = append(r.dates, date)
	return r.rec, r.found, nil
}

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2026, 1, 6, 8, 0, 0, 0, time.UTC) }
}

func TestGenerateUnknownAuthor(t *testing.T) {
	svc := NewService(zerolog.Nop(), &stubSummarizer{}, &stubArticleRepo{}, &stubSummaryRepo{})
	err := svc.Generate(context.Background(), "nobody", "anything", false)
	if !errors.Is(err, ErrUnknownAuthor) {
		t.Fatalf("expected ErrUnknownAuthor, got %v", err)
	}
}

func TestGeneratePublishesArticle(t *testing.T) {
	summarizer := &stubSummarizer{}
	repo := &stubArticleRepo{}
	svc := NewService(zerolog.Nop(), summarizer, repo, &stubSummaryRepo{}, WithClock(fixedClock()))

	if err := svc.Generate(context.Background(), "claudia", "the decline of print media", false); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(repo.published) != 1 {
		t.Fatalf("expected one published article")
	}
	art := repo.published[0]
	if art.Author != "claudia_pochita" {
		t.Fatalf("unexpected author key %q", art.Author)
	}
	if art.Title != "Generated Title" {
		t.Fatalf("unexpected title %q", art.Title)
	}
	if art.ArticleDate != "2026-01-06" {
		t.Fatalf("unexpected article date %q", art.ArticleDate)
	}
	if !art.Published {
		t.Fatalf("article must publish as published")
	}
	if art.DiscordContext != "" {
		t.Fatalf("non-discord persona must not carry discord context")
	}
}

func TestGenerateWithDiscordContext(t *testing.T) {
	summarizer := &stubSummarizer{}
	repo := &stubArticleRepo{}
	summaries := &stubSummaryRepo{
		found: true,
		rec: domain.DailySummaryRecord{
			Date:           "2026-01-05",
			OverallSummary: "The server argued about the Vikings game.",
			ChannelSummaries: map[string]string{
				"vikings": "Heated takes on the quarterback.",
			},
			TotalMessages: 214,
		},
	}
	svc := NewService(zerolog.Nop(), summarizer, repo, summaries, WithClock(fixedClock()))

	if err := svc.Generate(context.Background(), "tommy", "server drama", true); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(summaries.dates) != 1 || summaries.dates[0] != "2026-01-05" {
		t.Fatalf("expected yesterday's summary lookup, got %v", summaries.dates)
	}
	prompt := summarizer.prompts[0]
	if !strings.Contains(prompt, "REAL Discord Activity from Yesterday:") {
		t.Fatalf("prompt missing discord context header:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Discord Activity (214 messages):") {
		t.Fatalf("prompt missing formatted context:\n%s", prompt)
	}
	if !strings.Contains(prompt, "#vikings:") {
		t.Fatalf("prompt missing channel highlight:\n%s", prompt)
	}
	if repo.published[0].DiscordContext == "" {
		t.Fatalf("published article must record the discord context used")
	}
}

func TestGenerateDiscordContextMissing(t *testing.T) {
	summarizer := &stubSummarizer{}
	svc := NewService(zerolog.Nop(), summarizer, &stubArticleRepo{}, &stubSummaryRepo{found: false}, WithClock(fixedClock()))

	if err := svc.Generate(context.Background(), "tommy", "server drama", true); err != nil {
		t.Fatalf("generate: %v", err)
	}
	prompt := summarizer.prompts[0]
	if !strings.Contains(prompt, "NOTE: No Discord activity data available today.") {
		t.Fatalf("prompt missing no-context note:\n%s", prompt)
	}
	if strings.Contains(prompt, "REAL Discord Activity") {
		t.Fatalf("prompt must not claim real activity without data")
	}
}

func TestGenerateDailyPicksTwoDistinct(t *testing.T) {
	summarizer := &stubSummarizer{}
	repo := &stubArticleRepo{}
	svc := NewService(zerolog.Nop(), summarizer, repo, &stubSummaryRepo{},
		WithClock(fixedClock()), WithRand(rand.New(rand.NewSource(1))))

	if err := svc.GenerateDaily(context.Background()); err != nil {
		t.Fatalf("generate daily: %v", err)
	}
	if len(repo.published) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(repo.published))
	}
	if repo.published[0].Author == repo.published[1].Author {
		t.Fatalf("daily authors must be distinct, both %q", repo.published[0].Author)
	}
}

func TestGenerateDailyAllFail(t *testing.T) {
	summarizer := &stubSummarizer{err: errors.New("api down")}
	svc := NewService(zerolog.Nop(), summarizer, &stubArticleRepo{}, &stubSummaryRepo{},
		WithClock(fixedClock()), WithRand(rand.New(rand.NewSource(1))))

	if err := svc.GenerateDaily(context.Background()); err == nil {
		t.Fatalf("expected error when every article fails")
	}
}

func TestParseTitle(t *testing.T) {
	longBody := strings.Repeat("Body sentence with enough length to count. ", 5)
	cases := []struct {
		name      string
		text      string
		wantTitle string
	}{
		{
			name:      "plain first line",
			text:      "My Great Title\n\n" + longBody,
			wantTitle: "My Great Title",
		},
		{
			name:      "markdown heading",
			text:      "# My Great Title\n\n" + longBody,
			wantTitle: "My Great Title",
		},
		{
			name:      "title prefix",
			text:      "Title: My Great Title\n\n" + longBody,
			wantTitle: "My Great Title",
		},
		{
			name:      "uppercase title prefix",
			text:      "TITLE: My Great Title\n\n" + longBody,
			wantTitle: "My Great Title",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			title, content := parseTitle(tc.text, "fallback topic")
			if title != tc.wantTitle {
				t.Fatalf("title %q, want %q", title, tc.wantTitle)
			}
			if content == "" {
				t.Fatalf("content must not be empty")
			}
		})
	}
}

func TestParseTitleShortBodyPromotesSentence(t *testing.T) {
	title, content := parseTitle("A short opener. The rest follows here.", "fallback topic")
	if title != "A short opener." {
		t.Fatalf("expected first sentence as title, got %q", title)
	}
	if content != "The rest follows here." {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestParseTitleFallback(t *testing.T) {
	title, _ := parseTitle("   \n\n  ", "hot dog economics")
	if title != "Daily Take: hot dog economics" {
		t.Fatalf("expected topic fallback, got %q", title)
	}
}
