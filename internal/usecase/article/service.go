// Package article ghost-writes persona articles and publishes them.
package article

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"goonzette-automation/internal/domain"
	"goonzette-automation/internal/infra/metrics"
)

// ErrUnknownAuthor is returned for an alias outside the persona roster.
var ErrUnknownAuthor = errors.New("unknown author")

const (
	articleMaxTokens = 2500
	dailyAuthorCount = 2
)

// Service generates and publishes persona articles.
type Service struct {
	log        zerolog.Logger
	summarizer domain.Summarizer
	articles   domain.ArticleRepo
	summaries  domain.SummaryRepo
	authors    map[string]Author
	now        func() time.Time
	rand       *rand.Rand
}

// Option configures the Service.
type Option func(*Service)

// WithClock injects the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRand injects the random source used for persona and topic selection.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) { s.rand = r }
}

// NewService creates the generator.
func NewService(logger zerolog.Logger, summarizer domain.Summarizer, articles domain.ArticleRepo, summaries domain.SummaryRepo, opts ...Option) *Service {
	s := &Service{
		log:        logger,
		summarizer: summarizer,
		articles:   articles,
		summaries:  summaries,
		authors:    Authors(),
		now:        time.Now,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateDaily writes articles for two randomly picked personas. One
// persona's failure is logged and does not abort the other.
func (s *Service) GenerateDaily(ctx context.Context) error {
	picked := s.pickAuthors(dailyAuthorCount)
	s.log.Info().Strs("authors", picked).Msg("article: generating daily articles")

	var failed int
	for _, alias := range picked {
		author := s.authors[alias]
		topic := author.Topics[s.rand.Intn(len(author.Topics))]
		if err := s.Generate(ctx, alias, topic, author.UsesDiscord); err != nil {
			failed++
			s.log.Error().Err(err).Str("author", alias).Str("topic", topic).Msg("article: generation failed")
		}
	}
	if failed == len(picked) {
		return fmt.Errorf("all %d daily articles failed", failed)
	}
	return nil
}

// Generate writes and publishes one article. When useDiscord is set, the
// prior day's chat summary is loaded as context; a missing summary degrades
// to a no-fabrication instruction rather than failing.
func (s *Service) Generate(ctx context.Context, alias, topic string, useDiscord bool) error {
	author, ok := s.authors[alias]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAuthor, alias)
	}
	if topic == "" {
		topic = author.Topics[s.rand.Intn(len(author.Topics))]
	}

	var chatContext string
	if useDiscord && author.UsesDiscord {
		loaded, err := s.loadDiscordContext(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("article: discord context unavailable")
		}
		chatContext = loaded
	}

	prompt := buildPrompt(author, topic, chatContext)
	text, err := s.summarizer.Summarize(ctx, prompt, articleMaxTokens)
	if err != nil {
		return fmt.Errorf("generate article: %w", err)
	}

	title, content := parseTitle(text, topic)
	published := domain.Article{
		Author:         author.Key,
		Title:          title,
		Content:        content,
		Topic:          topic,
		DiscordContext: chatContext,
		ArticleDate:    s.now().UTC().Format(domain.DateFormat),
		Published:      true,
	}
	if err := s.articles.PublishArticle(ctx, published); err != nil {
		return fmt.Errorf("publish article: %w", err)
	}
	metrics.ArticlesPublished.WithLabelValues(author.Key).Inc()
	s.log.Info().Str("author", author.Key).Str("title", title).Msg("article: published")
	return nil
}

// pickAuthors returns n distinct persona aliases via a Fisher-Yates shuffle.
func (s *Service) pickAuthors(n int) []string {
	aliases := make([]string, 0, len(s.authors))
	for alias := range s.authors {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	for i := len(aliases) - 1; i > 0; i-- {
		j := s.rand.Intn(i + 1)
		aliases[i], aliases[j] = aliases[j], aliases[i]
	}
	if n > len(aliases) {
		n = len(aliases)
	}
	return aliases[:n]
}

func (s *Service) loadDiscordContext(ctx context.Context) (string, error) {
	yesterday := s.now().UTC().AddDate(0, 0, -1).Format(domain.DateFormat)
	rec, ok, err := s.summaries.GetDailySummary(ctx, yesterday)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return formatDiscordContext(rec), nil
}

// formatDiscordContext renders a summary record into the prompt context the
// Discord chronicler persona receives.
func formatDiscordContext(rec domain.DailySummaryRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Discord Activity (%d messages):\n\n", rec.TotalMessages)
	if rec.OverallSummary != "" {
		b.WriteString(rec.OverallSummary)
		b.WriteString("\n\n")
	}
	if len(rec.ChannelSummaries) > 0 {
		b.WriteString("Channel Highlights:\n")
		names := make([]string, 0, len(rec.ChannelSummaries))
		for name := range rec.ChannelSummaries {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "\n#%s:\n%s\n", name, rec.ChannelSummaries[name])
		}
	}
	return strings.TrimSpace(b.String())
}

func buildPrompt(author Author, topic, discordContext string) string {
	var b strings.Builder
	b.WriteString(author.Style)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Write an article about: %s\n\n", topic)
	switch {
	case author.UsesDiscord && discordContext != "":
		fmt.Fprintf(&b, "REAL Discord Activity from Yesterday:\n%s\n\n", discordContext)
		b.WriteString("IMPORTANT INSTRUCTIONS:\n")
		b.WriteString("- Reference ONLY the specific Discord moments provided above\n")
		b.WriteString("- Do NOT invent or fabricate any Discord conversations, usernames, or events\n")
		b.WriteString("- If the Discord context is vague or minimal, focus more on the general topic\n")
		b.WriteString("- Use Discord examples naturally when they fit the narrative\n\n")
	case author.UsesDiscord:
		b.WriteString("NOTE: No Discord activity data available today.\n")
		fmt.Fprintf(&b, "Write about %s from your general perspective without referencing specific Discord conversations.\n", topic)
		b.WriteString("Do NOT invent or make up Discord activity, usernames, or server events.\n\n")
	}
	b.WriteString("Write a complete article (600-800 words) in your distinctive voice. Include a compelling title.")
	return b.String()
}

// parseTitle splits generated text into title and body. The first non-empty
// line becomes the title with markdown and "Title:" prefixes stripped; when
// that leaves too little body the first sentence is promoted instead.
func parseTitle(text, topic string) (string, string) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	if len(lines) == 0 {
		return "Daily Take: " + topic, strings.TrimSpace(text)
	}

	title := strings.TrimSpace(strings.TrimPrefix(lines[0], "#"))
	if rest, ok := cutPrefixFold(title, "title:"); ok {
		title = strings.TrimSpace(rest)
	}
	content := strings.Join(lines[1:], "\n\n")

	if len(content) < 100 {
		all := strings.TrimSpace(text)
		if idx := strings.Index(all, "."); idx > 0 && idx < 150 {
			return all[:idx+1], strings.TrimSpace(all[idx+1:])
		}
		return "Daily Take: " + topic, all
	}
	return title, content
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}
