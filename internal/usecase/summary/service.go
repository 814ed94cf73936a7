// Package summary turns one day of aggregated chat into per-channel and
// overall digests and persists the result.
package summary

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"goonzette-automation/internal/domain"
	"goonzette-automation/internal/infra/metrics"
)

const (
	defaultMinMessages     = 10
	defaultTranscriptChars = 8000

	channelMaxTokens = 500
	overallMaxTokens = 300
)

// Snapshotter provides an isolated copy of the current daily log.
type Snapshotter interface {
	Snapshot() domain.DailyLog
}

// Service orchestrates the daily summary pipeline: activity gate, per-channel
// summarization, the overall digest and persistence.
type Service struct {
	log             zerolog.Logger
	store           Snapshotter
	summarizer      domain.Summarizer
	repo            domain.SummaryRepo
	minMessages     int
	transcriptChars int
}

// NewService creates the pipeline. minMessages and transcriptChars fall back
// to their defaults when non-positive.
func NewService(logger zerolog.Logger, store Snapshotter, summarizer domain.Summarizer, repo domain.SummaryRepo, minMessages, transcriptChars int) *Service {
	if minMessages <= 0 {
		minMessages = defaultMinMessages
	}
	if transcriptChars <= 0 {
		transcriptChars = defaultTranscriptChars
	}
	return &Service{
		log:             logger,
		store:           store,
		summarizer:      summarizer,
		repo:            repo,
		minMessages:     minMessages,
		transcriptChars: transcriptChars,
	}
}

// Run executes one pipeline pass over a snapshot of the current day. Too few
// messages is a normal early return, not an error. A failing channel gets a
// placeholder and never suppresses the others; only a failed persist fails
// the run.
func (s *Service) Run(ctx context.Context) error {
	start := time.Now()
	snapshot := s.store.Snapshot()

	if snapshot.TotalMessages < s.minMessages {
		s.log.Info().
			Int("total", snapshot.TotalMessages).
			Int("required", s.minMessages).
			Msg("summary: not enough messages, skipping")
		metrics.SummaryRuns.WithLabelValues("skipped").Inc()
		return nil
	}

	channelSummaries := make(map[string]string)
	for _, channel := range channelNames(snapshot) {
		msgs := snapshot.Channels[channel]
		if len(msgs) == 0 {
			continue
		}
		text, err := s.summarizer.Summarize(ctx, channelPrompt(channel, s.buildTranscript(msgs)), channelMaxTokens)
		if err != nil {
			s.log.Error().Err(err).Str("channel", channel).Msg("summary: channel summarization failed")
			text = channelPlaceholder(channel)
		}
		channelSummaries[channel] = text
	}

	overall, err := s.summarizer.Summarize(ctx, overallPrompt(channelSummaries), overallMaxTokens)
	if err != nil {
		s.log.Error().Err(err).Msg("summary: overall summarization failed")
		overall = overallPlaceholder
	}

	record := domain.DailySummaryRecord{
		Date:             snapshot.Date,
		OverallSummary:   overall,
		ChannelSummaries: channelSummaries,
		TotalMessages:    snapshot.TotalMessages,
		RawMessages:      snapshot.Channels,
	}
	if err := s.repo.SaveDailySummary(ctx, record); err != nil {
		metrics.SummaryRuns.WithLabelValues("failed").Inc()
		return fmt.Errorf("persist daily summary: %w", err)
	}

	metrics.SummaryRuns.WithLabelValues("completed").Inc()
	metrics.SummaryBuildSeconds.Observe(time.Since(start).Seconds())
	s.log.Info().
		Str("date", snapshot.Date).
		Int("channels", len(channelSummaries)).
		Int("total", snapshot.TotalMessages).
		Msg("summary: daily summary saved")
	return nil
}

// buildTranscript joins messages oldest-first as "@author: content" lines,
// truncated at the tail to the transcript budget.
func (s *Service) buildTranscript(msgs []domain.ChatMessage) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, fmt.Sprintf("@%s: %s", m.Author, m.Content))
	}
	return clipRunes(strings.Join(lines, "\n"), s.transcriptChars)
}

func channelPrompt(channel, transcript string) string {
	return fmt.Sprintf(`Summarize the key discussions, hot takes, and notable moments from the Discord #%s channel today. Focus on:
- Main topics discussed
- Controversial takes or debates
- Funny/memorable moments
- Consensus opinions
- Recurring themes

Keep it concise (200-300 words) and capture the vibe of the conversation.

Messages:
%s`, channel, transcript)
}

func overallPrompt(channelSummaries map[string]string) string {
	names := make([]string, 0, len(channelSummaries))
	for name := range channelSummaries {
		names = append(names, name)
	}
	sort.Strings(names)
	blocks := make([]string, 0, len(names))
	for _, name := range names {
		blocks = append(blocks, fmt.Sprintf("**#%s**\n%s", name, channelSummaries[name]))
	}
	return fmt.Sprintf(`Create a brief overview (150 words max) of today's Discord activity across all channels. Highlight the most interesting discussions and overall community vibe.

Channel Summaries:
%s`, strings.Join(blocks, "\n\n"))
}

func channelPlaceholder(channel string) string {
	return fmt.Sprintf("Summary unavailable for #%s", channel)
}

const overallPlaceholder = "Overall summary unavailable"

func channelNames(log domain.DailyLog) []string {
	names := make([]string, 0, len(log.Channels))
	for name := range log.Channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func clipRunes(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
