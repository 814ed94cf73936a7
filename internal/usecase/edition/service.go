// Package edition compiles one day's published articles into an edition
// document and triggers the website's PDF render.
package edition

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"goonzette-automation/internal/domain"
	"goonzette-automation/internal/infra/metrics"
)

// authorNames maps persona keys to their printed bylines.
var authorNames = map[string]string{
	"claudia_pochita":     "Claudia Pochita",
	"dave_standing_there": "Dave Standing There (Hoocąk Haci Nįįc)",
	"naomi_kayano":        "Naomi Kayano (萱野ナオミ)",
	"tommy_wharangi":      "Tāmati 'Tommy' Whārangi",
}

// PDFTrigger asks the website to render the date's edition.
type PDFTrigger interface {
	TriggerPDF(ctx context.Context, date string) error
}

// Service compiles editions and processes compile jobs.
type Service struct {
	log      zerolog.Logger
	articles domain.ArticleRepo
	website  PDFTrigger
	outDir   string
}

// NewService creates the compiler.
func NewService(logger zerolog.Logger, articles domain.ArticleRepo, website PDFTrigger, outDir string) *Service {
	if outDir == "" {
		outDir = "./editions"
	}
	return &Service{log: logger, articles: articles, website: website, outDir: outDir}
}

// CompileDate fetches the date's published articles, writes the edition HTML
// and triggers the PDF render. Zero articles completes without side effects.
func (s *Service) CompileDate(ctx context.Context, date string) error {
	articles, err := s.articles.ListPublished(ctx, date)
	if err != nil {
		return fmt.Errorf("fetch articles: %w", err)
	}
	if len(articles) == 0 {
		s.log.Info().Str("date", date).Msg("edition: no published articles, nothing to compile")
		return nil
	}

	html, err := render(date, articles)
	if err != nil {
		return fmt.Errorf("render edition: %w", err)
	}
	path := filepath.Join(s.outDir, fmt.Sprintf("goonzette-daily-%s.html", date))
	if err := os.MkdirAll(s.outDir, 0o755); err != nil {
		return fmt.Errorf("create editions dir: %w", err)
	}
	if err := os.WriteFile(path, html, 0o644); err != nil {
		return fmt.Errorf("write edition: %w", err)
	}

	if err := s.website.TriggerPDF(ctx, date); err != nil {
		return fmt.Errorf("trigger pdf: %w", err)
	}
	metrics.EditionsCompiled.Inc()
	s.log.Info().Str("date", date).Int("articles", len(articles)).Str("path", path).Msg("edition: compiled")
	return nil
}

// RunWorker consumes compile jobs until the context is cancelled. A failing
// job is requeued by nack; malformed receives are logged and retried after a
// short pause.
func (s *Service) RunWorker(ctx context.Context, queue domain.CompileQueue) {
	for {
		job, ack, err := queue.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.log.Error().Err(err).Msg("edition: queue receive failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		jobLog := s.log.With().Str("job_id", job.ID).Str("date", job.Date).Str("cause", string(job.Cause)).Logger()
		if job.Date == "" {
			jobLog.Error().Msg("edition: job without date, dropping")
			if err := ack(true); err != nil {
				jobLog.Error().Err(err).Msg("edition: ack failed")
			}
			continue
		}

		if err := s.CompileDate(ctx, job.Date); err != nil {
			jobLog.Error().Err(err).Msg("edition: compile failed, requeueing")
			if err := ack(false); err != nil {
				jobLog.Error().Err(err).Msg("edition: nack failed")
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if err := ack(true); err != nil {
			jobLog.Error().Err(err).Msg("edition: ack failed")
		}
	}
}

func render(date string, articles []domain.Article) ([]byte, error) {
	data := editionData{Date: date}
	for _, a := range articles {
		name := authorNames[a.Author]
		if name == "" {
			name = a.Author
		}
		data.Articles = append(data.Articles, editionArticle{
			Topic:      a.Topic,
			Title:      a.Title,
			AuthorName: name,
			Paragraphs: splitParagraphs(a.Content),
		})
	}
	var buf bytes.Buffer
	if err := editionTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func splitParagraphs(content string) []string {
	var out []string
	for _, part := range strings.Split(content, "\n") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
