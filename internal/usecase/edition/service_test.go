package edition

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"goonzette-automation/internal/domain"
)

type stubArticleRepo struct {
	articles []domain.Article
	err      error
}

func (r *stubArticleRepo) PublishArticle(context.Context, domain.Article) error { return nil }

func (r *stubArticleRepo) ListPublished(_ context.Context, date string) ([]domain.Article, error) {
	return r.articles, r.err
}

type stubTrigger struct {
	dates []string
	err   error
}

func (t *stubTrigger) TriggerPDF(_ context.Context, date string) error {
	t.dates = append(t.dates, date)
	return t.err
}

func TestCompileDateWritesEditionAndTriggers(t *testing.T) {
	outDir := t.TempDir()
	repo := &stubArticleRepo{articles: []domain.Article{
		{
			Author:  "claudia_pochita",
			Title:   "The Melancholy of the Feed",
			Content: "First paragraph.\n\nSecond paragraph.",
			Topic:   "Digital culture shift",
		},
		{
			Author:  "tommy_wharangi",
			Title:   "Week 9 Was Mid",
			Content: "Kia ora, here is the recap.",
			Topic:   "NFL week recap",
		},
	}}
	trigger := &stubTrigger{}
	svc := NewService(zerolog.Nop(), repo, trigger, outDir)

	if err := svc.CompileDate(context.Background(), "2026-01-05"); err != nil {
		t.Fatalf("compile: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "goonzette-daily-2026-01-05.html"))
	if err != nil {
		t.Fatalf("read edition: %v", err)
	}
	html := string(data)
	for _, want := range []string{
		"The Melancholy of the Feed",
		"Claudia Pochita",
		"Week 9 Was Mid",
		"First paragraph.",
		"Second paragraph.",
		"2026-01-05",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("edition missing %q", want)
		}
	}
	if len(trigger.dates) != 1 || trigger.dates[0] != "2026-01-05" {
		t.Fatalf("expected one pdf trigger for the date, got %v", trigger.dates)
	}
}

func TestCompileDateZeroArticlesNoSideEffects(t *testing.T) {
	outDir := t.TempDir()
	trigger := &stubTrigger{}
	svc := NewService(zerolog.Nop(), &stubArticleRepo{}, trigger, outDir)

	if err := svc.CompileDate(context.Background(), "2026-01-05"); err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(trigger.dates) != 0 {
		t.Fatalf("no pdf trigger expected without articles")
	}
	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("read out dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("no edition file expected without articles")
	}
}

func TestCompileDateUnknownAuthorFallsBackToKey(t *testing.T) {
	outDir := t.TempDir()
	repo := &stubArticleRepo{articles: []domain.Article{
		{Author: "guest_writer", Title: "A Guest Column", Content: "Hello."},
	}}
	svc := NewService(zerolog.Nop(), repo, &stubTrigger{}, outDir)

	if err := svc.CompileDate(context.Background(), "2026-01-05"); err != nil {
		t.Fatalf("compile: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "goonzette-daily-2026-01-05.html"))
	if err != nil {
		t.Fatalf("read edition: %v", err)
	}
	if !strings.Contains(string(data), "guest_writer") {
		t.Fatalf("unknown persona must fall back to its key as byline")
	}
}

func TestCompileDateTriggerFailure(t *testing.T) {
	repo := &stubArticleRepo{articles: []domain.Article{{Author: "claudia_pochita", Title: "T", Content: "Body."}}}
	svc := NewService(zerolog.Nop(), repo, &stubTrigger{err: errors.New("website down")}, t.TempDir())

	err := svc.CompileDate(context.Background(), "2026-01-05")
	if err == nil || !strings.Contains(err.Error(), "trigger pdf") {
		t.Fatalf("expected trigger error, got %v", err)
	}
}

type scriptedQueue struct {
	jobs  []domain.CompileJob
	acks  []bool
	index int
}

func (q *scriptedQueue) Enqueue(context.Context, domain.CompileJob) error { return nil }

func (q *scriptedQueue) Receive(ctx context.Context) (domain.CompileJob, domain.CompileAckFunc, error) {
	if q.index >= len(q.jobs) {
		return domain.CompileJob{}, nil, context.Canceled
	}
	job := q.jobs[q.index]
	q.index++
	ack := func(ok bool) error {
		q.acks = append(q.acks, ok)
		return nil
	}
	return job, ack, nil
}

func TestRunWorkerProcessesAndAcks(t *testing.T) {
	outDir := t.TempDir()
	repo := &stubArticleRepo{articles: []domain.Article{
		{Author: "naomi_kayano", Title: "Labor Notes", Content: "Numbers."},
	}}
	trigger := &stubTrigger{}
	svc := NewService(zerolog.Nop(), repo, trigger, outDir)

	queue := &scriptedQueue{jobs: []domain.CompileJob{
		{ID: "job-1", Date: "2026-01-05", Cause: domain.CompileCauseScheduled},
		{ID: "job-2", Date: "", Cause: domain.CompileCauseManual}, // malformed, dropped
	}}
	svc.RunWorker(context.Background(), queue)

	if len(queue.acks) != 2 {
		t.Fatalf("expected 2 acks, got %d", len(queue.acks))
	}
	if !queue.acks[0] || !queue.acks[1] {
		t.Fatalf("both jobs must positively ack: %v", queue.acks)
	}
	if len(trigger.dates) != 1 {
		t.Fatalf("only the well-formed job should compile, got %v", trigger.dates)
	}
}

func TestSplitParagraphs(t *testing.T) {
	got := splitParagraphs("one\n\n  two  \n\n\nthree\n")
	want := []string{"one", "two", "three"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("paragraph %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
