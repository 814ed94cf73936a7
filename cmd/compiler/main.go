package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"goonzette-automation/internal/adapters/repo"
	"goonzette-automation/internal/adapters/website"
	"goonzette-automation/internal/domain"
	"goonzette-automation/internal/infra/config"
	"goonzette-automation/internal/infra/db"
	applog "goonzette-automation/internal/infra/log"
	"goonzette-automation/internal/infra/metrics"
	"goonzette-automation/internal/infra/queue"
	"goonzette-automation/internal/infra/supabase"
	"goonzette-automation/internal/usecase/edition"
)

func main() {
	var date string
	flag.StringVar(&date, "date", "", "compile this date (YYYY-MM-DD) once and exit instead of consuming the queue")
	flag.Parse()

	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var articleRepo domain.ArticleRepo
	if cfg.PGDSN != "" {
		pool, err := db.Connect(cfg.PGDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("compiler: database connection failed")
		}
		defer pool.Close()
		articleRepo = repo.NewPostgres(pool)
	} else {
		client, err := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.Key)
		if err != nil {
			logger.Fatal().Err(err).Msg("compiler: missing Supabase credentials (SUPABASE_URL, SUPABASE_KEY)")
		}
		articleRepo = repo.NewSupabase(client)
	}

	service := edition.NewService(logger.With().Str("component", "edition").Logger(),
		articleRepo, website.NewClient(cfg.WebsiteURL), cfg.EditionsDir)

	if date != "" {
		if _, err := time.Parse(domain.DateFormat, date); err != nil {
			logger.Fatal().Str("date", date).Msg("compiler: date must be YYYY-MM-DD")
		}
		if err := service.CompileDate(ctx, date); err != nil {
			logger.Fatal().Err(err).Str("date", date).Msg("compiler: compile failed")
		}
		return
	}

	if cfg.RabbitURL == "" {
		logger.Fatal().Msg("compiler: missing RabbitMQ address (RABBITMQ_URL)")
	}
	compileQueue, err := queue.NewRabbitCompileQueue(cfg.RabbitURL, cfg.Queues.Compile)
	if err != nil {
		logger.Fatal().Err(err).Msg("compiler: rabbitmq queue init failed")
	}
	defer compileQueue.Close()

	logger.Info().Str("queue", cfg.Queues.Compile).Msg("compiler: consuming compile jobs")
	service.RunWorker(ctx, compileQueue)
	logger.Info().Msg("compiler: shut down")
}
