package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	discordadapter "goonzette-automation/internal/adapters/discord"
	"goonzette-automation/internal/adapters/repo"
	"goonzette-automation/internal/adapters/summarizer"
	"goonzette-automation/internal/adapters/website"
	"goonzette-automation/internal/domain"
	"goonzette-automation/internal/infra/anthropic"
	"goonzette-automation/internal/infra/cache"
	"goonzette-automation/internal/infra/config"
	"goonzette-automation/internal/infra/db"
	adminhttp "goonzette-automation/internal/infra/http"
	applog "goonzette-automation/internal/infra/log"
	"goonzette-automation/internal/infra/metrics"
	"goonzette-automation/internal/infra/queue"
	"goonzette-automation/internal/infra/supabase"
	"goonzette-automation/internal/usecase/daylog"
	"goonzette-automation/internal/usecase/schedule"
	"goonzette-automation/internal/usecase/summary"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), cfg.MetricsAddr)

	if cfg.Discord.Token == "" {
		logger.Fatal().Msg("bot: missing Discord token (DISCORD_TOKEN)")
	}
	if cfg.Anthropic.APIKey == "" {
		logger.Fatal().Msg("bot: missing Anthropic key (ANTHROPIC_API_KEY)")
	}

	var summaryRepo domain.SummaryRepo
	if cfg.PGDSN != "" {
		pool, err := db.Connect(cfg.PGDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("bot: database connection failed")
		}
		defer pool.Close()
		summaryRepo = repo.NewPostgres(pool)
	} else {
		client, err := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.Key)
		if err != nil {
			logger.Fatal().Err(err).Msg("bot: missing Supabase credentials (SUPABASE_URL, SUPABASE_KEY)")
		}
		summaryRepo = repo.NewSupabase(client)
	}

	anthropicClient := anthropic.NewClient(cfg.Anthropic.APIKey, cfg.Anthropic.BaseURL, cfg.Anthropic.Timeout)
	summarizerAdapter := summarizer.NewAnthropic(anthropicClient, cfg.Anthropic.Model, cfg.Anthropic.Timeout)

	store := daylog.NewStore(logger.With().Str("component", "daylog").Logger(), cfg.MessagesFile,
		daylog.WithCheckpointEvery(cfg.Limits.CheckpointEvery))
	store.Restore()

	pipeline := summary.NewService(logger.With().Str("component", "summary").Logger(),
		store, summarizerAdapter, summaryRepo, cfg.Limits.MinMessages, cfg.Limits.TranscriptChars)

	// With a queue configured the nightly PDF action hands off to the compiler
	// worker; without one it pokes the website endpoint directly.
	websiteClient := website.NewClient(cfg.WebsiteURL)
	triggerCompile := func(ctx context.Context, date string) error {
		return websiteClient.TriggerPDF(ctx, date)
	}
	if cfg.RabbitURL != "" {
		compileQueue, err := queue.NewRabbitCompileQueue(cfg.RabbitURL, cfg.Queues.Compile)
		if err != nil {
			logger.Fatal().Err(err).Msg("bot: rabbitmq queue init failed")
		}
		defer compileQueue.Close()
		triggerCompile = func(ctx context.Context, date string) error {
			return compileQueue.Enqueue(ctx, domain.CompileJob{
				ID:          uuid.NewString(),
				Date:        date,
				Cause:       domain.CompileCauseScheduled,
				RequestedAt: time.Now().UTC(),
			})
		}
	}

	var guard domain.OnceGuard = cache.NewMemoryGuard()
	if cfg.RedisAddr != "" {
		guard = cache.NewRedisGuard(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	scheduler := schedule.NewScheduler(logger.With().Str("component", "schedule").Logger(), []schedule.Action{
		{
			Name: "daily_summary",
			At:   cfg.Schedule.SummaryTime,
			Run:  pipeline.Run,
		},
		{
			Name: "pdf_trigger",
			At:   cfg.Schedule.PDFTime,
			Run: func(ctx context.Context) error {
				return triggerCompile(ctx, time.Now().UTC().Format(domain.DateFormat))
			},
		},
	}, schedule.WithOnceGuard(guard))

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("bot: discord session init failed")
	}
	handler := discordadapter.NewHandler(logger.With().Str("component", "discord").Logger(),
		store, pipeline, cfg.Discord.Channels, cfg.Discord.CommandPrefix,
		cfg.Schedule.SummaryTime, cfg.Schedule.PDFTime)
	handler.Register(session)
	if err := session.Open(); err != nil {
		logger.Fatal().Err(err).Msg("bot: discord connection failed")
	}
	defer session.Close()

	admin := adminhttp.NewServer(logger.With().Str("component", "admin").Logger(), adminhttp.Triggers{
		RunSummary:     pipeline.Run,
		EnqueueCompile: triggerCompile,
	})
	go func() {
		if err := admin.Start(ctx, cfg.AdminAddr); err != nil {
			logger.Error().Err(err).Msg("bot: admin server stopped")
		}
	}()

	logger.Info().
		Int("channels", len(cfg.Discord.Channels)).
		Str("summary_time", cfg.Schedule.SummaryTime).
		Str("pdf_time", cfg.Schedule.PDFTime).
		Msg("bot: online")

	scheduler.Run(ctx)

	if err := store.Flush(); err != nil {
		logger.Error().Err(err).Msg("bot: final snapshot flush failed")
	}
	logger.Info().Msg("bot: shut down")
}
