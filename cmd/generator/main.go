package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"goonzette-automation/internal/adapters/repo"
	"goonzette-automation/internal/adapters/summarizer"
	"goonzette-automation/internal/domain"
	"goonzette-automation/internal/infra/anthropic"
	"goonzette-automation/internal/infra/config"
	"goonzette-automation/internal/infra/db"
	applog "goonzette-automation/internal/infra/log"
	"goonzette-automation/internal/infra/metrics"
	"goonzette-automation/internal/infra/supabase"
	"goonzette-automation/internal/usecase/article"
)

func main() {
	var (
		author     string
		topic      string
		useDiscord bool
	)

	root := &cobra.Command{
		Use:   "generator",
		Short: "Ghost-writes Goonzette articles and publishes them",
		Long: `Generates newsletter articles in the fixed persona roster via the LLM and
publishes them to the articles table. Without flags two random personas each
write one article (the daily mode run from cron).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, cleanup := wire()
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if author == "" {
				return service.GenerateDaily(ctx)
			}
			return service.Generate(ctx, author, topic, useDiscord)
		},
		SilenceUsage: true,
	}
	root.Flags().StringVar(&author, "author", "", "persona alias (claudia, tommy, naomi, dave); empty picks two at random")
	root.Flags().StringVar(&topic, "topic", "", "article topic; empty picks one from the persona's pool")
	root.Flags().BoolVar(&useDiscord, "use-discord", false, "feed yesterday's Discord summary to the persona")

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// wire builds the article service from the environment; missing credentials
// are fatal before any work starts.
func wire() (*article.Service, func()) {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	if cfg.Anthropic.APIKey == "" {
		logger.Fatal().Msg("generator: missing Anthropic key (ANTHROPIC_API_KEY)")
	}

	cleanup := func() {}
	var articleRepo domain.ArticleRepo
	var summaryRepo domain.SummaryRepo
	if cfg.PGDSN != "" {
		pool, err := db.Connect(cfg.PGDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("generator: database connection failed")
		}
		cleanup = pool.Close
		pg := repo.NewPostgres(pool)
		articleRepo, summaryRepo = pg, pg
	} else {
		client, err := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.Key)
		if err != nil {
			logger.Fatal().Err(err).Msg("generator: missing Supabase credentials (SUPABASE_URL, SUPABASE_KEY)")
		}
		sb := repo.NewSupabase(client)
		articleRepo, summaryRepo = sb, sb
	}

	anthropicClient := anthropic.NewClient(cfg.Anthropic.APIKey, cfg.Anthropic.BaseURL, cfg.Anthropic.Timeout)
	summarizerAdapter := summarizer.NewAnthropic(anthropicClient, cfg.Anthropic.Model, cfg.Anthropic.Timeout)

	service := article.NewService(logger.With().Str("component", "article").Logger(),
		summarizerAdapter, articleRepo, summaryRepo)
	return service, cleanup
}
