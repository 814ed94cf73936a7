package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// AppConfig describes the configuration shared by all binaries.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`

	Discord struct {
		Token         string   `envconfig:"DISCORD_TOKEN"`
		Channels      []string `envconfig:"MONITORED_CHANNELS" default:"general,sports,gaming,hot-takes,nfl,vikings,chiefs"`
		CommandPrefix string   `envconfig:"COMMAND_PREFIX" default:"!goonzette"`
	} `envconfig:""`

	Anthropic struct {
		APIKey  string        `envconfig:"ANTHROPIC_API_KEY"`
		BaseURL string        `envconfig:"ANTHROPIC_BASE_URL"`
		Model   string        `envconfig:"ANTHROPIC_MODEL" default:"claude-sonnet-4-20250514"`
		Timeout time.Duration `envconfig:"ANTHROPIC_TIMEOUT" default:"60s"`
	} `envconfig:""`

	Supabase struct {
		URL string `envconfig:"SUPABASE_URL"`
		Key string `envconfig:"SUPABASE_KEY"`
	} `envconfig:""`

	// PGDSN selects the direct Postgres repo when set; otherwise the Supabase
	// REST gateway is used.
	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`
	RabbitURL string `envconfig:"RABBITMQ_URL"`

	WebsiteURL string `envconfig:"WEBSITE_URL" default:"https://the-goonzette.netlify.app"`

	Schedule struct {
		SummaryTime string `envconfig:"SUMMARY_TIME" default:"23:30"`
		PDFTime     string `envconfig:"PDF_TIME" default:"23:59"`
	} `envconfig:""`

	Limits struct {
		MinMessages     int `envconfig:"MIN_MESSAGES_FOR_SUMMARY" default:"10"`
		TranscriptChars int `envconfig:"TRANSCRIPT_MAX_CHARS" default:"8000"`
		CheckpointEvery int `envconfig:"SNAPSHOT_CHECKPOINT_EVERY" default:"50"`
	} `envconfig:""`

	Queues struct {
		Compile string `envconfig:"COMPILE_QUEUE" default:"compile_jobs"`
	} `envconfig:""`

	MessagesFile string `envconfig:"MESSAGES_FILE" default:"./data/daily_messages.json"`
	EditionsDir  string `envconfig:"EDITIONS_DIR" default:"./editions"`

	AdminAddr   string `envconfig:"ADMIN_ADDR" default:":8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`
}

// Load reads configuration from .env (if present) and the environment.
func Load() AppConfig {
	_ = godotenv.Load()
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}
