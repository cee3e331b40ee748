package vars

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is loaded once at startup and handed to components by value.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	LLM      LLMConfig      `mapstructure:"llm"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	ES       ESConfig       `mapstructure:"es"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN renders the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		d.Host, d.User, d.Password, d.DBName, d.Port, d.SSLMode)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type PipelineConfig struct {
	// PollMinutes is the ingestion interval.
	PollMinutes int `mapstructure:"poll_minutes"`
	// CleanupSpec is a six-field cron spec for the daily reaper.
	CleanupSpec string `mapstructure:"cleanup_spec"`
	GraceDays   int    `mapstructure:"grace_days"`
	// Concurrency bounds parallel documentation fetches.
	Concurrency        int           `mapstructure:"concurrency"`
	CallTimeout        time.Duration `mapstructure:"call_timeout"`
	FallbackRecipients []string      `mapstructure:"fallback_recipients"`
	SourceFeeds        []string      `mapstructure:"source_feeds"`
	CatalogPath        string        `mapstructure:"catalog_path"`
	SemanticFallback   bool          `mapstructure:"semantic_fallback"`
	// Classifier is "llm" or "embedding".
	Classifier         string  `mapstructure:"classifier"`
	EmbeddingThreshold float64 `mapstructure:"embedding_threshold"`
	FetchDocumentation bool    `mapstructure:"fetch_documentation"`
}

// PollInterval returns the ingestion interval as a duration.
func (p PipelineConfig) PollInterval() time.Duration {
	return time.Duration(p.PollMinutes) * time.Minute
}

type LLMConfig struct {
	// Provider is "openai" or "ollama".
	Provider   string `mapstructure:"provider"`
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	EmbedModel string `mapstructure:"embed_model"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// Configured reports whether enough is set to send mail.
func (s SMTPConfig) Configured() bool {
	return s.Host != "" && s.User != "" && s.Password != "" && s.From != ""
}

type ESConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Index     string   `mapstructure:"index"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8081")
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "procurement")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("pipeline.poll_minutes", 30)
	v.SetDefault("pipeline.cleanup_spec", "0 0 3 * * *")
	v.SetDefault("pipeline.grace_days", 0)
	v.SetDefault("pipeline.concurrency", 5)
	v.SetDefault("pipeline.call_timeout", 20*time.Second)
	v.SetDefault("pipeline.semantic_fallback", true)
	v.SetDefault("pipeline.classifier", "llm")
	v.SetDefault("pipeline.embedding_threshold", 0.75)
	v.SetDefault("pipeline.fetch_documentation", true)

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", OpenAIDefaultModel)
	v.SetDefault("llm.embed_model", NOMIC)

	v.SetDefault("smtp.port", 587)

	v.SetDefault("es.index", LotIndex)
}

func bindEnvVariables(v *viper.Viper) {
	v.BindEnv("server.addr", "SERVER_ADDR")
	v.BindEnv("server.mode", "SERVER_MODE")

	v.BindEnv("database.host", "POSTGRES_HOST")
	v.BindEnv("database.port", "POSTGRES_PORT")
	v.BindEnv("database.user", "POSTGRES_USER")
	v.BindEnv("database.password", "POSTGRES_PASSWORD")
	v.BindEnv("database.dbname", "POSTGRES_DB")

	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")

	v.BindEnv("pipeline.poll_minutes", "PARSER_INTERVAL_MINUTES")
	v.BindEnv("pipeline.grace_days", "CLEANUP_GRACE_DAYS")
	v.BindEnv("pipeline.fallback_recipients", "NOTIFY_EMAILS")
	v.BindEnv("pipeline.source_feeds", "SOURCE_FEEDS")
	v.BindEnv("pipeline.catalog_path", "NOMENCLATURE_CATALOG")
	v.BindEnv("pipeline.semantic_fallback", "SEMANTIC_FALLBACK")
	v.BindEnv("pipeline.classifier", "NOMENCLATURE_CLASSIFIER")

	v.BindEnv("llm.provider", "LLM_PROVIDER")
	v.BindEnv("llm.base_url", "LLM_BASE_URL")
	v.BindEnv("llm.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.model", "LLM_MODEL")
	v.BindEnv("llm.embed_model", "EMBED_MODEL")

	v.BindEnv("smtp.host", "SMTP_HOST")
	v.BindEnv("smtp.port", "SMTP_PORT")
	v.BindEnv("smtp.user", "SMTP_USER")
	v.BindEnv("smtp.password", "SMTP_PASS")
	v.BindEnv("smtp.from", "COMPANY_EMAIL")

	v.BindEnv("es.addresses", "ESADDR")
	v.BindEnv("es.index", "ES_INDEX")
}

// Load reads configs/config.yaml (optional), .env (optional) and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Pipeline.FallbackRecipients = splitList(cfg.Pipeline.FallbackRecipients)
	cfg.Pipeline.SourceFeeds = splitList(cfg.Pipeline.SourceFeeds)
	cfg.ES.Addresses = splitList(cfg.ES.Addresses)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	p := c.Pipeline
	if p.PollMinutes <= 0 {
		return fmt.Errorf("pipeline.poll_minutes must be positive, got %d", p.PollMinutes)
	}
	if p.GraceDays < 0 {
		return fmt.Errorf("pipeline.grace_days must not be negative, got %d", p.GraceDays)
	}
	if p.Concurrency <= 0 {
		return fmt.Errorf("pipeline.concurrency must be positive, got %d", p.Concurrency)
	}
	if p.CallTimeout <= 0 {
		return fmt.Errorf("pipeline.call_timeout must be positive")
	}
	switch p.Classifier {
	case "llm", "embedding":
	default:
		return fmt.Errorf("unknown pipeline.classifier %q", p.Classifier)
	}
	switch c.LLM.Provider {
	case "openai", "ollama":
	default:
		return fmt.Errorf("unknown llm.provider %q", c.LLM.Provider)
	}
	return nil
}

// splitList trims entries and expands comma-joined values coming from env vars.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
