// Package config defines all configuration structures for the AcroLex engine.
// No I/O or parsing logic lives here — only plain data types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Engine configuration
// ─────────────────────────────────────────────────────────────────────────────

// ShapeConfig parameterizes the acronym-shape predicate.  It is a tuning
// surface, not a hard law: precision/recall trade-offs are made here rather
// than in code.
type ShapeConfig struct {
	// MinLength and MaxLength bound the acronym surface length in runes.
	MinLength int `mapstructure:"min_length"`
	MaxLength int `mapstructure:"max_length"`

	// Exclusions lists all-caps words that are never treated as acronyms
	// (days, months, common interjections).  Matching is exact and
	// case-sensitive, consistent with registry keys.
	Exclusions []string `mapstructure:"exclusions"`
}

// AlignerConfig parameterizes the alignment scorer.
type AlignerConfig struct {
	// SkipPenalty is the cost added to the score denominator for each
	// skipped non-connector word inside the candidate phrase.
	SkipPenalty float64 `mapstructure:"skip_penalty"`

	// FreeSkipWords are connector words that may be skipped at zero
	// penalty ("of", "the", "and", ...).  Matched case-insensitively.
	FreeSkipWords []string `mapstructure:"free_skip_words"`

	// AcceptThreshold is the minimum confidence for an alignment to be
	// accepted.  Alignments below it fall through to deferred resolution.
	AcceptThreshold float64 `mapstructure:"accept_threshold"`
}

// EngineConfig holds the end-to-end engine tunables.
type EngineConfig struct {
	Shape   ShapeConfig   `mapstructure:"shape"`
	Aligner AlignerConfig `mapstructure:"aligner"`

	// WindowSentences is the definition-span search window around an
	// acronym occurrence, in sentences.  1 means same sentence only.
	WindowSentences int `mapstructure:"window_sentences"`

	// RankingPolicy selects the disambiguation ranking: "confidence"
	// (registry order) or "context" (lexical-overlap re-ranking).
	RankingPolicy string `mapstructure:"ranking_policy"`

	// MergePolicy selects the near-duplicate prototype merge rule:
	// "strict" (normalized text equality) or "loose" (equality after
	// stripping all intra-word punctuation).
	MergePolicy string `mapstructure:"merge_policy"`

	// Workers is the number of concurrent document-scan workers.
	// Zero means GOMAXPROCS.
	Workers int `mapstructure:"workers"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Infrastructure configuration
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables for the apiserver binary.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters for registry and
// audit persistence.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`

	// Enabled gates persistence entirely; a pure in-memory run needs no
	// database.
	Enabled bool `mapstructure:"enabled"`
}

// DSN renders the pgx connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// RedisConfig holds Redis connection parameters for the apiserver's lookup
// cache.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	TTL          time.Duration `mapstructure:"ttl"`
	Enabled      bool          `mapstructure:"enabled"`
}

// KafkaConfig holds the streaming ingest parameters.  When enabled, the
// worker binary consumes tokenized documents from DocumentsTopic and
// publishes audit entries to AuditTopic.
type KafkaConfig struct {
	Brokers        []string      `mapstructure:"brokers"`
	GroupID        string        `mapstructure:"group_id"`
	DocumentsTopic string        `mapstructure:"documents_topic"`
	AuditTopic     string        `mapstructure:"audit_topic"`
	MinBytes       int           `mapstructure:"min_bytes"`
	MaxBytes       int           `mapstructure:"max_bytes"`
	MaxWait        time.Duration `mapstructure:"max_wait"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	Enabled        bool          `mapstructure:"enabled"`
}

// MetricsConfig gates the Prometheus registry and /metrics endpoint.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// LogConfig mirrors logging.LogConfig field for field; it is duplicated here
// so that the config package stays free of infrastructure imports, and
// converts directly: logging.LogConfig(cfg.Log).
type LogConfig struct {
	Level            string   `mapstructure:"level"`
	Format           string   `mapstructure:"format"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root configuration
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object for all AcroLex binaries.
type Config struct {
	Engine   EngineConfig   `mapstructure:"engine"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
}

// Validate checks cross-field consistency.  It assumes ApplyDefaults has
// already run, so zero values that have defaults are not re-checked here.
func (c *Config) Validate() error {
	s := c.Engine.Shape
	if s.MinLength < 2 {
		return fmt.Errorf("engine.shape.min_length must be >= 2, got %d", s.MinLength)
	}
	if s.MaxLength < s.MinLength {
		return fmt.Errorf("engine.shape.max_length (%d) must be >= min_length (%d)", s.MaxLength, s.MinLength)
	}

	a := c.Engine.Aligner
	if a.AcceptThreshold < 0 || a.AcceptThreshold > 1 {
		return fmt.Errorf("engine.aligner.accept_threshold must be in [0,1], got %g", a.AcceptThreshold)
	}
	if a.SkipPenalty < 0 {
		return fmt.Errorf("engine.aligner.skip_penalty must be >= 0, got %g", a.SkipPenalty)
	}

	switch c.Engine.RankingPolicy {
	case RankingConfidence, RankingContext:
	default:
		return fmt.Errorf("engine.ranking_policy must be %q or %q, got %q",
			RankingConfidence, RankingContext, c.Engine.RankingPolicy)
	}
	switch c.Engine.MergePolicy {
	case MergeStrict, MergeLoose:
	default:
		return fmt.Errorf("engine.merge_policy must be %q or %q, got %q",
			MergeStrict, MergeLoose, c.Engine.MergePolicy)
	}

	if c.Engine.WindowSentences < 1 {
		return fmt.Errorf("engine.window_sentences must be >= 1, got %d", c.Engine.WindowSentences)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1,65535], got %d", c.Server.Port)
	}
	if c.Database.Enabled && c.Database.Host == "" {
		return fmt.Errorf("database.host is required when database.enabled is true")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka.enabled is true")
	}
	return nil
}

// Recognized policy selector values.
const (
	RankingConfidence = "confidence"
	RankingContext    = "context"

	MergeStrict = "strict"
	MergeLoose  = "loose"
)
