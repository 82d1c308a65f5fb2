package config

import "time"

// DefaultExclusions lists all-caps tokens that routinely appear in documents
// without being acronyms the engine should expand: pronouns and
// interjections, days, months, and ubiquitous abbreviations whose expansion
// would hurt readability.  The list is a starting point; deployments extend
// or replace it via engine.shape.exclusions.
var DefaultExclusions = []string{
	"I", "A", "OK", "NO", "SO", "IT", "IS", "AS", "AT", "BE",
	"BY", "DO", "GO", "IF", "IN", "OF", "ON", "OR", "TO", "UP",
	"AM", "PM", "VS", "ETC", "AKA", "FYI",
	"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN",
	"JAN", "FEB", "MAR", "APR", "MAY", "JUN",
	"JUL", "AUG", "SEP", "OCT", "NOV", "DEC",
}

// DefaultFreeSkipWords are connector words inside candidate phrases that the
// aligner may skip at zero penalty.  "World Health Organization" has none;
// "Department of Defense" needs "of".
var DefaultFreeSkipWords = []string{
	"of", "the", "and", "for", "in", "on", "to", "a", "an",
}

// ApplyDefaults fills unset fields of cfg with the engine defaults.  It is
// idempotent and never overwrites explicitly-set values.
func ApplyDefaults(cfg *Config) {
	if cfg.Engine.Shape.MinLength == 0 {
		cfg.Engine.Shape.MinLength = 2
	}
	if cfg.Engine.Shape.MaxLength == 0 {
		cfg.Engine.Shape.MaxLength = 8
	}
	if cfg.Engine.Shape.Exclusions == nil {
		cfg.Engine.Shape.Exclusions = append([]string(nil), DefaultExclusions...)
	}

	if cfg.Engine.Aligner.SkipPenalty == 0 {
		cfg.Engine.Aligner.SkipPenalty = 0.25
	}
	if cfg.Engine.Aligner.FreeSkipWords == nil {
		cfg.Engine.Aligner.FreeSkipWords = append([]string(nil), DefaultFreeSkipWords...)
	}
	if cfg.Engine.Aligner.AcceptThreshold == 0 {
		cfg.Engine.Aligner.AcceptThreshold = 0.6
	}

	if cfg.Engine.WindowSentences == 0 {
		cfg.Engine.WindowSentences = 1
	}
	if cfg.Engine.RankingPolicy == "" {
		cfg.Engine.RankingPolicy = RankingConfidence
	}
	if cfg.Engine.MergePolicy == "" {
		cfg.Engine.MergePolicy = MergeLoose
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Database.MinConns == 0 {
		cfg.Database.MinConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = 5 * time.Minute
	}

	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "acrolex"
	}
	if cfg.Kafka.DocumentsTopic == "" {
		cfg.Kafka.DocumentsTopic = "acrolex.documents"
	}
	if cfg.Kafka.AuditTopic == "" {
		cfg.Kafka.AuditTopic = "acrolex.audit"
	}
	if cfg.Kafka.MinBytes == 0 {
		cfg.Kafka.MinBytes = 1
	}
	if cfg.Kafka.MaxBytes == 0 {
		cfg.Kafka.MaxBytes = 10 << 20
	}
	if cfg.Kafka.MaxWait == 0 {
		cfg.Kafka.MaxWait = 500 * time.Millisecond
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "acrolex"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Log.OutputPaths == nil {
		cfg.Log.OutputPaths = []string{"stdout"}
	}
	if cfg.Log.ErrorOutputPaths == nil {
		cfg.Log.ErrorOutputPaths = []string{"stderr"}
	}
}
