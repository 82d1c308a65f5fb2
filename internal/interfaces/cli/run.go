package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/AcroLex/internal/application/expansion"
	"github.com/turtacn/AcroLex/internal/corpus"
	"github.com/turtacn/AcroLex/internal/engine/pipeline"
	"github.com/turtacn/AcroLex/internal/infrastructure/database/postgres"
	"github.com/turtacn/AcroLex/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/AcroLex/internal/infrastructure/monitoring/logging"
)

// newRunCommand builds "acrolex run": a full corpus run over JSONL files.
func newRunCommand(state *rootState) *cobra.Command {
	var (
		inputPath  string
		outputPath string
		auditPath  string
		workers    int
		ranking    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Expand acronyms across a JSONL corpus",
		Long:  "Reads tokenized documents from a JSONL file, runs the full detection,\nalignment, and resolution pipeline, and writes the expanded corpus and the\naudit log.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := state.cfg
			if workers > 0 {
				cfg.Engine.Workers = workers
			}
			if ranking != "" {
				cfg.Engine.RankingPolicy = ranking
			}

			in, err := os.Open(inputPath)
			if err != nil {
				return fmt.Errorf("opening corpus: %w", err)
			}
			defer in.Close()

			docs, err := corpus.ReadDocuments(in)
			if err != nil {
				return err
			}

			var store expansion.RunStore
			if cfg.Database.Enabled {
				dsn := cfg.Database.DSN()
				if err := postgres.Migrate(dsn); err != nil {
					return err
				}
				pool, err := postgres.NewPool(cmd.Context(), cfg.Database, state.logger)
				if err != nil {
					return err
				}
				defer pool.Close()
				store = repositories.NewRunRepository(pool, state.logger.Named("store"))
			}

			p := pipeline.New(cfg.Engine, state.logger.Named("pipeline"), nil)
			svc := expansion.NewService(p, store, nil, state.logger)

			result, err := svc.Run(cmd.Context(), docs)
			if err != nil {
				return err
			}

			if err := writeJSONL(outputPath, func(f *os.File) error {
				return corpus.WriteDocuments(f, result.Documents)
			}); err != nil {
				return err
			}
			if auditPath != "" {
				if err := writeJSONL(auditPath, func(f *os.File) error {
					return corpus.WriteAudit(f, result.Audit)
				}); err != nil {
					return err
				}
			}

			state.logger.Info("run complete",
				logging.String("run_id", result.RunID),
				logging.Int("documents", result.Stats.Documents),
				logging.Int("occurrences", result.Stats.Occurrences),
				logging.Int("defined", result.Stats.Defined),
				logging.Int("resolved", result.Stats.Resolved),
				logging.Int("unresolved", result.Stats.Unresolved),
				logging.Int("prototypes", result.Stats.Prototypes))
			fmt.Fprintf(cmd.OutOrStdout(),
				"run %s: %d documents, %d occurrences (%d defined, %d resolved, %d unresolved)\n",
				result.RunID, result.Stats.Documents, result.Stats.Occurrences,
				result.Stats.Defined, result.Stats.Resolved, result.Stats.Unresolved)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input corpus (JSONL)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "expanded corpus output (JSONL)")
	cmd.Flags().StringVar(&auditPath, "audit", "", "audit log output (JSONL, optional)")
	cmd.Flags().IntVar(&workers, "workers", 0, "scan worker count (default: config / GOMAXPROCS)")
	cmd.Flags().StringVar(&ranking, "ranking", "", "disambiguation ranking policy (confidence, context)")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func writeJSONL(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
