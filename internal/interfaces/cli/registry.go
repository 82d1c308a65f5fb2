package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/turtacn/AcroLex/internal/corpus"
	"github.com/turtacn/AcroLex/internal/engine/pipeline"
	"github.com/turtacn/AcroLex/pkg/types/acronym"
)

// newRegistryCommand builds "acrolex registry": scan a corpus and inspect
// the prototype registry it produces, without writing expansions.
func newRegistryCommand(state *rootState) *cobra.Command {
	var (
		inputPath string
		surface   string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the prototype registry a corpus produces",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(inputPath)
			if err != nil {
				return fmt.Errorf("opening corpus: %w", err)
			}
			defer in.Close()

			docs, err := corpus.ReadDocuments(in)
			if err != nil {
				return err
			}

			p := pipeline.New(state.cfg.Engine, state.logger.Named("pipeline"), nil)
			result, err := p.Run(cmd.Context(), docs)
			if err != nil {
				return err
			}

			surfaces := result.Registry.Acronyms()
			if surface != "" {
				surfaces = []string{surface}
			}

			var protos []acronym.Prototype
			for _, s := range surfaces {
				protos = append(protos, result.Registry.Lookup(s)...)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(protos)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tACRONYM\tEXPANSION\tSUPPORT\tAGGREGATE")
			for _, p := range protos {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.3f\n",
					p.ID, p.Acronym, p.Expansion, p.Support(), p.Aggregate)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input corpus (JSONL)")
	cmd.Flags().StringVar(&surface, "acronym", "", "show only this acronym's prototypes")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of a table")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
