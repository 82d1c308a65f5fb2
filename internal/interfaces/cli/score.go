package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/AcroLex/internal/engine/aligner"
)

// newScoreCommand builds "acrolex score": ad-hoc alignment of one acronym
// against one candidate phrase.
func newScoreCommand(state *rootState) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "score ACRONYM WORD...",
		Short: "Score one acronym against a candidate phrase",
		Example: "  acrolex score WHO World Health Organization\n" +
			"  acrolex score PPP Public-Private Partnership",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := aligner.New(state.cfg.Engine.Aligner)
			result := a.Align(args[0], args[1:])

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			verdict := "rejected"
			if result.Accepted {
				verdict = "accepted"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: confidence %.3f (%d matched, %d skipped)\n",
				verdict, result.Confidence, len(result.Matches), result.WordsSkipped)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the full alignment as JSON")
	return cmd
}
