package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/xupit3r/subword/internal/tui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent training runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyLimit int

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of runs to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	store, err := openHistory()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	if store == nil {
		fmt.Fprintln(out, "History is disabled (history.enabled: false).")
		return nil
	}
	defer store.Close()

	runs, err := store.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, tui.Help("No training runs recorded."))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tSOURCE\tCHARS\tVOCAB\tMERGES\tRATIO\tSTOP\tMODEL")
	fmt.Fprintln(w, "--\t-------\t------\t-----\t-----\t------\t-----\t----\t-----")

	for _, r := range runs {
		model := r.ModelID
		if model == "" {
			model = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d/%d\t%d\t%.2f\t%s\t%s\n",
			r.ID, r.StartedAt.Format(time.DateTime), r.Source, r.Chars,
			r.FinalVocab, r.MaxVocab, r.Merges, compressionRatio(r.Chars, r.FinalSeqLen),
			r.StopReason, model)
	}
	return w.Flush()
}
