package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Print the vocabulary of a model",
	Long:  "Print every symbol of a trained vocabulary with its ID. Learned merges follow the initial alphabet.",
	Args:  cobra.NoArgs,
	RunE:  runVocab,
}

var vocabModel string

func init() {
	rootCmd.AddCommand(vocabCmd)

	vocabCmd.Flags().StringVarP(&vocabModel, "model", "m", "", "model cache ID or file path")
	vocabCmd.RegisterFlagCompletionFunc("model", completeModelFlag)
}

func runVocab(cmd *cobra.Command, args []string) error {
	codec, err := resolveModel(vocabModel, "")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSYMBOL\tKIND")
	fmt.Fprintln(w, "--\t------\t----")

	for id, symbol := range codec.Vocabulary() {
		kind := "char"
		if id >= codec.InitialSize() {
			kind = "merge"
		}
		fmt.Fprintf(w, "%d\t%q\t%s\n", id, symbol, kind)
	}
	w.Flush()

	fmt.Fprintf(out, "\n%d symbols (%d characters, %d merges, max %d)\n",
		codec.VocabSize(), codec.InitialSize(), codec.VocabSize()-codec.InitialSize(), codec.MaxVocabSize())
	return nil
}
