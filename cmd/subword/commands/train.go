package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/xupit3r/subword/internal/corpus"
	"github.com/xupit3r/subword/internal/history"
	"github.com/xupit3r/subword/internal/logging"
	"github.com/xupit3r/subword/internal/model"
	"github.com/xupit3r/subword/internal/tokenizer"
	"github.com/xupit3r/subword/internal/tui"
)

var trainCmd = &cobra.Command{
	Use:   "train [corpus-file]",
	Short: "Train a vocabulary from a text file",
	Long: `Train a byte-pair encoding vocabulary from a text file.

The corpus is split into single characters, then the most frequent adjacent
pair is merged into a new symbol until the vocabulary reaches --max-vocab or
no pair occurs more than once.`,
	Example: `  subword train corpus.txt --max-vocab 100 --save shakespeare
  subword train corpus.txt --limit 0 --output vocab.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runTrain,
}

var (
	trainLimit     int
	trainMaxVocab  int
	trainNormalize string
	trainSave      string
	trainOutput    string
	trainProgress  bool
)

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().IntVar(&trainLimit, "limit", 0, "maximum number of characters to read, 0 reads everything (default from config)")
	trainCmd.Flags().IntVar(&trainMaxVocab, "max-vocab", 0, "maximum vocabulary size (default from config)")
	trainCmd.Flags().StringVar(&trainNormalize, "normalize", "", "unicode normalization: none, nfc or nfkc (default from config)")
	trainCmd.Flags().StringVar(&trainSave, "save", "", "store the trained model in the cache under this ID")
	trainCmd.Flags().StringVar(&trainOutput, "output", "", "write the trained model to a .json or .yaml file")
	trainCmd.Flags().BoolVar(&trainProgress, "progress", false, "draw a progress bar on stderr while merging (default from config)")

	trainCmd.RegisterFlagCompletionFunc("normalize", cobra.FixedCompletions(
		[]string{"none", "nfc", "nfkc"}, cobra.ShellCompDirectiveNoFileComp))
	trainCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"json", "yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
	})
}

func runTrain(cmd *cobra.Command, args []string) error {
	limit := cfg.Training.DataLimit
	if cmd.Flags().Changed("limit") {
		limit = trainLimit
	}
	maxVocab := cfg.Training.MaxVocabSize
	if cmd.Flags().Changed("max-vocab") {
		maxVocab = trainMaxVocab
	}
	normName := cfg.Training.Normalize
	if trainNormalize != "" {
		normName = trainNormalize
	}

	normalize, err := corpus.ParseNormalization(normName)
	if err != nil {
		return err
	}
	policy, err := tokenizer.ParseUnknownPolicy(cfg.Codec.UnknownPolicy)
	if err != nil {
		return err
	}
	if trainSave != "" {
		if err := model.ValidateID(trainSave); err != nil {
			return err
		}
	}
	if trainOutput != "" {
		if _, err := model.FormatFromPath(trainOutput); err != nil {
			return err
		}
	}

	trainer := tokenizer.NewTrainer(tokenizer.Options{
		MaxVocabSize:  maxVocab,
		Normalize:     normalize,
		UnknownPolicy: policy,
	})

	showProgress := cfg.UI.Progress
	if cmd.Flags().Changed("progress") {
		showProgress = trainProgress
	}

	started := time.Now()
	if err := trainer.Load(corpus.NewFileSource(args[0]), limit); err != nil {
		return err
	}
	if err := trainer.BuildVocabulary(); err != nil {
		return err
	}

	var bar *tui.TrainingProgress
	if showProgress && !quiet {
		bar = tui.NewTrainingProgress(cmd.ErrOrStderr(), trainer.InitialSize(), maxVocab)
		trainer.ProgressFunc = bar.Update
	}
	err = trainer.Train(verbose)
	if bar != nil {
		bar.Done()
	}
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}
	elapsed := time.Since(started)

	codec, err := trainer.Codec()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printTrainSummary(out, trainer, elapsed)

	if trainSave != "" {
		manager, err := newManager()
		if err != nil {
			return err
		}
		cached, err := manager.Cache.Save(trainSave, codec, trainer.SourceName())
		if err != nil {
			return fmt.Errorf("failed to save model: %w", err)
		}
		fmt.Fprintf(out, "Saved model %s to %s\n", cached.ID, cached.Path)
	}

	if trainOutput != "" {
		if err := model.SaveFile(trainOutput, codec); err != nil {
			return fmt.Errorf("failed to write model: %w", err)
		}
		fmt.Fprintf(out, "Model written to: %s\n", trainOutput)
	}

	recordRun(cmd.Context(), trainer, started, elapsed)
	return nil
}

func printTrainSummary(w io.Writer, t *tokenizer.Trainer, elapsed time.Duration) {
	seqLen := len(t.Sequence())

	fmt.Fprintln(w, tui.Title("Training summary"))
	fmt.Fprintf(w, "Source:           %s\n", t.SourceName())
	fmt.Fprintf(w, "Characters:       %d\n", t.CharsLoaded())
	fmt.Fprintf(w, "Initial vocab:    %d\n", t.InitialSize())
	fmt.Fprintf(w, "Final vocab:      %d (max %d)\n", t.VocabSize(), t.MaxVocabSize())
	fmt.Fprintf(w, "Merges:           %d\n", len(t.Merges()))
	fmt.Fprintf(w, "Sequence length:  %d\n", seqLen)
	fmt.Fprintf(w, "Compression:      %.2f chars/token\n", compressionRatio(t.CharsLoaded(), seqLen))
	fmt.Fprintf(w, "Stopped:          %s\n", t.StopReason())
	fmt.Fprintf(w, "Elapsed:          %s\n", elapsed.Round(time.Millisecond))

	vocab := t.Vocabulary()
	if learned := vocab[t.InitialSize():]; len(learned) > 0 {
		fmt.Fprintf(w, "Learned symbols:  %s\n", quoteAll(learned))
	}
}

// recordRun stores the run in the history database. Failures are logged
// and never fail the training command.
func recordRun(ctx context.Context, t *tokenizer.Trainer, started time.Time, elapsed time.Duration) {
	store, err := openHistory()
	if err != nil {
		logging.Warnf("Failed to open history: %v", err)
		return
	}
	if store == nil {
		return
	}
	defer store.Close()

	if ctx == nil {
		ctx = context.Background()
	}

	_, err = store.Record(ctx, history.Run{
		StartedAt:    started,
		Duration:     elapsed,
		Source:       t.SourceName(),
		Chars:        t.CharsLoaded(),
		InitialVocab: t.InitialSize(),
		FinalVocab:   t.VocabSize(),
		MaxVocab:     t.MaxVocabSize(),
		Merges:       len(t.Merges()),
		FinalSeqLen:  len(t.Sequence()),
		StopReason:   t.StopReason().String(),
		ModelID:      trainSave,
	})
	if err != nil {
		logging.Warnf("Failed to record training run: %v", err)
	}
}

func quoteAll(symbols []string) string {
	quoted := make([]string, len(symbols))
	for i, s := range symbols {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, " ")
}
