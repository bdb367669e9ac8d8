package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xupit3r/subword/internal/tui"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Manage models",
	Long:  "List, inspect, verify and remove trained models in the local cache",
}

var modelListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached models",
	Args:  cobra.NoArgs,
	RunE:  runModelList,
}

var modelInfoCmd = &cobra.Command{
	Use:   "info [model-id]",
	Short: "Show information about a model",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelInfo,
}

var modelRemoveCmd = &cobra.Command{
	Use:   "remove [model-id]",
	Short: "Remove a cached model",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelRemove,
}

var modelShowCmd = &cobra.Command{
	Use:   "show [model-id]",
	Short: "Print the stored model document",
	Long:  "Print the JSON or YAML document of a cached model, highlighted unless --no-color is set",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelShow,
}

var modelVerifyCmd = &cobra.Command{
	Use:   "verify [model-id]",
	Short: "Check a cached model file against its recorded checksum",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelVerify,
}

func init() {
	rootCmd.AddCommand(modelCmd)
	modelCmd.AddCommand(modelListCmd)
	modelCmd.AddCommand(modelInfoCmd)
	modelCmd.AddCommand(modelRemoveCmd)
	modelCmd.AddCommand(modelShowCmd)
	modelCmd.AddCommand(modelVerifyCmd)
}

func runModelList(cmd *cobra.Command, args []string) error {
	manager, err := newManager()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	cached := manager.Cache.List()
	if len(cached) == 0 {
		fmt.Fprintln(out, tui.Help("No models cached."))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVOCAB\tFORMAT\tSIZE\tCREATED\tLAST USED\tUSE COUNT")
	fmt.Fprintln(w, "--\t-----\t------\t----\t-------\t---------\t---------")

	for _, m := range cached {
		fmt.Fprintf(w, "%s\t%d/%d\t%s\t%s\t%s\t%s\t%d\n",
			m.ID, m.VocabSize, m.MaxVocabSize, m.Format, FormatBytes(m.SizeBytes),
			m.CreatedAt.Format("2006-01-02"), m.LastUsed.Format("2006-01-02"), m.UseCount)
	}
	w.Flush()

	fmt.Fprintf(out, "\nTotal cache size: %s\n", FormatBytes(manager.Cache.GetTotalSize()))
	return nil
}

func runModelInfo(cmd *cobra.Command, args []string) error {
	manager, err := newManager()
	if err != nil {
		return err
	}

	m, err := manager.Cache.Get(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	field := func(name, format string, args ...interface{}) {
		fmt.Fprintf(out, "%s %s\n", tui.Label(fmt.Sprintf("%-16s", name+":")), fmt.Sprintf(format, args...))
	}
	field("ID", "%s", m.ID)
	field("Path", "%s", m.Path)
	field("Format", "%s", m.Format)
	field("Source", "%s", m.Source)
	field("Vocabulary", "%d symbols (max %d)", m.VocabSize, m.MaxVocabSize)
	field("File Size", "%s", FormatBytes(m.SizeBytes))
	field("Checksum", "%s", m.Checksum)
	field("Created", "%s", m.CreatedAt.Format("2006-01-02 15:04:05"))
	field("Last Used", "%s", m.LastUsed.Format("2006-01-02 15:04:05"))
	field("Use Count", "%d", m.UseCount)
	return nil
}

func runModelRemove(cmd *cobra.Command, args []string) error {
	modelID := args[0]

	manager, err := newManager()
	if err != nil {
		return err
	}

	if !manager.Cache.Has(modelID) {
		return fmt.Errorf("model not cached: %s", modelID)
	}

	if err := manager.Cache.Remove(modelID); err != nil {
		return fmt.Errorf("failed to remove model: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed model: %s\n", modelID)
	return nil
}

func runModelVerify(cmd *cobra.Command, args []string) error {
	modelID := args[0]

	manager, err := newManager()
	if err != nil {
		return err
	}

	valid, err := manager.Cache.VerifyChecksum(modelID)
	if err != nil {
		return err
	}
	if !valid {
		return fmt.Errorf("checksum mismatch for model %s, retrain or remove it", modelID)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Model %s: checksum OK\n", modelID)
	return nil
}

func runModelShow(cmd *cobra.Command, args []string) error {
	manager, err := newManager()
	if err != nil {
		return err
	}

	m, err := manager.Cache.Get(args[0])
	if err != nil {
		return err
	}

	data, err := os.ReadFile(m.Path)
	if err != nil {
		return fmt.Errorf("failed to read model file: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), tui.HighlightDocument(string(data), string(m.Format)))
	return nil
}
