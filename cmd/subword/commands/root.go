package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xupit3r/subword/internal/config"
	"github.com/xupit3r/subword/internal/logging"
	"github.com/xupit3r/subword/internal/tui"
)

var (
	cfgFile string
	verbose bool
	quiet   bool
	noColor bool

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "subword",
	Short: "A byte-pair encoding vocabulary trainer",
	Long: `Subword learns a subword vocabulary from a text corpus by repeatedly
merging the most frequent adjacent pair of symbols, then encodes text into
token IDs and decodes IDs back into text with that vocabulary.

Trained vocabularies can be kept in a local model cache and referenced by ID.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	addPersistentFlags(rootCmd)
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.subword/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "quiet mode")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// initConfig loads the configuration and sets up logging before any command runs
func initConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	level := c.Logging.Level
	switch {
	case quiet:
		level = "error"
	case verbose:
		level = "debug"
	}

	if err := logging.Init(level, c.Logging.File, c.Logging.Console); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if verbose && cfgFile != "" {
		logging.Debugf("Using config file: %s", cfgFile)
	}

	tui.SetColor(c.UI.Color && !noColor)

	cfg = c
	return nil
}
