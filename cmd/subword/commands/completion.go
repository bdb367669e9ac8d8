package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xupit3r/subword/internal/config"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for Subword.

To load completions:

Bash:
  $ subword completion bash > ~/.local/share/bash-completion/completions/subword
  $ source ~/.local/share/bash-completion/completions/subword

Zsh:
  $ subword completion zsh > ~/.zsh/completion/_subword
  $ echo 'fpath=(~/.zsh/completion $fpath)' >> ~/.zshrc
  $ echo 'autoload -Uz compinit && compinit' >> ~/.zshrc

Fish:
  $ subword completion fish > ~/.config/fish/completions/subword.fish

PowerShell:
  PS> subword completion powershell | Out-String | Invoke-Expression
  # To persist, add the output to your PowerShell profile
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE:                  runCompletion,
}

func init() {
	rootCmd.AddCommand(completionCmd)

	registerModelCompletions()
}

func runCompletion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	switch args[0] {
	case "bash":
		return cmd.Root().GenBashCompletion(out)
	case "zsh":
		return cmd.Root().GenZshCompletion(out)
	case "fish":
		return cmd.Root().GenFishCompletion(out, true)
	case "powershell":
		return cmd.Root().GenPowerShellCompletionWithDesc(out)
	}
	return fmt.Errorf("unsupported shell: %s", args[0])
}

// cachedModelIDs lists cached model IDs with their vocabulary size as the
// completion description. Completion runs without PersistentPreRunE, so
// the config is loaded here when needed.
func cachedModelIDs() []string {
	c := cfg
	if c == nil {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			return nil
		}
		c = loaded
	}

	manager, err := newManagerFrom(c)
	if err != nil {
		return nil
	}

	var ids []string
	for _, m := range manager.Cache.List() {
		ids = append(ids, fmt.Sprintf("%s\t%d symbols from %s", m.ID, m.VocabSize, m.Source))
	}
	return ids
}

// registerModelCompletions registers custom completions for commands taking a model
func registerModelCompletions() {
	validModelIDs := func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) != 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return cachedModelIDs(), cobra.ShellCompDirectiveNoFileComp
	}

	modelInfoCmd.ValidArgsFunction = validModelIDs
	modelRemoveCmd.ValidArgsFunction = validModelIDs
	modelShowCmd.ValidArgsFunction = validModelIDs
	modelVerifyCmd.ValidArgsFunction = validModelIDs
}

// completeModelFlag completes --model with cached IDs. The flag also
// accepts file paths, so file completion stays on.
func completeModelFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return cachedModelIDs(), cobra.ShellCompDirectiveDefault
}
