package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var encodeCmd = &cobra.Command{
	Use:   "encode [text]",
	Short: "Encode text into token IDs",
	Long: `Encode text into token IDs, one per character, using a trained vocabulary.

The model is a cache ID or the path of a .json or .yaml model file.`,
	Example: `  subword encode --model shakespeare "to be or not to be"
  subword encode --model vocab.yaml --tokens "hello"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEncode,
}

var decodeCmd = &cobra.Command{
	Use:     "decode [ids...]",
	Short:   "Decode token IDs into text",
	Example: `  subword decode --model shakespeare 12 4 33 4`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runDecode,
}

var (
	codecModel   string
	codecUnknown string
	encodeTokens bool
	encodeCount  bool
)

func init() {
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)

	for _, c := range []*cobra.Command{encodeCmd, decodeCmd} {
		c.Flags().StringVarP(&codecModel, "model", "m", "", "model cache ID or file path")
		c.Flags().StringVar(&codecUnknown, "unknown", "", "unknown symbol policy: error or skip (default from config)")
		c.RegisterFlagCompletionFunc("model", completeModelFlag)
		c.RegisterFlagCompletionFunc("unknown", cobra.FixedCompletions(
			[]string{"error", "skip"}, cobra.ShellCompDirectiveNoFileComp))
	}
	encodeCmd.Flags().BoolVar(&encodeTokens, "tokens", false, "print symbols instead of IDs")
	encodeCmd.Flags().BoolVar(&encodeCount, "count", false, "print only the number of tokens")
}

func runEncode(cmd *cobra.Command, args []string) error {
	codec, err := resolveModel(codecModel, codecUnknown)
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	out := cmd.OutOrStdout()

	switch {
	case encodeCount:
		n, err := codec.CountTokens(text)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, n)
	case encodeTokens:
		tokens, err := codec.EncodeAsTokens(text)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, quoteAll(tokens))
	default:
		ids, err := codec.Encode(text)
		if err != nil {
			return err
		}
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = strconv.Itoa(id)
		}
		fmt.Fprintln(out, strings.Join(parts, " "))
	}
	return nil
}

func runDecode(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	codec, err := resolveModel(codecModel, codecUnknown)
	if err != nil {
		return err
	}

	text, err := codec.Decode(ids)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

// parseIDs accepts IDs as separate arguments or comma separated
func parseIDs(args []string) ([]int, error) {
	var ids []int
	for _, arg := range args {
		for _, field := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
			id, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("invalid token ID %q", field)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
