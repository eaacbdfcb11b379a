// Package completion provides the shell completion command.
package completion

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Supported shells.
const (
	ShellBash       = "bash"
	ShellZsh        = "zsh"
	ShellFish       = "fish"
	ShellPowershell = "powershell"
)

// NewCommand creates the completion command. It replaces cobra's generated
// one so the scripts land on the command's output writer.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion bash|zsh|fish|powershell",
		Short: "Generate shell completion scripts",
		Long: `Generate the autocompletion script for the given shell.

To load completions in your current shell session:

  source <(bidcompare completion bash)
  source <(bidcompare completion zsh)
  bidcompare completion fish | source
  bidcompare completion powershell | Out-String | Invoke-Expression

To load completions for every new session, write the script to your shell's
completion directory, e.g.:

  bidcompare completion zsh > "${fpath[1]}/_bidcompare"`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{ShellBash, ShellZsh, ShellFish, ShellPowershell},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			root := cmd.Root()
			switch args[0] {
			case ShellBash:
				return root.GenBashCompletionV2(w, true)
			case ShellZsh:
				return root.GenZshCompletion(w)
			case ShellFish:
				return root.GenFishCompletion(w, true)
			case ShellPowershell:
				return root.GenPowerShellCompletionWithDesc(w)
			}
			return fmt.Errorf("unsupported shell: %s", args[0])
		},
	}
}
