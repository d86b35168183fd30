package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// completionCommand emits a completion script for the caller's shell.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <shell>",
		Short: "Print a shell completion script",
		Long: `Print a completion script for bash, zsh, fish or powershell.

The script is written to stdout so it can be sourced directly or
installed into the shell's completion directory:

  # one-off, current session only
  source <(pegboard completion bash)
  pegboard completion fish | source

  # persistent
  pegboard completion bash > /etc/bash_completion.d/pegboard
  pegboard completion zsh  > "${fpath[1]}/_pegboard"
  pegboard completion fish > ~/.config/fish/completions/pegboard.fish

Zsh users need compinit enabled first:

  echo "autoload -U compinit; compinit" >> ~/.zshrc

PowerShell:

  pegboard completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(os.Stdout, true)
			case "zsh":
				return root.GenZshCompletion(os.Stdout)
			case "fish":
				return root.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}
