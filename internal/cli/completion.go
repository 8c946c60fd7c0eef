package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCmd emits a completion script for the caller's shell.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate a completion script for lumen and print it to stdout.

Load it for the current shell:

  bash:        source <(lumen completion bash)
  zsh:         source <(lumen completion zsh)
  fish:        lumen completion fish | source
  powershell:  lumen completion powershell | Out-String | Invoke-Expression

Install it permanently:

  bash (Linux):  lumen completion bash > /etc/bash_completion.d/lumen
  bash (macOS):  lumen completion bash > $(brew --prefix)/etc/bash_completion.d/lumen
  zsh:           lumen completion zsh > "${fpath[1]}/_lumen"
  fish:          lumen completion fish > ~/.config/fish/completions/lumen.fish
  powershell:    lumen completion powershell > lumen.ps1  # dot-source from your profile

Zsh users may need to enable the completion system first:

  echo "autoload -U compinit; compinit" >> ~/.zshrc
`,
	Example:               `  lumen completion bash`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cmd.Root()
		switch args[0] {
		case "bash":
			return root.GenBashCompletion(os.Stdout)
		case "zsh":
			return root.GenZshCompletion(os.Stdout)
		case "fish":
			return root.GenFishCompletion(os.Stdout, true)
		default:
			return root.GenPowerShellCompletionWithDesc(os.Stdout)
		}
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(completionCmd)
}
