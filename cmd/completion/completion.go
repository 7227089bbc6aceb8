// Package completion provides shell completion generation commands.
package completion

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

type shell struct {
	name    string
	install []string
	gen     func(root *cobra.Command, w io.Writer, desc bool) error
}

var shells = []shell{
	{
		name:    "bash",
		install: []string{"sheetlens completion bash > /etc/bash_completion.d/sheetlens", "echo 'source <(sheetlens completion bash)' >> ~/.bashrc"},
		gen:     genBash,
	},
	{
		name:    "zsh",
		install: []string{"sheetlens completion zsh > ~/.zsh/completions/_sheetlens"},
		gen:     genZsh,
	},
	{
		name:    "fish",
		install: []string{"sheetlens completion fish > ~/.config/fish/completions/sheetlens.fish"},
		gen:     genFish,
	},
	{
		name:    "powershell",
		install: []string{"sheetlens completion powershell >> $PROFILE"},
		gen:     genPowerShell,
	},
}

func genBash(root *cobra.Command, w io.Writer, desc bool) error {
	return root.GenBashCompletionV2(w, desc)
}

func genZsh(root *cobra.Command, w io.Writer, desc bool) error {
	if desc {
		return root.GenZshCompletion(w)
	}
	return root.GenZshCompletionNoDesc(w)
}

func genFish(root *cobra.Command, w io.Writer, desc bool) error {
	return root.GenFishCompletion(w, desc)
}

func genPowerShell(root *cobra.Command, w io.Writer, desc bool) error {
	if desc {
		return root.GenPowerShellCompletionWithDesc(w)
	}
	return root.GenPowerShellCompletion(w)
}

func lookup(name string) (shell, bool) {
	for _, s := range shells {
		if s.name == name {
			return s, true
		}
	}
	return shell{}, false
}

// NewCommand returns the completion command. Scripts are generated for root
// and start with a comment block saying how to install them.
func NewCommand(root *cobra.Command) *cobra.Command {
	var noDesc, noHeader bool

	names := make([]string, len(shells))
	var help strings.Builder
	help.WriteString("Generate shell completion scripts for SheetLens.\n\nInstall instructions:")
	for i, s := range shells {
		names[i] = s.name
		for j, line := range s.install {
			label := ""
			if j == 0 {
				label = s.name + ":"
			}
			fmt.Fprintf(&help, "\n  %-12s%s", label, line)
		}
	}

	cmd := &cobra.Command{
		Use:       "completion [" + strings.Join(names, "|") + "]",
		Short:     "Generate shell completions",
		Long:      help.String(),
		ValidArgs: names,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok := lookup(args[0])
			if !ok {
				return fmt.Errorf("unsupported shell: %s (supported: %s)", args[0], strings.Join(names, ", "))
			}

			w := cmd.OutOrStdout()
			if !noHeader {
				fmt.Fprintf(w, "# SheetLens %s completion\n", s.name)
				for i, line := range s.install {
					prefix := "# Install: "
					if i > 0 {
						prefix = "# Or:      "
					}
					fmt.Fprintln(w, prefix+line)
				}
				fmt.Fprintln(w)
			}
			return s.gen(root, w, !noDesc)
		},
	}

	cmd.Flags().BoolVar(&noDesc, "no-descriptions", false, "Leave command descriptions out of the completions")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "Print only the script, without install comments")

	return cmd
}
