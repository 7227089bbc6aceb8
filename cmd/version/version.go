// Package version provides the version command for the sheetlens CLI.
package version

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

// NewCommand returns the version subcommand.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the sheetlens version",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			if jsonFlag {
				return json.NewEncoder(os.Stdout).Encode(map[string]string{
					"version": Version,
					"go":      runtime.Version(),
				})
			}
			fmt.Printf("sheetlens %s\n", Version)
			return nil
		},
	}
}
