package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the kgraph release.
const Version = "0.1.0"

const modulePath = "github.com/mesh-intelligence/kgraph"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the kgraph version",
		Args:  usage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.jsonMode {
				return printJSON(cmd, map[string]string{"version": Version, "module": modulePath})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "kgraph v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
