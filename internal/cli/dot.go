package cli

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kgraph/pkg/kb"
)

func newDOTCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "dot",
		Short: "Export the graph in Graphviz DOT format",
		Args:  usage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKB(func(k *kb.KB) error {
				if output == "" || output == "-" {
					return k.WriteDOT(cmd.OutOrStdout())
				}
				return writeDOTFile(k, output)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func writeDOTFile(k *kb.KB, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()
	return k.WriteDOT(f)
}
