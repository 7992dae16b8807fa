package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kgraph/pkg/kb"
)

func newNodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Create, inspect and rename nodes",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create [name]",
			Short: "Create a node",
			Args:  usage(cobra.MaximumNArgs(1)),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withKB(func(k *kb.KB) error {
					id, err := k.CreateNode(args...)
					if err != nil {
						return err
					}
					return printNode(cmd, k, id)
				})
			},
		},
		&cobra.Command{
			Use:   "get <node>",
			Short: "Show a node by id or name",
			Args:  usage(cobra.ExactArgs(1)),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withKB(func(k *kb.KB) error {
					id, err := resolveRef(k, args[0])
					if err != nil {
						return err
					}
					return printNode(cmd, k, id)
				})
			},
		},
		&cobra.Command{
			Use:   "find <name>",
			Short: "List every node with the given name",
			Args:  usage(cobra.ExactArgs(1)),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withKB(func(k *kb.KB) error {
					ids, err := k.FindByName(args[0])
					if err != nil {
						return err
					}
					return printNodes(cmd, k, ids...)
				})
			},
		},
		&cobra.Command{
			Use:   "rename <node> <new-name>",
			Short: "Rename a node",
			Args:  usage(cobra.ExactArgs(2)),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withKB(func(k *kb.KB) error {
					id, err := resolveRef(k, args[0])
					if err != nil {
						return err
					}
					if err := k.SetName(id, args[1]); err != nil {
						return err
					}
					return printNode(cmd, k, id)
				})
			},
		},
	)
	return cmd
}
