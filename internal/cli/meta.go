package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kgraph/pkg/kb"
)

func newMetaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meta",
		Short: "Inspect and annotate meta-archetypes",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show <archetype>",
			Short: "Show the specific meta of an archetype, creating it if needed",
			Args:  usage(cobra.ExactArgs(1)),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withKB(func(k *kb.KB) error {
					a, err := resolveRef(k, args[0])
					if err != nil {
						return err
					}
					meta, err := k.SpecificMeta(a)
					if err != nil {
						return err
					}
					return printNode(cmd, k, meta)
				})
			},
		},
		&cobra.Command{
			Use:   "of <meta>",
			Short: "Show the archetype a meta describes",
			Args:  usage(cobra.ExactArgs(1)),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withKB(func(k *kb.KB) error {
					meta, err := resolveRef(k, args[0])
					if err != nil {
						return err
					}
					a, err := k.MesaArchetype(meta)
					if err != nil {
						return err
					}
					return printNode(cmd, k, a)
				})
			},
		},
		&cobra.Command{
			Use:   "nonhereditary <archetype> <property>",
			Short: "Keep a property of an archetype from passing to its descendants",
			Args:  usage(cobra.ExactArgs(2)),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withKB(func(k *kb.KB) error {
					ids, err := resolveRefs(k, args...)
					if err != nil {
						return err
					}
					meta, err := k.SpecificMeta(ids[0])
					if err != nil {
						return err
					}
					return k.MarkNonhereditary(meta, ids[1])
				})
			},
		},
	)
	return cmd
}
