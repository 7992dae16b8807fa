package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kgraph/pkg/kb"
	"github.com/mesh-intelligence/kgraph/pkg/types"
)

func newArchetypeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "archetype",
		Aliases: []string{"arch"},
		Short:   "Manage the archetype hierarchy",
	}

	var individual bool
	create := &cobra.Command{
		Use:   "create <parent> <name>",
		Short: "Create a sub-archetype, or an individual with --individual",
		Args:  usage(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKB(func(k *kb.KB) error {
				parent, err := resolveRef(k, args[0])
				if err != nil {
					return err
				}
				var id types.NodeID
				if individual {
					id, err = k.Individuate(parent, args[1])
				} else {
					id, err = k.CreateArchetype(parent, args[1])
				}
				if err != nil {
					return err
				}
				return printNode(cmd, k, id)
			})
		},
	}
	create.Flags().BoolVar(&individual, "individual", false, "create an individual instead of an archetype")

	cmd.AddCommand(
		create,
		&cobra.Command{
			Use:   "parent <child> <parent>",
			Short: "Set the parent of an archetype",
			Args:  usage(cobra.ExactArgs(2)),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withKB(func(k *kb.KB) error {
					ids, err := resolveRefs(k, args...)
					if err != nil {
						return err
					}
					if err := k.AddParent(ids[0], ids[1]); err != nil {
						return err
					}
					return printNodes(cmd, k, ids...)
				})
			},
		},
		listCmd("ancestors <archetype>", "List the inheritance chain, closest first", (*kb.KB).AncestorsOf),
		listCmd("children <archetype>", "List descendant archetypes, individuals excluded", (*kb.KB).ChildArchetypes),
		listCmd("individuals <archetype>", "List descendant individuals", (*kb.KB).Individuals),
		listCmd("attributes <archetype>", "List effective attribute types", (*kb.KB).EffectiveAttributeTypes),
	)
	return cmd
}

// listCmd builds a command that resolves one node and prints the list query
// returns for it.
func listCmd(use, short string, query func(*kb.KB, types.NodeID) ([]types.NodeID, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  usage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKB(func(k *kb.KB) error {
				id, err := resolveRef(k, args[0])
				if err != nil {
					return err
				}
				ids, err := query(k, id)
				if err != nil {
					return err
				}
				return printNodes(cmd, k, ids...)
			})
		},
	}
}
