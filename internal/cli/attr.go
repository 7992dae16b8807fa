package cli

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kgraph/pkg/kb"
	"github.com/mesh-intelligence/kgraph/pkg/types"
)

func newAttrCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attr",
		Short: "Create and query attributes",
	}

	var ownerBound, valueBound string
	bound := &cobra.Command{
		Use:   "bound <attr-type>",
		Short: "Show or set the owner and value archetypes of an attribute type",
		Args:  usage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKB(func(k *kb.KB) error {
				attrType, err := resolveRef(k, args[0])
				if err != nil {
					return err
				}
				if ownerBound != "" {
					b, err := resolveRef(k, ownerBound)
					if err != nil {
						return err
					}
					if err := k.SetOwnerArchetype(attrType, b); err != nil {
						return err
					}
				}
				if valueBound != "" {
					b, err := resolveRef(k, valueBound)
					if err != nil {
						return err
					}
					if err := k.SetValueArchetype(attrType, b); err != nil {
						return err
					}
				}
				owner, err := k.ResolveOwnerArchetype(attrType)
				if err != nil {
					return err
				}
				value, err := k.ResolveValueArchetype(attrType)
				if err != nil {
					return err
				}
				return printNodes(cmd, k, owner, value)
			})
		},
	}
	bound.Flags().StringVar(&ownerBound, "owner", "", "archetype every owner must descend from")
	bound.Flags().StringVar(&valueBound, "value", "", "archetype every value must descend from")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "create <attr-type> <owner> <value>",
			Short: "Create an attribute of the given type",
			Args:  usage(cobra.ExactArgs(3)),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withKB(func(k *kb.KB) error {
					ids, err := resolveRefs(k, args...)
					if err != nil {
						return err
					}
					attr, err := k.CreateAttributeOf(ids[0], ids[1], ids[2])
					if err != nil {
						return err
					}
					return printNode(cmd, k, attr)
				})
			},
		},
		&cobra.Command{
			Use:   "set <owner> <attr-type> <value>",
			Short: "Set the value of the owner's attribute, creating it if needed",
			Args:  usage(cobra.ExactArgs(3)),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withKB(func(k *kb.KB) error {
					ids, err := resolveRefs(k, args...)
					if err != nil {
						return err
					}
					attr, err := k.SetAttributeValue(ids[0], ids[1], ids[2])
					if err != nil {
						return err
					}
					return printNode(cmd, k, attr)
				})
			},
		},
		&cobra.Command{
			Use:   "values <owner> <attr-type>",
			Short: "List the values of the owner's attributes of a type",
			Args:  usage(cobra.ExactArgs(2)),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withKB(func(k *kb.KB) error {
					ids, err := resolveRefs(k, args...)
					if err != nil {
						return err
					}
					values, err := k.AttributeValues(ids[0], ids[1])
					if err != nil {
						return err
					}
					return printNodes(cmd, k, values...)
				})
			},
		},
		&cobra.Command{
			Use:   "owner <relation>",
			Short: "Show the owner of a flag or attribute",
			Args:  usage(cobra.ExactArgs(1)),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withKB(func(k *kb.KB) error {
					rel, err := resolveRef(k, args[0])
					if err != nil {
						return err
					}
					owner, err := k.OwnerOf(rel)
					if err != nil {
						return err
					}
					return printNode(cmd, k, owner)
				})
			},
		},
		&cobra.Command{
			Use:   "declare <archetype> <attr-type>",
			Short: "Declare that instances of an archetype carry an attribute type",
			Args:  usage(cobra.ExactArgs(2)),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withKB(func(k *kb.KB) error {
					ids, err := resolveRefs(k, args...)
					if err != nil {
						return err
					}
					return k.AddAttributeType(ids[0], ids[1])
				})
			},
		},
		&cobra.Command{
			Use:   "multi <attr-type>",
			Short: "Allow attributes of a type to hold several values",
			Args:  usage(cobra.ExactArgs(1)),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withKB(func(k *kb.KB) error {
					id, err := resolveRef(k, args[0])
					if err != nil {
						return err
					}
					return k.MarkMultiValued(id)
				})
			},
		},
		&cobra.Command{
			Use:   "default <attr-type> [value]",
			Short: "Show or set the default value of an attribute type",
			Args:  usage(cobra.RangeArgs(1, 2)),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withKB(func(k *kb.KB) error {
					ids, err := resolveRefs(k, args...)
					if err != nil {
						return err
					}
					if len(ids) == 2 {
						if err := k.SetDefaultValue(ids[0], ids[1]); err != nil {
							return err
						}
					}
					value, ok, err := k.DefaultValueOf(ids[0])
					if err != nil {
						return err
					}
					if !ok {
						return errors.WithHint(
							errors.Wrapf(types.ErrNotFound, "%s has no default value", k.Label(ids[0])),
							"set one with kgraph attr default <attr-type> <value>")
					}
					return printNode(cmd, k, value)
				})
			},
		},
		bound,
	)
	return cmd
}

func newFlagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flag",
		Short: "Set and test unary flags",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <node> <flag-type>",
			Short: "Set a flag on a node",
			Args:  usage(cobra.ExactArgs(2)),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withKB(func(k *kb.KB) error {
					ids, err := resolveRefs(k, args...)
					if err != nil {
						return err
					}
					return k.SetFlag(ids[0], ids[1])
				})
			},
		},
		&cobra.Command{
			Use:   "has <node> <flag-type>",
			Short: "Report whether a node carries a flag",
			Args:  usage(cobra.ExactArgs(2)),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withKB(func(k *kb.KB) error {
					ids, err := resolveRefs(k, args...)
					if err != nil {
						return err
					}
					ok, err := k.HasFlag(ids[0], ids[1])
					if err != nil {
						return err
					}
					return printBool(cmd, ok)
				})
			},
		},
	)
	return cmd
}

func newIndividualCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "individual",
		Short: "Mark nodes as individuals",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "mark <node>",
		Short: "Exclude a node from archetype listings",
		Args:  usage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKB(func(k *kb.KB) error {
				id, err := resolveRef(k, args[0])
				if err != nil {
					return err
				}
				return k.MarkIndividual(id)
			})
		},
	})
	return cmd
}

func printBool(cmd *cobra.Command, v bool) error {
	if flags.jsonMode {
		return printJSON(cmd, v)
	}
	fmt.Fprintln(cmd.OutOrStdout(), v)
	return nil
}

