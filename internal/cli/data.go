package cli

import (
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kgraph/pkg/kb"
	"github.com/mesh-intelligence/kgraph/pkg/types"
)

// dataValue is the JSON form of a data node.
type dataValue struct {
	ID    types.NodeID `json:"id"`
	Value string       `json:"value"`
}

func printValue(cmd *cobra.Command, id types.NodeID, value string) error {
	if flags.jsonMode {
		return printJSON(cmd, dataValue{ID: id, Value: value})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", id, value)
	return nil
}

func newDataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Create and read string and number values",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "string <value>",
			Short: "Create a string concept holding a value",
			Args:  usage(cobra.ExactArgs(1)),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withKB(func(k *kb.KB) error {
					id, err := k.CreateStringConcept(args[0])
					if err != nil {
						return err
					}
					return printValue(cmd, id, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "number <n>",
			Short: "Create a number holding an integer",
			Args:  usage(cobra.ExactArgs(1)),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return errors.Mark(errors.Wrapf(err, "parsing number %q", args[0]), errUsage)
				}
				return withKB(func(k *kb.KB) error {
					id, err := k.CreateNumber(n)
					if err != nil {
						return err
					}
					return printValue(cmd, id, strconv.FormatInt(n, 10))
				})
			},
		},
		&cobra.Command{
			Use:   "get <node>",
			Short: "Show the value of a data node",
			Args:  usage(cobra.ExactArgs(1)),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withKB(func(k *kb.KB) error {
					id, err := resolveRef(k, args[0])
					if err != nil {
						return err
					}
					value, ok, err := k.DataValue(id)
					if err != nil {
						return err
					}
					if !ok {
						return errors.Wrapf(types.ErrNotFound, "node %d has no value", id)
					}
					return printValue(cmd, id, value)
				})
			},
		},
	)
	return cmd
}
