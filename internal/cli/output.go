package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kgraph/pkg/kb"
	"github.com/mesh-intelligence/kgraph/pkg/types"
)

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func nodesOf(k *kb.KB, ids []types.NodeID) ([]types.Node, error) {
	nodes := make([]types.Node, 0, len(ids))
	for _, id := range ids {
		n, err := k.GetNode(id)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// printNodes writes one "id<TAB>name" line per node, or a JSON array.
func printNodes(cmd *cobra.Command, k *kb.KB, ids ...types.NodeID) error {
	nodes, err := nodesOf(k, ids)
	if err != nil {
		return err
	}
	if flags.jsonMode {
		return printJSON(cmd, nodes)
	}
	for _, n := range nodes {
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", n.ID, n.Name)
	}
	return nil
}

// printNode writes a single node, as an object in JSON mode.
func printNode(cmd *cobra.Command, k *kb.KB, id types.NodeID) error {
	n, err := k.GetNode(id)
	if err != nil {
		return err
	}
	if flags.jsonMode {
		return printJSON(cmd, n)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", n.ID, n.Name)
	return nil
}
