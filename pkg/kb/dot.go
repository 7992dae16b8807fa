package kb

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mesh-intelligence/kgraph/pkg/types"
)

// WriteDOT renders the whole graph as a Graphviz digraph. Nodes are labelled
// with their names and edges with the name of their type.
func (k *KB) WriteDOT(w io.Writer) error {
	size, err := k.g.Size()
	if err != nil {
		return err
	}
	edges, err := k.g.Edges()
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph kgraph {")
	for i := 0; i < size; i++ {
		id := types.NodeID(i)
		fmt.Fprintf(bw, "  n%d [label=%s];\n", id, dotQuote(k.Label(id)))
	}
	for _, e := range edges {
		fmt.Fprintf(bw, "  n%d -> n%d [label=%s];\n", e.From, e.To, dotQuote(k.Label(e.Type)))
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// dotQuote returns s as a DOT quoted string. Only the quote and the
// backslash are escaped; everything else, UTF-8 included, is written as is.
func dotQuote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}
