package kb

import "github.com/mesh-intelligence/kgraph/pkg/types"

// MarkIndividual excludes n from archetype enumerations. Idempotent.
func (k *KB) MarkIndividual(n types.NodeID) error {
	if err := k.exists(n); err != nil {
		return err
	}
	return k.g.AddFlag(n, IsIndividual)
}

// IsIndividual reports whether n was marked individual.
func (k *KB) IsIndividual(n types.NodeID) (bool, error) {
	if err := k.exists(n); err != nil {
		return false, err
	}
	return k.g.HasFlag(n, IsIndividual)
}
