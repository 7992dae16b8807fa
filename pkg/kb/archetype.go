package kb

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/mesh-intelligence/kgraph/pkg/types"
)

// CreateArchetype creates a named sub-archetype of parent.
func (k *KB) CreateArchetype(parent types.NodeID, name string) (types.NodeID, error) {
	if err := k.exists(parent); err != nil {
		return 0, err
	}
	id, err := k.atomicID(func() (types.NodeID, error) {
		id, err := k.createNode(name)
		if err != nil {
			return 0, err
		}
		if err := k.g.AddEdge(id, Inherits, parent); err != nil {
			return 0, errors.Wrapf(err, "linking archetype %d to parent %d", id, parent)
		}
		return id, nil
	})
	if err != nil {
		return 0, err
	}
	k.log.Debugw("created archetype", "id", id, "name", name, "parent", parent)
	return id, nil
}

// Individuate creates an individual of archetype. An empty name leaves the
// individual unnamed.
func (k *KB) Individuate(archetype types.NodeID, name string) (types.NodeID, error) {
	if err := k.exists(archetype); err != nil {
		return 0, err
	}
	return k.atomicID(func() (types.NodeID, error) {
		id, err := k.newIndividual(archetype)
		if err != nil {
			return 0, err
		}
		if name != "" {
			if err := k.g.SetNodeName(id, name); err != nil {
				return 0, err
			}
		}
		return id, nil
	})
}

// newIndividual writes an individual of archetype. Callers run it inside
// atomic.
func (k *KB) newIndividual(archetype types.NodeID) (types.NodeID, error) {
	id, err := k.g.AddNode()
	if err != nil {
		return 0, errors.Wrap(err, "creating individual")
	}
	if err := k.g.AddEdge(id, Inherits, archetype); err != nil {
		return 0, errors.Wrapf(err, "linking individual %d to %d", id, archetype)
	}
	if err := k.g.AddFlag(id, IsIndividual); err != nil {
		return 0, errors.Wrapf(err, "marking %d individual", id)
	}
	return id, nil
}

// AddParent sets parent as the single parent of child, replacing any
// previous parent. Only the root may be its own parent.
func (k *KB) AddParent(child, parent types.NodeID) error {
	if err := k.existsAll(child, parent); err != nil {
		return err
	}
	if child == parent && child != Tao {
		return errors.Wrapf(types.ErrCyclicInheritance, "node %d cannot inherit from itself", child)
	}
	if child != parent {
		cyclic, err := k.HasAncestor(parent, child)
		if err != nil {
			return err
		}
		if cyclic {
			return errors.WithHint(
				errors.Wrapf(types.ErrCyclicInheritance, "node %d is an ancestor of %d", child, parent),
				"inheritance must form a tree rooted at tao")
		}
	}

	if err := k.replaceEdge(child, Inherits, parent); err != nil {
		return err
	}
	k.purge()
	return nil
}

// ParentOf returns the parent of a. Nodes created without a parent are
// treated as direct children of the root.
func (k *KB) ParentOf(a types.NodeID) (types.NodeID, error) {
	if err := k.exists(a); err != nil {
		return 0, err
	}
	return k.parent(a)
}

func (k *KB) parent(a types.NodeID) (types.NodeID, error) {
	parents, err := k.g.OutgoingNodes(a, Inherits)
	if err != nil {
		return 0, err
	}
	if len(parents) == 0 {
		return Tao, nil
	}
	return parents[0], nil
}

// AncestorsOf returns the inheritance chain of a: a first, the root last,
// each node once.
func (k *KB) AncestorsOf(a types.NodeID) ([]types.NodeID, error) {
	if k.ancestors != nil {
		if chain, ok := k.ancestors.Get(a); ok {
			return slices.Clone(chain), nil
		}
	}
	if err := k.exists(a); err != nil {
		return nil, err
	}

	chain := []types.NodeID{a}
	seen := map[types.NodeID]bool{a: true}
	for cur := a; ; {
		p, err := k.parent(cur)
		if err != nil {
			return nil, err
		}
		if seen[p] {
			break
		}
		seen[p] = true
		chain = append(chain, p)
		cur = p
	}

	if k.ancestors != nil {
		k.ancestors.Add(a, chain)
	}
	return slices.Clone(chain), nil
}

// HasAncestor reports whether candidate is on the inheritance chain of a.
// Every node is its own ancestor.
func (k *KB) HasAncestor(a, candidate types.NodeID) (bool, error) {
	chain, err := k.AncestorsOf(a)
	if err != nil {
		return false, err
	}
	return slices.Contains(chain, candidate), nil
}

// requireDescendant fails with ErrTypeConstraintViolation unless a descends
// from base.
func (k *KB) requireDescendant(a, base types.NodeID, what string) error {
	ok, err := k.HasAncestor(a, base)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(types.ErrTypeConstraintViolation, "node %d is not %s", a, what)
	}
	return nil
}

// ResolveOwnerArchetype returns the owner bound of a relation type: the
// closest explicit owner-archetype on its chain, or the root.
func (k *KB) ResolveOwnerArchetype(rel types.NodeID) (types.NodeID, error) {
	return k.resolveBound(rel, OwnerArchetype)
}

// ResolveValueArchetype returns the value bound of an attribute type.
func (k *KB) ResolveValueArchetype(attr types.NodeID) (types.NodeID, error) {
	return k.resolveBound(attr, ValueArchetype)
}

func (k *KB) resolveBound(a, edgeType types.NodeID) (types.NodeID, error) {
	chain, err := k.AncestorsOf(a)
	if err != nil {
		return 0, err
	}
	for _, anc := range chain {
		bounds, err := k.g.OutgoingNodes(anc, edgeType)
		if err != nil {
			return 0, err
		}
		if len(bounds) > 0 {
			return bounds[0], nil
		}
	}
	return Tao, nil
}

// SetOwnerArchetype replaces the explicit owner bound declared on rel.
func (k *KB) SetOwnerArchetype(rel, bound types.NodeID) error {
	if err := k.existsAll(rel, bound); err != nil {
		return err
	}
	if err := k.requireDescendant(rel, Relation, "a relation"); err != nil {
		return err
	}
	return k.replaceEdge(rel, OwnerArchetype, bound)
}

// SetValueArchetype replaces the explicit value bound declared on attr.
func (k *KB) SetValueArchetype(attr, bound types.NodeID) error {
	if err := k.existsAll(attr, bound); err != nil {
		return err
	}
	if err := k.requireDescendant(attr, Attribute, "an attribute"); err != nil {
		return err
	}
	return k.replaceEdge(attr, ValueArchetype, bound)
}

// replaceEdge leaves from with exactly one edge of edgeType, pointing at to.
func (k *KB) replaceEdge(from, edgeType, to types.NodeID) error {
	return k.atomic(func() error {
		old, err := k.g.OutgoingNodes(from, edgeType)
		if err != nil {
			return err
		}
		for _, o := range old {
			if o == to {
				continue
			}
			if err := k.g.RemoveEdge(from, edgeType, o); err != nil {
				return err
			}
		}
		return k.g.AddEdge(from, edgeType, to)
	})
}

// AddAttributeType declares that instances of a carry attributes of attrType.
func (k *KB) AddAttributeType(a, attrType types.NodeID) error {
	if err := k.existsAll(a, attrType); err != nil {
		return err
	}
	if err := k.requireDescendant(attrType, Attribute, "an attribute"); err != nil {
		return err
	}
	return k.g.AddEdge(a, HasAttribute, attrType)
}

// AddFlagType declares that instances of a may carry flagType.
func (k *KB) AddFlagType(a, flagType types.NodeID) error {
	if err := k.existsAll(a, flagType); err != nil {
		return err
	}
	if err := k.requireDescendant(flagType, Flag, "a flag"); err != nil {
		return err
	}
	return k.g.AddEdge(a, HasFlag, flagType)
}

// AddedAttributeTypes returns the attribute types declared directly on a.
func (k *KB) AddedAttributeTypes(a types.NodeID) ([]types.NodeID, error) {
	if err := k.exists(a); err != nil {
		return nil, err
	}
	return k.g.OutgoingNodes(a, HasAttribute)
}

// AddedFlagTypes returns the flag types declared directly on a.
func (k *KB) AddedFlagTypes(a types.NodeID) ([]types.NodeID, error) {
	if err := k.exists(a); err != nil {
		return nil, err
	}
	return k.g.OutgoingNodes(a, HasFlag)
}

// EffectiveAttributeTypes returns the attribute types declared on a and its
// ancestors, less those an ancestor's meta marks nonhereditary.
func (k *KB) EffectiveAttributeTypes(a types.NodeID) ([]types.NodeID, error) {
	return k.effectiveProperties(a, HasAttribute)
}

// EffectiveFlagTypes is EffectiveAttributeTypes for flags.
func (k *KB) EffectiveFlagTypes(a types.NodeID) ([]types.NodeID, error) {
	return k.effectiveProperties(a, HasFlag)
}

func (k *KB) effectiveProperties(a, edgeType types.NodeID) ([]types.NodeID, error) {
	chain, err := k.AncestorsOf(a)
	if err != nil {
		return nil, err
	}
	var props []types.NodeID
	for i, anc := range chain {
		declared, err := k.g.OutgoingNodes(anc, edgeType)
		if err != nil {
			return nil, err
		}
		if len(declared) == 0 {
			continue
		}
		meta, hasMeta, err := k.specificMetaIfAny(anc)
		if err != nil {
			return nil, err
		}
		for _, p := range declared {
			if i > 0 && hasMeta {
				skip, err := k.g.HasEdge(meta, Nonhereditary, p)
				if err != nil {
					return nil, err
				}
				if skip {
					continue
				}
			}
			if !slices.Contains(props, p) {
				props = append(props, p)
			}
		}
	}
	slices.Sort(props)
	return props, nil
}

// HasAttributeType reports whether attrType is effective on a.
func (k *KB) HasAttributeType(a, attrType types.NodeID) (bool, error) {
	props, err := k.EffectiveAttributeTypes(a)
	if err != nil {
		return false, err
	}
	return slices.Contains(props, attrType), nil
}

// HasFlagType reports whether flagType is effective on a.
func (k *KB) HasFlagType(a, flagType types.NodeID) (bool, error) {
	props, err := k.EffectiveFlagTypes(a)
	if err != nil {
		return false, err
	}
	return slices.Contains(props, flagType), nil
}

// ChildArchetypes returns every descendant of a that is not an individual,
// in breadth-first order. Meta-archetypes are left out unless a is itself
// part of the meta hierarchy.
func (k *KB) ChildArchetypes(a types.NodeID) ([]types.NodeID, error) {
	withMetas, err := k.HasAncestor(a, Archetype)
	if err != nil {
		return nil, err
	}
	return k.descendants(a, func(n types.NodeID) (bool, error) {
		individual, err := k.g.HasFlag(n, IsIndividual)
		if err != nil || individual {
			return false, err
		}
		if withMetas {
			return true, nil
		}
		meta, err := k.g.HasFlag(n, Meta)
		return !meta, err
	})
}

// Individuals returns every descendant of a that is an individual.
func (k *KB) Individuals(a types.NodeID) ([]types.NodeID, error) {
	if err := k.exists(a); err != nil {
		return nil, err
	}
	return k.descendants(a, func(n types.NodeID) (bool, error) {
		return k.g.HasFlag(n, IsIndividual)
	})
}

func (k *KB) descendants(a types.NodeID, keep func(types.NodeID) (bool, error)) ([]types.NodeID, error) {
	var out []types.NodeID
	visited := map[types.NodeID]bool{a: true}
	queue := []types.NodeID{a}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		children, err := k.g.IncomingNodes(cur, Inherits)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			if visited[c] {
				continue
			}
			visited[c] = true
			queue = append(queue, c)
			ok, err := keep(c)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

// MarkMultiValued lets attributes of attrType, and of its sub-archetypes,
// hold several values.
func (k *KB) MarkMultiValued(attrType types.NodeID) error {
	if err := k.exists(attrType); err != nil {
		return err
	}
	if err := k.requireDescendant(attrType, Attribute, "an attribute"); err != nil {
		return err
	}
	return k.g.AddFlag(attrType, MultiValued)
}

// IsMultiValued reports whether a or one of its ancestors is multi-valued.
func (k *KB) IsMultiValued(a types.NodeID) (bool, error) {
	return k.inheritsFlag(a, MultiValued)
}

func (k *KB) inheritsFlag(a, flag types.NodeID) (bool, error) {
	chain, err := k.AncestorsOf(a)
	if err != nil {
		return false, err
	}
	for _, anc := range chain {
		ok, err := k.g.HasFlag(anc, flag)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}
