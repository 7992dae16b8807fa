package kb

import (
	"github.com/cockroachdb/errors"

	"github.com/mesh-intelligence/kgraph/pkg/types"
)

// SpecificMeta returns the meta-archetype describing a, creating it on first
// use. The meta of a inherits from the meta of a's parent; the meta of the
// root inherits from the archetype bootstrap node. Metas of the ancestors
// are created first.
func (k *KB) SpecificMeta(a types.NodeID) (types.NodeID, error) {
	if err := k.exists(a); err != nil {
		return 0, err
	}
	return k.atomicID(func() (types.NodeID, error) {
		return k.specificMeta(a)
	})
}

func (k *KB) specificMeta(a types.NodeID) (types.NodeID, error) {
	meta, ok, err := k.specificMetaIfAny(a)
	if err != nil || ok {
		return meta, err
	}

	parentMeta := Archetype
	if a != Tao {
		p, err := k.parent(a)
		if err != nil {
			return 0, err
		}
		if parentMeta, err = k.specificMeta(p); err != nil {
			return 0, err
		}
	}

	meta, err = k.createNode(k.Label(a) + "-meta")
	if err != nil {
		return 0, err
	}
	if err := k.g.AddEdge(meta, Inherits, parentMeta); err != nil {
		return 0, err
	}
	if err := k.g.AddFlag(meta, Meta); err != nil {
		return 0, err
	}
	if err := k.g.AddEdge(a, MetaForm, meta); err != nil {
		return 0, err
	}
	k.log.Debugw("created meta-archetype", "archetype", a, "meta", meta, "parent", parentMeta)
	return meta, nil
}

func (k *KB) specificMetaIfAny(a types.NodeID) (types.NodeID, bool, error) {
	metas, err := k.g.OutgoingNodes(a, MetaForm)
	if err != nil || len(metas) == 0 {
		return 0, false, err
	}
	return metas[0], true, nil
}

// HasSpecificMeta reports whether a meta-archetype was created for a.
func (k *KB) HasSpecificMeta(a types.NodeID) (bool, error) {
	if err := k.exists(a); err != nil {
		return false, err
	}
	_, ok, err := k.specificMetaIfAny(a)
	return ok, err
}

// MetaArchetype returns the closest specific meta on a's chain, or the
// archetype bootstrap node when none exists. It never creates a meta.
func (k *KB) MetaArchetype(a types.NodeID) (types.NodeID, error) {
	chain, err := k.AncestorsOf(a)
	if err != nil {
		return 0, err
	}
	for _, anc := range chain {
		meta, ok, err := k.specificMetaIfAny(anc)
		if err != nil {
			return 0, err
		}
		if ok {
			return meta, nil
		}
	}
	return Archetype, nil
}

// MesaArchetype returns the archetype that meta describes.
func (k *KB) MesaArchetype(meta types.NodeID) (types.NodeID, error) {
	if err := k.exists(meta); err != nil {
		return 0, err
	}
	described, err := k.g.IncomingNodes(meta, MetaForm)
	if err != nil {
		return 0, err
	}
	if len(described) == 0 {
		return 0, errors.Wrapf(types.ErrNotFound, "node %d is not a specific meta", meta)
	}
	return described[0], nil
}

// MarkNonhereditary records on meta that property, declared on the
// archetype meta describes, is not inherited by its descendants.
func (k *KB) MarkNonhereditary(meta, property types.NodeID) error {
	if err := k.existsAll(meta, property); err != nil {
		return err
	}
	isMeta, err := k.g.HasFlag(meta, Meta)
	if err != nil {
		return err
	}
	if !isMeta {
		return errors.WithHint(
			errors.Wrapf(types.ErrTypeConstraintViolation, "node %d is not a meta-archetype", meta),
			"obtain the meta of an archetype with SpecificMeta")
	}
	return k.g.AddEdge(meta, Nonhereditary, property)
}

// IsNonhereditary reports whether meta marks property nonhereditary.
func (k *KB) IsNonhereditary(meta, property types.NodeID) (bool, error) {
	if err := k.existsAll(meta, property); err != nil {
		return false, err
	}
	return k.g.HasEdge(meta, Nonhereditary, property)
}
