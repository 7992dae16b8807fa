package kb

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/mesh-intelligence/kgraph/pkg/types"
)

// CreateFlag creates a generic flag owned by owner.
func (k *KB) CreateFlag(owner types.NodeID) (types.NodeID, error) {
	return k.CreateFlagOf(Flag, owner)
}

// CreateFlagOf creates a flag of flagType owned by owner.
func (k *KB) CreateFlagOf(flagType, owner types.NodeID) (types.NodeID, error) {
	if err := k.exists(flagType); err != nil {
		return 0, err
	}
	if err := k.requireDescendant(flagType, Flag, "a flag"); err != nil {
		return 0, err
	}
	if err := k.checkOwner(flagType, owner); err != nil {
		return 0, err
	}

	return k.atomicID(func() (types.NodeID, error) {
		id, err := k.newIndividual(flagType)
		if err != nil {
			return 0, err
		}
		return id, k.g.AddEdge(id, Owner, owner)
	})
}

// SetFlag sets flagType directly on node as a unary fact.
func (k *KB) SetFlag(node, flagType types.NodeID) error {
	if err := k.existsAll(node, flagType); err != nil {
		return err
	}
	if err := k.requireDescendant(flagType, Flag, "a flag"); err != nil {
		return err
	}
	return k.g.AddFlag(node, flagType)
}

// HasFlag reports whether flagType was set directly on node.
func (k *KB) HasFlag(node, flagType types.NodeID) (bool, error) {
	if err := k.exists(node); err != nil {
		return false, err
	}
	return k.g.HasFlag(node, flagType)
}

// CreateAttribute creates a generic attribute from owner to value.
func (k *KB) CreateAttribute(owner, value types.NodeID) (types.NodeID, error) {
	return k.CreateAttributeOf(Attribute, owner, value)
}

// CreateAttributeOf creates an attribute of attrType from owner to value.
// Both endpoints are checked against the bounds resolved for attrType
// before anything is written.
func (k *KB) CreateAttributeOf(attrType, owner, value types.NodeID) (types.NodeID, error) {
	if err := k.exists(attrType); err != nil {
		return 0, err
	}
	if err := k.requireDescendant(attrType, Attribute, "an attribute"); err != nil {
		return 0, err
	}
	if err := k.checkOwner(attrType, owner); err != nil {
		return 0, err
	}
	if err := k.checkValue(attrType, value); err != nil {
		return 0, err
	}
	if err := k.checkForm(attrType, owner, value); err != nil {
		return 0, err
	}

	return k.atomicID(func() (types.NodeID, error) {
		id, err := k.newIndividual(attrType)
		if err != nil {
			return 0, err
		}
		if err := k.g.AddEdge(id, Owner, owner); err != nil {
			return 0, err
		}
		return id, k.g.AddEdge(id, Value, value)
	})
}

func (k *KB) checkOwner(rel, owner types.NodeID) error {
	ok, err := k.g.HasNode(owner)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(types.ErrInvalidOwner, "owner %d does not exist", owner)
	}
	return k.checkBound(rel, owner, OwnerArchetype, "owner")
}

func (k *KB) checkValue(attr, value types.NodeID) error {
	ok, err := k.g.HasNode(value)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(types.ErrInvalidValue, "value %d does not exist", value)
	}
	return k.checkBound(attr, value, ValueArchetype, "value")
}

// checkBound requires endpoint to descend from the bound resolved for rel.
func (k *KB) checkBound(rel, endpoint, boundType types.NodeID, role string) error {
	bound, err := k.resolveBound(rel, boundType)
	if err != nil {
		return err
	}
	ok, err := k.HasAncestor(endpoint, bound)
	if err != nil {
		return err
	}
	if !ok {
		return errors.WithHintf(
			errors.Wrapf(types.ErrTypeConstraintViolation, "%s %d of relation %d does not descend from %d", role, endpoint, rel, bound),
			"%s must be an instance or sub-archetype of %s", role, k.Label(bound))
	}
	return nil
}

// checkForm requires value to descend from the form archetype the owner's
// chain declares for attrType, when it declares one.
func (k *KB) checkForm(attrType, owner, value types.NodeID) error {
	form, ok, err := k.AttributeFormArchetype(owner, attrType)
	if err != nil || !ok {
		return err
	}
	ok, err = k.HasAncestor(value, form)
	if err != nil {
		return err
	}
	if !ok {
		return errors.WithHintf(
			errors.Wrapf(types.ErrTypeConstraintViolation, "value %d of %s on %d does not descend from %d", value, k.Label(attrType), owner, form),
			"%s declares %s values of %s", k.Label(owner), k.Label(attrType), k.Label(form))
	}
	return nil
}

// requireRelation checks that rel exists and descends from base.
func (k *KB) requireRelation(rel, base types.NodeID) error {
	if err := k.exists(rel); err != nil {
		return err
	}
	what := "a relation"
	if base == Attribute {
		what = "an attribute"
	}
	return k.requireDescendant(rel, base, what)
}

// SetValue sets the value of attr. The previous value is replaced unless the
// attribute's type is multi-valued, in which case value joins the set.
func (k *KB) SetValue(attr, value types.NodeID) error {
	if err := k.requireRelation(attr, Attribute); err != nil {
		return err
	}
	if err := k.checkValue(attr, value); err != nil {
		return err
	}
	multi, err := k.IsMultiValued(attr)
	if err != nil {
		return err
	}
	if multi {
		return k.g.AddEdge(attr, Value, value)
	}
	return k.replaceEdge(attr, Value, value)
}

// SetOwner replaces the owner of rel.
func (k *KB) SetOwner(rel, owner types.NodeID) error {
	if err := k.requireRelation(rel, Relation); err != nil {
		return err
	}
	if err := k.checkOwner(rel, owner); err != nil {
		return err
	}
	return k.replaceEdge(rel, Owner, owner)
}

// OwnerOf returns the owner of rel.
func (k *KB) OwnerOf(rel types.NodeID) (types.NodeID, error) {
	return k.endpoint(rel, Owner)
}

// ValueOf returns the value of attr. For multi-valued attributes it returns
// the lowest value id; use ValuesOf for the full set.
func (k *KB) ValueOf(attr types.NodeID) (types.NodeID, error) {
	return k.endpoint(attr, Value)
}

func (k *KB) endpoint(rel, edgeType types.NodeID) (types.NodeID, error) {
	if err := k.exists(rel); err != nil {
		return 0, err
	}
	ids, err := k.g.OutgoingNodes(rel, edgeType)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, errors.Wrapf(types.ErrNotFound, "node %d has no %s", rel, k.Label(edgeType))
	}
	return ids[0], nil
}

// ValuesOf returns every value of attr.
func (k *KB) ValuesOf(attr types.NodeID) ([]types.NodeID, error) {
	if err := k.exists(attr); err != nil {
		return nil, err
	}
	return k.g.OutgoingNodes(attr, Value)
}

// RelationsOf returns the relations owned by node whose type descends from
// relType.
func (k *KB) RelationsOf(node, relType types.NodeID) ([]types.NodeID, error) {
	if err := k.existsAll(node, relType); err != nil {
		return nil, err
	}
	owned, err := k.g.IncomingNodes(node, Owner)
	if err != nil {
		return nil, err
	}
	var rels []types.NodeID
	for _, r := range owned {
		ok, err := k.HasAncestor(r, relType)
		if err != nil {
			return nil, err
		}
		if ok {
			rels = append(rels, r)
		}
	}
	return rels, nil
}

// HasRelation reports whether node owns a relation of relType.
func (k *KB) HasRelation(node, relType types.NodeID) (bool, error) {
	rels, err := k.RelationsOf(node, relType)
	if err != nil {
		return false, err
	}
	return len(rels) > 0, nil
}

// AttributeValues returns the values of every attribute of attrType owned
// by node, each value once.
func (k *KB) AttributeValues(node, attrType types.NodeID) ([]types.NodeID, error) {
	rels, err := k.RelationsOf(node, attrType)
	if err != nil {
		return nil, err
	}
	var values []types.NodeID
	for _, r := range rels {
		vs, err := k.g.OutgoingNodes(r, Value)
		if err != nil {
			return nil, err
		}
		for _, v := range vs {
			if !slices.Contains(values, v) {
				values = append(values, v)
			}
		}
	}
	return values, nil
}

// SetAttributeValue sets the value of node's attribute of attrType,
// creating the attribute if node has none. It returns the attribute.
func (k *KB) SetAttributeValue(node, attrType, value types.NodeID) (types.NodeID, error) {
	rels, err := k.RelationsOf(node, attrType)
	if err != nil {
		return 0, err
	}
	if len(rels) == 0 {
		return k.CreateAttributeOf(attrType, node, value)
	}
	if err := k.checkForm(attrType, node, value); err != nil {
		return 0, err
	}
	if err := k.SetValue(rels[0], value); err != nil {
		return 0, err
	}
	return rels[0], nil
}
