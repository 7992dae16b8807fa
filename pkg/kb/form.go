package kb

import (
	"github.com/cockroachdb/errors"

	"github.com/mesh-intelligence/kgraph/pkg/types"
)

// SetDefaultValue records value as the default of attributes of attrType.
// The default is itself an attribute owned by attrType.
func (k *KB) SetDefaultValue(attrType, value types.NodeID) error {
	if err := k.requireRelation(attrType, Attribute); err != nil {
		return err
	}
	_, err := k.SetAttributeValue(attrType, DefaultValue, value)
	return err
}

// DefaultValueOf returns the default recorded on attrType or, failing that,
// the closest one on its chain.
func (k *KB) DefaultValueOf(attrType types.NodeID) (types.NodeID, bool, error) {
	chain, err := k.AncestorsOf(attrType)
	if err != nil {
		return 0, false, err
	}
	for _, anc := range chain {
		values, err := k.AttributeValues(anc, DefaultValue)
		if err != nil {
			return 0, false, err
		}
		if len(values) > 0 {
			return values[0], true, nil
		}
	}
	return 0, false, nil
}

// SetAttributeFormOverride names override as the attribute through which
// archetypes declare the form of attrType's values.
func (k *KB) SetAttributeFormOverride(attrType, override types.NodeID) error {
	if err := k.existsAll(attrType, override); err != nil {
		return err
	}
	if err := k.requireDescendant(attrType, Attribute, "an attribute"); err != nil {
		return err
	}
	if err := k.requireDescendant(override, Attribute, "an attribute"); err != nil {
		return err
	}
	return k.replaceEdge(attrType, AttributeArchetype, override)
}

// AttributeFormOverride returns the override declared on attrType or its
// chain.
func (k *KB) AttributeFormOverride(attrType types.NodeID) (types.NodeID, bool, error) {
	return k.closest(attrType, AttributeArchetype)
}

// SetAttributeFormArchetype declares that attributes of attrType owned by
// a, or by a's descendants, take values descending from form. attrType must
// carry a form override.
func (k *KB) SetAttributeFormArchetype(a, attrType, form types.NodeID) error {
	if err := k.existsAll(a, attrType, form); err != nil {
		return err
	}
	override, ok, err := k.AttributeFormOverride(attrType)
	if err != nil {
		return err
	}
	if !ok {
		return errors.WithHint(
			errors.Wrapf(types.ErrNotFound, "attribute %s has no form override", k.Label(attrType)),
			"declare one with SetAttributeFormOverride")
	}
	return k.replaceEdge(a, override, form)
}

// AttributeFormArchetype returns the form declared for attrType's values on
// a or its chain. ok is false when attrType has no override or nothing on
// the chain sets it.
func (k *KB) AttributeFormArchetype(a, attrType types.NodeID) (types.NodeID, bool, error) {
	override, ok, err := k.AttributeFormOverride(attrType)
	if err != nil || !ok {
		return 0, false, err
	}
	return k.closest(a, override)
}

// closest returns the first edgeType target found walking a's chain.
func (k *KB) closest(a, edgeType types.NodeID) (types.NodeID, bool, error) {
	chain, err := k.AncestorsOf(a)
	if err != nil {
		return 0, false, err
	}
	for _, anc := range chain {
		ids, err := k.g.OutgoingNodes(anc, edgeType)
		if err != nil {
			return 0, false, err
		}
		if len(ids) > 0 {
			return ids[0], true, nil
		}
	}
	return 0, false, nil
}
