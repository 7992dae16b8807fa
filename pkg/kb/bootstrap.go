package kb

import (
	"github.com/cockroachdb/errors"

	"github.com/mesh-intelligence/kgraph/pkg/types"
)

// Bootstrap archetypes. Every graph opened by Initialize holds these at
// fixed ids; application nodes start after MaxBootstrapID.
const (
	Tao types.NodeID = iota
	Form
	Relation
	Flag
	Attribute
	Owner
	Value
	Inherits
	HasProperty
	HasFlag
	HasAttribute
	OwnerArchetype
	ValueArchetype
	Archetype
	AttributeArchetype
	MetaForm
	Nonhereditary
	Meta
	MultiValued
	IsIndividual
	Data
	StringConcept
	Number
	DefaultValue

	MaxBootstrapID = DefaultValue
)

var bootstrapNodes = []struct {
	id     types.NodeID
	name   string
	parent types.NodeID
}{
	{Tao, "tao", Tao},
	{Form, "form", Tao},
	{Relation, "relation", Tao},
	{Flag, "flag", Relation},
	{Attribute, "attribute", Relation},
	{Owner, "owner", Attribute},
	{Value, "value", Attribute},
	{Inherits, "inherits", Attribute},
	{HasProperty, "has-property", Attribute},
	{HasFlag, "has-flag", HasProperty},
	{HasAttribute, "has-attribute", HasProperty},
	{OwnerArchetype, "owner-archetype", Attribute},
	{ValueArchetype, "value-archetype", Attribute},
	{Archetype, "archetype", Tao},
	{AttributeArchetype, "attribute-archetype", Archetype},
	{MetaForm, "meta-form", Attribute},
	{Nonhereditary, "nonhereditary", Flag},
	{Meta, "meta", Flag},
	{MultiValued, "multi-valued", Flag},
	{IsIndividual, "is-individual", Flag},
	{Data, "data", Form},
	{StringConcept, "string-concept", Data},
	{Number, "number", Data},
	{DefaultValue, "default-value", Attribute},
}

// bootstrapEdges declares the properties and constraints of the bootstrap
// relations themselves.
var bootstrapEdges = []types.Edge{
	{From: Relation, Type: HasAttribute, To: Owner},
	{From: Relation, Type: OwnerArchetype, To: Tao},
	{From: Attribute, Type: HasAttribute, To: Value},
	{From: Attribute, Type: ValueArchetype, To: Tao},
	{From: Owner, Type: OwnerArchetype, To: Relation},
	{From: Value, Type: OwnerArchetype, To: Attribute},
	{From: HasProperty, Type: ValueArchetype, To: Relation},
	{From: OwnerArchetype, Type: OwnerArchetype, To: Relation},
	{From: ValueArchetype, Type: OwnerArchetype, To: Attribute},
	{From: Nonhereditary, Type: OwnerArchetype, To: Relation},
	{From: Relation, Type: HasFlag, To: Nonhereditary},
	{From: DefaultValue, Type: OwnerArchetype, To: Tao},
	{From: DefaultValue, Type: ValueArchetype, To: Tao},
}

// BootstrapName returns the name of a bootstrap archetype.
func BootstrapName(id types.NodeID) (string, bool) {
	if id > MaxBootstrapID {
		return "", false
	}
	return bootstrapNodes[id].name, true
}

func (k *KB) seed() error {
	return k.atomic(k.seedNodes)
}

func (k *KB) seedNodes() error {
	for _, b := range bootstrapNodes {
		id, err := k.g.AddNode()
		if err != nil {
			return errors.Wrapf(err, "seeding %s", b.name)
		}
		if id != b.id {
			return errors.Wrapf(types.ErrBootstrapMismatch, "%s allocated as %d, want %d", b.name, id, b.id)
		}
		if err := k.g.SetNodeName(id, b.name); err != nil {
			return errors.Wrapf(err, "naming %s", b.name)
		}
		if err := k.g.AddEdge(id, Inherits, b.parent); err != nil {
			return errors.Wrapf(err, "seeding parent of %s", b.name)
		}
	}
	for _, e := range bootstrapEdges {
		if err := k.g.AddEdge(e.From, e.Type, e.To); err != nil {
			return errors.Wrapf(err, "seeding edge %d-%d->%d", e.From, e.Type, e.To)
		}
	}
	return nil
}

func (k *KB) verify(size int) error {
	if size <= int(MaxBootstrapID) {
		return errors.Wrapf(types.ErrBootstrapMismatch, "graph has %d nodes", size)
	}
	for _, b := range bootstrapNodes {
		name, ok, err := k.g.NodeName(b.id)
		if err != nil {
			return errors.Wrapf(err, "reading node %d", b.id)
		}
		if !ok || name != b.name {
			return errors.WithHint(
				errors.Wrapf(types.ErrBootstrapMismatch, "node %d is %q, want %q", b.id, name, b.name),
				"the graph was created by another tool or an incompatible kgraph version")
		}
	}
	return nil
}
