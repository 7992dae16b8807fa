package kb

import (
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/mesh-intelligence/kgraph/pkg/types"
)

// CreateStringConcept creates an individual of the string-concept archetype
// holding value.
func (k *KB) CreateStringConcept(value string) (types.NodeID, error) {
	return k.createData(StringConcept, value)
}

// CreateNumber creates an individual of the number archetype holding n.
func (k *KB) CreateNumber(n int64) (types.NodeID, error) {
	return k.createData(Number, strconv.FormatInt(n, 10))
}

func (k *KB) createData(archetype types.NodeID, value string) (types.NodeID, error) {
	return k.atomicID(func() (types.NodeID, error) {
		id, err := k.newIndividual(archetype)
		if err != nil {
			return 0, err
		}
		return id, k.g.SetNodeValue(id, value)
	})
}

// SetStringValue overwrites the value of a string concept.
func (k *KB) SetStringValue(id types.NodeID, value string) error {
	if err := k.requireData(id, StringConcept, "a string concept"); err != nil {
		return err
	}
	return k.g.SetNodeValue(id, value)
}

// StringValue returns the value of a string concept; ok is false when none
// was set.
func (k *KB) StringValue(id types.NodeID) (value string, ok bool, err error) {
	if err := k.requireData(id, StringConcept, "a string concept"); err != nil {
		return "", false, err
	}
	return k.g.NodeValue(id)
}

// SetNumberValue overwrites the value of a number.
func (k *KB) SetNumberValue(id types.NodeID, n int64) error {
	if err := k.requireData(id, Number, "a number"); err != nil {
		return err
	}
	return k.g.SetNodeValue(id, strconv.FormatInt(n, 10))
}

// NumberValue returns the value of a number; ok is false when none was set.
func (k *KB) NumberValue(id types.NodeID) (n int64, ok bool, err error) {
	if err := k.requireData(id, Number, "a number"); err != nil {
		return 0, false, err
	}
	raw, ok, err := k.g.NodeValue(id)
	if err != nil || !ok {
		return 0, false, err
	}
	n, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, errors.Wrapf(err, "number %d holds %q", id, raw)
	}
	return n, true, nil
}

// DataValue returns the raw value of any data node.
func (k *KB) DataValue(id types.NodeID) (value string, ok bool, err error) {
	if err := k.requireData(id, Data, "a data node"); err != nil {
		return "", false, err
	}
	return k.g.NodeValue(id)
}

func (k *KB) requireData(id, base types.NodeID, what string) error {
	if err := k.exists(id); err != nil {
		return err
	}
	return k.requireDescendant(id, base, what)
}
