package kb

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kgraph/pkg/types"
)

func TestDefaultValue(t *testing.T) {
	k := New()
	color, err := k.CreateArchetype(Attribute, "color")
	require.NoError(t, err)
	tint, err := k.CreateArchetype(color, "tint")
	require.NoError(t, err)
	red, err := k.CreateNode("red")
	require.NoError(t, err)
	blue, err := k.CreateNode("blue")
	require.NoError(t, err)

	_, ok, err := k.DefaultValueOf(tint)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, k.SetDefaultValue(color, red))
	got, ok, err := k.DefaultValueOf(tint)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, red, got, "inherited from color")

	require.NoError(t, k.SetDefaultValue(tint, blue))
	require.NoError(t, k.SetDefaultValue(tint, red))
	got, _, err = k.DefaultValueOf(tint)
	require.NoError(t, err)
	assert.Equal(t, red, got, "set replaces")
	rels, err := k.RelationsOf(tint, DefaultValue)
	require.NoError(t, err)
	assert.Len(t, rels, 1)

	assert.ErrorIs(t, k.SetDefaultValue(red, blue), types.ErrTypeConstraintViolation)
}

func TestAttributeFormArchetype(t *testing.T) {
	k := New()
	vehicle, err := k.CreateArchetype(Tao, "vehicle")
	require.NoError(t, err)
	car, err := k.CreateArchetype(vehicle, "car")
	require.NoError(t, err)
	part, err := k.CreateArchetype(Attribute, "part")
	require.NoError(t, err)
	partKind, err := k.CreateArchetype(Attribute, "part-kind")
	require.NoError(t, err)
	wheel, err := k.CreateArchetype(Tao, "wheel")
	require.NoError(t, err)

	_, ok, err := k.AttributeFormArchetype(car, part)
	require.NoError(t, err)
	assert.False(t, ok)

	err = k.SetAttributeFormArchetype(vehicle, part, wheel)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.NotEmpty(t, errors.FlattenHints(err))

	require.NoError(t, k.SetAttributeFormOverride(part, partKind))
	override, ok, err := k.AttributeFormOverride(part)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, partKind, override)

	_, ok, err = k.AttributeFormArchetype(car, part)
	require.NoError(t, err)
	assert.False(t, ok, "override declared, form not yet set")

	require.NoError(t, k.SetAttributeFormArchetype(vehicle, part, wheel))
	form, ok, err := k.AttributeFormArchetype(car, part)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, wheel, form, "inherited from vehicle")

	assert.ErrorIs(t, k.SetAttributeFormOverride(part, wheel), types.ErrTypeConstraintViolation)
	assert.ErrorIs(t, k.SetAttributeFormOverride(wheel, partKind), types.ErrTypeConstraintViolation)
}

func TestAttributeFormArchetype_ConstrainsValues(t *testing.T) {
	k := New()
	vehicle, err := k.CreateArchetype(Tao, "vehicle")
	require.NoError(t, err)
	part, err := k.CreateArchetype(Attribute, "part")
	require.NoError(t, err)
	partKind, err := k.CreateArchetype(Attribute, "part-kind")
	require.NoError(t, err)
	wheel, err := k.CreateArchetype(Tao, "wheel")
	require.NoError(t, err)
	require.NoError(t, k.SetAttributeFormOverride(part, partKind))
	require.NoError(t, k.SetAttributeFormArchetype(vehicle, part, wheel))

	bike, err := k.Individuate(vehicle, "bike")
	require.NoError(t, err)
	front, err := k.Individuate(wheel, "front")
	require.NoError(t, err)
	rock, err := k.CreateNode("rock")
	require.NoError(t, err)

	_, err = k.CreateAttributeOf(part, bike, front)
	assert.NoError(t, err)

	size, err := k.Size()
	require.NoError(t, err)
	_, err = k.CreateAttributeOf(part, bike, rock)
	assert.ErrorIs(t, err, types.ErrTypeConstraintViolation)
	after, err := k.Size()
	require.NoError(t, err)
	assert.Equal(t, size, after)

	_, err = k.SetAttributeValue(bike, part, rock)
	assert.ErrorIs(t, err, types.ErrTypeConstraintViolation, "replacing a value is checked too")

	_, err = k.CreateAttributeOf(part, rock, rock)
	assert.NoError(t, err, "owners outside vehicle are unconstrained")
}
