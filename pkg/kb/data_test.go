package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kgraph/pkg/types"
)

func TestStringConcept(t *testing.T) {
	k := New()
	id, err := k.CreateStringConcept("hello")
	require.NoError(t, err)

	value, ok, err := k.StringValue(id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", value)

	individual, err := k.IsIndividual(id)
	require.NoError(t, err)
	assert.True(t, individual)

	require.NoError(t, k.SetStringValue(id, "wörld"))
	value, _, err = k.StringValue(id)
	require.NoError(t, err)
	assert.Equal(t, "wörld", value)

	raw, ok, err := k.DataValue(id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "wörld", raw)
}

func TestStringConcept_Unset(t *testing.T) {
	k := New()
	email, err := k.CreateArchetype(StringConcept, "email")
	require.NoError(t, err)
	addr, err := k.Individuate(email, "")
	require.NoError(t, err)

	_, ok, err := k.StringValue(addr)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, k.SetStringValue(addr, "a@b.c"), "sub-archetypes hold strings too")
	value, ok, err := k.StringValue(addr)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a@b.c", value)
}

func TestNumber(t *testing.T) {
	k := New()
	id, err := k.CreateNumber(-42)
	require.NoError(t, err)

	n, ok, err := k.NumberValue(id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(-42), n)

	require.NoError(t, k.SetNumberValue(id, 7))
	n, _, err = k.NumberValue(id)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	parent, err := k.ParentOf(id)
	require.NoError(t, err)
	assert.Equal(t, Number, parent)
}

func TestDataValue_WrongArchetype(t *testing.T) {
	k := New()
	s, err := k.CreateStringConcept("x")
	require.NoError(t, err)
	n, err := k.CreateNumber(1)
	require.NoError(t, err)
	rock, err := k.CreateNode("rock")
	require.NoError(t, err)

	_, _, err = k.NumberValue(s)
	assert.ErrorIs(t, err, types.ErrTypeConstraintViolation)
	assert.ErrorIs(t, k.SetNumberValue(s, 1), types.ErrTypeConstraintViolation)
	assert.ErrorIs(t, k.SetStringValue(n, "1"), types.ErrTypeConstraintViolation)
	_, _, err = k.DataValue(rock)
	assert.ErrorIs(t, err, types.ErrTypeConstraintViolation)
	_, _, err = k.StringValue(9999)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestNumberValue_Corrupt(t *testing.T) {
	k := New()
	id, err := k.CreateNumber(1)
	require.NoError(t, err)
	require.NoError(t, k.Graph().SetNodeValue(id, "one"))

	_, _, err = k.NumberValue(id)
	assert.Error(t, err)
}
