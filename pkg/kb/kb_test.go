package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kgraph/internal/memory"
	"github.com/mesh-intelligence/kgraph/pkg/types"
)

func TestInitialize_SeedsBootstrap(t *testing.T) {
	k := New()

	size, err := k.Size()
	require.NoError(t, err)
	assert.Equal(t, int(MaxBootstrapID)+1, size)

	tests := []struct {
		id     types.NodeID
		name   string
		parent types.NodeID
	}{
		{Tao, "tao", Tao},
		{Relation, "relation", Tao},
		{Owner, "owner", Attribute},
		{HasAttribute, "has-attribute", HasProperty},
		{AttributeArchetype, "attribute-archetype", Archetype},
		{IsIndividual, "is-individual", Flag},
		{Data, "data", Form},
		{StringConcept, "string-concept", Data},
		{Number, "number", Data},
		{DefaultValue, "default-value", Attribute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := k.FindUnique(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.id, id)

			parent, err := k.ParentOf(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.parent, parent)
		})
	}

	wiring := []types.Edge{
		{From: Relation, Type: HasAttribute, To: Owner},
		{From: Relation, Type: OwnerArchetype, To: Tao},
		{From: Relation, Type: HasFlag, To: Nonhereditary},
		{From: Attribute, Type: HasAttribute, To: Value},
		{From: Attribute, Type: ValueArchetype, To: Tao},
		{From: Owner, Type: OwnerArchetype, To: Relation},
		{From: Value, Type: OwnerArchetype, To: Attribute},
		{From: HasProperty, Type: ValueArchetype, To: Relation},
		{From: OwnerArchetype, Type: OwnerArchetype, To: Relation},
		{From: ValueArchetype, Type: OwnerArchetype, To: Attribute},
		{From: Nonhereditary, Type: OwnerArchetype, To: Relation},
		{From: DefaultValue, Type: OwnerArchetype, To: Tao},
		{From: DefaultValue, Type: ValueArchetype, To: Tao},
	}
	g := k.Graph()
	for _, e := range wiring {
		ok, err := g.HasEdge(e.From, e.Type, e.To)
		require.NoError(t, err)
		assert.True(t, ok, "%s -%s-> %s", k.Label(e.From), k.Label(e.Type), k.Label(e.To))
	}

	edges, err := g.Edges()
	require.NoError(t, err)
	assert.Len(t, edges, len(bootstrapNodes)+len(wiring), "one inherits edge per node plus the wiring")

	flags, err := k.EffectiveFlagTypes(Owner)
	require.NoError(t, err)
	assert.Equal(t, []types.NodeID{Nonhereditary}, flags, "relations inherit the nonhereditary flag type")
}

func TestInitialize_ReopensSeededGraph(t *testing.T) {
	g := memory.New()
	k, err := Initialize(g)
	require.NoError(t, err)
	script, err := k.CreateArchetype(Tao, "script")
	require.NoError(t, err)

	again, err := Initialize(g)
	require.NoError(t, err)
	id, err := again.FindUnique("script")
	require.NoError(t, err)
	assert.Equal(t, script, id)

	size, err := again.Size()
	require.NoError(t, err)
	assert.Equal(t, int(MaxBootstrapID)+2, size, "reopen must not re-seed")
}

func TestInitialize_RejectsForeignGraph(t *testing.T) {
	tests := []struct {
		name  string
		setup func(g *memory.Graph)
	}{
		{
			name: "too few nodes",
			setup: func(g *memory.Graph) {
				_, _ = g.AddNode()
			},
		},
		{
			name: "wrong names",
			setup: func(g *memory.Graph) {
				for i := 0; i <= int(MaxBootstrapID); i++ {
					id, _ := g.AddNode()
					_ = g.SetNodeName(id, "other")
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := memory.New()
			tt.setup(g)
			_, err := Initialize(g)
			assert.ErrorIs(t, err, types.ErrBootstrapMismatch)
		})
	}
}

func TestInitialize_DetachedGraph(t *testing.T) {
	g := memory.New()
	require.NoError(t, g.Detach())
	_, err := Initialize(g)
	assert.ErrorIs(t, err, types.ErrDetached)
}

func TestReset(t *testing.T) {
	g := memory.New()
	k, err := Initialize(g)
	require.NoError(t, err)
	_, err = k.CreateArchetype(Tao, "script")
	require.NoError(t, err)

	require.NoError(t, k.Reset())
	assert.NotSame(t, g, k.Graph())

	kept, err := g.Lookup("script")
	require.NoError(t, err)
	assert.Len(t, kept, 1, "the previous graph keeps its content")
	size, err := g.Size()
	require.NoError(t, err)
	assert.Equal(t, int(MaxBootstrapID)+2, size)

	ids, err := k.FindByName("script")
	require.NoError(t, err)
	assert.Empty(t, ids)
	size, err = k.Size()
	require.NoError(t, err)
	assert.Equal(t, int(MaxBootstrapID)+1, size)
}

func TestBootstrapName(t *testing.T) {
	name, ok := BootstrapName(MetaForm)
	assert.True(t, ok)
	assert.Equal(t, "meta-form", name)

	_, ok = BootstrapName(MaxBootstrapID + 1)
	assert.False(t, ok)
}

func TestCacheDisabled(t *testing.T) {
	k := New(WithCacheSize(0))
	a, err := k.CreateArchetype(Tao, "a")
	require.NoError(t, err)
	b, err := k.CreateArchetype(a, "b")
	require.NoError(t, err)

	chain, err := k.AncestorsOf(b)
	require.NoError(t, err)
	assert.Equal(t, []types.NodeID{b, a, Tao}, chain)
}
