package kb

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kgraph/internal/memory"
	"github.com/mesh-intelligence/kgraph/pkg/types"
)

var errInjected = errors.New("injected failure")

const noType = ^types.NodeID(0)

// failingGraph fails the write matching edgeType or flag once skip matching
// writes have gone through.
type failingGraph struct {
	*memory.Graph
	edgeType types.NodeID
	flag     types.NodeID
	skip     int
	armed    bool
}

func (g *failingGraph) AddEdge(from, edgeType, to types.NodeID) error {
	if g.armed && edgeType == g.edgeType {
		if g.skip == 0 {
			return errInjected
		}
		g.skip--
	}
	return g.Graph.AddEdge(from, edgeType, to)
}

func (g *failingGraph) AddFlag(id, flag types.NodeID) error {
	if g.armed && flag == g.flag {
		if g.skip == 0 {
			return errInjected
		}
		g.skip--
	}
	return g.Graph.AddFlag(id, flag)
}

type snapshot struct {
	size  int
	edges []types.Edge
	dot   string
}

func takeSnapshot(t *testing.T, k *KB) snapshot {
	t.Helper()
	size, err := k.Size()
	require.NoError(t, err)
	edges, err := k.Graph().Edges()
	require.NoError(t, err)
	var b strings.Builder
	require.NoError(t, k.WriteDOT(&b))
	return snapshot{size: size, edges: edges, dot: b.String()}
}

// fixture is tao <- animal <- dog <- puppy plus an attribute dog -> animal.
type fixture struct {
	animal, dog, puppy, attr types.NodeID
}

func TestAtomicRollback(t *testing.T) {
	tests := []struct {
		name     string
		edgeType types.NodeID
		flag     types.NodeID
		skip     int
		op       func(k *KB, f fixture) error
	}{
		{
			name:     "create attribute fails on value",
			edgeType: Value,
			flag:     noType,
			op: func(k *KB, f fixture) error {
				_, err := k.CreateAttribute(f.puppy, f.animal)
				return err
			},
		},
		{
			name:     "create flag fails on owner",
			edgeType: Owner,
			flag:     noType,
			op: func(k *KB, f fixture) error {
				_, err := k.CreateFlag(f.dog)
				return err
			},
		},
		{
			name:     "create archetype fails on parent",
			edgeType: Inherits,
			flag:     noType,
			op: func(k *KB, f fixture) error {
				_, err := k.CreateArchetype(f.animal, "cat")
				return err
			},
		},
		{
			name:     "individuate fails on marker",
			edgeType: noType,
			flag:     IsIndividual,
			op: func(k *KB, f fixture) error {
				_, err := k.Individuate(f.dog, "rex")
				return err
			},
		},
		{
			name:     "add parent fails after removing the old parent",
			edgeType: Inherits,
			flag:     noType,
			op: func(k *KB, f fixture) error {
				return k.AddParent(f.puppy, Tao)
			},
		},
		{
			name:     "specific meta fails on the last link",
			edgeType: MetaForm,
			flag:     noType,
			skip:     3,
			op: func(k *KB, f fixture) error {
				_, err := k.SpecificMeta(f.puppy)
				return err
			},
		},
		{
			name:     "set value fails after removing the old value",
			edgeType: Value,
			flag:     noType,
			op: func(k *KB, f fixture) error {
				return k.SetValue(f.attr, f.dog)
			},
		},
		{
			name:     "set owner fails after removing the old owner",
			edgeType: Owner,
			flag:     noType,
			op: func(k *KB, f fixture) error {
				return k.SetOwner(f.attr, f.puppy)
			},
		},
		{
			name:     "default value fails on value",
			edgeType: Value,
			flag:     noType,
			op: func(k *KB, f fixture) error {
				return k.SetDefaultValue(f.attr, f.dog)
			},
		},
		{
			name:     "string value fails on marker",
			edgeType: noType,
			flag:     IsIndividual,
			op: func(k *KB, _ fixture) error {
				_, err := k.CreateStringConcept("hello")
				return err
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &failingGraph{Graph: memory.New(), edgeType: tt.edgeType, flag: tt.flag, skip: tt.skip}
			k, err := Initialize(g)
			require.NoError(t, err)
			var f fixture
			f.animal, err = k.CreateArchetype(Tao, "animal")
			require.NoError(t, err)
			f.dog, err = k.CreateArchetype(f.animal, "dog")
			require.NoError(t, err)
			f.puppy, err = k.CreateArchetype(f.dog, "puppy")
			require.NoError(t, err)
			f.attr, err = k.CreateAttribute(f.dog, f.animal)
			require.NoError(t, err)
			chain, err := k.AncestorsOf(f.puppy)
			require.NoError(t, err)

			before := takeSnapshot(t, k)
			g.armed = true
			err = tt.op(k, f)
			g.armed = false
			require.ErrorIs(t, err, errInjected)

			after := takeSnapshot(t, k)
			assert.Equal(t, before, after, "a failed operation leaves no trace")

			got, err := k.AncestorsOf(f.puppy)
			require.NoError(t, err)
			assert.Equal(t, chain, got)
			for _, n := range []types.NodeID{Tao, f.animal, f.dog, f.puppy} {
				ok, err := k.HasSpecificMeta(n)
				require.NoError(t, err)
				assert.False(t, ok)
			}

			require.NoError(t, tt.op(k, f), "the operation succeeds once the graph recovers")
		})
	}
}
