package graph

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kgraph/pkg/kb"
	"github.com/mesh-intelligence/kgraph/pkg/types"
)

func configs(t *testing.T) map[string]types.Config {
	return map[string]types.Config{
		types.BackendMemory: {Backend: types.BackendMemory},
		types.BackendSQLite: {Backend: types.BackendSQLite, DataDir: t.TempDir()},
		types.BackendBadger: {Backend: types.BackendBadger, InMemory: true},
	}
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name    string
		config  types.Config
		wantErr error
	}{
		{"empty backend", types.Config{}, types.ErrBackendEmpty},
		{"unknown backend", types.Config{Backend: "postgres"}, types.ErrBackendUnknown},
		{"unknown sync strategy", types.Config{Backend: types.BackendSQLite, SyncStrategy: "batch"}, types.ErrSyncStrategyUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.config, nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// TestGraphContract runs the same graph operations against every backend.
func TestGraphContract(t *testing.T) {
	for name, cfg := range configs(t) {
		t.Run(name, func(t *testing.T) {
			g, err := Open(cfg, nil)
			require.NoError(t, err)
			defer g.Detach()

			size, err := g.Size()
			require.NoError(t, err)
			assert.Zero(t, size)

			var ids []types.NodeID
			for i := 0; i < 5; i++ {
				id, err := g.AddNode()
				require.NoError(t, err)
				ids = append(ids, id)
			}
			assert.Equal(t, []types.NodeID{0, 1, 2, 3, 4}, ids)

			require.NoError(t, g.SetNodeName(1, "a"))
			require.NoError(t, g.SetNodeName(3, "a"))
			found, err := g.Lookup("a")
			require.NoError(t, err)
			assert.Equal(t, []types.NodeID{1, 3}, found)

			// A name that extends another across a NUL byte stays distinct.
			require.NoError(t, g.SetNodeName(2, "a\x00b"))
			found, err = g.Lookup("a")
			require.NoError(t, err)
			assert.Equal(t, []types.NodeID{1, 3}, found)
			found, err = g.Lookup("a\x00b")
			require.NoError(t, err)
			assert.Equal(t, []types.NodeID{2}, found)

			_, ok, err := g.NodeValue(0)
			require.NoError(t, err)
			assert.False(t, ok)
			require.NoError(t, g.SetNodeValue(0, "42"))
			require.NoError(t, g.SetNodeValue(0, "café"))
			value, ok, err := g.NodeValue(0)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "café", value)
			assert.ErrorIs(t, g.SetNodeValue(99, "x"), types.ErrNotFound)
			_, _, err = g.NodeValue(99)
			assert.ErrorIs(t, err, types.ErrNotFound)

			require.NoError(t, g.AddFlag(2, 4))
			ok, err = g.HasFlag(2, 4)
			require.NoError(t, err)
			assert.True(t, ok)

			require.NoError(t, g.AddEdge(4, 0, 2))
			require.NoError(t, g.AddEdge(4, 0, 1))
			require.NoError(t, g.AddEdge(4, 0, 1))
			require.NoError(t, g.AddEdge(3, 0, 1))
			out, err := g.OutgoingNodes(4, 0)
			require.NoError(t, err)
			assert.Equal(t, []types.NodeID{1, 2}, out)
			in, err := g.IncomingNodes(1, 0)
			require.NoError(t, err)
			assert.Equal(t, []types.NodeID{3, 4}, in)

			require.NoError(t, g.RemoveEdge(4, 0, 2))
			edges, err := g.Edges()
			require.NoError(t, err)
			assert.Equal(t, []types.Edge{{From: 3, Type: 0, To: 1}, {From: 4, Type: 0, To: 1}}, edges)

			require.NoError(t, g.Detach())
			_, err = g.Size()
			assert.ErrorIs(t, err, types.ErrDetached)
			assert.ErrorIs(t, g.Update(func() error { return nil }), types.ErrDetached)
		})
	}
}

func TestGraphUpdate(t *testing.T) {
	errBoom := errors.New("boom")
	for name, cfg := range configs(t) {
		t.Run(name, func(t *testing.T) {
			g, err := Open(cfg, nil)
			require.NoError(t, err)
			defer g.Detach()

			for i := 0; i < 3; i++ {
				_, err := g.AddNode()
				require.NoError(t, err)
			}
			require.NoError(t, g.SetNodeName(0, "keep"))
			require.NoError(t, g.AddEdge(0, 1, 2))

			err = g.Update(func() error {
				id, err := g.AddNode()
				require.NoError(t, err)
				assert.Equal(t, types.NodeID(3), id)
				require.NoError(t, g.SetNodeName(0, "renamed"))
				require.NoError(t, g.SetNodeName(3, "fresh"))
				require.NoError(t, g.SetNodeValue(1, "v"))
				require.NoError(t, g.AddFlag(1, 2))
				require.NoError(t, g.AddEdge(2, 1, 0))
				require.NoError(t, g.RemoveEdge(0, 1, 2))

				// Writes are visible inside the unit of work.
				found, err := g.Lookup("fresh")
				require.NoError(t, err)
				assert.Equal(t, []types.NodeID{3}, found)

				// Nested calls join the enclosing unit.
				return g.Update(func() error { return errBoom })
			})
			assert.ErrorIs(t, err, errBoom)

			size, err := g.Size()
			require.NoError(t, err)
			assert.Equal(t, 3, size)
			nodeName, ok, err := g.NodeName(0)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "keep", nodeName)
			found, err := g.Lookup("renamed")
			require.NoError(t, err)
			assert.Empty(t, found)
			_, ok, err = g.NodeValue(1)
			require.NoError(t, err)
			assert.False(t, ok)
			ok, err = g.HasFlag(1, 2)
			require.NoError(t, err)
			assert.False(t, ok)
			edges, err := g.Edges()
			require.NoError(t, err)
			assert.Equal(t, []types.Edge{{From: 0, Type: 1, To: 2}}, edges)

			require.NoError(t, g.Update(func() error {
				if err := g.SetNodeName(1, "one"); err != nil {
					return err
				}
				return g.AddEdge(1, 1, 2)
			}))
			found, err = g.Lookup("one")
			require.NoError(t, err)
			assert.Equal(t, []types.NodeID{1}, found)
			ok, err = g.HasEdge(1, 1, 2)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

// TestKBOverBackends checks that the knowledge base behaves identically on
// every backend.
func TestKBOverBackends(t *testing.T) {
	var dots []string
	for _, name := range []string{types.BackendMemory, types.BackendSQLite, types.BackendBadger} {
		cfg := configs(t)[name]
		t.Run(name, func(t *testing.T) {
			g, err := Open(cfg, nil)
			require.NoError(t, err)
			defer g.Detach()

			k, err := kb.Initialize(g)
			require.NoError(t, err)

			script, err := k.CreateArchetype(kb.Tao, "script")
			require.NoError(t, err)
			a, err := k.CreateArchetype(script, "a")
			require.NoError(t, err)
			b, err := k.CreateArchetype(script, "b")
			require.NoError(t, err)
			require.NoError(t, k.MarkIndividual(a))

			children, err := k.ChildArchetypes(script)
			require.NoError(t, err)
			assert.Equal(t, []types.NodeID{b}, children)

			chain, err := k.AncestorsOf(a)
			require.NoError(t, err)
			assert.Equal(t, []types.NodeID{a, script, kb.Tao}, chain)

			_, err = k.CreateAttributeOf(kb.Owner, b, a)
			assert.ErrorIs(t, err, types.ErrTypeConstraintViolation)

			meta, err := k.SpecificMeta(script)
			require.NoError(t, err)
			mesa, err := k.MesaArchetype(meta)
			require.NoError(t, err)
			assert.Equal(t, script, mesa)

			var buf bytes.Buffer
			require.NoError(t, k.WriteDOT(&buf))
			dots = append(dots, buf.String())
		})
	}
	require.Len(t, dots, 3)
	assert.Equal(t, dots[0], dots[1])
	assert.Equal(t, dots[0], dots[2])
}

func TestKBReopensPersistentGraph(t *testing.T) {
	tests := []types.Config{
		{Backend: types.BackendSQLite, DataDir: t.TempDir()},
		{Backend: types.BackendSQLite, DataDir: t.TempDir(), SyncStrategy: types.SyncOnClose},
		{Backend: types.BackendBadger, DataDir: t.TempDir()},
	}
	for _, cfg := range tests {
		t.Run(cfg.Backend+"/"+cfg.GetSyncStrategy(), func(t *testing.T) {
			g, err := Open(cfg, nil)
			require.NoError(t, err)
			k, err := kb.Initialize(g)
			require.NoError(t, err)
			color, err := k.CreateArchetype(kb.Attribute, "color")
			require.NoError(t, err)
			require.NoError(t, k.MarkMultiValued(color))
			require.NoError(t, g.Detach())

			g, err = Open(cfg, nil)
			require.NoError(t, err)
			defer g.Detach()
			k, err = kb.Initialize(g)
			require.NoError(t, err)

			id, err := k.FindUnique("color")
			require.NoError(t, err)
			assert.Equal(t, color, id)
			multi, err := k.IsMultiValued(id)
			require.NoError(t, err)
			assert.True(t, multi)
		})
	}
}
