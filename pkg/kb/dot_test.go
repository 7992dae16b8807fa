package kb

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDOT(t *testing.T) {
	k := New()
	script, err := k.CreateArchetype(Tao, "script")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, k.WriteDOT(&buf))
	out := buf.String()

	assert.Contains(t, out, "digraph kgraph {")
	assert.Contains(t, out, `n0 [label="tao"];`)
	assert.Contains(t, out, `n0 -> n0 [label="inherits"];`)
	assert.Contains(t, out, `n2 -> n5 [label="has-attribute"];`)
	assert.Contains(t, out, "n"+script.String()+` -> n0 [label="inherits"];`)
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("}\n")))
}

func TestDotQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"tao", `"tao"`},
		{"café", `"café"`},
		{"日本", `"日本"`},
		{`a"b`, `"a\"b"`},
		{`a\b`, `"a\\b"`},
		{"tab\there", "\"tab\there\""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, dotQuote(tt.in), tt.in)
	}
}

func TestWriteDOT_UTF8Labels(t *testing.T) {
	k := New()
	id, err := k.CreateArchetype(Tao, `café "noir"`)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, k.WriteDOT(&buf))
	assert.Contains(t, buf.String(), "n"+id.String()+` [label="café \"noir\""];`)
	assert.NotContains(t, buf.String(), `\u00e9`)
}
