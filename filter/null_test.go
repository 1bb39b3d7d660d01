package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("equal splits into OR", func(t *testing.T) {
		in := leaf("region", "=", "EU", NullSentinel, "US")
		out := Normalize(in)

		c, ok := out.(*Composite)
		require.True(t, ok)
		assert.Equal(t, Or, c.Type)
		require.Len(t, c.Children(), 2)
		assert.Equal(t, leaf("region", "=", "EU", "US"), c.Nodes[0])
		assert.Equal(t, leaf("region", "=", NullSentinel), c.Nodes[1])
	})

	t.Run("not equal splits into AND", func(t *testing.T) {
		c, ok := Normalize(leaf("region", "ne", NullSentinel, "EU")).(*Composite)
		require.True(t, ok)
		assert.Equal(t, And, c.Type)
		assert.Equal(t, leaf("region", "ne", "EU"), c.Nodes[0])
	})

	t.Run("input is not modified", func(t *testing.T) {
		in := leaf("region", "=", "EU", NullSentinel)
		tree := &Composite{Type: And, Nodes: []Node{in}}
		out := Normalize(tree)

		assert.Equal(t, []string{"EU", NullSentinel}, in.Values)
		assert.Same(t, in, tree.Nodes[0])
		assert.NotSame(t, tree, out)
		_, split := out.(*Composite).Nodes[0].(*Composite)
		assert.True(t, split)
	})

	unchanged := []struct {
		name string
		node *Dimension
	}{
		{"no sentinel", leaf("region", "=", "EU")},
		{"sentinel only", leaf("region", "=", NullSentinel)},
		{"range operator", leaf("qty", "[a,b]", NullSentinel, "5")},
		{"unknown operator", leaf("qty", "~", NullSentinel, "5")},
		{"group key", leaf("region", "")},
	}
	for _, tt := range unchanged {
		t.Run(tt.name, func(t *testing.T) {
			out := Normalize(tt.node)
			assert.Equal(t, tt.node, out)
			assert.NotSame(t, tt.node, out)
		})
	}

	assert.Nil(t, NormalizeAll(nil))
	assert.Nil(t, Normalize(nil))
}

func TestParseOperator(t *testing.T) {
	for in, want := range map[string]Operator{
		"=": OpEqual, "EQ": OpEqual, "==": OpEqual,
		"≠": OpNotEqual, "!=": OpNotEqual, "<>": OpNotEqual, "ne": OpNotEqual,
		">=": OpGreaterOrEqual, "≤": OpLessOrEqual,
		"( a , b ]": OpOpenClosed, "[a,b)": OpClosedOpen,
	} {
		got, err := ParseOperator(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseOperator("like")
	require.Error(t, err)
	_, err = ParseOperator("")
	require.Error(t, err)
}
