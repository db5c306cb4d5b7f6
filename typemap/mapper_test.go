package typemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routespec/routespec/diag"
	"github.com/routespec/routespec/schema"
)

func TestMapPrimitives(t *testing.T) {
	tests := []struct {
		name string
		in   *TypeDesc
		want schema.Kind
	}{
		{name: "string", in: String(), want: schema.KindString},
		{name: "boolean", in: Boolean(), want: schema.KindBoolean},
		{name: "integer", in: Integer(), want: schema.KindNumber},
		{name: "float", in: Float(), want: schema.KindNumber},
		{name: "null", in: Null(), want: schema.KindNull},
		{name: "nil degrades to unknown", in: nil, want: schema.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, diags := MapType(tt.in)
			require.NotNil(t, node)
			assert.Equal(t, tt.want, node.Kind)
			assert.Empty(t, diags)
		})
	}

	t.Run("integer restriction carried", func(t *testing.T) {
		node, _ := MapType(Integer())
		assert.True(t, node.IsInteger)
		node, _ = MapType(Float())
		assert.False(t, node.IsInteger)
	})

	t.Run("format hint carried on strings", func(t *testing.T) {
		in := String()
		in.Format = "date-time"
		node, _ := MapType(in)
		assert.Equal(t, "date-time", node.Format)
	})
}

func TestMapStruct(t *testing.T) {
	in := Struct("CreateUser",
		Member{Name: "name", Type: String()},
		Member{Name: "age", Type: Integer(), Optional: true},
		Member{Name: "__internal", Type: String()},
		Member{Name: "blob", Type: nil},
	)

	node, diags := MapType(in)
	require.Equal(t, schema.KindObject, node.Kind)
	assert.Empty(t, diags)

	assert.Equal(t, []string{"name", "blob"}, node.Required)
	assert.Equal(t, []string{"name", "age", "blob"}, node.Properties.Keys())
	assert.Nil(t, node.Property("__internal"))
	assert.Equal(t, schema.KindUnknown, node.Property("blob").Kind)
}

func TestMapArray(t *testing.T) {
	node, _ := MapType(Array(String()))
	require.Equal(t, schema.KindArray, node.Kind)
	assert.Equal(t, schema.KindString, node.Items.Kind)

	node, _ = MapType(Array(nil))
	require.Equal(t, schema.KindArray, node.Kind)
	assert.Equal(t, schema.KindUnknown, node.Items.Kind)
}

func TestMapUnion(t *testing.T) {
	t.Run("homogeneous string literals collapse to enum", func(t *testing.T) {
		node, diags := MapType(Union(Literal("active"), Literal("inactive")))
		require.Equal(t, schema.KindEnum, node.Kind)
		assert.Equal(t, []any{"active", "inactive"}, node.Values)
		assert.Empty(t, diags)
	})

	t.Run("homogeneous numeric literals collapse to enum", func(t *testing.T) {
		node, _ := MapType(Union(Literal(int64(1)), Literal(int64(2))))
		require.Equal(t, schema.KindEnum, node.Kind)
		assert.Equal(t, []any{int64(1), int64(2)}, node.Values)
	})

	t.Run("mixed literal categories stay a union", func(t *testing.T) {
		node, _ := MapType(Union(Literal("a"), Literal(int64(1))))
		require.Equal(t, schema.KindUnion, node.Kind)
		assert.Len(t, node.Variants, 2)
	})

	t.Run("non-literal branches stay a union", func(t *testing.T) {
		node, _ := MapType(Union(String(), Null()))
		require.Equal(t, schema.KindUnion, node.Kind)
		assert.Equal(t, schema.KindString, node.Variants[0].Kind)
		assert.Equal(t, schema.KindNull, node.Variants[1].Kind)
	})

	t.Run("empty union degrades with warning", func(t *testing.T) {
		node, diags := MapType(Union())
		assert.Equal(t, schema.KindUnknown, node.Kind)
		require.Len(t, diags, 1)
		assert.Equal(t, diag.SeverityWarning, diags[0].Severity)
	})
}

func TestMapDegradations(t *testing.T) {
	t.Run("map becomes open object silently", func(t *testing.T) {
		node, diags := MapType(Map(String()))
		assert.Equal(t, schema.KindObject, node.Kind)
		assert.Empty(t, diags)
	})

	t.Run("any becomes open object with info", func(t *testing.T) {
		node, diags := MapType(Any())
		assert.Equal(t, schema.KindObject, node.Kind)
		require.Len(t, diags, 1)
		assert.Equal(t, diag.SeverityInfo, diags[0].Severity)
	})

	t.Run("invalid becomes open object with warning", func(t *testing.T) {
		node, diags := MapType(Invalid())
		assert.Equal(t, schema.KindObject, node.Kind)
		require.Len(t, diags, 1)
		assert.Equal(t, diag.SeverityWarning, diags[0].Severity)
	})

	t.Run("degradation inside member names the path", func(t *testing.T) {
		in := Struct("Payload", Member{Name: "meta", Type: Invalid()})
		_, diags := MapType(in)
		require.Len(t, diags, 1)
		assert.Contains(t, diags[0].Location, "meta")
	})
}

func TestMapRef(t *testing.T) {
	in := Struct("Node",
		Member{Name: "value", Type: String()},
		Member{Name: "next", Type: Ref("Node"), Optional: true},
	)

	node, _ := MapType(in)
	next := node.Property("next")
	require.NotNil(t, next)
	assert.Equal(t, schema.KindReference, next.Kind)
	assert.Equal(t, "Node", next.Target)
}

func TestMapLiteral(t *testing.T) {
	node, _ := MapType(Literal("fixed"))
	require.Equal(t, schema.KindEnum, node.Kind)
	assert.Equal(t, []any{"fixed"}, node.Values)
}
