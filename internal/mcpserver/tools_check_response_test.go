package mcpserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleCheckResponse(t *testing.T) {
	spec := opsInput{Operations: inlineOps(t)}

	t.Run("valid response", func(t *testing.T) {
		res, out, err := handleCheckResponse(context.Background(), nil, checkResponseInput{
			Spec:   spec,
			Method: "POST",
			Path:   "/users/42",
			Status: 201,
			Body:   `{"name":"Ada"}`,
		})
		require.NoError(t, err)
		assert.Nil(t, res)
		assert.True(t, out.Valid)
	})

	t.Run("route template accepted", func(t *testing.T) {
		_, out, err := handleCheckResponse(context.Background(), nil, checkResponseInput{
			Spec:   spec,
			Method: "POST",
			Path:   "/users/{id}",
			Status: 201,
			Body:   `{"name":"Ada"}`,
		})
		require.NoError(t, err)
		assert.True(t, out.Valid)
	})

	t.Run("invalid body reports violations", func(t *testing.T) {
		_, out, err := handleCheckResponse(context.Background(), nil, checkResponseInput{
			Spec:   spec,
			Method: "POST",
			Path:   "/users/42",
			Status: 201,
			Body:   `{}`,
		})
		require.NoError(t, err)
		assert.False(t, out.Valid)
		require.Len(t, out.Violations, 1)
		assert.Equal(t, "body.name", out.Violations[0].Path)
	})

	t.Run("undocumented status passes", func(t *testing.T) {
		_, out, err := handleCheckResponse(context.Background(), nil, checkResponseInput{
			Spec:   spec,
			Method: "POST",
			Path:   "/users/42",
			Status: 503,
			Body:   `oops`,
		})
		require.NoError(t, err)
		assert.True(t, out.Valid)
	})

	t.Run("status out of range", func(t *testing.T) {
		res, _, err := handleCheckResponse(context.Background(), nil, checkResponseInput{
			Spec:   spec,
			Method: "POST",
			Path:   "/users/42",
			Status: 42,
		})
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.True(t, res.IsError)
	})
}
