package httpvalidator

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routespec/routespec/descriptor"
	"github.com/routespec/routespec/schema"
	"github.com/routespec/routespec/synth"
)

func createUserBody() *schema.Node {
	email := schema.String()
	email.Format = "email"
	body := schema.Object()
	body.AddProperty("name", schema.String(), true)
	body.AddProperty("email", email, false)
	return body
}

func testOps() synth.PathOperations {
	keyMin := 8
	apiKey := &schema.Node{Kind: schema.KindString, MinLength: &keyMin}

	post := descriptor.NewBuilder().
		Summary("Create a user").
		PathParam("id", schema.Number(true)).
		QueryParam("limit", schema.Number(true), false).
		QueryParam("verbose", schema.Boolean(), false).
		HeaderParam("X-Api-Key", apiKey, true).
		RequestBody(createUserBody(), true).
		Response("201", createUserBody()).
		Operation()

	get := descriptor.NewBuilder().
		Response("200", schema.Object()).
		Operation()

	return synth.PathOperations{
		"/users/{id}": {"POST": post},
		"/health":     {"GET": get},
	}
}

func newTestValidator(t *testing.T, opts ...Option) *Validator {
	t.Helper()
	v, err := New(testOps(), opts...)
	require.NoError(t, err)
	return v
}

func postRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/users/42?limit=10&verbose=true", strings.NewReader(body))
	req.Header.Set("X-Api-Key", "0123456789")
	return req
}

func asValidationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	return verr
}

func TestValidateRequestValid(t *testing.T) {
	v := newTestValidator(t)

	in, err := v.ValidateRequest(postRequest(`{"name":"Ada","email":"ada@example.com"}`))
	require.NoError(t, err)
	require.NotNil(t, in)
	defer in.Release()

	assert.Equal(t, float64(42), in.PathParams["id"], "path params coerce to their schema type")
	assert.Equal(t, float64(10), in.Query["limit"])
	assert.Equal(t, true, in.Query["verbose"])
	assert.Equal(t, "0123456789", in.Headers["X-Api-Key"])

	body, ok := in.Body.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ada", body["name"])
}

func TestValidateRequestUnmatchedPassesThrough(t *testing.T) {
	v := newTestValidator(t)

	t.Run("unknown path", func(t *testing.T) {
		in, err := v.ValidateRequest(httptest.NewRequest(http.MethodGet, "/nope", nil))
		assert.Nil(t, in)
		assert.NoError(t, err)
	})

	t.Run("unknown method on known path", func(t *testing.T) {
		in, err := v.ValidateRequest(httptest.NewRequest(http.MethodDelete, "/health", nil))
		assert.Nil(t, in)
		assert.NoError(t, err)
	})
}

func TestValidateRequestFailures(t *testing.T) {
	v := newTestValidator(t)

	t.Run("missing required header fails first", func(t *testing.T) {
		req := postRequest(`{"name":"Ada"}`)
		req.Header.Del("X-Api-Key")

		_, err := v.ValidateRequest(req)
		verr := asValidationError(t, err)
		assert.Equal(t, 400, verr.HTTPStatus)
		assert.Equal(t, msgInvalidRequest, verr.Payload.Error)
		require.Len(t, verr.Payload.Details, 1)
		assert.Equal(t, "header.X-Api-Key", verr.Payload.Details[0].Path)
		assert.Equal(t, keywordRequired, verr.Payload.Details[0].Keyword)
	})

	t.Run("header violations are redacted", func(t *testing.T) {
		req := postRequest(`{"name":"Ada"}`)
		req.Header.Set("X-Api-Key", "short")

		_, err := v.ValidateRequest(req)
		verr := asValidationError(t, err)
		require.NotEmpty(t, verr.Payload.Details)
		assert.NotContains(t, verr.Payload.Details[0].Message, "short")
	})

	t.Run("query type violation", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/users/42?limit=abc", strings.NewReader(`{"name":"Ada"}`))
		req.Header.Set("X-Api-Key", "0123456789")

		_, err := v.ValidateRequest(req)
		verr := asValidationError(t, err)
		require.Len(t, verr.Payload.Details, 1)
		assert.Equal(t, "query.limit", verr.Payload.Details[0].Path)
		assert.Equal(t, keywordType, verr.Payload.Details[0].Keyword)
	})

	t.Run("path parameter type violation", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/users/abc", strings.NewReader(`{"name":"Ada"}`))
		req.Header.Set("X-Api-Key", "0123456789")

		_, err := v.ValidateRequest(req)
		verr := asValidationError(t, err)
		require.Len(t, verr.Payload.Details, 1)
		assert.Equal(t, "path.id", verr.Payload.Details[0].Path)
	})

	t.Run("earlier target short-circuits later ones", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/users/abc?limit=abc", strings.NewReader(`not json`))
		req.Header.Del("X-Api-Key")

		_, err := v.ValidateRequest(req)
		verr := asValidationError(t, err)
		require.Len(t, verr.Payload.Details, 1, "only the first failing target reports")
		assert.True(t, strings.HasPrefix(verr.Payload.Details[0].Path, "header."))
	})

	t.Run("body schema violation", func(t *testing.T) {
		_, err := v.ValidateRequest(postRequest(`{"email":"not-an-email"}`))
		verr := asValidationError(t, err)

		paths := make([]string, 0, len(verr.Payload.Details))
		for _, d := range verr.Payload.Details {
			paths = append(paths, d.Path)
		}
		assert.Contains(t, paths, "body.name")
		assert.Contains(t, paths, "body.email")
	})

	t.Run("missing required body", func(t *testing.T) {
		_, err := v.ValidateRequest(postRequest(""))
		verr := asValidationError(t, err)
		require.Len(t, verr.Payload.Details, 1)
		assert.Equal(t, "body", verr.Payload.Details[0].Path)
		assert.Equal(t, keywordRequired, verr.Payload.Details[0].Keyword)
	})

	t.Run("malformed JSON is a generic 400", func(t *testing.T) {
		_, err := v.ValidateRequest(postRequest(`{"name":`))
		verr := asValidationError(t, err)
		assert.Equal(t, 400, verr.HTTPStatus)
		assert.Equal(t, msgInvalidRequest, verr.Payload.Error)
		assert.Empty(t, verr.Payload.Details, "malformed JSON never exposes details")
		assert.NotEmpty(t, verr.Details(), "but the violation is recorded for logging")
	})

	t.Run("body restored for downstream handlers", func(t *testing.T) {
		req := postRequest(`{"name":"Ada"}`)
		_, err := v.ValidateRequest(req)
		require.NoError(t, err)

		rest := make([]byte, 64)
		n, _ := req.Body.Read(rest)
		assert.Equal(t, `{"name":"Ada"}`, string(rest[:n]))
	})
}

func TestValidateRequestFlagResolution(t *testing.T) {
	t.Run("operation skip disables validation", func(t *testing.T) {
		ops := testOps()
		ops["/users/{id}"]["POST"].Flags = &descriptor.Flags{Skip: descriptor.Bool(true)}
		v, err := New(ops)
		require.NoError(t, err)

		in, err := v.ValidateRequest(postRequest(`not even json`))
		assert.Nil(t, in)
		assert.NoError(t, err)
	})

	t.Run("field skip overrides operation", func(t *testing.T) {
		ops := testOps()
		op := ops["/users/{id}"]["POST"]
		op.Parameter(descriptor.LocationHeader, "X-Api-Key").Flags =
			&descriptor.Flags{Skip: descriptor.Bool(true)}
		v, err := New(ops)
		require.NoError(t, err)

		req := postRequest(`{"name":"Ada"}`)
		req.Header.Set("X-Api-Key", "short")
		_, err = v.ValidateRequest(req)
		assert.NoError(t, err, "skipped field no longer fails validation")
	})

	t.Run("detailed errors off yields generic payload", func(t *testing.T) {
		v := newTestValidator(t, WithDefaults(descriptor.Defaults{DetailedError: false}))

		_, err := v.ValidateRequest(postRequest(`{"email":"nope"}`))
		verr := asValidationError(t, err)
		assert.Equal(t, msgInvalidRequest, verr.Payload.Error)
		assert.Empty(t, verr.Payload.Details)
		assert.NotEmpty(t, verr.Details())
	})

	t.Run("operation flag re-enables details", func(t *testing.T) {
		ops := testOps()
		ops["/users/{id}"]["POST"].Flags = &descriptor.Flags{DetailedError: descriptor.Bool(true)}
		v, err := New(ops, WithDefaults(descriptor.Defaults{DetailedError: false}))
		require.NoError(t, err)

		_, verr := v.ValidateRequest(postRequest(`{"email":"nope"}`))
		e := asValidationError(t, verr)
		assert.NotEmpty(t, e.Payload.Details)
	})
}

func TestValidateRequestBodySizeCap(t *testing.T) {
	v := newTestValidator(t, WithMaxBodySize(16))

	_, err := v.ValidateRequest(postRequest(`{"name":"` + strings.Repeat("a", 64) + `"}`))
	verr := asValidationError(t, err)
	assert.Equal(t, 400, verr.HTTPStatus)
	require.NotEmpty(t, verr.Payload.Details)
	assert.Equal(t, keywordMaxLength, verr.Payload.Details[0].Keyword)
}
