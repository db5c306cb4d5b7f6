package httpvalidator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routespec/routespec/descriptor"
	"github.com/routespec/routespec/schema"
	"github.com/routespec/routespec/synth"
)

func middlewareOps() synth.PathOperations {
	op := descriptor.NewBuilder().
		PathParam("id", schema.Number(true)).
		RequestBody(createUserBody(), true).
		Response("200", createUserBody()).
		Operation()
	return synth.PathOperations{"/users/{id}": {"POST": op}}
}

func TestMiddlewareValidTraffic(t *testing.T) {
	v, err := New(middlewareOps())
	require.NoError(t, err)

	var sawInputs *ValidatedInputs
	handler := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		in, ok := InputsFromContext(r.Context())
		require.True(t, ok)
		sawInputs = in
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"Ada"}`))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users/42", strings.NewReader(`{"name":"Ada"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"Ada"}`, rec.Body.String())
	require.NotNil(t, sawInputs)
	assert.Equal(t, float64(42), sawInputs.PathParams["id"])
}

func TestMiddlewareInvalidRequest(t *testing.T) {
	v, err := New(middlewareOps())
	require.NoError(t, err)

	handlerRan := false
	handler := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRan = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users/42", strings.NewReader(`{}`)))

	assert.False(t, handlerRan, "handler must not run for invalid requests")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, msgInvalidRequest, payload.Error)
	require.NotEmpty(t, payload.Details)
	assert.Equal(t, "body.name", payload.Details[0].Path)
}

func TestMiddlewareInvalidResponseReplaced(t *testing.T) {
	v, err := New(middlewareOps())
	require.NoError(t, err)

	handler := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"email":"not-an-email"}`))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users/42", strings.NewReader(`{"name":"Ada"}`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, msgInternalError, payload.Error,
		"the handler's invalid payload never reaches the client")
	assert.NotEmpty(t, payload.Details)
}

func TestMiddlewareUnmatchedPassesThrough(t *testing.T) {
	v, err := New(middlewareOps())
	require.NoError(t, err)

	handler := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := InputsFromContext(r.Context())
		assert.False(t, ok, "unmatched requests carry no inputs")
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("anything"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "anything", rec.Body.String())
}

func TestMiddlewareBuffersUntilValidated(t *testing.T) {
	v, err := New(middlewareOps())
	require.NoError(t, err)

	handler := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"name":"Ada"}`))
		w.Write([]byte(` `))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users/42", strings.NewReader(`{"name":"Ada"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"name":"Ada"} `, rec.Body.String(), "multiple writes flush in order")
}
