package httpvalidator

import (
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routespec/routespec/descriptor"
	"github.com/routespec/routespec/schema"
	"github.com/routespec/routespec/synth"
)

// recordingLogger captures log calls for assertions.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level string
	msg   string
	kv    []any
}

func (l *recordingLogger) record(level, msg string, kv []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, kv: kv})
}

func (l *recordingLogger) Debug(msg string, kv ...any) { l.record("debug", msg, kv) }
func (l *recordingLogger) Info(msg string, kv ...any)  { l.record("info", msg, kv) }
func (l *recordingLogger) Warn(msg string, kv ...any)  { l.record("warn", msg, kv) }
func (l *recordingLogger) Error(msg string, kv ...any) { l.record("error", msg, kv) }

func (l *recordingLogger) errors() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logEntry
	for _, e := range l.entries {
		if e.level == "error" {
			out = append(out, e)
		}
	}
	return out
}

func responseOps() synth.PathOperations {
	op := descriptor.NewBuilder().
		PathParam("id", schema.Number(true)).
		Response("200", createUserBody()).
		ResponseHeader("200", "X-Request-Id", schema.String()).
		Response("4XX", schema.Object().AddProperty("error", schema.String(), true)).
		Operation()

	fallback := descriptor.NewBuilder().
		Response(descriptor.StatusDefault, schema.Object().AddProperty("ok", schema.Boolean(), true)).
		Operation()

	return synth.PathOperations{
		"/users/{id}": {"GET": op},
		"/ping":       {"GET": fallback},
	}
}

func okHeader() http.Header {
	h := http.Header{}
	h.Set("X-Request-Id", "req-1")
	return h
}

func TestValidateResponse(t *testing.T) {
	v, err := New(responseOps())
	require.NoError(t, err)

	t.Run("valid body and headers", func(t *testing.T) {
		err := v.ValidateResponse(http.MethodGet, "/users/42", 200, okHeader(), []byte(`{"name":"Ada"}`))
		assert.NoError(t, err)
	})

	t.Run("route template accepted in place of a path", func(t *testing.T) {
		err := v.ValidateResponse(http.MethodGet, "/users/{id}", 200, okHeader(), []byte(`{"name":"Ada"}`))
		assert.NoError(t, err)
	})

	t.Run("undocumented status passes", func(t *testing.T) {
		err := v.ValidateResponse(http.MethodGet, "/users/42", 503, http.Header{}, []byte(`whatever`))
		assert.NoError(t, err)
	})

	t.Run("unmatched route passes", func(t *testing.T) {
		err := v.ValidateResponse(http.MethodGet, "/nope", 200, http.Header{}, nil)
		assert.NoError(t, err)
	})

	t.Run("wildcard status key resolves", func(t *testing.T) {
		err := v.ValidateResponse(http.MethodGet, "/users/42", 404, http.Header{}, []byte(`{"error":"not found"}`))
		assert.NoError(t, err)

		err = v.ValidateResponse(http.MethodGet, "/users/42", 404, http.Header{}, []byte(`{}`))
		verr := asValidationError(t, err)
		assert.Equal(t, 500, verr.HTTPStatus)
	})

	t.Run("default status key resolves", func(t *testing.T) {
		err := v.ValidateResponse(http.MethodGet, "/ping", 299, http.Header{}, []byte(`{"ok":true}`))
		assert.NoError(t, err)

		err = v.ValidateResponse(http.MethodGet, "/ping", 299, http.Header{}, []byte(`{"ok":"yes"}`))
		assert.Error(t, err)
	})

	t.Run("missing documented header", func(t *testing.T) {
		err := v.ValidateResponse(http.MethodGet, "/users/42", 200, http.Header{}, []byte(`{"name":"Ada"}`))
		verr := asValidationError(t, err)
		require.Len(t, verr.Details(), 1)
		assert.Equal(t, "header.X-Request-Id", verr.Details()[0].Path)
		assert.Equal(t, keywordRequired, verr.Details()[0].Keyword)
	})

	t.Run("invalid body keeps the generic 500 message", func(t *testing.T) {
		err := v.ValidateResponse(http.MethodGet, "/users/42", 200, okHeader(), []byte(`{"email":"nope"}`))
		verr := asValidationError(t, err)
		assert.Equal(t, 500, verr.HTTPStatus)
		assert.Equal(t, msgInternalError, verr.Payload.Error)
		assert.NotEmpty(t, verr.Payload.Details, "details flow to the payload by default")
		assert.NotEmpty(t, verr.Details())
	})

	t.Run("malformed response body", func(t *testing.T) {
		err := v.ValidateResponse(http.MethodGet, "/users/42", 200, okHeader(), []byte(`{broken`))
		verr := asValidationError(t, err)
		require.NotEmpty(t, verr.Details())
		assert.Equal(t, "body", verr.Details()[0].Path)
	})

	t.Run("body failures stop before header checks", func(t *testing.T) {
		err := v.ValidateResponse(http.MethodGet, "/users/42", 200, http.Header{}, []byte(`{"email":"nope"}`))
		verr := asValidationError(t, err)
		require.NotEmpty(t, verr.Details())
		for _, d := range verr.Details() {
			assert.Equal(t, "body", d.Path[:4])
		}
	})
}

func TestValidateResponseDetailFlag(t *testing.T) {
	t.Run("operation flag exposes details", func(t *testing.T) {
		ops := responseOps()
		ops["/users/{id}"]["GET"].Flags = &descriptor.Flags{DetailedError: descriptor.Bool(true)}
		v, err := New(ops, WithDefaults(descriptor.Defaults{DetailedError: true}))
		require.NoError(t, err)

		err = v.ValidateResponse(http.MethodGet, "/users/42", 200, okHeader(), []byte(`{"email":"nope"}`))
		verr := asValidationError(t, err)
		assert.Equal(t, 500, verr.HTTPStatus)
		require.NotEmpty(t, verr.Payload.Details)
		assert.Equal(t, "body.name", verr.Payload.Details[0].Path)
	})

	t.Run("disabled flag keeps the payload bare", func(t *testing.T) {
		v, err := New(responseOps(), WithDefaults(descriptor.Defaults{DetailedError: false}))
		require.NoError(t, err)

		err = v.ValidateResponse(http.MethodGet, "/users/42", 200, okHeader(), []byte(`{"email":"nope"}`))
		verr := asValidationError(t, err)
		assert.Equal(t, msgInternalError, verr.Payload.Error)
		assert.Empty(t, verr.Payload.Details)
		assert.NotEmpty(t, verr.Details(), "violations are still recorded for logging")
	})

	t.Run("response flag overrides the defaults", func(t *testing.T) {
		ops := responseOps()
		ops["/users/{id}"]["GET"].Responses["200"].Flags = &descriptor.Flags{DetailedError: descriptor.Bool(true)}
		v, err := New(ops, WithDefaults(descriptor.Defaults{DetailedError: false}))
		require.NoError(t, err)

		err = v.ValidateResponse(http.MethodGet, "/users/42", 200, okHeader(), []byte(`{"email":"nope"}`))
		verr := asValidationError(t, err)
		assert.NotEmpty(t, verr.Payload.Details)
	})
}

func TestValidateResponseLogging(t *testing.T) {
	logger := &recordingLogger{}
	v, err := New(responseOps(), WithLogger(logger))
	require.NoError(t, err)

	require.Error(t, v.ValidateResponse(http.MethodGet, "/users/42", 200, okHeader(), []byte(`{"email":"nope"}`)))

	entries := logger.errors()
	require.Len(t, entries, 1)
	assert.Equal(t, "response validation failed", entries[0].msg)
	assert.Contains(t, entries[0].kv, "route")
	assert.Contains(t, entries[0].kv, "/users/{id}")
	assert.Contains(t, entries[0].kv, "status")
}

func TestValidateResponseSkipFlags(t *testing.T) {
	t.Run("operation skip", func(t *testing.T) {
		ops := responseOps()
		ops["/users/{id}"]["GET"].Flags = &descriptor.Flags{Skip: descriptor.Bool(true)}
		v, err := New(ops)
		require.NoError(t, err)

		assert.NoError(t, v.ValidateResponse(http.MethodGet, "/users/42", 200, http.Header{}, []byte(`garbage`)))
	})

	t.Run("response level skip", func(t *testing.T) {
		ops := responseOps()
		ops["/users/{id}"]["GET"].Responses["200"].Flags = &descriptor.Flags{Skip: descriptor.Bool(true)}
		v, err := New(ops)
		require.NoError(t, err)

		assert.NoError(t, v.ValidateResponse(http.MethodGet, "/users/42", 200, http.Header{}, []byte(`garbage`)))
		assert.Error(t, v.ValidateResponse(http.MethodGet, "/users/42", 404, http.Header{}, []byte(`{}`)),
			"other statuses still validate")
	})
}
