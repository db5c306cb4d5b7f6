package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routespec/routespec/descriptor"
	"github.com/routespec/routespec/schema"
	"github.com/routespec/routespec/synth"
)

// runCLI executes the command tree with args and returns stdout and the error.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(bytes.NewBufferString(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeOpsFile(t *testing.T) string {
	t.Helper()

	body := schema.Object()
	body.AddProperty("name", schema.String(), true)
	op := descriptor.NewBuilder().
		PathParam("id", schema.Number(true)).
		RequestBody(body, true).
		Response("201", body).
		Operation()

	ops := synth.PathOperations{"/users/{id}": {"POST": op}}
	raw, err := json.Marshal(ops)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "operations.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestCheckRequestCommand(t *testing.T) {
	opsPath := writeOpsFile(t)

	t.Run("valid request", func(t *testing.T) {
		out, err := runCLI(t, "", "check", "request",
			"--ops", opsPath, "-X", "POST", "-p", "/users/42", "-d", `{"name":"Ada"}`)
		require.NoError(t, err)
		assert.Contains(t, out, "valid")
	})

	t.Run("invalid request exits non-zero", func(t *testing.T) {
		out, err := runCLI(t, "", "check", "request",
			"--ops", opsPath, "-X", "POST", "-p", "/users/42", "-d", `{}`)
		require.Error(t, err)
		assert.Contains(t, out, "invalid (400")
		assert.Contains(t, out, "body.name")
	})

	t.Run("unmatched traffic reported", func(t *testing.T) {
		out, err := runCLI(t, "", "check", "request",
			"--ops", opsPath, "-X", "GET", "-p", "/orders/7")
		require.NoError(t, err)
		assert.Contains(t, out, "unmatched")
	})

	t.Run("operation set from stdin", func(t *testing.T) {
		raw, err := os.ReadFile(opsPath)
		require.NoError(t, err)

		out, err := runCLI(t, string(raw), "check", "request",
			"--ops", "-", "-X", "POST", "-p", "/users/42", "-d", `{"name":"Ada"}`)
		require.NoError(t, err)
		assert.Contains(t, out, "valid")
	})

	t.Run("missing ops flag", func(t *testing.T) {
		_, err := runCLI(t, "", "check", "request", "-p", "/users/42")
		assert.Error(t, err)
	})
}

func TestCheckResponseCommand(t *testing.T) {
	opsPath := writeOpsFile(t)

	t.Run("valid response", func(t *testing.T) {
		out, err := runCLI(t, "", "check", "response",
			"--ops", opsPath, "-X", "POST", "-p", "/users/42", "--status", "201", "-d", `{"name":"Ada"}`)
		require.NoError(t, err)
		assert.Contains(t, out, "valid")
	})

	t.Run("invalid response exits non-zero", func(t *testing.T) {
		out, err := runCLI(t, "", "check", "response",
			"--ops", opsPath, "-X", "POST", "-p", "/users/42", "--status", "201", "-d", `{}`)
		require.Error(t, err)
		assert.Contains(t, out, "body.name")
	})

	t.Run("undocumented status passes", func(t *testing.T) {
		out, err := runCLI(t, "", "check", "response",
			"--ops", opsPath, "-X", "POST", "-p", "/users/42", "--status", "503", "-d", `oops`)
		require.NoError(t, err)
		assert.Contains(t, out, "valid")
	})

	t.Run("status out of range", func(t *testing.T) {
		_, err := runCLI(t, "", "check", "response",
			"--ops", opsPath, "-X", "POST", "-p", "/users/42", "--status", "42")
		assert.Error(t, err)
	})
}

func TestGenerateCommandFlagValidation(t *testing.T) {
	_, err := runCLI(t, "", "generate", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestMarshalOperations(t *testing.T) {
	body := schema.Object()
	body.AddProperty("ok", schema.Boolean(), true)
	ops := synth.PathOperations{
		"/health": {"GET": descriptor.NewBuilder().Response("200", body).Operation()},
	}

	t.Run("json round-trips", func(t *testing.T) {
		raw, err := marshalOperations(ops, FormatJSON)
		require.NoError(t, err)

		var decoded synth.PathOperations
		require.NoError(t, json.Unmarshal(raw, &decoded))
		require.Contains(t, decoded, "/health")
		assert.NotNil(t, decoded["/health"]["GET"].Responses["200"])
	})

	t.Run("yaml carries the wire form", func(t *testing.T) {
		raw, err := marshalOperations(ops, FormatYAML)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "/health")
		assert.Contains(t, string(raw), "responses")
	})
}

func TestLoadOverrides(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "overrides.yaml")
		content := "POST /users/{id}:\n  summary: Create a user\n  responses:\n    \"404\": null\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		opts, err := loadOverrides(path)
		require.NoError(t, err)
		assert.Len(t, opts, 1)
	})

	t.Run("invalid key", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "overrides.yaml")
		require.NoError(t, os.WriteFile(path, []byte("nonsense:\n  a: 1\n"), 0o644))

		_, err := loadOverrides(path)
		assert.ErrorContains(t, err, "invalid override key")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadOverrides(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "reading overrides")
	})
}

func TestSplitPair(t *testing.T) {
	name, value, err := splitPair("limit=10", "query")
	require.NoError(t, err)
	assert.Equal(t, "limit", name)
	assert.Equal(t, "10", value)

	_, _, err = splitPair("nonsense", "query")
	assert.Error(t, err)

	_, _, err = splitPair("=value", "header")
	assert.Error(t, err)
}

func TestResolveBody(t *testing.T) {
	t.Run("inline body", func(t *testing.T) {
		body, err := resolveBody(&checkOptions{body: `{}`})
		require.NoError(t, err)
		assert.Equal(t, `{}`, body)
	})

	t.Run("body file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "body.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0o644))

		body, err := resolveBody(&checkOptions{bodyFile: path})
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, body)
	})

	t.Run("both set", func(t *testing.T) {
		_, err := resolveBody(&checkOptions{body: "x", bodyFile: "y"})
		assert.Error(t, err)
	})
}
