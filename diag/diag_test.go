package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityOrdering(t *testing.T) {
	assert.True(t, SeverityInfo < SeverityWarning)
	assert.True(t, SeverityWarning < SeverityError)
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "unknown", Severity(42).String())
}

func TestDiagnosticString(t *testing.T) {
	d := Warnf("type User.email", "unresolved type degraded to open object")
	assert.Equal(t, "⚠ type User.email: unresolved type degraded to open object", d.String())

	e := Errorf("routes/users.go:10", "override fragment failed to decode")
	assert.Contains(t, e.String(), "✗")

	i := Infof("type Meta", "dynamic type")
	assert.Contains(t, i.String(), "ℹ")
}

func TestConstructorsFormat(t *testing.T) {
	d := Warnf("loc", "got %d of %s", 3, "x")
	assert.Equal(t, "got 3 of x", d.Reason)
	assert.Equal(t, "loc", d.Location)
	assert.Equal(t, SeverityWarning, d.Severity)
}

func TestMaxSeverity(t *testing.T) {
	assert.Equal(t, SeverityInfo, MaxSeverity(nil))
	assert.Equal(t, SeverityWarning, MaxSeverity([]Diagnostic{
		Infof("a", "x"),
		Warnf("b", "y"),
	}))
	assert.Equal(t, SeverityError, MaxSeverity([]Diagnostic{
		Errorf("a", "x"),
		Infof("b", "y"),
	}))
}
