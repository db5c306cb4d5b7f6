// Package diag provides the structured diagnostics channel used by the
// schema synthesis pipeline.
//
// Synthesis never hard-fails on an unresolvable type or schema shape: the
// mapper and adapter degrade to Unknown or an empty object node and record a
// Diagnostic instead. Callers that want strict behavior can inspect the
// returned diagnostics and reject units that produced any at SeverityWarning
// or above.
package diag

import "fmt"

// Severity indicates how serious a diagnostic is.
//
// The levels are ordered from least to most severe:
// Info < Warning < Error.
type Severity int

const (
	// SeverityInfo indicates an informational notice about a synthesis
	// choice, such as an intentional fallback for a dynamic type.
	SeverityInfo Severity = iota

	// SeverityWarning indicates a shape that could not be fully resolved
	// and was degraded to a weaker schema.
	SeverityWarning

	// SeverityError indicates input that is structurally unusable, such as
	// an override fragment that failed to decode.
	SeverityError
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic records one best-effort fallback or soft failure during schema
// synthesis. Location identifies where the problem was observed (a source
// position, a type name, or a descriptor path) and Reason says what happened.
type Diagnostic struct {
	// Location identifies the origin of the diagnostic, e.g.
	// "routes/users/handler.go:42:7" or "type User.email".
	Location string

	// Reason is a human-readable description of what was degraded and why.
	Reason string

	// Severity indicates how serious the diagnostic is.
	Severity Severity
}

// String returns a formatted one-line representation of the diagnostic.
func (d Diagnostic) String() string {
	var symbol string
	switch d.Severity {
	case SeverityError:
		symbol = "✗"
	case SeverityWarning:
		symbol = "⚠"
	default:
		symbol = "ℹ"
	}
	return fmt.Sprintf("%s %s: %s", symbol, d.Location, d.Reason)
}

// Infof builds an info-level diagnostic with a formatted reason.
func Infof(location, format string, args ...any) Diagnostic {
	return Diagnostic{Location: location, Reason: fmt.Sprintf(format, args...), Severity: SeverityInfo}
}

// Warnf builds a warning-level diagnostic with a formatted reason.
func Warnf(location, format string, args ...any) Diagnostic {
	return Diagnostic{Location: location, Reason: fmt.Sprintf(format, args...), Severity: SeverityWarning}
}

// Errorf builds an error-level diagnostic with a formatted reason.
func Errorf(location, format string, args ...any) Diagnostic {
	return Diagnostic{Location: location, Reason: fmt.Sprintf(format, args...), Severity: SeverityError}
}

// MaxSeverity returns the highest severity present in diags, or SeverityInfo
// when diags is empty.
func MaxSeverity(diags []Diagnostic) Severity {
	max := SeverityInfo
	for _, d := range diags {
		if d.Severity > max {
			max = d.Severity
		}
	}
	return max
}
