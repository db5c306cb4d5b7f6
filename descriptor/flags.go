package descriptor

// Flags are tri-state validation switches. A nil pointer means "unset",
// which defers to the next level in the resolution chain; a set pointer
// overrides everything below it.
type Flags struct {
	// Skip disables validation for the element the flags are attached to.
	Skip *bool `json:"skip,omitempty"`

	// DetailedError controls whether request validation failures include
	// per-field details in the error payload.
	DetailedError *bool `json:"detailedError,omitempty"`
}

// Defaults are the global fallback values used when no flag is set at the
// field or operation level.
type Defaults struct {
	Skip          bool
	DetailedError bool
}

// Resolved is the concrete outcome of flag resolution.
type Resolved struct {
	Skip          bool
	DetailedError bool
}

// Resolve collapses the flag chain for one element. Precedence is
// field over operation over defaults; each flag resolves independently,
// so a field may set Skip while its DetailedError still comes from the
// operation or the defaults. Either pointer may be nil.
func (d Defaults) Resolve(operation, field *Flags) Resolved {
	return Resolved{
		Skip:          resolveBool(d.Skip, operation, field, func(f *Flags) *bool { return f.Skip }),
		DetailedError: resolveBool(d.DetailedError, operation, field, func(f *Flags) *bool { return f.DetailedError }),
	}
}

func resolveBool(fallback bool, operation, field *Flags, get func(*Flags) *bool) bool {
	if field != nil {
		if v := get(field); v != nil {
			return *v
		}
	}
	if operation != nil {
		if v := get(operation); v != nil {
			return *v
		}
	}
	return fallback
}

// Bool returns a pointer to b, for building Flags literals.
func Bool(b bool) *bool { return &b }
