package descriptor

import (
	"fmt"
	"strconv"
)

// StatusKey identifies a response entry: a three-digit code ("200"), a
// wildcard class ("2XX"), or the catch-all "default".
type StatusKey string

// StatusDefault is the catch-all response key consulted when neither an
// exact code nor a wildcard class matches.
const StatusDefault StatusKey = "default"

// ExactStatus returns the key for a single status code.
func ExactStatus(code int) StatusKey {
	return StatusKey(strconv.Itoa(code))
}

// WildcardStatus returns the class key covering all codes that share the
// leading digit of code, e.g. WildcardStatus(204) == "2XX".
func WildcardStatus(code int) StatusKey {
	return StatusKey(fmt.Sprintf("%dXX", code/100))
}

// Valid reports whether k is a well-formed status key.
func (k StatusKey) Valid() bool {
	if k == StatusDefault {
		return true
	}
	if len(k) != 3 {
		return false
	}
	if k[0] < '1' || k[0] > '5' {
		return false
	}
	if k[1] == 'X' && k[2] == 'X' {
		return true
	}
	return k[1] >= '0' && k[1] <= '9' && k[2] >= '0' && k[2] <= '9'
}

// Matches reports whether k covers the concrete status code. "default"
// matches everything.
func (k StatusKey) Matches(status int) bool {
	switch {
	case k == StatusDefault:
		return true
	case len(k) == 3 && k[1] == 'X' && k[2] == 'X':
		return status >= 100 && status <= 599 && byte('0'+status/100) == k[0]
	default:
		return string(k) == strconv.Itoa(status)
	}
}
