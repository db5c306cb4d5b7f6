package httpvalidator

import (
	"fmt"
	"sync"

	json "github.com/goccy/go-json"
)

// Detail describes one schema violation.
type Detail struct {
	// Path locates the offending value, e.g. "body.user.email" or
	// "query.limit".
	Path string `json:"path"`

	// Keyword names the violated constraint: type, required, format,
	// pattern, minLength, maxLength, or enum.
	Keyword string `json:"keyword"`

	// Message is a human-readable description. Values from headers and
	// cookies are never echoed into it.
	Message string `json:"message"`
}

// ErrorPayload is the JSON body written to the client when validation
// fails. Details are present only when detailed errors are enabled for the
// failing element.
type ErrorPayload struct {
	Error   string   `json:"error"`
	Details []Detail `json:"details,omitempty"`
}

// ValidationError is the error returned when a request or response does not
// conform to its operation descriptor. HTTPStatus is the status the caller
// should answer with: 400 for invalid client input, 500 for everything that
// is the server's fault (body read failures, invalid responses).
type ValidationError struct {
	HTTPStatus int
	Payload    ErrorPayload

	// details holds every recorded violation, including ones excluded
	// from the payload by the detailed-error flags. They are for logging.
	details []Detail
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("httpvalidator: %s (%d violations)", e.Payload.Error, len(e.details))
}

// Details returns every recorded violation, independent of what the payload
// exposes to the client.
func (e *ValidationError) Details() []Detail {
	return e.details
}

// MarshalPayload renders the client-facing JSON body.
func (e *ValidationError) MarshalPayload() ([]byte, error) {
	return json.Marshal(e.Payload)
}

// Client-facing error messages. Request failures and server-side failures
// carry deliberately asymmetric generic messages: a response-shape bug is a
// server fault and must not read like a client error.
const (
	msgInvalidRequest = "Invalid request data"
	msgInternalError  = "Internal server error"
)

// newRequestError builds the 400 returned for invalid client input.
// exposed lists the details permitted into the payload; all recorded
// details stay available via Details.
func newRequestError(all, exposed []Detail) *ValidationError {
	return &ValidationError{
		HTTPStatus: 400,
		Payload:    ErrorPayload{Error: msgInvalidRequest, Details: exposed},
		details:    all,
	}
}

// newInternalError builds the 500 used for server-side failures. The
// message is always generic; exposed lists the details permitted into the
// payload per the resolved detailedError flag.
func newInternalError(all, exposed []Detail) *ValidationError {
	return &ValidationError{
		HTTPStatus: 500,
		Payload:    ErrorPayload{Error: msgInternalError, Details: exposed},
		details:    all,
	}
}

// ValidatedInputs carries the validated and coerced request inputs. Query,
// path, header, and cookie parameters are coerced to their schema types
// (numbers become float64, booleans become bool); the body is the decoded
// JSON value.
type ValidatedInputs struct {
	Body       any
	PathParams map[string]any
	Query      map[string]any
	Headers    map[string]any
	Cookies    map[string]any
}

// Pool capacities, sized for typical operations.
const inputsParamCap = 4

var inputsPool = sync.Pool{
	New: func() any {
		return &ValidatedInputs{
			PathParams: make(map[string]any, inputsParamCap),
			Query:      make(map[string]any, inputsParamCap),
			Headers:    make(map[string]any, inputsParamCap),
			Cookies:    make(map[string]any, inputsParamCap),
		}
	},
}

func getInputs() *ValidatedInputs {
	in := inputsPool.Get().(*ValidatedInputs)
	in.reset()
	return in
}

// Release returns the inputs to the pool. Callers that are done with a
// ValidatedInputs may release it to reduce allocations on hot paths; using
// it after Release is a bug.
func (in *ValidatedInputs) Release() {
	if in == nil {
		return
	}
	inputsPool.Put(in)
}

func (in *ValidatedInputs) reset() {
	in.Body = nil
	clear(in.PathParams)
	clear(in.Query)
	clear(in.Headers)
	clear(in.Cookies)
}
