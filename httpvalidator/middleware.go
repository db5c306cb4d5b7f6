package httpvalidator

import (
	"bytes"
	"context"
	"errors"
	"net/http"
)

type inputsKey struct{}

// InputsFromContext returns the validated inputs the Middleware stashed for
// the current request, if any.
func InputsFromContext(ctx context.Context) (*ValidatedInputs, bool) {
	in, ok := ctx.Value(inputsKey{}).(*ValidatedInputs)
	return in, ok
}

// Middleware wraps next with request and response validation. Requests that
// fail validation are answered with the ValidationError's status and
// payload without reaching the handler. Handler responses are buffered and
// validated before anything is sent: an invalid response is replaced with a
// 500 so a schema defect never leaks a malformed payload.
//
// Requests that match no operation pass through untouched.
func (v *Validator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		in, err := v.ValidateRequest(r)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				writeValidationError(w, verr)
				return
			}
			http.Error(w, msgInternalError, http.StatusInternalServerError)
			return
		}
		if in != nil {
			defer in.Release()
			r = r.WithContext(context.WithValue(r.Context(), inputsKey{}, in))
		}

		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if err := v.ValidateResponse(r.Method, r.URL.Path, rec.status, w.Header(), rec.body.Bytes()); err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				writeValidationError(w, verr)
				return
			}
			http.Error(w, msgInternalError, http.StatusInternalServerError)
			return
		}
		rec.flush()
	})
}

// responseRecorder buffers the handler's response so it can be validated
// before reaching the client.
type responseRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (r *responseRecorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.status = status
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.body.Write(p)
}

// flush sends the buffered response to the client.
func (r *responseRecorder) flush() {
	r.ResponseWriter.WriteHeader(r.status)
	if r.body.Len() > 0 {
		r.ResponseWriter.Write(r.body.Bytes())
	}
}

func writeValidationError(w http.ResponseWriter, verr *ValidationError) {
	payload, err := verr.MarshalPayload()
	if err != nil {
		http.Error(w, msgInternalError, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(verr.HTTPStatus)
	w.Write(payload)
}
