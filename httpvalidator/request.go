package httpvalidator

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/routespec/routespec/descriptor"
)

// ValidateRequest validates req against its operation descriptor and
// returns the coerced inputs. Targets are checked in a fixed order (headers,
// query, path parameters, cookies, body) and the first target with
// violations stops the walk.
//
// A request matching no route or method returns (nil, nil): traffic outside
// the descriptor set is not this package's business. A non-nil error is
// always a *ValidationError carrying the status and payload to answer with.
func (v *Validator) ValidateRequest(req *http.Request) (*ValidatedInputs, error) {
	template, rawPathParams, ok := v.matchers.match(req.URL.Path)
	if !ok {
		return nil, nil
	}
	op := v.operation(template, req.Method)
	if op == nil {
		return nil, nil
	}
	if v.resolve(op, nil).Skip {
		return nil, nil
	}

	in := getInputs()

	fail := func(err *ValidationError) (*ValidatedInputs, error) {
		in.Release()
		return nil, err
	}

	query := req.URL.Query()

	targets := []func() ([]Detail, []Detail, *ValidationError){
		func() (a, e []Detail, _ *ValidationError) {
			a, e = v.validateParams(op, descriptor.LocationHeader, in.Headers, func(name string) (string, bool) {
				val := req.Header.Get(name)
				return val, val != ""
			})
			return a, e, nil
		},
		func() (a, e []Detail, _ *ValidationError) {
			a, e = v.validateParams(op, descriptor.LocationQuery, in.Query, func(name string) (string, bool) {
				if !query.Has(name) {
					return "", false
				}
				return query.Get(name), true
			})
			return a, e, nil
		},
		func() (a, e []Detail, _ *ValidationError) {
			a, e = v.validateParams(op, descriptor.LocationPath, in.PathParams, func(name string) (string, bool) {
				val, ok := rawPathParams[name]
				return val, ok
			})
			return a, e, nil
		},
		func() (a, e []Detail, _ *ValidationError) {
			a, e = v.validateParams(op, descriptor.LocationCookie, in.Cookies, func(name string) (string, bool) {
				c, err := req.Cookie(name)
				if err != nil {
					return "", false
				}
				return c.Value, true
			})
			return a, e, nil
		},
		func() ([]Detail, []Detail, *ValidationError) {
			return v.validateBody(op, req, in)
		},
	}

	for _, target := range targets {
		all, exposed, verr := target()
		if verr != nil {
			return fail(verr)
		}
		if len(all) > 0 {
			return fail(newRequestError(all, exposed))
		}
	}
	return in, nil
}

// validateParams checks every declared parameter at one location. Header
// and cookie violations are redacted. Details from parameters whose
// resolved detailedError flag is off are recorded but not exposed.
func (v *Validator) validateParams(op *descriptor.Operation, loc descriptor.Location, sink map[string]any, get func(name string) (string, bool)) (all, exposed []Detail) {
	sv := v.plain
	if loc == descriptor.LocationHeader || loc == descriptor.LocationCookie {
		sv = v.redacting
	}

	for _, p := range op.ParametersIn(loc) {
		resolved := v.resolve(op, p.Flags)

		raw, present := get(p.Name)
		if !present {
			if p.Required && !resolved.Skip {
				d := Detail{
					Path:    string(loc) + "." + p.Name,
					Keyword: keywordRequired,
					Message: fmt.Sprintf("required %s parameter %q is missing", loc, p.Name),
				}
				all = append(all, d)
				if resolved.DetailedError {
					exposed = append(exposed, d)
				}
			}
			continue
		}

		value := coerceParam(raw, p.Schema)
		sink[p.Name] = value

		if resolved.Skip {
			continue
		}
		if ds := sv.Validate(value, p.Schema, string(loc)+"."+p.Name); len(ds) > 0 {
			all = append(all, ds...)
			if resolved.DetailedError {
				exposed = append(exposed, ds...)
			}
		}
	}
	return all, exposed
}

// validateBody reads, restores, decodes, and validates the request body.
// Read failures are the server's fault and come back as a 500; malformed
// JSON is a client error answered with a generic payload regardless of the
// detailed-error flags.
func (v *Validator) validateBody(op *descriptor.Operation, req *http.Request, in *ValidatedInputs) (all, exposed []Detail, verr *ValidationError) {
	rb := op.RequestBody
	if rb == nil {
		return nil, nil, nil
	}
	resolved := v.resolve(op, rb.Flags)
	if resolved.Skip {
		return nil, nil, nil
	}

	missing := func() ([]Detail, []Detail, *ValidationError) {
		if !rb.Required {
			return nil, nil, nil
		}
		d := Detail{Path: "body", Keyword: keywordRequired, Message: "request body is required"}
		if resolved.DetailedError {
			return []Detail{d}, []Detail{d}, nil
		}
		return []Detail{d}, nil, nil
	}

	if req.Body == nil || req.Body == http.NoBody {
		return missing()
	}

	raw, err := io.ReadAll(io.LimitReader(req.Body, v.cfg.maxBodySize+1))
	req.Body.Close()
	if err != nil {
		d := Detail{Path: "body", Keyword: keywordType, Message: fmt.Sprintf("reading request body: %v", err)}
		return nil, nil, newInternalError([]Detail{d}, nil)
	}
	// The handler downstream gets the body back.
	req.Body = io.NopCloser(bytes.NewReader(raw))

	if int64(len(raw)) > v.cfg.maxBodySize {
		d := Detail{
			Path:    "body",
			Keyword: keywordMaxLength,
			Message: fmt.Sprintf("request body exceeds %d bytes", v.cfg.maxBodySize),
		}
		if resolved.DetailedError {
			return []Detail{d}, []Detail{d}, nil
		}
		return []Detail{d}, nil, nil
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return missing()
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		d := Detail{Path: "body", Keyword: keywordType, Message: "request body is not valid JSON"}
		return []Detail{d}, nil, nil
	}

	if ds := v.plain.Validate(decoded, rb.Schema, "body"); len(ds) > 0 {
		all = ds
		if resolved.DetailedError {
			exposed = ds
		}
		return all, exposed, nil
	}

	in.Body = decoded
	return nil, nil, nil
}
