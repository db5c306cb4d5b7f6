// Package routespec synthesizes machine-readable API operation schemas from
// Go source-level type information and enforces those schemas against live
// HTTP request and response traffic.
//
// The library consists of the following packages:
//
//   - schema: the structural, JSON-Schema-like node model shared by every
//     schema source
//   - typemap: converts semantic type descriptions (produced by static
//     analysis) into schema nodes
//   - source: loads route handler packages with go/packages and extracts
//     operation declarations, decode call sites, and response status hints
//   - extschema: normalizes third-party validation schemas into schema nodes
//   - descriptor: the merged per-operation descriptor model and the builder
//     that assembles one descriptor fragment per schema source
//   - merge: combines override, explicit, and inferred fragments with
//     deterministic precedence and delete-via-null override semantics
//   - httpvalidator: validates concrete requests and responses against a
//     merged operation descriptor
//   - synth: drives the whole pipeline and publishes the PathOperations map
//
// # Quick Start
//
// Synthesize descriptors for a tree of route handler packages and validate
// traffic against them:
//
//	src, err := source.NewContext(source.WithRoot("./routes"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	syn, err := synth.New(src)
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := syn.Synthesize(context.Background())
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, d := range result.Diagnostics {
//		log.Println(d)
//	}
//
//	v, err := httpvalidator.New(result.Operations)
//	if err != nil {
//		log.Fatal(err)
//	}
//	inputs, err := v.ValidateRequest(req)
//
// Descriptors are immutable once published and safe for unbounded concurrent
// validation. Re-running synthesis after a source change is driven by
// source.Context.Invalidate.
//
// # Command-Line Interface
//
// The routespec CLI generates descriptor documents from handler packages and
// checks recorded traffic against them:
//
//	routespec generate -r ./routes -o operations.json
//	routespec check request --ops operations.json -X POST -p /users/42 -d '{"name":"Ada"}'
//
// Install it with:
//
//	go install github.com/routespec/routespec/cmd/routespec@latest
package routespec
