package commands

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/routespec/routespec/httpvalidator"
	"github.com/routespec/routespec/synth"
)

type checkOptions struct {
	ops      string
	method   string
	path     string
	status   int
	query    []string
	headers  []string
	cookies  []string
	body     string
	bodyFile string
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check HTTP traffic against a generated operation set",
	}
	cmd.AddCommand(newCheckRequestCmd())
	cmd.AddCommand(newCheckResponseCmd())
	return cmd
}

func newCheckRequestCmd() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "request",
		Short: "Check a request against an operation set",
		Long: "Check a described HTTP request against an operation set produced by\n" +
			"routespec generate. Exits non-zero when the request is invalid.\n\n" +
			"Examples:\n" +
			"  routespec check request --ops operations.json -X POST -p /users/42 -d '{\"name\":\"Ada\"}'\n" +
			"  routespec check request --ops operations.json -X GET -p /users/42 --query limit=10\n" +
			"  cat operations.json | routespec check request --ops - -X GET -p /health\n",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheckRequest(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.ops, "ops", "", "Operation set file, or - for stdin (required)")
	cmd.Flags().StringVarP(&opts.method, "method", "X", http.MethodGet, "HTTP method")
	cmd.Flags().StringVarP(&opts.path, "path", "p", "", "Concrete request path (required)")
	cmd.Flags().StringSliceVar(&opts.query, "query", nil, "Query parameter as name=value (repeatable)")
	cmd.Flags().StringSliceVarP(&opts.headers, "header", "H", nil, "Request header as name=value (repeatable)")
	cmd.Flags().StringSliceVar(&opts.cookies, "cookie", nil, "Request cookie as name=value (repeatable)")
	cmd.Flags().StringVarP(&opts.body, "body", "d", "", "Request body")
	cmd.Flags().StringVar(&opts.bodyFile, "body-file", "", "Read the request body from a file")
	_ = cmd.MarkFlagRequired("ops")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

func newCheckResponseCmd() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "response",
		Short: "Check a response against an operation set",
		Long: "Check a described HTTP response against an operation set produced by\n" +
			"routespec generate. Exits non-zero when the response is invalid.\n\n" +
			"Examples:\n" +
			"  routespec check response --ops operations.json -X POST -p /users/42 --status 201 -d @created.json\n",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheckResponse(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.ops, "ops", "", "Operation set file, or - for stdin (required)")
	cmd.Flags().StringVarP(&opts.method, "method", "X", http.MethodGet, "HTTP method of the originating request")
	cmd.Flags().StringVarP(&opts.path, "path", "p", "", "Concrete request path or route template (required)")
	cmd.Flags().IntVar(&opts.status, "status", 200, "HTTP status code of the response")
	cmd.Flags().StringSliceVarP(&opts.headers, "header", "H", nil, "Response header as name=value (repeatable)")
	cmd.Flags().StringVarP(&opts.body, "body", "d", "", "Response body")
	cmd.Flags().StringVar(&opts.bodyFile, "body-file", "", "Read the response body from a file")
	_ = cmd.MarkFlagRequired("ops")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

func runCheckRequest(cmd *cobra.Command, opts *checkOptions) error {
	v, err := loadValidator(cmd.InOrStdin(), opts.ops)
	if err != nil {
		return err
	}

	body, err := resolveBody(opts)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(strings.ToUpper(opts.method), opts.path, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	q := url.Values{}
	for _, pair := range opts.query {
		name, value, err := splitPair(pair, "query")
		if err != nil {
			return err
		}
		q.Set(name, value)
	}
	req.URL.RawQuery = q.Encode()
	for _, pair := range opts.headers {
		name, value, err := splitPair(pair, "header")
		if err != nil {
			return err
		}
		req.Header.Set(name, value)
	}
	for _, pair := range opts.cookies {
		name, value, err := splitPair(pair, "cookie")
		if err != nil {
			return err
		}
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	in, verr := v.ValidateRequest(req)
	if in != nil {
		in.Release()
	}
	return reportVerdict(cmd, verr, in != nil)
}

func runCheckResponse(cmd *cobra.Command, opts *checkOptions) error {
	v, err := loadValidator(cmd.InOrStdin(), opts.ops)
	if err != nil {
		return err
	}

	body, err := resolveBody(opts)
	if err != nil {
		return err
	}
	if opts.status < 100 || opts.status > 599 {
		return fmt.Errorf("invalid --status %d", opts.status)
	}

	header := http.Header{}
	for _, pair := range opts.headers {
		name, value, err := splitPair(pair, "header")
		if err != nil {
			return err
		}
		header.Set(name, value)
	}

	verr := v.ValidateResponse(strings.ToUpper(opts.method), opts.path, opts.status, header, []byte(body))
	return reportVerdict(cmd, verr, verr == nil)
}

// reportVerdict prints the validation outcome and turns a ValidationError
// into a non-zero exit.
func reportVerdict(cmd *cobra.Command, verr error, matched bool) error {
	if verr == nil {
		if matched {
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "unmatched: no operation covers this traffic")
		}
		return nil
	}

	var ve *httpvalidator.ValidationError
	if !errors.As(verr, &ve) {
		return verr
	}
	fmt.Fprintf(cmd.OutOrStdout(), "invalid (%d %s)\n", ve.HTTPStatus, ve.Payload.Error)
	for _, d := range ve.Details() {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s [%s] %s\n", d.Path, d.Keyword, d.Message)
	}
	return fmt.Errorf("validation failed with %d violations", len(ve.Details()))
}

// loadValidator reads an operation set from a file or stdin and builds a
// validator over it.
func loadValidator(stdin io.Reader, path string) (*httpvalidator.Validator, error) {
	var raw []byte
	var err error
	if path == StdinFilePath {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading operation set: %w", err)
	}

	var ops synth.PathOperations
	if err := json.Unmarshal(raw, &ops); err != nil {
		return nil, fmt.Errorf("decoding operation set: %w", err)
	}
	return httpvalidator.New(ops)
}

func resolveBody(opts *checkOptions) (string, error) {
	if opts.body != "" && opts.bodyFile != "" {
		return "", fmt.Errorf("cannot set both --body and --body-file")
	}
	if opts.bodyFile == "" {
		return opts.body, nil
	}
	raw, err := os.ReadFile(opts.bodyFile)
	if err != nil {
		return "", fmt.Errorf("reading body file: %w", err)
	}
	return string(raw), nil
}

func splitPair(pair, kind string) (string, string, error) {
	name, value, ok := strings.Cut(pair, "=")
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid %s %q, expected name=value", kind, pair)
	}
	return name, value, nil
}
