package commands

import (
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	yaml "go.yaml.in/yaml/v4"

	"github.com/routespec/routespec"
	"github.com/routespec/routespec/diag"
	"github.com/routespec/routespec/source"
	"github.com/routespec/routespec/synth"
)

type generateOptions struct {
	root       string
	output     string
	format     string
	overrides  string
	workers    int
	decodeFns  []string
	respondFns []string
	strict     bool
	quiet      bool
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Synthesize operation descriptors from Go route handler source",
		Long: "Analyze the Go module at --root, synthesize operation descriptors for its\n" +
			"route handlers, and write them as JSON or YAML.\n\n" +
			"Diagnostics (degraded schema shapes, unresolvable types) go to stderr and\n" +
			"never fail generation unless --strict is set.\n\n" +
			"Examples:\n" +
			"  routespec generate -r ./routes\n" +
			"  routespec generate -r ./routes -o operations.json\n" +
			"  routespec generate -r ./routes --format yaml --strict\n" +
			"  routespec generate -r ./routes --overrides overrides.yaml\n",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.root, "root", "r", ".", "Go module root to analyze")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&opts.format, "format", FormatJSON, "Output format: json or yaml")
	cmd.Flags().StringVar(&opts.overrides, "overrides", "", "YAML file of override fragments keyed by \"METHOD /path\"")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Concurrent route units during synthesis (default GOMAXPROCS)")
	cmd.Flags().StringSliceVar(&opts.decodeFns, "decode-fn", nil, "Function names treated as request body decoders")
	cmd.Flags().StringSliceVar(&opts.respondFns, "respond-fn", nil, "Function names treated as response writers")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail when synthesis reports warnings or errors")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress diagnostics on stderr")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *generateOptions) error {
	if opts.format != FormatJSON && opts.format != FormatYAML {
		return fmt.Errorf("invalid format %q. Valid formats: %s, %s", opts.format, FormatJSON, FormatYAML)
	}

	srcOpts := []source.Option{
		source.WithRoot(opts.root),
		source.WithLogger(routespec.NewSlogAdapter(nil)),
	}
	if len(opts.decodeFns) > 0 {
		srcOpts = append(srcOpts, source.WithDecodeFunctions(opts.decodeFns...))
	}
	if len(opts.respondFns) > 0 {
		srcOpts = append(srcOpts, source.WithRespondFunctions(opts.respondFns...))
	}
	src, err := source.NewContext(srcOpts...)
	if err != nil {
		return err
	}

	var synthOpts []synth.Option
	if opts.workers > 0 {
		synthOpts = append(synthOpts, synth.WithWorkers(opts.workers))
	}
	if opts.overrides != "" {
		overrideOpts, err := loadOverrides(opts.overrides)
		if err != nil {
			return err
		}
		synthOpts = append(synthOpts, overrideOpts...)
	}
	syn, err := synth.New(src, synthOpts...)
	if err != nil {
		return err
	}

	result, err := syn.Synthesize(cmd.Context())
	if err != nil {
		return err
	}

	if !opts.quiet {
		for _, d := range result.Diagnostics {
			fmt.Fprintln(cmd.ErrOrStderr(), d.String())
		}
	}
	if opts.strict && diag.MaxSeverity(result.Diagnostics) >= diag.SeverityWarning {
		return fmt.Errorf("synthesis produced %d diagnostics in strict mode", len(result.Diagnostics))
	}

	encoded, err := marshalOperations(result.Operations, opts.format)
	if err != nil {
		return err
	}

	if opts.output == "" || opts.output == StdinFilePath {
		_, err = cmd.OutOrStdout().Write(encoded)
		return err
	}
	if err := os.WriteFile(opts.output, encoded, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if !opts.quiet {
		routeCount := 0
		for _, byMethod := range result.Operations {
			routeCount += len(byMethod)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d operations to %s\n", routeCount, opts.output)
	}
	return nil
}

// loadOverrides reads a YAML file of override fragments keyed by
// "METHOD /path" and turns each entry into a synthesis option. A null value
// in a fragment deletes the corresponding descriptor field.
func loadOverrides(path string) ([]synth.Option, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading overrides: %w", err)
	}
	var byKey map[string]map[string]any
	if err := yaml.Unmarshal(raw, &byKey); err != nil {
		return nil, fmt.Errorf("decoding overrides: %w", err)
	}

	opts := make([]synth.Option, 0, len(byKey))
	for key, frag := range byKey {
		method, route, ok := strings.Cut(key, " ")
		if !ok || !strings.HasPrefix(route, "/") {
			return nil, fmt.Errorf("invalid override key %q, expected \"METHOD /path\"", key)
		}
		opts = append(opts, synth.WithOverride(route, method, frag))
	}
	return opts, nil
}

// marshalOperations encodes the operation set. YAML output round-trips
// through the JSON wire form so descriptor and schema custom marshaling
// applies in both formats.
func marshalOperations(ops synth.PathOperations, format string) ([]byte, error) {
	raw, err := json.MarshalIndent(ops, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding operations: %w", err)
	}
	if format == FormatJSON {
		return append(raw, '\n'), nil
	}

	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("encoding operations: %w", err)
	}
	out, err := yaml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("encoding operations to yaml: %w", err)
	}
	return out, nil
}
