package synth

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/routespec/routespec"
)

// Option is a functional option for configuring a Synthesizer.
type Option func(*config) error

type config struct {
	workers  int
	logger   routespec.Logger
	explicit map[string]*ExplicitSchema
	override map[string]map[string]any
}

func defaultConfig() *config {
	return &config{
		workers:  runtime.GOMAXPROCS(0),
		logger:   routespec.NopLogger(),
		explicit: make(map[string]*ExplicitSchema),
		override: make(map[string]map[string]any),
	}
}

// WithWorkers caps how many route units are synthesized concurrently.
// Default is GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return fmt.Errorf("synth: workers must be at least 1, got %d", n)
		}
		c.workers = n
		return nil
	}
}

// WithLogger sets the logger used during synthesis. Default discards logs.
func WithLogger(logger routespec.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return fmt.Errorf("synth: logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithExplicit registers a hand-written validation schema for one
// operation. It takes precedence over everything inferred from source.
func WithExplicit(path, method string, es *ExplicitSchema) Option {
	return func(c *config) error {
		if es == nil {
			return fmt.Errorf("synth: explicit schema for %s %s cannot be nil", method, path)
		}
		c.explicit[operationKey(path, method)] = es
		return nil
	}
}

// WithOverride registers a destructive descriptor fragment for one
// operation. Null values in the fragment delete the corresponding keys from
// the merged descriptor. Overrides take precedence over every other source.
func WithOverride(path, method string, frag map[string]any) Option {
	return func(c *config) error {
		if frag == nil {
			return fmt.Errorf("synth: override fragment for %s %s cannot be nil", method, path)
		}
		c.override[operationKey(path, method)] = frag
		return nil
	}
}

func operationKey(path, method string) string {
	return strings.ToUpper(method) + " " + path
}
