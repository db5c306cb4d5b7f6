package httpvalidator

import (
	"fmt"

	"github.com/routespec/routespec"
	"github.com/routespec/routespec/descriptor"
)

// Option is a functional option for configuring a Validator.
type Option func(*config) error

// config holds the configuration for validation operations.
type config struct {
	defaults    descriptor.Defaults
	maxBodySize int64
	logger      routespec.Logger
}

// defaultMaxBodySize caps request and response bodies at 10 MiB.
const defaultMaxBodySize = 10 << 20

func defaultConfig() *config {
	return &config{
		defaults: descriptor.Defaults{
			Skip:          false,
			DetailedError: true,
		},
		maxBodySize: defaultMaxBodySize,
		logger:      routespec.NopLogger(),
	}
}

// WithDefaults sets the global fallback values for the per-element
// validation flags. Operation and field level flags override them.
// Default: validate everything, detailed errors on.
func WithDefaults(d descriptor.Defaults) Option {
	return func(c *config) error {
		c.defaults = d
		return nil
	}
}

// WithMaxBodySize caps how many bytes of a request or response body are
// read for validation. Default is 10 MiB.
func WithMaxBodySize(n int64) Option {
	return func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("httpvalidator: max body size must be positive, got %d", n)
		}
		c.maxBodySize = n
		return nil
	}
}

// WithLogger sets the logger used for validation failures that are not
// surfaced to clients, such as invalid responses. Default discards logs.
func WithLogger(logger routespec.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return fmt.Errorf("httpvalidator: logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}
