package source

import (
	"context"
	"fmt"
	"go/token"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/tools/go/packages"

	"github.com/routespec/routespec"
)

// Option is a functional option for configuring a Context.
type Option func(*config) error

// config holds the analysis configuration.
type config struct {
	root         string
	decodeNames  []string
	respondNames []string
	buildFlags   []string
	logger       routespec.Logger
}

func defaultConfig() *config {
	return &config{
		root:         ".",
		decodeNames:  []string{"DecodeJSON", "Decode", "Unmarshal", "Bind"},
		respondNames: []string{"JSON", "WriteJSON", "Respond"},
		logger:       routespec.NopLogger(),
	}
}

// WithRoot sets the routes root directory. Route packages are discovered
// recursively beneath it, and unit IDs are directory paths relative to it.
// Default is the current directory.
func WithRoot(dir string) Option {
	return func(c *config) error {
		if dir == "" {
			return fmt.Errorf("source: root directory cannot be empty")
		}
		c.root = dir
		return nil
	}
}

// WithDecodeFunctions sets the function names recognized as request body
// decode calls. Default: DecodeJSON, Decode, Unmarshal, Bind.
func WithDecodeFunctions(names ...string) Option {
	return func(c *config) error {
		if len(names) == 0 {
			return fmt.Errorf("source: at least one decode function name is required")
		}
		c.decodeNames = names
		return nil
	}
}

// WithRespondFunctions sets the function names recognized as response
// writes. Default: JSON, WriteJSON, Respond.
func WithRespondFunctions(names ...string) Option {
	return func(c *config) error {
		if len(names) == 0 {
			return fmt.Errorf("source: at least one respond function name is required")
		}
		c.respondNames = names
		return nil
	}
}

// WithBuildFlags sets extra build flags passed to the package loader.
func WithBuildFlags(flags ...string) Option {
	return func(c *config) error {
		c.buildFlags = flags
		return nil
	}
}

// WithLogger sets the logger used during analysis. Default discards logs.
func WithLogger(logger routespec.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return fmt.Errorf("source: logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// Context loads and caches analyzed route units. It is safe for concurrent
// use; Load replaces the cache wholesale and Invalidate evicts single units
// so the next Load re-analyzes only what changed on disk.
type Context struct {
	cfg *config

	mu    sync.RWMutex
	units map[string]*Unit
}

// NewContext creates an analysis context.
func NewContext(opts ...Option) (*Context, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return &Context{cfg: cfg, units: make(map[string]*Unit)}, nil
}

// Load type-checks every package under the routes root and analyzes the
// ones declaring handler functions. Units already in the cache are reused;
// call Invalidate first to force re-analysis of a changed unit. The returned
// slice is sorted by unit ID.
func (c *Context) Load(ctx context.Context) ([]*Unit, error) {
	mode := packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
		packages.NeedImports | packages.NeedDeps | packages.NeedTypes |
		packages.NeedSyntax | packages.NeedTypesInfo

	pcfg := &packages.Config{
		Mode:       mode,
		Context:    ctx,
		Dir:        c.cfg.root,
		Fset:       token.NewFileSet(),
		BuildFlags: c.cfg.buildFlags,
	}

	pkgs, err := packages.Load(pcfg, "./...")
	if err != nil {
		return nil, fmt.Errorf("source: loading route packages: %w", err)
	}

	absRoot, err := filepath.Abs(c.cfg.root)
	if err != nil {
		return nil, fmt.Errorf("source: resolving root: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fresh := make(map[string]*Unit, len(pkgs))
	for _, pkg := range pkgs {
		id, ok := unitID(absRoot, pkg)
		if !ok {
			continue
		}
		if cached, ok := c.units[id]; ok {
			fresh[id] = cached
			continue
		}

		for _, perr := range pkg.Errors {
			c.cfg.logger.Warn("route package has errors, analysis is best effort",
				"unit", id, "error", perr.Msg)
		}

		a := newAnalyzer(pkg.TypesInfo, pcfg.Fset, c.cfg.decodeNames, c.cfg.respondNames)
		u := a.unit(id, pkg.Syntax)
		if u == nil {
			continue
		}
		c.cfg.logger.Debug("analyzed route unit",
			"unit", id, "path", u.Path, "operations", len(u.Operations))
		fresh[id] = u
	}
	c.units = fresh

	out := make([]*Unit, 0, len(fresh))
	for _, u := range fresh {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Unit returns a cached unit by ID.
func (c *Context) Unit(id string) (*Unit, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.units[id]
	return u, ok
}

// Invalidate evicts one unit from the cache. The next Load re-analyzes it.
func (c *Context) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.units, id)
}

// InvalidateAll empties the cache.
func (c *Context) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.units = make(map[string]*Unit)
}

// unitID derives a unit's ID from its directory relative to the root.
func unitID(absRoot string, pkg *packages.Package) (string, bool) {
	if len(pkg.GoFiles) == 0 {
		return "", false
	}
	dir := filepath.Dir(pkg.GoFiles[0])
	rel, err := filepath.Rel(absRoot, dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
