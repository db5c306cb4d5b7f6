package mcpserver

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"

	"github.com/routespec/routespec/source"
	"github.com/routespec/routespec/synth"
)

// opsInput represents the two ways an operation set can be provided to a
// tool. Exactly one of Root or Operations must be set.
type opsInput struct {
	Root       string `json:"root,omitempty"       jsonschema:"Path to a Go module root to analyze; route handler packages are discovered under it"`
	Operations string `json:"operations,omitempty" jsonschema:"Inline JSON operation set, as produced by the synthesize tool"`
}

// resolve produces the operation set. Root inputs run source analysis and
// synthesis (cached per session); inline inputs are decoded directly and
// carry no diagnostics.
func (in opsInput) resolve(ctx context.Context) (*synth.Result, error) {
	switch {
	case in.Root != "" && in.Operations != "":
		return nil, fmt.Errorf("provide either root or operations, not both")
	case in.Operations != "":
		var ops synth.PathOperations
		if err := json.Unmarshal([]byte(in.Operations), &ops); err != nil {
			return nil, fmt.Errorf("decoding operations: %w", err)
		}
		return &synth.Result{Operations: ops}, nil
	case in.Root != "":
		return synthesizeRoot(ctx, in.Root)
	default:
		return nil, fmt.Errorf("either root or operations is required")
	}
}

// synthesizeRoot analyzes the module at root and synthesizes its operation
// set, consulting the session cache first.
func synthesizeRoot(ctx context.Context, root string) (*synth.Result, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}

	if cfg.CacheEnabled {
		if result := opsCache.get(abs); result != nil {
			return result, nil
		}
	}

	srcOpts := []source.Option{source.WithRoot(abs)}
	if len(cfg.DecodeFunctions) > 0 {
		srcOpts = append(srcOpts, source.WithDecodeFunctions(cfg.DecodeFunctions...))
	}
	if len(cfg.RespondFunctions) > 0 {
		srcOpts = append(srcOpts, source.WithRespondFunctions(cfg.RespondFunctions...))
	}
	src, err := source.NewContext(srcOpts...)
	if err != nil {
		return nil, err
	}

	var opts []synth.Option
	if cfg.Workers > 0 {
		opts = append(opts, synth.WithWorkers(cfg.Workers))
	}
	syn, err := synth.New(src, opts...)
	if err != nil {
		return nil, err
	}
	result, err := syn.Synthesize(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.CacheEnabled {
		opsCache.put(abs, result)
	}
	return result, nil
}

// cacheEntry holds a cached synthesis result with TTL expiry.
type cacheEntry struct {
	result    *synth.Result
	insertAt  time.Time
	expiresAt time.Time
}

// opsCacheStore is a session-scoped cache of synthesized operation sets,
// keyed by absolute module root. Entries expire after cfg.CacheTTL and a
// background sweeper removes expired entries.
type opsCacheStore struct {
	mu             sync.Mutex
	entries        map[string]*cacheEntry
	maxSize        int
	sweeperStarted atomic.Bool
}

var opsCache = &opsCacheStore{
	entries: make(map[string]*cacheEntry),
	maxSize: cfg.CacheMaxSize,
}

// get returns a cached result or nil. Expired entries are lazily removed.
func (c *opsCacheStore) get(key string) *synth.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil
	}
	e.insertAt = time.Now()
	return e.result
}

// put stores a result, evicting the oldest entry at capacity.
func (c *opsCacheStore) put(key string, result *synth.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry := &cacheEntry{result: result, insertAt: now, expiresAt: now.Add(cfg.CacheTTL)}
	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry
		return
	}

	if len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldestAt time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.insertAt.Before(oldestAt) {
				oldestKey, oldestAt = k, e.insertAt
			}
		}
		delete(c.entries, oldestKey)
	}
	c.entries[key] = entry
}

// invalidate drops a single root from the cache.
func (c *opsCacheStore) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// startSweeper launches a background goroutine that periodically removes
// expired entries. Safe to call more than once.
func (c *opsCacheStore) startSweeper(ctx context.Context, interval time.Duration) {
	if !c.sweeperStarted.CompareAndSwap(false, true) {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

func (c *opsCacheStore) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}
