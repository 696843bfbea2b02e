package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/fleetdesk/fleetdesk-go/internal/cli/connection"
	"github.com/fleetdesk/fleetdesk-go/internal/storage"
	"github.com/fleetdesk/fleetdesk-go/internal/telemetry/logger"
	"github.com/fleetdesk/fleetdesk-go/internal/telemetry/metric"
)

const (
	// StoreKey is the local store key of the durable copy.
	StoreKey = "routesTree"

	// TreePath is the API path serving the route tree.
	TreePath = "/lookup/routes-tree"

	// DefaultTTL is how long a fetched tree stays usable.
	DefaultTTL = 60 * time.Second
)

// Fetcher performs API requests.
type Fetcher interface {
	Request(ctx context.Context, path string, opts connection.RequestOptions) (*connection.Body, error)
}

// entry is the durable form: {"at": <epoch millis>, "data": {...}}.
type entry struct {
	At   int64 `json:"at"`
	Data *Tree `json:"data"`
}

// Options configures a RouteTreeCache.
type Options struct {
	TTL     time.Duration
	Now     func() time.Time
	Logger  logger.Logger
	Metrics *metric.Registry
}

// RouteTreeCache is a two-level cache of the route tree.
type RouteTreeCache struct {
	fetcher Fetcher
	store   storage.LocalStore
	ttl     time.Duration
	now     func() time.Time
	log     logger.Logger
	metrics *metric.Registry

	mu   sync.RWMutex
	tree *Tree
	at   int64 // epoch millis of the fetch that produced tree
}

// NewRouteTreeCache creates an empty cache. store may be nil, in which case
// only the memory level is used.
func NewRouteTreeCache(fetcher Fetcher, store storage.LocalStore, opts Options) *RouteTreeCache {
	c := &RouteTreeCache{
		fetcher: fetcher,
		store:   store,
		ttl:     opts.TTL,
		now:     opts.Now,
		log:     opts.Logger,
		metrics: opts.Metrics,
	}
	if c.ttl <= 0 {
		c.ttl = DefaultTTL
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.log == nil {
		c.log = logger.Discard()
	}
	return c
}

// Get returns the route tree.
//
// Unless forceRefresh is set, a memory copy younger than the TTL is returned
// without I/O, and a durable copy younger than the TTL is adopted into
// memory along with its fetch time. Otherwise the
// tree is fetched and written to both levels. Fetch errors are returned
// unchanged; local store failures are only logged.
func (c *RouteTreeCache) Get(ctx context.Context, forceRefresh bool) (*Tree, error) {
	if !forceRefresh {
		c.mu.RLock()
		t, at := c.tree, c.at
		c.mu.RUnlock()
		if t != nil && c.fresh(at) {
			c.metrics.CacheEvent(metric.CacheHitMemory)
			return t, nil
		}

		if t, at := c.loadDurable(ctx); t != nil {
			c.mu.Lock()
			c.tree, c.at = t, at
			c.mu.Unlock()
			c.metrics.CacheEvent(metric.CacheHitLocal)
			return t, nil
		}
		c.metrics.CacheEvent(metric.CacheMiss)
	} else {
		c.metrics.CacheEvent(metric.CacheRefresh)
	}

	body, err := c.fetcher.Request(ctx, TreePath, connection.RequestOptions{})
	if err != nil {
		return nil, err
	}

	t := &Tree{}
	if !body.IsRaw() && body.Object() != nil {
		if err := body.Decode(t); err != nil {
			return nil, err
		}
	}
	t.normalize()
	at := c.now().UnixMilli()

	c.mu.Lock()
	c.tree, c.at = t, at
	c.mu.Unlock()

	c.saveDurable(ctx, t, at)
	return t, nil
}

// Invalidate drops both the memory and the durable copy.
func (c *RouteTreeCache) Invalidate() {
	c.mu.Lock()
	c.tree, c.at = nil, 0
	c.mu.Unlock()
	c.metrics.CacheEvent(metric.CacheInvalid)

	if c.store == nil {
		return
	}
	if err := c.store.Delete(context.Background(), StoreKey); err != nil {
		c.log.Debug("delete cached route tree failed", "error", err)
	}
}

// SubRoutesFor returns the sub-routes of routeID from the memory copy, even
// an expired one. It never fetches; with nothing in memory the result is
// empty.
func (c *RouteTreeCache) SubRoutesFor(routeID string) []SubRoute {
	c.mu.RLock()
	t := c.tree
	c.mu.RUnlock()

	out := []SubRoute{}
	if t == nil {
		return out
	}
	for _, s := range t.SubRoutes {
		if string(s.RouteID) == routeID {
			out = append(out, s)
		}
	}
	return out
}

// Cached reports whether a memory copy is present.
func (c *RouteTreeCache) Cached() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree != nil
}

func (c *RouteTreeCache) fresh(at int64) bool {
	return at != 0 && c.now().UnixMilli()-at < c.ttl.Milliseconds()
}

func (c *RouteTreeCache) loadDurable(ctx context.Context) (*Tree, int64) {
	if c.store == nil {
		return nil, 0
	}
	data, err := c.store.Get(ctx, StoreKey)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			c.log.Debug("read cached route tree failed", "error", err)
		}
		return nil, 0
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.log.Debug("cached route tree is corrupt", "error", err)
		return nil, 0
	}
	if e.Data == nil || !c.fresh(e.At) {
		return nil, 0
	}
	e.Data.normalize()
	return e.Data, e.At
}

func (c *RouteTreeCache) saveDurable(ctx context.Context, t *Tree, at int64) {
	if c.store == nil {
		return
	}
	data, err := json.Marshal(entry{At: at, Data: t})
	if err != nil {
		c.log.Debug("encode route tree failed", "error", err)
		return
	}
	if err := c.store.Set(ctx, StoreKey, data); err != nil {
		c.log.Debug("write cached route tree failed", "error", err)
	}
}

var _ connection.Invalidator = (*RouteTreeCache)(nil)
