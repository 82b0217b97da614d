// Package request decides, per call, how the response cache and the network are combined.
package request

import (
	"context"
	"log/slog"
	"time"

	netcache "github.com/Borislavv/go-ash-netcache"
	"github.com/Borislavv/go-ash-netcache/model"
)

// Transport performs the network call for a target.
type Transport interface {
	Do(ctx context.Context, target Target) (*model.Response, error)
}

type TransportFunc func(ctx context.Context, target Target) (*model.Response, error)

func (f TransportFunc) Do(ctx context.Context, target Target) (*model.Response, error) {
	return f(ctx, target)
}

// Cache is the part of the response cache the resolver uses.
type Cache interface {
	Namespace() string
	DiskEnabled() bool
	// Now is the clock the cache tiers judge expiration windows by.
	Now() time.Time
	Retrieve(key string, opts netcache.Options, done func(netcache.Result, error))
	Store(resp *model.Response, key string, opts netcache.Options, toDisk bool, done func(error))
}

// Result is one delivery to a Request completion. Err is nil or a *model.CacheError.
type Result struct {
	Response  *model.Response
	Err       *model.CacheError
	FromCache bool
}

// Cancellable aborts the network call of a Request. Cache reads and scheduled
// cache writes are not affected.
type Cancellable interface {
	Cancel()
	IsCancelled() bool
}

type cancellable struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func (c *cancellable) Cancel()           { c.cancel() }
func (c *cancellable) IsCancelled() bool { return c.ctx.Err() != nil }

type Resolver struct {
	ctx       context.Context
	cache     Cache
	transport Transport
	logger    *slog.Logger
}

func NewResolver(ctx context.Context, cache Cache, transport Transport, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{ctx: ctx, cache: cache, transport: transport, logger: logger}
}

// Key derives the cache key of target.
func (r *Resolver) Key(target Target) string {
	src := model.KeySource{Namespace: r.cache.Namespace()}
	if override := target.CachePolicy().Info.Key; override != "" {
		src.Component = override
	} else {
		src.Method, src.URL, src.Body = target.Method(), target.URL(), target.Body()
	}
	return model.NewKey(src)
}

// Request runs strategy for target. completion fires once, or twice for CacheThenServer
// hits and Custom hits that send, the cached result first.
func (r *Resolver) Request(strategy Strategy, target Target, completion func(Result)) Cancellable {
	ctx, cancel := context.WithCancel(r.ctx)
	handle := &cancellable{ctx: ctx, cancel: cancel}

	policy := target.CachePolicy()
	if policy.Kind != CacheApplication {
		go r.send(ctx, cancel, target, nil, completion)
		return handle
	}

	call := &cacheCall{key: r.Key(target), opts: policy.Info.Options()}

	switch strategy.kind {
	case kindServer:
		go r.send(ctx, cancel, target, call, completion)

	case kindCacheOnly:
		r.cache.Retrieve(call.key, call.opts, func(res netcache.Result, err error) {
			cancel()
			completion(cachedResult(res, err))
		})

	case kindCacheIfPossible:
		r.cache.Retrieve(call.key, call.opts, func(res netcache.Result, err error) {
			if err == nil {
				cancel()
				completion(cachedResult(res, nil))
				return
			}
			go r.send(ctx, cancel, target, call, completion)
		})

	case kindCacheThenServer:
		r.cache.Retrieve(call.key, call.opts, func(res netcache.Result, err error) {
			if err == nil {
				completion(cachedResult(res, nil))
			}
			go r.send(ctx, cancel, target, call, completion)
		})

	case kindCustom:
		p := strategy.custom
		r.cache.Retrieve(call.key, call.opts, func(res netcache.Result, err error) {
			if err != nil {
				cerr := model.AsCacheError(err)
				if !p.ShouldRequestIfCacheFetchFailure(cerr) {
					cancel()
					completion(Result{Err: cerr})
					return
				}
				go r.send(ctx, cancel, target, call, completion)
				return
			}

			if !p.ShouldSendRequest(target, res) {
				cancel()
				completion(cachedResult(res, nil))
				return
			}
			next := call
			if !p.ShouldUpdateCache(target, res) {
				next = nil
			}
			completion(cachedResult(res, nil))
			go r.send(ctx, cancel, target, next, completion)
		})
	}

	return handle
}

// cacheCall is the cache side of one request; nil means the network result is not stored.
type cacheCall struct {
	key  string
	opts netcache.Options
}

// send issues the network call. Always started on its own goroutine so that a slow
// transport never holds the disk I/O context.
func (r *Resolver) send(ctx context.Context, cancel context.CancelFunc, target Target, c *cacheCall, completion func(Result)) {
	defer cancel()

	resp, err := r.transport.Do(ctx, target)
	if err != nil {
		cerr := model.AsCacheError(err)
		r.logger.Debug("request failed", "url", target.URL(), "err", cerr)
		completion(Result{Err: cerr})
		return
	}

	if c != nil {
		r.store(target, c, resp)
	}
	completion(Result{Response: resp})
}

// store writes resp through the cache unless the request or the policy make it uncacheable.
// An expired memory window keeps the response out of memory; the memory tier refuses it.
func (r *Resolver) store(target Target, c *cacheCall, resp *model.Response) {
	if resp == nil || len(resp.Body) == 0 || target.URL() == "" {
		return
	}

	now := r.cache.Now()
	memoryExpired := c.opts.MemoryExpiration != nil && c.opts.MemoryExpiration.IsExpired(now)
	toDisk := c.opts.CacheToDiskAlso && r.cache.DiskEnabled() &&
		(c.opts.DiskExpiration == nil || !c.opts.DiskExpiration.IsExpired(now))
	if memoryExpired && !toDisk {
		return
	}

	r.cache.Store(resp, c.key, c.opts, toDisk, func(err error) {
		if err != nil {
			r.logger.Warn("cannot cache response", "url", target.URL(), "key", c.key, "err", err)
		}
	})
}

func cachedResult(res netcache.Result, err error) Result {
	if err != nil {
		return Result{Err: model.AsCacheError(err)}
	}
	return Result{Response: res.Response, FromCache: true}
}
