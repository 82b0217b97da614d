package request

import (
	netcache "github.com/Borislavv/go-ash-netcache"
	"github.com/Borislavv/go-ash-netcache/model"
)

type strategyKind uint8

const (
	kindServer strategyKind = iota
	kindCacheOnly
	kindCacheIfPossible
	kindCacheThenServer
	kindCustom
)

// Strategy selects, per call, how the cache and the network are combined.
// The zero value is Server.
type Strategy struct {
	kind   strategyKind
	custom CustomPolicy
}

// Server always asks the network and stores the result.
func Server() Strategy { return Strategy{kind: kindServer} }

// CacheOnly never asks the network; a miss is surfaced as ErrResponseNotExisting.
func CacheOnly() Strategy { return Strategy{kind: kindCacheOnly} }

// CacheIfPossible serves a cached response and otherwise asks the network.
func CacheIfPossible() Strategy { return Strategy{kind: kindCacheIfPossible} }

// CacheThenServer serves a cached response and refreshes it from the network.
// The completion then fires twice.
func CacheThenServer() Strategy { return Strategy{kind: kindCacheThenServer} }

// Custom lets p decide. A nil p behaves as CacheIfPossible.
func Custom(p CustomPolicy) Strategy {
	if p == nil {
		return CacheIfPossible()
	}
	return Strategy{kind: kindCustom, custom: p}
}

func (s Strategy) String() string {
	switch s.kind {
	case kindCacheOnly:
		return "cache_only"
	case kindCacheIfPossible:
		return "cache_if_possible"
	case kindCacheThenServer:
		return "cache_then_server"
	case kindCustom:
		return "custom"
	default:
		return "server"
	}
}

// CustomPolicy decides the network and cache steps of a Custom strategy.
type CustomPolicy interface {
	// ShouldSendRequest is asked on a cache hit. False returns the cached response alone.
	ShouldSendRequest(target Target, cached netcache.Result) bool
	// ShouldUpdateCache is asked before sending on a cache hit; false keeps the network result out of the cache.
	ShouldUpdateCache(target Target, cached netcache.Result) bool
	// ShouldRequestIfCacheFetchFailure is asked on a failed lookup, misses included.
	// False surfaces err instead of asking the network.
	ShouldRequestIfCacheFetchFailure(err *model.CacheError) bool
}

// PolicyFuncs adapts plain functions to CustomPolicy. Nil functions answer true.
type PolicyFuncs struct {
	SendRequest           func(target Target, cached netcache.Result) bool
	UpdateCache           func(target Target, cached netcache.Result) bool
	RequestIfFetchFailure func(err *model.CacheError) bool
}

func (p PolicyFuncs) ShouldSendRequest(target Target, cached netcache.Result) bool {
	return p.SendRequest == nil || p.SendRequest(target, cached)
}

func (p PolicyFuncs) ShouldUpdateCache(target Target, cached netcache.Result) bool {
	return p.UpdateCache == nil || p.UpdateCache(target, cached)
}

func (p PolicyFuncs) ShouldRequestIfCacheFetchFailure(err *model.CacheError) bool {
	return p.RequestIfFetchFailure == nil || p.RequestIfFetchFailure(err)
}
