package request

import (
	netcache "github.com/Borislavv/go-ash-netcache"
	"github.com/Borislavv/go-ash-netcache/model"
)

// CacheKind is how an endpoint's responses may be cached.
type CacheKind uint8

const (
	// CacheNone bypasses the application cache.
	CacheNone CacheKind = iota
	// CacheHTTPProtocol leaves caching to HTTP semantics of the transport; the application cache is bypassed.
	CacheHTTPProtocol
	// CacheApplication routes the endpoint through the response cache and the strategy.
	CacheApplication
)

func (k CacheKind) String() string {
	switch k {
	case CacheHTTPProtocol:
		return "http_protocol"
	case CacheApplication:
		return "application"
	default:
		return "none"
	}
}

// CacheInfo is the per-endpoint cache configuration. Zero fields mean cache defaults.
type CacheInfo struct {
	MemoryExpiration      *model.StorageExpiration
	MemoryAccessExtending model.ExpirationExtending
	DiskExpiration        *model.StorageExpiration
	DiskAccessExtending   model.ExpirationExtending

	// MemoryOnly keeps network results out of the disk tier.
	MemoryOnly bool

	Serializer          model.Serializer
	SynchronousDiskLoad bool

	// Key replaces the request identity (method, URL, body) in key derivation.
	Key string
}

// CachePolicy belongs to the endpoint description and is read-only to the resolver.
type CachePolicy struct {
	Kind CacheKind
	Info CacheInfo
}

func NoCache() CachePolicy { return CachePolicy{Kind: CacheNone} }

func HTTPProtocolCache(info CacheInfo) CachePolicy {
	return CachePolicy{Kind: CacheHTTPProtocol, Info: info}
}

func ApplicationCache(info CacheInfo) CachePolicy {
	return CachePolicy{Kind: CacheApplication, Info: info}
}

// Options converts the info into per-call cache options.
func (i CacheInfo) Options() netcache.Options {
	overrides := []netcache.Override{
		netcache.MemoryAccessExtending(i.MemoryAccessExtending),
		netcache.DiskAccessExtending(i.DiskAccessExtending),
		netcache.CacheToDiskAlso(!i.MemoryOnly),
	}
	if i.MemoryExpiration != nil {
		overrides = append(overrides, netcache.MemoryExpiration(*i.MemoryExpiration))
	}
	if i.DiskExpiration != nil {
		overrides = append(overrides, netcache.DiskExpiration(*i.DiskExpiration))
	}
	if i.Serializer != nil {
		overrides = append(overrides, netcache.UseSerializer(i.Serializer))
	}
	if i.SynchronousDiskLoad {
		overrides = append(overrides, netcache.SynchronousDiskLoad())
	}
	return netcache.NewOptions(overrides...)
}
