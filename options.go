package netcache

import "github.com/Borislavv/go-ash-netcache/model"

// Options is the per-call cache configuration. Nil expirations mean the store defaults.
type Options struct {
	MemoryExpiration      *model.StorageExpiration
	MemoryAccessExtending model.ExpirationExtending
	DiskExpiration        *model.StorageExpiration
	DiskAccessExtending   model.ExpirationExtending

	// CacheToDiskAlso makes network results persist to disk as well as memory.
	CacheToDiskAlso bool

	// Serializer converts responses for disk persistence.
	Serializer model.Serializer

	// SynchronousDiskLoad reads disk on the calling goroutine instead of the disk I/O context.
	SynchronousDiskLoad bool

	// FromMemoryOnly makes Retrieve skip the disk tier.
	FromMemoryOnly bool
}

// Override adjusts one field of Options.
type Override func(*Options)

// NewOptions builds an immutable options snapshot from the defaults and overrides, in order.
func NewOptions(overrides ...Override) Options {
	opts := Options{
		CacheToDiskAlso: true,
		Serializer:      model.EnvelopeSerializer{},
	}
	for _, override := range overrides {
		if override != nil {
			override(&opts)
		}
	}
	if opts.Serializer == nil {
		opts.Serializer = model.EnvelopeSerializer{}
	}
	return opts
}

func MemoryExpiration(e model.StorageExpiration) Override {
	return func(o *Options) { o.MemoryExpiration = &e }
}

func DiskExpiration(e model.StorageExpiration) Override {
	return func(o *Options) { o.DiskExpiration = &e }
}

func MemoryAccessExtending(x model.ExpirationExtending) Override {
	return func(o *Options) { o.MemoryAccessExtending = x }
}

func DiskAccessExtending(x model.ExpirationExtending) Override {
	return func(o *Options) { o.DiskAccessExtending = x }
}

func CacheToDiskAlso(enabled bool) Override {
	return func(o *Options) { o.CacheToDiskAlso = enabled }
}

func UseSerializer(s model.Serializer) Override {
	return func(o *Options) { o.Serializer = s }
}

func SynchronousDiskLoad() Override {
	return func(o *Options) { o.SynchronousDiskLoad = true }
}

func FromMemoryOnly() Override {
	return func(o *Options) { o.FromMemoryOnly = true }
}

// diskExtending makes cacheTime extension use the per-call disk expiration, if any.
func (o Options) diskExtending() model.ExpirationExtending {
	if o.DiskAccessExtending.IsCacheTime() && o.DiskExpiration != nil {
		return model.ExtendExplicit(*o.DiskExpiration)
	}
	return o.DiskAccessExtending
}
