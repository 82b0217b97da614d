package model

import (
	"encoding/hex"
	"strings"
	"sync"

	"github.com/zeebo/xxh3"
)

// KeyLen is the length of every derived cache key (hex of a 128-bit xxh3 sum).
const KeyLen = 32

// KeySource is the request identity a cache key is derived from.
type KeySource struct {
	Namespace string
	Method    string
	URL       string
	Body      []byte
	// Component is an optional caller-supplied discriminator.
	Component string
}

var hasherPool = sync.Pool{New: func() any { return xxh3.New() }}

var separator = []byte{0}

// NewKey derives the fixed-length cache key used as both the memory key and the disk file name.
func NewKey(src KeySource) string {
	// acquire reusable hasher
	hasher := hasherPool.Get().(*xxh3.Hasher)
	hasher.Reset()

	_, _ = hasher.WriteString(src.Namespace)
	_, _ = hasher.Write(separator)
	_, _ = hasher.WriteString(strings.ToUpper(src.Method))
	_, _ = hasher.Write(separator)
	_, _ = hasher.WriteString(src.URL)
	_, _ = hasher.Write(separator)
	_, _ = hasher.Write(src.Body)
	_, _ = hasher.Write(separator)
	_, _ = hasher.WriteString(src.Component)

	sum := hasher.Sum128().Bytes()
	hasherPool.Put(hasher)

	return hex.EncodeToString(sum[:])
}

// HashString returns the 128-bit hex hash of s; used for hashed disk file names.
func HashString(s string) string {
	sum := xxh3.HashString128(s).Bytes()
	return hex.EncodeToString(sum[:])
}
