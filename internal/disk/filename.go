package disk

import (
	"net/url"
	"strings"

	"github.com/Borislavv/go-ash-netcache/model"
)

// tmpPrefix marks files being written; sweeps and size accounting skip them.
const tmpPrefix = ".tmp-"

// fileName maps a cache key to the name of its file inside the store directory.
func (s *Store) fileName(key string) string {
	if !s.hashed {
		return sanitize(key)
	}
	name := model.HashString(key)
	if s.preserveExt {
		if ext := extension(key); ext != "" {
			name += "." + ext
		}
	}
	return name
}

// extension returns the key's last dot segment without an "@" qualifier: "logo.png@2x" -> "png".
func extension(key string) string {
	i := strings.LastIndexByte(key, '.')
	if i < 0 || i == len(key)-1 {
		return ""
	}
	ext := key[i+1:]
	if at := strings.IndexByte(ext, '@'); at >= 0 {
		ext = ext[:at]
	}
	if strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}

// sanitize escapes key into a single path segment. Distinct keys give distinct names:
// separators and "%" are percent-encoded, a leading dot becomes "%2E".
func sanitize(key string) string {
	if key == "" {
		return "%"
	}
	name := url.PathEscape(key)
	if name[0] == '.' {
		name = "%2E" + name[1:]
	}
	return name
}
