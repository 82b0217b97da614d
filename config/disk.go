package config

import "github.com/Borislavv/go-ash-netcache/model"

// FileNameMode selects how cache keys map to file names.
type FileNameMode string

const (
	// FileNameHashed names files after the xxh3 hash of the key.
	FileNameHashed FileNameMode = "hashed"

	// FileNameRaw uses the key itself; keys must be valid file names.
	FileNameRaw FileNameMode = "raw"
)

type DiskCfg struct {
	// Name identifies the store; each name owns exactly one directory.
	Name string `yaml:"name"`

	// Dir is the parent directory. The store lives in Dir/Name.
	// Empty means <user cache dir>/netcache.
	Dir string `yaml:"dir"`

	// SizeLimit bounds the total bytes on disk. 0 means unlimited.
	// When exceeded, a sweep removes least recently accessed files until half of the limit is reached.
	SizeLimit int64 `yaml:"size_limit"`

	// Expiration applied to files stored without a per-call override. Example: "7d".
	// Missing or "0s" means the default; "expired" is kept as configured.
	Expiration model.StorageExpiration `yaml:"expiration"`

	// FileName supported values:
	//   - "hashed": file name is the hash of the key (default)
	//   - "raw":    file name is the key
	FileName FileNameMode `yaml:"file_name"`

	// PreserveExtension appends the key's extension to hashed file names,
	// so "logo.png@2x" is stored as "<hash>.png".
	PreserveExtension bool `yaml:"preserve_extension"`

	// IsHashed is derived from FileName during init. It is not read from YAML.
	IsHashed bool // virtual: computed during init
}

func (cfg *DiskCfg) Enabled() bool {
	return cfg != nil
}
