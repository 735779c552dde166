package db

import (
	"fmt"
	"path/filepath"
	"syscall"
)

// ShardLen is the number of leading hash characters used as the
// subdirectory name.
const ShardLen = 2

// HashLen is the length of a hex-encoded SHA-256 digest.
const HashLen = 64

// Path is the on-disk location of one blob.
type Path struct {
	Hash  string
	Shard string
	Rel   string // relative to Db.Dir
	Abs   string // absolute, or relative to cwd if Db.Dir is
}

// New computes the location of the blob named by hash.  It fails with
// EINVAL if hash is not 64 lowercase hex characters.
func (path Path) New(db *Db, hash string) (res *Path, err error) {
	if !ValidHash(hash) {
		return nil, fmt.Errorf("%w: malformed hash: %q", syscall.EINVAL, hash)
	}
	path.Hash = hash
	path.Shard = hash[:ShardLen]
	path.Rel = filepath.Join(path.Shard, hash)
	path.Abs = filepath.Join(db.Dir, path.Rel)
	return &path, nil
}

// ValidHash reports whether s looks like a hex SHA-256 digest.
func ValidHash(s string) bool {
	if len(s) != HashLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isHex(s[i]) {
			return false
		}
	}
	return true
}

func validShard(s string) bool {
	if len(s) != ShardLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isHex(s[i]) {
			return false
		}
	}
	return true
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f')
}
