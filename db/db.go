package db

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/natefinch/atomic"
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
)

// file modes
const (
	READ    = 0444
	DIRMODE = 0755
)

// names of the non-blob files kept in Dir
const (
	ManifestName = "manifest"
	LockName     = ".lock"
)

// Db is a content-addressed blob store rooted at Dir.  Blobs live in
// Dir/<shard>/<hash>; see Path.
type Db struct {
	Dir   string
	flock *flock.Flock
}

// Open returns the store rooted at dir, creating dir if it doesn't
// exist yet.
func Open(dir string) (db *Db, err error) {
	defer Return(&err)
	dir = filepath.Clean(dir)
	err = mkdir(dir)
	Ck(err)
	info, err := os.Stat(dir)
	Ck(err)
	if !info.IsDir() {
		return nil, &NotDbError{Dir: dir}
	}
	return &Db{Dir: dir}, nil
}

type NotDbError struct {
	Dir string
}

func (e *NotDbError) Error() string {
	return fmt.Sprintf("not a directory: %s", e.Dir)
}

// ManifestPath returns the location of the manifest file.
func (db *Db) ManifestPath() string {
	return filepath.Join(db.Dir, ManifestName)
}

// Exists reports whether a blob for hash is stored.
func (db *Db) Exists(hash string) bool {
	path, err := Path{}.New(db, hash)
	if err != nil {
		return false
	}
	return exists(path.Abs)
}

// Put copies the file at src into the store under hash.  If a blob for
// hash already exists Put does nothing and returns created == false;
// an existing blob is never rewritten.  The copy goes through a temp
// file in the shard directory and is renamed into place, so a failed
// Put leaves no partial blob behind.
//
// Put trusts the caller's hash; it does not re-digest src.
func (db *Db) Put(src string, hash string) (created bool, err error) {
	defer Return(&err)

	path, err := Path{}.New(db, hash)
	Ck(err)
	if exists(path.Abs) {
		log.Debugf("blob %s already stored", hash)
		return false, nil
	}

	// make sure shard dir exists
	err = mkdir(filepath.Dir(path.Abs))
	Ck(err)

	fh, err := os.Open(src)
	Ck(err)
	defer fh.Close()

	err = atomic.WriteFile(path.Abs, fh)
	Ck(err)
	err = os.Chmod(path.Abs, READ)
	Ck(err)

	log.Debugf("stored %s as %s", src, path.Rel)
	return true, nil
}

// GetBlob opens the blob for hash for reading.  The caller closes it.
func (db *Db) GetBlob(hash string) (rc io.ReadCloser, err error) {
	path, err := Path{}.New(db, hash)
	if err != nil {
		return
	}
	return os.Open(path.Abs)
}

// ListAll returns the hash of every stored blob, in lexical order.
// Only hash-named regular files inside shard directories are
// returned; anything else in Dir is ignored.
func (db *Db) ListAll() (hashes []string, err error) {
	defer Return(&err)

	shards, err := os.ReadDir(db.Dir)
	Ck(err)
	for _, shard := range shards {
		if !shard.IsDir() || !validShard(shard.Name()) {
			continue
		}
		files, err := os.ReadDir(filepath.Join(db.Dir, shard.Name()))
		Ck(err)
		for _, file := range files {
			name := file.Name()
			if !file.Type().IsRegular() || !ValidHash(name) {
				continue
			}
			if name[:ShardLen] != shard.Name() {
				log.Debugf("ignoring misplaced blob %s/%s", shard.Name(), name)
				continue
			}
			hashes = append(hashes, name)
		}
	}
	return
}

// Rm deletes the blob for hash and returns an error if it doesn't
// exist.
func (db *Db) Rm(hash string) (err error) {
	path, err := Path{}.New(db, hash)
	if err != nil {
		return
	}
	return os.Remove(path.Abs)
}

type LockedError struct {
	Dir string
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("destination is in use by another process: %s", e.Dir)
}

// Lock takes an exclusive lock on the store.  It doesn't wait: if
// another process holds the lock, Lock returns a *LockedError.
func (db *Db) Lock() (err error) {
	defer Return(&err)
	Assert(db.flock == nil, "already locked: %s", db.Dir)
	fl := flock.New(filepath.Join(db.Dir, LockName))
	ok, err := fl.TryLock()
	Ck(err)
	if !ok {
		return &LockedError{Dir: db.Dir}
	}
	db.flock = fl
	return
}

// Unlock releases the lock taken by Lock.  The lock file itself is
// left in place.
func (db *Db) Unlock() (err error) {
	if db.flock == nil {
		return
	}
	err = db.flock.Unlock()
	db.flock = nil
	return
}
