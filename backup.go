package hashbak

import (
	"io/fs"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/t7a/hashbak/db"
)

// Backup copies every regular file under Sources into the blob store
// at Dest, skipping paths that match any Excludes pattern, then writes
// Dest/manifest and removes blobs the new manifest doesn't reference.
type Backup struct {
	Sources  []string
	Excludes []string
	Dest     string
	Guard    Guard    // defaults to PerturbGuard
	Digester Digester // defaults to FileDigester
}

// BackupResult summarizes a backup run.  Errors holds the files that
// were skipped; they are not in the manifest.
type BackupResult struct {
	Files   int // files recorded in the manifest
	Stored  int // new blobs written
	Deduped int // files whose content was already stored
	Removed int // blobs garbage collected
	Errors  []*FileError
}

// run is the state of one Backup.Run call.
type run struct {
	Backup
	db       *db.Db
	exclude  *Filter
	manifest Manifest
	seen     map[Digest]string // digest -> first path recorded under it
	result   *BackupResult
}

// Run performs the backup.  Per-file failures are logged, collected in
// the result and otherwise ignored.  A *CollisionError aborts the run
// immediately; the destination may then hold new blobs but the old
// manifest is left in place and nothing is garbage collected.
func (b Backup) Run() (res *BackupResult, err error) {
	exclude, err := NewFilter(b.Excludes)
	if err != nil {
		return
	}
	if b.Guard == nil {
		b.Guard = PerturbGuard{}
	}
	if b.Digester == nil {
		b.Digester = FileDigester{}
	}

	store, err := db.Open(b.Dest)
	if err != nil {
		return
	}
	err = store.Lock()
	if err != nil {
		return
	}
	defer store.Unlock()

	r := &run{
		Backup:   b,
		db:       store,
		exclude:  exclude,
		manifest: make(Manifest),
		seen:     make(map[Digest]string),
		result:   &BackupResult{},
	}
	res = r.result

	for _, src := range b.Sources {
		log.Infof("Backing up %s...", src)
		err = r.walk(src)
		if err != nil {
			return
		}
	}

	log.Info("Writing manifest...")
	err = WriteManifest(store.ManifestPath(), r.manifest)
	if err != nil {
		return res, errors.Wrap(err, "writing manifest")
	}
	res.Files = len(r.manifest)

	err = r.gc()
	if err != nil {
		return
	}

	log.Info("Done.")
	return
}

func (r *run) skip(op, path string, err error) {
	fe, ok := err.(*FileError)
	if !ok {
		fe = &FileError{Op: op, Path: path, Err: err}
	}
	log.Warnf("skipping: %v", fe)
	r.result.Errors = append(r.result.Errors, fe)
}

func (r *run) walk(root string) (err error) {
	// don't back up the destination into itself
	destAbs, _ := filepath.Abs(r.db.Dir)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			r.skip("walk", path, err)
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			abs, _ := filepath.Abs(path)
			if abs == destAbs {
				log.Debugf("skipping destination %s", path)
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			log.Debugf("skipping non-regular file %s", path)
			return nil
		}
		if r.exclude.Match(path) {
			return nil
		}
		return r.file(path)
	})
}

// file backs up one regular file.  Only a collision is returned as an
// error; everything else is recorded with skip.
func (r *run) file(path string) (err error) {
	err = checkPath(path)
	if err != nil {
		r.skip("record", path, err)
		return nil
	}

	d, err := r.Digester.Digest(path)
	if err != nil {
		r.skip("digest", path, err)
		return nil
	}

	other, seen := r.seen[d]
	if seen && other != path {
		same, err := r.Guard.Same(path, other)
		if err != nil {
			r.skip("verify", path, err)
			return nil
		}
		if !same {
			err = &CollisionError{Digest: d, Path: path, Other: other}
			log.Error(err)
			return err
		}
	}

	created, err := r.db.Put(path, d.String())
	if err != nil {
		r.skip("copy", path, err)
		return nil
	}
	if created {
		r.result.Stored++
	} else {
		r.result.Deduped++
	}

	r.manifest[path] = d
	if !seen {
		r.seen[d] = path
	}
	return nil
}

// gc removes every stored blob the new manifest doesn't reference.
func (r *run) gc() (err error) {
	hashes, err := r.db.ListAll()
	if err != nil {
		return errors.Wrap(err, "listing blobs")
	}
	for _, hash := range hashes {
		d, err := ParseDigest(hash)
		if err != nil {
			// ListAll only returns valid hashes
			return err
		}
		if _, ok := r.seen[d]; ok {
			continue
		}
		log.Debugf("removing unreferenced blob %s", hash)
		err = r.db.Rm(hash)
		if err != nil {
			r.skip("remove", hash, err)
			continue
		}
		r.result.Removed++
	}
	return nil
}
