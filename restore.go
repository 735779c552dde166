package hashbak

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/pkg/fileutils"
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
	"github.com/t7a/hashbak/db"
)

// Restore rebuilds files listed in a manifest under Target.  Blobs are
// looked up in the directory that holds the manifest.  If Includes is
// non-empty, only paths matching at least one pattern are restored.
type Restore struct {
	Manifest string
	Target   string
	Includes []string
}

// RestoreResult summarizes a restore run.
type RestoreResult struct {
	Restored int
	Errors   []*FileError
}

// Run restores every included entry.  An entry that can't be restored
// (missing blob, unwritable target) is logged and skipped; the rest
// are still restored.  If any entry failed, Run returns the result
// together with a *RestoreError listing the failures.
func (r Restore) Run() (res *RestoreResult, err error) {
	include, err := NewFilter(r.Includes)
	if err != nil {
		return
	}
	_, entries, err := ReadManifest(r.Manifest)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", r.Manifest)
	}
	store := &db.Db{Dir: filepath.Dir(r.Manifest)}

	res = &RestoreResult{}
	for _, e := range entries {
		if !include.Empty() && !include.Match(e.Path) {
			continue
		}
		target := targetPath(r.Target, e.Path)
		err = restoreFile(store, e.Digest, target)
		if err != nil {
			fe := &FileError{Op: "restore", Path: e.Path, Err: err}
			log.Warnf("skipping: %v", fe)
			res.Errors = append(res.Errors, fe)
			continue
		}
		log.Debugf("restored %s", target)
		res.Restored++
	}
	if len(res.Errors) > 0 {
		return res, &RestoreError{Failed: res.Errors}
	}
	return res, nil
}

// targetPath re-roots an original path under root.  Leading ".."
// elements are dropped so that nothing is written outside root:
// "../data/f" restores to root/data/f, "/abs/f" to root/abs/f.
func targetPath(root, path string) string {
	parts := strings.Split(filepath.ToSlash(filepath.Clean(path)), "/")
	for len(parts) > 0 && parts[0] == ".." {
		parts = parts[1:]
	}
	return filepath.Join(root, filepath.FromSlash(strings.Join(parts, "/")))
}

func restoreFile(store *db.Db, d Digest, target string) (err error) {
	defer Return(&err)
	blob, err := db.Path{}.New(store, d.String())
	Ck(err)
	if !store.Exists(d.String()) {
		return errors.Errorf("blob %s not found", blob.Rel)
	}
	err = os.MkdirAll(filepath.Dir(target), 0755)
	Ck(err)
	err = fileutils.CopyFile(target, blob.Abs)
	Ck(err)
	return
}
