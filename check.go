package hashbak

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/t7a/hashbak/db"
)

// CheckResult lists the problems Check found in a destination.
type CheckResult struct {
	Blobs   int      // blobs examined
	Missing []Entry  // manifest entries whose blob doesn't exist
	Corrupt []string // blobs whose content doesn't match their name
	Orphans []string // blobs no manifest entry references
}

// OK reports whether the destination is consistent.
func (c *CheckResult) OK() bool {
	return len(c.Missing) == 0 && len(c.Corrupt) == 0 && len(c.Orphans) == 0
}

// Check verifies that the blob set at dest is exactly the set of
// digests its manifest references, and that every blob still hashes
// to its own name.
func Check(dest string) (res *CheckResult, err error) {
	store := &db.Db{Dir: dest}
	m, entries, err := ReadManifest(store.ManifestPath())
	if err != nil {
		return nil, errors.Wrap(err, "reading manifest")
	}
	referenced := m.Digests()

	res = &CheckResult{}
	for _, e := range entries {
		if !store.Exists(e.Digest.String()) {
			log.Warnf("missing blob %s for %s", e.Digest, e.Path)
			res.Missing = append(res.Missing, e)
		}
	}

	hashes, err := store.ListAll()
	if err != nil {
		return nil, errors.Wrap(err, "listing blobs")
	}
	for _, hash := range hashes {
		res.Blobs++
		d, err := ParseDigest(hash)
		if err != nil {
			return nil, err
		}
		if !referenced[d] {
			log.Warnf("orphan blob %s", hash)
			res.Orphans = append(res.Orphans, hash)
		}
		ok, err := verifyBlob(store, d)
		if err != nil {
			return nil, err
		}
		if !ok {
			log.Warnf("corrupt blob %s", hash)
			res.Corrupt = append(res.Corrupt, hash)
		}
	}
	return
}

func verifyBlob(store *db.Db, d Digest) (ok bool, err error) {
	rc, err := store.GetBlob(d.String())
	if err != nil {
		return
	}
	defer rc.Close()
	got, err := DigestReader(rc)
	if err != nil {
		return false, errors.Wrapf(err, "reading blob %s", d)
	}
	return got == d, nil
}
