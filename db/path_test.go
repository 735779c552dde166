package db

import (
	"path/filepath"
	"testing"
)

func TestPath(t *testing.T) {
	db := setup(t)

	hash := "d2c71afc5848aa2a33ff08621217f24dab485077d95d788c5170995285a5d65d"
	relpath := "d2/d2c71afc5848aa2a33ff08621217f24dab485077d95d788c5170995285a5d65d"

	path, err := Path{}.New(db, hash)
	tassert(t, err == nil, "%#v", err)

	expect := filepath.Join(db.Dir, relpath)
	got := path.Abs
	tassert(t, expect == got, "expected %s, got %s", expect, got)

	got = path.Rel
	tassert(t, relpath == got, "expected %s, got %s", relpath, got)

	got = path.Shard
	tassert(t, "d2" == got, "expected d2, got %s", got)

	got = path.Hash
	tassert(t, hash == got, "expected %s, got %s", hash, got)
}

func TestPathMalformed(t *testing.T) {
	db := setup(t)
	for _, hash := range []string{
		"",
		"d2c7",
		"D2C71AFC5848AA2A33FF08621217F24DAB485077D95D788C5170995285A5D65D",
		"g2c71afc5848aa2a33ff08621217f24dab485077d95d788c5170995285a5d65d",
		"d2c71afc5848aa2a33ff08621217f24dab485077d95d788c5170995285a5d65d0",
	} {
		_, err := Path{}.New(db, hash)
		tassert(t, err != nil, "expected error for %q", hash)
	}
}
