package hashbak

import (
	"os"

	"github.com/stevegt/readercomp"
)

// Guard decides whether two files that produced the same digest really
// have the same content.
type Guard interface {
	Same(path, other string) (bool, error)
}

// DefaultSentinel is the byte PerturbGuard appends.
const DefaultSentinel = '0'

// PerturbGuard re-hashes both files with one extra sentinel byte
// appended.  Identical content still gives identical digests; two
// different inputs that collided under SHA-256 will, short of a second
// simultaneous collision, not collide again.
//
// A zero Sentinel means DefaultSentinel, so NUL can't be used as the
// sentinel.
type PerturbGuard struct {
	Sentinel byte
}

func (g PerturbGuard) sentinel() byte {
	if g.Sentinel == 0 {
		return DefaultSentinel
	}
	return g.Sentinel
}

func (g PerturbGuard) Same(path, other string) (ok bool, err error) {
	sentinel := g.sentinel()
	d1, err := digestFile(path, sentinel)
	if err != nil {
		return
	}
	d2, err := digestFile(other, sentinel)
	if err != nil {
		return
	}
	return d1 == d2, nil
}

// CompareGuard compares the two files byte for byte.
type CompareGuard struct {
	BufSize int
}

func (g CompareGuard) Same(path, other string) (ok bool, err error) {
	bufsize := g.BufSize
	if bufsize <= 0 {
		bufsize = ChunkSize
	}
	fh1, err := os.Open(path)
	if err != nil {
		return false, &FileError{Op: "compare", Path: path, Err: err}
	}
	defer fh1.Close()
	fh2, err := os.Open(other)
	if err != nil {
		return false, &FileError{Op: "compare", Path: other, Err: err}
	}
	defer fh2.Close()
	ok, err = readercomp.Equal(fh1, fh2, bufsize)
	if err != nil {
		return false, &FileError{Op: "compare", Path: path, Err: err}
	}
	return
}
