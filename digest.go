package hashbak

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/t7a/hashbak/db"
)

// ChunkSize is how much of a file is read and hashed at a time.
const ChunkSize = 8 * 1024

// Digest is the SHA-256 hash of a file's content.
type Digest [sha256.Size]byte

// String returns the digest as 64 lowercase hex characters.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// ParseDigest is the inverse of Digest.String.  Uppercase hex is
// rejected so that every digest has exactly one spelling on disk.
func ParseDigest(s string) (d Digest, err error) {
	if !db.ValidHash(s) {
		return d, fmt.Errorf("malformed digest: %q", s)
	}
	_, err = hex.Decode(d[:], []byte(s))
	return
}

// Accumulator computes a Digest incrementally: Write any number of
// times, then Sum once.
type Accumulator struct {
	hash hash.Hash
}

func NewAccumulator() *Accumulator {
	return &Accumulator{hash: sha256.New()}
}

// Write feeds p into the hash.  It never fails.
func (a *Accumulator) Write(p []byte) (n int, err error) {
	return a.hash.Write(p)
}

func (a *Accumulator) Sum() (d Digest) {
	copy(d[:], a.hash.Sum(nil))
	return
}

// DigestReader hashes rd in ChunkSize pieces, then hashes suffix.  The
// suffix is how the collision guard perturbs a digest.
func DigestReader(rd io.Reader, suffix ...byte) (d Digest, err error) {
	acc := NewAccumulator()
	buf := make([]byte, ChunkSize)
	for {
		n, err := rd.Read(buf)
		if n > 0 {
			acc.Write(buf[:n])
		}
		if errors.Cause(err) == io.EOF {
			break
		}
		if err != nil {
			return d, err
		}
	}
	acc.Write(suffix)
	return acc.Sum(), nil
}

// DigestFile hashes the content of the file at path without reading
// it all into memory.  Failures are returned as *FileError.
func DigestFile(path string) (d Digest, err error) {
	return digestFile(path)
}

func digestFile(path string, suffix ...byte) (d Digest, err error) {
	fh, err := os.Open(path)
	if err != nil {
		return d, &FileError{Op: "digest", Path: path, Err: err}
	}
	defer fh.Close()
	d, err = DigestReader(fh, suffix...)
	if err != nil {
		return d, &FileError{Op: "digest", Path: path, Err: err}
	}
	return
}

// Digester computes the digest a backup run files a path under.
type Digester interface {
	Digest(path string) (Digest, error)
}

// FileDigester is the Digester used unless a Backup says otherwise.
type FileDigester struct{}

func (FileDigester) Digest(path string) (Digest, error) {
	return DigestFile(path)
}
