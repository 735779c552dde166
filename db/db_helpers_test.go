package db

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	. "github.com/stevegt/goadapt"
)

const testDbDirPrefix = "hashbak"

func mkbuf(s string) []byte {
	tmp := []byte(s)
	return tmp
}

func hashOf(buf []byte) string {
	sum := sha256.Sum256(buf)
	return hex.EncodeToString(sum[:])
}

// mkfile writes buf to a file under dir and returns its path and hash.
func mkfile(t *testing.T, dir, name string, buf []byte) (fn, hash string) {
	t.Helper()
	fn = filepath.Join(dir, name)
	err := os.MkdirAll(filepath.Dir(fn), 0755)
	Ck(err)
	err = ioutil.WriteFile(fn, buf, 0644)
	Ck(err)
	return fn, hashOf(buf)
}

func setup(t *testing.T) *Db {
	var err error
	var dir string

	debug := os.Getenv("DEBUG")
	if debug == "1" {
		dir, err = ioutil.TempDir("", testDbDirPrefix)
		Ck(err)
		fmt.Println(dir)
		// no cleanup
	} else {
		dir = t.TempDir()
		// automatically cleaned up
	}

	db, err := Open(filepath.Join(dir, "dest"))
	Ck(err)
	tassert(t, db != nil, "db is nil")

	return db
}

// test boolean condition
func tassert(t *testing.T, cond bool, txt string, args ...interface{}) {
	t.Helper() // cause file:line info to show caller
	if !cond {
		t.Fatalf(txt, args...)
	}
}
