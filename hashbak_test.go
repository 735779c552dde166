package hashbak

import (
	"crypto/sha256"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"testing"

	. "github.com/stevegt/goadapt"
)

const testDirPrefix = "hashbak"

func mkbuf(s string) []byte {
	tmp := []byte(s)
	return tmp
}

func digestOf(s string) Digest {
	return Digest(sha256.Sum256([]byte(s)))
}

// tree writes files (relative path -> content) under dir.
func tree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		fn := filepath.Join(dir, name)
		err := os.MkdirAll(filepath.Dir(fn), 0755)
		Ck(err)
		err = ioutil.WriteFile(fn, mkbuf(content), 0644)
		Ck(err)
	}
}

func readfile(t *testing.T, fn string) string {
	t.Helper()
	buf, err := ioutil.ReadFile(fn)
	tassert(t, err == nil, "%v", err)
	return string(buf)
}

// setup returns a scratch directory, kept around if DEBUG=1.
func setup(t *testing.T) (dir string) {
	debug := os.Getenv("DEBUG")
	if debug == "1" {
		var err error
		dir, err = ioutil.TempDir("", testDirPrefix)
		Ck(err)
		fmt.Println(dir)
		// no cleanup
	} else {
		dir = t.TempDir()
		// automatically cleaned up
	}
	return
}

// chdir switches into dir for the rest of the test so that sources can
// be given as relative paths.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	Ck(err)
	err = os.Chdir(dir)
	Ck(err)
	t.Cleanup(func() {
		err := os.Chdir(old)
		Ck(err)
	})
}

// blobs lists the digests stored under dest.
func blobs(t *testing.T, dest string) (out []string) {
	t.Helper()
	shards, err := filepath.Glob(filepath.Join(dest, "??", "*"))
	tassert(t, err == nil, "%v", err)
	for _, fn := range shards {
		out = append(out, filepath.Base(fn))
	}
	sort.Strings(out)
	return
}

// test boolean condition
func tassert(t *testing.T, cond bool, txt string, args ...interface{}) {
	t.Helper() // cause file:line info to show caller
	if !cond {
		t.Fatalf(txt, args...)
	}
}
