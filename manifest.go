package hashbak

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/renameio"
	"github.com/pkg/errors"
	. "github.com/stevegt/goadapt"
)

// Manifest maps original file paths to the digest of their content.
type Manifest map[string]Digest

// Entry is one manifest line.
type Entry struct {
	Path   string
	Digest Digest
}

// Entries returns the manifest sorted by path.
func (m Manifest) Entries() (entries []Entry) {
	for path, d := range m {
		entries = append(entries, Entry{Path: path, Digest: d})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return
}

// Digests returns the set of digests the manifest references.
func (m Manifest) Digests() (set map[Digest]bool) {
	set = make(map[Digest]bool)
	for _, d := range m {
		set[d] = true
	}
	return
}

// checkPath rejects paths that can't round-trip through the line
// format.
func checkPath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	if strings.ContainsAny(path, "\n\r") {
		return fmt.Errorf("path contains a line break: %q", path)
	}
	return nil
}

// Encode writes one "digest<TAB>path" line per entry, sorted by path.
func (m Manifest) Encode(w io.Writer) (err error) {
	bw := bufio.NewWriter(w)
	for _, e := range m.Entries() {
		err = checkPath(e.Path)
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(bw, "%s\t%s\n", e.Digest, e.Path)
		if err != nil {
			return
		}
	}
	return bw.Flush()
}

// DecodeManifest parses manifest lines.  Entries come back in file
// order; if a path repeats, the map holds the last one.
func DecodeManifest(r io.Reader) (m Manifest, entries []Entry, err error) {
	m = make(Manifest)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Text()
		i := strings.IndexByte(line, '\t')
		if i < 0 {
			return nil, nil, &FormatError{Line: n, Text: line, Msg: "missing tab"}
		}
		d, err := ParseDigest(line[:i])
		if err != nil {
			return nil, nil, &FormatError{Line: n, Text: line, Msg: err.Error()}
		}
		path := line[i+1:]
		if path == "" {
			return nil, nil, &FormatError{Line: n, Text: line, Msg: "empty path"}
		}
		m[path] = d
		entries = append(entries, Entry{Path: path, Digest: d})
	}
	err = scanner.Err()
	if err != nil {
		return nil, nil, errors.Wrap(err, "reading manifest")
	}
	return
}

// WriteManifest replaces the file at fn with the encoded manifest.
// Readers see either the old manifest or the new one, never a mix.
func WriteManifest(fn string, m Manifest) (err error) {
	defer Return(&err)
	pf, err := renameio.TempFile(filepath.Dir(fn), fn)
	Ck(err)
	defer pf.Cleanup()
	err = m.Encode(pf)
	if err != nil {
		return
	}
	err = pf.Chmod(0644)
	Ck(err)
	err = pf.CloseAtomicallyReplace()
	Ck(err)
	return
}

// ReadManifest loads the manifest file at fn.
func ReadManifest(fn string) (m Manifest, entries []Entry, err error) {
	fh, err := os.Open(fn)
	if err != nil {
		return
	}
	defer fh.Close()
	return DecodeManifest(fh)
}
