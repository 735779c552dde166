package hashbak

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// CollisionError means two files with different content produced the
// same digest.  It is fatal to a backup run: storing either file would
// silently conflate the two under one blob.
type CollisionError struct {
	Digest Digest
	Path   string // file being backed up
	Other  string // file already recorded under Digest
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("hash collision: %s and %s both have digest %s", e.Path, e.Other, e.Digest)
}

// IsCollision reports whether err is or wraps a *CollisionError.
func IsCollision(err error) bool {
	var ce *CollisionError
	return errors.As(err, &ce)
}

// FileError is a per-file failure.  The file is skipped and the run
// continues.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// PatternError reports a pattern that is not a valid regular
// expression.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// FormatError reports a malformed manifest line.  Line is 1-based.
type FormatError struct {
	Line int
	Text string
	Msg  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("manifest line %d: %s: %q", e.Line, e.Msg, e.Text)
}

// RestoreError lists the manifest entries a restore could not
// reconstruct.
type RestoreError struct {
	Failed []*FileError
}

func (e *RestoreError) Error() string {
	var msgs []string
	for _, fe := range e.Failed {
		msgs = append(msgs, fe.Error())
	}
	return fmt.Sprintf("%d file(s) not restored: %s", len(e.Failed), strings.Join(msgs, "; "))
}
