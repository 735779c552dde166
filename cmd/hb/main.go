package main

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/docopt/docopt-go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	log "github.com/sirupsen/logrus"
	hb "github.com/t7a/hashbak"
	"github.com/t7a/hashbak/db"
)

// exit codes
const (
	rcOK        = 0
	rcError     = 1
	rcPartial   = 3  // finished, but some files were skipped
	rcUsage     = 64 // bad arguments, unreadable list file, bad pattern
	rcCollision = 65 // hash collision, or check found damage
)

func init() {
	var debug string
	debug = os.Getenv("DEBUG")
	if debug == "1" {
		log.SetLevel(log.DebugLevel)
	}
	logrus.SetReportCaller(true)
	formatter := &logrus.TextFormatter{
		CallerPrettyfier: caller(),
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyFile: "caller",
		},
	}
	formatter.TimestampFormat = "15:04:05.999999999"
	logrus.SetFormatter(formatter)
}

// caller returns string presentation of log caller which is formatted as
// `/path/to/file.go:line_number`. e.g. `/internal/app/api.go:25`
func caller() func(*runtime.Frame) (function string, file string) {
	return func(f *runtime.Frame) (function string, file string) {
		p, _ := os.Getwd()
		return "", fmt.Sprintf("%s:%d", strings.TrimPrefix(f.File, p), f.Line)
	}
}

const usage = `hashbak

Usage:
  hb backup [--compare] <sources> <dest> [<excludes>]
  hb restore <manifest> <target> [<pattern>...]
  hb check <dest>
  hb -h | --help

Arguments:
  <sources>     file listing source directories, one per line
  <excludes>    file listing exclude regexps, one per line
  <pattern>     restore only paths matching one of these regexps

Options:
  -h --help     Show this screen.
  --version     Show version.
  --compare     Compare suspected duplicates byte by byte instead of
                re-hashing them.
`

type Opts struct {
	Backup   bool
	Restore  bool
	Check    bool
	Compare  bool
	Sources  string
	Dest     string
	Excludes string
	Manifest string
	Target   string
	Pattern  []string
}

func main() {
	// see https://github.com/google/go-cmdtest
	os.Exit(run())
}

func run() (rc int) {
	parser := &docopt.Parser{
		HelpHandler: func(err error, usage string) {
			// --help or --version; parse errors are reported below
			if err == nil {
				fmt.Println(usage)
			}
		},
		OptionsFirst: false,
	}
	o, err := parser.ParseArgs(usage, os.Args[1:], "0.0")
	if err != nil {
		log.Debug(err)
		fmt.Fprintln(os.Stderr, "usage error: see hb --help")
		return rcUsage
	}
	if o == nil {
		return rcOK
	}
	var opts Opts
	err = o.Bind(&opts)
	if err != nil {
		log.Error(err)
		return rcUsage
	}
	log.Debug(opts)

	switch true {
	case opts.Backup:
		return backup(opts)
	case opts.Restore:
		return restore(opts)
	case opts.Check:
		return check(opts)
	}
	return rcUsage
}

// readLines returns the non-blank lines of fn with surrounding
// whitespace removed.
func readLines(fn string) (lines []string, err error) {
	fh, err := os.Open(fn)
	if err != nil {
		return
	}
	defer fh.Close()
	scanner := bufio.NewScanner(fh)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	err = scanner.Err()
	return
}

func backup(opts Opts) (rc int) {
	sources, err := readLines(opts.Sources)
	if err != nil {
		fmt.Fprintf(os.Stderr, "usage error: %v\n", err)
		return rcUsage
	}
	var excludes []string
	if opts.Excludes != "" {
		excludes, err = readLines(opts.Excludes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "usage error: %v\n", err)
			return rcUsage
		}
	}

	b := hb.Backup{Sources: sources, Excludes: excludes, Dest: opts.Dest}
	if opts.Compare {
		b.Guard = hb.CompareGuard{}
	}
	res, err := b.Run()
	if err != nil {
		return fail(err)
	}

	fmt.Printf("files: %d\n", res.Files)
	fmt.Printf("stored: %d\n", res.Stored)
	fmt.Printf("deduped: %d\n", res.Deduped)
	fmt.Printf("removed: %d\n", res.Removed)
	if len(res.Errors) > 0 {
		fmt.Printf("skipped: %d\n", len(res.Errors))
		return rcPartial
	}
	return rcOK
}

func restore(opts Opts) (rc int) {
	r := hb.Restore{Manifest: opts.Manifest, Target: opts.Target, Includes: opts.Pattern}
	res, err := r.Run()
	if res != nil {
		fmt.Printf("restored: %d\n", res.Restored)
	}
	if err != nil {
		return fail(err)
	}
	return rcOK
}

func check(opts Opts) (rc int) {
	res, err := hb.Check(opts.Dest)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("blobs: %d\n", res.Blobs)
	for _, e := range res.Missing {
		fmt.Printf("missing: %s %s\n", e.Digest, e.Path)
	}
	for _, hash := range res.Corrupt {
		fmt.Printf("corrupt: %s\n", hash)
	}
	for _, hash := range res.Orphans {
		fmt.Printf("orphan: %s\n", hash)
	}
	if !res.OK() {
		return rcCollision
	}
	fmt.Println("ok")
	return rcOK
}

// fail reports err and picks the exit code for it.
func fail(err error) (rc int) {
	var pe *hb.PatternError
	var re *hb.RestoreError
	var le *db.LockedError
	switch {
	case hb.IsCollision(err):
		fmt.Fprintf(os.Stderr, "aborted: %v\n", err)
		return rcCollision
	case errors.As(err, &pe):
		fmt.Fprintf(os.Stderr, "usage error: %v\n", err)
		return rcUsage
	case errors.As(err, &re):
		fmt.Fprintf(os.Stderr, "skipped: %d\n", len(re.Failed))
		return rcPartial
	case errors.As(err, &le):
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return rcError
	}
	log.Error(err)
	return rcError
}
