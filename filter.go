package hashbak

import (
	"regexp"

	log "github.com/sirupsen/logrus"
)

// Filter is a compiled set of regular expressions.  A path matches the
// filter if any pattern matches anywhere in it.  Backup uses a Filter
// to exclude paths, restore uses one to include them.
type Filter struct {
	patterns []*regexp.Regexp
}

// NewFilter compiles patterns.  The first invalid pattern is reported
// as a *PatternError.
func NewFilter(patterns []string) (f *Filter, err error) {
	f = &Filter{}
	for _, pat := range patterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, &PatternError{Pattern: pat, Err: err}
		}
		f.patterns = append(f.patterns, re)
	}
	return
}

// Match reports whether any pattern matches path.  A filter with no
// patterns matches nothing.
func (f *Filter) Match(path string) bool {
	for _, re := range f.patterns {
		if re.MatchString(path) {
			log.Debugf("%s matches %s", path, re)
			return true
		}
	}
	return false
}

// Empty reports whether the filter has no patterns.
func (f *Filter) Empty() bool {
	return len(f.patterns) == 0
}
