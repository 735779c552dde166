package hashbak

import (
	"path/filepath"
	"testing"
)

func TestGuards(t *testing.T) {
	dir := setup(t)
	tree(t, dir, map[string]string{
		"a": "hello",
		"b": "hello",
		"c": "world",
	})
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	c := filepath.Join(dir, "c")

	for _, g := range []Guard{PerturbGuard{}, PerturbGuard{Sentinel: 'x'}, CompareGuard{}, CompareGuard{BufSize: 2}} {
		same, err := g.Same(a, b)
		tassert(t, err == nil, "%T: %v", g, err)
		tassert(t, same, "%T: identical files reported different", g)

		same, err = g.Same(a, c)
		tassert(t, err == nil, "%T: %v", g, err)
		tassert(t, !same, "%T: different files reported same", g)

		_, err = g.Same(a, filepath.Join(dir, "missing"))
		tassert(t, err != nil, "%T: expected error for missing file", g)
	}
}

func TestPerturbGuardSentinel(t *testing.T) {
	tassert(t, PerturbGuard{}.sentinel() == DefaultSentinel, "zero sentinel not defaulted")
	tassert(t, PerturbGuard{Sentinel: 'x'}.sentinel() == 'x', "sentinel overridden")
}
