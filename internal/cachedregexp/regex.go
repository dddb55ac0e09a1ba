// Package cachedregexp memoises compiled regular expressions so that patterns
// used on hot paths, like virtual path matching, are only compiled once.
package cachedregexp

import (
	"regexp"
	"sync"
)

var cache sync.Map

func MustCompile(exp string) *regexp.Regexp {
	if re, ok := cache.Load(exp); ok {
		return re.(*regexp.Regexp)
	}

	re, _ := cache.LoadOrStore(exp, regexp.MustCompile(exp))

	return re.(*regexp.Regexp)
}

// Submatch returns the first capture group of exp in s, and whether exp
// matched at all.
func Submatch(exp, s string) (string, bool) {
	m := MustCompile(exp).FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	if len(m) < 2 {
		return "", true
	}

	return m[1], true
}
