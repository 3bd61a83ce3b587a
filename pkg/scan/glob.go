// Chain filters key names with glob patterns (KEYS pattern). Keys are treated as '/'-separated paths: every pattern
// element matches exactly one key segment, so `*` never crosses a '/'. A trailing `...` element matches any number
// of remaining segments, which makes `...` alone match every key.

package scan

import (
	"fmt"
	"iter"
	"strings"

	"v.io/v23/glob"
)

// keyMatcher matches whole keys segment by segment against a parsed glob.
type keyMatcher struct {
	elements  []*glob.Element // One matcher per pattern element.
	recursive bool            // Pattern ends with `...`.
}

func newKeyMatcher(pattern *glob.Glob) *keyMatcher {
	m := &keyMatcher{elements: make([]*glob.Element, pattern.Len()), recursive: pattern.Recursive()}
	for i := range m.elements {
		m.elements[i] = pattern.Split(i).Head()
	}
	return m
}

func (m *keyMatcher) match(key string) bool {
	segments := strings.Split(key, "/")
	if len(segments) < len(m.elements) || (len(segments) > len(m.elements) && !m.recursive) {
		return false
	}
	for i, element := range m.elements {
		if !element.Match(segments[i]) {
			return false
		}
	}
	return true
}

// MatchGlob filters the `keys` stream with the given glob `pattern`.
func MatchGlob(pattern string, keys iter.Seq[string]) (iter.Seq[string], error) {
	parsedPattern, err := glob.Parse(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	matcher := newKeyMatcher(parsedPattern)
	return func(yield func(string) bool) {
		for key := range keys {
			if matcher.match(key) {
				if !yield(key) {
					return
				}
			}
		}
	}, nil
}
