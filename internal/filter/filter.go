// Package filter decides which record tags are displayed.
package filter

import (
	"fmt"
	"sort"
	"strings"
)

// Filter holds the include and exclude tag sets. It is built once at startup
// and only read afterwards, so it is safe for concurrent use.
type Filter struct {
	include map[int]struct{}
	exclude map[int]struct{}
}

func (f Filter) String() string {
	return fmt.Sprintf("Filter(include:%s,exclude:%s)",
		setString(f.include), setString(f.exclude))
}

// New returns a filter for the given tag lists. Duplicates are ignored.
func New(include, exclude []int) Filter {
	return Filter{
		include: toSet(include),
		exclude: toSet(exclude),
	}
}

// NewNoop returns a filter accepting every tag.
func NewNoop() Filter {
	return New(nil, nil)
}

// ShouldAccept reports whether records with the tag are displayed. A non
// empty include set takes exclusive precedence and the exclude set is not
// consulted at all.
func (f Filter) ShouldAccept(tag int) bool {
	if len(f.include) > 0 {
		_, ok := f.include[tag]
		return ok
	}
	_, ok := f.exclude[tag]
	return !ok
}

// IsNoop returns true when the filter accepts every tag.
func (f Filter) IsNoop() bool {
	return len(f.include) == 0 && len(f.exclude) == 0
}

func toSet(tags []int) map[int]struct{} {
	set := make(map[int]struct{}, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return set
}

func setString(set map[int]struct{}) string {
	tags := make([]int, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Ints(tags)

	parts := make([]string, len(tags))
	for i, tag := range tags {
		parts[i] = fmt.Sprintf("%03d", tag)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
