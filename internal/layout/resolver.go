package layout

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Resolver hands out collision-free target paths. A path is taken if the
// taken func reports it or it was handed out earlier by the same resolver,
// so one pass never assigns two books the same file.
type Resolver struct {
	exists func(string) bool
	taken  map[string]struct{}
}

// NewResolver creates a resolver that consults taken for paths it has not
// handed out itself.
func NewResolver(taken func(string) bool) *Resolver {
	return &Resolver{exists: taken, taken: make(map[string]struct{})}
}

// Resolve returns target if free, otherwise "base (n).ext" for the smallest
// free n. The bool reports whether a suffix was needed. The returned path is
// reserved.
func (r *Resolver) Resolve(target string) (string, bool) {
	if r.free(target) {
		r.Reserve(target)
		return target, false
	}

	ext := filepath.Ext(target)
	base := strings.TrimSuffix(target, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if r.free(candidate) {
			r.Reserve(candidate)
			return candidate, true
		}
	}
}

// Reserve marks path as taken without checking it.
func (r *Resolver) Reserve(path string) {
	r.taken[path] = struct{}{}
}

func (r *Resolver) free(path string) bool {
	if _, ok := r.taken[path]; ok {
		return false
	}
	return !r.exists(path)
}
