// pattern: Functional Core

// Package pathmatch normalizes filesystem paths and tests them against a set
// of excluded directories.
package pathmatch

import (
	"os"
	"path/filepath"
)

// Normalize returns the absolute, cleaned form of path. Cleaning resolves "."
// and ".." lexically and drops trailing separators, so symlinks are preserved.
// When followLinks is true the path is additionally resolved through
// filepath.EvalSymlinks; if that fails (for example because the path does not
// exist) the lexical form is returned.
func Normalize(path string, followLinks bool) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	abs = filepath.Clean(abs)
	if !followLinks {
		return abs, nil
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs, nil
	}
	return resolved, nil
}

// ExcludeSet holds normalized directory paths that prune a scan.
// Membership is exact path equality after normalization; there is no prefix
// or glob matching.
type ExcludeSet struct {
	followLinks bool
	members     map[string]struct{}
	missing     []string
}

// NewExcludeSet normalizes every entry of paths once. Empty entries are
// ignored. Entries that do not exist on disk are kept (they can never match)
// and reported by Missing.
func NewExcludeSet(paths []string, followLinks bool) *ExcludeSet {
	s := &ExcludeSet{
		followLinks: followLinks,
		members:     make(map[string]struct{}, len(paths)),
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			s.missing = append(s.missing, p)
		}
		norm, err := Normalize(p, followLinks)
		if err != nil {
			continue
		}
		s.members[norm] = struct{}{}
	}
	return s
}

// Contains reports whether candidate, once normalized, is a member of the set.
// A nil set contains nothing.
func (s *ExcludeSet) Contains(candidate string) bool {
	if s == nil || len(s.members) == 0 {
		return false
	}
	norm, err := Normalize(candidate, s.followLinks)
	if err != nil {
		return false
	}
	_, ok := s.members[norm]
	return ok
}

// Missing returns the excluded paths that did not exist when the set was
// built, in the order they were given.
func (s *ExcludeSet) Missing() []string {
	if s == nil {
		return nil
	}
	return s.missing
}

// Len returns the number of distinct normalized members.
func (s *ExcludeSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.members)
}
