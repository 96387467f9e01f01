package tools

import (
	"bufio"
	"context"
	"path/filepath"
	"strings"

	"github.com/lowkaihon/toolcore/config"
)

// gitignoreMatcher holds the parsed patterns from a workspace-root
// .gitignore, adapted from the glob-matching primitive the teacher's
// tools/glob.go (matchGlob/matchDoublestar) already supplies for pattern
// matching — file_list reuses it instead of pulling in a dedicated
// gitignore-parsing dependency.
type gitignoreMatcher struct {
	patterns []gitignorePattern
}

type gitignorePattern struct {
	glob     string
	negate   bool
	dirOnly  bool
	anchored bool // pattern contained a "/" before the final segment
}

func loadGitignore(ctx context.Context, cfg config.ToolConfiguration) *gitignoreMatcher {
	rc, err := cfg.Runtime.ReadFile(ctx, cfg.Runtime.NormalizePath(".gitignore", cfg.Cwd))
	if err != nil {
		return &gitignoreMatcher{}
	}
	defer rc.Close()

	m := &gitignoreMatcher{}
	scanner := bufio.NewScanner(rc)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p := gitignorePattern{glob: line}
		if strings.HasPrefix(p.glob, "!") {
			p.negate = true
			p.glob = p.glob[1:]
		}
		if strings.HasSuffix(p.glob, "/") {
			p.dirOnly = true
			p.glob = strings.TrimSuffix(p.glob, "/")
		}
		if strings.Contains(p.glob, "/") {
			p.anchored = true
		}
		p.glob = strings.TrimPrefix(p.glob, "/")
		m.patterns = append(m.patterns, p)
	}
	return m
}

// ignores reports whether rel (workspace-relative, forward-slash) should be
// excluded, applying patterns in file order so a later "!pattern" can
// re-include something an earlier pattern excluded.
func (m *gitignoreMatcher) ignores(rel string, isDir bool) bool {
	if m == nil {
		return false
	}
	ignored := false
	base := filepath.Base(rel)
	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		var matched bool
		if p.anchored {
			matched, _ = matchGitignoreGlob(p.glob, rel)
		} else {
			matched, _ = matchGitignoreGlob(p.glob, base)
			if !matched {
				matched, _ = matchGitignoreGlob(p.glob, rel)
			}
		}
		if matched {
			ignored = !p.negate
		}
	}
	return ignored
}

// matchGitignoreGlob supports "**" the same way the teacher's
// tools/glob.go matchDoublestar does, plus plain filepath.Match for
// patterns without it.
func matchGitignoreGlob(pattern, name string) (bool, error) {
	if strings.Contains(pattern, "**") {
		return matchDoublestar(pattern, name)
	}
	return filepath.Match(pattern, name)
}

// matchDoublestar handles ** glob patterns, ** matching any number of path
// segments — ported from the teacher's tools/glob.go.
func matchDoublestar(pattern, name string) (bool, error) {
	parts := strings.Split(pattern, "**")
	if len(parts) != 2 {
		return filepath.Match(pattern, name)
	}

	prefix := strings.TrimSuffix(parts[0], "/")
	suffix := strings.TrimPrefix(parts[1], "/")

	if prefix == "" && suffix == "" {
		return true, nil
	}
	if prefix == "" {
		segments := strings.Split(name, "/")
		for i := range segments {
			subpath := strings.Join(segments[i:], "/")
			if matched, _ := filepath.Match(suffix, subpath); matched {
				return true, nil
			}
			if matched, _ := filepath.Match(suffix, segments[len(segments)-1]); matched {
				return true, nil
			}
		}
		return false, nil
	}
	if suffix == "" {
		return strings.HasPrefix(name, prefix+"/") || name == prefix, nil
	}
	if !strings.HasPrefix(name, prefix+"/") && name != prefix {
		return false, nil
	}
	rest := strings.TrimPrefix(name, prefix+"/")
	return matchDoublestar("**/"+suffix, rest)
}
