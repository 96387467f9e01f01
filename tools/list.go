package tools

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/lowkaihon/toolcore/config"
	"github.com/lowkaihon/toolcore/runtime"
)

type listInput struct {
	Path       string `json:"path"`
	MaxDepth   int    `json:"max_depth"`
	Pattern    string `json:"pattern"`
	Gitignore  *bool  `json:"gitignore"`
	MaxEntries int    `json:"max_entries"`
}

type listEntry struct {
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
}

type listResult struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Path    string      `json:"path,omitempty"`
	Entries []listEntry `json:"entries,omitempty"`
}

// fileListTool implements spec C6 file_list. The Runtime contract has no
// dedicated directory-listing primitive (§3: exec/stat/readFile/writeFile/
// normalizePath only) — over the Remote variant there's no SFTP channel
// either — so listing goes through a `find` invocation via runtime.Exec,
// the same primitive both Local and Remote already support uniformly.
func (r *Registry) fileListTool(ctx context.Context, cfg config.ToolConfiguration, input json.RawMessage) (json.RawMessage, error) {
	params, err := parseInput[listInput](input)
	if err != nil {
		return nil, err
	}

	requested := params.Path
	if requested == "" {
		requested = "."
	}
	resolved, err := resolvePath(cfg, requested)
	if err != nil {
		return json.Marshal(listResult{Success: false, Error: err.Error()})
	}
	st, err := cfg.Runtime.Stat(ctx, resolved)
	if err != nil {
		return json.Marshal(listResult{Success: false, Error: fmt.Sprintf("stat %s: %v", resolved, err)})
	}
	if !st.IsDirectory {
		return json.Marshal(listResult{Success: false, Error: fmt.Sprintf("%s is not a directory", resolved)})
	}

	maxDepth := params.MaxDepth
	if maxDepth <= 0 {
		maxDepth = config.DefaultListDepth
	}
	if maxDepth > config.MaxListDepth {
		maxDepth = config.MaxListDepth
	}
	maxEntries := params.MaxEntries
	if maxEntries <= 0 {
		maxEntries = config.DefaultMaxEntries
	}
	if maxEntries > config.HardMaxEntries {
		maxEntries = config.HardMaxEntries
	}
	useGitignore := params.Gitignore == nil || *params.Gitignore

	raw, err := findEntries(ctx, cfg, resolved, maxDepth)
	if err != nil {
		return json.Marshal(listResult{Success: false, Error: err.Error()})
	}

	var ignore *gitignoreMatcher
	if useGitignore {
		ignore = loadGitignore(ctx, cfg)
	}

	// Entry paths are relative to the listed directory; gitignore patterns
	// are matched against workspace-relative paths.
	relPrefix := ""
	if rp := strings.TrimPrefix(resolved, strings.TrimRight(cfg.Cwd, "/")+"/"); rp != resolved {
		relPrefix = rp + "/"
	}

	entries := lo.Filter(raw, func(e listEntry, _ int) bool {
		for _, seg := range strings.Split(e.Path, "/") {
			if shouldAlwaysSkipDir(seg) {
				return false
			}
		}
		if ignore != nil && ignore.ignores(relPrefix+e.Path, e.IsDir) {
			return false
		}
		return true
	})

	if params.Pattern != "" {
		entries = pruneByPattern(entries, params.Pattern)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return entries[i].Path < entries[j].Path
	})

	if len(entries) > maxEntries {
		return json.Marshal(listResult{Success: false, Error: fmt.Sprintf(
			"found %d entries, more than the requested limit of %d — narrow path, pattern, or max_depth", len(entries), maxEntries)})
	}

	return json.Marshal(listResult{Success: true, Path: resolved, Entries: entries})
}

// pruneByPattern keeps files matching pattern and any directory that is an
// ancestor of a matching file — spec §4.6: "directories with no matching
// descendants are pruned when a pattern is supplied."
func pruneByPattern(entries []listEntry, pattern string) []listEntry {
	keepDir := map[string]bool{}
	var files []listEntry
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		matched, _ := matchGitignoreGlob(pattern, baseName(e.Path))
		if !matched {
			matched, _ = matchGitignoreGlob(pattern, e.Path)
		}
		if matched {
			files = append(files, e)
			for p := parentPath(e.Path); p != ""; p = parentPath(p) {
				keepDir[p] = true
			}
		}
	}
	dirs := lo.Filter(entries, func(e listEntry, _ int) bool { return e.IsDir && keepDir[e.Path] })
	return append(dirs, files...)
}

func baseName(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

func parentPath(p string) string {
	i := strings.LastIndexByte(p, '/')
	if i < 0 {
		return ""
	}
	return p[:i]
}

// findEntries shells out to `find` for a recursive directory listing,
// since the Runtime contract exposes no directory-listing primitive of
// its own (see fileListTool's doc comment).
func findEntries(ctx context.Context, cfg config.ToolConfiguration, dir string, maxDepth int) ([]listEntry, error) {
	script := fmt.Sprintf(
		"find %s -mindepth 1 -maxdepth %d -printf '%%y\\t%%P\\n'",
		shellQuoteLocal(dir), maxDepth)

	stream, err := cfg.Runtime.Exec(ctx, script, runtime.ExecOptions{Cwd: dir})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	_ = stream.Stdin.Close()

	out, _ := io.ReadAll(stream.Stdout)
	io.Copy(io.Discard, stream.Stderr)
	code, waitErr := stream.Wait(ctx)
	if waitErr != nil {
		return nil, fmt.Errorf("list %s: %w", dir, waitErr)
	}
	if code != 0 {
		return nil, fmt.Errorf("list %s: find exited with code %d", dir, code)
	}

	var entries []listEntry
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		line := scanner.Text()
		tab := strings.IndexByte(line, '\t')
		if tab < 0 {
			continue
		}
		typ, rel := line[:tab], line[tab+1:]
		entries = append(entries, listEntry{Path: rel, IsDir: typ == "d"})
	}
	return entries, nil
}

func shellQuoteLocal(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
