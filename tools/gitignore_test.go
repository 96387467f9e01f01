package tools

import "testing"

func TestGitignoreMatcher_unanchoredPatternMatchesAtAnyDepth(t *testing.T) {
	m := &gitignoreMatcher{patterns: []gitignorePattern{{glob: "build", anchored: false}}}
	if !m.ignores("build", true) {
		t.Fatal("expected build/ to be ignored")
	}
	if !m.ignores("src/build", true) {
		t.Fatal("unanchored pattern should match at any depth")
	}
}

func TestGitignoreMatcher_negationReincludes(t *testing.T) {
	m := &gitignoreMatcher{patterns: []gitignorePattern{
		{glob: "*.log"},
		{glob: "keep.log", negate: true},
	}}
	if !m.ignores("debug.log", false) {
		t.Fatal("expected debug.log to be ignored")
	}
	if m.ignores("keep.log", false) {
		t.Fatal("expected keep.log to be re-included by negation")
	}
}

func TestGitignoreMatcher_dirOnlyPatternSkipsFiles(t *testing.T) {
	m := &gitignoreMatcher{patterns: []gitignorePattern{{glob: "vendor", dirOnly: true}}}
	if m.ignores("vendor", false) {
		t.Fatal("dirOnly pattern must not match a plain file named vendor")
	}
	if !m.ignores("vendor", true) {
		t.Fatal("dirOnly pattern must match a directory named vendor")
	}
}

func TestMatchDoublestar_matchesAnyDepth(t *testing.T) {
	matched, err := matchDoublestar("**/*.go", "a/b/c.go")
	if err != nil || !matched {
		t.Fatalf("expected match, got %v err=%v", matched, err)
	}
	matched, err = matchDoublestar("**/*.go", "a/b/c.txt")
	if err != nil || matched {
		t.Fatalf("expected no match, got %v err=%v", matched, err)
	}
}
