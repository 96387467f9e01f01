package runtime

import (
	"path"
	"path/filepath"
)

// NormalizePOSIX implements the normalizePath contract using POSIX path
// semantics only — never consulting the host OS. Remote runtimes must use
// this (never filepath, which is host-semantics) so path resolution stays
// correct when the host running this process is e.g. Windows but the
// remote shell is POSIX.
func NormalizePOSIX(target, base string) string {
	if path.IsAbs(target) {
		return path.Clean(target)
	}
	return path.Clean(path.Join(base, target))
}

// NormalizeLocal implements normalizePath using the host OS's own path
// semantics, for the Local runtime.
func NormalizeLocal(target, base string) string {
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Clean(filepath.Join(base, target))
}
