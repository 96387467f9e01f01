package tools

import (
	"fmt"
	"hash/fnv"

	"github.com/lowkaihon/toolcore/runtime"
)

// fileLease computes the 6-hex-digit fingerprint over (mtime_ms, size) the
// spec calls a lease: a deterministic way for a caller to notice a file
// changed between a read and a later edit, without round-tripping the whole
// content. FNV-1a gives a stable, allocation-free hash across runs.
func fileLease(st runtime.FileStat) string {
	h := fnv.New32a()
	fmt.Fprintf(h, "%d:%d", st.ModTime.UnixMilli(), st.Size)
	return fmt.Sprintf("%06x", h.Sum32()&0xffffff)
}
