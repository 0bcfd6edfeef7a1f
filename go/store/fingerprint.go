package store

import (
	"strings"

	"github.com/minio/highwayhash"

	"github.com/recall-memory/recall/go/types"
)

// fingerprintKey is a fixed, non-secret 32-byte key. The fingerprint
// exists to detect unchanged content across rebuilds, not to
// authenticate it, so a fixed key is appropriate.
var fingerprintKey = make([]byte, 32)

// ComputeFingerprint hashes a TocNode's summary-bearing fields. The
// TocBuilder stores the result on every node it writes; the indexer
// does not consult it and re-indexes every written node.
func ComputeFingerprint(node types.TocNode) uint64 {
	var b strings.Builder
	b.WriteString(node.Title)
	for _, bullet := range node.Bullets {
		b.WriteByte('\n')
		b.WriteString(bullet.Text)
	}
	for _, kw := range node.Keywords {
		b.WriteByte('\n')
		b.WriteString(kw)
	}
	return highwayhash.Sum64([]byte(b.String()), fingerprintKey)
}
