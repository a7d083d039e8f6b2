// Package nodeid defines the opaque identifier and type-brand types shared
// by the document model, schema registry and step algebra, plus the
// process-wide block-id generator.
package nodeid

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// BlockID uniquely identifies a BlockNode within a document. Block ids are
// never reused, including across undo (spec invariant: block identifiers
// are never reused within a document).
type BlockID string

// NodeType names a registered block type, e.g. "paragraph", "document".
type NodeType string

// MarkType names a registered mark type, e.g. "bold".
type MarkType string

// InlineType names a registered inline-node type, e.g. "hard_break".
type InlineType string

// DocumentNodeType is the fixed type tag of the virtual document root.
const DocumentNodeType NodeType = "document"

// HardBreakInlineType is the reserved InlineType both insertHardBreak and
// the markdown/HTML importers use for a hard line break marker.
const HardBreakInlineType InlineType = "hard_break"

var (
	genOnce    sync.Once
	genCounter uint64
	genPrefix  string
)

func ensureSeeded() {
	genOnce.Do(func() {
		genPrefix = uuid.New().String()[:8]
	})
}

// NewBlockID mints a globally unique block identifier for this process. Ids
// are monotonically increasing within the process and prefixed by a
// per-process UUID fragment so ids minted by two processes never collide,
// mirroring preprocessor.go's use of uuid.New() to mint collision-free
// resource names.
func NewBlockID() BlockID {
	ensureSeeded()
	n := atomic.AddUint64(&genCounter, 1)
	return BlockID(fmt.Sprintf("%s-%d", genPrefix, n))
}

// ResetForTest reseeds the generator. Only ever called from tests: production
// code must seed the generator exactly once per process (spec.md §9).
func ResetForTest() {
	genOnce = sync.Once{}
	atomic.StoreUint64(&genCounter, 0)
}
