package ebml

// Element IDs as they appear after DecodeVarint strips the length-marker
// bit (the representation spec.md's wire-format table and element schema
// both use). RawID recovers the as-written bytes (marker bit included) for
// elements this system synthesizes itself.
const (
	IDEBMLHead     uint32 = 0x0A45DFA3
	IDVoid         uint32 = 0x6C
	IDSegment      uint32 = 0x08538067
	IDSeekHead     uint32 = 0x014D9B74
	IDInfo         uint32 = 0x0549A966
	IDTracks       uint32 = 0x0654AE6B
	IDCues         uint32 = 0x0C53BB6B
	IDCluster      uint32 = 0x0F43B675
	IDTimecode     uint32 = 0x67
	IDSimpleBlock  uint32 = 0x23
	IDDocType      uint32 = 0x0282
)

// idLen is the canonical on-the-wire byte length of each known element ID.
// EBML class IDs are fixed-width by convention; this table is how RawID
// reconstructs the length-marker bit a stripped ID lost.
var idLen = map[uint32]int{
	IDEBMLHead:    4,
	IDVoid:        1,
	IDSegment:     4,
	IDSeekHead:    4,
	IDInfo:        4,
	IDTracks:      4,
	IDCues:        4,
	IDCluster:     4,
	IDTimecode:    1,
	IDSimpleBlock: 1,
	IDDocType:     2,
}

// IDLen reports the canonical byte width of a known element ID, and false
// for an ID this table has no entry for (an Unknown element, forwarded
// only by its raw source bytes and never re-encoded).
func IDLen(id uint32) (int, bool) {
	n, ok := idLen[id]
	return n, ok
}

// RawID reconstructs the as-written ID bytes (length-marker bit included)
// from a stripped ID of known canonical length n: raw = stripped | 1<<(7n).
func RawID(id uint32, n int) uint64 {
	return uint64(id) | uint64(1)<<uint(7*n)
}

// ShouldUnwrap reports whether an element's children appear inline in the
// event sequence rather than as an opaque payload. Only Segment and
// Cluster are unwrapped; an unknown length on any other element is fatal.
func ShouldUnwrap(id uint32) bool {
	return id == IDSegment || id == IDCluster
}
