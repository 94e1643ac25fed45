package ebml

import "io"

// Tag is a decoded EBML element header: an ID plus a body length (or the
// Unknown sentinel), and the number of bytes the header itself occupied.
type Tag struct {
	ID        uint32
	IDLen     int
	Length    uint64 // Unknown if the element has unknown (deferred) length
	HeaderLen int
}

// DecodeTag decodes an element header by composing two DecodeVarint calls:
// one for the ID, one for the body length. Both strip their length-marker
// bit, which is why the IDs in this package's constants (and in spec.md's
// wire-format table) look shifted relative to the canonical Matroska
// values: the marker bit has already been removed.
//
// An ID that itself decodes to Unknown (the all-ones value at its length)
// is invalid and reported as ErrUnknownElementID.
func DecodeTag(data []byte) (Tag, error) {
	id, idLen, err := DecodeVarint(data)
	if err != nil {
		return Tag{}, err
	}
	if id == Unknown {
		return Tag{}, ErrUnknownElementID
	}
	length, lenLen, err := DecodeVarint(data[idLen:])
	if err != nil {
		return Tag{}, err
	}
	return Tag{
		ID:        uint32(id),
		IDLen:     idLen,
		Length:    length,
		HeaderLen: idLen + lenLen,
	}, nil
}

// EncodeClusterOpen writes the Cluster tag with unknown (deferred) length,
// using the shortest possible unknown-length encoding (a single 0xFF byte)
// so that, combined with EncodeTimecode, a ClusterHead's encoded_prefix
// stays within its 15-byte bound. See DESIGN.md for the full-length
// alternative exercised by the tag round-trip test.
func EncodeClusterOpen(w io.Writer) error {
	return encodeTagUnknownLength(IDCluster, w)
}

// EncodeSegmentOpen writes the Segment tag with unknown (deferred) length,
// in the same shortest-form encoding as EncodeClusterOpen.
func EncodeSegmentOpen(w io.Writer) error {
	return encodeTagUnknownLength(IDSegment, w)
}

func encodeTagUnknownLength(id uint32, w io.Writer) error {
	n, ok := IDLen(id)
	if !ok {
		return ErrUnknownElementLength
	}
	if err := writeFixedID(w, id, n); err != nil {
		return err
	}
	return EncodeUnknownLength(1, w)
}

// EncodeClusterOpenFull writes the Cluster tag with unknown length encoded
// in its maximal 8-byte form, matching the EBML round-trip boundary
// scenario (spec.md S2). Production code uses EncodeClusterOpen; this is
// kept for the codec's own correctness tests and for fixture-building.
func EncodeClusterOpenFull(w io.Writer) error {
	if err := writeFixedID(w, IDCluster, 4); err != nil {
		return err
	}
	return EncodeUnknownLength(8, w)
}

// EncodeTimecode writes a Timecode element with its value as an 8-byte
// fixed-width payload, per spec.md §4.1's encode_uint.
func EncodeTimecode(startMS uint64, w io.Writer) error {
	if err := writeFixedID(w, IDTimecode, 1); err != nil {
		return err
	}
	// length byte: marker (0x80) | value 8
	if _, err := w.Write([]byte{0x88}); err != nil {
		return err
	}
	buf := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		buf[i] = byte(startMS)
		startMS >>= 8
	}
	_, err := w.Write(buf)
	return err
}

// EncodeElementBytes writes a complete, known-length element: a fixed-width
// ID followed by a minimal-varint length and the payload itself. Used for
// every element this system treats as an opaque, fully-buffered blob
// (EBMLHead, Tracks, Void, Info, ...) when constructing fixtures or
// re-synthesizing a stream, per spec.md's round-trip invariant.
func EncodeElementBytes(id uint32, payload []byte, w io.Writer) error {
	n, ok := IDLen(id)
	if !ok {
		return ErrUnknownElementLength
	}
	if err := writeFixedID(w, id, n); err != nil {
		return err
	}
	if err := EncodeVarint(uint64(len(payload)), w); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// writeFixedID writes the n-byte raw (marker-included) encoding of a known
// stripped element ID.
func writeFixedID(w io.Writer, id uint32, n int) error {
	raw := RawID(id, n)
	buf := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		buf[i] = byte(raw)
		raw >>= 8
	}
	_, err := w.Write(buf)
	return err
}
