// Package ebml implements the EBML varint/tag codec and the closed set of
// WebM element variants this relay understands.
package ebml

import "errors"

// ErrIncomplete signals that the caller must supply more bytes before the
// next varint or tag can be decoded. It is not a terminal error.
var ErrIncomplete = errors.New("ebml: incomplete")

var (
	// ErrCorruptVarint is returned when a varint's length-marker byte is
	// itself invalid (a leading zero byte).
	ErrCorruptVarint = errors.New("ebml: corrupt varint")
	// ErrUnknownElementID is returned when a decoded element ID is the
	// all-ones sentinel at its length, which is never a valid ID.
	ErrUnknownElementID = errors.New("ebml: unknown element id")
	// ErrUnknownElementLength is returned when an element outside the
	// unwrapped set (Segment, Cluster) is encoded with unknown length.
	ErrUnknownElementLength = errors.New("ebml: unknown element length outside Segment/Cluster")
	// ErrCorruptPayload is returned when an element's payload cannot be
	// decoded per its schema (e.g. a SimpleBlock shorter than its header).
	ErrCorruptPayload = errors.New("ebml: corrupt payload")
	// ErrOutOfRange is returned by the varint encoder when a value does
	// not fit the 7-byte general-purpose varint encoding.
	ErrOutOfRange = errors.New("ebml: value out of range")
)
