package ebml

import "bytes"

// TestCluster describes one cluster of a synthesized WebM stream:
// BuildTestStream.
type TestCluster struct {
	StartMS uint64
	Blocks  []SimpleBlock
}

// BuildTestStream synthesizes a minimal, well-formed WebM byte stream: an
// EBMLHead, a Segment containing a Tracks blob, and the given clusters —
// each written as a Cluster tag (maximal unknown-length form, to exercise
// the same code path EncodeClusterOpenFull does) followed by a Timecode
// and its SimpleBlocks.
//
// This is the Go equivalent of the original Rust implementation's
// `resynth` fixture-building tool (see SPEC_FULL.md §C.1): a library
// helper for building test streams, not a CLI subcommand.
func BuildTestStream(tracksPayload []byte, clusters []TestCluster) ([]byte, error) {
	var buf bytes.Buffer

	if err := EncodeElementBytes(IDEBMLHead, nil, &buf); err != nil {
		return nil, err
	}
	if err := EncodeSegmentOpen(&buf); err != nil {
		return nil, err
	}
	if err := EncodeElementBytes(IDTracks, tracksPayload, &buf); err != nil {
		return nil, err
	}
	for _, c := range clusters {
		if err := EncodeClusterOpenFull(&buf); err != nil {
			return nil, err
		}
		if err := EncodeTimecode(c.StartMS, &buf); err != nil {
			return nil, err
		}
		for _, b := range c.Blocks {
			if err := EncodeSimpleBlock(b, &buf); err != nil {
				return nil, err
			}
		}
	}
	return buf.Bytes(), nil
}
