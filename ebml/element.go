package ebml

import (
	"encoding/binary"
	"io"
)

// Kind discriminates the closed set of WebM events this relay understands.
type Kind int

const (
	KindEBMLHead Kind = iota
	KindVoid
	KindSegment
	KindSeekHead
	KindInfo
	KindCues
	KindTracks
	KindCluster
	KindTimecode
	KindSimpleBlock
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindEBMLHead:
		return "EBMLHead"
	case KindVoid:
		return "Void"
	case KindSegment:
		return "Segment"
	case KindSeekHead:
		return "SeekHead"
	case KindInfo:
		return "Info"
	case KindCues:
		return "Cues"
	case KindTracks:
		return "Tracks"
	case KindCluster:
		return "Cluster"
	case KindTimecode:
		return "Timecode"
	case KindSimpleBlock:
		return "SimpleBlock"
	default:
		return "Unknown"
	}
}

// SimpleBlock is a single coded frame: a per-cluster relative timecode and
// flags, keyed to a track number. Flags&0x80 marks a keyframe.
type SimpleBlock struct {
	Track    uint64
	Timecode int16
	Flags    uint8
	Data     []byte
}

// Keyframe reports whether this block's keyframe flag (0x80) is set.
func (b SimpleBlock) Keyframe() bool { return b.Flags&0x80 != 0 }

// Element is a tagged variant over the WebM events the pipeline acts on.
// Byte payloads (Tracks, SimpleBlock.Data) borrow from the caller's buffer;
// callers that need to retain an Element past the lifetime of that buffer
// must copy the relevant fields themselves.
type Element struct {
	Kind        Kind
	ID          uint32 // populated for KindUnknown
	Tracks      []byte
	Timecode    uint64
	SimpleBlock SimpleBlock
}

// Decode dispatches a tag's ID to the appropriate Element variant and
// decodes its payload. payload is empty for marker-only kinds and for
// unwrapped containers (Segment, Cluster), whose children are decoded as
// separate subsequent elements.
func Decode(id uint32, payload []byte) (Element, error) {
	switch id {
	case IDEBMLHead:
		return Element{Kind: KindEBMLHead}, nil
	case IDVoid:
		return Element{Kind: KindVoid}, nil
	case IDSegment:
		return Element{Kind: KindSegment}, nil
	case IDSeekHead:
		return Element{Kind: KindSeekHead}, nil
	case IDInfo:
		return Element{Kind: KindInfo}, nil
	case IDCues:
		return Element{Kind: KindCues}, nil
	case IDTracks:
		return Element{Kind: KindTracks, Tracks: payload}, nil
	case IDCluster:
		return Element{Kind: KindCluster}, nil
	case IDTimecode:
		v, err := decodeFixedUint(payload)
		if err != nil {
			return Element{}, err
		}
		return Element{Kind: KindTimecode, Timecode: v}, nil
	case IDSimpleBlock:
		b, err := decodeSimpleBlock(payload)
		if err != nil {
			return Element{}, err
		}
		return Element{Kind: KindSimpleBlock, SimpleBlock: b}, nil
	default:
		return Element{Kind: KindUnknown, ID: id}, nil
	}
}

// decodeFixedUint decodes a big-endian unsigned integer occupying the
// whole payload, as used by Info/TimecodeScale-style fixed-width fields.
func decodeFixedUint(payload []byte) (uint64, error) {
	if len(payload) == 0 || len(payload) > 8 {
		return 0, ErrCorruptPayload
	}
	var v uint64
	for _, b := range payload {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

func decodeSimpleBlock(payload []byte) (SimpleBlock, error) {
	track, n, err := DecodeVarint(payload)
	if err != nil || n == 0 {
		return SimpleBlock{}, ErrCorruptPayload
	}
	if len(payload) < n+3 {
		return SimpleBlock{}, ErrCorruptPayload
	}
	tc := int16(binary.BigEndian.Uint16(payload[n : n+2]))
	flags := payload[n+2]
	data := payload[n+3:]
	return SimpleBlock{Track: track, Timecode: tc, Flags: flags, Data: data}, nil
}

// maxEncodableTrack is the limitation preserved from the original Rust
// source: EncodeSimpleBlock refuses a track number above 31, encoding it
// with a single-byte varint only. Decode does not enforce this; see
// spec.md §4.2 and §9's open question.
const maxEncodableTrack = 31

// EncodeSimpleBlock writes a SimpleBlock element (tag + payload) to w. It
// is used by fixture builders and by the round-trip tests, not by the
// relay hot path, which forwards SimpleBlock bytes verbatim from the
// parser's raw span instead of re-encoding them.
func EncodeSimpleBlock(b SimpleBlock, w io.Writer) error {
	if b.Track > maxEncodableTrack {
		return ErrOutOfRange
	}
	payload := make([]byte, 0, 4+len(b.Data))
	payload = append(payload, byte(b.Track)|0x80)
	payload = append(payload, byte(b.Timecode>>8), byte(b.Timecode))
	payload = append(payload, b.Flags)
	payload = append(payload, b.Data...)

	if err := writeFixedID(w, IDSimpleBlock, 1); err != nil {
		return err
	}
	if err := EncodeVarint(uint64(len(payload)), w); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}
