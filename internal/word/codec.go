package word

import "encoding/binary"

// Codec encodes words of a fixed length into a comparable compact form.
// Decode is total: it never fails, and Decode(Encode(w)) == w for every valid w.
type Codec[T comparable] interface {
	Length() int
	Encode(w string) (T, error)
	Decode(v T) string
}

const (
	bitsPerLetter = 5
	letterMask    = 1<<bitsPerLetter - 1

	// LaneNone pads unused lanes; it never matches a letter or LaneAny.
	LaneNone byte = '_'
	// LaneAny marks a lane that any letter may occupy in a filter program.
	LaneAny byte = '*'
)

// Packed holds one word as 5-bit letter codes (a=1 … z=26), position i in bits [5i, 5i+5).
// A zero field is an empty position.
type Packed uint64

// Letter returns the letter at position i, or LaneNone for an empty field.
func (p Packed) Letter(i int) byte {
	code := byte(p>>(uint(i)*bitsPerLetter)) & letterMask
	if code == 0 || code > Alphabet {
		return LaneNone
	}
	return 'a' + code - 1
}

// PackedCodec is the packed-integer codec.
type PackedCodec struct{ length int }

// NewPackedCodec returns a packed codec for words of the given length.
func NewPackedCodec(length int) (PackedCodec, error) {
	if err := CheckLength(length); err != nil {
		return PackedCodec{}, err
	}
	return PackedCodec{length: length}, nil
}

func (c PackedCodec) Length() int { return c.length }

func (c PackedCodec) Encode(w string) (Packed, error) {
	if err := Validate(w, c.length); err != nil {
		return 0, err
	}
	var p Packed
	for i := 0; i < len(w); i++ {
		p |= Packed(w[i]-'a'+1) << (uint(i) * bitsPerLetter)
	}
	return p, nil
}

func (c PackedCodec) Decode(p Packed) string {
	b := make([]byte, c.length)
	for i := range b {
		b[i] = p.Letter(i)
	}
	return string(b)
}

// Lanes holds one word as a byte per lane, padded with LaneNone.
type Lanes [LaneWidth]byte

// Vector packs the lanes into a uint64, lane i in byte i.
func (l Lanes) Vector() uint64 { return binary.LittleEndian.Uint64(l[:]) }

// Splat repeats b in every lane.
func Splat(b byte) uint64 { return uint64(b) * 0x0101010101010101 }

// LaneCodec is the byte-lane codec.
type LaneCodec struct{ length int }

// NewLaneCodec returns a lane codec for words of the given length.
func NewLaneCodec(length int) (LaneCodec, error) {
	if err := CheckLength(length); err != nil {
		return LaneCodec{}, err
	}
	return LaneCodec{length: length}, nil
}

func (c LaneCodec) Length() int { return c.length }

func (c LaneCodec) Encode(w string) (Lanes, error) {
	if err := Validate(w, c.length); err != nil {
		return Lanes{}, err
	}
	l := Lanes{LaneNone, LaneNone, LaneNone, LaneNone, LaneNone, LaneNone, LaneNone, LaneNone}
	copy(l[:], w)
	return l, nil
}

func (c LaneCodec) Decode(l Lanes) string {
	b := make([]byte, c.length)
	for i := range b {
		if IsLetter(l[i]) {
			b[i] = l[i]
		} else {
			b[i] = LaneNone
		}
	}
	return string(b)
}

