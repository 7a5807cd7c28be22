package filter

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/robalobadob/wordle/apps/solver/internal/constraint"
	"github.com/robalobadob/wordle/apps/solver/internal/word"
)

const (
	lo7 = 0x7f7f7f7f7f7f7f7f

	// blockSize is the number of words evaluated per survivor word of the bitset.
	blockSize = 64
)

// zeroBytes returns 0x80 in every lane of x that is zero and 0x00 elsewhere.
// The result is exact per lane, so it may be masked.
func zeroBytes(x uint64) uint64 {
	t := (x & lo7) + lo7
	return ^(t | x | lo7)
}

// letterLanes selects the lanes in which one letter is tested.
type letterLanes struct {
	splat uint64
	lanes uint64 // 0x80 per selected lane
}

// program is a Constraint compiled for lane vectors.
type program struct {
	fixed    uint64 // fixed letters in their lanes, 0 elsewhere
	fixedHi  uint64 // 0x80 in every fixed lane
	included []uint64
	excluded []uint64
	avoided  []letterLanes
}

func compile(c constraint.Constraint) program {
	var p program
	for i := 0; i < word.LaneWidth; i++ {
		if l, ok := c.FixedAt(i); ok {
			p.fixed |= uint64(l) << (8 * uint(i))
			p.fixedHi |= 0x80 << (8 * uint(i))
		}
	}
	for _, l := range c.Included() {
		p.included = append(p.included, word.Splat(l))
	}
	for _, l := range c.Excluded() {
		p.excluded = append(p.excluded, word.Splat(l))
	}
	for l := byte('a'); l <= 'z'; l++ {
		var lanes uint64
		for i := 0; i < word.LaneWidth; i++ {
			if c.AvoidedAt(i)&word.Bit(l) != 0 {
				lanes |= 0x80 << (8 * uint(i))
			}
		}
		if lanes != 0 {
			p.avoided = append(p.avoided, letterLanes{splat: word.Splat(l), lanes: lanes})
		}
	}
	return p
}

func (p *program) match(v uint64) bool {
	if zeroBytes(v^p.fixed)&p.fixedHi != p.fixedHi {
		return false
	}
	for _, s := range p.excluded {
		if zeroBytes(v^s) != 0 {
			return false
		}
	}
	for _, s := range p.included {
		if zeroBytes(v^s) == 0 {
			return false
		}
	}
	for _, a := range p.avoided {
		if zeroBytes(v^a.splat)&a.lanes != 0 {
			return false
		}
	}
	return true
}

// survivors evaluates p over vecs and returns one bit per vector.
func (p *program) survivors(vecs []uint64) *bitset.BitSet {
	set := make([]uint64, (len(vecs)+blockSize-1)/blockSize)
	for b := range set {
		block := vecs[b*blockSize:]
		if len(block) > blockSize {
			block = block[:blockSize]
		}
		var bits uint64
		for j, v := range block {
			if p.match(v) {
				bits |= 1 << uint(j)
			}
		}
		set[b] = bits
	}
	return bitset.FromWithLength(uint(len(vecs)), set)
}

// vector encodes w at its own length. ok is false when w does not fit in a
// lane vector or holds a byte outside a-z.
func vector(w string) (v uint64, ok bool) {
	codec, err := word.NewLaneCodec(len(w))
	if err != nil {
		return 0, false
	}
	l, err := codec.Encode(w)
	if err != nil {
		return 0, false
	}
	return l.Vector(), true
}

// Lanes is the lane-vector implementation. Words that cannot be laid out in
// a lane vector are decided by the scalar test so results never diverge.
type Lanes struct{}

func (Lanes) Filter(words []string, c constraint.Constraint) []string {
	out := make([]string, 0, len(words))
	if len(words) == 0 {
		return out
	}
	p := compile(c)
	vecs := make([]uint64, len(words))
	odd := make(map[int]bool)
	for i, w := range words {
		v, ok := vector(w)
		if !ok {
			odd[i] = c.Satisfies(w)
			continue
		}
		vecs[i] = v
	}
	keep := p.survivors(vecs)
	for i, w := range words {
		if ok, seen := odd[i]; seen {
			if ok {
				out = append(out, w)
			}
			continue
		}
		if keep.Test(uint(i)) {
			out = append(out, w)
		}
	}
	return out
}

// Batch is a word list encoded once for repeated filtering, as the scorer does
// for every hypothetical constraint of a pass.
type Batch struct {
	words  []string
	vecs   []uint64
	length int
}

// NewBatch encodes words at the given length and fails on the first word that
// does not conform.
func NewBatch(words []string, length int) (*Batch, error) {
	codec, err := word.NewLaneCodec(length)
	if err != nil {
		return nil, err
	}
	b := &Batch{words: words, vecs: make([]uint64, len(words)), length: length}
	for i, w := range words {
		l, err := codec.Encode(w)
		if err != nil {
			return nil, err
		}
		b.vecs[i] = l.Vector()
	}
	return b, nil
}

func (b *Batch) Len() int { return len(b.words) }
func (b *Batch) WordLength() int { return b.length }

// Survivors returns the indexes of the words that satisfy c.
func (b *Batch) Survivors(c constraint.Constraint) *bitset.BitSet {
	p := compile(c)
	return p.survivors(b.vecs)
}

// Count is the number of words that satisfy c.
func (b *Batch) Count(c constraint.Constraint) int {
	return int(b.Survivors(c).Count())
}

// Filter returns the words that satisfy c, in input order.
func (b *Batch) Filter(c constraint.Constraint) []string {
	keep := b.Survivors(c)
	out := make([]string, 0, keep.Count())
	for i, ok := keep.NextSet(0); ok; i, ok = keep.NextSet(i + 1) {
		out = append(out, b.words[i])
	}
	return out
}
