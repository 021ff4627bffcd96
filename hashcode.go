package estimator

import "math/bits"

// encodeHash produces the sparse encoding of a raw 64-bit hash, used by the
// Small, Slice, and HashSet representations. Code 0 is reserved to mean
// "empty slot". Since rank is always at least 1, encodeHash itself never
// returns 0; the zero-skip in the insert paths is what keeps empty Small
// slots from being replayed as values during merge.
func (p *params) encodeHash(h uint64) uint32 {
	idx := uint32(h) & p.encodeIdxMask
	rank := uint32(bits.TrailingZeros64(^h>>uint(p.p))) + 1
	return (idx << uint(p.w)) | rank
}

// decodeHash inverts encodeHash, recovering the register index and rank
// that a sparse-encoded hash represents.
func (p *params) decodeHash(code uint32) (idx, rank uint32) {
	rank = code & ((uint32(1) << uint(p.w)) - 1)
	idx = (code >> uint(p.w)) & p.idxMask
	return idx, rank
}

// denseIndexAndRank computes the register index and rank directly from a
// raw 64-bit hash, bypassing the sparse encoding entirely. Used when
// inserting into an already-dense Estimator.
func (p *params) denseIndexAndRank(h uint64) (idx, rank uint32) {
	idx = uint32(h) & p.idxMask
	rank = uint32(bits.TrailingZeros64(^h>>uint(p.p))) + 1
	return idx, rank
}
