package estimator

import (
	"encoding/binary"
	"hash"
	"math/bits"
)

// WyHash-style mixing constants (Wang Yi's wyhash algorithm). These are
// public, widely reproduced constants, not attributable to any single
// implementation.
const (
	wyp0 = 0xa0761d6478bd642f
	wyp1 = 0xe7037ed1a0b428db
	wyp2 = 0x8ebc6af09c88c6e3
	wyp3 = 0x589965cc75374cc3
)

// wymix multiplies a and b as a 128-bit product and folds the two halves
// together with xor, which is the core avalanche step of wyhash.
func wymix(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return hi ^ lo
}

func wyread8(p []byte) uint64 {
	return binary.LittleEndian.Uint64(p)
}

// wyhashBytes computes a deterministic, unseeded 64-bit hash of data. It is
// the default hasher used by Estimator.Insert: any good 64-bit hasher works,
// but tests and reproducible cross-run estimates assume this default.
func wyhashBytes(data []byte) uint64 {
	seed := uint64(wyp0)
	n := len(data)

	var a, b uint64
	switch {
	case n == 0:
		a, b = 0, 0
	case n < 8:
		var buf [8]byte
		copy(buf[:], data)
		a = binary.LittleEndian.Uint64(buf[:])
		b = a
	case n <= 16:
		a = wyread8(data[:8])
		b = wyread8(data[n-8:])
	default:
		p := data
		for len(p) > 16 {
			seed = wymix(wyread8(p)^wyp1, wyread8(p[8:])^seed)
			p = p[16:]
		}
		a = wyread8(data[n-16 : n-8])
		b = wyread8(data[n-8:])
	}

	a ^= wyp1
	b ^= seed
	hi, lo := bits.Mul64(a, b)

	return wymix(hi^wyp0^uint64(n), lo^wyp2^wyp3)
}

// wyHasher implements hash.Hash64 over wyhashBytes, giving Estimator a
// hash.Hash64-shaped "build hasher" analogous to Rust's BuildHasherDefault.
type wyHasher struct {
	buf []byte
}

// NewWyHash returns the package's default deterministic 64-bit hasher.
func NewWyHash() hash.Hash64 {
	return &wyHasher{}
}

func (w *wyHasher) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *wyHasher) Sum(b []byte) []byte {
	var out [8]byte
	binary.BigEndian.PutUint64(out[:], w.Sum64())
	return append(b, out[:]...)
}

func (w *wyHasher) Reset()         { w.buf = w.buf[:0] }
func (w *wyHasher) Size() int      { return 8 }
func (w *wyHasher) BlockSize() int { return 1 }
func (w *wyHasher) Sum64() uint64  { return wyhashBytes(w.buf) }
