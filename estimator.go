package estimator

import (
	"fmt"
	"hash"
)

// Estimator is a cardinality estimator: a sketch reporting the number of
// distinct values inserted into it. The zero value is an empty Small
// estimator using DefaultSettings (or whatever SetDefault last installed).
//
// Estimator is single-threaded cooperative: every method runs to
// completion on the calling goroutine. Concurrent mutation of the same
// Estimator from multiple goroutines is undefined; concurrent read-only
// Estimate calls on an Estimator nobody is mutating are safe.
type Estimator struct {
	params  *params
	storage storage
	hasher  func() hash.Hash64
}

// estimatorHeaderSize is the fixed per-Estimator overhead SizeOf reports on
// top of the active representation's owned buffer: one machine word of
// representation-tag/dispatch state, mirroring the original's
// one-word-plus-buffer layout regardless of which representation is active.
const estimatorHeaderSize = 8

// New creates a new, empty Estimator using DefaultSettings.
func New() Estimator {
	return Estimator{}
}

// NewWithSettings creates a new, empty Estimator using the given settings.
// It returns an error if the settings are out of range.
func NewWithSettings(s Settings) (Estimator, error) {
	p, err := s.toInternal()
	if err != nil {
		return Estimator{}, err
	}
	return Estimator{params: p}, nil
}

// FromHash creates a new Estimator and inserts a single pre-hashed value
// into it.
func FromHash(h uint64) Estimator {
	e := New()
	e.InsertHash(h)
	return e
}

func (e *Estimator) ensureParams() *params {
	if e.params == nil {
		e.params = getDefaultParams()
	}
	return e.params
}

func (e *Estimator) ensureStorage() storage {
	if e.storage == nil {
		e.storage = &smallStorage{}
	}
	return e.storage
}

func (e *Estimator) hasherFor() hash.Hash64 {
	if e.hasher != nil {
		return e.hasher()
	}
	return NewWyHash()
}

// SetHasher overrides the build-hasher used by Insert. h is called once per
// Insert to obtain a fresh hash.Hash64; the default is NewWyHash.
func (e *Estimator) SetHasher(h func() hash.Hash64) {
	e.hasher = h
}

// Settings returns the settings this Estimator is using.
func (e *Estimator) Settings() Settings {
	p := e.ensureParams()
	return Settings{P: p.p, W: p.w}
}

// Insert hashes data with the configured hasher (WyHash by default) and
// inserts the resulting hash.
func (e *Estimator) Insert(data []byte) {
	h := e.hasherFor()
	_, _ = h.Write(data)
	e.InsertHash(h.Sum64())
}

// InsertHash inserts a pre-hashed 64-bit value directly, routing through
// whichever representation is currently active and promoting at most once.
func (e *Estimator) InsertHash(h uint64) {
	p := e.ensureParams()
	s := e.ensureStorage()

	switch rep := s.(type) {
	case *smallStorage:
		code := p.encodeHash(h)
		if code == 0 {
			return
		}
		e.storage = rep.insert(p, code)
	case *sliceStorage:
		code := p.encodeHash(h)
		if code == 0 {
			return
		}
		e.storage = rep.insert(p, code)
	case *hashSetStorage:
		code := p.encodeHash(h)
		if code == 0 {
			return
		}
		e.storage = rep.insert(p, code)
	case *denseStorage:
		idx, rank := p.denseIndexAndRank(h)
		rep.insertIdxRank(p, idx, rank)
	default:
		panic(fmt.Sprintf("estimator: unknown representation %T", rep))
	}
}

// insertEncodedHash inserts an already-encoded sparse hash (used when
// replaying hashes from one representation into another during merge). It
// applies the same zero-skip rule as the public Insert path.
func (e *Estimator) insertEncodedHash(p *params, code uint32) {
	if code == 0 {
		return
	}
	s := e.ensureStorage()

	switch rep := s.(type) {
	case *smallStorage:
		e.storage = rep.insert(p, code)
	case *sliceStorage:
		e.storage = rep.insert(p, code)
	case *hashSetStorage:
		e.storage = rep.insert(p, code)
	case *denseStorage:
		idx, rank := p.decodeHash(code)
		rep.insertIdxRank(p, idx, rank)
	}
}

// Estimate returns the current cardinality estimate.
func (e *Estimator) Estimate() uint64 {
	p := e.ensureParams()
	return e.ensureStorage().estimate(p)
}

// SizeOf returns the number of bytes occupied by this Estimator: a fixed
// header (estimatorHeaderSize) plus whatever heap buffer the active
// representation owns (0 for Small, which owns no buffer).
func (e *Estimator) SizeOf() int {
	p := e.ensureParams()
	return estimatorHeaderSize + e.ensureStorage().sizeOf(p)
}

// Representation names the active storage representation, for String().
type Representation string

const (
	RepresentationSmall       Representation = "Small"
	RepresentationSlice       Representation = "Slice"
	RepresentationHashSet     Representation = "HashSet"
	RepresentationHyperLogLog Representation = "HyperLogLog"
)

// representation reports which storage representation is currently active.
func (e *Estimator) representation() Representation {
	switch e.ensureStorage().(type) {
	case *smallStorage:
		return RepresentationSmall
	case *sliceStorage:
		return RepresentationSlice
	case *hashSetStorage:
		return RepresentationHashSet
	default:
		return RepresentationHyperLogLog
	}
}

// String renders a debug summary of the Estimator's current state.
func (e *Estimator) String() string {
	return fmt.Sprintf("{ representation: %s, estimate: %d, size: %d }",
		e.representation(), e.Estimate(), e.SizeOf())
}

// Merge merges other into e. The two Estimators must share the same P and
// W; unlike a plain accuracy tradeoff, there is no safe way to combine
// sketches built with different settings (see ErrIncompatibleParams), so
// Merge panics if they differ. Use StrictMerge to get an error instead of a
// panic.
func (e *Estimator) Merge(other *Estimator) {
	if err := e.merge(other); err != nil {
		panic(err)
	}
}

// StrictMerge merges other into e, returning ErrIncompatibleParams if the
// two Estimators have different P or W settings.
func (e *Estimator) StrictMerge(other *Estimator) error {
	return e.merge(other)
}

func (e *Estimator) merge(other *Estimator) error {
	p := e.ensureParams()
	op := other.ensureParams()

	if p.p != op.p || p.w != op.w {
		return ErrIncompatibleParams
	}

	self := e.ensureStorage()
	otherStorage := other.ensureStorage()

	switch rhs := otherStorage.(type) {
	case *smallStorage:
		e.insertEncodedHash(p, rhs.h1)
		e.insertEncodedHash(p, rhs.h2)
		return nil
	case *sliceStorage:
		for i := 0; i < rhs.n; i++ {
			e.insertEncodedHash(p, rhs.buf[i])
		}
		return nil
	case *hashSetStorage:
		for code := range rhs.set {
			e.insertEncodedHash(p, code)
		}
		return nil
	case *denseStorage:
		switch lhs := self.(type) {
		case *smallStorage:
			h1, h2 := lhs.h1, lhs.h2
			e.storage = rhs.clone()
			e.insertEncodedHash(p, h1)
			e.insertEncodedHash(p, h2)
		case *sliceStorage:
			codes := append([]uint32(nil), lhs.buf[:lhs.n]...)
			e.storage = rhs.clone()
			for _, code := range codes {
				e.insertEncodedHash(p, code)
			}
		case *hashSetStorage:
			codes := make([]uint32, 0, len(lhs.set))
			for code := range lhs.set {
				codes = append(codes, code)
			}
			e.storage = rhs.clone()
			for _, code := range codes {
				e.insertEncodedHash(p, code)
			}
		case *denseStorage:
			lhs.mergeDense(p, rhs)
		}
		return nil
	}

	return nil
}

// Clone returns a deep copy of e.
func (e *Estimator) Clone() Estimator {
	p := e.ensureParams()
	return Estimator{params: p, storage: e.ensureStorage().clone(), hasher: e.hasher}
}

// Equal reports whether e and other are structurally equal: same
// representation and same stored bytes. Two Estimators holding the same
// logical set but in different representations (or with elements inserted
// in a different order, for Slice) are not guaranteed equal even though
// their Estimate() values agree.
func (e *Estimator) Equal(other *Estimator) bool {
	return e.ensureStorage().equal(other.ensureStorage())
}
