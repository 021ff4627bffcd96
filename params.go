package estimator

import (
	"sync"

	"github.com/pkg/errors"
)

const (
	minP = 4
	maxP = 18
	minW = 4
	maxW = 6

	// sliceMaxCapacity is the largest capacity the Slice representation will
	// grow to before promoting to HashSet.
	sliceMaxCapacity = 16
)

// Settings configures an Estimator's precision (P) and register width (W).
// Settings is the exported, validated-at-the-door configuration; toInternal
// derives and caches the internal params used on every hot path.
type Settings struct {
	// P is the log2 of the number of HyperLogLog registers (M = 2^P).
	// Must be in [4, 18].
	P int

	// W is the number of bits dedicated to each HyperLogLog register.
	// Must be in [4, 6].
	W int
}

// DefaultSettings are the settings used by the zero-value Estimator unless
// SetDefault installs different ones.
var DefaultSettings = Settings{P: 12, W: 6}

var (
	defaultParams     *params
	defaultParamsLock sync.RWMutex

	paramsCache     = map[Settings]*params{}
	paramsCacheLock sync.RWMutex
)

func init() {
	p, err := DefaultSettings.toInternal()
	if err != nil {
		panic(err)
	}
	defaultParams = p
}

// SetDefault installs the settings used by the zero-value Estimator. It
// returns an error if the settings are invalid. It is intended to be called
// once during process initialization; calling it again with different
// settings after estimators have been constructed from the old default is
// not recommended.
func SetDefault(s Settings) error {
	p, err := s.toInternal()
	if err != nil {
		return err
	}

	defaultParamsLock.Lock()
	defer defaultParamsLock.Unlock()
	defaultParams = p

	return nil
}

func getDefaultParams() *params {
	defaultParamsLock.RLock()
	defer defaultParamsLock.RUnlock()
	return defaultParams
}

// params holds derived, precomputed values for a given (P, W) pair. Values
// are immutable once constructed, so a single instance can be shared (and
// cached) across every Estimator using the same Settings.
type params struct {
	p, w int

	// m is the number of HyperLogLog registers, 2^P.
	m uint32

	// idxMask selects the low P bits of a raw hash for direct dense indexing.
	idxMask uint32

	// encodeIdxMask selects the (32 - W - 1) low bits of a raw hash used as
	// the idx portion of the sparse encoding.
	encodeIdxMask uint32

	// hllLen is the length, in uint32 words, of the dense register buffer:
	// M*W/32 + 3 (2 summary words + 1 trailing guard word).
	hllLen int

	// hashSetPromoteBytes is the allocation size, in bytes, at which a
	// HashSet promotes to HLL rather than growing further.
	hashSetPromoteBytes int

	// alphaM is the HyperLogLog bias-correction constant alpha(M).
	alphaM float64
}

// toInternal validates s and returns the cached params for it, computing and
// caching them on first use.
func (s Settings) toInternal() (*params, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	paramsCacheLock.RLock()
	cached := paramsCache[s]
	paramsCacheLock.RUnlock()

	if cached != nil {
		return cached, nil
	}

	m := uint32(1) << uint(s.P)
	bitsPerRegister := int(m) * s.W

	p := &params{
		p:                   s.P,
		w:                   s.W,
		m:                   m,
		idxMask:             m - 1,
		encodeIdxMask:       (uint32(1) << uint(32-s.W-1)) - 1,
		hllLen:              bitsPerRegister/32 + 3,
		hashSetPromoteBytes: (bitsPerRegister/32 + 3) * 4,
		alphaM:              alpha(m),
	}

	paramsCacheLock.Lock()
	paramsCache[s] = p
	paramsCacheLock.Unlock()

	return p, nil
}

func (s Settings) validate() error {
	if s.P < minP || s.P > maxP {
		return errors.Wrapf(ErrParamsOutOfRange, "P must be in [%d, %d], got %d", minP, maxP, s.P)
	}
	if s.W < minW || s.W > maxW {
		return errors.Wrapf(ErrParamsOutOfRange, "W must be in [%d, %d], got %d", minW, maxW, s.W)
	}
	return nil
}
