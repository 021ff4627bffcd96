package estimator

import (
	"encoding/binary"
	"fmt"
	"hash"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_New_zeroValueIsEmptySmall(t *testing.T) {
	e := New()

	assert.Equal(t, uint64(0), e.Estimate())
	assert.Equal(t, estimatorHeaderSize, e.SizeOf())
	assert.Equal(t, RepresentationSmall, e.representation())
	assert.Equal(t, DefaultSettings, e.Settings())
}

func Test_NewWithSettings_rejectsOutOfRangeParams(t *testing.T) {
	_, err := NewWithSettings(Settings{P: 100, W: 5})
	assert.ErrorIs(t, err, ErrParamsOutOfRange)
}

func Test_NewWithSettings_honoursGivenSettings(t *testing.T) {
	e, err := NewWithSettings(Settings{P: 14, W: 5})
	require.NoError(t, err)
	assert.Equal(t, Settings{P: 14, W: 5}, e.Settings())
}

// distinctCodeCounter hands out ever-increasing idx values across calls to
// insertDistinctCodes, so repeated calls against the same Estimator keep
// inserting genuinely new, never-before-seen codes.
type distinctCodeCounter struct{ next uint32 }

// insertDistinctCodes inserts n encoded hashes guaranteed to be pairwise
// distinct (including distinct from any previous call using the same
// counter), by varying idx across a monotonically increasing sequence.
func insertDistinctCodes(t *testing.T, e *Estimator, c *distinctCodeCounter, n int) {
	t.Helper()
	p := e.ensureParams()
	for i := 0; i < n; i++ {
		code := p.encodeHash(hashForRank(p, c.next, 1))
		c.next++
		require.NotZero(t, code)
		e.insertEncodedHash(p, code)
	}
}

func Test_insertEncodedHash_promotesThroughRepresentations(t *testing.T) {
	e, err := NewWithSettings(Settings{P: 10, W: 5})
	require.NoError(t, err)
	c := &distinctCodeCounter{}

	insertDistinctCodes(t, &e, c, 2)
	assert.Equal(t, RepresentationSmall, e.representation())
	assert.Equal(t, uint64(2), e.Estimate())

	insertDistinctCodes(t, &e, c, 1) // 3rd distinct value: Small -> Slice
	assert.Equal(t, RepresentationSlice, e.representation())
	assert.Equal(t, uint64(3), e.Estimate())

	insertDistinctCodes(t, &e, c, sliceMaxCapacity-3)
	assert.Equal(t, RepresentationSlice, e.representation())
	assert.Equal(t, uint64(sliceMaxCapacity), e.Estimate())

	insertDistinctCodes(t, &e, c, 1) // overflow Slice -> HashSet
	assert.Equal(t, RepresentationHashSet, e.representation())
	assert.Equal(t, uint64(sliceMaxCapacity+1), e.Estimate())
}

func Test_InsertHash_duplicateDoesNotIncreaseEstimate(t *testing.T) {
	e := New()
	e.InsertHash(123)
	e.InsertHash(123)

	assert.Equal(t, uint64(1), e.Estimate())
}

func Test_Insert_routesThroughHasher(t *testing.T) {
	e := New()
	e.Insert([]byte("hello"))
	e.Insert([]byte("hello"))
	e.Insert([]byte("world"))

	assert.Equal(t, uint64(2), e.Estimate())
}

func Test_Insert_distinctIntegersEstimateWithinTolerance(t *testing.T) {
	e, err := NewWithSettings(Settings{P: 12, W: 6})
	require.NoError(t, err)

	const n = 10000
	for i := 0; i < n; i++ {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(i))
		e.Insert(buf[:])
	}

	assert.Equal(t, RepresentationHyperLogLog, e.representation())

	got := e.Estimate()
	assert.InEpsilon(t, float64(n), float64(got), 0.15)
}

func Test_SetHasher_overridesDefault(t *testing.T) {
	e := New()

	called := 0
	e.SetHasher(func() hash.Hash64 {
		called++
		return NewWyHash()
	})

	e.Insert([]byte("x"))

	assert.Equal(t, 1, called)
	assert.Equal(t, uint64(1), e.Estimate())
}

func Test_String_rendersRepresentationEstimateAndSize(t *testing.T) {
	e := New()
	e.InsertHash(1)
	e.InsertHash(2)

	assert.Equal(t, fmt.Sprintf("{ representation: %s, estimate: %d, size: %d }",
		RepresentationSmall, uint64(2), estimatorHeaderSize), e.String())
}

func Test_Merge_unionsDistinctSmallEstimators(t *testing.T) {
	a, err := NewWithSettings(Settings{P: 10, W: 5})
	require.NoError(t, err)
	b, err := NewWithSettings(Settings{P: 10, W: 5})
	require.NoError(t, err)

	p := a.ensureParams()
	a.insertEncodedHash(p, p.encodeHash(hashForRank(p, 1, 1)))
	a.insertEncodedHash(p, p.encodeHash(hashForRank(p, 2, 1)))
	b.insertEncodedHash(p, p.encodeHash(hashForRank(p, 3, 1)))

	a.Merge(&b)

	assert.Equal(t, uint64(3), a.Estimate())
}

func Test_Merge_smallIntoDense(t *testing.T) {
	a, err := NewWithSettings(Settings{P: 10, W: 5})
	require.NoError(t, err)
	b, err := NewWithSettings(Settings{P: 10, W: 5})
	require.NoError(t, err)

	insertDistinctCodes(t, &a, &distinctCodeCounter{}, 1)
	insertDistinctCodes(t, &b, &distinctCodeCounter{next: 1}, 2000) // forces b into HyperLogLog

	a.Merge(&b)

	assert.Equal(t, RepresentationHyperLogLog, a.representation())
	assert.GreaterOrEqual(t, a.Estimate(), uint64(1))
}

func Test_Merge_denseIntoSmall(t *testing.T) {
	a, err := NewWithSettings(Settings{P: 10, W: 5})
	require.NoError(t, err)
	b, err := NewWithSettings(Settings{P: 10, W: 5})
	require.NoError(t, err)

	insertDistinctCodes(t, &a, &distinctCodeCounter{}, 2000) // forces a into HyperLogLog
	insertDistinctCodes(t, &b, &distinctCodeCounter{next: 2000}, 1)

	a.Merge(&b)

	assert.Equal(t, RepresentationHyperLogLog, a.representation())
}

func Test_Merge_denseIntoDense_sameParams(t *testing.T) {
	a, err := NewWithSettings(Settings{P: 10, W: 5})
	require.NoError(t, err)
	b, err := NewWithSettings(Settings{P: 10, W: 5})
	require.NoError(t, err)

	insertDistinctCodes(t, &a, &distinctCodeCounter{}, 2000)
	insertDistinctCodes(t, &b, &distinctCodeCounter{}, 2000)

	before := a.Estimate()
	a.Merge(&b)

	assert.GreaterOrEqual(t, a.Estimate(), before)
}

func Test_Merge_denseIntoDense_differentParamsPanics(t *testing.T) {
	a, err := NewWithSettings(Settings{P: 4, W: 4})
	require.NoError(t, err)
	b, err := NewWithSettings(Settings{P: 5, W: 4})
	require.NoError(t, err)

	insertDistinctCodes(t, &a, &distinctCodeCounter{}, 2000)
	insertDistinctCodes(t, &b, &distinctCodeCounter{}, 2000)

	require.Equal(t, RepresentationHyperLogLog, a.representation())
	require.Equal(t, RepresentationHyperLogLog, b.representation())

	assert.PanicsWithValue(t, ErrIncompatibleParams, func() {
		a.Merge(&b)
	})
}

func Test_StrictMerge_rejectsIncompatibleParams(t *testing.T) {
	a, err := NewWithSettings(Settings{P: 10, W: 5})
	require.NoError(t, err)
	b, err := NewWithSettings(Settings{P: 11, W: 5})
	require.NoError(t, err)

	err = a.StrictMerge(&b)
	assert.ErrorIs(t, err, ErrIncompatibleParams)
}

func Test_StrictMerge_acceptsCompatibleParams(t *testing.T) {
	a, err := NewWithSettings(Settings{P: 10, W: 5})
	require.NoError(t, err)
	b, err := NewWithSettings(Settings{P: 10, W: 5})
	require.NoError(t, err)

	insertDistinctCodes(t, &a, &distinctCodeCounter{}, 1)
	insertDistinctCodes(t, &b, &distinctCodeCounter{next: 1}, 1)

	require.NoError(t, a.StrictMerge(&b))
}

func Test_Clone_isIndependent(t *testing.T) {
	a := New()
	a.InsertHash(1)

	clone := a.Clone()
	clone.InsertHash(2)

	assert.Equal(t, uint64(1), a.Estimate())
	assert.Equal(t, uint64(2), clone.Estimate())
}

func Test_Equal_reflectsStorageState(t *testing.T) {
	a := New()
	b := New()
	assert.True(t, a.Equal(&b))

	a.InsertHash(1)
	assert.False(t, a.Equal(&b))

	b.InsertHash(1)
	assert.True(t, a.Equal(&b))
}
