package estimator

import "github.com/pkg/errors"

// ErrIncompatibleParams is returned by StrictMerge, and wrapped in the panic
// raised by Merge, when the two Estimators being merged have different P or
// W settings. Every stored representation (Small/Slice/HashSet codes, dense
// register indices) is encoded relative to its own params, so there is no
// safe way to replay one Estimator's contents into another with different
// settings; unlike a plain accuracy tradeoff, attempting it would silently
// corrupt registers or index out of range.
var ErrIncompatibleParams = errors.New("cannot merge Estimators with different P or W settings")

// ErrParamsOutOfRange is returned by NewWithSettings/SetDefault when P falls
// outside [4, 18] or W falls outside [4, 6].
var ErrParamsOutOfRange = errors.New("P or W out of range")
