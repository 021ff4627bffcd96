// Package estimator implements a cardinality estimator: a sketch that
// reports the number of distinct values observed in an insertion stream.
//
// An Estimator starts out tiny and promotes itself through four storage
// representations as more distinct values arrive:
//
//   - Small   — up to two inline hashes, no heap allocation at all.
//   - Slice   — a small growable slice of distinct encoded hashes.
//   - HashSet — a Go map once the slice would otherwise grow past its
//     practical linear-scan size.
//   - HLL     — a bit-packed HyperLogLog with LogLog-Beta bias correction,
//     once exact storage would cost more than the dense sketch.
//
// Promotion is one-way and lossless: Small, Slice, and HashSet report exact
// cardinalities; HLL reports a statistical estimate with bounded relative
// error. Two estimators with the same (P, W) settings can be merged, and
// the result is commutative and idempotent regardless of which
// representations the operands happen to be in.
//
// The zero value of Estimator is a valid, empty Small estimator using the
// package default settings (P=12, W=6) unless SetDefault installs a
// different default.
package estimator
