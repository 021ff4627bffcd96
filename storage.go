package estimator

// storage is implemented by each of the four representations. Insertion
// and merge dispatch via type switches in estimator.go, since each
// representation's insert has its own signature; estimate, sizeOf, clone,
// and equal are called through this interface.
type storage interface {
	// estimate returns this representation's cardinality estimate.
	estimate(p *params) uint64

	// sizeOf returns the number of bytes occupied by this representation's
	// own heap allocation (0 for Small, which carries no heap buffer).
	// Estimator.SizeOf adds the fixed per-Estimator header on top of this.
	sizeOf(p *params) int

	// clone returns a deep copy of this representation.
	clone() storage

	// equal reports whether this representation is structurally identical
	// to other, including the case where other is a different concrete type
	// (in which case it's simply not equal).
	equal(other storage) bool
}
