package rkbloom

// Membership is a probabilistic set of rolling hash values. Query never
// reports false for a value that was inserted; it may report true for one
// that was not. There is no deletion.
//
// Implementations used by [BuildDocumentFilterParallel] must also allow
// concurrent calls to Insert.
type Membership interface {
	// Insert adds v to the set.
	Insert(v uint64)
	// Query reports whether v may be in the set. False means v was
	// definitely never inserted.
	Query(v uint64) bool
}

// A SetFunc creates an empty Membership sized for capacity values.
type SetFunc func(capacity uint64) Membership

// FilterSet returns a SetFunc that creates a [Filter] with the given target
// false-positive rate.
func FilterSet(fpRate float64) SetFunc {
	return func(capacity uint64) Membership { return NewFilter(capacity, fpRate) }
}

// AtomicFilterSet returns a SetFunc that creates an [AtomicFilter] with the
// given target false-positive rate.
func AtomicFilterSet(fpRate float64) SetFunc {
	return func(capacity uint64) Membership { return NewAtomicFilter(capacity, fpRate) }
}

var (
	_ Membership = (*Filter)(nil)
	_ Membership = (*AtomicFilter)(nil)
)
