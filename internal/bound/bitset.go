package bound

import "math/bits"

// BitSet is a growable set of small non-negative integers.
type BitSet []uint64

// Set adds i to the set.
func (b *BitSet) Set(i int) {
	w := i / 64
	for len(*b) <= w {
		*b = append(*b, 0)
	}
	(*b)[w] |= 1 << uint(i%64)
}

// Has reports whether i is in the set.
func (b BitSet) Has(i int) bool {
	w := i / 64
	return i >= 0 && w < len(b) && b[w]&(1<<uint(i%64)) != 0
}

// IsEmpty reports whether the set has no members.
func (b BitSet) IsEmpty() bool {
	for _, w := range b {
		if w != 0 {
			return false
		}
	}
	return true
}

// Count returns the number of members.
func (b BitSet) Count() int {
	n := 0
	for _, w := range b {
		n += bits.OnesCount64(w)
	}
	return n
}

// Members returns the members in increasing order.
func (b BitSet) Members() []int {
	var ms []int
	for wi, w := range b {
		for w != 0 {
			i := bits.TrailingZeros64(w)
			ms = append(ms, wi*64+i)
			w &^= 1 << uint(i)
		}
	}
	return ms
}

// Shift returns the set with every member increased by n.
func (b BitSet) Shift(n int) BitSet {
	var s BitSet
	for _, m := range b.Members() {
		s.Set(m + n)
	}
	return s
}
