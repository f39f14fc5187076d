package hit

// Fields is a small insertion-ordered sequence of (name, value) pairs,
// used for both a hit's address map and its readout-timestamp map.
// Depth in practice is shallow (the address chain rarely exceeds the
// tree depth, typically under 8), so a linear-scan slice is simpler
// and cheaper than a map while still preserving the construction order
// that the textual form depends on.
type Fields struct {
	pairs []pair
}

type pair struct {
	name  string
	value int
}

// Set appends (name, value), or overwrites the value in place if name
// is already present — the position of an existing key never moves.
func (f *Fields) Set(name string, value int) {
	for i := range f.pairs {
		if f.pairs[i].name == name {
			f.pairs[i].value = value
			return
		}
	}
	f.pairs = append(f.pairs, pair{name: name, value: value})
}

// Get returns the value stored under name and whether it was present.
func (f Fields) Get(name string) (int, bool) {
	for _, p := range f.pairs {
		if p.name == name {
			return p.value, true
		}
	}
	return 0, false
}

// Has reports whether name is present.
func (f Fields) Has(name string) bool {
	_, ok := f.Get(name)
	return ok
}

// Len returns the number of pairs.
func (f Fields) Len() int {
	return len(f.pairs)
}

// Keys returns the names in construction order.
func (f Fields) Keys() []string {
	keys := make([]string, len(f.pairs))
	for i, p := range f.pairs {
		keys[i] = p.name
	}
	return keys
}

// Range calls fn for every pair in construction order, stopping early
// if fn returns false.
func (f Fields) Range(fn func(name string, value int) bool) {
	for _, p := range f.pairs {
		if !fn(p.name, p.value) {
			return
		}
	}
}

// Clone returns an independent copy of f.
func (f Fields) Clone() Fields {
	out := Fields{pairs: make([]pair, len(f.pairs))}
	copy(out.pairs, f.pairs)
	return out
}

// Equal reports whether f and o hold the same pairs in the same order.
func (f Fields) Equal(o Fields) bool {
	if len(f.pairs) != len(o.pairs) {
		return false
	}
	for i := range f.pairs {
		if f.pairs[i] != o.pairs[i] {
			return false
		}
	}
	return true
}
