// Package combin provides counting functions and restartable enumerators
// over index sets, used to lay out wager combinations.
package combin

// Factorial returns n! for n >= 0, and 0 for negative n.
func Factorial(n int) int64 {
	if n < 0 {
		return 0
	}
	result := int64(1)
	for i := 2; i <= n; i++ {
		result *= int64(i)
	}
	return result
}

// Permutations returns P(n, r), the number of ordered selections of r
// items from n. Zero when the arguments are out of range.
func Permutations(n, r int) int64 {
	if n < 0 || r < 0 || r > n {
		return 0
	}
	result := int64(1)
	for i := 0; i < r; i++ {
		result *= int64(n - i)
	}
	return result
}

// Combinations returns C(n, r), the number of unordered selections of r
// items from n. Zero when the arguments are out of range.
func Combinations(n, r int) int64 {
	if n < 0 || r < 0 || r > n {
		return 0
	}
	if r > n-r {
		r = n - r
	}
	result := int64(1)
	for i := 0; i < r; i++ {
		result = result * int64(n-i) / int64(i+1)
	}
	return result
}

// CombinationIterator lazily yields k-subsets of [0..n) in lexicographic
// order. Restartable via Reset.
type CombinationIterator struct {
	n, k    int
	cursor  []int
	started bool
	done    bool
}

// NewCombinationIterator creates an iterator over C(n, k) index subsets.
func NewCombinationIterator(n, k int) *CombinationIterator {
	it := &CombinationIterator{n: n, k: k}
	it.Reset()
	return it
}

// Reset rewinds the iterator to the first combination.
func (it *CombinationIterator) Reset() {
	it.started = false
	it.done = it.k < 0 || it.k > it.n
	it.cursor = make([]int, it.k)
	for i := range it.cursor {
		it.cursor[i] = i
	}
}

// Next returns the next combination and true, or nil and false when the
// sequence is exhausted. The returned slice is a copy.
func (it *CombinationIterator) Next() ([]int, bool) {
	if it.done {
		return nil, false
	}
	if !it.started {
		it.started = true
		return append([]int(nil), it.cursor...), true
	}
	// Advance the rightmost index that can still move.
	i := it.k - 1
	for i >= 0 && it.cursor[i] == it.n-it.k+i {
		i--
	}
	if i < 0 {
		it.done = true
		return nil, false
	}
	it.cursor[i]++
	for j := i + 1; j < it.k; j++ {
		it.cursor[j] = it.cursor[j-1] + 1
	}
	return append([]int(nil), it.cursor...), true
}

// PermutationIterator lazily yields ordered k-selections of [0..n) in
// lexicographic order. Restartable via Reset.
type PermutationIterator struct {
	n, k   int
	combos *CombinationIterator
	orders [][]int
	subset []int
	pos    int
}

// NewPermutationIterator creates an iterator over P(n, k) index sequences.
func NewPermutationIterator(n, k int) *PermutationIterator {
	it := &PermutationIterator{n: n, k: k}
	it.Reset()
	return it
}

// Reset rewinds the iterator to the first permutation.
func (it *PermutationIterator) Reset() {
	it.combos = NewCombinationIterator(it.n, it.k)
	it.subset = nil
	it.orders = nil
	it.pos = 0
}

// Next returns the next permutation and true, or nil and false when done.
func (it *PermutationIterator) Next() ([]int, bool) {
	for it.subset == nil || it.pos >= len(it.orders) {
		subset, ok := it.combos.Next()
		if !ok {
			return nil, false
		}
		it.subset = subset
		it.orders = Orderings(subset)
		it.pos = 0
	}
	order := it.orders[it.pos]
	it.pos++
	return append([]int(nil), order...), true
}

// EnumerateCombinations eagerly materializes every k-subset of [0..n).
func EnumerateCombinations(n, k int) [][]int {
	it := NewCombinationIterator(n, k)
	var result [][]int
	for combo, ok := it.Next(); ok; combo, ok = it.Next() {
		result = append(result, combo)
	}
	return result
}

// EnumeratePermutations eagerly materializes every ordered k-selection
// of [0..n).
func EnumeratePermutations(n, k int) [][]int {
	it := NewPermutationIterator(n, k)
	var result [][]int
	for perm, ok := it.Next(); ok; perm, ok = it.Next() {
		result = append(result, perm)
	}
	return result
}

// Orderings returns every ordering of the given index slice, in a stable
// lexicographic-by-position order. The input is not modified.
func Orderings(items []int) [][]int {
	if len(items) == 0 {
		return [][]int{{}}
	}
	var result [][]int
	for i, item := range items {
		rest := make([]int, 0, len(items)-1)
		rest = append(rest, items[:i]...)
		rest = append(rest, items[i+1:]...)
		for _, tail := range Orderings(rest) {
			order := append([]int{item}, tail...)
			result = append(result, order)
		}
	}
	return result
}
