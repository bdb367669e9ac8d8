package tokenizer

import "fmt"

// Pair is an ordered pair of adjacent symbols
type Pair struct {
	Left  string
	Right string
}

// Merged returns the symbol produced by merging the pair
func (p Pair) Merged() string {
	return p.Left + p.Right
}

func (p Pair) String() string {
	return fmt.Sprintf("(%q, %q)", p.Left, p.Right)
}

// PairTable counts adjacent symbol pairs of one sequence. It also remembers
// the order in which pairs were first seen so that selection is
// deterministic.
type PairTable struct {
	counts map[Pair]int
	order  []Pair
	total  int
}

// CountPairs counts every overlapping pair (seq[i], seq[i+1]).
// Sequences shorter than two symbols give an empty table.
func CountPairs(seq []string) *PairTable {
	t := &PairTable{counts: make(map[Pair]int)}
	for i := 0; i < len(seq)-1; i++ {
		p := Pair{seq[i], seq[i+1]}
		if _, ok := t.counts[p]; !ok {
			t.order = append(t.order, p)
		}
		t.counts[p]++
		t.total++
	}
	return t
}

// Len returns the number of distinct pairs
func (t *PairTable) Len() int {
	return len(t.order)
}

// Total returns the sum of all counts, len(seq)-1 for non-empty input
func (t *PairTable) Total() int {
	return t.total
}

// Count returns how often p occurs
func (t *PairTable) Count(p Pair) int {
	return t.counts[p]
}

// Pairs returns the distinct pairs in first-seen order
func (t *PairTable) Pairs() []Pair {
	out := make([]Pair, len(t.order))
	copy(out, t.order)
	return out
}

// Counts returns a copy of the pair → count mapping
func (t *PairTable) Counts() map[Pair]int {
	out := make(map[Pair]int, len(t.counts))
	for p, c := range t.counts {
		out[p] = c
	}
	return out
}

// Best returns the most frequent pair. Ties go to the pair that occurs
// first in the sequence. ok is false for an empty table.
func (t *PairTable) Best() (best Pair, count int, ok bool) {
	for _, p := range t.order {
		if c := t.counts[p]; c > count {
			best, count, ok = p, c, true
		}
	}
	return best, count, ok
}

// MergePair replaces every non-overlapping occurrence of p, scanning left to
// right, with the merged symbol. A matched position consumes both symbols.
// seq is returned as is when p does not occur.
func MergePair(seq []string, p Pair) []string {
	found := false
	for i := 0; i < len(seq)-1; i++ {
		if seq[i] == p.Left && seq[i+1] == p.Right {
			found = true
			break
		}
	}
	if !found {
		return seq
	}

	merged := p.Merged()
	out := make([]string, 0, len(seq)-1)
	i := 0
	for i < len(seq) {
		if i+1 < len(seq) && seq[i] == p.Left && seq[i+1] == p.Right {
			out = append(out, merged)
			i += 2
		} else {
			out = append(out, seq[i])
			i++
		}
	}
	return out
}
