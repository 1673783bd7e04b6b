// Package loser merges ascending sequences with a tournament (loser) tree,
// after the design popularized by Bryan Boreham's go-loser
// (https://github.com/bboreham/go-loser). Each merged element costs
// O(log n) comparisons for n input sequences.
package loser

import "iter"

// Merge returns an iterator over the elements of the given ascending
// sequences, merged into a single ascending sequence under less. maxVal must
// compare greater than or equal to every element of every sequence; it marks
// exhausted inputs.
func Merge[E any](seqs []iter.Seq[E], maxVal E, less func(a, b E) bool) iter.Seq[E] {
	return func(yield func(E) bool) {
		if len(seqs) == 0 {
			return
		}

		t := tree[E]{
			maxVal: maxVal,
			less:   less,
			// Leaves live at positions n..2n-1, internal nodes at
			// 1..n-1, the current winner at 0.
			nodes: make([]node[E], len(seqs)*2),
		}

		for i, seq := range seqs {
			next, stop := iter.Pull(seq)
			defer stop()
			t.nodes[i+len(seqs)].next = next
			t.advance(i + len(seqs))
		}

		t.crown(t.play(1))

		for t.nodes[t.nodes[0].index].index != -1 && yield(t.nodes[0].value) {
			t.advance(t.nodes[0].index)
			t.replay(t.nodes[0].index)
		}
	}
}

type node[E any] struct {
	// Losing sequence at internal nodes, winning sequence at node 0,
	// own position at leaves. -1 marks an exhausted leaf.
	index int
	value E
	next  func() (E, bool)
}

type tree[E any] struct {
	maxVal E
	less   func(a, b E) bool
	nodes  []node[E]
}

// advance pulls the next element into the leaf at pos, or marks it
// exhausted.
func (t *tree[E]) advance(pos int) {
	n := &t.nodes[pos]
	if v, ok := n.next(); ok {
		n.value = v
		return
	}
	n.value = t.maxVal
	n.index = -1
}

// play runs the tournament rooted at pos, storing losers on the way up, and
// returns the position of the winning leaf.
func (t *tree[E]) play(pos int) int {
	if pos >= len(t.nodes)/2 {
		return pos
	}

	left := t.play(pos * 2)
	right := t.play(pos*2 + 1)

	winner, loser := right, left
	if t.less(t.nodes[left].value, t.nodes[right].value) {
		winner, loser = left, right
	}
	t.nodes[pos].index = loser
	t.nodes[pos].value = t.nodes[loser].value
	return winner
}

// replay re-runs the games on the path from the leaf at pos to the root,
// after the leaf advanced to a new value.
func (t *tree[E]) replay(pos int) {
	value := t.nodes[pos].value
	for parent := pos / 2; parent != 0; parent /= 2 {
		n := &t.nodes[parent]
		if t.less(n.value, value) {
			// The stored loser beats the incoming value, so they
			// swap roles and the old loser plays on upward.
			n.index, pos = pos, n.index
			n.value, value = value, n.value
		}
	}
	t.nodes[0].index = pos
	t.nodes[0].value = value
}

func (t *tree[E]) crown(pos int) {
	t.nodes[0].index = pos
	t.nodes[0].value = t.nodes[pos].value
}
