package kvstore

// Order-statistic treap backing the memory store's sorted sets.
//
// Ordering: score DESC, then member ASC (deterministic). In-order traversal
// yields members from best to worst, and subtree sizes give positional rank
// lookups in O(log n), matching ZREVRANK semantics.

type treapNode struct {
	member string
	score  float64
	prio   uint64
	left   *treapNode
	right  *treapNode
	size   int
}

func nodeSize(n *treapNode) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fixSize(n *treapNode) {
	if n != nil {
		n.size = 1 + nodeSize(n.left) + nodeSize(n.right)
	}
}

// treapLess returns true if (aScore, aMember) ranks earlier than
// (bScore, bMember).
func treapLess(aScore float64, aMember string, bScore float64, bMember string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aMember < bMember
}

func rotateRight(y *treapNode) *treapNode {
	x := y.left
	y.left = x.right
	x.right = y
	fixSize(y)
	fixSize(x)
	return x
}

func rotateLeft(x *treapNode) *treapNode {
	y := x.right
	x.right = y.left
	y.left = x
	fixSize(x)
	fixSize(y)
	return y
}

func treapInsert(n *treapNode, member string, score float64, prio uint64) *treapNode {
	if n == nil {
		return &treapNode{member: member, score: score, prio: prio, size: 1}
	}
	if treapLess(score, member, n.score, n.member) {
		n.left = treapInsert(n.left, member, score, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = treapInsert(n.right, member, score, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fixSize(n)
	return n
}

func treapDelete(n *treapNode, member string, score float64) *treapNode {
	if n == nil {
		return nil
	}
	if score == n.score && member == n.member {
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = treapDelete(n.right, member, score)
		} else {
			n = rotateLeft(n)
			n.left = treapDelete(n.left, member, score)
		}
	} else if treapLess(score, member, n.score, n.member) {
		n.left = treapDelete(n.left, member, score)
	} else {
		n.right = treapDelete(n.right, member, score)
	}
	fixSize(n)
	return n
}

// treapRank returns the zero-based rank of (member, score), or -1 when the
// node is absent.
func treapRank(n *treapNode, member string, score float64) int {
	rank := 0
	for n != nil {
		switch {
		case score == n.score && member == n.member:
			return rank + nodeSize(n.left)
		case treapLess(score, member, n.score, n.member):
			n = n.left
		default:
			rank += nodeSize(n.left) + 1
			n = n.right
		}
	}
	return -1
}

// treapRange appends members with zero-based rank in [start, stop] to out,
// in rank order.
func treapRange(n *treapNode, start, stop int, out *[]Member) {
	if n == nil || stop < start {
		return
	}
	leftSize := nodeSize(n.left)
	if start < leftSize {
		treapRange(n.left, start, min64(stop, leftSize-1), out)
	}
	if start <= leftSize && leftSize <= stop {
		*out = append(*out, Member{Member: n.member, Score: n.score})
	}
	if stop > leftSize {
		treapRange(n.right, max64(0, start-leftSize-1), stop-leftSize-1, out)
	}
}

func min64(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int) int {
	if a > b {
		return a
	}
	return b
}
