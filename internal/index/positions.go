package index

import (
	"sort"

	"github.com/google/btree"
)

const positionTreeDegree = 16

// PositionSet is an ordered set of record positions.
type PositionSet struct {
	tree *btree.BTreeG[int]
}

func NewPositionSet() *PositionSet {
	return &PositionSet{tree: btree.NewOrderedG[int](positionTreeDegree)}
}

func (s *PositionSet) Add(pos int) {
	s.tree.ReplaceOrInsert(pos)
}

// Remove deletes pos and reports whether it was present.
func (s *PositionSet) Remove(pos int) bool {
	_, ok := s.tree.Delete(pos)
	return ok
}

func (s *PositionSet) Has(pos int) bool {
	return s.tree.Has(pos)
}

func (s *PositionSet) Len() int {
	return s.tree.Len()
}

// AscendBelow calls fn for each position < limit in ascending order until fn
// returns false.
func (s *PositionSet) AscendBelow(limit int, fn func(pos int) bool) {
	s.tree.AscendLessThan(limit, fn)
}

// Positions returns all positions in ascending order.
func (s *PositionSet) Positions() []int {
	out := make([]int, 0, s.tree.Len())
	s.tree.Ascend(func(pos int) bool {
		out = append(out, pos)
		return true
	})
	return out
}

// Renumber shifts every position down by the number of removed positions
// below it. removed must be sorted ascending and must not intersect the set.
func (s *PositionSet) Renumber(removed []int) {
	if len(removed) == 0 || s.tree.Len() == 0 {
		return
	}
	old := s.Positions()
	s.tree.Clear(true)
	for _, pos := range old {
		s.tree.ReplaceOrInsert(Shift(pos, removed))
	}
}

func (s *PositionSet) equal(other *PositionSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	same := true
	s.tree.Ascend(func(pos int) bool {
		same = other.Has(pos)
		return same
	})
	return same
}

// Shift maps a surviving position to its position after the removal of
// removed (sorted ascending): p - |{r in removed : r < p}|.
func Shift(pos int, removed []int) int {
	return pos - sort.SearchInts(removed, pos)
}
