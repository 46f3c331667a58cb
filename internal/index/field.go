package index

import (
	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/domain/schema"
)

// FieldValueIndex maps, per column, each exact value to the positions of the
// records holding it. Every column is indexed, not only the primary key.
type FieldValueIndex struct {
	data map[string]map[data.Value]*PositionSet // field → value → positions
}

func NewFieldValueIndex() *FieldValueIndex {
	return &FieldValueIndex{data: make(map[string]map[data.Value]*PositionSet)}
}

// IndexRecord adds pos under every present value of rec.
func (idx *FieldValueIndex) IndexRecord(rec data.Record, pos int, columns []schema.Column) {
	for _, col := range columns {
		val, exists := rec[col.Name]
		if !exists || val.IsZero() {
			continue
		}

		values, ok := idx.data[col.Name]
		if !ok {
			values = make(map[data.Value]*PositionSet)
			idx.data[col.Name] = values
		}
		set, ok := values[val]
		if !ok {
			set = NewPositionSet()
			values[val] = set
		}
		set.Add(pos)
	}
}

// UnindexRecord removes pos from every value of rec, pruning buckets (and
// fields) that become empty.
func (idx *FieldValueIndex) UnindexRecord(rec data.Record, pos int, columns []schema.Column) {
	for _, col := range columns {
		val, exists := rec[col.Name]
		if !exists {
			continue
		}

		values, ok := idx.data[col.Name]
		if !ok {
			continue
		}
		set, ok := values[val]
		if !ok {
			continue
		}

		set.Remove(pos)
		if set.Len() == 0 {
			delete(values, val) // Clean up empty entries
		}
		if len(values) == 0 {
			delete(idx.data, col.Name)
		}
	}
}

// Lookup returns the positions holding exactly val in field, ascending and
// restricted to [0, limit).
func (idx *FieldValueIndex) Lookup(field string, val data.Value, limit int) []int {
	set, ok := idx.data[field][val]
	if !ok {
		return nil
	}
	var out []int
	set.AscendBelow(limit, func(pos int) bool {
		if pos >= 0 {
			out = append(out, pos)
		}
		return true
	})
	return out
}

// BucketLen returns the number of positions recorded for field=val.
func (idx *FieldValueIndex) BucketLen(field string, val data.Value) int {
	if set, ok := idx.data[field][val]; ok {
		return set.Len()
	}
	return 0
}

// Cardinality returns the number of distinct values indexed for field.
func (idx *FieldValueIndex) Cardinality(field string) int {
	return len(idx.data[field])
}

// Renumber applies the post-deletion position shift to every entry.
// removed must be sorted ascending.
func (idx *FieldValueIndex) Renumber(removed []int) {
	for _, values := range idx.data {
		for _, set := range values {
			set.Renumber(removed)
		}
	}
}

func (idx *FieldValueIndex) Clear() {
	idx.data = make(map[string]map[data.Value]*PositionSet)
}

func (idx *FieldValueIndex) Equal(other *FieldValueIndex) bool {
	if len(idx.data) != len(other.data) {
		return false
	}
	for field, values := range idx.data {
		otherValues, ok := other.data[field]
		if !ok || len(values) != len(otherValues) {
			return false
		}
		for val, set := range values {
			otherSet, ok := otherValues[val]
			if !ok || !set.equal(otherSet) {
				return false
			}
		}
	}
	return true
}
