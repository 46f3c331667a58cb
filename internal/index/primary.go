package index

import (
	"log/slog"

	"github.com/leengari/recordstore/internal/domain/data"
)

// PrimaryKeyIndex maps primary-key values to the position of their record.
type PrimaryKeyIndex struct {
	column string
	data   map[data.Value]int
}

func NewPrimaryKeyIndex(column string) *PrimaryKeyIndex {
	return &PrimaryKeyIndex{
		column: column,
		data:   make(map[data.Value]int),
	}
}

// Column returns the name of the indexed key column.
func (idx *PrimaryKeyIndex) Column() string {
	return idx.column
}

func (idx *PrimaryKeyIndex) Lookup(key data.Value) (int, bool) {
	pos, ok := idx.data[key]
	return pos, ok
}

func (idx *PrimaryKeyIndex) Insert(key data.Value, pos int) {
	idx.data[key] = pos
}

func (idx *PrimaryKeyIndex) Remove(key data.Value) {
	delete(idx.data, key)
}

func (idx *PrimaryKeyIndex) Len() int {
	return len(idx.data)
}

func (idx *PrimaryKeyIndex) Clear() {
	idx.data = make(map[data.Value]int)
}

// Rebuild re-derives the whole index from records. Records without a key
// value are skipped; on duplicate keys the later position wins.
func (idx *PrimaryKeyIndex) Rebuild(records []data.Record) {
	idx.Clear()
	for pos, rec := range records {
		key, ok := rec[idx.column]
		if !ok {
			continue
		}
		if prev, dup := idx.data[key]; dup {
			slog.Warn("duplicate primary key while rebuilding index",
				slog.String("column", idx.column),
				slog.Any("value", key.Interface()),
				slog.Int("previous_position", prev),
				slog.Int("position", pos))
		}
		idx.data[key] = pos
	}
}

// Equal reports whether both indexes hold exactly the same mappings.
func (idx *PrimaryKeyIndex) Equal(other *PrimaryKeyIndex) bool {
	if idx == nil || other == nil {
		return idx == nil && other == nil
	}
	if idx.column != other.column || len(idx.data) != len(other.data) {
		return false
	}
	for k, pos := range idx.data {
		if p, ok := other.data[k]; !ok || p != pos {
			return false
		}
	}
	return true
}
