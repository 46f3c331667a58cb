package index

import (
	"strings"
	"unicode/utf8"

	"github.com/leengari/recordstore/internal/domain/data"
	"github.com/leengari/recordstore/internal/domain/schema"
)

// MinTokenLength is the exclusive lower bound on indexed token length:
// tokens of 1 or 2 characters are never indexed.
const MinTokenLength = 2

// Tokenize lowercases s, splits it on whitespace runs and keeps the distinct
// tokens longer than MinTokenLength characters, in first-seen order.
func Tokenize(s string) []string {
	words := strings.Fields(strings.ToLower(s))
	tokens := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) <= MinTokenLength {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		tokens = append(tokens, w)
	}
	return tokens
}

// TextTokenIndex is an inverted index over Text values:
// field → token → positions.
type TextTokenIndex struct {
	data map[string]map[string]*PositionSet
}

func NewTextTokenIndex() *TextTokenIndex {
	return &TextTokenIndex{data: make(map[string]map[string]*PositionSet)}
}

func (idx *TextTokenIndex) IndexRecord(rec data.Record, pos int, columns []schema.Column) {
	for _, col := range columns {
		text, ok := rec[col.Name].AsText()
		if !ok {
			continue
		}
		for _, tok := range Tokenize(text) {
			tokens, ok := idx.data[col.Name]
			if !ok {
				tokens = make(map[string]*PositionSet)
				idx.data[col.Name] = tokens
			}
			set, ok := tokens[tok]
			if !ok {
				set = NewPositionSet()
				tokens[tok] = set
			}
			set.Add(pos)
		}
	}
}

func (idx *TextTokenIndex) UnindexRecord(rec data.Record, pos int, columns []schema.Column) {
	for _, col := range columns {
		text, ok := rec[col.Name].AsText()
		if !ok {
			continue
		}
		tokens, ok := idx.data[col.Name]
		if !ok {
			continue
		}
		for _, tok := range Tokenize(text) {
			set, ok := tokens[tok]
			if !ok {
				continue
			}
			set.Remove(pos)
			if set.Len() == 0 {
				delete(tokens, tok)
			}
		}
		if len(tokens) == 0 {
			delete(idx.data, col.Name)
		}
	}
}

// Match returns, ascending and restricted to [0, limit), the positions of
// every token of field that contains needle (lowercased, not tokenized).
func (idx *TextTokenIndex) Match(field, needle string, limit int) []int {
	tokens, ok := idx.data[field]
	if !ok {
		return nil
	}
	needle = strings.ToLower(needle)

	result := NewPositionSet()
	for tok, set := range tokens {
		if !strings.Contains(tok, needle) {
			continue
		}
		set.AscendBelow(limit, func(pos int) bool {
			if pos >= 0 {
				result.Add(pos)
			}
			return true
		})
	}
	return result.Positions()
}

// BucketLen returns the number of positions recorded for field/token.
func (idx *TextTokenIndex) BucketLen(field, token string) int {
	if set, ok := idx.data[field][token]; ok {
		return set.Len()
	}
	return 0
}

// HasToken reports whether token is indexed for field.
func (idx *TextTokenIndex) HasToken(field, token string) bool {
	_, ok := idx.data[field][token]
	return ok
}

func (idx *TextTokenIndex) Renumber(removed []int) {
	for _, tokens := range idx.data {
		for _, set := range tokens {
			set.Renumber(removed)
		}
	}
}

func (idx *TextTokenIndex) Clear() {
	idx.data = make(map[string]map[string]*PositionSet)
}

func (idx *TextTokenIndex) Equal(other *TextTokenIndex) bool {
	if len(idx.data) != len(other.data) {
		return false
	}
	for field, tokens := range idx.data {
		otherTokens, ok := other.data[field]
		if !ok || len(tokens) != len(otherTokens) {
			return false
		}
		for tok, set := range tokens {
			otherSet, ok := otherTokens[tok]
			if !ok || !set.equal(otherSet) {
				return false
			}
		}
	}
	return true
}
