package catalog

import (
	"sort"

	"github.com/osa030/ouchibox/internal/domain/yomi"
)

// Candidate is one (entity id, priority) pair held by the phonetic index.
// Lower priority means a more literal key (0 = display name itself).
type Candidate struct {
	ID       string
	Priority int
}

// KeyIndex maps phonetic keys to their best candidate for one entity type.
type KeyIndex struct {
	keys map[string]Candidate
}

// NewKeyIndex creates an empty index.
func NewKeyIndex() *KeyIndex {
	return &KeyIndex{keys: make(map[string]Candidate)}
}

// Put inserts a key unless it is already present (first writer wins).
func (x *KeyIndex) Put(key, id string, priority int) {
	if key == "" {
		return
	}
	if _, ok := x.keys[key]; ok {
		return
	}
	x.keys[key] = Candidate{ID: id, Priority: priority}
}

// PutEntity inserts the four standard keys for an entity: display name,
// reading, and their normalized forms, at priorities 0 through 3.
func (x *KeyIndex) PutEntity(id, name, reading string) {
	if reading == "" {
		reading = name
	}
	name = FoldKey(name)
	reading = FoldKey(reading)
	for pri, key := range []string{name, reading, yomi.Normalize(name), yomi.Normalize(reading)} {
		x.Put(key, id, pri)
	}
}

// Lookup returns the candidate stored under a key.
func (x *KeyIndex) Lookup(key string) (Candidate, bool) {
	c, ok := x.keys[key]
	return c, ok
}

// Len returns the number of distinct keys.
func (x *KeyIndex) Len() int {
	return len(x.keys)
}

// Walk visits every key in ascending key order. Deterministic iteration
// keeps the substring fallback and similarity ranking stable.
func (x *KeyIndex) Walk(fn func(key string, c Candidate) bool) {
	keys := make([]string, 0, len(x.keys))
	for k := range x.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !fn(k, x.keys[k]) {
			return
		}
	}
}
