// Package resolver turns noisy name or id hints into catalog entity ids.
package resolver

import (
	"sort"
	"strings"

	"github.com/osa030/ouchibox/internal/domain/catalog"
	"github.com/osa030/ouchibox/internal/domain/yomi"
)

// Tier identifies one level of the matching cascade. A tier is only
// consulted when every earlier tier yielded nothing, and callers can cap
// the cascade ("search no deeper than tier T").
type Tier int

const (
	TierExact      Tier = iota // Name found verbatim as a catalog key
	TierNormalized             // Normalized key match
	TierApprox                 // N-gram Jaccard similarity over phonetic keys
	TierSubstring              // Substring scan over all keys
)

// approxThreshold is the minimum Jaccard similarity for an approximate hit.
const approxThreshold = 0.3

// normalizedPenalty makes a normalized substring hit strictly worse than a
// literal one of equal stored priority.
const normalizedPenalty = 10

// String returns the string representation of the tier.
func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierNormalized:
		return "normalized"
	case TierApprox:
		return "approx"
	case TierSubstring:
		return "substring"
	default:
		return "unknown"
	}
}

// query carries the folded and normalized forms of a name hint.
type query struct {
	name string
	norm string
}

// matchFunc is one cascade tier: it returns candidate ids ranked best
// first, or nil when the tier has no opinion.
type matchFunc func(idx *catalog.KeyIndex, q query) []string

// Resolver resolves names and ids against an immutable catalog handle.
type Resolver struct {
	cat   *catalog.Catalog
	tiers []matchFunc
}

// New creates a resolver over the given catalog.
func New(cat *catalog.Catalog) *Resolver {
	r := &Resolver{cat: cat}
	// Tried in order, first decisive tier wins (same shape as a filter
	// chain: ordered strategies with a common signature).
	r.tiers = []matchFunc{
		exactMatch,
		normalizedMatch,
		approxMatch,
		substringMatch,
	}
	return r
}

// ResolveID performs an exact id lookup, bypassing the name cascade.
func (r *Resolver) ResolveID(t catalog.EntityType, id string) (*catalog.Entity, bool) {
	return r.cat.Entity(t, id)
}

// Resolve returns the best-matching entity id for a name, searching no
// deeper than maxTier.
func (r *Resolver) Resolve(t catalog.EntityType, name string, maxTier Tier) (string, bool) {
	ids := r.run(t, name, maxTier, true)
	if len(ids) == 0 {
		return "", false
	}
	return ids[0], true
}

// ResolveAll returns all candidate ids ranked best first, accumulated
// across tiers up to maxTier.
func (r *Resolver) ResolveAll(t catalog.EntityType, name string, maxTier Tier) []string {
	return r.run(t, name, maxTier, false)
}

func (r *Resolver) run(t catalog.EntityType, name string, maxTier Tier, firstOnly bool) []string {
	if name == "" {
		return nil
	}
	idx := r.cat.Index(t)
	if idx == nil {
		return nil
	}
	folded := catalog.FoldKey(name)
	q := query{name: folded, norm: yomi.Normalize(folded)}

	var out []string
	seen := make(map[string]struct{})
	for tier, fn := range r.tiers {
		if Tier(tier) > maxTier {
			break
		}
		ids := fn(idx, q)
		if firstOnly && len(ids) > 0 {
			return ids[:1]
		}
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// exactMatch looks the name up verbatim as a key.
func exactMatch(idx *catalog.KeyIndex, q query) []string {
	if c, ok := idx.Lookup(q.name); ok {
		return []string{c.ID}
	}
	return nil
}

// normalizedMatch looks the normalized name up as a key.
func normalizedMatch(idx *catalog.KeyIndex, q query) []string {
	if c, ok := idx.Lookup(q.norm); ok {
		return []string{c.ID}
	}
	return nil
}

// approxMatch ranks keys by n-gram Jaccard similarity against the
// normalized name. Ties break by ascending priority, then key order.
func approxMatch(idx *catalog.KeyIndex, q query) []string {
	qgrams := ngramSet(q.norm)
	if len(qgrams) == 0 {
		return nil
	}
	type hit struct {
		id       string
		sim      float64
		priority int
	}
	var hits []hit
	idx.Walk(func(key string, c catalog.Candidate) bool {
		sim := jaccard(qgrams, ngramSet(key))
		if sim >= approxThreshold {
			hits = append(hits, hit{id: c.ID, sim: sim, priority: c.Priority})
		}
		return true
	})
	if len(hits) == 0 {
		return nil
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].sim != hits[j].sim {
			return hits[i].sim > hits[j].sim
		}
		return hits[i].priority < hits[j].priority
	})
	ids := make([]string, 0, len(hits))
	seen := make(map[string]struct{}, len(hits))
	for _, h := range hits {
		if _, ok := seen[h.id]; ok {
			continue
		}
		seen[h.id] = struct{}{}
		ids = append(ids, h.id)
	}
	return ids
}

// substringMatch scans every key of the type. A key is a candidate when it
// contains the name (weight = stored priority) or the normalized name
// (weight = priority + penalty). Candidates are ranked by ascending weight;
// a weight of exactly 0 short-circuits the scan.
func substringMatch(idx *catalog.KeyIndex, q query) []string {
	type hit struct {
		id     string
		weight int
	}
	var hits []hit
	zero := ""
	idx.Walk(func(key string, c catalog.Candidate) bool {
		if strings.Contains(key, q.name) {
			hits = append(hits, hit{id: c.ID, weight: c.Priority})
			if c.Priority == 0 {
				zero = c.ID
				return false
			}
		}
		if q.norm != "" && strings.Contains(key, q.norm) {
			hits = append(hits, hit{id: c.ID, weight: c.Priority + normalizedPenalty})
		}
		return true
	})
	if zero != "" {
		return []string{zero}
	}
	if len(hits) == 0 {
		return nil
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].weight < hits[j].weight
	})
	ids := make([]string, 0, len(hits))
	seen := make(map[string]struct{}, len(hits))
	for _, h := range hits {
		if _, ok := seen[h.id]; ok {
			continue
		}
		seen[h.id] = struct{}{}
		ids = append(ids, h.id)
	}
	return ids
}
