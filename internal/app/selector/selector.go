// Package selector picks the best playback interpretation from slot hints.
package selector

import (
	"errors"
	"math/rand"
	"sort"
	"time"

	"github.com/osa030/ouchibox/internal/app/resolver"
	"github.com/osa030/ouchibox/internal/domain/catalog"
	"github.com/osa030/ouchibox/internal/domain/queue"
)

// Errors
var (
	ErrNotFound       = errors.New("no catalog match for any hint combination")
	ErrEmptyExpansion = errors.New("interpretation expands to an empty track list")
)

// Reliability scores for interpretation ranking. Higher wins.
const (
	ReliabilityArtistScopedTitle = 10 // Artist + title hints jointly resolve
	ReliabilityDirectID          = 5  // Supplied id resolves for its own slot
	ReliabilityKeyMatch          = 4  // Name resolves via exact/normalized key
	ReliabilitySlotMismatchID    = 3  // Id resolves as a different entity type
	ReliabilityIntendedSlotName  = 2  // Full-cascade name hit in the intended slot
	ReliabilityCrossSlotName     = 1  // Full-cascade name hit in another slot
)

// Hint is one candidate resolution for a slot. A speech grammar may offer
// several equally plausible hints per slot.
type Hint struct {
	ID   string
	Name string
}

// Interpretation is a resolved playback intent.
type Interpretation struct {
	Type        catalog.EntityType
	ID          string
	Reliability int
}

// Selector enumerates hint combinations and expands the winner into a queue.
type Selector struct {
	cat *catalog.Catalog
	res *resolver.Resolver
	rng *rand.Rand
}

// New creates a selector. A nil rng falls back to a time-seeded source.
func New(cat *catalog.Catalog, res *resolver.Resolver, rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{cat: cat, res: res, rng: rng}
}

// Select enumerates the outer product of the hint lists and returns the
// interpretation with the highest reliability. Ties keep the first
// combination encountered. An empty hint list contributes a single empty
// placeholder so the product is never empty.
func (s *Selector) Select(artists, albums, titles []Hint) (*Interpretation, error) {
	artists = orPlaceholder(artists)
	albums = orPlaceholder(albums)
	titles = orPlaceholder(titles)

	var best *Interpretation
	for _, a := range artists {
		for _, al := range albums {
			for _, t := range titles {
				cand := s.interpret(a, al, t)
				if cand == nil {
					continue
				}
				if best == nil || cand.Reliability > best.Reliability {
					best = cand
					if best.Reliability == ReliabilityArtistScopedTitle {
						return best, nil
					}
				}
			}
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	return best, nil
}

func orPlaceholder(hints []Hint) []Hint {
	if len(hints) == 0 {
		return []Hint{{}}
	}
	return hints
}

// interpret scores a single (artist, album, title) hint combination.
func (s *Selector) interpret(a, al, t Hint) *Interpretation {
	// Artist-scoped title lookup beats everything.
	if t.Name != "" && (a.ID != "" || a.Name != "") {
		if id, ok := s.scopedTitle(a, t.Name); ok {
			return &Interpretation{Type: catalog.TypeTitle, ID: id, Reliability: ReliabilityArtistScopedTitle}
		}
	}

	// A supplied id that resolves for its own slot.
	for _, c := range []struct {
		typ catalog.EntityType
		id  string
	}{
		{catalog.TypeTitle, t.ID},
		{catalog.TypeAlbum, al.ID},
		{catalog.TypeArtist, a.ID},
	} {
		if c.id == "" {
			continue
		}
		if _, ok := s.res.ResolveID(c.typ, c.id); ok {
			return &Interpretation{Type: c.typ, ID: c.id, Reliability: ReliabilityDirectID}
		}
	}

	// A supplied name that hits an exact or normalized key for its slot.
	for _, c := range []struct {
		typ  catalog.EntityType
		name string
	}{
		{catalog.TypeTitle, t.Name},
		{catalog.TypeAlbum, al.Name},
		{catalog.TypeArtist, a.Name},
	} {
		if c.name == "" {
			continue
		}
		if id, ok := s.res.Resolve(c.typ, c.name, resolver.TierNormalized); ok {
			return &Interpretation{Type: c.typ, ID: id, Reliability: ReliabilityKeyMatch}
		}
	}

	// An id that happens to belong to a different entity type.
	ids := []string{a.ID, al.ID, t.ID}
	for i, id := range ids {
		if id == "" {
			continue
		}
		for j, typ := range catalog.EntityTypes {
			if i == j {
				continue
			}
			if _, ok := s.res.ResolveID(typ, id); ok {
				return &Interpretation{Type: typ, ID: id, Reliability: ReliabilitySlotMismatchID}
			}
		}
	}

	// Full-cascade name match against any entity type.
	names := []string{a.Name, al.Name, t.Name}
	for i, name := range names {
		if name == "" {
			continue
		}
		for j, typ := range catalog.EntityTypes {
			if id, ok := s.res.Resolve(typ, name, resolver.TierSubstring); ok {
				rel := ReliabilityCrossSlotName
				if i == j {
					rel = ReliabilityIntendedSlotName
				}
				return &Interpretation{Type: typ, ID: id, Reliability: rel}
			}
		}
	}
	return nil
}

// scopedTitle intersects the artist's title set with the title-name
// resolution result. The intersection is stabilized by ascending title id
// so ties resolve deterministically.
func (s *Selector) scopedTitle(a Hint, titleName string) (string, bool) {
	var artist *catalog.Artist
	if a.ID != "" {
		if rec, ok := s.cat.Artist(a.ID); ok {
			artist = rec
		}
	}
	if artist == nil && a.Name != "" {
		if id, ok := s.res.Resolve(catalog.TypeArtist, a.Name, resolver.TierSubstring); ok {
			artist, _ = s.cat.Artist(id)
		}
	}
	if artist == nil {
		return "", false
	}

	owned := make(map[string]struct{}, len(artist.TitleIDs))
	for _, id := range artist.TitleIDs {
		owned[id] = struct{}{}
	}
	var matched []string
	for _, id := range s.res.ResolveAll(catalog.TypeTitle, titleName, resolver.TierSubstring) {
		if _, ok := owned[id]; ok {
			matched = append(matched, id)
		}
	}
	if len(matched) == 0 {
		return "", false
	}
	sort.Strings(matched)
	return matched[0], true
}

// Expand turns an interpretation into a fresh play queue.
// Artist queues start pre-shuffled and cannot be re-shuffled; album queues
// keep canonical disc/track order and are shuffle-eligible; a title is a
// singleton queue.
func (s *Selector) Expand(in *Interpretation) (*queue.PlayQueue, error) {
	var canonical []string
	var canShuffle, shuffled bool

	switch in.Type {
	case catalog.TypeArtist:
		artist, ok := s.cat.Artist(in.ID)
		if !ok {
			return nil, ErrEmptyExpansion
		}
		for _, id := range artist.TitleIDs {
			if t, ok := s.cat.Title(id); ok && !t.Karaoke {
				canonical = append(canonical, id)
			}
		}
		shuffled = true
	case catalog.TypeAlbum:
		album, ok := s.cat.Album(in.ID)
		if !ok {
			return nil, ErrEmptyExpansion
		}
		canonical = append(canonical, album.TitleIDs...)
		canShuffle = true
	case catalog.TypeTitle:
		if _, ok := s.cat.Title(in.ID); ok {
			canonical = []string{in.ID}
		}
	}
	if len(canonical) == 0 {
		return nil, ErrEmptyExpansion
	}

	tracks := make([]string, len(canonical))
	copy(tracks, canonical)
	if shuffled {
		s.rng.Shuffle(len(tracks), func(i, j int) {
			tracks[i], tracks[j] = tracks[j], tracks[i]
		})
	}

	return &queue.PlayQueue{
		Source: queue.Source{
			Type:        in.Type,
			ID:          in.ID,
			Reliability: in.Reliability,
		},
		TrackIDs:       tracks,
		CanonicalOrder: canonical,
		Index:          0,
		State:          queue.StateRequested,
		CanShuffle:     canShuffle,
		IsShuffled:     shuffled,
	}, nil
}
