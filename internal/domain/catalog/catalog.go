package catalog

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/unicode/norm"
)

// KeyEntry is one phonetic key record from the catalog file.
type KeyEntry struct {
	Key      string `json:"key"`
	ID       string `json:"id"`
	Priority int    `json:"priority"`
}

// file is the on-disk catalog layout produced by the ingestion pipeline.
type file struct {
	Music struct {
		Artist map[string]*Artist `json:"artist"`
		Album  map[string]*Album  `json:"album"`
		Title  map[string]*Title  `json:"title"`
	} `json:"music"`
	Keys map[EntityType][]KeyEntry `json:"keys"`
}

// Catalog is the process-lifetime read-only store of catalog entities.
// It must never be mutated after Load; it is safe to share across turns.
type Catalog struct {
	artists map[string]*Artist
	albums  map[string]*Album
	titles  map[string]*Title
	index   map[EntityType]*KeyIndex
}

// Load reads and validates a catalog file, then builds the phonetic index.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read catalog file")
	}
	return Parse(data)
}

// Parse builds a Catalog from raw catalog-file JSON.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "failed to parse catalog file")
	}

	c := &Catalog{
		artists: f.Music.Artist,
		albums:  f.Music.Album,
		titles:  f.Music.Title,
		index:   make(map[EntityType]*KeyIndex),
	}
	if c.artists == nil {
		c.artists = map[string]*Artist{}
	}
	if c.albums == nil {
		c.albums = map[string]*Album{}
	}
	if c.titles == nil {
		c.titles = map[string]*Title{}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	c.buildIndex(f.Keys)
	return c, nil
}

// validate checks referential integrity. Dangling references are an
// ingestion-time error, never tolerated at runtime.
func (c *Catalog) validate() error {
	for id, a := range c.artists {
		for _, albumID := range a.AlbumIDs {
			if _, ok := c.albums[albumID]; !ok {
				return errors.Newf("artist %s references unknown album %s", id, albumID)
			}
		}
		for _, titleID := range a.TitleIDs {
			if _, ok := c.titles[titleID]; !ok {
				return errors.Newf("artist %s references unknown title %s", id, titleID)
			}
		}
	}
	for id, al := range c.albums {
		for _, titleID := range al.TitleIDs {
			if _, ok := c.titles[titleID]; !ok {
				return errors.Newf("album %s references unknown title %s", id, titleID)
			}
		}
	}
	for id, t := range c.titles {
		if _, ok := c.artists[t.ArtistID]; !ok {
			return errors.Newf("title %s references unknown artist %s", id, t.ArtistID)
		}
		if t.AlbumID != "" {
			if _, ok := c.albums[t.AlbumID]; !ok {
				return errors.Newf("title %s references unknown album %s", id, t.AlbumID)
			}
		}
	}
	return nil
}

// FoldKey applies NFKC folding so half-width/full-width spelling variants
// share a single key.
func FoldKey(s string) string {
	return norm.NFKC.String(s)
}

// Artist returns the artist record for an id.
func (c *Catalog) Artist(id string) (*Artist, bool) {
	a, ok := c.artists[id]
	return a, ok
}

// Album returns the album record for an id.
func (c *Catalog) Album(id string) (*Album, bool) {
	a, ok := c.albums[id]
	return a, ok
}

// Title returns the title record for an id.
func (c *Catalog) Title(id string) (*Title, bool) {
	t, ok := c.titles[id]
	return t, ok
}

// Entity returns a type-independent view of the record for an id.
func (c *Catalog) Entity(t EntityType, id string) (*Entity, bool) {
	switch t {
	case TypeArtist:
		if a, ok := c.artists[id]; ok {
			return &Entity{Type: t, ID: id, Name: a.Name, Yomi: a.Yomi}, true
		}
	case TypeAlbum:
		if a, ok := c.albums[id]; ok {
			return &Entity{Type: t, ID: id, Name: a.Name, Yomi: a.Yomi}, true
		}
	case TypeTitle:
		if tt, ok := c.titles[id]; ok {
			return &Entity{Type: t, ID: id, Name: tt.Name, Yomi: tt.Yomi}, true
		}
	}
	return nil, false
}

// Index returns the phonetic key index for an entity type.
func (c *Catalog) Index(t EntityType) *KeyIndex {
	return c.index[t]
}

// sortedIDs returns map keys in ascending order for deterministic indexing.
func sortedIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// buildIndex constructs one KeyIndex per entity type. File-provided key
// lists are inserted first (in list order), then the four standard keys per
// entity: display name, reading, and their normalized forms, with the
// priority equal to the position in that sequence. First writer wins per
// key, so the lowest priority for a given key is retained.
func (c *Catalog) buildIndex(fileKeys map[EntityType][]KeyEntry) {
	for _, t := range EntityTypes {
		idx := NewKeyIndex()
		for _, e := range fileKeys[t] {
			idx.Put(FoldKey(e.Key), e.ID, e.Priority)
		}
		switch t {
		case TypeArtist:
			for _, id := range sortedIDs(c.artists) {
				idx.PutEntity(id, c.artists[id].Name, c.artists[id].Yomi)
			}
		case TypeAlbum:
			for _, id := range sortedIDs(c.albums) {
				idx.PutEntity(id, c.albums[id].Name, c.albums[id].Yomi)
			}
		case TypeTitle:
			for _, id := range sortedIDs(c.titles) {
				idx.PutEntity(id, c.titles[id].Name, c.titles[id].Yomi)
			}
		}
		c.index[t] = idx
	}
}
