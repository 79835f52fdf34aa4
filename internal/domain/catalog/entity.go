// Package catalog provides the immutable media catalog and its phonetic index.
package catalog

import "regexp"

// EntityType identifies one of the three catalog entity kinds.
type EntityType string

const (
	TypeArtist EntityType = "artist"
	TypeAlbum  EntityType = "album"
	TypeTitle  EntityType = "title"
)

// EntityTypes lists all entity types in slot order (artist, album, title).
var EntityTypes = []EntityType{TypeArtist, TypeAlbum, TypeTitle}

// Artist represents a performing artist.
type Artist struct {
	Name     string   `json:"name"`
	Yomi     string   `json:"yomi,omitempty"`
	AlbumIDs []string `json:"album"`
	TitleIDs []string `json:"title"`
}

// Album represents an album. TitleIDs are ordered by disc, then track
// number; the ingestion pipeline guarantees this ordering.
type Album struct {
	Name     string   `json:"name"`
	Yomi     string   `json:"yomi,omitempty"`
	ArtistID string   `json:"albumartist_id"`
	TitleIDs []string `json:"title"`
}

// Title represents a single playable track.
type Title struct {
	Name     string `json:"title"`
	Yomi     string `json:"yomi,omitempty"`
	ArtistID string `json:"artist_id"`
	AlbumID  string `json:"album_id,omitempty"`
	Disc     string `json:"disc,omitempty"`
	Track    string `json:"track,omitempty"`
	Karaoke  bool   `json:"karaoke"`
	Path     string `json:"path"`
}

// Entity is a type-independent view of a catalog record, used where the
// caller does not care which kind it resolved to.
type Entity struct {
	Type EntityType
	ID   string
	Name string
	Yomi string
}

var foreignSpan = regexp.MustCompile(`[0-9A-Za-z][0-9A-Za-z\s.\-'!\?]*`)

// SpeechName returns the string a speech layer should utter for the entity:
// the reading when one is known, otherwise the display name with runs of
// Latin letters/digits wrapped as foreign-language spans.
func (e *Entity) SpeechName() string {
	if e.Yomi != "" {
		return e.Yomi
	}
	return WrapForeignSpans(e.Name)
}

// WrapForeignSpans wraps Latin letter/digit runs in a lang markup span so
// the host's speech synthesizer pronounces them as English.
func WrapForeignSpans(name string) string {
	return foreignSpan.ReplaceAllString(name, `<lang xml:lang="en-US">$0</lang>`)
}
