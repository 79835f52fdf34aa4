package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureJSON = `{
  "music": {
    "artist": {
      "a1": {"name": "Suchmos", "yomi": "サチモス", "album": ["al1"], "title": ["t1", "t2"]},
      "a2": {"name": "あいみょん", "album": [], "title": ["t3"]}
    },
    "album": {
      "al1": {"name": "THE KIDS", "yomi": "ザキッズ", "albumartist_id": "a1", "title": ["t1", "t2"]}
    },
    "title": {
      "t1": {"title": "STAY TUNE", "yomi": "ステイチューン", "artist_id": "a1", "album_id": "al1", "disc": "1", "track": "2", "karaoke": false, "path": "suchmos/the_kids/02_stay_tune.flac"},
      "t2": {"title": "MINT", "yomi": "ミント", "artist_id": "a1", "album_id": "al1", "disc": "1", "track": "3", "karaoke": false, "path": "suchmos/the_kids/03_mint.flac"},
      "t3": {"title": "マリーゴールド", "artist_id": "a2", "karaoke": false, "path": "aimyon/marigold.flac"}
    }
  },
  "keys": {
    "artist": [{"key": "スチモス", "id": "a1", "priority": 5}]
  }
}`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(fixtureJSON))
	require.NoError(t, err)

	artist, ok := c.Artist("a1")
	require.True(t, ok)
	assert.Equal(t, "Suchmos", artist.Name)
	assert.Equal(t, []string{"t1", "t2"}, artist.TitleIDs)

	album, ok := c.Album("al1")
	require.True(t, ok)
	assert.Equal(t, "a1", album.ArtistID)

	title, ok := c.Title("t1")
	require.True(t, ok)
	assert.Equal(t, "STAY TUNE", title.Name)
	assert.Equal(t, "suchmos/the_kids/02_stay_tune.flac", title.Path)

	_, ok = c.Artist("a9")
	assert.False(t, ok)
}

func TestParse_ValidateReferences(t *testing.T) {
	tests := []struct {
		name   string
		json   string
		errMsg string
	}{
		{
			name:   "artist references unknown album",
			json:   `{"music": {"artist": {"a1": {"name": "A", "album": ["al9"], "title": []}}}}`,
			errMsg: "unknown album al9",
		},
		{
			name:   "artist references unknown title",
			json:   `{"music": {"artist": {"a1": {"name": "A", "album": [], "title": ["t9"]}}}}`,
			errMsg: "unknown title t9",
		},
		{
			name: "album references unknown title",
			json: `{"music": {
				"artist": {"a1": {"name": "A", "album": ["al1"], "title": []}},
				"album": {"al1": {"name": "B", "albumartist_id": "a1", "title": ["t9"]}}}}`,
			errMsg: "unknown title t9",
		},
		{
			name:   "title references unknown artist",
			json:   `{"music": {"title": {"t1": {"title": "C", "artist_id": "a9", "path": "c.flac"}}}}`,
			errMsg: "unknown artist a9",
		},
		{
			name: "title references unknown album",
			json: `{"music": {
				"artist": {"a1": {"name": "A", "album": [], "title": ["t1"]}},
				"title": {"t1": {"title": "C", "artist_id": "a1", "album_id": "al9", "path": "c.flac"}}}}`,
			errMsg: "unknown album al9",
		},
		{
			name:   "malformed json",
			json:   `{"music": `,
			errMsg: "failed to parse catalog file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.json))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestCatalog_Entity(t *testing.T) {
	c, err := Parse([]byte(fixtureJSON))
	require.NoError(t, err)

	tests := []struct {
		name     string
		typ      EntityType
		id       string
		found    bool
		wantName string
		wantYomi string
	}{
		{name: "artist", typ: TypeArtist, id: "a1", found: true, wantName: "Suchmos", wantYomi: "サチモス"},
		{name: "album", typ: TypeAlbum, id: "al1", found: true, wantName: "THE KIDS", wantYomi: "ザキッズ"},
		{name: "title", typ: TypeTitle, id: "t3", found: true, wantName: "マリーゴールド"},
		{name: "missing id", typ: TypeArtist, id: "zzz", found: false},
		{name: "wrong type", typ: TypeAlbum, id: "a1", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := c.Entity(tt.typ, tt.id)
			assert.Equal(t, tt.found, ok)
			if !tt.found {
				return
			}
			assert.Equal(t, tt.typ, e.Type)
			assert.Equal(t, tt.id, e.ID)
			assert.Equal(t, tt.wantName, e.Name)
			assert.Equal(t, tt.wantYomi, e.Yomi)
		})
	}
}

func TestCatalog_BuildIndex(t *testing.T) {
	c, err := Parse([]byte(fixtureJSON))
	require.NoError(t, err)

	idx := c.Index(TypeArtist)
	require.NotNil(t, idx)

	// File-provided key.
	cand, ok := idx.Lookup("スチモス")
	require.True(t, ok)
	assert.Equal(t, "a1", cand.ID)
	assert.Equal(t, 5, cand.Priority)

	// Standard keys: name at 0, reading at 1, normalized reading at 3.
	cand, ok = idx.Lookup("Suchmos")
	require.True(t, ok)
	assert.Equal(t, Candidate{ID: "a1", Priority: 0}, cand)

	cand, ok = idx.Lookup("サチモス")
	require.True(t, ok)
	assert.Equal(t, Candidate{ID: "a1", Priority: 1}, cand)

	// A reading-less entity indexes its normalized name.
	cand, ok = idx.Lookup("アイミョン")
	require.True(t, ok)
	assert.Equal(t, Candidate{ID: "a2", Priority: 2}, cand)

	// Titles get their own index.
	cand, ok = c.Index(TypeTitle).Lookup("ステイチュン")
	require.True(t, ok)
	assert.Equal(t, Candidate{ID: "t1", Priority: 3}, cand)
}

func TestKeyIndex_FirstWriterWins(t *testing.T) {
	idx := NewKeyIndex()
	idx.Put("ミント", "t1", 0)
	idx.Put("ミント", "t2", 1)
	idx.Put("", "t3", 0)

	cand, ok := idx.Lookup("ミント")
	require.True(t, ok)
	assert.Equal(t, Candidate{ID: "t1", Priority: 0}, cand)
	assert.Equal(t, 1, idx.Len())
}

func TestKeyIndex_Walk(t *testing.T) {
	idx := NewKeyIndex()
	idx.Put("b", "2", 0)
	idx.Put("a", "1", 0)
	idx.Put("c", "3", 0)

	var visited []string
	idx.Walk(func(key string, _ Candidate) bool {
		visited = append(visited, key)
		return true
	})
	assert.Equal(t, []string{"a", "b", "c"}, visited)

	visited = nil
	idx.Walk(func(key string, _ Candidate) bool {
		visited = append(visited, key)
		return key != "b"
	})
	assert.Equal(t, []string{"a", "b"}, visited)
}

func TestFoldKey(t *testing.T) {
	assert.Equal(t, "ABC123", FoldKey("ＡＢＣ１２３"))
	assert.Equal(t, "ステイ", FoldKey("ｽﾃｲ"))
}

func TestEntity_SpeechName(t *testing.T) {
	tests := []struct {
		name     string
		entity   Entity
		expected string
	}{
		{
			name:     "reading preferred",
			entity:   Entity{Name: "Suchmos", Yomi: "サチモス"},
			expected: "サチモス",
		},
		{
			name:     "latin run wrapped",
			entity:   Entity{Name: "STAY TUNE"},
			expected: `<lang xml:lang="en-US">STAY TUNE</lang>`,
		},
		{
			name:     "mixed script wraps only the latin run",
			entity:   Entity{Name: "瞬間的ABC"},
			expected: `瞬間的<lang xml:lang="en-US">ABC</lang>`,
		},
		{
			name:     "pure japanese untouched",
			entity:   Entity{Name: "マリーゴールド"},
			expected: "マリーゴールド",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.entity.SpeechName())
		})
	}
}
