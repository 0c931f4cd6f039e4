// ABOUTME: Tests for the SQLite saved-track store
// ABOUTME: Covers save/find/remove, list ordering and enrichment patching
package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwynn/portable-radio/internal/domain"
)

func openTest(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndFind(t *testing.T) {
	s := openTest(t)

	id, err := s.Save(domain.SavedTrack{
		Station:     "kexp",
		Artist:      "Khruangbin",
		Title:       "Maria También",
		Album:       "Con Todo El Mundo",
		Year:        2018,
		DisplayText: "Khruangbin - Maria También (2018)",
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	found, err := s.Find("kexp", "Khruangbin", "Maria También")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, id, found.ID)
	assert.Equal(t, "Con Todo El Mundo", found.Album)
	assert.Equal(t, 2018, found.Year)
	assert.False(t, found.SavedAt.IsZero())
}

func TestFind_Missing(t *testing.T) {
	s := openTest(t)

	found, err := s.Find("kexp", "Nobody", "Nothing")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestSave_DuplicateIdentityRejected(t *testing.T) {
	s := openTest(t)

	st := domain.SavedTrack{Station: "wfmu", Artist: "Can", Title: "Vitamin C", DisplayText: "Can - Vitamin C"}
	_, err := s.Save(st)
	require.NoError(t, err)

	_, err = s.Save(st)
	assert.Error(t, err, "identity triple is unique")
}

func TestRemove_ToggleCycle(t *testing.T) {
	s := openTest(t)

	st := domain.SavedTrack{Station: "wbgo", Artist: "Alice Coltrane", Title: "Journey in Satchidananda", DisplayText: "Alice Coltrane - Journey in Satchidananda"}
	id, err := s.Save(st)
	require.NoError(t, err)

	require.NoError(t, s.Remove(id))

	found, err := s.Find("wbgo", "Alice Coltrane", "Journey in Satchidananda")
	require.NoError(t, err)
	assert.Nil(t, found)

	// Saving again after removal must succeed.
	_, err = s.Save(st)
	assert.NoError(t, err)
}

func TestList_NewestFirst(t *testing.T) {
	s := openTest(t)

	base := time.Now().Add(-time.Hour)
	for i, title := range []string{"First", "Second", "Third"} {
		_, err := s.Save(domain.SavedTrack{
			Station:     "kvrx",
			Artist:      "Stereolab",
			Title:       title,
			DisplayText: "Stereolab - " + title,
			SavedAt:     base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Third", list[0].Title)
	assert.Equal(t, "Second", list[1].Title)
	assert.Equal(t, "First", list[2].Title)
}

func TestClear(t *testing.T) {
	s := openTest(t)

	_, err := s.Save(domain.SavedTrack{Station: "wdvx", Artist: "Doc Watson", Title: "Deep River Blues", DisplayText: "Doc Watson - Deep River Blues"})
	require.NoError(t, err)

	require.NoError(t, s.Clear())

	list, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateEnrichment_FillsMissingOnly(t *testing.T) {
	s := openTest(t)

	_, err := s.Save(domain.SavedTrack{Station: "kexp", Artist: "Low", Title: "Especially Me", DisplayText: "Low - Especially Me"})
	require.NoError(t, err)
	_, err = s.Save(domain.SavedTrack{Station: "wfmu", Artist: "Low", Title: "Especially Me", Album: "C'mon", Year: 2011, DisplayText: "Low - Especially Me (2011)"})
	require.NoError(t, err)

	n, err := s.UpdateEnrichment("Low", "Especially Me", "C'mon Deluxe", 2012)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	bare, err := s.Find("kexp", "Low", "Especially Me")
	require.NoError(t, err)
	require.NotNil(t, bare)
	assert.Equal(t, "C'mon Deluxe", bare.Album)
	assert.Equal(t, 2012, bare.Year)

	// The row that already carried album and year keeps its own values.
	full, err := s.Find("wfmu", "Low", "Especially Me")
	require.NoError(t, err)
	require.NotNil(t, full)
	assert.Equal(t, "C'mon", full.Album)
	assert.Equal(t, 2011, full.Year)
}

func TestUpdateEnrichment_NoMatch(t *testing.T) {
	s := openTest(t)

	n, err := s.UpdateEnrichment("Nobody", "Nothing", "Album", 2000)
	require.NoError(t, err)
	assert.Zero(t, n)
}
