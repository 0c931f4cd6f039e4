// ABOUTME: Tests for the track change detector
// ABOUTME: Verifies baseline identity rule and progressive-metadata override
package track

import "testing"

func TestShouldUpdate_NilCandidate(t *testing.T) {
	d := NewDetector(nil)
	displayed := New("KEXP", "Bowie", "Heroes", "", 0)

	if d.ShouldUpdate(nil, displayed) {
		t.Error("nil candidate must never trigger an update")
	}
	if d.ShouldUpdate(nil, nil) {
		t.Error("nil candidate must never trigger an update, even with empty display")
	}
}

func TestShouldUpdate_FirstRecord(t *testing.T) {
	d := NewDetector(nil)
	if !d.ShouldUpdate(New("KEXP", "Bowie", "Heroes", "", 0), nil) {
		t.Error("first record should display")
	}
}

func TestShouldUpdate_IdenticalRecord(t *testing.T) {
	d := NewDetector(nil)
	displayed := New("KEXP", "Bowie", "Heroes", "", 0)
	candidate := New("KEXP", "Bowie", "Heroes", "", 0)

	if d.ShouldUpdate(candidate, displayed) {
		t.Error("identical identity must not update")
	}
}

func TestShouldUpdate_DifferentStationSameTrack(t *testing.T) {
	d := NewDetector(nil)
	displayed := New("KEXP", "Bowie", "Heroes", "", 0)
	candidate := New("WFMU", "Bowie", "Heroes", "", 0)

	if !d.ShouldUpdate(candidate, displayed) {
		t.Error("same track on a different station is a change")
	}
}

func TestShouldUpdate_ProgressiveMetadata(t *testing.T) {
	d := NewDetector([]string{"KVRX"})

	displayed := New("KVRX", "Bowie", "Heroes", "", 0)
	withAlbum := New("KVRX", "Bowie", "Heroes", "Berlin Sessions", 0)
	withYear := New("KVRX", "Bowie", "Heroes", "", 1977)

	if !d.ShouldUpdate(withAlbum, displayed) {
		t.Error("new album on a progressive station should refresh")
	}
	if !d.ShouldUpdate(withYear, displayed) {
		t.Error("new year on a progressive station should refresh")
	}

	// Once the displayed record has the fields, equality suppresses again.
	if d.ShouldUpdate(withAlbum, withAlbum) {
		t.Error("no new fields, no refresh")
	}
}

func TestShouldUpdate_ProgressiveNotConfigured(t *testing.T) {
	d := NewDetector(nil)
	displayed := New("KEXP", "Bowie", "Heroes", "", 0)
	withAlbum := New("KEXP", "Bowie", "Heroes", "Berlin Sessions", 0)

	if d.ShouldUpdate(withAlbum, displayed) {
		t.Error("non-progressive stations use the baseline rule only")
	}
}
