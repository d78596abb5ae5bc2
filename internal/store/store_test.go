package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord(id string) MatchRecord {
	return MatchRecord{
		ID:         id,
		Winner:     "bees",
		Nights:     3,
		FinishedAt: time.Now().UTC(),
		Players: []PlayerResult{
			{PlayerID: "a", Name: "ada", Role: "nurse", Team: "bee", Survived: true, Won: true},
			{PlayerID: "b", Name: "bob", Role: "wasp", Team: "wasp", Survived: false, Won: false},
		},
	}
}

func TestSaveAndLoadMatch(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveMatch(sampleRecord("m1")); err != nil {
		t.Fatalf("SaveMatch: %v", err)
	}

	rec, err := s.Match("m1")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if rec.Winner != "bees" || rec.Nights != 3 {
		t.Errorf("record = %+v", rec)
	}
	if len(rec.Players) != 2 {
		t.Fatalf("got %d players, want 2", len(rec.Players))
	}
	if rec.Players[0].PlayerID != "a" || !rec.Players[0].Won {
		t.Errorf("players = %+v", rec.Players)
	}
}

func TestDuplicateMatchFails(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveMatch(sampleRecord("m1")); err != nil {
		t.Fatalf("SaveMatch: %v", err)
	}
	if err := s.SaveMatch(sampleRecord("m1")); err == nil {
		t.Error("second save of the same id should fail")
	}
}

func TestStatsAccumulate(t *testing.T) {
	s := openTestStore(t)
	if err := s.SaveMatch(sampleRecord("m1")); err != nil {
		t.Fatalf("SaveMatch: %v", err)
	}
	if err := s.SaveMatch(sampleRecord("m2")); err != nil {
		t.Fatalf("SaveMatch: %v", err)
	}

	st, err := s.Stats("a")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Played != 2 || st.Wins != 2 || st.Survived != 2 {
		t.Errorf("stats = %+v, want 2/2/2", st)
	}

	st, err = s.Stats("b")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Played != 2 || st.Wins != 0 {
		t.Errorf("stats = %+v, want 2 played 0 wins", st)
	}
}

func TestStatsUnknownPlayer(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Stats("ghost")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("got %v, want sql.ErrNoRows", err)
	}
}

func TestRecentMatches(t *testing.T) {
	s := openTestStore(t)
	for i, id := range []string{"m1", "m2", "m3"} {
		rec := sampleRecord(id)
		rec.FinishedAt = time.Now().UTC().Add(time.Duration(i) * time.Minute)
		if err := s.SaveMatch(rec); err != nil {
			t.Fatalf("SaveMatch %s: %v", id, err)
		}
	}
	recs, err := s.RecentMatches(2)
	if err != nil {
		t.Fatalf("RecentMatches: %v", err)
	}
	if len(recs) != 2 || recs[0].ID != "m3" || recs[1].ID != "m2" {
		t.Errorf("recents = %+v, want [m3 m2]", recs)
	}
}
