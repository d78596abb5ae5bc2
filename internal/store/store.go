// Package store persists finished matches and per-player statistics
// in SQLite. Persistence is best-effort: the session layer logs store
// failures and keeps going.
package store

import (
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS match_record (
	id          TEXT PRIMARY KEY,
	winner      TEXT NOT NULL,
	nights      INTEGER NOT NULL,
	finished_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS match_player (
	match_id  TEXT NOT NULL REFERENCES match_record(id),
	player_id TEXT NOT NULL,
	name      TEXT NOT NULL,
	role      TEXT NOT NULL,
	team      TEXT NOT NULL,
	survived  BOOLEAN NOT NULL,
	won       BOOLEAN NOT NULL,
	PRIMARY KEY (match_id, player_id)
);

CREATE TABLE IF NOT EXISTS player_stats (
	player_id TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	played    INTEGER NOT NULL DEFAULT 0,
	wins      INTEGER NOT NULL DEFAULT 0,
	survived  INTEGER NOT NULL DEFAULT 0
);
`

// MatchRecord is one finished match with its final standings.
type MatchRecord struct {
	ID         string    `db:"id"`
	Winner     string    `db:"winner"`
	Nights     int       `db:"nights"`
	FinishedAt time.Time `db:"finished_at"`
	Players    []PlayerResult
}

// PlayerResult is one player's line in a finished match.
type PlayerResult struct {
	MatchID  string `db:"match_id"`
	PlayerID string `db:"player_id"`
	Name     string `db:"name"`
	Role     string `db:"role"`
	Team     string `db:"team"`
	Survived bool   `db:"survived"`
	Won      bool   `db:"won"`
}

// PlayerStats is a player's lifetime tally.
type PlayerStats struct {
	PlayerID string `db:"player_id"`
	Name     string `db:"name"`
	Played   int    `db:"played"`
	Wins     int    `db:"wins"`
	Survived int    `db:"survived"`
}

type Store struct {
	db *sqlx.DB
}

// Open connects to the SQLite database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveMatch writes the record and every player line in one transaction,
// then folds the results into the lifetime stats.
func (s *Store) SaveMatch(rec MatchRecord) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.NamedExec(`
		INSERT INTO match_record (id, winner, nights, finished_at)
		VALUES (:id, :winner, :nights, :finished_at)`, rec)
	if err != nil {
		return err
	}
	for _, pr := range rec.Players {
		pr.MatchID = rec.ID
		_, err = tx.NamedExec(`
			INSERT INTO match_player (match_id, player_id, name, role, team, survived, won)
			VALUES (:match_id, :player_id, :name, :role, :team, :survived, :won)`, pr)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`
			INSERT INTO player_stats (player_id, name, played, wins, survived)
			VALUES (?, ?, 1, ?, ?)
			ON CONFLICT(player_id) DO UPDATE SET
				name = excluded.name,
				played = played + 1,
				wins = wins + excluded.wins,
				survived = survived + excluded.survived`,
			pr.PlayerID, pr.Name, boolToInt(pr.Won), boolToInt(pr.Survived))
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Match loads one finished match with its standings.
func (s *Store) Match(id string) (MatchRecord, error) {
	var rec MatchRecord
	err := s.db.Get(&rec, `
		SELECT id, winner, nights, finished_at
		FROM match_record
		WHERE id = ?`, id)
	if err != nil {
		return MatchRecord{}, err
	}
	err = s.db.Select(&rec.Players, `
		SELECT match_id, player_id, name, role, team, survived, won
		FROM match_player
		WHERE match_id = ?
		ORDER BY player_id`, id)
	return rec, err
}

// RecentMatches lists the latest finished matches, newest first.
func (s *Store) RecentMatches(limit int) ([]MatchRecord, error) {
	var recs []MatchRecord
	err := s.db.Select(&recs, `
		SELECT id, winner, nights, finished_at
		FROM match_record
		ORDER BY finished_at DESC
		LIMIT ?`, limit)
	return recs, err
}

// Stats returns a player's lifetime tally.
func (s *Store) Stats(playerID string) (PlayerStats, error) {
	var st PlayerStats
	err := s.db.Get(&st, `
		SELECT player_id, name, played, wins, survived
		FROM player_stats
		WHERE player_id = ?`, playerID)
	return st, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
