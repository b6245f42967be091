package score

import (
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/matsuokaju/rhythm-game/internal/game"
	_ "github.com/mattn/go-sqlite3"
)

type DefaultStore struct {
	db  *sql.DB
	Log *slog.Logger
}

func (s *DefaultStore) logger() *slog.Logger {
	if nil == s.Log {
		return slog.Default()
	}
	return s.Log
}

func (s *DefaultStore) Init(path string) error {
	db, err := sql.Open("sqlite3", path)
	if nil != err {
		return fmt.Errorf("unable to open %s: %w", path, err)
	}

	initStatement := `
	create table if not exists results
	  (
		  id integer not null primary key,
		  run text not null unique,
		  sum text not null,
		  played integer not null,
		  score integer not null,
		  max_combo integer not null,
		  accuracy real not null,
		  counts blob
	  );
	create index if not exists results_sum on results(sum);
	`
	if _, err = db.Exec(initStatement); nil != err {
		db.Close()
		return fmt.Errorf("unable to create results table: %w", err)
	}

	s.db = db
	return nil
}

func (s *DefaultStore) Deinit() {
	if nil != s.db {
		s.db.Close()
		s.db = nil
	}
}

// hashChart identifies a chart by its timing and notes, so retitling a song
// keeps its history.
func hashChart(c *game.Chart) string {
	data, err := json.Marshal(struct {
		TimingPoints []game.TimingPoint
		Notes        []*game.Note
	}{c.TimingPoints, c.Notes})
	if nil != err {
		data = []byte(c.SongInfo.Title + c.SongInfo.Difficulty)
	}
	sum := sha256.Sum256(data)
	return base64.StdEncoding.EncodeToString(sum[:])
}

type counts struct {
	Tap  Counts `json:"tap"`
	Hold Counts `json:"hold"`
}

func (s *DefaultStore) Save(c *game.Chart, state State, accuracy float64) error {
	if nil == s.db {
		return errors.New("result store is not initialised")
	}
	data, err := json.Marshal(counts{Tap: state.Tap, Hold: state.Hold})
	if nil != err {
		return fmt.Errorf("unable to marshal counts: %w", err)
	}
	run := uuid.NewString()
	_, err = s.db.Exec(
		"insert into results(run, sum, played, score, max_combo, accuracy, counts) values(?, ?, ?, ?, ?, ?, ?)",
		run, hashChart(c), time.Now().Unix(), state.Score, state.MaxCombo, accuracy, data,
	)
	if nil != err {
		return fmt.Errorf("unable to save result: %w", err)
	}
	s.logger().Info("result saved", "run", run, "title", c.SongInfo.Title, "score", state.Score, "accuracy", accuracy)
	return nil
}

func (s *DefaultStore) Load(c *game.Chart) ([]History, error) {
	histories := []History{}
	if nil == s.db {
		return histories, errors.New("result store is not initialised")
	}
	rows, err := s.db.Query(
		"select id, run, sum, played, score, max_combo, accuracy, counts from results where sum = ? order by id",
		hashChart(c),
	)
	if nil != err {
		return histories, fmt.Errorf("unable to load results: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var h History
		var played int64
		var data []byte
		if err := rows.Scan(&h.ID, &h.Run, &h.Sum, &played, &h.State.Score, &h.State.MaxCombo, &h.Accuracy, &data); nil != err {
			return histories, fmt.Errorf("unable to scan result: %w", err)
		}
		var cs counts
		if err := json.Unmarshal(data, &cs); nil != err {
			s.logger().Warn("unable to unmarshal result counts", "id", h.ID, "err", err)
		}
		h.Played = time.Unix(played, 0)
		h.State.Tap, h.State.Hold = cs.Tap, cs.Hold
		histories = append(histories, h)
	}
	return histories, rows.Err()
}
