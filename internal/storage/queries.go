package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pable/wintracker/internal/model"
)

const matchColumns = "id, user_id, opponent_name, wins, losses, created_at, updated_at"

// timeLayout is fixed-width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// CreateUser inserts a user and returns the stored row.
func (db *DB) CreateUser(name string) (*model.User, error) {
	now := time.Now().UTC()
	res, err := db.conn.Exec(`INSERT INTO users(name, created_at) VALUES (?, ?)`, name, formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.User{ID: id, Name: name, CreatedAt: now}, nil
}

// GetUser returns the user with the given id, or nil if there is none.
func (db *DB) GetUser(id int64) (*model.User, error) {
	return db.scanUser(db.conn.QueryRow(`SELECT id, name, created_at FROM users WHERE id = ?`, id))
}

// GetUserByName looks a user up case-insensitively, returning nil if absent.
func (db *DB) GetUserByName(name string) (*model.User, error) {
	return db.scanUser(db.conn.QueryRow(`SELECT id, name, created_at FROM users WHERE lower(name) = lower(?)`, name))
}

// UserExists reports whether a user with this name (any casing) exists.
func (db *DB) UserExists(name string) (bool, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(1) FROM users WHERE lower(name) = lower(?)`, name).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListUsers returns all users ordered by id.
func (db *DB) ListUsers() ([]model.User, error) {
	rows, err := db.conn.Query(`SELECT id, name, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		var created string
		if err := rows.Scan(&u.ID, &u.Name, &created); err != nil {
			return nil, err
		}
		if u.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (db *DB) scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	var created string
	err := row.Scan(&u.ID, &u.Name, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if u.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListMatches returns a user's matches, oldest first.
func (db *DB) ListMatches(userID int64) ([]model.Match, error) {
	rows, err := db.conn.Query(`SELECT `+matchColumns+` FROM matches WHERE user_id = ? ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// GetMatch returns the match with the given id, or nil if there is none.
func (db *DB) GetMatch(id int64) (*model.Match, error) {
	m, err := scanMatch(db.conn.QueryRow(`SELECT `+matchColumns+` FROM matches WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

// CreateMatch inserts a match; missing counters default to zero.
func (db *DB) CreateMatch(req model.CreateMatchRequest) (*model.Match, error) {
	now := formatTime(time.Now().UTC())
	res, err := db.conn.Exec(`
		INSERT INTO matches(user_id, opponent_name, wins, losses, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		req.UserID, req.OpponentName, req.WinsOrZero(), req.LossesOrZero(), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert match: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return db.GetMatch(id)
}

// UpdateMatch replaces the counters of a match.
func (db *DB) UpdateMatch(id int64, req model.UpdateMatchRequest) (*model.Match, error) {
	return db.updateMatch(id, `UPDATE matches SET wins = ?, losses = ?, updated_at = ? WHERE id = ?`,
		req.Wins, req.Losses, formatTime(time.Now().UTC()), id)
}

// RenameOpponent changes the opponent name of a match.
func (db *DB) RenameOpponent(id int64, opponentName string) (*model.Match, error) {
	return db.updateMatch(id, `UPDATE matches SET opponent_name = ?, updated_at = ? WHERE id = ?`,
		opponentName, formatTime(time.Now().UTC()), id)
}

func (db *DB) updateMatch(id int64, query string, args ...any) (*model.Match, error) {
	res, err := db.conn.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("update match %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, fmt.Errorf("match %d: %w", id, model.ErrNotFound)
	}
	return db.GetMatch(id)
}

// DeleteMatch removes one match.
func (db *DB) DeleteMatch(id int64) error {
	res, err := db.conn.Exec(`DELETE FROM matches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete match %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("match %d: %w", id, model.ErrNotFound)
	}
	return nil
}

// DeleteMatches removes several matches in one statement. Unknown ids are
// ignored; an empty list is a no-op.
func (db *DB) DeleteMatches(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := db.conn.Exec(`DELETE FROM matches WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return fmt.Errorf("delete matches: %w", err)
	}
	return nil
}

// QueryRaw runs an arbitrary query and returns column names and stringified rows.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(s scanner) (*model.Match, error) {
	var m model.Match
	var created, updated string
	if err := s.Scan(&m.ID, &m.UserID, &m.OpponentName, &m.Wins, &m.Losses, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if m.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if m.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &m, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
