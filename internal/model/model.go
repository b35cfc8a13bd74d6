// Package model holds the records shared by storage, aggregation, rendering
// and the HTTP/CLI surfaces.
package model

import (
	"errors"
	"time"
)

// ErrNotFound is returned by stores when an update or delete targets a row
// that does not exist.
var ErrNotFound = errors.New("not found")

// User is a registered nickname. There is no authentication; "logging in" is
// a case-insensitive lookup by name.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Match is a win/loss tally against one named opponent. A user may hold
// several matches with the same opponent name.
type Match struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	OpponentName string    `json:"opponent_name"`
	Wins         int       `json:"wins"`
	Losses       int       `json:"losses"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateMatchRequest carries the fields needed to insert a match. Nil
// counters default to zero.
type CreateMatchRequest struct {
	UserID       int64  `json:"user_id"`
	OpponentName string `json:"opponent_name"`
	Wins         *int   `json:"wins,omitempty"`
	Losses       *int   `json:"losses,omitempty"`
}

// WinsOrZero returns the requested wins, defaulting to 0.
func (r CreateMatchRequest) WinsOrZero() int {
	if r.Wins == nil {
		return 0
	}
	return *r.Wins
}

// LossesOrZero returns the requested losses, defaulting to 0.
func (r CreateMatchRequest) LossesOrZero() int {
	if r.Losses == nil {
		return 0
	}
	return *r.Losses
}

// UpdateMatchRequest replaces the counters of a match.
type UpdateMatchRequest struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// OpponentStats is the per-opponent aggregate computed for a report.
// It is never persisted.
type OpponentStats struct {
	Name         string  `json:"name"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	TotalMatches int     `json:"total_matches"`
	WinRatio     float64 `json:"win_ratio"`
	LossRatio    float64 `json:"loss_ratio"`
}

// ReportData is the ranked input of the image renderer.
type ReportData struct {
	UserName               string          `json:"user_name"`
	WinRankings            []OpponentStats `json:"win_rankings"`
	LossRankings           []OpponentStats `json:"loss_rankings"`
	HasEnoughDataForWins   bool            `json:"has_enough_data_for_wins"`
	HasEnoughDataForLosses bool            `json:"has_enough_data_for_losses"`
}
