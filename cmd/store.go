package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pable/wintracker/internal/model"
	"github.com/pable/wintracker/internal/render"
	"github.com/pable/wintracker/internal/report"
	"github.com/pable/wintracker/internal/server"
	"github.com/pable/wintracker/internal/storage"
	"github.com/pable/wintracker/internal/storage/hosted"
	"github.com/pable/wintracker/internal/validation"
)

type store interface {
	server.Store
	Close() error
}

// openStore opens the hosted store when a database URL is configured and
// the local SQLite file otherwise.
func openStore() (store, error) {
	if databaseURL != "" {
		st, err := hosted.Open(databaseURL)
		if err != nil {
			return nil, fmt.Errorf("open hosted storage: %w", err)
		}
		return st, nil
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

func newGenerator() (*report.Generator, error) {
	tmpl, err := render.LoadTemplateFile(templatePath)
	if err != nil {
		return nil, err
	}
	return &report.Generator{Template: tmpl}, nil
}

// resolveUser finds a user by name, ignoring case and extra whitespace.
func resolveUser(st store, name string) (*model.User, error) {
	name = validation.SanitizeName(name)
	if name == "" {
		return nil, fmt.Errorf("--user is required")
	}
	u, err := st.GetUserByName(name)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("no user named %q; create one with 'wintracker user create %s'", name, name)
	}
	return u, nil
}

func addMatch(st store, u *model.User, opponent string, wins, losses int) (*model.Match, error) {
	if err := validation.ValidateCounts(wins, losses); err != nil {
		return nil, err
	}
	existing, err := st.ListMatches(u.ID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	opponent = validation.SanitizeName(opponent)
	if err := validation.NewDuplicateChecker(existing).Check(opponent); err != nil {
		return nil, err
	}
	return st.CreateMatch(model.CreateMatchRequest{
		UserID:       u.ID,
		OpponentName: opponent,
		Wins:         &wins,
		Losses:       &losses,
	})
}

// ownedMatch loads match id. When u is non-nil a match belonging to another
// user is reported as not found.
func ownedMatch(st store, u *model.User, id int64) (*model.Match, error) {
	m, err := st.GetMatch(id)
	if err != nil {
		return nil, fmt.Errorf("get match: %w", err)
	}
	if m == nil || (u != nil && m.UserID != u.ID) {
		return nil, fmt.Errorf("match %d: %w", id, model.ErrNotFound)
	}
	return m, nil
}

// bumpMatch adds dWins and dLosses to a match, never going below zero.
func bumpMatch(st store, u *model.User, id int64, dWins, dLosses int) (*model.Match, error) {
	m, err := ownedMatch(st, u, id)
	if err != nil {
		return nil, err
	}
	return st.UpdateMatch(id, model.UpdateMatchRequest{
		Wins:   max(m.Wins+dWins, 0),
		Losses: max(m.Losses+dLosses, 0),
	})
}

// setMatch overwrites the counters that are non-nil and keeps the others.
func setMatch(st store, u *model.User, id int64, wins, losses *int) (*model.Match, error) {
	if wins == nil && losses == nil {
		return nil, fmt.Errorf("nothing to set: pass wins, losses or both")
	}
	m, err := ownedMatch(st, u, id)
	if err != nil {
		return nil, err
	}
	req := model.UpdateMatchRequest{Wins: m.Wins, Losses: m.Losses}
	if wins != nil {
		req.Wins = *wins
	}
	if losses != nil {
		req.Losses = *losses
	}
	if err := validation.ValidateCounts(req.Wins, req.Losses); err != nil {
		return nil, err
	}
	return st.UpdateMatch(id, req)
}

func renameMatch(st store, u *model.User, id int64, opponent string) (*model.Match, error) {
	m, err := ownedMatch(st, u, id)
	if err != nil {
		return nil, err
	}
	siblings, err := st.ListMatches(m.UserID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	opponent = validation.SanitizeName(opponent)
	if err := validation.NewDuplicateChecker(siblings).CheckRename(id, opponent); err != nil {
		return nil, err
	}
	return st.RenameOpponent(id, opponent)
}

// removeMatches deletes ids after checking every one exists (and belongs to
// u when u is non-nil). Nothing is deleted if any id fails the check.
func removeMatches(st store, u *model.User, ids []int64) (int, error) {
	seen := make(map[int64]bool, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := ownedMatch(st, u, id); err != nil {
			return 0, err
		}
		unique = append(unique, id)
	}
	if err := st.DeleteMatches(unique); err != nil {
		return 0, err
	}
	return len(unique), nil
}
