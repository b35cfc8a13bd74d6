// Package validation checks user names and opponent names before they are
// stored.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/pable/wintracker/internal/model"
)

var (
	// ErrNameRequired is returned for a blank user name.
	ErrNameRequired = errors.New("name is required")
	// ErrNameMinWords is returned for a user name with fewer than two words.
	ErrNameMinWords = errors.New("name must contain at least two words")
	// ErrOpponentRequired is returned for a blank opponent name.
	ErrOpponentRequired = errors.New("opponent name is required")
	// ErrDuplicateOpponent is returned when an opponent already has a row.
	ErrDuplicateOpponent = errors.New("opponent already exists")
	// ErrNegativeCount is returned for negative wins or losses.
	ErrNegativeCount = errors.New("wins and losses must be non-negative")
)

// ValidateName checks a user name: non-blank and at least two words.
func ValidateName(name string) error {
	words := strings.Fields(name)
	if len(words) == 0 {
		return ErrNameRequired
	}
	if len(words) < 2 {
		return ErrNameMinWords
	}
	return nil
}

// SanitizeName trims name and collapses runs of whitespace to one space.
func SanitizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// ValidateCounts rejects negative tallies.
func ValidateCounts(wins, losses int) error {
	if wins < 0 || losses < 0 {
		return ErrNegativeCount
	}
	return nil
}

// DuplicateChecker detects opponent names that already exist for a user,
// ignoring case and surrounding whitespace.
//
// Aggregation groups by the exact stored name; this check is what keeps
// differently-cased copies of one opponent from being saved.
type DuplicateChecker struct {
	existing map[string]int64
	fold     cases.Caser
}

// NewDuplicateChecker indexes the opponent names of matches.
func NewDuplicateChecker(matches []model.Match) *DuplicateChecker {
	d := &DuplicateChecker{
		existing: make(map[string]int64, len(matches)),
		fold:     cases.Fold(),
	}
	for _, m := range matches {
		d.existing[d.normalize(m.OpponentName)] = m.ID
	}
	return d
}

func (d *DuplicateChecker) normalize(name string) string {
	return d.fold.String(strings.TrimSpace(name))
}

// IsDuplicate reports whether name matches an existing opponent.
func (d *DuplicateChecker) IsDuplicate(name string) bool {
	_, ok := d.existing[d.normalize(name)]
	return ok
}

// Check validates a new opponent name.
func (d *DuplicateChecker) Check(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrOpponentRequired
	}
	if d.IsDuplicate(name) {
		return fmt.Errorf("%w: %s", ErrDuplicateOpponent, strings.TrimSpace(name))
	}
	return nil
}

// CheckRename validates renaming match id to name. Renaming a match to a
// different casing of its own name is allowed.
func (d *DuplicateChecker) CheckRename(id int64, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrOpponentRequired
	}
	if owner, ok := d.existing[d.normalize(name)]; ok && owner != id {
		return fmt.Errorf("%w: %s", ErrDuplicateOpponent, strings.TrimSpace(name))
	}
	return nil
}
