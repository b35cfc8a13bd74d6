package storage

import (
	"errors"
	"testing"

	"github.com/pable/wintracker/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func intPtr(v int) *int { return &v }

func createUser(t *testing.T, db *DB, name string) *model.User {
	t.Helper()
	u, err := db.CreateUser(name)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestUserCreateAndLookup(t *testing.T) {
	db := openMemDB(t)

	u := createUser(t, db, "Maria Souza")
	if u.ID == 0 {
		t.Fatal("expected non-zero user id")
	}

	got, err := db.GetUser(u.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got == nil || got.Name != "Maria Souza" {
		t.Fatalf("GetUser = %+v", got)
	}

	byName, err := db.GetUserByName("maria SOUZA")
	if err != nil {
		t.Fatalf("GetUserByName: %v", err)
	}
	if byName == nil || byName.ID != u.ID {
		t.Errorf("expected case-insensitive lookup to find user %d, got %+v", u.ID, byName)
	}

	exists, err := db.UserExists("MARIA souza")
	if err != nil {
		t.Fatalf("UserExists: %v", err)
	}
	if !exists {
		t.Error("expected user to exist")
	}
	exists2, _ := db.UserExists("Nobody Here")
	if exists2 {
		t.Error("expected unknown user to not exist")
	}

	missing, err := db.GetUser(9999)
	if err != nil {
		t.Fatalf("GetUser missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing user, got %+v", missing)
	}
}

func TestDuplicateUserNameRejected(t *testing.T) {
	db := openMemDB(t)
	createUser(t, db, "Ana Silva")
	if _, err := db.CreateUser("ana silva"); err == nil {
		t.Error("expected unique constraint error for same name in different case")
	}
}

func TestListUsers(t *testing.T) {
	db := openMemDB(t)
	createUser(t, db, "Ana Silva")
	createUser(t, db, "Bruno Costa")

	users, err := db.ListUsers()
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Name != "Ana Silva" || users[1].Name != "Bruno Costa" {
		t.Errorf("unexpected order: %+v", users)
	}
}

func TestMatchLifecycle(t *testing.T) {
	db := openMemDB(t)
	u := createUser(t, db, "Maria Souza")

	m, err := db.CreateMatch(model.CreateMatchRequest{UserID: u.ID, OpponentName: "Ana Silva", Wins: intPtr(3)})
	if err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}
	if m.Wins != 3 || m.Losses != 0 {
		t.Errorf("expected 3/0 with losses defaulted, got %d/%d", m.Wins, m.Losses)
	}
	if m.CreatedAt.IsZero() || m.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	updated, err := db.UpdateMatch(m.ID, model.UpdateMatchRequest{Wins: 5, Losses: 2})
	if err != nil {
		t.Fatalf("UpdateMatch: %v", err)
	}
	if updated.Wins != 5 || updated.Losses != 2 {
		t.Errorf("UpdateMatch = %d/%d, want 5/2", updated.Wins, updated.Losses)
	}
	if updated.UpdatedAt.Before(m.UpdatedAt) {
		t.Error("expected UpdatedAt to move forward")
	}

	renamed, err := db.RenameOpponent(m.ID, "Ana S.")
	if err != nil {
		t.Fatalf("RenameOpponent: %v", err)
	}
	if renamed.OpponentName != "Ana S." {
		t.Errorf("RenameOpponent name = %q", renamed.OpponentName)
	}

	if err := db.DeleteMatch(m.ID); err != nil {
		t.Fatalf("DeleteMatch: %v", err)
	}
	gone, err := db.GetMatch(m.ID)
	if err != nil {
		t.Fatalf("GetMatch: %v", err)
	}
	if gone != nil {
		t.Error("expected match to be gone after delete")
	}
}

func TestMissingMatchReturnsNotFound(t *testing.T) {
	db := openMemDB(t)

	if _, err := db.UpdateMatch(42, model.UpdateMatchRequest{Wins: 1}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("UpdateMatch: expected ErrNotFound, got %v", err)
	}
	if _, err := db.RenameOpponent(42, "X Y"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("RenameOpponent: expected ErrNotFound, got %v", err)
	}
	if err := db.DeleteMatch(42); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("DeleteMatch: expected ErrNotFound, got %v", err)
	}
}

func TestListMatchesOrderAndScope(t *testing.T) {
	db := openMemDB(t)
	a := createUser(t, db, "Maria Souza")
	b := createUser(t, db, "Pedro Lima")

	for _, name := range []string{"First Opp", "Second Opp", "Third Opp"} {
		if _, err := db.CreateMatch(model.CreateMatchRequest{UserID: a.ID, OpponentName: name}); err != nil {
			t.Fatalf("CreateMatch: %v", err)
		}
	}
	if _, err := db.CreateMatch(model.CreateMatchRequest{UserID: b.ID, OpponentName: "Other User"}); err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}

	matches, err := db.ListMatches(a.ID)
	if err != nil {
		t.Fatalf("ListMatches: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	want := []string{"First Opp", "Second Opp", "Third Opp"}
	for i, m := range matches {
		if m.OpponentName != want[i] {
			t.Errorf("matches[%d] = %q, want %q", i, m.OpponentName, want[i])
		}
		if m.UserID != a.ID {
			t.Errorf("matches[%d] belongs to user %d", i, m.UserID)
		}
	}
}

func TestDeleteMatchesBulk(t *testing.T) {
	db := openMemDB(t)
	u := createUser(t, db, "Maria Souza")

	var ids []int64
	for _, name := range []string{"A One", "B Two", "C Three"} {
		m, err := db.CreateMatch(model.CreateMatchRequest{UserID: u.ID, OpponentName: name})
		if err != nil {
			t.Fatalf("CreateMatch: %v", err)
		}
		ids = append(ids, m.ID)
	}

	if err := db.DeleteMatches(nil); err != nil {
		t.Fatalf("DeleteMatches(nil): %v", err)
	}
	if err := db.DeleteMatches([]int64{ids[0], ids[2], 9999}); err != nil {
		t.Fatalf("DeleteMatches: %v", err)
	}

	left, err := db.ListMatches(u.ID)
	if err != nil {
		t.Fatalf("ListMatches: %v", err)
	}
	if len(left) != 1 || left[0].ID != ids[1] {
		t.Errorf("expected only match %d to remain, got %+v", ids[1], left)
	}
}

func TestQueryRaw(t *testing.T) {
	db := openMemDB(t)
	createUser(t, db, "Ana Silva")

	cols, rows, err := db.QueryRaw("SELECT name, NULL AS empty FROM users")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(cols) != 2 || cols[0] != "name" || cols[1] != "empty" {
		t.Errorf("unexpected columns %v", cols)
	}
	if len(rows) != 1 || rows[0][0] != "Ana Silva" || rows[0][1] != "NULL" {
		t.Errorf("unexpected rows %v", rows)
	}
}

func TestPlaceholders(t *testing.T) {
	if got := placeholders(3); got != "?,?,?" {
		t.Errorf("placeholders(3) = %q", got)
	}
	if got := placeholders(1); got != "?" {
		t.Errorf("placeholders(1) = %q", got)
	}
}
