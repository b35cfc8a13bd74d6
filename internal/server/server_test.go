package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pable/wintracker/internal/model"
	"github.com/pable/wintracker/internal/report"
	"github.com/pable/wintracker/internal/storage"
)

func newTestApp(t *testing.T) (*fiber.App, *storage.DB) {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	gen := &report.Generator{
		Template: image.NewNRGBA(image.Rect(0, 0, 240, 160)),
		Now:      func() time.Time { return time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC) },
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(db, gen, logger), db
}

func do(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want %d (body %s)", resp.StatusCode, want, b)
	}
}

func createUser(t *testing.T, app *fiber.App, name string) model.User {
	t.Helper()
	resp := do(t, app, http.MethodPost, "/users", map[string]string{"name": name})
	expectStatus(t, resp, fiber.StatusCreated)
	return decode[model.User](t, resp)
}

func addMatch(t *testing.T, app *fiber.App, userID int64, opponent string, wins, losses int) model.Match {
	t.Helper()
	resp := do(t, app, http.MethodPost, fmt.Sprintf("/users/%d/matches", userID),
		map[string]any{"opponent_name": opponent, "wins": wins, "losses": losses})
	expectStatus(t, resp, fiber.StatusCreated)
	return decode[model.Match](t, resp)
}

func TestHealthz(t *testing.T) {
	app, _ := newTestApp(t)
	resp := do(t, app, http.MethodGet, "/healthz", nil)
	expectStatus(t, resp, fiber.StatusOK)
}

func TestCreateUserAndLogin(t *testing.T) {
	app, _ := newTestApp(t)

	u := createUser(t, app, "  Maria   Souza ")
	if u.Name != "Maria Souza" {
		t.Errorf("expected sanitized name, got %q", u.Name)
	}

	resp := do(t, app, http.MethodGet, "/users?name=maria%20souza", nil)
	expectStatus(t, resp, fiber.StatusOK)
	if got := decode[model.User](t, resp); got.ID != u.ID {
		t.Errorf("login returned user %d, want %d", got.ID, u.ID)
	}

	resp = do(t, app, http.MethodGet, "/users?name=Nobody%20Else", nil)
	expectStatus(t, resp, fiber.StatusNotFound)

	resp = do(t, app, http.MethodGet, "/users", nil)
	expectStatus(t, resp, fiber.StatusOK)
	if users := decode[[]model.User](t, resp); len(users) != 1 {
		t.Errorf("expected 1 user in list, got %d", len(users))
	}
}

func TestCreateUserValidation(t *testing.T) {
	app, _ := newTestApp(t)

	resp := do(t, app, http.MethodPost, "/users", map[string]string{"name": "Maria"})
	expectStatus(t, resp, fiber.StatusBadRequest)

	resp = do(t, app, http.MethodPost, "/users", map[string]string{"name": "   "})
	expectStatus(t, resp, fiber.StatusBadRequest)

	createUser(t, app, "Maria Souza")
	resp = do(t, app, http.MethodPost, "/users", map[string]string{"name": "MARIA SOUZA"})
	expectStatus(t, resp, fiber.StatusConflict)
}

func TestMatchCRUD(t *testing.T) {
	app, _ := newTestApp(t)
	u := createUser(t, app, "Maria Souza")

	m := addMatch(t, app, u.ID, "Ana Silva", 2, 1)
	if m.UserID != u.ID || m.Wins != 2 || m.Losses != 1 {
		t.Errorf("unexpected match %+v", m)
	}

	resp := do(t, app, http.MethodPost, fmt.Sprintf("/users/%d/matches", u.ID), map[string]any{"opponent_name": " ana SILVA "})
	expectStatus(t, resp, fiber.StatusConflict)

	resp = do(t, app, http.MethodPost, fmt.Sprintf("/users/%d/matches", u.ID), map[string]any{"opponent_name": "Bruno Costa", "wins": -1})
	expectStatus(t, resp, fiber.StatusBadRequest)

	resp = do(t, app, http.MethodPut, fmt.Sprintf("/matches/%d", m.ID), map[string]int{"wins": 7, "losses": 0})
	expectStatus(t, resp, fiber.StatusOK)
	if got := decode[model.Match](t, resp); got.Wins != 7 || got.Losses != 0 {
		t.Errorf("update returned %d/%d", got.Wins, got.Losses)
	}

	resp = do(t, app, http.MethodPut, "/matches/9999", map[string]int{"wins": 1, "losses": 1})
	expectStatus(t, resp, fiber.StatusNotFound)

	other := addMatch(t, app, u.ID, "Bruno Costa", 0, 0)
	resp = do(t, app, http.MethodPatch, fmt.Sprintf("/matches/%d/opponent", other.ID), map[string]string{"opponent_name": "ANA SILVA"})
	expectStatus(t, resp, fiber.StatusConflict)

	resp = do(t, app, http.MethodPatch, fmt.Sprintf("/matches/%d/opponent", m.ID), map[string]string{"opponent_name": "ana silva"})
	expectStatus(t, resp, fiber.StatusOK)
	if got := decode[model.Match](t, resp); got.OpponentName != "ana silva" {
		t.Errorf("rename returned %q", got.OpponentName)
	}

	resp = do(t, app, http.MethodDelete, fmt.Sprintf("/matches/%d", other.ID), nil)
	expectStatus(t, resp, fiber.StatusNoContent)
	resp = do(t, app, http.MethodDelete, fmt.Sprintf("/matches/%d", other.ID), nil)
	expectStatus(t, resp, fiber.StatusNotFound)

	resp = do(t, app, http.MethodGet, fmt.Sprintf("/users/%d/matches", u.ID), nil)
	expectStatus(t, resp, fiber.StatusOK)
	if list := decode[[]model.Match](t, resp); len(list) != 1 {
		t.Errorf("expected 1 match left, got %d", len(list))
	}
}

func TestOpponentNamesAreSanitized(t *testing.T) {
	app, _ := newTestApp(t)
	u := createUser(t, app, "Maria Souza")

	m := addMatch(t, app, u.ID, "  Ana \t Silva ", 0, 0)
	if m.OpponentName != "Ana Silva" {
		t.Errorf("created opponent %q, want %q", m.OpponentName, "Ana Silva")
	}

	resp := do(t, app, http.MethodPost, fmt.Sprintf("/users/%d/matches", u.ID), map[string]any{"opponent_name": "Ana  Silva"})
	expectStatus(t, resp, fiber.StatusConflict)

	other := addMatch(t, app, u.ID, "Bruno Costa", 0, 0)
	resp = do(t, app, http.MethodPatch, fmt.Sprintf("/matches/%d/opponent", other.ID), map[string]string{"opponent_name": "ana   silva"})
	expectStatus(t, resp, fiber.StatusConflict)

	resp = do(t, app, http.MethodPatch, fmt.Sprintf("/matches/%d/opponent", other.ID), map[string]string{"opponent_name": " Bruno   Lima "})
	expectStatus(t, resp, fiber.StatusOK)
	if got := decode[model.Match](t, resp); got.OpponentName != "Bruno Lima" {
		t.Errorf("rename returned %q, want %q", got.OpponentName, "Bruno Lima")
	}
}

func TestDeleteMatchesBulk(t *testing.T) {
	app, db := newTestApp(t)
	u := createUser(t, app, "Maria Souza")
	a := addMatch(t, app, u.ID, "Ana Silva", 1, 0)
	b := addMatch(t, app, u.ID, "Bruno Costa", 1, 0)

	resp := do(t, app, http.MethodPost, "/matches/delete", map[string][]int64{"ids": {a.ID, b.ID}})
	expectStatus(t, resp, fiber.StatusNoContent)

	left, err := db.ListMatches(u.ID)
	if err != nil {
		t.Fatalf("ListMatches: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("expected no matches, got %d", len(left))
	}
}

func TestUnknownUserAndBadID(t *testing.T) {
	app, _ := newTestApp(t)
	expectStatus(t, do(t, app, http.MethodGet, "/users/42/matches", nil), fiber.StatusNotFound)
	expectStatus(t, do(t, app, http.MethodGet, "/users/abc/matches", nil), fiber.StatusBadRequest)
}

func TestReportRefusals(t *testing.T) {
	app, _ := newTestApp(t)
	u := createUser(t, app, "Maria Souza")

	resp := do(t, app, http.MethodGet, fmt.Sprintf("/users/%d/report.png", u.ID), nil)
	expectStatus(t, resp, fiber.StatusUnprocessableEntity)
	if body := decode[map[string]string](t, resp); !strings.Contains(body["error"], "no matches") {
		t.Errorf("unexpected error body %v", body)
	}

	addMatch(t, app, u.ID, "Ana Silva", 2, 1)
	resp = do(t, app, http.MethodGet, fmt.Sprintf("/users/%d/report", u.ID), nil)
	expectStatus(t, resp, fiber.StatusUnprocessableEntity)
	if body := decode[map[string]string](t, resp); !strings.Contains(body["error"], "insufficient data") {
		t.Errorf("unexpected error body %v", body)
	}
}

func seedReport(t *testing.T, app *fiber.App) model.User {
	t.Helper()
	u := createUser(t, app, "Maria Souza")
	addMatch(t, app, u.ID, "Ana Silva", 5, 1)
	addMatch(t, app, u.ID, "Bruno Costa", 2, 2)
	addMatch(t, app, u.ID, "Carla Dias", 1, 3)
	return u
}

func TestReportJSON(t *testing.T) {
	app, _ := newTestApp(t)
	u := seedReport(t, app)

	resp := do(t, app, http.MethodGet, fmt.Sprintf("/users/%d/report", u.ID), nil)
	expectStatus(t, resp, fiber.StatusOK)
	data := decode[model.ReportData](t, resp)
	if data.UserName != "Maria Souza" || !data.HasEnoughDataForWins || !data.HasEnoughDataForLosses {
		t.Errorf("unexpected report data %+v", data)
	}
	if len(data.WinRankings) != 3 || data.WinRankings[0].Name != "Ana Silva" {
		t.Errorf("unexpected win rankings %+v", data.WinRankings)
	}
}

func TestReportPNG(t *testing.T) {
	app, _ := newTestApp(t)
	u := seedReport(t, app)

	resp := do(t, app, http.MethodGet, fmt.Sprintf("/users/%d/report.png", u.ID), nil)
	expectStatus(t, resp, fiber.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != "attachment; filename=wintracker-report-2025-03-09.png" {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if resp.Header.Get("X-Report-ID") == "" {
		t.Error("expected X-Report-ID header")
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds().Dx() != 240 {
		t.Errorf("unexpected width %d", img.Bounds().Dx())
	}
}

func TestReportView(t *testing.T) {
	app, _ := newTestApp(t)
	u := seedReport(t, app)

	resp := do(t, app, http.MethodGet, fmt.Sprintf("/users/%d/report/view", u.ID), nil)
	expectStatus(t, resp, fiber.StatusOK)
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `src="data:image/png;base64,`) {
		t.Error("expected embedded data uri in viewer page")
	}
}
