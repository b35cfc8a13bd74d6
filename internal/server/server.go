// Package server exposes users, matches and reports over HTTP.
package server

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/pable/wintracker/internal/model"
	"github.com/pable/wintracker/internal/report"
)

// Store is the persistence the API needs. Both the SQLite and the hosted
// store satisfy it.
type Store interface {
	CreateUser(name string) (*model.User, error)
	GetUser(id int64) (*model.User, error)
	GetUserByName(name string) (*model.User, error)
	UserExists(name string) (bool, error)
	ListUsers() ([]model.User, error)

	ListMatches(userID int64) ([]model.Match, error)
	GetMatch(id int64) (*model.Match, error)
	CreateMatch(req model.CreateMatchRequest) (*model.Match, error)
	UpdateMatch(id int64, req model.UpdateMatchRequest) (*model.Match, error)
	RenameOpponent(id int64, opponentName string) (*model.Match, error)
	DeleteMatch(id int64) error
	DeleteMatches(ids []int64) error
}

type handler struct {
	store Store
	gen   *report.Generator
	log   *slog.Logger
}

// New builds the fiber app with every route registered.
func New(store Store, gen *report.Generator, logger *slog.Logger) *fiber.App {
	if logger == nil {
		logger = slog.Default()
	}
	if gen == nil {
		gen = &report.Generator{}
	}
	h := &handler{store: store, gen: gen, log: logger}

	app := fiber.New(fiber.Config{
		AppName:               "wintracker",
		DisableStartupMessage: true,
		ErrorHandler:          h.errorHandler,
	})
	app.Use(recover.New())
	app.Use(h.requestLogger)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/users", h.createUser)
	app.Get("/users", h.findUsers)
	app.Get("/users/:id", h.getUser)
	app.Get("/users/:id/matches", h.listMatches)
	app.Post("/users/:id/matches", h.createMatch)
	app.Get("/users/:id/report", h.reportJSON)
	app.Get("/users/:id/report.png", h.reportPNG)
	app.Get("/users/:id/report/view", h.reportView)

	app.Post("/matches/delete", h.deleteMatches)
	app.Put("/matches/:id", h.updateMatch)
	app.Patch("/matches/:id/opponent", h.renameOpponent)
	app.Delete("/matches/:id", h.deleteMatch)

	return app
}

func (h *handler) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	} else if err != nil {
		status = fiber.StatusInternalServerError
	}
	h.log.Info("request", "tag", "http",
		"method", c.Method(), "path", c.Path(), "status", status, "duration", time.Since(start))
	return err
}

// errorHandler renders every error as {"error": message}. Errors that are
// not *fiber.Error are logged and hidden behind a 500.
func (h *handler) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		h.log.Error("request failed", "tag", "http", "method", c.Method(), "path", c.Path(), "err", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

func idParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// userFromParam loads the user named by :id, or answers 404.
func (h *handler) userFromParam(c *fiber.Ctx) (*model.User, error) {
	id, err := idParam(c)
	if err != nil {
		return nil, err
	}
	u, err := h.store.GetUser(id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "user not found")
	}
	return u, nil
}

func badRequest(err error) error {
	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}
