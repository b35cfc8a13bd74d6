package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/pable/wintracker/internal/model"
	"github.com/pable/wintracker/internal/validation"
)

type createMatchRequest struct {
	OpponentName string `json:"opponent_name"`
	Wins         *int   `json:"wins"`
	Losses       *int   `json:"losses"`
}

type renameRequest struct {
	OpponentName string `json:"opponent_name"`
}

type deleteMatchesRequest struct {
	IDs []int64 `json:"ids"`
}

func (h *handler) listMatches(c *fiber.Ctx) error {
	u, err := h.userFromParam(c)
	if err != nil {
		return err
	}
	matches, err := h.store.ListMatches(u.ID)
	if err != nil {
		return err
	}
	if matches == nil {
		matches = []model.Match{}
	}
	return c.JSON(matches)
}

func (h *handler) createMatch(c *fiber.Ctx) error {
	u, err := h.userFromParam(c)
	if err != nil {
		return err
	}

	var req createMatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	create := model.CreateMatchRequest{
		UserID:       u.ID,
		OpponentName: validation.SanitizeName(req.OpponentName),
		Wins:         req.Wins,
		Losses:       req.Losses,
	}
	if err := validation.ValidateCounts(create.WinsOrZero(), create.LossesOrZero()); err != nil {
		return badRequest(err)
	}

	existing, err := h.store.ListMatches(u.ID)
	if err != nil {
		return err
	}
	if err := validation.NewDuplicateChecker(existing).Check(create.OpponentName); err != nil {
		return checkError(err)
	}

	m, err := h.store.CreateMatch(create)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

func (h *handler) updateMatch(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req model.UpdateMatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validation.ValidateCounts(req.Wins, req.Losses); err != nil {
		return badRequest(err)
	}

	m, err := h.store.UpdateMatch(id, req)
	if err != nil {
		return notFound(err, "match not found")
	}
	return c.JSON(m)
}

func (h *handler) renameOpponent(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req renameRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	name := validation.SanitizeName(req.OpponentName)

	current, err := h.store.GetMatch(id)
	if err != nil {
		return err
	}
	if current == nil {
		return fiber.NewError(fiber.StatusNotFound, "match not found")
	}
	siblings, err := h.store.ListMatches(current.UserID)
	if err != nil {
		return err
	}
	if err := validation.NewDuplicateChecker(siblings).CheckRename(id, name); err != nil {
		return checkError(err)
	}

	m, err := h.store.RenameOpponent(id, name)
	if err != nil {
		return notFound(err, "match not found")
	}
	return c.JSON(m)
}

func (h *handler) deleteMatch(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.store.DeleteMatch(id); err != nil {
		return notFound(err, "match not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) deleteMatches(c *fiber.Ctx) error {
	var req deleteMatchesRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.store.DeleteMatches(req.IDs); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// checkError maps a duplicate-checker error to 409 or 400.
func checkError(err error) error {
	if errors.Is(err, validation.ErrDuplicateOpponent) {
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return badRequest(err)
}

func notFound(err error, msg string) error {
	if errors.Is(err, model.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, msg)
	}
	return err
}
