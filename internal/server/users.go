package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pable/wintracker/internal/validation"
)

type createUserRequest struct {
	Name string `json:"name"`
}

func (h *handler) createUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	name := validation.SanitizeName(req.Name)
	if err := validation.ValidateName(name); err != nil {
		return badRequest(err)
	}

	exists, err := h.store.UserExists(name)
	if err != nil {
		return err
	}
	if exists {
		return fiber.NewError(fiber.StatusConflict, "a user with this name already exists")
	}

	u, err := h.store.CreateUser(name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

// findUsers is the "login": ?name= looks a user up case-insensitively.
// Without a name it lists everyone.
func (h *handler) findUsers(c *fiber.Ctx) error {
	name := validation.SanitizeName(c.Query("name"))
	if name == "" {
		users, err := h.store.ListUsers()
		if err != nil {
			return err
		}
		if users == nil {
			return c.JSON([]any{})
		}
		return c.JSON(users)
	}

	u, err := h.store.GetUserByName(name)
	if err != nil {
		return err
	}
	if u == nil {
		return fiber.NewError(fiber.StatusNotFound, "user not found")
	}
	return c.JSON(u)
}

func (h *handler) getUser(c *fiber.Ctx) error {
	u, err := h.userFromParam(c)
	if err != nil {
		return err
	}
	return c.JSON(u)
}
