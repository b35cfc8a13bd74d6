package server

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/pable/wintracker/internal/model"
	"github.com/pable/wintracker/internal/render"
	"github.com/pable/wintracker/internal/report"
)

func (h *handler) loadMatches(c *fiber.Ctx) (*model.User, []model.Match, error) {
	u, err := h.userFromParam(c)
	if err != nil {
		return nil, nil, err
	}
	matches, err := h.store.ListMatches(u.ID)
	if err != nil {
		return nil, nil, err
	}
	return u, matches, nil
}

func (h *handler) reportJSON(c *fiber.Ctx) error {
	u, matches, err := h.loadMatches(c)
	if err != nil {
		return err
	}
	data, err := report.Build(matches, u.Name)
	if err != nil {
		return reportError(err)
	}
	return c.JSON(data)
}

func (h *handler) generate(c *fiber.Ctx) (*report.Artifact, error) {
	u, matches, err := h.loadMatches(c)
	if err != nil {
		return nil, err
	}
	a, err := h.gen.Generate(matches, u.Name)
	if err != nil {
		return nil, reportError(err)
	}
	h.log.Info("report generated", "tag", "report", "user", u.Name, "id", a.ID, "bytes", len(a.PNG))
	return a, nil
}

func (h *handler) reportPNG(c *fiber.Ctx) error {
	a, err := h.generate(c)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", a.Filename()))
	c.Set("X-Report-ID", a.ID)
	c.Type("png")
	return c.Send(a.PNG)
}

func (h *handler) reportView(c *fiber.Ctx) error {
	a, err := h.generate(c)
	if err != nil {
		return err
	}
	page, err := report.ViewerHTML(a.DataURI())
	if err != nil {
		return err
	}
	c.Set("X-Report-ID", a.ID)
	c.Type("html", "utf-8")
	return c.Send(page)
}

// reportError maps refusals to 422 and template failures to 500.
func reportError(err error) error {
	switch {
	case errors.Is(err, report.ErrEmptyInput), errors.Is(err, report.ErrInsufficientData):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, render.ErrTemplateLoad):
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return err
}
