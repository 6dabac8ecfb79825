package http

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"cv-generator/internal/adapter/http/presenter"
	"cv-generator/internal/domain"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) ListTemplates(c *fiber.Ctx) error {
	return presenter.JSON(c, fiber.StatusOK, h.templates.List(c.UserContext()))
}

func (h *Handler) GetTemplate(c *fiber.Ctx) error {
	name, err := templateName(c)
	if err != nil {
		return h.fail(c, err)
	}
	tpl, err := h.templates.Get(c.UserContext(), name)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, fiber.StatusOK, tpl)
}

// SaveTemplate creates a template or overwrites the one with the same name.
func (h *Handler) SaveTemplate(c *fiber.Ctx) error {
	var tpl domain.Template
	if err := json.Unmarshal(c.Body(), &tpl); err != nil {
		return h.fail(c, fmt.Errorf("%w: %v", domain.ErrMalformedJSON, err))
	}
	if tpl.Created == "" {
		tpl.Created = time.Now().Format(time.RFC3339)
	}
	saved, err := h.templates.Put(c.UserContext(), tpl)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, fiber.StatusCreated, saved)
}

func (h *Handler) DeleteTemplate(c *fiber.Ctx) error {
	name, err := templateName(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.templates.Delete(c.UserContext(), name); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// templateName returns the decoded :name route parameter.
func templateName(c *fiber.Ctx) (string, error) {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return "", fmt.Errorf("%w %q", domain.ErrTemplateNotFound, c.Params("name"))
	}
	return name, nil
}
