package http

import (
	"fmt"

	"cv-generator/internal/adapter/http/presenter"
	"cv-generator/internal/domain"
	"cv-generator/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetCV(c *fiber.Ctx) error {
	return presenter.JSON(c, fiber.StatusOK, h.cv(c).Document(c.UserContext()))
}

func (h *Handler) ClearCV(c *fiber.Ctx) error {
	if err := h.cv(c).Clear(c.UserContext()); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) UpdateContact(c *fiber.Ctx) error {
	var form usecase.ContactForm
	if err := c.BodyParser(&form); err != nil {
		return h.fail(c, fmt.Errorf("%w: %v", domain.ErrMalformedJSON, err))
	}
	contact, err := h.cv(c).UpdateContact(c.UserContext(), form)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, fiber.StatusOK, contact)
}

type summaryRequest struct {
	Summary string `json:"summary" form:"summary"`
}

func (h *Handler) UpdateSummary(c *fiber.Ctx) error {
	var req summaryRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, fmt.Errorf("%w: %v", domain.ErrMalformedJSON, err))
	}
	summary, err := h.cv(c).UpdateSummary(c.UserContext(), req.Summary)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, fiber.StatusOK, summaryRequest{Summary: summary})
}

func (h *Handler) ListSection(c *fiber.Ctx) error {
	items, err := h.cv(c).List(c.UserContext(), c.Params("section"))
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, fiber.StatusOK, items)
}

func (h *Handler) AddItem(c *fiber.Ctx) error {
	sec, err := domain.ParseSection(c.Params("section"))
	if err != nil {
		return h.fail(c, err)
	}
	raw, err := rawFields(c, sec)
	if err != nil {
		return h.fail(c, err)
	}
	it, err := h.cv(c).Add(c.UserContext(), string(sec), raw)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, fiber.StatusCreated, it)
}

func (h *Handler) EditItem(c *fiber.Ctx) error {
	sec, err := domain.ParseSection(c.Params("section"))
	if err != nil {
		return h.fail(c, err)
	}
	index, err := c.ParamsInt("index")
	if err != nil {
		return h.fail(c, fmt.Errorf("%w: %s[%s]", domain.ErrItemNotFound, sec, c.Params("index")))
	}
	raw, err := rawFields(c, sec)
	if err != nil {
		return h.fail(c, err)
	}
	it, err := h.cv(c).Edit(c.UserContext(), string(sec), index, raw)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, fiber.StatusOK, domain.IndexedItem{Index: index, Item: it})
}

func (h *Handler) DeleteItem(c *fiber.Ctx) error {
	sec, err := domain.ParseSection(c.Params("section"))
	if err != nil {
		return h.fail(c, err)
	}
	index, err := c.ParamsInt("index")
	if err != nil {
		return h.fail(c, fmt.Errorf("%w: %s[%s]", domain.ErrItemNotFound, sec, c.Params("index")))
	}
	if err := h.cv(c).Delete(c.UserContext(), string(sec), index); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
