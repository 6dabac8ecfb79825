package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// NewApp builds the fiber app with middleware and every route registered.
func NewApp(h *Handler, bodyLimit int) *fiber.App {
	cfg := fiber.Config{DisableStartupMessage: true}
	if bodyLimit > 0 {
		// multipart overhead on top of the file itself
		cfg.BodyLimit = bodyLimit + 1<<20
	}
	app := fiber.New(cfg)
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	Register(app, h)
	return app
}

// Register wires all HTTP routes onto the given Fiber app.
func Register(app *fiber.App, h *Handler) {
	v1 := app.Group("/api").Group("/v1")

	v1.Get("/health", h.Health)
	v1.Get("/ready", h.Ready)

	cv := v1.Group("/cv")
	cv.Get("/", h.GetCV)
	cv.Delete("/", h.ClearCV)
	cv.Put("/contact", h.UpdateContact)
	cv.Put("/summary", h.UpdateSummary)

	sections := v1.Group("/sections")
	sections.Get("/:section", h.ListSection)
	sections.Post("/:section", h.AddItem)
	sections.Put("/:section/:index", h.EditItem)
	sections.Delete("/:section/:index", h.DeleteItem)

	tpl := v1.Group("/templates")
	tpl.Get("/", h.ListTemplates)
	tpl.Get("/:name", h.GetTemplate)
	tpl.Post("/", h.SaveTemplate)
	tpl.Delete("/:name", h.DeleteTemplate)

	v1.Get("/preview", h.Preview)
	v1.Post("/preview", h.Preview)

	export := v1.Group("/export")
	export.Post("/text", h.ExportText)
	export.Get("/pdf", h.ExportPDF)
	export.Post("/pdf", h.ExportPDF)
	export.Get("/json", h.ExportJSON)

	v1.Post("/import", h.Import)
}
