package http

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cv-generator/internal/adapter/http/presenter"
	"cv-generator/internal/domain"
	"cv-generator/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type renderRequest struct {
	Selection *domain.Selection `json:"selection"`
	Format    string            `json:"fmt"`
	Outname   string            `json:"outname"`
}

type pdfRequest struct {
	Outname       string          `json:"outname"`
	SelectionData json.RawMessage `json:"selection_data"`
}

type previewResponse struct {
	Format  string `json:"fmt"`
	Content string `json:"content"`
}

func parseRenderRequest(c *fiber.Ctx) (renderRequest, error) {
	var req renderRequest
	if len(c.Body()) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return req, fmt.Errorf("%w: %v", domain.ErrMalformedJSON, err)
	}
	return req, nil
}

// Preview renders the whole document (GET) or a selection of it (POST).
func (h *Handler) Preview(c *fiber.Ctx) error {
	req := renderRequest{Format: c.Query("fmt")}
	if c.Method() == fiber.MethodPost {
		var err error
		if req, err = parseRenderRequest(c); err != nil {
			return h.fail(c, err)
		}
	}
	format := textFormat(req.Format)
	doc := h.gen.Prepare(h.cv(c).Document(c.UserContext()), req.Selection)
	out, err := h.gen.RenderText(doc, format)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, fiber.StatusOK, previewResponse{Format: format, Content: out})
}

func (h *Handler) ExportText(c *fiber.Ctx) error {
	req, err := parseRenderRequest(c)
	if err != nil {
		return h.fail(c, err)
	}
	name, err := outname(req.Outname)
	if err != nil {
		return h.fail(c, err)
	}
	format := textFormat(req.Format)
	doc := h.gen.Prepare(h.cv(c).Document(c.UserContext()), req.Selection)
	out, err := h.gen.RenderText(doc, format)
	if err != nil {
		return h.fail(c, err)
	}

	c.Attachment(name + "." + format)
	if format == "md" {
		c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	} else {
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	}
	return c.SendString(out)
}

// ExportPDF accepts outname and selection_data from the query (GET), a form
// or a JSON body (POST). A selection that cannot be read is ignored and the
// whole document is exported.
func (h *Handler) ExportPDF(c *fiber.Ctx) error {
	rawName, rawSel := c.Query("outname"), c.Query("selection_data")
	if c.Method() == fiber.MethodPost {
		if isJSON(c) {
			var req pdfRequest
			if err := json.Unmarshal(c.Body(), &req); err != nil {
				return h.fail(c, fmt.Errorf("%w: %v", domain.ErrMalformedJSON, err))
			}
			rawName, rawSel = req.Outname, selectionText(req.SelectionData)
		} else {
			rawName, rawSel = c.FormValue("outname"), c.FormValue("selection_data")
		}
	}
	name, err := outname(rawName)
	if err != nil {
		return h.fail(c, err)
	}

	var sel *domain.Selection
	if strings.TrimSpace(rawSel) != "" {
		var s domain.Selection
		if err := json.Unmarshal([]byte(rawSel), &s); err != nil {
			h.log.Warn("ignoring unreadable selection", zap.Error(err))
		} else {
			sel = &s
		}
	}

	doc := h.gen.Prepare(h.cv(c).Document(c.UserContext()), sel)
	pdf, err := h.gen.RenderPDF(c.UserContext(), doc)
	if err != nil {
		return h.fail(c, err)
	}
	c.Attachment(name + ".pdf")
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(pdf)
}

// selectionText accepts selection_data either as an embedded object or as a
// JSON-encoded string.
func selectionText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func (h *Handler) ExportJSON(c *fiber.Ctx) error {
	b, err := h.cv(c).Export(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	c.Attachment(usecase.ExportFilename(h.opts.ExportPrefix, time.Now()))
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(b)
}

// Import replaces the session document with an uploaded JSON file.
func (h *Handler) Import(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil || fh == nil {
		return presenter.Error(c, fiber.StatusBadRequest, "file is required")
	}
	if strings.ToLower(filepath.Ext(fh.Filename)) != ".json" {
		return presenter.Error(c, fiber.StatusBadRequest, "only .json files are accepted")
	}
	if fh.Size == 0 {
		return presenter.Error(c, fiber.StatusBadRequest, "uploaded file is empty")
	}
	if fh.Size > int64(h.opts.MaxUploadBytes) {
		return presenter.Error(c, fiber.StatusRequestEntityTooLarge, "uploaded file is too large")
	}
	f, err := fh.Open()
	if err != nil {
		return presenter.Error(c, fiber.StatusBadRequest, "failed to open uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(h.opts.MaxUploadBytes)+1))
	if err != nil {
		return presenter.Error(c, fiber.StatusBadRequest, "failed to read uploaded file")
	}
	if len(data) > h.opts.MaxUploadBytes {
		return presenter.Error(c, fiber.StatusRequestEntityTooLarge, "uploaded file is too large")
	}

	doc, err := h.cv(c).Import(c.UserContext(), data)
	if err != nil {
		return h.fail(c, err)
	}
	h.log.Info("cv import accepted", zap.String("file", fh.Filename), zap.Int("bytes", len(data)))
	return presenter.JSON(c, fiber.StatusOK, doc)
}
