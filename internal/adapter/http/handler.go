package http

import (
	"encoding/json"
	"fmt"
	"strings"

	"cv-generator/internal/adapter/http/presenter"
	repo "cv-generator/internal/adapter/repository"
	"cv-generator/internal/domain"
	"cv-generator/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
)

const (
	defaultOutname = "CV"
	maxOutname     = 100
)

type Options struct {
	MaxItemsPerSection int
	ExportPrefix       string
	MaxUploadBytes     int
}

// Handler serves the CV API. The document of each request lives in that
// request's session; templates are shared.
type Handler struct {
	sessions  *session.Store
	templates *usecase.TemplateStore
	gen       *usecase.Generator
	opts      Options
	log       *zap.Logger
}

func NewHandler(sessions *session.Store, templates *usecase.TemplateStore, gen *usecase.Generator, opts Options, log *zap.Logger) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.ExportPrefix == "" {
		opts.ExportPrefix = "mi_cv"
	}
	return &Handler{sessions: sessions, templates: templates, gen: gen, opts: opts, log: log}
}

func (h *Handler) cv(c *fiber.Ctx) *usecase.CVService {
	docs := usecase.NewDocumentStore(repo.NewSessionStorage(h.sessions, c), h.log)
	return usecase.NewCVService(docs, h.opts.MaxItemsPerSection, h.log)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := presenter.StatusFor(err)
	fields := []zap.Field{
		zap.String("path", c.Path()),
		zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= fiber.StatusInternalServerError {
		h.log.Error("request failed", fields...)
	} else {
		h.log.Debug("request rejected", fields...)
	}
	return presenter.Fail(c, err)
}

func isJSON(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON)
}

// rawFields reads item input for s from a JSON object or a form. JSON arrays
// are accepted for list fields.
func rawFields(c *fiber.Ctx, s domain.Section) (domain.RawFields, error) {
	raw := domain.RawFields{}
	if isJSON(c) {
		var body map[string]any
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedJSON, err)
		}
		for k, v := range body {
			switch t := v.(type) {
			case nil:
			case string:
				raw[k] = t
			case []any:
				parts := make([]string, 0, len(t))
				for _, p := range t {
					parts = append(parts, fmt.Sprint(p))
				}
				raw[k] = strings.Join(parts, ",")
			default:
				raw[k] = fmt.Sprint(t)
			}
		}
		return raw, nil
	}
	for _, f := range s.Fields() {
		raw[f] = c.FormValue(f)
	}
	return raw, nil
}

// outname validates a requested download base name.
func outname(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return defaultOutname, nil
	}
	if n := len([]rune(v)); n > maxOutname {
		return "", domain.NewValidationError(fmt.Sprintf("outname cannot exceed %d characters", maxOutname))
	}
	return v, nil
}

// textFormat normalizes a requested text format to "md" or "txt".
func textFormat(v string) string {
	if strings.EqualFold(strings.TrimSpace(v), "md") {
		return "md"
	}
	return "txt"
}
