package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	repo "cv-generator/internal/adapter/repository"
	"cv-generator/internal/domain"
	"cv-generator/internal/render"
	"cv-generator/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRasterizer struct {
	err  error
	html string
}

func (f *fakeRasterizer) RenderHTMLToPDF(_ context.Context, html string) ([]byte, error) {
	f.html = html
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

// client replays the session cookie the way a browser would.
type client struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func newClient(t *testing.T, app *fiber.App) *client {
	return &client{t: t, app: app, cookies: map[string]string{}}
}

func (cl *client) do(method, path, contentType string, body io.Reader) (*httpResponse, error) {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(fiber.HeaderContentType, contentType)
	}
	for k, v := range cl.cookies {
		req.Header.Add(fiber.HeaderCookie, k+"="+v)
	}
	resp, err := cl.app.Test(req, -1)
	if err != nil {
		return nil, err
	}
	for _, ck := range resp.Cookies() {
		cl.cookies[ck.Name] = ck.Value
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &httpResponse{Status: resp.StatusCode, Header: resp.Header.Get, Body: b}, nil
}

type httpResponse struct {
	Status int
	Header func(string) string
	Body   []byte
}

func (cl *client) json(method, path string, body any) *httpResponse {
	cl.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(cl.t, err)
		r = bytes.NewReader(b)
	}
	resp, err := cl.do(method, path, fiber.MIMEApplicationJSON, r)
	require.NoError(cl.t, err)
	return resp
}

type testEnv struct {
	app    *fiber.App
	raster *fakeRasterizer
}

func newTestEnv(t *testing.T, ceiling int) *testEnv {
	t.Helper()
	log := zap.NewNop()
	r, err := render.New(render.Options{Language: "en"})
	require.NoError(t, err)
	raster := &fakeRasterizer{}
	gen := usecase.NewGenerator(r, raster, usecase.GeneratorOptions{Attempts: 1}, log)
	templates := usecase.NewTemplateStore(repo.NewMemoryStorage(), log)
	h := NewHandler(session.New(), templates, gen, Options{
		MaxItemsPerSection: ceiling,
		ExportPrefix:       "mi_cv",
		MaxUploadBytes:     1 << 10,
	}, log)
	return &testEnv{app: NewApp(h, 1<<10), raster: raster}
}

func decode[T any](t *testing.T, resp *httpResponse) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Body, &v), string(resp.Body))
	return v
}

func TestSectionCRUD(t *testing.T) {
	cl := newClient(t, newTestEnv(t, 100).app)

	resp := cl.json(fiber.MethodPost, "/api/v1/sections/skills", map[string]any{"name": " Go ", "level": "expert", "tags": "backend, cli"})
	require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))
	added := decode[domain.Item](t, resp)
	assert.Equal(t, "Go", added.Str("name"))
	assert.Equal(t, []string{"backend", "cli"}, added.List("tags"))

	resp = cl.json(fiber.MethodPost, "/api/v1/sections/skills", map[string]any{"name": "SQL", "tags": []string{"db"}})
	require.Equal(t, fiber.StatusCreated, resp.Status)

	resp = cl.json(fiber.MethodGet, "/api/v1/sections/skills", nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	items := decode[[]domain.IndexedItem](t, resp)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[1].Index)
	assert.Equal(t, []string{"db"}, items[1].Item.List("tags"))

	resp = cl.json(fiber.MethodPut, "/api/v1/sections/skills/0", map[string]any{"name": "Golang"})
	require.Equal(t, fiber.StatusOK, resp.Status)
	edited := decode[domain.IndexedItem](t, resp)
	assert.Equal(t, "Golang", edited.Item.Str("name"))
	assert.Equal(t, "", edited.Item.Str("level"), "every configured field is overwritten")

	resp = cl.json(fiber.MethodDelete, "/api/v1/sections/skills/0", nil)
	assert.Equal(t, fiber.StatusNoContent, resp.Status)

	items = decode[[]domain.IndexedItem](t, cl.json(fiber.MethodGet, "/api/v1/sections/skills", nil))
	require.Len(t, items, 1)
	assert.Equal(t, "SQL", items[0].Item.Str("name"))
	assert.Equal(t, 0, items[0].Index)
}

func TestSectionErrors(t *testing.T) {
	cl := newClient(t, newTestEnv(t, 1).app)

	assert.Equal(t, fiber.StatusNotFound, cl.json(fiber.MethodGet, "/api/v1/sections/hobbies", nil).Status)
	assert.Equal(t, fiber.StatusNotFound, cl.json(fiber.MethodPost, "/api/v1/sections/hobbies", map[string]any{}).Status)
	assert.Equal(t, fiber.StatusNotFound, cl.json(fiber.MethodPut, "/api/v1/sections/skills/0", map[string]any{}).Status)
	assert.Equal(t, fiber.StatusNotFound, cl.json(fiber.MethodDelete, "/api/v1/sections/skills/abc", nil).Status)

	require.Equal(t, fiber.StatusCreated, cl.json(fiber.MethodPost, "/api/v1/sections/projects", map[string]any{"title": "p"}).Status)
	assert.Equal(t, fiber.StatusConflict, cl.json(fiber.MethodPost, "/api/v1/sections/projects", map[string]any{"title": "q"}).Status)

	resp, err := cl.do(fiber.MethodPost, "/api/v1/sections/projects", fiber.MIMEApplicationJSON, strings.NewReader(`{"title":`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.Status)
}

func TestFormEncodedItem(t *testing.T) {
	cl := newClient(t, newTestEnv(t, 100).app)
	resp, err := cl.do(fiber.MethodPost, "/api/v1/sections/courses", fiber.MIMEApplicationForm,
		strings.NewReader("name=Kubernetes&issuer=CNCF&tags=k8s,+ops"))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))
	it := decode[domain.Item](t, resp)
	assert.Equal(t, "CNCF", it.Str("issuer"))
	assert.Equal(t, []string{"k8s", "ops"}, it.List("tags"))
	assert.Equal(t, "", it.Str("hours"))
}

func TestContactAndSummary(t *testing.T) {
	cl := newClient(t, newTestEnv(t, 100).app)

	resp := cl.json(fiber.MethodPut, "/api/v1/cv/contact", map[string]string{"name": "A", "email": "nope", "links": "ftp://x"})
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.Status)
	body := decode[map[string]any](t, resp)
	assert.Len(t, body["errors"], 3)

	resp = cl.json(fiber.MethodPut, "/api/v1/cv/contact", map[string]string{
		"name": "Ana Pérez", "email": "ana@example.com", "links": "https://github.com/ana, https://ana.dev",
	})
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
	contact := decode[domain.Contact](t, resp)
	assert.Equal(t, []string{"https://github.com/ana", "https://ana.dev"}, contact.Links)

	resp = cl.json(fiber.MethodPut, "/api/v1/cv/summary", map[string]string{"summary": strings.Repeat("x", 2001)})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.Status)
	resp = cl.json(fiber.MethodPut, "/api/v1/cv/summary", map[string]string{"summary": "  Gopher  "})
	require.Equal(t, fiber.StatusOK, resp.Status)

	doc := decode[domain.Document](t, cl.json(fiber.MethodGet, "/api/v1/cv", nil))
	assert.Equal(t, "Ana Pérez", doc.Contact.Name)
	assert.Equal(t, "Gopher", doc.Summary)

	assert.Equal(t, fiber.StatusNoContent, cl.json(fiber.MethodDelete, "/api/v1/cv", nil).Status)
	doc = decode[domain.Document](t, cl.json(fiber.MethodGet, "/api/v1/cv", nil))
	assert.Equal(t, *domain.Default(), doc)
}

func TestSessionsAreIsolated(t *testing.T) {
	env := newTestEnv(t, 100)
	alice, bob := newClient(t, env.app), newClient(t, env.app)

	require.Equal(t, fiber.StatusCreated, alice.json(fiber.MethodPost, "/api/v1/sections/skills", map[string]any{"name": "Go"}).Status)

	assert.Len(t, decode[[]domain.IndexedItem](t, alice.json(fiber.MethodGet, "/api/v1/sections/skills", nil)), 1)
	assert.Empty(t, decode[[]domain.IndexedItem](t, bob.json(fiber.MethodGet, "/api/v1/sections/skills", nil)))
}

func TestTemplatesAreShared(t *testing.T) {
	env := newTestEnv(t, 100)
	a, b := newClient(t, env.app), newClient(t, env.app)

	resp := a.json(fiber.MethodPost, "/api/v1/templates", map[string]any{
		"name":      " short ",
		"selection": map[string]any{"include_summary": false, "skills": map[string]any{"selected": []int{0}}},
	})
	require.Equal(t, fiber.StatusCreated, resp.Status, string(resp.Body))
	saved := decode[domain.Template](t, resp)
	assert.Equal(t, "short", saved.Name)
	assert.NotEmpty(t, saved.Created)

	list := decode[[]domain.Template](t, b.json(fiber.MethodGet, "/api/v1/templates", nil))
	require.Len(t, list, 1)
	assert.False(t, list[0].Selection.SummaryIncluded())

	assert.Equal(t, fiber.StatusOK, b.json(fiber.MethodGet, "/api/v1/templates/short", nil).Status)
	assert.Equal(t, fiber.StatusUnprocessableEntity, b.json(fiber.MethodPost, "/api/v1/templates", map[string]any{"name": "  "}).Status)
	assert.Equal(t, fiber.StatusNoContent, b.json(fiber.MethodDelete, "/api/v1/templates/short", nil).Status)
	assert.Equal(t, fiber.StatusNotFound, a.json(fiber.MethodGet, "/api/v1/templates/short", nil).Status)
	assert.Equal(t, fiber.StatusNotFound, a.json(fiber.MethodDelete, "/api/v1/templates/short", nil).Status)
}

func TestTemplateNamesAreDecoded(t *testing.T) {
	cl := newClient(t, newTestEnv(t, 100).app)

	for _, name := range []string{"Mi plantilla", "Diseño"} {
		require.Equal(t, fiber.StatusCreated, cl.json(fiber.MethodPost, "/api/v1/templates", map[string]any{"name": name}).Status)

		path := "/api/v1/templates/" + url.PathEscape(name)
		resp := cl.json(fiber.MethodGet, path, nil)
		require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
		assert.Equal(t, name, decode[domain.Template](t, resp).Name)

		assert.Equal(t, fiber.StatusNoContent, cl.json(fiber.MethodDelete, path, nil).Status)
		assert.Equal(t, fiber.StatusNotFound, cl.json(fiber.MethodGet, path, nil).Status)
	}
}

func seed(t *testing.T, cl *client) {
	t.Helper()
	require.Equal(t, fiber.StatusOK, cl.json(fiber.MethodPut, "/api/v1/cv/contact", map[string]string{"name": "Ana Pérez", "email": "ana@example.com"}).Status)
	require.Equal(t, fiber.StatusOK, cl.json(fiber.MethodPut, "/api/v1/cv/summary", map[string]string{"summary": "Gopher"}).Status)
	for _, name := range []string{"Go", "SQL"} {
		require.Equal(t, fiber.StatusCreated, cl.json(fiber.MethodPost, "/api/v1/sections/skills", map[string]any{"name": name}).Status)
	}
	for i := 0; i < 2; i++ {
		require.Equal(t, fiber.StatusCreated, cl.json(fiber.MethodPost, "/api/v1/sections/otros", map[string]any{"title": "Talk", "institution": "Meetup", "start": "2023"}).Status)
	}
}

func TestPreview(t *testing.T) {
	cl := newClient(t, newTestEnv(t, 100).app)
	seed(t, cl)

	resp := cl.json(fiber.MethodGet, "/api/v1/preview?fmt=md", nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	full := decode[previewResponse](t, resp)
	assert.Equal(t, "md", full.Format)
	assert.Contains(t, full.Content, "# Ana Pérez")
	assert.Contains(t, full.Content, "**SQL**")
	assert.Equal(t, 1, strings.Count(full.Content, "### Talk"), "otros are deduplicated")

	resp = cl.json(fiber.MethodPost, "/api/v1/preview", map[string]any{
		"fmt":       "txt",
		"selection": map[string]any{"include_summary": false, "skills": map[string]any{"selected": []int{1}}},
	})
	require.Equal(t, fiber.StatusOK, resp.Status)
	custom := decode[previewResponse](t, resp)
	assert.Equal(t, "txt", custom.Format)
	assert.Contains(t, custom.Content, "- SQL")
	assert.NotContains(t, custom.Content, "- Go")
	assert.NotContains(t, custom.Content, "Gopher")
}

func TestExportText(t *testing.T) {
	cl := newClient(t, newTestEnv(t, 100).app)
	seed(t, cl)

	resp := cl.json(fiber.MethodPost, "/api/v1/export/text", map[string]any{"fmt": "md", "outname": " mine "})
	require.Equal(t, fiber.StatusOK, resp.Status)
	assert.Contains(t, resp.Header(fiber.HeaderContentDisposition), `filename="mine.md"`)
	assert.Contains(t, resp.Header(fiber.HeaderContentType), "text/markdown")
	assert.Contains(t, string(resp.Body), "# Ana Pérez")

	resp = cl.json(fiber.MethodPost, "/api/v1/export/text", map[string]any{})
	assert.Contains(t, resp.Header(fiber.HeaderContentDisposition), `filename="CV.txt"`)

	resp = cl.json(fiber.MethodPost, "/api/v1/export/text", map[string]any{"outname": strings.Repeat("n", 101)})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.Status)
}

func TestExportPDF(t *testing.T) {
	env := newTestEnv(t, 100)
	cl := newClient(t, env.app)
	seed(t, cl)

	resp := cl.json(fiber.MethodGet, "/api/v1/export/pdf?outname=ana", nil)
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))
	assert.Equal(t, "application/pdf", resp.Header(fiber.HeaderContentType))
	assert.Contains(t, resp.Header(fiber.HeaderContentDisposition), `filename="ana.pdf"`)
	assert.True(t, bytes.HasPrefix(resp.Body, []byte("%PDF")))
	assert.Contains(t, env.raster.html, "SQL")

	resp, err := cl.do(fiber.MethodPost, "/api/v1/export/pdf", fiber.MIMEApplicationForm,
		strings.NewReader(`selection_data={"skills":{"selected":[0]}}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.Status)
	assert.Contains(t, resp.Header(fiber.HeaderContentDisposition), `filename="CV.pdf"`)
	assert.NotContains(t, env.raster.html, "SQL")

	resp, err = cl.do(fiber.MethodPost, "/api/v1/export/pdf", fiber.MIMEApplicationForm, strings.NewReader(`selection_data={broken`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.Status, "an unreadable selection is ignored")
	assert.Contains(t, env.raster.html, "SQL")

	resp = cl.json(fiber.MethodPost, "/api/v1/export/pdf", map[string]any{"selection_data": map[string]any{"skills": map[string]any{"selected": []int{1}}}})
	require.Equal(t, fiber.StatusOK, resp.Status)
	assert.NotContains(t, env.raster.html, "<strong>Go</strong>")

	env.raster.err = errors.New("chrome missing")
	resp = cl.json(fiber.MethodGet, "/api/v1/export/pdf", nil)
	assert.Equal(t, fiber.StatusBadGateway, resp.Status)
}

func uploadBody(t *testing.T, filename, content string) (string, io.Reader) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return w.FormDataContentType(), &buf
}

func TestExportAndImportJSON(t *testing.T) {
	env := newTestEnv(t, 100)
	src := newClient(t, env.app)
	seed(t, src)

	resp := src.json(fiber.MethodGet, "/api/v1/export/json", nil)
	require.Equal(t, fiber.StatusOK, resp.Status)
	assert.Regexp(t, `filename="mi_cv_\d{8}_\d{6}\.json"`, resp.Header(fiber.HeaderContentDisposition))
	exported := resp.Body

	dst := newClient(t, env.app)
	ct, body := uploadBody(t, "backup.JSON", string(exported))
	resp, err := dst.do(fiber.MethodPost, "/api/v1/import", ct, body)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.Status, string(resp.Body))

	doc := decode[domain.Document](t, dst.json(fiber.MethodGet, "/api/v1/cv", nil))
	assert.Equal(t, "Ana Pérez", doc.Contact.Name)
	assert.Len(t, doc.Skills, 2)
	assert.Len(t, doc.Otros, 2, "import keeps duplicates; dedup only applies to rendering")
}

func TestImportRejects(t *testing.T) {
	cl := newClient(t, newTestEnv(t, 100).app)
	cases := []struct {
		name     string
		filename string
		content  string
		want     int
	}{
		{"wrong extension", "cv.txt", `{}`, fiber.StatusBadRequest},
		{"empty file", "cv.json", ``, fiber.StatusBadRequest},
		{"malformed", "cv.json", `{"summary":`, fiber.StatusBadRequest},
		{"not an object", "cv.json", `[1,2]`, fiber.StatusBadRequest},
		{"too large", "cv.json", `{"summary":"` + strings.Repeat("x", 2<<10) + `"}`, fiber.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ct, body := uploadBody(t, tc.filename, tc.content)
			resp, err := cl.do(fiber.MethodPost, "/api/v1/import", ct, body)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.Status, string(resp.Body))
		})
	}

	resp, err := cl.do(fiber.MethodPost, "/api/v1/import", fiber.MIMEApplicationJSON, strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.Status, "missing file")
}

func TestHealth(t *testing.T) {
	cl := newClient(t, newTestEnv(t, 100).app)
	assert.Equal(t, fiber.StatusOK, cl.json(fiber.MethodGet, "/api/v1/health", nil).Status)
	resp := cl.json(fiber.MethodGet, "/api/v1/ready", nil)
	assert.Equal(t, fiber.StatusOK, resp.Status)
	assert.Contains(t, string(resp.Body), "ready")
	assert.NotEmpty(t, resp.Header(fiber.HeaderXRequestID))
}
