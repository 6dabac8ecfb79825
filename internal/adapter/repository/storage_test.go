package repository

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "cv_data")
	require.True(t, errors.Is(err, ErrKeyNotFound), "got %v", err)

	require.NoError(t, s.Put(ctx, "cv_data", []byte(`{"summary":"one"}`)))
	got, err := s.Get(ctx, "cv_data")
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"one"}`, string(got))

	require.NoError(t, s.Put(ctx, "cv_data", []byte(`{"summary":"two"}`)))
	got, err = s.Get(ctx, "cv_data")
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"two"}`, string(got))

	require.NoError(t, s.Put(ctx, "templates", []byte(`{}`)))
	got, err = s.Get(ctx, "cv_data")
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"two"}`, string(got))
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage())
}

func TestMemoryStorageCopiesValues(t *testing.T) {
	s := NewMemoryStorage()
	v := []byte("abc")
	require.NoError(t, s.Put(context.Background(), "k", v))
	v[0] = 'x'
	got, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFileStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	s, err := NewFileStorage(dir)
	require.NoError(t, err)
	exerciseStorage(t, s)

	b, err := os.ReadFile(filepath.Join(dir, "cv_data.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"two"}`, string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temp files must not be left behind")
}

func TestFileStorageRejectsPathKeys(t *testing.T) {
	s, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, s.Put(context.Background(), "../escape", []byte("x")))
	_, err = s.Get(context.Background(), "a/b")
	assert.Error(t, err)
}

func TestSQLStorage(t *testing.T) {
	s, err := NewSQLStorage("file:memdb1?mode=memory&cache=shared")
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Ping(context.Background()))
	exerciseStorage(t, s)
}

func TestSQLStorageOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.db")
	s, err := NewSQLStorage(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), "templates", []byte(`{"a":1}`)))
	require.NoError(t, s.Close())

	s, err = NewSQLStorage(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(context.Background(), "templates")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))
}

func TestPostgresStorageWithoutPool(t *testing.T) {
	s := NewPostgresStorage(nil)
	_, err := s.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, s.Put(context.Background(), "k", nil))
	assert.Error(t, s.Ping(context.Background()))
}

func TestSessionStorageAcrossRequests(t *testing.T) {
	store := session.New()
	app := fiber.New()
	app.Get("/get", func(c *fiber.Ctx) error {
		v, err := NewSessionStorage(store, c).Get(c.UserContext(), "cv_data")
		if errors.Is(err, ErrKeyNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		if err != nil {
			return err
		}
		return c.Send(v)
	})
	app.Post("/put", func(c *fiber.Ctx) error {
		return NewSessionStorage(store, c).Put(c.UserContext(), "cv_data", c.Body())
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/get", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/put", strings.NewReader(`{"summary":"s"}`)))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/get", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, `{"summary":"s"}`, string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/get", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, "a new session starts empty")
}
