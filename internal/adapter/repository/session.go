package repository

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// SessionStorage adapts the session of one request to Storage. The session is
// fetched on every call because Save releases it.
type SessionStorage struct {
	store *session.Store
	c     *fiber.Ctx
}

func NewSessionStorage(store *session.Store, c *fiber.Ctx) *SessionStorage {
	return &SessionStorage{store: store, c: c}
}

func (s *SessionStorage) Get(_ context.Context, key string) ([]byte, error) {
	sess, err := s.store.Get(s.c)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	switch v := sess.Get(key).(type) {
	case nil:
		return nil, ErrKeyNotFound
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("session key %q holds %T", key, v)
	}
}

func (s *SessionStorage) Put(_ context.Context, key string, value []byte) error {
	sess, err := s.store.Get(s.c)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	sess.Set(key, value)
	if err := sess.Save(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
