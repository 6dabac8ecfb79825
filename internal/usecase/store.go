package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	repo "cv-generator/internal/adapter/repository"
	"cv-generator/internal/domain"
	"cv-generator/internal/validator"

	"go.uber.org/zap"
)

const (
	cvKey        = "cv_data"
	templatesKey = "templates"
)

// DocumentStore owns the current CV of one storage scope, normally a session.
type DocumentStore struct {
	storage repo.Storage
	log     *zap.Logger
}

func NewDocumentStore(s repo.Storage, log *zap.Logger) *DocumentStore {
	return &DocumentStore{storage: s, log: log}
}

// Load returns the stored document, or a fresh default one when nothing is
// stored or the stored bytes cannot be read. It never fails.
func (s *DocumentStore) Load(ctx context.Context) *domain.Document {
	b, err := s.storage.Get(ctx, cvKey)
	if err != nil {
		if !errors.Is(err, repo.ErrKeyNotFound) {
			s.log.Error("load cv", zap.Error(err))
		}
		return domain.Default()
	}
	var doc domain.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		s.log.Error("decode stored cv", zap.Error(err))
		return domain.Default()
	}
	doc.Backfill()
	return &doc
}

// Save backfills missing keys and persists doc. A nil doc is InvalidFormat;
// persistence faults are StorageFailure.
func (s *DocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	if doc == nil {
		return fmt.Errorf("%w: cv document is nil", domain.ErrInvalidFormat)
	}
	doc.Backfill()
	b, err := domain.MarshalNoEscape(doc)
	if err != nil {
		return fmt.Errorf("%w: encode cv: %v", domain.ErrStorage, err)
	}
	if err := s.storage.Put(ctx, cvKey, b); err != nil {
		s.log.Error("save cv", zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return nil
}

// Clear resets the document to the empty default structure.
func (s *DocumentStore) Clear(ctx context.Context) error {
	return s.Save(ctx, domain.Default())
}

// TemplateStore holds the shared, named selections. Writes hold mu across
// load, mutate and save.
type TemplateStore struct {
	storage repo.Storage
	log     *zap.Logger
	mu      sync.Mutex
}

func NewTemplateStore(s repo.Storage, log *zap.Logger) *TemplateStore {
	return &TemplateStore{storage: s, log: log}
}

// LoadTemplates returns every template keyed by name; an empty map when none
// are stored or the stored bytes cannot be read.
func (s *TemplateStore) LoadTemplates(ctx context.Context) map[string]domain.Template {
	b, err := s.storage.Get(ctx, templatesKey)
	if err != nil {
		if !errors.Is(err, repo.ErrKeyNotFound) {
			s.log.Error("load templates", zap.Error(err))
		}
		return map[string]domain.Template{}
	}
	var m map[string]domain.Template
	if err := json.Unmarshal(b, &m); err != nil {
		s.log.Error("decode stored templates", zap.Error(err))
		return map[string]domain.Template{}
	}
	if m == nil {
		m = map[string]domain.Template{}
	}
	return m
}

func (s *TemplateStore) SaveTemplates(ctx context.Context, m map[string]domain.Template) error {
	if m == nil {
		return fmt.Errorf("%w: templates map is nil", domain.ErrInvalidFormat)
	}
	b, err := domain.MarshalNoEscape(m)
	if err != nil {
		return fmt.Errorf("%w: encode templates: %v", domain.ErrStorage, err)
	}
	if err := s.storage.Put(ctx, templatesKey, b); err != nil {
		s.log.Error("save templates", zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	return nil
}

// List returns the templates sorted by name.
func (s *TemplateStore) List(ctx context.Context) []domain.Template {
	m := s.LoadTemplates(ctx)
	out := make([]domain.Template, 0, len(m))
	for _, t := range m {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *TemplateStore) Get(ctx context.Context, name string) (domain.Template, error) {
	t, ok := s.LoadTemplates(ctx)[name]
	if !ok {
		return domain.Template{}, fmt.Errorf("%w %q", domain.ErrTemplateNotFound, name)
	}
	return t, nil
}

// Put creates or overwrites the template with the same (trimmed) name.
func (s *TemplateStore) Put(ctx context.Context, t domain.Template) (domain.Template, error) {
	t.Name = strings.TrimSpace(t.Name)
	if err := validator.ValidateTemplate(t); err != nil {
		return domain.Template{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.LoadTemplates(ctx)
	m[t.Name] = t
	if err := s.SaveTemplates(ctx, m); err != nil {
		return domain.Template{}, err
	}
	s.log.Info("template saved", zap.String("name", t.Name))
	return t, nil
}

func (s *TemplateStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.LoadTemplates(ctx)
	if _, ok := m[name]; !ok {
		return fmt.Errorf("%w %q", domain.ErrTemplateNotFound, name)
	}
	delete(m, name)
	if err := s.SaveTemplates(ctx, m); err != nil {
		return err
	}
	s.log.Info("template deleted", zap.String("name", name))
	return nil
}

// Ping reports whether the backing storage is reachable.
func (s *TemplateStore) Ping(ctx context.Context) error {
	if p, ok := s.storage.(repo.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
