package usecase

import (
	"context"
	"strings"

	"cv-generator/internal/domain"
	"cv-generator/internal/validator"

	"go.uber.org/zap"
)

const MaxSummaryLength = 2000

// ContactForm is contact input as submitted; Links is comma separated.
type ContactForm struct {
	Name     string `json:"name" form:"name"`
	Title    string `json:"title" form:"title"`
	Location string `json:"location" form:"location"`
	Email    string `json:"email" form:"email"`
	Phone    string `json:"phone" form:"phone"`
	Links    string `json:"links" form:"links"`
}

func (f ContactForm) Contact() domain.Contact {
	return domain.Contact{
		Name:     strings.TrimSpace(f.Name),
		Title:    strings.TrimSpace(f.Title),
		Location: strings.TrimSpace(f.Location),
		Email:    strings.TrimSpace(f.Email),
		Phone:    strings.TrimSpace(f.Phone),
		Links:    domain.SplitList(f.Links),
	}
}

// CVService runs load, mutate and save as one step over a DocumentStore.
type CVService struct {
	docs    *DocumentStore
	ceiling int
	log     *zap.Logger
}

func NewCVService(docs *DocumentStore, ceiling int, log *zap.Logger) *CVService {
	return &CVService{docs: docs, ceiling: ceiling, log: log}
}

func (s *CVService) Document(ctx context.Context) *domain.Document {
	return s.docs.Load(ctx)
}

func (s *CVService) List(ctx context.Context, section string) ([]domain.IndexedItem, error) {
	return ListItems(s.docs.Load(ctx), section)
}

func (s *CVService) Add(ctx context.Context, section string, raw domain.RawFields) (domain.Item, error) {
	if _, err := domain.ParseSection(section); err != nil {
		return nil, err
	}
	doc := s.docs.Load(ctx)
	it, err := AddItem(doc, section, raw, s.ceiling)
	if err != nil {
		return nil, err
	}
	if err := s.docs.Save(ctx, doc); err != nil {
		return nil, err
	}
	s.log.Info("item added", zap.String("section", section), zap.Int("index", len(doc.Items(domain.Section(section)))-1))
	return it, nil
}

func (s *CVService) Edit(ctx context.Context, section string, index int, raw domain.RawFields) (domain.Item, error) {
	if _, err := domain.ParseSection(section); err != nil {
		return nil, err
	}
	doc := s.docs.Load(ctx)
	it, err := EditItem(doc, section, index, raw)
	if err != nil {
		return nil, err
	}
	if err := s.docs.Save(ctx, doc); err != nil {
		return nil, err
	}
	s.log.Info("item updated", zap.String("section", section), zap.Int("index", index))
	return it, nil
}

func (s *CVService) Delete(ctx context.Context, section string, index int) error {
	if _, err := domain.ParseSection(section); err != nil {
		return err
	}
	doc := s.docs.Load(ctx)
	if _, err := DeleteItem(doc, section, index); err != nil {
		return err
	}
	if err := s.docs.Save(ctx, doc); err != nil {
		return err
	}
	s.log.Info("item deleted", zap.String("section", section), zap.Int("index", index))
	return nil
}

// UpdateContact validates the form and replaces the stored contact.
func (s *CVService) UpdateContact(ctx context.Context, f ContactForm) (domain.Contact, error) {
	c := f.Contact()
	if err := validator.Contact(c); err != nil {
		return domain.Contact{}, err
	}
	doc := s.docs.Load(ctx)
	doc.Contact = c
	if err := s.docs.Save(ctx, doc); err != nil {
		return domain.Contact{}, err
	}
	s.log.Info("contact updated")
	return c, nil
}

func (s *CVService) UpdateSummary(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if ok, msg := validator.TextLength(text, 0, MaxSummaryLength); !ok {
		return "", domain.NewValidationError("summary " + msg)
	}
	doc := s.docs.Load(ctx)
	doc.Summary = text
	if err := s.docs.Save(ctx, doc); err != nil {
		return "", err
	}
	s.log.Info("summary updated", zap.Int("length", len(text)))
	return text, nil
}

func (s *CVService) Clear(ctx context.Context) error {
	if err := s.docs.Clear(ctx); err != nil {
		return err
	}
	s.log.Info("cv cleared")
	return nil
}

// Import replaces the stored document wholesale with the uploaded one.
func (s *CVService) Import(ctx context.Context, b []byte) (*domain.Document, error) {
	doc, err := ParseImport(b)
	if err != nil {
		return nil, err
	}
	if err := s.docs.Save(ctx, doc); err != nil {
		return nil, err
	}
	s.log.Info("cv imported")
	return doc, nil
}

func (s *CVService) Export(ctx context.Context) ([]byte, error) {
	return ExportJSON(s.docs.Load(ctx))
}
