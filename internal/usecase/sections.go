package usecase

import (
	"fmt"

	"cv-generator/internal/domain"
	"cv-generator/internal/validator"
)

// ListItems pairs each item of the section with its zero-based position.
func ListItems(doc *domain.Document, name string) ([]domain.IndexedItem, error) {
	sec, err := domain.ParseSection(name)
	if err != nil {
		return nil, err
	}
	items := doc.Items(sec)
	out := make([]domain.IndexedItem, len(items))
	for i, it := range items {
		out[i] = domain.IndexedItem{Index: i, Item: it}
	}
	return out, nil
}

// AddItem parses raw into a new item and appends it. A section already at
// ceiling is left unchanged and LimitExceeded is returned.
func AddItem(doc *domain.Document, name string, raw domain.RawFields, ceiling int) (domain.Item, error) {
	sec, err := domain.ParseSection(name)
	if err != nil {
		return nil, err
	}
	it := domain.ParseItem(sec, raw)
	if ok, errs := validator.ValidateItem(sec, it); !ok {
		return nil, domain.NewValidationError(errs...)
	}
	items := doc.Items(sec)
	if len(items) >= ceiling {
		return nil, fmt.Errorf("%w: %s already holds %d items", domain.ErrLimitExceeded, sec, ceiling)
	}
	doc.SetItems(sec, append(items, it))
	return it, nil
}

// EditItem merges raw into the item at index. Only the section's configured
// fields are overwritten.
func EditItem(doc *domain.Document, name string, index int, raw domain.RawFields) (domain.Item, error) {
	sec, err := domain.ParseSection(name)
	if err != nil {
		return nil, err
	}
	items := doc.Items(sec)
	if index < 0 || index >= len(items) {
		return nil, fmt.Errorf("%w: %s[%d]", domain.ErrItemNotFound, sec, index)
	}
	it := domain.MergeInto(sec, items[index], raw)
	if ok, errs := validator.ValidateItem(sec, it); !ok {
		return nil, domain.NewValidationError(errs...)
	}
	items[index] = it
	return it, nil
}

// DeleteItem removes the item at index; later items shift down by one.
func DeleteItem(doc *domain.Document, name string, index int) (domain.Item, error) {
	sec, err := domain.ParseSection(name)
	if err != nil {
		return nil, err
	}
	items := doc.Items(sec)
	if index < 0 || index >= len(items) {
		return nil, fmt.Errorf("%w: %s[%d]", domain.ErrItemNotFound, sec, index)
	}
	removed := items[index]
	out := make([]domain.Item, 0, len(items)-1)
	out = append(out, items[:index]...)
	out = append(out, items[index+1:]...)
	doc.SetItems(sec, out)
	return removed, nil
}
