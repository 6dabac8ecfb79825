package usecase

import (
	"strings"

	"cv-generator/internal/domain"
)

// Filter projects doc onto sel and returns a new document; doc is not changed.
//
// For a section with a selection, each position in Order picks Selected[pos],
// which in turn picks the original item. Positions or indices that are out of
// range, negative included, are skipped. Sections without a selection pass
// through whole.
func Filter(doc *domain.Document, sel domain.Selection) *domain.Document {
	out := doc.Clone()
	if !sel.SummaryIncluded() {
		out.Summary = ""
	}
	for _, sec := range domain.Sections() {
		s, ok := sel.Sections[sec]
		if !ok || s.Selected == nil {
			continue
		}
		original := out.Items(sec)
		order := s.Order
		if order == nil {
			order = make([]int, len(s.Selected))
			for i := range order {
				order[i] = i
			}
		}
		picked := make([]domain.Item, 0, len(order))
		for _, pos := range order {
			if pos < 0 || pos >= len(s.Selected) {
				continue
			}
			idx := s.Selected[pos]
			if idx < 0 || idx >= len(original) {
				continue
			}
			picked = append(picked, original[idx])
		}
		out.SetItems(sec, picked)
	}
	return out
}

type otrosKey struct {
	title, institution, period string
}

// DedupOtros drops later otros items whose (title, institution or company,
// periodo or start) signature repeats an earlier one. Other sections and the
// input document are left alone.
func DedupOtros(doc *domain.Document) *domain.Document {
	out := doc.Clone()
	seen := map[otrosKey]bool{}
	kept := make([]domain.Item, 0, len(out.Otros))
	for _, it := range out.Otros {
		k := otrosKey{
			title:       strings.TrimSpace(it.Str("title")),
			institution: strings.TrimSpace(firstNonEmpty(it.Str("institution"), it.Str("company"))),
			period:      strings.TrimSpace(firstNonEmpty(it.Str("periodo"), it.Str("start"))),
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		kept = append(kept, it)
	}
	if out.Otros != nil {
		out.Otros = kept
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
