package domain

import (
	"encoding/json"
)

// SectionSelection picks items of one section. Selected holds indices into the
// original list; Order holds positions into Selected. A nil Order means the
// selected items in the order they were chosen.
type SectionSelection struct {
	Selected []int `json:"selected"`
	Order    []int `json:"order"`
}

// Selection describes a custom subset of a CV. On the wire it is a flat object:
// {"include_summary": bool, "<section>": {"selected": [...], "order": [...]}}.
type Selection struct {
	IncludeSummary *bool
	Sections       map[Section]SectionSelection
}

// SummaryIncluded is true unless include_summary was explicitly false.
func (s Selection) SummaryIncluded() bool {
	return s.IncludeSummary == nil || *s.IncludeSummary
}

func (s Selection) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(s.Sections)+1)
	if s.IncludeSummary != nil {
		m["include_summary"] = *s.IncludeSummary
	}
	for sec, sel := range s.Sections {
		m[string(sec)] = sel
	}
	return MarshalNoEscape(m)
}

// UnmarshalJSON ignores keys that are not sections.
func (s *Selection) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := Selection{Sections: map[Section]SectionSelection{}}
	if v, ok := raw["include_summary"]; ok {
		var inc bool
		if err := json.Unmarshal(v, &inc); err != nil {
			return err
		}
		out.IncludeSummary = &inc
	}
	for k, v := range raw {
		sec, err := ParseSection(k)
		if err != nil {
			continue
		}
		var sel SectionSelection
		if err := json.Unmarshal(v, &sel); err != nil {
			return err
		}
		out.Sections[sec] = sel
	}
	*s = out
	return nil
}

// Template is a named, saved Selection. Templates are shared across sessions.
type Template struct {
	Name        string    `json:"name" validate:"required,max=50"`
	Description string    `json:"description"`
	Selection   Selection `json:"selection"`
	Created     string    `json:"created"`
}
