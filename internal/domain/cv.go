package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Section names one of the fixed item lists of a CV.
type Section string

const (
	SectionSkills     Section = "skills"
	SectionExperience Section = "experience"
	SectionProjects   Section = "projects"
	SectionEducation  Section = "education"
	SectionCourses    Section = "courses"
	SectionOtros      Section = "otros"
)

var sectionOrder = []Section{
	SectionSkills,
	SectionExperience,
	SectionProjects,
	SectionEducation,
	SectionCourses,
	SectionOtros,
}

var sectionFields = map[Section][]string{
	SectionSkills:     {"name", "level", "tags"},
	SectionExperience: {"title", "company", "location", "start", "end", "description", "tech"},
	SectionProjects:   {"title", "company", "location", "start", "end", "description", "tech"},
	SectionEducation:  {"degree", "institution", "start", "end", "notes"},
	SectionCourses:    {"name", "issuer", "date", "hours", "credential", "tags"},
	SectionOtros:      {"title", "institution", "start", "end", "periodo", "description", "tags"},
}

// Sections returns the six sections in display order.
func Sections() []Section {
	out := make([]Section, len(sectionOrder))
	copy(out, sectionOrder)
	return out
}

func ParseSection(name string) (Section, error) {
	s := Section(name)
	if _, ok := sectionFields[s]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownSection, name)
	}
	return s, nil
}

// Fields returns the allowed field set of the section.
func (s Section) Fields() []string {
	f := sectionFields[s]
	out := make([]string, len(f))
	copy(out, f)
	return out
}

// IsListField reports whether the field is stored as a sequence of strings.
func IsListField(field string) bool {
	return field == "tags" || field == "tech"
}

type Contact struct {
	Name     string   `json:"name"`
	Title    string   `json:"title"`
	Location string   `json:"location"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Links    []string `json:"links"`
}

// Item is one entry of a section. Unknown fields are kept as they were stored.
type Item map[string]any

// Str returns the field as text; list fields are joined with ", ".
func (it Item) Str(key string) string {
	switch v := it[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case []any:
		return strings.Join(toStrings(v), ", ")
	default:
		return fmt.Sprint(v)
	}
}

func (it Item) List(key string) []string {
	switch v := it[key].(type) {
	case []string:
		return v
	case []any:
		return toStrings(v)
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

func (it Item) Clone() Item {
	if it == nil {
		return nil
	}
	out := make(Item, len(it))
	for k, v := range it {
		if l, ok := v.([]string); ok {
			cp := make([]string, len(l))
			copy(cp, l)
			v = cp
		}
		out[k] = v
	}
	return out
}

func (it *Item) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	for k, v := range m {
		if arr, ok := v.([]any); ok && allStrings(arr) {
			m[k] = toStrings(arr)
		}
	}
	*it = Item(m)
	return nil
}

func allStrings(arr []any) bool {
	for _, v := range arr {
		if _, ok := v.(string); !ok {
			return false
		}
	}
	return true
}

func toStrings(arr []any) []string {
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

// IndexedItem pairs an item with its position, the address used by edit and delete.
type IndexedItem struct {
	Index int  `json:"index"`
	Item  Item `json:"item"`
}

// RawFields is submitted form input for a section item.
type RawFields map[string]string

// ParseItem builds an item from the section's field set. List fields are
// split on commas; every value is trimmed.
func ParseItem(s Section, raw RawFields) Item {
	it := Item{}
	for _, f := range sectionFields[s] {
		it[f] = parseField(f, raw[f])
	}
	return it
}

func parseField(field, value string) any {
	if IsListField(field) {
		return SplitList(value)
	}
	return strings.TrimSpace(value)
}

// MergeInto overwrites only the configured fields of it, leaving any other
// stored fields untouched.
func MergeInto(s Section, it Item, raw RawFields) Item {
	out := it.Clone()
	if out == nil {
		out = Item{}
	}
	for _, f := range sectionFields[s] {
		out[f] = parseField(f, raw[f])
	}
	return out
}

// SplitList splits comma separated input, dropping empty entries.
func SplitList(value string) []string {
	out := []string{}
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Document is the CV aggregate. Top-level keys outside the known set are
// carried in Extra so an imported record round-trips.
type Document struct {
	Contact    Contact `json:"contact"`
	Summary    string  `json:"summary"`
	Skills     []Item  `json:"skills"`
	Experience []Item  `json:"experience"`
	Projects   []Item  `json:"projects"`
	Education  []Item  `json:"education"`
	Courses    []Item  `json:"courses"`
	Otros      []Item  `json:"otros"`

	Extra map[string]any `json:"-"`
}

var documentKeys = []string{"contact", "summary", "skills", "experience", "projects", "education", "courses", "otros"}

// Default returns the empty document every fresh session starts with.
func Default() *Document {
	d := &Document{}
	d.Backfill()
	return d
}

// Backfill fills every absent key with its default value. It is idempotent.
func (d *Document) Backfill() {
	if d.Contact.Links == nil {
		d.Contact.Links = []string{}
	}
	for _, s := range sectionOrder {
		p := d.section(s)
		if *p == nil {
			*p = []Item{}
		}
	}
}

func (d *Document) section(s Section) *[]Item {
	switch s {
	case SectionSkills:
		return &d.Skills
	case SectionExperience:
		return &d.Experience
	case SectionProjects:
		return &d.Projects
	case SectionEducation:
		return &d.Education
	case SectionCourses:
		return &d.Courses
	case SectionOtros:
		return &d.Otros
	}
	panic("domain: unknown section " + string(s))
}

func (d *Document) Items(s Section) []Item {
	return *d.section(s)
}

func (d *Document) SetItems(s Section, items []Item) {
	*d.section(s) = items
}

// Clone returns a copy that shares no slices or item maps with d.
func (d *Document) Clone() *Document {
	out := *d
	if d.Contact.Links != nil {
		out.Contact.Links = make([]string, len(d.Contact.Links))
		copy(out.Contact.Links, d.Contact.Links)
	}
	for _, s := range sectionOrder {
		src := d.Items(s)
		if src == nil {
			continue
		}
		items := make([]Item, len(src))
		for i, it := range src {
			items[i] = it.Clone()
		}
		out.SetItems(s, items)
	}
	if d.Extra != nil {
		out.Extra = make(map[string]any, len(d.Extra))
		for k, v := range d.Extra {
			out.Extra[k] = v
		}
	}
	return &out
}

type documentAlias Document

func (d Document) MarshalJSON() ([]byte, error) {
	base, err := MarshalNoEscape(documentAlias(d))
	if err != nil || len(d.Extra) == 0 {
		return base, err
	}
	m := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	for k, v := range d.Extra {
		if _, known := m[k]; known {
			continue
		}
		raw, err := MarshalNoEscape(v)
		if err != nil {
			return nil, err
		}
		m[k] = raw
	}
	return MarshalNoEscape(m)
}

func (d *Document) UnmarshalJSON(b []byte) error {
	var alias documentAlias
	if err := json.Unmarshal(b, &alias); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for _, k := range documentKeys {
		delete(raw, k)
	}
	if len(raw) > 0 {
		alias.Extra = make(map[string]any, len(raw))
		for k, v := range raw {
			var x any
			if err := json.Unmarshal(v, &x); err != nil {
				return err
			}
			alias.Extra[k] = x
		}
	}
	*d = Document(alias)
	return nil
}

// MarshalNoEscape encodes v without escaping <, > and &.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
