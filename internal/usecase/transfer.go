package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"cv-generator/internal/domain"
	"cv-generator/internal/model"
)

// ExportJSON encodes doc as indented UTF-8 JSON with non-ASCII text and
// markup characters written literally.
func ExportJSON(doc *domain.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return unescapeLineSeparators(buf.Bytes()), nil
}

// unescapeLineSeparators writes U+2028 and U+2029 back as raw characters;
// encoding/json escapes them even with HTML escaping off.
func unescapeLineSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}
		if b[i+1] == 'u' && i+6 <= len(b) {
			switch string(b[i+2 : i+6]) {
			case "2028":
				out = append(out, "\u2028"...)
				i += 5
				continue
			case "2029":
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		// keep the escape pair so an escaped backslash is never re-read
		out = append(out, b[i], b[i+1])
		i++
	}
	return out
}

// ExportFilename is <prefix>_<YYYYMMDD_HHMMSS>.json in local time.
func ExportFilename(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%s.json", prefix, now.Local().Format("20060102_150405"))
}

// ParseImport decodes an uploaded document. Text that is not UTF-8 or not
// JSON is MalformedJSON; JSON that is not a CV-shaped object is InvalidFormat.
// The result is backfilled.
func ParseImport(b []byte) (*domain.Document, error) {
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("%w: file is not valid UTF-8", domain.ErrMalformedJSON)
	}
	b = bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))

	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedJSON, err)
	}
	if _, ok := raw.(map[string]any); !ok {
		return nil, fmt.Errorf("%w: top-level value must be an object", domain.ErrInvalidFormat)
	}
	if err := model.ValidateDocument(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFormat, err)
	}

	var doc domain.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFormat, err)
	}
	doc.Backfill()
	return &doc, nil
}
