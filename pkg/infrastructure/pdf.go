package infrastructure

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

var ErrEmptyPDF = errors.New("pdf has no pages")

// VerifyPDF parses b and returns its page count.
func VerifyPDF(b []byte) (pages int, err error) {
	defer func() {
		// the reader panics on some truncated xref tables
		if rec := recover(); rec != nil {
			pages, err = 0, fmt.Errorf("parse pdf: %v", rec)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return 0, fmt.Errorf("parse pdf: %w", err)
	}
	n := r.NumPage()
	if n == 0 {
		return 0, ErrEmptyPDF
	}
	return n, nil
}
