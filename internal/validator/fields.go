// Package validator holds the field format checks applied to user input.
// Every check treats an empty value as valid; required-ness is decided by the caller.
package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRe = regexp.MustCompile(`^[\d\s\-\+\(\)]{9,20}$`)
	urlRe   = regexp.MustCompile("^https?://[^\\s<>\"{}|\\\\^`\\[\\]]+$")
	dateRe  = regexp.MustCompile(`(?i)^(\d{4}-\d{2}|\d{4}|Actual|Presente|Present|Current)$`)
)

const (
	MsgInvalidEmail = "invalid email format"
	MsgInvalidPhone = "invalid phone format (at least 9 digits)"
	MsgInvalidURL   = "invalid URL format"
	MsgInvalidDate  = "invalid date format (use YYYY-MM, YYYY or 'Actual')"
)

func Email(s string) (bool, string) {
	if s == "" {
		return true, ""
	}
	if emailRe.MatchString(strings.TrimSpace(s)) {
		return true, ""
	}
	return false, MsgInvalidEmail
}

func Phone(s string) (bool, string) {
	if s == "" {
		return true, ""
	}
	if phoneRe.MatchString(strings.TrimSpace(s)) {
		return true, ""
	}
	return false, MsgInvalidPhone
}

func URL(s string) (bool, string) {
	if s == "" {
		return true, ""
	}
	if urlRe.MatchString(strings.TrimSpace(s)) {
		return true, ""
	}
	return false, MsgInvalidURL
}

// Date accepts YYYY-MM, YYYY, or one of the "current" literals in any case.
func Date(s string) (bool, string) {
	if s == "" {
		return true, ""
	}
	if dateRe.MatchString(strings.TrimSpace(s)) {
		return true, ""
	}
	return false, MsgInvalidDate
}

// TextLength checks that the trimmed length, in characters, lies in [min, max].
func TextLength(s string, min, max int) (bool, string) {
	if s == "" {
		if min > 0 {
			return false, fmt.Sprintf("must have at least %d characters", min)
		}
		return true, ""
	}
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	if n < min {
		return false, fmt.Sprintf("must have at least %d characters", min)
	}
	if n > max {
		return false, fmt.Sprintf("cannot exceed %d characters", max)
	}
	return true, ""
}

var denied = strings.NewReplacer("<", "", ">", "", "{", "", "}", "", "\x00", "")

// Sanitize collapses whitespace runs and strips <, >, {, } and NUL.
// Output escaping is still the renderer's job.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(denied.Replace(s))
}
