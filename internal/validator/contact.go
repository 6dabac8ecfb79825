package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"cv-generator/internal/domain"
)

const (
	MsgNameRequired  = "name is required"
	MsgNameTooShort  = "name must have at least 2 characters"
	MsgEmailRequired = "email is required"
)

// ValidateContact runs every contact check and returns all failures.
func ValidateContact(c domain.Contact) (bool, []string) {
	var errs []string

	name := strings.TrimSpace(c.Name)
	switch {
	case name == "":
		errs = append(errs, MsgNameRequired)
	case utf8.RuneCountInString(name) < 2:
		errs = append(errs, MsgNameTooShort)
	}

	email := strings.TrimSpace(c.Email)
	if email == "" {
		errs = append(errs, MsgEmailRequired)
	} else if ok, msg := Email(email); !ok {
		errs = append(errs, msg)
	}

	if phone := strings.TrimSpace(c.Phone); phone != "" {
		if ok, msg := Phone(phone); !ok {
			errs = append(errs, msg)
		}
	}

	for i, link := range c.Links {
		if ok, msg := URL(link); !ok {
			errs = append(errs, fmt.Sprintf("Link %d: %s", i+1, msg))
		}
	}

	return len(errs) == 0, errs
}

// Contact is ValidateContact as an error, a *domain.ValidationError on failure.
func Contact(c domain.Contact) error {
	if ok, errs := ValidateContact(c); !ok {
		return domain.NewValidationError(errs...)
	}
	return nil
}

// ValidateItem accepts every section item; items get no structural checks
// beyond field parsing.
func ValidateItem(_ domain.Section, _ domain.Item) (bool, []string) {
	return true, nil
}
