package validator

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"cv-generator/internal/domain"

	"github.com/go-playground/validator/v10"
)

var (
	structOnce sync.Once
	structV    *validator.Validate
)

func structValidator() *validator.Validate {
	structOnce.Do(func() {
		structV = validator.New()
	})
	return structV
}

// ValidateTemplate checks the struct tags of a template record.
func ValidateTemplate(tpl domain.Template) error {
	err := structValidator().Struct(tpl)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return domain.NewValidationError(msgs...)
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	if field == "name" {
		field = "template name"
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s too long (max %s characters)", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s check", field, fe.Tag())
	}
}
