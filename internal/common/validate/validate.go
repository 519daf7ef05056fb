package validate

import (
	"fmt"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	commonerrors "github.com/academiahub/backend/internal/common/errors"
)

var v = validator.New(validator.WithRequiredStructEnabled())

// Struct validates a request DTO against its `validate` tags and maps
// failures onto the domain error taxonomy.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return commonerrors.ErrInvalidPayload.WithCause(
			fmt.Errorf("field %s failed on %s", fe.Field(), fe.Tag()),
		)
	}

	return commonerrors.ErrInvalidPayload.WithCause(err)
}

func Var(field any, tag string) error {
	if err := v.Var(field, tag); err != nil {
		return commonerrors.ErrInvalidPayload.WithCause(err)
	}
	return nil
}

// Truncate caps s at max runes. Counting runes keeps the cap consistent
// with the `max` validation tag and never splits a multi-byte character.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
