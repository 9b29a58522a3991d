package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/community-hub/internal/apperr"
)

// Validator adapts go-playground/validator to echo.Validator.  Failures are
// reported as one INVALID_INPUT entry per field, named by its JSON key.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "trimmin", trimmedMin)
	mustRegister(v, "maxbytes", maxBytes)
	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("registering %s validation: %v", tag, err))
	}
}

// trimmedMin is min for strings, counted after surrounding whitespace is
// dropped, so a blank name never satisfies it.
func trimmedMin(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil || fl.Field().Kind() != reflect.String {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
}

// maxBytes bounds the encoded length of a string.  bcrypt rejects passwords
// longer than 72 bytes regardless of how many runes they hold.
func maxBytes(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil || fl.Field().Kind() != reflect.String {
		return false
	}
	return len(fl.Field().String()) <= n
}

// Validate implements echo.Validator.
func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.InvalidInput("", "The request could not be validated.")
	}
	details := make([]apperr.Detail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, apperr.Detail{
			Code:    apperr.CodeInvalidInput,
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return apperr.Validation(details...)
}

func fieldMessage(fe validator.FieldError) string {
	label := fe.Field()
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", label)
	case "email":
		return "Please provide a valid email."
	case "trimmin":
		return fmt.Sprintf("%s should be at least %s characters.", label, fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s should be at most %s bytes.", label, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s should be at least %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s should be at least %s.", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s should be at most %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s should be at most %s.", label, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid.", label)
	}
}
