package validators

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/MKhiriev/medsync/models"
)

// EnvelopeValidator checks the `validate` struct tags of wire models.
type EnvelopeValidator struct {
	validate *validator.Validate
}

func NewEnvelopeValidator() Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names ("encrypted.iv") rather than Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("recordtype", validateRecordType)

	return &EnvelopeValidator{validate: v}
}

// validateRecordType rejects blank type tags and tags with control
// characters, since the type is used in cache keys and log fields.
func validateRecordType(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if strings.TrimSpace(s) == "" {
		return false
	}
	return strings.IndexFunc(s, unicode.IsControl) < 0
}

// Validate implements [Validator]. fields, when given, are Go struct field
// names as accepted by validator.StructPartial (e.g. "Encrypted.IV").
func (v *EnvelopeValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Envelope:
		return v.check(value, ErrInvalidEnvelope, fields...)
	case *models.Envelope:
		if value == nil {
			return ErrInvalidEnvelope
		}
		return v.check(*value, ErrInvalidEnvelope, fields...)

	case models.FetchRequest:
		return v.check(value, ErrInvalidFetchRequest, fields...)
	case *models.FetchRequest:
		if value == nil {
			return ErrInvalidFetchRequest
		}
		return v.check(*value, ErrInvalidFetchRequest, fields...)

	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedType, obj)
	}
}

func (v *EnvelopeValidator) check(obj any, sentinel error, fields ...string) error {
	var err error
	if len(fields) > 0 {
		err = v.validate.StructPartial(obj, fields...)
	} else {
		err = v.validate.Struct(obj)
	}
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("%w: %w", ErrUnknownField, err)
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		problems := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
		return fmt.Errorf("%w: %s", sentinel, strings.Join(problems, "; "))
	}

	return fmt.Errorf("%w: %w", sentinel, err)
}

// describe renders a field error as "encrypted.iv: len=12".
func describe(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		ns = rest
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s: %s=%s", ns, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s: %s", ns, fe.Tag())
}
