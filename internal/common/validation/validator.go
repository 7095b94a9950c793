// Package validation checks admin API payloads with go-playground/validator.
// Failures come back as validation AppErrors whose "fields" context lists
// each broken constraint.
package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"redirector/internal/common/errors"
)

// FieldsContextKey is the AppError context key holding []FieldError
const FieldsContextKey = "fields"

// FieldError describes one failed constraint using the payload's JSON names
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// Validator knows the redirect specific tags:
//
//	redirect_status  a 3xx status code
//	rule_host        host[:port] with no scheme, path or whitespace
//	rule_path        no whitespace or control characters
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	for tag, fn := range customTags {
		// only fails for malformed tag names
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return &Validator{validate: v}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

var customTags = map[string]validator.Func{
	"redirect_status": func(fl validator.FieldLevel) bool {
		code := fl.Field().Int()
		return code >= 300 && code < 400
	},
	"rule_host": func(fl validator.FieldLevel) bool {
		host := fl.Field().String()
		return !strings.Contains(host, "://") && !strings.ContainsAny(host, "/?# \t")
	},
	"rule_path": func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), func(r rune) bool {
			return r <= ' ' || r == 0x7f
		}) < 0
	},
}

// Struct validates s against its validate tags
func (v *Validator) Struct(s interface{}) error {
	return v.check(v.validate.Struct(s))
}

// Var validates a single value against tag
func (v *Validator) Var(value interface{}, tag string) error {
	return v.check(v.validate.Var(value, tag))
}

func (v *Validator) check(err error) error {
	if err == nil {
		return nil
	}

	fields := fieldErrors(err)
	msg := fields[0].Message
	if len(fields) > 1 {
		msgs := make([]string, len(fields))
		for i, f := range fields {
			msgs[i] = f.Message
		}
		msg = "validation failed: " + strings.Join(msgs, "; ")
	}
	return errors.ValidationError(msg).WithContext(FieldsContextKey, fields)
}

func fieldErrors(err error) []FieldError {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		// InvalidValidationError: nil or non-struct input
		return []FieldError{{Field: "body", Tag: "invalid", Message: err.Error()}}
	}

	out := make([]FieldError, len(verrs))
	for i, fe := range verrs {
		out[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: describe(fe),
		}
	}
	return out
}

func describe(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("field '%s' is required", name)
	case "min", "gte":
		return fmt.Sprintf("field '%s' must be at least %s", name, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("field '%s' must be at most %s", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("field '%s' must be one of: %s", name, fe.Param())
	case "redirect_status":
		return fmt.Sprintf("field '%s' must be a 3xx status code", name)
	case "rule_host":
		return fmt.Sprintf("field '%s' must be a bare host name without scheme or path", name)
	case "rule_path":
		return fmt.Sprintf("field '%s' must not contain whitespace or control characters", name)
	}
	return fmt.Sprintf("field '%s' failed validation: %s", name, fe.Tag())
}

// Fields returns the field errors attached by Struct or Var, if any
func Fields(err error) []FieldError {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		return nil
	}
	fields, _ := appErr.Context[FieldsContextKey].([]FieldError)
	return fields
}

var std = New()

// ValidateStruct validates s with the shared Validator
func ValidateStruct(s interface{}) error {
	return std.Struct(s)
}

// ValidateVar validates value with the shared Validator
func ValidateVar(value interface{}, tag string) error {
	return std.Var(value, tag)
}
