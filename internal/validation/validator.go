// Kinetrace - Wearable Orientation Session Recorder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kinetrace

package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/kinetrace/internal/models"
)

// MaxSessionNameLength is the longest accepted session name, in characters.
const MaxSessionNameLength = 128

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Violation is a single failed rule.
type Violation struct {
	Field   string      `json:"field"`
	Tag     string      `json:"tag"`
	Param   string      `json:"param,omitempty"`
	Value   interface{} `json:"value,omitempty"`
	Message string      `json:"message"`
}

// Result is the outcome of Check: either valid, or a list of violations.
type Result struct {
	Violations []Violation
}

// Valid reports whether no rule failed.
func (r Result) Valid() bool {
	return len(r.Violations) == 0
}

// Message joins the violation messages.
func (r Result) Message() string {
	if r.Valid() {
		return ""
	}
	if len(r.Violations) == 1 {
		return r.Violations[0].Message
	}
	messages := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		messages[i] = fmt.Sprintf("%s: %s", v.Field, v.Message)
	}
	return strings.Join(messages, "; ")
}

// Err converts the result into a KindValidation error, or nil when valid.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}

	if len(r.Violations) == 1 {
		v := r.Violations[0]
		return models.Validation(v.Message, map[string]interface{}{
			"field": v.Field,
			"tag":   v.Tag,
			"value": v.Value,
		})
	}

	fields := make([]map[string]interface{}, len(r.Violations))
	for i, v := range r.Violations {
		fields[i] = map[string]interface{}{
			"field":   v.Field,
			"tag":     v.Tag,
			"message": v.Message,
		}
	}
	return models.Validation(r.Message(), map[string]interface{}{"fields": fields})
}

// GetValidator returns the singleton validator instance.
// The validator is initialized once with custom validators and options.
// This function is thread-safe.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report JSON field names so violations match the request body.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		mustRegister("quaternion", validateQuaternion)
		mustRegister("rfc3339", validateRFC3339)
		mustRegister("sessionname", validateSessionName)
	})

	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// Check validates a struct against its validate tags.
//
//	if res := validation.Check(&req); !res.Valid() {
//	    return res.Err()
//	}
func Check(s interface{}) Result {
	err := GetValidator().Struct(s)
	if err == nil {
		return Result{}
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return Result{Violations: []Violation{{
			Field:   "unknown",
			Tag:     "unknown",
			Message: err.Error(),
		}}}
	}

	violations := make([]Violation, len(validationErrs))
	for i, fieldErr := range validationErrs {
		violations[i] = Violation{
			Field:   fieldErr.Field(),
			Tag:     fieldErr.Tag(),
			Param:   fieldErr.Param(),
			Value:   fieldErr.Value(),
			Message: translateError(fieldErr),
		}
	}
	return Result{Violations: violations}
}

// ValidateSessionName applies the session name rules to a bare string, for
// names that arrive as URL parameters.
func ValidateSessionName(name string) error {
	if IsValidSessionName(name) {
		return nil
	}
	return models.Validation(
		fmt.Sprintf("session name must be 1 to %d characters without surrounding whitespace, control characters or '/'", MaxSessionNameLength),
		map[string]interface{}{"field": "name", "value": name},
	)
}

// IsValidSessionName reports whether name is an acceptable session identity.
func IsValidSessionName(name string) bool {
	if name == "" || !utf8.ValidString(name) || utf8.RuneCountInString(name) > MaxSessionNameLength {
		return false
	}
	if strings.TrimSpace(name) != name {
		return false
	}
	for _, r := range name {
		if r == '/' || unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// validateQuaternion requires exactly four finite components.
func validateQuaternion(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice && field.Kind() != reflect.Array {
		return false
	}
	if field.Len() != 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		elem := field.Index(i)
		if elem.Kind() != reflect.Float64 && elem.Kind() != reflect.Float32 {
			return false
		}
		f := elem.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// validateRFC3339 accepts RFC3339 timestamps with no fraction finer than a
// microsecond, the precision of a TIMESTAMP column.
func validateRFC3339(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	t, err := time.Parse(time.RFC3339Nano, fl.Field().String())
	if err != nil {
		return false
	}
	return t.Nanosecond()%int(time.Microsecond) == 0
}

func validateSessionName(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return IsValidSessionName(fl.Field().String())
}

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required":    "%s is required",
	"rfc3339":     "%s must be an RFC3339 timestamp with at most microsecond precision",
	"quaternion":  "%s must be a [w,x,y,z] record of four finite numbers",
	"sessionname": "%s must be 1 to 128 characters without surrounding whitespace, control characters or '/'",
}

// errorMessageWithParam maps validation tags to templates that include param.
var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
}

// translateError converts a validator.FieldError to a human-readable message.
func translateError(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}
	return translateMinMax(fe, field, tag, param)
}

// translateMinMax handles min/max validation with type-specific messages.
func translateMinMax(fe validator.FieldError, field, tag, param string) string {
	var unit string
	switch fe.Kind() {
	case reflect.String:
		unit = " characters"
	case reflect.Slice, reflect.Array:
		unit = " items"
	}

	switch tag {
	case "min":
		return fmt.Sprintf("%s must have at least %s%s", field, param, unit)
	case "max":
		return fmt.Sprintf("%s must have at most %s%s", field, param, unit)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
