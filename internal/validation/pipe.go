// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package validation turns raw request input into typed values. A Pipe strips or rejects
// properties not declared by the target struct, converts loosely typed input to the declared
// field types and finally checks the `validate` struct tags.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/gofiber/fiber/v2"
)

const (
	bodyTagName  = "json"
	queryTagName = "query"

	localsKey = "validationPipe"
)

var (
	ErrValidation = errors.New("validation failed")
)

// Options configures how a Pipe handles incoming properties.
type Options struct {
	// Whitelist drops every property not declared by the target struct.
	Whitelist bool
	// ForbidNonWhitelisted rejects the input instead of dropping undeclared properties.
	// It has effect only when Whitelist is enabled.
	ForbidNonWhitelisted bool
	// ImplicitConversion converts strings to numbers and booleans following the declared field type.
	ImplicitConversion bool
}

// Error carries every violation found while validating an input.
type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(e.Messages, ", "))
}

func (e *Error) Unwrap() error {
	return ErrValidation
}

// Pipe validates request bodies and query strings.
type Pipe struct {
	opts     Options
	validate *validator.Validate
}

// NewPipe returns a Pipe configured with opts.
func NewPipe(opts Options) *Pipe {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(fieldName)

	return &Pipe{
		opts:     opts,
		validate: validate,
	}
}

// fieldName reports json names in violation messages, falling back to the query name.
func fieldName(field reflect.StructField) string {
	for _, tag := range []string{bodyTagName, queryTagName} {
		name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		default:
			return name
		}
	}
	return field.Name
}

// Middleware installs p as the pipe used by Body and Query for every following handler.
func (p *Pipe) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(localsKey, p)
		return c.Next()
	}
}

// DecodeBody decodes the JSON object in body into out, which must be a pointer to a struct.
func (p *Pipe) DecodeBody(body []byte, out any) error {
	input := make(map[string]any)
	if len(body) > 0 {
		if err := json.Unmarshal(body, &input); err != nil {
			return &Error{Messages: []string{"request body must be a JSON object"}}
		}
	}
	return p.decode(input, out, bodyTagName)
}

// DecodeQuery decodes the query parameters in input into out, which must be a pointer to a struct.
func (p *Pipe) DecodeQuery(input map[string]string, out any) error {
	values := make(map[string]any, len(input))
	for key, value := range input {
		values[key] = value
	}

	opts := p.opts
	// query values are always strings, so they can only be typed through conversion
	opts.ImplicitConversion = true
	return (&Pipe{opts: opts, validate: p.validate}).decode(values, out, queryTagName)
}

func (p *Pipe) decode(input map[string]any, out any, tagName string) error {
	if p.opts.Whitelist && p.opts.ForbidNonWhitelisted {
		if unknown := unknownProperties(input, out, tagName); len(unknown) > 0 {
			messages := make([]string, 0, len(unknown))
			for _, name := range unknown {
				messages = append(messages, fmt.Sprintf("property %s should not exist", name))
			}
			return &Error{Messages: messages}
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          tagName,
		Result:           out,
		WeaklyTypedInput: p.opts.ImplicitConversion,
		DecodeHook:       mapstructure.DecodeHookFuncKind(rejectFractionalIntegers),
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(input); err != nil {
		return &Error{Messages: decodeMessages(err)}
	}

	if err := p.validate.Struct(out); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return &Error{Messages: violationMessages(validationErrors)}
		}
		return err
	}
	return nil
}

// rejectFractionalIntegers fails when a number with a fractional part targets an integer field,
// mapstructure would silently truncate it otherwise.
func rejectFractionalIntegers(from reflect.Kind, to reflect.Kind, data any) (any, error) {
	if from != reflect.Float32 && from != reflect.Float64 {
		return data, nil
	}

	switch to {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}

	if value := reflect.ValueOf(data).Float(); value != math.Trunc(value) {
		return nil, fmt.Errorf("%v must be an integer number", data)
	}
	return data, nil
}

// unknownProperties lists the top level keys of input not declared by the struct out points to.
func unknownProperties(input map[string]any, out any, tagName string) []string {
	declared := declaredProperties(reflect.TypeOf(out), tagName)
	unknown := make([]string, 0)
	for key := range input {
		if _, ok := declared[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	slices.Sort(unknown)
	return unknown
}

func declaredProperties(typ reflect.Type, tagName string) map[string]struct{} {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	declared := make(map[string]struct{})
	if typ.Kind() != reflect.Struct {
		return declared
	}

	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		name, options, _ := strings.Cut(field.Tag.Get(tagName), ",")
		if name == "-" {
			continue
		}
		if field.Anonymous && (options == "squash" || name == "") {
			for embedded := range declaredProperties(field.Type, tagName) {
				declared[embedded] = struct{}{}
			}
			continue
		}
		if name == "" {
			name = field.Name
		}
		declared[name] = struct{}{}
	}
	return declared
}

func decodeMessages(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		messages := make([]string, 0)
		for _, wrapped := range joined.Unwrap() {
			messages = append(messages, wrapped.Error())
		}
		if len(messages) > 0 {
			return messages
		}
	}
	return []string{err.Error()}
}

func violationMessages(validationErrors validator.ValidationErrors) []string {
	messages := make([]string, 0, len(validationErrors))
	for _, violation := range validationErrors {
		messages = append(messages, violationMessage(violation))
	}
	return messages
}

func violationMessage(violation validator.FieldError) string {
	field := violation.Field()
	switch violation.Tag() {
	case "required":
		return fmt.Sprintf("%s should not be empty", field)
	case "min":
		return fmt.Sprintf("%s must not be less than %s", field, violation.Param())
	case "max":
		return fmt.Sprintf("%s must not be greater than %s", field, violation.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of the following values: %s", field, violation.Param())
	default:
		return fmt.Sprintf("%s failed on the %s rule", field, violation.Tag())
	}
}
