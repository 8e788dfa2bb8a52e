package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	otpPattern     = regexp.MustCompile(`^[0-9]{6}$`)
	contactPattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// v is the package-level singleton validator. Custom tags:
//
//	emailshape  local-part "@" domain-with-dot, no whitespace
//	otpcode     exactly six ASCII digits
//	contact     exactly ten ASCII digits
var v = newValidator()

// FieldError describes the first field that failed validation.
// Field is the json name of the field, Tag the rule it broke.
type FieldError struct {
	Field string
	Tag   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field '%s' failed '%s'", e.Field, e.Tag)
}

// Struct validates the given struct using its validate tags.
// Returns a *FieldError for the first failing field (in declaration order) or nil.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err
	}
	return &FieldError{Field: ve[0].Field(), Tag: ve[0].Tag()}
}

// Email reports whether s has the shape of an email address.
func Email(s string) bool { return emailPattern.MatchString(s) }

// OTP reports whether s is a six digit code.
func OTP(s string) bool { return otpPattern.MatchString(s) }

func newValidator() *validator.Validate {
	vv := validator.New(validator.WithRequiredStructEnabled())
	vv.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	mustRegister(vv, "emailshape", emailPattern)
	mustRegister(vv, "otpcode", otpPattern)
	mustRegister(vv, "contact", contactPattern)
	return vv
}

func mustRegister(vv *validator.Validate, tag string, re *regexp.Regexp) {
	fn := func(fl validator.FieldLevel) bool { return re.MatchString(fl.Field().String()) }
	if err := vv.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}
