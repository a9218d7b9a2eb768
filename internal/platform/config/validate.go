// internal/platform/config/validate.go
package config

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"pybaseline/internal/platform/errors"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

var pyVersionRe = regexp.MustCompile(`^3\.[0-9]{1,2}$`)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report yaml keys instead of Go field names.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("pyversion", validatePyVersion)
	})
	return validate
}

// validatePyVersion accepts dotted CPython 3.x versions such as "3.11".
func validatePyVersion(fl validator.FieldLevel) bool {
	return pyVersionRe.MatchString(fl.Field().String())
}

// Validate checks every option against its struct tag. The first batch of
// violations is reported as a single ErrInvalidConfig.
func Validate(cfg Config) error {
	err := validatorInstance().Struct(cfg)
	if err == nil {
		return validateTargets(cfg)
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(errors.ErrInvalidConfig, err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.Wrap(errors.ErrInvalidConfig, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s: %q is not one of [%s]", field, fmt.Sprint(fe.Value()), fe.Param())
	case "pyversion":
		return fmt.Sprintf("%s: %q is not a Python 3.x version", field, fmt.Sprint(fe.Value()))
	case "required":
		return fmt.Sprintf("%s: required", field)
	default:
		return fmt.Sprintf("%s: failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value())
	}
}

func validateTargets(cfg Config) error {
	seen := make(map[string]struct{}, len(cfg.Targets))
	for _, t := range cfg.Targets {
		if _, dup := seen[t.Name]; dup {
			return errors.Wrapf(errors.ErrInvalidConfig, "targets: duplicate name %q", t.Name)
		}
		seen[t.Name] = struct{}{}
	}
	return nil
}
