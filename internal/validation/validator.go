// Package validation runs request validation in two stages: declarative
// struct rules, then asynchronous checks that read the store. Every field
// is validated independently and failures come back as one field map.
package validation

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/voyagehub/travel-backend/internal/apperr"
	phonevalidator "github.com/voyagehub/travel-backend/pkg/validator"
)

// DefaultCheckTimeout bounds the store reads made by async checks
const DefaultCheckTimeout = 3 * time.Second

var flightNumberRegex = regexp.MustCompile(`^([A-Z]{2}|[A-Z][0-9]|[0-9][A-Z])[0-9]{1,4}[A-Z]?$`)

// CheckFunc returns a non-empty message when the value is rejected. A
// non-nil error means the check itself could not run.
type CheckFunc func(ctx context.Context) (string, error)

// Check binds a CheckFunc to the field it reports on
type Check struct {
	Field string
	Fn    CheckFunc
}

// Validator wraps a configured validator/v10 instance
type Validator struct {
	validate     *validator.Validate
	checkTimeout time.Duration
}

// New creates a validator with the custom tags registered
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so clients can map errors to inputs
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	phones := phonevalidator.NewPhoneValidator()
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phones.IsValid(fl.Field().String())
	})
	_ = v.RegisterValidation("flight_number", func(fl validator.FieldLevel) bool {
		return flightNumberRegex.MatchString(strings.ToUpper(fl.Field().String()))
	})

	return &Validator{validate: v, checkTimeout: DefaultCheckTimeout}
}

// WithCheckTimeout overrides the async check deadline
func (v *Validator) WithCheckTimeout(d time.Duration) *Validator {
	v.checkTimeout = d
	return v
}

// Engine exposes the underlying validator, used to plug into gin binding
func (v *Validator) Engine() *validator.Validate {
	return v.validate
}

// Struct runs the declarative rules only
func (v *Validator) Struct(s interface{}) error {
	if fields := v.ruleErrors(s); len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

// Validate runs the declarative rules and then the async checks. Checks on
// a field that already failed a rule are skipped, and checks on the same
// field run in order until the first failure.
func (v *Validator) Validate(ctx context.Context, s interface{}, checks ...Check) error {
	fields := v.ruleErrors(s)
	if fields == nil {
		fields = map[string]string{}
	}

	byField := map[string][]CheckFunc{}
	var order []string
	for _, c := range checks {
		if _, failed := fields[c.Field]; failed {
			continue
		}
		if _, seen := byField[c.Field]; !seen {
			order = append(order, c.Field)
		}
		byField[c.Field] = append(byField[c.Field], c.Fn)
	}

	if len(order) > 0 {
		checkCtx, cancel := context.WithTimeout(ctx, v.checkTimeout)
		defer cancel()

		var mu sync.Mutex
		g, gctx := errgroup.WithContext(checkCtx)
		for _, field := range order {
			field, fns := field, byField[field]
			g.Go(func() error {
				for _, fn := range fns {
					msg, err := fn(gctx)
					if err != nil {
						return fmt.Errorf("validation check on %s: %w", field, err)
					}
					if msg != "" {
						mu.Lock()
						fields[field] = msg
						mu.Unlock()
						return nil
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return apperr.Internal(err)
		}
	}

	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

func (v *Validator) ruleErrors(s interface{}) map[string]string {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	fields := make(map[string]string, len(validationErrs))
	for _, fe := range validationErrs {
		name := fieldPath(fe)
		if _, exists := fields[name]; exists {
			continue
		}
		fields[name] = Message(fe)
	}
	return fields
}

// fieldPath drops the root struct name from the namespace, keeping the
// path of nested fields.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// Message renders a single rule failure for clients
func Message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid id", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, fe.Param(), unit(fe.Kind()))
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, fe.Param(), unit(fe.Kind()))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be %s or less", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gtfield":
		return fmt.Sprintf("%s must be after %s", field, jsonName(fe.Param()))
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", field, jsonName(fe.Param()))
	case "phone":
		return fmt.Sprintf("%s must be a valid phone number", field)
	case "flight_number":
		return fmt.Sprintf("%s must look like an IATA flight number, e.g. KQ101", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	}
	return fmt.Sprintf("%s is invalid", field)
}

func unit(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Map:
		return " items"
	}
	return ""
}

// jsonName turns a Go field name in a cross-field param into snake case
func jsonName(goName string) string {
	var b strings.Builder
	for i, r := range goName {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
