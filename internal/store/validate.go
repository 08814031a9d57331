package store

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/AnshRaj112/feedback-backend/internal/models"
)

// Validator checks records against the feedback schema.
type Validator struct {
	validate   *validator.Validate
	categories map[string]struct{}
}

// NewValidator returns a Validator restricting category to the given labels.
// An empty list accepts any non-empty category.
func NewValidator(categories []string) *Validator {
	v := &Validator{
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		categories: make(map[string]struct{}, len(categories)),
	}
	for _, c := range categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			v.categories[c] = struct{}{}
		}
	}

	// Report fields by their wire names
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.validate.RegisterValidation("category", v.validCategory); err != nil {
		panic(err)
	}
	return v
}

func (v *Validator) validCategory(fl validator.FieldLevel) bool {
	if len(v.categories) == 0 {
		return true
	}
	_, ok := v.categories[strings.ToLower(strings.TrimSpace(fl.Field().String()))]
	return ok
}

// Categories returns the allowed labels in sorted order.
func (v *Validator) Categories() []string {
	out := make([]string, 0, len(v.categories))
	for c := range v.categories {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Validate returns a *ValidationError listing every failed field, or nil.
func (v *Validator) Validate(rec models.Feedback) error {
	err := v.validate.Struct(rec)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate feedback: %w", err)
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: v.message(fe)})
	}
	return out
}

func (v *Validator) message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "category":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.Join(v.Categories(), ", "))
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
