package validator

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shanejorr-team/personal-blog/internal/pkg/imaging"
)

// categories accepted by the "photo_category" rule, registered by the photo domain
var (
	categoriesMu sync.RWMutex
	categories   []string
)

// SetCategories replaces the set accepted by the "photo_category" rule.
// Order is kept for error messages.
func SetCategories(names []string) {
	categoriesMu.Lock()
	defer categoriesMu.Unlock()
	categories = append([]string(nil), names...)
}

func registeredCategories() []string {
	categoriesMu.RLock()
	defer categoriesMu.RUnlock()
	return categories
}

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
	registerCustomValidations()
}

func registerCustomValidations() {
	validate.RegisterValidation("photo_category", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, c := range registeredCategories() {
			if value == c {
				return true
			}
		}
		return false
	})

	validate.RegisterValidation("image_ext", func(fl validator.FieldLevel) bool {
		return imaging.ValidateType(fl.Field().String())
	})

	// YYYY-MM-DD, and a real calendar day
	validate.RegisterValidation("iso_date", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if len(value) != len(time.DateOnly) {
			return false
		}
		_, err := time.Parse(time.DateOnly, value)
		return err == nil
	})

	// int_range=MIN:MAX on a string holding a base-10 integer
	validate.RegisterValidation("int_range", func(fl validator.FieldLevel) bool {
		lo, hi, ok := parseRange(fl.Param())
		if !ok {
			return false
		}
		n, err := strconv.Atoi(fl.Field().String())
		if err != nil {
			return false
		}
		return n >= lo && n <= hi
	})
}

func parseRange(param string) (int, int, bool) {
	l, h, ok := strings.Cut(param, ":")
	if !ok {
		return 0, 0, false
	}
	lo, err1 := strconv.Atoi(l)
	hi, err2 := strconv.Atoi(h)
	return lo, hi, err1 == nil && err2 == nil
}

// ValidateVar checks a single value against a tag list. It returns nil or a
// human-readable reason for the first failing rule.
func ValidateVar(field interface{}, tag string) error {
	err := validate.Var(field, tag)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return errors.New(message(verrs[0]))
}

func message(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "max":
		return "is too long (max: " + err.Param() + ")"
	case "photo_category":
		return "must be one of: " + strings.Join(registeredCategories(), ", ")
	case "image_ext":
		return "must end in .jpg, .jpeg, .png, .gif or .webp"
	case "iso_date":
		return "must be a date in YYYY-MM-DD format"
	case "int_range":
		lo, hi, _ := parseRange(err.Param())
		return "must be an integer between " + strconv.Itoa(lo) + " and " + strconv.Itoa(hi)
	case "numeric":
		return "must be a number"
	default:
		return "is invalid"
	}
}
