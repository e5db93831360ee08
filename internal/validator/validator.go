// Package validator holds the pure input checks applied before a record is created.
package validator

import (
	"net/url"
	"regexp"

	"github.com/go-playground/validator/v10"
)

const (
	// MinValidityMinutes is the shortest validity window a record may have.
	MinValidityMinutes = 1
	// MaxValidityMinutes caps the validity window at one week.
	MaxValidityMinutes = 10080
)

var shortCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{3,20}$`)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	// Registration only fails for an empty tag or a nil func.
	_ = v.RegisterValidation("shortcode", func(fl validator.FieldLevel) bool {
		return shortCodePattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidateURL reports whether s is an absolute URL with a scheme and a host.
// No network access is performed.
func ValidateURL(s string) bool {
	if err := validate.Var(s, "required,url"); err != nil {
		return false
	}
	parsed, err := url.Parse(s)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}

// ValidateShortCode reports whether s matches ^[A-Za-z0-9]{3,20}$.
func ValidateShortCode(s string) bool {
	return validate.Var(s, "shortcode") == nil
}

// ValidateValidityMinutes reports whether n lies in [1, 10080].
func ValidateValidityMinutes(n int) bool {
	return validate.Var(n, "gte=1,lte=10080") == nil
}
