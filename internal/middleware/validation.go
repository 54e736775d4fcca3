package middleware

import (
	stderrors "errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/triage-api/internal/model"
	"github.com/jwalitptl/triage-api/pkg/httputil"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationConfig represents validation middleware configuration
type ValidationConfig struct {
	CustomValidators    map[string]validator.Func
	CustomErrorMessages map[string]string
}

func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		CustomValidators: map[string]validator.Func{
			"outcome": validateOutcome,
		},
		CustomErrorMessages: map[string]string{
			"required": "field is required",
			"min":      "value is too small",
			"max":      "value is too large",
			"outcome":  "must be one of stable, deteriorating, deceased, evacuated",
		},
	}
}

// validateOutcome accepts an empty string, which clears a recorded outcome.
func validateOutcome(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || model.Outcome(s).Valid()
}

// RegisterValidators installs the custom tags on gin's validator and reports fields by
// their json names.
func RegisterValidators(config ValidationConfig) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	for tag, fn := range config.CustomValidators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// Validation turns binding failures recorded on the context into a 400 listing each
// offending field.
func Validation(config ValidationConfig) gin.HandlerFunc {
	RegisterValidators(config)

	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		var validationErrors []ValidationError
		for _, err := range c.Errors {
			var errs validator.ValidationErrors
			if !stderrors.As(err.Err, &errs) {
				continue
			}
			for _, e := range errs {
				msg := config.CustomErrorMessages[e.Tag()]
				if msg == "" {
					msg = e.Error()
				}
				validationErrors = append(validationErrors, ValidationError{
					Field:   e.Field(),
					Message: msg,
				})
			}
		}

		if len(validationErrors) > 0 {
			resp := httputil.NewErrorResponse("validation failed")
			resp.Data = validationErrors
			c.AbortWithStatusJSON(http.StatusBadRequest, resp)
		}
	}
}
