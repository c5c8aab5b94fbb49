package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/allservices/marketplace-api/internal/model"
)

// ValidationConfig represents validation configuration
type ValidationConfig struct {
	CustomValidators map[string]validator.Func
}

func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		CustomValidators: map[string]validator.Func{
			"price_type": validatePriceType,
		},
	}
}

func validatePriceType(fl validator.FieldLevel) bool {
	return model.PriceType(fl.Field().String()).Valid()
}

// RegisterValidators installs custom tags on gin's validator and makes
// field errors report json names. It must run before routes are served.
func RegisterValidators(config ValidationConfig) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	for tag, fn := range config.CustomValidators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return nil
}
