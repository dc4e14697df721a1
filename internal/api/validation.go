package api

import (
	"errors" // Error inspection
	"sync"   // One-time registration

	"shop_system/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin/binding"       // Gin binding engine
	"github.com/go-playground/validator/v10" // Struct validation
)

var registerValidatorsOnce sync.Once

// registerValidators adds the custom binding rules used by request structs
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("usertype", func(fl validator.FieldLevel) bool {
				return domain.UserType(fl.Field().String()).Valid() // Known user types only
			})
		}
	})
}

// failedField reports whether err is a validation failure on the named struct field
func failedField(err error, field string) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Field() == field {
			return true
		}
	}
	return false
}
