package http

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/avolkau/librarium/internal/entities"
)

// registerValidations attaches custom rules to gin's request binding
// validator. Idempotent; safe to call once per router.
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("userrole", validUserRole)
	}
}

// validUserRole accepts only the two known account roles.
func validUserRole(fl validator.FieldLevel) bool {
	return entities.UserRole(fl.Field().String()).Valid()
}
