package validator

import (
	"log"

	"placement_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует правила на основе статусов из models
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// admin через регистрацию не создается
	mustRegister("is-registration-role", func(fl validator.FieldLevel) bool {
		role := models.Role(fl.Field().String())
		return role == models.RoleStudent || role == models.RoleCompany
	})

	mustRegister("is-decision", func(fl validator.FieldLevel) bool {
		return models.PostingStatus(fl.Field().String()).IsDecision()
	})

	mustRegister("is-application-status", func(fl validator.FieldLevel) bool {
		return models.ApplicationStatus(fl.Field().String()).Valid()
	})

	mustRegister("is-employment-type", func(fl validator.FieldLevel) bool {
		return models.EmploymentType(fl.Field().String()).Valid()
	})

	mustRegister("is-account-status", func(fl validator.FieldLevel) bool {
		return models.AccountStatus(fl.Field().String()).Valid()
	})
}
