package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is the global validator instance
	Validate *validator.Validate

	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

func init() {
	Validate = validator.New()

	registerCustomRules(Validate)

	// gin binds with its own validator instance, register there too
	if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerCustomRules(engine)
	}
}

func registerCustomRules(v *validator.Validate) {
	_ = v.RegisterValidation("turno", validateTurno)
	_ = v.RegisterValidation("user_role", validateUserRole)
	_ = v.RegisterValidation("zona", validateZona)
}

// ValidateStruct validates a struct and returns a ValidationError if validation fails
func ValidateStruct(s interface{}) error {
	err := Validate.Struct(s)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return NewValidationError(validationErrors)
		}
		return err
	}
	return nil
}

// validateTurno checks if the shift name is one of the dataset values
func validateTurno(fl validator.FieldLevel) bool {
	turno := fl.Field().String()
	validTurnos := []string{"mañana", "tarde", "noche"}
	return contains(validTurnos, turno)
}

// validateUserRole checks if user role is valid
func validateUserRole(fl validator.FieldLevel) bool {
	role := fl.Field().String()
	validRoles := []string{"Gerente", "JefeOperaciones", "Analista", "EncargadoSipCop"}
	for _, v := range validRoles {
		if v == strings.TrimSpace(role) {
			return true
		}
	}
	return false
}

// validateZona checks if the zone number is within the operational range
func validateZona(fl validator.FieldLevel) bool {
	zona := fl.Field().Int()
	return zona >= 1 && zona <= 7
}

func contains(slice []string, item string) bool {
	item = strings.ToLower(strings.TrimSpace(item))
	for _, s := range slice {
		if strings.ToLower(strings.TrimSpace(s)) == item {
			return true
		}
	}
	return false
}

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	email = strings.TrimSpace(email)
	return len(email) > 0 && emailRegex.MatchString(email)
}

// ValidateCoordinates validates latitude and longitude
func ValidateCoordinates(latitude, longitude float64) error {
	if latitude < -90.0 || latitude > 90.0 {
		return fmt.Errorf("latitude must be between -90 and 90, got: %f", latitude)
	}
	if longitude < -180.0 || longitude > 180.0 {
		return fmt.Errorf("longitude must be between -180 and 180, got: %f", longitude)
	}
	return nil
}

// ValidatePasswordStrength validates password complexity
func ValidatePasswordStrength(password string) error {
	validationErr := &ValidationError{Errors: make(map[string]string)}

	if len(password) < 8 {
		validationErr.AddError("password", "Password must be at least 8 characters long")
	}

	if validationErr.HasErrors() {
		return validationErr
	}

	return nil
}
