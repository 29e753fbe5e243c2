package dto

import (
	"fmt"

	"github.com/farellandr/eventhub/internal/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the rolename, username and tickettype tags to gin's
// binding validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("rolename", validateRoleName); err != nil {
		return err
	}
	if err := v.RegisterValidation("username", validateUsername); err != nil {
		return err
	}
	return v.RegisterValidation("tickettype", validateTicketType)
}

func validateRoleName(fl validator.FieldLevel) bool {
	return models.IsValidRoleName(fl.Field().String())
}

func validateUsername(fl validator.FieldLevel) bool {
	return models.IsValidUsername(fl.Field().String())
}

func validateTicketType(fl validator.FieldLevel) bool {
	_, err := models.ParseTicketType(fl.Field().String())
	return err == nil
}

// BindingMessage turns validator errors into a single client-facing line.
func BindingMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "Invalid input. Please check your fields."
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "rolename":
		return fmt.Sprintf("%s must start with %s", fe.Field(), models.RolePrefix)
	case "username":
		return fmt.Sprintf("%s may only contain letters, digits, '.', '_' and '-'", fe.Field())
	case "tickettype":
		return fmt.Sprintf("%s must be one of VIP, STANDARD, FREE, STUDENT, BACKSTAGE", fe.Field())
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
