package user

import (
	"github.com/go-playground/validator/v10"

	"github.com/PeaceIshola/eduhub/core"
)

var (
	allRolesTag  = "allroles"
	allRolesText = "invalid roles"
)

func init() {
	_ = core.Validate.RegisterValidation(allRolesTag, allRolesValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, allRolesTag, allRolesText)
}

// allRolesValidation checks that all provided roles are known.
func allRolesValidation(fl validator.FieldLevel) bool {
	roles, ok := fl.Field().Interface().([]Role)
	if !ok {
		return false
	}
	for _, role := range roles {
		if !ValidRole(role) {
			return false
		}
	}
	return true
}
