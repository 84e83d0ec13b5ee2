package subscription

import (
	"github.com/go-playground/validator/v10"

	"github.com/PeaceIshola/eduhub/core"
)

var (
	tierTag  = "tier"
	tierText = "tier must be one of: free, premium"
)

func init() {
	_ = core.Validate.RegisterValidation(tierTag, tierValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, tierTag, tierText)
}

func tierValidation(fl validator.FieldLevel) bool {
	return ValidTier(Tier(fl.Field().String()))
}
