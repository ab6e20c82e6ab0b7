package handlers

import (
	"hypoforum/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the custom binding tags used by request structs.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("targetkind", func(fl validator.FieldLevel) bool {
		_, err := models.NewTarget(models.TargetKind(fl.Field().String()), 1)
		return err == nil
	}); err != nil {
		return err
	}
	return v.RegisterValidation("tags", func(fl validator.FieldLevel) bool {
		tags, ok := fl.Field().Interface().([]string)
		if !ok {
			return false
		}
		for _, t := range tags {
			if len(t) > 32 {
				return false
			}
		}
		return true
	})
}
