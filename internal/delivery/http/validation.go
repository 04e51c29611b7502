package http

import (
	"sync"

	"github.com/gdugdh24/tapcard-backend/internal/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the domain enum tags used in request structs:
// social_platform, follow_up_unit and connection_method.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("social_platform", func(fl validator.FieldLevel) bool {
			return domain.SocialPlatform(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("follow_up_unit", func(fl validator.FieldLevel) bool {
			return domain.FollowUpUnit(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("connection_method", func(fl validator.FieldLevel) bool {
			return domain.ConnectionMethod(fl.Field().String()).IsValid()
		})
	})
}
